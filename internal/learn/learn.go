// Package learn records user corrections to extractions and feeds them back
// into future runs. Patterns are keyed (domain, field, original value); a
// pattern only overrides an extraction once repeated identical corrections
// have pushed its confidence past a conservative bar, so a single stray
// edit never flips future results.
package learn

import (
	"context"
	"database/sql"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"jobtrack-engine/internal/domain"
)

const (
	createConfidence = 0.5
	confidenceStep   = 0.1
	applyThreshold   = 0.7 // strictly greater-than to override
)

// Pattern is one learned correction for a (domain, field, original) triple.
type Pattern struct {
	Domain     string  `json:"domain"`
	Field      string  `json:"field"`
	Original   string  `json:"original"`
	Corrected  string  `json:"corrected"`
	Confidence float64 `json:"confidence"`
	UsageCount int     `json:"usageCount"`
}

// feedbackEvent is one recorded correction set; the full log is the source
// of truth insights are recomputed from.
type feedbackEvent struct {
	Domain    string
	URL       string
	Strategy  string
	Original  domain.ExtractedJob
	Corrected domain.ExtractedJob
	At        time.Time
}

// Store owns the process-wide pattern and feedback state. With a non-nil
// db it also persists both, so learning survives restarts; persistence
// failures are logged and never fail the feedback path.
type Store struct {
	mu       sync.Mutex
	patterns map[string]map[string]*Pattern // domain -> field|original -> pattern
	log      []feedbackEvent
	insights map[string]Insights

	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		patterns: make(map[string]map[string]*Pattern),
		insights: make(map[string]Insights),
		db:       db,
	}
}

// RecordFeedback diffs original vs corrected per field and upserts a
// pattern for each changed field, then recomputes the domain's insights
// from the full log.
func (s *Store) RecordFeedback(ctx context.Context, url string, original, corrected domain.ExtractedJob, strategy string) {
	domainName := domainOf(url)
	if domainName == "" {
		domainName = "unknown"
	}

	ev := feedbackEvent{
		Domain:    domainName,
		URL:       url,
		Strategy:  strategy,
		Original:  original,
		Corrected: corrected,
		At:        time.Now().UTC(),
	}

	s.mu.Lock()
	s.log = append(s.log, ev)
	for field, pair := range diffFields(original, corrected) {
		s.upsertLocked(domainName, field, pair[0], pair[1])
	}
	s.insights[domainName] = s.computeInsightsLocked(domainName)
	s.mu.Unlock()

	if s.db != nil {
		if err := s.persistFeedback(ctx, ev); err != nil {
			log.Printf("[learn] persist feedback domain=%s err=%v", domainName, err)
		}
	}
}

// ApplyLearnedPatterns overrides a field only when the extracted value
// exactly equals a pattern's original and that pattern has cleared the
// confidence bar. Returns the (possibly) adjusted record and whether any
// override fired.
func (s *Store) ApplyLearnedPatterns(domainName string, data domain.ExtractedJob) (domain.ExtractedJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey := s.patterns[strings.ToLower(domainName)]
	if byKey == nil {
		return data, false
	}

	applied := false
	for field, val := range fieldValues(data) {
		p, ok := byKey[patternKey(field, val)]
		if !ok || p.Confidence <= applyThreshold {
			continue
		}
		setField(&data, field, p.Corrected)
		applied = true
	}
	return data, applied
}

// Patterns returns a copy of all learned patterns for a domain.
func (s *Store) Patterns(domainName string) []Pattern {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey := s.patterns[strings.ToLower(domainName)]
	out := make([]Pattern, 0, len(byKey))
	for _, p := range byKey {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Field != out[j].Field {
			return out[i].Field < out[j].Field
		}
		return out[i].Original < out[j].Original
	})
	return out
}

// Clear drops all learned state. Explicit clear is the only deletion path.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.patterns = make(map[string]map[string]*Pattern)
	s.log = nil
	s.insights = make(map[string]Insights)
	s.mu.Unlock()

	if s.db != nil {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM learned_patterns;`); err != nil {
			log.Printf("[learn] clear patterns: %v", err)
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM feedback;`); err != nil {
			log.Printf("[learn] clear feedback: %v", err)
		}
	}
}

func (s *Store) upsertLocked(domainName, field, original, corrected string) {
	byKey := s.patterns[domainName]
	if byKey == nil {
		byKey = make(map[string]*Pattern)
		s.patterns[domainName] = byKey
	}

	key := patternKey(field, original)
	p, ok := byKey[key]
	if !ok {
		byKey[key] = &Pattern{
			Domain:     domainName,
			Field:      field,
			Original:   original,
			Corrected:  corrected,
			Confidence: createConfidence,
			UsageCount: 1,
		}
		return
	}

	p.UsageCount++
	if p.Corrected == corrected {
		p.Confidence += confidenceStep
		if p.Confidence > 1.0 {
			p.Confidence = 1.0
		}
	} else {
		// the user changed their mind; restart trust at the new target
		p.Corrected = corrected
		p.Confidence = createConfidence
	}
}

// ---------------- field plumbing ----------------

const (
	fieldCompany  = "company"
	fieldPosition = "position"
	fieldSalary   = "salary"
	fieldHourly   = "hourlyRate"
	fieldLocation = "location"
)

// diffFields returns field -> [original, corrected] for every field the
// user changed to a non-empty value.
func diffFields(orig, corr domain.ExtractedJob) map[string][2]string {
	out := make(map[string][2]string)
	o, c := fieldValues(orig), fieldValues(corr)
	for field, ov := range o {
		cv := c[field]
		if cv == "" || cv == ov {
			continue
		}
		out[field] = [2]string{ov, cv}
	}
	return out
}

func fieldValues(d domain.ExtractedJob) map[string]string {
	return map[string]string{
		fieldCompany:  strings.TrimSpace(d.Company),
		fieldPosition: strings.TrimSpace(d.Position),
		fieldSalary:   strings.TrimSpace(d.Salary),
		fieldHourly:   strings.TrimSpace(d.HourlyRate),
		fieldLocation: strings.TrimSpace(d.Location),
	}
}

func setField(d *domain.ExtractedJob, field, v string) {
	switch field {
	case fieldCompany:
		d.Company = v
	case fieldPosition:
		d.Position = v
	case fieldSalary:
		d.Salary = v
	case fieldHourly:
		d.HourlyRate = v
	case fieldLocation:
		d.Location = v
	}
}

func patternKey(field, original string) string {
	return field + "|" + strings.ToLower(strings.TrimSpace(original))
}

func domainOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	// cheap host extraction; the URL already passed orchestrator validation
	s := raw
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "@"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}
