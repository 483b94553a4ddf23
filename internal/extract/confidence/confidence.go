// Package confidence turns an extraction into a calibrated 0-1 estimate.
// All weighting lives in one declarative table so the math is auditable;
// the only state is two domain-keyed reliability maps nudged on observed
// outcomes.
package confidence

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"jobtrack-engine/internal/domain"
	"jobtrack-engine/internal/extract/htmlmeta"
	"jobtrack-engine/internal/extract/urlparse"
)

// Factors are the independent confidence signals, each in [0,1].
type Factors struct {
	FieldCompleteness  float64 `json:"fieldCompleteness"`
	FieldQuality       float64 `json:"fieldQuality"`
	PatternMatch       float64 `json:"patternMatch"`
	UserHistory        float64 `json:"userHistory"`
	WebsiteReliability float64 `json:"websiteReliability"`
	ExtractionStrategy float64 `json:"extractionStrategy"`
	Consensus          float64 `json:"consensus"`
}

// weights is the fixed convex combination: non-negative, sums to 1.0.
var weights = Factors{
	FieldCompleteness:  0.25,
	FieldQuality:       0.20,
	PatternMatch:       0.15,
	UserHistory:        0.10,
	WebsiteReliability: 0.10,
	ExtractionStrategy: 0.10,
	Consensus:          0.10,
}

// strategyWeights is the fixed per-strategy reliability lookup.
var strategyWeights = map[string]float64{
	"url-pattern": 0.9,
	"html-meta":   0.8,
	"ensemble":    0.85,
	"search-api":  0.75,
	"learned":     0.7,
	"text":        0.6,
}

const defaultStrategyWeight = 0.5

// Score is the derived confidence record. Overall is recomputable from
// Factors alone; two identical factor sets always score identically.
type Score struct {
	Overall         float64  `json:"overall"`
	Factors         Factors  `json:"factors"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Scorer holds the two running domain maps. Everything else is pure.
type Scorer struct {
	mu          sync.Mutex
	siteScores  map[string]float64 // domain -> website reliability
	userScores  map[string]float64 // domain -> user-history accuracy
	nudge       float64
	defaultRely float64
}

func NewScorer() *Scorer {
	return &Scorer{
		siteScores:  make(map[string]float64),
		userScores:  make(map[string]float64),
		nudge:       0.1,
		defaultRely: 0.5,
	}
}

// Score computes the seven factors for one extraction and combines them.
func (s *Scorer) Score(data domain.ExtractedJob, rawURL, strategy string, consensus bool) Score {
	host := DomainOf(rawURL)

	f := Factors{
		FieldCompleteness:  fieldCompleteness(data),
		FieldQuality:       fieldQuality(data),
		PatternMatch:       patternMatch(rawURL),
		UserHistory:        s.lookup(s.userScores, host),
		WebsiteReliability: s.lookup(s.siteScores, host),
		ExtractionStrategy: StrategyWeight(strategy),
	}
	if consensus {
		f.Consensus = 1.0
	}

	return Score{
		Overall:         Combine(f),
		Factors:         f,
		Recommendations: recommend(f),
	}
}

// Combine is the pure convex combination over the weight table.
func Combine(f Factors) float64 {
	v := f.FieldCompleteness*weights.FieldCompleteness +
		f.FieldQuality*weights.FieldQuality +
		f.PatternMatch*weights.PatternMatch +
		f.UserHistory*weights.UserHistory +
		f.WebsiteReliability*weights.WebsiteReliability +
		f.ExtractionStrategy*weights.ExtractionStrategy +
		f.Consensus*weights.Consensus
	return clamp01(v)
}

// StrategyWeight returns the fixed reliability weight for a strategy name.
func StrategyWeight(name string) float64 {
	if w, ok := strategyWeights[name]; ok {
		return w
	}
	return defaultStrategyWeight
}

// RecordSiteOutcome nudges the website reliability score for a domain by
// +/- 0.1 per observed success or failure, clamped to [0,1].
func (s *Scorer) RecordSiteOutcome(domainName string, ok bool) {
	s.record(s.siteScores, domainName, ok)
}

// RecordUserOutcome nudges the user-history accuracy score for a domain.
// "ok" means the user accepted the extraction without corrections.
func (s *Scorer) RecordUserOutcome(domainName string, ok bool) {
	s.record(s.userScores, domainName, ok)
}

func (s *Scorer) record(m map[string]float64, domainName string, ok bool) {
	domainName = strings.ToLower(strings.TrimSpace(domainName))
	if domainName == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v, seen := m[domainName]
	if !seen {
		v = s.defaultRely
	}
	if ok {
		v += s.nudge
	} else {
		v -= s.nudge
	}
	m[domainName] = clamp01(v)
}

func (s *Scorer) lookup(m map[string]float64, domainName string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := m[domainName]; ok {
		return v
	}
	return s.defaultRely
}

// ---------------- factor heuristics ----------------

// fieldCompleteness weights required fields (company, position) at 70% and
// optional ones (salary or hourly rate, location) at 30%.
func fieldCompleteness(d domain.ExtractedJob) float64 {
	req := 0.0
	if strings.TrimSpace(d.Company) != "" {
		req += 0.5
	}
	if strings.TrimSpace(d.Position) != "" {
		req += 0.5
	}

	opt := 0.0
	if strings.TrimSpace(d.Salary) != "" || strings.TrimSpace(d.HourlyRate) != "" {
		opt += 0.5
	}
	if strings.TrimSpace(d.Location) != "" {
		opt += 0.5
	}

	return req*0.7 + opt*0.3
}

// fieldQuality averages per-field plausibility over the fields present.
func fieldQuality(d domain.ExtractedJob) float64 {
	var sum, n float64

	if strings.TrimSpace(d.Company) != "" {
		n++
		if htmlmeta.IsValidCompanyName(d.Company) {
			sum++
		}
	}
	if strings.TrimSpace(d.Position) != "" {
		n++
		if htmlmeta.IsValidJobTitle(d.Position) {
			sum++
		}
	}
	if strings.TrimSpace(d.Salary) != "" {
		n++
		if salaryPlausible(d.Salary) {
			sum++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

var reNumber = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// salaryPlausible wants a digit or currency symbol, and if a yearly figure
// parses it must land in the 20k-1M band.
func salaryPlausible(s string) bool {
	if !strings.ContainsAny(s, "$€£0123456789") {
		return false
	}
	m := reNumber.FindString(s)
	if m == "" {
		return true // currency symbol alone; nothing to range-check
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return true
	}
	low := strings.ToLower(s)
	if idx := strings.Index(low, m); idx >= 0 {
		rest := strings.TrimSpace(low[idx+len(m):])
		if strings.HasPrefix(rest, "k") {
			v *= 1000
		}
	}
	if v < 100 {
		// hourly-looking figure, plausible on its own
		return true
	}
	return v >= 20000 && v <= 1000000
}

func patternMatch(rawURL string) float64 {
	if rawURL == "" {
		return 0
	}
	if urlparse.MatchesKnownVendor(rawURL) {
		return 1.0
	}
	return 0.2 // reachable URL, unknown signature
}

// recommend generates human-readable hints from simple threshold rules.
func recommend(f Factors) []string {
	var out []string
	if f.FieldCompleteness < 0.5 {
		out = append(out, "extraction is missing key fields; add more details manually")
	}
	if f.FieldQuality < 0.5 {
		out = append(out, "some extracted values look implausible; review before saving")
	}
	if f.PatternMatch < 0.5 {
		out = append(out, "unrecognized job board; double-check company and position")
	}
	if f.WebsiteReliability < 0.3 {
		out = append(out, "this site has extracted poorly before; verify all fields")
	}
	return out
}

// DomainOf returns the lower-cased hostname for a URL, or "" if unparseable.
func DomainOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
