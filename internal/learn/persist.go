package learn

import (
	"context"
	"fmt"
	"time"
)

// persistFeedback appends the event to the feedback log and mirrors the
// current pattern rows for the event's domain.
func (s *Store) persistFeedback(ctx context.Context, ev feedbackEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO feedback(domain, url, strategy,
  orig_company, orig_position, orig_salary, orig_hourly, orig_location,
  corr_company, corr_position, corr_salary, corr_hourly, corr_location,
  created_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?);`,
		ev.Domain, ev.URL, ev.Strategy,
		ev.Original.Company, ev.Original.Position, ev.Original.Salary, ev.Original.HourlyRate, ev.Original.Location,
		ev.Corrected.Company, ev.Corrected.Position, ev.Corrected.Salary, ev.Corrected.HourlyRate, ev.Corrected.Location,
		ev.At.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}

	s.mu.Lock()
	patterns := make([]Pattern, 0)
	for _, p := range s.patterns[ev.Domain] {
		patterns = append(patterns, *p)
	}
	s.mu.Unlock()

	for _, p := range patterns {
		_, err = tx.ExecContext(ctx, `
INSERT INTO learned_patterns(domain, field, original, corrected, confidence, usage_count)
VALUES(?,?,?,?,?,?)
ON CONFLICT(domain, field, original) DO UPDATE SET
  corrected = excluded.corrected,
  confidence = excluded.confidence,
  usage_count = excluded.usage_count;`,
			p.Domain, p.Field, p.Original, p.Corrected, p.Confidence, p.UsageCount,
		)
		if err != nil {
			return fmt.Errorf("upsert pattern: %w", err)
		}
	}

	return tx.Commit()
}

// Load hydrates in-memory state from the database. Call once at startup,
// before the store is shared.
func (s *Store) Load(ctx context.Context) error {
	if s.db == nil {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT domain, field, original, corrected, confidence, usage_count
FROM learned_patterns;`)
	if err != nil {
		return fmt.Errorf("load patterns: %w", err)
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	for rows.Next() {
		var p Pattern
		if err := rows.Scan(&p.Domain, &p.Field, &p.Original, &p.Corrected, &p.Confidence, &p.UsageCount); err != nil {
			return fmt.Errorf("scan pattern: %w", err)
		}
		byKey := s.patterns[p.Domain]
		if byKey == nil {
			byKey = make(map[string]*Pattern)
			s.patterns[p.Domain] = byKey
		}
		cp := p
		byKey[patternKey(p.Field, p.Original)] = &cp
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if err := s.loadFeedbackLocked(ctx); err != nil {
		return err
	}

	// rebuild insight caches for every domain we have feedback for
	seen := map[string]bool{}
	for _, ev := range s.log {
		if !seen[ev.Domain] {
			seen[ev.Domain] = true
			s.insights[ev.Domain] = s.computeInsightsLocked(ev.Domain)
		}
	}
	return nil
}

func (s *Store) loadFeedbackLocked(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
SELECT domain, url, strategy,
  orig_company, orig_position, orig_salary, orig_hourly, orig_location,
  corr_company, corr_position, corr_salary, corr_hourly, corr_location,
  created_at
FROM feedback
ORDER BY id;`)
	if err != nil {
		return fmt.Errorf("load feedback: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ev feedbackEvent
		var at string
		if err := rows.Scan(&ev.Domain, &ev.URL, &ev.Strategy,
			&ev.Original.Company, &ev.Original.Position, &ev.Original.Salary, &ev.Original.HourlyRate, &ev.Original.Location,
			&ev.Corrected.Company, &ev.Corrected.Position, &ev.Corrected.Salary, &ev.Corrected.HourlyRate, &ev.Corrected.Location,
			&at,
		); err != nil {
			return fmt.Errorf("scan feedback: %w", err)
		}
		ev.At, _ = time.Parse(time.RFC3339, at)
		s.log = append(s.log, ev)
	}
	return rows.Err()
}
