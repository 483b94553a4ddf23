package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jobtrack-engine/internal/domain"
)

// Extraction is one persisted pipeline result. The caller decides whether a
// result is worth saving; the pipeline itself never writes here.
type Extraction struct {
	ID         int64               `json:"id"`
	Data       domain.ExtractedJob `json:"data"`
	Strategy   string              `json:"strategy"`
	Confidence float64             `json:"confidence"`
	CreatedAt  time.Time           `json:"createdAt"`
}

type ListExtractionsOpts struct {
	SourceURL string // exact match filter, empty for all
	Limit     int
}

func SaveExtraction(ctx context.Context, db *sql.DB, e Extraction) (int64, error) {
	res, err := db.ExecContext(ctx, `
INSERT INTO extractions(company, position, salary, hourly_rate, location,
  notes, source_url, diagnostic, strategy, confidence, created_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?);`,
		e.Data.Company, e.Data.Position, e.Data.Salary, e.Data.HourlyRate, e.Data.Location,
		e.Data.Notes, e.Data.SourceURL, e.Data.Diagnostic, e.Strategy, e.Confidence,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert extraction: %w", err)
	}
	return res.LastInsertId()
}

func GetExtraction(ctx context.Context, db *sql.DB, id int64) (Extraction, error) {
	row := db.QueryRowContext(ctx, `
SELECT id, company, position, salary, hourly_rate, location,
  notes, source_url, diagnostic, strategy, confidence, created_at
FROM extractions
WHERE id = ?;`, id)
	return scanExtraction(row)
}

func ListExtractions(ctx context.Context, db *sql.DB, opts ListExtractionsOpts) ([]Extraction, error) {
	if opts.Limit <= 0 || opts.Limit > 2000 {
		opts.Limit = 200
	}

	query := `
SELECT id, company, position, salary, hourly_rate, location,
  notes, source_url, diagnostic, strategy, confidence, created_at
FROM extractions
`
	args := []any{}
	if opts.SourceURL != "" {
		query += "WHERE source_url = ?\n"
		args = append(args, opts.SourceURL)
	}
	query += "ORDER BY created_at DESC, id DESC\nLIMIT ?;"
	args = append(args, opts.Limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Extraction
	for rows.Next() {
		e, err := scanExtraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateExtraction rewrites the editable fields of a saved record; typically
// called after the user corrects an extraction by hand.
func UpdateExtraction(ctx context.Context, db *sql.DB, id int64, data domain.ExtractedJob) error {
	res, err := db.ExecContext(ctx, `
UPDATE extractions
SET company = ?, position = ?, salary = ?, hourly_rate = ?, location = ?, notes = ?
WHERE id = ?;`,
		data.Company, data.Position, data.Salary, data.HourlyRate, data.Location, data.Notes, id)
	if err != nil {
		return fmt.Errorf("update extraction: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func DeleteExtraction(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM extractions WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete extraction: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CleanupOldExtractions drops records older than three months.
func CleanupOldExtractions(db *sql.DB) (deleted int64, err error) {
	res, err := db.Exec(`
DELETE FROM extractions
WHERE created_at < datetime('now', '-3 months');
`)
	if err != nil {
		return 0, fmt.Errorf("cleanup old extractions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExtraction(r rowScanner) (Extraction, error) {
	var e Extraction
	var at string
	err := r.Scan(
		&e.ID,
		&e.Data.Company,
		&e.Data.Position,
		&e.Data.Salary,
		&e.Data.HourlyRate,
		&e.Data.Location,
		&e.Data.Notes,
		&e.Data.SourceURL,
		&e.Data.Diagnostic,
		&e.Strategy,
		&e.Confidence,
		&at,
	)
	if err != nil {
		return Extraction{}, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, at)
	return e, nil
}
