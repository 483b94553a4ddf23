package store

import "database/sql"

// Migrate brings the schema to the current version, tracked with
// PRAGMA user_version. Runs in one transaction so a failed upgrade leaves
// the old version intact.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---------------- schema v1 ----------------

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS extractions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company TEXT NOT NULL DEFAULT '',
  position TEXT NOT NULL DEFAULT '',
  salary TEXT NOT NULL DEFAULT '',
  hourly_rate TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  source_url TEXT NOT NULL,
  diagnostic TEXT NOT NULL DEFAULT '',
  strategy TEXT NOT NULL DEFAULT '',
  confidence REAL NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS feedback (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  domain TEXT NOT NULL,
  url TEXT NOT NULL,
  strategy TEXT NOT NULL DEFAULT '',
  orig_company TEXT NOT NULL DEFAULT '',
  orig_position TEXT NOT NULL DEFAULT '',
  orig_salary TEXT NOT NULL DEFAULT '',
  orig_hourly TEXT NOT NULL DEFAULT '',
  orig_location TEXT NOT NULL DEFAULT '',
  corr_company TEXT NOT NULL DEFAULT '',
  corr_position TEXT NOT NULL DEFAULT '',
  corr_salary TEXT NOT NULL DEFAULT '',
  corr_hourly TEXT NOT NULL DEFAULT '',
  corr_location TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS learned_patterns (
  domain TEXT NOT NULL,
  field TEXT NOT NULL,
  original TEXT NOT NULL,
  corrected TEXT NOT NULL,
  confidence REAL NOT NULL,
  usage_count INTEGER NOT NULL,
  PRIMARY KEY (domain, field, original)
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_extractions_created
ON extractions(created_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_extractions_source_url
ON extractions(source_url);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_feedback_domain
ON feedback(domain);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}
