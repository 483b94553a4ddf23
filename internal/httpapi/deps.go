package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/extract"
	emailingest "jobtrack-engine/internal/ingest/email"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// the extraction orchestrator; owns the cache, scorer and learner
	Service *extract.Service

	// Atomic stores
	CfgVal       *atomic.Value // stores config.Config
	IngestStatus *atomic.Value // stores poll.Status

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Ingest entrypoint (inject for testability)
	RunIngest func(ctx context.Context, db *sql.DB, cfg config.Config, svc emailingest.Extractor, hub *events.Hub) (int, error)
}
