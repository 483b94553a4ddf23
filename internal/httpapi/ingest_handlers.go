package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"sync/atomic"
	"time"

	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/extract"
	emailingest "jobtrack-engine/internal/ingest/email"
	"jobtrack-engine/internal/poll"
)

type IngestHandler struct {
	DB           *sql.DB
	CfgVal       *atomic.Value // config.Config
	IngestStatus *atomic.Value // poll.Status
	Hub          *events.Hub
	Service      *extract.Service
	RunIngest    func(ctx context.Context, db *sql.DB, cfg config.Config, svc emailingest.Extractor, hub *events.Hub) (int, error)
}

func (h IngestHandler) Status(w http.ResponseWriter, r *http.Request) {
	st, _ := h.IngestStatus.Load().(poll.Status)
	writeJSON(w, st)
}

// Run triggers one ingest pass off the poller's schedule.
func (h IngestHandler) Run(w http.ResponseWriter, r *http.Request) {
	st, _ := h.IngestStatus.Load().(poll.Status)
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	cfgAny := h.CfgVal.Load()
	if cfgAny == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "no_config", "config not loaded")
		return
	}
	cfg := cfgAny.(config.Config)
	if !cfg.Email.Enabled {
		writeJSON(w, map[string]any{"ok": false, "msg": "email ingest disabled"})
		return
	}

	h.IngestStatus.Store(poll.Status{
		Running:   true,
		LastRunAt: time.Now().Format(time.RFC3339),
		LastOkAt:  st.LastOkAt,
	})

	go func() {
		added, err := h.RunIngest(context.Background(), h.DB, cfg, h.Service, h.Hub)

		next, _ := h.IngestStatus.Load().(poll.Status)
		next.Running = false
		next.LastAdded = added
		if err != nil {
			next.LastError = err.Error()
		} else {
			next.LastError = ""
			next.LastOkAt = time.Now().Format(time.RFC3339)
		}
		h.IngestStatus.Store(next)
	}()

	writeJSON(w, map[string]any{"ok": true})
}
