package poll

import (
	"context"
	"database/sql"
	"log"
	"sync/atomic"
	"time"

	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/events"
	emailingest "jobtrack-engine/internal/ingest/email"
)

// Status is the last ingest run's outcome, read by the HTTP layer.
type Status struct {
	Running   bool   `json:"running"`
	LastRunAt string `json:"lastRunAt,omitempty"`
	LastOkAt  string `json:"lastOkAt,omitempty"`
	LastAdded int    `json:"lastAdded"`
	LastError string `json:"lastError,omitempty"`
}

// StartPoller runs the email ingester on the configured cadence. Config is
// reloaded from the atomic.Value every tick, so edits through the API take
// effect without a restart.
func StartPoller(db *sql.DB, cfgVal *atomic.Value, status *atomic.Value, hub *events.Hub, svc emailingest.Extractor) {
	go func() {
		t := time.NewTicker(30 * time.Second)
		defer t.Stop()

		var lastRun time.Time

		for range t.C {
			cfgAny := cfgVal.Load()
			if cfgAny == nil {
				continue
			}
			cfg := cfgAny.(config.Config)

			if !cfg.Email.Enabled {
				continue
			}

			interval := time.Duration(cfg.Polling.EmailSeconds) * time.Second
			if interval <= 0 {
				interval = 5 * time.Minute
			}
			if time.Since(lastRun) < interval {
				continue
			}
			lastRun = time.Now()

			st := loadStatus(status)
			st.Running = true
			st.LastRunAt = time.Now().Format(time.RFC3339)
			status.Store(st)

			added, err := emailingest.RunOnce(context.Background(), db, cfg, svc, hub)

			st = loadStatus(status)
			st.Running = false
			st.LastAdded = added

			if err != nil {
				st.LastError = err.Error()
				log.Printf("[poll] error: %v", err)
			} else {
				st.LastError = ""
				st.LastOkAt = time.Now().Format(time.RFC3339)
				log.Printf("[poll] ok added=%d", added)
			}
			status.Store(st)
		}
	}()
}

func loadStatus(v *atomic.Value) Status {
	if st, ok := v.Load().(Status); ok {
		return st
	}
	return Status{}
}
