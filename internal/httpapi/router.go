package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Extraction
	xh := ExtractHandler{Service: d.Service, Hub: d.Hub}
	mux.HandleFunc("/extract", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: xh.FromURL,
	}))
	mux.HandleFunc("/extract/email", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: xh.FromEmail,
	}))
	mux.HandleFunc("/extract/ensemble", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: xh.Ensemble,
	}))
	mux.HandleFunc("/extract/cache", methodMux(map[string]http.HandlerFunc{
		http.MethodDelete: xh.ClearCache,
	}))

	// Feedback + learning
	fh := FeedbackHandler{Service: d.Service, Hub: d.Hub}
	mux.HandleFunc("/feedback", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: fh.Record,
	}))
	mux.HandleFunc("/insights/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: fh.Insights, // expects /insights/{domain}
	}))
	mux.HandleFunc("/patterns/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: fh.Patterns, // expects /patterns/{domain}
	}))

	// Saved extractions
	rh := ExtractionsHandler{DB: d.DB, Hub: d.Hub}
	mux.HandleFunc("/extractions", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  rh.List,
		http.MethodPost: rh.Create,
	}))
	mux.HandleFunc("/extractions/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    rh.GetByPath, // expects /extractions/{id}
		http.MethodPut:    rh.UpdateByPath,
		http.MethodDelete: rh.DeleteByPath,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetIMAPPassword,
	}))
	mux.HandleFunc("/api/secrets/search", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetSearchAPIKey,
	}))

	// Email ingest
	ih := IngestHandler{
		DB:           d.DB,
		CfgVal:       d.CfgVal,
		IngestStatus: d.IngestStatus,
		Hub:          d.Hub,
		Service:      d.Service,
		RunIngest:    d.RunIngest,
	}
	mux.HandleFunc("/ingest/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ih.Status,
	}))
	mux.HandleFunc("/ingest/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ih.Run,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Misc
	mux.HandleFunc("/health", HealthHandler{}.Health)
	mux.HandleFunc("/db/checkpoint", DBHandler{DB: d.DB}.Checkpoint)

	return mux
}
