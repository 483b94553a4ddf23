package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/extract"
	"jobtrack-engine/internal/extract/confidence"
	"jobtrack-engine/internal/extract/fetch"
	"jobtrack-engine/internal/httpapi"
	emailingest "jobtrack-engine/internal/ingest/email"
	"jobtrack-engine/internal/learn"
	"jobtrack-engine/internal/poll"
	"jobtrack-engine/internal/searchapi"
	"jobtrack-engine/internal/secrets"
	"jobtrack-engine/internal/store"
)

func main() {
	// Engine data dir: use env if provided (the desktop shell passes one),
	// else a local folder.
	dataDir := os.Getenv("JOBTRACK_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// one engine per data dir; a second instance would fight over sqlite
	unlock, err := acquireInstanceLock(dataDir)
	if err != nil {
		log.Fatalf("another engine instance owns %s: %v", dataDir, err)
	}
	defer unlock()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		if err := config.OverlayProxies(&cfg, filepath.Join(dataDir, "proxies.yml")); err != nil {
			return cfg, err
		}
		normalized, vr := config.NormalizeAndValidate(cfg)
		for _, w := range vr.Warnings {
			log.Printf("[config] warning: %s", w)
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "jobtrack.db")
	sdb, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sdb.Close()
	db := sdb.Pool

	if err := store.Migrate(db); err != nil {
		log.Fatal(err)
	}
	if n, err := store.CleanupOldExtractions(db); err != nil {
		log.Printf("[store] cleanup err=%v", err)
	} else if n > 0 {
		log.Printf("[store] cleanup deleted=%d", n)
	}

	learner := learn.NewStore(db)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	if err := learner.Load(loadCtx); err != nil {
		log.Printf("[learn] load err=%v", err)
	}
	cancelLoad()

	fetcher := fetch.New(
		cfg.Fetch.Proxies,
		time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second,
		fetch.NewHostLimiter(cfg.Fetch.RatePerHost, 2),
	)
	search := searchapi.New(secrets.GetSearchAPIKey(cfg))

	svc := extract.NewService(fetcher, search, searchapi.QueryFromURL, confidence.NewScorer(), learner)

	hub := events.NewHub()

	var ingestStatus atomic.Value
	ingestStatus.Store(poll.Status{})
	poll.StartPoller(db, &cfgVal, &ingestStatus, hub, svc)

	mux := httpapi.NewMux(httpapi.Deps{
		DB:           db,
		Hub:          hub,
		Service:      svc,
		CfgVal:       &cfgVal,
		IngestStatus: &ingestStatus,
		UserCfgPath:  userCfgPath,
		LoadCfg:      loadCfg,
		RunIngest:    emailingest.RunOnce,
	})

	handler := httpapi.Chain(mux, httpapi.Cors, httpapi.RequestID, httpapi.Recover, httpapi.AccessLog)

	port := cfg.App.Port
	if port == 0 {
		port = 38471
	}
	addr := net.JoinHostPort("127.0.0.1", itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// /shutdown needs the server handle, so it hangs off the mux here
	token, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)
	log.Printf("shutdown token: %s", token)

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown err=%v", err)
	}
}
