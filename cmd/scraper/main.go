package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"exchangerates/internal/config"
	"exchangerates/internal/cycle"
	"exchangerates/internal/httpx"
	"exchangerates/internal/logger"
	"exchangerates/internal/metrics"
	"exchangerates/internal/publish"
	"exchangerates/internal/ratelimit"
	"exchangerates/internal/scheduler"
	"exchangerates/internal/scrape"
	"exchangerates/internal/server"
	"exchangerates/internal/snapshot"
)

func main() {
	var (
		configPath string
		sleepMS    int
		throttleMS int
		noCommit   bool
		noPush     bool
		logOn      bool
		listen     string
	)
	flag.StringVar(&configPath, "config", "", "path to a YAML/JSON config file (optional, FX_CONFIG)")
	flag.IntVar(&sleepMS, "sleep", 3600000, "milliseconds to wait after a cycle before the next one")
	flag.IntVar(&throttleMS, "throttle", -1, "milliseconds between requests (-1 = provider default)")
	flag.BoolVar(&noCommit, "nocommit", false, "do not commit snapshots to the archive")
	flag.BoolVar(&noPush, "nopush", false, "commit but do not push")
	flag.BoolVar(&logOn, "log", false, "enable logging")
	flag.StringVar(&listen, "listen", "", "serve artifacts and metrics on this address (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// Flags win over file and env, but only when given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sleep":
			cfg.Schedule.SleepMS = sleepMS
		case "throttle":
			cfg.Schedule.ThrottleMS = throttleMS
		case "nocommit":
			cfg.Archive.NoCommit = noCommit
		case "nopush":
			cfg.Archive.NoPush = noPush
		case "log":
			cfg.Log.Enabled = logOn
		case "listen":
			cfg.Server.Addr = listen
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	lg := logger.New(cfg.Log)
	p, err := cfg.NewProvider()
	if err != nil {
		log.Fatalf("provider: %v", err)
	}

	store := &publish.Store{Dir: cfg.Output.Dir, LatestName: cfg.Output.LatestName, HistoricalDir: cfg.Output.HistoricalDir}
	if err := store.Prepare(); err != nil {
		log.Fatalf("output: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	httpClient := httpx.New(cfg.RequestTimeout())
	if cfg.Provider.UserAgent != "" {
		httpClient.UserAgent = cfg.Provider.UserAgent
	}

	runner := &cycle.Runner{
		Base:       cfg.Base,
		Currencies: cfg.Currencies,
		Provider:   p,
		Sequencer: &scrape.Sequencer{
			Fetcher:  httpClient,
			Provider: p,
			Throttle: ratelimit.New(cfg.Throttle()),
			Metrics:  m,
		},
		Builder: snapshot.Builder{Disclaimer: cfg.Output.Disclaimer, License: cfg.Output.License},
		Publisher: &publish.Publisher{
			Store:    store,
			Archiver: &publish.Git{Dir: store.Dir, Remote: cfg.Archive.Remote, Branch: cfg.Archive.Branch},
			Options:  publish.Options{Commit: cfg.Commit(), Push: cfg.Push()},
			Log:      lg,
			Metrics:  m,
		},
		Log:     lg,
		Metrics: m,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Addr != "" {
		srv := server.NewServer(cfg.Server.Addr, server.Handler(store, reg, lg))
		go serve(srv, lg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	lg.Info().
		Str("provider", p.Name()).
		Str("base", cfg.Base).
		Int("currencies", len(cfg.Currencies)).
		Dur("sleep", cfg.Sleep()).
		Dur("throttle", cfg.Throttle()).
		Bool("commit", cfg.Commit()).
		Bool("push", cfg.Push()).
		Msg("scraper starting")

	sched := &scheduler.Scheduler{Interval: cfg.Sleep(), Log: lg}
	err = sched.Run(ctx, func(ctx context.Context) error {
		_, err := runner.Run(ctx)
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		lg.Error().Err(err).Msg("scheduler stopped")
		os.Exit(1)
	}
	lg.Info().Msg("scraper stopped")
}

func serve(srv *http.Server, lg zerolog.Logger) {
	lg.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server: %v", err)
	}
}
