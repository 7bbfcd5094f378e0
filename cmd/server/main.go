package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"exchangerates/internal/config"
	"exchangerates/internal/logger"
	"exchangerates/internal/publish"
	"exchangerates/internal/server"
)

// server exposes an output directory written by the scraper.
func main() {
	var configPath, addr string
	flag.StringVar(&configPath, "config", "", "path to a YAML/JSON config file (optional, FX_CONFIG)")
	flag.StringVar(&addr, "listen", "", "listen address (default FX_LISTEN or :8080)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if addr == "" {
		addr = ":8080"
	}
	lg := logger.New(cfg.Log)

	store := &publish.Store{Dir: cfg.Output.Dir, LatestName: cfg.Output.LatestName, HistoricalDir: cfg.Output.HistoricalDir}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv := server.NewServer(addr, server.Handler(store, reg, lg))

	go func() {
		lg.Info().Str("addr", addr).Str("dir", store.Dir).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
