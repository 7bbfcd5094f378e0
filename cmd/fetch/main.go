package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"exchangerates/internal/config"
	"exchangerates/internal/cycle"
	"exchangerates/internal/httpx"
	"exchangerates/internal/logger"
	"exchangerates/internal/ratelimit"
	"exchangerates/internal/scrape"
	"exchangerates/internal/snapshot"
)

// fetch runs one collection pass and prints the snapshot. Nothing is
// written or committed.
func main() {
	var (
		configPath    string
		currenciesCSV string
		throttleMS    int
		timeoutSec    int
		logOn         bool
	)
	flag.StringVar(&configPath, "config", "", "path to a YAML/JSON config file (optional, FX_CONFIG)")
	flag.StringVar(&currenciesCSV, "currencies", "", "comma-separated currency codes (default: configured list)")
	flag.IntVar(&throttleMS, "throttle", -1, "milliseconds between requests (-1 = provider default)")
	flag.IntVar(&timeoutSec, "timeout", 600, "overall deadline in seconds")
	flag.BoolVar(&logOn, "log", false, "log progress to stdout")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if codes := splitCSV(currenciesCSV); len(codes) > 0 {
		for i := range codes {
			codes[i] = strings.ToUpper(codes[i])
		}
		cfg.Currencies = codes
	}
	if throttleMS >= 0 {
		cfg.Schedule.ThrottleMS = throttleMS
	}
	cfg.Log.Enabled = logOn
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	p, err := cfg.NewProvider()
	if err != nil {
		log.Fatalf("provider: %v", err)
	}
	lg := logger.New(cfg.Log)

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
		},
		Builder: snapshot.Builder{Disclaimer: cfg.Output.Disclaimer, License: cfg.Output.License},
		Log:     lg,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()

	snap, stats, err := runner.Collect(ctx)
	if err != nil {
		log.Fatalf("collect: %v", err)
	}
	log.Printf("%s: %d/%d targets ok, %d rates", p.Name(), stats.Succeeded, stats.Targets, len(snap.Rates))

	b, err := snapshot.Encode(snap)
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	_, _ = os.Stdout.Write(b)
	if len(snap.Rates) == 0 {
		fmt.Fprintln(os.Stderr, "no rates received")
		os.Exit(1)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
