package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"

	"exchangerates/internal/cleaner"
	"exchangerates/internal/config"
	"exchangerates/internal/logger"
)

// cleaner rewrites every historical document to the current disclaimer,
// license, rounding and key order.
func main() {
	var (
		configPath string
		dir        string
		dryRun     bool
		logOn      bool
	)
	flag.StringVar(&configPath, "config", "", "path to a YAML/JSON config file (optional, FX_CONFIG)")
	flag.StringVar(&dir, "dir", "", "directory of snapshot files (default: <output dir>/<historical dir>)")
	flag.BoolVar(&dryRun, "dry-run", false, "report files that would change without writing")
	flag.BoolVar(&logOn, "log", true, "log every rewritten file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.Log.Enabled = logOn
	if dir == "" {
		dir = filepath.Join(cfg.Output.Dir, cfg.Output.HistoricalDir)
	}

	rep, err := cleaner.Dir(dir, cleaner.Options{
		Disclaimer: cfg.Output.Disclaimer,
		License:    cfg.Output.License,
		DryRun:     dryRun,
	}, logger.New(cfg.Log))
	log.Printf("%s: %d files, %d rewritten, %d failed", dir, rep.Files, len(rep.Rewritten), len(rep.Failed))
	if err != nil {
		names := make([]string, 0, len(rep.Failed))
		for name := range rep.Failed {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			log.Printf("  %s: %v", name, rep.Failed[name])
		}
		os.Exit(1)
	}
}
