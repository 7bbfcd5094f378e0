// Package cycle runs one fetch, normalize, aggregate, build and publish pass.
package cycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"exchangerates/internal/aggregate"
	"exchangerates/internal/metrics"
	"exchangerates/internal/provider"
	"exchangerates/internal/scrape"
	"exchangerates/internal/snapshot"
)

// Publisher persists a finished snapshot.
type Publisher interface {
	Publish(ctx context.Context, snap snapshot.Snapshot) error
}

// Runner owns the configuration of a cycle. All per-cycle state (targets,
// aggregator, snapshot) lives on the stack of Collect and Run.
type Runner struct {
	Base       string
	Currencies []string
	Provider   provider.Provider
	Sequencer  *scrape.Sequencer
	Builder    snapshot.Builder
	Publisher  Publisher
	Log        zerolog.Logger
	Metrics    *metrics.Scraper
}

// Result describes a finished cycle.
type Result struct {
	ID         string
	Snapshot   snapshot.Snapshot
	Stats      scrape.Stats
	PublishErr error
	Took       time.Duration
}

// Collect fetches every target and builds a snapshot without publishing it.
func (r *Runner) Collect(ctx context.Context) (snapshot.Snapshot, scrape.Stats, error) {
	return r.collect(ctx, r.Log)
}

func (r *Runner) collect(ctx context.Context, log zerolog.Logger) (snapshot.Snapshot, scrape.Stats, error) {
	targets := r.Provider.Targets(r.Base, r.Currencies)
	agg := aggregate.New(r.Base)

	seq := *r.Sequencer
	seq.Log = log
	stats, err := seq.Run(ctx, targets, func(q provider.Quote) {
		if err := agg.Add(q.Code, q.Rate); err != nil {
			log.Warn().Err(err).Msg("rate dropped")
		}
	})
	if err != nil {
		return snapshot.Snapshot{}, stats, err
	}
	return r.Builder.Build(agg.Base(), agg.Finalize()), stats, nil
}

// Run performs one full cycle. A degraded cycle (failed targets, failed
// write) is not an error; only cancellation of ctx is.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{ID: uuid.NewString()}
	log := r.Log.With().Str("cycle", res.ID).Str("provider", r.Provider.Name()).Logger()
	log.Info().Str("base", r.Base).Int("currencies", len(r.Currencies)).Msg("cycle started")

	snap, stats, err := r.collect(ctx, log)
	res.Stats = stats
	if err != nil {
		log.Warn().Err(err).Msg("cycle interrupted")
		return res, err
	}
	res.Snapshot = snap
	res.PublishErr = r.Publisher.Publish(ctx, snap)

	res.Took = time.Since(start)
	r.Metrics.ObserveCycle(res.Took, len(snap.Rates))
	log.Info().
		Int("targets", stats.Targets).
		Int("failed", stats.Failed).
		Int("rates", len(snap.Rates)).
		Bool("published", res.PublishErr == nil).
		Dur("took", res.Took).
		Msg("cycle finished")
	return res, nil
}
