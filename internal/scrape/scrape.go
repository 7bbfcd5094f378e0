// Package scrape walks a list of fetch targets one request at a time.
package scrape

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"exchangerates/internal/httpx"
	"exchangerates/internal/metrics"
	"exchangerates/internal/provider"
	"exchangerates/internal/ratelimit"
)

// Fetcher performs one body-less request and returns the response body.
type Fetcher interface {
	Fetch(ctx context.Context, method, url string) ([]byte, error)
}

// Stats summarizes one walk over the targets.
type Stats struct {
	Targets   int
	Succeeded int
	Failed    int
	Quotes    int
}

// Sequencer issues requests strictly one at a time and waits the throttle
// interval after every response or failure before the next request.
type Sequencer struct {
	Fetcher  Fetcher
	Provider provider.Provider
	Throttle *ratelimit.MinInterval
	Log      zerolog.Logger
	Metrics  *metrics.Scraper
}

// Run walks targets in order and hands every extracted quote to emit.
// A failed target contributes nothing and the walk moves on. Run only
// stops early when ctx is canceled.
func (s *Sequencer) Run(ctx context.Context, targets []provider.Target, emit func(provider.Quote)) (Stats, error) {
	st := Stats{Targets: len(targets)}
	throttle := s.Throttle
	if throttle == nil {
		throttle = ratelimit.New(0)
	}
	throttle.Reset()
	name := s.Provider.Name()

	for i, t := range targets {
		if err := throttle.Wait(ctx); err != nil {
			return st, err
		}
		log := s.Log.With().Str("code", t.Code).Int("target", i).Logger()

		start := time.Now()
		body, err := s.Fetcher.Fetch(ctx, t.Method, t.URL)
		took := time.Since(start)
		if err != nil {
			throttle.Done()
			st.Failed++
			outcome := metrics.OutcomeTransport
			var se *httpx.StatusError
			if errors.As(err, &se) {
				outcome = metrics.OutcomeStatus
			}
			s.Metrics.ObserveFetch(name, outcome, took)
			if ctx.Err() != nil {
				return st, ctx.Err()
			}
			log.Warn().Err(err).Msg("fetch failed")
			continue
		}

		quotes := s.Provider.Parse(t, body)
		throttle.Done()
		if len(quotes) == 0 {
			st.Failed++
			s.Metrics.ObserveFetch(name, metrics.OutcomeParse, took)
			log.Warn().Int("bytes", len(body)).Msg("no rate in response")
			continue
		}
		st.Succeeded++
		st.Quotes += len(quotes)
		s.Metrics.ObserveFetch(name, metrics.OutcomeOK, took)
		for _, q := range quotes {
			emit(q)
		}
		log.Debug().Int("quotes", len(quotes)).Dur("took", took).Msg("fetched")
	}
	return st, nil
}
