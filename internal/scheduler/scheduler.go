package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler runs a job immediately and then again Interval after each run
// completes. Runs never overlap: the wait starts when a run returns.
type Scheduler struct {
	Interval time.Duration
	Log      zerolog.Logger
	// After defaults to time.After; tests replace it.
	After func(time.Duration) <-chan time.Time
}

// Run loops until ctx is canceled and then returns ctx.Err(). Job errors
// are logged; they never stop the loop.
func (s *Scheduler) Run(ctx context.Context, job func(context.Context) error) error {
	after := s.After
	if after == nil {
		after = time.After
	}
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := job(ctx); err != nil && ctx.Err() == nil {
			s.Log.Error().Err(err).Int("run", n).Msg("scheduled run failed")
		}
		s.Log.Debug().Dur("sleep", s.Interval).Msg("idle")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-after(s.Interval):
		}
	}
}
