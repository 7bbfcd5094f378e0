package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRun_FirstRunIsImmediate(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	s := &Scheduler{Interval: time.Hour, Log: zerolog.Nop()}

	var runs int32
	done := make(chan error, 1)
	start := time.Now()
	go func() {
		done <- s.Run(ctx, func(context.Context) error {
			atomic.AddInt32(&runs, 1)
			cancel()
			return nil
		})
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&runs))
	require.Less(t, time.Since(start), time.Second)
}

func TestRun_SleepsFromCompletionAndNeverOverlaps(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	var waits []time.Duration
	ticks := make(chan time.Time)
	s := &Scheduler{
		Interval: 42 * time.Millisecond,
		Log:      zerolog.Nop(),
		After: func(d time.Duration) <-chan time.Time {
			waits = append(waits, d)
			return ticks
		},
	}

	var active, overlapped, runs int32
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(context.Context) error {
			if atomic.AddInt32(&active, 1) > 1 {
				atomic.StoreInt32(&overlapped, 1)
			}
			defer atomic.AddInt32(&active, -1)
			if atomic.AddInt32(&runs, 1) == 3 {
				cancel()
			}
			return errors.New("degraded")
		})
	}()

	// release two idle periods; the third run cancels
	for i := 0; i < 2; i++ {
		select {
		case ticks <- time.Now():
		case <-time.After(2 * time.Second):
			t.Fatal("scheduler never went idle")
		}
	}

	require.ErrorIs(t, <-done, context.Canceled)
	require.Equal(t, int32(3), atomic.LoadInt32(&runs))
	require.Zero(t, atomic.LoadInt32(&overlapped))
	require.Len(t, waits, 3)
	for _, w := range waits {
		require.Equal(t, 42*time.Millisecond, w)
	}
}

func TestRun_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	called := false
	err := (&Scheduler{}).Run(ctx, func(context.Context) error { called = true; return nil })
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)
}
