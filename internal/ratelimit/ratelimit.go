package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MinInterval enforces a minimum gap between the end of one request and the
// start of the next. Callers bracket each request with Wait and Done.
type MinInterval struct {
	Interval time.Duration
	// Now and After default to the time package; tests swap them out.
	Now   func() time.Time
	After func(time.Duration) <-chan time.Time

	mu   sync.Mutex
	last time.Time
}

func New(interval time.Duration) *MinInterval {
	if interval < 0 {
		interval = 0
	}
	return &MinInterval{Interval: interval}
}

func (m *MinInterval) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Wait blocks until Interval has elapsed since the last Done, or returns
// early if the context is canceled.
func (m *MinInterval) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Interval <= 0 {
		return nil
	}
	m.mu.Lock()
	last := m.last
	m.mu.Unlock()
	if last.IsZero() {
		return nil
	}
	wait := last.Add(m.Interval).Sub(m.now())
	if wait <= 0 {
		return nil
	}
	var ch <-chan time.Time
	if m.After != nil {
		ch = m.After(wait)
	} else {
		t := time.NewTimer(wait)
		defer t.Stop()
		ch = t.C
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

// Done marks the end of a request's handling, successful or not.
func (m *MinInterval) Done() {
	m.mu.Lock()
	m.last = m.now()
	m.mu.Unlock()
}

// Reset forgets the last request so the next Wait returns immediately.
func (m *MinInterval) Reset() {
	m.mu.Lock()
	m.last = time.Time{}
	m.mu.Unlock()
}
