package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMinInterval_FirstWaitIsImmediate(t *testing.T) {
	m := New(time.Hour)
	start := time.Now()
	if err := m.Wait(t.Context()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("first wait should not block")
	}
}

func TestMinInterval_WaitsRemainderAfterDone(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	var asked time.Duration
	m := New(time.Second)
	m.Now = func() time.Time { return now }
	m.After = func(d time.Duration) <-chan time.Time {
		asked = d
		ch := make(chan time.Time, 1)
		ch <- now.Add(d)
		return ch
	}

	m.Done()
	now = now.Add(300 * time.Millisecond)
	if err := m.Wait(t.Context()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if asked != 700*time.Millisecond {
		t.Fatalf("want 700ms wait, got %v", asked)
	}

	asked = 0
	now = now.Add(2 * time.Second)
	if err := m.Wait(t.Context()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if asked != 0 {
		t.Fatalf("interval already elapsed, but waited %v", asked)
	}
}

func TestMinInterval_ZeroNeverBlocks(t *testing.T) {
	m := New(-time.Second)
	m.Done()
	if err := m.Wait(t.Context()); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestMinInterval_ContextCanceled(t *testing.T) {
	m := New(time.Hour)
	m.Done()
	ctx, cancel := context.WithCancel(t.Context())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if err := m.Wait(ctx); err == nil {
		t.Fatal("want context error")
	}
}

func TestMinInterval_Reset(t *testing.T) {
	m := New(time.Hour)
	m.Done()
	m.Reset()
	if err := m.Wait(t.Context()); err != nil {
		t.Fatalf("wait: %v", err)
	}
}
