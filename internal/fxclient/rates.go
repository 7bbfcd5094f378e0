package fxclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"exchangerates/internal/httpx"
	"exchangerates/internal/snapshot"
)

const flightTimeout = 30 * time.Second

var (
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrNotFound        = errors.New("document not found")
	ErrBaseMismatch    = errors.New("unexpected base currency")
)

// Latest returns the most recent snapshot.
func (c *Client) Latest(ctx context.Context) (snapshot.Snapshot, error) {
	return c.document(ctx, c.baseURL+"/latest.json")
}

// Historical returns the last snapshot written on the UTC day of date.
func (c *Client) Historical(ctx context.Context, date time.Time) (snapshot.Snapshot, error) {
	day := date.UTC().Format(snapshot.DateLayout)
	return c.document(ctx, c.baseURL+"/historical/"+day+".json")
}

// Rate returns one currency's rate against the base. A nil date reads the
// latest snapshot.
func (c *Client) Rate(ctx context.Context, code string, date *time.Time) (float64, error) {
	var (
		snap snapshot.Snapshot
		err  error
	)
	if date == nil {
		snap, err = c.Latest(ctx)
	} else {
		snap, err = c.Historical(ctx, *date)
	}
	if err != nil {
		return 0, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	v, ok := snap.Rates.Get(code)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return v, nil
}

// ParseDate accepts YYMMDD (20YY) and YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	switch len(s) {
	case 6:
		return time.Parse("20060102", "20"+s)
	case len(snapshot.DateLayout):
		return time.Parse(snapshot.DateLayout, s)
	}
	return time.Time{}, fmt.Errorf("date %q: want YYMMDD or YYYY-MM-DD", s)
}

// document coalesces concurrent reads of url. The shared fetch runs
// detached from any one caller, bounded by flightTimeout; each caller stops
// waiting when its own ctx ends.
func (c *Client) document(ctx context.Context, url string) (snapshot.Snapshot, error) {
	ch := c.flight.DoChan(url, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()
		return c.fetch(fctx, url)
	})
	select {
	case <-ctx.Done():
		return snapshot.Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return snapshot.Snapshot{}, res.Err
		}
		snap := res.Val.(snapshot.Snapshot)
		snap.Rates = slices.Clone(snap.Rates)
		return snap, nil
	}
}

func (c *Client) fetch(ctx context.Context, url string) (snapshot.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusNotFound:
		return snapshot.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, url)

	case http.StatusTooManyRequests:
		return snapshot.Snapshot{}, fmt.Errorf("rate limited")

	default:
		return snapshot.Snapshot{}, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, httpx.MaxBody))
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("reading body: %w", err)
	}
	snap, err := snapshot.Decode(b)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("decoding %s: %w", url, err)
	}
	if snap.Base != c.base {
		return snapshot.Snapshot{}, fmt.Errorf("%w: got %q, want %q", ErrBaseMismatch, snap.Base, c.base)
	}
	return snap, nil
}
