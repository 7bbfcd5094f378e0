// Package cleaner rewrites historical snapshot files under the same rules
// freshly scraped snapshots follow. A file with no usable rates keeps an
// empty rates map, matching what a cycle writes when every fetch fails;
// the base rate is not injected into it.
package cleaner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"exchangerates/internal/aggregate"
	"exchangerates/internal/publish"
	"exchangerates/internal/snapshot"
)

type Options struct {
	Disclaimer string
	License    string
	// DryRun reports what would change without writing.
	DryRun bool
}

// Report summarizes a directory pass.
type Report struct {
	Files     int
	Rewritten []string
	Failed    map[string]error
}

// document is the lenient on-disk shape: older files carry rates as
// strings or zero-padded numbers.
type document struct {
	Disclaimer string                     `json:"disclaimer"`
	License    string                     `json:"license"`
	Timestamp  json.Number                `json:"timestamp"`
	Base       string                     `json:"base"`
	Rates      map[string]json.RawMessage `json:"rates"`
}

// Clean normalizes one encoded snapshot.
func Clean(b []byte, opts Options) ([]byte, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	base := strings.ToUpper(strings.TrimSpace(doc.Base))
	if !aggregate.ValidCode(base) {
		return nil, fmt.Errorf("invalid base %q", doc.Base)
	}
	ts, err := timestamp(doc.Timestamp)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]float64, len(doc.Rates))
	for code, v := range doc.Rates {
		f, ok := lenientFloat(v)
		if !ok || !aggregate.Valid(f) {
			continue
		}
		raw[strings.ToUpper(code)] = f
	}

	// Same rule as a cycle where every fetch failed: no lone base rate.
	rates := aggregate.Rates{}
	if len(raw) > 0 {
		rates = aggregate.Normalize(raw, base)
	}
	return snapshot.Encode(snapshot.Snapshot{
		Disclaimer: opts.Disclaimer,
		License:    opts.License,
		Timestamp:  ts,
		Base:       base,
		Rates:      rates,
	})
}

func timestamp(n json.Number) (int64, error) {
	if n == "" {
		return 0, errors.New("missing timestamp")
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("timestamp: %w", err)
	}
	return int64(f), nil
}

// lenientFloat reads a number or a numeric string.
func lenientFloat(raw json.RawMessage) (float64, bool) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	var s string
	switch x := v.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Dir cleans every *.json file in dir. A bad file is recorded in the
// report and the pass moves on.
func Dir(dir string, opts Options, log zerolog.Logger) (Report, error) {
	rep := Report{Failed: map[string]error{}}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return rep, fmt.Errorf("read dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		rep.Files++
		p := filepath.Join(dir, name)
		changed, err := File(p, opts)
		if err != nil {
			rep.Failed[name] = err
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			log.Warn().Err(err).Str("file", name).Msg("clean failed")
			continue
		}
		if changed {
			rep.Rewritten = append(rep.Rewritten, name)
			log.Info().Str("file", name).Bool("dry_run", opts.DryRun).Msg("rewritten")
		}
	}
	return rep, errors.Join(errs...)
}

// File cleans one file in place and reports whether its bytes changed.
func File(path string, opts Options) (bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	out, err := Clean(b, opts)
	if err != nil {
		return false, err
	}
	if bytes.Equal(b, out) {
		return false, nil
	}
	if opts.DryRun {
		return true, nil
	}
	return true, publish.WriteFileAtomic(path, out, 0o644)
}
