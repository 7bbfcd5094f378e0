// Package snapshot holds the published rates document and its codec.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"exchangerates/internal/aggregate"
)

// DateLayout names historical artifacts.
const DateLayout = "2006-01-02"

// Snapshot is the rates document produced by one cycle. Values are never
// mutated after Build.
type Snapshot struct {
	Disclaimer string          `json:"disclaimer"`
	License    string          `json:"license"`
	Timestamp  int64           `json:"timestamp"`
	Base       string          `json:"base"`
	Rates      aggregate.Rates `json:"rates"`
}

// Time is the snapshot timestamp in UTC.
func (s Snapshot) Time() time.Time { return time.Unix(s.Timestamp, 0).UTC() }

// Date is the UTC calendar date the snapshot belongs to.
func (s Snapshot) Date() string { return s.Time().Format(DateLayout) }

// Builder stamps finalized rates with the process-wide metadata.
type Builder struct {
	Disclaimer string
	License    string
	Now        func() time.Time
}

// Build never fails; an empty rates map still produces a snapshot.
func (b Builder) Build(base string, rates aggregate.Rates) Snapshot {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	cp := make(aggregate.Rates, len(rates))
	copy(cp, rates)
	return Snapshot{
		Disclaimer: b.Disclaimer,
		License:    b.License,
		Timestamp:  now().UTC().Unix(),
		Base:       base,
		Rates:      cp,
	}
}

// Encode renders s tab-indented with a trailing newline.
func Encode(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

func Decode(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}
