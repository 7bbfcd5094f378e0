package publish

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"exchangerates/internal/metrics"
	"exchangerates/internal/snapshot"
)

// Options switch the archive side effects on or off.
type Options struct {
	Commit bool
	Push   bool
}

// Publisher persists a snapshot and then, best effort, archives it.
type Publisher struct {
	Store    *Store
	Archiver Archiver
	Options  Options
	Log      zerolog.Logger
	Metrics  *metrics.Scraper
	Now      func() time.Time
}

// CommitMessage embeds the publish time the way the archive history reads.
func CommitMessage(at time.Time) string {
	return fmt.Sprintf("exchange rates as of [%s]", at.UTC().Format(http.TimeFormat))
}

// Publish writes both artifacts. Only when both writes succeed does it
// commit (and then push). Archive failures are logged and swallowed; the
// returned error is the write error, if any.
func (p *Publisher) Publish(ctx context.Context, snap snapshot.Snapshot) error {
	err := p.Store.Write(ctx, snap)
	p.Metrics.ObservePublish(err, snap.Timestamp)
	if err != nil {
		p.Log.Error().Err(err).Msg("snapshot write failed; skipping commit")
		return err
	}
	p.Log.Info().
		Str("latest", p.Store.LatestPath()).
		Str("historical", p.Store.HistoricalPath(snap.Date())).
		Int("rates", len(snap.Rates)).
		Msg("snapshot written")

	if !p.Options.Commit || p.Archiver == nil {
		return nil
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	if err := p.Archiver.Commit(ctx, p.Store.Dir, CommitMessage(now())); err != nil {
		p.Metrics.ObserveArchive("commit", err)
		p.Log.Warn().Err(err).Msg("commit failed")
		return nil
	}
	p.Metrics.ObserveArchive("commit", nil)

	if !p.Options.Push {
		return nil
	}
	err = p.Archiver.Push(ctx)
	p.Metrics.ObserveArchive("push", err)
	if err != nil {
		p.Log.Warn().Err(err).Msg("push failed")
	}
	return nil
}
