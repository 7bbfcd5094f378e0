package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"exchangerates/internal/snapshot"
)

// Store writes snapshots to a fixed latest file and to one file per UTC day.
type Store struct {
	Dir           string
	LatestName    string
	HistoricalDir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir, LatestName: "latest.json", HistoricalDir: "historical"}
}

func (s *Store) LatestPath() string { return filepath.Join(s.Dir, s.LatestName) }

func (s *Store) HistoricalRoot() string { return filepath.Join(s.Dir, s.HistoricalDir) }

// HistoricalPath is the artifact path for a YYYY-MM-DD date.
func (s *Store) HistoricalPath(date string) string {
	return filepath.Join(s.HistoricalRoot(), date+".json")
}

// Prepare creates the output layout and checks that it is writable.
func (s *Store) Prepare() error {
	if err := os.MkdirAll(s.HistoricalRoot(), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, dir := range []string{s.Dir, s.HistoricalRoot()} {
		f, err := os.CreateTemp(dir, ".probe-*")
		if err != nil {
			return fmt.Errorf("output dir %s not writable: %w", dir, err)
		}
		name := f.Name()
		_ = f.Close()
		_ = os.Remove(name)
	}
	return nil
}

// Write encodes snap once and writes both artifacts concurrently. Both
// writes are always attempted; the error joins whichever failed.
func (s *Store) Write(ctx context.Context, snap snapshot.Snapshot) error {
	b, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}
	paths := []string{s.LatestPath(), s.HistoricalPath(snap.Date())}
	errs := make([]error, len(paths))

	var g errgroup.Group
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return err
			}
			errs[i] = WriteFileAtomic(p, b, 0o644)
			return errs[i]
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// WriteFileAtomic replaces path with data via a temp file and rename, so
// readers see either the old or the new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmp := f.Name()
	cleanup := func(err error) error {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		return cleanup(err)
	}
	if err := f.Sync(); err != nil {
		return cleanup(err)
	}
	if err := f.Chmod(perm); err != nil {
		return cleanup(err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
