package publish_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"exchangerates/internal/aggregate"
	"exchangerates/internal/publish"
)

var publishedAt = time.Date(2011, 10, 9, 14, 3, 0, 0, time.UTC)

func newPublisher(t *testing.T, archiver publish.Archiver, opts publish.Options) *publish.Publisher {
	t.Helper()
	store := publish.NewStore(t.TempDir())
	require.NoError(t, store.Prepare())
	return &publish.Publisher{
		Store:    store,
		Archiver: archiver,
		Options:  opts,
		Log:      zerolog.Nop(),
		Now:      func() time.Time { return publishedAt },
	}
}

func TestCommitMessage(t *testing.T) {
	t.Parallel()
	require.Equal(t, "exchange rates as of [Sun, 09 Oct 2011 14:03:00 GMT]", publish.CommitMessage(publishedAt))
}

func TestPublish_CommitAndPush(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	archiver := NewMockArchiver(ctrl)
	p := newPublisher(t, archiver, publish.Options{Commit: true, Push: true})

	// Assert: commit across the output dir, then push
	gomock.InOrder(
		archiver.EXPECT().Commit(gomock.Any(), p.Store.Dir, publish.CommitMessage(publishedAt)).Return(nil).Times(1),
		archiver.EXPECT().Push(gomock.Any()).Return(nil).Times(1),
	)

	// Act
	require.NoError(t, p.Publish(t.Context(), snapAt(publishedAt, aggregate.Rates{{Code: "USD", Value: 1}})))
}

func TestPublish_NoCommit(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	archiver := NewMockArchiver(ctrl)
	archiver.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	archiver.EXPECT().Push(gomock.Any()).Times(0)

	p := newPublisher(t, archiver, publish.Options{Commit: false, Push: true})
	require.NoError(t, p.Publish(t.Context(), snapAt(publishedAt, nil)))
}

func TestPublish_CommitWithoutPush(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	archiver := NewMockArchiver(ctrl)
	archiver.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)
	archiver.EXPECT().Push(gomock.Any()).Times(0)

	p := newPublisher(t, archiver, publish.Options{Commit: true, Push: false})
	require.NoError(t, p.Publish(t.Context(), snapAt(publishedAt, nil)))
}

func TestPublish_CommitFailureIsSwallowedAndSkipsPush(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	archiver := NewMockArchiver(ctrl)
	archiver.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("nothing to commit")).Times(1)
	archiver.EXPECT().Push(gomock.Any()).Times(0)

	p := newPublisher(t, archiver, publish.Options{Commit: true, Push: true})
	require.NoError(t, p.Publish(t.Context(), snapAt(publishedAt, nil)))
}

func TestPublish_PushFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	archiver := NewMockArchiver(ctrl)
	archiver.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)
	archiver.EXPECT().Push(gomock.Any()).Return(errors.New("rejected")).Times(1)

	p := newPublisher(t, archiver, publish.Options{Commit: true, Push: true})
	require.NoError(t, p.Publish(t.Context(), snapAt(publishedAt, nil)))
}

func TestPublish_WriteFailureSkipsCommit(t *testing.T) {
	t.Parallel()

	// Arrange: a store whose historical dir is a regular file
	ctrl := gomock.NewController(t)
	archiver := NewMockArchiver(ctrl)
	archiver.EXPECT().Commit(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	archiver.EXPECT().Push(gomock.Any()).Times(0)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "historical"), []byte("x"), 0o644))
	p := &publish.Publisher{
		Store:    publish.NewStore(dir),
		Archiver: archiver,
		Options:  publish.Options{Commit: true, Push: true},
		Log:      zerolog.Nop(),
	}

	// Act + Assert
	require.Error(t, p.Publish(t.Context(), snapAt(publishedAt, nil)))
}
