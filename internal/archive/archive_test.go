package archive

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/portfolio"
	"github.com/starford/folio/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func msg(id string, created time.Time, read bool) models.Message {
	return models.Message{
		Meta:    models.Meta{ID: id, CreatedAt: created, UpdatedAt: created},
		Name:    "n",
		Email:   "n@example.com",
		Message: "m",
		Read:    read,
	}
}

func TestRunMovesOldReadMessages(t *testing.T) {
	_, store := testutil.TestStore(t)
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	inbox := portfolio.NewMessages(store, nil, nil).Collection()

	require.NoError(t, inbox.Insert(msg("old-read", now.AddDate(0, 0, -31), true)))
	require.NoError(t, inbox.Insert(msg("old-unread", now.AddDate(0, 0, -31), false)))
	require.NoError(t, inbox.Insert(msg("new-read", now.AddDate(0, 0, -2), true)))

	n, err := NewArchiver(store, 0).Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	active, err := inbox.List()
	require.NoError(t, err)
	ids := []string{}
	for _, m := range active {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []string{"old-unread", "new-read"}, ids)

	archived, err := portfolio.ArchiveCollection(store, 2025).List()
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "old-read", archived[0].ID)
}

func TestRunAppendsToExistingArchive(t *testing.T) {
	_, store := testutil.TestStore(t)
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, portfolio.ArchiveCollection(store, 2025).Insert(msg("earlier", now.AddDate(0, -3, 0), true)))
	inbox := portfolio.NewMessages(store, nil, nil).Collection()
	require.NoError(t, inbox.Insert(msg("later", now.AddDate(0, -2, 0), true)))

	_, err := NewArchiver(store, 0).Run(context.Background(), now)
	require.NoError(t, err)

	archived, err := portfolio.ArchiveCollection(store, 2025).List()
	require.NoError(t, err)
	assert.Len(t, archived, 2)
}

func TestRunNothingToArchiveWritesNothing(t *testing.T) {
	dir, store := testutil.TestStore(t)
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	inbox := portfolio.NewMessages(store, nil, nil).Collection()
	require.NoError(t, inbox.Insert(msg("fresh", now, true)))

	path := filepath.Join(dir, "messages.json")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	n, err := NewArchiver(store, 0).Run(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, n)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, err = os.Stat(filepath.Join(dir, "message-archive-2025.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler()
	err := s.Add("not a schedule", "bad", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestSchedulerRunStops(t *testing.T) {
	s := NewScheduler()
	var ran atomic.Int32
	require.NoError(t, s.Add("@every 1s", "tick", func(context.Context) error {
		ran.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return ran.Load() > 0 }, 3*time.Second, 20*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
