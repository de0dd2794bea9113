// Package archive moves old, read messages out of the active inbox into
// yearly archive files and runs the housekeeping schedule.
package archive

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/portfolio"
	"github.com/starford/folio/internal/storage"
)

// DefaultMaxAge is how long a read message stays in the inbox.
const DefaultMaxAge = 30 * 24 * time.Hour

var errNothingToArchive = errors.New("nothing to archive")

// Archiver sweeps the message collection.
type Archiver struct {
	store    storage.Provider
	messages *storage.Collection[models.Message]
	maxAge   time.Duration
}

// NewArchiver creates an archiver over the messages document of store.
// A non-positive maxAge falls back to DefaultMaxAge.
func NewArchiver(store storage.Provider, maxAge time.Duration) *Archiver {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Archiver{
		store:    store,
		messages: storage.NewCollection[models.Message](store, portfolio.MessagesDoc),
		maxAge:   maxAge,
	}
}

// Run archives every read message created before now-maxAge into the archive
// for now's year and returns how many moved. Unread messages always stay.
func (a *Archiver) Run(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-a.maxAge)
	moved := 0

	err := a.messages.Replace(func(items []models.Message) ([]models.Message, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var old, current []models.Message
		for _, m := range items {
			if m.Read && m.CreatedAt.Before(cutoff) {
				old = append(old, m)
			} else {
				current = append(current, m)
			}
		}
		if len(old) == 0 {
			return nil, errNothingToArchive
		}

		archive := portfolio.ArchiveCollection(a.store, now.Year())
		if err := archive.Replace(func(prev []models.Message) ([]models.Message, error) {
			return append(prev, old...), nil
		}); err != nil {
			return nil, err
		}
		moved = len(old)
		return current, nil
	})
	if errors.Is(err, errNothingToArchive) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	slog.Info("messages archived",
		slog.Int("count", moved),
		slog.Int("year", now.Year()),
	)
	return moved, nil
}
