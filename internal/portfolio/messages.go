package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
)

// Notifier delivers new-message notifications to the site owner.
type Notifier interface {
	NotifyNewMessage(ctx context.Context, msg *models.Message) error
}

// MessagePatch is the public input of the contact form.
type MessagePatch struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Company         *string `json:"company"`
	Phone           *string `json:"phone"`
	Subject         *string `json:"subject"`
	ProjectType     *string `json:"projectType"`
	Timeline        *string `json:"timeline"`
	Budget          *string `json:"budget"`
	ProjectPriority *string `json:"projectPriority"`
	Requirements    *string `json:"requirements"`
	Message         *string `json:"message"`
}

// Apply merges the set fields into m, trimming surrounding whitespace.
func (in MessagePatch) Apply(m *models.Message) {
	setTrim(&m.Name, in.Name)
	setTrim(&m.Email, in.Email)
	setTrim(&m.Company, in.Company)
	setTrim(&m.Phone, in.Phone)
	setTrim(&m.Subject, in.Subject)
	setTrim(&m.ProjectType, in.ProjectType)
	setTrim(&m.Timeline, in.Timeline)
	setTrim(&m.Budget, in.Budget)
	setTrim(&m.ProjectPriority, in.ProjectPriority)
	setTrim(&m.Requirements, in.Requirements)
	setTrim(&m.Message, in.Message)
}

func setTrim(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// Messages manages the contact inbox and its yearly archives.
type Messages struct {
	store  storage.Provider
	col    *storage.Collection[models.Message]
	notify Notifier
	events Publisher
	now    func() time.Time
}

// NewMessages creates the inbox service. notify may be nil.
func NewMessages(store storage.Provider, notify Notifier, events Publisher) *Messages {
	if events == nil {
		events = nopPublisher{}
	}
	return &Messages{
		store:  store,
		col:    storage.NewCollection[models.Message](store, MessagesDoc),
		notify: notify,
		events: events,
		now:    time.Now,
	}
}

// Collection exposes the underlying message collection.
func (s *Messages) Collection() *storage.Collection[models.Message] {
	return s.col
}

func (s *Messages) build(p MessagePatch) (models.Message, error) {
	var m models.Message
	p.Apply(&m)
	if err := apperr.FromValidation(m.Validate()); err != nil {
		return m, err
	}
	now := s.now().UTC()
	m.ID = storage.NewID()
	m.CreatedAt, m.UpdatedAt = now, now
	return m, nil
}

// Contact handles the contact form: the owner is mailed first and the
// message is stored only once delivery succeeded.
func (s *Messages) Contact(ctx context.Context, p MessagePatch) (models.Message, error) {
	m, err := s.build(p)
	if err != nil {
		return m, err
	}
	if s.notify != nil {
		if err := s.notify.NotifyNewMessage(ctx, &m); err != nil {
			return m, fmt.Errorf("%w: %w", apperr.ErrUpstream, err)
		}
	}
	if err := s.col.Insert(m); err != nil {
		return m, err
	}
	s.published("message.created", m.ID)
	return m, nil
}

// Create stores the message and then notifies the owner. A failed
// notification is returned but the message stays stored.
func (s *Messages) Create(ctx context.Context, p MessagePatch) (models.Message, error) {
	m, err := s.build(p)
	if err != nil {
		return m, err
	}
	if err := s.col.Insert(m); err != nil {
		return m, err
	}
	s.published("message.created", m.ID)
	if s.notify != nil {
		if err := s.notify.NotifyNewMessage(ctx, &m); err != nil {
			slog.Error("notify new message",
				slog.String("id", m.ID),
				slog.String("error", err.Error()),
			)
			return m, fmt.Errorf("%w: %w", apperr.ErrUpstream, err)
		}
	}
	return m, nil
}

// List returns active messages, newest first.
func (s *Messages) List(_ context.Context) ([]models.Message, error) {
	items, err := s.col.List()
	if err != nil {
		return nil, err
	}
	sortNewest(items)
	return items, nil
}

// Get returns one message.
func (s *Messages) Get(_ context.Context, id string) (models.Message, error) {
	return s.col.Get(id)
}

// MarkRead flags a message as read. Marking an already read message keeps
// its original readAt.
func (s *Messages) MarkRead(_ context.Context, id string) (models.Message, error) {
	m, err := s.col.Update(id, func(m *models.Message) error {
		now := s.now().UTC()
		if m.ReadAt == nil {
			m.ReadAt = &now
		}
		m.Read = true
		m.UpdatedAt = now
		return nil
	})
	if err != nil {
		return m, err
	}
	s.published("message.read", id)
	return m, nil
}

// Delete removes a message from the inbox.
func (s *Messages) Delete(_ context.Context, id string) (models.Message, error) {
	m, err := s.col.Delete(id)
	if err != nil {
		return m, err
	}
	s.published("message.deleted", id)
	return m, nil
}

// UnreadCount returns the number of unread active messages.
func (s *Messages) UnreadCount(_ context.Context) (int, error) {
	items, err := s.col.List()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range items {
		if !m.Read {
			n++
		}
	}
	return n, nil
}

// Archive returns the messages archived in year, newest first. A year with
// no archive yields an empty list.
func (s *Messages) Archive(_ context.Context, year int) ([]models.Message, error) {
	items, err := ArchiveCollection(s.store, year).List()
	if err != nil {
		return nil, err
	}
	sortNewest(items)
	return items, nil
}

// ArchiveYears lists the years that have an archive file, ascending.
func (s *Messages) ArchiveYears(_ context.Context) ([]int, error) {
	names, err := s.store.Names(ArchivePrefix)
	if err != nil {
		return nil, err
	}
	years := make([]int, 0, len(names))
	for _, n := range names {
		y, err := strconv.Atoi(strings.TrimPrefix(n, ArchivePrefix))
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

// Migrate normalises legacy message records in place and returns how many
// changed. Nothing is written when every record is already canonical.
func (s *Messages) Migrate(_ context.Context) (int, error) {
	changed := 0
	err := s.col.Replace(func(items []models.Message) ([]models.Message, error) {
		for i := range items {
			if items[i].Normalize() {
				changed++
			}
		}
		if changed == 0 {
			return nil, errUnchanged
		}
		return items, nil
	})
	if errors.Is(err, errUnchanged) {
		err = nil
	}
	return changed, err
}

func (s *Messages) published(kind, id string) {
	s.events.Publish(sse.Event{Type: kind, Data: map[string]string{"id": id}})
}

// ArchiveCollection returns the archive collection for year.
func ArchiveCollection(store storage.Provider, year int) *storage.Collection[models.Message] {
	return storage.NewCollection[models.Message](store, ArchivePrefix+strconv.Itoa(year))
}

func sortNewest(items []models.Message) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
