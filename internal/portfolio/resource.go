// Package portfolio implements the content services behind the REST API.
package portfolio

import (
	"context"
	"encoding/json"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
)

// Entity is a record that can validate itself.
type Entity interface {
	models.Record
	validation.Validatable
}

// Patch is a partial update applied onto a record. Unset fields are kept.
type Patch[T any] interface {
	Apply(*T)
}

// Publisher receives change notifications.
type Publisher interface {
	Publish(sse.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(sse.Event) {}

// Resource is the CRUD core shared by the collection-backed services.
type Resource[T Entity] struct {
	col    *storage.Collection[T]
	meta   func(*T) *models.Meta
	kind   string
	events Publisher
	now    func() time.Time
}

func newResource[T Entity](col *storage.Collection[T], kind string, meta func(*T) *models.Meta, events Publisher) *Resource[T] {
	if events == nil {
		events = nopPublisher{}
	}
	return &Resource[T]{col: col, meta: meta, kind: kind, events: events, now: time.Now}
}

// List returns every record in stored order.
func (r *Resource[T]) List(_ context.Context) ([]T, error) {
	return r.col.List()
}

// Get returns one record.
func (r *Resource[T]) Get(_ context.Context, id string) (T, error) {
	return r.col.Get(id)
}

// Create applies p to a new record, validates it and stores it.
func (r *Resource[T]) Create(_ context.Context, p Patch[T]) (T, error) {
	var rec T
	p.Apply(&rec)
	if err := apperr.FromValidation(rec.Validate()); err != nil {
		return rec, err
	}
	now := r.now().UTC()
	m := r.meta(&rec)
	m.ID = storage.NewID()
	m.CreatedAt, m.UpdatedAt = now, now
	if err := r.col.Insert(rec); err != nil {
		return rec, err
	}
	r.publish("created", m.ID)
	return rec, nil
}

// Update applies p to the stored record and returns the new and previous values.
func (r *Resource[T]) Update(ctx context.Context, id string, p Patch[T]) (T, T, error) {
	return r.UpdateIfMatch(ctx, id, "", p)
}

// UpdateIfMatch is Update guarded by an entity tag. A non-empty etag that
// does not match the stored record yields apperr.ErrConflict.
func (r *Resource[T]) UpdateIfMatch(_ context.Context, id, etag string, p Patch[T]) (T, T, error) {
	var prev T
	next, err := r.col.Update(id, func(rec *T) error {
		if etag != "" {
			cur, err := ETag(*rec)
			if err != nil {
				return err
			}
			if cur != etag {
				return apperr.ErrConflict
			}
		}
		prev = *rec
		p.Apply(rec)
		if err := apperr.FromValidation((*rec).Validate()); err != nil {
			return err
		}
		r.meta(rec).UpdatedAt = r.now().UTC()
		return nil
	})
	if err != nil {
		return next, prev, err
	}
	r.publish("updated", id)
	return next, prev, nil
}

// Delete removes a record and returns it.
func (r *Resource[T]) Delete(_ context.Context, id string) (T, error) {
	rec, err := r.col.Delete(id)
	if err != nil {
		return rec, err
	}
	r.publish("deleted", id)
	return rec, nil
}

func (r *Resource[T]) publish(op, id string) {
	r.events.Publish(sse.Event{Type: r.kind + "." + op, Data: map[string]string{"id": id}})
}

// ETag returns the entity tag of a record's JSON form.
func ETag(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return checksum.ETag(data), nil
}

func set[V any](dst *V, src *V) {
	if src != nil {
		*dst = *src
	}
}
