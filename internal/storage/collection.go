package storage

import (
	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// Collection is an ordered list of records persisted as one document.
// With an empty wrap key the file is a bare JSON array; otherwise it is an
// object holding the array under that key (e.g. {"skills": [...]}).
type Collection[T models.Record] struct {
	store Provider
	name  string
	wrap  string
}

// NewCollection returns a collection stored as a bare array.
func NewCollection[T models.Record](store Provider, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

// NewWrappedCollection returns a collection stored under key inside an object.
func NewWrappedCollection[T models.Record](store Provider, name, key string) *Collection[T] {
	return &Collection[T]{store: store, name: name, wrap: key}
}

// Name returns the document name backing the collection.
func (c *Collection[T]) Name() string {
	return c.name
}

// List returns all records in stored order.
func (c *Collection[T]) List() ([]T, error) {
	return c.load()
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(id string) (T, error) {
	var zero T
	items, err := c.load()
	if err != nil {
		return zero, err
	}
	if i := indexOf(items, id); i >= 0 {
		return items[i], nil
	}
	return zero, apperr.ErrNotFound
}

// Insert appends rec.
func (c *Collection[T]) Insert(rec T) error {
	return c.Replace(func(items []T) ([]T, error) {
		return append(items, rec), nil
	})
}

// Update applies fn to the record with the given id and saves the collection.
// If fn returns an error nothing is written.
func (c *Collection[T]) Update(id string, fn func(*T) error) (T, error) {
	var out T
	err := c.Replace(func(items []T) ([]T, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, apperr.ErrNotFound
		}
		if err := fn(&items[i]); err != nil {
			return nil, err
		}
		out = items[i]
		return items, nil
	})
	return out, err
}

// Delete removes the record with the given id and returns it.
func (c *Collection[T]) Delete(id string) (T, error) {
	var out T
	err := c.Replace(func(items []T) ([]T, error) {
		i := indexOf(items, id)
		if i < 0 {
			return nil, apperr.ErrNotFound
		}
		out = items[i]
		return append(items[:i], items[i+1:]...), nil
	})
	return out, err
}

// Replace runs a locked load → fn → save cycle over the whole collection.
func (c *Collection[T]) Replace(fn func([]T) ([]T, error)) error {
	unlock := c.store.Lock(c.name)
	defer unlock()

	items, err := c.load()
	if err != nil {
		return err
	}
	next, err := fn(items)
	if err != nil {
		return err
	}
	return c.save(next)
}

func (c *Collection[T]) load() ([]T, error) {
	var items []T
	if c.wrap == "" {
		ok, err := c.store.Load(c.name, &items)
		if err != nil {
			return nil, err
		}
		if !ok {
			items = nil
		}
	} else {
		var doc map[string][]T
		ok, err := c.store.Load(c.name, &doc)
		if err != nil {
			return nil, err
		}
		if ok {
			items = doc[c.wrap]
		}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) save(items []T) error {
	if items == nil {
		items = []T{}
	}
	if c.wrap == "" {
		return c.store.Save(c.name, items)
	}
	return c.store.Save(c.name, map[string][]T{c.wrap: items})
}

func indexOf[T models.Record](items []T, id string) int {
	for i := range items {
		if items[i].RecordID() == id {
			return i
		}
	}
	return -1
}
