package storage

// Document is a single JSON object persisted under one name.
type Document[T any] struct {
	store    Provider
	name     string
	defaults func() T
}

// NewDocument returns a document that reads as defaults() when absent.
func NewDocument[T any](store Provider, name string, defaults func() T) *Document[T] {
	return &Document[T]{store: store, name: name, defaults: defaults}
}

// Get returns the stored value or the default.
func (d *Document[T]) Get() (T, error) {
	v := d.defaults()
	ok, err := d.store.Load(d.name, &v)
	if err != nil {
		return v, err
	}
	if !ok {
		return d.defaults(), nil
	}
	return v, nil
}

// Update applies fn under the document lock and saves the result.
func (d *Document[T]) Update(fn func(*T) error) (T, error) {
	unlock := d.store.Lock(d.name)
	defer unlock()

	v, err := d.Get()
	if err != nil {
		return v, err
	}
	if err := fn(&v); err != nil {
		return v, err
	}
	if err := d.store.Save(d.name, v); err != nil {
		return v, err
	}
	return v, nil
}
