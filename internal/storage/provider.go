// Package storage persists named JSON documents in the data directory.
//
// Every resource (projects, education, skills, messages, stats, ...) is one
// file holding either an array, a wrapper object or a plain object. Callers
// go through Collection or Document, which serialise the load-mutate-save
// cycle per resource.
package storage

// Provider is the interface for named JSON document persistence.
type Provider interface {
	// Load decodes the document name into v. It reports false when the
	// document is missing or unreadable as JSON.
	Load(name string, v any) (bool, error)
	// Save atomically replaces the document name with the JSON encoding of v.
	Save(name string, v any) error
	// Lock acquires the per-document write lock and returns its release func.
	Lock(name string) func()
	// Names lists stored document names that start with prefix.
	Names(prefix string) ([]string, error)
}
