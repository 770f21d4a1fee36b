// Package storage defines the document-store capability the interaction
// engine runs on: collections of JSON-shaped documents with single-document
// atomic mutations. Concurrency correctness is delegated entirely to this
// contract — Update and Apply commit their changes as one unit, and
// concurrent calls against the same document serialize, each observing the
// prior call's committed state.
package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("storage: document not found")

	// ErrUnsupportedQuery is returned when a query combines a filter with an
	// ordering the backend has no joint index for. Callers are expected to
	// recover by re-querying without the ordering.
	ErrUnsupportedQuery = errors.New("storage: unsupported query shape")
)

// Document is the stored shape of a record. Values follow JSON conventions;
// numeric fields may surface as int64 or float64 depending on the backend.
type Document = map[string]any

// Filter is a single equality predicate on a top-level field.
type Filter struct {
	Field string
	Value any
}

type Query struct {
	Filter  *Filter
	OrderBy string
	// OrderAsTime treats the order key as an RFC 3339 timestamp rather
	// than a plain string. Timestamps with mixed sub-second precision do
	// not sort lexicographically, so time-keyed orderings must set this.
	OrderAsTime bool
	Desc        bool
	Limit       int
}

// Entry pairs a document with its id in query results.
type Entry struct {
	ID  string
	Doc Document
}

// Store is a document store keyed by collection name and document id.
type Store interface {
	// Insert persists a new document and returns its assigned id.
	Insert(ctx context.Context, collection string, doc Document) (string, error)

	// Get returns a copy of the document, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Query returns copies of the matching documents, ordered when the
	// query asks for it. A filter+order query may fail with
	// ErrUnsupportedQuery; a filter-only query never does.
	Query(ctx context.Context, collection string, q Query) ([]Entry, error)

	// Update applies ops to one document as a single atomic unit:
	// either every op commits or none does. ErrNotFound if the document
	// is missing.
	Update(ctx context.Context, collection, id string, ops ...Op) error

	// Apply is an atomic read-modify-write: fn receives the current
	// committed document and returns the ops to commit against it.
	// Concurrent Apply calls on the same document serialize. fn must be
	// side-effect free; an error from fn aborts with nothing written.
	Apply(ctx context.Context, collection, id string, fn func(Document) ([]Op, error)) error

	// Delete removes the document in full, ErrNotFound if missing.
	Delete(ctx context.Context, collection, id string) error
}
