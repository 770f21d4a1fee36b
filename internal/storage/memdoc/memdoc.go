// Package memdoc is an in-memory document store. Each document is an
// aggregate root guarded by its own mutex, so Update and Apply are atomic
// and serialized per document without any external infrastructure. It backs
// tests and local development.
package memdoc

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/socialwall/interaction-service/internal/storage"
)

type document struct {
	mu      sync.Mutex
	fields  storage.Document
	deleted bool
}

type collection struct {
	mu   sync.RWMutex
	docs map[string]*document
}

type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	indexes     map[string]bool
}

func New() *Store {
	return &Store{
		collections: make(map[string]*collection),
		indexes:     make(map[string]bool),
	}
}

// WithCompositeIndex registers a joint filter+order index. Queries that
// combine a filter on filterField with an ordering on orderField are only
// served when such an index exists, mirroring document databases that
// reject unindexed composite queries.
func (s *Store) WithCompositeIndex(coll, filterField, orderField string) *Store {
	s.mu.Lock()
	s.indexes[indexKey(coll, filterField, orderField)] = true
	s.mu.Unlock()
	return s
}

func indexKey(coll, filterField, orderField string) string {
	return coll + "/" + filterField + "/" + orderField
}

func (s *Store) coll(name string, create bool) *collection {
	s.mu.RLock()
	c := s.collections[name]
	s.mu.RUnlock()
	if c != nil || !create {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c = s.collections[name]; c == nil {
		c = &collection{docs: make(map[string]*document)}
		s.collections[name] = c
	}
	return c
}

func (s *Store) find(coll, id string) *document {
	c := s.coll(coll, false)
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.docs[id]
}

func (s *Store) Insert(_ context.Context, coll string, doc storage.Document) (string, error) {
	c := s.coll(coll, true)
	id := uuid.NewString()

	c.mu.Lock()
	c.docs[id] = &document{fields: storage.CloneDocument(doc)}
	c.mu.Unlock()

	return id, nil
}

// Put writes a document at a caller-chosen id. It is not part of the Store
// interface: it seeds collections owned by external writers, like the
// identity service's users.
func (s *Store) Put(_ context.Context, coll, id string, doc storage.Document) {
	c := s.coll(coll, true)
	c.mu.Lock()
	c.docs[id] = &document{fields: storage.CloneDocument(doc)}
	c.mu.Unlock()
}

func (s *Store) Get(_ context.Context, coll, id string) (storage.Document, error) {
	d := s.find(coll, id)
	if d == nil {
		return nil, storage.ErrNotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deleted {
		return nil, storage.ErrNotFound
	}
	return storage.CloneDocument(d.fields), nil
}

func (s *Store) Query(_ context.Context, coll string, q storage.Query) ([]storage.Entry, error) {
	if q.Filter != nil && q.OrderBy != "" {
		s.mu.RLock()
		indexed := s.indexes[indexKey(coll, q.Filter.Field, q.OrderBy)]
		s.mu.RUnlock()
		if !indexed {
			return nil, storage.ErrUnsupportedQuery
		}
	}

	c := s.coll(coll, false)
	if c == nil {
		return []storage.Entry{}, nil
	}

	c.mu.RLock()
	docs := make(map[string]*document, len(c.docs))
	for id, d := range c.docs {
		docs[id] = d
	}
	c.mu.RUnlock()

	entries := make([]storage.Entry, 0, len(docs))
	for id, d := range docs {
		d.mu.Lock()
		if d.deleted {
			d.mu.Unlock()
			continue
		}
		fields := storage.CloneDocument(d.fields)
		d.mu.Unlock()

		if q.Filter != nil && compareValues(fields[q.Filter.Field], q.Filter.Value) != 0 {
			continue
		}
		entries = append(entries, storage.Entry{ID: id, Doc: fields})
	}

	if q.OrderBy != "" {
		compare := compareValues
		if q.OrderAsTime {
			compare = compareTimeValues
		}
		sort.Slice(entries, func(i, j int) bool {
			cmp := compare(entries[i].Doc[q.OrderBy], entries[j].Doc[q.OrderBy])
			if cmp == 0 {
				// Deterministic order under equal sort keys.
				cmp = strings.Compare(entries[i].ID, entries[j].ID)
			}
			if q.Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if q.Limit > 0 && len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}

	return entries, nil
}

func (s *Store) Update(_ context.Context, coll, id string, ops ...storage.Op) error {
	return s.apply(coll, id, func(storage.Document) ([]storage.Op, error) {
		return ops, nil
	})
}

func (s *Store) Apply(_ context.Context, coll, id string, fn func(storage.Document) ([]storage.Op, error)) error {
	return s.apply(coll, id, fn)
}

func (s *Store) apply(coll, id string, fn func(storage.Document) ([]storage.Op, error)) error {
	d := s.find(coll, id)
	if d == nil {
		return storage.ErrNotFound
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deleted {
		return storage.ErrNotFound
	}

	ops, err := fn(storage.CloneDocument(d.fields))
	if err != nil {
		return err
	}

	// Stage on a copy so a failing op batch leaves nothing behind.
	staged := storage.CloneDocument(d.fields)
	if err := storage.ApplyOps(staged, ops); err != nil {
		return err
	}
	d.fields = staged

	return nil
}

func (s *Store) Delete(_ context.Context, coll, id string) error {
	c := s.coll(coll, false)
	if c == nil {
		return storage.ErrNotFound
	}

	c.mu.Lock()
	d := c.docs[id]
	delete(c.docs, id)
	c.mu.Unlock()

	if d == nil {
		return storage.ErrNotFound
	}

	d.mu.Lock()
	d.deleted = true
	d.mu.Unlock()

	return nil
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case float64, int64, int:
		if bn, ok := asFloat(b); ok {
			an, _ := asFloat(a)
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
	case nil:
		if b == nil {
			return 0
		}
		return -1
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// compareTimeValues orders RFC 3339 strings by instant. Values that do not
// parse as timestamps fall back to the plain comparison.
func compareTimeValues(a, b any) int {
	at, aok := asTime(a)
	bt, bok := asTime(b)
	if !aok || !bok {
		return compareValues(a, b)
	}
	switch {
	case at.Before(bt):
		return -1
	case at.After(bt):
		return 1
	default:
		return 0
	}
}

func asTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	return t, err == nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
