package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/socialwall/interaction-service/internal/model"
	"github.com/socialwall/interaction-service/internal/repository"
	"github.com/socialwall/interaction-service/internal/repository/redisrepo"
	"github.com/socialwall/interaction-service/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCache is a map-backed redisrepo.Default.
type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.values[key] = string(raw)
	f.mu.Unlock()
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return "", redisrepo.ErrNil
	}
	return value, nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeCache) DelPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.values {
		if strings.HasPrefix(key, prefix) {
			delete(f.values, key)
		}
	}
	return nil
}

// storeStub overrides selected storage.Store methods to force failures.
type storeStub struct {
	storage.Store
	insertFn func(ctx context.Context, collection string, doc storage.Document) (string, error)
	updateFn func(ctx context.Context, collection, id string, ops ...storage.Op) error
	applyFn  func(ctx context.Context, collection, id string, fn func(storage.Document) ([]storage.Op, error)) error
}

func (s *storeStub) Insert(ctx context.Context, collection string, doc storage.Document) (string, error) {
	if s.insertFn != nil {
		return s.insertFn(ctx, collection, doc)
	}
	return s.Store.Insert(ctx, collection, doc)
}

func (s *storeStub) Update(ctx context.Context, collection, id string, ops ...storage.Op) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, collection, id, ops...)
	}
	return s.Store.Update(ctx, collection, id, ops...)
}

func (s *storeStub) Apply(ctx context.Context, collection, id string, fn func(storage.Document) ([]storage.Op, error)) error {
	if s.applyFn != nil {
		return s.applyFn(ctx, collection, id, fn)
	}
	return s.Store.Apply(ctx, collection, id, fn)
}

func newTestService(store storage.Store) (*Service, *fakeCache) {
	cache := newFakeCache()
	repo := repository.NewWithCache(store, cache)
	return New(zap.NewNop(), repo), cache
}

// fetchPost reads a post straight from the store, bypassing every cache.
func fetchPost(t *testing.T, store storage.Store, id string) *model.Post {
	t.Helper()
	doc, err := store.Get(context.Background(), postsCollection, id)
	require.NoError(t, err)
	post, err := model.PostFromDocument(id, doc)
	require.NoError(t, err)
	return post
}

var (
	ana = model.User{ID: "u1", Username: "ana", DisplayName: "Ana Lopez"}
	bea = model.User{ID: "u3", Username: "bea", DisplayName: "Bea Ruiz"}
)
