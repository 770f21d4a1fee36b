package service

import (
	"context"
	"testing"
	"time"

	"github.com/socialwall/interaction-service/internal/storage"
	"github.com/socialwall/interaction-service/internal/storage/memdoc"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertRawPost(t *testing.T, store storage.Store, doc storage.Document) string {
	t.Helper()
	id, err := store.Insert(context.Background(), postsCollection, doc)
	require.NoError(t, err)
	return id
}

func TestGlobalFeedOrdering(t *testing.T) {
	ctx := context.Background()
	store := memdoc.New()
	svc, _ := newTestService(store)

	insertRawPost(t, store, storage.Document{"content": "first", "created_at": "2020-01-01T10:00:00Z"})
	insertRawPost(t, store, storage.Document{"content": "third", "created_at": "2020-01-03T10:00:00Z"})
	insertRawPost(t, store, storage.Document{"content": "second", "created_at": "2020-01-02T10:00:00Z"})

	feed, err := svc.Feed.Global(ctx, 10)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "third", feed[0].Content)
	assert.Equal(t, "second", feed[1].Content)
	assert.Equal(t, "first", feed[2].Content)

	// A newly created post lands at the top of a re-query.
	post, err := svc.Post.Create(ctx, ana, "fresh")
	require.NoError(t, err)

	feed, err = svc.Feed.Global(ctx, 10)
	require.NoError(t, err)
	require.Len(t, feed, 4)
	assert.Equal(t, post.ID, feed[0].ID)
}

func TestGlobalFeedLimit(t *testing.T) {
	ctx := context.Background()
	store := memdoc.New()
	svc, _ := newTestService(store)

	days := []string{"01", "02", "03", "04", "05"}
	for _, day := range days {
		insertRawPost(t, store, storage.Document{"created_at": "2020-01-" + day + "T10:00:00Z"})
	}

	feed, err := svc.Feed.Global(ctx, 3)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	assert.Equal(t, "2020-01-05T10:00:00Z", feed[0].CreatedAt.Format(time.RFC3339))
}

func TestGlobalFeedNormalizesSparseDocuments(t *testing.T) {
	ctx := context.Background()
	store := memdoc.New()
	svc, _ := newTestService(store)

	// Storage may legally omit zero-valued engagement fields.
	insertRawPost(t, store, storage.Document{
		"content":    "bare",
		"author_id":  "u1",
		"created_at": "2020-01-01T10:00:00Z",
	})

	feed, err := svc.Feed.Global(ctx, 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	post := feed[0]
	assert.NotNil(t, post.Likes)
	assert.Empty(t, post.Likes)
	assert.NotNil(t, post.Comments)
	assert.Empty(t, post.Comments)
	assert.Equal(t, int64(0), post.LikesCount)
	assert.Equal(t, int64(0), post.CommentsCount)
	assert.Equal(t, int64(0), post.Shares)
}

func TestGlobalFeedCachesUntilMutation(t *testing.T) {
	ctx := context.Background()
	store := memdoc.New()
	svc, _ := newTestService(store)

	insertRawPost(t, store, storage.Document{"content": "old", "created_at": "2020-01-01T10:00:00Z"})

	feed, err := svc.Feed.Global(ctx, 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)

	// A direct insert bypasses invalidation: the cached view still serves.
	insertRawPost(t, store, storage.Document{"content": "sneaky", "created_at": "2020-01-02T10:00:00Z"})

	feed, err = svc.Feed.Global(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, feed, 1)

	// An engine mutation drops the feed caches.
	_, err = svc.Post.Create(ctx, ana, "visible")
	require.NoError(t, err)

	feed, err = svc.Feed.Global(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, feed, 3)
}

func TestAuthorFeedFallbackTransparency(t *testing.T) {
	ctx := context.Background()
	store := memdoc.New()

	// Mixed sub-second precision: "b" carries a fractional timestamp and
	// must land between the whole-second "a" and "c" on both paths.
	insertRawPost(t, store, storage.Document{"author_id": "u1", "content": "a", "created_at": "2020-01-01T10:00:00Z"})
	insertRawPost(t, store, storage.Document{"author_id": "u1", "content": "c", "created_at": "2020-01-03T10:00:00Z"})
	insertRawPost(t, store, storage.Document{"author_id": "u1", "content": "b", "created_at": "2020-01-01T10:00:00.5Z"})
	insertRawPost(t, store, storage.Document{"author_id": "u2", "content": "other", "created_at": "2020-01-04T10:00:00Z"})

	// Without a composite index the store rejects filter+sort and the
	// service sorts locally.
	degradedSvc, _ := newTestService(store)
	degraded, err := degradedSvc.Feed.Author(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, degraded, 3)
	assert.Equal(t, "c", degraded[0].Content)
	assert.Equal(t, "b", degraded[1].Content)
	assert.Equal(t, "a", degraded[2].Content)

	// With the index the store sorts; the caller sees the same result.
	store.WithCompositeIndex(postsCollection, "author_id", "created_at")
	indexedSvc, _ := newTestService(store)
	indexed, err := indexedSvc.Feed.Author(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, degraded, indexed)
}

func TestGlobalFeedOrdersMixedTimestampPrecision(t *testing.T) {
	ctx := context.Background()
	store := memdoc.New()
	svc, _ := newTestService(store)

	insertRawPost(t, store, storage.Document{"content": "whole", "created_at": "2020-01-01T10:00:00Z"})
	insertRawPost(t, store, storage.Document{"content": "frac", "created_at": "2020-01-01T10:00:00.5Z"})

	feed, err := svc.Feed.Global(ctx, 10)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "frac", feed[0].Content)
	assert.Equal(t, "whole", feed[1].Content)
}

func TestFeedLimitsFromConfig(t *testing.T) {
	ctx := context.Background()
	store := memdoc.New()

	viper.Set("feed.default_limit", 1)
	viper.Set("feed.max_limit", 2)
	t.Cleanup(viper.Reset)

	svc, _ := newTestService(store)

	days := []string{"01", "02", "03", "04"}
	for _, day := range days {
		insertRawPost(t, store, storage.Document{"created_at": "2020-01-" + day + "T10:00:00Z"})
	}

	feed, err := svc.Feed.Global(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, feed, 1)

	feed, err = svc.Feed.Global(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, feed, 2)
}

func TestAuthorFeedOnlyReturnsAuthor(t *testing.T) {
	ctx := context.Background()
	store := memdoc.New()
	svc, _ := newTestService(store)

	insertRawPost(t, store, storage.Document{"author_id": "u1", "created_at": "2020-01-01T10:00:00Z"})
	insertRawPost(t, store, storage.Document{"author_id": "u2", "created_at": "2020-01-02T10:00:00Z"})

	feed, err := svc.Feed.Author(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "u1", feed[0].AuthorID)

	feed, err = svc.Feed.Author(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, feed)
}
