package service

import (
	"context"
	"sort"
	"time"

	"github.com/socialwall/interaction-service/internal/model"
	"github.com/socialwall/interaction-service/internal/repository"
	"github.com/socialwall/interaction-service/internal/repository/redisrepo"
	"github.com/socialwall/interaction-service/internal/storage"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	DEFAULT_FEED_LIMIT = 50
	MAX_FEED_LIMIT     = 100

	feedCacheTTL = time.Minute
)

type feedService struct {
	logger *zap.Logger
	repo   *repository.Repository

	defaultLimit int
	maxLimit     int
	cacheTTL     time.Duration
}

func newFeedService(logger *zap.Logger, repo *repository.Repository) Feed {
	s := &feedService{
		logger:       logger,
		repo:         repo,
		defaultLimit: DEFAULT_FEED_LIMIT,
		maxLimit:     MAX_FEED_LIMIT,
		cacheTTL:     feedCacheTTL,
	}

	if v := viper.GetInt("feed.default_limit"); v > 0 {
		s.defaultLimit = v
	}
	if v := viper.GetInt("feed.max_limit"); v > 0 {
		s.maxLimit = v
	}
	if v := viper.GetDuration("feed.cache_ttl"); v > 0 {
		s.cacheTTL = v
	}

	return s
}

func (s *feedService) feedLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}

func (s *feedService) Global(ctx context.Context, limit int) ([]*model.Post, error) {
	limit = s.feedLimit(limit)

	cached, err := redisrepo.GetMany[model.Post](s.repo.Redis.Default, ctx, redisrepo.GlobalFeedKey(limit))
	if err == nil {
		return cached, nil
	}
	if err != redisrepo.ErrNil {
		s.logger.Sugar().Errorf("failed to get global feed from redis: %s", err.Error())
	}

	entries, err := s.repo.Store.Query(ctx, postsCollection, storage.Query{
		OrderBy:     "created_at",
		OrderAsTime: true,
		Desc:        true,
		Limit:       limit,
	})
	if err != nil {
		s.logger.Sugar().Errorf("failed to query global feed: %s", err.Error())
		return nil, ErrInternal
	}

	posts, err := s.normalize(entries)
	if err != nil {
		return nil, err
	}

	s.cacheFeed(ctx, redisrepo.GlobalFeedKey(limit), posts)

	return posts, nil
}

func (s *feedService) Author(ctx context.Context, authorID string) ([]*model.Post, error) {
	cached, err := redisrepo.GetMany[model.Post](s.repo.Redis.Default, ctx, redisrepo.AuthorFeedKey(authorID))
	if err == nil {
		return cached, nil
	}
	if err != redisrepo.ErrNil {
		s.logger.Sugar().Errorf("failed to get author(%s) feed from redis: %s", authorID, err.Error())
	}

	filter := &storage.Filter{Field: "author_id", Value: authorID}

	entries, err := s.repo.Store.Query(ctx, postsCollection, storage.Query{
		Filter:      filter,
		OrderBy:     "created_at",
		OrderAsTime: true,
		Desc:        true,
	})
	sorted := true
	if err == storage.ErrUnsupportedQuery {
		// Degraded path: the store cannot serve filter+sort jointly, so
		// re-run the filter alone and order locally. Same contract for the
		// caller either way.
		s.logger.Sugar().Warnf("author(%s) feed falling back to unsorted query", authorID)
		entries, err = s.repo.Store.Query(ctx, postsCollection, storage.Query{Filter: filter})
		sorted = false
	}
	if err != nil {
		s.logger.Sugar().Errorf("failed to query author(%s) feed: %s", authorID, err.Error())
		return nil, ErrInternal
	}

	posts, err := s.normalize(entries)
	if err != nil {
		return nil, err
	}
	if !sorted {
		sortPostsByRecency(posts)
	}

	s.cacheFeed(ctx, redisrepo.AuthorFeedKey(authorID), posts)

	return posts, nil
}

func (s *feedService) normalize(entries []storage.Entry) ([]*model.Post, error) {
	posts := make([]*model.Post, 0, len(entries))
	for _, entry := range entries {
		post, err := model.PostFromDocument(entry.ID, entry.Doc)
		if err != nil {
			s.logger.Sugar().Errorf("failed to decode post(%s): %s", entry.ID, err.Error())
			return nil, ErrInternal
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *feedService) cacheFeed(ctx context.Context, key string, posts []*model.Post) {
	if err := s.repo.Redis.SetJSON(ctx, key, posts, s.cacheTTL); err != nil {
		s.logger.Sugar().Errorf("failed to cache feed(%s): %s", key, err.Error())
	}
}

// sortPostsByRecency orders by created_at descending with id as the
// deterministic tie-break, matching the ordering an indexed store query
// produces.
func sortPostsByRecency(posts []*model.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}
