package service

import (
	"context"

	"github.com/socialwall/interaction-service/internal/model"
	"github.com/socialwall/interaction-service/internal/repository"
	"go.uber.org/zap"
)

const (
	postsCollection = "posts"
	usersCollection = "users"
)

// Post is the interaction engine: every operation is atomic with respect to
// the post document fields it touches, and counters never diverge from the
// collections they summarize.
type Post interface {
	Create(ctx context.Context, author model.User, content string) (*model.Post, error)
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	AddComment(ctx context.Context, postID string, author model.User, content string) (*model.Comment, error)
	Share(ctx context.Context, postID string) error
	Delete(ctx context.Context, postID, requesterID string) error
}

// Feed serves the two read views over the post collection.
type Feed interface {
	Global(ctx context.Context, limit int) ([]*model.Post, error)
	Author(ctx context.Context, authorID string) ([]*model.Post, error)
}

// UserCache resolves identity snapshots for the auth middleware.
type UserCache interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type Service struct {
	Post
	Feed
	UserCache
}

func New(logger *zap.Logger, repo *repository.Repository) *Service {
	return &Service{
		Post:      newPostService(logger, repo),
		Feed:      newFeedService(logger, repo),
		UserCache: newUserCacheService(logger, repo),
	}
}
