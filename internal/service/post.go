package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/socialwall/interaction-service/internal/model"
	"github.com/socialwall/interaction-service/internal/repository"
	"github.com/socialwall/interaction-service/internal/repository/redisrepo"
	"github.com/socialwall/interaction-service/internal/storage"
	"github.com/socialwall/interaction-service/internal/validation"
	"go.uber.org/zap"
)

type postService struct {
	logger *zap.Logger
	repo   *repository.Repository
}

func newPostService(logger *zap.Logger, repo *repository.Repository) Post {
	return &postService{
		logger: logger,
		repo:   repo,
	}
}

func (s *postService) Create(ctx context.Context, author model.User, content string) (*model.Post, error) {
	if err := validation.PostContent(content); err != nil {
		return nil, err
	}

	post := &model.Post{
		AuthorID:       author.ID,
		AuthorName:     author.DisplayName,
		AuthorUsername: author.Username,
		Content:        content,
		Likes:          []string{},
		LikesCount:     0,
		Comments:       []model.Comment{},
		CommentsCount:  0,
		Shares:         0,
		CreatedAt:      time.Now().UTC(),
	}

	doc, err := post.Document()
	if err != nil {
		s.logger.Sugar().Errorf("failed to encode post for user(%s): %s", author.ID, err.Error())
		return nil, ErrInternal
	}

	id, err := s.repo.Store.Insert(ctx, postsCollection, doc)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create user(%s) post: %s", author.ID, err.Error())
		return nil, ErrInternal
	}
	post.ID = id

	s.dropFeedCaches(ctx)

	return post, nil
}

func (s *postService) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	var hasLiked bool

	// The membership check and the set+counter mutation commit as one unit
	// against the current persisted state, so the pair never diverges even
	// under concurrent togglers.
	err := s.repo.Store.Apply(ctx, postsCollection, postID, func(doc storage.Document) ([]storage.Op, error) {
		if docSetContains(doc, "likes", userID) {
			hasLiked = false
			return []storage.Op{
				storage.SetRemove("likes", userID),
				storage.Increment("likes_count", -1),
			}, nil
		}
		hasLiked = true
		return []storage.Op{
			storage.SetAdd("likes", userID),
			storage.Increment("likes_count", 1),
		}, nil
	})
	if err == storage.ErrNotFound {
		return false, ErrPostNotFound
	}
	if err != nil {
		s.logger.Sugar().Errorf("failed to toggle like on post(%s) by user(%s): %s", postID, userID, err.Error())
		return false, ErrInternal
	}

	s.dropFeedCaches(ctx)

	return hasLiked, nil
}

func (s *postService) AddComment(ctx context.Context, postID string, author model.User, content string) (*model.Comment, error) {
	if err := validation.CommentContent(content); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:                uuid.NewString(),
		AuthorID:          author.ID,
		AuthorDisplayName: author.DisplayName,
		Content:           content,
		CreatedAt:         time.Now().UTC(),
	}

	doc, err := comment.Document()
	if err != nil {
		s.logger.Sugar().Errorf("failed to encode comment for post(%s): %s", postID, err.Error())
		return nil, ErrInternal
	}

	err = s.repo.Store.Update(
		ctx,
		postsCollection,
		postID,
		storage.Append("comments", doc),
		storage.Increment("comments_count", 1),
	)
	if err == storage.ErrNotFound {
		return nil, ErrPostNotFound
	}
	if err != nil {
		s.logger.Sugar().Errorf("failed to add comment to post(%s) by user(%s): %s", postID, author.ID, err.Error())
		return nil, ErrInternal
	}

	s.dropFeedCaches(ctx)

	return comment, nil
}

func (s *postService) Share(ctx context.Context, postID string) error {
	// Shares are anonymous and uncapped per caller by design.
	err := s.repo.Store.Update(ctx, postsCollection, postID, storage.Increment("shares", 1))
	if err == storage.ErrNotFound {
		return ErrPostNotFound
	}
	if err != nil {
		s.logger.Sugar().Errorf("failed to share post(%s): %s", postID, err.Error())
		return ErrInternal
	}

	s.dropFeedCaches(ctx)

	return nil
}

func (s *postService) Delete(ctx context.Context, postID, requesterID string) error {
	doc, err := s.repo.Store.Get(ctx, postsCollection, postID)
	if err == storage.ErrNotFound {
		return ErrPostNotFound
	}
	if err != nil {
		s.logger.Sugar().Errorf("failed to fetch post(%s) for deletion: %s", postID, err.Error())
		return ErrInternal
	}

	authorID, _ := doc["author_id"].(string)
	if authorID != requesterID {
		return ErrForbidden
	}

	// Removes the whole aggregate: embedded comments and likes go with it.
	err = s.repo.Store.Delete(ctx, postsCollection, postID)
	if err == storage.ErrNotFound {
		return ErrPostNotFound
	}
	if err != nil {
		s.logger.Sugar().Errorf("failed to delete post(%s): %s", postID, err.Error())
		return ErrInternal
	}

	s.dropFeedCaches(ctx)

	return nil
}

func (s *postService) dropFeedCaches(ctx context.Context) {
	if err := s.repo.Redis.DelPattern(ctx, redisrepo.FEED_KEYS_GLOB); err != nil {
		s.logger.Sugar().Errorf("failed to drop feed caches: %s", err.Error())
	}
}

func docSetContains(doc storage.Document, field, value string) bool {
	items, _ := doc[field].([]any)
	for _, item := range items {
		if s, ok := item.(string); ok && s == value {
			return true
		}
	}
	return false
}
