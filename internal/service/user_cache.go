package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/socialwall/interaction-service/internal/model"
	"github.com/socialwall/interaction-service/internal/repository"
	"github.com/socialwall/interaction-service/internal/repository/redisrepo"
	"github.com/socialwall/interaction-service/internal/storage"
	"go.uber.org/zap"
)

const userCacheTTL = time.Hour

type userCacheService struct {
	logger *zap.Logger
	repo   *repository.Repository
}

func newUserCacheService(logger *zap.Logger, repo *repository.Repository) UserCache {
	return &userCacheService{
		logger: logger,
		repo:   repo,
	}
}

func (s *userCacheService) FindByID(ctx context.Context, id string) (*model.User, error) {
	cached, err := redisrepo.Get[model.User](s.repo.Redis.Default, ctx, redisrepo.UserCacheKey(id))
	if err == nil {
		return cached, nil
	}
	if err != redisrepo.ErrNil {
		s.logger.Sugar().Errorf("failed to get user(%s) from redis: %s", id, err.Error())
	}

	doc, err := s.repo.Store.Get(ctx, usersCollection, id)
	if err == storage.ErrNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		s.logger.Sugar().Errorf("failed to get user(%s) from store: %s", id, err.Error())
		return nil, ErrInternal
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		s.logger.Sugar().Errorf("failed to encode user(%s) document: %s", id, err.Error())
		return nil, ErrInternal
	}
	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		s.logger.Sugar().Errorf("failed to decode user(%s) document: %s", id, err.Error())
		return nil, ErrInternal
	}
	user.ID = id

	if err := s.repo.Redis.SetJSON(ctx, redisrepo.UserCacheKey(id), user, userCacheTTL); err != nil {
		s.logger.Sugar().Errorf("failed to cache user(%s): %s", id, err.Error())
	}

	return &user, nil
}
