package repository

import (
	"github.com/redis/go-redis/v9"
	"github.com/socialwall/interaction-service/internal/repository/redisrepo"
	"github.com/socialwall/interaction-service/internal/storage"
)

type Repository struct {
	Store storage.Store
	Redis *redisrepo.Redis
}

func New(store storage.Store, rdb *redis.Client) *Repository {
	return &Repository{
		Store: store,
		Redis: redisrepo.New(redisrepo.NewDefaultRepo(rdb)),
	}
}

// NewWithCache wires an already-built cache, used by tests to substitute a
// fake for the redis-backed default.
func NewWithCache(store storage.Store, cache redisrepo.Default) *Repository {
	return &Repository{
		Store: store,
		Redis: redisrepo.New(cache),
	}
}
