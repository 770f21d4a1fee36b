package redisrepo

import (
	"context"
	"errors"
	"time"
)

// ErrNil is the cache-miss sentinel, decoupled from the driver so callers
// and test fakes never import go-redis.
var ErrNil = errors.New("redisrepo: nil")

type Default interface {
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	DelPattern(ctx context.Context, pattern string) error
}

type Redis struct {
	Default
}

func New(d Default) *Redis {
	return &Redis{Default: d}
}
