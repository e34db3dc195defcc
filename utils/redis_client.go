package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cppla/artcopy/config"
)

// NewRedis returns a Redis client for the configured address, or nil when
// caching is disabled. An unreachable server is logged, not fatal: cache
// calls degrade to misses.
func NewRedis(cfg config.RedisSection, log *zap.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rc := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		log.Warn("redis ping failed; stats cache will miss until it recovers", zap.String("addr", cfg.Addr), zap.Error(err))
	}
	return rc
}
