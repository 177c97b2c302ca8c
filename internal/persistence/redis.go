package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-tickets/internal/config"
)

// Short deadlines keep a slow cache from consuming the classifier's budget;
// a cache miss only costs one remote call.
const (
	cacheDialTimeout = 2 * time.Second
	cacheIOTimeout   = 500 * time.Millisecond
)

// Redis holds the client backing the classifier answer cache. A Redis with a
// nil Client is disabled.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds the cache client. An empty address disables the cache. An
// unreachable server is logged and kept: cache errors degrade to misses.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Info("REDIS_ADDR not provided; classifier cache disabled")
		return &Redis{}
	}

	client := redis.NewClient(cacheOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), cacheDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach classifier cache", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to classifier cache", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

func cacheOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cacheDialTimeout,
		ReadTimeout:  cacheIOTimeout,
		WriteTimeout: cacheIOTimeout,
		MaxRetries:   1,
	}
}

// Enabled reports whether a client was built.
func (r *Redis) Enabled() bool {
	return r != nil && r.Client != nil
}

// Close closes the client.
func (r *Redis) Close() {
	if r.Enabled() {
		_ = r.Client.Close()
	}
}

// ClientHandle returns the underlying client, nil when disabled.
func (r *Redis) ClientHandle() *redis.Client {
	if r == nil {
		return nil
	}
	return r.Client
}

// Ping verifies connectivity. A disabled Redis returns an error wrapping
// ErrDisabled.
func (r *Redis) Ping(ctx context.Context) error {
	if !r.Enabled() {
		return fmt.Errorf("redis: %w", ErrDisabled)
	}
	return r.Client.Ping(ctx).Err()
}
