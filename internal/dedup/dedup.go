// Package dedup keeps a short-lived record of ingested platform events so
// webhook redeliveries can be dropped before touching the database.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acoustichub/crm/internal/config"
)

// Guard reports and records processed event keys.
type Guard interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// Key builds the cache key for a platform event id.
func Key(platform, externalID string) string {
	return fmt.Sprintf("dedup:msg:%s:%s", strings.ToLower(strings.TrimSpace(platform)), strings.TrimSpace(externalID))
}

// CommentKey is Key for public comments, which live in their own id space.
func CommentKey(platform, externalID string) string {
	return fmt.Sprintf("dedup:comment:%s:%s", strings.ToLower(strings.TrimSpace(platform)), strings.TrimSpace(externalID))
}

// Noop never reports an event as seen. It is used when Redis is not configured.
type Noop struct{}

func (Noop) Seen(context.Context, string) (bool, error) { return false, nil }
func (Noop) Mark(context.Context, string) error         { return nil }

// RedisGuard stores event keys in Redis with a TTL.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisGuard wraps an existing client.
func NewRedisGuard(log *slog.Logger, client *redis.Client, ttl time.Duration) *RedisGuard {
	if log == nil {
		log = slog.Default()
	}
	return &RedisGuard{client: client, ttl: ttl, logger: log.With(slog.String("service", "dedup"))}
}

// Open connects to Redis when cfg.Addr is set. It returns nil, nil otherwise.
func Open(ctx context.Context, log *slog.Logger, cfg config.RedisConfig) (*RedisGuard, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisGuard(log, client, cfg.TTL()), nil
}

func (g *RedisGuard) Seen(ctx context.Context, key string) (bool, error) {
	err := g.client.Get(ctx, key).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	g.logger.Debug("duplicate event detected", slog.String("key", key))
	return true, nil
}

func (g *RedisGuard) Mark(ctx context.Context, key string) error {
	if err := g.client.Set(ctx, key, time.Now().Unix(), g.ttl).Err(); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (g *RedisGuard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

func (g *RedisGuard) Close() error {
	return g.client.Close()
}
