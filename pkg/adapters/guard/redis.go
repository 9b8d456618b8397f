package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wadjakorntonsri/shippedtoday/pkg/logger"
	"github.com/wadjakorntonsri/shippedtoday/pkg/ports"
)

const defaultPrefix = "shippedtoday:"

// RedisGuard shares submission state between server instances.
type RedisGuard struct {
	rdb    *goredis.Client
	limits Limits
	prefix string
	log    *logger.Logger
}

func NewRedisGuard(ctx context.Context, addr string, limits Limits, log *logger.Logger) (*RedisGuard, error) {
	if addr == "" {
		return nil, errors.New("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisGuard{
		rdb:    rdb,
		limits: limits,
		prefix: defaultPrefix,
		log:    log.With("service", "RedisGuard"),
	}, nil
}

func (g *RedisGuard) cooldownKey() string          { return g.prefix + "cooldown" }
func (g *RedisGuard) attemptsKey(id string) string { return g.prefix + "attempts:" + id }
func (g *RedisGuard) hashKey(h string) string      { return g.prefix + "hash:" + h }

func (g *RedisGuard) CooldownActive(ctx context.Context) (bool, error) {
	n, err := g.rdb.Exists(ctx, g.cooldownKey()).Result()
	if err != nil {
		return false, fmt.Errorf("redis cooldown: %w", err)
	}
	return n > 0, nil
}

// Allow mirrors MemoryGuard: the window restarts from the latest attempt,
// and a rejected attempt is not counted.
func (g *RedisGuard) Allow(ctx context.Context, clientID string) (bool, error) {
	key := g.attemptsKey(clientID)
	count, err := g.rdb.Get(ctx, key).Int()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return false, fmt.Errorf("redis attempts: %w", err)
	}
	if count >= g.limits.RateLimitMax {
		return false, nil
	}

	pipe := g.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.PExpire(ctx, key, g.limits.RateLimitWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis record attempt: %w", err)
	}
	return true, nil
}

func (g *RedisGuard) IsDuplicate(ctx context.Context, contentHash string) (bool, error) {
	n, err := g.rdb.Exists(ctx, g.hashKey(contentHash)).Result()
	if err != nil {
		return false, fmt.Errorf("redis duplicate: %w", err)
	}
	return n > 0, nil
}

func (g *RedisGuard) MarkAccepted(ctx context.Context, contentHash string) error {
	pipe := g.rdb.TxPipeline()
	if g.limits.GlobalCooldown > 0 {
		pipe.Set(ctx, g.cooldownKey(), 1, g.limits.GlobalCooldown)
	}
	if g.limits.DuplicateWindow > 0 {
		pipe.Set(ctx, g.hashKey(contentHash), 1, g.limits.DuplicateWindow)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis mark accepted: %w", err)
	}
	return nil
}

func (g *RedisGuard) Close() error {
	return g.rdb.Close()
}

var _ ports.SubmissionGuard = (*RedisGuard)(nil)
