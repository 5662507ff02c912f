package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis stores entries under a per-namespace generation number.
// Invalidate bumps the generation, so stale keys are never read again and
// age out through their TTL; no key scan is needed.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedis wraps an existing client. prefix is prepended to every key.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl, log: logger}
}

// DialRedis parses url (redis://host:port/db) and pings the server.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *Redis) genKey(ns string) string {
	return c.prefix + ns + ":gen"
}

// Generation returns the current generation of ns. A namespace that was
// never invalidated is at generation 0.
func (c *Redis) Generation(ctx context.Context, ns string) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(ns)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *Redis) dataKey(ns string, gen int64, key string) string {
	return c.prefix + ns + ":" + strconv.FormatInt(gen, 10) + ":" + key
}

func (c *Redis) Get(ctx context.Context, ns, key string) ([]byte, bool) {
	gen, err := c.Generation(ctx, ns)
	if err != nil {
		c.log.Warn("cache generation lookup failed", zap.String("namespace", ns), zap.Error(err))
		return nil, false
	}
	val, err := c.client.Get(ctx, c.dataKey(ns, gen, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("cache get failed", zap.String("namespace", ns), zap.Error(err))
		}
		return nil, false
	}
	return val, true
}

// Set writes val under gen. If ns has already moved past gen the write is
// skipped; if it moves on after the check, the entry sits under a
// generation Get never reads and ages out through its TTL.
func (c *Redis) Set(ctx context.Context, ns, key string, gen int64, val []byte) {
	cur, err := c.Generation(ctx, ns)
	if err != nil {
		c.log.Warn("cache generation lookup failed", zap.String("namespace", ns), zap.Error(err))
		return
	}
	if cur != gen {
		return
	}
	if err := c.client.Set(ctx, c.dataKey(ns, gen, key), val, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", zap.String("namespace", ns), zap.Error(err))
	}
}

// Invalidate moves ns to a new generation.
func (c *Redis) Invalidate(ctx context.Context, ns string) error {
	return c.client.Incr(ctx, c.genKey(ns)).Err()
}
