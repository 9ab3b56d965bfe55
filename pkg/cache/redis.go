package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a RedisCache.
type RedisConfig struct {
	// URL is a redis:// or rediss:// URL. When set, Addr, Password and DB
	// are ignored.
	URL      string
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key.
	Prefix string
	// Timeout bounds each command (default 2s).
	Timeout time.Duration
}

// RedisCache stores entries in Redis. Connection failures are retried with
// backoff; a missing key is a plain miss.
type RedisCache struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	backoff Backoff
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		var err error
		if opts, err = redis.ParseURL(cfg.URL); err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
	} else {
		opts = &redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	}
	return newRedisCache(ctx, redis.NewClient(opts), cfg)
}

func newRedisCache(ctx context.Context, client *redis.Client, cfg RedisConfig) (*RedisCache, error) {
	c := &RedisCache{client: client, prefix: cfg.Prefix, timeout: cfg.Timeout, backoff: DefaultBackoff}
	if c.timeout <= 0 {
		c.timeout = 2 * time.Second
	}
	if err := c.do(ctx, func(ctx context.Context) error { return c.client.Ping(ctx).Err() }); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return c, nil
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		data, err = c.client.Get(ctx, c.prefix+key).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in the cache.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.do(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
	})
}

// Delete removes a value from the cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.do(ctx, func(ctx context.Context) error {
		return c.client.Del(ctx, c.prefix+key).Err()
	})
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// do runs fn with a per-attempt timeout, retrying network failures.
func (c *RedisCache) do(ctx context.Context, fn func(context.Context) error) error {
	return c.backoff.Retry(ctx, func() error {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		err := fn(cctx)
		if isNetError(err) {
			return Retryable(err)
		}
		return err
	})
}

func isNetError(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}
	var ne net.Error
	return errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded)
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
