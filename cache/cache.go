// Package cache is the short-lived read-through cache in front of MongoDB.
//
// Keys follow "<resource>:<id>" for details and "<resource>:<query>" for
// lists, where <query> is the canonical encoding of the raw query string.
// Writes delete the detail key and every key under the resource prefix.
//
// Redis trouble never fails a request: reads degrade to a miss and writes
// are logged and dropped. A circuit breaker stops hammering an unhealthy
// Redis.
package cache

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	DefaultTTL = 60 * time.Second

	SourceCache    = "cache"
	SourceDatabase = "database"
)

type Cache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *zap.Logger
}

func New(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{client: client, ttl: ttl, logger: logger}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

// DetailKey is "<resource>:<id>".
func DetailKey(resource, id string) string {
	return resource + ":" + id
}

// ListKey is "<resource>:<canonical query>".
func ListKey(resource string, raw url.Values) string {
	return resource + ":" + raw.Encode()
}

// Prefix matches every list key of a resource.
func Prefix(resource string) string {
	return resource + ":*"
}

// Get returns the cached payload. Any Redis failure is reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.breaker.Execute(func() ([]byte, error) {
		v, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return v, err
	})
	if err != nil {
		cacheRequests.WithLabelValues("error").Inc()
		c.logger.Warn("cache read failed, serving from database", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if val == nil {
		cacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
	cacheRequests.WithLabelValues("hit").Inc()
	return val, true
}

// Set stores payload under key with the cache TTL.
func (c *Cache) Set(ctx context.Context, key string, payload []byte) {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, key, payload, c.ttl).Err()
	})
	if err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate deletes the given keys and every key matching the patterns.
// Failures are logged: stale entries then live until their TTL.
func (c *Cache) Invalidate(ctx context.Context, keys []string, patterns ...string) {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		doomed := append([]string(nil), keys...)
		for _, pattern := range patterns {
			iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
			for iter.Next(ctx) {
				doomed = append(doomed, iter.Val())
			}
			if err := iter.Err(); err != nil {
				return nil, err
			}
		}
		if len(doomed) == 0 {
			return nil, nil
		}
		return nil, c.client.Unlink(ctx, doomed...).Err()
	})
	if err != nil {
		cacheInvalidationFailures.Inc()
		c.logger.Warn("cache invalidation failed, stale entries expire with TTL",
			zap.Strings("keys", keys), zap.Strings("patterns", patterns), zap.Error(err))
	}
}

// Remember serves key from the cache, or runs load, stores its JSON encoding
// and returns it. source is "cache" or "database". Errors from load are
// returned untouched and nothing is cached.
func (c *Cache) Remember(ctx context.Context, key string, load func(context.Context) (any, error)) ([]byte, string, error) {
	if raw, ok := c.Get(ctx, key); ok {
		return raw, SourceCache, nil
	}
	v, err := load(ctx)
	if err != nil {
		return nil, "", err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, "", err
	}
	c.Set(ctx, key, raw)
	return raw, SourceDatabase, nil
}

// Ping checks Redis directly, bypassing the breaker.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
