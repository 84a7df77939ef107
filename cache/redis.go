// Package cache stores finished analysis reports in Redis so repeated
// requests over the same dataset skip recomputation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultTTL is used when Options.TTL is zero.
const DefaultTTL = 24 * time.Hour

// Options configures a RedisReportCache.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key.
	Prefix string
	TTL    time.Duration
}

// RedisReportCache keeps JSON-encoded reports in Redis with a TTL.
type RedisReportCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    *logrus.Entry
}

// Connect dials Redis and verifies the connection with PING.
func Connect(ctx context.Context, opts Options, log *logrus.Entry) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: connecting to redis at %s: %w", opts.Addr, err)
	}

	c := New(client, opts.Prefix, opts.TTL, log)
	c.log.WithField("addr", opts.Addr).Info("report cache connected")
	return c, nil
}

// New wraps an existing client.
func New(client *redis.Client, prefix string, ttl time.Duration, log *logrus.Entry) *RedisReportCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &RedisReportCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		log:    log.WithField("component", "cache"),
	}
}

// Get decodes the report stored under key into dst. It reports false on a
// miss.
func (c *RedisReportCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("dropping undecodable cache entry")
		c.client.Del(ctx, c.prefix+key)
		return false, nil
	}
	return true, nil
}

// Set stores v under key for the configured TTL.
func (c *RedisReportCache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encoding %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (c *RedisReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}
