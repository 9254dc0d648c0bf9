package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/email-triage/internal/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisEntry is the stored form of a cache entry
type redisEntry struct {
	Label     string  `json:"label"`
	Stars     int     `json:"stars"`
	Score     float64 `json:"score"`
	CreatedAt int64   `json:"created_at"`
	ExpiresAt int64   `json:"expires_at"`
}

// RedisCache is a redis implementation of core.SentimentCache. Expiry is
// delegated to redis key TTLs.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(ctx context.Context, address, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         address,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// NewRedisCache creates a cache storing entries under prefix
func NewRedisCache(client redis.UniversalClient, prefix string, logger *zap.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + key
}

// Get retrieves a cached entry
func (c *RedisCache) Get(ctx context.Context, key string) (*core.SentimentCacheEntry, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query redis cache: %w", err)
	}

	var stored redisEntry
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode redis cache entry: %w", err)
	}

	return &core.SentimentCacheEntry{
		Key:       key,
		Signal:    core.SentimentSignal{Label: stored.Label, Stars: stored.Stars, Score: stored.Score},
		CreatedAt: time.Unix(stored.CreatedAt, 0),
		ExpiresAt: time.Unix(stored.ExpiresAt, 0),
	}, nil
}

// Set stores a cache entry with a TTL derived from its expiry time.
// Entries already expired are not stored.
func (c *RedisCache) Set(ctx context.Context, entry *core.SentimentCacheEntry) error {
	ttl := entry.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		c.logger.Debug("Skipping expired cache entry", zap.String("key", entry.Key))
		return nil
	}

	data, err := json.Marshal(redisEntry{
		Label:     entry.Signal.Label,
		Stars:     entry.Signal.Stars,
		Score:     entry.Signal.Score,
		CreatedAt: entry.CreatedAt.Unix(),
		ExpiresAt: entry.ExpiresAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode redis cache entry: %w", err)
	}

	if err := c.client.Set(ctx, c.key(entry.Key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write redis cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete redis cache entry: %w", err)
	}
	return nil
}

// Cleanup is a no-op: redis expires keys itself
func (c *RedisCache) Cleanup(context.Context) error {
	return nil
}

// Close closes the redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
