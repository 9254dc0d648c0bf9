package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// dialect holds the statements that differ between SQL backends
type dialect struct {
	name   string
	schema []string
	upsert string
}

// sqlCache is a core.SentimentCache over database/sql. Timestamps are stored
// as unix seconds so expiry checks do not depend on the server clock format.
type sqlCache struct {
	db          *sql.DB
	dialect     dialect
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	now         func() time.Time
}

func newSQLCache(ctx context.Context, db *sql.DB, d dialect, logger *zap.Logger, cleanupFreq time.Duration) (*sqlCache, error) {
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create %s cache schema: %w", d.name, err)
		}
	}

	cache := &sqlCache{
		db:          db,
		dialect:     d,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		now:         time.Now,
	}

	if cleanupFreq > 0 {
		go cache.startCleanupTask()
	}

	return cache, nil
}

// Get retrieves a cached entry
func (c *sqlCache) Get(ctx context.Context, key string) (*core.SentimentCacheEntry, error) {
	var (
		entry              core.SentimentCacheEntry
		createdAt, expires int64
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT cache_key, label, stars, score, created_at, expires_at
		FROM sentiment_cache
		WHERE cache_key = ? AND expires_at > ?
	`, key, c.now().Unix()).Scan(
		&entry.Key, &entry.Signal.Label, &entry.Signal.Stars, &entry.Signal.Score, &createdAt, &expires)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query %s cache: %w", c.dialect.name, err)
	}

	entry.CreatedAt = time.Unix(createdAt, 0)
	entry.ExpiresAt = time.Unix(expires, 0)

	return &entry, nil
}

// Set stores a cache entry
func (c *sqlCache) Set(ctx context.Context, entry *core.SentimentCacheEntry) error {
	_, err := c.db.ExecContext(ctx, c.dialect.upsert,
		entry.Key,
		entry.Signal.Label,
		entry.Signal.Stars,
		entry.Signal.Score,
		entry.CreatedAt.Unix(),
		entry.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s cache entry: %w", c.dialect.name, err)
	}
	return nil
}

// Delete removes a cache entry
func (c *sqlCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM sentiment_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM sentiment_cache WHERE expires_at <= ?`, c.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *sqlCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Warn("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Close stops the background cleanup task and closes the database connection
func (c *sqlCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close %s cache: %w", c.dialect.name, err)
	}
	return nil
}
