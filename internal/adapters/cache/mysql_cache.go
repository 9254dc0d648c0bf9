package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlDialect = dialect{
	name: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS sentiment_cache (
			cache_key CHAR(64) PRIMARY KEY,
			label VARCHAR(32) NOT NULL,
			stars TINYINT NOT NULL,
			score DOUBLE NOT NULL,
			created_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_sentiment_cache_expires_at (expires_at)
		)`,
	},
	upsert: `INSERT INTO sentiment_cache (cache_key, label, stars, score, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			label = VALUES(label),
			stars = VALUES(stars),
			score = VALUES(score),
			created_at = VALUES(created_at),
			expires_at = VALUES(expires_at)`,
}

// MySQLCache is a MySQL implementation of core.SentimentCache
type MySQLCache struct {
	*sqlCache
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	base, err := newSQLCache(ctx, db, mysqlDialect, logger, cleanupFreq)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &MySQLCache{sqlCache: base}, nil
}
