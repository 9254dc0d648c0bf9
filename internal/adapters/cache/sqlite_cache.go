package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS sentiment_cache (
			cache_key TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			stars INTEGER NOT NULL,
			score REAL NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sentiment_cache_expires_at ON sentiment_cache(expires_at)`,
	},
	upsert: `INSERT OR REPLACE INTO sentiment_cache (cache_key, label, stars, score, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
}

// SQLiteCache is a SQLite implementation of core.SentimentCache
type SQLiteCache struct {
	*sqlCache
}

// NewSQLiteCache creates a new SQLite cache, creating the database directory if needed
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// sqlite serializes writers; a single connection avoids "database is locked"
	db.SetMaxOpenConns(1)

	base, err := newSQLCache(context.Background(), db, sqliteDialect, logger, cleanupFreq)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteCache{sqlCache: base}, nil
}
