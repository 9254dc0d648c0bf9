package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS email_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL,
			content TEXT NOT NULL,
			sender TEXT NOT NULL,
			category TEXT NOT NULL,
			confidence REAL NOT NULL,
			suggested_response TEXT NOT NULL,
			route TEXT NOT NULL,
			received_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_email_results_category ON email_results(category)`,
	},
}

// SQLiteStore is a SQLite implementation of core.ResultRepository
type SQLiteStore struct {
	*sqlStore
}

// NewSQLiteStore opens the store at dbPath, creating the directory if needed
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	base, err := newSQLStore(context.Background(), db, sqliteDialect, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{sqlStore: base}, nil
}
