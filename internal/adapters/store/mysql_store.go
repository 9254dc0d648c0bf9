package store

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
		`CREATE TABLE IF NOT EXISTS email_results (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			subject TEXT NOT NULL,
			content MEDIUMTEXT NOT NULL,
			sender VARCHAR(320) NOT NULL,
			category VARCHAR(16) NOT NULL,
			confidence DOUBLE NOT NULL,
			suggested_response TEXT NOT NULL,
			route VARCHAR(16) NOT NULL,
			received_at BIGINT NOT NULL,
			INDEX idx_email_results_category (category)
		) DEFAULT CHARSET=utf8mb4`,
	},
}

// MySQLStore is a MySQL implementation of core.ResultRepository
type MySQLStore struct {
	*sqlStore
}

// NewMySQLStore connects to MySQL and creates the schema
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	base, err := newSQLStore(ctx, db, mysqlDialect, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &MySQLStore{sqlStore: base}, nil
}
