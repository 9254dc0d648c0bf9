package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// dialect holds the statements that differ between SQL backends
type dialect struct {
	name   string
	schema []string
}

// sqlStore is a core.ResultRepository over database/sql
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect, logger *zap.Logger) (*sqlStore, error) {
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create %s store schema: %w", d.name, err)
		}
	}
	return &sqlStore{db: db, dialect: d, logger: logger}, nil
}

// Save stores the record and assigns its ID
func (s *sqlStore) Save(ctx context.Context, record *core.EmailRecord) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO email_results
			(subject, content, sender, category, confidence, suggested_response, route, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Input.Subject,
		record.Input.Content,
		record.Input.Sender,
		string(record.Result.Category),
		record.Result.Confidence,
		record.Result.SuggestedResponse,
		string(record.Result.Route),
		record.ReceivedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s email result: %w", s.dialect.name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read %s email result id: %w", s.dialect.name, err)
	}
	record.ID = id

	s.logger.Debug("Stored email result", zap.Int64("id", id), zap.String("category", string(record.Result.Category)))
	return nil
}

const recentQuery = `
		SELECT id, subject, content, sender, category, confidence, suggested_response, route, received_at
		FROM email_results
		ORDER BY id DESC`

// Recent returns up to limit records, newest first. A non-positive limit
// returns every record.
func (s *sqlStore) Recent(ctx context.Context, limit int) ([]core.EmailRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, recentQuery+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, recentQuery)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s email results: %w", s.dialect.name, err)
	}
	defer rows.Close()

	records := make([]core.EmailRecord, 0, max(limit, 0))
	for rows.Next() {
		var (
			record     core.EmailRecord
			category   string
			route      string
			receivedAt int64
		)
		if err := rows.Scan(
			&record.ID,
			&record.Input.Subject,
			&record.Input.Content,
			&record.Input.Sender,
			&category,
			&record.Result.Confidence,
			&record.Result.SuggestedResponse,
			&route,
			&receivedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan %s email result: %w", s.dialect.name, err)
		}
		record.Result.Category = core.Category(category)
		record.Result.IsProductive = record.Result.Category == core.CategoryProductive
		record.Result.Route = core.Route(route)
		record.ReceivedAt = time.UnixMilli(receivedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s email results: %w", s.dialect.name, err)
	}

	return records, nil
}

// Counts returns the total and productive record counts
func (s *sqlStore) Counts(ctx context.Context) (int, int, error) {
	var total, productive int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN category = ? THEN 1 ELSE 0 END), 0)
		FROM email_results`, string(core.CategoryProductive)).Scan(&total, &productive)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count %s email results: %w", s.dialect.name, err)
	}
	return total, productive, nil
}

// Close closes the database connection
func (s *sqlStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close %s store: %w", s.dialect.name, err)
	}
	return nil
}
