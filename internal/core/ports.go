package core

import (
	"context"
	"errors"
)

var (
	// ErrSentimentUnavailable marks a missing, failing or timed out sentiment capability
	ErrSentimentUnavailable = errors.New("sentiment capability unavailable")
	// ErrNotFound is returned by caches and stores for unknown keys
	ErrNotFound = errors.New("not found")
)

// SentimentModel is the external sentiment capability (text -> label, score).
// Implementations may fail in any way; the sentiment port absorbs the failures.
type SentimentModel interface {
	// Analyze rates the polarity of text on the 1..5 star scale
	Analyze(ctx context.Context, text string) (*SentimentSignal, error)

	// Name identifies the model, used in cache keys and logs
	Name() string
}

// SentimentPort is the boundary the classifier queries.
// It never returns an error; a failed call yields an unavailable reading.
type SentimentPort interface {
	Classify(ctx context.Context, text string) SentimentReading
}

// SentimentCache stores answers of the sentiment capability
type SentimentCache interface {
	// Get retrieves a cached entry; ErrNotFound when missing or expired
	Get(ctx context.Context, key string) (*SentimentCacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *SentimentCacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// EmailClassifier decides the category and confidence for an email
type EmailClassifier interface {
	Classify(ctx context.Context, email EmailInput) ClassificationResult
}

// ResponseSelector picks a canned reply for a classified email
type ResponseSelector interface {
	Select(category Category, content string) string
}

// ResultRepository persists processed emails
type ResultRepository interface {
	// Save stores the record and assigns its ID
	Save(ctx context.Context, record *EmailRecord) error

	// Recent returns the latest records, newest first. A non-positive limit
	// returns every record.
	Recent(ctx context.Context, limit int) ([]EmailRecord, error)

	// Counts returns the total number of records and how many are productive
	Counts(ctx context.Context) (total int, productive int, err error)
}
