package store

import (
	"context"
	"sync"

	"github.com/mikey/email-triage/internal/core"
)

// MemoryStore is an in-memory implementation of core.ResultRepository
type MemoryStore struct {
	mu      sync.RWMutex
	records []core.EmailRecord
	nextID  int64
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Save stores the record and assigns its ID
func (s *MemoryStore) Save(_ context.Context, record *core.EmailRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = s.nextID
	s.nextID++
	s.records = append(s.records, *record)
	return nil
}

// Recent returns up to limit records, newest first
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]core.EmailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}

	recent := make([]core.EmailRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(recent) < limit; i-- {
		recent = append(recent, s.records[i])
	}
	return recent, nil
}

// Counts returns the total and productive record counts
func (s *MemoryStore) Counts(_ context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	productive := 0
	for _, record := range s.records {
		if record.Result.IsProductive {
			productive++
		}
	}
	return len(s.records), productive, nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
