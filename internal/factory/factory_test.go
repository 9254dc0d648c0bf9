package factory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mikey/email-triage/internal/adapters/api"
	"github.com/mikey/email-triage/internal/adapters/cache"
	"github.com/mikey/email-triage/internal/adapters/filter"
	"github.com/mikey/email-triage/internal/adapters/store"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/sentiment"
	"github.com/mikey/email-triage/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newConfig(values map[string]any) *config.Config {
	v := config.NewEmptyViper()
	for k, val := range values {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func newSentimentFactory(cfg *config.Config) *SentimentFactory {
	logger := zap.NewNop()
	return NewSentimentFactory(cfg, logger, utils.NewTextProcessor(logger), NewClosers())
}

func TestSentimentPortDegrades(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"disabled", map[string]any{"sentiment.provider": "none"}},
		{"unknown provider", map[string]any{"sentiment.provider": "watson"}},
		{"openai without key", map[string]any{"sentiment.provider": "openai", "openai.api_key": ""}},
		{"gemini without key", map[string]any{"sentiment.provider": "gemini", "gemini.api_key": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port, err := newSentimentFactory(newConfig(tt.values)).CreateSentimentPort(nil)
			require.NoError(t, err)
			require.IsType(t, &sentiment.Unavailable{}, port)

			reading := port.Classify(context.Background(), "texto")
			assert.False(t, reading.Available)
			assert.True(t, errors.Is(reading.Err, core.ErrSentimentUnavailable))
		})
	}
}

func TestSentimentPortHuggingFace(t *testing.T) {
	cfg := newConfig(map[string]any{"sentiment.provider": "huggingface"})

	port, err := newSentimentFactory(cfg).CreateSentimentPort(cache.NewMemoryCache(zap.NewNop(), 0))
	require.NoError(t, err)
	assert.IsType(t, &sentiment.Port{}, port)
}

func TestSentimentPortInvalidDuration(t *testing.T) {
	cfg := newConfig(map[string]any{"sentiment.timeout": "soon"})

	_, err := newSentimentFactory(cfg).CreateSentimentPort(nil)
	assert.Error(t, err)
}

func TestCreateSentimentCache(t *testing.T) {
	closers := NewClosers()

	c, err := NewCacheFactory(newConfig(map[string]any{"cache.enabled": false}), zap.NewNop(), closers).CreateSentimentCache()
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = NewCacheFactory(newConfig(map[string]any{"cache.type": "memory"}), zap.NewNop(), closers).CreateSentimentCache()
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryCache{}, c)

	c, err = NewCacheFactory(newConfig(map[string]any{
		"cache.type":        "sqlite",
		"cache.sqlite_path": filepath.Join(t.TempDir(), "cache.db"),
	}), zap.NewNop(), closers).CreateSentimentCache()
	require.NoError(t, err)
	assert.IsType(t, &cache.SQLiteCache{}, c)

	_, err = NewCacheFactory(newConfig(map[string]any{"cache.type": "memcached"}), zap.NewNop(), closers).CreateSentimentCache()
	assert.Error(t, err)

	assert.NoError(t, closers.Close())
}

func TestCreateResultRepository(t *testing.T) {
	closers := NewClosers()

	repo, err := NewStoreFactory(newConfig(nil), zap.NewNop(), closers).CreateResultRepository()
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, repo)

	repo, err = NewStoreFactory(newConfig(map[string]any{
		"store.type":        "sqlite",
		"store.sqlite_path": filepath.Join(t.TempDir(), "emails.db"),
	}), zap.NewNop(), closers).CreateResultRepository()
	require.NoError(t, err)
	assert.IsType(t, &store.SQLiteStore{}, repo)

	_, err = NewStoreFactory(newConfig(map[string]any{"store.type": "postgres"}), zap.NewNop(), closers).CreateResultRepository()
	assert.Error(t, err)

	assert.NoError(t, closers.Close())
}

func TestCreateEmailFilter(t *testing.T) {
	service := core.NewEmailService(nil, nil, nil, zap.NewNop())

	tests := []struct {
		filterType string
		want       any
	}{
		{"http", &api.Server{}},
		{"postfix", &filter.PostfixFilter{}},
		{"cli", &filter.CliFilter{}},
	}

	for _, tt := range tests {
		t.Run(tt.filterType, func(t *testing.T) {
			cfg := newConfig(map[string]any{"server.filter_type": tt.filterType})
			f, err := NewFilterFactory(cfg, zap.NewNop(), service).CreateEmailFilter()
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}

	_, err := NewFilterFactory(newConfig(map[string]any{"server.filter_type": "milter"}), zap.NewNop(), service).CreateEmailFilter()
	assert.Error(t, err)
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

func TestClosers(t *testing.T) {
	closers := NewClosers()

	var order []int
	closers.Add(nil)
	closers.Add(closeFunc(func() error { order = append(order, 1); return errors.New("first") }))
	closers.Add(closeFunc(func() error { order = append(order, 2); return nil }))
	closers.Add(closeFunc(func() error { order = append(order, 3); return errors.New("third") }))

	err := closers.Close()
	require.Error(t, err)
	assert.Equal(t, []int{3, 2, 1}, order)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "third")

	assert.NoError(t, closers.Close(), "closing twice is a no-op")
}
