package factory

import (
	"context"
	"fmt"

	"github.com/mikey/email-triage/internal/adapters/cache"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates sentiment answer caches based on configuration
type CacheFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	closers *Closers
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger, closers *Closers) *CacheFactory {
	return &CacheFactory{
		cfg:     cfg,
		logger:  logger,
		closers: closers,
	}
}

// CreateSentimentCache creates the configured cache. It returns nil, nil when
// caching is disabled.
func (f *CacheFactory) CreateSentimentCache() (core.SentimentCache, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, fmt.Errorf("invalid cache configuration: %w", err)
	}
	if !cacheCfg.Enabled {
		f.logger.Info("Sentiment cache disabled")
		return nil, nil
	}

	logger := f.logger.Named("cache")

	switch cacheCfg.Type {
	case "memory":
		c := cache.NewMemoryCache(logger, cacheCfg.CleanupFrequency)
		f.closers.Add(c)
		return c, nil
	case "sqlite":
		c, err := cache.NewSQLiteCache(cacheCfg.SQLitePath, logger, cacheCfg.CleanupFrequency)
		if err != nil {
			return nil, err
		}
		f.closers.Add(c)
		return c, nil
	case "mysql":
		c, err := cache.NewMySQLCache(cacheCfg.MySQLDSN, logger, cacheCfg.CleanupFrequency)
		if err != nil {
			return nil, err
		}
		f.closers.Add(c)
		return c, nil
	case "redis":
		client, err := cache.NewRedisClient(context.Background(),
			cacheCfg.Redis.Address, cacheCfg.Redis.Password, cacheCfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		c := cache.NewRedisCache(client, cacheCfg.Redis.Prefix, logger)
		f.closers.Add(c)
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}
