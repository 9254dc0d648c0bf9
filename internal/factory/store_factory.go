package factory

import (
	"fmt"

	"github.com/mikey/email-triage/internal/adapters/store"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates result history stores based on configuration
type StoreFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	closers *Closers
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger, closers *Closers) *StoreFactory {
	return &StoreFactory{
		cfg:     cfg,
		logger:  logger,
		closers: closers,
	}
}

// CreateResultRepository creates the store selected by store.type
func (f *StoreFactory) CreateResultRepository() (core.ResultRepository, error) {
	storeCfg := f.cfg.GetStore()
	logger := f.logger.Named("store")

	switch storeCfg.Type {
	case "memory":
		s := store.NewMemoryStore()
		f.closers.Add(s)
		return s, nil
	case "sqlite":
		s, err := store.NewSQLiteStore(storeCfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		f.closers.Add(s)
		return s, nil
	case "mysql":
		s, err := store.NewMySQLStore(storeCfg.MySQLDSN, logger)
		if err != nil {
			return nil, err
		}
		f.closers.Add(s)
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeCfg.Type)
	}
}
