package factory

import (
	"fmt"

	"github.com/mikey/email-triage/internal/adapters/api"
	"github.com/mikey/email-triage/internal/adapters/filter"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/ports"
	"github.com/mikey/email-triage/internal/whitelist"
	"go.uber.org/zap"
)

// FilterFactory creates the inbound transport based on configuration
type FilterFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.EmailService
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.EmailService) *FilterFactory {
	return &FilterFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateEmailFilter creates the filter selected by server.filter_type
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	serverCfg := f.cfg.GetServer()

	switch serverCfg.FilterType {
	case "http":
		httpCfg, err := f.cfg.GetHTTP()
		if err != nil {
			return nil, err
		}
		return api.NewServer(f.service, httpCfg, f.logger.Named("http")), nil
	case "postfix":
		checker := whitelist.NewChecker(serverCfg.SkipDomains, f.logger)
		return filter.NewPostfixFilter(f.service, checker, serverCfg, f.logger.Named("postfix")), nil
	case "cli":
		return filter.NewCliFilter(
			f.service,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
			f.cfg.GetBool("cli.json"),
		), nil
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", serverCfg.FilterType)
	}
}
