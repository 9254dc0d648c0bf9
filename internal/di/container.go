package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/lexicon"
	"github.com/mikey/email-triage/internal/logging"
	"github.com/mikey/email-triage/internal/ports"
	"github.com/mikey/email-triage/internal/scoring"
	"github.com/mikey/email-triage/internal/utils"
)

// BuildContainer creates and configures the dependency injection container of the daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(config.New); err != nil {
		return nil, err
	}
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}
	if err := provideEngine(container); err != nil {
		return nil, err
	}

	// Register cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.SentimentCache, error) {
		return f.CreateSentimentCache()
	}); err != nil {
		return nil, err
	}

	// Register result store
	if err := container.Provide(func(f *factory.StoreFactory) (core.ResultRepository, error) {
		return f.CreateResultRepository()
	}); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
		return nil, err
	}

	return container, nil
}

// provideEngine registers everything between configuration and the scoring engine
func provideEngine(container *dig.Container) error {
	constructors := []any{
		factory.NewClosers,
		factory.NewSentimentFactory,
		factory.NewCacheFactory,
		factory.NewStoreFactory,
		factory.NewFilterFactory,

		func(logger *zap.Logger) *utils.TextProcessor {
			return utils.NewTextProcessor(logger.Named("text"))
		},

		func(f *factory.SentimentFactory, cache core.SentimentCache) (core.SentimentPort, error) {
			return f.CreateSentimentPort(cache)
		},

		loadLexicon,

		func(lex *lexicon.Lexicon, port core.SentimentPort, logger *zap.Logger) (core.EmailClassifier, error) {
			return scoring.NewClassifier(lex, port, logger.Named("classifier"))
		},

		func(lex *lexicon.Lexicon) (core.ResponseSelector, error) {
			return scoring.NewResponseSelector(lex, nil)
		},
	}

	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}
	return nil
}

// provideService registers the consumer API and the inbound transport
func provideService(container *dig.Container) error {
	if err := container.Provide(core.NewEmailService); err != nil {
		return err
	}

	return container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	})
}

// loadLexicon reads the configured lexicon file over the built-in tables and
// applies the configured factor weights. Validation happens in the engine.
func loadLexicon(cfg *config.Config, logger *zap.Logger) (*lexicon.Lexicon, error) {
	classifierCfg := cfg.GetClassifier()

	lex, err := lexicon.Load(classifierCfg.LexiconFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}
	lex.Weights = classifierCfg.Weights

	if classifierCfg.LexiconFile != "" {
		logger.Info("Loaded lexicon", zap.String("file", classifierCfg.LexiconFile))
	}

	return lex, nil
}
