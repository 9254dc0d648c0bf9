package factory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/sentiment"
	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
)

// errProviderDisabled marks the "none" provider
var errProviderDisabled = errors.New("sentiment provider disabled")

// SentimentFactory creates the sentiment model for the configured provider and
// the port the classifier queries
type SentimentFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	closers       *Closers
}

// NewSentimentFactory creates a new sentiment factory
func NewSentimentFactory(
	cfg *config.Config,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	closers *Closers,
) *SentimentFactory {
	return &SentimentFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
		closers:       closers,
	}
}

// CreateSentimentModel creates a model for sentiment.provider
func (f *SentimentFactory) CreateSentimentModel() (core.SentimentModel, error) {
	sentimentCfg, err := f.cfg.GetSentiment()
	if err != nil {
		return nil, err
	}

	logger := f.logger.Named("sentiment")

	switch provider := strings.ToLower(sentimentCfg.Provider); provider {
	case "huggingface":
		return NewHuggingFaceFactory(f.cfg, logger).CreateSentimentModel()
	case "openai":
		return NewOpenAIFactory(f.cfg, logger).CreateSentimentModel()
	case "gemini":
		return NewGeminiFactory(f.cfg, logger, f.closers).CreateSentimentModel()
	case "bedrock":
		return NewBedrockFactory(f.cfg, logger).CreateSentimentModel()
	case "none", "":
		return nil, errProviderDisabled
	default:
		return nil, fmt.Errorf("unsupported sentiment provider: %s", provider)
	}
}

// CreateSentimentPort wraps the configured model in a port. A model that cannot
// be built degrades to a permanently unavailable port; the classifier then
// always takes its fallback branch. Only invalid durations fail.
func (f *SentimentFactory) CreateSentimentPort(cache core.SentimentCache) (core.SentimentPort, error) {
	sentimentCfg, err := f.cfg.GetSentiment()
	if err != nil {
		return nil, err
	}

	model, err := f.CreateSentimentModel()
	if err != nil {
		if errors.Is(err, errProviderDisabled) {
			f.logger.Info("Sentiment capability disabled, classifying with lexical fallback only")
		} else {
			f.logger.Warn("Sentiment capability unavailable, classifying with lexical fallback only",
				zap.String("provider", sentimentCfg.Provider),
				zap.Error(err))
		}
		return sentiment.NewUnavailable(err), nil
	}

	opts := sentiment.Options{
		MaxLength:       sentimentCfg.MaxLength,
		Timeout:         sentimentCfg.Timeout,
		BreakerFailures: sentimentCfg.BreakerFailures,
		BreakerCooldown: sentimentCfg.BreakerCooldown,
	}
	if cache != nil {
		cacheCfg, err := f.cfg.GetCache()
		if err != nil {
			return nil, err
		}
		opts.CacheTTL = cacheCfg.TTL
	}

	f.logger.Info("Sentiment capability configured",
		zap.String("model", model.Name()),
		zap.Int("max_length", sentimentCfg.MaxLength),
		zap.Duration("timeout", sentimentCfg.Timeout),
		zap.Bool("cache", cache != nil))

	return sentiment.NewPort(model, cache, f.textProcessor, opts, f.logger.Named("sentiment")), nil
}
