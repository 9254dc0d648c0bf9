package factory

import (
	"context"
	"fmt"

	"github.com/mikey/email-triage/internal/adapters/gemini"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// GeminiFactory creates Gemini sentiment models
type GeminiFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	closers *Closers
}

// NewGeminiFactory creates a new Gemini factory
func NewGeminiFactory(cfg *config.Config, logger *zap.Logger, closers *Closers) *GeminiFactory {
	return &GeminiFactory{
		cfg:     cfg,
		logger:  logger,
		closers: closers,
	}
}

// CreateSentimentModel creates a Gemini sentiment model
func (f *GeminiFactory) CreateSentimentModel() (core.SentimentModel, error) {
	geminiCfg := f.cfg.GetGemini()
	if geminiCfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	model, err := gemini.NewSentimentModel(
		context.Background(),
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		f.logger,
	)
	if err != nil {
		return nil, err
	}

	f.closers.Add(model)
	return model, nil
}
