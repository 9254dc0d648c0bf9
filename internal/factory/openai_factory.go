package factory

import (
	"fmt"

	"github.com/mikey/email-triage/internal/adapters/openai"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIFactory creates OpenAI sentiment models
type OpenAIFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewOpenAIFactory creates a new OpenAI factory
func NewOpenAIFactory(cfg *config.Config, logger *zap.Logger) *OpenAIFactory {
	return &OpenAIFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSentimentModel creates an OpenAI sentiment model
func (f *OpenAIFactory) CreateSentimentModel() (core.SentimentModel, error) {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	return openai.NewSentimentModel(
		goopenai.NewClient(openaiCfg.APIKey),
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		f.logger,
	), nil
}
