package factory

import (
	"net/http"

	"github.com/mikey/email-triage/internal/adapters/huggingface"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// HuggingFaceFactory creates HuggingFace Inference API sentiment models
type HuggingFaceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHuggingFaceFactory creates a new HuggingFace factory
func NewHuggingFaceFactory(cfg *config.Config, logger *zap.Logger) *HuggingFaceFactory {
	return &HuggingFaceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSentimentModel creates a HuggingFace sentiment model. The HTTP client
// carries no timeout of its own; the sentiment port bounds every call.
func (f *HuggingFaceFactory) CreateSentimentModel() (core.SentimentModel, error) {
	hfCfg := f.cfg.GetHuggingFace()

	return huggingface.NewSentimentModel(
		&http.Client{},
		hfCfg.Endpoint,
		hfCfg.Model,
		hfCfg.APIKey,
		f.logger,
	)
}
