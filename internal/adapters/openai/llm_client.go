package openai

import (
	"context"
	"fmt"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// SentimentModel rates text polarity on the 1..5 star scale with an OpenAI chat model
type SentimentModel struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewSentimentModel creates a new OpenAI sentiment model
func NewSentimentModel(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *SentimentModel {
	return &SentimentModel{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}
}

// Name identifies the model in cache keys and logs
func (m *SentimentModel) Name() string {
	return "openai/" + m.modelName
}

// Analyze asks the chat model for a star rating of text
func (m *SentimentModel) Analyze(ctx context.Context, text string) (*core.SentimentSignal, error) {
	req := openai.ChatCompletionRequest{
		Model: m.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: utils.SentimentSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(utils.SentimentPromptFormat, text),
			},
		},
		MaxTokens:   m.maxTokens,
		Temperature: m.temperature,
		TopP:        m.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	signal, err := utils.ParseSentimentResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("OpenAI sentiment answer",
		zap.String("model", m.modelName),
		zap.String("response_id", resp.ID),
		zap.Int("stars", signal.Stars),
		zap.Float64("score", signal.Score))

	return signal, nil
}
