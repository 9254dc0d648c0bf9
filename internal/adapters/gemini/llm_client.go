package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// SentimentModel rates text polarity on the 1..5 star scale with Google Gemini
type SentimentModel struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    *zap.Logger
}

// NewSentimentModel creates a new Gemini sentiment model
func NewSentimentModel(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) (*SentimentModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"

	return &SentimentModel{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
	}, nil
}

// Close closes the Gemini client
func (m *SentimentModel) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// Name identifies the model in cache keys and logs
func (m *SentimentModel) Name() string {
	return "gemini/" + m.modelName
}

// Analyze asks Gemini for a star rating of text
func (m *SentimentModel) Analyze(ctx context.Context, text string) (*core.SentimentSignal, error) {
	resp, err := m.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(utils.SentimentPromptFormat, text)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	responseText, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	signal, err := utils.ParseSentimentResponse(responseText)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Gemini sentiment answer",
		zap.String("model", m.modelName),
		zap.Int("stars", signal.Stars),
		zap.Float64("score", signal.Score))

	return signal, nil
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text in Gemini response")
	}

	return b.String(), nil
}
