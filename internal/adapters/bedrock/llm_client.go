package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
)

// InvokeModelAPI is the part of the Bedrock runtime client the model uses
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// SentimentModel rates text polarity on the 1..5 star scale with a Bedrock model
type SentimentModel struct {
	client      InvokeModelAPI
	modelID     string
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewSentimentModel creates a new Bedrock sentiment model
func NewSentimentModel(
	client InvokeModelAPI,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *SentimentModel {
	return &SentimentModel{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}
}

// Name identifies the model in cache keys and logs
func (m *SentimentModel) Name() string {
	return "bedrock/" + m.modelID
}

// Analyze asks the Bedrock model for a star rating of text
func (m *SentimentModel) Analyze(ctx context.Context, text string) (*core.SentimentSignal, error) {
	payload, err := m.buildPayload(fmt.Sprintf(utils.SentimentPromptFormat, text))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := m.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(m.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	responseText, err := m.extractText(resp.Body)
	if err != nil {
		return nil, err
	}

	signal, err := utils.ParseSentimentResponse(responseText)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("Bedrock sentiment answer",
		zap.String("model", m.modelID),
		zap.Int("stars", signal.Stars),
		zap.Float64("score", signal.Score))

	return signal, nil
}

// buildPayload renders the request body for the model family
func (m *SentimentModel) buildPayload(prompt string) ([]byte, error) {
	switch {
	case m.isAnthropicModel():
		return json.Marshal(map[string]interface{}{
			"prompt":               "\n\nHuman: " + prompt + "\n\nAssistant:",
			"max_tokens_to_sample": m.maxTokens,
			"temperature":          m.temperature,
			"top_p":                m.topP,
		})
	case m.isAmazonTitanModel():
		return json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": m.maxTokens,
				"temperature":   m.temperature,
				"topP":          m.topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  m.maxTokens,
			"temperature": m.temperature,
			"top_p":       m.topP,
		})
	}
}

// extractText pulls the generated text out of a model family response
func (m *SentimentModel) extractText(body []byte) (string, error) {
	switch {
	case m.isAnthropicModel():
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	case m.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	default:
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		for _, candidate := range []string{genericResp.Output, genericResp.Text, genericResp.Response} {
			if candidate != "" {
				return candidate, nil
			}
		}
		return string(body), nil
	}
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (m *SentimentModel) isAnthropicModel() bool {
	return strings.HasPrefix(m.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (m *SentimentModel) isAmazonTitanModel() bool {
	return strings.HasPrefix(m.modelID, "amazon.titan")
}
