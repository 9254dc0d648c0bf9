// Package huggingface calls a star-rating text classification model hosted on
// the HuggingFace Inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// maxResponseBody bounds how much of an answer is read. Real answers carry five labels.
const maxResponseBody = 64 << 10

// maxErrorBody limits how much of an error response is kept in the error
const maxErrorBody = 512

// prediction is one label of a text classification answer
type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type request struct {
	Inputs  string         `json:"inputs"`
	Options requestOptions `json:"options"`
}

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// SentimentModel rates text polarity with a "N stars" classification model
type SentimentModel struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
	logger     *zap.Logger
}

// NewSentimentModel creates a new HuggingFace sentiment model. endpoint is the
// models base URL; a nil httpClient uses http.DefaultClient.
func NewSentimentModel(httpClient *http.Client, endpoint, model, apiKey string, logger *zap.Logger) (*SentimentModel, error) {
	if model == "" {
		return nil, fmt.Errorf("huggingface model name is required")
	}
	if endpoint == "" {
		return nil, fmt.Errorf("huggingface endpoint is required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &SentimentModel{
		httpClient: httpClient,
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		apiKey:     apiKey,
		logger:     logger,
	}, nil
}

// Name identifies the model in cache keys and logs
func (m *SentimentModel) Name() string {
	return "huggingface/" + m.model
}

// Analyze classifies text and returns the most probable star label
func (m *SentimentModel) Analyze(ctx context.Context, text string) (*core.SentimentSignal, error) {
	body, err := json.Marshal(request{Inputs: text, Options: requestOptions{WaitForModel: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint+"/"+m.model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call HuggingFace: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read HuggingFace response: %w", err)
	}
	if len(data) > maxResponseBody {
		return nil, fmt.Errorf("huggingface response exceeds %d bytes", maxResponseBody)
	}

	if resp.StatusCode != http.StatusOK {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, fmt.Errorf("huggingface returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	best, err := bestPrediction(data)
	if err != nil {
		return nil, err
	}

	stars, err := core.ParseStars(best.Label)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("HuggingFace sentiment answer",
		zap.String("model", m.model),
		zap.String("label", best.Label),
		zap.Float64("score", best.Score))

	return &core.SentimentSignal{Label: best.Label, Stars: stars, Score: best.Score}, nil
}

// bestPrediction accepts both the nested [[...]] and the flat [...] answer shapes
func bestPrediction(data []byte) (prediction, error) {
	var predictions []prediction

	var nested [][]prediction
	if err := json.Unmarshal(data, &nested); err == nil && len(nested) > 0 {
		predictions = nested[0]
	} else if err := json.Unmarshal(data, &predictions); err != nil {
		return prediction{}, fmt.Errorf("failed to parse HuggingFace response: %w", err)
	}

	if len(predictions) == 0 {
		return prediction{}, fmt.Errorf("empty response from HuggingFace")
	}

	best := predictions[0]
	for _, p := range predictions[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	return best, nil
}
