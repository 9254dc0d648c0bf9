package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRuntime struct {
	input *bedrockruntime.InvokeModelInput
	body  string
	err   error
}

func (f *fakeRuntime) InvokeModel(_ context.Context, params *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func TestAnalyzeModelFamilies(t *testing.T) {
	tests := []struct {
		name       string
		modelID    string
		body       string
		payloadKey string
	}{
		{"claude", "anthropic.claude-v2", `{"completion":" {\"stars\": 1, \"score\": 0.9}"}`, "max_tokens_to_sample"},
		{"titan", "amazon.titan-text-express-v1", `{"results":[{"outputText":"{\"stars\": 1, \"score\": 0.9}"}]}`, "textGenerationConfig"},
		{"generic", "meta.llama3", `{"output":"{\"stars\": 1, \"score\": 0.9}"}`, "max_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runtime := &fakeRuntime{body: tt.body}
			model := NewSentimentModel(runtime, tt.modelID, 100, 0.1, 0.9, zap.NewNop())

			signal, err := model.Analyze(context.Background(), "problema urgente")
			require.NoError(t, err)
			assert.Equal(t, 1, signal.Stars)
			assert.InDelta(t, 0.9, signal.Score, 1e-9)

			require.NotNil(t, runtime.input)
			assert.Equal(t, tt.modelID, *runtime.input.ModelId)

			var payload map[string]any
			require.NoError(t, json.Unmarshal(runtime.input.Body, &payload))
			assert.Contains(t, payload, tt.payloadKey)
		})
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		modelID string
		runtime *fakeRuntime
	}{
		{"invoke error", "anthropic.claude-v2", &fakeRuntime{err: errors.New("throttled")}},
		{"bad claude body", "anthropic.claude-v2", &fakeRuntime{body: "not json"}},
		{"empty titan results", "amazon.titan-text-express-v1", &fakeRuntime{body: `{"results":[]}`}},
		{"unparseable answer", "meta.llama3", &fakeRuntime{body: `{"text":"neutral"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := NewSentimentModel(tt.runtime, tt.modelID, 100, 0.1, 0.9, zap.NewNop())
			_, err := model.Analyze(context.Background(), "texto")
			assert.Error(t, err)
		})
	}
}
