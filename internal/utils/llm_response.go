package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mikey/email-triage/internal/core"
)

// SentimentPromptFormat asks a general-purpose LLM to behave like a 1..5 star
// multilingual sentiment model. The single %s is the (already truncated) text.
const SentimentPromptFormat = `You are a sentiment rating system for Portuguese and English text.
Rate the overall sentiment of the following text on a scale of 1 to 5 stars,
where 1 is very negative, 3 is neutral and 5 is very positive.
Respond with a JSON object containing:
- stars: integer between 1 and 5
- score: number between 0 and 1 (how confident you are in the rating)

Text:
%s

Respond only with the JSON object and nothing else.`

// SentimentSystemPrompt is the system message for chat-style models
const SentimentSystemPrompt = "You are a sentiment rating system. Respond only with JSON."

// sentimentResponse is the structured response expected from the LLM
type sentimentResponse struct {
	Stars int     `json:"stars"`
	Score float64 `json:"score"`
}

// ParseSentimentResponse extracts a sentiment signal from an LLM answer.
// The answer may wrap the JSON object in prose or code fences.
func ParseSentimentResponse(responseText string) (*core.SentimentSignal, error) {
	var resp sentimentResponse
	if err := json.Unmarshal([]byte(responseText), &resp); err != nil {
		start := strings.Index(responseText, "{")
		end := strings.LastIndex(responseText, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
		if err := json.Unmarshal([]byte(responseText[start:end+1]), &resp); err != nil {
			return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}

	if resp.Stars < 1 || resp.Stars > 5 {
		return nil, fmt.Errorf("LLM returned out of range stars: %d", resp.Stars)
	}
	if resp.Score < 0 || resp.Score > 1 {
		return nil, fmt.Errorf("LLM returned out of range score: %f", resp.Score)
	}

	return &core.SentimentSignal{
		Label: core.StarsLabel(resp.Stars),
		Stars: resp.Stars,
		Score: resp.Score,
	}, nil
}
