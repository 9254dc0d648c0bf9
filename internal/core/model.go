package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Category is the classification outcome for an email
type Category string

const (
	// CategoryProductive marks work-relevant email (meetings, projects, clients)
	CategoryProductive Category = "produtivo"
	// CategoryUnproductive marks spam, chain letters, promotions and social email
	CategoryUnproductive Category = "improdutivo"
)

// IsValid reports whether c is one of the two known categories
func (c Category) IsValid() bool {
	return c == CategoryProductive || c == CategoryUnproductive
}

// EmailInput is a single classification request
type EmailInput struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
	Sender  string `json:"sender"`
}

// SentimentSignal is the answer of the external sentiment capability.
// Stars is the polarity bucket, 1 (most negative) to 5 (most positive).
type SentimentSignal struct {
	Label string
	Stars int
	Score float64
}

// SentimentReading is the outcome of querying the sentiment port.
// When Available is false, Signal is zero and Err holds the cause.
type SentimentReading struct {
	Signal    SentimentSignal
	Available bool
	Err       error
}

// Unavailable builds a reading for a failed or missing capability
func Unavailable(cause error) SentimentReading {
	if cause == nil {
		cause = ErrSentimentUnavailable
	}
	return SentimentReading{Err: fmt.Errorf("%w: %v", ErrSentimentUnavailable, cause)}
}

// Available builds a reading carrying a usable signal
func Available(signal SentimentSignal) SentimentReading {
	return SentimentReading{Signal: signal, Available: true}
}

// StarsLabel renders a polarity bucket the way the multilingual sentiment model labels it
func StarsLabel(stars int) string {
	if stars == 1 {
		return "1 star"
	}
	return fmt.Sprintf("%d stars", stars)
}

// ParseStars extracts the polarity bucket from a label such as "4 stars" or "1 star"
func ParseStars(label string) (int, error) {
	fields := strings.Fields(strings.TrimSpace(label))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty sentiment label")
	}
	stars, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("invalid sentiment label %q: %w", label, err)
	}
	if stars < 1 || stars > 5 {
		return 0, fmt.Errorf("sentiment label %q out of range", label)
	}
	return stars, nil
}

// CategoryForStars maps a polarity bucket to a candidate category.
// Work email reads neutral-to-negative (deadlines, problems) while chain and spam
// email reads enthusiastic, so 1-2 stars map to productive and 4-5 stars to
// unproductive. A 3-star signal is not decisive and returns false.
func CategoryForStars(stars int) (Category, bool) {
	switch stars {
	case 1, 2:
		return CategoryProductive, true
	case 4, 5:
		return CategoryUnproductive, true
	default:
		return "", false
	}
}

// FactorScores holds the four independent evidence scores for one candidate category
type FactorScores struct {
	Sentiment float64
	Keyword   float64
	Structure float64
	Context   float64
}

// Route records which classifier branch produced a result
type Route string

const (
	RouteEmpty     Route = "empty"
	RouteSentiment Route = "sentiment"
	RouteFallback  Route = "fallback"
	RouteAmbiguous Route = "ambiguous"
)

// ClassificationResult is the engine's decision
type ClassificationResult struct {
	Category   Category
	Confidence float64
	Route      Route
}

// EmailResult is the value returned to callers of ProcessEmail
type EmailResult struct {
	Category          Category `json:"category"`
	Confidence        float64  `json:"confidence_score"`
	SuggestedResponse string   `json:"suggested_response"`
	IsProductive      bool     `json:"is_productive"`
	Route             Route    `json:"route,omitempty"`
}

// EmailRecord is a processed email as kept by the result store
type EmailRecord struct {
	ID         int64
	Input      EmailInput
	Result     EmailResult
	ReceivedAt time.Time
}

// Analytics summarizes stored results
type Analytics struct {
	Total                  int
	Productive             int
	Unproductive           int
	ProductivePercentage   float64
	UnproductivePercentage float64
	Recent                 []EmailRecord
}

// SentimentCacheEntry is a cached answer of the sentiment capability
type SentimentCacheEntry struct {
	Key       string
	Signal    SentimentSignal
	CreatedAt time.Time
	ExpiresAt time.Time
}
