package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/lexicon"
	"go.uber.org/zap"
)

const (
	// defaultConfidence is returned for empty and ambiguous emails
	defaultConfidence = 0.5
	// fallbackSeed stands in for the sentiment factor when keyword counts differ
	fallbackSeed = 0.7
	// tieSeed stands in for the sentiment factor when an anchor breaks a tie
	tieSeed = 0.6
)

// Classifier decides the category of an email. It queries the sentiment port
// first and falls back to keyword counting when the signal is neutral,
// unavailable or unusable.
type Classifier struct {
	sentiment  core.SentimentPort
	keywords   *KeywordScorer
	structure  *StructureScorer
	context    *ContextScorer
	aggregator *Aggregator
	tables     *tables
	logger     *zap.Logger
}

// NewClassifier validates lex and builds a classifier over an immutable copy of it.
// A nil sentiment port behaves as a permanently unavailable capability.
func NewClassifier(lex *lexicon.Lexicon, sentiment core.SentimentPort, logger *zap.Logger) (*Classifier, error) {
	if err := lex.Validate(); err != nil {
		return nil, err
	}

	t := newTables(lex)
	aggregator, err := NewAggregator(lex.Weights, t)
	if err != nil {
		return nil, err
	}

	return &Classifier{
		sentiment:  sentiment,
		keywords:   newKeywordScorer(t),
		structure:  newStructureScorer(t),
		context:    newContextScorer(t),
		aggregator: aggregator,
		tables:     t,
		logger:     logger,
	}, nil
}

// Classify always returns a result with a category and a confidence in [0, 1]
func (c *Classifier) Classify(ctx context.Context, email core.EmailInput) core.ClassificationResult {
	doc := NewDocument(email.Subject, email.Content)
	if doc.Empty() {
		return core.ClassificationResult{
			Category:   core.CategoryUnproductive,
			Confidence: defaultConfidence,
			Route:      core.RouteEmpty,
		}
	}

	reading := c.querySentiment(ctx, doc)
	if !reading.Available {
		c.logger.Debug("Sentiment unavailable, using keyword fallback", zap.Error(reading.Err))
		return c.fallback(doc)
	}

	category, decisive := core.CategoryForStars(reading.Signal.Stars)
	if !decisive {
		c.logger.Debug("Neutral sentiment, using keyword fallback",
			zap.String("label", reading.Signal.Label),
			zap.Float64("score", reading.Signal.Score))
		return c.fallback(doc)
	}

	confidence, err := c.score(doc, category, reading.Signal.Score)
	if err != nil {
		c.logger.Debug("Sentiment scoring failed, using keyword fallback", zap.Error(err))
		return c.fallback(doc)
	}

	return core.ClassificationResult{
		Category:   category,
		Confidence: confidence,
		Route:      core.RouteSentiment,
	}
}

func (c *Classifier) querySentiment(ctx context.Context, doc Document) core.SentimentReading {
	if c.sentiment == nil {
		return core.Unavailable(nil)
	}
	return c.sentiment.Classify(ctx, doc.Text)
}

// score runs the aggregator with the given sentiment factor. Scores outside
// [0, 1] and panics in the scoring path are reported as errors.
func (c *Classifier) score(doc Document, category core.Category, sentiment float64) (confidence float64, err error) {
	if math.IsNaN(sentiment) || sentiment < 0 || sentiment > 1 {
		return 0, fmt.Errorf("sentiment score %v out of range", sentiment)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()

	factors := core.FactorScores{
		Sentiment: sentiment,
		Keyword:   c.keywords.Score(doc, category),
		Structure: c.structure.Score(doc, category),
		Context:   c.context.Score(doc, category),
	}
	confidence = c.aggregator.Aggregate(factors, category, doc)

	c.logger.Debug("Scored email",
		zap.String("category", string(category)),
		zap.Float64("sentiment", factors.Sentiment),
		zap.Float64("keyword", factors.Keyword),
		zap.Float64("structure", factors.Structure),
		zap.Float64("context", factors.Context),
		zap.Float64("confidence", confidence))

	return confidence, nil
}

// fallback classifies from keyword counts alone
func (c *Classifier) fallback(doc Document) core.ClassificationResult {
	productive := c.keywords.Hits(doc, core.CategoryProductive)
	unproductive := c.keywords.Hits(doc, core.CategoryUnproductive)

	var (
		category core.Category
		seed     float64
	)
	switch {
	case productive > unproductive:
		category, seed = core.CategoryProductive, fallbackSeed
	case unproductive > productive:
		category, seed = core.CategoryUnproductive, fallbackSeed
	case c.keywords.ContainsAny(doc, c.tables.productive.anchors):
		category, seed = core.CategoryProductive, tieSeed
	case c.keywords.ContainsAny(doc, c.tables.unproductive.anchors):
		category, seed = core.CategoryUnproductive, tieSeed
	default:
		return core.ClassificationResult{
			Category:   core.CategoryUnproductive,
			Confidence: defaultConfidence,
			Route:      core.RouteAmbiguous,
		}
	}

	confidence, err := c.score(doc, category, seed)
	if err != nil {
		c.logger.Warn("Fallback scoring failed", zap.Error(err))
		return core.ClassificationResult{
			Category:   category,
			Confidence: defaultConfidence,
			Route:      core.RouteFallback,
		}
	}

	return core.ClassificationResult{
		Category:   category,
		Confidence: confidence,
		Route:      core.RouteFallback,
	}
}
