package scoring

import (
	"fmt"
	"math"
	"regexp"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/lexicon"
)

const (
	strongComboBoost = 0.10
	formalBoost      = 0.05
	schedulingBoost  = 0.05

	// sums are rounded to this many units so that float noise cannot push an
	// all-ones blend away from exactly 1.0
	sumPrecision = 1e12
)

// workIndicatorBoost maps the number of work indicator groups present to a boost
var workIndicatorBoost = []float64{0, 0, 0.05, 0.10, 0.15, 0.20, 0.25}

// schedulingPattern matches quarter labels, dates and explicit times. Digits do
// not survive normalization, so it runs on the raw text.
var schedulingPattern = regexp.MustCompile(
	`(?i)\bq[1-4]\s*(?:/\s*)?\d{4}\b` +
		`|\b\d{1,2}/\d{1,2}/\d{2,4}\b` +
		`|\b\d{1,2}:\d{2}\b` +
		`|\b\d{1,2}h(?:\d{2})?\b`)

// Aggregator blends the four factor scores into a confidence
type Aggregator struct {
	weights lexicon.Weights
	tables  *tables
}

// NewAggregator asserts that weights are non-negative and sum to one
func NewAggregator(weights lexicon.Weights, t *tables) (*Aggregator, error) {
	for _, w := range []float64{weights.Sentiment, weights.Keyword, weights.Structure, weights.Context} {
		if w < 0 {
			return nil, fmt.Errorf("%w: negative aggregator weight %v", lexicon.ErrInconsistent, w)
		}
	}
	if math.Abs(weights.Sum()-1.0) > 1e-9 {
		return nil, fmt.Errorf("%w: aggregator weights sum to %v", lexicon.ErrInconsistent, weights.Sum())
	}
	return &Aggregator{weights: weights, tables: t}, nil
}

// WeightedSum returns the unclamped weighted blend of the factors
func (a *Aggregator) WeightedSum(f core.FactorScores) float64 {
	w := a.weights
	sum := w.Sentiment*f.Sentiment + w.Keyword*f.Keyword + w.Structure*f.Structure + w.Context*f.Context
	return math.Round(sum*sumPrecision) / sumPrecision
}

// Boost returns the additive productive-only bonus for doc
func (a *Aggregator) Boost(doc Document) float64 {
	indicators := 0
	for _, group := range a.tables.workIndicators {
		if doc.HasAny(group) {
			indicators++
		}
	}
	boost := workIndicatorBoost[min(indicators, len(workIndicatorBoost)-1)]

	for _, combo := range a.tables.strongCombinations {
		if doc.HasAll(combo) {
			boost += strongComboBoost
		}
	}
	if doc.HasAny(a.tables.formalMarkers) {
		boost += formalBoost
	}
	if schedulingPattern.MatchString(doc.Raw) {
		boost += schedulingBoost
	}

	return boost
}

// Aggregate returns the final confidence for category, clamped to [0, 1].
// Only the productive category receives a boost.
func (a *Aggregator) Aggregate(f core.FactorScores, category core.Category, doc Document) float64 {
	confidence := a.WeightedSum(f)
	if category == core.CategoryProductive {
		confidence += a.Boost(doc)
	}
	return clamp(confidence, 0, 1)
}
