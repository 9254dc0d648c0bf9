package scoring

import (
	"errors"
	"testing"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAggregatorRejectsBadWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights lexicon.Weights
	}{
		{"sum above one", lexicon.Weights{Sentiment: 0.5, Keyword: 0.3, Structure: 0.2, Context: 0.1}},
		{"sum below one", lexicon.Weights{Sentiment: 0.4, Keyword: 0.3, Structure: 0.2}},
		{"negative weight", lexicon.Weights{Sentiment: 0.6, Keyword: 0.3, Structure: 0.2, Context: -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAggregator(tt.weights, defaultTables())
			require.Error(t, err)
			assert.True(t, errors.Is(err, lexicon.ErrInconsistent))
		})
	}
}

func TestWeightedSumOfOnesIsExactlyOne(t *testing.T) {
	agg, err := NewAggregator(lexicon.DefaultWeights(), defaultTables())
	require.NoError(t, err)

	ones := core.FactorScores{Sentiment: 1, Keyword: 1, Structure: 1, Context: 1}
	assert.Equal(t, 1.0, agg.WeightedSum(ones))

	doc := NewDocument("Reunião de planejamento", "objetivos da equipe")
	assert.Equal(t, 1.0, agg.Aggregate(ones, core.CategoryUnproductive, doc))
	assert.Equal(t, 1.0, agg.Aggregate(ones, core.CategoryProductive, doc))
}

func TestBoost(t *testing.T) {
	agg, err := NewAggregator(lexicon.DefaultWeights(), defaultTables())
	require.NoError(t, err)

	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{"nothing", "bom dia", 0},
		{"one group matched twice", "reunião meeting", 0},
		{"two groups", "reunião com a equipe", 0.05},
		{"strong combination", "reunião de planejamento dos objetivos", 0.20},
		{"team combination", "equipe responsabilidades cronograma", 0.20},
		{"formal marker", "Prezados, segue o documento. Atenciosamente", 0.05},
		{"date and time", "Reunião dia 23/01/2024 às 14h", 0.05},
		{"clock time", "começa 14:30", 0.05},
		{"quarter label", "resultados do Q1 2024", 0.05},
		{"six groups", "reunião planejamento metas equipe cronograma orçamento", 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, agg.Boost(NewDocument("", tt.content)), 1e-9)
		})
	}
}

func TestAggregateBoostsProductiveOnly(t *testing.T) {
	agg, err := NewAggregator(lexicon.DefaultWeights(), defaultTables())
	require.NoError(t, err)

	doc := NewDocument("Reunião", "Prezados, planejamento com a equipe dia 10/02/2024")
	half := core.FactorScores{Sentiment: 0.5, Keyword: 0.5, Structure: 0.5, Context: 0.5}

	assert.InDelta(t, 0.5, agg.Aggregate(half, core.CategoryUnproductive, doc), 1e-9)
	// three groups (0.10), formal marker (0.05) and a date (0.05)
	assert.InDelta(t, 0.7, agg.Aggregate(half, core.CategoryProductive, doc), 1e-9)
}

func TestAggregateClampsToUnitInterval(t *testing.T) {
	agg, err := NewAggregator(lexicon.DefaultWeights(), defaultTables())
	require.NoError(t, err)

	doc := NewDocument("", "bom dia")
	assert.Equal(t, 0.0, agg.Aggregate(core.FactorScores{Sentiment: -2}, core.CategoryUnproductive, doc))
	assert.Equal(t, 1.0, agg.Aggregate(core.FactorScores{Sentiment: 3}, core.CategoryUnproductive, doc))
}
