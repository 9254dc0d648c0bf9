package scoring

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	meetingSubject = "Reunião de Projeto"
	meetingContent = "Precisamos alinhar a reunião do projeto com o cliente antes do deadline"
)

// stubPort answers every query with a fixed reading
type stubPort struct {
	reading core.SentimentReading
	texts   []string
}

func (s *stubPort) Classify(_ context.Context, text string) core.SentimentReading {
	s.texts = append(s.texts, text)
	return s.reading
}

func stars(n int, score float64) *stubPort {
	return &stubPort{reading: core.Available(core.SentimentSignal{Label: core.StarsLabel(n), Stars: n, Score: score})}
}

func unavailable() *stubPort {
	return &stubPort{reading: core.Unavailable(errors.New("model not loaded"))}
}

func newTestClassifier(t *testing.T, port core.SentimentPort) *Classifier {
	t.Helper()
	c, err := NewClassifier(lexicon.Default(), port, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestClassifyEmptyInput(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		content string
	}{
		{"both empty", "", ""},
		{"whitespace", "   ", "\n\t"},
		{"symbols and digits only", "!!!", "123 ✨ 💰"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := stars(1, 0.9)
			got := newTestClassifier(t, port).Classify(context.Background(), core.EmailInput{Subject: tt.subject, Content: tt.content})

			assert.Equal(t, core.ClassificationResult{
				Category:   core.CategoryUnproductive,
				Confidence: 0.5,
				Route:      core.RouteEmpty,
			}, got)
			assert.Empty(t, port.texts, "sentiment port must not be queried for empty input")
		})
	}
}

func TestClassifySentimentMapping(t *testing.T) {
	tests := []struct {
		stars int
		want  core.Category
	}{
		{1, core.CategoryProductive},
		{2, core.CategoryProductive},
		{4, core.CategoryUnproductive},
		{5, core.CategoryUnproductive},
	}

	for _, tt := range tests {
		t.Run(core.StarsLabel(tt.stars), func(t *testing.T) {
			got := newTestClassifier(t, stars(tt.stars, 0.8)).Classify(context.Background(),
				core.EmailInput{Subject: "Aviso", Content: chainLetter})

			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, core.RouteSentiment, got.Route)
			assert.GreaterOrEqual(t, got.Confidence, 0.0)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestClassifyUsesSignalScore(t *testing.T) {
	email := core.EmailInput{Subject: meetingSubject, Content: meetingContent}

	got := newTestClassifier(t, stars(1, 0.9)).Classify(context.Background(), email)
	assert.Equal(t, core.CategoryProductive, got.Category)
	assert.InDelta(t, 0.805, got.Confidence, 1e-9)

	got = newTestClassifier(t, stars(5, 0.8)).Classify(context.Background(),
		core.EmailInput{Content: chainLetter})
	assert.Equal(t, core.CategoryUnproductive, got.Category)
	assert.InDelta(t, 0.855, got.Confidence, 1e-9)
}

func TestClassifyQueriesNormalizedText(t *testing.T) {
	port := stars(3, 0.5)
	newTestClassifier(t, port).Classify(context.Background(),
		core.EmailInput{Subject: meetingSubject, Content: meetingContent})

	require.Len(t, port.texts, 1)
	assert.Equal(t, "reunião de projeto precisamos alinhar a reunião do projeto com o cliente antes do deadline", port.texts[0])
}

func TestClassifyNeutralSignalFallsBack(t *testing.T) {
	email := core.EmailInput{Subject: meetingSubject, Content: meetingContent}
	want := newTestClassifier(t, unavailable()).Classify(context.Background(), email)

	for _, score := range []float64{0, 0.01, 0.5, 0.99, 1} {
		got := newTestClassifier(t, stars(3, score)).Classify(context.Background(), email)
		assert.Equal(t, want, got, "score %v", score)
		assert.Equal(t, core.RouteFallback, got.Route)
	}
}

func TestClassifyUnusableSignalFallsBack(t *testing.T) {
	email := core.EmailInput{Content: chainLetter}

	for _, score := range []float64{-0.1, 1.5, math.NaN()} {
		got := newTestClassifier(t, stars(5, score)).Classify(context.Background(), email)
		assert.Equal(t, core.RouteFallback, got.Route, "score %v", score)
		assert.Equal(t, core.CategoryUnproductive, got.Category)
	}
}

func TestClassifyScenarios(t *testing.T) {
	tests := []struct {
		name     string
		port     core.SentimentPort
		email    core.EmailInput
		category core.Category
		route    core.Route
		want     float64
	}{
		{
			name:     "meeting email",
			port:     unavailable(),
			email:    core.EmailInput{Subject: meetingSubject, Content: meetingContent},
			category: core.CategoryProductive,
			route:    core.RouteFallback,
			want:     0.725,
		},
		{
			name:     "chain letter",
			port:     unavailable(),
			email:    core.EmailInput{Content: chainLetter},
			category: core.CategoryUnproductive,
			route:    core.RouteFallback,
			want:     0.815,
		},
		{
			name:     "no model at all",
			port:     nil,
			email:    core.EmailInput{Content: chainLetter},
			category: core.CategoryUnproductive,
			route:    core.RouteFallback,
			want:     0.815,
		},
		{
			name:     "ambiguous",
			port:     unavailable(),
			email:    core.EmailInput{Subject: "Aviso", Content: "bom dia pessoal"},
			category: core.CategoryUnproductive,
			route:    core.RouteAmbiguous,
			want:     0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestClassifier(t, tt.port).Classify(context.Background(), tt.email)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.route, got.Route)
			assert.InDelta(t, tt.want, got.Confidence, 1e-9)
		})
	}
}

func TestClassifyMeetingAboveThreshold(t *testing.T) {
	got := newTestClassifier(t, unavailable()).Classify(context.Background(),
		core.EmailInput{Subject: meetingSubject, Content: meetingContent})
	assert.Equal(t, core.CategoryProductive, got.Category)
	assert.Greater(t, got.Confidence, 0.7)

	got = newTestClassifier(t, unavailable()).Classify(context.Background(),
		core.EmailInput{Content: chainLetter})
	assert.Equal(t, core.CategoryUnproductive, got.Category)
	assert.GreaterOrEqual(t, got.Confidence, 0.8)
}

func TestClassifyTieBreaksOnAnchors(t *testing.T) {
	c := newTestClassifier(t, unavailable())

	// one keyword each side; "trabalho" is a productive anchor
	got := c.Classify(context.Background(), core.EmailInput{Subject: "Aviso", Content: "trabalho e sorte"})
	assert.Equal(t, core.CategoryProductive, got.Category)
	assert.Equal(t, core.RouteFallback, got.Route)

	// "agenda" and "sorte" tie, only "sorte" is an anchor
	got = c.Classify(context.Background(), core.EmailInput{Subject: "Aviso", Content: "sorte na agenda"})
	assert.Equal(t, core.CategoryUnproductive, got.Category)
	assert.Equal(t, core.RouteFallback, got.Route)
}

func TestClassifyIsIdempotent(t *testing.T) {
	emails := []core.EmailInput{
		{Subject: meetingSubject, Content: meetingContent},
		{Content: chainLetter},
		{Subject: "Prezados", Content: "Relatório do Q1 2024:\n- metas\n- orçamento"},
	}

	for _, port := range []core.SentimentPort{stars(2, 0.7), stars(3, 0.4), stars(4, 0.6), unavailable()} {
		c := newTestClassifier(t, port)
		for _, email := range emails {
			first := c.Classify(context.Background(), email)
			second := c.Classify(context.Background(), email)
			assert.Equal(t, first, second)
		}
	}
}

func TestClassifyConfidenceIsAlwaysBounded(t *testing.T) {
	emails := []core.EmailInput{
		{},
		{Subject: "x"},
		{Subject: meetingSubject, Content: meetingContent},
		{Content: chainLetter + " ✨💰❤️ corrente reencaminhar sorte prosperidade"},
		{
			Subject: "Reunião de planejamento",
			Content: "Prezados, equipe, objetivos, metas, cronograma, responsabilidades, orçamento, gerente, dia 10/10/2024 às 14:30",
		},
	}
	ports := []core.SentimentPort{stars(1, 1), stars(2, 0), stars(3, 1), stars(4, 1), stars(5, 0), unavailable(), nil}

	for _, port := range ports {
		c := newTestClassifier(t, port)
		for _, email := range emails {
			got := c.Classify(context.Background(), email)
			assert.True(t, got.Category.IsValid())
			assert.GreaterOrEqual(t, got.Confidence, 0.0)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		}
	}
}

func TestNewClassifierRejectsInconsistentLexicon(t *testing.T) {
	lex := lexicon.Default()
	lex.Weights.Context = 0.5

	_, err := NewClassifier(lex, unavailable(), zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, lexicon.ErrInconsistent))

	lex = lexicon.Default()
	lex.Unproductive.Keywords = nil
	_, err = NewClassifier(lex, unavailable(), zap.NewNop())
	assert.True(t, errors.Is(err, lexicon.ErrInconsistent))
}
