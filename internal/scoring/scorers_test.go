package scoring

import (
	"strings"
	"testing"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainLetter = "Corrente de sorte, reencaminhe agora, boa sorte, abençoado"

func defaultTables() *tables {
	return newTables(lexicon.Default())
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("Reunião: Q1 2024", "Olá equipe ✨\n- item")

	assert.Equal(t, "Reunião: Q1 2024\nOlá equipe ✨\n- item", doc.Raw)
	assert.Equal(t, "reunião q olá equipe item", doc.Text)
	assert.Equal(t, "reunião q", doc.Lead)
	assert.Equal(t, 5, doc.WordCount())
	assert.False(t, doc.Empty())
	assert.True(t, doc.Has("✨"))
	assert.True(t, doc.Has("equipe"))
	assert.False(t, doc.Has("💰"))
}

func TestNewDocumentLeadSkipsBlankSubject(t *testing.T) {
	doc := NewDocument("", "\n  \nPrimeira linha\nsegunda")
	assert.Equal(t, "primeira linha", doc.Lead)

	empty := NewDocument("!!!", "123 ✨")
	assert.True(t, empty.Empty())
	assert.Equal(t, 0, empty.WordCount())
}

func TestKeywordScore(t *testing.T) {
	scorer := newKeywordScorer(defaultTables())

	tests := []struct {
		name     string
		subject  string
		content  string
		category core.Category
		want     float64
	}{
		{"no hits", "Oi", "nada aqui", core.CategoryProductive, 0.2},
		{"one hit in body", "Olá", "envio o relatório", core.CategoryProductive, 0.42},
		{"one hit in subject", "Relatório", "segue anexo", core.CategoryProductive, 0.52},
		{"combination bonus", "Oi", "reunião de planejamento", core.CategoryProductive, 0.79},
		{"clamped at upper bound", "", chainLetter, core.CategoryUnproductive, 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(NewDocument(tt.subject, tt.content), tt.category)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestKeywordHits(t *testing.T) {
	scorer := newKeywordScorer(defaultTables())
	doc := NewDocument("", chainLetter)

	assert.Equal(t, 5, scorer.Hits(doc, core.CategoryUnproductive))
	assert.Equal(t, 0, scorer.Hits(doc, core.CategoryProductive))
	assert.True(t, scorer.ContainsAny(doc, []string{"xyz", "sorte"}))
	assert.False(t, scorer.ContainsAny(doc, []string{"reunião"}))
}

func TestKeywordScoreIsMonotonicBelowFourHits(t *testing.T) {
	scorer := newKeywordScorer(defaultTables())
	terms := []string{"relatório", "contrato", "orçamento", "sprint"}

	content := "Oi"
	prev := scorer.Score(NewDocument("Assunto", content), core.CategoryProductive)
	for _, term := range terms {
		doc := NewDocument("Assunto", content)
		require.Less(t, scorer.Hits(doc, core.CategoryProductive), 4)

		content += " " + term
		next := scorer.Score(NewDocument("Assunto", content), core.CategoryProductive)
		assert.GreaterOrEqual(t, next, prev, "adding %q decreased the score", term)
		prev = next
	}
}

func TestStructureScore(t *testing.T) {
	scorer := newStructureScorer(defaultTables())
	long := strings.Repeat("palavra ", 60)

	tests := []struct {
		name     string
		subject  string
		content  string
		category core.Category
		want     float64
	}{
		{"productive without indicators", "Oi", "segue", core.CategoryProductive, 0.4},
		{"topic line and bullet", "Pauta", "Tema: orçamento\n- item um", core.CategoryProductive, 0.7},
		{"planning words", "Pauta", "Tema: orçamento\n- objetivos", core.CategoryProductive, 0.85},
		{"capped", "Pauta", "Tema: metas\n- item\n" + long, core.CategoryProductive, 0.9},
		{"short unproductive", "Oi", "segue", core.CategoryUnproductive, 0.55},
		{"chain letter", "", chainLetter, core.CategoryUnproductive, 0.85},
		{"chain letter with emoji", "", chainLetter + " ✨", core.CategoryUnproductive, 0.9},
		{"long unproductive", "Oi", long, core.CategoryUnproductive, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(NewDocument(tt.subject, tt.content), tt.category)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestContextScore(t *testing.T) {
	scorer := newContextScorer(defaultTables())

	tests := []struct {
		content  string
		category core.Category
		want     float64
	}{
		{"bom dia", core.CategoryProductive, 0.4},
		{"a empresa", core.CategoryProductive, 0.6},
		{"a empresa e a equipe", core.CategoryProductive, 0.8},
		{"spam", core.CategoryUnproductive, 0.6},
		{chainLetter, core.CategoryUnproductive, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			assert.InDelta(t, tt.want, scorer.Score(NewDocument("", tt.content), tt.category), 1e-9)
		})
	}
}
