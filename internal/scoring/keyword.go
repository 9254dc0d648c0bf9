package scoring

import (
	"strings"

	"github.com/mikey/email-triage/internal/core"
)

const (
	keywordMin = 0.1
	keywordMax = 0.95

	frequencyStep = 0.02
	frequencyCap  = 0.1
	positionBonus = 0.1
	comboBonus    = 0.15
)

// KeywordScorer rates lexical evidence for a category. Keywords are matched as
// substrings so that phrases like "boa sorte" count as a single keyword.
type KeywordScorer struct {
	tables *tables
}

func newKeywordScorer(t *tables) *KeywordScorer {
	return &KeywordScorer{tables: t}
}

// Hits counts the distinct category keywords present in the document
func (s *KeywordScorer) Hits(doc Document, category core.Category) int {
	hits := 0
	for _, kw := range s.tables.forCategory(category).keywords {
		if strings.Contains(doc.Text, kw) {
			hits++
		}
	}
	return hits
}

// ContainsAny reports whether any of terms occurs in the document
func (s *KeywordScorer) ContainsAny(doc Document, terms []string) bool {
	return doc.HasAny(terms)
}

// Score returns the keyword evidence for category, in [0.1, 0.95]
func (s *KeywordScorer) Score(doc Document, category core.Category) float64 {
	t := s.tables.forCategory(category)

	hits, occurrences, lead := 0, 0, 0
	for _, kw := range t.keywords {
		n := doc.Count(kw)
		if n == 0 {
			continue
		}
		hits++
		occurrences += n
		if strings.Contains(doc.Lead, kw) {
			lead++
		}
	}

	score := baseScore(hits)
	score += min(frequencyCap, float64(occurrences)*frequencyStep)
	score += float64(lead) * positionBonus

	for _, combo := range t.combinations {
		if doc.HasAll(combo) {
			score += comboBonus
		}
	}

	return clamp(score, keywordMin, keywordMax)
}

func baseScore(hits int) float64 {
	switch {
	case hits <= 0:
		return 0.2
	case hits == 1:
		return 0.4
	case hits == 2:
		return 0.6
	case hits == 3:
		return 0.75
	default:
		return 0.9
	}
}
