package scoring

import (
	"strings"

	"github.com/mikey/email-triage/internal/core"
)

// ContextScorer is a coarse topical signal over a short per-category list
type ContextScorer struct {
	tables *tables
}

func newContextScorer(t *tables) *ContextScorer {
	return &ContextScorer{tables: t}
}

// Matches counts context terms present in the document
func (s *ContextScorer) Matches(doc Document, category core.Category) int {
	n := 0
	for _, term := range s.tables.forCategory(category).context {
		if strings.Contains(doc.Text, term) {
			n++
		}
	}
	return n
}

// Score maps 0 matches to 0.4, one to 0.6 and two or more to 0.8
func (s *ContextScorer) Score(doc Document, category core.Category) float64 {
	switch n := s.Matches(doc, category); {
	case n == 0:
		return 0.4
	case n == 1:
		return 0.6
	default:
		return 0.8
	}
}
