package scoring

import (
	"strings"

	"github.com/mikey/email-triage/internal/core"
)

const (
	structureBase = 0.4
	structureStep = 0.15
	structureMax  = 0.9

	longEmailWords  = 50
	shortEmailWords = 30
)

// StructureScorer is a fixed template-matching heuristic, not a learned model.
// It counts layout and phrasing indicators typical of each category and maps
// the count n to min(0.9, 0.4 + 0.15n).
//
// Layout indicators (topic lines, bullets) are read from the raw text, word
// counts from the normalized text.
type StructureScorer struct {
	tables *tables
}

func newStructureScorer(t *tables) *StructureScorer {
	return &StructureScorer{tables: t}
}

// Indicators returns the number of structure indicators found for category
func (s *StructureScorer) Indicators(doc Document, category core.Category) int {
	t := s.tables.forCategory(category)

	n := 0
	for _, group := range t.structureTerms {
		if doc.HasAny(group) {
			n++
		}
	}

	if category == core.CategoryProductive {
		if doc.hasLine(isTopicLine) {
			n++
		}
		if doc.hasLine(isBulletLine) {
			n++
		}
		if doc.WordCount() > longEmailWords {
			n++
		}
		return n
	}

	if doc.WordCount() < shortEmailWords {
		n++
	}
	return n
}

// Score returns the structure evidence for category
func (s *StructureScorer) Score(doc Document, category core.Category) float64 {
	n := s.Indicators(doc, category)
	return min(structureMax, structureBase+structureStep*float64(n))
}

func isTopicLine(line string) bool {
	return strings.Contains(line, ":")
}

func isBulletLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "-")
}
