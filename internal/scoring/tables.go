package scoring

import (
	"strings"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/lexicon"
	"golang.org/x/text/unicode/norm"
)

// categoryTables are the lookup tables of one category, with every term
// lowercased and NFC composed so they match Document contents
type categoryTables struct {
	keywords       []string
	combinations   [][]string
	structureTerms [][]string
	context        []string
	anchors        []string
	triggers       []lexicon.Trigger
	responses      []string
}

// tables is an immutable copy of a lexicon. It is shared by all scorers and
// read concurrently without locks.
type tables struct {
	productive         categoryTables
	unproductive       categoryTables
	workIndicators     [][]string
	strongCombinations [][]string
	formalMarkers      []string
}

func newTables(lex *lexicon.Lexicon) *tables {
	return &tables{
		productive:         newCategoryTables(lex.Productive),
		unproductive:       newCategoryTables(lex.Unproductive),
		workIndicators:     foldGroups(lex.WorkIndicators),
		strongCombinations: foldGroups(lex.StrongCombinations),
		formalMarkers:      foldTerms(lex.FormalMarkers),
	}
}

func newCategoryTables(c lexicon.CategoryLexicon) categoryTables {
	triggers := make([]lexicon.Trigger, 0, len(c.Triggers))
	for _, t := range c.Triggers {
		triggers = append(triggers, lexicon.Trigger{
			Terms:    foldTerms(t.Terms),
			Response: t.Response,
		})
	}

	return categoryTables{
		keywords:       foldTerms(c.Keywords),
		combinations:   foldGroups(c.Combinations),
		structureTerms: foldGroups(c.StructureTerms),
		context:        foldTerms(c.Context),
		anchors:        foldTerms(c.Anchors),
		triggers:       triggers,
		responses:      append([]string(nil), c.Responses...),
	}
}

// forCategory returns the tables of category; anything but productive reads
// the unproductive tables
func (t *tables) forCategory(category core.Category) *categoryTables {
	if category == core.CategoryProductive {
		return &t.productive
	}
	return &t.unproductive
}

func foldTerm(term string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(term)))
}

func foldTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		if term = foldTerm(term); term != "" {
			out = append(out, term)
		}
	}
	return out
}

func foldGroups(groups [][]string) [][]string {
	out := make([][]string, 0, len(groups))
	for _, group := range groups {
		if folded := foldTerms(group); len(folded) > 0 {
			out = append(out, folded)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
