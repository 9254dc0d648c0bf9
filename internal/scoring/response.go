package scoring

import (
	"math/rand/v2"
	"strings"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/lexicon"
	"golang.org/x/text/unicode/norm"
)

// RandomSource picks an index in [0, n). *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// globalRandom draws from the top-level math/rand/v2 generator, which is safe
// for concurrent use
type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// ResponseSelector picks a canned reply for a classified email
type ResponseSelector struct {
	tables *tables
	random RandomSource
}

// NewResponseSelector validates lex and builds a selector. A nil random uses
// the process-wide generator.
func NewResponseSelector(lex *lexicon.Lexicon, random RandomSource) (*ResponseSelector, error) {
	if err := lex.Validate(); err != nil {
		return nil, err
	}
	if random == nil {
		random = globalRandom{}
	}
	return &ResponseSelector{tables: newTables(lex), random: random}, nil
}

// Select returns the reply of the first trigger found in content, or a
// uniformly drawn reply from the category pool
func (s *ResponseSelector) Select(category core.Category, content string) string {
	t := s.tables.forCategory(category)
	text := strings.ToLower(norm.NFC.String(content))

	for _, trigger := range t.triggers {
		for _, term := range trigger.Terms {
			if strings.Contains(text, term) {
				return trigger.Response
			}
		}
	}

	if len(t.responses) == 0 {
		return ""
	}
	return t.responses[s.random.IntN(len(t.responses))]
}
