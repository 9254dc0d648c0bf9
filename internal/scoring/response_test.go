package scoring

import (
	"errors"
	"testing"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequence returns its values in order, wrapping around
type sequence struct {
	values []int
	next   int
}

func (s *sequence) IntN(n int) int {
	v := s.values[s.next%len(s.values)] % n
	s.next++
	return v
}

func TestSelectTriggers(t *testing.T) {
	lex := lexicon.Default()
	selector, err := NewResponseSelector(lex, &sequence{values: []int{0}})
	require.NoError(t, err)

	productive := lex.Productive.Triggers
	unproductive := lex.Unproductive.Triggers

	tests := []struct {
		name     string
		category core.Category
		content  string
		want     string
	}{
		{"meeting", core.CategoryProductive, "Vamos marcar uma REUNIÃO amanhã", productive[0].Response},
		{"first trigger wins", core.CategoryProductive, "o projeto do cliente", productive[1].Response},
		{"client", core.CategoryProductive, "atendimento ao Cliente", productive[2].Response},
		{"promotion", core.CategoryUnproductive, "Grande PROMOÇÃO hoje", unproductive[0].Response},
		{"chain", core.CategoryUnproductive, "Please forward this", unproductive[1].Response},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selector.Select(tt.category, tt.content))
		})
	}
}

func TestSelectDrawsFromPool(t *testing.T) {
	lex := lexicon.Default()
	selector, err := NewResponseSelector(lex, &sequence{values: []int{2, 4, 0}})
	require.NoError(t, err)

	assert.Equal(t, lex.Productive.Responses[2], selector.Select(core.CategoryProductive, "olá"))
	assert.Equal(t, lex.Unproductive.Responses[4], selector.Select(core.CategoryUnproductive, "olá"))
	assert.Equal(t, lex.Unproductive.Responses[0], selector.Select(core.CategoryUnproductive, ""))
}

func TestSelectDefaultRandomStaysInPool(t *testing.T) {
	lex := lexicon.Default()
	selector, err := NewResponseSelector(lex, nil)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		assert.Contains(t, lex.Unproductive.Responses, selector.Select(core.CategoryUnproductive, ""))
	}
}

func TestNewResponseSelectorRejectsEmptyPool(t *testing.T) {
	lex := lexicon.Default()
	lex.Productive.Responses = nil

	_, err := NewResponseSelector(lex, nil)
	assert.True(t, errors.Is(err, lexicon.ErrInconsistent))
}
