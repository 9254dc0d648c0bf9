// Package lexicon holds the static keyword, rule and response tables that drive
// the classification engine. Tables are plain configuration: they are loaded
// once at startup, validated, and copied into the scoring engine.
package lexicon

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrInconsistent is returned when the configuration cannot drive the engine.
// It is the only fatal condition of the classifier.
var ErrInconsistent = errors.New("inconsistent classifier configuration")

// weightTolerance absorbs float noise when checking that weights sum to one
const weightTolerance = 1e-9

// Weights are the blend factors of the confidence aggregator
type Weights struct {
	Sentiment float64
	Keyword   float64
	Structure float64
	Context   float64
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.Sentiment + w.Keyword + w.Structure + w.Context
}

// DefaultWeights returns the canonical 0.4/0.3/0.2/0.1 blend
func DefaultWeights() Weights {
	return Weights{Sentiment: 0.4, Keyword: 0.3, Structure: 0.2, Context: 0.1}
}

// Trigger maps topical terms to a fixed reply
type Trigger struct {
	Terms    []string `yaml:"terms"`
	Response string   `yaml:"response"`
}

// CategoryLexicon holds the tables for one category
type CategoryLexicon struct {
	Keywords       []string   `yaml:"keywords"`
	Combinations   [][]string `yaml:"combinations"`
	StructureTerms [][]string `yaml:"structure_terms"`
	Context        []string   `yaml:"context"`
	Anchors        []string   `yaml:"anchors"`
	Triggers       []Trigger  `yaml:"triggers"`
	Responses      []string   `yaml:"responses"`
}

// Lexicon is the complete classifier configuration
type Lexicon struct {
	Weights            Weights         `yaml:"-"`
	Productive         CategoryLexicon `yaml:"productive"`
	Unproductive       CategoryLexicon `yaml:"unproductive"`
	WorkIndicators     [][]string      `yaml:"work_indicators"`
	StrongCombinations [][]string      `yaml:"strong_combinations"`
	FormalMarkers      []string        `yaml:"formal_markers"`
}

// Load reads a YAML file and overlays it on the built-in tables.
// Keys missing from the file keep their default values.
func Load(path string) (*Lexicon, error) {
	lex := Default()
	if path == "" {
		return lex, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	if err := yaml.Unmarshal(data, lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file %s: %w", path, err)
	}

	return lex, nil
}

// Validate reports every inconsistency found, each wrapping ErrInconsistent
func (l *Lexicon) Validate() error {
	var err error

	w := l.Weights
	for name, v := range map[string]float64{
		"sentiment": w.Sentiment,
		"keyword":   w.Keyword,
		"structure": w.Structure,
		"context":   w.Context,
	} {
		if v < 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s weight is negative (%v)", ErrInconsistent, name, v))
		}
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		err = multierr.Append(err, fmt.Errorf("%w: weights sum to %v, want 1.0", ErrInconsistent, w.Sum()))
	}

	err = multierr.Append(err, l.Productive.validate("productive"))
	err = multierr.Append(err, l.Unproductive.validate("unproductive"))

	return err
}

func (c *CategoryLexicon) validate(name string) error {
	var err error
	blank := blankTerms(c.Keywords)
	for _, i := range blank {
		err = multierr.Append(err, fmt.Errorf("%w: %s keyword %d is blank", ErrInconsistent, name, i))
	}
	if len(blank) == len(c.Keywords) {
		err = multierr.Append(err, fmt.Errorf("%w: %s keyword list is empty", ErrInconsistent, name))
	}
	if len(c.Responses) == 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %s response pool is empty", ErrInconsistent, name))
	}
	for i, combo := range c.Combinations {
		blank := blankTerms(combo)
		for _, j := range blank {
			err = multierr.Append(err, fmt.Errorf("%w: %s combination %d term %d is blank", ErrInconsistent, name, i, j))
		}
		if len(blank) == len(combo) {
			err = multierr.Append(err, fmt.Errorf("%w: %s combination %d is empty", ErrInconsistent, name, i))
		}
	}
	return err
}

// blankTerms returns the indexes of terms that are empty once trimmed, which
// the engine would silently drop
func blankTerms(terms []string) []int {
	var blank []int
	for i, term := range terms {
		if strings.TrimSpace(term) == "" {
			blank = append(blank, i)
		}
	}
	return blank
}
