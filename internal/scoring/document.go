// Package scoring implements the classification and confidence engine: lexical,
// structural and contextual evidence scorers, the weighted confidence
// aggregator, the sentiment-driven classifier with its keyword fallback, and
// the canned response selector.
package scoring

import (
	"strings"

	"github.com/mikey/email-triage/internal/utils"
	"golang.org/x/text/unicode/norm"
)

// Document is an email prepared for scoring. Text is what lexical rules match
// against; Raw keeps the layout, digits and symbols that normalization drops.
type Document struct {
	// Raw is the subject and content joined by a newline
	Raw string
	// Text is the normalized form of Raw
	Text string
	// Lead is the normalized first non-blank line of Raw, usually the subject
	Lead string

	lowerRaw string
	words    int
}

// NewDocument builds the scoring view of an email
func NewDocument(subject, content string) Document {
	raw := subject + "\n" + content
	text := utils.Normalize(raw)

	var lead string
	for _, line := range strings.Split(raw, "\n") {
		if lead = utils.Normalize(line); lead != "" {
			break
		}
	}

	return Document{
		Raw:      raw,
		Text:     text,
		Lead:     lead,
		lowerRaw: strings.ToLower(norm.NFC.String(raw)),
		words:    len(strings.Fields(text)),
	}
}

// Empty reports whether the email carries no letters at all
func (d Document) Empty() bool {
	return d.Text == ""
}

// WordCount returns the number of normalized words
func (d Document) WordCount() int {
	return d.words
}

// Has reports whether term occurs as a substring. Symbol terms such as emoji
// only survive in the raw text, so both forms are searched.
func (d Document) Has(term string) bool {
	return strings.Contains(d.Text, term) || strings.Contains(d.lowerRaw, term)
}

// HasAny reports whether at least one of terms occurs
func (d Document) HasAny(terms []string) bool {
	for _, term := range terms {
		if d.Has(term) {
			return true
		}
	}
	return false
}

// HasAll reports whether every one of terms occurs
func (d Document) HasAll(terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	for _, term := range terms {
		if !d.Has(term) {
			return false
		}
	}
	return true
}

// Count returns the number of non-overlapping occurrences of term in Text
func (d Document) Count(term string) int {
	if term == "" {
		return 0
	}
	return strings.Count(d.Text, term)
}

// hasLine reports whether any raw line satisfies match
func (d Document) hasLine(match func(line string) bool) bool {
	for _, line := range strings.Split(d.Raw, "\n") {
		if match(line) {
			return true
		}
	}
	return false
}
