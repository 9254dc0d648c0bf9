package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases text and keeps only Latin letters (ASCII and the
// Latin-1 range U+00C0..U+00FF) separated by single spaces. Input is composed
// to NFC first so that decomposed accents survive. Empty or symbol-only input
// yields "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ToLower(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(text))
	gap := false
	for _, r := range text {
		if !isLatinLetter(r) {
			gap = true
			continue
		}
		if gap && b.Len() > 0 {
			b.WriteByte(' ')
		}
		gap = false
		b.WriteRune(r)
	}

	return b.String()
}

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= 0xC0 && r <= 0xFF)
}

// TextProcessor provides utilities for preparing text for external models
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText cuts text to at most maxRunes runes. It reports whether
// anything was cut. A non-positive limit disables truncation.
func (tp *TextProcessor) TruncateText(text string, maxRunes int) (string, bool) {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text, false
	}

	count := 0
	for i := range text {
		if count == maxRunes {
			truncated := text[:i]
			tp.logger.Debug("Text truncated",
				zap.Int("original_runes", utf8.RuneCountInString(text)),
				zap.Int("max_runes", maxRunes))
			return truncated, true
		}
		count++
	}

	return text, false
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// ProcessText sanitizes and truncates text in one operation
func (tp *TextProcessor) ProcessText(text string, maxRunes int) string {
	truncated, _ := tp.TruncateText(tp.SanitizeUTF8(text), maxRunes)
	return truncated
}
