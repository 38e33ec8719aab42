package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// TextProcessor provides utilities for processing generated text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateAtWordBoundary shortens text to at most maxLen characters, cutting
// at the last word boundary that preserves at least minKeepRatio of the
// allowed prefix, and appends an ellipsis. Text already within the limit is
// returned unchanged.
func (tp *TextProcessor) TruncateAtWordBoundary(text string, maxLen int, minKeepRatio float64) string {
	if maxLen <= 0 || len(text) <= maxLen {
		return text
	}

	const ellipsis = "..."
	budget := maxLen - len(ellipsis)
	if budget <= 0 {
		return text[:runeBoundary(text, maxLen)]
	}

	prefix := text[:runeBoundary(text, budget)]
	if idx := strings.LastIndex(prefix, " "); idx >= int(float64(budget)*minKeepRatio) {
		prefix = prefix[:idx]
	}
	prefix = strings.TrimRight(prefix, " ,;:-")

	tp.logger.Debug("Text truncated at word boundary",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(prefix)+len(ellipsis)),
		zap.Int("max_size", maxLen))

	return prefix + ellipsis
}

// runeBoundary backs a byte offset up to the nearest rune start so slicing
// never splits a multibyte character
func runeBoundary(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	// Replace invalid UTF-8 sequences with the Unicode replacement character
	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				// Skip invalid UTF-8 sequences
				continue
			}
		}
		result = append(result, r)
	}

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(string(result))))

	return string(result)
}

// CollapseWhitespace squashes runs of spaces and tabs into single spaces
// and trims the result
func (tp *TextProcessor) CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
