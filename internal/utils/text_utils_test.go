package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestProcessor() *TextProcessor {
	return NewTextProcessor(zap.NewNop())
}

func TestTruncateAtWordBoundary(t *testing.T) {
	tp := newTestProcessor()

	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{
			name:   "within limit unchanged",
			text:   "short text",
			maxLen: 50,
			want:   "short text",
		},
		{
			name:   "cuts at word boundary",
			text:   "Quick question about your business website today",
			maxLen: 30,
			want:   "Quick question about your...",
		},
		{
			name:   "strips trailing punctuation",
			text:   "Hello there, friend, how are you doing today",
			maxLen: 16,
			want:   "Hello there...",
		},
		{
			name:   "exact length unchanged",
			text:   "ten chars!",
			maxLen: 10,
			want:   "ten chars!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tp.TruncateAtWordBoundary(tt.text, tt.maxLen, 0.7)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), tt.maxLen)
		})
	}
}

func TestTruncateAtWordBoundary_NoBoundaryInRange(t *testing.T) {
	tp := newTestProcessor()

	// No space past the keep ratio, so the cut is mid-word
	got := tp.TruncateAtWordBoundary("a "+strings.Repeat("x", 60), 20, 0.7)

	assert.Len(t, got, 20)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestTruncateAtWordBoundary_MultibyteSafe(t *testing.T) {
	tp := newTestProcessor()

	got := tp.TruncateAtWordBoundary(strings.Repeat("é", 40), 22, 0.7)

	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 22)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestSanitizeUTF8(t *testing.T) {
	tp := newTestProcessor()

	assert.Equal(t, "clean text", tp.SanitizeUTF8("clean text"))
	assert.Equal(t, "ab", tp.SanitizeUTF8("a\xffb"))
}

func TestCollapseWhitespace(t *testing.T) {
	tp := newTestProcessor()

	assert.Equal(t, "a b c", tp.CollapseWhitespace("  a \t b\n\nc  "))
	assert.Equal(t, "", tp.CollapseWhitespace("   "))
}
