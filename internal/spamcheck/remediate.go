package spamcheck

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canned remediation text per rule category
var categorySuggestions = map[string]string{
	"keywords":       "Remove or replace spam trigger words",
	"caps_pattern":   "Reduce the use of ALL CAPS",
	"subject_length": "Shorten the subject line",
	"content_length": "Add more substance to the message body",
	"formatting":     "Remove repeated punctuation and symbol runs",
	"structure":      "Balance HTML markup with visible text",
}

// maxSuggestions caps the remediation list at the highest-scoring categories
const maxSuggestions = 5

// neutralReplacements rewrites spam trigger words into neutral phrasing.
// Multi-word phrases come first so they win over their substrings.
var neutralReplacements = []struct {
	spam    string
	neutral string
}{
	{"act now", "when you're ready"},
	{"buy now", "take a look"},
	{"click here", "see the details"},
	{"limited time", "current"},
	{"no obligation", "informal"},
	{"risk-free", "straightforward"},
	{"guaranteed", "reliable"},
	{"guarantee", "commitment"},
	{"urgent", "timely"},
	{"winner", "standout"},
	{"free", "complimentary"},
	{"cash", "revenue"},
}

var (
	capsWordPattern    = regexp.MustCompile(`\b[A-Z]{4,}\b`)
	exclamationPattern = regexp.MustCompile(`!{2,}`)
	titleCaser         = cases.Title(language.English)
)

// suggestionsFor maps triggered rule categories to canned remediation text,
// ordered by category score and capped. Fully deterministic.
func suggestionsFor(categoryScores map[string]float64) []string {
	var out []string
	for _, category := range sortedCategories(categoryScores) {
		text, ok := categorySuggestions[category]
		if !ok {
			continue
		}
		out = append(out, text)
		if len(out) >= maxSuggestions {
			break
		}
	}
	return out
}

// ReduceSpamScore applies best-effort textual fixes for the given
// suggestions and reports which fixes changed the content. The rewrite is
// deterministic; it does not promise a lower score on re-check.
func (e *Engine) ReduceSpamScore(content string, suggestions []string) (string, []string) {
	var applied []string

	for _, suggestion := range suggestions {
		lower := strings.ToLower(suggestion)
		switch {
		case strings.Contains(lower, "spam trigger"):
			rewritten := replaceSpamWords(content)
			if rewritten != content {
				content = rewritten
				applied = append(applied, "replaced spam trigger words with neutral phrasing")
			}

		case strings.Contains(lower, "all caps"):
			rewritten := capsWordPattern.ReplaceAllStringFunc(content, func(word string) string {
				return titleCaser.String(strings.ToLower(word))
			})
			if rewritten != content {
				content = rewritten
				applied = append(applied, "normalized all-caps words to title case")
			}

		case strings.Contains(lower, "punctuation"):
			rewritten := exclamationPattern.ReplaceAllString(content, "!")
			if rewritten != content {
				content = rewritten
				applied = append(applied, "collapsed repeated exclamation marks")
			}
		}
	}

	return content, applied
}

// replaceSpamWords swaps each spam trigger for its neutral counterpart,
// case-insensitively
func replaceSpamWords(content string) string {
	for _, r := range neutralReplacements {
		content = replaceFold(content, r.spam, r.neutral)
	}
	return content
}

// replaceFold is a case-insensitive replace of every occurrence of from
func replaceFold(text, from, to string) string {
	if from == "" {
		return text
	}
	lower := strings.ToLower(text)
	target := strings.ToLower(from)

	var b strings.Builder
	for {
		i := strings.Index(lower, target)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i])
		b.WriteString(to)
		text = text[i+len(from):]
		lower = lower[i+len(target):]
	}
}
