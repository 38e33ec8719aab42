package subject

import (
	"strings"
	"unicode"
)

// spamTriggerWords is the fast local spam vocabulary. The standalone spam
// engine keeps its own, richer rule set; this one only gates candidates.
var spamTriggerWords = []string{
	"free", "urgent", "act now", "limited time", "click here", "buy now",
	"guarantee", "guaranteed", "winner", "cash", "no obligation", "risk-free",
}

// qualityScore combines the sub-scores with fixed weights
func qualityScore(text string, personalization, localRisk float64) float64 {
	return 0.3*lengthScore(len(text)) +
		0.3*personalization +
		0.2*readabilityScore(text) +
		0.2*(1-localRisk)
}

// lengthScore peaks for 30-50 character subjects and decays stepwise
func lengthScore(n int) float64 {
	switch {
	case n >= 30 && n <= 50:
		return 1.0
	case n >= 20 && n < 30, n > 50 && n <= 60:
		return 0.8
	case n >= 10 && n < 20, n > 60 && n <= 78:
		return 0.6
	default:
		return 0.2
	}
}

// personalizationScore is the fraction of required tokens that resolved from
// live data; a template with no required tokens scores 1.0
func personalizationScore(required []string, resolved map[string]string) float64 {
	if len(required) == 0 {
		return 1.0
	}
	hit := 0
	for _, name := range required {
		if _, ok := resolved[name]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(required))
}

// readabilityScore rewards an average word length near five characters
func readabilityScore(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += len(w)
	}
	avg := float64(total) / float64(len(words))
	score := 1 - (avg-5)/5
	if avg < 5 {
		score = 1 - (5-avg)/5
	}
	if score < 0 {
		return 0
	}
	return score
}

// localSpamRisk is the fast heuristic gate: roughly 0.1 per trigger, capped
// at 1.0
func localSpamRisk(text string) float64 {
	risk := 0.0
	lower := strings.ToLower(text)

	for _, word := range spamTriggerWords {
		if strings.Contains(lower, word) {
			risk += 0.1
		}
	}

	if strings.Count(text, "!") > 1 {
		risk += 0.1
	}

	if countCapsWords(text) > 2 {
		risk += 0.1
	}

	if symbolDensity(text) > 0.2 {
		risk += 0.1
	}

	if risk > 1.0 {
		risk = 1.0
	}
	return risk
}

// countCapsWords counts all-caps words longer than two characters
func countCapsWords(text string) int {
	count := 0
	for _, word := range strings.Fields(text) {
		trimmed := strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) })
		if len(trimmed) <= 2 {
			continue
		}
		if trimmed == strings.ToUpper(trimmed) && trimmed != strings.ToLower(trimmed) {
			count++
		}
	}
	return count
}

// symbolDensity is the share of digits and non-space symbols in the text
func symbolDensity(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	symbols := 0
	total := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if !unicode.IsLetter(r) {
			symbols++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(symbols) / float64(total)
}
