package spamcheck

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"go.uber.org/zap"
)

// RuleKind enumerates the spam rule evaluation modes
type RuleKind string

const (
	KindKeyword    RuleKind = "keyword"
	KindPattern    RuleKind = "pattern"
	KindLength     RuleKind = "length"
	KindFrequency  RuleKind = "frequency"
	KindFormatting RuleKind = "formatting"
	KindStructural RuleKind = "structural"
)

// Rule targets
const (
	TargetSubject = "subject"
	TargetContent = "content"
	TargetBoth    = "both"
)

// Structural check names used in Rule.Matcher
const (
	StructuralEmptyContent  = "empty_content"
	StructuralHTMLTextRatio = "html_text_ratio"
)

// Rule is one weighted spam detector
type Rule struct {
	ID          string   `json:"id"`
	Kind        RuleKind `json:"kind"`
	Keywords    []string `json:"keywords,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Matcher     string   `json:"matcher,omitempty"`
	Weight      float64  `json:"weight"`
	Threshold   float64  `json:"threshold,omitempty"`
	Direction   string   `json:"direction,omitempty"` // length rules: "over" (default) or "under"
	Category    string   `json:"category"`
	Target      string   `json:"target,omitempty"`
	Description string   `json:"description"`
	Enabled     bool     `json:"enabled"`

	compiled *regexp.Regexp
}

// ruleFile matches the on-disk JSON shape
type ruleFile struct {
	Rules []Rule `json:"rules"`
}

// loadRules reads the declarative rule set from a JSON file and compiles
// its patterns. Rules that fail to compile are skipped, not fatal.
func loadRules(path string, logger *zap.Logger) ([]Rule, error) {
	if path == "" {
		return nil, fmt.Errorf("no rules path configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spam rules: %w", err)
	}

	var file ruleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse spam rules: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("spam rule file is empty")
	}

	return compileRules(file.Rules, logger), nil
}

// compileRules normalizes defaults and compiles regexp patterns
func compileRules(rules []Rule, logger *zap.Logger) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Target == "" {
			r.Target = TargetBoth
		}
		if r.Pattern != "" {
			compiled, err := regexp.Compile(r.Pattern)
			if err != nil {
				logger.Warn("Skipping spam rule with invalid pattern",
					zap.String("rule_id", r.ID),
					zap.Error(err))
				continue
			}
			r.compiled = compiled
		}
		out = append(out, r)
	}
	return out
}

// builtinRules is the fallback rule set used when the declarative source
// cannot be loaded. It spans every rule category so the engine stays useful.
func builtinRules(logger *zap.Logger) []Rule {
	rules := []Rule{
		{
			ID:          "spam_words",
			Kind:        KindKeyword,
			Keywords:    []string{"free", "winner", "cash", "urgent", "act now", "click here", "buy now", "limited time", "guarantee", "no obligation", "risk-free", "100%"},
			Weight:      8,
			Category:    "keywords",
			Target:      TargetBoth,
			Description: "Common spam trigger words",
			Enabled:     true,
		},
		{
			ID:          "all_caps_words",
			Kind:        KindPattern,
			Pattern:     `\b[A-Z]{3,}\b`,
			Weight:      5,
			Category:    "caps_pattern",
			Target:      TargetBoth,
			Description: "Words written in all capitals",
			Enabled:     true,
		},
		{
			ID:          "subject_too_long",
			Kind:        KindLength,
			Weight:      10,
			Threshold:   78,
			Direction:   "over",
			Category:    "subject_length",
			Target:      TargetSubject,
			Description: "Subject line exceeds the readable length",
			Enabled:     true,
		},
		{
			ID:          "content_too_short",
			Kind:        KindLength,
			Weight:      10,
			Threshold:   80,
			Direction:   "under",
			Category:    "content_length",
			Target:      TargetContent,
			Description: "Body content is too thin",
			Enabled:     true,
		},
		{
			ID:          "exclamation_runs",
			Kind:        KindFrequency,
			Matcher:     "!",
			Weight:      6,
			Threshold:   1,
			Category:    "formatting",
			Target:      TargetBoth,
			Description: "Repeated exclamation marks",
			Enabled:     true,
		},
		{
			ID:          "punctuation_artifacts",
			Kind:        KindFormatting,
			Pattern:     `[!?]{2,}|\${2,}|\*{2,}`,
			Weight:      4,
			Category:    "formatting",
			Target:      TargetBoth,
			Description: "Punctuation and symbol artifacts",
			Enabled:     true,
		},
		{
			ID:          "empty_content",
			Kind:        KindStructural,
			Matcher:     StructuralEmptyContent,
			Weight:      20,
			Category:    "structure",
			Target:      TargetContent,
			Description: "Message body is empty",
			Enabled:     true,
		},
		{
			ID:          "html_heavy",
			Kind:        KindStructural,
			Matcher:     StructuralHTMLTextRatio,
			Weight:      8,
			Threshold:   0.6,
			Category:    "structure",
			Target:      TargetContent,
			Description: "Markup outweighs visible text",
			Enabled:     true,
		},
	}
	return compileRules(rules, logger)
}
