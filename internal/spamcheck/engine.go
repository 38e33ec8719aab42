package spamcheck

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mikey/outreach-personalizer/internal/core"
	"go.uber.org/zap"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// Engine is the weighted rule evaluator. The rule set is loaded once at
// construction and never mutated, so an Engine is safe for concurrent use.
type Engine struct {
	rules  []Rule
	logger *zap.Logger
}

// NewEngine loads the rule set from the given JSON file. Any load failure
// falls back to the built-in rules; the engine is never inoperable.
func NewEngine(rulesPath string, logger *zap.Logger) *Engine {
	rules, err := loadRules(rulesPath, logger)
	if err != nil {
		logger.Warn("Failed to load spam rules, using built-in fallback",
			zap.String("path", rulesPath),
			zap.Error(err))
		rules = builtinRules(logger)
	} else {
		logger.Info("Loaded spam rules",
			zap.String("path", rulesPath),
			zap.Int("rules", len(rules)))
	}
	return &Engine{rules: rules, logger: logger}
}

// NewEngineWithRules builds an engine over an explicit rule set
func NewEngineWithRules(rules []Rule, logger *zap.Logger) *Engine {
	return &Engine{rules: compileRules(rules, logger), logger: logger}
}

// BatchItem is one independently scored subject/content pair
type BatchItem struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

// Check evaluates every enabled rule against the subject and content and
// aggregates the triggered scores per category. The overall score is the
// capped additive sum; the risk level follows from it directly.
func (e *Engine) Check(subject, content string) *core.SpamCheckResult {
	var triggered []core.TriggeredRule
	categoryScores := make(map[string]float64)

	for _, rule := range e.rules {
		if !rule.Enabled {
			continue
		}
		score, matches := e.evaluate(rule, subject, content)
		if score <= 0 {
			continue
		}
		triggered = append(triggered, core.TriggeredRule{
			RuleID:      rule.ID,
			Category:    rule.Category,
			Description: rule.Description,
			Score:       score,
			Matches:     matches,
		})
		categoryScores[rule.Category] += score
	}

	overall := 0.0
	for _, t := range triggered {
		overall += t.Score
	}
	if overall > 100 {
		overall = 100
	}

	result := &core.SpamCheckResult{
		OverallScore:   overall,
		RiskLevel:      core.RiskLevelForScore(overall),
		TriggeredRules: triggered,
		CategoryScores: categoryScores,
		Suggestions:    suggestionsFor(categoryScores),
		Details: map[string]interface{}{
			"subject_length": len(subject),
			"content_length": len(content),
			"rules_checked":  len(e.rules),
		},
		CheckedAt: time.Now(),
	}

	e.logger.Debug("Spam check complete",
		zap.Float64("overall_score", overall),
		zap.String("risk_level", string(result.RiskLevel)),
		zap.Int("triggered", len(triggered)))

	return result
}

// CheckBatch scores each item independently; no state is shared across items
func (e *Engine) CheckBatch(items []BatchItem) []*core.SpamCheckResult {
	results := make([]*core.SpamCheckResult, len(items))
	for i, item := range items {
		results[i] = e.Check(item.Subject, item.Content)
	}
	return results
}

// evaluate scores a single rule against its target text
func (e *Engine) evaluate(rule Rule, subject, content string) (float64, int) {
	text := targetText(rule.Target, subject, content)

	switch rule.Kind {
	case KindKeyword:
		matches := countKeywords(text, rule.Keywords)
		return float64(matches) * rule.Weight, matches

	case KindPattern:
		if rule.compiled == nil {
			return 0, 0
		}
		matches := len(rule.compiled.FindAllString(text, -1))
		return float64(matches) * rule.Weight, matches

	case KindLength:
		length := float64(len(text))
		if rule.Direction == "under" {
			if length < rule.Threshold {
				return rule.Weight, 1
			}
			return 0, 0
		}
		if length > rule.Threshold {
			return rule.Weight, 1
		}
		return 0, 0

	case KindFrequency:
		count := strings.Count(text, rule.Matcher)
		over := float64(count) - rule.Threshold
		if over <= 0 {
			return 0, 0
		}
		return rule.Weight * over, count

	case KindFormatting:
		if rule.compiled == nil {
			return 0, 0
		}
		artifacts := len(rule.compiled.FindAllString(text, -1))
		return rule.Weight * float64(artifacts), artifacts

	case KindStructural:
		return e.evaluateStructural(rule, text)

	default:
		return 0, 0
	}
}

func (e *Engine) evaluateStructural(rule Rule, text string) (float64, int) {
	switch rule.Matcher {
	case StructuralEmptyContent:
		if strings.TrimSpace(text) == "" {
			return rule.Weight, 1
		}
	case StructuralHTMLTextRatio:
		if htmlTextRatio(text) > rule.Threshold {
			return rule.Weight, 1
		}
	}
	return 0, 0
}

func targetText(target, subject, content string) string {
	switch target {
	case TargetSubject:
		return subject
	case TargetContent:
		return content
	default:
		return subject + "\n" + content
	}
}

// countKeywords counts case-insensitive occurrences of every keyword
func countKeywords(text string, keywords []string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, kw := range keywords {
		count += strings.Count(lower, strings.ToLower(kw))
	}
	return count
}

// htmlTextRatio is the share of the content taken up by markup
func htmlTextRatio(content string) float64 {
	if len(content) == 0 {
		return 0
	}
	stripped := htmlTagPattern.ReplaceAllString(content, "")
	markup := len(content) - len(stripped)
	return float64(markup) / float64(len(content))
}

// sortedCategories orders categories by score desc, name asc for stable
// deterministic output
func sortedCategories(categoryScores map[string]float64) []string {
	names := make([]string, 0, len(categoryScores))
	for name := range categoryScores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if categoryScores[names[i]] != categoryScores[names[j]] {
			return categoryScores[names[i]] > categoryScores[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
