package spamcheck

import (
	"testing"

	"github.com/mikey/outreach-personalizer/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine() *Engine {
	// Bad path forces the built-in rule set
	return NewEngine("/does/not/exist.json", zap.NewNop())
}

func TestNewEngine_FallbackRuleSet(t *testing.T) {
	e := newTestEngine()

	require.GreaterOrEqual(t, len(e.rules), 5)

	categories := make(map[string]bool)
	for _, r := range e.rules {
		categories[r.Category] = true
	}
	for _, want := range []string{"keywords", "caps_pattern", "subject_length", "content_length", "formatting", "structure"} {
		assert.True(t, categories[want], "missing category %s", want)
	}
}

func TestCheck_SpammyScoresHigherThanClean(t *testing.T) {
	e := newTestEngine()

	spammy := e.Check("FREE URGENT!!! ACT NOW!!!", "CLICK HERE NOW!!!")
	clean := e.Check("Quick update", "Here are some insights about your site.")

	assert.Greater(t, spammy.OverallScore, clean.OverallScore)
	assert.Contains(t, []core.RiskLevel{core.RiskHigh, core.RiskCritical}, spammy.RiskLevel)
	assert.Equal(t, core.RiskLow, clean.RiskLevel)
	assert.NotEmpty(t, spammy.Suggestions)
}

func TestCheck_ScoreBounds(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		subject string
		content string
	}{
		{"", ""},
		{"Hello", "A perfectly ordinary message with enough substance to pass the length rule easily."},
		{"FREE FREE FREE WIN CASH NOW!!!", "FREE CASH WINNER URGENT BUY NOW CLICK HERE!!! ACT NOW!!! FREE FREE FREE"},
	}
	for _, tt := range tests {
		result := e.Check(tt.subject, tt.content)
		assert.GreaterOrEqual(t, result.OverallScore, 0.0)
		assert.LessOrEqual(t, result.OverallScore, 100.0)
		assert.Equal(t, core.RiskLevelForScore(result.OverallScore), result.RiskLevel)
	}
}

func TestRiskLevelBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  core.RiskLevel
	}{
		{0, core.RiskLow},
		{24.9, core.RiskLow},
		{25, core.RiskMedium},
		{49.9, core.RiskMedium},
		{50, core.RiskHigh},
		{74.9, core.RiskHigh},
		{75, core.RiskCritical},
		{100, core.RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, core.RiskLevelForScore(tt.score), "score %.1f", tt.score)
	}
}

func TestCheck_RuleKinds(t *testing.T) {
	logger := zap.NewNop()

	t.Run("keyword counts every occurrence", func(t *testing.T) {
		e := NewEngineWithRules([]Rule{{
			ID: "kw", Kind: KindKeyword, Keywords: []string{"free"},
			Weight: 5, Category: "keywords", Enabled: true,
		}}, logger)

		result := e.Check("free stuff", "totally free, yes free")
		require.Len(t, result.TriggeredRules, 1)
		assert.Equal(t, 3, result.TriggeredRules[0].Matches)
		assert.Equal(t, 15.0, result.OverallScore)
	})

	t.Run("length over threshold", func(t *testing.T) {
		e := NewEngineWithRules([]Rule{{
			ID: "len", Kind: KindLength, Weight: 10, Threshold: 10,
			Direction: "over", Category: "subject_length", Target: TargetSubject, Enabled: true,
		}}, logger)

		assert.Equal(t, 10.0, e.Check("a very long subject line", "").OverallScore)
		assert.Equal(t, 0.0, e.Check("short", "").OverallScore)
	})

	t.Run("length under threshold", func(t *testing.T) {
		e := NewEngineWithRules([]Rule{{
			ID: "thin", Kind: KindLength, Weight: 10, Threshold: 20,
			Direction: "under", Category: "content_length", Target: TargetContent, Enabled: true,
		}}, logger)

		assert.Equal(t, 10.0, e.Check("", "tiny").OverallScore)
		assert.Equal(t, 0.0, e.Check("", "long enough content here").OverallScore)
	})

	t.Run("frequency scales with overage", func(t *testing.T) {
		e := NewEngineWithRules([]Rule{{
			ID: "excl", Kind: KindFrequency, Matcher: "!", Weight: 6,
			Threshold: 1, Category: "formatting", Enabled: true,
		}}, logger)

		// 4 marks, threshold 1 -> weight * 3
		assert.Equal(t, 18.0, e.Check("wow!!!", "ok!").OverallScore)
		assert.Equal(t, 0.0, e.Check("calm.", "fine.").OverallScore)
	})

	t.Run("structural empty content", func(t *testing.T) {
		e := NewEngineWithRules([]Rule{{
			ID: "empty", Kind: KindStructural, Matcher: StructuralEmptyContent,
			Weight: 20, Category: "structure", Target: TargetContent, Enabled: true,
		}}, logger)

		assert.Equal(t, 20.0, e.Check("subject", "   ").OverallScore)
		assert.Equal(t, 0.0, e.Check("subject", "body").OverallScore)
	})

	t.Run("structural html ratio", func(t *testing.T) {
		e := NewEngineWithRules([]Rule{{
			ID: "html", Kind: KindStructural, Matcher: StructuralHTMLTextRatio,
			Weight: 8, Threshold: 0.5, Category: "structure", Target: TargetContent, Enabled: true,
		}}, logger)

		markupHeavy := "<div><span><b></b></span></div>hi"
		assert.Equal(t, 8.0, e.Check("", markupHeavy).OverallScore)
		assert.Equal(t, 0.0, e.Check("", "<p>plenty of visible text in this paragraph</p>").OverallScore)
	})

	t.Run("disabled rules never fire", func(t *testing.T) {
		e := NewEngineWithRules([]Rule{{
			ID: "kw", Kind: KindKeyword, Keywords: []string{"free"},
			Weight: 5, Category: "keywords", Enabled: false,
		}}, logger)

		assert.Equal(t, 0.0, e.Check("free", "free free").OverallScore)
	})
}

func TestCheck_OverallScoreCapped(t *testing.T) {
	e := NewEngineWithRules([]Rule{{
		ID: "kw", Kind: KindKeyword, Keywords: []string{"x"},
		Weight: 50, Category: "keywords", Enabled: true,
	}}, zap.NewNop())

	result := e.Check("x x x x x", "x x x x x")
	assert.Equal(t, 100.0, result.OverallScore)
	assert.Equal(t, core.RiskCritical, result.RiskLevel)
}

func TestCheck_CategoryAggregation(t *testing.T) {
	e := NewEngineWithRules([]Rule{
		{ID: "a", Kind: KindKeyword, Keywords: []string{"free"}, Weight: 5, Category: "keywords", Enabled: true},
		{ID: "b", Kind: KindKeyword, Keywords: []string{"cash"}, Weight: 7, Category: "keywords", Enabled: true},
	}, zap.NewNop())

	result := e.Check("free cash", "")
	assert.Equal(t, 12.0, result.CategoryScores["keywords"])
}

func TestCheckBatch_Independent(t *testing.T) {
	e := newTestEngine()

	items := []BatchItem{
		{Subject: "FREE CASH NOW!!!", Content: "CLICK HERE!!!", Type: "promo"},
		{Subject: "Monthly notes", Content: "Here is a calm and reasonable update about the project status this month.", Type: "update"},
	}

	batch := e.CheckBatch(items)
	require.Len(t, batch, 2)

	// Each item must score identically to a standalone check
	solo0 := e.Check(items[0].Subject, items[0].Content)
	solo1 := e.Check(items[1].Subject, items[1].Content)
	assert.Equal(t, solo0.OverallScore, batch[0].OverallScore)
	assert.Equal(t, solo1.OverallScore, batch[1].OverallScore)
}

func TestLoadRules_FromFile(t *testing.T) {
	e := NewEngine("../../configs/spam_rules.json", zap.NewNop())
	require.GreaterOrEqual(t, len(e.rules), 5)

	result := e.Check("FREE URGENT!!! ACT NOW!!!", "CLICK HERE NOW!!!")
	assert.Greater(t, result.OverallScore, 50.0)
}
