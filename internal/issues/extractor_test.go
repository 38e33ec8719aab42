package issues

import (
	"testing"

	"github.com/mikey/outreach-personalizer/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExtractor() *Extractor {
	return NewExtractor(zap.NewNop())
}

func TestExtract_LowPerformanceScore(t *testing.T) {
	e := newTestExtractor()

	assessment := map[string]interface{}{
		"pagespeed": map[string]interface{}{
			"performance_score": 45.0,
		},
	}
	business := map[string]interface{}{"name": "Acme LLC"}

	result := e.Extract(assessment, business, 3)

	require.Len(t, result, 1)
	assert.Equal(t, "performance", result[0].Type)
	assert.Equal(t, core.ImpactHigh, result[0].Impact)
	assert.NotEmpty(t, result[0].Description)
	assert.NotEmpty(t, result[0].Improvement)
}

func TestExtract_MediumImpactBetweenThresholds(t *testing.T) {
	e := newTestExtractor()

	assessment := map[string]interface{}{
		"pagespeed": map[string]interface{}{
			"performance_score": 60,
		},
	}

	result := e.Extract(assessment, nil, 3)

	require.Len(t, result, 1)
	assert.Equal(t, core.ImpactMedium, result[0].Impact)
}

func TestExtract_GoodScoresProduceNoIssues(t *testing.T) {
	e := newTestExtractor()

	assessment := map[string]interface{}{
		"pagespeed": map[string]interface{}{
			"performance_score":   92.0,
			"seo_score":           85.0,
			"accessibility_score": 70.0,
		},
	}

	assert.Empty(t, e.Extract(assessment, nil, 3))
}

func TestExtract_EmptyInput(t *testing.T) {
	e := newTestExtractor()

	assert.Empty(t, e.Extract(nil, nil, 3))
	assert.Empty(t, e.Extract(map[string]interface{}{}, nil, 3))
}

func TestExtract_MalformedSectionsIgnored(t *testing.T) {
	e := newTestExtractor()

	assessment := map[string]interface{}{
		"pagespeed":       "not a map",
		"core_web_vitals": 42,
		"tech_stack":      []string{"nope"},
		"issues":          "not a list",
	}

	assert.Empty(t, e.Extract(assessment, nil, 3))
}

func TestExtract_WebVitals(t *testing.T) {
	e := newTestExtractor()

	assessment := map[string]interface{}{
		"core_web_vitals": map[string]interface{}{
			"lcp": 4.8,
			"cls": 0.05,
			"fid": 250.0,
		},
	}

	result := e.Extract(assessment, nil, 10)

	require.Len(t, result, 2)
	types := []string{result[0].Type, result[1].Type}
	assert.Contains(t, types, "largest_contentful_paint")
	assert.Contains(t, types, "first_input_delay")
}

func TestExtract_TechStack(t *testing.T) {
	e := newTestExtractor()

	assessment := map[string]interface{}{
		"tech_stack": map[string]interface{}{
			"outdated":        true,
			"vulnerabilities": []interface{}{"CVE-2023-1234", "CVE-2023-5678"},
		},
	}

	result := e.Extract(assessment, nil, 10)

	require.Len(t, result, 2)
	// Security ranks first: high impact beats medium
	assert.Equal(t, "security", result[0].Type)
	assert.Equal(t, core.ImpactHigh, result[0].Impact)
	assert.Equal(t, "outdated_technology", result[1].Type)
}

func TestExtract_FreeformUnknownNamesDropped(t *testing.T) {
	e := newTestExtractor()

	assessment := map[string]interface{}{
		"issues": []interface{}{"no_ssl", "definitely_not_a_thing", "dead_links", 42},
	}

	result := e.Extract(assessment, nil, 10)

	require.Len(t, result, 2)
	assert.Equal(t, "missing_ssl", result[0].Type)
	assert.Equal(t, "broken_links", result[1].Type)
}

func TestExtract_RankedAndCapped(t *testing.T) {
	e := newTestExtractor()

	assessment := map[string]interface{}{
		"pagespeed": map[string]interface{}{
			"performance_score":   30.0, // high, score 0.7
			"seo_score":           65.0, // medium
			"accessibility_score": 40.0, // high, score 0.6
		},
		"issues": []interface{}{"no_ssl"},
	}

	result := e.Extract(assessment, nil, 3)

	require.Len(t, result, 3)
	assert.Equal(t, "performance", result[0].Type)
	assert.Equal(t, "accessibility", result[1].Type)
	assert.Equal(t, "seo", result[2].Type)
}

func TestExtract_Deterministic(t *testing.T) {
	e := newTestExtractor()

	assessment := map[string]interface{}{
		"pagespeed": map[string]interface{}{
			"performance_score": 42.0,
			"seo_score":         55.0,
		},
		"core_web_vitals": map[string]interface{}{
			"lcp": 3.9,
		},
		"issues": []interface{}{"mobile_issues", "no_ssl"},
	}

	first := e.Extract(assessment, nil, 10)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Extract(assessment, nil, 10))
	}
}
