package assembler

import (
	"strings"
	"testing"

	"github.com/mikey/outreach-personalizer/internal/catalog"
	"github.com/mikey/outreach-personalizer/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAssembler() *Assembler {
	logger := zap.NewNop()
	return NewAssembler(catalog.NewBuiltinCatalog(logger), catalog.NewResolver(logger), logger)
}

func fullProspect() core.Prospect {
	return core.Prospect{
		Business: map[string]interface{}{
			"name":     "Acme LLC",
			"industry": "Restaurants",
		},
		Contact: map[string]interface{}{
			"first_name": "jane",
		},
		Issues: []core.Issue{
			{Type: "performance", Impact: core.ImpactHigh, Description: "The site loads slowly", Improvement: "optimize assets"},
			{Type: "seo", Impact: core.ImpactMedium, Description: "Search visibility is weak", Improvement: "fix metadata"},
		},
	}
}

func TestAssemble_RendersBothFormats(t *testing.T) {
	a := newTestAssembler()

	html, text := a.Assemble(fullProspect())

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "Acme")
	assert.Contains(t, text, "Acme")
	assert.NotContains(t, text, "<")
	assert.NotContains(t, html, "{")
	assert.NotContains(t, text, "{")
}

func TestAssemble_IssueBadges(t *testing.T) {
	a := newTestAssembler()

	html, text := a.Assemble(fullProspect())

	assert.Contains(t, html, "#e74c3c") // high impact badge
	assert.Contains(t, html, "#f39c12") // medium impact badge
	assert.Contains(t, html, "The site loads slowly")
	assert.Contains(t, text, "- [HIGH] The site loads slowly (fix: optimize assets)")
	assert.Contains(t, text, "- [MEDIUM] Search visibility is weak (fix: fix metadata)")
}

func TestAssemble_RichProspectGetsWalkthrough(t *testing.T) {
	a := newTestAssembler()

	// Issues plus industry score the walkthrough template highest
	_, text := a.Assemble(fullProspect())

	assert.Contains(t, text, "restaurant")
	assert.Contains(t, text, "performance")
}

func TestAssemble_EmptyProspectNeverFails(t *testing.T) {
	a := newTestAssembler()

	html, text := a.Assemble(core.Prospect{})

	require.NotEmpty(t, html)
	require.NotEmpty(t, text)
	assert.Contains(t, text, "your business")
	assert.Contains(t, text, "there")
	assert.NotContains(t, html, "{")
}

func TestAssemble_MinimalFallbackWithoutTemplates(t *testing.T) {
	logger := zap.NewNop()
	empty := catalog.NewCatalogFromTemplates(map[string]map[string][]catalog.Template{}, logger)
	a := NewAssembler(empty, catalog.NewResolver(logger), logger)

	html, text := a.Assemble(fullProspect())

	require.NotEmpty(t, html)
	require.NotEmpty(t, text)
	assert.Contains(t, text, "Hi Jane,")
	assert.Contains(t, text, "Acme")
	assert.Contains(t, text, "short call")
	// The fallback still lists the issues
	assert.Contains(t, html, "#e74c3c")
}

func TestAssemble_SectionOrderIsFixed(t *testing.T) {
	a := newTestAssembler()

	_, text := a.Assemble(fullProspect())

	opening := strings.Index(text, "Hi Jane")
	cta := strings.Index(text, "short call")
	closing := strings.Index(text, "full notes")
	require.GreaterOrEqual(t, opening, 0)
	require.Greater(t, cta, opening)
	require.Greater(t, closing, cta)
}

func TestAssemble_Deterministic(t *testing.T) {
	a := newTestAssembler()
	p := fullProspect()

	firstHTML, firstText := a.Assemble(p)
	for i := 0; i < 5; i++ {
		html, text := a.Assemble(p)
		assert.Equal(t, firstHTML, html)
		assert.Equal(t, firstText, text)
	}
}
