package assembler

import (
	"fmt"
	"strings"

	"github.com/mikey/outreach-personalizer/internal/catalog"
	"github.com/mikey/outreach-personalizer/internal/core"
	"go.uber.org/zap"
)

// sectionOrder is the fixed five-section body layout
var sectionOrder = []string{"opening", "problem", "solution", "cta", "closing"}

// badgeColors maps issue impact to the inline badge color
var badgeColors = map[core.Impact]string{
	core.ImpactHigh:   "#e74c3c",
	core.ImpactMedium: "#f39c12",
	core.ImpactLow:    "#27ae60",
}

// Assembler renders a deterministic HTML and plain text body from the
// template catalog. It never fails: when no template fits, a minimal
// hard-coded body is produced instead.
type Assembler struct {
	catalog  *catalog.Catalog
	resolver *catalog.Resolver
	logger   *zap.Logger
}

// NewAssembler creates a new content assembler
func NewAssembler(cat *catalog.Catalog, resolver *catalog.Resolver, logger *zap.Logger) *Assembler {
	return &Assembler{
		catalog:  cat,
		resolver: resolver,
		logger:   logger,
	}
}

// Assemble picks the best-scoring body template for the prospect and
// renders it. Ties go to catalog order; a zero best score falls back to the
// minimal body.
func (a *Assembler) Assemble(prospect core.Prospect) (string, string) {
	best, bestScore := a.selectTemplate(prospect)
	if bestScore <= 0 {
		a.logger.Debug("No body template scored, using minimal fallback")
		return a.minimalBody(prospect)
	}

	a.logger.Debug("Selected body template",
		zap.String("template", best.Name),
		zap.Int("score", bestScore))

	sections := make(map[string]string, len(best.Sections))
	for name, pattern := range best.Sections {
		rendered, _, _ := a.resolver.Substitute(pattern, prospect)
		sections[name] = rendered
	}

	return a.renderHTML(sections, prospect.Issues), a.renderText(sections, prospect.Issues)
}

// selectTemplate scores every body template by its usable variables
func (a *Assembler) selectTemplate(prospect core.Prospect) (catalog.Template, int) {
	var best catalog.Template
	bestScore := 0
	for _, tmpl := range a.catalog.AllForType(catalog.ContentTypeEmailBody) {
		score := a.scoreTemplate(tmpl, prospect)
		if score > bestScore {
			best = tmpl
			bestScore = score
		}
	}
	return best, bestScore
}

// scoreTemplate counts the template's referenced variables that have usable
// data behind them. business_name always counts; industry, issue_count and
// main_issue count only when the prospect carries them.
func (a *Assembler) scoreTemplate(tmpl catalog.Template, prospect core.Prospect) int {
	referenced := make(map[string]bool)
	for _, pattern := range tmpl.Sections {
		for _, name := range catalog.TokenNames(pattern) {
			referenced[name] = true
		}
	}

	hasIndustry := false
	if prospect.Business != nil {
		if s, ok := prospect.Business["industry"].(string); ok && strings.TrimSpace(s) != "" {
			hasIndustry = true
		}
	}

	score := 0
	if referenced["business_name"] {
		score++
	}
	if referenced["industry"] && hasIndustry {
		score++
	}
	if referenced["issue_count"] && len(prospect.Issues) > 0 {
		score++
	}
	if referenced["main_issue"] && len(prospect.Issues) > 0 {
		score++
	}
	return score
}

// renderHTML produces the fixed scaffold with inlined styles and
// impact-colored issue badges
func (a *Assembler) renderHTML(sections map[string]string, issues []core.Issue) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f4f4;font-family:Arial,Helvetica,sans-serif;">
<div style="max-width:600px;margin:0 auto;padding:24px;background-color:#ffffff;color:#333333;font-size:15px;line-height:1.6;">
`)

	for _, name := range sectionOrder {
		text, ok := sections[name]
		if !ok || text == "" {
			continue
		}
		if name == "cta" {
			fmt.Fprintf(&b, "<p style=\"margin:16px 0;font-weight:bold;\">%s</p>\n", text)
		} else {
			fmt.Fprintf(&b, "<p style=\"margin:16px 0;\">%s</p>\n", text)
		}
		if name == "problem" && len(issues) > 0 {
			b.WriteString(renderIssueBadges(issues))
		}
	}

	b.WriteString(`</div>
</body>
</html>`)
	return b.String()
}

func renderIssueBadges(issues []core.Issue) string {
	var b strings.Builder
	b.WriteString("<ul style=\"margin:16px 0;padding-left:0;list-style:none;\">\n")
	for _, issue := range issues {
		color, ok := badgeColors[issue.Impact]
		if !ok {
			color = badgeColors[core.ImpactLow]
		}
		fmt.Fprintf(&b,
			"<li style=\"margin:8px 0;\"><span style=\"display:inline-block;padding:2px 8px;border-radius:3px;background-color:%s;color:#ffffff;font-size:12px;text-transform:uppercase;\">%s</span> %s</li>\n",
			color, issue.Impact, issue.Description)
	}
	b.WriteString("</ul>\n")
	return b.String()
}

// renderText produces the plain text counterpart of the HTML body
func (a *Assembler) renderText(sections map[string]string, issues []core.Issue) string {
	var parts []string
	for _, name := range sectionOrder {
		text, ok := sections[name]
		if !ok || text == "" {
			continue
		}
		parts = append(parts, text)
		if name == "problem" && len(issues) > 0 {
			var lines []string
			for _, issue := range issues {
				lines = append(lines, fmt.Sprintf("- [%s] %s (fix: %s)",
					strings.ToUpper(string(issue.Impact)), issue.Description, issue.Improvement))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}

// minimalBody is the guaranteed path: greeting, body, CTA and closing built
// from business and contact name only
func (a *Assembler) minimalBody(prospect core.Prospect) (string, string) {
	businessName, _ := a.resolver.Resolve("business_name", prospect)
	contactName, _ := a.resolver.Resolve("contact_first_name", prospect)

	sections := map[string]string{
		"opening": fmt.Sprintf("Hi %s,", contactName),
		"problem": fmt.Sprintf("I had a look at %s online and think there are a few quick wins that could bring in more customers.", businessName),
		"cta":     "Would you be open to a short call to go through them?",
		"closing": "Thanks for your time.",
	}
	return a.renderHTML(sections, prospect.Issues), a.renderText(sections, prospect.Issues)
}
