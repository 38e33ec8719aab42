package issues

import (
	"fmt"
	"sort"

	"github.com/mikey/outreach-personalizer/internal/core"
	"go.uber.org/zap"
)

// issueText is the canned copy attached to each known issue type
type issueText struct {
	description string
	effort      string
	improvement string
}

var issueCatalog = map[string]issueText{
	"performance": {
		description: "Website loads slowly, which frustrates visitors and hurts search rankings",
		effort:      "medium",
		improvement: "Optimize images, enable caching and reduce render-blocking scripts",
	},
	"seo": {
		description: "Search engine visibility is below par, so potential customers can't find the site",
		effort:      "medium",
		improvement: "Fix meta tags, improve heading structure and add descriptive alt text",
	},
	"accessibility": {
		description: "Accessibility gaps exclude visitors and expose the business to compliance risk",
		effort:      "low",
		improvement: "Add labels to form fields, improve color contrast and keyboard navigation",
	},
	"largest_contentful_paint": {
		description: "The main content takes too long to appear on screen",
		effort:      "medium",
		improvement: "Compress hero images and prioritize above-the-fold resources",
	},
	"cumulative_layout_shift": {
		description: "Page elements jump around while loading, making the site feel unstable",
		effort:      "low",
		improvement: "Reserve space for images and ads so the layout stays put",
	},
	"first_input_delay": {
		description: "The page is slow to respond to the first click or tap",
		effort:      "medium",
		improvement: "Split long JavaScript tasks and defer non-essential scripts",
	},
	"outdated_technology": {
		description: "The site runs on outdated technology that is harder to maintain and secure",
		effort:      "high",
		improvement: "Plan an upgrade to supported framework and platform versions",
	},
	"security": {
		description: "Known vulnerabilities were detected in the site's technology stack",
		effort:      "high",
		improvement: "Patch or upgrade the affected components and enable HTTPS everywhere",
	},
	"mobile_friendliness": {
		description: "The site is hard to use on phones, where most visitors browse",
		effort:      "medium",
		improvement: "Adopt a responsive layout and enlarge tap targets",
	},
	"missing_ssl": {
		description: "The site is served without HTTPS, which browsers flag as not secure",
		effort:      "low",
		improvement: "Install a TLS certificate and redirect all traffic to HTTPS",
	},
	"broken_links": {
		description: "Broken links send visitors to dead ends and waste crawl budget",
		effort:      "low",
		improvement: "Audit internal links and fix or redirect the broken ones",
	},
}

// freeformAliases maps names that appear in freeform assessment issue lists
// onto catalog issue types. Unknown names are dropped.
var freeformAliases = map[string]string{
	"slow_loading":        "performance",
	"poor_performance":    "performance",
	"bad_seo":             "seo",
	"low_seo_score":       "seo",
	"accessibility":       "accessibility",
	"a11y":                "accessibility",
	"not_mobile_friendly": "mobile_friendliness",
	"mobile_issues":       "mobile_friendliness",
	"no_ssl":              "missing_ssl",
	"missing_https":       "missing_ssl",
	"broken_links":        "broken_links",
	"dead_links":          "broken_links",
	"outdated_tech":       "outdated_technology",
	"old_software":        "outdated_technology",
	"security_issues":     "security",
}

// Extractor derives ranked issues from raw assessment data. It is stateless
// apart from its logger and safe for concurrent use.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new issue extractor
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract applies the fixed threshold rules to each known assessment section
// and returns issues ranked by (impact desc, score desc), truncated to
// maxIssues. Missing or malformed sections contribute nothing; they are
// never an error.
func (e *Extractor) Extract(assessment, business map[string]interface{}, maxIssues int) []core.Issue {
	var found []core.Issue

	if assessment != nil {
		found = append(found, e.fromPagespeed(assessment)...)
		found = append(found, e.fromWebVitals(assessment)...)
		found = append(found, e.fromTechStack(assessment)...)
		found = append(found, e.fromFreeform(assessment)...)
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Impact.Rank() != found[j].Impact.Rank() {
			return found[i].Impact.Rank() > found[j].Impact.Rank()
		}
		return found[i].Score > found[j].Score
	})

	if maxIssues >= 0 && len(found) > maxIssues {
		found = found[:maxIssues]
	}

	e.logger.Debug("Extracted issues",
		zap.Int("count", len(found)),
		zap.Int("max_issues", maxIssues))

	return found
}

// fromPagespeed applies the score/100 < 0.7 rule to the pagespeed section
func (e *Extractor) fromPagespeed(assessment map[string]interface{}) []core.Issue {
	section, ok := asMap(assessment["pagespeed"])
	if !ok {
		return nil
	}

	metrics := []struct {
		key       string
		issueType string
	}{
		{"performance_score", "performance"},
		{"seo_score", "seo"},
		{"accessibility_score", "accessibility"},
	}

	var out []core.Issue
	for _, m := range metrics {
		score, ok := asFloat(section[m.key])
		if !ok {
			continue
		}
		normalized := score / 100
		if normalized >= 0.7 {
			continue
		}
		impact := core.ImpactMedium
		if normalized < 0.5 {
			impact = core.ImpactHigh
		}
		out = append(out, e.newIssue(m.issueType, impact, 1-normalized, map[string]interface{}{
			m.key: score,
		}))
	}
	return out
}

// fromWebVitals checks the core web vitals sub-scores against their
// standard thresholds (LCP 2.5s, CLS 0.1, FID 100ms)
func (e *Extractor) fromWebVitals(assessment map[string]interface{}) []core.Issue {
	section, ok := asMap(assessment["core_web_vitals"])
	if !ok {
		return nil
	}

	vitals := []struct {
		key       string
		issueType string
		threshold float64
	}{
		{"lcp", "largest_contentful_paint", 2.5},
		{"cls", "cumulative_layout_shift", 0.1},
		{"fid", "first_input_delay", 100},
	}

	var out []core.Issue
	for _, v := range vitals {
		value, ok := asFloat(section[v.key])
		if !ok || value <= v.threshold {
			continue
		}
		// Scale the overshoot into [0,1]; twice the threshold scores 1.0
		score := (value - v.threshold) / v.threshold
		if score > 1 {
			score = 1
		}
		out = append(out, e.newIssue(v.issueType, core.ImpactMedium, score, map[string]interface{}{
			v.key: value,
		}))
	}
	return out
}

// fromTechStack flags outdated technology and known vulnerabilities
func (e *Extractor) fromTechStack(assessment map[string]interface{}) []core.Issue {
	section, ok := asMap(assessment["tech_stack"])
	if !ok {
		return nil
	}

	var out []core.Issue
	if outdated, ok := section["outdated"].(bool); ok && outdated {
		out = append(out, e.newIssue("outdated_technology", core.ImpactMedium, 0.6, nil))
	}
	if vulns, ok := section["vulnerabilities"].([]interface{}); ok && len(vulns) > 0 {
		out = append(out, e.newIssue("security", core.ImpactHigh, 0.9, map[string]interface{}{
			"vulnerability_count": len(vulns),
		}))
	}
	return out
}

// fromFreeform maps the freeform issue name list through the alias table.
// Names with no alias are dropped silently.
func (e *Extractor) fromFreeform(assessment map[string]interface{}) []core.Issue {
	raw, ok := assessment["issues"].([]interface{})
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var out []core.Issue
	for _, item := range raw {
		name, ok := item.(string)
		if !ok {
			continue
		}
		issueType, ok := freeformAliases[name]
		if !ok {
			e.logger.Debug("Dropping unknown freeform issue", zap.String("name", name))
			continue
		}
		if seen[issueType] {
			continue
		}
		seen[issueType] = true
		out = append(out, e.newIssue(issueType, core.ImpactLow, 0.4, map[string]interface{}{
			"reported_as": name,
		}))
	}
	return out
}

func (e *Extractor) newIssue(issueType string, impact core.Impact, score float64, details map[string]interface{}) core.Issue {
	text, ok := issueCatalog[issueType]
	if !ok {
		text = issueText{
			description: fmt.Sprintf("Improvement opportunity detected: %s", issueType),
			effort:      "medium",
			improvement: "Review the affected area with a specialist",
		}
	}
	return core.Issue{
		Type:        issueType,
		Description: text.description,
		Impact:      impact,
		Effort:      text.effort,
		Improvement: text.improvement,
		Score:       score,
		Details:     details,
	}
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
