package subject

import (
	"strings"

	"github.com/mikey/outreach-personalizer/internal/catalog"
	"github.com/mikey/outreach-personalizer/internal/core"
)

// abAxis mutates the base request along one independent dimension
type abAxis struct {
	prefix string
	mutate func(core.SubjectRequest) core.SubjectRequest
	filter func(catalog.Template) bool
}

// abAxes interleaves the three axes so a small variant budget still spans
// more than one axis
var abAxes = []abAxis{
	{prefix: "length_short", mutate: withTargetLength(30)},
	{prefix: "tone_formal", mutate: withTone("formal")},
	{prefix: "personalization_high", mutate: identity, filter: requiresTokens(2)},
	{prefix: "length_medium", mutate: withTargetLength(45)},
	{prefix: "tone_casual", mutate: withTone("casual")},
	{prefix: "personalization_low", mutate: identity, filter: requiresAtMostTokens(1)},
	{prefix: "length_long", mutate: withTargetLength(60)},
	{prefix: "tone_urgent", mutate: withTone("urgent")},
}

func identity(req core.SubjectRequest) core.SubjectRequest { return req }

func withTargetLength(target int) func(core.SubjectRequest) core.SubjectRequest {
	return func(req core.SubjectRequest) core.SubjectRequest {
		if req.TargetLength == 0 || target < req.TargetLength {
			req.TargetLength = target
		}
		return req
	}
}

func withTone(tone string) func(core.SubjectRequest) core.SubjectRequest {
	return func(req core.SubjectRequest) core.SubjectRequest {
		req.Tone = tone
		return req
	}
}

func requiresTokens(min int) func(catalog.Template) bool {
	return func(t catalog.Template) bool { return len(t.RequiredTokens) >= min }
}

func requiresAtMostTokens(max int) func(catalog.Template) bool {
	return func(t catalog.Template) bool { return len(t.RequiredTokens) <= max }
}

// abTestVariants synthesizes one candidate per axis value until the variant
// budget is spent
func (g *Generator) abTestVariants(req core.SubjectRequest) []core.Candidate {
	var out []core.Candidate
	for _, axis := range abAxes {
		if len(out) >= req.MaxVariants {
			break
		}

		sub := axis.mutate(req)
		sub.MaxVariants = 1

		templates := g.templatesForTone(sub.Tone)
		if axis.filter != nil {
			var filtered []catalog.Template
			for _, t := range templates {
				if axis.filter(t) {
					filtered = append(filtered, t)
				}
			}
			templates = filtered
		}

		out = append(out, g.fromTemplates(sub, templates, axis.prefix, StrategyABTest)...)
	}
	return out
}

// performancePattern is one historically high-performing subject pattern
type performancePattern struct {
	name           string
	pattern        string
	requiredTokens []string
	openRate       float64
}

// performancePatterns is ranked by historical open rate, best first
var performancePatterns = []performancePattern{
	{"perf_quick_question", "Quick question about {business_name}", []string{"business_name"}, 0.42},
	{"perf_first_name", "{contact_first_name}, quick question about your website", []string{"contact_first_name"}, 0.38},
	{"perf_ideas", "A few ideas for {business_name}", []string{"business_name"}, 0.35},
	{"perf_feedback", "Some feedback on the {business_name} website", []string{"business_name"}, 0.31},
	{"perf_industry", "Helping {industry} businesses win more customers", []string{"industry"}, 0.28},
}

// performanceVariants draws from the static ranked pattern table, generating
// through the normal pipeline and boosting quality by historical open rate
func (g *Generator) performanceVariants(req core.SubjectRequest) []core.Candidate {
	var out []core.Candidate
	for _, p := range performancePatterns {
		if len(out) >= req.MaxVariants {
			break
		}

		tmpl := catalog.Template{
			Name:           p.name,
			ContentType:    catalog.ContentTypeSubjectLine,
			Category:       "performance",
			Pattern:        p.pattern,
			RequiredTokens: p.requiredTokens,
			Tone:           req.Tone,
		}

		rendered, resolved, failed := g.resolver.Substitute(tmpl.Pattern, req.Prospect)
		rendered = g.text.CollapseWhitespace(rendered)

		cand, ok := g.buildCandidate(rendered, tmpl, req, resolved, failed, "", StrategyPerformance)
		if !ok {
			continue
		}

		cand.QualityScore += p.openRate * 0.3
		if cand.QualityScore > 1.0 {
			cand.QualityScore = 1.0
		}
		out = append(out, cand)
	}
	return out
}

// Industry buckets detected by keyword substring matching
const (
	industryRestaurant   = "restaurant"
	industryMedical      = "medical"
	industryRetail       = "retail"
	industryProfessional = "professional_services"
	industryGeneral      = "general"
)

var industryKeywords = []struct {
	bucket   string
	keywords []string
}{
	{industryRestaurant, []string{"restaurant", "cafe", "diner", "pizza", "food", "bakery", "bistro", "bar", "grill"}},
	{industryMedical, []string{"medical", "dental", "dentist", "clinic", "doctor", "health", "chiro", "veterinar"}},
	{industryRetail, []string{"retail", "shop", "store", "boutique", "ecommerce", "e-commerce", "market"}},
	{industryProfessional, []string{"law", "legal", "account", "consult", "agency", "insurance", "real estate", "realty", "finance"}},
}

// termSwap rewrites an industry-unsafe term into the preferred one
type termSwap struct {
	avoid  string
	prefer string
}

var industryTermSwaps = map[string][]termSwap{
	industryRestaurant: {
		{"customers", "diners"},
		{"clients", "guests"},
		{"sales", "covers"},
	},
	industryMedical: {
		{"customers", "patients"},
		{"clients", "patients"},
		{"sales", "appointments"},
		{"deal", "care plan"},
	},
	industryRetail: {
		{"clients", "shoppers"},
		{"patients", "customers"},
	},
	industryProfessional: {
		{"customers", "clients"},
		{"shoppers", "clients"},
	},
}

// DetectIndustry maps a business to an industry bucket by substring
// matching over its stated industry and name. Unmatched businesses are
// bucketed as general.
func DetectIndustry(business map[string]interface{}) string {
	var haystack strings.Builder
	if business != nil {
		if industry, ok := business["industry"].(string); ok {
			haystack.WriteString(strings.ToLower(industry))
			haystack.WriteString(" ")
		}
		if name, ok := business["name"].(string); ok {
			haystack.WriteString(strings.ToLower(name))
		}
	}
	text := haystack.String()

	for _, entry := range industryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.bucket
			}
		}
	}
	return industryGeneral
}

// industryVariants rewrites industry-unsafe terms through the bucket's
// avoid/prefer table before the length cap and quality gate, so a swap that
// lengthens the text still goes through truncation and rejection
func (g *Generator) industryVariants(req core.SubjectRequest) []core.Candidate {
	bucket := DetectIndustry(req.Prospect.Business)
	swaps := industryTermSwaps[bucket]

	var out []core.Candidate
	for _, tmpl := range g.templatesForTone(req.Tone) {
		if len(out) >= req.MaxVariants {
			break
		}

		rendered, resolved, failed := g.resolver.Substitute(tmpl.Pattern, req.Prospect)
		rendered = g.text.CollapseWhitespace(rendered)
		for _, swap := range swaps {
			rendered = replaceFold(rendered, swap.avoid, swap.prefer)
		}

		cand, ok := g.buildCandidate(rendered, tmpl, req, resolved, failed, "", StrategyIndustry)
		if !ok {
			continue
		}
		out = append(out, cand)
	}
	return out
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
