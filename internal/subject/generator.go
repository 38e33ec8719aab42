package subject

import (
	"fmt"
	"strings"

	"github.com/mikey/outreach-personalizer/internal/catalog"
	"github.com/mikey/outreach-personalizer/internal/config"
	"github.com/mikey/outreach-personalizer/internal/core"
	"github.com/mikey/outreach-personalizer/internal/utils"
	"go.uber.org/zap"
)

// Generation strategies
const (
	StrategyTemplate    = "template"
	StrategyABTest      = "ab_test"
	StrategyPerformance = "performance"
	StrategyIndustry    = "industry"
)

// Quality gate limits. Candidates failing any of these are dropped, not
// surfaced as errors.
const (
	minQualityScore  = 0.3
	maxLocalRisk     = 0.7
	truncateKeepFrac = 0.7
)

// Generator produces scored subject line candidates from the template
// catalog. It is stateless per request and safe for concurrent use.
type Generator struct {
	catalog  *catalog.Catalog
	resolver *catalog.Resolver
	text     *utils.TextProcessor
	cfg      config.GeneratorConfig
	logger   *zap.Logger
}

// NewGenerator creates a new subject line generator
func NewGenerator(
	cat *catalog.Catalog,
	resolver *catalog.Resolver,
	text *utils.TextProcessor,
	cfg config.GeneratorConfig,
	logger *zap.Logger,
) *Generator {
	return &Generator{
		catalog:  cat,
		resolver: resolver,
		text:     text,
		cfg:      cfg,
		logger:   logger,
	}
}

// Generate runs the requested strategy and returns 0..MaxVariants accepted
// candidates. A malformed request (negative MaxVariants, unknown strategy)
// is a caller bug and returns an error; an empty result is not an error.
func (g *Generator) Generate(req core.SubjectRequest) ([]core.Candidate, error) {
	if req.MaxVariants < 0 {
		return nil, fmt.Errorf("max variants must not be negative, got %d", req.MaxVariants)
	}
	if req.MaxVariants == 0 {
		req.MaxVariants = g.cfg.MaxVariants
	}
	if req.Tone == "" {
		req.Tone = g.cfg.DefaultTone
	}

	var candidates []core.Candidate
	switch req.Strategy {
	case "", StrategyTemplate:
		candidates = g.fromTemplates(req, g.templatesForTone(req.Tone), "", StrategyTemplate)
	case StrategyABTest:
		candidates = g.abTestVariants(req)
	case StrategyPerformance:
		candidates = g.performanceVariants(req)
	case StrategyIndustry:
		candidates = g.industryVariants(req)
	default:
		return nil, fmt.Errorf("unknown generation strategy: %q", req.Strategy)
	}

	g.logger.Debug("Generated subject line candidates",
		zap.String("strategy", req.Strategy),
		zap.Int("accepted", len(candidates)),
		zap.Int("max_variants", req.MaxVariants))

	return candidates, nil
}

// templatesForTone returns the catalog templates for a tone, falling back to
// the professional category so an unknown tone still generates.
func (g *Generator) templatesForTone(tone string) []catalog.Template {
	templates := g.catalog.Templates(catalog.ContentTypeSubjectLine, tone)
	if len(templates) == 0 {
		templates = g.catalog.Templates(catalog.ContentTypeSubjectLine, "professional")
	}
	return templates
}

// fromTemplates is the core generation pipeline: substitute tokens, enforce
// length, score, gate. It stops once req.MaxVariants candidates pass.
func (g *Generator) fromTemplates(req core.SubjectRequest, templates []catalog.Template, variantPrefix, method string) []core.Candidate {
	var accepted []core.Candidate
	for _, tmpl := range templates {
		if len(accepted) >= req.MaxVariants {
			break
		}

		rendered, resolved, failed := g.resolver.Substitute(tmpl.Pattern, req.Prospect)
		rendered = g.text.CollapseWhitespace(rendered)

		cand, ok := g.buildCandidate(rendered, tmpl, req, resolved, failed, variantPrefix, method)
		if !ok {
			continue
		}
		accepted = append(accepted, cand)
	}
	return accepted
}

// buildCandidate enforces the effective length cap, scores the rendered
// text and applies the quality gate. The bool result reports acceptance.
func (g *Generator) buildCandidate(
	rendered string,
	tmpl catalog.Template,
	req core.SubjectRequest,
	resolved map[string]string,
	failed []string,
	variantPrefix, method string,
) (core.Candidate, bool) {
	effectiveMax := tmpl.MaxLength
	if effectiveMax <= 0 || effectiveMax > g.cfg.MaxLength {
		effectiveMax = g.cfg.MaxLength
	}
	// A request target only ever tightens the cap
	if req.TargetLength > 0 && req.TargetLength < effectiveMax {
		effectiveMax = req.TargetLength
	}

	if len(rendered) > effectiveMax {
		rendered = g.text.TruncateAtWordBoundary(rendered, effectiveMax, truncateKeepFrac)
	}
	if len(rendered) > effectiveMax {
		// Word boundary cut could not satisfy the cap
		return core.Candidate{}, false
	}
	if strings.ContainsAny(rendered, "{}") {
		return core.Candidate{}, false
	}

	personalization := personalizationScore(tmpl.RequiredTokens, resolved)
	localRisk := localSpamRisk(rendered)
	quality := qualityScore(rendered, personalization, localRisk)

	if len(rendered) < g.cfg.MinLength || quality < minQualityScore || localRisk > maxLocalRisk {
		g.logger.Debug("Rejected subject candidate",
			zap.String("template", tmpl.Name),
			zap.Int("length", len(rendered)),
			zap.Float64("quality", quality),
			zap.Float64("local_risk", localRisk))
		return core.Candidate{}, false
	}

	variantName := tmpl.Name
	if variantPrefix != "" {
		variantName = variantPrefix + "_" + tmpl.Name
	}

	return core.Candidate{
		Text:                 rendered,
		VariantName:          variantName,
		PatternUsed:          tmpl.Pattern,
		TokensResolved:       resolved,
		TokensFailed:         failed,
		Length:               len(rendered),
		Tone:                 tmpl.Tone,
		QualityScore:         quality,
		PersonalizationScore: personalization,
		SpamRiskScore:        localRisk,
		GenerationMethod:     method,
	}, true
}
