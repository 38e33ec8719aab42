package core

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultMaxIssues   = 3
	previewMinLength   = 20
	previewMaxLength   = 150
	targetBodyLength   = 600
	fallbackPreview    = "A few ideas to help your business grow online"
	fallbackBodyMethod = "assembler"
)

// ctaKeywords feed the quality metric bonus for a clear call to action
var ctaKeywords = []string{"call", "reply", "schedule", "book", "chat", "let me know", "interested"}

// greetingPrefixes are skipped when deriving preview text
var greetingPrefixes = []string{"hi", "hello", "hey", "dear", "greetings"}

// PersonalizationService sequences issue extraction, subject generation,
// body generation and spam checking into one PersonalizedContent result.
// The content generator is optional; every other collaborator is required.
type PersonalizationService struct {
	issues    IssueExtractor
	subjects  SubjectGenerator
	assembler BodyAssembler
	spam      SpamChecker
	generator ContentGenerator
	logger    *zap.Logger
}

// NewPersonalizationService creates a new personalization service. The
// generator may be nil, in which case the deterministic assembler is always
// used for the body.
func NewPersonalizationService(
	issues IssueExtractor,
	subjects SubjectGenerator,
	assembler BodyAssembler,
	spam SpamChecker,
	generator ContentGenerator,
	logger *zap.Logger,
) *PersonalizationService {
	return &PersonalizationService{
		issues:    issues,
		subjects:  subjects,
		assembler: assembler,
		spam:      spam,
		generator: generator,
		logger:    logger,
	}
}

// Personalize runs the full pipeline. It always terminates with a usable
// result: collaborator failures and cancellations degrade to deterministic
// fallbacks. Only a malformed request is an error.
func (s *PersonalizationService) Personalize(ctx context.Context, req PersonalizeRequest) (*PersonalizedContent, error) {
	if req.MaxIssues < 0 {
		return nil, fmt.Errorf("max issues must not be negative, got %d", req.MaxIssues)
	}

	start := time.Now()
	maxIssues := req.MaxIssues
	if maxIssues == 0 {
		maxIssues = defaultMaxIssues
	}

	issues := s.issues.Extract(req.Assessment, req.Business, maxIssues)
	prospect := Prospect{
		Business: req.Business,
		Contact:  req.Contact,
		Issues:   issues,
	}

	subjectLine, subjectMethod := s.generateSubject(prospect, req.Tone)
	htmlContent, textContent, bodyMethod := s.generateBody(ctx, prospect)
	previewText := derivePreview(textContent)
	spamResult := s.spam.Check(subjectLine, htmlContent)

	result := &PersonalizedContent{
		BusinessID:      req.BusinessID,
		SubjectLine:     subjectLine,
		HTMLContent:     htmlContent,
		TextContent:     textContent,
		PreviewText:     previewText,
		ExtractedIssues: issues,
		PersonalizationData: map[string]interface{}{
			"business_name": businessName(req.Business),
			"contact_name":  contactName(req.Contact),
			"issue_count":   len(issues),
		},
		SpamScore:      spamResult.OverallScore,
		SpamRiskLevel:  spamResult.RiskLevel,
		QualityMetrics: computeQualityMetrics(textContent, len(issues)),
		GenerationMetadata: GenerationMetadata{
			ProcessingID:  uuid.NewString(),
			GeneratedAt:   start,
			SubjectMethod: subjectMethod,
			BodyGenerator: bodyMethod,
			DurationMs:    time.Since(start).Milliseconds(),
		},
	}

	s.logger.Info("Personalization complete",
		zap.String("business_id", req.BusinessID),
		zap.String("processing_id", result.GenerationMetadata.ProcessingID),
		zap.Int("issues", len(issues)),
		zap.Float64("spam_score", result.SpamScore),
		zap.String("body_generator", bodyMethod))

	return result, nil
}

// generateSubject asks the generator for exactly one candidate and falls
// back to the fixed question pattern when none survive the quality gate
func (s *PersonalizationService) generateSubject(prospect Prospect, tone string) (string, string) {
	candidates, err := s.subjects.Generate(SubjectRequest{
		Prospect:    prospect,
		Tone:        tone,
		MaxVariants: 1,
	})
	if err != nil {
		s.logger.Warn("Subject generation failed, using fallback", zap.Error(err))
	}
	if len(candidates) > 0 {
		return candidates[0].Text, candidates[0].GenerationMethod
	}
	return fmt.Sprintf("Quick question about %s", businessName(prospect.Business)), "fallback"
}

// generateBody tries the optional collaborator first. Any failure or
// cancellation is recovered locally with the deterministic assembler.
func (s *PersonalizationService) generateBody(ctx context.Context, prospect Prospect) (string, string, string) {
	if s.generator != nil {
		body, err := s.generator.GenerateBody(ctx, businessName(prospect.Business), prospect.Issues, contactName(prospect.Contact))
		if err != nil {
			s.logger.Warn("Content generator failed, falling back to assembler", zap.Error(err))
		} else if strings.TrimSpace(body) != "" {
			return textToHTML(body), body, generatorName(s.generator)
		}
	}

	html, text := s.assembler.Assemble(prospect)
	return html, text, fallbackBodyMethod
}

// generatorName lets adapters report which backend produced the body
func generatorName(g ContentGenerator) string {
	if named, ok := g.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "collaborator"
}

// textToHTML wraps collaborator plain text into the standard HTML scaffold
func textToHTML(text string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f4f4;font-family:Arial,Helvetica,sans-serif;">
<div style="max-width:600px;margin:0 auto;padding:24px;background-color:#ffffff;color:#333333;font-size:15px;line-height:1.6;">
`)
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p style=\"margin:16px 0;\">")
		b.WriteString(strings.ReplaceAll(para, "\n", "<br>"))
		b.WriteString("</p>\n")
	}
	b.WriteString(`</div>
</body>
</html>`)
	return b.String()
}

// derivePreview picks the first substantial non-greeting line of the body
func derivePreview(textContent string) string {
	for _, line := range strings.Split(textContent, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < previewMinLength || isGreeting(line) {
			continue
		}
		if len(line) > previewMaxLength {
			cut := previewMaxLength - 3
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			return line[:cut] + "..."
		}
		return line
	}
	return fallbackPreview
}

func isGreeting(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range greetingPrefixes {
		if strings.HasPrefix(lower, prefix+" ") || strings.HasPrefix(lower, prefix+",") {
			return true
		}
	}
	return false
}

// computeQualityMetrics scores the generated text against the target shape
func computeQualityMetrics(textContent string, issueCount int) QualityMetrics {
	lengthScore := 1 - absFloat(float64(len(textContent))-targetBodyLength)/targetBodyLength
	if lengthScore < 0 {
		lengthScore = 0
	}

	personalization := float64(issueCount) * 0.3
	if personalization > 1 {
		personalization = 1
	}

	readability := 0.0
	if words := strings.Fields(textContent); len(words) > 0 {
		total := 0
		for _, w := range words {
			total += len(w)
		}
		avg := float64(total) / float64(len(words))
		readability = 1 - absFloat(avg-5)/5
		if readability < 0 {
			readability = 0
		}
	}

	cta := 0.0
	lower := strings.ToLower(textContent)
	for _, kw := range ctaKeywords {
		if strings.Contains(lower, kw) {
			cta += 0.25
		}
	}
	if cta > 1 {
		cta = 1
	}

	return QualityMetrics{
		ContentLengthScore:   lengthScore,
		PersonalizationScore: personalization,
		ReadabilityScore:     readability,
		CTAScore:             cta,
		OverallScore:         (lengthScore + personalization + readability + cta) / 4,
	}
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// businessName extracts the display name with a safe default
func businessName(business map[string]interface{}) string {
	if business != nil {
		if name, ok := business["name"].(string); ok && strings.TrimSpace(name) != "" {
			return strings.TrimSpace(name)
		}
	}
	return "your business"
}

// contactName extracts the recipient's first name with a safe default
func contactName(contact map[string]interface{}) string {
	if contact == nil {
		return "there"
	}
	if first, ok := contact["first_name"].(string); ok && strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if full, ok := contact["name"].(string); ok {
		if fields := strings.Fields(full); len(fields) > 0 {
			return fields[0]
		}
	}
	return "there"
}
