package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubExtractor struct {
	issues []Issue
}

func (s *stubExtractor) Extract(assessment, business map[string]interface{}, maxIssues int) []Issue {
	if len(s.issues) > maxIssues {
		return s.issues[:maxIssues]
	}
	return s.issues
}

type stubSubjects struct {
	candidates []Candidate
	err        error
	lastReq    SubjectRequest
}

func (s *stubSubjects) Generate(req SubjectRequest) ([]Candidate, error) {
	s.lastReq = req
	return s.candidates, s.err
}

type stubAssembler struct{}

func (s *stubAssembler) Assemble(prospect Prospect) (string, string) {
	name := businessName(prospect.Business)
	text := fmt.Sprintf("Hi %s,\nI had a look at %s and found a few quick wins.\nWould you be open to a short call?",
		contactName(prospect.Contact), name)
	return "<html><body><p>" + name + "</p></body></html>", text
}

type stubSpam struct{}

func (s *stubSpam) Check(subject, content string) *SpamCheckResult {
	return &SpamCheckResult{OverallScore: 12, RiskLevel: RiskLow}
}

type stubGenerator struct {
	body string
	err  error
}

func (s *stubGenerator) GenerateBody(ctx context.Context, businessName string, issues []Issue, recipientName string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.body, nil
}

func (s *stubGenerator) Name() string { return "stub" }

func newTestService(generator ContentGenerator) (*PersonalizationService, *stubSubjects) {
	subjects := &stubSubjects{
		candidates: []Candidate{{
			Text:             "Quick question about Acme",
			GenerationMethod: "template",
		}},
	}
	svc := NewPersonalizationService(
		&stubExtractor{issues: []Issue{
			{Type: "performance", Impact: ImpactHigh, Description: "slow pages"},
		}},
		subjects,
		&stubAssembler{},
		&stubSpam{},
		generator,
		zap.NewNop(),
	)
	return svc, subjects
}

func testPersonalizeRequest() PersonalizeRequest {
	return PersonalizeRequest{
		BusinessID: "biz-42",
		Business:   map[string]interface{}{"name": "Acme LLC"},
		Contact:    map[string]interface{}{"first_name": "Jane"},
		Assessment: map[string]interface{}{"pagespeed": map[string]interface{}{"performance_score": 40.0}},
	}
}

func TestPersonalize_NilGeneratorUsesAssembler(t *testing.T) {
	svc, _ := newTestService(nil)

	result, err := svc.Personalize(context.Background(), testPersonalizeRequest())

	require.NoError(t, err)
	assert.Equal(t, "assembler", result.GenerationMetadata.BodyGenerator)
	assert.Contains(t, result.HTMLContent, "Acme")
	assert.Contains(t, result.TextContent, "Acme")
	assert.Equal(t, "Quick question about Acme", result.SubjectLine)
	assert.Equal(t, "template", result.GenerationMetadata.SubjectMethod)
}

func TestPersonalize_FailingGeneratorStillProducesContent(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{err: errors.New("backend unavailable")})

	result, err := svc.Personalize(context.Background(), testPersonalizeRequest())

	require.NoError(t, err)
	assert.Equal(t, "assembler", result.GenerationMetadata.BodyGenerator)
	assert.NotEmpty(t, result.HTMLContent)
	assert.NotEmpty(t, result.TextContent)
	assert.Contains(t, result.TextContent, "Acme")
}

func TestPersonalize_CancelledContextFallsBack(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{body: "never delivered"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.Personalize(ctx, testPersonalizeRequest())

	require.NoError(t, err)
	assert.Equal(t, "assembler", result.GenerationMetadata.BodyGenerator)
	assert.NotEmpty(t, result.TextContent)
}

func TestPersonalize_WorkingGeneratorIsUsed(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{
		body: "Hi Jane,\n\nYour site could load faster with a few changes.\n\nReply if you want the details.",
	})

	result, err := svc.Personalize(context.Background(), testPersonalizeRequest())

	require.NoError(t, err)
	assert.Equal(t, "stub", result.GenerationMetadata.BodyGenerator)
	assert.Contains(t, result.TextContent, "load faster")
	assert.True(t, strings.HasPrefix(result.HTMLContent, "<!DOCTYPE html>"))
	assert.Contains(t, result.HTMLContent, "<p style=")
}

func TestPersonalize_BlankGeneratorOutputFallsBack(t *testing.T) {
	svc, _ := newTestService(&stubGenerator{body: "   \n  "})

	result, err := svc.Personalize(context.Background(), testPersonalizeRequest())

	require.NoError(t, err)
	assert.Equal(t, "assembler", result.GenerationMetadata.BodyGenerator)
}

func TestPersonalize_NegativeMaxIssuesIsAnError(t *testing.T) {
	svc, _ := newTestService(nil)

	req := testPersonalizeRequest()
	req.MaxIssues = -1

	_, err := svc.Personalize(context.Background(), req)
	assert.Error(t, err)
}

func TestPersonalize_SubjectFallbackOnEmptyCandidates(t *testing.T) {
	svc, subjects := newTestService(nil)
	subjects.candidates = nil

	result, err := svc.Personalize(context.Background(), testPersonalizeRequest())

	require.NoError(t, err)
	assert.Equal(t, "Quick question about Acme LLC", result.SubjectLine)
	assert.Equal(t, "fallback", result.GenerationMetadata.SubjectMethod)
}

func TestPersonalize_SubjectErrorDegradesToFallback(t *testing.T) {
	svc, subjects := newTestService(nil)
	subjects.candidates = nil
	subjects.err = errors.New("catalog broken")

	result, err := svc.Personalize(context.Background(), testPersonalizeRequest())

	require.NoError(t, err)
	assert.Equal(t, "fallback", result.GenerationMetadata.SubjectMethod)
}

func TestPersonalize_RequestsSingleSubjectVariant(t *testing.T) {
	svc, subjects := newTestService(nil)

	req := testPersonalizeRequest()
	req.Tone = "casual"
	_, err := svc.Personalize(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 1, subjects.lastReq.MaxVariants)
	assert.Equal(t, "casual", subjects.lastReq.Tone)
	assert.Len(t, subjects.lastReq.Prospect.Issues, 1)
}

func TestPersonalize_MetadataAndSpamFields(t *testing.T) {
	svc, _ := newTestService(nil)

	result, err := svc.Personalize(context.Background(), testPersonalizeRequest())

	require.NoError(t, err)
	assert.NotEmpty(t, result.GenerationMetadata.ProcessingID)
	assert.False(t, result.GenerationMetadata.GeneratedAt.IsZero())
	assert.GreaterOrEqual(t, result.GenerationMetadata.DurationMs, int64(0))
	assert.Equal(t, 12.0, result.SpamScore)
	assert.Equal(t, RiskLow, result.SpamRiskLevel)
	assert.Equal(t, "biz-42", result.BusinessID)
	assert.Equal(t, "Acme LLC", result.PersonalizationData["business_name"])
	assert.Equal(t, "Jane", result.PersonalizationData["contact_name"])
	assert.Equal(t, 1, result.PersonalizationData["issue_count"])
}

func TestPersonalize_ProcessingIDsAreUnique(t *testing.T) {
	svc, _ := newTestService(nil)

	first, err := svc.Personalize(context.Background(), testPersonalizeRequest())
	require.NoError(t, err)
	second, err := svc.Personalize(context.Background(), testPersonalizeRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.GenerationMetadata.ProcessingID, second.GenerationMetadata.ProcessingID)
}

func TestDerivePreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "skips greeting line",
			text: "Hi Jane,\nI had a look at Acme and found a few quick wins.",
			want: "I had a look at Acme and found a few quick wins.",
		},
		{
			name: "skips short lines",
			text: "Ok.\nThis line is long enough to serve as a preview.",
			want: "This line is long enough to serve as a preview.",
		},
		{
			name: "truncates long lines",
			text: strings.Repeat("word ", 60),
			want: strings.Repeat("word ", 60)[:previewMaxLength-3] + "...",
		},
		{
			name: "falls back when nothing qualifies",
			text: "Hi there,\nBye.",
			want: fallbackPreview,
		},
		{
			name: "empty body",
			text: "",
			want: fallbackPreview,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, derivePreview(tt.text))
		})
	}
}

func TestDerivePreview_TruncatesOnRuneBoundary(t *testing.T) {
	got := derivePreview(strings.Repeat("é", 100))

	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), previewMaxLength)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestComputeQualityMetrics(t *testing.T) {
	body := strings.Repeat("Here are solid notes about your site today. ", 13) + "Reply to schedule a call."
	m := computeQualityMetrics(body, 2)

	assert.Greater(t, m.ContentLengthScore, 0.9)
	assert.InDelta(t, 0.6, m.PersonalizationScore, 0.001)
	assert.Greater(t, m.ReadabilityScore, 0.5)
	assert.InDelta(t, 0.75, m.CTAScore, 0.001)
	assert.InDelta(t, (m.ContentLengthScore+m.PersonalizationScore+m.ReadabilityScore+m.CTAScore)/4, m.OverallScore, 0.0001)
}

func TestComputeQualityMetrics_EmptyBody(t *testing.T) {
	m := computeQualityMetrics("", 0)

	assert.Equal(t, 0.0, m.PersonalizationScore)
	assert.Equal(t, 0.0, m.ReadabilityScore)
	assert.Equal(t, 0.0, m.CTAScore)
	assert.LessOrEqual(t, m.OverallScore, 0.25)
}

func TestContactName(t *testing.T) {
	assert.Equal(t, "Jane", contactName(map[string]interface{}{"first_name": "Jane"}))
	assert.Equal(t, "John", contactName(map[string]interface{}{"name": "John Smith"}))
	assert.Equal(t, "there", contactName(map[string]interface{}{"first_name": "  "}))
	assert.Equal(t, "there", contactName(nil))
}

func TestBusinessName(t *testing.T) {
	assert.Equal(t, "Acme LLC", businessName(map[string]interface{}{"name": "Acme LLC"}))
	assert.Equal(t, "your business", businessName(map[string]interface{}{"name": 42}))
	assert.Equal(t, "your business", businessName(nil))
}
