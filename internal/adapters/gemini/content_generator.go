package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/outreach-personalizer/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiGenerator is an implementation of the ContentGenerator interface
// using Google Gemini
type GeminiGenerator struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	modelName    string
	logger       *zap.Logger
	promptFormat string
}

// NewGeminiGenerator creates a new Gemini content generator
func NewGeminiGenerator(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) (*GeminiGenerator, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiGenerator{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
		promptFormat: `You write short, friendly business outreach emails.
Write the body of an email to %s at %s about the following website findings:
%s

Keep it under 150 words, plain text, no subject line, no signature.
Focus on how fixing these issues helps their business. End with a low-pressure question.
Respond only with the email body.`,
	}, nil
}

// Name identifies the backend in generation metadata
func (g *GeminiGenerator) Name() string {
	return "gemini:" + g.modelName
}

// GenerateBody drafts an outreach body for the business
func (g *GeminiGenerator) GenerateBody(ctx context.Context, businessName string, issues []core.Issue, recipientName string) (string, error) {
	prompt := fmt.Sprintf(g.promptFormat, recipientName, businessName, formatIssues(issues))

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	body := strings.TrimSpace(b.String())
	if body == "" {
		return "", fmt.Errorf("no text parts in Gemini response")
	}

	g.logger.Debug("Generated body with Gemini",
		zap.String("model", g.modelName),
		zap.Int("length", len(body)))

	return body, nil
}

// Close releases the underlying client
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// formatIssues renders the extracted issues for the prompt
func formatIssues(issues []core.Issue) string {
	if len(issues) == 0 {
		return "- general website improvement opportunities"
	}
	var b strings.Builder
	for _, issue := range issues {
		fmt.Fprintf(&b, "- %s (%s impact): %s\n", issue.Type, issue.Impact, issue.Description)
	}
	return b.String()
}
