package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikey/outreach-personalizer/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIGenerator is an implementation of the ContentGenerator interface
// using OpenAI
type OpenAIGenerator struct {
	client       *openai.Client
	modelName    string
	maxTokens    int
	temperature  float32
	topP         float32
	logger       *zap.Logger
	promptFormat string
}

// NewOpenAIGenerator creates a new OpenAI content generator
func NewOpenAIGenerator(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *OpenAIGenerator {
	return &OpenAIGenerator{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
		promptFormat: `You write short, friendly business outreach emails.
Write the body of an email to %s at %s about the following website findings:
%s

Keep it under 150 words, plain text, no subject line, no signature.
Focus on how fixing these issues helps their business. End with a low-pressure question.`,
	}
}

// Name identifies the backend in generation metadata
func (g *OpenAIGenerator) Name() string {
	return "openai:" + g.modelName
}

// GenerateBody drafts an outreach body for the business
func (g *OpenAIGenerator) GenerateBody(ctx context.Context, businessName string, issues []core.Issue, recipientName string) (string, error) {
	prompt := fmt.Sprintf(g.promptFormat, recipientName, businessName, formatIssues(issues))

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write concise, honest outreach emails. Respond only with the email body.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		TopP:        g.topP,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	body := strings.TrimSpace(resp.Choices[0].Message.Content)
	g.logger.Debug("Generated body with OpenAI",
		zap.String("model", g.modelName),
		zap.Int("length", len(body)))

	return body, nil
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
