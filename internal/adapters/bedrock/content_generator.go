package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/outreach-personalizer/internal/core"
	"go.uber.org/zap"
)

// BedrockGenerator is an implementation of the ContentGenerator interface
// using Amazon Bedrock
type BedrockGenerator struct {
	client       *bedrockruntime.Client
	modelID      string
	maxTokens    int
	temperature  float32
	topP         float32
	logger       *zap.Logger
	promptFormat string
}

// NewBedrockGenerator creates a new Bedrock content generator
func NewBedrockGenerator(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *BedrockGenerator {
	return &BedrockGenerator{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
		promptFormat: `You write short, friendly business outreach emails.
Write the body of an email to %s at %s about the following website findings:
%s

Keep it under 150 words, plain text, no subject line, no signature.
Focus on how fixing these issues helps their business. End with a low-pressure question.
Respond only with the email body.`,
	}
}

// Name identifies the backend in generation metadata
func (g *BedrockGenerator) Name() string {
	return "bedrock:" + g.modelID
}

func (g *BedrockGenerator) isAnthropicModel() bool {
	return strings.HasPrefix(g.modelID, "anthropic.")
}

// GenerateBody drafts an outreach body for the business
func (g *BedrockGenerator) GenerateBody(ctx context.Context, businessName string, issues []core.Issue, recipientName string) (string, error) {
	prompt := fmt.Sprintf(g.promptFormat, recipientName, businessName, formatIssues(issues))

	var payload []byte
	var err error

	if g.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               fmt.Sprintf("\n\nHuman: %s\n\nAssistant:", prompt),
			"max_tokens_to_sample": g.maxTokens,
			"temperature":          g.temperature,
			"top_p":                g.topP,
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": g.maxTokens,
				"temperature":   g.temperature,
				"topP":          g.topP,
			},
		})
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal Bedrock request: %w", err)
	}

	output, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		ContentType: aws.String("application/json"),
		Body:        payload,
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	body, err := g.extractText(output.Body)
	if err != nil {
		return "", err
	}

	g.logger.Debug("Generated body with Bedrock",
		zap.String("model_id", g.modelID),
		zap.Int("length", len(body)))

	return body, nil
}

// extractText pulls the completion text out of the model-specific response
func (g *BedrockGenerator) extractText(raw []byte) (string, error) {
	if g.isAnthropicModel() {
		var resp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			return "", fmt.Errorf("failed to parse Bedrock response: %w", err)
		}
		if strings.TrimSpace(resp.Completion) == "" {
			return "", fmt.Errorf("empty completion from Bedrock")
		}
		return strings.TrimSpace(resp.Completion), nil
	}

	var resp struct {
		Results []struct {
			OutputText string `json:"outputText"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to parse Bedrock response: %w", err)
	}
	if len(resp.Results) == 0 || strings.TrimSpace(resp.Results[0].OutputText) == "" {
		return "", fmt.Errorf("empty response from Bedrock")
	}
	return strings.TrimSpace(resp.Results[0].OutputText), nil
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
