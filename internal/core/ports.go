package core

import (
	"context"
)

// ContentGenerator is the optional collaborator that drafts a message body.
// Implementations typically wrap an LLM backend and may fail or be cancelled;
// the orchestrator falls back to its deterministic assembler either way.
type ContentGenerator interface {
	// GenerateBody drafts an outreach body for the business, grounded on the
	// extracted issues and addressed to the recipient
	GenerateBody(ctx context.Context, businessName string, issues []Issue, recipientName string) (string, error)
}

// IssueExtractor turns raw assessment data into ranked issues
type IssueExtractor interface {
	Extract(assessment, business map[string]interface{}, maxIssues int) []Issue
}

// SubjectGenerator produces scored subject line candidates
type SubjectGenerator interface {
	Generate(req SubjectRequest) ([]Candidate, error)
}

// BodyAssembler renders a deterministic HTML and plain text body
type BodyAssembler interface {
	Assemble(prospect Prospect) (htmlContent, textContent string)
}

// SpamChecker evaluates content spam risk
type SpamChecker interface {
	Check(subject, content string) *SpamCheckResult
}
