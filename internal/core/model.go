package core

import (
	"time"
)

// Impact classifies how severe an extracted issue is
type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

// Rank returns a sortable weight for the impact (higher is more severe)
func (i Impact) Rank() int {
	switch i {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	default:
		return 0
	}
}

// Issue is a structured deficiency derived from assessment data
type Issue struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Impact      Impact                 `json:"impact"`
	Effort      string                 `json:"effort"`
	Improvement string                 `json:"improvement"`
	Score       float64                `json:"score"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// Prospect bundles the raw business and contact data a message is
// personalized against, plus any issues already extracted for it.
// The maps are schema-free; missing sections are valid input.
type Prospect struct {
	Business map[string]interface{} `json:"business"`
	Contact  map[string]interface{} `json:"contact"`
	Issues   []Issue                `json:"issues,omitempty"`
}

// Candidate is one fully rendered, scored subject line or content variant
type Candidate struct {
	Text                 string            `json:"text"`
	VariantName          string            `json:"variant_name"`
	PatternUsed          string            `json:"pattern_used"`
	TokensResolved       map[string]string `json:"tokens_resolved,omitempty"`
	TokensFailed         []string          `json:"tokens_failed,omitempty"`
	Length               int               `json:"length"`
	Tone                 string            `json:"tone"`
	QualityScore         float64           `json:"quality_score"`
	PersonalizationScore float64           `json:"personalization_score"`
	SpamRiskScore        float64           `json:"spam_risk_score"`
	GenerationMethod     string            `json:"generation_method"`
}

// SubjectRequest describes one subject line generation run
type SubjectRequest struct {
	Prospect     Prospect `json:"prospect"`
	Strategy     string   `json:"strategy,omitempty"`
	Tone         string   `json:"tone,omitempty"`
	TargetLength int      `json:"target_length,omitempty"`
	MaxVariants  int      `json:"max_variants,omitempty"`
}

// RiskLevel is the four-way classification of an aggregate spam score
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevelForScore maps an overall spam score to its risk level using the
// fixed 25/50/75 thresholds
func RiskLevelForScore(score float64) RiskLevel {
	switch {
	case score < 25:
		return RiskLow
	case score < 50:
		return RiskMedium
	case score < 75:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// TriggeredRule records a single spam rule that fired during a check
type TriggeredRule struct {
	RuleID      string  `json:"rule_id"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
	Matches     int     `json:"matches"`
}

// SpamCheckResult is the outcome of one spam risk evaluation
type SpamCheckResult struct {
	OverallScore   float64                `json:"overall_score"`
	RiskLevel      RiskLevel              `json:"risk_level"`
	TriggeredRules []TriggeredRule        `json:"triggered_rules,omitempty"`
	CategoryScores map[string]float64     `json:"category_scores,omitempty"`
	Suggestions    []string               `json:"suggestions,omitempty"`
	Details        map[string]interface{} `json:"details,omitempty"`
	CheckedAt      time.Time              `json:"checked_at"`
}

// QualityMetrics summarizes how well generated content fits the target shape
type QualityMetrics struct {
	ContentLengthScore   float64 `json:"content_length_score"`
	PersonalizationScore float64 `json:"personalization_score"`
	ReadabilityScore     float64 `json:"readability_score"`
	CTAScore             float64 `json:"cta_score"`
	OverallScore         float64 `json:"overall_score"`
}

// GenerationMetadata carries provenance for a personalization run
type GenerationMetadata struct {
	ProcessingID  string    `json:"processing_id"`
	GeneratedAt   time.Time `json:"generated_at"`
	SubjectMethod string    `json:"subject_method"`
	BodyGenerator string    `json:"body_generator"`
	DurationMs    int64     `json:"duration_ms"`
}

// PersonalizedContent is the final output of the personalization pipeline
type PersonalizedContent struct {
	BusinessID          string                 `json:"business_id"`
	SubjectLine         string                 `json:"subject_line"`
	HTMLContent         string                 `json:"html_content"`
	TextContent         string                 `json:"text_content"`
	PreviewText         string                 `json:"preview_text"`
	ExtractedIssues     []Issue                `json:"extracted_issues"`
	PersonalizationData map[string]interface{} `json:"personalization_data,omitempty"`
	SpamScore           float64                `json:"spam_score"`
	SpamRiskLevel       RiskLevel              `json:"spam_risk_level"`
	QualityMetrics      QualityMetrics         `json:"quality_metrics"`
	GenerationMetadata  GenerationMetadata     `json:"generation_metadata"`
}

// PersonalizeRequest is the input to the personalization pipeline
type PersonalizeRequest struct {
	BusinessID string                 `json:"business_id"`
	Business   map[string]interface{} `json:"business"`
	Contact    map[string]interface{} `json:"contact"`
	Assessment map[string]interface{} `json:"assessment"`
	MaxIssues  int                    `json:"max_issues,omitempty"`
	Tone       string                 `json:"tone,omitempty"`
}
