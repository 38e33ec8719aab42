package catalog

import (
	"fmt"
	"sort"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Content types known to the catalog
const (
	ContentTypeSubjectLine = "subject_line"
	ContentTypeEmailBody   = "email_body"
)

// Template is one declarative message pattern. Patterns contain {token}
// placeholders resolved against a prospect at generation time. Body templates
// carry their copy in Sections instead of Pattern.
type Template struct {
	Name           string            `mapstructure:"name"`
	ContentType    string            `mapstructure:"content_type"`
	Category       string            `mapstructure:"category"`
	Pattern        string            `mapstructure:"pattern"`
	RequiredTokens []string          `mapstructure:"required_tokens"`
	MaxLength      int               `mapstructure:"max_length"`
	Tone           string            `mapstructure:"tone"`
	Sections       map[string]string `mapstructure:"sections"`
}

// Catalog holds the full template set, organized content_type -> category.
// It is built once and read-only afterwards, so concurrent reads need no
// locking.
type Catalog struct {
	byType map[string]map[string][]Template
	order  map[string][]Template
	logger *zap.Logger
}

// rawCatalog matches the on-disk YAML shape
type rawCatalog struct {
	Templates map[string]map[string][]Template `mapstructure:"templates"`
}

// NewCatalog loads the template catalog from the given YAML file. Any load
// failure falls back to the built-in default set; the catalog is never
// inoperable.
func NewCatalog(path string, logger *zap.Logger) *Catalog {
	templates, err := loadTemplates(path)
	if err != nil {
		logger.Warn("Failed to load template catalog, using built-in defaults",
			zap.String("path", path),
			zap.Error(err))
		templates = builtinTemplates()
	} else {
		logger.Info("Loaded template catalog",
			zap.String("path", path),
			zap.Int("content_types", len(templates)))
	}

	return newFromTemplates(templates, logger)
}

// NewBuiltinCatalog returns a catalog holding only the built-in default set
func NewBuiltinCatalog(logger *zap.Logger) *Catalog {
	return newFromTemplates(builtinTemplates(), logger)
}

// NewCatalogFromTemplates builds a catalog over an explicit template set
func NewCatalogFromTemplates(templates map[string]map[string][]Template, logger *zap.Logger) *Catalog {
	return newFromTemplates(templates, logger)
}

func newFromTemplates(templates map[string]map[string][]Template, logger *zap.Logger) *Catalog {
	c := &Catalog{
		byType: make(map[string]map[string][]Template),
		order:  make(map[string][]Template),
		logger: logger,
	}
	for contentType, categories := range templates {
		c.byType[contentType] = make(map[string][]Template)

		// Categories are walked in sorted order so AllForType, and with it
		// the assembler's tie-break, is identical across restarts
		names := make([]string, 0, len(categories))
		for category := range categories {
			names = append(names, category)
		}
		sort.Strings(names)

		for _, category := range names {
			list := categories[category]
			for i := range list {
				list[i].ContentType = contentType
				if list[i].Category == "" {
					list[i].Category = category
				}
			}
			c.byType[contentType][category] = list
			c.order[contentType] = append(c.order[contentType], list...)
		}
	}
	return c
}

func loadTemplates(path string) (map[string]map[string][]Template, error) {
	if path == "" {
		return nil, fmt.Errorf("no catalog path configured")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read template catalog: %w", err)
	}

	var raw rawCatalog
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}
	if len(raw.Templates) == 0 {
		return nil, fmt.Errorf("template catalog is empty")
	}
	return raw.Templates, nil
}

// Templates returns the templates for a content type and category, in
// catalog order. A missing category yields nil.
func (c *Catalog) Templates(contentType, category string) []Template {
	categories, ok := c.byType[contentType]
	if !ok {
		return nil
	}
	return categories[category]
}

// AllForType returns every template of a content type in catalog order.
// Catalog order breaks scoring ties, so it is stable across calls.
func (c *Catalog) AllForType(contentType string) []Template {
	return c.order[contentType]
}

// Categories returns the category names available for a content type
func (c *Catalog) Categories(contentType string) []string {
	categories, ok := c.byType[contentType]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	return names
}

// builtinTemplates is the fallback set used when the catalog file cannot be
// loaded. It keeps every strategy workable.
func builtinTemplates() map[string]map[string][]Template {
	return map[string]map[string][]Template{
		ContentTypeSubjectLine: {
			"professional": {
				{
					Name:           "direct_question",
					Pattern:        "Quick question about {business_name}",
					RequiredTokens: []string{"business_name"},
					MaxLength:      60,
					Tone:           "professional",
				},
				{
					Name:           "issue_callout",
					Pattern:        "{business_name}: a fix for your {main_issue}",
					RequiredTokens: []string{"business_name", "main_issue"},
					MaxLength:      70,
					Tone:           "professional",
				},
				{
					Name:           "industry_insight",
					Pattern:        "How {industry} sites win more customers",
					RequiredTokens: []string{"industry"},
					MaxLength:      60,
					Tone:           "professional",
				},
			},
			"formal": {
				{
					Name:           "formal_review",
					Pattern:        "Website review findings for {business_name}",
					RequiredTokens: []string{"business_name"},
					MaxLength:      70,
					Tone:           "formal",
				},
			},
			"casual": {
				{
					Name:           "casual_noticed",
					Pattern:        "{contact_first_name}, noticed something on your site",
					RequiredTokens: []string{"contact_first_name"},
					MaxLength:      60,
					Tone:           "casual",
				},
				{
					Name:           "casual_idea",
					Pattern:        "An idea for {business_name}",
					RequiredTokens: []string{"business_name"},
					MaxLength:      50,
					Tone:           "casual",
				},
			},
			"urgent": {
				{
					Name:           "urgent_issues",
					Pattern:        "{issue_count} issues holding {business_name} back",
					RequiredTokens: []string{"issue_count", "business_name"},
					MaxLength:      70,
					Tone:           "urgent",
				},
			},
		},
		ContentTypeEmailBody: {
			"standard": {
				{
					Name:           "issue_walkthrough",
					RequiredTokens: []string{"business_name", "main_issue", "issue_count"},
					Tone:           "professional",
					Sections: map[string]string{
						"opening":  "Hi {contact_first_name}, I took a look at the {business_name} website this week.",
						"problem":  "A few things stood out, starting with {main_issue}. Issues like these quietly cost {industry} businesses customers every day.",
						"solution": "The good news is that each of them has a well-understood fix, and most can be addressed quickly.",
						"cta":      "Would you be open to a short call this week to walk through what I found?",
						"closing":  "Either way, happy to send over the full notes.",
					},
				},
				{
					Name:           "short_intro",
					RequiredTokens: []string{"business_name"},
					Tone:           "professional",
					Sections: map[string]string{
						"opening":  "Hi {contact_first_name}, I came across {business_name} recently.",
						"problem":  "I noticed a couple of things on the website that might be costing you visitors.",
						"solution": "They are straightforward to fix with the right priorities.",
						"cta":      "Want me to share the details?",
						"closing":  "Thanks for your time.",
					},
				},
			},
		},
	}
}
