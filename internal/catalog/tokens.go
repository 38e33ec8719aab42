package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mikey/outreach-personalizer/internal/core"
	"go.uber.org/zap"
)

// Transform is a closed enumeration of the token value transformations.
// New transforms are added here and in transformFuncs, so an unknown kind is
// a compile-time mistake rather than a silent no-op string lookup.
type Transform int

const (
	TransformLowercase Transform = iota
	TransformTitlecase
	TransformStripLegalSuffix
	TransformNormalizeIndustry
	TransformPluralize
)

// transformFuncs is the dispatch table for Transform kinds
var transformFuncs = map[Transform]func(string) string{
	TransformLowercase:         strings.ToLower,
	TransformTitlecase:         titlecase,
	TransformStripLegalSuffix:  stripLegalSuffix,
	TransformNormalizeIndustry: normalizeIndustry,
	TransformPluralize:         pluralize,
}

// TokenDefinition describes how one {token} placeholder is resolved
type TokenDefinition struct {
	Name       string
	Source     string
	Default    string
	MaxLength  int
	Transforms []Transform
}

// Resolver resolves {token} placeholders against a prospect. Resolution
// never fails: a missing or malformed value yields the token's default and
// an ok=false classification.
type Resolver struct {
	tokens map[string]TokenDefinition
	logger *zap.Logger
}

// NewResolver creates a resolver with the built-in token table
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{
		tokens: builtinTokens(),
		logger: logger,
	}
}

// Resolve returns the value for a token name and whether extraction
// succeeded. When extraction fails the configured default is returned and ok
// is false; the caller records the token as failed but still substitutes.
func (r *Resolver) Resolve(name string, prospect core.Prospect) (string, bool) {
	def, known := r.tokens[name]
	if !known {
		r.logger.Debug("Unknown token requested", zap.String("token", name))
		return "", false
	}

	value, ok := r.extract(def.Source, prospect)
	if !ok || strings.TrimSpace(value) == "" {
		return def.Default, false
	}

	for _, t := range def.Transforms {
		value = transformFuncs[t](value)
	}
	if def.MaxLength > 0 && len(value) > def.MaxLength {
		cut := runeBoundary(value, def.MaxLength-3)
		value = strings.TrimRight(value[:cut], " ") + "..."
	}
	return value, true
}

// runeBoundary backs a byte offset up to the nearest rune start so slicing
// never splits a multibyte character
func runeBoundary(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// Substitute replaces every {token} placeholder in pattern, returning the
// rendered text plus the resolved and failed token names. The output never
// contains a literal placeholder.
func (r *Resolver) Substitute(pattern string, prospect core.Prospect) (string, map[string]string, []string) {
	resolved := make(map[string]string)
	var failed []string

	out := pattern
	for _, name := range TokenNames(pattern) {
		value, ok := r.Resolve(name, prospect)
		if ok {
			resolved[name] = value
		} else {
			failed = append(failed, name)
		}
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out, resolved, failed
}

// TokenNames lists the {token} placeholders appearing in a pattern, in order
func TokenNames(pattern string) []string {
	var names []string
	seen := make(map[string]bool)
	rest := pattern
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			return names
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return names
		}
		name := rest[start+1 : start+end]
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		rest = rest[start+end+1:]
	}
}

// extract walks the known context shapes for a semantic source path
func (r *Resolver) extract(source string, prospect core.Prospect) (string, bool) {
	switch source {
	case "business.name":
		return stringField(prospect.Business, "name")
	case "business.industry":
		return stringField(prospect.Business, "industry")
	case "business.location":
		if v, ok := stringField(prospect.Business, "city"); ok {
			return v, true
		}
		return stringField(prospect.Business, "location")
	case "contact.first_name":
		if v, ok := stringField(prospect.Contact, "first_name"); ok {
			return v, true
		}
		// Fall back to the first word of a full name
		if full, ok := stringField(prospect.Contact, "name"); ok {
			if fields := strings.Fields(full); len(fields) > 0 {
				return fields[0], true
			}
		}
		return "", false
	case "derived.issue_count":
		if len(prospect.Issues) == 0 {
			return "", false
		}
		return fmt.Sprintf("%d", len(prospect.Issues)), true
	case "derived.main_issue":
		if len(prospect.Issues) == 0 {
			return "", false
		}
		return humanizeIssueType(prospect.Issues[0].Type), true
	default:
		return "", false
	}
}

func stringField(m map[string]interface{}, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	s, ok := m[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// builtinTokens is the per-token configuration table
func builtinTokens() map[string]TokenDefinition {
	defs := []TokenDefinition{
		{
			Name:       "business_name",
			Source:     "business.name",
			Default:    "your business",
			MaxLength:  40,
			Transforms: []Transform{TransformStripLegalSuffix},
		},
		{
			Name:      "contact_first_name",
			Source:    "contact.first_name",
			Default:   "there",
			MaxLength: 25,
			Transforms: []Transform{
				TransformTitlecase,
			},
		},
		{
			Name:       "industry",
			Source:     "business.industry",
			Default:    "local business",
			MaxLength:  30,
			Transforms: []Transform{TransformLowercase, TransformNormalizeIndustry},
		},
		{
			Name:      "location",
			Source:    "business.location",
			Default:   "your area",
			MaxLength: 30,
		},
		{
			Name:    "issue_count",
			Source:  "derived.issue_count",
			Default: "a few",
		},
		{
			Name:      "main_issue",
			Source:    "derived.main_issue",
			Default:   "website performance",
			MaxLength: 40,
			Transforms: []Transform{
				TransformLowercase,
			},
		},
	}

	table := make(map[string]TokenDefinition, len(defs))
	for _, d := range defs {
		table[d.Name] = d
	}
	return table
}

// legalSuffixes are trailing company forms stripped from business names
var legalSuffixes = []string{"llc", "l.l.c.", "inc", "inc.", "ltd", "ltd.", "corp", "corp.", "co", "co.", "gmbh", "plc"}

func stripLegalSuffix(name string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(name), ",")
	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return trimmed
	}
	last := strings.ToLower(strings.Trim(fields[len(fields)-1], ",."))
	for _, suffix := range legalSuffixes {
		if last == strings.Trim(suffix, ".") {
			return strings.TrimRight(strings.Join(fields[:len(fields)-1], " "), ",")
		}
	}
	return trimmed
}

// industryAliases folds common variants onto canonical industry names
var industryAliases = map[string]string{
	"restaurants":      "restaurant",
	"food service":     "restaurant",
	"food & beverage":  "restaurant",
	"healthcare":       "medical",
	"health care":      "medical",
	"dental":           "medical",
	"ecommerce":        "retail",
	"e-commerce":       "retail",
	"shop":             "retail",
	"legal":            "professional services",
	"law":              "professional services",
	"accounting":       "professional services",
	"consulting":       "professional services",
	"real estate":      "professional services",
	"it services":      "professional services",
	"fitness":          "health and fitness",
	"gym":              "health and fitness",
}

func normalizeIndustry(industry string) string {
	key := strings.ToLower(strings.TrimSpace(industry))
	if canonical, ok := industryAliases[key]; ok {
		return canonical
	}
	return key
}

func titlecase(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + strings.ToLower(f[1:])
	}
	return strings.Join(fields, " ")
}

func pluralize(s string) string {
	switch {
	case s == "":
		return s
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"), strings.HasSuffix(s, "ch"), strings.HasSuffix(s, "sh"):
		return s + "es"
	case strings.HasSuffix(s, "y") && len(s) > 1 && !strings.ContainsRune("aeiou", rune(s[len(s)-2])):
		return s[:len(s)-1] + "ies"
	default:
		return s + "s"
	}
}

func humanizeIssueType(issueType string) string {
	return strings.ReplaceAll(issueType, "_", " ")
}
