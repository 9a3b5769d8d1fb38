// Package message provides commit descriptor formatting and validation for autocommit.
package message

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// ValidCommitTypes contains all valid Conventional Commits types.
var ValidCommitTypes = []string{
	"feat", "fix", "refactor", "docs", "style",
	"test", "chore", "perf", "ci", "build", "revert",
}

// MaxHeaderLength is the recommended maximum length for the commit header,
// counted in runes since themes are Chinese.
const MaxHeaderLength = 72

// DefaultScope is used when no meaningful scope can be derived.
const DefaultScope = "repo"

// headerRegex matches the header format produced by Descriptor.Header.
// Format: <type>(<scope>): <theme>
var headerRegex = regexp.MustCompile(`^(feat|fix|refactor|docs|style|test|chore|perf|ci|build|revert)\(([^)]+)\): (.+)$`)

// scopeSanitizeRegex matches runs of characters not allowed in a scope.
var scopeSanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ValidationError represents a descriptor validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult contains the result of descriptor validation.
type ValidationResult struct {
	IsValid  bool
	Errors   []ValidationError
	Warnings []string
}

// Descriptor is the structured commit description: a Conventional Commits
// type and scope plus a Chinese theme (header subject) and intro (body).
type Descriptor struct {
	Type  string // feat, fix, docs, ...
	Scope string // dominant directory or generic scope
	Theme string // short Chinese summary line
	Intro string // longer Chinese explanatory sentence
}

// Header formats the commit header as "type(scope): theme".
func (d *Descriptor) Header() string {
	return d.Type + "(" + d.Scope + "): " + d.Theme
}

// Body formats the four-line Chinese commit body.
func (d *Descriptor) Body() string {
	return strings.Join([]string{
		"类型: " + d.Type,
		"作用域: " + d.Scope,
		"主题: " + d.Theme,
		"简介: " + d.Intro,
	}, "\n")
}

// Format returns the full commit message: header, blank line, body.
func (d *Descriptor) Format() string {
	return d.Header() + "\n\n" + d.Body()
}

// ParseHeader parses a "type(scope): theme" header back into a Descriptor.
// The intro is not recoverable from a header and is left empty.
func ParseHeader(header string) (*Descriptor, bool) {
	matches := headerRegex.FindStringSubmatch(strings.TrimSpace(header))
	if matches == nil {
		return nil, false
	}
	return &Descriptor{
		Type:  matches[1],
		Scope: matches[2],
		Theme: matches[3],
	}, true
}

// Validate checks that the descriptor is complete and well formed.
// Returns an error listing every violated field.
func (d *Descriptor) Validate() error {
	result := d.ValidateWithWarnings()
	if !result.IsValid {
		var errMsgs []string
		for _, e := range result.Errors {
			errMsgs = append(errMsgs, e.Error())
		}
		return errors.New(strings.Join(errMsgs, "; "))
	}
	return nil
}

// ValidateWithWarnings validates the descriptor and returns detailed results.
// Errors mean the descriptor must not be committed; warnings are advisory.
func (d *Descriptor) ValidateWithWarnings() *ValidationResult {
	result := &ValidationResult{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []string{},
	}

	if d.Type == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "type",
			Message: "missing commit type",
		})
	} else if !IsValidCommitType(d.Type) {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("invalid commit type: %s (valid types: %s)", d.Type, strings.Join(ValidCommitTypes, ", ")),
		})
	}

	if d.Scope == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "scope",
			Message: "missing scope",
		})
	}

	if d.Theme == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "theme",
			Message: "missing theme",
		})
	}

	if d.Intro == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "intro",
			Message: "missing intro",
		})
	}

	if n := utf8.RuneCountInString(d.Header()); n > MaxHeaderLength {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"header exceeds %d characters (%d chars)",
			MaxHeaderLength, n,
		))
	}

	return result
}

// IsValidCommitType checks if the given type is a valid Conventional Commits type.
func IsValidCommitType(commitType string) bool {
	return slices.Contains(ValidCommitTypes, commitType)
}

// SanitizeScope normalizes a derived scope: disallowed character runs become
// "-", leading and trailing "-" and "." are trimmed, and the result is
// lowercased. An empty result falls back to DefaultScope. User-supplied scope
// overrides are never sanitized; they are applied verbatim.
func SanitizeScope(scope string) string {
	cleaned := scopeSanitizeRegex.ReplaceAllString(scope, "-")
	cleaned = strings.ToLower(strings.Trim(cleaned, "-."))
	if cleaned == "" {
		return DefaultScope
	}
	return cleaned
}

// Overrides holds user-supplied descriptor fields. Empty string means no
// override for that field.
type Overrides struct {
	Type  string
	Scope string
	Theme string
	Intro string
}

// Any reports whether at least one field is overridden.
func (o Overrides) Any() bool {
	return o.Type != "" || o.Scope != "" || o.Theme != "" || o.Intro != ""
}

// Validate checks the override values that are constrained. Only Type has a
// closed domain; the other fields are free-form and used verbatim.
func (o Overrides) Validate() error {
	if o.Type != "" && !IsValidCommitType(o.Type) {
		return fmt.Errorf("invalid commit type: %s", o.Type)
	}
	return nil
}

// Apply returns a copy of d with every overridden field replaced verbatim.
func (o Overrides) Apply(d Descriptor) Descriptor {
	if o.Type != "" {
		d.Type = o.Type
	}
	if o.Scope != "" {
		d.Scope = o.Scope
	}
	if o.Theme != "" {
		d.Theme = o.Theme
	}
	if o.Intro != "" {
		d.Intro = o.Intro
	}
	return d
}
