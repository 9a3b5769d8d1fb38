// Package ai provides AI provider interfaces and implementations for autocommit.
package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/autocommit/autocommit/internal/pkg/message"
)

// rawDescriptor mirrors the JSON object providers are instructed to return.
type rawDescriptor struct {
	Type  string `json:"type"`
	Scope string `json:"scope"`
	Theme string `json:"theme"`
	Intro string `json:"intro"`
}

// ParseDescriptor normalizes a provider response into a descriptor.
// The type is lowercased and checked against the taxonomy, the scope is
// sanitized with "repo" as fallback, theme and intro must be non-empty.
func ParseDescriptor(rawText string) (*message.Descriptor, error) {
	cleaned := StripJSONFences(rawText)

	var raw rawDescriptor
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("AI returned non-JSON content: %w", err)
	}

	commitType := strings.ToLower(strings.TrimSpace(raw.Type))
	if !message.IsValidCommitType(commitType) {
		return nil, fmt.Errorf("AI returned invalid type: %s", commitType)
	}

	scope := strings.TrimSpace(raw.Scope)
	if scope == "" {
		scope = message.DefaultScope
	}
	scope = message.SanitizeScope(scope)

	theme := strings.TrimSpace(raw.Theme)
	if theme == "" {
		return nil, errors.New("AI returned empty theme")
	}

	intro := strings.TrimSpace(raw.Intro)
	if intro == "" {
		return nil, errors.New("AI returned empty intro")
	}

	return &message.Descriptor{
		Type:  commitType,
		Scope: scope,
		Theme: theme,
		Intro: intro,
	}, nil
}

// StripJSONFences removes a markdown code fence wrapped around a JSON
// object. Models without a JSON response mode tend to add one despite
// instructions.
func StripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// Drop an optional language tag such as "json".
		first := strings.TrimSpace(s[:i])
		if first == "" || strings.EqualFold(first, "json") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
