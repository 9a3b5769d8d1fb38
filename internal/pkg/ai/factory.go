// Package ai provides AI provider interfaces and implementations for autocommit.
package ai

import (
	"fmt"

	"github.com/autocommit/autocommit/internal/pkg/config"
)

// ProviderName constants for supported providers.
const (
	ProviderNameOpenAI   = "openai"
	ProviderNameDeepSeek = "deepseek"
	ProviderNameOllama   = "ollama"
)

// SourceLocal is the source label used when the descriptor comes from
// the local classification rules instead of an AI provider.
const SourceLocal = "Local Rules"

// ProviderTitle returns the display name of a provider, used in
// notices such as the fallback warning.
func ProviderTitle(name string) string {
	switch name {
	case ProviderNameOpenAI:
		return "OpenAI"
	case ProviderNameOllama:
		return "Ollama"
	default:
		return "DeepSeek"
	}
}

// SourceLabel returns the 来源 line value for a provider name.
func SourceLabel(name string) string {
	switch name {
	case ProviderNameOpenAI:
		return "OpenAI"
	case ProviderNameOllama:
		return "Ollama"
	default:
		return "DeepSeek AI"
	}
}

// NewProvider creates a new AI provider based on the configuration.
func NewProvider(cfg *config.ProviderConfig) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider configuration is required")
	}

	aiConfig := ProviderConfig{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Endpoint:    cfg.Endpoint,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	switch cfg.Name {
	case ProviderNameDeepSeek, "":
		// Default to DeepSeek if no provider specified
		return NewDeepSeekProvider(aiConfig)

	case ProviderNameOpenAI:
		return NewOpenAIProvider(aiConfig)

	case ProviderNameOllama:
		return NewOllamaProvider(aiConfig)

	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Name)
	}
}

// NewProviderWithCustomPrompt creates a new AI provider with a custom
// system prompt.
func NewProviderWithCustomPrompt(cfg *config.ProviderConfig, systemPrompt string) (Provider, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	pt := NewPromptTemplateWithCustom(systemPrompt)

	switch p := provider.(type) {
	case *OpenAIProvider:
		p.SetPromptTemplate(pt)
	case *DeepSeekProvider:
		p.SetPromptTemplate(pt)
	case *OllamaProvider:
		p.SetPromptTemplate(pt)
	}

	return provider, nil
}
