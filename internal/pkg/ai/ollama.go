// Package ai provides AI provider interfaces and implementations for autocommit.
package ai

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"
)

const (
	// DefaultOllamaModel is the default model for Ollama.
	DefaultOllamaModel = "codellama"

	// DefaultOllamaEndpoint is the default endpoint for a local Ollama server.
	DefaultOllamaEndpoint = "http://localhost:11434"
)

// OllamaProvider implements the Provider interface for a local Ollama
// server, backed by the langchaingo client.
type OllamaProvider struct {
	wrapper *LangChainWrapper
	config  ProviderConfig
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(config ProviderConfig) (*OllamaProvider, error) {
	if config.Model == "" {
		config.Model = DefaultOllamaModel
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultOllamaEndpoint
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	llm, err := ollama.New(
		ollama.WithServerURL(config.Endpoint),
		ollama.WithModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		wrapper: NewLangChainWrapper(llm, config, "ollama"),
		config:  config,
	}, nil
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// ValidateConfig validates the provider configuration.
// Ollama runs locally and does not require an API key.
func (p *OllamaProvider) ValidateConfig(config ProviderConfig) error {
	return nil
}

// GenerateDescriptor generates a commit descriptor using Ollama.
func (p *OllamaProvider) GenerateDescriptor(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	return p.wrapper.GenerateWithRetry(ctx, req)
}

// SetPromptTemplate sets a custom prompt template.
func (p *OllamaProvider) SetPromptTemplate(pt *PromptTemplate) {
	p.wrapper.SetPromptTemplate(pt)
}
