// Package ai provides AI provider interfaces and implementations for autocommit.
package ai

import (
	"context"

	"github.com/autocommit/autocommit/internal/pkg/git"
	"github.com/autocommit/autocommit/internal/pkg/message"
)

// GenerateRequest contains the data needed to describe a staged change set.
type GenerateRequest struct {
	// Repo is the repository path shown to the model.
	Repo string
	// Paths are the changed file paths, already capped by the processor.
	Paths []string
	// Counts aggregates the change kinds of the full change set.
	Counts git.ChangeCounts
	// Diff is the prepared staged diff, already truncated by the processor.
	Diff string
	// CustomPrompt replaces the rendered user prompt when set.
	CustomPrompt string
}

// GenerateResponse contains the structured descriptor returned by a provider.
type GenerateResponse struct {
	Descriptor message.Descriptor
	RawText    string
}

// ProviderConfig contains configuration for an AI provider.
type ProviderConfig struct {
	APIKey      string
	Model       string
	Endpoint    string
	Temperature float32
	MaxTokens   int
}

// Provider defines the interface for AI providers.
type Provider interface {
	GenerateDescriptor(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	Name() string
	ValidateConfig(config ProviderConfig) error
}
