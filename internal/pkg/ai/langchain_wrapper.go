// Package ai provides AI provider interfaces and implementations for autocommit.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	apperrors "github.com/autocommit/autocommit/internal/pkg/errors"
)

// LangChainWrapper wraps LangChain LLM calls with retry logic and error handling.
type LangChainWrapper struct {
	llm            llms.Model
	promptTemplate *PromptTemplate
	config         ProviderConfig
	providerName   string
}

// NewLangChainWrapper creates a new LangChain wrapper.
func NewLangChainWrapper(llm llms.Model, config ProviderConfig, providerName string) *LangChainWrapper {
	return &LangChainWrapper{
		llm:            llm,
		promptTemplate: NewPromptTemplate(),
		config:         config,
		providerName:   providerName,
	}
}

// SetPromptTemplate sets a custom prompt template.
func (w *LangChainWrapper) SetPromptTemplate(pt *PromptTemplate) {
	if pt != nil {
		w.promptTemplate = pt
	}
}

// generate performs a single LLM call without retry logic.
func (w *LangChainWrapper) generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if req.Diff == "" && req.CustomPrompt == "" {
		return nil, errors.New("no diff content provided")
	}

	userPrompt, err := w.promptTemplate.RenderUserPrompt(BuildPromptData(req))
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, w.promptTemplate.GetSystemPrompt()),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	apperrors.LogAPIRequest(w.providerName, w.config.Endpoint, w.config.Model, len(userPrompt))
	startTime := time.Now()

	resp, err := w.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(float64(w.config.Temperature)),
		llms.WithMaxTokens(w.config.MaxTokens),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, err
	}

	duration := time.Since(startTime)
	responseLen := 0
	rawText := ""
	if len(resp.Choices) > 0 {
		rawText = resp.Choices[0].Content
		responseLen = len(rawText)
	}
	apperrors.LogAPIResponse(w.providerName, 200, responseLen, duration)

	if rawText == "" {
		return nil, errors.New("no response from AI provider")
	}

	descriptor, err := ParseDescriptor(rawText)
	if err != nil {
		return nil, err
	}

	return &GenerateResponse{Descriptor: *descriptor, RawText: rawText}, nil
}

// GenerateWithRetry performs LLM call with retry logic and error handling.
func (w *LangChainWrapper) GenerateWithRetry(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	var lastErr error

	for attempt := 0; attempt < MaxRetries; attempt++ {
		resp, err := w.generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !w.isRetryableError(err) {
			return nil, w.wrapError(err)
		}

		delay := calculateBackoff(attempt)
		apperrors.LogRetry(attempt+1, MaxRetries, err, delay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, w.wrapError(lastErr)
}

// isRetryableError checks if an error is retryable.
func (w *LangChainWrapper) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()

	// Retry on rate limit (429) and server errors (5xx)
	if strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return false
}

// wrapError wraps an error with a user-friendly message.
func (w *LangChainWrapper) wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	if strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "Unauthorized") {
		return apperrors.NewAuthenticationError(w.providerName)
	}

	if strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "too many requests") {
		return apperrors.NewRateLimitError(60 * time.Second)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(err)
	}

	// Connection error (Ollama specific)
	if strings.Contains(errStr, "connection refused") {
		appErr := apperrors.NewNetworkError(err)
		appErr.Message = fmt.Sprintf("无法连接到 %s", w.providerName)
		if w.providerName == "ollama" {
			appErr.WithSuggestion("请确认 Ollama 已通过 'ollama serve' 启动")
		}
		return appErr
	}

	return apperrors.NewAIProviderError(w.providerName, err)
}
