// Package security provides security utilities for autocommit.
package security

import (
	"fmt"
	"regexp"
	"strings"
)

// APIKeyFormat defines the expected format patterns for different providers.
var APIKeyFormat = map[string]*regexp.Regexp{
	"openai":   regexp.MustCompile(`^sk-[a-zA-Z0-9]{20,}$`),
	"deepseek": regexp.MustCompile(`^sk-[a-zA-Z0-9]{20,}$`),
	"ollama":   nil, // Ollama doesn't require API key
}

// MaskAPIKey masks an API key, showing only the last 4 characters.
// This should be used when logging or displaying API keys.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// ValidateAPIKeyFormat validates the format of an API key for a given provider.
// Returns nil if the key format is valid, or an error describing the issue.
func ValidateAPIKeyFormat(provider, apiKey string) error {
	// Ollama doesn't require API key
	if provider == "ollama" {
		return nil
	}

	if apiKey == "" {
		return fmt.Errorf("API key is required for %s provider", provider)
	}

	if len(apiKey) < 20 {
		return fmt.Errorf("API key appears to be invalid (too short)")
	}

	pattern, exists := APIKeyFormat[provider]
	if exists && pattern != nil {
		if !pattern.MatchString(apiKey) {
			return fmt.Errorf("API key format appears invalid for %s provider (expected format: sk-...)", provider)
		}
	}

	return nil
}

// SanitizeForLogging sanitizes a string for safe logging by masking potential secrets.
// It looks for common patterns like API keys, passwords, and tokens.
func SanitizeForLogging(s string) string {
	patterns := []struct {
		regex       *regexp.Regexp
		replacement string
	}{
		// API keys (sk-...)
		{regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`), "sk-****"},
		// Bearer tokens
		{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]+`), "Bearer ****"},
		// Generic API key patterns
		{regexp.MustCompile(`(?i)(api[_-]?key|apikey|api_secret|secret[_-]?key)\s*[:=]\s*["']?[a-zA-Z0-9._-]+["']?`), "$1=****"},
		// Password patterns
		{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["']?[^\s"']+["']?`), "$1=****"},
	}

	result := s
	for _, p := range patterns {
		result = p.regex.ReplaceAllString(result, p.replacement)
	}

	return result
}

// FirstUseWarning is the notice displayed before the first AI request.
const FirstUseWarning = `
⚠️  重要安全提示 ⚠️

autocommit 会将已暂存的 git diff 内容发送到外部 AI 服务
（DeepSeek、OpenAI 或其他已配置的提供方）以生成提交描述。

这意味着你的代码变更会通过网络传输到第三方服务器。请确保:

1. 不要暂存敏感信息（API 密钥、密码、机密数据）
2. 运行 autocommit 前检查已暂存的变更
3. 敏感项目可使用本地提供方（Ollama），或加 --no-ai 仅用本地规则

更多信息见: https://github.com/autocommit/autocommit#security

`

// FirstUseAcknowledgment is shown after the user accepts the notice.
const FirstUseAcknowledgment = "已确认安全提示，后续不再显示。"
