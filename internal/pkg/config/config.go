// Package config provides configuration management for autocommit.
package config

import "os"

// Config represents the complete autocommit configuration.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Commit   CommitConfig   `mapstructure:"commit"`
	UI       UIConfig       `mapstructure:"ui"`
	History  HistoryConfig  `mapstructure:"history"`
	Security SecurityConfig `mapstructure:"security"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// ProviderConfig contains AI provider settings.
type ProviderConfig struct {
	Name           string  `mapstructure:"name"`
	APIKey         string  `mapstructure:"api_key"`
	Model          string  `mapstructure:"model"`
	Endpoint       string  `mapstructure:"endpoint"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// CommitConfig contains descriptor generation settings.
type CommitConfig struct {
	// MaxFiles caps how many paths the intro sentence lists before
	// collapsing the rest into a count.
	MaxFiles int `mapstructure:"max_files"`
	// AIEnabled disables the AI refinement path entirely when false.
	AIEnabled bool `mapstructure:"ai_enabled"`
}

// UIConfig contains user interface settings.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	SpinnerStyle string `mapstructure:"spinner_style"`
}

// HistoryConfig contains history-related settings.
type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	MaxEntries int    `mapstructure:"max_entries"`
	FilePath   string `mapstructure:"file_path"`
}

// SecurityConfig contains security-related settings.
type SecurityConfig struct {
	// WarningAcknowledged records that the user accepted the notice
	// about staged diffs being sent to the AI provider.
	WarningAcknowledged bool `mapstructure:"warning_acknowledged"`
	// ToolCheckDone records that the git binary check already ran.
	ToolCheckDone bool `mapstructure:"tool_check_done"`
}

// CacheConfig contains cache-related settings.
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	MaxEntries int  `mapstructure:"max_entries"`
	TTLMinutes int  `mapstructure:"ttl_minutes"`
}

// apiKeyEnvVars maps provider names to their conventional key variables.
var apiKeyEnvVars = map[string]string{
	"deepseek": "DEEPSEEK_API_KEY",
	"openai":   "OPENAI_API_KEY",
}

// APIKeyEnvVar returns the conventional environment variable holding a
// provider's API key, or the empty string for providers without one.
func APIKeyEnvVar(provider string) string {
	return apiKeyEnvVars[provider]
}

// ResolveAPIKey returns the configured API key, falling back to the
// provider's conventional environment variable.
func (c *Config) ResolveAPIKey() string {
	if c.Provider.APIKey != "" {
		return c.Provider.APIKey
	}
	if envVar := APIKeyEnvVar(c.Provider.Name); envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}

// Manager defines the interface for configuration management.
type Manager interface {
	// Load loads the configuration from all sources.
	Load() (*Config, error)

	// Save persists the configuration to file.
	Save(config *Config) error

	// Set sets a configuration value by key.
	Set(key string, value string) error

	// Get retrieves a configuration value by key.
	Get(key string) (string, error)

	// Init creates a new configuration file with defaults.
	Init() error

	// List returns all configuration values.
	List() map[string]interface{}

	// GetConfigPath returns the path to the configuration file.
	GetConfigPath() string
}
