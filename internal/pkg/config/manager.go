package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// ConfigLoadTimeout is the timeout for loading configuration.
	ConfigLoadTimeout = 100 * time.Millisecond
)

const (
	// DefaultConfigDirName is the directory under the user's home.
	DefaultConfigDirName = ".autocommit"
	// DefaultConfigFileName is the config file name inside that directory.
	DefaultConfigFileName = "config.yaml"
)

// ViperManager implements the Manager interface using Viper.
type ViperManager struct {
	v          *viper.Viper
	configPath string
}

// NewManager creates a new configuration manager.
// If configPath is empty, it uses the default path (~/.autocommit/config.yaml).
func NewManager(configPath string) (*ViperManager, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(homeDir, DefaultConfigDirName, DefaultConfigFileName)
	}
	v.SetConfigFile(configPath)

	// The file may carry an API key, keep it user-only.
	v.SetConfigPermissions(0600)

	v.SetEnvPrefix("AUTOCOMMIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults first, so env binding works with nested keys.
	setDefaults(v)
	bindEnvVars(v)

	return &ViperManager{
		v:          v,
		configPath: configPath,
	}, nil
}

// bindEnvVars explicitly binds environment variables for all config keys.
// Viper's AutomaticEnv does not handle nested keys reliably.
func bindEnvVars(v *viper.Viper) {
	// Provider settings
	_ = v.BindEnv("provider.name", "AUTOCOMMIT_PROVIDER_NAME")
	_ = v.BindEnv("provider.api_key", "AUTOCOMMIT_PROVIDER_API_KEY")
	_ = v.BindEnv("provider.model", "AUTOCOMMIT_PROVIDER_MODEL")
	_ = v.BindEnv("provider.endpoint", "AUTOCOMMIT_PROVIDER_ENDPOINT")
	_ = v.BindEnv("provider.temperature", "AUTOCOMMIT_PROVIDER_TEMPERATURE")
	_ = v.BindEnv("provider.max_tokens", "AUTOCOMMIT_PROVIDER_MAX_TOKENS")
	_ = v.BindEnv("provider.timeout_seconds", "AUTOCOMMIT_PROVIDER_TIMEOUT_SECONDS")

	// Commit settings
	_ = v.BindEnv("commit.max_files", "AUTOCOMMIT_COMMIT_MAX_FILES")
	_ = v.BindEnv("commit.ai_enabled", "AUTOCOMMIT_COMMIT_AI_ENABLED")

	// UI settings
	_ = v.BindEnv("ui.color_enabled", "AUTOCOMMIT_UI_COLOR_ENABLED")
	_ = v.BindEnv("ui.spinner_style", "AUTOCOMMIT_UI_SPINNER_STYLE")

	// History settings
	_ = v.BindEnv("history.enabled", "AUTOCOMMIT_HISTORY_ENABLED")
	_ = v.BindEnv("history.max_entries", "AUTOCOMMIT_HISTORY_MAX_ENTRIES")
	_ = v.BindEnv("history.file_path", "AUTOCOMMIT_HISTORY_FILE_PATH")

	// Security settings
	_ = v.BindEnv("security.warning_acknowledged", "AUTOCOMMIT_SECURITY_WARNING_ACKNOWLEDGED")
	_ = v.BindEnv("security.tool_check_done", "AUTOCOMMIT_SECURITY_TOOL_CHECK_DONE")

	// Cache settings
	_ = v.BindEnv("cache.enabled", "AUTOCOMMIT_CACHE_ENABLED")
	_ = v.BindEnv("cache.max_entries", "AUTOCOMMIT_CACHE_MAX_ENTRIES")
	_ = v.BindEnv("cache.ttl_minutes", "AUTOCOMMIT_CACHE_TTL_MINUTES")
}

// setDefaults sets the default configuration values.
func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("provider.name", "deepseek")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.model", "deepseek-chat")
	v.SetDefault("provider.endpoint", "")
	v.SetDefault("provider.temperature", 0.1)
	v.SetDefault("provider.max_tokens", 500)
	v.SetDefault("provider.timeout_seconds", 30)

	// Commit defaults
	v.SetDefault("commit.max_files", 5)
	v.SetDefault("commit.ai_enabled", true)

	// UI defaults
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.spinner_style", "dots")

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.max_entries", 1000)
	homeDir, _ := os.UserHomeDir()
	v.SetDefault("history.file_path", filepath.Join(homeDir, DefaultConfigDirName, "history.json"))

	// Security defaults
	v.SetDefault("security.warning_acknowledged", false)
	v.SetDefault("security.tool_check_done", false)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_entries", 100)
	v.SetDefault("cache.ttl_minutes", 60) // 1 hour
}

// GetConfigPath returns the path to the configuration file.
func (m *ViperManager) GetConfigPath() string {
	return m.configPath
}

// Load loads the configuration from file, environment, and defaults.
// Priority: flags > env > file > defaults
func (m *ViperManager) Load() (*Config, error) {
	// A missing config file is fine, defaults and environment apply.
	if err := m.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWithTimeout loads the configuration with a timeout. Config loading
// sits on the startup path of every command and must never hang on a
// slow filesystem.
func (m *ViperManager) LoadWithTimeout(ctx context.Context) (*Config, error) {
	ctx, cancel := context.WithTimeout(ctx, ConfigLoadTimeout)
	defer cancel()

	type result struct {
		cfg *Config
		err error
	}
	ch := make(chan result, 1)

	go func() {
		cfg, err := m.Load()
		ch <- result{cfg, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("config loading timed out after %v", ConfigLoadTimeout)
	case r := <-ch:
		return r.cfg, r.err
	}
}

// Init creates a new configuration file with default values.
// Sets file permissions to 0600.
func (m *ViperManager) Init() error {
	if _, err := os.Stat(m.configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", m.configPath)
	}

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := m.v.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Chmod(m.configPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}

// Save saves the configuration to file. Values are written key by key so
// the mapstructure names round-trip through the yaml encoder.
func (m *ViperManager) Save(config *Config) error {
	m.v.Set("provider.name", config.Provider.Name)
	m.v.Set("provider.api_key", config.Provider.APIKey)
	m.v.Set("provider.model", config.Provider.Model)
	m.v.Set("provider.endpoint", config.Provider.Endpoint)
	m.v.Set("provider.temperature", config.Provider.Temperature)
	m.v.Set("provider.max_tokens", config.Provider.MaxTokens)
	m.v.Set("provider.timeout_seconds", config.Provider.TimeoutSeconds)
	m.v.Set("commit.max_files", config.Commit.MaxFiles)
	m.v.Set("commit.ai_enabled", config.Commit.AIEnabled)
	m.v.Set("ui.color_enabled", config.UI.ColorEnabled)
	m.v.Set("ui.spinner_style", config.UI.SpinnerStyle)
	m.v.Set("history.enabled", config.History.Enabled)
	m.v.Set("history.max_entries", config.History.MaxEntries)
	m.v.Set("history.file_path", config.History.FilePath)
	m.v.Set("security.warning_acknowledged", config.Security.WarningAcknowledged)
	m.v.Set("security.tool_check_done", config.Security.ToolCheckDone)
	m.v.Set("cache.enabled", config.Cache.Enabled)
	m.v.Set("cache.max_entries", config.Cache.MaxEntries)
	m.v.Set("cache.ttl_minutes", config.Cache.TTLMinutes)

	if err := m.v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Set sets a configuration value by key.
// Supports nested keys using dot notation (e.g., "provider.name").
func (m *ViperManager) Set(key string, value string) error {
	if err := m.v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Coerce to the type of the current (or default) value.
	existingValue := m.v.Get(key)
	convertedValue, err := convertValue(value, existingValue)
	if err != nil {
		return fmt.Errorf("failed to convert value for key %s: %w", key, err)
	}

	m.v.Set(key, convertedValue)

	if err := m.v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// convertValue converts a string value based on the existing value type.
func convertValue(value string, existingValue interface{}) (interface{}, error) {
	if existingValue == nil {
		return value, nil
	}

	switch existingValue.(type) {
	case bool:
		return strconv.ParseBool(value)
	case int, int64:
		return strconv.ParseInt(value, 10, 64)
	case float32, float64:
		return strconv.ParseFloat(value, 64)
	case []interface{}, []string:
		return strings.Split(value, ","), nil
	default:
		return value, nil
	}
}

// Get retrieves a configuration value by key.
func (m *ViperManager) Get(key string) (string, error) {
	if err := m.v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return "", fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	value := m.v.Get(key)
	if value == nil {
		return "", fmt.Errorf("key not found: %s", key)
	}

	return fmt.Sprintf("%v", value), nil
}

// List returns all configuration values as a map.
func (m *ViperManager) List() map[string]interface{} {
	_ = m.v.ReadInConfig()
	return m.v.AllSettings()
}

// SetOverride sets a temporary override for a configuration key.
// Used for command-line flag overrides that must not persist.
func (m *ViperManager) SetOverride(key string, value interface{}) {
	m.v.Set(key, value)
}

// MaskAPIKey masks an API key, showing only the last 4 characters.
func MaskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// ConfigExists checks if the configuration file exists.
func (m *ViperManager) ConfigExists() bool {
	_, err := os.Stat(m.configPath)
	return err == nil
}

// AcknowledgeSecurityWarning marks the data sharing notice as acknowledged.
func (m *ViperManager) AcknowledgeSecurityWarning() error {
	return m.setFlagKey("security.warning_acknowledged")
}

// IsSecurityWarningAcknowledged checks if the notice has been acknowledged.
func (m *ViperManager) IsSecurityWarningAcknowledged() bool {
	_ = m.v.ReadInConfig()
	return m.v.GetBool("security.warning_acknowledged")
}

// SetToolCheckDone marks the git binary check as completed, so the
// detection only runs once on first execution.
func (m *ViperManager) SetToolCheckDone() error {
	return m.setFlagKey("security.tool_check_done")
}

// IsToolCheckDone checks if the git binary check has been performed.
func (m *ViperManager) IsToolCheckDone() bool {
	_ = m.v.ReadInConfig()
	return m.v.GetBool("security.tool_check_done")
}

// setFlagKey persists a boolean marker, creating the config file first
// when it does not exist yet.
func (m *ViperManager) setFlagKey(key string) error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		f, err := os.OpenFile(m.configPath, os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		f.Close()
	}

	return m.Set(key, "true")
}
