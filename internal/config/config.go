// Package config provides configuration management for the stock assistant.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "stock-assistant/internal/errors"
	"stock-assistant/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Model       ModelConfig       `mapstructure:"model"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Server      ServerConfig      `mapstructure:"server"`
	Chart       ChartConfig       `mapstructure:"chart"`
	Store       StoreConfig       `mapstructure:"store"`
	Logging     LoggingConfig     `mapstructure:"logging"`

	// APIKey is read once from Credentials.APIKeyFile or OPENAI_API_KEY.
	APIKey string `mapstructure:"-" json:"-"`
	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-"`
}

// ModelConfig holds chat model configuration.
type ModelConfig struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"`
}

// CredentialsConfig holds where the model API key lives.
type CredentialsConfig struct {
	APIKeyFile string `mapstructure:"api_key_file"`
}

// ServerConfig holds web UI configuration.
type ServerConfig struct {
	Addr        string        `mapstructure:"addr"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	MaxSessions int           `mapstructure:"max_sessions"`
}

// ChartConfig holds price chart configuration.
type ChartConfig struct {
	Path   string `mapstructure:"path"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

// StoreConfig holds tool-call journal configuration.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Console  bool   `mapstructure:"console"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/stock-assistant"
	}
	return filepath.Join(home, ".config", "stock-assistant")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
// A missing config.toml is created from the template and defaults apply.
func Load(configDir string) (*Config, error) {
	cfg, err := LoadWithoutCredentials(configDir)
	if err != nil {
		return nil, err
	}

	key, err := LoadAPIKey(cfg.Credentials.APIKeyFile)
	if err != nil {
		return nil, err
	}
	cfg.APIKey = key

	return cfg, nil
}

// LoadWithoutCredentials loads and validates configuration but skips reading the API key.
// Commands that never talk to the model use it.
func LoadWithoutCredentials(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// A local .env may carry OPENAI_API_KEY and overrides.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, configDir)
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config.toml: %w", err)
		}
	}

	cfg := &Config{Dir: configDir}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("model.name", "gpt-4o-mini")
	v.SetDefault("model.base_url", "")
	v.SetDefault("credentials.api_key_file", "API_KEY")
	v.SetDefault("server.addr", "127.0.0.1:8501")
	v.SetDefault("server.session_ttl", "2h")
	v.SetDefault("server.max_sessions", 1000)
	v.SetDefault("chart.path", "stock_price.png")
	v.SetDefault("chart.width", 1000)
	v.SetDefault("chart.height", 500)
	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", filepath.Join(configDir, "journal.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "stockbot.log"))
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STOCKBOT_MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Model.BaseURL = v
	}
	if v := os.Getenv("STOCKBOT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("STOCKBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// LoadAPIKey reads the model API key. OPENAI_API_KEY wins over the key file;
// the key file holds the secret as its only content.
func LoadAPIKey(path string) (string, error) {
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		return v, nil
	}
	if path == "" {
		return "", fmt.Errorf("%w: no key file configured and OPENAI_API_KEY unset", apperrors.ErrMissingAPIKey)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", apperrors.ErrMissingAPIKey, path, err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("%w: %s is empty", apperrors.ErrMissingAPIKey, path)
	}
	return key, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model.Name) == "" {
		return fmt.Errorf("%w: model.name is required", apperrors.ErrConfigInvalid)
	}
	if c.Chart.Path == "" {
		return fmt.Errorf("%w: chart.path is required", apperrors.ErrConfigInvalid)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("%w: chart width and height must be positive", apperrors.ErrConfigInvalid)
	}
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("%w: server.addr %q: %v", apperrors.ErrConfigInvalid, c.Server.Addr, err)
	}
	if c.Store.Enabled && c.Store.Path == "" {
		return fmt.Errorf("%w: store.path is required when the store is enabled", apperrors.ErrConfigInvalid)
	}
	return nil
}

// LogConfig converts the logging section for the logging package.
func (c *Config) LogConfig() logging.LogConfig {
	lc := logging.DefaultLogConfig()
	lc.Level = c.Logging.Level
	lc.Console = c.Logging.Console
	lc.File = c.Logging.File
	if c.Logging.FilePath != "" {
		lc.FilePath = c.Logging.FilePath
	}
	return lc
}

// ConfigFile returns the path of config.toml.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.Dir, "config.toml")
}
