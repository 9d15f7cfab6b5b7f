package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// BackendConfig holds connection settings for the business API.
type BackendConfig struct {
	// BaseURL is the API root, e.g.
	// https://usersfunctions.azurewebsites.net/api.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec is the per-request HTTP timeout.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// Retry controls the bounded-retry policy for idempotent reads.
	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`
}

// RetryConfig is the explicit retry policy applied to checklist and
// route fetches. Mutations are always single-attempt.
type RetryConfig struct {
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`
	BaseDelayMS int `mapstructure:"base_delay_ms" yaml:"base_delay_ms"`
	MaxDelayMS  int `mapstructure:"max_delay_ms" yaml:"max_delay_ms"`
}

// IdentityConfig is the locally stored identity used to build the
// request session.
type IdentityConfig struct {
	BusinessID string `mapstructure:"business_id" yaml:"business_id"`
	Email      string `mapstructure:"email" yaml:"email"`
	UserType   string `mapstructure:"user_type" yaml:"user_type"`
}

// DisplayConfig holds UI and refresh preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// RefreshIntervalSec is the silent background refresh cadence.
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`

	// AutoRefresh disables the background ticker when false.
	AutoRefresh bool `mapstructure:"auto_refresh" yaml:"auto_refresh"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend  BackendConfig  `mapstructure:"backend" yaml:"backend"`
	Identity IdentityConfig `mapstructure:"identity" yaml:"identity"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
}

// DefaultBaseURL is the production business API root.
const DefaultBaseURL = "https://usersfunctions.azurewebsites.net/api"

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/waterdesk/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "waterdesk", "config.yaml")
}

// DefaultDataDir returns the directory holding the local database and
// log file, ~/.local/share/waterdesk.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "waterdesk")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			BaseURL:    DefaultBaseURL,
			TimeoutSec: 30,
			Retry: RetryConfig{
				MaxAttempts: 3,
				BaseDelayMS: 1000,
				MaxDelayMS:  5000,
			},
		},
		Identity: IdentityConfig{
			UserType: UserTypeBusiness,
		},
		Display: DisplayConfig{
			Theme:              "default",
			RefreshIntervalSec: 60,
			AutoRefresh:        true,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default
// configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("backend.base_url", DefaultBaseURL)
	v.SetDefault("backend.timeout_sec", 30)
	v.SetDefault("backend.retry.max_attempts", 3)
	v.SetDefault("backend.retry.base_delay_ms", 1000)
	v.SetDefault("backend.retry.max_delay_ms", 5000)
	v.SetDefault("identity.user_type", UserTypeBusiness)
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.refresh_interval_sec", 60)
	v.SetDefault("display.auto_refresh", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Display.RefreshIntervalSec <= 0 {
		cfg.Display.RefreshIntervalSec = 60
	}
	if cfg.Backend.Retry.MaxAttempts < 1 {
		cfg.Backend.Retry.MaxAttempts = 1
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("identity", cfg.Identity)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
