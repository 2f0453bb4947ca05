package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("NODES_FILE", "nodes.yml")
	v.SetDefault("LOCALES_FILE", "locales.json")
	v.SetDefault("SETTINGS_FILE", "settings.json")

	// Define environment variables
	v.BindEnv("TG_TOKEN")
	v.BindEnv("ADMIN_USER_ID")
	v.BindEnv("PANEL_URL")
	v.BindEnv("PANEL_API_TOKEN")
	v.BindEnv("NODES_FILE")
	v.BindEnv("LOCALES_FILE")
	v.BindEnv("SETTINGS_FILE")
	v.BindEnv("LOG_LEVEL")

	cfg := &Config{
		Telegram: TelegramConfig{
			Token:       strings.TrimSpace(v.GetString("TG_TOKEN")),
			AdminUserID: v.GetInt64("ADMIN_USER_ID"),
		},
		Panel: PanelConfig{
			URL:      strings.TrimRight(strings.TrimSpace(v.GetString("PANEL_URL")), "/"),
			APIToken: strings.TrimSpace(v.GetString("PANEL_API_TOKEN")),
		},
		NodesFile:    v.GetString("NODES_FILE"),
		LocalesFile:  v.GetString("LOCALES_FILE"),
		SettingsFile: v.GetString("SETTINGS_FILE"),
		LogLevel:     v.GetString("LOG_LEVEL"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return errors.New("TG_TOKEN is required")
	}
	if cfg.Telegram.AdminUserID == 0 {
		return errors.New("ADMIN_USER_ID is required")
	}
	if cfg.Panel.URL == "" {
		return errors.New("PANEL_URL is required")
	}
	if cfg.Panel.APIToken == "" {
		return errors.New("PANEL_API_TOKEN is required")
	}
	return nil
}
