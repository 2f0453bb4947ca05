package config

// Config represents the application configuration
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Panel    PanelConfig    `mapstructure:"panel"`

	NodesFile    string `mapstructure:"nodes_file"`
	LocalesFile  string `mapstructure:"locales_file"`
	SettingsFile string `mapstructure:"settings_file"`
	LogLevel     string `mapstructure:"log_level"`
}

// TelegramConfig holds the Telegram bot configuration
type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	AdminUserID int64  `mapstructure:"admin_user_id"`
}

// PanelConfig holds the panel API configuration
type PanelConfig struct {
	URL      string `mapstructure:"url"`
	APIToken string `mapstructure:"api_token"`
}
