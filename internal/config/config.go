package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("DISCORD_TOKEN is not set")

// Config holds all configuration for the application.
// Values are read by viper from a config file or environment variables.
type Config struct {
	DiscordToken string        `mapstructure:"DISCORD_TOKEN"`
	SpacerPath   string        `mapstructure:"SPACER_PATH"`
	LogLevel     string        `mapstructure:"LOG_LEVEL"`
	LedgerTTL    time.Duration `mapstructure:"LEDGER_TTL"`
	LinkHost     string        `mapstructure:"LINK_HOST"`
}

// LoadConfig reads configuration from config.yaml in path, overridden by
// environment variables.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Env-only keys are invisible to Unmarshal unless viper knows them.
	v.SetDefault("DISCORD_TOKEN", "")
	v.SetDefault("SPACER_PATH", "assets/spacer.png")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LEDGER_TTL", "24h")
	v.SetDefault("LINK_HOST", "twitter.com")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, the environment may carry everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if config.DiscordToken == "" {
		return Config{}, ErrMissingToken
	}
	if config.LedgerTTL <= 0 {
		return Config{}, fmt.Errorf("LEDGER_TTL must be positive, got %s", config.LedgerTTL)
	}

	return config, nil
}
