package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all AI Usage Tracker configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Tracker TrackerConfig `mapstructure:"tracker"`
	Server  ServerConfig  `mapstructure:"server"`
	Alerts  AlertsConfig  `mapstructure:"alerts"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, file or memory
	Path   string `mapstructure:"path"`
}

// TrackerConfig defines accounting behaviour.
type TrackerConfig struct {
	Timezone           string  `mapstructure:"timezone"`
	RequireDescription bool    `mapstructure:"require_description"`
	AverageWindow      int     `mapstructure:"average_window"`
	AlertThresholdPct  float64 `mapstructure:"alert_threshold_pct"`
}

// ServerConfig defines the local dashboard API.
type ServerConfig struct {
	Listen       string `mapstructure:"listen"`
	Watch        bool   `mapstructure:"watch"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// AlertsConfig defines alerting integrations.
type AlertsConfig struct {
	Slack   SlackConfig   `mapstructure:"slack"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	Desktop DesktopConfig `mapstructure:"desktop"`
}

// DesktopConfig toggles native desktop notifications.
type DesktopConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SlackConfig defines Slack webhook settings.
type SlackConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Secret  string `mapstructure:"secret"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Location resolves the configured timezone. Empty or "Local" means the system zone.
func (c TrackerConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads configuration from a .env file, the config file and environment variables.
func Load(cfgFile string) (*Config, error) {
	// Existing environment variables win over .env entries.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".aut"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", filepath.Join(home, ".aut", "tracker.db"))
	v.SetDefault("tracker.timezone", "Local")
	v.SetDefault("tracker.require_description", true)
	v.SetDefault("tracker.average_window", 14)
	v.SetDefault("tracker.alert_threshold_pct", 80.0)
	v.SetDefault("server.listen", "127.0.0.1:8787")
	v.SetDefault("server.watch", true)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("alerts.slack.channel", "#ai-usage")

	// Environment variables
	v.SetEnvPrefix("AUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "sqlite", "file", "memory":
	default:
		return fmt.Errorf("storage.driver %q: must be sqlite, file or memory", c.Storage.Driver)
	}
	if c.Tracker.AverageWindow <= 0 {
		return fmt.Errorf("tracker.average_window must be positive, got %d", c.Tracker.AverageWindow)
	}
	if _, err := c.Tracker.Location(); err != nil {
		return err
	}
	return nil
}
