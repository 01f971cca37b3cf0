package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Filesystems []string      `mapstructure:"filesystems"`
	History     HistoryConfig `mapstructure:"history"`
	Report      ReportConfig  `mapstructure:"report"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Daemon      DaemonConfig  `mapstructure:"daemon"`
}

// HistoryConfig holds history storage settings.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// ReportConfig holds default report settings.
type ReportConfig struct {
	WindowDays int    `mapstructure:"window_days"`
	Format     string `mapstructure:"format"`
}

// LoggingConfig holds logging-related settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DaemonConfig holds settings for long-lived operation.
type DaemonConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("history.path", "/var/lib/fsgrowth/fsgrowth.db")
	v.SetDefault("report.window_days", 30)
	v.SetDefault("report.format", "text")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("daemon.interval", "24h")
	v.SetDefault("daemon.metrics_addr", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("fsgrowth")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/fsgrowth")
		v.AddConfigPath("$HOME/.config/fsgrowth")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK if using defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.History.Path == "" {
		return fmt.Errorf("history.path is required")
	}

	if c.Report.WindowDays < 1 {
		return fmt.Errorf("report.window_days must be at least 1")
	}

	if c.Report.Format != "text" && c.Report.Format != "json" {
		return fmt.Errorf("report.format must be \"text\" or \"json\"")
	}

	if c.Daemon.Interval < time.Minute {
		return fmt.Errorf("daemon.interval must be at least 1m")
	}

	for i, fs := range c.Filesystems {
		if fs == "" {
			return fmt.Errorf("filesystems[%d] is empty", i)
		}
	}

	return nil
}

// Default returns a default configuration suitable for testing or
// initial setup.
func Default() *Config {
	return &Config{
		History: HistoryConfig{
			Path: "/var/lib/fsgrowth/fsgrowth.db",
		},
		Report: ReportConfig{
			WindowDays: 30,
			Format:     "text",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Daemon: DaemonConfig{
			Interval: 24 * time.Hour,
		},
	}
}
