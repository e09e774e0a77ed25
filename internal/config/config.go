package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. GDPBOARD_DATA_SOURCE_PATH.
const EnvPrefix = "GDPBOARD"

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Charts    ChartsConfig    `mapstructure:"charts"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DataConfig locates and describes the wide GDP source file
type DataConfig struct {
	SourcePath string        `mapstructure:"source_path"`
	IDColumn   string        `mapstructure:"id_column"`
	Delimiter  string        `mapstructure:"delimiter"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
}

// DashboardConfig holds presentation defaults
type DashboardConfig struct {
	Title            string `mapstructure:"title"`
	DefaultCountries int    `mapstructure:"default_countries"`
	CurrencySymbol   string `mapstructure:"currency_symbol"`
}

// ChartsConfig holds PNG chart dimensions
type ChartsConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from an optional file and environment variables.
// An empty path uses defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Data defaults
	v.SetDefault("data.source_path", "data/gdp_country_2020_2025.csv")
	v.SetDefault("data.id_column", "Country")
	v.SetDefault("data.delimiter", ",")
	v.SetDefault("data.cache_ttl", "1h")

	// Dashboard defaults
	v.SetDefault("dashboard.title", "Global GDP Dashboard")
	v.SetDefault("dashboard.default_countries", 5)
	v.SetDefault("dashboard.currency_symbol", "$")

	// Chart defaults
	v.SetDefault("charts.width", 1024)
	v.SetDefault("charts.height", 576)

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// DelimiterRune returns the configured delimiter as a rune.
func (d DataConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(d.Delimiter)
	if r == utf8.RuneError {
		return ','
	}
	return r
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Data config
	if c.Data.SourcePath == "" {
		return errors.New("data.source_path is required")
	}
	if strings.TrimSpace(c.Data.IDColumn) == "" {
		return errors.New("data.id_column is required")
	}
	if utf8.RuneCountInString(c.Data.Delimiter) != 1 {
		return errors.New("data.delimiter must be a single character")
	}
	if c.Data.CacheTTL < 0 {
		return errors.New("data.cache_ttl must not be negative")
	}

	// Validate Dashboard config
	if c.Dashboard.DefaultCountries < 1 {
		return errors.New("dashboard.default_countries must be at least 1")
	}

	// Validate Charts config
	if c.Charts.Width < 100 || c.Charts.Height < 100 {
		return errors.New("charts.width and charts.height must be at least 100")
	}

	// Validate Server config
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
