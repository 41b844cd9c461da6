package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config maps the entire application configuration.
type Config struct {
	// Server holds the HTTP server settings.
	Server struct {
		Port    int    `mapstructure:"port"`     // HTTP server port
		BaseURL string `mapstructure:"base_url"` // Base URL used when rendering short links
	} `mapstructure:"server"`

	// Database holds the SQLite settings.
	Database struct {
		Name string `mapstructure:"name"` // SQLite database file name
	} `mapstructure:"database"`

	// Slug holds validation bounds and the narrower auto-generation bounds.
	Slug struct {
		MinLength     int `mapstructure:"min_length"`      // Minimum accepted slug length
		MaxLength     int `mapstructure:"max_length"`      // Maximum accepted slug length
		AutoMinLength int `mapstructure:"auto_min_length"` // Minimum length of generated slugs
		AutoMaxLength int `mapstructure:"auto_max_length"` // Maximum length of generated slugs
	} `mapstructure:"slug"`

	// Analytics configures the asynchronous click pipeline.
	Analytics struct {
		BufferSize  int `mapstructure:"buffer_size"`  // Click event channel buffer size
		WorkerCount int `mapstructure:"worker_count"` // Number of click worker goroutines
	} `mapstructure:"analytics"`

	// GeoIP configures the outbound country-lookup collaborator.
	GeoIP struct {
		Endpoint       string `mapstructure:"endpoint"`        // Base URL of the JSON geo API
		TimeoutSeconds int    `mapstructure:"timeout_seconds"` // Per-lookup timeout
	} `mapstructure:"geoip"`

	// Monitor configures destination health checking.
	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"` // Minutes between destination checks
	} `mapstructure:"monitor"`
}

// LoadConfig loads the application configuration using Viper.
// Values come from ./configs/config.yaml when present, with environment
// variable overrides (SERVER_PORT, SLUG_MIN_LENGTH, ...) and defaults for
// every key so the binary runs with no config file at all.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("database.name", "links.db")
	viper.SetDefault("slug.min_length", 4)
	viper.SetDefault("slug.max_length", 20)
	viper.SetDefault("slug.auto_min_length", 4)
	viper.SetDefault("slug.auto_max_length", 6)
	viper.SetDefault("analytics.buffer_size", 1000)
	viper.SetDefault("analytics.worker_count", 5)
	viper.SetDefault("geoip.endpoint", "http://ip-api.com/json")
	viper.SetDefault("geoip.timeout_seconds", 2)
	viper.SetDefault("monitor.interval_minutes", 5)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Info().Msg("Config file not found, using default values")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	log.Info().
		Int("port", cfg.Server.Port).
		Str("db", cfg.Database.Name).
		Int("click_buffer", cfg.Analytics.BufferSize).
		Int("click_workers", cfg.Analytics.WorkerCount).
		Msg("Configuration loaded")

	return &cfg, nil
}
