// Package config provides configuration management for kinoteka using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jmylchreest/kinoteka/internal/urlutil"
)

// Default configuration values.
const (
	defaultCatalogURL          = "http://localhost:8000/api"
	defaultPerPage             = 20
	defaultCatalogTimeout      = 15 * time.Second
	defaultRetryAttempts       = 2
	defaultRetryDelay          = 500 * time.Millisecond
	defaultCircuitThreshold    = 5
	defaultCircuitTimeout      = 30 * time.Second
	defaultMaxResponseSize     = 8 * 1024 * 1024 // 8MB
	defaultDebounce            = 300 * time.Millisecond
	defaultYearDisplayLimit    = 15
	defaultMinYear             = 1900
	defaultPageSiblings        = 2
	defaultServerPort          = 8090
	defaultServerTimeout       = 30 * time.Second
	defaultShutdownTimeout     = 10 * time.Second
	maxPerPage                 = 100
	maxPort                    = 65535
	earliestSupportedMinYear   = 1870
	defaultConfigName          = "config"
	defaultConfigNameDotfile   = ".kinoteka"
	envPrefix                  = "KINOTEKA"
)

// Config holds all configuration for the application.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog" yaml:"catalog"`
	Listing ListingConfig `mapstructure:"listing" yaml:"listing"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// CatalogConfig holds the backend catalog API configuration.
type CatalogConfig struct {
	BaseURL          string        `mapstructure:"base_url" yaml:"base_url"`
	Token            string        `mapstructure:"token" yaml:"token"`
	PerPage          int           `mapstructure:"per_page" yaml:"per_page"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RetryAttempts    int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	RetryDelay       time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	CircuitThreshold int           `mapstructure:"circuit_threshold" yaml:"circuit_threshold"`
	CircuitTimeout   time.Duration `mapstructure:"circuit_timeout" yaml:"circuit_timeout"`
	MaxResponseSize  int64         `mapstructure:"max_response_size" yaml:"max_response_size"` // bytes, 0 = unlimited
}

// ListingConfig holds listing page behaviour.
type ListingConfig struct {
	Debounce         time.Duration `mapstructure:"debounce" yaml:"debounce"` // 0 commits text immediately
	YearDisplayLimit int           `mapstructure:"year_display_limit" yaml:"year_display_limit"`
	MinYear          int           `mapstructure:"min_year" yaml:"min_year"`
	PageSiblings     int           `mapstructure:"page_siblings" yaml:"page_siblings"`
}

// ServerConfig holds HTTP gateway configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`   // trace, debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source" yaml:"add_source"`
	TimeFormat string `mapstructure:"time_format" yaml:"time_format"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with KINOTEKA_ and use underscores for nesting.
// Example: KINOTEKA_CATALOG_BASE_URL=http://kino.local/api.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/kinoteka")
		v.AddConfigPath("/etc/kinoteka")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if configPath == "" {
			if err := readDotfile(v); err != nil {
				return nil, err
			}
		}
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

// readDotfile falls back to ~/.kinoteka.yaml when no config.yaml exists.
func readDotfile(v *viper.Viper) error {
	v.SetConfigName(defaultConfigNameDotfile)
	v.AddConfigPath("$HOME")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	// Catalog defaults
	v.SetDefault("catalog.base_url", defaultCatalogURL)
	v.SetDefault("catalog.token", "")
	v.SetDefault("catalog.per_page", defaultPerPage)
	v.SetDefault("catalog.timeout", defaultCatalogTimeout)
	v.SetDefault("catalog.retry_attempts", defaultRetryAttempts)
	v.SetDefault("catalog.retry_delay", defaultRetryDelay)
	v.SetDefault("catalog.circuit_threshold", defaultCircuitThreshold)
	v.SetDefault("catalog.circuit_timeout", defaultCircuitTimeout)
	v.SetDefault("catalog.max_response_size", defaultMaxResponseSize)

	// Listing defaults
	v.SetDefault("listing.debounce", defaultDebounce)
	v.SetDefault("listing.year_display_limit", defaultYearDisplayLimit)
	v.SetDefault("listing.min_year", defaultMinYear)
	v.SetDefault("listing.page_siblings", defaultPageSiblings)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Catalog validation
	if err := urlutil.ValidateBaseURL(c.Catalog.BaseURL); err != nil {
		return fmt.Errorf("catalog.base_url: %w", err)
	}
	if c.Catalog.PerPage < 1 || c.Catalog.PerPage > maxPerPage {
		return fmt.Errorf("catalog.per_page must be between 1 and %d", maxPerPage)
	}
	if c.Catalog.Timeout < 0 {
		return fmt.Errorf("catalog.timeout must not be negative")
	}
	if c.Catalog.RetryAttempts < 0 {
		return fmt.Errorf("catalog.retry_attempts must not be negative")
	}
	if c.Catalog.CircuitThreshold < 1 {
		return fmt.Errorf("catalog.circuit_threshold must be at least 1")
	}
	if c.Catalog.MaxResponseSize < 0 {
		return fmt.Errorf("catalog.max_response_size must not be negative")
	}

	// Listing validation
	if c.Listing.Debounce < 0 {
		return fmt.Errorf("listing.debounce must not be negative")
	}
	if c.Listing.YearDisplayLimit < 1 {
		return fmt.Errorf("listing.year_display_limit must be at least 1")
	}
	if c.Listing.MinYear < earliestSupportedMinYear || c.Listing.MinYear > time.Now().Year() {
		return fmt.Errorf("listing.min_year must be between %d and the current year", earliestSupportedMinYear)
	}
	if c.Listing.PageSiblings < 0 {
		return fmt.Errorf("listing.page_siblings must not be negative")
	}

	// Server validation
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	// Logging validation
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
