package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/Zachdehooge/teleconnection-dashboard/internal/fetcher"
)

// EnvPrefix prefixes every environment variable, e.g. TELEDASH_FETCH_TIMEOUT
const EnvPrefix = "TELEDASH"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Fetch     FetchConfig      `yaml:"fetch" envconfig:"FETCH"`
	Dashboard DashboardConfig  `yaml:"dashboard" envconfig:"DASHBOARD"`
	Logging   LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Sources   []fetcher.Source `yaml:"sources" ignored:"true" validate:"required,min=1,dive"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr" envconfig:"ADDR" default:":8080" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
}

// FetchConfig contains index download settings
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"10s" validate:"gt=0"`
	UserAgent string        `yaml:"user_agent" envconfig:"USER_AGENT"`
}

// DashboardConfig contains page settings
type DashboardConfig struct {
	// Window is how many of the most recent records each chart shows
	Window int `yaml:"window" envconfig:"WINDOW" default:"90" validate:"min=1"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

// Load reads defaults and TELEDASH_* environment variables, then applies the
// YAML file at path when path is non-empty. Keys set in the file win.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = fetcher.DefaultSources()
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = fetcher.DefaultUserAgent
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile overlays the YAML document onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Sources))
	for _, src := range c.Sources {
		if seen[src.Name] {
			return fmt.Errorf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = true
	}
	return nil
}
