// Package config provides configuration loading and validation for the
// talent-sourcer pipeline. Components never read ambient process state;
// every tunable is carried in one explicit Config passed at
// construction.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/talent-sourcer/internal/merge"
	"github.com/jonathan/talent-sourcer/internal/resolve"
)

// Config is the single configuration value handed to each component.
type Config struct {
	// Resolver holds τ and the pairwise field weights. Both are
	// calibration inputs, not authoritative constants.
	Resolver resolve.Config `json:"resolver" validate:"required"`

	// Merger holds the source-authority precedence ranking.
	Merger merge.Config `json:"merger"`

	// PageSize is the default number of match results per page.
	PageSize int `json:"page_size,omitempty" validate:"gte=1,lte=100"`

	// DatabaseURL enables the PostgreSQL persistence boundary when set.
	DatabaseURL string `json:"database_url,omitempty"`

	// APISecret signs bearer tokens for the query API.
	APISecret string `json:"api_secret,omitempty"`

	// Port is the query API listen port.
	Port int `json:"port,omitempty" validate:"gte=0,lte=65535"`

	// LogJSON switches the logger to JSON encoding.
	LogJSON bool `json:"log_json,omitempty"`

	// Debug enables debug-level logging.
	Debug bool `json:"debug,omitempty"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Resolver: resolve.DefaultConfig(),
		Merger:   merge.DefaultConfig(),
		PageSize: 10,
		Port:     8790,
	}
}

// Load reads a JSON config file and fills unset fields from defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return cfg, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = Default().PageSize
	}
	if cfg.Resolver.Threshold == 0 && cfg.Resolver.Weights == (resolve.Weights{}) {
		cfg.Resolver = resolve.DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges and the internal consistency of the
// resolver weights.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	w := c.Resolver.Weights
	if w.Name+w.Handle+w.Topics+w.Affiliation <= 0 {
		return fmt.Errorf("config validation failed: resolver weights must not all be zero")
	}
	if c.Resolver.Threshold < 0 || c.Resolver.Threshold > 1 {
		return fmt.Errorf("config validation failed: threshold must be within [0,1], got %g", c.Resolver.Threshold)
	}
	return nil
}
