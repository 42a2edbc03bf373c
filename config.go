package nbest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape of a client configuration file. Backoff
// values use time.ParseDuration syntax.
type fileConfig struct {
	APIKey    string            `yaml:"api_key"`
	BaseURL   string            `yaml:"base_url"`
	APIPrefix string            `yaml:"api_prefix"`
	Headers   map[string]string `yaml:"headers"`

	MaxRetries int    `yaml:"max_retries"`
	MinBackoff string `yaml:"min_backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadConfig reads a YAML client configuration from disk. The NBEST_API_KEY
// and NBEST_BASE_URL environment variables override file values, so checked-in
// config files need not carry credentials.
func LoadConfig(path string) (Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %q: %w", absPath, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config file %q: %w", absPath, err)
	}

	cfg := Config{
		APIKey:     fc.APIKey,
		BaseURL:    fc.BaseURL,
		APIPrefix:  fc.APIPrefix,
		Headers:    fc.Headers,
		MaxRetries: fc.MaxRetries,
	}

	if fc.MinBackoff != "" {
		d, err := time.ParseDuration(fc.MinBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("min_backoff: %w", err)
		}
		cfg.MinBackoff = d
	}
	if fc.MaxBackoff != "" {
		d, err := time.ParseDuration(fc.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("max_backoff: %w", err)
		}
		cfg.MaxBackoff = d
	}

	if v := os.Getenv("NBEST_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("NBEST_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	return cfg, nil
}
