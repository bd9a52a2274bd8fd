// Package config holds the service configuration loaded from yaml. Secrets
// (API keys, DATABASE_URL) stay in the environment; the yaml file only
// carries non-sensitive wiring.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"stockval/pkg/core/llm"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	DataSource DataSourceConfig `yaml:"data_source"`
	LLM        llm.Config       `yaml:"llm"`
}

type ServerConfig struct {
	Addr              string `yaml:"addr"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type DataSourceConfig struct {
	// Provider is "alpha_vantage", "yahoo", or "both" (Alpha Vantage
	// statements with a Yahoo snapshot fallback).
	Provider        string `yaml:"provider"`
	AlphaVantageURL string `yaml:"alpha_vantage_url"`
	// APIKeyEnv names the environment variable holding the Alpha Vantage
	// key; the key itself never lives in the file.
	APIKeyEnv     string `yaml:"api_key_env"`
	CacheDir      string `yaml:"cache_dir"`
	CacheTTLHours int    `yaml:"cache_ttl_hours"`
}

// CacheTTL returns the cache freshness window.
func (d DataSourceConfig) CacheTTL() time.Duration {
	return time.Duration(d.CacheTTLHours) * time.Hour
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			RequestsPerMinute: 60,
		},
		DataSource: DataSourceConfig{
			Provider:        "both",
			AlphaVantageURL: "https://www.alphavantage.co/query",
			APIKeyEnv:       "ALPHA_VANTAGE_API_KEY",
			CacheDir:        ".cache/statements",
			CacheTTLHours:   24,
		},
		LLM: llm.Config{
			ActiveProvider: "gemini",
			Tasks: map[string]llm.TaskConfig{
				"ticker_lookup": {Model: "gemini-2.0-flash"},
				"narrative":     {Model: "gemini-2.0-flash"},
			},
		},
	}
}

// Load reads the yaml config at path, layered over defaults. A missing file
// is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.RequestsPerMinute <= 0 {
		cfg.Server.RequestsPerMinute = 60
	}
	if cfg.DataSource.CacheTTLHours <= 0 {
		cfg.DataSource.CacheTTLHours = 24
	}
	return cfg, nil
}

// APIKey resolves the Alpha Vantage key from the configured env variable.
func (d DataSourceConfig) APIKey() string {
	return os.Getenv(d.APIKeyEnv)
}
