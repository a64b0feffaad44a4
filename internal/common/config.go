// Package common provides shared utilities for StockMind
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Analyze failure policies
const (
	PolicyDegrade  = "degrade"
	PolicyFailFast = "fail_fast"
)

// Config holds all configuration for StockMind
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Clients     ClientsConfig `toml:"clients"`
	Analyze     AnalyzeConfig `toml:"analyze"`
	Alerts      AlertsConfig  `toml:"alerts"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD        EODHDConfig        `toml:"eodhd"`
	AlphaVantage AlphaVantageConfig `toml:"alphavantage"`
	Wikipedia    WikipediaConfig    `toml:"wikipedia"`
	Gemini       GeminiConfig       `toml:"gemini"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"` // requests per second, 0 = unlimited
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// AlphaVantageConfig holds Alpha Vantage symbol search configuration
type AlphaVantageConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *AlphaVantageConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 3*time.Second)
}

// WikipediaConfig holds Wikipedia API configuration
type WikipediaConfig struct {
	BaseURL   string `toml:"base_url"`
	UserAgent string `toml:"user_agent"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *WikipediaConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the generation timeout
func (c *GeminiConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// AnalyzeConfig controls the analyze pipeline
type AnalyzeConfig struct {
	Policy         string `toml:"policy"` // "degrade" or "fail_fast"
	TopCompetitors int    `toml:"top_competitors"`
}

// AlertsConfig controls the background alert checker
type AlertsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Interval  string `toml:"interval"`
	RSIPeriod int    `toml:"rsi_period"`
}

// GetInterval parses and returns the check interval
func (c *AlertsConfig) GetInterval() time.Duration {
	return parseDuration(c.Interval, 2*time.Minute)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"` // "console" or "json"
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL: "https://eodhd.com/api",
				Timeout: "30s",
			},
			AlphaVantage: AlphaVantageConfig{
				BaseURL: "https://www.alphavantage.co/query",
				Timeout: "3s",
			},
			Wikipedia: WikipediaConfig{
				BaseURL:   "https://en.wikipedia.org",
				UserAgent: "StockMind/1.0 (https://github.com/bobmcallan/stockmind)",
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model:   "gemini-2.0-flash",
				Timeout: "30s",
			},
		},
		Analyze: AnalyzeConfig{
			Policy:         PolicyDegrade,
			TopCompetitors: 3,
		},
		Alerts: AlertsConfig{
			Enabled:   true,
			Interval:  "2m",
			RSIPeriod: 14,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Format:  "console",
			Outputs: []string{"console"},
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validatePolicy(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STOCKMIND_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("STOCKMIND_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("STOCKMIND_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("STOCKMIND_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if policy := os.Getenv("STOCKMIND_ANALYZE_POLICY"); policy != "" {
		config.Analyze.Policy = policy
	}

	if interval := os.Getenv("STOCKMIND_ALERT_INTERVAL"); interval != "" {
		config.Alerts.Interval = interval
	}

	if v := os.Getenv("STOCKMIND_ALERTS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Alerts.Enabled = b
		}
	}
}

// validatePolicy normalises the analyze policy, defaulting to degrade.
func validatePolicy(config *Config) {
	p := strings.ToLower(strings.TrimSpace(config.Analyze.Policy))
	p = strings.ReplaceAll(p, "-", "_")
	if p != PolicyFailFast {
		p = PolicyDegrade
	}
	config.Analyze.Policy = p

	if config.Analyze.TopCompetitors <= 0 {
		config.Analyze.TopCompetitors = 3
	}
	if config.Alerts.RSIPeriod <= 0 {
		config.Alerts.RSIPeriod = 14
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from the environment, then the configured fallback.
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"eodhd_api_key":         {"EODHD_API_KEY", "STOCKMIND_EODHD_API_KEY"},
		"alpha_vantage_api_key": {"ALPHA_VANTAGE_API_KEY", "STOCKMIND_ALPHA_VANTAGE_API_KEY"},
		"gemini_api_key":        {"GEMINI_API_KEY", "STOCKMIND_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}
