// Package config provides YAML-based configuration for the analysis server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no -config flag is given.
const DefaultConfigPath = "config.yaml"

// DefaultAPIKeyEnv names the environment variable holding the model credential.
const DefaultAPIKeyEnv = "GOOGLE_API_KEY"

// AppConfig represents the root configuration structure
type AppConfig struct {
	Env string `yaml:"env"` // "development" | "production"

	Server    ServerConfig    `yaml:"server"`
	Model     ModelConfig     `yaml:"model"`
	Prompt    PromptConfig    `yaml:"prompt"`
	Limits    LimitsConfig    `yaml:"limits"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Advanced  AdvancedConfig  `yaml:"advanced"`

	// APIKey is resolved from the environment, never from the file.
	APIKey string `yaml:"-"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port              int      `yaml:"port"`
	BindAddress       string   `yaml:"bind_address"`
	AllowOrigins      []string `yaml:"allow_origins"`
	ReadTimeout       int      `yaml:"read_timeout_seconds"`
	WriteTimeout      int      `yaml:"write_timeout_seconds"`
	IdleTimeout       int      `yaml:"idle_timeout_seconds"`
	BodyLimit         string   `yaml:"body_limit"`
	EnableCompression bool     `yaml:"enable_compression"`
	CompressionLevel  int      `yaml:"compression_level"`
	// TrustProxyHeaders takes the client IP from X-Forwarded-For. Enable only
	// behind a proxy that overwrites the header.
	TrustProxyHeaders bool     `yaml:"trust_proxy_headers"`
}

// ModelConfig selects the generative model and how to reach it.
type ModelConfig struct {
	Provider       string `yaml:"provider"` // gemini | openai | anthropic
	Name           string `yaml:"name"`
	Endpoint       string `yaml:"endpoint"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxOutputToken int    `yaml:"max_output_tokens"`
}

// PromptConfig points at an optional prompt override file.
type PromptConfig struct {
	Path string `yaml:"path"`
}

// LimitsConfig bounds what a single request may cost. Zero disables a check.
type LimitsConfig struct {
	MaxFiles              int   `yaml:"max_files"`
	MaxFileBytes          int64 `yaml:"max_file_bytes"`
	MaxTextChars          int   `yaml:"max_text_chars"`
	MaxConcurrentAnalyses int64 `yaml:"max_concurrent_analyses"`
}

// RateLimitConfig enables the Redis-backed per-IP limiter when RedisURL is set.
type RateLimitConfig struct {
	RedisURL      string `yaml:"redis_url"`
	Requests      int64  `yaml:"requests"`
	WindowSeconds int    `yaml:"window_seconds"`
}

// AdvancedConfig contains logging options
type AdvancedConfig struct {
	LogLevel             string `yaml:"log_level"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
}

// StartupError reports configuration that must stop the process before it serves.
type StartupError struct {
	Field  string
	Reason string
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Env: "production",
		Server: ServerConfig{
			Port:        8000,
			BindAddress: "0.0.0.0",
			AllowOrigins: []string{
				"http://localhost:3000",
				"https://lex-analytica-app.vercel.app",
			},
			ReadTimeout:       60,
			WriteTimeout:      180,
			IdleTimeout:       120,
			BodyLimit:         "64M",
			EnableCompression: true,
			CompressionLevel:  5,
		},
		Model: ModelConfig{
			Provider:       "gemini",
			Name:           "gemini-1.5-flash-latest",
			APIKeyEnv:      DefaultAPIKeyEnv,
			TimeoutSeconds: 120,
			MaxOutputToken: 8192,
		},
		Limits: LimitsConfig{
			MaxFiles:              20,
			MaxFileBytes:          20 * 1024 * 1024,
			MaxTextChars:          2_000_000,
			MaxConcurrentAnalyses: 8,
		},
		RateLimit: RateLimitConfig{
			Requests:      30,
			WindowSeconds: 60,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file, falling back to defaults
// when the file does not exist, then applies environment overrides.
func LoadConfig(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()
	config.normalize()

	return config, nil
}

// Save writes the configuration as YAML.
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# LexAnalytica backend configuration\n# The model credential is read from the environment variable named in model.api_key_env\n\n")
	if err := os.WriteFile(configPath, append(header, output...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Env = v
	}
	if v := os.Getenv("MODEL_PROVIDER"); v != "" {
		c.Model.Provider = v
	}
	if v := os.Getenv("MODEL_NAME"); v != "" {
		c.Model.Name = v
	}
	if v := os.Getenv("PROMPT_PATH"); v != "" {
		c.Prompt.Path = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RateLimit.RedisURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Advanced.LogLevel = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowOrigins = splitList(v)
	}

	keyEnv := c.Model.APIKeyEnv
	if keyEnv == "" {
		keyEnv = DefaultAPIKeyEnv
	}
	c.APIKey = strings.TrimSpace(os.Getenv(keyEnv))
}

func (c *AppConfig) normalize() {
	c.Model.Provider = strings.ToLower(strings.TrimSpace(c.Model.Provider))
	if c.Model.APIKeyEnv == "" {
		c.Model.APIKeyEnv = DefaultAPIKeyEnv
	}
	c.Server.AllowOrigins = splitList(strings.Join(c.Server.AllowOrigins, ","))
}

// Validate reports the first setting that prevents the server from starting.
func (c *AppConfig) Validate() error {
	if c.APIKey == "" {
		return &StartupError{Field: c.Model.APIKeyEnv, Reason: "environment variable is not set"}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &StartupError{Field: "server.port", Reason: fmt.Sprintf("out of range: %d", c.Server.Port)}
	}
	if c.Model.Provider == "" {
		return &StartupError{Field: "model.provider", Reason: "must not be empty"}
	}
	if c.Limits.MaxFiles < 0 || c.Limits.MaxFileBytes < 0 || c.Limits.MaxTextChars < 0 || c.Limits.MaxConcurrentAnalyses < 0 {
		return &StartupError{Field: "limits", Reason: "limits must not be negative"}
	}
	return nil
}

// IsDevelopment reports whether verbose error details and console logs are wanted.
func (c *AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
