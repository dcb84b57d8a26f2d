package gateway

import (
	"log/slog"
	"time"
)

// Config holds configuration for the gateway client.
type Config struct {
	// APIKey authenticates against the provider. Optional for local
	// providers like Ollama.
	APIKey string

	// BaseURL is the OpenAI-compatible API root.
	BaseURL string

	// Model is the default model for generation passes.
	Model string

	// MaxTokens limits response length when the request does not set it.
	MaxTokens int

	// Temperature is the default sampling temperature.
	Temperature float64

	// Timeout applies to non-streaming requests (health checks).
	Timeout time.Duration

	// StreamTimeout bounds one whole streaming pass.
	StreamTimeout time.Duration

	// Logger is the structured logger to use.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://openrouter.ai/api/v1",
		Model:         "meta-llama/llama-3-70b-instruct",
		MaxTokens:     2000,
		Temperature:   0.7,
		Timeout:       30 * time.Second,
		StreamTimeout: 5 * time.Minute,
		Logger:        slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithModel sets the default model.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithMaxTokens sets the default maximum response tokens.
func WithMaxTokens(tokens int) Option {
	return func(c *Config) {
		c.MaxTokens = tokens
	}
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(temp float64) Option {
	return func(c *Config) {
		c.Temperature = temp
	}
}

// WithTimeout sets the non-streaming request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithStreamTimeout bounds one whole streaming pass.
func WithStreamTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.StreamTimeout = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
