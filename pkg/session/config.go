package session

import (
	"log/slog"

	"github.com/teslashibe/go-convai/pkg/agent"
)

// Config holds configuration for the session manager.
type Config struct {
	// OutboundBuffer is the per-session outbound queue depth.
	OutboundBuffer int

	// AgentOptions configure each session's turn executor.
	AgentOptions []agent.Option

	// Logger is the structured logger to use.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OutboundBuffer: 256,
		Logger:         slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Option is a functional option for configuring the manager.
type Option func(*Config)

// WithOutboundBuffer sets the per-session outbound queue depth.
func WithOutboundBuffer(n int) Option {
	return func(c *Config) {
		c.OutboundBuffer = n
	}
}

// WithAgentOptions configures each session's turn executor.
func WithAgentOptions(opts ...agent.Option) Option {
	return func(c *Config) {
		c.AgentOptions = append(c.AgentOptions, opts...)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
