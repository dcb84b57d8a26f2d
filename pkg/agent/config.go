package agent

import (
	"log/slog"
	"time"
)

// DefaultSystemPrompt frames responses for a voice channel.
const DefaultSystemPrompt = `You are a helpful AI assistant powered by LLAMA 3 70B.
You are part of a multi-agent system that processes voice input from users.

Your role is to:
1. Understand and respond to user queries accurately
2. Provide helpful, relevant, and concise responses
3. Maintain context across the conversation
4. Be friendly and professional

Always respond in a clear and natural way that would work well when read aloud.`

// Config holds configuration for the turn executor.
type Config struct {
	// SystemPrompt is prepended to every generation pass.
	SystemPrompt string

	// IdleTimeout bounds the gap between gateway events. A turn that makes
	// no progress within it fails with ReasonTimeout.
	IdleTimeout time.Duration

	// MaxHistoryTurns bounds the conversation history kept between turns.
	MaxHistoryTurns int

	// Logger is the structured logger to use.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SystemPrompt:    DefaultSystemPrompt,
		IdleTimeout:     60 * time.Second,
		MaxHistoryTurns: 10,
		Logger:          slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Option is a functional option for configuring the executor.
type Option func(*Config)

// WithSystemPrompt sets the system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(c *Config) {
		c.SystemPrompt = prompt
	}
}

// WithIdleTimeout bounds the gap between gateway events.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.IdleTimeout = d
	}
}

// WithMaxHistoryTurns bounds the kept conversation history.
func WithMaxHistoryTurns(turns int) Option {
	return func(c *Config) {
		c.MaxHistoryTurns = turns
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
