package transcribe

import (
	"log/slog"
	"time"
)

// Config holds configuration for streaming transcription sessions.
type Config struct {
	// APIKey authenticates against the transcription provider.
	APIKey string

	// Host is the streaming API host.
	Host string

	// SampleRate is the PCM sample rate of pushed audio.
	SampleRate int

	// FormatTurns requests formatted (punctuated) final transcripts.
	FormatTurns bool

	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration

	// Logger is the structured logger to use.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:             "streaming.assemblyai.com",
		SampleRate:       16000,
		FormatTurns:      true,
		HandshakeTimeout: 10 * time.Second,
		Logger:           slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Option is a functional option for configuring sessions.
type Option func(*Config)

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithHost sets the streaming API host.
func WithHost(host string) Option {
	return func(c *Config) {
		c.Host = host
	}
}

// WithSampleRate sets the PCM sample rate.
func WithSampleRate(rate int) Option {
	return func(c *Config) {
		c.SampleRate = rate
	}
}

// WithFormatTurns toggles formatted final transcripts.
func WithFormatTurns(on bool) Option {
	return func(c *Config) {
		c.FormatTurns = on
	}
}

// WithHandshakeTimeout bounds the websocket dial.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.HandshakeTimeout = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
