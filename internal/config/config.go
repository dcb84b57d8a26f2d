// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for optional settings.
const (
	DefaultPort           = "8000"
	DefaultLogLevel       = "info"
	DefaultGatewayBaseURL = "https://openrouter.ai/api/v1"
	DefaultGatewayModel   = "meta-llama/llama-3-70b-instruct"
	DefaultSTTHost        = "streaming.assemblyai.com"
	DefaultSTTSampleRate  = 16000
	DefaultTurnTimeout    = 60 * time.Second
)

// Settings holds all service configuration.
type Settings struct {
	// Port is the HTTP listen port.
	Port string

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string

	// GatewayAPIKey authenticates against the model gateway.
	GatewayAPIKey string

	// GatewayBaseURL is the gateway's OpenAI-compatible API root.
	GatewayBaseURL string

	// GatewayModel is the default generation model.
	GatewayModel string

	// STTAPIKey authenticates against the transcription provider.
	STTAPIKey string

	// STTHost is the transcription provider's streaming host.
	STTHost string

	// STTSampleRate is the PCM sample rate clients stream at.
	STTSampleRate int

	// NavBridgeAddr is the navigation bridge address. Empty selects the
	// built-in simulator.
	NavBridgeAddr string

	// TurnTimeout is the turn idle timeout.
	TurnTimeout time.Duration
}

// Load reads settings from the environment and validates required keys.
func Load() (*Settings, error) {
	s := &Settings{
		Port:           getenv("PORT", DefaultPort),
		LogLevel:       getenv("LOG_LEVEL", DefaultLogLevel),
		GatewayAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		GatewayBaseURL: getenv("OPENROUTER_BASE_URL", DefaultGatewayBaseURL),
		GatewayModel:   getenv("OPENROUTER_MODEL", DefaultGatewayModel),
		STTAPIKey:      os.Getenv("ASSEMBLYAI_API_KEY"),
		STTHost:        getenv("ASSEMBLYAI_API_HOST", DefaultSTTHost),
		STTSampleRate:  DefaultSTTSampleRate,
		NavBridgeAddr:  os.Getenv("NAV_BRIDGE_ADDR"),
		TurnTimeout:    DefaultTurnTimeout,
	}

	if v := os.Getenv("ASSEMBLYAI_SAMPLE_RATE"); v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: ASSEMBLYAI_SAMPLE_RATE: %w", err)
		}
		s.STTSampleRate = rate
	}
	if v := os.Getenv("TURN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: TURN_TIMEOUT: %w", err)
		}
		s.TurnTimeout = d
	}

	var missing []string
	if s.GatewayAPIKey == "" {
		missing = append(missing, "OPENROUTER_API_KEY")
	}
	if s.STTAPIKey == "" {
		missing = append(missing, "ASSEMBLYAI_API_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("config: missing required environment variables: %s",
			strings.Join(missing, ", "))
	}
	return s, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
