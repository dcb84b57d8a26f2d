package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("ASSEMBLYAI_API_KEY", "aai-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.Port != DefaultPort {
		t.Errorf("Port = %q", s.Port)
	}
	if s.GatewayBaseURL != DefaultGatewayBaseURL {
		t.Errorf("GatewayBaseURL = %q", s.GatewayBaseURL)
	}
	if s.GatewayModel != DefaultGatewayModel {
		t.Errorf("GatewayModel = %q", s.GatewayModel)
	}
	if s.STTHost != DefaultSTTHost {
		t.Errorf("STTHost = %q", s.STTHost)
	}
	if s.STTSampleRate != DefaultSTTSampleRate {
		t.Errorf("STTSampleRate = %d", s.STTSampleRate)
	}
	if s.TurnTimeout != DefaultTurnTimeout {
		t.Errorf("TurnTimeout = %v", s.TurnTimeout)
	}
	if s.NavBridgeAddr != "" {
		t.Errorf("NavBridgeAddr = %q", s.NavBridgeAddr)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("OPENROUTER_MODEL", "meta-llama/llama-3-8b-instruct")
	t.Setenv("ASSEMBLYAI_SAMPLE_RATE", "8000")
	t.Setenv("TURN_TIMEOUT", "90s")
	t.Setenv("NAV_BRIDGE_ADDR", "http://localhost:5000")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.Port != "9000" {
		t.Errorf("Port = %q", s.Port)
	}
	if s.GatewayModel != "meta-llama/llama-3-8b-instruct" {
		t.Errorf("GatewayModel = %q", s.GatewayModel)
	}
	if s.STTSampleRate != 8000 {
		t.Errorf("STTSampleRate = %d", s.STTSampleRate)
	}
	if s.TurnTimeout != 90*time.Second {
		t.Errorf("TurnTimeout = %v", s.TurnTimeout)
	}
	if s.NavBridgeAddr != "http://localhost:5000" {
		t.Errorf("NavBridgeAddr = %q", s.NavBridgeAddr)
	}
}

func TestLoadMissingKeys(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("ASSEMBLYAI_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error for missing keys")
	}
	if !strings.Contains(err.Error(), "OPENROUTER_API_KEY") ||
		!strings.Contains(err.Error(), "ASSEMBLYAI_API_KEY") {
		t.Errorf("error should name every missing key: %v", err)
	}
}

func TestLoadBadSampleRate(t *testing.T) {
	setRequired(t)
	t.Setenv("ASSEMBLYAI_SAMPLE_RATE", "fast")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-numeric sample rate")
	}
}

func TestLoadBadTurnTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("TURN_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unparseable timeout")
	}
}
