package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Session is a live transcription stream over the provider's websocket.
// It moves NotStarted to Streaming to Stopped and never backwards; audio
// pushed outside Streaming is dropped with a warning rather than failed,
// since frames race control messages on a live connection.
type Session struct {
	config *Config
	logger *slog.Logger

	mu    sync.Mutex
	state State
	conn  *websocket.Conn

	writeMu sync.Mutex

	cbMu         sync.RWMutex
	onTranscript func(text string, final bool)
	onError      func(err error)
}

// NewSession creates a transcription session.
func NewSession(opts ...Option) *Session {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Session{
		config: cfg,
		logger: cfg.Logger.With("component", "transcribe.session"),
		state:  StateNotStarted,
	}
}

// OnTranscript registers the transcript callback.
func (s *Session) OnTranscript(fn func(text string, final bool)) {
	s.cbMu.Lock()
	s.onTranscript = fn
	s.cbMu.Unlock()
}

// OnError registers the error callback.
func (s *Session) OnError(fn func(err error)) {
	s.cbMu.Lock()
	s.onError = fn
	s.cbMu.Unlock()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start dials the provider and begins streaming.
func (s *Session) Start(ctx context.Context) error {
	if s.config.APIKey == "" {
		return ErrNoAPIKey
	}

	s.mu.Lock()
	switch s.state {
	case StateStopped:
		s.mu.Unlock()
		return ErrStopped
	case StateStreaming:
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.mu.Unlock()

	scheme, host := "wss", s.config.Host
	if h, ok := strings.CutPrefix(host, "ws://"); ok {
		scheme, host = "ws", h
	}
	u := url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   "/v3/ws",
	}
	q := u.Query()
	q.Set("sample_rate", strconv.Itoa(s.config.SampleRate))
	q.Set("format_turns", strconv.FormatBool(s.config.FormatTurns))
	u.RawQuery = q.Encode()

	header := map[string][]string{
		"Authorization": {s.config.APIKey},
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: s.config.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return fmt.Errorf("transcribe: connect: %w", err)
	}

	s.mu.Lock()
	if s.state != StateNotStarted {
		// Stopped while dialing.
		state := s.state
		s.mu.Unlock()
		conn.Close()
		if state == StateStopped {
			return ErrStopped
		}
		return ErrAlreadyStarted
	}
	s.conn = conn
	s.state = StateStreaming
	s.mu.Unlock()

	s.logger.Info("transcription stream started",
		"host", s.config.Host,
		"sample_rate", s.config.SampleRate)

	go s.readLoop(conn)
	return nil
}

// PushAudio forwards one PCM frame to the provider. Outside Streaming the
// frame is dropped with a warning.
func (s *Session) PushAudio(data []byte) error {
	s.mu.Lock()
	state := s.state
	conn := s.conn
	s.mu.Unlock()

	if state != StateStreaming {
		s.logger.Warn("dropping audio frame", "state", state.String(), "bytes", len(data))
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("transcribe: send audio: %w", err)
	}
	return nil
}

// Stop terminates the stream. Idempotent; safe in any state.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return nil
	}
	conn := s.conn
	s.state = StateStopped
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	s.writeMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	err := conn.WriteJSON(map[string]string{"type": "Terminate"})
	s.writeMu.Unlock()
	if err != nil {
		s.logger.Debug("terminate message failed", "error", err)
	}

	s.logger.Info("transcription stream stopped")
	return conn.Close()
}

// readLoop consumes provider events until the stream ends.
func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if s.State() != StateStopped {
				s.emitError(fmt.Errorf("transcribe: read: %w", err))
				s.Stop()
			}
			return
		}

		var event providerEvent
		if err := json.Unmarshal(data, &event); err != nil {
			s.logger.Debug("skipping malformed event", "error", err)
			continue
		}

		switch event.Type {
		case "Begin":
			s.logger.Info("transcription session began", "id", event.ID)

		case "Turn":
			if event.Transcript != "" {
				s.emitTranscript(event.Transcript, event.EndOfTurn)
			}
			// Final turns that came back unformatted get a formatting
			// request for subsequent turns.
			if event.EndOfTurn && !event.TurnIsFormatted && s.config.FormatTurns {
				s.updateParams(conn)
			}

		case "Termination":
			s.logger.Info("transcription session terminated",
				"audio_seconds", event.AudioDurationSeconds)
			s.Stop()
			return

		case "Error":
			s.emitError(&ProviderError{Code: event.Code, Message: event.Error})

		default:
			if event.Error != "" {
				s.emitError(&ProviderError{Code: event.Code, Message: event.Error})
			}
		}
	}
}

func (s *Session) updateParams(conn *websocket.Conn) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	msg := map[string]any{
		"type":         "UpdateConfiguration",
		"format_turns": true,
	}
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Debug("update configuration failed", "error", err)
	}
}

func (s *Session) emitTranscript(text string, final bool) {
	s.cbMu.RLock()
	fn := s.onTranscript
	s.cbMu.RUnlock()
	if fn != nil {
		fn(text, final)
	}
}

func (s *Session) emitError(err error) {
	s.logger.Error("transcription error", "error", err)

	s.cbMu.RLock()
	fn := s.onError
	s.cbMu.RUnlock()
	if fn != nil {
		fn(err)
	}
}

// providerEvent is the provider's websocket event envelope.
type providerEvent struct {
	Type                 string  `json:"type"`
	ID                   string  `json:"id"`
	Transcript           string  `json:"transcript"`
	EndOfTurn            bool    `json:"end_of_turn"`
	TurnIsFormatted      bool    `json:"turn_is_formatted"`
	AudioDurationSeconds float64 `json:"audio_duration_seconds"`
	Error                string  `json:"error"`
	Code                 int     `json:"code"`
}

// Verify Session implements Transcriber at compile time.
var _ Transcriber = (*Session)(nil)
