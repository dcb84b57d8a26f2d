package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/teslashibe/go-convai/pkg/agent"
	"github.com/teslashibe/go-convai/pkg/gateway"
	"github.com/teslashibe/go-convai/pkg/tools"
	"github.com/teslashibe/go-convai/pkg/transcribe"
)

// Manager owns the session map. The gateway provider, dispatch table, and
// transcription manager are process-wide and shared by reference; each
// session gets its own executor and history.
type Manager struct {
	provider gateway.Provider
	table    *tools.Table
	stt      *transcribe.Manager
	config   *Config
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(provider gateway.Provider, table *tools.Table, stt *transcribe.Manager, opts ...Option) *Manager {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Manager{
		provider: provider,
		table:    table,
		stt:      stt,
		config:   cfg,
		logger:   cfg.Logger.With("component", "session.manager"),
		sessions: make(map[string]*Session),
	}
}

// Open creates a session writing to sink and sends the connection
// greeting.
func (m *Manager) Open(sink Sink) *Session {
	id := uuid.NewString()

	agentOpts := append([]agent.Option{agent.WithLogger(m.config.Logger)}, m.config.AgentOptions...)
	executor := agent.New(m.provider, m.table, agentOpts...)

	s := newSession(id, executor, m.stt, sink, m.config)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.Info("session opened", "session_id", id)
	return s
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Dispatch routes one inbound frame to a session.
func (m *Manager) Dispatch(id string, data []byte, binary bool) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	return s.Dispatch(data, binary)
}

// Close shuts a session down and removes it.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	err := s.Close()
	m.logger.Info("session closed", "session_id", id)
	return err
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown closes every open session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	m.logger.Info("all sessions closed", "count", len(sessions))
}
