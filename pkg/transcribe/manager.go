package transcribe

import (
	"log/slog"
	"sync"
)

// Factory builds a fresh transcriber for one client session.
type Factory func() Transcriber

// Manager tracks one transcriber per client session. Sessions are keyed by
// the connection's session ID.
type Manager struct {
	factory Factory
	logger  *slog.Logger

	mu     sync.Mutex
	active map[string]Transcriber
}

// NewManager creates a manager that builds transcribers with the factory.
func NewManager(factory Factory, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		factory: factory,
		logger:  logger.With("component", "transcribe.manager"),
		active:  make(map[string]Transcriber),
	}
}

// Create returns the transcriber for a session, building one if needed.
// An existing transcriber is returned as-is so repeated starts reuse the
// same stream.
func (m *Manager) Create(sessionID string) Transcriber {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.active[sessionID]; ok {
		m.logger.Warn("transcriber already exists", "session_id", sessionID)
		return t
	}

	t := m.factory()
	m.active[sessionID] = t
	m.logger.Info("transcriber created", "session_id", sessionID)
	return t
}

// Get returns the transcriber for a session, or nil.
func (m *Manager) Get(sessionID string) Transcriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[sessionID]
}

// Remove stops and drops a session's transcriber.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	t, ok := m.active[sessionID]
	delete(m.active, sessionID)
	m.mu.Unlock()

	if !ok {
		return
	}
	if err := t.Stop(); err != nil {
		m.logger.Warn("stopping transcriber failed", "session_id", sessionID, "error", err)
	}
	m.logger.Info("transcriber removed", "session_id", sessionID)
}

// Len returns the number of active transcribers.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}
