package transcribe

import (
	"context"
	"sync"
)

// Mock implements Transcriber for testing. Tests feed transcripts in with
// EmitTranscript and inspect pushed audio.
type Mock struct {
	// StartErr, when set, is returned by Start.
	StartErr error

	mu           sync.Mutex
	state        State
	pushed       [][]byte
	startCalls   int
	stopCalls    int
	onTranscript func(text string, final bool)
	onError      func(err error)
}

// NewMockTranscriber creates a mock in NotStarted.
func NewMockTranscriber() *Mock {
	return &Mock{state: StateNotStarted}
}

// Start moves the mock to Streaming.
func (m *Mock) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.startCalls++
	if m.StartErr != nil {
		return m.StartErr
	}
	switch m.state {
	case StateStopped:
		return ErrStopped
	case StateStreaming:
		return ErrAlreadyStarted
	}
	m.state = StateStreaming
	return nil
}

// PushAudio records the frame when streaming; otherwise drops it.
func (m *Mock) PushAudio(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateStreaming {
		return nil
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	m.pushed = append(m.pushed, frame)
	return nil
}

// Stop moves the mock to Stopped. Idempotent.
func (m *Mock) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopCalls++
	m.state = StateStopped
	return nil
}

// State returns the current state.
func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnTranscript registers the transcript callback.
func (m *Mock) OnTranscript(fn func(text string, final bool)) {
	m.mu.Lock()
	m.onTranscript = fn
	m.mu.Unlock()
}

// OnError registers the error callback.
func (m *Mock) OnError(fn func(err error)) {
	m.mu.Lock()
	m.onError = fn
	m.mu.Unlock()
}

// EmitTranscript invokes the registered transcript callback.
func (m *Mock) EmitTranscript(text string, final bool) {
	m.mu.Lock()
	fn := m.onTranscript
	m.mu.Unlock()
	if fn != nil {
		fn(text, final)
	}
}

// EmitError invokes the registered error callback.
func (m *Mock) EmitError(err error) {
	m.mu.Lock()
	fn := m.onError
	m.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// Pushed returns the recorded audio frames.
func (m *Mock) Pushed() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.pushed))
	copy(out, m.pushed)
	return out
}

// StartCalls returns how many times Start was invoked.
func (m *Mock) StartCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startCalls
}

// StopCalls returns how many times Stop was invoked.
func (m *Mock) StopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalls
}

// Verify Mock implements Transcriber at compile time.
var _ Transcriber = (*Mock)(nil)
