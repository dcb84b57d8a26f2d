package gateway

import (
	"context"
	"sync"
)

// Mock implements Provider for testing.
type Mock struct {
	// GenerateFunc is called when Generate is invoked. When nil, a stream
	// built from Events is returned.
	GenerateFunc func(ctx context.Context, req *Request) (Stream, error)

	// Events seeds the default scripted stream.
	Events []*Event

	// HealthFunc is called when Health is invoked.
	HealthFunc func(ctx context.Context) error

	mu       sync.Mutex
	requests []*Request
}

// NewMock creates a mock provider that streams the given events.
func NewMock(events ...*Event) *Mock {
	return &Mock{Events: events}
}

// Generate records the request and returns the scripted stream.
func (m *Mock) Generate(ctx context.Context, req *Request) (Stream, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return NewMockStream(m.Events...), nil
}

// Health calls HealthFunc when set.
func (m *Mock) Health(ctx context.Context) error {
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close is a no-op.
func (m *Mock) Close() error { return nil }

// GenerateCount returns how many times Generate was invoked.
func (m *Mock) GenerateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns the recorded generation requests.
func (m *Mock) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// MockStream is a scripted Stream for tests.
type MockStream struct {
	// OnToolResult, when set, returns the events to append after a tool
	// result is submitted. It is given the call and the submitted result.
	OnToolResult func(call ToolCall, result string) []*Event

	mu        sync.Mutex
	events    []*Event
	submitted []SubmittedResult
	awaiting  map[string]bool
	closed    bool
	done      bool
}

// SubmittedResult records one SubmitToolResult invocation.
type SubmittedResult struct {
	Call   ToolCall
	Result string
}

// NewMockStream builds a scripted stream from events.
func NewMockStream(events ...*Event) *MockStream {
	return &MockStream{events: events, awaiting: make(map[string]bool)}
}

// Recv returns the next scripted event.
func (s *MockStream) Recv() (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStreamClosed
	}
	if s.done {
		return nil, ErrStreamDone
	}
	if len(s.events) == 0 {
		s.done = true
		return &Event{Type: EventCompleted}, nil
	}

	ev := s.events[0]
	s.events = s.events[1:]
	switch ev.Type {
	case EventToolCall:
		s.awaiting[ev.ToolCall.ID] = true
	case EventCompleted:
		s.done = true
	}
	return ev, nil
}

// SubmitToolResult records the result and appends any follow-up events.
func (s *MockStream) SubmitToolResult(call ToolCall, result string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStreamClosed
	}
	if !s.awaiting[call.ID] {
		return ErrNoToolPending
	}
	delete(s.awaiting, call.ID)
	s.submitted = append(s.submitted, SubmittedResult{Call: call, Result: result})

	if s.OnToolResult != nil {
		s.events = append(s.events, s.OnToolResult(call, result)...)
	}
	return nil
}

// Submitted returns the recorded tool results.
func (s *MockStream) Submitted() []SubmittedResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SubmittedResult, len(s.submitted))
	copy(out, s.submitted)
	return out
}

// Close marks the stream closed.
func (s *MockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Verify mocks implement the interfaces at compile time.
var (
	_ Provider = (*Mock)(nil)
	_ Stream   = (*MockStream)(nil)
)
