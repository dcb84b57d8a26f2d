package agent

import (
	"sync"

	"github.com/teslashibe/go-convai/pkg/gateway"
)

// History is the bounded conversation memory for one session. It keeps the
// most recent turns as user/assistant message pairs.
type History struct {
	mu       sync.Mutex
	messages []gateway.Message
	maxTurns int
}

// NewHistory creates a history bounded to maxTurns turns.
func NewHistory(maxTurns int) *History {
	return &History{maxTurns: maxTurns}
}

// Append records one completed turn.
func (h *History) Append(input, output string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages,
		gateway.NewUserMessage(input),
		gateway.NewAssistantMessage(output),
	)

	// Two messages per turn.
	if max := h.maxTurns * 2; h.maxTurns > 0 && len(h.messages) > max {
		h.messages = h.messages[len(h.messages)-max:]
	}
}

// Messages returns a copy of the kept messages, oldest first.
func (h *History) Messages() []gateway.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]gateway.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of kept messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Reset clears the history.
func (h *History) Reset() {
	h.mu.Lock()
	h.messages = nil
	h.mu.Unlock()
}
