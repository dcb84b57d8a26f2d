package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// sseStream implements Stream over SSE chat completion responses.
//
// When the model requests tool calls, the stream pauses after emitting one
// EventToolCall per call. Once results for all of them have been submitted,
// it issues a continuation request inside the same pass and resumes reading.
// From the caller's side this is still a single invocation.
type sseStream struct {
	client *Client
	ctx    context.Context

	// Request snapshot, grown by continuations.
	model       string
	messages    []map[string]any
	tools       []map[string]any
	maxTokens   int
	temperature float64

	reader *bufio.Reader
	body   io.ReadCloser

	// Tool-call bookkeeping for the current step.
	partial       map[int]*toolCallBuffer
	pending       []*Event
	awaiting      map[string]*ToolCall
	assistantCall map[string]any
	results       []map[string]any
	flushed       bool

	// blobOutput holds the completion payload when the provider returned a
	// full message instead of deltas.
	blobOutput   string
	finishReason string

	done   bool
	closed bool
}

// toolCallBuffer accumulates streamed tool-call fragments by index.
type toolCallBuffer struct {
	id   string
	name string
	args strings.Builder
}

// open issues the initial request (or a continuation) for the pass.
func (s *sseStream) open() error {
	body, err := s.client.openStream(s.ctx, s.payload())
	if err != nil {
		return err
	}
	s.body = body
	s.reader = bufio.NewReader(body)
	s.partial = make(map[int]*toolCallBuffer)
	s.flushed = false
	return nil
}

func (s *sseStream) payload() map[string]any {
	p := map[string]any{
		"model":    s.model,
		"messages": s.messages,
		"stream":   true,
	}
	if s.maxTokens > 0 {
		p["max_tokens"] = s.maxTokens
	}
	if s.temperature > 0 {
		p["temperature"] = s.temperature
	}
	if len(s.tools) > 0 {
		p["tools"] = s.tools
	}
	return p
}

// Recv returns the next stream event.
func (s *sseStream) Recv() (*Event, error) {
	if s.closed {
		return nil, ErrStreamClosed
	}
	if s.done {
		return nil, ErrStreamDone
	}
	if len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		return ev, nil
	}
	if len(s.awaiting) > 0 {
		return nil, ErrNoToolPending
	}

	for {
		line, err := s.reader.ReadString('\n')
		if err == io.EOF {
			return s.finishStep()
		}
		if err != nil {
			return nil, fmt.Errorf("gateway: read stream: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return s.finishStep()
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// Skip malformed events
			continue
		}
		if len(event.Choices) == 0 {
			continue
		}

		choice := event.Choices[0]

		// Some providers skip deltas entirely and attach the full message
		// to the final event. Keep it for the completion payload.
		if choice.Message.Content != "" {
			s.blobOutput = choice.Message.Content
		}

		for _, frag := range choice.Delta.ToolCalls {
			s.bufferToolCall(frag)
		}

		if choice.FinishReason != "" {
			s.finishReason = choice.FinishReason
		}

		if choice.FinishReason == "tool_calls" {
			if ev := s.flushToolCalls(); ev != nil {
				return ev, nil
			}
			continue
		}

		if choice.Delta.Content != "" {
			return &Event{Type: EventDelta, Delta: choice.Delta.Content}, nil
		}
	}
}

// finishStep handles end of one SSE body: either the pass is complete, or a
// tool step finished without an explicit finish_reason and still needs
// flushing.
func (s *sseStream) finishStep() (*Event, error) {
	if !s.flushed && len(s.partial) > 0 {
		if ev := s.flushToolCalls(); ev != nil {
			return ev, nil
		}
	}
	s.done = true
	return &Event{
		Type:         EventCompleted,
		Output:       s.blobOutput,
		FinishReason: s.finishReason,
	}, nil
}

func (s *sseStream) bufferToolCall(frag toolCallFragment) {
	buf, ok := s.partial[frag.Index]
	if !ok {
		buf = &toolCallBuffer{}
		s.partial[frag.Index] = buf
	}
	if frag.ID != "" {
		buf.id = frag.ID
	}
	if frag.Function.Name != "" {
		buf.name = frag.Function.Name
	}
	buf.args.WriteString(frag.Function.Arguments)
}

// flushToolCalls converts buffered fragments into EventToolCall events and
// records the assistant tool-call message for the continuation context.
// Returns the first event; the rest are queued.
func (s *sseStream) flushToolCalls() *Event {
	if len(s.partial) == 0 {
		return nil
	}
	s.flushed = true

	indexes := make([]int, 0, len(s.partial))
	for i := range s.partial {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	calls := make([]ToolCall, 0, len(indexes))
	for _, i := range indexes {
		buf := s.partial[i]
		id := buf.id
		if id == "" {
			id = fmt.Sprintf("call_%d", i)
		}
		args := map[string]any{}
		if raw := buf.args.String(); raw != "" {
			// Malformed argument JSON surfaces as an empty record; the
			// dispatch table rejects it during validation.
			_ = json.Unmarshal([]byte(raw), &args)
		}
		calls = append(calls, ToolCall{ID: id, Name: buf.name, Arguments: args})
	}
	s.partial = make(map[int]*toolCallBuffer)

	s.assistantCall = map[string]any{
		"role":       string(RoleAssistant),
		"content":    "",
		"tool_calls": buildToolCallPayload(calls),
	}

	var first *Event
	for i := range calls {
		call := calls[i]
		s.awaiting[call.ID] = &call
		ev := &Event{Type: EventToolCall, ToolCall: &call}
		if first == nil {
			first = ev
		} else {
			s.pending = append(s.pending, ev)
		}
	}
	return first
}

// SubmitToolResult folds one tool result into the pass. When results for all
// outstanding calls are in, the continuation request is issued.
func (s *sseStream) SubmitToolResult(call ToolCall, result string) error {
	if s.closed {
		return ErrStreamClosed
	}
	if _, ok := s.awaiting[call.ID]; !ok {
		return ErrNoToolPending
	}
	delete(s.awaiting, call.ID)
	s.results = append(s.results, map[string]any{
		"role":         string(RoleTool),
		"tool_call_id": call.ID,
		"content":      result,
	})

	if len(s.awaiting) > 0 {
		return nil
	}

	// All results in: continue the same pass with the grown context.
	s.messages = append(s.messages, s.assistantCall)
	s.messages = append(s.messages, s.results...)
	s.assistantCall = nil
	s.results = nil

	s.body.Close()
	return s.open()
}

// Close stops the stream.
func (s *sseStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.body != nil {
		return s.body.Close()
	}
	return nil
}

// streamEvent is the SSE event format.
type streamEvent struct {
	Choices []struct {
		Delta struct {
			Content   string             `json:"content"`
			Role      string             `json:"role"`
			ToolCalls []toolCallFragment `json:"tool_calls"`
		} `json:"delta"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// toolCallFragment is one streamed piece of a tool call.
type toolCallFragment struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}
