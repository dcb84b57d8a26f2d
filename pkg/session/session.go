// Package session multiplexes one duplex WebSocket per client onto the
// transcription stream and the turn executor. Each session owns its
// conversation state, serializes every outbound event through a single
// writer, and admits at most one running turn at a time.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/teslashibe/go-convai/pkg/agent"
	"github.com/teslashibe/go-convai/pkg/protocol"
	"github.com/teslashibe/go-convai/pkg/transcribe"
)

// Sink is the outbound write target, normally the client's websocket.
type Sink interface {
	WriteJSON(v any) error
}

// Session is one client connection and its conversation state.
type Session struct {
	// ID uniquely identifies the session for its lifetime.
	ID string

	executor *agent.Executor
	stt      *transcribe.Manager
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	outbound   chan any
	writerDone chan struct{}

	sendMu sync.Mutex
	closed bool

	mu          sync.Mutex
	turnRunning bool
	turnCancel  context.CancelFunc
	transcriber transcribe.Transcriber
	sttStopped  bool
}

func newSession(id string, executor *agent.Executor, stt *transcribe.Manager, sink Sink, cfg *Config) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		ID:         id,
		executor:   executor,
		stt:        stt,
		logger:     cfg.Logger.With("component", "session", "session_id", id),
		ctx:        ctx,
		cancel:     cancel,
		outbound:   make(chan any, cfg.OutboundBuffer),
		writerDone: make(chan struct{}),
	}

	go s.writeLoop(sink)
	s.send(protocol.NewConnection(id))
	return s
}

// writeLoop is the session's single writer. Every outbound event passes
// through here, so events are delivered in the order they were produced.
func (s *Session) writeLoop(sink Sink) {
	defer close(s.writerDone)
	for msg := range s.outbound {
		if err := sink.WriteJSON(msg); err != nil {
			s.logger.Debug("outbound write failed", "error", err)
		}
	}
}

// send queues one outbound event. Events are dropped once the session is
// closed, or if the client stops draining and the queue fills.
func (s *Session) send(msg any) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.outbound <- msg:
	default:
		s.logger.Warn("outbound queue full, dropping event")
	}
}

// Dispatch routes one inbound frame. Binary frames are audio; text frames
// are JSON messages classified by their "type" field.
func (s *Session) Dispatch(data []byte, binary bool) error {
	s.sendMu.Lock()
	closed := s.closed
	s.sendMu.Unlock()
	if closed {
		return ErrClosed
	}

	if binary {
		s.handleAudio(data)
		return nil
	}

	msgType, err := protocol.Classify(data)
	if err != nil {
		s.logger.Warn("unparseable inbound message", "error", err)
		s.send(protocol.NewError("Invalid JSON format"))
		return nil
	}

	switch msgType {
	case protocol.TypeText:
		msg, err := protocol.ParseText(data)
		if err != nil {
			s.send(protocol.NewError("Invalid JSON format"))
			return nil
		}
		s.beginTurn(msg.Content)

	case protocol.TypeControl:
		msg, err := protocol.ParseControl(data)
		if err != nil {
			s.send(protocol.NewError("Invalid JSON format"))
			return nil
		}
		s.handleControl(msg.Command)

	default:
		s.logger.Warn("unknown message type", "type", string(msgType))
	}
	return nil
}

// handleAudio forwards one audio frame to the transcription stream. The
// stream starts lazily on the first frame; frames arriving after an
// explicit stop are dropped.
func (s *Session) handleAudio(data []byte) {
	s.mu.Lock()
	t := s.transcriber
	stopped := s.sttStopped
	s.mu.Unlock()

	if t == nil {
		if stopped {
			s.logger.Warn("audio frame after stop, dropping", "bytes", len(data))
			return
		}
		var err error
		t, err = s.startSTT()
		if err != nil {
			s.logger.Error("starting transcription failed", "error", err)
			s.send(protocol.NewError("Audio processing error: " + err.Error()))
			return
		}
	}

	if err := t.PushAudio(data); err != nil {
		s.logger.Error("pushing audio failed", "error", err)
		s.send(protocol.NewError("Audio processing error: " + err.Error()))
	}
}

// startSTT ensures the session has a running transcription stream.
func (s *Session) startSTT() (transcribe.Transcriber, error) {
	s.mu.Lock()
	if s.transcriber != nil {
		t := s.transcriber
		s.mu.Unlock()
		return t, nil
	}
	s.mu.Unlock()

	t := s.stt.Create(s.ID)
	t.OnTranscript(s.onTranscript)
	t.OnError(s.onTranscribeError)

	if err := t.Start(s.ctx); err != nil && !errors.Is(err, transcribe.ErrAlreadyStarted) {
		s.stt.Remove(s.ID)
		return nil, err
	}

	s.mu.Lock()
	s.transcriber = t
	s.sttStopped = false
	s.mu.Unlock()

	s.logger.Info("transcription started")
	return t, nil
}

// stopSTT tears down the transcription stream. Idempotent.
func (s *Session) stopSTT() {
	s.mu.Lock()
	t := s.transcriber
	s.transcriber = nil
	s.sttStopped = true
	s.mu.Unlock()

	if t != nil {
		s.stt.Remove(s.ID)
		s.logger.Info("transcription stopped")
	}
}

// onTranscript republishes provider transcripts. A final transcript is a
// turn input, exactly like a typed text message.
func (s *Session) onTranscript(text string, final bool) {
	s.send(protocol.NewTranscript(text, final))
	if final {
		s.beginTurn(text)
	}
}

func (s *Session) onTranscribeError(err error) {
	s.send(protocol.NewError("Transcription error: " + err.Error()))
}

// beginTurn admits one turn input. Input arriving while a turn is running
// is rejected with a busy status, never queued.
func (s *Session) beginTurn(input string) {
	s.mu.Lock()
	if s.turnRunning {
		s.mu.Unlock()
		s.logger.Info("turn rejected, agent busy")
		s.send(protocol.NewAgentStatus(protocol.StatusBusy))
		return
	}
	s.turnRunning = true
	turnCtx, cancel := context.WithCancel(s.ctx)
	s.turnCancel = cancel
	s.mu.Unlock()

	go s.runTurn(turnCtx, cancel, input)
}

func (s *Session) runTurn(ctx context.Context, cancel context.CancelFunc, input string) {
	defer func() {
		cancel()
		s.mu.Lock()
		s.turnRunning = false
		s.turnCancel = nil
		s.mu.Unlock()
	}()

	s.send(protocol.NewAgentStatus(protocol.StatusProcessing))

	result, err := s.executor.RunTurn(ctx, input, func(chunk string) {
		s.send(protocol.NewAgentChunk(chunk))
	})
	if err != nil {
		// Cancelled. Chunks already delivered stand; nothing further for
		// this turn reaches the client.
		s.logger.Info("turn cancelled", "error", err)
		return
	}

	if result.Failed() {
		s.send(protocol.NewError(failureMessage(result)))
		return
	}
	s.send(protocol.NewAgentFinal(result.Output))
}

// handleControl applies a control command. Control never touches the turn
// executor directly.
func (s *Session) handleControl(command string) {
	switch command {
	case protocol.CommandStartSTT:
		if _, err := s.startSTT(); err != nil {
			s.logger.Error("start_stt failed", "error", err)
			s.send(protocol.NewError("Control command error: " + err.Error()))
			return
		}
		s.send(protocol.NewControlAck(protocol.ControlSTTStarted))

	case protocol.CommandStopSTT:
		s.stopSTT()
		s.send(protocol.NewControlAck(protocol.ControlSTTStopped))

	case protocol.CommandResetConversation:
		s.reset()
		s.send(protocol.NewControlAck(protocol.ControlConversationReset))

	default:
		s.logger.Warn("unknown control command", "command", command)
		s.send(protocol.NewError("Unknown control command: " + command))
	}
}

// reset cancels the in-flight turn, stops transcription, and clears the
// conversation history.
func (s *Session) reset() {
	s.mu.Lock()
	cancel := s.turnCancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	s.stopSTT()
	s.executor.Reset()
	s.logger.Info("session reset")
}

// TurnRunning reports whether a turn is in flight.
func (s *Session) TurnRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnRunning
}

// History returns the session's conversation history.
func (s *Session) History() *agent.History {
	return s.executor.History()
}

// Close cancels the in-flight turn, stops transcription, and shuts down
// the writer. Idempotent.
func (s *Session) Close() error {
	s.sendMu.Lock()
	if s.closed {
		s.sendMu.Unlock()
		return nil
	}
	s.closed = true
	s.sendMu.Unlock()

	s.cancel()
	s.stopSTT()
	close(s.outbound)
	<-s.writerDone

	s.logger.Info("session closed")
	return nil
}

// failureMessage maps a failed turn to the client-facing error text.
func failureMessage(r *agent.TurnResult) string {
	switch r.Reason {
	case agent.ReasonTimeout:
		return "Agent processing timed out"
	case agent.ReasonGatewayUnavailable:
		return "Model gateway unavailable"
	}
	if r.Err != nil {
		return "Agent processing error: " + r.Err.Error()
	}
	return "Agent processing error"
}
