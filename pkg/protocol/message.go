// Package protocol defines the WebSocket message types exchanged between
// clients and the go-convai session service. Messages are flat JSON objects
// discriminated by a "type" field; raw binary frames carry PCM audio.
package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies the type of a JSON WebSocket message.
type MessageType string

const (
	// Client → Server messages
	TypeText    MessageType = "text"    // User text input
	TypeControl MessageType = "control" // Control command

	// Server → Client messages
	TypeConnection    MessageType = "connection"     // Connection greeting
	TypeTranscript    MessageType = "transcript"     // STT transcript event
	TypeAgentStatus   MessageType = "agent_status"   // Turn lifecycle status
	TypeAgentResponse MessageType = "agent_response" // Model output chunk or final
	TypeError         MessageType = "error"          // Session-scoped error
)

// Control commands accepted from clients.
const (
	CommandStartSTT          = "start_stt"
	CommandStopSTT           = "stop_stt"
	CommandResetConversation = "reset_conversation"
)

// Agent status values.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusBusy       = "busy"
)

// Control acknowledgement statuses sent back to clients.
const (
	ControlSTTStarted        = "stt_started"
	ControlSTTStopped        = "stt_stopped"
	ControlConversationReset = "conversation_reset"
)

// Envelope is the minimal decode target used to classify an inbound JSON
// message before full parsing.
type Envelope struct {
	Type MessageType `json:"type"`
}

// TextMessage is a user text input.
type TextMessage struct {
	Type    MessageType `json:"type"`
	Content string      `json:"content"`
}

// ControlMessage is a client control command.
type ControlMessage struct {
	Type    MessageType `json:"type"`
	Command string      `json:"command"`
}

// ConnectionMessage greets a client after the WebSocket is accepted.
type ConnectionMessage struct {
	Type      MessageType `json:"type"`
	Status    string      `json:"status"`
	SessionID string      `json:"session_id"`
	Message   string      `json:"message,omitempty"`
}

// TranscriptMessage carries an STT transcript event.
// Partial transcripts (IsFinal=false) are superseded by later events.
type TranscriptMessage struct {
	Type    MessageType `json:"type"`
	Text    string      `json:"text"`
	IsFinal bool        `json:"is_final"`
}

// AgentStatusMessage reports turn lifecycle transitions.
type AgentStatusMessage struct {
	Type    MessageType `json:"type"`
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
}

// AgentResponseMessage carries one streamed output chunk, or the terminal
// result of a turn when IsStreaming is false.
type AgentResponseMessage struct {
	Type         MessageType `json:"type"`
	Chunk        string      `json:"chunk"`
	IsStreaming  bool        `json:"is_streaming"`
	FullResponse string      `json:"full_response,omitempty"`
	Status       string      `json:"status,omitempty"`
}

// ErrorMessage reports a session-scoped failure. The connection stays open.
type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// ControlAckMessage acknowledges a control command.
type ControlAckMessage struct {
	Type   MessageType `json:"type"`
	Status string      `json:"status"`
}

// Classify returns the message type of a JSON payload.
func Classify(data []byte) (MessageType, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("protocol: invalid JSON: %w", err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("protocol: missing message type")
	}
	return env.Type, nil
}

// ParseText parses a text input message.
func ParseText(data []byte) (*TextMessage, error) {
	var msg TextMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("protocol: parse text message: %w", err)
	}
	return &msg, nil
}

// ParseControl parses a control command message.
func ParseControl(data []byte) (*ControlMessage, error) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("protocol: parse control message: %w", err)
	}
	return &msg, nil
}
