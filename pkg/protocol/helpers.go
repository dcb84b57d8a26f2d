package protocol

// Constructors for outbound messages. Keeping these here ensures every
// server→client payload goes through one place with the right "type" field.

// NewConnection builds the greeting sent right after a client connects.
func NewConnection(sessionID string) *ConnectionMessage {
	return &ConnectionMessage{
		Type:      TypeConnection,
		Status:    "connected",
		SessionID: sessionID,
		Message:   "Connected to go-convai session service",
	}
}

// NewTranscript builds a transcript event.
func NewTranscript(text string, isFinal bool) *TranscriptMessage {
	return &TranscriptMessage{Type: TypeTranscript, Text: text, IsFinal: isFinal}
}

// NewAgentStatus builds a turn status event.
func NewAgentStatus(status string) *AgentStatusMessage {
	return &AgentStatusMessage{Type: TypeAgentStatus, Status: status}
}

// NewAgentChunk builds one streamed output chunk.
func NewAgentChunk(chunk string) *AgentResponseMessage {
	return &AgentResponseMessage{Type: TypeAgentResponse, Chunk: chunk, IsStreaming: true}
}

// NewAgentFinal builds the terminal agent_response for a completed turn.
func NewAgentFinal(fullResponse string) *AgentResponseMessage {
	return &AgentResponseMessage{
		Type:         TypeAgentResponse,
		IsStreaming:  false,
		FullResponse: fullResponse,
		Status:       StatusCompleted,
	}
}

// NewError builds a session-scoped error event.
func NewError(message string) *ErrorMessage {
	return &ErrorMessage{Type: TypeError, Message: message}
}

// NewControlAck builds a control command acknowledgement.
func NewControlAck(status string) *ControlAckMessage {
	return &ControlAckMessage{Type: TypeControl, Status: status}
}
