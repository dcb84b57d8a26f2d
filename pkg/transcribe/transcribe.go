// Package transcribe streams microphone audio to a realtime speech-to-text
// provider and surfaces partial and final transcripts through callbacks.
package transcribe

import "context"

// State is the lifecycle state of a transcription session.
type State int

// Session lifecycle. A session moves forward only: NotStarted to Streaming
// to Stopped.
const (
	StateNotStarted State = iota
	StateStreaming
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateStreaming:
		return "streaming"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Transcriber is a realtime transcription session.
type Transcriber interface {
	// Start opens the provider stream. Calling Start on a session that
	// already left NotStarted returns ErrAlreadyStarted.
	Start(ctx context.Context) error

	// PushAudio forwards one PCM frame. Outside Streaming it is a no-op.
	PushAudio(data []byte) error

	// Stop terminates the stream. Safe to call in any state, any number
	// of times.
	Stop() error

	// State returns the current lifecycle state.
	State() State

	// OnTranscript registers the transcript callback. Partial transcripts
	// arrive with final set to false.
	OnTranscript(fn func(text string, final bool))

	// OnError registers the error callback.
	OnError(fn func(err error))
}
