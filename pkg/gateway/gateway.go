// Package gateway provides the model gateway client used to generate turn
// responses. It speaks the OpenAI-compatible chat completions API over SSE
// and normalizes provider output into an ordered event stream.
//
// A turn performs exactly one Generate call. Tool results are folded back
// into the same invocation through Stream.SubmitToolResult; callers never
// re-invoke the gateway to continue a turn.
//
// Example usage:
//
//	client, _ := gateway.NewClient(
//	    gateway.WithAPIKey(os.Getenv("OPENROUTER_API_KEY")),
//	    gateway.WithModel("meta-llama/llama-3-70b-instruct"),
//	)
//	defer client.Close()
//
//	stream, _ := client.Generate(ctx, &gateway.Request{
//	    Messages: []gateway.Message{gateway.NewUserMessage("go to the kitchen")},
//	    Tools:    table.Specs(),
//	})
//	defer stream.Close()
package gateway

import "context"

// Provider is the model gateway interface. One Generate call covers a whole
// turn, including any tool-call continuations.
type Provider interface {
	// Generate opens one generation pass for a turn.
	Generate(ctx context.Context, req *Request) (Stream, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// Stream is the ordered event stream of one generation pass.
type Stream interface {
	// Recv returns the next event. The stream ends with exactly one
	// EventCompleted; Recv must not be called after that.
	Recv() (*Event, error)

	// SubmitToolResult folds a tool result into the ongoing pass. The stream
	// resumes producing events once results for all outstanding tool calls
	// of the current step have been submitted.
	SubmitToolResult(call ToolCall, result string) error

	// Close stops the stream and releases resources.
	Close() error
}

// EventType discriminates stream events.
type EventType int

const (
	// EventDelta carries one incremental piece of output text.
	EventDelta EventType = iota

	// EventToolCall requests execution of one tool. The caller must submit
	// a result via SubmitToolResult before the stream continues.
	EventToolCall

	// EventCompleted terminates the stream. When the provider returned a
	// final blob without streaming any deltas, Output carries that text.
	EventCompleted
)

// Event is one element of a generation stream.
type Event struct {
	Type EventType

	// Delta is the incremental text for EventDelta.
	Delta string

	// ToolCall is set for EventToolCall.
	ToolCall *ToolCall

	// Output is the completion payload for EventCompleted. Empty when the
	// response was streamed incrementally.
	Output string

	// FinishReason reports why generation stopped (stop, length, tool_calls).
	FinishReason string
}

// Request for one generation pass.
type Request struct {
	// Messages is the conversation history including the current input.
	Messages []Message

	// Model overrides the client's default model.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int

	// Temperature controls randomness (0.0-2.0).
	Temperature float64

	// Tools available for the model to call.
	Tools []Tool
}

// Role defines message roles in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a chat message in a conversation.
type Message struct {
	// Role identifies the message sender.
	Role Role

	// Content is the text content of the message.
	Content string

	// ToolCalls are tool invocations requested by the assistant.
	ToolCalls []ToolCall

	// ToolCallID identifies which tool call this message responds to.
	ToolCallID string
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	// ID uniquely identifies this tool call within the pass.
	ID string

	// Name of the tool to execute.
	Name string

	// Arguments parsed from the model's JSON argument payload.
	Arguments map[string]any
}

// Tool describes a callable tool advertised to the model.
type Tool struct {
	// Name of the tool.
	Name string

	// Description explains what the tool does.
	Description string

	// Parameters as JSON Schema.
	Parameters map[string]any
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewToolMessage creates a tool result message.
func NewToolMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, ToolCallID: toolCallID, Content: content}
}
