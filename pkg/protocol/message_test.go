package protocol

import (
	"encoding/json"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    MessageType
		wantErr bool
	}{
		{"text message", `{"type":"text","content":"hello"}`, TypeText, false},
		{"control message", `{"type":"control","command":"start_stt"}`, TypeControl, false},
		{"unknown type passes through", `{"type":"bogus"}`, MessageType("bogus"), false},
		{"missing type", `{"content":"hi"}`, "", true},
		{"invalid json", `{nope`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseText(t *testing.T) {
	msg, err := ParseText([]byte(`{"type":"text","content":"go to the kitchen"}`))
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	if msg.Content != "go to the kitchen" {
		t.Errorf("Content = %q", msg.Content)
	}
}

func TestParseControl(t *testing.T) {
	msg, err := ParseControl([]byte(`{"type":"control","command":"reset_conversation"}`))
	if err != nil {
		t.Fatalf("ParseControl: %v", err)
	}
	if msg.Command != CommandResetConversation {
		t.Errorf("Command = %q", msg.Command)
	}
}

func TestOutboundConstructors(t *testing.T) {
	conn := NewConnection("abc-123")
	if conn.Type != TypeConnection || conn.Status != "connected" || conn.SessionID != "abc-123" {
		t.Errorf("unexpected connection message: %+v", conn)
	}

	tr := NewTranscript("hello", true)
	if tr.Type != TypeTranscript || !tr.IsFinal || tr.Text != "hello" {
		t.Errorf("unexpected transcript message: %+v", tr)
	}

	chunk := NewAgentChunk("hi")
	if chunk.Type != TypeAgentResponse || !chunk.IsStreaming || chunk.Chunk != "hi" {
		t.Errorf("unexpected chunk message: %+v", chunk)
	}

	final := NewAgentFinal("done")
	if final.IsStreaming || final.FullResponse != "done" || final.Status != StatusCompleted {
		t.Errorf("unexpected final message: %+v", final)
	}

	ack := NewControlAck(ControlSTTStarted)
	if ack.Type != TypeControl || ack.Status != ControlSTTStarted {
		t.Errorf("unexpected ack message: %+v", ack)
	}
}

func TestAgentFinalWireFormat(t *testing.T) {
	data, err := json.Marshal(NewAgentFinal("done"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["type"] != "agent_response" {
		t.Errorf("type = %v", decoded["type"])
	}
	if decoded["is_streaming"] != false {
		t.Errorf("is_streaming = %v", decoded["is_streaming"])
	}
	if decoded["full_response"] != "done" {
		t.Errorf("full_response = %v", decoded["full_response"])
	}
	if decoded["status"] != "completed" {
		t.Errorf("status = %v", decoded["status"])
	}
}
