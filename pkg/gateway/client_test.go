package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("got %v, want ErrNoAPIKey", err)
	}
}

func TestHealth(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"data":[]}`)
	})
	client, _ := newTestClient(t, handler)

	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestHealthServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client, _ := newTestClient(t, handler)

	err := client.Health(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.IsServerError() {
		t.Errorf("IsServerError = false for %+v", apiErr)
	}
}

func TestBuildMessages(t *testing.T) {
	messages := []Message{
		NewSystemMessage("be helpful"),
		NewUserMessage("hi"),
		NewToolMessage("call_1", "result text"),
	}

	out := buildMessages(messages)
	if len(out) != 3 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0]["role"] != "system" || out[1]["role"] != "user" {
		t.Errorf("roles wrong: %v", out)
	}
	if out[2]["tool_call_id"] != "call_1" {
		t.Errorf("tool message = %v", out[2])
	}
}

func TestBuildTools(t *testing.T) {
	if buildTools(nil) != nil {
		t.Error("empty tool list should build nil")
	}

	out := buildTools([]Tool{{
		Name:        "navigate_to_pose",
		Description: "drive somewhere",
		Parameters:  map[string]any{"type": "object"},
	}})
	if len(out) != 1 {
		t.Fatalf("len = %d", len(out))
	}
	fn, ok := out[0]["function"].(map[string]any)
	if !ok || fn["name"] != "navigate_to_pose" {
		t.Errorf("unexpected payload: %v", out[0])
	}
}

func TestMockProvider(t *testing.T) {
	mock := NewMock(
		&Event{Type: EventDelta, Delta: "hi"},
		&Event{Type: EventCompleted},
	)

	stream, err := mock.Generate(context.Background(), &Request{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	ev, _ := stream.Recv()
	if ev.Type != EventDelta || ev.Delta != "hi" {
		t.Errorf("unexpected event: %+v", ev)
	}
	ev, _ = stream.Recv()
	if ev.Type != EventCompleted {
		t.Errorf("unexpected event: %+v", ev)
	}
	if mock.GenerateCount() != 1 {
		t.Errorf("GenerateCount = %d", mock.GenerateCount())
	}
}

func TestMockStreamToolFlow(t *testing.T) {
	call := &ToolCall{ID: "call_1", Name: "cancel_navigation", Arguments: map[string]any{}}
	stream := NewMockStream(&Event{Type: EventToolCall, ToolCall: call})
	stream.OnToolResult = func(c ToolCall, result string) []*Event {
		return []*Event{{Type: EventDelta, Delta: "ok"}, {Type: EventCompleted}}
	}

	ev, err := stream.Recv()
	if err != nil || ev.Type != EventToolCall {
		t.Fatalf("Recv = %+v, %v", ev, err)
	}
	if err := stream.SubmitToolResult(*call, "canceled"); err != nil {
		t.Fatalf("SubmitToolResult: %v", err)
	}
	if err := stream.SubmitToolResult(*call, "again"); !errors.Is(err, ErrNoToolPending) {
		t.Errorf("second submit = %v, want ErrNoToolPending", err)
	}

	ev, _ = stream.Recv()
	if ev.Type != EventDelta || ev.Delta != "ok" {
		t.Errorf("unexpected event: %+v", ev)
	}
	submitted := stream.Submitted()
	if len(submitted) != 1 || submitted[0].Result != "canceled" {
		t.Errorf("submitted = %+v", submitted)
	}
}
