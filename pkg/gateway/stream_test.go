package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func sseHandler(lines ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "data: %s\n\n", line)
		}
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(
		WithAPIKey("test-key"),
		WithBaseURL(srv.URL),
		WithModel("test-model"),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, srv
}

func TestStreamDeltas(t *testing.T) {
	client, _ := newTestClient(t, sseHandler(
		`{"choices":[{"delta":{"content":"Hel"}}]}`,
		`{"choices":[{"delta":{"content":"lo"}}]}`,
		`{"choices":[{"delta":{},"finish_reason":"stop"}]}`,
		`[DONE]`,
	))

	stream, err := client.Generate(context.Background(), &Request{
		Messages: []Message{NewUserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	defer stream.Close()

	var got string
	for {
		ev, err := stream.Recv()
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if ev.Type == EventCompleted {
			if ev.FinishReason != "stop" {
				t.Errorf("FinishReason = %q", ev.FinishReason)
			}
			if ev.Output != "" {
				t.Errorf("Output = %q, want empty when deltas streamed", ev.Output)
			}
			break
		}
		if ev.Type != EventDelta {
			t.Fatalf("unexpected event type %v", ev.Type)
		}
		got += ev.Delta
	}
	if got != "Hello" {
		t.Errorf("accumulated %q, want %q", got, "Hello")
	}

	if _, err := stream.Recv(); !errors.Is(err, ErrStreamDone) {
		t.Errorf("Recv after completion = %v, want ErrStreamDone", err)
	}
}

func TestStreamZeroChunkBlob(t *testing.T) {
	client, _ := newTestClient(t, sseHandler(
		`{"choices":[{"delta":{},"message":{"content":"done"},"finish_reason":"stop"}]}`,
		`[DONE]`,
	))

	stream, err := client.Generate(context.Background(), &Request{
		Messages: []Message{NewUserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	defer stream.Close()

	ev, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if ev.Type != EventCompleted {
		t.Fatalf("event type = %v, want EventCompleted", ev.Type)
	}
	if ev.Output != "done" {
		t.Errorf("Output = %q, want %q", ev.Output, "done")
	}
}

func TestStreamToolCallContinuation(t *testing.T) {
	var requests atomic.Int32

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		body, _ := io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "text/event-stream")
		if n == 1 {
			fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"call_1\",\"function\":{\"name\":\"navigate_to_location\",\"arguments\":\"{\\\"location\\\":\\\"kitchen\\\"}\"}}]}}]}\n\n")
			fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{},\"finish_reason\":\"tool_calls\"}]}\n\n")
			fmt.Fprint(w, "data: [DONE]\n\n")
			return
		}

		// Continuation must carry the assistant tool call and the result.
		if !strings.Contains(string(body), "tool_call_id") {
			t.Errorf("continuation request missing tool result: %s", body)
		}
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"On my way\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	client, _ := newTestClient(t, handler)

	stream, err := client.Generate(context.Background(), &Request{
		Messages: []Message{NewUserMessage("go to the kitchen")},
		Tools:    []Tool{{Name: "navigate_to_location", Parameters: map[string]any{}}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	defer stream.Close()

	ev, err := stream.Recv()
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if ev.Type != EventToolCall {
		t.Fatalf("event type = %v, want EventToolCall", ev.Type)
	}
	call := ev.ToolCall
	if call.Name != "navigate_to_location" {
		t.Errorf("tool name = %q", call.Name)
	}
	if call.Arguments["location"] != "kitchen" {
		t.Errorf("arguments = %v", call.Arguments)
	}

	// A read before the result is submitted must not advance the stream.
	if _, err := stream.Recv(); !errors.Is(err, ErrNoToolPending) {
		t.Fatalf("Recv with pending tool = %v, want ErrNoToolPending", err)
	}

	if err := stream.SubmitToolResult(*call, "Reached location: kitchen"); err != nil {
		t.Fatalf("SubmitToolResult: %v", err)
	}

	var got string
	for {
		ev, err := stream.Recv()
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if ev.Type == EventCompleted {
			break
		}
		got += ev.Delta
	}
	if got != "On my way" {
		t.Errorf("continuation output = %q", got)
	}
	if requests.Load() != 2 {
		t.Errorf("request count = %d, want 2", requests.Load())
	}
}

func TestSubmitToolResultWithoutPendingCall(t *testing.T) {
	client, _ := newTestClient(t, sseHandler(`[DONE]`))

	stream, err := client.Generate(context.Background(), &Request{
		Messages: []Message{NewUserMessage("hi")},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	defer stream.Close()

	err = stream.SubmitToolResult(ToolCall{ID: "bogus"}, "result")
	if !errors.Is(err, ErrNoToolPending) {
		t.Errorf("got %v, want ErrNoToolPending", err)
	}
}

func TestGenerateAPIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited","code":"429"}}`)
	})
	client, _ := newTestClient(t, handler)

	_, err := client.Generate(context.Background(), &Request{
		Messages: []Message{NewUserMessage("hi")},
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !apiErr.IsRateLimited() || !apiErr.IsRetryable() {
		t.Errorf("unexpected classification: %+v", apiErr)
	}
}

func TestGenerateUnreachable(t *testing.T) {
	client, err := NewClient(WithBaseURL("http://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Generate(context.Background(), &Request{
		Messages: []Message{NewUserMessage("hi")},
	})
	if !IsUnavailable(err) {
		t.Errorf("IsUnavailable = false for %v", err)
	}
}
