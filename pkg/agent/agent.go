// Package agent runs conversation turns against the model gateway. Each
// executor owns one session's bounded history and drives exactly one
// gateway pass per turn, folding tool results into the same pass.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/go-convai/pkg/gateway"
	"github.com/teslashibe/go-convai/pkg/tools"
)

// Status is the terminal state of a turn.
type Status int

// Turn outcomes.
const (
	StatusCompleted Status = iota
	StatusFailed
)

// Reason classifies a failed turn.
type Reason string

// Failure reasons.
const (
	ReasonGatewayUnavailable Reason = "gateway_unavailable"
	ReasonToolNotFound       Reason = "tool_not_found"
	ReasonToolParamsInvalid  Reason = "tool_params_invalid"
	ReasonTimeout            Reason = "timeout"
)

// TurnResult is the single terminal outcome of a turn.
type TurnResult struct {
	Status Status
	Output string
	Reason Reason
	Err    error
}

// Failed reports whether the turn ended in failure.
func (r *TurnResult) Failed() bool {
	return r.Status == StatusFailed
}

// EmitFunc receives output chunks as they stream in.
type EmitFunc func(chunk string)

// Executor drives turns for one session.
type Executor struct {
	provider gateway.Provider
	table    *tools.Table
	history  *History
	config   *Config
	logger   *slog.Logger
}

// New creates a turn executor over the given provider and dispatch table.
func New(provider gateway.Provider, table *tools.Table, opts ...Option) *Executor {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Executor{
		provider: provider,
		table:    table,
		history:  NewHistory(cfg.MaxHistoryTurns),
		config:   cfg,
		logger:   cfg.Logger.With("component", "agent.executor"),
	}
}

// History returns the session's conversation history.
func (e *Executor) History() *History {
	return e.history
}

// Reset clears the conversation history.
func (e *Executor) Reset() {
	e.history.Reset()
	e.logger.Info("conversation history reset")
}

// recvItem carries one stream read across the watchdog boundary.
type recvItem struct {
	event *gateway.Event
	err   error
}

// RunTurn executes one turn: a single gateway pass whose chunks stream to
// emit and whose terminal outcome is the returned result. Tool calls are
// validated, executed once each, and folded into the same pass. A context
// error means the turn was cancelled and nothing should be delivered.
func (e *Executor) RunTurn(ctx context.Context, input string, emit EmitFunc) (*TurnResult, error) {
	if emit == nil {
		emit = func(string) {}
	}

	messages := make([]gateway.Message, 0, e.history.Len()+2)
	messages = append(messages, gateway.NewSystemMessage(e.config.SystemPrompt))
	messages = append(messages, e.history.Messages()...)
	messages = append(messages, gateway.NewUserMessage(input))

	stream, err := e.provider.Generate(ctx, &gateway.Request{
		Messages: messages,
		Tools:    e.table.Specs(),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Error("gateway invocation failed", "error", err)
		return &TurnResult{Status: StatusFailed, Reason: ReasonGatewayUnavailable, Err: err}, nil
	}
	defer stream.Close()

	// The reader goroutine feeds events through a channel so the watchdog
	// can fire while Recv blocks. After a tool call it waits on resume so
	// it never reads past an unanswered call.
	events := make(chan recvItem)
	resume := make(chan struct{})
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(events)
		for {
			ev, err := stream.Recv()
			select {
			case events <- recvItem{event: ev, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
			switch ev.Type {
			case gateway.EventCompleted:
				return
			case gateway.EventToolCall:
				select {
				case <-resume:
				case <-done:
					return
				}
			}
		}
	}()

	var accumulator string
	watchdog := time.NewTimer(e.config.IdleTimeout)
	defer watchdog.Stop()

	// resetWatchdog drains a fired timer so a stale expiration cannot
	// surface after progress was made.
	resetWatchdog := func() {
		if !watchdog.Stop() {
			select {
			case <-watchdog.C:
			default:
			}
		}
		watchdog.Reset(e.config.IdleTimeout)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-watchdog.C:
			e.logger.Warn("turn made no progress within idle timeout",
				"timeout", e.config.IdleTimeout)
			return &TurnResult{Status: StatusFailed, Reason: ReasonTimeout}, nil

		case item, ok := <-events:
			if !ok {
				// Reader exited without a completion event.
				return &TurnResult{Status: StatusFailed, Reason: ReasonGatewayUnavailable}, nil
			}
			if item.err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				e.logger.Error("gateway stream failed", "error", item.err)
				return &TurnResult{Status: StatusFailed, Reason: ReasonGatewayUnavailable, Err: item.err}, nil
			}

			resetWatchdog()

			switch item.event.Type {
			case gateway.EventDelta:
				accumulator += item.event.Delta
				emit(item.event.Delta)

			case gateway.EventToolCall:
				result, failed := e.executeTool(ctx, *item.event.ToolCall)
				if failed != nil {
					return failed, nil
				}
				if err := stream.SubmitToolResult(*item.event.ToolCall, result); err != nil {
					if ctx.Err() != nil {
						return nil, ctx.Err()
					}
					e.logger.Error("tool result submission failed", "error", err)
					return &TurnResult{Status: StatusFailed, Reason: ReasonGatewayUnavailable, Err: err}, nil
				}
				// Tool execution counts as progress. The timer may have
				// fired while the tool ran; the watchdog only measures
				// waiting on the gateway.
				resetWatchdog()
				select {
				case resume <- struct{}{}:
				case <-ctx.Done():
					return nil, ctx.Err()
				}

			case gateway.EventCompleted:
				output := accumulator
				if output == "" {
					// Zero-chunk pass: the completion event carries the
					// whole response.
					output = item.event.Output
				}
				e.history.Append(input, output)
				e.logger.Info("turn completed",
					"chunks_streamed", accumulator != "",
					"output_len", len(output))
				return &TurnResult{Status: StatusCompleted, Output: output}, nil
			}
		}
	}
}

// executeTool validates and runs one tool call. Validation failures end
// the turn; execution failures are folded back to the model as text so it
// can recover in the same pass.
func (e *Executor) executeTool(ctx context.Context, call gateway.ToolCall) (string, *TurnResult) {
	e.logger.Info("tool call requested", "tool", call.Name)

	out, err := e.table.Execute(ctx, call.Name, call.Arguments)
	switch {
	case errors.Is(err, tools.ErrNotFound):
		e.logger.Warn("unknown tool requested", "tool", call.Name)
		return "", &TurnResult{Status: StatusFailed, Reason: ReasonToolNotFound, Err: err}
	case errors.Is(err, tools.ErrParamsInvalid):
		e.logger.Warn("tool arguments rejected", "tool", call.Name, "error", err)
		return "", &TurnResult{Status: StatusFailed, Reason: ReasonToolParamsInvalid, Err: err}
	case err != nil:
		return fmt.Sprintf("Error executing %s: %v", call.Name, err), nil
	}
	return out, nil
}
