// Package tools maintains the dispatch table for assistant tool calls.
// The table is the single source of truth: the set advertised to the model,
// argument validation, execution, and result formatting all derive from the
// same entries, so the three can never drift apart.
package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teslashibe/go-convai/pkg/gateway"
	"github.com/teslashibe/go-convai/pkg/nav"
)

// Spec is one tool entry: its advertised schema plus its binding.
type Spec struct {
	// Name is the tool name the model calls.
	Name string

	// Description tells the model what the tool does.
	Description string

	// Parameters holds the JSON schema properties for the arguments.
	Parameters map[string]any

	// Required lists the argument names that must be present.
	Required []string

	run    func(ctx context.Context, backend nav.Backend, args map[string]any) (any, error)
	format func(raw any) string
}

// Table is the dispatch table bound to a navigation back-end.
type Table struct {
	backend nav.Backend
	specs   map[string]*Spec
	order   []string
	logger  *slog.Logger
}

// TableOption configures the table.
type TableOption func(*Table)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) TableOption {
	return func(t *Table) {
		t.logger = logger
	}
}

// NewTable builds the dispatch table over the given back-end.
func NewTable(backend nav.Backend, opts ...TableOption) *Table {
	t := &Table{
		backend: backend,
		specs:   make(map[string]*Spec),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("component", "tools.table")

	for _, spec := range navSpecs() {
		t.register(spec)
	}
	return t
}

func (t *Table) register(spec *Spec) {
	if _, exists := t.specs[spec.Name]; exists {
		panic(fmt.Sprintf("tools: duplicate tool %q", spec.Name))
	}
	t.specs[spec.Name] = spec
	t.order = append(t.order, spec.Name)
}

// Resolve looks up a tool by name.
func (t *Table) Resolve(name string) (*Spec, error) {
	spec, ok := t.specs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return spec, nil
}

// Validate checks args against the tool's parameter schema. Arguments not
// in the schema are ignored.
func (t *Table) Validate(name string, args map[string]any) error {
	spec, err := t.Resolve(name)
	if err != nil {
		return err
	}

	for _, req := range spec.Required {
		if _, ok := args[req]; !ok {
			return fmt.Errorf("%w: %s: missing required argument %q", ErrParamsInvalid, name, req)
		}
	}

	for key, value := range args {
		prop, ok := spec.Parameters[key].(map[string]any)
		if !ok {
			continue
		}
		want, _ := prop["type"].(string)
		if want == "" {
			continue
		}
		if !typeMatches(want, value) {
			return fmt.Errorf("%w: %s: argument %q must be %s", ErrParamsInvalid, name, key, want)
		}
	}
	return nil
}

// Execute validates and runs a tool exactly once, returning the formatted
// result text.
func (t *Table) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	spec, err := t.Resolve(name)
	if err != nil {
		return "", err
	}
	if err := t.Validate(name, args); err != nil {
		return "", err
	}

	t.logger.Debug("executing tool", "tool", name)
	raw, err := spec.run(ctx, t.backend, args)
	if err != nil {
		t.logger.Warn("tool execution failed", "tool", name, "error", err)
		return "", err
	}
	return spec.format(raw), nil
}

// Format renders a tool's raw result as the text handed back to the
// model. Formatting is only reachable for registered tools, so an unknown
// name is a programming error and panics.
func (t *Table) Format(name string, raw any) string {
	spec, ok := t.specs[name]
	if !ok {
		panic(fmt.Sprintf("tools: format for unknown tool %q", name))
	}
	return spec.format(raw)
}

// Specs projects the table into the form advertised to the model. The
// advertised set is always exactly the table's contents, in registration
// order.
func (t *Table) Specs() []gateway.Tool {
	out := make([]gateway.Tool, 0, len(t.order))
	for _, name := range t.order {
		spec := t.specs[name]
		out = append(out, gateway.Tool{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters: map[string]any{
				"type":       "object",
				"properties": spec.Parameters,
				"required":   requiredOrEmpty(spec.Required),
			},
		})
	}
	return out
}

// Names returns the tool names in registration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func requiredOrEmpty(required []string) []string {
	if required == nil {
		return []string{}
	}
	return required
}

// typeMatches checks one value against a JSON schema type name. Decoded
// JSON numbers arrive as float64; integers are accepted for "number" too.
func typeMatches(want string, value any) bool {
	switch want {
	case "number":
		switch value.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	}
	return true
}
