package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/teslashibe/go-convai/pkg/nav"
)

func newTestTable() *Table {
	return NewTable(nav.NewMock(nav.WithTimeScale(0)))
}

func TestResolveKnownAndUnknown(t *testing.T) {
	table := newTestTable()

	spec, err := table.Resolve("navigate_to_location")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if spec.Name != "navigate_to_location" {
		t.Errorf("Name = %q", spec.Name)
	}

	_, err = table.Resolve("teleport")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	table := newTestTable()

	tests := []struct {
		name    string
		tool    string
		args    map[string]any
		wantErr error
	}{
		{"valid location", "navigate_to_location", map[string]any{"location": "kitchen"}, nil},
		{"missing required", "navigate_to_location", map[string]any{}, ErrParamsInvalid},
		{"wrong type", "navigate_to_location", map[string]any{"location": 42.0}, ErrParamsInvalid},
		{"valid pose", "navigate_to_pose", map[string]any{"x": 1.0, "y": 2.0}, nil},
		{"pose missing y", "navigate_to_pose", map[string]any{"x": 1.0}, ErrParamsInvalid},
		{"pose int coordinates accepted", "navigate_to_pose", map[string]any{"x": 1, "y": 2}, nil},
		{"no-arg tool", "cancel_navigation", map[string]any{}, nil},
		{"unknown tool", "teleport", map[string]any{}, ErrNotFound},
		{"waypoints wrong type", "navigate_through_waypoints", map[string]any{"waypoints": "nope"}, ErrParamsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := table.Validate(tt.tool, tt.args)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Every advertised tool must resolve back into the table, and every table
// entry must be advertised. The projection and the executable set are the
// same thing by construction; this guards the construction.
func TestAdvertisedSetMatchesTable(t *testing.T) {
	table := newTestTable()

	specs := table.Specs()
	if len(specs) != len(table.Names()) {
		t.Fatalf("advertised %d tools, table has %d", len(specs), len(table.Names()))
	}

	for _, advertised := range specs {
		spec, err := table.Resolve(advertised.Name)
		if err != nil {
			t.Errorf("advertised tool %q does not resolve: %v", advertised.Name, err)
			continue
		}
		if spec.Description != advertised.Description {
			t.Errorf("description drift for %q", advertised.Name)
		}
		params, ok := advertised.Parameters["properties"].(map[string]any)
		if !ok {
			t.Errorf("advertised %q has no properties object", advertised.Name)
			continue
		}
		if len(params) != len(spec.Parameters) {
			t.Errorf("parameter drift for %q", advertised.Name)
		}
	}
}

func TestFormat(t *testing.T) {
	table := newTestTable()

	out := table.Format("cancel_navigation", &nav.Result{Message: "Navigation canceled"})
	if out != "Navigation canceled" {
		t.Errorf("cancel format = %q", out)
	}

	out = table.Format("navigate_to_pose", &nav.Result{
		Success:  true,
		Message:  "Navigation completed successfully",
		Distance: 5.0,
		Seconds:  10.0,
	})
	if !strings.Contains(out, "Navigation completed") || !strings.Contains(out, "5.00m") {
		t.Errorf("pose format = %q", out)
	}
}

func TestFormatUnknownToolPanics(t *testing.T) {
	table := newTestTable()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown tool")
		}
	}()
	table.Format("teleport", nil)
}

func TestExecuteNavigateToLocation(t *testing.T) {
	table := newTestTable()

	out, err := table.Execute(context.Background(), "navigate_to_location", map[string]any{"location": "kitchen"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "Reached location: kitchen") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestExecuteUnknownLocationIsText(t *testing.T) {
	table := newTestTable()

	out, err := table.Execute(context.Background(), "navigate_to_location", map[string]any{"location": "garage"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "Unknown location: garage") {
		t.Errorf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "kitchen") {
		t.Errorf("available locations missing: %q", out)
	}
}

func TestExecuteRejectsBadArgs(t *testing.T) {
	table := newTestTable()

	_, err := table.Execute(context.Background(), "navigate_to_pose", map[string]any{"x": 1.0})
	if !errors.Is(err, ErrParamsInvalid) {
		t.Errorf("expected ErrParamsInvalid, got %v", err)
	}

	_, err = table.Execute(context.Background(), "teleport", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestExecuteSemanticLocations(t *testing.T) {
	table := newTestTable()

	out, err := table.Execute(context.Background(), "get_semantic_locations", map[string]any{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, name := range []string{"kitchen", "living_room", "bedroom", "charging_station", "door", "window"} {
		if !strings.Contains(out, name) {
			t.Errorf("output missing %q: %q", name, out)
		}
	}
}

func TestExecuteWaypoints(t *testing.T) {
	table := newTestTable()

	args := map[string]any{
		"waypoints": []any{
			map[string]any{"x": 1.0, "y": 1.0},
			map[string]any{"x": 2.0, "y": 0.0, "yaw": 1.57},
		},
	}
	out, err := table.Execute(context.Background(), "navigate_through_waypoints", args)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out, "2/2 completed") {
		t.Errorf("unexpected output: %q", out)
	}

	bad := map[string]any{"waypoints": []any{map[string]any{"x": 1.0}}}
	if _, err := table.Execute(context.Background(), "navigate_through_waypoints", bad); !errors.Is(err, ErrParamsInvalid) {
		t.Errorf("expected ErrParamsInvalid, got %v", err)
	}
}

func TestExecuteStatusAndCancel(t *testing.T) {
	table := newTestTable()

	out, err := table.Execute(context.Background(), "get_navigation_status", map[string]any{})
	if err != nil {
		t.Fatalf("Execute status: %v", err)
	}
	if !strings.Contains(out, "Status: IDLE") {
		t.Errorf("unexpected status output: %q", out)
	}

	out, err = table.Execute(context.Background(), "cancel_navigation", map[string]any{})
	if err != nil {
		t.Fatalf("Execute cancel: %v", err)
	}
	if !strings.Contains(out, "No active navigation") {
		t.Errorf("unexpected cancel output: %q", out)
	}
}
