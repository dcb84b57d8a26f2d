package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/teslashibe/go-convai/pkg/nav"
)

// navSpecs returns the navigation tool entries. Every entry pairs the
// schema the model sees with the binding and formatter that serve it.
func navSpecs() []*Spec {
	return []*Spec{
		{
			Name:        "navigate_to_location",
			Description: "Navigate to a semantic location by name (kitchen, bedroom, living_room, charging_station, door, window)",
			Parameters: map[string]any{
				"location": map[string]any{
					"type":        "string",
					"description": "Location name",
				},
			},
			Required: []string{"location"},
			run:      runNavigateToLocation,
			format:   formatNavigateToLocation,
		},
		{
			Name:        "navigate_to_pose",
			Description: "Navigate robot to a specified pose with coordinates (x, y) and orientation (yaw)",
			Parameters: map[string]any{
				"x": map[string]any{
					"type":        "number",
					"description": "Target X coordinate in meters",
				},
				"y": map[string]any{
					"type":        "number",
					"description": "Target Y coordinate in meters",
				},
				"yaw": map[string]any{
					"type":        "number",
					"description": "Target orientation in radians (optional, default 0.0)",
				},
			},
			Required: []string{"x", "y"},
			run:      runNavigateToPose,
			format:   formatNavigateToPose,
		},
		{
			Name:        "navigate_through_waypoints",
			Description: "Navigate through a sequence of waypoints",
			Parameters: map[string]any{
				"waypoints": map[string]any{
					"type":        "array",
					"description": "List of waypoints",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"x":   map[string]any{"type": "number"},
							"y":   map[string]any{"type": "number"},
							"yaw": map[string]any{"type": "number"},
						},
						"required": []string{"x", "y"},
					},
				},
				"loop": map[string]any{
					"type":        "boolean",
					"description": "Continue past failed waypoints",
				},
			},
			Required: []string{"waypoints"},
			run:      runNavigateWaypoints,
			format:   formatWaypoints,
		},
		{
			Name:        "get_navigation_status",
			Description: "Get current navigation status, including position, target, and progress",
			Parameters:  map[string]any{},
			run:         runGetStatus,
			format:      formatStatus,
		},
		{
			Name:        "cancel_navigation",
			Description: "Cancel the current navigation task",
			Parameters:  map[string]any{},
			run:         runCancel,
			format:      formatCancel,
		},
		{
			Name:        "get_semantic_locations",
			Description: "Get all available semantic locations",
			Parameters:  map[string]any{},
			run:         runGetLocations,
			format:      formatLocations,
		},
		{
			Name:        "set_initial_pose",
			Description: "Set robot initial pose for localization",
			Parameters: map[string]any{
				"x":   map[string]any{"type": "number", "description": "X coordinate"},
				"y":   map[string]any{"type": "number", "description": "Y coordinate"},
				"yaw": map[string]any{"type": "number", "description": "Orientation in radians"},
			},
			Required: []string{"x", "y", "yaw"},
			run:      runSetInitialPose,
			format:   formatInitialPose,
		},
		{
			Name:        "add_semantic_location",
			Description: "Add a new semantic location",
			Parameters: map[string]any{
				"name": map[string]any{"type": "string", "description": "Location name"},
				"x":    map[string]any{"type": "number", "description": "X coordinate"},
				"y":    map[string]any{"type": "number", "description": "Y coordinate"},
				"yaw":  map[string]any{"type": "number", "description": "Orientation in radians (optional)"},
			},
			Required: []string{"name", "x", "y"},
			run:      runAddLocation,
			format:   formatAddLocation,
		},
	}
}

// locationOutcome is the raw result of navigate_to_location. An unknown
// name is an outcome rather than an error: the model recovers by picking
// one of the listed locations.
type locationOutcome struct {
	Location string
	Result   *nav.Result
	Unknown  *nav.UnknownLocationError
}

func runNavigateToLocation(ctx context.Context, backend nav.Backend, args map[string]any) (any, error) {
	location, _ := args["location"].(string)

	result, err := backend.NavigateToLocation(ctx, location)
	var unknown *nav.UnknownLocationError
	if errors.As(err, &unknown) {
		return &locationOutcome{Location: location, Unknown: unknown}, nil
	}
	if err != nil {
		return nil, err
	}
	return &locationOutcome{Location: location, Result: result}, nil
}

func formatNavigateToLocation(raw any) string {
	outcome := raw.(*locationOutcome)
	if outcome.Unknown != nil {
		available := append([]string(nil), outcome.Unknown.Available...)
		sort.Strings(available)
		return fmt.Sprintf("Unknown location: %s\nAvailable locations: %s",
			outcome.Location, strings.Join(available, ", "))
	}

	verb := "Reached"
	if !outcome.Result.Success {
		verb = "Failed to reach"
	}
	return fmt.Sprintf("%s location: %s\nDistance: %.2fm\nTime: %.1fs",
		verb, outcome.Location, outcome.Result.Distance, outcome.Result.Seconds)
}

func runNavigateToPose(ctx context.Context, backend nav.Backend, args map[string]any) (any, error) {
	target := nav.Pose{
		X:   floatArg(args, "x", 0),
		Y:   floatArg(args, "y", 0),
		Yaw: floatArg(args, "yaw", 0),
	}
	return backend.NavigateToPose(ctx, target)
}

func formatNavigateToPose(raw any) string {
	result := raw.(*nav.Result)

	header := "Navigation completed"
	if !result.Success {
		header = "Navigation failed"
	}
	return fmt.Sprintf("%s\nMessage: %s\nDistance: %.2fm\nTime: %.1fs",
		header, result.Message, result.Distance, result.Seconds)
}

func runNavigateWaypoints(ctx context.Context, backend nav.Backend, args map[string]any) (any, error) {
	raw, _ := args["waypoints"].([]any)
	loop, _ := args["loop"].(bool)

	waypoints := make([]nav.Pose, 0, len(raw))
	for i, item := range raw {
		wp, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: waypoint %d is not an object", ErrParamsInvalid, i)
		}
		if _, ok := wp["x"]; !ok {
			return nil, fmt.Errorf("%w: waypoint %d missing x", ErrParamsInvalid, i)
		}
		if _, ok := wp["y"]; !ok {
			return nil, fmt.Errorf("%w: waypoint %d missing y", ErrParamsInvalid, i)
		}
		waypoints = append(waypoints, nav.Pose{
			X:   floatArg(wp, "x", 0),
			Y:   floatArg(wp, "y", 0),
			Yaw: floatArg(wp, "yaw", 0),
		})
	}

	return backend.NavigateWaypoints(ctx, waypoints, loop)
}

func formatWaypoints(raw any) string {
	result := raw.(*nav.WaypointResult)

	status := "Success"
	if !result.Success {
		status = "Partial success"
	}
	return fmt.Sprintf("Waypoint navigation: %d/%d completed\nCompleted: %v\nFailed: %v\nStatus: %s",
		len(result.Completed), result.Total, result.Completed, result.Failed, status)
}

func runGetStatus(ctx context.Context, backend nav.Backend, args map[string]any) (any, error) {
	return backend.Status(ctx)
}

func formatStatus(raw any) string {
	report := raw.(*nav.StatusReport)

	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n", report.Status)
	fmt.Fprintf(&b, "Current position: (%.2f, %.2f)\n", report.Current.X, report.Current.Y)
	fmt.Fprintf(&b, "Orientation: %.1f deg", report.Current.YawDegrees())

	if report.Target != nil {
		fmt.Fprintf(&b, "\nTarget position: (%.2f, %.2f)\n", report.Target.X, report.Target.Y)
		fmt.Fprintf(&b, "Distance remaining: %.2fm\n", report.DistanceRemaining)
		fmt.Fprintf(&b, "Time elapsed: %.1fs\n", report.NavigationTime)
		fmt.Fprintf(&b, "Estimated remaining: %.1fs\n", report.EstimatedRemaining)
		fmt.Fprintf(&b, "Progress: %.1f%%", report.Progress)
	}
	return b.String()
}

func runCancel(ctx context.Context, backend nav.Backend, args map[string]any) (any, error) {
	result, err := backend.Cancel(ctx)
	if errors.Is(err, nav.ErrNoActiveNavigation) {
		return &nav.Result{Success: false, Message: "No active navigation to cancel"}, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func formatCancel(raw any) string {
	return raw.(*nav.Result).Message
}

func runGetLocations(ctx context.Context, backend nav.Backend, args map[string]any) (any, error) {
	return backend.SemanticLocations(ctx)
}

func formatLocations(raw any) string {
	locations := raw.(map[string]nav.Pose)

	names := make([]string, 0, len(locations))
	for name := range locations {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Available semantic locations:\n")
	for _, name := range names {
		pose := locations[name]
		fmt.Fprintf(&b, "  - %s: (%.1f, %.1f), %.0f deg\n", name, pose.X, pose.Y, pose.YawDegrees())
	}
	return strings.TrimRight(b.String(), "\n")
}

func runSetInitialPose(ctx context.Context, backend nav.Backend, args map[string]any) (any, error) {
	pose := nav.Pose{
		X:   floatArg(args, "x", 0),
		Y:   floatArg(args, "y", 0),
		Yaw: floatArg(args, "yaw", 0),
	}
	if err := backend.SetInitialPose(ctx, pose); err != nil {
		return nil, err
	}
	return pose, nil
}

func formatInitialPose(raw any) string {
	pose := raw.(nav.Pose)
	return fmt.Sprintf("Initial pose set to:\nPosition: (%.2f, %.2f)\nOrientation: %.3f rad (%.1f deg)",
		pose.X, pose.Y, pose.Yaw, pose.YawDegrees())
}

// addedLocation is the raw result of add_semantic_location.
type addedLocation struct {
	Name string
	Pose nav.Pose
}

func runAddLocation(ctx context.Context, backend nav.Backend, args map[string]any) (any, error) {
	name, _ := args["name"].(string)
	pose := nav.Pose{
		X:   floatArg(args, "x", 0),
		Y:   floatArg(args, "y", 0),
		Yaw: floatArg(args, "yaw", 0),
	}
	if err := backend.AddLocation(ctx, name, pose); err != nil {
		return nil, err
	}
	return &addedLocation{Name: name, Pose: pose}, nil
}

func formatAddLocation(raw any) string {
	added := raw.(*addedLocation)
	return fmt.Sprintf("Added location %q at (%.2f, %.2f)", added.Name, added.Pose.X, added.Pose.Y)
}

// floatArg reads a numeric argument. Decoded JSON numbers are float64 but
// hand-built argument maps may carry ints.
func floatArg(args map[string]any, key string, def float64) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}
