// Package nav provides navigation back-ends for the assistant's tool layer.
// The Mock back-end simulates a robot moving through a virtual floor plan;
// the HTTP back-end talks to a real navigation bridge.
package nav

import (
	"context"
	"math"
)

// Status is the navigation task state.
type Status string

// Navigation states.
const (
	StatusIdle       Status = "IDLE"
	StatusNavigating Status = "NAVIGATING"
	StatusSucceeded  Status = "SUCCEEDED"
	StatusFailed     Status = "FAILED"
	StatusCanceled   Status = "CANCELED"
)

// Pose is a 2D position with orientation.
type Pose struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Yaw float64 `json:"yaw"`
}

// DistanceTo returns the planar distance to another pose.
func (p Pose) DistanceTo(o Pose) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// YawDegrees returns the orientation in degrees.
func (p Pose) YawDegrees() float64 {
	return p.Yaw * 180 / math.Pi
}

// Result reports the outcome of a single navigation task.
type Result struct {
	Success  bool    `json:"success"`
	Message  string  `json:"message"`
	Location string  `json:"location,omitempty"`
	Distance float64 `json:"distance"`
	Seconds  float64 `json:"seconds"`
}

// WaypointResult reports the outcome of a waypoint run.
type WaypointResult struct {
	Success   bool  `json:"success"`
	Completed []int `json:"completed"`
	Failed    []int `json:"failed"`
	Total     int   `json:"total"`
}

// StatusReport is a snapshot of the navigation state.
type StatusReport struct {
	Status             Status  `json:"status"`
	Current            Pose    `json:"current_pose"`
	Target             *Pose   `json:"target_pose,omitempty"`
	DistanceRemaining  float64 `json:"distance_remaining"`
	NavigationTime     float64 `json:"navigation_time"`
	EstimatedRemaining float64 `json:"estimated_time_remaining"`
	Recoveries         int     `json:"number_of_recoveries"`
	Progress           float64 `json:"progress"`
}

// Backend is the navigation control surface the tool layer drives.
type Backend interface {
	// NavigateToPose drives to the given pose and blocks until the task
	// finishes, is canceled, or ctx expires.
	NavigateToPose(ctx context.Context, target Pose) (*Result, error)

	// NavigateToLocation drives to a named semantic location.
	NavigateToLocation(ctx context.Context, location string) (*Result, error)

	// NavigateWaypoints visits each waypoint in order. With loop set, a
	// failed waypoint does not stop the run.
	NavigateWaypoints(ctx context.Context, waypoints []Pose, loop bool) (*WaypointResult, error)

	// Status returns the current navigation snapshot.
	Status(ctx context.Context) (*StatusReport, error)

	// Cancel aborts the active navigation task, if any.
	Cancel(ctx context.Context) (*Result, error)

	// SemanticLocations returns the known named locations.
	SemanticLocations(ctx context.Context) (map[string]Pose, error)

	// SetInitialPose re-localizes the robot at the given pose.
	SetInitialPose(ctx context.Context, pose Pose) error

	// AddLocation registers a new named location.
	AddLocation(ctx context.Context, name string, pose Pose) error
}
