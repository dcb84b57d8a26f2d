package nav

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Mock simulates robot navigation in a virtual floor plan. Movement is
// interpolated over a number of steps so status queries and cancellation
// observe a task in flight.
type Mock struct {
	mu         sync.Mutex
	current    Pose
	target     *Pose
	status     Status
	locations  map[string]Pose
	feedback   StatusReport
	cancelFlag bool

	maxLinearSpeed float64
	steps          int
	timeScale      float64
	logger         *slog.Logger
}

// MockOption configures the mock back-end.
type MockOption func(*Mock)

// WithStartPose sets the initial pose.
func WithStartPose(pose Pose) MockOption {
	return func(m *Mock) {
		m.current = pose
	}
}

// WithTimeScale scales simulated travel time. Zero makes navigation
// complete immediately.
func WithTimeScale(scale float64) MockOption {
	return func(m *Mock) {
		m.timeScale = scale
	}
}

// WithLocations replaces the default semantic location map.
func WithLocations(locations map[string]Pose) MockOption {
	return func(m *Mock) {
		m.locations = locations
	}
}

// WithMockLogger sets the structured logger.
func WithMockLogger(logger *slog.Logger) MockOption {
	return func(m *Mock) {
		m.logger = logger
	}
}

// NewMock creates a mock back-end with the default floor plan.
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		status: StatusIdle,
		locations: map[string]Pose{
			"kitchen":          {X: 2.5, Y: 1.0, Yaw: 0.0},
			"living_room":      {X: 5.0, Y: 3.0, Yaw: 1.57},
			"bedroom":          {X: 3.0, Y: 5.0, Yaw: 3.14},
			"charging_station": {X: 0.0, Y: 0.0, Yaw: 0.0},
			"door":             {X: 1.5, Y: 0.5, Yaw: 1.57},
			"window":           {X: 4.0, Y: 2.0, Yaw: 0.0},
		},
		maxLinearSpeed: 0.5,
		steps:          20,
		timeScale:      1.0,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "nav.mock")
	return m
}

// NavigateToPose drives to the target pose, interpolating over steps.
func (m *Mock) NavigateToPose(ctx context.Context, target Pose) (*Result, error) {
	m.mu.Lock()
	start := m.current
	m.target = &target
	m.status = StatusNavigating
	m.cancelFlag = false
	m.mu.Unlock()

	total := start.DistanceTo(target)
	estimated := total / m.maxLinearSpeed
	stepDur := time.Duration(estimated / float64(m.steps) * m.timeScale * float64(time.Second))

	m.logger.Debug("navigation started",
		"from_x", start.X, "from_y", start.Y,
		"to_x", target.X, "to_y", target.Y,
		"distance", total)

	began := time.Now()
	for step := 1; step <= m.steps; step++ {
		if err := m.sleep(ctx, stepDur); err != nil {
			m.setStatus(StatusFailed)
			return nil, err
		}

		m.mu.Lock()
		if m.cancelFlag {
			m.status = StatusCanceled
			traveled := start.DistanceTo(m.current)
			m.mu.Unlock()
			return &Result{
				Success:  false,
				Message:  "Navigation was canceled",
				Distance: traveled,
				Seconds:  time.Since(began).Seconds(),
			}, nil
		}

		progress := float64(step) / float64(m.steps)
		m.current = Pose{
			X:   start.X + (target.X-start.X)*progress,
			Y:   start.Y + (target.Y-start.Y)*progress,
			Yaw: start.Yaw + (target.Yaw-start.Yaw)*progress,
		}
		m.feedback = StatusReport{
			Status:             StatusNavigating,
			Current:            m.current,
			Target:             &target,
			DistanceRemaining:  m.current.DistanceTo(target),
			NavigationTime:     estimated * progress,
			EstimatedRemaining: estimated * (1 - progress),
			Progress:           progress * 100,
		}
		m.mu.Unlock()
	}

	m.setStatus(StatusSucceeded)
	m.logger.Debug("navigation succeeded", "distance", total)
	return &Result{
		Success:  true,
		Message:  "Navigation completed successfully",
		Distance: total,
		Seconds:  time.Since(began).Seconds(),
	}, nil
}

// NavigateToLocation resolves a semantic location and drives to it.
func (m *Mock) NavigateToLocation(ctx context.Context, location string) (*Result, error) {
	m.mu.Lock()
	pose, ok := m.locations[location]
	names := m.locationNames()
	m.mu.Unlock()

	if !ok {
		return nil, &UnknownLocationError{Name: location, Available: names}
	}

	result, err := m.NavigateToPose(ctx, pose)
	if err != nil {
		return nil, err
	}
	result.Location = location
	return result, nil
}

// NavigateWaypoints visits each waypoint in order.
func (m *Mock) NavigateWaypoints(ctx context.Context, waypoints []Pose, loop bool) (*WaypointResult, error) {
	out := &WaypointResult{Total: len(waypoints), Completed: []int{}, Failed: []int{}}

	for i, wp := range waypoints {
		result, err := m.NavigateToPose(ctx, wp)
		if err != nil {
			return nil, err
		}
		if result.Success {
			out.Completed = append(out.Completed, i)
		} else {
			out.Failed = append(out.Failed, i)
			if !loop {
				break
			}
		}

		// Brief dwell at each waypoint.
		dwell := time.Duration(0.5 * m.timeScale * float64(time.Second))
		if err := m.sleep(ctx, dwell); err != nil {
			return nil, err
		}
	}

	out.Success = len(out.Failed) == 0
	return out, nil
}

// Status returns the current navigation snapshot.
func (m *Mock) Status(ctx context.Context) (*StatusReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	report := m.feedback
	report.Status = m.status
	report.Current = m.current
	report.Target = m.target
	return &report, nil
}

// Cancel aborts the active navigation task.
func (m *Mock) Cancel(ctx context.Context) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusNavigating {
		return nil, ErrNoActiveNavigation
	}
	m.cancelFlag = true
	m.logger.Debug("navigation cancel requested")
	return &Result{Success: true, Message: "Navigation canceled"}, nil
}

// SemanticLocations returns a copy of the known locations.
func (m *Mock) SemanticLocations(ctx context.Context) (map[string]Pose, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Pose, len(m.locations))
	for name, pose := range m.locations {
		out[name] = pose
	}
	return out, nil
}

// SetInitialPose re-localizes the robot.
func (m *Mock) SetInitialPose(ctx context.Context, pose Pose) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = pose
	m.logger.Debug("initial pose set", "x", pose.X, "y", pose.Y, "yaw", pose.Yaw)
	return nil
}

// AddLocation registers a new semantic location.
func (m *Mock) AddLocation(ctx context.Context, name string, pose Pose) error {
	if name == "" {
		return fmt.Errorf("nav: location name required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.locations[name] = pose
	m.logger.Debug("location added", "name", name, "x", pose.X, "y", pose.Y)
	return nil
}

func (m *Mock) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

// locationNames returns sorted names; callers hold the lock.
func (m *Mock) locationNames() []string {
	names := make([]string, 0, len(m.locations))
	for name := range m.locations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Mock) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Verify Mock implements Backend at compile time.
var _ Backend = (*Mock)(nil)
