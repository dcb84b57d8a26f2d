package nav

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-convai/internal/httpc"
)

// HTTPBackend drives a navigation bridge over its HTTP API. Used when a
// real robot (or full simulator) is running; the Mock covers everything
// else.
type HTTPBackend struct {
	BaseURL string

	http *http.Client
}

// NewHTTPBackend creates a back-end for the bridge at the given address.
// Navigation calls block until the task finishes, so the client timeout is
// generous.
func NewHTTPBackend(addr string) *HTTPBackend {
	return &HTTPBackend{
		BaseURL: "http://" + strings.TrimPrefix(addr, "http://"),
		http:    httpc.NewClient(5 * time.Minute),
	}
}

// NavigateToPose drives to the given pose.
func (b *HTTPBackend) NavigateToPose(ctx context.Context, target Pose) (*Result, error) {
	var result Result
	if err := b.post(ctx, "/api/nav/pose", target, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// NavigateToLocation drives to a named location.
func (b *HTTPBackend) NavigateToLocation(ctx context.Context, location string) (*Result, error) {
	payload := map[string]string{"location": location}

	var result Result
	err := b.post(ctx, "/api/nav/location", payload, &result)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		locations, lerr := b.SemanticLocations(ctx)
		if lerr != nil {
			return nil, err
		}
		names := make([]string, 0, len(locations))
		for name := range locations {
			names = append(names, name)
		}
		return nil, &UnknownLocationError{Name: location, Available: names}
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// NavigateWaypoints visits each waypoint in order.
func (b *HTTPBackend) NavigateWaypoints(ctx context.Context, waypoints []Pose, loop bool) (*WaypointResult, error) {
	payload := map[string]any{
		"waypoints": waypoints,
		"loop":      loop,
	}

	var result WaypointResult
	if err := b.post(ctx, "/api/nav/waypoints", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status returns the bridge's navigation snapshot.
func (b *HTTPBackend) Status(ctx context.Context) (*StatusReport, error) {
	var report StatusReport
	if err := b.get(ctx, "/api/nav/status", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Cancel aborts the active navigation task.
func (b *HTTPBackend) Cancel(ctx context.Context) (*Result, error) {
	var result Result
	err := b.post(ctx, "/api/nav/cancel", struct{}{}, &result)
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusNotFound {
		return nil, ErrNoActiveNavigation
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SemanticLocations returns the bridge's named locations.
func (b *HTTPBackend) SemanticLocations(ctx context.Context) (map[string]Pose, error) {
	out := map[string]Pose{}
	if err := b.get(ctx, "/api/nav/locations", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetInitialPose re-localizes the robot.
func (b *HTTPBackend) SetInitialPose(ctx context.Context, pose Pose) error {
	return b.post(ctx, "/api/nav/initial_pose", pose, nil)
}

// AddLocation registers a new named location with the bridge.
func (b *HTTPBackend) AddLocation(ctx context.Context, name string, pose Pose) error {
	payload := map[string]any{
		"name": name,
		"x":    pose.X,
		"y":    pose.Y,
		"yaw":  pose.Yaw,
	}
	return b.post(ctx, "/api/nav/locations/add", payload, nil)
}

func (b *HTTPBackend) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("nav: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("nav: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return b.do(req, out)
}

func (b *HTTPBackend) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("nav: create request: %w", err)
	}
	return b.do(req, out)
}

func (b *HTTPBackend) do(req *http.Request, out any) error {
	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &statusError{code: resp.StatusCode, message: string(msg)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("nav: decode response: %w", err)
	}
	return nil
}

// statusError is a non-200 response from the bridge.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("nav: bridge returned %d: %s", e.code, e.message)
}

// Verify HTTPBackend implements Backend at compile time.
var _ Backend = (*HTTPBackend)(nil)
