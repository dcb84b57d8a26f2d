package nav

import (
	"context"
	"errors"
	"math"
	"testing"
)

func instantMock() *Mock {
	return NewMock(WithTimeScale(0))
}

func TestMockNavigateToPose(t *testing.T) {
	m := instantMock()

	result, err := m.NavigateToPose(context.Background(), Pose{X: 3, Y: 4})
	if err != nil {
		t.Fatalf("NavigateToPose: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if math.Abs(result.Distance-5.0) > 1e-9 {
		t.Errorf("Distance = %v, want 5.0", result.Distance)
	}

	report, err := m.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if report.Status != StatusSucceeded {
		t.Errorf("Status = %v, want %v", report.Status, StatusSucceeded)
	}
	if report.Current.X != 3 || report.Current.Y != 4 {
		t.Errorf("Current = %+v", report.Current)
	}
}

func TestMockNavigateToLocation(t *testing.T) {
	m := instantMock()

	result, err := m.NavigateToLocation(context.Background(), "kitchen")
	if err != nil {
		t.Fatalf("NavigateToLocation: %v", err)
	}
	if !result.Success || result.Location != "kitchen" {
		t.Errorf("unexpected result: %+v", result)
	}

	report, _ := m.Status(context.Background())
	if report.Current.X != 2.5 || report.Current.Y != 1.0 {
		t.Errorf("expected kitchen pose, got %+v", report.Current)
	}
}

func TestMockUnknownLocation(t *testing.T) {
	m := instantMock()

	_, err := m.NavigateToLocation(context.Background(), "garage")
	var unknown *UnknownLocationError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownLocationError, got %v", err)
	}
	if unknown.Name != "garage" {
		t.Errorf("Name = %q", unknown.Name)
	}
	if len(unknown.Available) != 6 {
		t.Errorf("Available = %v", unknown.Available)
	}
}

func TestMockWaypoints(t *testing.T) {
	m := instantMock()

	result, err := m.NavigateWaypoints(context.Background(), []Pose{
		{X: 1, Y: 1},
		{X: 2, Y: 2},
		{X: 0, Y: 0},
	}, false)
	if err != nil {
		t.Fatalf("NavigateWaypoints: %v", err)
	}
	if !result.Success {
		t.Errorf("expected success: %+v", result)
	}
	if len(result.Completed) != 3 || result.Total != 3 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestMockCancelWithNothingRunning(t *testing.T) {
	m := instantMock()

	_, err := m.Cancel(context.Background())
	if !errors.Is(err, ErrNoActiveNavigation) {
		t.Errorf("got %v, want ErrNoActiveNavigation", err)
	}
}

func TestMockAddAndListLocations(t *testing.T) {
	m := instantMock()

	if err := m.AddLocation(context.Background(), "office", Pose{X: 7, Y: 7}); err != nil {
		t.Fatalf("AddLocation: %v", err)
	}
	if err := m.AddLocation(context.Background(), "", Pose{}); err == nil {
		t.Error("expected error for empty name")
	}

	locations, err := m.SemanticLocations(context.Background())
	if err != nil {
		t.Fatalf("SemanticLocations: %v", err)
	}
	if len(locations) != 7 {
		t.Errorf("len = %d, want 7", len(locations))
	}
	if locations["office"].X != 7 {
		t.Errorf("office = %+v", locations["office"])
	}
}

func TestMockSetInitialPose(t *testing.T) {
	m := instantMock()

	if err := m.SetInitialPose(context.Background(), Pose{X: 1, Y: 2, Yaw: 0.5}); err != nil {
		t.Fatalf("SetInitialPose: %v", err)
	}
	report, _ := m.Status(context.Background())
	if report.Current.X != 1 || report.Current.Y != 2 {
		t.Errorf("Current = %+v", report.Current)
	}
}

func TestPoseDistance(t *testing.T) {
	a := Pose{X: 0, Y: 0}
	b := Pose{X: 3, Y: 4}
	if d := a.DistanceTo(b); math.Abs(d-5) > 1e-9 {
		t.Errorf("DistanceTo = %v, want 5", d)
	}
}

func TestMockCancelDuringNavigation(t *testing.T) {
	m := NewMock(WithTimeScale(0.05))

	done := make(chan *Result, 1)
	go func() {
		result, err := m.NavigateToPose(context.Background(), Pose{X: 5, Y: 5})
		if err != nil {
			t.Errorf("NavigateToPose: %v", err)
		}
		done <- result
	}()

	// Wait for the task to be observably in flight, then cancel.
	for {
		report, _ := m.Status(context.Background())
		if report.Status == StatusNavigating {
			break
		}
	}
	cancelResult, err := m.Cancel(context.Background())
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !cancelResult.Success {
		t.Fatalf("cancel rejected: %+v", cancelResult)
	}

	result := <-done
	if result.Success {
		t.Errorf("expected canceled navigation to fail, got %+v", result)
	}

	report, _ := m.Status(context.Background())
	if report.Status != StatusCanceled {
		t.Errorf("Status = %v, want %v", report.Status, StatusCanceled)
	}
}
