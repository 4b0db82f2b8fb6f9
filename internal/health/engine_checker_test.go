package health

import (
	"context"
	"errors"
	"testing"

	"github.com/runsheethq/runsheet/pkg/runsheet/schedule"
	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

// mockScheduler implements Scheduler for testing
type mockScheduler struct {
	result *types.Result
	err    error
}

func (m *mockScheduler) Run(ctx context.Context, req *types.Request) (*types.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestEngineCheckerName(t *testing.T) {
	checker := NewEngineChecker(&mockScheduler{})

	name := checker.Name()
	if name != "schedule-engine" {
		t.Errorf("Name() = %q, want %q", name, "schedule-engine")
	}
}

func TestEngineCheckerNilEngine(t *testing.T) {
	checker := NewEngineChecker(nil)

	result := checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want %v", result.Status, StatusUnhealthy)
	}
}

func TestEngineCheckerRunFails(t *testing.T) {
	checker := NewEngineChecker(&mockScheduler{err: errors.New("pipeline broken")})

	result := checker.Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want %v", result.Status, StatusUnhealthy)
	}

	if errDetail, ok := result.Details["error"].(string); !ok || errDetail != "pipeline broken" {
		t.Errorf("Details[error] = %v, want %q", result.Details["error"], "pipeline broken")
	}
}

func TestEngineCheckerIncompleteSchedule(t *testing.T) {
	// One timeline for a two-task canary means the allocator dropped a task.
	checker := NewEngineChecker(&mockScheduler{
		result: &types.Result{
			Timelines: []types.Timeline{{TaskID: "canary-setup"}},
		},
	})

	result := checker.Check(context.Background())
	if result.Status != StatusDegraded {
		t.Errorf("Status = %v, want %v", result.Status, StatusDegraded)
	}

	if placed, ok := result.Details["timelines"].(int); !ok || placed != 1 {
		t.Errorf("Details[timelines] = %v, want 1", result.Details["timelines"])
	}
}

func TestEngineCheckerHealthy(t *testing.T) {
	checker := NewEngineChecker(&mockScheduler{
		result: &types.Result{
			Timelines: []types.Timeline{
				{TaskID: "canary-setup"},
				{TaskID: "canary-teardown"},
			},
		},
	})

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want %v", result.Status, StatusHealthy)
	}

	if count, ok := result.Details["canary_tasks"].(int); !ok || count != 2 {
		t.Errorf("Details[canary_tasks] = %v, want 2", result.Details["canary_tasks"])
	}
}

func TestEngineCheckerRealEngine(t *testing.T) {
	checker := NewEngineChecker(schedule.New())

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want %v (message: %s)", result.Status, StatusHealthy, result.Message)
	}
}

func TestCanaryRequestIsValid(t *testing.T) {
	req := canaryRequest()

	if err := req.Validate(); err != nil {
		t.Errorf("canary request should validate, got %v", err)
	}

	for _, task := range req.Tasks {
		if err := task.Validate(); err != nil {
			t.Errorf("canary task %s should validate, got %v", task.ID, err)
		}
	}
}
