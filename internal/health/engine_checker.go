package health

import (
	"context"
	"fmt"
	"time"

	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

// Scheduler is the engine surface the checker exercises. The concrete
// implementation is schedule.Engine.
type Scheduler interface {
	Run(ctx context.Context, req *types.Request) (*types.Result, error)
}

// EngineChecker verifies the scheduling pipeline end to end by running a
// small fixed canary request through the engine.
type EngineChecker struct {
	engine Scheduler
}

// NewEngineChecker creates a new scheduling engine health checker.
func NewEngineChecker(engine Scheduler) *EngineChecker {
	return &EngineChecker{engine: engine}
}

// Name returns the name of this health check.
func (c *EngineChecker) Name() string {
	return "schedule-engine"
}

// canaryRequest builds a minimal two-task request with one dependency.
// Rebuilt on every check so no state is shared between runs.
func canaryRequest() *types.Request {
	return &types.Request{
		EventName: "healthcheck",
		Tasks: []types.Task{
			{
				ID:                "canary-setup",
				Name:              "Canary setup",
				Priority:          types.PriorityHigh,
				EstimatedDuration: types.Minutes(30),
			},
			{
				ID:                "canary-teardown",
				Name:              "Canary teardown",
				Priority:          types.PriorityLow,
				EstimatedDuration: types.Minutes(15),
				DependsOn:         []types.TaskID{"canary-setup"},
			},
		},
		EventStart: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

// Check runs the canary request through the engine.
// Returns:
//   - Healthy if both canary tasks come back scheduled
//   - Degraded if the engine responds but the schedule is incomplete
//   - Unhealthy if no engine is configured or the run fails
func (c *EngineChecker) Check(ctx context.Context) *Result {
	if c.engine == nil {
		return Unhealthy("no schedule engine configured")
	}

	req := canaryRequest()
	res, err := c.engine.Run(ctx, req)
	if err != nil {
		return Unhealthy("canary schedule failed").
			WithDetail("error", err.Error())
	}

	if len(res.Timelines) != len(req.Tasks) {
		return Degraded(fmt.Sprintf("canary schedule incomplete (%d/%d tasks placed)", len(res.Timelines), len(req.Tasks))).
			WithDetail("timelines", len(res.Timelines)).
			WithDetail("expected", len(req.Tasks))
	}

	return Healthy("schedule engine is responding").
		WithDetail("canary_tasks", len(req.Tasks)).
		WithDetail("conflicts", len(res.Conflicts))
}
