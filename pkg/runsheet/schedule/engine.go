// Package schedule is the engine's entry point. A run consolidates task
// annotations into one task set, derives the dependency graph, orders it
// topologically, allocates concrete timelines, and scans for conflicts, in
// one synchronous pass with no I/O.
package schedule

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/runsheethq/runsheet/internal/conflict"
	"github.com/runsheethq/runsheet/internal/consolidate"
	"github.com/runsheethq/runsheet/internal/errors"
	"github.com/runsheethq/runsheet/internal/graph"
	"github.com/runsheethq/runsheet/internal/log"
	"github.com/runsheethq/runsheet/internal/metrics"
	"github.com/runsheethq/runsheet/internal/timeline"
	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

// Engine runs the scheduling pipeline. Engines are safe for concurrent use:
// each run works on its own isolated state, and the shared logger and
// metrics collectors are concurrency-safe themselves.
type Engine struct {
	logger  *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger routes pipeline logging to the given logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics records run statistics on the given collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source used for generated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schedule runs the pipeline once with a default Engine.
func Schedule(ctx context.Context, req *types.Request) (*types.Result, error) {
	return New().Run(ctx, req)
}

// Run executes the pipeline:
// 1. Validate the request
// 2. Consolidate annotation sources into one task set
// 3. Build the dependency graph
// 4. Order it topologically, breaking any cycles
// 5. Allocate timelines inside the working window
// 6. Detect conflicts
//
// A Result comes back for every input that survives consolidation, conflicts
// and all; the error path is reserved for unusable requests and internal
// invariant violations.
func (e *Engine) Run(ctx context.Context, req *types.Request) (*types.Result, error) {
	started := time.Now()

	if err := req.Validate(); err != nil {
		return nil, e.fail(ctx, errors.NewRequestInvalidError(err.Error()))
	}

	e.logger.InfoContext(ctx, "scheduling run started",
		"event", req.EventName,
		"tasks", len(req.Tasks),
		"has_sources", req.Sources != nil && !req.Sources.Empty(),
	)

	cons, err := e.consolidate(req)
	if err != nil {
		return nil, e.fail(ctx, err)
	}
	if len(cons.Warnings) > 0 {
		e.logger.WarnContext(ctx, "consolidation reported data gaps", "warnings", len(cons.Warnings))
	}

	g := graph.Build(cons.Tasks)
	order := graph.Sort(g)
	if len(order.Cycled) > 0 {
		e.logger.WarnContext(ctx, "circular dependencies broken",
			"tasks", order.Cycled,
		)
	}

	timelines, err := timeline.Allocate(g, order, timeline.Options{
		EventStart: req.EventStart,
		Hours:      req.WorkingHours,
	})
	if err != nil {
		return nil, e.fail(ctx, err)
	}

	conflicts := conflict.Detect(g, order, timelines, req.ResourceCapacities)

	result := &types.Result{
		RunID:        uuid.New().String(),
		EventName:    req.EventName,
		GeneratedAt:  e.now().UTC(),
		EventStart:   req.EventStart,
		Tasks:        cons.Tasks,
		Timelines:    timelines,
		Conflicts:    conflicts,
		BrokenCycles: order.Cycled,
		Warnings:     cons.Warnings,
		Fingerprint:  fingerprint(timelines),
	}
	result.Recount()
	fillDerivedStats(result, g, order)

	e.observe(result, g, time.Since(started))
	e.logger.InfoContext(ctx, "scheduling run completed",
		"run_id", result.RunID,
		"tasks", result.Stats.TaskCount,
		"conflicts", result.Stats.ConflictCount,
		"cycles_broken", result.Stats.CycleCount,
		"makespan", result.Stats.Makespan.String(),
	)
	return result, nil
}

// consolidate picks the input path: pre-merged tasks win when present,
// otherwise the annotation sources are merged.
func (e *Engine) consolidate(req *types.Request) (*consolidate.Consolidated, error) {
	if len(req.Tasks) > 0 {
		return consolidate.Normalize(req.Tasks)
	}
	return consolidate.Merge(req.Sources)
}

func (e *Engine) fail(ctx context.Context, err error) error {
	e.logger.LogErrorContext(ctx, err)
	if e.metrics != nil {
		e.metrics.ScheduleRuns.WithLabelValues("false").Inc()
		e.metrics.ScheduleErrors.WithLabelValues(errorCode(err)).Inc()
	}
	return err
}

func (e *Engine) observe(result *types.Result, g *graph.Graph, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	m := e.metrics
	m.ScheduleRuns.WithLabelValues("true").Inc()
	m.ScheduleDuration.WithLabelValues().Observe(elapsed.Seconds())
	m.TaskCount.WithLabelValues().Observe(float64(result.Stats.TaskCount))
	m.MakespanMinutes.WithLabelValues().Observe(result.Stats.Makespan.Std().Minutes())
	m.GraphEdges.WithLabelValues().Observe(float64(g.EdgeCount()))
	m.ConflictCount.WithLabelValues().Observe(float64(result.Stats.ConflictCount))
	if result.Stats.CycleCount > 0 {
		m.CyclesBroken.WithLabelValues().Add(float64(result.Stats.CycleCount))
	}
	if result.Stats.WarningCount > 0 {
		m.ConsolidationWarnings.WithLabelValues("data_gap").Add(float64(result.Stats.WarningCount))
	}
	for _, c := range result.Conflicts {
		m.ConflictsDetected.WithLabelValues(string(c.Type), string(c.Severity)).Inc()
	}
}

func errorCode(err error) string {
	if schedErr, ok := err.(*errors.ScheduleError); ok {
		return string(schedErr.Code)
	}
	return "unknown"
}

// fillDerivedStats computes the schedule-shape numbers Recount cannot: the
// end of the schedule with trailing buffers, the makespan from event start,
// and the longest dependency chain.
func fillDerivedStats(result *types.Result, g *graph.Graph, order graph.Order) {
	var end time.Time
	for _, tl := range result.Timelines {
		if e := tl.End.Add(tl.Buffer.Std()); e.After(end) {
			end = e
		}
	}
	result.Stats.ScheduleEnd = end
	if !end.IsZero() && end.After(result.EventStart) {
		result.Stats.Makespan = types.Duration(end.Sub(result.EventStart))
	}

	// Longest chain in tasks, walking the scheduling order so every
	// prerequisite is measured before its dependents. Edges broken out of a
	// cycle point at tasks measured later and simply do not extend a chain.
	chain := make(map[types.TaskID]int, len(order.Sequence))
	longest := 0
	for _, id := range order.Sequence {
		best := 0
		for _, dep := range g.PrereqsOf(id) {
			if l, ok := chain[dep]; ok && l > best {
				best = l
			}
		}
		chain[id] = best + 1
		if chain[id] > longest {
			longest = chain[id]
		}
	}
	result.Stats.CriticalPathLength = longest
}

// fingerprint hashes the canonical JSON of the timelines. Identical inputs
// allocate identical timelines, so re-runs produce the same fingerprint even
// though each gets a fresh run ID.
func fingerprint(timelines []types.Timeline) string {
	data, err := json.Marshal(timelines)
	if err != nil {
		return ""
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
