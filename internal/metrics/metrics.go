package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the scheduling engine
type Metrics struct {
	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec
	CommandErrors     *prometheus.CounterVec

	// Schedule run metrics
	ScheduleRuns     *prometheus.CounterVec
	ScheduleDuration *prometheus.HistogramVec
	ScheduleErrors   *prometheus.CounterVec
	TaskCount        *prometheus.HistogramVec
	MakespanMinutes  *prometheus.HistogramVec

	// Consolidation metrics
	ConsolidationWarnings *prometheus.CounterVec
	SourceTasks           *prometheus.HistogramVec

	// Graph metrics
	GraphEdges   *prometheus.HistogramVec
	CyclesBroken *prometheus.CounterVec

	// Conflict detection metrics
	ConflictsDetected *prometheus.CounterVec
	ConflictCount     *prometheus.HistogramVec

	// HTTP server metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		// Command metrics
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runsheet_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runsheet_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		CommandErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runsheet_command_errors_total",
				Help: "Total number of command errors",
			},
			[]string{"command", "error_code"},
		),

		// Schedule run metrics
		ScheduleRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runsheet_schedule_runs_total",
				Help: "Total number of scheduling runs",
			},
			[]string{"success"},
		),
		ScheduleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runsheet_schedule_duration_seconds",
				Help:    "Scheduling run duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{},
		),
		ScheduleErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runsheet_schedule_errors_total",
				Help: "Total number of scheduling run errors",
			},
			[]string{"error_code"},
		),
		TaskCount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runsheet_schedule_task_count",
				Help:    "Number of tasks in scheduled results",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500},
			},
			[]string{},
		),
		MakespanMinutes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runsheet_schedule_makespan_minutes",
				Help:    "Schedule makespan from event start to last task end in minutes",
				Buckets: []float64{60, 240, 480, 960, 1440, 2880, 10080},
			},
			[]string{},
		),

		// Consolidation metrics
		ConsolidationWarnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runsheet_consolidation_warnings_total",
				Help: "Total number of consolidation data-gap warnings",
			},
			[]string{"kind"},
		),
		SourceTasks: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runsheet_consolidation_source_tasks",
				Help:    "Number of distinct tasks seen across annotation sources",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500},
			},
			[]string{},
		),

		// Graph metrics
		GraphEdges: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runsheet_graph_edges",
				Help:    "Number of dependency edges in built graphs",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{},
		),
		CyclesBroken: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runsheet_graph_cycles_broken_total",
				Help: "Total number of circular dependencies broken",
			},
			[]string{},
		),

		// Conflict metrics
		ConflictsDetected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runsheet_conflicts_detected_total",
				Help: "Total number of conflicts detected",
			},
			[]string{"conflict_type", "severity"},
		),
		ConflictCount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runsheet_schedule_conflict_count",
				Help:    "Number of conflicts per scheduling run",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
			[]string{},
		),

		// HTTP server metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runsheet_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runsheet_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		// Error metrics (by structured error code)
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runsheet_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}
