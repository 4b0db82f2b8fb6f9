package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m == nil {
		t.Fatal("expected metrics, got nil")
	}

	// Verify all metrics are initialized
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"CommandExecutions", m.CommandExecutions},
		{"CommandDuration", m.CommandDuration},
		{"CommandErrors", m.CommandErrors},
		{"ScheduleRuns", m.ScheduleRuns},
		{"ScheduleDuration", m.ScheduleDuration},
		{"ScheduleErrors", m.ScheduleErrors},
		{"TaskCount", m.TaskCount},
		{"MakespanMinutes", m.MakespanMinutes},
		{"ConsolidationWarnings", m.ConsolidationWarnings},
		{"SourceTasks", m.SourceTasks},
		{"GraphEdges", m.GraphEdges},
		{"CyclesBroken", m.CyclesBroken},
		{"ConflictsDetected", m.ConflictsDetected},
		{"ConflictCount", m.ConflictCount},
		{"HTTPRequests", m.HTTPRequests},
		{"HTTPRequestDuration", m.HTTPRequestDuration},
		{"Errors", m.Errors},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestCommandMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Record successful command
	m.CommandExecutions.WithLabelValues("schedule", "true").Inc()
	m.CommandDuration.WithLabelValues("schedule").Observe(1.5)

	// Record failed command
	m.CommandExecutions.WithLabelValues("validate", "false").Inc()
	m.CommandErrors.WithLabelValues("validate", "REQUEST-003").Inc()

	// Verify metrics
	if got := testutil.ToFloat64(m.CommandExecutions.WithLabelValues("schedule", "true")); got != 1 {
		t.Errorf("CommandExecutions schedule/true = %v, want 1", got)
	}

	if got := testutil.ToFloat64(m.CommandExecutions.WithLabelValues("validate", "false")); got != 1 {
		t.Errorf("CommandExecutions validate/false = %v, want 1", got)
	}

	if got := testutil.ToFloat64(m.CommandErrors.WithLabelValues("validate", "REQUEST-003")); got != 1 {
		t.Errorf("CommandErrors = %v, want 1", got)
	}
}

func TestScheduleMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Record a successful run
	m.ScheduleRuns.WithLabelValues("true").Inc()
	m.ScheduleDuration.WithLabelValues().Observe(0.02)
	m.TaskCount.WithLabelValues().Observe(12)
	m.MakespanMinutes.WithLabelValues().Observe(480)

	// Record a failed run
	m.ScheduleRuns.WithLabelValues("false").Inc()
	m.ScheduleErrors.WithLabelValues("CONSOLIDATE-001").Inc()

	// Verify metrics
	if got := testutil.ToFloat64(m.ScheduleRuns.WithLabelValues("true")); got != 1 {
		t.Errorf("ScheduleRuns true = %v, want 1", got)
	}

	if got := testutil.ToFloat64(m.ScheduleRuns.WithLabelValues("false")); got != 1 {
		t.Errorf("ScheduleRuns false = %v, want 1", got)
	}

	if got := testutil.ToFloat64(m.ScheduleErrors.WithLabelValues("CONSOLIDATE-001")); got != 1 {
		t.Errorf("ScheduleErrors = %v, want 1", got)
	}
}

func TestConsolidationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Record data-gap warnings by kind
	m.ConsolidationWarnings.WithLabelValues("missing_priority").Add(3)
	m.ConsolidationWarnings.WithLabelValues("dangling_dependency").Inc()
	m.SourceTasks.WithLabelValues().Observe(20)

	// Verify metrics
	if got := testutil.ToFloat64(m.ConsolidationWarnings.WithLabelValues("missing_priority")); got != 3 {
		t.Errorf("ConsolidationWarnings missing_priority = %v, want 3", got)
	}

	if got := testutil.ToFloat64(m.ConsolidationWarnings.WithLabelValues("dangling_dependency")); got != 1 {
		t.Errorf("ConsolidationWarnings dangling_dependency = %v, want 1", got)
	}
}

func TestGraphMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Record graph shape and a broken cycle
	m.GraphEdges.WithLabelValues().Observe(34)
	m.CyclesBroken.WithLabelValues().Inc()

	// Verify metrics
	if got := testutil.ToFloat64(m.CyclesBroken.WithLabelValues()); got != 1 {
		t.Errorf("CyclesBroken = %v, want 1", got)
	}
}

func TestConflictMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Record conflicts by type and severity
	m.ConflictsDetected.WithLabelValues("resource", "high").Inc()
	m.ConflictsDetected.WithLabelValues("venue", "critical").Inc()
	m.ConflictCount.WithLabelValues().Observe(2)

	// Verify metrics
	if got := testutil.ToFloat64(m.ConflictsDetected.WithLabelValues("resource", "high")); got != 1 {
		t.Errorf("ConflictsDetected resource/high = %v, want 1", got)
	}

	if got := testutil.ToFloat64(m.ConflictsDetected.WithLabelValues("venue", "critical")); got != 1 {
		t.Errorf("ConflictsDetected venue/critical = %v, want 1", got)
	}
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Record HTTP activity
	m.HTTPRequests.WithLabelValues("/v1/schedule", "POST", "200").Inc()
	m.HTTPRequestDuration.WithLabelValues("/v1/schedule", "POST").Observe(0.05)

	// Verify metrics
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/v1/schedule", "POST", "200")); got != 1 {
		t.Errorf("HTTPRequests = %v, want 1", got)
	}
}

func TestErrorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Record errors by code
	m.Errors.WithLabelValues("CONSOLIDATE-001", "consolidate").Inc()
	m.Errors.WithLabelValues("ALLOC-003", "timeline").Inc()
	m.Errors.WithLabelValues("REQUEST-002", "loader").Inc()

	// Verify metrics
	if got := testutil.ToFloat64(m.Errors.WithLabelValues("CONSOLIDATE-001", "consolidate")); got != 1 {
		t.Errorf("Errors CONSOLIDATE-001 = %v, want 1", got)
	}

	if got := testutil.ToFloat64(m.Errors.WithLabelValues("ALLOC-003", "timeline")); got != 1 {
		t.Errorf("Errors ALLOC-003 = %v, want 1", got)
	}

	if got := testutil.ToFloat64(m.Errors.WithLabelValues("REQUEST-002", "loader")); got != 1 {
		t.Errorf("Errors REQUEST-002 = %v, want 1", got)
	}
}

func TestMetricsExport(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Record some metrics
	m.CommandExecutions.WithLabelValues("schedule", "true").Inc()
	m.ConflictsDetected.WithLabelValues("timeline", "medium").Inc()

	// Create HTTP handler
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	// Make request
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %v, want %v", w.Code, http.StatusOK)
	}

	body := w.Body.String()

	// Verify metrics are present
	if !strings.Contains(body, "runsheet_command_executions_total") {
		t.Error("metrics output does not contain command_executions_total")
	}

	if !strings.Contains(body, "runsheet_conflicts_detected_total") {
		t.Error("metrics output does not contain conflicts_detected_total")
	}

	// Verify labels
	if !strings.Contains(body, `command="schedule"`) {
		t.Error("metrics output does not contain command label")
	}

	if !strings.Contains(body, `conflict_type="timeline"`) {
		t.Error("metrics output does not contain conflict_type label")
	}
}

func TestHistogramBuckets(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	// Record various durations
	m.CommandDuration.WithLabelValues("schedule").Observe(0.5)
	m.ScheduleDuration.WithLabelValues().Observe(0.02)
	m.MakespanMinutes.WithLabelValues().Observe(480)

	// Make request to get metrics
	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	body := w.Body.String()

	// Verify histogram buckets exist
	if !strings.Contains(body, "_bucket{") {
		t.Error("metrics output does not contain histogram buckets")
	}

	if !strings.Contains(body, "le=") {
		t.Error("metrics output does not contain bucket labels")
	}
}
