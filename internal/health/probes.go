package health

import (
	"context"
	"sync/atomic"
	"time"
)

// ProbeManager extends Manager with Kubernetes-style probe support for the
// scheduling server. It tracks initialization and shutdown state for the
// liveness, readiness, and startup endpoints.
type ProbeManager struct {
	*Manager

	startTime   time.Time
	initialized atomic.Bool
	inShutdown  atomic.Bool
	version     string
}

// NewProbeManager creates a new health check manager with probe support.
func NewProbeManager(version string) *ProbeManager {
	return &ProbeManager{
		Manager:   NewManager(),
		startTime: time.Now(),
		version:   version,
	}
}

// MarkInitialized marks the server as fully initialized, which lets the
// startup probe pass.
func (pm *ProbeManager) MarkInitialized() {
	pm.initialized.Store(true)
}

// MarkShutdown marks the server as shutting down. Readiness probes fail from
// this point so load balancers stop routing new schedule requests here.
func (pm *ProbeManager) MarkShutdown() {
	pm.inShutdown.Store(true)
}

// IsInitialized returns whether the server finished initialization.
func (pm *ProbeManager) IsInitialized() bool {
	return pm.initialized.Load()
}

// IsShuttingDown returns whether the server is shutting down.
func (pm *ProbeManager) IsShuttingDown() bool {
	return pm.inShutdown.Load()
}

// Uptime returns how long the server has been running.
func (pm *ProbeManager) Uptime() time.Duration {
	return time.Since(pm.startTime)
}

// Version returns the server version.
func (pm *ProbeManager) Version() string {
	return pm.version
}

// ProbeResult is the JSON body the probe endpoints serve.
type ProbeResult struct {
	Status    Status             `json:"status"`
	Version   string             `json:"version,omitempty"`
	Uptime    string             `json:"uptime,omitempty"`
	Checks    map[string]*Result `json:"checks,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// CheckLiveness performs a liveness probe check.
//
// Liveness answers "is the process responsive". It never runs dependency
// checks, and it degrades rather than fails during shutdown because the
// process is still alive while draining.
func (pm *ProbeManager) CheckLiveness(ctx context.Context) *ProbeResult {
	status := StatusHealthy
	if pm.IsShuttingDown() {
		status = StatusDegraded
	}

	return &ProbeResult{
		Status:    status,
		Version:   pm.version,
		Uptime:    pm.Uptime().Round(time.Second).String(),
		Checks:    make(map[string]*Result),
		Timestamp: time.Now(),
	}
}

// CheckReadiness performs a readiness probe check.
//
// Readiness answers "can this server take a schedule request right now". It
// fails immediately during shutdown, otherwise it runs every registered
// checker (including the engine canary) and aggregates their statuses.
func (pm *ProbeManager) CheckReadiness(ctx context.Context) *ProbeResult {
	if pm.IsShuttingDown() {
		return &ProbeResult{
			Status:    StatusUnhealthy,
			Version:   pm.version,
			Uptime:    pm.Uptime().Round(time.Second).String(),
			Checks:    make(map[string]*Result),
			Timestamp: time.Now(),
		}
	}

	checks := pm.Manager.Check(ctx)
	overallStatus := pm.Manager.OverallStatus(checks)

	return &ProbeResult{
		Status:    overallStatus,
		Version:   pm.version,
		Uptime:    pm.Uptime().Round(time.Second).String(),
		Checks:    checks,
		Timestamp: time.Now(),
	}
}

// CheckStartup performs a startup probe check.
//
// Startup answers "has initialization finished". Orchestrators wait for this
// probe before they begin liveness and readiness checking, giving the server
// time to come up without being restarted mid-boot.
func (pm *ProbeManager) CheckStartup(ctx context.Context) *ProbeResult {
	status := StatusUnhealthy
	if pm.IsInitialized() {
		status = StatusHealthy
	}

	return &ProbeResult{
		Status:    status,
		Version:   pm.version,
		Uptime:    pm.Uptime().Round(time.Second).String(),
		Checks:    make(map[string]*Result),
		Timestamp: time.Now(),
	}
}
