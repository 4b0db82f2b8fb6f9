package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/runsheethq/runsheet/internal/health"
	"github.com/runsheethq/runsheet/internal/log"
	"github.com/runsheethq/runsheet/internal/metrics"
	"github.com/runsheethq/runsheet/internal/server"
	"github.com/runsheethq/runsheet/internal/version"
	"github.com/runsheethq/runsheet/pkg/runsheet/schedule"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP scheduling server",
	Long: `Start an HTTP server that runs the scheduling pipeline per request and
exposes Kubernetes-style health endpoints for zero-downtime deployments.

Endpoints:
  POST /v1/schedule    - Build a schedule from a JSON request body
  GET  /health/live    - Liveness probe (process alive and responsive)
  GET  /health/ready   - Readiness probe (engine canary run passes)
  GET  /health/startup - Startup probe (finished initialization)
  GET  /healthz        - Backward-compatible readiness endpoint
  GET  /metrics        - Prometheus metrics

The server drains connections gracefully when it receives SIGTERM or
SIGINT, failing readiness first so load balancers stop routing to it.

Example:
  # Start server on default port 8080
  runsheet serve

  # Start server on custom port
  runsheet serve --port 9090

  # Start server with custom shutdown timeout
  runsheet serve --shutdown-timeout 60s`,
	RunE: instrumented("serve", runServe),
}

var (
	servePort            string
	serveAddress         string
	serveShutdownTimeout time.Duration
	serveReadTimeout     time.Duration
	serveWriteTimeout    time.Duration
	serveIdleTimeout     time.Duration
)

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")
	serveCmd.Flags().StringVar(&serveAddress, "address", "0.0.0.0", "Address to bind to")
	serveCmd.Flags().DurationVar(&serveShutdownTimeout, "shutdown-timeout", 30*time.Second, "Maximum time to wait for connections to drain during shutdown")
	serveCmd.Flags().DurationVar(&serveReadTimeout, "read-timeout", 10*time.Second, "Maximum duration for reading the entire request")
	serveCmd.Flags().DurationVar(&serveWriteTimeout, "write-timeout", 10*time.Second, "Maximum duration before timing out writes of the response")
	serveCmd.Flags().DurationVar(&serveIdleTimeout, "idle-timeout", 60*time.Second, "Maximum amount of time to wait for the next request")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	info := version.GetInfo()

	eng := schedule.New(
		schedule.WithLogger(log.DefaultLogger().With("component", "engine")),
		schedule.WithMetrics(metrics.GetDefault()),
	)

	// Readiness exercises the pipeline itself, not just the process.
	pm := health.NewProbeManager(info.Version)
	pm.AddChecker(health.NewEngineChecker(eng))

	listenAddr := fmt.Sprintf("%s:%s", serveAddress, servePort)
	srv := server.NewServer(eng, pm, server.Config{
		Address:         listenAddr,
		ShutdownTimeout: serveShutdownTimeout,
		ReadTimeout:     serveReadTimeout,
		WriteTimeout:    serveWriteTimeout,
		IdleTimeout:     serveIdleTimeout,
	})

	fmt.Printf("\n╔══════════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║                      [ runsheet ]                            ║\n")
	fmt.Printf("║         Event Task Scheduling and Conflict Detection         ║\n")
	fmt.Printf("╚══════════════════════════════════════════════════════════════╝\n\n")
	fmt.Printf("Version: %s\n", info.Version)
	fmt.Printf("Listening on: http://%s\n\n", listenAddr)
	fmt.Printf("Schedule API:\n")
	fmt.Printf("  POST http://%s/v1/schedule\n\n", listenAddr)
	fmt.Printf("Health Endpoints:\n")
	fmt.Printf("  Liveness:  http://%s/health/live\n", listenAddr)
	fmt.Printf("  Readiness: http://%s/health/ready\n", listenAddr)
	fmt.Printf("  Startup:   http://%s/health/startup\n", listenAddr)
	fmt.Printf("  Legacy:    http://%s/healthz\n\n", listenAddr)
	fmt.Printf("Metrics:\n")
	fmt.Printf("  http://%s/metrics\n\n", listenAddr)
	fmt.Printf("Health checks: %s\n", strings.Join(pm.CheckNames(), ", "))
	fmt.Printf("Press Ctrl+C to stop the server\n\n")

	// Start server in background
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		// Server failed to start or encountered an error
		return fmt.Errorf("server error: %w", err)

	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %s\n", sig)

	case <-ctx.Done():
		fmt.Println("\nShutdown requested")
	}

	fmt.Println("Initiating graceful shutdown...")

	// The run context is already canceled on the signal path, so draining
	// gets its own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	fmt.Println("Server stopped gracefully")
	return nil
}
