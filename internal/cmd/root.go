package cmd

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/runsheethq/runsheet/internal/errors"
	"github.com/runsheethq/runsheet/internal/metrics"
)

var rootCmd = &cobra.Command{
	Use:   "runsheet",
	Short: "Event task scheduling and conflict detection",
	Long: `runsheet turns annotated task lists for an event into a conflict-checked
timeline. It consolidates tasks from multiple planning sources, resolves
their dependencies into an execution order, allocates start and end times
with priority-based buffers, and reports venue, resource, and timing
conflicts before they happen on the day.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	cleanup := setupObservability(ctx)
	defer cleanup()

	return rootCmd.ExecuteContext(ctx)
}

// instrumented wraps a command's RunE with execution counters and timing
func instrumented(name string, run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		m := metrics.GetDefault()
		start := time.Now()

		err := run(cmd, args)

		m.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		m.CommandExecutions.WithLabelValues(name, strconv.FormatBool(err == nil)).Inc()
		if err != nil {
			m.CommandErrors.WithLabelValues(name, commandErrorCode(err)).Inc()
		}

		return err
	}
}

func commandErrorCode(err error) string {
	if schedErr, ok := err.(*errors.ScheduleError); ok {
		return string(schedErr.Code)
	}
	return "unknown"
}

func init() {
	rootCmd.PersistentFlags().String("format", "text", "Output format: text, json, or yaml")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
}
