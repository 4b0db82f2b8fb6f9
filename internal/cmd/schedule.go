package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/runsheethq/runsheet/internal/exitcode"
	"github.com/runsheethq/runsheet/internal/log"
	"github.com/runsheethq/runsheet/internal/metrics"
	"github.com/runsheethq/runsheet/internal/ux"
	"github.com/runsheethq/runsheet/pkg/runsheet/schedule"
	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Build a conflict-checked timeline from a request file",
	Long: `Build a schedule from the tasks in a request file.

The engine consolidates tasks from every annotation source in the request,
resolves dependencies into an execution order, allocates start and end
times inside the event's working hours, and reports any venue, resource,
or timing conflicts it finds.

Conflicts never abort the run: you always get a complete timeline plus the
list of problems to resolve. Use --strict to turn conflicts into a
non-zero exit code for CI gating.

Examples:
  # Schedule using ./runsheet.yaml
  runsheet schedule

  # Save the result for review and vendor export
  runsheet schedule --out schedule.json

  # Override the event start and working hours from the command line
  runsheet schedule --start 2025-06-01T10:00:00Z --hours 08:00-22:00

  # Fail the pipeline when conflicts exist
  runsheet schedule --strict`,
	RunE: instrumented("schedule", runSchedule),
}

func init() {
	scheduleCmd.Flags().String("in", "runsheet.yaml", "Request file to schedule (yaml or json)")
	scheduleCmd.Flags().String("out", "", "Write the full result to this file (extension picks json or yaml)")
	scheduleCmd.Flags().String("start", "", "Override the event start time (RFC3339)")
	scheduleCmd.Flags().String("hours", "", "Override working hours as HH:MM-HH:MM")
	scheduleCmd.Flags().Bool("strict", false, "Exit non-zero when the schedule contains conflicts")

	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")
	startFlag, _ := cmd.Flags().GetString("start")
	hoursFlag, _ := cmd.Flags().GetString("hours")
	strict, _ := cmd.Flags().GetBool("strict")

	// Search upward for the request file when the default is used
	if !cmd.Flags().Changed("in") {
		if discovered, derr := ux.DiscoverRequestFile("runsheet.yaml"); derr == nil {
			in = discovered
		}
	}

	if err := ux.ValidateRequiredFile(in, "Request file", "runsheet init"); err != nil {
		return ux.EnhanceError(err)
	}

	req, err := schedule.LoadRequest(in)
	if err != nil {
		return RequestLoadError(in, err)
	}

	if startFlag != "" {
		start, err := time.Parse(time.RFC3339, startFlag)
		if err != nil {
			return fmt.Errorf("invalid --start %q: expected RFC3339, e.g. 2025-06-01T10:00:00Z", startFlag)
		}
		req.EventStart = start
	}

	if hoursFlag != "" {
		from, to, ok := strings.Cut(hoursFlag, "-")
		if !ok {
			return fmt.Errorf("invalid --hours %q: expected HH:MM-HH:MM, e.g. 08:00-22:00", hoursFlag)
		}
		req.WorkingHours = types.WorkingHours{Start: from, End: to}
	}

	// The config file can turn strict mode on globally; the flag wins when set
	if !cmd.Flags().Changed("strict") {
		if cfg, cerr := loadConfig(); cerr == nil {
			strict = cfg.Scheduling.Strict
		}
	}

	engine := schedule.New(
		schedule.WithLogger(log.DefaultLogger()),
		schedule.WithMetrics(metrics.GetDefault()),
	)

	result, err := engine.Run(cmd.Context(), req)
	if err != nil {
		return ux.FormatError(err, "building schedule")
	}

	if out != "" {
		if saveErr := schedule.SaveResult(result, out); saveErr != nil {
			return ux.FormatError(saveErr, "saving schedule result")
		}
	}

	if cmdCtx.Format == "json" || cmdCtx.Format == "yaml" {
		formatter, err := ux.NewFormatter(cmdCtx.Format, &ux.FormatterOptions{
			NoColor: cmdCtx.NoColor,
		})
		if err != nil {
			return err
		}
		if err := formatter.Format(result); err != nil {
			return err
		}
	} else if !cmdCtx.Quiet {
		printScheduleSummary(result, out, cmdCtx.Verbose)
	}

	if strict && result.HasConflicts() {
		exitcode.Exit(exitcode.ConflictsFound)
	}

	return nil
}

func printScheduleSummary(result *types.Result, savedTo string, verbose bool) {
	fmt.Printf("✓ Scheduled %d tasks", result.Stats.TaskCount)
	if result.EventName != "" {
		fmt.Printf(" for %s", result.EventName)
	}
	fmt.Println()

	if !result.Stats.ScheduleEnd.IsZero() {
		fmt.Printf("  %s → %s (makespan %s, critical path %d tasks)\n",
			result.EventStart.Format("2006-01-02 15:04"),
			result.Stats.ScheduleEnd.Format("2006-01-02 15:04"),
			result.Stats.Makespan,
			result.Stats.CriticalPathLength,
		)
	}
	fmt.Println()

	for _, tl := range result.Timelines {
		label := string(tl.TaskID)
		priority := ""
		if task, ok := result.TaskFor(tl.TaskID); ok {
			if task.Name != "" {
				label = task.Name
			}
			priority = string(task.Priority)
		}

		fmt.Printf("  %s–%s  %-10s %s\n",
			tl.Start.Format("15:04"),
			tl.End.Format("15:04"),
			"["+priority+"]",
			label,
		)

		if verbose {
			for _, note := range tl.Constraints {
				fmt.Printf("      · %s\n", note)
			}
		}
	}

	if len(result.BrokenCycles) > 0 {
		fmt.Printf("\n⚠ Broken circular dependencies (%d):\n", len(result.BrokenCycles))
		ids := make([]string, 0, len(result.BrokenCycles))
		for _, id := range result.BrokenCycles {
			ids = append(ids, string(id))
		}
		fmt.Printf("  %s\n", strings.Join(ids, ", "))
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\n⚠ Consolidation warnings (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("  • %s\n", w)
		}
	}

	if result.HasConflicts() {
		fmt.Printf("\n✗ Conflicts (%d):\n", len(result.Conflicts))
		for _, c := range result.Conflicts {
			fmt.Printf("  [%s] %s: %s\n", c.Severity, c.Type, c.Description)
			if c.SuggestedResolution != "" {
				fmt.Printf("      ↳ %s\n", c.SuggestedResolution)
			}
		}
	} else {
		fmt.Println("\n✓ No conflicts detected")
	}

	fmt.Println("\nNext steps:")
	step := 1
	if savedTo != "" {
		fmt.Printf("  %d. Review the timeline: runsheet review --in %s\n", step, savedTo)
		step++
	} else {
		fmt.Printf("  %d. Save a copy for review: runsheet schedule --out schedule.json\n", step)
		step++
	}
	if result.HasConflicts() {
		fmt.Printf("  %d. Resolve the conflicts above, then re-run: runsheet schedule\n", step)
	} else {
		fmt.Printf("  %d. Share the timeline with your vendors: runsheet schedule --format json\n", step)
	}
}
