package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runsheethq/runsheet/internal/tui"
	"github.com/runsheethq/runsheet/internal/ux"
	"github.com/runsheethq/runsheet/pkg/runsheet/schedule"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Interactively review a saved schedule",
	Long: `Launch an interactive terminal UI to review a schedule result.

The TUI allows you to:
- Walk the timeline in execution or chronological order
- Inspect per-task timing, buffers, and scheduling notes
- Browse detected conflicts with severity highlighting
- Approve the schedule or reject it with a reason`,
	RunE: instrumented("review", runReview),
}

func init() {
	reviewCmd.Flags().String("in", "schedule.json", "Saved schedule result to review")

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	in, _ := cmd.Flags().GetString("in")

	if !cmd.Flags().Changed("in") {
		in = ux.NewPathDefaults().ScheduleFile()
	}

	if err := ux.ValidateRequiredFile(in, "Schedule result", "runsheet schedule --out "+in); err != nil {
		return ux.EnhanceError(err)
	}

	result, err := schedule.LoadResult(in)
	if err != nil {
		return ResultLoadError(in, err)
	}

	fmt.Printf("=== Schedule Review (TUI) ===\n")
	fmt.Printf("Schedule: %s (%d tasks, %d conflicts)\n\n", in, result.Stats.TaskCount, result.Stats.ConflictCount)

	review, err := tui.RunScheduleReview(result)
	if err != nil {
		return ux.FormatError(err, "running schedule review TUI")
	}

	if review.Approved {
		fmt.Printf("\n✓ Schedule approved\n")
		fmt.Println("\nNext steps:")
		fmt.Printf("  1. Share the timeline: runsheet schedule --format json\n")
	} else {
		fmt.Printf("\n✗ Schedule rejected\n")
		if review.Reason != "" {
			fmt.Printf("  Reason: %s\n", review.Reason)
		}
		fmt.Println("\nNext steps:")
		fmt.Printf("  1. Adjust the request file and re-run: runsheet schedule\n")
	}

	return nil
}
