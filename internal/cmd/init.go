package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/runsheethq/runsheet/internal/tui"
	"github.com/runsheethq/runsheet/internal/ux"
	"github.com/runsheethq/runsheet/pkg/runsheet/schedule"
	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter request file",
	Long: `Create a request file for a new event through a short interactive form.

The wizard asks for the event name, date, start time, and working hours,
and can seed the file with a set of example tasks to edit. The result is
written as YAML so it stays comfortable to maintain by hand.`,
	RunE: instrumented("init", runInit),
}

func init() {
	initCmd.Flags().String("out", "runsheet.yaml", "Where to write the request file")
	initCmd.Flags().Bool("force", false, "Overwrite an existing file without asking")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(out); err == nil && !force {
		if !ux.Confirm(fmt.Sprintf("%s already exists. Overwrite it?", out), false) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	defaults := tui.SetupDefaults{
		WorkingHours: types.DefaultWorkingHours(),
	}
	if cfg, err := loadConfig(); err == nil {
		if cfg.Scheduling.WorkingHoursStart != "" {
			defaults.WorkingHours.Start = cfg.Scheduling.WorkingHoursStart
		}
		if cfg.Scheduling.WorkingHoursEnd != "" {
			defaults.WorkingHours.End = cfg.Scheduling.WorkingHoursEnd
		}
	}

	req, err := tui.RunSetupWizard(defaults)
	if err != nil {
		return ux.FormatError(err, "running setup wizard")
	}

	if err := schedule.SaveRequest(req, out); err != nil {
		return ux.FormatError(err, "writing request file")
	}

	fmt.Printf("\n✓ Created %s", out)
	if req.EventName != "" {
		fmt.Printf(" for %s", req.EventName)
	}
	fmt.Printf(" with %d tasks\n", len(req.Tasks))

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit the task list: %s\n", out)
	fmt.Printf("  2. Check it parses: runsheet validate --in %s\n", out)
	fmt.Printf("  3. Build the timeline: runsheet schedule --in %s\n", out)

	return nil
}
