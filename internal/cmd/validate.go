package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runsheethq/runsheet/internal/consolidate"
	"github.com/runsheethq/runsheet/internal/exitcode"
	"github.com/runsheethq/runsheet/internal/graph"
	"github.com/runsheethq/runsheet/internal/ux"
	"github.com/runsheethq/runsheet/pkg/runsheet/schedule"
	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a request file without building a timeline",
	Long: `Validate a request file and report what scheduling would work with.

Runs consolidation and dependency analysis only: no start or end times are
allocated. The report covers the unified task count, data-gap warnings from
the annotation sources, the dependency edge count, and any circular
dependencies that a schedule run would break.

Exits with a validation error code when the request itself is unusable.`,
	RunE: instrumented("validate", runValidate),
}

func init() {
	validateCmd.Flags().String("in", "runsheet.yaml", "Request file to validate (yaml or json)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	in, _ := cmd.Flags().GetString("in")

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

	if err := req.Validate(); err != nil {
		fmt.Printf("✗ Request is invalid: %v\n", err)
		exitcode.Exit(exitcode.ValidationError)
	}

	var cons *consolidate.Consolidated
	if len(req.Tasks) > 0 {
		cons, err = consolidate.Normalize(req.Tasks)
	} else {
		cons, err = consolidate.Merge(req.Sources)
	}
	if err != nil {
		return ux.FormatError(err, "consolidating request")
	}

	g := graph.Build(cons.Tasks)
	order := graph.Sort(g)

	fmt.Printf("✓ Request file is valid: %s\n", in)
	fmt.Printf("  Tasks: %d\n", len(cons.Tasks))
	fmt.Printf("  Dependency edges: %d\n", g.EdgeCount())
	fmt.Printf("  Event start: %s\n", req.EventStart.Format("2006-01-02 15:04"))

	hours := req.WorkingHours
	if hours.IsZero() {
		hours = types.DefaultWorkingHours()
		fmt.Printf("  Working hours: %s-%s (default)\n", hours.Start, hours.End)
	} else {
		fmt.Printf("  Working hours: %s-%s\n", hours.Start, hours.End)
	}

	if len(cons.Warnings) > 0 {
		fmt.Printf("\n⚠ Consolidation warnings (%d):\n", len(cons.Warnings))
		for _, w := range cons.Warnings {
			fmt.Printf("  • %s\n", w)
		}
	}

	if len(order.Cycled) > 0 {
		fmt.Printf("\n⚠ Circular dependencies (%d tasks affected):\n", len(order.Cycled))
		for _, id := range order.Cycled {
			prereqs := make([]string, 0)
			for _, dep := range g.PrereqsOf(id) {
				prereqs = append(prereqs, string(dep))
			}
			fmt.Printf("  %s ← depends on %s\n", id, strings.Join(prereqs, ", "))
		}
		fmt.Println("\nScheduling will break these cycles deterministically and flag the tasks.")
	}

	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Build the timeline: runsheet schedule --in %s\n", in)

	return nil
}
