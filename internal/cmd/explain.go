package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/runsheethq/runsheet/internal/ux"
	"github.com/runsheethq/runsheet/pkg/runsheet/schedule"
	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

var explainCmd = &cobra.Command{
	Use:   "explain <task-id>",
	Short: "Explain why a task was scheduled where it was",
	Long: `Explain the placement of one task in a saved schedule.

The explanation covers:
  - The allocated slot, duration, and trailing buffer
  - The scheduling notes recorded during allocation
  - Which prerequisite pinned the start time
  - Tasks that wait on this one
  - Conflicts this task is involved in

This is useful for:
  - Answering "why does setup start so late?" without reading the whole timeline
  - Spotting the dependency chain behind a bottleneck
  - Deciding which task to shorten or re-prioritize

Examples:
  # Explain a task from the default schedule file
  runsheet explain setup-stage

  # Explain a task from a specific result
  runsheet explain setup-stage --in results/summer-gala.json

  # Output as JSON for tooling
  runsheet explain setup-stage --format json`,
	Args: cobra.ExactArgs(1),
	RunE: instrumented("explain", runExplain),
}

func init() {
	explainCmd.Flags().String("in", "schedule.json", "Saved schedule result to explain from")

	rootCmd.AddCommand(explainCmd)
}

// TaskExplanation is the structured answer to "why is this task here".
type TaskExplanation struct {
	TaskID   types.TaskID   `json:"task_id"`
	Name     string         `json:"name"`
	Priority types.Priority `json:"priority"`

	Start    time.Time      `json:"start_time"`
	End      time.Time      `json:"end_time"`
	Duration types.Duration `json:"duration"`
	Buffer   types.Duration `json:"buffer_time"`

	Notes []string `json:"scheduling_notes,omitempty"`

	Dependencies []DependencyInfo `json:"dependencies,omitempty"`
	Dependents   []DependentInfo  `json:"dependents,omitempty"`
	Conflicts    []types.Conflict `json:"conflicts,omitempty"`
}

// DependencyInfo describes one prerequisite and the start constraint it
// imposed. Gating marks the prerequisite that actually pinned the start.
type DependencyInfo struct {
	TaskID      types.TaskID `json:"task_id"`
	Parent      bool         `json:"parent,omitempty"`
	ReadyAt     time.Time    `json:"ready_at"`
	Gating      bool         `json:"gating,omitempty"`
	Unscheduled bool         `json:"unscheduled,omitempty"`
}

// DependentInfo describes one task waiting on the explained task.
type DependentInfo struct {
	TaskID types.TaskID `json:"task_id"`
	Start  time.Time    `json:"start_time"`
}

func runExplain(cmd *cobra.Command, args []string) error {
	taskID := types.TaskID(args[0])

	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

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

	explanation, err := explainTask(result, taskID)
	if err != nil {
		return err
	}

	if cmdCtx.Format == "json" || cmdCtx.Format == "yaml" {
		formatter, err := ux.NewFormatter(cmdCtx.Format, &ux.FormatterOptions{
			NoColor: cmdCtx.NoColor,
		})
		if err != nil {
			return err
		}
		return formatter.Format(explanation)
	}

	printExplanation(explanation)
	return nil
}

func explainTask(result *types.Result, taskID types.TaskID) (*TaskExplanation, error) {
	task, ok := result.TaskFor(taskID)
	if !ok {
		return nil, NewErrorWithSuggestions(
			fmt.Sprintf("Task %q is not in this schedule", taskID),
			nil,
			"List task IDs: runsheet review",
			"Check the spelling, IDs are lowercase with hyphens",
		)
	}

	tl, ok := result.TimelineFor(taskID)
	if !ok {
		return nil, fmt.Errorf("task %q has no timeline entry in this result", taskID)
	}

	explanation := &TaskExplanation{
		TaskID:   task.ID,
		Name:     task.Name,
		Priority: task.Priority,
		Start:    tl.Start,
		End:      tl.End,
		Duration: tl.Duration,
		Buffer:   tl.Buffer,
		Notes:    tl.Constraints,
	}

	explanation.Dependencies = collectDependencies(result, task, tl)
	explanation.Dependents = collectDependents(result, taskID)

	for _, c := range result.Conflicts {
		if c.Involves(taskID) {
			explanation.Conflicts = append(explanation.Conflicts, c)
		}
	}

	return explanation, nil
}

// collectDependencies resolves each prerequisite's ready time: end plus
// buffer, or start for a parent edge, matching how allocation computes the
// earliest start. The latest ready prerequisite that coincides with the
// task's start is marked gating.
func collectDependencies(result *types.Result, task types.Task, tl types.Timeline) []DependencyInfo {
	ids := make([]types.TaskID, 0, len(task.DependsOn)+1)
	if task.ParentID != "" {
		ids = append(ids, task.ParentID)
	}
	ids = append(ids, task.DependsOn...)

	deps := make([]DependencyInfo, 0, len(ids))
	var latest time.Time
	latestIdx := -1

	for _, depID := range ids {
		info := DependencyInfo{
			TaskID: depID,
			Parent: depID == task.ParentID,
		}

		depTL, ok := result.TimelineFor(depID)
		if !ok {
			// A prerequisite severed from a broken cycle has no slot yet when
			// its dependent is placed, so it imposed no constraint.
			info.Unscheduled = true
			deps = append(deps, info)
			continue
		}

		if info.Parent {
			info.ReadyAt = depTL.Start
		} else {
			info.ReadyAt = depTL.End.Add(depTL.Buffer.Std())
		}

		if info.ReadyAt.After(latest) {
			latest = info.ReadyAt
			latestIdx = len(deps)
		}
		deps = append(deps, info)
	}

	if latestIdx >= 0 && latest.Equal(tl.Start) {
		deps[latestIdx].Gating = true
	}

	return deps
}

func collectDependents(result *types.Result, taskID types.TaskID) []DependentInfo {
	var dependents []DependentInfo
	for _, t := range result.Tasks {
		waiting := t.ParentID == taskID
		for _, dep := range t.DependsOn {
			if dep == taskID {
				waiting = true
				break
			}
		}
		if !waiting {
			continue
		}

		info := DependentInfo{TaskID: t.ID}
		if depTL, ok := result.TimelineFor(t.ID); ok {
			info.Start = depTL.Start
		}
		dependents = append(dependents, info)
	}

	sort.Slice(dependents, func(a, b int) bool {
		return dependents[a].Start.Before(dependents[b].Start)
	})
	return dependents
}

func printExplanation(e *TaskExplanation) {
	fmt.Printf("\n=== Task: %s", e.TaskID)
	if e.Name != "" && e.Name != string(e.TaskID) {
		fmt.Printf(" (%s)", e.Name)
	}
	fmt.Printf(" ===\n\n")

	fmt.Println("Placement:")
	fmt.Printf("  Start:    %s\n", e.Start.Format(time.RFC1123))
	fmt.Printf("  End:      %s\n", e.End.Format(time.RFC1123))
	fmt.Printf("  Duration: %s", e.Duration)
	if e.Buffer.Std() > 0 {
		fmt.Printf("  (+%s buffer before dependents)", e.Buffer)
	}
	fmt.Printf("\n  Priority: %s\n", e.Priority)

	if len(e.Notes) > 0 {
		fmt.Println("\nScheduling notes:")
		for _, note := range e.Notes {
			fmt.Printf("  • %s\n", note)
		}
	}

	if len(e.Dependencies) > 0 {
		fmt.Printf("\nWaits on (%d):\n", len(e.Dependencies))
		for _, dep := range e.Dependencies {
			var detail string
			switch {
			case dep.Unscheduled:
				detail = "unscheduled, imposed no constraint"
			case dep.Parent:
				detail = fmt.Sprintf("parent, may start once it starts at %s", dep.ReadyAt.Format("15:04"))
			default:
				detail = fmt.Sprintf("ready at %s", dep.ReadyAt.Format("15:04"))
			}
			marker := ""
			if dep.Gating {
				marker = "  ← pinned the start"
			}
			fmt.Printf("  %s (%s)%s\n", dep.TaskID, detail, marker)
		}
	} else {
		fmt.Println("\nWaits on: nothing, placed at the scheduling cursor")
	}

	if len(e.Dependents) > 0 {
		fmt.Printf("\nBlocks (%d):\n", len(e.Dependents))
		for _, dep := range e.Dependents {
			if dep.Start.IsZero() {
				fmt.Printf("  %s\n", dep.TaskID)
				continue
			}
			fmt.Printf("  %s (starts %s)\n", dep.TaskID, dep.Start.Format("15:04"))
		}
	}

	if len(e.Conflicts) > 0 {
		fmt.Printf("\nConflicts involving this task (%d):\n", len(e.Conflicts))
		for _, c := range e.Conflicts {
			fmt.Printf("  [%s] %s: %s\n", c.Severity, c.Type, c.Description)
			if c.SuggestedResolution != "" {
				fmt.Printf("     ↳ %s\n", c.SuggestedResolution)
			}
		}
	} else {
		fmt.Println("\nConflicts involving this task: none")
	}

	fmt.Println()
}
