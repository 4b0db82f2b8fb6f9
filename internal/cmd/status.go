package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/runsheethq/runsheet/internal/ux"
	"github.com/runsheethq/runsheet/pkg/runsheet/schedule"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show project and schedule status",
	Long: `Display an overview of the current planning state.

Status information includes:
  • Request file (event, task count, whether it validates)
  • Saved schedule (task count, conflicts, makespan, freshness)
  • Active configuration (strict mode, working hours)

Examples:
  # Display status in default text format
  runsheet status

  # Output as JSON for scripting
  runsheet status --format json

  # Output as YAML
  runsheet status --format yaml
`,
	RunE: instrumented("status", runStatus),
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// StatusReport represents the complete project status
type StatusReport struct {
	Timestamp string         `json:"timestamp"`
	Request   RequestStatus  `json:"request"`
	Schedule  ScheduleStatus `json:"schedule"`
	Config    ConfigStatus   `json:"config"`
	Issues    []string       `json:"issues,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
	NextSteps []string       `json:"next_steps,omitempty"`
	Healthy   bool           `json:"healthy"`
}

type RequestStatus struct {
	Exists      bool      `json:"exists"`
	Path        string    `json:"path,omitempty"`
	Event       string    `json:"event,omitempty"`
	EventStart  time.Time `json:"event_start,omitempty"`
	Tasks       int       `json:"tasks"`
	Valid       bool      `json:"valid"`
	Error       string    `json:"error,omitempty"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

type ScheduleStatus struct {
	Exists      bool      `json:"exists"`
	Path        string    `json:"path,omitempty"`
	Tasks       int       `json:"tasks"`
	Conflicts   int       `json:"conflicts"`
	Makespan    string    `json:"makespan,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`

	// Stale means the request file changed after this schedule was written.
	Stale bool `json:"stale,omitempty"`
}

type ConfigStatus struct {
	Strict       bool   `json:"strict"`
	WorkingHours string `json:"working_hours,omitempty"`
	LogLevel     string `json:"log_level,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	defaults := ux.NewPathDefaults()
	report := buildStatusReport(defaults.RequestFile(), defaults.ScheduleFile())

	return outputStatus(cmdCtx, report)
}

func buildStatusReport(requestPath, schedulePath string) *StatusReport {
	report := &StatusReport{
		Timestamp: time.Now().Format(time.RFC3339),
		Issues:    []string{},
		Warnings:  []string{},
		NextSteps: []string{},
	}

	report.Config = buildConfigStatus()
	report.Request = buildRequestStatus(requestPath)
	report.Schedule = buildScheduleStatus(schedulePath)

	analyzeStatus(report)
	report.Healthy = len(report.Issues) == 0

	return report
}

func buildConfigStatus() ConfigStatus {
	status := ConfigStatus{}
	cfg, err := loadConfig()
	if err != nil {
		return status
	}

	status.Strict = cfg.Scheduling.Strict
	status.LogLevel = cfg.Logging.Level
	if cfg.Scheduling.WorkingHoursStart != "" && cfg.Scheduling.WorkingHoursEnd != "" {
		status.WorkingHours = cfg.Scheduling.WorkingHoursStart + "-" + cfg.Scheduling.WorkingHoursEnd
	}
	return status
}

func buildRequestStatus(path string) RequestStatus {
	status := RequestStatus{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		return status
	}
	status.Exists = true
	status.LastUpdated = info.ModTime()

	req, err := schedule.LoadRequest(path)
	if err != nil {
		status.Error = err.Error()
		return status
	}

	status.Event = req.EventName
	status.EventStart = req.EventStart
	status.Tasks = len(req.Tasks)

	if err := req.Validate(); err != nil {
		status.Error = err.Error()
		return status
	}
	status.Valid = true
	return status
}

func buildScheduleStatus(path string) ScheduleStatus {
	status := ScheduleStatus{Path: path}

	if _, err := os.Stat(path); err != nil {
		return status
	}
	status.Exists = true

	result, err := schedule.LoadResult(path)
	if err != nil {
		return status
	}

	status.Tasks = result.Stats.TaskCount
	status.Conflicts = result.Stats.ConflictCount
	status.Fingerprint = result.Fingerprint
	status.GeneratedAt = result.GeneratedAt
	if result.Stats.Makespan.Std() > 0 {
		status.Makespan = result.Stats.Makespan.String()
	}

	return status
}

// analyzeStatus derives issues, warnings, and the suggested next command from
// the collected state.
func analyzeStatus(report *StatusReport) {
	req := &report.Request
	sched := &report.Schedule

	switch {
	case !req.Exists:
		report.NextSteps = append(report.NextSteps, "Create a request file with 'runsheet init'")
	case req.Error != "":
		report.Issues = append(report.Issues, "Request file does not validate: "+req.Error)
		report.NextSteps = append(report.NextSteps, "Check it with 'runsheet validate --in "+req.Path+"'")
	case !sched.Exists:
		report.NextSteps = append(report.NextSteps, "Build the timeline with 'runsheet schedule'")
	}

	if req.Exists && sched.Exists && !req.LastUpdated.IsZero() &&
		!sched.GeneratedAt.IsZero() && req.LastUpdated.After(sched.GeneratedAt) {
		sched.Stale = true
		report.Warnings = append(report.Warnings, "Request file changed after the schedule was generated")
		report.NextSteps = append(report.NextSteps, "Refresh it with 'runsheet schedule'")
	}

	if sched.Exists && sched.Conflicts > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("Schedule has %d unresolved conflicts", sched.Conflicts))
		report.NextSteps = append(report.NextSteps, "Inspect them with 'runsheet review'")
	}

	if req.Exists && req.Valid && sched.Exists && !sched.Stale && sched.Conflicts == 0 {
		report.NextSteps = append(report.NextSteps, "Schedule is current, share it with 'runsheet schedule --format json'")
	}
}

func outputStatus(cmdCtx *CommandContext, report *StatusReport) error {
	if cmdCtx.Format == "json" || cmdCtx.Format == "yaml" {
		formatter, err := ux.NewFormatter(cmdCtx.Format, &ux.FormatterOptions{
			NoColor: cmdCtx.NoColor,
		})
		if err != nil {
			return err
		}
		return formatter.Format(report)
	}

	return outputStatusText(report)
}

func outputStatusText(report *StatusReport) error {
	fmt.Println()
	fmt.Println("Project Status")
	fmt.Println("══════════════")
	fmt.Println()

	fmt.Println("Request:")
	req := report.Request
	switch {
	case !req.Exists:
		fmt.Printf("  ○ No request file (%s)\n", req.Path)
	case req.Error != "":
		fmt.Printf("  ✗ %s does not validate\n", req.Path)
		fmt.Printf("    %s\n", req.Error)
	default:
		event := req.Event
		if event == "" {
			event = "untitled event"
		}
		fmt.Printf("  ✓ %s: %s, %d tasks\n", req.Path, event, req.Tasks)
		if !req.EventStart.IsZero() {
			fmt.Printf("    Event starts %s\n", req.EventStart.Format("Mon, 2 Jan 2006 15:04"))
		}
	}
	fmt.Println()

	fmt.Println("Schedule:")
	sched := report.Schedule
	switch {
	case !sched.Exists:
		fmt.Printf("  ○ No saved schedule (%s)\n", sched.Path)
	default:
		fmt.Printf("  ✓ %s: %d tasks, %d conflicts", sched.Path, sched.Tasks, sched.Conflicts)
		if sched.Makespan != "" {
			fmt.Printf(", makespan %s", sched.Makespan)
		}
		fmt.Println()
		if !sched.GeneratedAt.IsZero() {
			fmt.Printf("    Generated %s\n", sched.GeneratedAt.Format("Mon, 2 Jan 2006 15:04"))
		}
		if sched.Stale {
			fmt.Println("    ⚠ Stale, the request changed since this was generated")
		}
	}
	fmt.Println()

	fmt.Println("Config:")
	fmt.Printf("  Strict mode: %t\n", report.Config.Strict)
	if report.Config.WorkingHours != "" {
		fmt.Printf("  Working hours: %s\n", report.Config.WorkingHours)
	}
	if report.Config.LogLevel != "" {
		fmt.Printf("  Log level: %s\n", report.Config.LogLevel)
	}
	fmt.Println()

	if len(report.Issues) > 0 {
		fmt.Println("❌ Issues:")
		for _, issue := range report.Issues {
			fmt.Printf("   • %s\n", issue)
		}
		fmt.Println()
	}

	if len(report.Warnings) > 0 {
		fmt.Println("⚠️  Warnings:")
		for _, warning := range report.Warnings {
			fmt.Printf("   • %s\n", warning)
		}
		fmt.Println()
	}

	if len(report.NextSteps) > 0 {
		fmt.Println("📋 Next Steps:")
		for i, step := range report.NextSteps {
			fmt.Printf("   %d. %s\n", i+1, step)
		}
		fmt.Println()
	}

	return nil
}
