package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/runsheethq/runsheet/internal/health"
	"github.com/runsheethq/runsheet/internal/ux"
	"github.com/runsheethq/runsheet/pkg/runsheet/schedule"
	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostics on the runsheet setup",
	Long: `Run diagnostics to check that runsheet is ready to build schedules.

Checks include:
  • Global configuration (~/.runsheet/config.yaml parses, working hours valid)
  • Schedule engine (a canary request runs through the full pipeline)
  • Request file (a request exists and parses)
  • Saved schedule (a previous result exists)

Examples:
  # Run diagnostics with text output
  runsheet doctor

  # Output as JSON for CI/CD
  runsheet doctor --format json
`,
	RunE: instrumented("doctor", runDoctor),
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// DoctorReport represents the complete diagnostics report
type DoctorReport struct {
	Config    *DoctorCheck `json:"config"`
	Engine    *DoctorCheck `json:"engine"`
	Request   *DoctorCheck `json:"request"`
	Schedule  *DoctorCheck `json:"schedule"`
	Issues    []string     `json:"issues"`
	Warnings  []string     `json:"warnings"`
	NextSteps []string     `json:"next_steps"`
	Healthy   bool         `json:"healthy"`
}

// DoctorCheck represents a single diagnostic result
type DoctorCheck struct {
	Name    string                 `json:"name"`
	Status  string                 `json:"status"` // "ok", "warning", "error", "missing"
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	report := &DoctorReport{
		Issues:    []string{},
		Warnings:  []string{},
		NextSteps: []string{},
	}

	checkConfig(report)
	checkEngine(cmd, report)
	checkRequestFile(report)
	checkScheduleFile(report)

	report.Healthy = len(report.Issues) == 0

	return outputDoctorReport(cmdCtx, report)
}

func checkConfig(report *DoctorReport) {
	cfg, err := loadConfig()
	if err != nil {
		report.Config = &DoctorCheck{
			Name:    "Config",
			Status:  "error",
			Message: fmt.Sprintf("Configuration failed to load: %v", err),
		}
		report.Issues = append(report.Issues, "Configuration file is unreadable or invalid")
		report.NextSteps = append(report.NextSteps, "Inspect the file with 'runsheet config path' and fix or delete it")
		return
	}

	configPath, _ := getConfigPath()
	check := &DoctorCheck{
		Name:    "Config",
		Status:  "ok",
		Message: fmt.Sprintf("Configuration loaded from %s", configPath),
		Details: map[string]interface{}{
			"path":       configPath,
			"log_level":  cfg.Logging.Level,
			"strict":     cfg.Scheduling.Strict,
			"work_start": cfg.Scheduling.WorkingHoursStart,
			"work_end":   cfg.Scheduling.WorkingHoursEnd,
		},
	}

	// Configured working hours feed every new request, so a bad window here
	// breaks scheduling everywhere.
	if cfg.Scheduling.WorkingHoursStart != "" || cfg.Scheduling.WorkingHoursEnd != "" {
		wh := types.WorkingHours{
			Start: cfg.Scheduling.WorkingHoursStart,
			End:   cfg.Scheduling.WorkingHoursEnd,
		}
		if err := wh.Validate(); err != nil {
			check.Status = "warning"
			check.Message = fmt.Sprintf("Configured working hours are invalid: %v", err)
			report.Warnings = append(report.Warnings, "Configured working hours are invalid, requests fall back to defaults")
			report.NextSteps = append(report.NextSteps, "Fix the window with 'runsheet config set scheduling.working_hours_start HH:MM'")
		}
	}

	report.Config = check
}

func checkEngine(cmd *cobra.Command, report *DoctorReport) {
	checker := health.NewEngineChecker(schedule.New())

	start := time.Now()
	result := checker.Check(cmd.Context())
	latency := time.Since(start)

	check := &DoctorCheck{
		Name:    "Schedule engine",
		Message: result.Message,
		Details: map[string]interface{}{
			"latency_ms": latency.Milliseconds(),
		},
	}
	for k, v := range result.Details {
		check.Details[k] = v
	}

	switch result.Status {
	case health.StatusHealthy:
		check.Status = "ok"
	case health.StatusDegraded:
		check.Status = "warning"
		report.Warnings = append(report.Warnings, "Schedule engine canary produced an incomplete schedule")
	default:
		check.Status = "error"
		report.Issues = append(report.Issues, "Schedule engine canary failed")
	}

	report.Engine = check
}

func checkRequestFile(report *DoctorReport) {
	path := ux.NewPathDefaults().RequestFile()
	if _, err := os.Stat(path); err != nil {
		report.Request = &DoctorCheck{
			Name:    "Request",
			Status:  "missing",
			Message: "No request file found",
		}
		report.NextSteps = append(report.NextSteps, "Create a starter request with 'runsheet init'")
		return
	}

	req, err := schedule.LoadRequest(path)
	if err != nil {
		report.Request = &DoctorCheck{
			Name:    "Request",
			Status:  "error",
			Message: fmt.Sprintf("Request file %s does not parse: %v", path, err),
			Details: map[string]interface{}{"path": path},
		}
		report.Issues = append(report.Issues, "Request file exists but does not parse")
		report.NextSteps = append(report.NextSteps, "Check the file with 'runsheet validate --in "+path+"'")
		return
	}

	report.Request = &DoctorCheck{
		Name:    "Request",
		Status:  "ok",
		Message: fmt.Sprintf("Request file %s parses (%d tasks)", path, len(req.Tasks)),
		Details: map[string]interface{}{
			"path":  path,
			"tasks": len(req.Tasks),
			"event": req.EventName,
		},
	}
}

func checkScheduleFile(report *DoctorReport) {
	path := ux.NewPathDefaults().ScheduleFile()
	if _, err := os.Stat(path); err != nil {
		report.Schedule = &DoctorCheck{
			Name:    "Schedule",
			Status:  "missing",
			Message: "No saved schedule found",
		}
		if report.Request != nil && report.Request.Status == "ok" {
			report.NextSteps = append(report.NextSteps, "Build the timeline with 'runsheet schedule'")
		}
		return
	}

	result, err := schedule.LoadResult(path)
	if err != nil {
		report.Schedule = &DoctorCheck{
			Name:    "Schedule",
			Status:  "error",
			Message: fmt.Sprintf("Saved schedule %s does not parse: %v", path, err),
			Details: map[string]interface{}{"path": path},
		}
		report.Issues = append(report.Issues, "Saved schedule exists but does not parse")
		report.NextSteps = append(report.NextSteps, "Regenerate it with 'runsheet schedule --out "+path+"'")
		return
	}

	check := &DoctorCheck{
		Name:    "Schedule",
		Status:  "ok",
		Message: fmt.Sprintf("Saved schedule %s parses (%d tasks, %d conflicts)", path, result.Stats.TaskCount, result.Stats.ConflictCount),
		Details: map[string]interface{}{
			"path":         path,
			"tasks":        result.Stats.TaskCount,
			"conflicts":    result.Stats.ConflictCount,
			"generated_at": result.GeneratedAt.Format(time.RFC3339),
		},
	}
	if result.HasConflicts() {
		check.Status = "warning"
		report.Warnings = append(report.Warnings, fmt.Sprintf("Saved schedule has %d unresolved conflicts", result.Stats.ConflictCount))
		report.NextSteps = append(report.NextSteps, "Review conflicts with 'runsheet review --in "+path+"'")
	}

	report.Schedule = check
}

func outputDoctorReport(cmdCtx *CommandContext, report *DoctorReport) error {
	if cmdCtx.Format == "json" || cmdCtx.Format == "yaml" {
		formatter, err := ux.NewFormatter(cmdCtx.Format, &ux.FormatterOptions{
			NoColor: cmdCtx.NoColor,
		})
		if err != nil {
			return err
		}
		if err := formatter.Format(report); err != nil {
			return err
		}
		if !report.Healthy {
			return fmt.Errorf("diagnostics found issues")
		}
		return nil
	}

	return outputDoctorText(report)
}

func outputDoctorText(report *DoctorReport) error {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                   runsheet Diagnostics                       ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()

	fmt.Println("Setup:")
	printDoctorCheck(report.Config)
	printDoctorCheck(report.Engine)
	fmt.Println()

	fmt.Println("Project:")
	printDoctorCheck(report.Request)
	printDoctorCheck(report.Schedule)
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

	if report.Healthy {
		fmt.Println("✅ runsheet is ready to build schedules")
		return nil
	}

	fmt.Println("❌ Setup has issues that need attention")
	if len(report.Issues) == 0 {
		fmt.Println("   (Warnings present but runsheet is functional)")
	}
	return fmt.Errorf("diagnostics found issues")
}

func printDoctorCheck(check *DoctorCheck) {
	if check == nil {
		return
	}

	icon := " "
	switch check.Status {
	case "ok":
		icon = "✓"
	case "warning":
		icon = "⚠"
	case "error":
		icon = "✗"
	case "missing":
		icon = "○"
	}

	fmt.Printf("  %s %s: %s\n", icon, check.Name, check.Message)
}
