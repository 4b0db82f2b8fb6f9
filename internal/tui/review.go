package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

// ScheduleReviewResult holds the outcome of a schedule review session
type ScheduleReviewResult struct {
	Approved bool
	Reason   string
}

// keyMap defines the keyboard shortcuts
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Back      key.Binding
	Conflicts key.Binding
	Sort      key.Binding
	Approve   key.Binding
	Reject    key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter", "right", "l"),
		key.WithHelp("enter", "details"),
	),
	Back: key.NewBinding(
		key.WithKeys("left", "h", "esc"),
		key.WithHelp("h/esc", "back"),
	),
	Conflicts: key.NewBinding(
		key.WithKeys("c", "C"),
		key.WithHelp("c", "conflicts"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s", "S"),
		key.WithHelp("s", "sort"),
	),
	Approve: key.NewBinding(
		key.WithKeys("a", "A"),
		key.WithHelp("a", "approve"),
	),
	Reject: key.NewBinding(
		key.WithKeys("r", "R"),
		key.WithHelp("r", "reject"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// scheduleReviewModel is the BubbleTea model for schedule review
type scheduleReviewModel struct {
	schedule       *types.Result
	order          []int  // indexes into schedule.Timelines in display order
	byPriority     bool   // false = chronological, true = priority first
	cursor         int
	selectedEntry  int
	viewMode       string // "list", "detail", or "conflicts"
	approved       *bool  // nil = not decided, true/false = approved/rejected
	rejectionInput string
	editingReason  bool
	review         *ScheduleReviewResult
	width          int
	height         int
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true).
				PaddingLeft(2)

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	detailKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginLeft(2).
			MarginTop(1)

	approveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	rejectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	severityCritical = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9")).
				Bold(true)

	severityHigh = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))

	severityMedium = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	severityLow = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func severityStyle(severity types.Priority) lipgloss.Style {
	switch severity {
	case types.PriorityCritical:
		return severityCritical
	case types.PriorityHigh:
		return severityHigh
	case types.PriorityMedium:
		return severityMedium
	default:
		return severityLow
	}
}

// displayOrder returns timeline indexes in the requested order. Timelines
// arrive chronologically from the allocator; the priority ordering surfaces
// critical tasks first and keeps the chronological order within a level.
func displayOrder(res *types.Result, byPriority bool) []int {
	order := make([]int, len(res.Timelines))
	for i := range order {
		order[i] = i
	}
	if !byPriority {
		return order
	}

	sort.SliceStable(order, func(a, b int) bool {
		pa := taskPriority(res, res.Timelines[order[a]].TaskID)
		pb := taskPriority(res, res.Timelines[order[b]].TaskID)
		return pa.IsHigherThan(pb)
	})
	return order
}

func taskPriority(res *types.Result, id types.TaskID) types.Priority {
	if task, ok := res.TaskFor(id); ok {
		return task.Priority
	}
	return ""
}

func taskName(res *types.Result, id types.TaskID) string {
	if task, ok := res.TaskFor(id); ok && task.Name != "" {
		return task.Name
	}
	return string(id)
}

// formatSpan renders a timeline span, repeating the date only when the task
// crosses midnight.
func formatSpan(start, end time.Time) string {
	if start.YearDay() == end.YearDay() && start.Year() == end.Year() {
		return fmt.Sprintf("%s %s-%s", start.Format("Jan 2"), start.Format("15:04"), end.Format("15:04"))
	}
	return fmt.Sprintf("%s-%s", start.Format("Jan 2 15:04"), end.Format("Jan 2 15:04"))
}

// Init initializes the model
func (m scheduleReviewModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m scheduleReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// If editing rejection reason
		if m.editingReason {
			switch msg.String() {
			case "enter":
				m.editingReason = false
				m.review = &ScheduleReviewResult{
					Approved: false,
					Reason:   m.rejectionInput,
				}
				return m, tea.Quit
			case "esc":
				m.editingReason = false
				m.rejectionInput = ""
				m.approved = nil
				return m, nil
			case "backspace":
				if len(m.rejectionInput) > 0 {
					m.rejectionInput = m.rejectionInput[:len(m.rejectionInput)-1]
				}
				return m, nil
			default:
				if len(msg.String()) == 1 {
					m.rejectionInput += msg.String()
				}
				return m, nil
			}
		}

		// Regular navigation
		switch {
		case key.Matches(msg, keys.Quit):
			if m.approved == nil {
				// Default to rejected if not decided
				approved := false
				m.approved = &approved
				m.review = &ScheduleReviewResult{
					Approved: false,
					Reason:   "Review cancelled",
				}
			}
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			if m.viewMode == "list" && m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.viewMode == "list" && m.cursor < len(m.order)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, keys.Select):
			if m.viewMode == "list" {
				m.selectedEntry = m.cursor
				m.viewMode = "detail"
			}
			return m, nil

		case key.Matches(msg, keys.Back):
			if m.viewMode != "list" {
				m.viewMode = "list"
			}
			return m, nil

		case key.Matches(msg, keys.Conflicts):
			if m.viewMode == "conflicts" {
				m.viewMode = "list"
			} else {
				m.viewMode = "conflicts"
			}
			return m, nil

		case key.Matches(msg, keys.Sort):
			m.byPriority = !m.byPriority
			m.order = displayOrder(m.schedule, m.byPriority)
			m.cursor = 0
			return m, nil

		case key.Matches(msg, keys.Approve):
			// Approve schedule
			approved := true
			m.approved = &approved
			m.review = &ScheduleReviewResult{
				Approved: true,
				Reason:   "",
			}
			return m, tea.Quit

		case key.Matches(msg, keys.Reject):
			// Reject schedule - prompt for reason
			rejected := false
			m.approved = &rejected
			m.editingReason = true
			return m, nil
		}
	}

	return m, nil
}

// View renders the current state
func (m scheduleReviewModel) View() string {
	if m.review != nil {
		// Show final result
		if m.review.Approved {
			return approveStyle.Render("\n✓ Schedule Approved\n\n")
		}
		reason := m.review.Reason
		if reason == "" {
			reason = "No reason provided"
		}
		return rejectStyle.Render(fmt.Sprintf("\n✗ Schedule Rejected\n  Reason: %s\n\n", reason))
	}

	var b strings.Builder

	// Title
	b.WriteString(titleStyle.Render("📋 Schedule Review"))
	b.WriteString("\n\n")

	// Overview
	event := m.schedule.EventName
	if event == "" {
		event = "Untitled event"
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s | %d tasks | %d conflicts",
		event, len(m.schedule.Timelines), len(m.schedule.Conflicts))))
	b.WriteString("\n\n")

	switch m.viewMode {
	case "list":
		m.renderList(&b)
	case "detail":
		m.renderDetail(&b)
	case "conflicts":
		m.renderConflicts(&b)
	}

	b.WriteString("\n")

	// Editing rejection reason
	if m.editingReason {
		b.WriteString(rejectStyle.Render("✗ Rejection Reason:"))
		b.WriteString("\n  ")
		b.WriteString(m.rejectionInput)
		b.WriteString("_")
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter: submit | esc: cancel"))
	} else {
		switch m.viewMode {
		case "list":
			b.WriteString(helpStyle.Render("↑/↓: navigate | enter: details | c: conflicts | s: sort | a: approve | r: reject | q: quit"))
		case "detail":
			b.WriteString(helpStyle.Render("h/esc: back to list | c: conflicts | a: approve | r: reject | q: quit"))
		case "conflicts":
			b.WriteString(helpStyle.Render("h/esc: back to list | a: approve | r: reject | q: quit"))
		}
	}

	return b.String()
}

func (m scheduleReviewModel) renderList(b *strings.Builder) {
	sortLabel := "chronological"
	if m.byPriority {
		sortLabel = "by priority"
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("Timelines (%s)", sortLabel)))
	b.WriteString("\n")

	for i, idx := range m.order {
		tl := m.schedule.Timelines[idx]
		style := itemStyle
		cursor := "  "
		if i == m.cursor {
			style = selectedItemStyle
			cursor = "→ "
		}

		line := fmt.Sprintf("%s[%d] %s | %s | %s",
			cursor,
			i+1,
			formatSpan(tl.Start, tl.End),
			taskName(m.schedule, tl.TaskID),
			taskPriority(m.schedule, tl.TaskID),
		)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
}

func (m scheduleReviewModel) renderDetail(b *strings.Builder) {
	tl := m.schedule.Timelines[m.order[m.selectedEntry]]
	b.WriteString(headerStyle.Render(fmt.Sprintf("Task %d of %d", m.selectedEntry+1, len(m.order))))
	b.WriteString("\n\n")

	details := []struct {
		key   string
		value string
	}{
		{"Task ID", string(tl.TaskID)},
		{"Name", taskName(m.schedule, tl.TaskID)},
		{"Priority", string(taskPriority(m.schedule, tl.TaskID))},
		{"Start", tl.Start.Format(time.RFC1123)},
		{"End", tl.End.Format(time.RFC1123)},
		{"Duration", tl.Duration.String()},
		{"Buffer", tl.Buffer.String()},
	}

	if task, ok := m.schedule.TaskFor(tl.TaskID); ok {
		details = append(details,
			struct{ key, value string }{"Dependencies", fmt.Sprintf("%d tasks", len(task.DependsOn))},
			struct{ key, value string }{"Resources", fmt.Sprintf("%d required", len(task.Resources))},
		)
		if task.Exclusive {
			details = append(details, struct{ key, value string }{"Exclusive", "yes"})
		}
	}

	for _, detail := range details {
		b.WriteString("  ")
		b.WriteString(detailKeyStyle.Render(fmt.Sprintf("%-15s:", detail.key)))
		b.WriteString(" ")
		b.WriteString(detailValueStyle.Render(detail.value))
		b.WriteString("\n")
	}

	if len(tl.Constraints) > 0 {
		b.WriteString("\n  ")
		b.WriteString(detailKeyStyle.Render("Constraints:"))
		b.WriteString("\n")
		for _, constraint := range tl.Constraints {
			b.WriteString(fmt.Sprintf("    • %s\n", constraint))
		}
	}
}

func (m scheduleReviewModel) renderConflicts(b *strings.Builder) {
	b.WriteString(headerStyle.Render(fmt.Sprintf("Conflicts (%d)", len(m.schedule.Conflicts))))
	b.WriteString("\n")

	if len(m.schedule.Conflicts) == 0 {
		b.WriteString(approveStyle.Render("  No conflicts detected"))
		b.WriteString("\n")
	}

	for _, c := range m.schedule.Conflicts {
		b.WriteString("  ")
		b.WriteString(severityStyle(c.Severity).Render(fmt.Sprintf("[%s] %s", c.Severity, c.Type)))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("    %s\n", c.Description))
		if c.SuggestedResolution != "" {
			b.WriteString(fmt.Sprintf("    ↳ %s\n", c.SuggestedResolution))
		}
	}

	if len(m.schedule.BrokenCycles) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(fmt.Sprintf("Broken Cycles (%d)", len(m.schedule.BrokenCycles))))
		b.WriteString("\n")
		ids := make([]string, len(m.schedule.BrokenCycles))
		for i, id := range m.schedule.BrokenCycles {
			ids[i] = string(id)
		}
		b.WriteString(fmt.Sprintf("    %s\n", strings.Join(ids, ", ")))
	}

	if len(m.schedule.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(fmt.Sprintf("Consolidation Warnings (%d)", len(m.schedule.Warnings))))
		b.WriteString("\n")
		for _, w := range m.schedule.Warnings {
			b.WriteString(fmt.Sprintf("    • %s\n", w))
		}
	}
}

// RunScheduleReview launches an interactive TUI for reviewing a schedule
func RunScheduleReview(res *types.Result) (*ScheduleReviewResult, error) {
	if len(res.Timelines) == 0 {
		// Auto-approve empty schedules
		return &ScheduleReviewResult{
			Approved: true,
			Reason:   "",
		}, nil
	}

	model := scheduleReviewModel{
		schedule: res,
		order:    displayOrder(res, false),
		cursor:   0,
		viewMode: "list",
	}

	program := tea.NewProgram(model)
	finalModel, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("running schedule review UI: %w", err)
	}

	// Extract result from final model
	m, ok := finalModel.(scheduleReviewModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type: %T", finalModel)
	}

	if m.review != nil {
		return m.review, nil
	}

	// Fallback - should not happen
	return &ScheduleReviewResult{
		Approved: false,
		Reason:   "Unknown error",
	}, nil
}
