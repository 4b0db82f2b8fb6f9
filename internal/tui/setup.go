package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

// SetupDefaults seeds the wizard fields before the user edits them.
type SetupDefaults struct {
	WorkingHours types.WorkingHours
}

// RunSetupWizard collects event details through an interactive form and
// returns a request ready to write to disk. The request may have an empty
// task list when the user declines the example tasks; the file is a starting
// point, not a finished schedule.
func RunSetupWizard(defaults SetupDefaults) (*types.Request, error) {
	wh := defaults.WorkingHours
	if wh.IsZero() {
		wh = types.DefaultWorkingHours()
	}

	var (
		eventName   string
		eventDate   = time.Now().AddDate(0, 1, 0).Format("2006-01-02")
		startTime   = "09:00"
		workStart   = wh.Start
		workEnd     = wh.End
		withSamples = true
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("event_name").
				Title("Event name").
				Description("Shown on the schedule and in review output").
				Value(&eventName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("this field is required")
					}
					return nil
				}),

			huh.NewInput().
				Key("event_date").
				Title("Event date").
				Description("YYYY-MM-DD").
				Value(&eventDate).
				Validate(validDate),

			huh.NewInput().
				Key("start_time").
				Title("Start time").
				Description("24-hour HH:MM, when work on the event can begin").
				Value(&startTime).
				Validate(validClock),
		).Title("Event"),

		huh.NewGroup(
			huh.NewInput().
				Key("working_start").
				Title("Working hours start").
				Description("Tasks are only placed inside this daily window").
				Value(&workStart).
				Validate(validClock),

			huh.NewInput().
				Key("working_end").
				Title("Working hours end").
				Value(&workEnd).
				Validate(validClock),

			huh.NewConfirm().
				Key("samples").
				Title("Seed with example tasks?").
				Description("A small task list showing dependencies and resources").
				Value(&withSamples).
				Affirmative("Yes").
				Negative("No"),
		).Title("Scheduling"),
	)

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return nil, fmt.Errorf("setup cancelled")
		}
		return nil, fmt.Errorf("run setup form: %w", err)
	}

	req, err := buildRequest(eventName, eventDate, startTime, workStart, workEnd)
	if err != nil {
		return nil, err
	}
	if withSamples {
		req.Tasks = sampleTasks()
	}

	return req, nil
}

// buildRequest assembles the request from validated form values. The event
// start is interpreted in the local timezone since the file is authored and
// read by the same person.
func buildRequest(eventName, eventDate, startTime, workStart, workEnd string) (*types.Request, error) {
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(eventDate), time.Local)
	if err != nil {
		return nil, fmt.Errorf("parse event date: %w", err)
	}
	clock, err := time.Parse("15:04", strings.TrimSpace(startTime))
	if err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}

	wh := types.WorkingHours{
		Start: strings.TrimSpace(workStart),
		End:   strings.TrimSpace(workEnd),
	}
	if err := wh.Validate(); err != nil {
		return nil, err
	}

	return &types.Request{
		EventName: strings.TrimSpace(eventName),
		EventStart: time.Date(
			date.Year(), date.Month(), date.Day(),
			clock.Hour(), clock.Minute(), 0, 0, time.Local,
		),
		WorkingHours: wh,
	}, nil
}

func validDate(s string) error {
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func validClock(s string) error {
	if _, err := time.Parse("15:04", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use 24-hour HH:MM")
	}
	return nil
}

// sampleTasks returns a starter task list that schedules without conflicts,
// exercising dependencies, resources, and exclusivity so the file documents
// the format by example.
func sampleTasks() []types.Task {
	return []types.Task{
		{
			ID:                "book-venue",
			Name:              "Book the venue",
			Priority:          types.PriorityCritical,
			EstimatedDuration: types.Minutes(120),
		},
		{
			ID:                "confirm-catering",
			Name:              "Confirm catering order",
			Priority:          types.PriorityHigh,
			EstimatedDuration: types.Minutes(90),
			DependsOn:         []types.TaskID{"book-venue"},
			Resources: []types.Resource{
				{Type: types.ResourceVendor, ID: "caterer", Name: "Catering company"},
			},
		},
		{
			ID:                "send-invitations",
			Name:              "Send invitations",
			Priority:          types.PriorityHigh,
			EstimatedDuration: types.Minutes(60),
			DependsOn:         []types.TaskID{"book-venue"},
		},
		{
			ID:                "setup-stage",
			Name:              "Set up the stage",
			Priority:          types.PriorityMedium,
			EstimatedDuration: types.Minutes(120),
			DependsOn:         []types.TaskID{"confirm-catering"},
			Exclusive:         true,
			Resources: []types.Resource{
				{Type: types.ResourceEquipment, ID: "stage-rig"},
			},
		},
		{
			ID:                "final-walkthrough",
			Name:              "Final walkthrough",
			Priority:          types.PriorityLow,
			EstimatedDuration: types.Minutes(30),
			DependsOn:         []types.TaskID{"setup-stage"},
		},
	}
}
