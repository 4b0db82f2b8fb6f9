package tui

import (
	"testing"
	"time"

	"github.com/runsheethq/runsheet/pkg/runsheet/types"
)

func TestBuildRequest(t *testing.T) {
	req, err := buildRequest("  Launch Party  ", "2026-06-01", "09:30", "08:00", "22:00")
	if err != nil {
		t.Fatalf("buildRequest() unexpected error: %v", err)
	}

	if req.EventName != "Launch Party" {
		t.Errorf("Expected trimmed event name, got %q", req.EventName)
	}

	want := time.Date(2026, 6, 1, 9, 30, 0, 0, time.Local)
	if !req.EventStart.Equal(want) {
		t.Errorf("Expected event start %v, got %v", want, req.EventStart)
	}

	if req.WorkingHours.Start != "08:00" || req.WorkingHours.End != "22:00" {
		t.Errorf("Expected working hours 08:00-22:00, got %s-%s",
			req.WorkingHours.Start, req.WorkingHours.End)
	}
}

func TestBuildRequest_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		start     string
		workStart string
		workEnd   string
	}{
		{
			name:      "bad date",
			date:      "June 1st",
			start:     "09:00",
			workStart: "08:00",
			workEnd:   "22:00",
		},
		{
			name:      "bad start time",
			date:      "2026-06-01",
			start:     "9am",
			workStart: "08:00",
			workEnd:   "22:00",
		},
		{
			name:      "working hours end before start",
			date:      "2026-06-01",
			start:     "09:00",
			workStart: "18:00",
			workEnd:   "08:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildRequest("Party", tt.date, tt.start, tt.workStart, tt.workEnd)
			if err == nil {
				t.Error("buildRequest() expected error, got nil")
			}
		})
	}
}

func TestValidDate(t *testing.T) {
	if err := validDate("2026-06-01"); err != nil {
		t.Errorf("Expected valid date, got: %v", err)
	}
	if err := validDate(" 2026-06-01 "); err != nil {
		t.Errorf("Expected whitespace to be tolerated, got: %v", err)
	}
	if err := validDate("01/06/2026"); err == nil {
		t.Error("Expected error for slash-separated date")
	}
	if err := validDate(""); err == nil {
		t.Error("Expected error for empty date")
	}
}

func TestValidClock(t *testing.T) {
	if err := validClock("09:00"); err != nil {
		t.Errorf("Expected valid clock, got: %v", err)
	}
	if err := validClock("23:59"); err != nil {
		t.Errorf("Expected valid clock, got: %v", err)
	}
	if err := validClock("9am"); err == nil {
		t.Error("Expected error for non-HH:MM clock")
	}
	if err := validClock("25:00"); err == nil {
		t.Error("Expected error for out-of-range hour")
	}
}

func TestSampleTasks(t *testing.T) {
	tasks := sampleTasks()
	if len(tasks) == 0 {
		t.Fatal("Expected sample tasks to be non-empty")
	}

	ids := make(map[types.TaskID]bool, len(tasks))
	for _, task := range tasks {
		if err := task.Validate(); err != nil {
			t.Errorf("Sample task %s failed validation: %v", task.ID, err)
		}
		if ids[task.ID] {
			t.Errorf("Duplicate sample task ID %s", task.ID)
		}
		ids[task.ID] = true
	}

	// Every dependency must resolve inside the sample set so a freshly
	// generated file schedules without warnings.
	for _, task := range tasks {
		for _, dep := range task.DependsOn {
			if !ids[dep] {
				t.Errorf("Sample task %s depends on unknown task %s", task.ID, dep)
			}
		}
	}
}

func TestSampleTasksMakeValidRequest(t *testing.T) {
	req, err := buildRequest("Launch Party", "2026-06-01", "09:00", "08:00", "23:00")
	if err != nil {
		t.Fatalf("buildRequest() unexpected error: %v", err)
	}
	req.Tasks = sampleTasks()

	if err := req.Validate(); err != nil {
		t.Errorf("Seeded request failed validation: %v", err)
	}
}
