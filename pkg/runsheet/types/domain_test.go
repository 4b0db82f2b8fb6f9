package types

import (
	"testing"
)

func TestNewTaskID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{
			name:    "valid simple",
			value:   "book-venue",
			wantErr: false,
		},
		{
			name:    "valid with numbers",
			value:   "task-42",
			wantErr: false,
		},
		{
			name:    "valid single letter",
			value:   "a",
			wantErr: false,
		},
		{
			name:    "invalid empty",
			value:   "",
			wantErr: true,
		},
		{
			name:    "invalid uppercase",
			value:   "Book-Venue",
			wantErr: true,
		},
		{
			name:    "invalid leading digit",
			value:   "1-task",
			wantErr: true,
		},
		{
			name:    "invalid leading hyphen",
			value:   "-task",
			wantErr: true,
		},
		{
			name:    "invalid consecutive hyphens",
			value:   "book--venue",
			wantErr: true,
		},
		{
			name:    "invalid trailing hyphen",
			value:   "book-venue-",
			wantErr: true,
		},
		{
			name:    "invalid spaces",
			value:   "book venue",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTaskID(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTaskID() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got.String() != tt.value {
				t.Errorf("NewTaskID() = %v, want %v", got, tt.value)
			}
		})
	}
}

func TestTaskID_Validate_MaxLength(t *testing.T) {
	long := "a"
	for len(long) < maxTaskIDLength {
		long += "x"
	}
	if err := TaskID(long).Validate(); err != nil {
		t.Errorf("TaskID.Validate() at max length error = %v, want nil", err)
	}
	if err := TaskID(long + "x").Validate(); err == nil {
		t.Error("TaskID.Validate() over max length error = nil, want error")
	}
}

func TestNewPriority(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    Priority
		wantErr bool
	}{
		{
			name:  "valid critical",
			value: "critical",
			want:  PriorityCritical,
		},
		{
			name:  "valid high",
			value: "high",
			want:  PriorityHigh,
		},
		{
			name:  "valid medium",
			value: "medium",
			want:  PriorityMedium,
		},
		{
			name:  "valid low",
			value: "low",
			want:  PriorityLow,
		},
		{
			name:  "uppercase is normalized",
			value: "HIGH",
			want:  PriorityHigh,
		},
		{
			name:  "surrounding whitespace is trimmed",
			value: "  medium ",
			want:  PriorityMedium,
		},
		{
			name:    "invalid empty",
			value:   "",
			wantErr: true,
		},
		{
			name:    "invalid unknown level",
			value:   "urgent",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPriority(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPriority() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("NewPriority() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriority_IsHigherThan(t *testing.T) {
	tests := []struct {
		name string
		p1   Priority
		p2   Priority
		want bool
	}{
		{"critical is higher than high", PriorityCritical, PriorityHigh, true},
		{"critical is higher than low", PriorityCritical, PriorityLow, true},
		{"high is higher than medium", PriorityHigh, PriorityMedium, true},
		{"medium is higher than low", PriorityMedium, PriorityLow, true},
		{"low is not higher than medium", PriorityLow, PriorityMedium, false},
		{"medium is not higher than medium", PriorityMedium, PriorityMedium, false},
		{"unknown is not higher than low", Priority("urgent"), PriorityLow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p1.IsHigherThan(tt.p2); got != tt.want {
				t.Errorf("Priority.IsHigherThan() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaxPriority(t *testing.T) {
	tests := []struct {
		name string
		a    Priority
		b    Priority
		want Priority
	}{
		{"critical wins over low", PriorityCritical, PriorityLow, PriorityCritical},
		{"order does not matter", PriorityLow, PriorityCritical, PriorityCritical},
		{"equal returns either", PriorityHigh, PriorityHigh, PriorityHigh},
		{"high wins over medium", PriorityMedium, PriorityHigh, PriorityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxPriority(tt.a, tt.b); got != tt.want {
				t.Errorf("MaxPriority() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResourceType_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rt      ResourceType
		wantErr bool
	}{
		{"vendor is valid", ResourceVendor, false},
		{"equipment is valid", ResourceEquipment, false},
		{"personnel is valid", ResourcePersonnel, false},
		{"venue is valid", ResourceVenue, false},
		{"empty is invalid", ResourceType(""), true},
		{"unknown is invalid", ResourceType("catering"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.rt.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("ResourceType.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGranularityLevel_Validate(t *testing.T) {
	tests := []struct {
		name    string
		level   GranularityLevel
		wantErr bool
	}{
		{"top level is valid", GranularityTop, false},
		{"sub-task is valid", GranularitySub, false},
		{"detail is valid", GranularityDetail, false},
		{"negative is invalid", GranularityLevel(-1), true},
		{"too deep is invalid", GranularityLevel(3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.level.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("GranularityLevel.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
