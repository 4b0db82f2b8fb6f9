package types

import (
	"encoding/json"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Duration
		wantErr bool
	}{
		{
			name:  "duration string",
			input: `"1h30m"`,
			want:  Duration(90 * time.Minute),
		},
		{
			name:  "minutes only",
			input: `"45m"`,
			want:  Minutes(45),
		},
		{
			name:  "nanosecond number",
			input: `3600000000000`,
			want:  Duration(time.Hour),
		},
		{
			name:    "malformed string",
			input:   `"soon"`,
			wantErr: true,
		},
		{
			name:    "wrong type",
			input:   `true`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalJSON() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && d != tt.want {
				t.Errorf("UnmarshalJSON() = %v, want %v", d, tt.want)
			}
		})
	}
}

func TestDuration_YAML(t *testing.T) {
	var d Duration
	if err := yaml.Unmarshal([]byte(`"2h15m"`), &d); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if want := Duration(2*time.Hour + 15*time.Minute); d != want {
		t.Errorf("yaml.Unmarshal() = %v, want %v", d, want)
	}

	out, err := yaml.Marshal(d)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if got := string(out); got != "2h15m0s\n" {
		t.Errorf("yaml.Marshal() = %q, want %q", got, "2h15m0s\n")
	}
}

func TestMinutes(t *testing.T) {
	if got := Minutes(30).Std(); got != 30*time.Minute {
		t.Errorf("Minutes(30).Std() = %v, want %v", got, 30*time.Minute)
	}
}
