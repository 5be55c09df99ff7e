package session

import (
	"testing"
	"time"

	"github.com/hpungsan/hindsight/internal/errors"
)

var testTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "myproject", "myproject"},
		{"uppercase", "MyProject", "myproject"},
		{"spaces", "my project", "my-project"},
		{"punctuation runs", "my__cool!!project", "my-cool-project"},
		{"leading and trailing junk", "  --my-project-- ", "my-project"},
		{"digits preserved", "api-v2", "api-v2"},
		{"empty", "", "unknown"},
		{"only punctuation", "!!!", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewRecord_IDFormat(t *testing.T) {
	tests := []struct {
		name    string
		prefix  Prefix
		project string
		wantID  string
	}{
		{"external", PrefixExternal, "my-app", "external-my-app-20250314-092653"},
		{"session", PrefixSession, "Big Project!", "session-big-project-20250314-092653"},
		{"empty project", PrefixExternal, "", "external-unknown-20250314-092653"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(tt.prefix, tt.project, testTime, nil)
			if rec.SessionID != tt.wantID {
				t.Errorf("SessionID = %q, want %q", rec.SessionID, tt.wantID)
			}
			if !IDPattern.MatchString(rec.SessionID) {
				t.Errorf("SessionID %q does not match IDPattern", rec.SessionID)
			}
		})
	}
}

func TestNewRecord_UsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	local := time.Date(2025, 3, 14, 16, 26, 53, 0, loc)

	rec := NewRecord(PrefixExternal, "tz-test", local, nil)
	if rec.SessionID != "external-tz-test-20250314-092653" {
		t.Errorf("SessionID = %q, stamp should be UTC", rec.SessionID)
	}
	if rec.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp location = %v, want UTC", rec.Timestamp.Location())
	}
}

func TestValidateExperience(t *testing.T) {
	valid := RawExperience{ProblemDescription: "ImportError: No module named requests"}
	if err := ValidateExperience(valid); err != nil {
		t.Errorf("ValidateExperience(valid) = %v, want nil", err)
	}

	for _, desc := range []string{"", "   ", "\n\t"} {
		err := ValidateExperience(RawExperience{ProblemDescription: desc})
		if err == nil {
			t.Errorf("ValidateExperience(%q) should fail", desc)
			continue
		}
		if !errors.Is(err, errors.ErrValidation) {
			t.Errorf("error code = %v, want VALIDATION", err)
		}
	}
}
