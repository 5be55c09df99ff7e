package learning

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hpungsan/hindsight/internal/session"
)

func TestSynopsisTitle_Truncation(t *testing.T) {
	long := strings.Repeat("x", 300)
	title := synopsisTitle(long)

	if got := utf8.RuneCountInString(title); got != maxTitleRunes {
		t.Errorf("title length = %d runes, want exactly %d", got, maxTitleRunes)
	}
	if !strings.HasSuffix(title, "...") {
		t.Errorf("truncated title must end with ..., got %q", title[len(title)-10:])
	}
}

func TestSynopsisTitle_MultibyteSafe(t *testing.T) {
	long := strings.Repeat("é", 300)
	title := synopsisTitle(long)
	if got := utf8.RuneCountInString(title); got != maxTitleRunes {
		t.Errorf("title length = %d runes, want %d", got, maxTitleRunes)
	}
	if !utf8.ValidString(title) {
		t.Error("truncation split a multibyte rune")
	}
}

func TestSynopsisTitle_StripsPunctuation(t *testing.T) {
	title := synopsisTitle(`ImportError: "No module named requests"!`)
	if title != "ImportError No module named requests" {
		t.Errorf("title = %q", title)
	}
}

func TestSynopsisTitle_ShortTitleUntouched(t *testing.T) {
	title := synopsisTitle("build failed")
	if title != "build failed" {
		t.Errorf("title = %q, short titles must pass through", title)
	}
}

func TestSynopsisTitle_EmptyProblem(t *testing.T) {
	if title := synopsisTitle("   "); title == "" {
		t.Error("empty problem must still yield a non-empty title")
	}
}

func TestFixBullet(t *testing.T) {
	tests := []struct {
		name       string
		solution   string
		wantPrefix string
	}{
		{"action verb passes through", "Activated the virtual environment", "Activated"},
		{"non-verb gets prefix", "the virtual environment was the issue", "Applied fix:"},
		{"empty marks unresolved", "", "No fix applied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fixBullet(tt.solution); !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("fixBullet(%q) = %q, want prefix %q", tt.solution, got, tt.wantPrefix)
			}
		})
	}
}

func TestBuildSynopsis_BulletOrderAndContent(t *testing.T) {
	exp := session.RawExperience{
		ProblemDescription: "ImportError: No module named requests",
		SolutionApplied:    "Activated the virtual environment",
		Outcome:            "resolved",
	}
	entry := Format(exp, 0, "my-app")
	b := entry.Synopsis.Bullets

	if !strings.HasPrefix(b.Symptoms, exp.ProblemDescription) {
		t.Errorf("Symptoms = %q, want problem description first", b.Symptoms)
	}
	if !strings.Contains(b.Context, "my-app") {
		t.Errorf("Context = %q, want project name present", b.Context)
	}
	if !strings.HasPrefix(b.RootCause, entry.Resolution.RootCause) {
		t.Errorf("RootCause bullet = %q, want resolution root cause first", b.RootCause)
	}
	if !strings.HasPrefix(b.Fix, exp.SolutionApplied) {
		t.Errorf("Fix = %q, want solution first", b.Fix)
	}
	if !strings.Contains(b.AppliesWhen, "error conditions") {
		t.Errorf("AppliesWhen = %q, want error-trigger phrasing", b.AppliesWhen)
	}
}

func TestAdjustWordCount_ExpandsShortSynopsis(t *testing.T) {
	b := Bullets{
		Symptoms:    "build failed",
		Context:     "ci pipeline",
		RootCause:   "stale cache",
		Fix:         "cleared the cache",
		AppliesWhen: "cache issues",
	}
	before := totalWords(&b)
	adjustWordCount(&b)
	if totalWords(&b) <= before {
		t.Error("short synopsis should gain expansion text")
	}
	if !strings.Contains(b.Context, "iterative development") {
		t.Errorf("Context = %q, want first expansion applied", b.Context)
	}
}

func TestAdjustWordCount_CompressesLongSynopsis(t *testing.T) {
	b := Bullets{
		Symptoms:    strings.Repeat("word ", 300),
		Context:     "short context bullet for balance",
		RootCause:   "short root cause bullet here",
		Fix:         "short fix bullet applied here",
		AppliesWhen: "short applicability bullet for tests",
	}
	adjustWordCount(&b)
	if got := totalWords(&b); got > synopsisWordMax {
		t.Errorf("total words = %d, want <= %d", got, synopsisWordMax)
	}
	if len(strings.Fields(b.Symptoms)) < minBulletWords {
		t.Errorf("compression trimmed below the %d-word floor", minBulletWords)
	}
}

func TestAdjustWordCount_InBandUntouched(t *testing.T) {
	mid := strings.Repeat("word ", 30)
	b := Bullets{Symptoms: mid, Context: mid, RootCause: mid, Fix: mid, AppliesWhen: mid}
	want := totalWords(&b)
	if want < synopsisWordMin || want > synopsisWordMax {
		t.Fatalf("test setup: %d words not in band", want)
	}
	adjustWordCount(&b)
	if got := totalWords(&b); got != want {
		t.Errorf("in-band synopsis changed from %d to %d words", want, got)
	}
}
