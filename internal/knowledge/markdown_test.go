package knowledge

import (
	"strings"
	"testing"
	"time"

	"github.com/hpungsan/hindsight/internal/learning"
	"github.com/hpungsan/hindsight/internal/session"
)

var testTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func testRecord(t *testing.T, n int) (*session.Record, []learning.Entry) {
	t.Helper()
	exps := make([]session.RawExperience, n)
	entries := make([]learning.Entry, n)
	for i := range exps {
		exps[i] = session.RawExperience{
			ProblemDescription: "ImportError: No module named requests",
			InvestigationSteps: []string{"checked pip list", "tried reinstalling but no luck"},
			SolutionApplied:    "Activated the virtual environment",
			Outcome:            "resolved",
		}
		entries[i] = learning.Format(exps[i], i, "my-app")
	}
	return session.NewRecord(session.PrefixExternal, "my-app", testTime, exps), entries
}

func TestRender_HeaderAndSections(t *testing.T) {
	rec, entries := testRecord(t, 1)
	out := Render(rec, entries)

	for _, want := range []string{
		"# Session Learning Log",
		"**Session ID**: external-my-app-20250314-092653",
		"**Project**: my-app",
		"## Learning Entry 1",
		"**ID**: L001",
		"**Trigger**: error",
		"### Situation",
		"### Debug Journey",
		"### Resolution",
		"### Knowledge Synthesis",
		"### Quick Reference Synopsis",
		"- **Applies When**:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered log missing %q", want)
		}
	}
}

func TestRender_SeparatorBetweenEntriesOnly(t *testing.T) {
	rec, entries := testRecord(t, 3)
	out := Render(rec, entries)

	if got := strings.Count(out, "\n---\n"); got != 2 {
		t.Errorf("got %d separators for 3 entries, want 2", got)
	}
	if strings.HasSuffix(strings.TrimSpace(out), "---") {
		t.Error("no separator after the last entry")
	}
}

func TestRender_Deterministic(t *testing.T) {
	rec, entries := testRecord(t, 2)
	if Render(rec, entries) != Render(rec, entries) {
		t.Error("rendering the same record twice must produce identical bytes")
	}
}

func TestRender_EmptyPathsGetPlaceholders(t *testing.T) {
	exp := session.RawExperience{ProblemDescription: "something odd"}
	rec := session.NewRecord(session.PrefixExternal, "p", testTime, []session.RawExperience{exp})
	out := Render(rec, []learning.Entry{learning.Format(exp, 0, "p")})

	if !strings.Contains(out, "1. Investigation steps not documented") {
		t.Error("empty investigation path needs its placeholder line")
	}
	if !strings.Contains(out, "- No dead ends documented") {
		t.Error("empty dead ends need their placeholder line")
	}
}

func TestParseHeadings_RoundTrip(t *testing.T) {
	rec, entries := testRecord(t, 1)
	headings, err := ParseHeadings([]byte(Render(rec, entries)))
	if err != nil {
		t.Fatal(err)
	}

	if len(headings) == 0 || headings[0].Level != 1 || headings[0].Text != "Session Learning Log" {
		t.Fatalf("headings = %+v, want Session Learning Log first", headings)
	}

	var sections []string
	for _, h := range headings {
		if h.Level == 3 {
			sections = append(sections, h.Text)
		}
	}
	if len(sections) != len(EntrySections) {
		t.Fatalf("got %d H3 sections, want %d: %v", len(sections), len(EntrySections), sections)
	}
	for i, want := range EntrySections {
		if sections[i] != want {
			t.Errorf("section %d = %q, want %q", i, sections[i], want)
		}
	}
}

func TestParseSessionHeader(t *testing.T) {
	rec, entries := testRecord(t, 1)
	hdr := ParseSessionHeader(Render(rec, entries))

	if hdr.SessionID != rec.SessionID {
		t.Errorf("SessionID = %q, want %q", hdr.SessionID, rec.SessionID)
	}
	if hdr.Project != "my-app" {
		t.Errorf("Project = %q", hdr.Project)
	}
	if hdr.StartTime != testTime.Format(time.RFC3339) {
		t.Errorf("StartTime = %q", hdr.StartTime)
	}
}

func TestRenderEntryDocument(t *testing.T) {
	_, entries := testRecord(t, 1)
	title, content := RenderEntryDocument(entries[0], "external-my-app-20250314-092653", testTime)

	if title != entries[0].Synopsis.Title {
		t.Errorf("title = %q, want synopsis title", title)
	}
	for _, want := range []string{
		"**Session**: external-my-app-20250314-092653",
		"**Entry ID**: L001",
		"## Problem Context",
		"## Investigation Process",
		"## Resolution",
		"## Key Learnings",
		"## Quick Reference",
		"Tags: debugging, error, learning",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("document missing %q", want)
		}
	}
}
