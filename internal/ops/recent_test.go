package ops

import (
	"context"
	"os"
	"testing"

	"github.com/hpungsan/hindsight/internal/knowledge"
)

func TestRecent(t *testing.T) {
	database, cfg, dir := testEnv(t)

	for _, project := range []string{"alpha", "beta", "alpha"} {
		if _, err := Capture(context.Background(), database, &fakeStore{}, cfg, dir, CaptureInput{
			ProblemDescription: "an error in " + project,
			ProjectContext:     project,
		}); err != nil {
			t.Fatal(err)
		}
	}

	out, err := Recent(context.Background(), database, cfg, RecentInput{})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Success || out.Count != 3 {
		t.Errorf("Count = %d, want 3", out.Count)
	}
	item := out.Items[0]
	if item.EntryID != "L001" || item.Trigger != "error" || item.DocumentID != "doc-123" {
		t.Errorf("item = %+v", item)
	}
	if item.ForwardStatus != StatusStored {
		t.Errorf("ForwardStatus = %q", item.ForwardStatus)
	}
	if item.CapturedAt == "" {
		t.Error("CapturedAt missing")
	}

	filtered, err := Recent(context.Background(), database, cfg, RecentInput{Project: "alpha"})
	if err != nil {
		t.Fatal(err)
	}
	if filtered.Count != 2 {
		t.Errorf("filtered Count = %d, want 2", filtered.Count)
	}

	limited, err := Recent(context.Background(), database, cfg, RecentInput{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if limited.Count != 1 {
		t.Errorf("limited Count = %d, want 1", limited.Count)
	}
}

func TestRecent_Verify(t *testing.T) {
	database, cfg, dir := testEnv(t)

	out, err := Capture(context.Background(), database, &fakeStore{}, cfg, dir, CaptureInput{
		ProblemDescription: "an error",
		ProjectContext:     "alpha",
	})
	if err != nil {
		t.Fatal(err)
	}

	verified, err := Recent(context.Background(), database, cfg, RecentInput{Verify: true})
	if err != nil {
		t.Fatal(err)
	}
	if verified.Items[0].LogStatus != knowledge.LogOK {
		t.Errorf("LogStatus = %q, want %q", verified.Items[0].LogStatus, knowledge.LogOK)
	}

	// A removed log shows up as missing.
	if err := os.Remove(out.MarkdownFile); err != nil {
		t.Fatal(err)
	}
	verified, err = Recent(context.Background(), database, cfg, RecentInput{Verify: true})
	if err != nil {
		t.Fatal(err)
	}
	if verified.Items[0].LogStatus != knowledge.LogMissing {
		t.Errorf("LogStatus = %q, want %q", verified.Items[0].LogStatus, knowledge.LogMissing)
	}

	// Without Verify the field stays empty.
	plain, err := Recent(context.Background(), database, cfg, RecentInput{})
	if err != nil {
		t.Fatal(err)
	}
	if plain.Items[0].LogStatus != "" {
		t.Errorf("LogStatus = %q, want empty", plain.Items[0].LogStatus)
	}
}

func TestRecent_EmptyIndex(t *testing.T) {
	database, cfg, _ := testEnv(t)
	out, err := Recent(context.Background(), database, cfg, RecentInput{})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Success || out.Count != 0 {
		t.Errorf("out = %+v, empty index is a success", out)
	}
}
