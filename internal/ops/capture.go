package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hpungsan/hindsight/internal/archon"
	"github.com/hpungsan/hindsight/internal/config"
	"github.com/hpungsan/hindsight/internal/knowledge"
	"github.com/hpungsan/hindsight/internal/learning"
	"github.com/hpungsan/hindsight/internal/session"
)

// CaptureInput contains parameters for the Capture operation.
type CaptureInput struct {
	ProblemDescription string         // required
	InvestigationSteps []string       // optional
	SolutionApplied    string         // optional; empty marks the entry unresolved
	Outcome            string         // optional
	ProjectContext     string         // default: "unknown"
	AdditionalContext  map[string]any // pass-through metadata
}

// CaptureOutput contains the result of the Capture operation.
type CaptureOutput struct {
	Success        bool            `json:"success"`
	SessionID      string          `json:"session_id"`
	EntriesCreated int             `json:"entries_created"`
	MarkdownFile   string          `json:"markdown_file"`
	ArchonStorage  []StorageStatus `json:"archon_storage"`
	Message        string          `json:"message"`
}

// Capture records a single debugging experience: it formats the experience
// into a learning entry, writes the markdown log, forwards the entry to the
// document store, and indexes it locally.
//
// Validation happens before any side effect. The markdown write and the
// store forwarding then run concurrently; neither holds a lock while the
// other works, and a forwarding failure downgrades the entry's status
// without failing the capture. Only a markdown write failure is fatal.
func Capture(ctx context.Context, database *sql.DB, store archon.Store, cfg *config.Config, knowledgeDir string, input CaptureInput) (*CaptureOutput, error) {
	exp := session.RawExperience{
		ProblemDescription: input.ProblemDescription,
		InvestigationSteps: input.InvestigationSteps,
		SolutionApplied:    input.SolutionApplied,
		Outcome:            input.Outcome,
		AdditionalContext:  input.AdditionalContext,
	}
	if err := session.ValidateExperience(exp); err != nil {
		return nil, err
	}

	project := strings.TrimSpace(input.ProjectContext)
	if project == "" {
		project = "unknown"
	}

	rec := session.NewRecord(session.PrefixExternal, project, time.Now(), []session.RawExperience{exp})
	entries := []learning.Entry{learning.Format(exp, 0, project)}

	var (
		wg           sync.WaitGroup
		markdownFile string
		writeErr     error
		statuses     []StorageStatus
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		markdownFile, writeErr = knowledge.Write(knowledgeDir, rec, entries)
	}()
	go func() {
		defer wg.Done()
		statuses = forwardEntries(ctx, store, entries, renderForStore(rec), archon.SourceLearningCapture,
			func(e learning.Entry) archon.Metadata {
				meta := entryMetadata(rec, e)
				for k, v := range input.AdditionalContext {
					meta[k] = v
				}
				return meta
			})
	}()
	wg.Wait()

	if writeErr != nil {
		return nil, writeErr
	}

	indexCaptures(ctx, database, rec, entries, statuses, markdownFile)

	return &CaptureOutput{
		Success:        true,
		SessionID:      rec.SessionID,
		EntriesCreated: len(entries),
		MarkdownFile:   markdownFile,
		ArchonStorage:  statuses,
		Message:        fmt.Sprintf("Successfully captured learning from %s", project),
	}, nil
}
