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
	"github.com/hpungsan/hindsight/internal/errors"
	"github.com/hpungsan/hindsight/internal/extract"
	"github.com/hpungsan/hindsight/internal/knowledge"
	"github.com/hpungsan/hindsight/internal/learning"
	"github.com/hpungsan/hindsight/internal/session"
)

// sessionExcerptRunes caps the transcript excerpt embedded in forwarded
// session documents.
const sessionExcerptRunes = 1000

// CaptureSessionInput contains parameters for the CaptureSession operation.
type CaptureSessionInput struct {
	SessionContent string   // required: full transcript
	ProjectName    string   // required
	SessionType    string   // default: "debugging"
	Tags           []string // optional
}

// CaptureSessionOutput contains the result of the CaptureSession operation.
type CaptureSessionOutput struct {
	Success          bool            `json:"success"`
	SessionID        string          `json:"session_id"`
	ExperiencesFound int             `json:"experiences_found"`
	EntriesCreated   int             `json:"entries_created"`
	MarkdownFile     string          `json:"markdown_file"`
	ArchonStorage    []StorageStatus `json:"archon_storage"`
}

// CaptureSession extracts debugging experiences from a session transcript
// and captures each one as a learning entry. A transcript with no detectable
// experiences still produces one default entry so the session is never
// silently dropped.
func CaptureSession(ctx context.Context, database *sql.DB, store archon.Store, cfg *config.Config, knowledgeDir string, input CaptureSessionInput) (*CaptureSessionOutput, error) {
	if strings.TrimSpace(input.SessionContent) == "" {
		return nil, errors.NewMissingField("session_content")
	}
	project := strings.TrimSpace(input.ProjectName)
	if project == "" {
		return nil, errors.NewMissingField("project_name")
	}
	sessionType := strings.TrimSpace(input.SessionType)
	if sessionType == "" {
		sessionType = "debugging"
	}

	experiences := extract.Experiences(input.SessionContent, cfg.SpeakerLabels)
	found := len(experiences)
	if found == 0 {
		experiences = []session.RawExperience{defaultExperience(sessionType)}
	}

	rec := session.NewRecord(session.PrefixSession, project, time.Now(), experiences)
	entries := make([]learning.Entry, len(experiences))
	for i, exp := range experiences {
		entries[i] = learning.Format(exp, i, project)
	}

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
		statuses = forwardEntries(ctx, store, entries,
			renderSessionDocument(rec, input.SessionContent, sessionType, input.Tags),
			archon.SourceSessionCapture,
			func(e learning.Entry) archon.Metadata {
				meta := entryMetadata(rec, e)
				meta["session_type"] = sessionType
				meta["tags"] = input.Tags
				return meta
			})
	}()
	wg.Wait()

	if writeErr != nil {
		return nil, writeErr
	}

	indexCaptures(ctx, database, rec, entries, statuses, markdownFile)

	return &CaptureSessionOutput{
		Success:          true,
		SessionID:        rec.SessionID,
		ExperiencesFound: found,
		EntriesCreated:   len(entries),
		MarkdownFile:     markdownFile,
		ArchonStorage:    statuses,
	}, nil
}

// defaultExperience stands in when extraction finds nothing, so the session
// still leaves a trace in the knowledge base.
func defaultExperience(sessionType string) session.RawExperience {
	return session.RawExperience{
		ProblemDescription: fmt.Sprintf("Session learning from %s session", sessionType),
		InvestigationSteps: []string{
			"Analyzed session content",
			"Extracted key insights",
			"Identified patterns and solutions",
		},
		SolutionApplied: "Captured session knowledge for future reference",
		Outcome:         "Session learning successfully extracted",
	}
}

// renderSessionDocument wraps an entry document with session context: a
// bounded transcript excerpt, the session type, and tags.
func renderSessionDocument(rec *session.Record, content, sessionType string, tags []string) func(learning.Entry) (string, string) {
	excerpt := content
	if truncated := truncateRunes(content, sessionExcerptRunes); truncated != content {
		excerpt = truncated + "..."
	}
	tagLine := "none"
	if len(tags) > 0 {
		tagLine = strings.Join(tags, ", ")
	}

	return func(e learning.Entry) (string, string) {
		_, body := knowledge.RenderEntryDocument(e, rec.SessionID, rec.Timestamp)

		var b strings.Builder
		fmt.Fprintf(&b, "# Session Learning: %s\n", rec.ProjectContext)
		fmt.Fprintf(&b, "**Type**: %s\n", sessionType)
		fmt.Fprintf(&b, "**Session ID**: %s\n", rec.SessionID)
		fmt.Fprintf(&b, "**Tags**: %s\n\n", tagLine)
		b.WriteString("## Session Context\n")
		b.WriteString(excerpt)
		b.WriteString("\n\n")
		b.WriteString(body)

		return "Session Learning: " + e.Synopsis.Title, b.String()
	}
}
