// Package ops contains the capture pipeline operations shared by the
// JSON-RPC server, the MCP server, and the CLI. Operations are plain
// functions over their dependencies; transports only decode input and
// encode output.
package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/hindsight/internal/archon"
	"github.com/hpungsan/hindsight/internal/db"
	"github.com/hpungsan/hindsight/internal/knowledge"
	"github.com/hpungsan/hindsight/internal/learning"
	"github.com/hpungsan/hindsight/internal/session"
)

// Per-entry forwarding statuses.
const (
	StatusStored = "stored"
	StatusFailed = "failed"
)

// StorageStatus reports the forwarding outcome for one learning entry.
// A failed forward downgrades the entry, never the whole capture.
type StorageStatus struct {
	EntryID    string `json:"entry_id"`
	DocumentID string `json:"document_id,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// forwardEntries sends each entry to the document store and collects one
// status per entry, in entry order. A nil store means forwarding is not
// configured; every entry then reports failed so callers can see nothing
// reached the knowledge base.
func forwardEntries(
	ctx context.Context,
	store archon.Store,
	entries []learning.Entry,
	render func(learning.Entry) (string, string),
	sourceType string,
	meta func(learning.Entry) archon.Metadata,
) []StorageStatus {
	statuses := make([]StorageStatus, len(entries))
	for i, entry := range entries {
		if store == nil {
			statuses[i] = StorageStatus{
				EntryID: entry.ID,
				Status:  StatusFailed,
				Error:   "document store not configured",
			}
			continue
		}

		title, content := render(entry)
		docID, err := store.StoreDocument(ctx, archon.Document{
			Title:      title,
			Content:    content,
			SourceType: sourceType,
		}, meta(entry))
		if err != nil {
			log.Printf("forward %s failed: %v", entry.ID, err)
			statuses[i] = StorageStatus{EntryID: entry.ID, Status: StatusFailed, Error: err.Error()}
			continue
		}
		statuses[i] = StorageStatus{EntryID: entry.ID, DocumentID: docID, Status: StatusStored}
	}
	return statuses
}

// indexCaptures records entries in the local capture index. Index failures
// are logged, not returned: the markdown file is the source of truth and the
// index can be rebuilt from it.
func indexCaptures(
	ctx context.Context,
	database *sql.DB,
	rec *session.Record,
	entries []learning.Entry,
	statuses []StorageStatus,
	markdownFile string,
) {
	if database == nil {
		return
	}
	for i, entry := range entries {
		c := &db.Capture{
			ID:            generateULID(),
			SessionID:     rec.SessionID,
			EntryID:       entry.ID,
			Project:       rec.ProjectContext,
			Trigger:       entry.Trigger,
			Title:         entry.Synopsis.Title,
			Synopsis:      flattenBullets(entry.Synopsis.Bullets),
			MarkdownFile:  markdownFile,
			ForwardStatus: statuses[i].Status,
			CreatedAt:     rec.Timestamp.Unix(),
		}
		if statuses[i].DocumentID != "" {
			docID := statuses[i].DocumentID
			c.DocumentID = &docID
		}
		if err := db.InsertCapture(ctx, database, c); err != nil {
			log.Printf("index %s/%s failed: %v", rec.SessionID, entry.ID, err)
		}
	}
}

func flattenBullets(b learning.Bullets) string {
	return strings.Join([]string{b.Symptoms, b.Context, b.RootCause, b.Fix, b.AppliesWhen}, " ")
}

// entryMetadata is the metadata block attached to every forwarded document.
func entryMetadata(rec *session.Record, entry learning.Entry) archon.Metadata {
	return archon.Metadata{
		"session_id":      rec.SessionID,
		"entry_id":        entry.ID,
		"project_context": rec.ProjectContext,
		"trigger":         entry.Trigger,
		"timestamp":       rec.Timestamp.Format(time.RFC3339),
	}
}

// renderForStore curries RenderEntryDocument onto a record.
func renderForStore(rec *session.Record) func(learning.Entry) (string, string) {
	return func(e learning.Entry) (string, string) {
		return knowledge.RenderEntryDocument(e, rec.SessionID, rec.Timestamp)
	}
}

// truncateRunes caps s at max runes without splitting a multibyte rune.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// generateULID returns a new ULID for index rows.
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
