package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/hindsight/internal/config"
	"github.com/hpungsan/hindsight/internal/db"
	"github.com/hpungsan/hindsight/internal/knowledge"
)

// RecentInput contains parameters for the Recent operation.
type RecentInput struct {
	Project string // optional filter
	Limit   int    // default: cfg.DefaultMaxResults, max: 100
	Verify  bool   // check each markdown log still has its sections
}

// RecentItem summarizes one indexed capture.
type RecentItem struct {
	SessionID     string `json:"session_id"`
	EntryID       string `json:"entry_id"`
	Project       string `json:"project"`
	Trigger       string `json:"trigger"`
	Title         string `json:"title"`
	MarkdownFile  string `json:"markdown_file"`
	DocumentID    string `json:"document_id,omitempty"`
	ForwardStatus string `json:"forward_status"`
	CapturedAt    string `json:"captured_at"`
	LogStatus     string `json:"log_status,omitempty"` // only with Verify
}

// RecentOutput contains the result of the Recent operation.
type RecentOutput struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Items   []RecentItem `json:"items"`
}

// Recent lists the newest captures from the local index, newest first.
func Recent(ctx context.Context, database *sql.DB, cfg *config.Config, input RecentInput) (*RecentOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = cfg.DefaultMaxResults
	}
	if limit > MaxSearchResults {
		limit = MaxSearchResults
	}

	captures, err := db.Recent(ctx, database, input.Project, limit)
	if err != nil {
		return nil, err
	}

	items := make([]RecentItem, len(captures))
	for i, c := range captures {
		items[i] = RecentItem{
			SessionID:     c.SessionID,
			EntryID:       c.EntryID,
			Project:       c.Project,
			Trigger:       c.Trigger,
			Title:         c.Title,
			MarkdownFile:  c.MarkdownFile,
			ForwardStatus: c.ForwardStatus,
			CapturedAt:    time.Unix(c.CreatedAt, 0).UTC().Format(time.RFC3339),
		}
		if c.DocumentID != nil {
			items[i].DocumentID = *c.DocumentID
		}
		if input.Verify {
			items[i].LogStatus = knowledge.VerifyLog(c.MarkdownFile)
		}
	}

	return &RecentOutput{Success: true, Count: len(items), Items: items}, nil
}
