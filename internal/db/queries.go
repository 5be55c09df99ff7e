package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/hindsight/internal/errors"
)

// MaxSearchQueryChars bounds local search queries before FTS parsing.
const MaxSearchQueryChars = 500

// Forward statuses recorded per capture.
const (
	ForwardStored = "stored"
	ForwardFailed = "failed"
)

// Capture is one indexed learning entry. The row mirrors a single entry of a
// learning log file; the file remains the source of truth.
type Capture struct {
	ID            string // ULID
	SessionID     string
	EntryID       string // L001, L002, ...
	Project       string
	Trigger       string
	Title         string
	Synopsis      string // flattened bullet text, used for FTS
	MarkdownFile  string
	DocumentID    *string // set when forwarding succeeded
	ForwardStatus string  // stored | failed
	CreatedAt     int64   // unix seconds
}

// LocalResult is one hit from the local FTS index.
type LocalResult struct {
	Capture Capture
	// Snippet carries [[[B]]]...[[[/B]]] highlight markers around matches.
	Snippet string
	// Score is the negated BM25 rank, so higher means more relevant and a
	// match is always nonzero.
	Score float64
}

// InsertCapture indexes one capture row and its FTS shadow atomically.
func InsertCapture(ctx context.Context, db *sql.DB, c *Capture) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	docID := toNullString(c.DocumentID)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO captures (
			id, session_id, entry_id, project, trigger_type,
			title, synopsis, markdown_file, document_id, forward_status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.SessionID, c.EntryID, c.Project, c.Trigger,
		c.Title, c.Synopsis, c.MarkdownFile, docID, c.ForwardStatus, c.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO captures_fts (capture_id, title, synopsis) VALUES (?, ?, ?)
	`, c.ID, c.Title, c.Synopsis)
	if err != nil {
		return errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// SearchLocal runs a full-text query over indexed captures, ranked by BM25
// with title matches weighted 5x. Project, when non-empty, is an exact filter.
func SearchLocal(ctx context.Context, db *sql.DB, query, project string, limit int) ([]LocalResult, error) {
	match := buildMatchQuery(query)
	if match == "" {
		return nil, nil
	}

	sqlQuery := `
		SELECT c.id, c.session_id, c.entry_id, c.project, c.trigger_type,
			c.title, c.synopsis, c.markdown_file, c.document_id, c.forward_status, c.created_at,
			snippet(captures_fts, 2, '[[[B]]]', '[[[/B]]]', '...', 32) AS snip,
			-bm25(captures_fts, 0, 5.0, 1.0) AS score
		FROM captures_fts f
		JOIN captures c ON c.id = f.capture_id
		WHERE captures_fts MATCH ?
	`
	args := []any{match}
	if project != "" {
		sqlQuery += " AND c.project = ?"
		args = append(args, project)
	}
	sqlQuery += " ORDER BY score DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var results []LocalResult
	for rows.Next() {
		var r LocalResult
		var docID sql.NullString
		if err := rows.Scan(
			&r.Capture.ID, &r.Capture.SessionID, &r.Capture.EntryID,
			&r.Capture.Project, &r.Capture.Trigger, &r.Capture.Title,
			&r.Capture.Synopsis, &r.Capture.MarkdownFile, &docID,
			&r.Capture.ForwardStatus, &r.Capture.CreatedAt, &r.Snippet, &r.Score,
		); err != nil {
			return nil, errors.NewInternal(err)
		}
		r.Capture.DocumentID = fromNullString(docID)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return results, nil
}

// Recent returns the newest captures, optionally filtered by project.
func Recent(ctx context.Context, db *sql.DB, project string, limit int) ([]Capture, error) {
	sqlQuery := `
		SELECT id, session_id, entry_id, project, trigger_type,
			title, synopsis, markdown_file, document_id, forward_status, created_at
		FROM captures
	`
	var args []any
	if project != "" {
		sqlQuery += " WHERE project = ?"
		args = append(args, project)
	}
	sqlQuery += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var captures []Capture
	for rows.Next() {
		var c Capture
		var docID sql.NullString
		if err := rows.Scan(
			&c.ID, &c.SessionID, &c.EntryID, &c.Project, &c.Trigger,
			&c.Title, &c.Synopsis, &c.MarkdownFile, &docID,
			&c.ForwardStatus, &c.CreatedAt,
		); err != nil {
			return nil, errors.NewInternal(err)
		}
		c.DocumentID = fromNullString(docID)
		captures = append(captures, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return captures, nil
}

// buildMatchQuery converts free text into an FTS5 MATCH expression. Each term
// is double-quoted so FTS operators and punctuation in user input are treated
// as literals; terms are implicitly ANDed.
func buildMatchQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
