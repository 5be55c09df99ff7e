package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hpungsan/hindsight/internal/archon"
	"github.com/hpungsan/hindsight/internal/config"
	"github.com/hpungsan/hindsight/internal/db"
	"github.com/hpungsan/hindsight/internal/errors"
)

// Search limits
const (
	MaxSearchResults   = 100
	MaxQueryLength     = db.MaxSearchQueryChars
	MaxContentRunes    = 500 // per-result content truncation
	SourceLocal        = "local"
	SourceKnowledgeAPI = "archon"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query         string // required
	ProjectFilter string // optional
	MaxResults    int    // default: cfg.DefaultMaxResults, max: 100
}

// SearchResultItem is one formatted search hit.
type SearchResultItem struct {
	Content  string         `json:"content"`
	Title    string         `json:"title"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Success       bool               `json:"success"`
	Query         string             `json:"query"`
	ProjectFilter string             `json:"project_filter"`
	ResultsCount  int                `json:"results_count"`
	Results       []SearchResultItem `json:"results"`
	// Source reports where the hits came from: the knowledge service, or the
	// local index when the service was unreachable.
	Source string `json:"source"`
}

// Search queries captured learning. The knowledge service is the primary
// backend; when it is unreachable or not configured, the local capture index
// answers instead so search degrades rather than fails. An empty result set
// is a success, not an error.
func Search(ctx context.Context, database *sql.DB, store archon.Store, cfg *config.Config, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewMissingField("query")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, errors.NewValidation(fmt.Sprintf("query exceeds maximum length of %d characters", MaxQueryLength))
	}

	limit := input.MaxResults
	if limit <= 0 {
		limit = cfg.DefaultMaxResults
	}
	if limit > MaxSearchResults {
		limit = MaxSearchResults
	}

	project := strings.TrimSpace(input.ProjectFilter)

	if store != nil {
		results, err := store.Search(ctx, query, archon.SearchFilters{
			Project:     project,
			SourceTypes: archon.LearningSourceTypes,
			MaxResults:  limit,
		})
		if err == nil {
			return &SearchOutput{
				Success:       true,
				Query:         query,
				ProjectFilter: project,
				ResultsCount:  len(results),
				Results:       formatRemoteResults(results),
				Source:        SourceKnowledgeAPI,
			}, nil
		}
		// Fall through to the local index.
	}

	local, err := db.SearchLocal(ctx, database, query, project, limit)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{
		Success:       true,
		Query:         query,
		ProjectFilter: project,
		ResultsCount:  len(local),
		Results:       formatLocalResults(local),
		Source:        SourceLocal,
	}, nil
}

func formatRemoteResults(results []archon.SearchResult) []SearchResultItem {
	items := make([]SearchResultItem, len(results))
	for i, r := range results {
		items[i] = SearchResultItem{
			Content:  truncateRunes(r.Content, MaxContentRunes),
			Title:    r.Title,
			Metadata: r.Metadata,
			Score:    r.Score,
		}
	}
	return items
}

var snippetMarkers = strings.NewReplacer("[[[B]]]", "", "[[[/B]]]", "")

func formatLocalResults(results []db.LocalResult) []SearchResultItem {
	items := make([]SearchResultItem, len(results))
	for i, r := range results {
		items[i] = SearchResultItem{
			Content: truncateRunes(snippetMarkers.Replace(r.Snippet), MaxContentRunes),
			Title:   r.Capture.Title,
			Metadata: map[string]any{
				"session_id":    r.Capture.SessionID,
				"entry_id":      r.Capture.EntryID,
				"project":       r.Capture.Project,
				"trigger":       r.Capture.Trigger,
				"markdown_file": r.Capture.MarkdownFile,
			},
			Score: r.Score,
		}
	}
	return items
}
