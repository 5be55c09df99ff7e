package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/hindsight/internal/archon"
	"github.com/hpungsan/hindsight/internal/config"
	"github.com/hpungsan/hindsight/internal/errors"
	"github.com/hpungsan/hindsight/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db           *sql.DB
	store        archon.Store
	cfg          *config.Config
	knowledgeDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, store archon.Store, cfg *config.Config, knowledgeDir string) *Handlers {
	return &Handlers{db: db, store: store, cfg: cfg, knowledgeDir: knowledgeDir}
}

// Request types for each tool

// CaptureRequest represents the arguments for learning_capture.
type CaptureRequest struct {
	ProblemDescription string         `json:"problem_description"`
	InvestigationSteps []string       `json:"investigation_steps,omitempty"`
	SolutionApplied    string         `json:"solution_applied,omitempty"`
	Outcome            string         `json:"outcome,omitempty"`
	ProjectContext     string         `json:"project_context,omitempty"`
	AdditionalContext  map[string]any `json:"additional_context,omitempty"`
}

// CaptureSessionRequest represents the arguments for learning_capture_session.
type CaptureSessionRequest struct {
	SessionContent string   `json:"session_content"`
	ProjectName    string   `json:"project_name"`
	SessionType    string   `json:"session_type,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// SearchRequest represents the arguments for learning_search.
type SearchRequest struct {
	Query         string `json:"query"`
	ProjectFilter string `json:"project_filter,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
}

// RecentRequest represents the arguments for learning_recent.
type RecentRequest struct {
	Project string `json:"project,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// Handler implementations

// HandleCapture handles the learning_capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Capture(ctx, h.db, h.store, h.cfg, h.knowledgeDir, ops.CaptureInput{
		ProblemDescription: input.ProblemDescription,
		InvestigationSteps: input.InvestigationSteps,
		SolutionApplied:    input.SolutionApplied,
		Outcome:            input.Outcome,
		ProjectContext:     input.ProjectContext,
		AdditionalContext:  input.AdditionalContext,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCaptureSession handles the learning_capture_session tool call.
func (h *Handlers) HandleCaptureSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureSessionRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.CaptureSession(ctx, h.db, h.store, h.cfg, h.knowledgeDir, ops.CaptureSessionInput{
		SessionContent: input.SessionContent,
		ProjectName:    input.ProjectName,
		SessionType:    input.SessionType,
		Tags:           input.Tags,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the learning_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Search(ctx, h.db, h.store, h.cfg, ops.SearchInput{
		Query:         input.Query,
		ProjectFilter: input.ProjectFilter,
		MaxResults:    input.MaxResults,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRecent handles the learning_recent tool call.
func (h *Handlers) HandleRecent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecentRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Recent(ctx, h.db, h.cfg, ops.RecentInput{
		Project: input.Project,
		Limit:   input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult builds an error tool result from a structured error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if hErr, ok := err.(*errors.HindsightError); ok {
		errorObj := map[string]any{
			"code":    hErr.Code,
			"message": hErr.Message,
			"status":  hErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if hErr.Code != errors.ErrInternal && hErr.Details != nil {
			errorObj["details"] = hErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult builds a JSON tool result.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
