package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var captureToolDef = mcp.NewTool("learning_capture",
	mcp.WithDescription("Capture a debugging experience as a structured learning entry. Writes a markdown learning log, forwards the entry to the knowledge base, and indexes it for search."),
	mcp.WithString("problem_description",
		mcp.Required(),
		mcp.Description("What went wrong, in the caller's words"),
	),
	mcp.WithArray("investigation_steps",
		mcp.Description("Ordered debugging steps that were taken"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithString("solution_applied",
		mcp.Description("What fixed the problem; omit if unresolved"),
	),
	mcp.WithString("outcome",
		mcp.Description("What happened after applying the solution"),
	),
	mcp.WithString("project_context",
		mcp.Description("Project name the experience belongs to (default: unknown)"),
	),
	mcp.WithObject("additional_context",
		mcp.Description("Extra metadata stored with the entry, passed through untouched"),
	),
)

var captureSessionToolDef = mcp.NewTool("learning_capture_session",
	mcp.WithDescription("Extract debugging experiences from a full session transcript and capture each as a learning entry."),
	mcp.WithString("session_content",
		mcp.Required(),
		mcp.Description("Full session transcript with speaker labels"),
	),
	mcp.WithString("project_name",
		mcp.Required(),
		mcp.Description("Project the session belongs to"),
	),
	mcp.WithString("session_type",
		mcp.Description("Type of session: debugging, development, analysis (default: debugging)"),
	),
	mcp.WithArray("tags",
		mcp.Description("Optional categorization tags"),
		mcp.Items(map[string]any{"type": "string"}),
	),
)

var searchToolDef = mcp.NewTool("learning_search",
	mcp.WithDescription("Search captured debugging knowledge. Uses the knowledge base when reachable, falling back to the local index."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Search query for debugging experiences"),
	),
	mcp.WithString("project_filter",
		mcp.Description("Restrict results to one project"),
	),
	mcp.WithNumber("max_results",
		mcp.Description("Maximum number of results (default: 10, max: 100)"),
	),
)

var recentToolDef = mcp.NewTool("learning_recent",
	mcp.WithDescription("List the most recently captured learning entries, newest first."),
	mcp.WithString("project",
		mcp.Description("Restrict to one project"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of entries (default: 10, max: 100)"),
	),
)
