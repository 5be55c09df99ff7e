package rpc

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/hpungsan/hindsight/internal/archon"
	"github.com/hpungsan/hindsight/internal/config"
	"github.com/hpungsan/hindsight/internal/errors"
	"github.com/hpungsan/hindsight/internal/ops"
)

// Handlers holds dependencies for JSON-RPC methods.
type Handlers struct {
	db           *sql.DB
	store        archon.Store
	cfg          *config.Config
	knowledgeDir string
}

// request is a JSON-RPC 2.0 request envelope. The ID is kept raw so it is
// echoed back exactly as received, whatever JSON type the caller used.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

type rpcError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type captureParams struct {
	ProblemDescription string         `json:"problem_description"`
	InvestigationSteps []string       `json:"investigation_steps"`
	SolutionApplied    string         `json:"solution_applied"`
	Outcome            string         `json:"outcome"`
	ProjectContext     string         `json:"project_context"`
	AdditionalContext  map[string]any `json:"additional_context"`
}

type captureSessionParams struct {
	SessionContent string   `json:"session_content"`
	ProjectName    string   `json:"project_name"`
	SessionType    string   `json:"session_type"`
	Tags           []string `json:"tags"`
}

type searchParams struct {
	Query         string `json:"query"`
	ProjectFilter string `json:"project_filter"`
	MaxResults    int    `json:"max_results"`
}

// HandleRPC serves POST /rpc: decode the envelope, dispatch the method, and
// encode one response. Transport-level failures (unparseable JSON, unknown
// method, invalid params) become JSON-RPC error objects; pipeline failures
// after validation are reported inside the result as success=false so the
// caller still sees what was written before the failure.
func (h *Handlers) HandleRPC(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, response{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: errors.RPCParseError, Message: "Parse error"},
			ID:      json.RawMessage("null"),
		})
		return
	}

	if req.JSONRPC != "" && req.JSONRPC != "2.0" {
		writeResponse(w, response{
			JSONRPC: "2.0",
			Error:   &rpcError{Code: errors.RPCInvalidRequest, Message: "Invalid Request"},
			ID:      echoID(req.ID),
		})
		return
	}

	result, err := h.dispatch(r.Context(), req.Method, req.Params)
	resp := response{JSONRPC: "2.0", ID: echoID(req.ID)}
	if err != nil {
		resp.Result, resp.Error = mapError(err)
	} else {
		resp.Result = result
	}
	writeResponse(w, resp)
}

func (h *Handlers) dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "capture_learning":
		var p captureParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return ops.Capture(ctx, h.db, h.store, h.cfg, h.knowledgeDir, ops.CaptureInput{
			ProblemDescription: p.ProblemDescription,
			InvestigationSteps: p.InvestigationSteps,
			SolutionApplied:    p.SolutionApplied,
			Outcome:            p.Outcome,
			ProjectContext:     p.ProjectContext,
			AdditionalContext:  p.AdditionalContext,
		})

	case "capture_session_learning":
		var p captureSessionParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return ops.CaptureSession(ctx, h.db, h.store, h.cfg, h.knowledgeDir, ops.CaptureSessionInput{
			SessionContent: p.SessionContent,
			ProjectName:    p.ProjectName,
			SessionType:    p.SessionType,
			Tags:           p.Tags,
		})

	case "search_learning":
		var p searchParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return ops.Search(ctx, h.db, h.store, h.cfg, ops.SearchInput{
			Query:         p.Query,
			ProjectFilter: p.ProjectFilter,
			MaxResults:    p.MaxResults,
		})

	default:
		return nil, errors.NewMethodNotFound(method)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	if err := json.Unmarshal(params, out); err != nil {
		return errors.NewValidation("invalid params: " + err.Error())
	}
	return nil
}

// mapError splits errors between the two reporting channels: validation and
// unknown-method failures become JSON-RPC error objects, everything else is
// a success=false result payload.
func mapError(err error) (any, *rpcError) {
	hErr, ok := err.(*errors.HindsightError)
	if !ok {
		return map[string]any{"success": false, "error": err.Error()}, nil
	}

	switch hErr.Code {
	case errors.ErrValidation, errors.ErrNotFound:
		return nil, &rpcError{
			Code:    hErr.RPCCode(),
			Message: hErr.Message,
			Data:    hErr.Details,
		}
	default:
		return map[string]any{"success": false, "error": hErr.Message}, nil
	}
}

// echoID returns the request ID as received, or JSON null when absent.
func echoID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

func writeResponse(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
