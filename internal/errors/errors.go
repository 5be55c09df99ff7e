package errors

import "fmt"

// ErrorCode represents a Hindsight error code.
type ErrorCode string

const (
	ErrValidation        ErrorCode = "VALIDATION"         // 400, rejected before any side effect
	ErrNotFound          ErrorCode = "NOT_FOUND"          // 404, unknown method or missing record
	ErrIO                ErrorCode = "IO"                 // 500, local filesystem failure
	ErrStorageForwarding ErrorCode = "STORAGE_FORWARDING" // per-entry downgrade, never fails a request
	ErrInternal          ErrorCode = "INTERNAL"           // 500
)

// JSON-RPC 2.0 error codes for errors that surface at the protocol level.
const (
	RPCParseError     = -32700
	RPCInvalidRequest = -32600
	RPCMethodNotFound = -32601
	RPCInvalidParams  = -32602
	RPCInternalError  = -32603
)

// HindsightError represents a structured error with code, status, and details.
type HindsightError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *HindsightError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// RPCCode returns the JSON-RPC error code for this error.
// Only validation and unknown-method errors surface as JSON-RPC error
// objects; other outcomes report through result payloads, but the mapping
// is total so transports never have to invent a code.
func (e *HindsightError) RPCCode() int {
	switch e.Code {
	case ErrValidation:
		return RPCInvalidParams
	case ErrNotFound:
		return RPCMethodNotFound
	default:
		return RPCInternalError
	}
}

// NewValidation creates a 400 error for invalid request parameters.
func NewValidation(msg string) *HindsightError {
	return &HindsightError{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
	}
}

// NewMissingField creates a 400 error naming the absent required field.
func NewMissingField(field string) *HindsightError {
	return &HindsightError{
		Code:    ErrValidation,
		Status:  400,
		Message: fmt.Sprintf("missing required field: %s", field),
		Details: map[string]any{"field": field},
	}
}

// NewMethodNotFound creates a 404 error for an unknown JSON-RPC method.
func NewMethodNotFound(method string) *HindsightError {
	return &HindsightError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("Method not found: %s", method),
		Details: map[string]any{"method": method},
	}
}

// NewIO creates a 500 error for a local filesystem failure.
// IO errors are fatal to the request and surfaced verbatim, never retried.
func NewIO(err error) *HindsightError {
	msg := "filesystem error"
	if err != nil {
		msg = err.Error()
	}
	return &HindsightError{
		Code:    ErrIO,
		Status:  500,
		Message: msg,
	}
}

// NewStorageForwarding creates an error for a failed external store write.
// Callers downgrade the affected entry's status instead of failing the request.
func NewStorageForwarding(entryID string, err error) *HindsightError {
	msg := "document store unavailable"
	if err != nil {
		msg = err.Error()
	}
	return &HindsightError{
		Code:    ErrStorageForwarding,
		Status:  502,
		Message: msg,
		Details: map[string]any{"entry_id": entryID},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *HindsightError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &HindsightError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a HindsightError with the given code.
func Is(err error, code ErrorCode) bool {
	if hErr, ok := err.(*HindsightError); ok {
		return hErr.Code == code
	}
	return false
}
