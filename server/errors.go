package server

import (
	"fmt"

	"github.com/dhamidi/mcpgo/protocol"
)

// ToolError is the error a tool handler returns to control how its failure
// is reported back over JSON-RPC. A handler that returns a plain error gets
// ErrCodeInternalError; returning a *ToolError lets it pick a more specific
// code (e.g. invalid arguments).
type ToolError struct {
	Code    int
	Message string
}

func (e *ToolError) Error() string { return e.Message }

// ExecutionError wraps a runtime failure (e.g. division by zero) as an
// internal error, matching spec.md scenario S4.
func ExecutionError(format string, args ...any) *ToolError {
	return &ToolError{Code: protocol.ErrCodeInternalError, Message: fmt.Sprintf(format, args...)}
}

// InvalidParametersError reports that the tool's arguments failed
// validation or decoding.
func InvalidParametersError(format string, args ...any) *ToolError {
	return &ToolError{Code: protocol.ErrCodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}
