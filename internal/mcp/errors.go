package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/taskdesk/internal/domain/activity"
	"github.com/rpggio/taskdesk/internal/domain/board"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. It returns nil for
// errors without a mapping.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, board.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: err.Error(), RecoveryHint: "List tasks or notes to find a current id"}
	case errors.Is(err, board.ErrValidation), errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "VALIDATION", Message: err.Error(), RecoveryHint: "Provide non-empty title or content"}
	case errors.Is(err, board.ErrFormat):
		return &APIError{Code: "FORMAT", Message: err.Error(), RecoveryHint: "Pass a document produced by export_json"}
	default:
		return nil
	}
}

// toolError converts a domain error into the error returned from a tool
// handler.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
