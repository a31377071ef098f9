package board

import "errors"

var (
	// ErrValidation indicates input that violates a task or note invariant.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates no task or note matches the given id.
	ErrNotFound = errors.New("not found")
	// ErrFormat indicates import text that is not a JSON document.
	ErrFormat = errors.New("invalid document format")
)
