// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Input errors
	ErrInvalidInput     = "INVALID_INPUT"
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrFileNotFound     = "FILE_NOT_FOUND"

	// Config errors
	ErrConfigInvalid = "CONFIG_INVALID"
	ErrConfigExists  = "CONFIG_EXISTS"

	// Database errors
	ErrDatabase            = "DATABASE_ERROR"
	ErrDatabaseUnavailable = "DATABASE_UNAVAILABLE"

	// Docs errors
	ErrDocsTopicNotFound = "DOCS_TOPIC_NOT_FOUND"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)
