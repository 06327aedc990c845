package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Global JSON output flag
var jsonOutput bool

// Response is the standard JSON envelope for all CLI output.
type Response struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
	Meta  *Meta       `json:"meta,omitempty"`
}

// ErrorInfo contains structured error information.
type ErrorInfo struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Meta contains metadata about the response.
type Meta struct {
	Count       int   `json:"count,omitempty"`
	QueryTimeMs int64 `json:"query_time_ms,omitempty"`
}

// errSilent makes the process exit non-zero after the error has already
// been reported.
var errSilent = errors.New("silent failure")

// outputJSON writes the response as indented JSON.
func outputJSON(w io.Writer, resp Response) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

// outputSuccess outputs a successful JSON response.
func outputSuccess(cmd *cobra.Command, data interface{}, meta *Meta) {
	outputJSON(cmd.OutOrStdout(), Response{
		OK:   true,
		Data: data,
		Meta: meta,
	})
}

// outputError outputs an error JSON response.
func outputError(cmd *cobra.Command, code, message string, details interface{}, suggestion string) {
	outputJSON(cmd.OutOrStdout(), Response{
		OK: false,
		Error: &ErrorInfo{
			Code:       code,
			Message:    message,
			Details:    details,
			Suggestion: suggestion,
		},
	})
}

// isJSONOutput returns true if JSON output is enabled.
func isJSONOutput() bool {
	return jsonOutput
}

// handleError handles an error appropriately based on output mode.
// In JSON mode, outputs a JSON error and exits non-zero without printing
// again. In text mode, returns the error for Execute to print.
func handleError(cmd *cobra.Command, code string, err error, suggestion string) error {
	return handleErrorWithDetails(cmd, code, err.Error(), suggestion, nil)
}

// handleErrorWithDetails handles an error with structured details.
func handleErrorWithDetails(cmd *cobra.Command, code, message, suggestion string, details interface{}) error {
	if jsonOutput {
		outputError(cmd, code, message, details, suggestion)
		return errSilent
	}
	if suggestion != "" {
		return fmt.Errorf("%s\n\n%s", message, suggestion)
	}
	return fmt.Errorf("%s", message)
}
