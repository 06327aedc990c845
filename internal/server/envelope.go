package server

import (
	"encoding/json"
	"net/http"
)

// Status codes reported in error envelopes.
const (
	CodeBadBody     = "umc-05-001-01"
	CodeInvalid     = "umc-05-001-02"
	CodeUnavailable = "umc-05-001-03"
	CodeDataAccess  = "umc-05-001-04"
	CodeInternal    = "INTERNAL"
	CodeNotFound    = "NOT_FOUND"
	CodeMethod      = "METHOD_NOT_ALLOWED"
)

// Response is the JSON envelope for every API response.
type Response struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorInfo `json:"error,omitempty"`
	Meta  *Meta      `json:"meta,omitempty"`
}

// ErrorInfo contains structured error information.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Meta contains metadata about the response.
type Meta struct {
	Count       int    `json:"count"`
	QueryTimeMs int64  `json:"query_time_ms"`
	RequestID   string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeSuccess(w http.ResponseWriter, data any, meta *Meta) {
	writeJSON(w, http.StatusOK, Response{OK: true, Data: data, Meta: meta})
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, Response{
		Error: &ErrorInfo{Code: code, Message: message, Details: details},
	})
}
