package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/realtyfeed/mvquery/internal/catalog"
	"github.com/realtyfeed/mvquery/internal/filter"
	"github.com/realtyfeed/mvquery/internal/logging"
	"github.com/realtyfeed/mvquery/internal/query"
	"github.com/realtyfeed/mvquery/internal/store"
)

// readDocument decodes the request body. It writes the error response and
// returns false when the body is unusable.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (filter.Value, bool) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	doc, err := filter.ReadJSON(body)
	if err != nil {
		logging.FromContext(r.Context(), s.logger).Debug("unreadable body", "error", err)
		writeError(w, http.StatusBadRequest, CodeBadBody, "Error in event body", nil)
		return filter.Value{}, false
	}
	return doc, true
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readDocument(w, r)
	if !ok {
		s.metrics.QueryOutcomes.WithLabelValues("bad_body").Inc()
		return
	}

	start := time.Now()
	rows, err := s.svc.List(r.Context(), doc)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.metrics.QueryOutcomes.WithLabelValues("ok").Inc()
	s.metrics.QueryRows.Observe(float64(len(rows)))

	writeSuccess(w, rows, &Meta{
		Count:       len(rows),
		QueryTimeMs: time.Since(start).Milliseconds(),
		RequestID:   logging.RequestID(r.Context()),
	})
}

// ExplainResult is the body of a successful explain request.
type ExplainResult struct {
	Statement string `json:"statement"`
	Params    []any  `json:"params"`
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	compiled, err := s.svc.Compile(doc)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeSuccess(w, ExplainResult{Statement: compiled.Statement, Params: compiled.Params}, &Meta{
		Count:     len(compiled.Params),
		RequestID: logging.RequestID(r.Context()),
	})
}

// CatalogAttribute describes one filterable column.
type CatalogAttribute struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CatalogResult lists what a filter document may reference.
type CatalogResult struct {
	View       string             `json:"view"`
	Attributes []CatalogAttribute `json:"attributes"`
	Operators  []string           `json:"operators"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, Describe(s.svc.View(), s.svc.Catalog()), nil)
}

// Describe summarizes a catalog for clients.
func Describe(view string, cat *catalog.Catalog) CatalogResult {
	attrs := cat.Attributes()
	out := CatalogResult{
		View:       view,
		Attributes: make([]CatalogAttribute, len(attrs)),
	}
	for i, a := range attrs {
		out.Attributes[i] = CatalogAttribute{Name: a.Name, Type: a.Type.String()}
	}
	for _, op := range filter.Operators() {
		out.Operators = append(out.Operators, op.Suffix())
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ping(r.Context()); err != nil {
		logging.FromContext(r.Context(), s.logger).Warn("health check failed", "error", store.Cause(err))
		writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "database unavailable", nil)
		return
	}
	writeSuccess(w, map[string]string{"status": "ok"}, nil)
}

// writeServiceError maps a service error onto a status and code. Driver
// details stay in the logs.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *filter.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		s.metrics.QueryOutcomes.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, CodeInvalid, "invalid request body", invalid.Errors)
	case errors.Is(err, store.ErrUnavailable):
		s.metrics.QueryOutcomes.WithLabelValues("unavailable").Inc()
		writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "database unavailable", nil)
	case errors.Is(err, store.ErrDataAccess):
		s.metrics.QueryOutcomes.WithLabelValues("data_access").Inc()
		writeError(w, http.StatusInternalServerError, CodeDataAccess, "data access error", nil)
	default:
		if !errors.Is(err, query.ErrCompile) {
			logging.FromContext(r.Context(), s.logger).Error("unexpected service error", "error", err)
		}
		s.metrics.QueryOutcomes.WithLabelValues("internal").Inc()
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal error", nil)
	}
}
