// Package membership runs filter documents against the membership view.
package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/realtyfeed/mvquery/internal/catalog"
	"github.com/realtyfeed/mvquery/internal/filter"
	"github.com/realtyfeed/mvquery/internal/logging"
	"github.com/realtyfeed/mvquery/internal/query"
	"github.com/realtyfeed/mvquery/internal/store"
)

// ErrNoExecutor is returned by List on a compile-only service.
var ErrNoExecutor = errors.New("no database configured")

// Service validates, compiles and executes filter documents. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	exec    store.Executor
	grammar *filter.Grammar
	view    string
	logger  *slog.Logger
	stamps  map[string]bool
}

// Option configures a Service.
type Option func(*Service)

// WithView sets the relation queried. Defaults to membershipMV.
func WithView(view string) Option {
	return func(s *Service) {
		if view != "" {
			s.view = view
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGrammar replaces the default membership grammar.
func WithGrammar(g *filter.Grammar) Option {
	return func(s *Service) {
		if g != nil {
			s.grammar = g
		}
	}
}

// New creates a service. exec may be nil when only Validate and Compile are
// needed.
func New(exec store.Executor, opts ...Option) (*Service, error) {
	s := &Service{
		exec:    exec,
		grammar: filter.Default,
		view:    catalog.MembershipView,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !query.ValidViewName(s.view) {
		return nil, fmt.Errorf("invalid view name %q", s.view)
	}

	s.stamps = make(map[string]bool)
	for _, name := range s.grammar.Catalog().Timestamps() {
		s.stamps[name] = true
	}
	return s, nil
}

// View returns the relation queried.
func (s *Service) View() string {
	return s.view
}

// Catalog returns the attribute catalog filters are checked against.
func (s *Service) Catalog() *catalog.Catalog {
	return s.grammar.Catalog()
}

// Ping checks that the database is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if s.exec == nil {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, ErrNoExecutor)
	}
	return s.exec.Ping(ctx)
}

// Validate reports every problem with doc without compiling it.
func (s *Service) Validate(doc filter.Value) filter.Errors {
	return s.grammar.Validate(doc)
}

// Compile validates doc and returns the statement and parameters that List
// would execute.
func (s *Service) Compile(doc filter.Value) (*query.Compiled, error) {
	spec, err := s.grammar.Parse(doc)
	if err != nil {
		return nil, err
	}
	return query.Assemble(s.view, spec)
}

// List returns the membership rows matching doc. Validation failures come
// back as *filter.InvalidInputError before the database is touched.
func (s *Service) List(ctx context.Context, doc filter.Value) ([]store.Row, error) {
	logger := logging.FromContext(ctx, s.logger)

	compiled, err := s.Compile(doc)
	if err != nil {
		var invalid *filter.InvalidInputError
		if errors.As(err, &invalid) {
			logger.Debug("filter rejected", "errors", len(invalid.Errors))
		} else {
			logger.Error("compile failed", "error", err)
		}
		return nil, err
	}
	if s.exec == nil {
		return nil, fmt.Errorf("%w: %w", store.ErrUnavailable, ErrNoExecutor)
	}

	logger.Debug("executing membership query", "statement", compiled.Statement, "params", len(compiled.Params))
	start := time.Now()
	rows, err := s.exec.Execute(ctx, compiled.Statement, compiled.Params)
	if err != nil {
		logger.Error("membership query failed", "error", store.Cause(err), "statement", compiled.Statement)
		return nil, err
	}
	logger.Debug("membership query done", "rows", len(rows), "duration", time.Since(start))

	return NormalizeRows(rows, s.stamps), nil
}
