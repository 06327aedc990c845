// Package store runs compiled membership statements against a database.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Row is one result row keyed by column name.
type Row = map[string]any

// Executor runs a parameterized statement and returns the matching rows.
// Statements use "?" placeholders; a slice parameter binds a list.
type Executor interface {
	Execute(ctx context.Context, statement string, params []any) ([]Row, error)
	Ping(ctx context.Context) error
	Close()
}

var (
	// ErrDataAccess marks a failure while running a statement.
	ErrDataAccess = errors.New("data access error")
	// ErrUnavailable marks a failure to reach the database at all.
	ErrUnavailable = errors.New("database unavailable")
	// ErrUnsupportedDriver is returned by Open for an unknown driver name.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// Error wraps a driver error. Its message never includes the driver text,
// which may leak schema details; callers log Err when they need it.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func dataAccess(op string, err error) error {
	return &Error{Op: op, Kind: ErrDataAccess, Err: err}
}

func unavailable(op string, err error) error {
	return &Error{Op: op, Kind: ErrUnavailable, Err: err}
}

// Cause returns the underlying driver error of a store error, or err itself.
func Cause(err error) error {
	var se *Error
	if errors.As(err, &se) && se.Err != nil {
		return se.Err
	}
	return err
}

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config selects and configures an adapter.
type Config struct {
	Driver   string
	DSN      string
	MaxConns int32
}

// Open connects to the configured database and verifies it is reachable.
func Open(ctx context.Context, cfg Config) (Executor, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverPostgres, "postgresql", "pgx":
		return OpenPostgres(ctx, cfg.DSN, cfg.MaxConns)
	case DriverSQLite, "sqlite3":
		return OpenSQLite(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
}
