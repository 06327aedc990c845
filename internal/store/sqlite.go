package store

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"github.com/realtyfeed/mvquery/internal/sqlutil"
)

// SQLiteTimeLayout is the text form timestamps are bound and stored in.
const SQLiteTimeLayout = "2006-01-02 15:04:05"

// SQLite executes statements on a database/sql handle backed by
// modernc.org/sqlite.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens dsn (a file path or ":memory:") and pings it.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, unavailable("open", err)
	}
	// An in-memory database exists per connection.
	if dsn == ":memory:" || dsn == "" {
		db.SetMaxOpenConns(1)
	}
	s := &SQLite{db: db}
	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite wraps an existing handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// DB returns the underlying handle.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

func (s *SQLite) Execute(ctx context.Context, statement string, params []any) ([]Row, error) {
	stmt, args, err := sqlutil.Bind(statement, params, sqlutil.Question)
	if err != nil {
		return nil, dataAccess("bind", err)
	}
	for i, arg := range args {
		if ts, ok := arg.(time.Time); ok {
			args[i] = ts.UTC().Format(SQLiteTimeLayout)
		}
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, dataAccess("query", err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, dataAccess("columns", err)
	}
	out, err := sqlutil.ScanRows(rows, sqlutil.ScanMap(cols))
	if err != nil {
		return nil, dataAccess("scan", err)
	}
	if out == nil {
		out = []Row{}
	}
	return out, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *SQLite) Close() {
	s.db.Close()
}
