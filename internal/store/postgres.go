package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/realtyfeed/mvquery/internal/sqlutil"
)

// Postgres executes statements on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates a pool for dsn and pings it. maxConns <= 0 keeps the
// pgxpool default.
func OpenPostgres(ctx context.Context, dsn string, maxConns int32) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, unavailable("parse dsn", err)
	}
	if maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, unavailable("create pool", err)
	}
	p := &Postgres{pool: pool}
	if err := p.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Execute(ctx context.Context, statement string, params []any) ([]Row, error) {
	stmt, args, err := sqlutil.Bind(statement, params, sqlutil.Dollar)
	if err != nil {
		return nil, dataAccess("bind", err)
	}

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, unavailable("acquire", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, stmt, args...)
	if err != nil {
		return nil, dataAccess("query", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, dataAccess("scan", err)
	}
	if out == nil {
		out = []Row{}
	}
	return out, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}
