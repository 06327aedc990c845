package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realtyfeed/mvquery/internal/catalog"
	"github.com/realtyfeed/mvquery/internal/filter"
	"github.com/realtyfeed/mvquery/internal/query"
	"github.com/realtyfeed/mvquery/internal/testutil"
)

func openFixture(t *testing.T) *SQLite {
	t.Helper()
	fixture := testutil.NewMembershipDB(t).Build()
	s, err := OpenSQLite(context.Background(), fixture.Path)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func compile(t *testing.T, doc string) *query.Compiled {
	t.Helper()
	v, err := filter.DecodeJSON([]byte(doc))
	require.NoError(t, err)
	spec, err := filter.Parse(v)
	require.NoError(t, err)
	compiled, err := query.Assemble(catalog.MembershipView, spec)
	require.NoError(t, err)
	return compiled
}

func TestSQLite_ExecuteCompiled(t *testing.T) {
	s := openFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		doc  string
		want []int64
	}{
		{"all", `{"ALL": "true"}`, []int64{1, 2, 3, 4}},
		{"all descending paged", `{"ALL": "true", "ASC": "false", "LIMIT": "2", "OFFSET": "1"}`, []int64{3, 2}},
		{"and group", `{"AND": {"package_id__gte": "100", "package_active__eq": "true"}}`, []int64{1, 2}},
		{"or group", `{"OR": {"package_name__like": "plus", "user_id__in": ["4", "1"]}}`, []int64{1, 3, 4}},
		{"not in", `{"AND": {"package_name__nin": ["pro", "basic"]}}`, []int64{3, 4}},
		{"timestamp", `{"AND": {"start_date__gte": "2024/02/01"}}`, []int64{2, 3}},
		{"timestamp list", `{"AND": {"start_date__in": ["2024/1/1", "2023/12/01"]}}`, []int64{1, 4}},
		{"both groups", `{"AND": {"package_id__gt": "100", "email__like": "x.io"}, "OR": {"user_id__eq": "4"}}`, []int64{2, 4}},
		{"no match", `{"AND": {"email__eq": "nobody"}}`, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := compile(t, tt.doc)
			rows, err := s.Execute(ctx, c.Statement, c.Params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, testutil.UserIDs(rows))
		})
	}
}

func TestSQLite_RowsCarryAllColumns(t *testing.T) {
	s := openFixture(t)
	c := compile(t, `{"AND": {"user_id__eq": "2"}}`)
	rows, err := s.Execute(context.Background(), c.Statement, c.Params)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b@x.io", rows[0]["email"])
	assert.Equal(t, "pro", rows[0]["package_name"])
	assert.Len(t, rows[0], 6)
}

func TestSQLite_TimeParamsBoundAsText(t *testing.T) {
	s := openFixture(t)
	rows, err := s.Execute(context.Background(),
		`SELECT "user_id" FROM membershipMV WHERE "start_date" = ?;`,
		[]any{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, testutil.UserIDs(rows))
}

func TestSQLite_DataAccessError(t *testing.T) {
	s := openFixture(t)
	_, err := s.Execute(context.Background(), `SELECT * FROM missing_view WHERE "x" = ?;`, []any{int64(1)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataAccess)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.NotContains(t, err.Error(), "missing_view")
	assert.Contains(t, Cause(err).Error(), "missing_view")
}

func TestSQLite_BindError(t *testing.T) {
	s := openFixture(t)
	_, err := s.Execute(context.Background(), `SELECT * FROM membershipMV WHERE "user_id" IN ?;`, []any{[]int64{}})
	assert.ErrorIs(t, err, ErrDataAccess)
}

func TestSQLite_ClosedIsUnavailable(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	s.Close()
	assert.ErrorIs(t, s.Ping(context.Background()), ErrUnavailable)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	exec, err := Open(ctx, Config{Driver: "SQLite", DSN: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, exec)
	exec.Close()

	_, err = Open(ctx, Config{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)

	_, err = Open(ctx, Config{Driver: DriverPostgres, DSN: "postgres://u:p@localhost:notaport/db"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestError_HidesDriverText(t *testing.T) {
	driverErr := errors.New(`relation "secret_table" does not exist`)
	err := dataAccess("query", driverErr)
	assert.False(t, strings.Contains(err.Error(), "secret_table"))
	assert.ErrorIs(t, err, driverErr)
	assert.ErrorIs(t, err, ErrDataAccess)
}
