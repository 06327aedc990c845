package sqlutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestBind(t *testing.T) {
	day := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		stmt     string
		params   []any
		style    PlaceholderStyle
		wantStmt string
		wantArgs []any
	}{
		{
			name:     "dollar scalars",
			stmt:     `SELECT * FROM v WHERE "a" = ? AND "b" > ?;`,
			params:   []any{int64(1), "x"},
			style:    Dollar,
			wantStmt: `SELECT * FROM v WHERE "a" = $1 AND "b" > $2;`,
			wantArgs: []any{int64(1), "x"},
		},
		{
			name:     "dollar list expands",
			stmt:     `SELECT * FROM v WHERE "a" IN ? OR "b" = ?;`,
			params:   []any{[]int64{3, 4}, day},
			style:    Dollar,
			wantStmt: `SELECT * FROM v WHERE "a" IN ($1, $2) OR "b" = $3;`,
			wantArgs: []any{int64(3), int64(4), day},
		},
		{
			name:     "question list expands",
			stmt:     `SELECT * FROM v WHERE "a" NOT IN ?;`,
			params:   []any{[]string{"x", "y", "z"}},
			style:    Question,
			wantStmt: `SELECT * FROM v WHERE "a" NOT IN (?, ?, ?);`,
			wantArgs: []any{"x", "y", "z"},
		},
		{
			name:     "bytes stay scalar",
			stmt:     `SELECT ?;`,
			params:   []any{[]byte("ab")},
			style:    Dollar,
			wantStmt: `SELECT $1;`,
			wantArgs: []any{[]byte("ab")},
		},
		{
			name:     "quoted question marks ignored",
			stmt:     `SELECT '?' AS "why?" WHERE "a" = ?;`,
			params:   []any{true},
			style:    Dollar,
			wantStmt: `SELECT '?' AS "why?" WHERE "a" = $1;`,
			wantArgs: []any{true},
		},
		{
			name:     "no params",
			stmt:     `SELECT * FROM v LIMIT 10 OFFSET 0;`,
			params:   []any{},
			style:    Dollar,
			wantStmt: `SELECT * FROM v LIMIT 10 OFFSET 0;`,
			wantArgs: []any{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, args, err := Bind(tt.stmt, tt.params, tt.style)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStmt, stmt)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBind_Errors(t *testing.T) {
	_, _, err := Bind(`SELECT ? , ?`, []any{1}, Dollar)
	assert.ErrorIs(t, err, ErrParamCount)

	_, _, err = Bind(`SELECT ?`, []any{1, 2}, Dollar)
	assert.ErrorIs(t, err, ErrParamCount)

	_, _, err = Bind(`SELECT * FROM v WHERE a IN ?`, []any{[]string{}}, Question)
	assert.ErrorIs(t, err, ErrEmptyList)
}

func TestScanRowsWithScanMap(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE t (id INTEGER, name TEXT, data BLOB)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO t VALUES (1, 'a', x'6869'), (2, 'b', NULL)`)
	require.NoError(t, err)

	rows, err := db.Query(`SELECT id, name, data FROM t ORDER BY id`)
	require.NoError(t, err)
	cols, err := rows.Columns()
	require.NoError(t, err)

	out, err := ScanRows(rows, ScanMap(cols))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(1), out[0]["id"])
	assert.Equal(t, "a", out[0]["name"])
	assert.Equal(t, "hi", out[0]["data"])
	assert.Nil(t, out[1]["data"])
}
