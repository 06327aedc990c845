package query

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/realtyfeed/mvquery/internal/catalog"
	"github.com/realtyfeed/mvquery/internal/filter"
	"github.com/realtyfeed/mvquery/internal/sqlutil"
)

func mustSpec(t *testing.T, doc string) *filter.QuerySpec {
	t.Helper()
	v, err := filter.DecodeJSON([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	spec, err := filter.Parse(v)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return spec
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		statement string
		params    []any
	}{
		{
			name:      "select all with defaults",
			doc:       `{"ALL": "true"}`,
			statement: `SELECT * FROM membershipMV ORDER BY "user_id" ASC LIMIT 10 OFFSET 0;`,
			params:    []any{},
		},
		{
			name:      "select all with ordering",
			doc:       `{"ALL": "TRUE", "ORDERBY": "package_id", "ASC": "false", "LIMIT": "5", "OFFSET": "20"}`,
			statement: `SELECT * FROM membershipMV ORDER BY "package_id" DESC LIMIT 5 OFFSET 20;`,
			params:    []any{},
		},
		{
			name:      "and group",
			doc:       `{"AND": {"package_id__gte": "100", "email__eq": "a@b.c"}}`,
			statement: `SELECT * FROM membershipMV WHERE "package_id" >= ? AND "email" = ? ORDER BY "user_id" ASC LIMIT 10 OFFSET 0;`,
			params:    []any{int64(100), "a@b.c"},
		},
		{
			name:      "or group",
			doc:       `{"OR": {"package_name__like": "ab", "invoice_item_package_status__in": ["2", "1"]}}`,
			statement: `SELECT * FROM membershipMV WHERE "package_name" LIKE ? OR "invoice_item_package_status" IN ? ORDER BY "user_id" ASC LIMIT 10 OFFSET 0;`,
			params:    []any{"%ab%", []int64{2, 1}},
		},
		{
			name:      "both groups",
			doc:       `{"OR": {"package_name__like": "ab"}, "AND": {"package_id__gte": "100", "user_id__lt": "9"}, "LIMIT": "3"}`,
			statement: `SELECT * FROM membershipMV WHERE ("package_id" >= ? AND "user_id" < ?) OR ("package_name" LIKE ?) ORDER BY "user_id" ASC LIMIT 3 OFFSET 0;`,
			params:    []any{int64(100), int64(9), "%ab%"},
		},
		{
			name:      "paging literals are normalized",
			doc:       `{"ALL": "true", "LIMIT": "0025", "OFFSET": "007"}`,
			statement: `SELECT * FROM membershipMV ORDER BY "user_id" ASC LIMIT 25 OFFSET 7;`,
			params:    []any{},
		},
		{
			name:      "like patterns keep raw text",
			doc:       `{"AND": {"start_date__like": "2024/01/31", "user_id__like": "007", "package_active__like": "TRUE"}}`,
			statement: `SELECT * FROM membershipMV WHERE "start_date" LIKE ? AND "user_id" LIKE ? AND "package_active" LIKE ? ORDER BY "user_id" ASC LIMIT 10 OFFSET 0;`,
			params:    []any{"%2024/01/31%", "%007%", "%TRUE%"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := Assemble(catalog.MembershipView, mustSpec(t, tt.doc))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if compiled.Statement != tt.statement {
				t.Errorf("statement:\n got %s\nwant %s", compiled.Statement, tt.statement)
			}
			if !reflect.DeepEqual(compiled.Params, tt.params) {
				t.Errorf("params = %#v, want %#v", compiled.Params, tt.params)
			}
		})
	}
}

func TestAssemble_ValuesNeverInlined(t *testing.T) {
	hostile := `x' OR '1'='1`
	spec := mustSpec(t, `{"AND": {"email__eq": "x' OR '1'='1", "package_name__like": "%; DROP TABLE membershipMV; --"}}`)
	compiled, err := Assemble(catalog.MembershipView, spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range []string{hostile, "DROP"} {
		if strings.Contains(compiled.Statement, s) {
			t.Errorf("statement contains user text %q: %s", s, compiled.Statement)
		}
	}
}

func TestAssemble_StatementsParse(t *testing.T) {
	docs := []string{
		`{"ALL": "true"}`,
		`{"AND": {"package_id__gte": "100", "start_date__lt": "2024/01/31", "package_active__eq": "true"}}`,
		`{"OR": {"invoice_item_package_status__nin": ["1", "2", "3"], "email__like": "gmail"}}`,
		`{"AND": {"user_id__in": ["1"]}, "OR": {"package_name__ne": "basic"}, "ASC": "false", "ORDERBY": "end_date"}`,
	}
	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			compiled, err := Assemble(catalog.MembershipView, mustSpec(t, doc))
			if err != nil {
				t.Fatalf("assemble: %v", err)
			}
			stmt, _, err := sqlutil.Bind(compiled.Statement, compiled.Params, sqlutil.Dollar)
			if err != nil {
				t.Fatalf("bind: %v", err)
			}
			if _, err := pg_query.Parse(stmt); err != nil {
				t.Errorf("statement does not parse: %v\n%s", err, stmt)
			}
		})
	}
}

func TestAssemble_Defects(t *testing.T) {
	good := mustSpec(t, `{"ALL": "true"}`)

	if _, err := Assemble("membershipMV; DROP TABLE x", good); !errors.Is(err, ErrCompile) {
		t.Errorf("expected invalid view name to fail, got %v", err)
	}
	if _, err := Assemble(catalog.MembershipView, nil); !errors.Is(err, ErrCompile) {
		t.Errorf("expected nil spec to fail, got %v", err)
	}

	noGroups := *good
	noGroups.SelectAll = false
	if _, err := Assemble(catalog.MembershipView, &noGroups); !errors.Is(err, ErrCompile) {
		t.Errorf("expected spec without groups to fail, got %v", err)
	}

	badLimit := *good
	badLimit.Limit = 0
	if _, err := Assemble(catalog.MembershipView, &badLimit); !errors.Is(err, ErrCompile) {
		t.Errorf("expected zero limit to fail, got %v", err)
	}

	badOffset := *good
	badOffset.Offset = -1
	if _, err := Assemble(catalog.MembershipView, &badOffset); !errors.Is(err, ErrCompile) {
		t.Errorf("expected negative offset to fail, got %v", err)
	}
}

func TestValidViewName(t *testing.T) {
	for _, name := range []string{"membershipMV", "public.membershipMV", "_v1"} {
		if !ValidViewName(name) {
			t.Errorf("%q should be valid", name)
		}
	}
	for _, name := range []string{"", "1view", "a.b.c", "view name", `"quoted"`} {
		if ValidViewName(name) {
			t.Errorf("%q should be invalid", name)
		}
	}
}
