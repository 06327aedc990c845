package filter

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	spec, err := Parse(mustJSON(t, `{"ALL": "true"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !spec.SelectAll {
		t.Error("expected SelectAll")
	}
	if spec.OrderBy.Name != "user_id" || !spec.Ascending || spec.Limit != 10 || spec.Offset != 0 {
		t.Errorf("unexpected defaults: %+v", spec)
	}
	if spec.And != nil || spec.Or != nil {
		t.Error("select-all spec must not carry groups")
	}
}

func TestParse_Overrides(t *testing.T) {
	spec, err := Parse(mustJSON(t, `{"AND": {"user_id__gt": "3"}, "ORDERBY": "email", "ASC": "FALSE", "LIMIT": "0025", "OFFSET": "40"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.OrderBy.Name != "email" || spec.Ascending || spec.Limit != 25 || spec.Offset != 40 {
		t.Errorf("unexpected spec: %+v", spec)
	}
}

func TestParse_AscCaseInsensitive(t *testing.T) {
	for doc, want := range map[string]bool{
		`{"ALL": "true", "ASC": "TRUE"}`:  true,
		`{"ALL": "true", "ASC": "True"}`:  true,
		`{"ALL": "true", "ASC": "false"}`: false,
		`{"ALL": "true", "ASC": "FALSE"}`: false,
	} {
		spec, err := Parse(mustJSON(t, doc))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", doc, err)
		}
		if spec.Ascending != want {
			t.Errorf("%s: Ascending = %v, want %v", doc, spec.Ascending, want)
		}
	}
}

func TestParse_GroupsKeepInputOrder(t *testing.T) {
	spec, err := Parse(mustJSON(t, `{
		"OR": {"package_name__like": "ab", "package_id__in": ["3", "1"]},
		"AND": {"user_id__lte": "9", "email__eq": "x@y.z", "package_active__ne": "true"}
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var andKeys []string
	for _, term := range spec.And.Terms {
		andKeys = append(andKeys, term.Key)
	}
	if want := []string{"user_id__lte", "email__eq", "package_active__ne"}; !reflect.DeepEqual(andKeys, want) {
		t.Errorf("AND order = %v, want %v", andKeys, want)
	}
	if spec.And.Connective != Conjunctive || spec.Or.Connective != Disjunctive {
		t.Error("unexpected connectives")
	}

	in := spec.Or.Terms[1]
	if in.Operator != In || in.Attribute.Name != "package_id" {
		t.Errorf("unexpected term %+v", in)
	}
	if !reflect.DeepEqual(in.Values, []string{"3", "1"}) {
		t.Errorf("unexpected values %v", in.Values)
	}
}

func TestParse_InvalidInput(t *testing.T) {
	_, err := Parse(mustJSON(t, `{"AND": {"package_id__gte": "abc"}}`))
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %T %v", err, err)
	}
	if len(invalid.Errors) != 1 || invalid.Errors[0].Rule != RuleInteger {
		t.Errorf("unexpected errors: %+v", invalid.Errors)
	}
}

func TestSplitKey(t *testing.T) {
	tests := []struct {
		key, attr, suffix string
		ok                bool
	}{
		{"package_id__gte", "package_id", "gte", true},
		{"mls_access_customer_requests_status__nin", "mls_access_customer_requests_status", "nin", true},
		{"a__b__eq", "a__b", "eq", true},
		{"__eq", "", "", false},
		{"package_id__", "", "", false},
		{"package_id", "", "", false},
	}
	for _, tt := range tests {
		attr, suffix, ok := SplitKey(tt.key)
		if attr != tt.attr || suffix != tt.suffix || ok != tt.ok {
			t.Errorf("SplitKey(%q) = (%q, %q, %v)", tt.key, attr, suffix, ok)
		}
	}
}

func TestParseOperator(t *testing.T) {
	for _, op := range Operators() {
		got, ok := ParseOperator(op.Suffix())
		if !ok || got != op {
			t.Errorf("round trip failed for %s", op)
		}
	}
	if _, ok := ParseOperator("between"); ok {
		t.Error("expected unknown suffix to fail")
	}
	if !In.TakesList() || !NotIn.TakesList() || Like.TakesList() {
		t.Error("unexpected arity")
	}
}
