package filter

import (
	"errors"
	"strings"
	"testing"
)

func memberKeys(v Value) []string {
	var keys []string
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	return keys
}

func TestDecodeJSON_PreservesOrder(t *testing.T) {
	v := mustJSON(t, `{"z": "1", "a": ["x", 2, true, null], "m": {"k2": "v", "k1": "w"}}`)
	if got := memberKeys(v); len(got) != 3 || got[0] != "z" || got[1] != "a" || got[2] != "m" {
		t.Fatalf("unexpected key order %v", got)
	}
	inner, _ := v.Get("m")
	if got := memberKeys(inner); got[0] != "k2" || got[1] != "k1" {
		t.Errorf("unexpected nested order %v", got)
	}
	list, _ := v.Get("a")
	kinds := []Kind{KindString, KindNumber, KindBool, KindNull}
	for i, item := range list.Items() {
		if item.Kind() != kinds[i] {
			t.Errorf("item %d kind = %s, want %s", i, item.Kind(), kinds[i])
		}
	}
}

func TestDecodeJSON_DuplicateKeyLastValueFirstPosition(t *testing.T) {
	v := mustJSON(t, `{"a": "1", "b": "2", "a": "3"}`)
	if got := memberKeys(v); len(got) != 2 || got[0] != "a" {
		t.Fatalf("unexpected keys %v", got)
	}
	a, _ := v.Get("a")
	if s, _ := a.Str(); s != "3" {
		t.Errorf("expected last value, got %q", s)
	}
}

func TestDecodeJSON_Errors(t *testing.T) {
	if _, err := DecodeJSON([]byte("")); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
	for _, bad := range []string{`{"a": }`, `{"a": "1"} {"b": "2"}`, `{"a"`} {
		if _, err := DecodeJSON([]byte(bad)); err == nil {
			t.Errorf("expected error for %s", bad)
		}
	}
}

func TestDecode_NestingBounded(t *testing.T) {
	deepJSON := strings.Repeat("[", 100000)
	if _, err := DecodeJSON([]byte(deepJSON)); !errors.Is(err, ErrTooDeep) {
		t.Errorf("JSON: expected ErrTooDeep, got %v", err)
	}
	closed := strings.Repeat("[", maxDepth+5) + strings.Repeat("]", maxDepth+5)
	if _, err := DecodeJSON([]byte(closed)); !errors.Is(err, ErrTooDeep) {
		t.Errorf("JSON: expected ErrTooDeep for balanced input, got %v", err)
	}
	if _, err := DecodeYAML([]byte(closed)); !errors.Is(err, ErrTooDeep) {
		t.Errorf("YAML: expected ErrTooDeep, got %v", err)
	}

	shallow := strings.Repeat("[", maxDepth) + strings.Repeat("]", maxDepth)
	if _, err := DecodeJSON([]byte(shallow)); err != nil {
		t.Errorf("JSON at the depth limit must decode, got %v", err)
	}
}

func TestDecodeYAML(t *testing.T) {
	v, err := DecodeYAML([]byte(`
OR:
  package_name__like: ab
  invoice_item_package_status__in: ["2", "1"]
AND:
  package_id__gte: "100"
LIMIT: 5
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := memberKeys(v); got[0] != "OR" || got[1] != "AND" || got[2] != "LIMIT" {
		t.Errorf("unexpected order %v", got)
	}
	limit, _ := v.Get("LIMIT")
	if limit.Kind() != KindNumber {
		t.Errorf("unquoted YAML integer must decode as a number, got %s", limit.Kind())
	}
	or, _ := v.Get("OR")
	if got := memberKeys(or); got[0] != "package_name__like" {
		t.Errorf("unexpected group order %v", got)
	}
}

func TestDecodeYAML_AcceptsJSON(t *testing.T) {
	v, err := DecodeYAML([]byte(`{"AND": {"package_id__gte": "100"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errs := Validate(v); len(errs) > 0 {
		t.Errorf("unexpected errors %v", errs.Messages())
	}
}

func TestValue_MarshalJSONRoundTrip(t *testing.T) {
	src := `{"b":["1","2"],"a":{"y":null,"x":true},"c":12.5}`
	v := mustJSON(t, src)
	out, err := v.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != src {
		t.Errorf("got %s, want %s", out, src)
	}
}
