package catalog

import (
	"strings"
	"testing"
)

func TestMembershipCatalog(t *testing.T) {
	if got := Membership.Len(); got != 27 {
		t.Fatalf("expected 27 attributes, got %d", got)
	}

	tests := []struct {
		name string
		want ValueType
	}{
		{"package_id", Integer},
		{"package_name", Text},
		{"package_active", Boolean},
		{"membership_since", Timestamp},
		{"user_id", Integer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := Membership.Lookup(tt.name)
			if !ok {
				t.Fatalf("expected %s in catalog", tt.name)
			}
			if a.Type != tt.want {
				t.Errorf("expected type %s, got %s", tt.want, a.Type)
			}
		})
	}

	if _, ok := Membership.Lookup("password"); ok {
		t.Error("expected unknown attribute lookup to fail")
	}
}

func TestMembershipTimestamps(t *testing.T) {
	got := strings.Join(Membership.Timestamps(), ",")
	want := "start_date,end_date,cancellation_date,period_start,period_end,membership_since"
	if got != want {
		t.Errorf("timestamps = %s, want %s", got, want)
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New(Attribute{Name: "a", Type: Text}, Attribute{Name: "a", Type: Integer})
	if err == nil || !strings.Contains(err.Error(), "duplicate attribute 'a'") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	if _, err := New(Attribute{Name: "a"}); err == nil {
		t.Fatal("expected error for zero type")
	}
	if _, err := New(Attribute{Name: "", Type: Text}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestNamesPreserveOrderAndCopy(t *testing.T) {
	c := MustNew(Attribute{Name: "b", Type: Text}, Attribute{Name: "a", Type: Integer})
	names := c.Names()
	if strings.Join(names, ",") != "b,a" {
		t.Fatalf("unexpected order: %v", names)
	}
	names[0] = "mutated"
	if c.Names()[0] != "b" {
		t.Error("Names must return a copy")
	}
}
