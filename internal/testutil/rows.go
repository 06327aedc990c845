package testutil

import (
	"reflect"
	"testing"
)

// UserIDs extracts the user_id column of rows in order.
func UserIDs(rows []map[string]any) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		if id, ok := r["user_id"].(int64); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// AssertUserIDs fails the test unless rows hold exactly want, in order.
func AssertUserIDs(t *testing.T, rows []map[string]any, want ...int64) {
	t.Helper()
	got := UserIDs(rows)
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("user ids = %v, want %v", got, want)
	}
}
