package membership

import (
	"time"

	"github.com/realtyfeed/mvquery/internal/store"
)

// ISOLayout renders timestamps with their UTC offset, adding microseconds only
// when the value has a sub-second part. NaiveLayout is used for values in
// time.UTC, which is how drivers decode timestamp columns without a time zone.
const (
	ISOLayout         = "2006-01-02T15:04:05-07:00"
	ISOLayoutMicros   = "2006-01-02T15:04:05.000000-07:00"
	NaiveLayout       = "2006-01-02T15:04:05"
	NaiveLayoutMicros = "2006-01-02T15:04:05.000000"
)

// FormatTimestamp renders t in ISOLayout, or NaiveLayout when t is in UTC.
func FormatTimestamp(t time.Time) string {
	naive := t.Location() == time.UTC
	switch {
	case naive && t.Nanosecond() != 0:
		return t.Format(NaiveLayoutMicros)
	case naive:
		return t.Format(NaiveLayout)
	case t.Nanosecond() != 0:
		return t.Format(ISOLayoutMicros)
	default:
		return t.Format(ISOLayout)
	}
}

// NormalizeRows rewrites time.Time values in the given columns as ISO-8601
// strings, in place. Other values are left untouched.
func NormalizeRows(rows []store.Row, columns map[string]bool) []store.Row {
	for _, row := range rows {
		for col, val := range row {
			if !columns[col] {
				continue
			}
			switch t := val.(type) {
			case time.Time:
				row[col] = FormatTimestamp(t)
			case *time.Time:
				if t != nil {
					row[col] = FormatTimestamp(*t)
				}
			}
		}
	}
	return rows
}
