package source

import (
	"strconv"
	"strings"
	"time"
)

// ParseAmount converts upstream money strings like "$1,234,567.89" or
// "1234.5" into a float pointer. Empty or unparseable input yields nil.
func ParseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// dateLayouts are the formats government APIs actually emit, tried in order.
var dateLayouts = []string{
	"2006-01-02T15:04:05.000",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006",
}

// ParseDate converts an upstream date string into a time pointer. Empty or
// unrecognized input yields nil rather than an error: a missing date never
// fails a record.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// YearOf extracts the calendar year from a parsed date, 0 when absent.
func YearOf(t *time.Time) int {
	if t == nil {
		return 0
	}
	return t.Year()
}
