package source

import (
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		nil_ bool
	}{
		{in: "$1,234,567.89", want: 1234567.89},
		{in: "1234.5", want: 1234.5},
		{in: " $42 ", want: 42},
		{in: "-100.00", want: -100},
		{in: "0", want: 0},
		{in: "", nil_: true},
		{in: "$", nil_: true},
		{in: "n/a", nil_: true},
		{in: "1.2.3", nil_: true},
	}
	for _, tc := range tests {
		got := ParseAmount(tc.in)
		if tc.nil_ {
			if got != nil {
				t.Errorf("ParseAmount(%q) = %v, want nil", tc.in, *got)
			}
			continue
		}
		if got == nil {
			t.Errorf("ParseAmount(%q) = nil, want %v", tc.in, tc.want)
			continue
		}
		if *got != tc.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.in, *got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string // RFC3339, empty means nil
	}{
		{in: "2023-05-01T00:00:00.000", want: "2023-05-01T00:00:00Z"},
		{in: "2023-05-01T12:30:00Z", want: "2023-05-01T12:30:00Z"},
		{in: "2023-05-01T12:30:00", want: "2023-05-01T12:30:00Z"},
		{in: "2023-05-01", want: "2023-05-01T00:00:00Z"},
		{in: "05/01/2023", want: "2023-05-01T00:00:00Z"},
		{in: "2023", want: "2023-01-01T00:00:00Z"},
		{in: "", want: ""},
		{in: "yesterday", want: ""},
	}
	for _, tc := range tests {
		got := ParseDate(tc.in)
		if tc.want == "" {
			if got != nil {
				t.Errorf("ParseDate(%q) = %v, want nil", tc.in, got)
			}
			continue
		}
		if got == nil {
			t.Errorf("ParseDate(%q) = nil, want %s", tc.in, tc.want)
			continue
		}
		if got.Format(time.RFC3339) != tc.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got.Format(time.RFC3339), tc.want)
		}
	}
}

func TestYearOf(t *testing.T) {
	if got := YearOf(nil); got != 0 {
		t.Errorf("YearOf(nil) = %d, want 0", got)
	}
	d := time.Date(2021, 7, 4, 0, 0, 0, 0, time.UTC)
	if got := YearOf(&d); got != 2021 {
		t.Errorf("YearOf = %d, want 2021", got)
	}
}
