package core

import "time"

var monthNames = [12]string{
	"January",
	"February",
	"March",
	"April",
	"May",
	"June",
	"July",
	"August",
	"September",
	"October",
	"November",
	"December",
}

// ResolveMonth converts a full English month name to its ordinal.
// Matching is case-sensitive: "March" resolves, "march" and "Mar" do not.
func ResolveMonth(name string) (time.Month, error) {
	for i, n := range monthNames {
		if n == name {
			return time.Month(i + 1), nil
		}
	}
	return 0, ErrInvalidMonth
}

// MonthName returns the English name for m, or "" when m is out of range.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// MonthNames returns the twelve valid month names in calendar order.
func MonthNames() []string {
	out := make([]string, len(monthNames))
	copy(out, monthNames[:])
	return out
}
