package core

import (
	"math"
	"strconv"
	"strings"
)

// SearchQuery is a parsed free-text search. Price is set only when the text
// is a finite number, in which case exact price equality is an extra match
// condition next to the title and description substring checks.
type SearchQuery struct {
	Text  string
	Price *float64
}

// ParseSearchQuery keeps raw as the substring to match and parses its
// numeric form, if any. Surrounding spaces are ignored only for the number.
func ParseSearchQuery(raw string) SearchQuery {
	q := SearchQuery{Text: raw}
	num := strings.TrimSpace(raw)
	if num == "" {
		return q
	}
	if v, err := strconv.ParseFloat(num, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		q.Price = &v
	}
	return q
}

// IsEmpty reports whether the query selects the whole month. Only the
// empty string does; a query of spaces is matched literally.
func (q SearchQuery) IsEmpty() bool {
	return q.Text == ""
}

// Matches reports whether t satisfies any of the query conditions.
// An empty query matches everything.
func (q SearchQuery) Matches(t Transaction) bool {
	if q.IsEmpty() {
		return true
	}
	needle := strings.ToLower(q.Text)
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), needle) {
		return true
	}
	return q.Price != nil && t.Price == *q.Price
}
