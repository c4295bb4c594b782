// Package seed loads the initial transaction catalog from a remote source.
package seed

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"salesboard/internal/core"
)

// Record is the wire shape of one transaction in the seed feed.
type Record struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Sold        bool    `json:"sold"`
	DateOfSale  *string `json:"dateOfSale"`
}

// ParseSaleDate accepts RFC 3339 timestamps (any offset) and plain
// YYYY-MM-DD dates. Empty input means the record has no sale date.
func ParseSaleDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}

// Transaction converts the wire record into a validated domain transaction.
func (r Record) Transaction() (core.Transaction, error) {
	t := core.Transaction{
		ID:          r.ID,
		Title:       r.Title,
		Price:       r.Price,
		Description: r.Description,
		Category:    r.Category,
		Image:       r.Image,
		Sold:        r.Sold,
	}
	if r.DateOfSale != nil {
		d, err := ParseSaleDate(*r.DateOfSale)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("record %d: %w", r.ID, err)
		}
		t.DateOfSale = d
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("record %d: %w", r.ID, err)
	}
	return t, nil
}

// Decode reads a JSON array of seed records. Any invalid record fails the
// whole batch.
func Decode(r io.Reader) ([]core.Transaction, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode seed feed: %w", err)
	}
	out := make([]core.Transaction, 0, len(records))
	for _, rec := range records {
		t, err := rec.Transaction()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
