package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Transaction is a sale record as ingested from the seed source.
	Transaction struct {
		ID          int64
		Title       string
		Price       float64
		Description string
		Category    string
		Image       string
		Sold        bool
		DateOfSale  *time.Time // nil when the source has no sale date
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// LabeledRecord is a transaction decorated with the name of its sale month.
	LabeledRecord struct {
		Transaction
		MonthName string
	}
)

var (
	ErrInvalidMonth     = errors.New("invalid month name")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrUpstreamSeed     = errors.New("upstream seed failure")

	ErrEmptyTitle       = errors.New("empty title")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyImage       = errors.New("empty image")
	ErrNegativePrice    = errors.New("negative price")
)

// Validate checks the fields the store requires before a transaction is persisted.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Image) == "" {
		return ErrEmptyImage
	}
	if t.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}

// SaleMonth returns the calendar month of the sale date in UTC, and false
// when the transaction has no sale date.
func (t Transaction) SaleMonth() (time.Month, bool) {
	if t.DateOfSale == nil || t.DateOfSale.IsZero() {
		return 0, false
	}
	return t.DateOfSale.UTC().Month(), true
}

// Label derives the month name from the record's own sale date.
func Label(t Transaction) LabeledRecord {
	rec := LabeledRecord{Transaction: t}
	if m, ok := t.SaleMonth(); ok {
		rec.MonthName = MonthName(m)
	}
	return rec
}

// LabelAll labels every transaction, preserving order.
func LabelAll(txs []Transaction) []LabeledRecord {
	out := make([]LabeledRecord, len(txs))
	for i, t := range txs {
		out[i] = Label(t)
	}
	return out
}
