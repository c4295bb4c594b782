package core

import (
	"testing"
	"time"
)

func date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	return &t
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:          1,
		Title:       "Backpack",
		Price:       109.95,
		Description: "Fits 15 inch laptops",
		Category:    "men's clothing",
		Image:       "https://example.com/1.jpg",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zeroPrice := good
	zeroPrice.Price = 0
	if err := zeroPrice.Validate(); err != nil {
		t.Fatalf("zero price should be valid, got %v", err)
	}

	bads := []struct {
		mutate func(*Transaction)
		want   error
	}{
		{func(tx *Transaction) { tx.Title = " " }, ErrEmptyTitle},
		{func(tx *Transaction) { tx.Description = "" }, ErrEmptyDescription},
		{func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{func(tx *Transaction) { tx.Image = "" }, ErrEmptyImage},
		{func(tx *Transaction) { tx.Price = -0.01 }, ErrNegativePrice},
	}
	for i, tc := range bads {
		tx := good
		tc.mutate(&tx)
		if err := tx.Validate(); err != tc.want {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestLabelUsesOwnSaleDate(t *testing.T) {
	rec := Label(Transaction{ID: 1, DateOfSale: date(2021, time.March, 3)})
	if rec.MonthName != "March" {
		t.Fatalf("expected March, got %q", rec.MonthName)
	}

	rec = Label(Transaction{ID: 2, DateOfSale: date(2023, time.December, 31)})
	if rec.MonthName != "December" {
		t.Fatalf("expected December, got %q", rec.MonthName)
	}

	rec = Label(Transaction{ID: 3})
	if rec.MonthName != "" {
		t.Fatalf("expected empty label without a sale date, got %q", rec.MonthName)
	}
}

func TestSaleMonthIsUTC(t *testing.T) {
	// 2021-11-01 02:00 in +05:30 is still October in UTC.
	ist := time.FixedZone("IST", 5*3600+1800)
	d := time.Date(2021, time.November, 1, 2, 0, 0, 0, ist)
	m, ok := Transaction{DateOfSale: &d}.SaleMonth()
	if !ok || m != time.October {
		t.Fatalf("expected October, got %v (ok=%v)", m, ok)
	}
}

func TestLabelAllPreservesOrder(t *testing.T) {
	in := []Transaction{
		{ID: 3, DateOfSale: date(2022, time.May, 1)},
		{ID: 1, DateOfSale: date(2021, time.May, 9)},
	}
	out := LabelAll(in)
	if len(out) != 2 || out[0].ID != 3 || out[1].ID != 1 {
		t.Fatalf("unexpected order: %+v", out)
	}
}
