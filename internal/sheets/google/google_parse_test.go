package google

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"salesboard/internal/core"
)

func TestParseRows(t *testing.T) {
	values := [][]interface{}{
		{"id", "title", "price", "description", "category", "image", "sold", "dateOfSale"},
		{"1", "Fjallraven Backpack", "109.95", "Fits 15 inch laptops", "men's clothing", "https://example.com/1.jpg", "FALSE", "2021-11-27T20:29:54+05:30"},
		{"2", "Mens Casual Tee", 22.3, "Slim-fitting style", "men's clothing", "https://example.com/2.jpg", "TRUE", "2022-03-05"},
		{},
		{"", "", "", "", "", "", "", ""},
		{"3", "Jacket", "55.99", "Great outerwear", "men's clothing", "https://example.com/3.jpg"},
	}

	txs, err := parseRows(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txs))
	}

	first := txs[0]
	if first.ID != 1 || first.Price != 109.95 || first.Sold {
		t.Errorf("unexpected first row: %+v", first)
	}
	want := time.Date(2021, time.November, 27, 14, 59, 54, 0, time.UTC)
	if first.DateOfSale == nil || !first.DateOfSale.Equal(want) {
		t.Errorf("dateOfSale = %v, want %v", first.DateOfSale, want)
	}

	if !txs[1].Sold || txs[1].Price != 22.3 {
		t.Errorf("unexpected second row: %+v", txs[1])
	}
	if m, ok := txs[1].SaleMonth(); !ok || m != time.March {
		t.Errorf("second row month = %v, %v", m, ok)
	}

	if txs[2].Sold || txs[2].DateOfSale != nil {
		t.Errorf("optional columns should default: %+v", txs[2])
	}
}

func TestParseRowsHeaderCaseInsensitive(t *testing.T) {
	values := [][]interface{}{
		{"ID", "Title", "Price", "Description", "Category", "Image"},
		{"7", "Ring", "250", "Silver", "jewelery", "img.jpg"},
	}
	txs, err := parseRows(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(txs) != 1 || txs[0].Title != "Ring" {
		t.Fatalf("unexpected result: %+v", txs)
	}
}

func TestParseRowsErrors(t *testing.T) {
	tests := []struct {
		name   string
		values [][]interface{}
		want   string
	}{
		{
			name:   "missing columns",
			values: [][]interface{}{{"id", "title"}},
			want:   "missing price,description,category,image",
		},
		{
			name: "bad price",
			values: [][]interface{}{
				{"id", "title", "price", "description", "category", "image"},
				{"1", "t", "cheap", "d", "c", "i"},
			},
			want: "row 2: invalid price",
		},
		{
			name: "bad sold flag",
			values: [][]interface{}{
				{"id", "title", "price", "description", "category", "image", "sold"},
				{"1", "t", "1", "d", "c", "i", "maybe"},
			},
			want: "invalid sold flag",
		},
		{
			name: "empty image",
			values: [][]interface{}{
				{"id", "title", "price", "description", "category", "image"},
				{"1", "t", "1", "d", "c", ""},
			},
			want: core.ErrEmptyImage.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRows(tt.values)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestParseRowsEmpty(t *testing.T) {
	txs, err := parseRows(nil)
	if err != nil || txs != nil {
		t.Fatalf("got %v, %v", txs, err)
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Error("expected error for missing spreadsheet id")
	}
	if _, err := New(context.Background(), Config{SpreadsheetID: "abc"}); err == nil {
		t.Error("expected error for missing credentials")
	}
}

func TestUninitializedClientFetch(t *testing.T) {
	c := &Client{spreadsheetID: "abc", sheetName: "Transactions"}
	if c.Name() != "sheets:abc/Transactions" {
		t.Errorf("Name() = %q", c.Name())
	}
	_, err := c.Fetch(context.Background())
	if !errors.Is(err, core.ErrUpstreamSeed) {
		t.Errorf("Fetch() error = %v, want ErrUpstreamSeed", err)
	}
}
