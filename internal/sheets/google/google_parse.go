package google

import (
	"fmt"
	"strconv"
	"strings"

	"salesboard/internal/core"
	"salesboard/internal/seed"
)

var requiredHeaders = []string{"id", "title", "price", "description", "category", "image"}

// parseRows converts a values matrix (as returned by the Sheets API) into
// transactions. The first row is the header; "sold" and "dateOfSale" columns
// are optional. Blank rows are skipped.
func parseRows(values [][]interface{}) ([]core.Transaction, error) {
	if len(values) == 0 {
		return nil, nil
	}

	headers := toStrings(values[0])
	cols := map[string]int{}
	for _, h := range append(requiredHeaders, "sold", "dateofsale") {
		cols[h] = indexOf(headers, h)
	}
	var missing []string
	for _, h := range requiredHeaders {
		if cols[h] == -1 {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unexpected sheet header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	out := make([]core.Transaction, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if blank(row) {
			continue
		}
		t, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, t)
	}
	return out, nil
}

func parseRow(row []string, cols map[string]int) (core.Transaction, error) {
	id, err := strconv.ParseInt(safeGet(row, cols["id"]), 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid id: %w", err)
	}
	price, err := strconv.ParseFloat(safeGet(row, cols["price"]), 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("invalid price: %w", err)
	}

	t := core.Transaction{
		ID:          id,
		Title:       safeGet(row, cols["title"]),
		Price:       price,
		Description: safeGet(row, cols["description"]),
		Category:    safeGet(row, cols["category"]),
		Image:       safeGet(row, cols["image"]),
	}

	if s := safeGet(row, cols["sold"]); s != "" {
		sold, err := strconv.ParseBool(strings.ToLower(s))
		if err != nil {
			return core.Transaction{}, fmt.Errorf("invalid sold flag %q", s)
		}
		t.Sold = sold
	}

	t.DateOfSale, err = seed.ParseSaleDate(safeGet(row, cols["dateofsale"]))
	if err != nil {
		return core.Transaction{}, err
	}

	if err := t.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, err)
	}
	return t, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// indexOf matches header names case-insensitively.
func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(v, target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
