package core

import "github.com/shopspring/decimal"

// PriceBucketCount is the fixed number of histogram buckets.
const PriceBucketCount = 10

// priceBucketLabels are ordered by upper bound. Bucket i covers
// (100*i, 100*(i+1)], except the first which also takes everything at or
// below zero, and the last which is open-ended above 900.
var priceBucketLabels = [PriceBucketCount]string{
	"0-100",
	"101-200",
	"201-300",
	"301-400",
	"401-500",
	"501-600",
	"601-700",
	"701-800",
	"801-900",
	"901-above",
}

type (
	// Totals summarizes sales for a selected record set.
	Totals struct {
		Count             int
		TotalSaleAmount   decimal.Decimal
		TotalSoldItems    int
		TotalNotSoldItems int
	}

	// PriceRanges holds bucket counts aligned with PriceBucketLabels.
	PriceRanges [PriceBucketCount]int

	// CategoryCounts maps a category to the number of records carrying it.
	CategoryCounts map[string]int

	// MonthReport combines every view over one selection.
	MonthReport struct {
		Records        []LabeledRecord
		Totals         Totals
		PriceRanges    PriceRanges
		CategoryCounts CategoryCounts
	}
)

// PriceBucketLabels returns the histogram labels in bucket order.
func PriceBucketLabels() []string {
	out := make([]string, PriceBucketCount)
	copy(out, priceBucketLabels[:])
	return out
}

// PriceBucket returns the index of the bucket price falls into.
func PriceBucket(price float64) int {
	for i := 0; i < PriceBucketCount-1; i++ {
		if price <= float64((i+1)*100) {
			return i
		}
	}
	return PriceBucketCount - 1
}

// Map returns the histogram keyed by bucket label, all ten keys present.
func (p PriceRanges) Map() map[string]int {
	out := make(map[string]int, PriceBucketCount)
	for i, label := range priceBucketLabels {
		out[label] = p[i]
	}
	return out
}

// Sum returns the total number of records counted in the histogram.
func (p PriceRanges) Sum() int {
	n := 0
	for _, c := range p {
		n += c
	}
	return n
}

// Sum returns the total number of records counted in the distribution.
func (c CategoryCounts) Sum() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// ComputeTotals sums the price of sold records and counts sold and unsold ones.
func ComputeTotals(records []LabeledRecord) Totals {
	t := Totals{Count: len(records), TotalSaleAmount: decimal.Zero}
	for _, r := range records {
		if r.Sold {
			t.TotalSoldItems++
			t.TotalSaleAmount = t.TotalSaleAmount.Add(decimal.NewFromFloat(r.Price))
		} else {
			t.TotalNotSoldItems++
		}
	}
	return t
}

// ComputePriceRanges buckets every record by price.
func ComputePriceRanges(records []LabeledRecord) PriceRanges {
	var p PriceRanges
	for _, r := range records {
		p[PriceBucket(r.Price)]++
	}
	return p
}

// ComputeCategoryCounts groups records by category.
func ComputeCategoryCounts(records []LabeledRecord) CategoryCounts {
	out := make(CategoryCounts)
	for _, r := range records {
		out[r.Category]++
	}
	return out
}

// Compose derives every view from the same record set.
func Compose(records []LabeledRecord) MonthReport {
	return MonthReport{
		Records:        records,
		Totals:         ComputeTotals(records),
		PriceRanges:    ComputePriceRanges(records),
		CategoryCounts: ComputeCategoryCounts(records),
	}
}
