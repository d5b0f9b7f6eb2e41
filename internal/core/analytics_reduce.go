package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ── Result types (JSON contract for the charting front end) ───────────────────

type StatsResult struct {
	TotalSpendYTD             float64 `json:"totalSpendYTD"`
	TotalSpendChange          float64 `json:"totalSpendChange"`
	TotalInvoices             int     `json:"totalInvoices"`
	InvoiceChange             float64 `json:"invoiceChange"`
	DocumentsThisMonth        int     `json:"documentsThisMonth"`
	DocumentsChange           int     `json:"documentsChange"`
	AverageInvoiceValue       float64 `json:"averageInvoiceValue"`
	AverageInvoiceValueChange float64 `json:"averageInvoiceValueChange"`
}

type TrendPoint struct {
	Month        string  `json:"month"`
	Year         int     `json:"year"`
	InvoiceCount int     `json:"invoiceCount"`
	TotalSpend   float64 `json:"totalSpend"`
}

type VendorSpend struct {
	VendorName           string  `json:"vendorName"`
	Spend                float64 `json:"spend"`
	Percentage           float64 `json:"percentage"`
	CumulativePercentage float64 `json:"cumulativePercentage"`
}

type CategorySpend struct {
	Category   string  `json:"category"`
	Spend      float64 `json:"spend"`
	Percentage float64 `json:"percentage"`
}

type OutflowBucket struct {
	Range  string  `json:"range"`
	Amount float64 `json:"amount"`
}

// ── Row types fed into the reducers ───────────────────────────────────────────

// VendorTotalRow is one vendor record joined with its document's summary
// total (nil when the document has no summary).
type VendorTotalRow struct {
	Name  string
	Total *decimal.Decimal
}

// LineItemRow is one line item's grouping key and total price.
type LineItemRow struct {
	Sachkonto  *string
	TotalPrice *decimal.Decimal
}

// DueTotalRow is one payment due date joined with its document's summary
// total (nil when the document has no summary).
type DueTotalRow struct {
	DueDate time.Time
	Total   *decimal.Decimal
}

// ── Shared helpers ────────────────────────────────────────────────────────────

// absOrZero returns |d|, treating a missing value as zero. The zero fallback
// belongs here, at aggregation time; storage keeps absence as NULL.
func absOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return d.Abs()
}

// percentChange returns the month-over-month delta in percent. A zero (or
// negative) baseline reports exactly 0 rather than a division blow-up.
func percentChange(current, last decimal.Decimal) float64 {
	if !last.IsPositive() {
		return 0
	}
	return current.Sub(last).Div(last).InexactFloat64() * 100
}

// percentOf returns part/total in percent, or 0 when total is zero.
func percentOf(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.Div(total).InexactFloat64() * 100
}

// monthStart returns the first instant of the month `offset` months away
// from now (negative offsets go back in time).
func monthStart(now time.Time, offset int) time.Time {
	return time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, now.Location())
}

// monthEnd returns the last covered instant of the month containing start:
// the final day at 23:59:59.
func monthEnd(start time.Time) time.Time {
	return start.AddDate(0, 1, 0).Add(-time.Second)
}

// ── Vendor concentration ──────────────────────────────────────────────────────

// reduceTopVendors groups rows by vendor name, sums absolute totals, and
// returns the top 10 by spend. Percentages are relative to the top-10
// subtotal, not the grand total, so the last cumulative value is 100 by
// construction. Rows with an empty name have already been filtered out by
// the caller's query.
func reduceTopVendors(rows []VendorTotalRow) []VendorSpend {
	type vendorSum struct {
		name  string
		spend decimal.Decimal
	}

	sums := make(map[string]decimal.Decimal)
	order := make([]string, 0)
	for _, r := range rows {
		if _, seen := sums[r.Name]; !seen {
			order = append(order, r.Name)
		}
		sums[r.Name] = sums[r.Name].Add(absOrZero(r.Total))
	}

	grouped := make([]vendorSum, 0, len(order))
	for _, name := range order {
		grouped = append(grouped, vendorSum{name: name, spend: sums[name]})
	}
	sort.SliceStable(grouped, func(i, j int) bool {
		return grouped[i].spend.GreaterThan(grouped[j].spend)
	})
	if len(grouped) > 10 {
		grouped = grouped[:10]
	}

	subtotal := decimal.Zero
	for _, v := range grouped {
		subtotal = subtotal.Add(v.spend)
	}

	result := make([]VendorSpend, 0, len(grouped))
	cumulative := decimal.Zero
	for _, v := range grouped {
		cumulative = cumulative.Add(v.spend)
		result = append(result, VendorSpend{
			VendorName:           v.name,
			Spend:                v.spend.InexactFloat64(),
			Percentage:           percentOf(v.spend, subtotal),
			CumulativePercentage: percentOf(cumulative, subtotal),
		})
	}
	return result
}

// ── Category spend ────────────────────────────────────────────────────────────

// reduceCategorySpend groups line items by Sachkonto (account code),
// defaulting to "Other" when the code is absent, and sums absolute total
// prices per group.
func reduceCategorySpend(items []LineItemRow) []CategorySpend {
	sums := make(map[string]decimal.Decimal)
	order := make([]string, 0)
	for _, it := range items {
		category := "Other"
		if it.Sachkonto != nil && *it.Sachkonto != "" {
			category = *it.Sachkonto
		}
		if _, seen := sums[category]; !seen {
			order = append(order, category)
		}
		sums[category] = sums[category].Add(absOrZero(it.TotalPrice))
	}
	return finalizeCategories(order, sums)
}

// fallbackCategorySpend partitions summary totals by array position into
// three fixed-ratio buckets: first 40% "Operations", next 40% "Marketing",
// remaining 20% "Facilities". The split is an arbitrary placeholder for demo
// data that lacks real account codes; the ratios carry no business meaning.
// It runs only when no line items exist anywhere in the store.
func fallbackCategorySpend(totals []decimal.Decimal) []CategorySpend {
	opsEnd := int(float64(len(totals)) * 0.4)
	mktEnd := int(float64(len(totals)) * 0.8)

	sumRange := func(part []decimal.Decimal) decimal.Decimal {
		total := decimal.Zero
		for _, t := range part {
			total = total.Add(t.Abs())
		}
		return total
	}

	order := []string{"Operations", "Marketing", "Facilities"}
	sums := map[string]decimal.Decimal{
		"Operations": sumRange(totals[:opsEnd]),
		"Marketing":  sumRange(totals[opsEnd:mktEnd]),
		"Facilities": sumRange(totals[mktEnd:]),
	}
	return finalizeCategories(order, sums)
}

// finalizeCategories sorts groups descending by spend and annotates each
// with its percentage of the grand total across all returned categories.
func finalizeCategories(order []string, sums map[string]decimal.Decimal) []CategorySpend {
	type catSum struct {
		category string
		spend    decimal.Decimal
	}
	grouped := make([]catSum, 0, len(order))
	for _, category := range order {
		grouped = append(grouped, catSum{category: category, spend: sums[category]})
	}
	sort.SliceStable(grouped, func(i, j int) bool {
		return grouped[i].spend.GreaterThan(grouped[j].spend)
	})

	total := decimal.Zero
	for _, c := range grouped {
		total = total.Add(c.spend)
	}

	result := make([]CategorySpend, 0, len(grouped))
	for _, c := range grouped {
		result = append(result, CategorySpend{
			Category:   c.category,
			Spend:      c.spend.InexactFloat64(),
			Percentage: percentOf(c.spend, total),
		})
	}
	return result
}

// ── Cash outflow aging ────────────────────────────────────────────────────────

// reduceCashOutflow buckets payments by due date into four aging ranges
// measured from now. Bounds are inclusive on the upper edge: a due date
// exactly 7 days out lands in the first bucket. The four buckets are always
// returned, zero or not.
func reduceCashOutflow(now time.Time, rows []DueTotalRow) []OutflowBucket {
	sevenDays := now.Add(7 * 24 * time.Hour)
	thirtyDays := now.Add(30 * 24 * time.Hour)
	sixtyDays := now.Add(60 * 24 * time.Hour)

	var range0to7, range8to30, range31to60, range60Plus decimal.Decimal
	for _, r := range rows {
		total := absOrZero(r.Total)
		switch {
		case !r.DueDate.After(sevenDays):
			range0to7 = range0to7.Add(total)
		case !r.DueDate.After(thirtyDays):
			range8to30 = range8to30.Add(total)
		case !r.DueDate.After(sixtyDays):
			range31to60 = range31to60.Add(total)
		default:
			range60Plus = range60Plus.Add(total)
		}
	}

	return []OutflowBucket{
		{Range: "0-7 days", Amount: range0to7.InexactFloat64()},
		{Range: "8-30 days", Amount: range8to30.InexactFloat64()},
		{Range: "31-60 days", Amount: range31to60.InexactFloat64()},
		{Range: "60+ days", Amount: range60Plus.InexactFloat64()},
	}
}

// ── Invoice trends ────────────────────────────────────────────────────────────

// reduceTrendMonth counts invoices and sums absolute summary totals for one
// month's rows (one entry per invoice, nil when the document has no summary).
func reduceTrendMonth(start time.Time, totals []*decimal.Decimal) TrendPoint {
	spend := decimal.Zero
	for _, t := range totals {
		spend = spend.Add(absOrZero(t))
	}
	return TrendPoint{
		Month:        start.Format("Jan"),
		Year:         start.Year(),
		InvoiceCount: len(totals),
		TotalSpend:   spend.InexactFloat64(),
	}
}
