package core

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var approxFloats = cmpopts.EquateApprox(0, 1e-9)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name    string
		current string
		last    string
		want    float64
	}{
		{"growth", "150", "100", 50},
		{"decline", "50", "100", -50},
		{"zero baseline reports zero", "500", "0", 0},
		{"negative baseline reports zero", "500", "-200", 0},
		{"flat", "100", "100", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := percentChange(decimal.RequireFromString(tt.current), decimal.RequireFromString(tt.last))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("percentChange(%s, %s) = %v, want %v", tt.current, tt.last, got, tt.want)
			}
		})
	}
}

func TestAbsOrZero(t *testing.T) {
	if got := absOrZero(nil); !got.IsZero() {
		t.Errorf("absOrZero(nil) = %s, want 0", got)
	}
	if got := absOrZero(dec("-1200")); !got.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("absOrZero(-1200) = %s, want 1200", got)
	}
}

func TestReduceTopVendors(t *testing.T) {
	t.Run("same vendor merges and owns the whole subtotal", func(t *testing.T) {
		got := reduceTopVendors([]VendorTotalRow{
			{Name: "Acme", Total: dec("-100")},
			{Name: "Acme", Total: dec("-50")},
		})
		want := []VendorSpend{
			{VendorName: "Acme", Spend: 150, Percentage: 100, CumulativePercentage: 100},
		}
		if diff := cmp.Diff(want, got, approxFloats); diff != "" {
			t.Errorf("reduceTopVendors mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("sorted descending with cumulative reaching 100", func(t *testing.T) {
		got := reduceTopVendors([]VendorTotalRow{
			{Name: "Beta", Total: dec("100")},
			{Name: "Alpha", Total: dec("-300")},
		})
		want := []VendorSpend{
			{VendorName: "Alpha", Spend: 300, Percentage: 75, CumulativePercentage: 75},
			{VendorName: "Beta", Spend: 100, Percentage: 25, CumulativePercentage: 100},
		}
		if diff := cmp.Diff(want, got, approxFloats); diff != "" {
			t.Errorf("reduceTopVendors mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("truncates to ten and percentages cover the subtotal only", func(t *testing.T) {
		var rows []VendorTotalRow
		for i := 0; i < 12; i++ {
			total := decimal.NewFromInt(int64(100 * (i + 1)))
			rows = append(rows, VendorTotalRow{Name: string(rune('A' + i)), Total: &total})
		}
		got := reduceTopVendors(rows)
		if len(got) != 10 {
			t.Fatalf("expected 10 entries, got %d", len(got))
		}
		if math.Abs(got[9].CumulativePercentage-100) > 1e-9 {
			t.Errorf("last cumulative percentage = %v, want 100", got[9].CumulativePercentage)
		}
		for i := 1; i < len(got); i++ {
			if got[i].Spend > got[i-1].Spend {
				t.Errorf("entries not sorted descending at index %d", i)
			}
		}
	})

	t.Run("missing summaries count as zero spend", func(t *testing.T) {
		got := reduceTopVendors([]VendorTotalRow{
			{Name: "Acme", Total: nil},
			{Name: "Other Co", Total: dec("40")},
		})
		if len(got) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(got))
		}
		if got[0].VendorName != "Other Co" || got[1].Spend != 0 {
			t.Errorf("unexpected grouping: %+v", got)
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		if got := reduceTopVendors(nil); len(got) != 0 {
			t.Errorf("expected empty result, got %+v", got)
		}
	})
}

func TestReduceCategorySpend(t *testing.T) {
	sachkonto := func(s string) *string { return &s }

	got := reduceCategorySpend([]LineItemRow{
		{Sachkonto: sachkonto("4400"), TotalPrice: dec("-60")},
		{Sachkonto: sachkonto("4400"), TotalPrice: dec("40")},
		{Sachkonto: nil, TotalPrice: dec("50")},
		{Sachkonto: sachkonto(""), TotalPrice: dec("50")},
	})
	want := []CategorySpend{
		{Category: "4400", Spend: 100, Percentage: 50},
		{Category: "Other", Spend: 100, Percentage: 50},
	}
	if diff := cmp.Diff(want, got, approxFloats); diff != "" {
		t.Errorf("reduceCategorySpend mismatch (-want +got):\n%s", diff)
	}

	sum := 0.0
	for _, c := range got {
		sum += c.Percentage
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("percentages sum to %v, want 100", sum)
	}
}

func TestFallbackCategorySpend(t *testing.T) {
	// Positional 40/40/20 placeholder split: with five totals the first two
	// are Operations, the next two Marketing, the last one Facilities.
	totals := []decimal.Decimal{
		decimal.NewFromInt(-100),
		decimal.NewFromInt(200),
		decimal.NewFromInt(300),
		decimal.NewFromInt(-400),
		decimal.NewFromInt(500),
	}
	got := fallbackCategorySpend(totals)
	want := []CategorySpend{
		{Category: "Marketing", Spend: 700, Percentage: 700.0 / 15},
		{Category: "Facilities", Spend: 500, Percentage: 500.0 / 15},
		{Category: "Operations", Spend: 300, Percentage: 300.0 / 15},
	}
	if diff := cmp.Diff(want, got, approxFloats); diff != "" {
		t.Errorf("fallbackCategorySpend mismatch (-want +got):\n%s", diff)
	}
}

func TestFallbackCategorySpendEmpty(t *testing.T) {
	got := fallbackCategorySpend(nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 buckets even with no summaries, got %d", len(got))
	}
	for _, c := range got {
		if c.Spend != 0 || c.Percentage != 0 {
			t.Errorf("expected zero bucket, got %+v", c)
		}
	}
}

func TestReduceCashOutflow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	rows := []DueTotalRow{
		{DueDate: now.Add(2 * day), Total: dec("-10")},
		{DueDate: now.Add(7 * day), Total: dec("20")},  // boundary: lower bucket
		{DueDate: now.Add(8 * day), Total: dec("30")},
		{DueDate: now.Add(30 * day), Total: dec("40")}, // boundary: lower bucket
		{DueDate: now.Add(45 * day), Total: dec("50")},
		{DueDate: now.Add(60 * day), Total: dec("60")}, // boundary: lower bucket
		{DueDate: now.Add(90 * day), Total: dec("-70")},
		{DueDate: now.Add(90 * day), Total: nil}, // no summary contributes zero
	}

	got := reduceCashOutflow(now, rows)
	want := []OutflowBucket{
		{Range: "0-7 days", Amount: 30},
		{Range: "8-30 days", Amount: 70},
		{Range: "31-60 days", Amount: 110},
		{Range: "60+ days", Amount: 70},
	}
	if diff := cmp.Diff(want, got, approxFloats); diff != "" {
		t.Errorf("reduceCashOutflow mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceCashOutflowEmpty(t *testing.T) {
	got := reduceCashOutflow(time.Now(), nil)
	if len(got) != 4 {
		t.Fatalf("expected exactly 4 buckets, got %d", len(got))
	}
	for _, b := range got {
		if b.Amount != 0 {
			t.Errorf("expected zero amount in %s, got %v", b.Range, b.Amount)
		}
	}
}

func TestReduceTrendMonth(t *testing.T) {
	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	got := reduceTrendMonth(start, []*decimal.Decimal{dec("-100"), nil, dec("250")})
	want := TrendPoint{Month: "Nov", Year: 2025, InvoiceCount: 3, TotalSpend: 350}
	if diff := cmp.Diff(want, got, approxFloats); diff != "" {
		t.Errorf("reduceTrendMonth mismatch (-want +got):\n%s", diff)
	}
}

func TestMonthWindows(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	start := monthStart(now, -1)
	if !start.Equal(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("monthStart(-1) = %s", start)
	}

	end := monthEnd(start)
	if !end.Equal(time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("monthEnd = %s", end)
	}

	// Year boundary.
	if got := monthStart(now, -11); !got.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("monthStart(-11) = %s", got)
	}
}
