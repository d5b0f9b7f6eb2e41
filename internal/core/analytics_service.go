package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// AnalyticsService provides the read-only aggregation views consumed by the
// dashboard's charting front end. Every method is a bounded fetch followed by
// an in-memory reduction; the store is never written to here.
type AnalyticsService interface {
	// GetStats returns the headline figures: year-to-date spend, invoice and
	// document counts, average invoice value, and their month-over-month
	// deltas. Spend deltas follow the zero-baseline rule: when last month's
	// figure is not positive the reported change is exactly 0.
	GetStats(ctx context.Context) (*StatsResult, error)

	// GetInvoiceTrends returns exactly 12 monthly points ending at the
	// current month, oldest first. Months without invoices still appear
	// with zero values.
	GetInvoiceTrends(ctx context.Context) ([]TrendPoint, error)

	// GetTopVendors returns up to 10 vendors by absolute spend, each with
	// its share of the top-10 subtotal and a running cumulative share.
	GetTopVendors(ctx context.Context) ([]VendorSpend, error)

	// GetCategorySpend groups line items by account code (Sachkonto). When
	// the store holds no line items at all it falls back to a positional
	// 40/40/20 split of summary totals, a demo-data placeholder rather than a
	// categorization algorithm.
	GetCategorySpend(ctx context.Context) ([]CategorySpend, error)

	// GetCashOutflow buckets payments due after now into four aging ranges.
	GetCashOutflow(ctx context.Context) ([]OutflowBucket, error)
}

type analyticsService struct {
	pool *pgxpool.Pool
}

// NewAnalyticsService constructs an AnalyticsService backed by the given pool.
func NewAnalyticsService(pool *pgxpool.Pool) AnalyticsService {
	return &analyticsService{pool: pool}
}

// ── Stats ─────────────────────────────────────────────────────────────────────

func (s *analyticsService) GetStats(ctx context.Context) (*StatsResult, error) {
	now := time.Now()
	startOfYear := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	startOfMonth := monthStart(now, 0)
	startOfLastMonth := monthStart(now, -1)
	endOfLastMonth := startOfMonth.AddDate(0, 0, -1)

	ytdSpend, err := s.sumInvoiceTotals(ctx, startOfYear, nil)
	if err != nil {
		return nil, err
	}
	lastMonthSpend, err := s.sumInvoiceTotals(ctx, startOfLastMonth, &endOfLastMonth)
	if err != nil {
		return nil, err
	}
	currentMonthSpend, err := s.sumInvoiceTotals(ctx, startOfMonth, nil)
	if err != nil {
		return nil, err
	}

	totalInvoices, err := s.countInvoices(ctx, startOfYear, nil)
	if err != nil {
		return nil, err
	}
	lastMonthInvoices, err := s.countInvoices(ctx, startOfLastMonth, &endOfLastMonth)
	if err != nil {
		return nil, err
	}
	currentMonthInvoices, err := s.countInvoices(ctx, startOfMonth, nil)
	if err != nil {
		return nil, err
	}

	documentsThisMonth, err := s.countDocuments(ctx, startOfMonth, nil)
	if err != nil {
		return nil, err
	}
	documentsLastMonth, err := s.countDocuments(ctx, startOfLastMonth, &endOfLastMonth)
	if err != nil {
		return nil, err
	}

	avgValue, err := s.avgInvoiceTotal(ctx, startOfYear, nil)
	if err != nil {
		return nil, err
	}
	avgValueLastMonth, err := s.avgInvoiceTotal(ctx, startOfLastMonth, &endOfLastMonth)
	if err != nil {
		return nil, err
	}

	return &StatsResult{
		TotalSpendYTD:    ytdSpend.Abs().InexactFloat64(),
		TotalSpendChange: percentChange(currentMonthSpend, lastMonthSpend),
		TotalInvoices:    totalInvoices,
		InvoiceChange: percentChange(
			decimal.NewFromInt(int64(currentMonthInvoices)),
			decimal.NewFromInt(int64(lastMonthInvoices)),
		),
		DocumentsThisMonth: documentsThisMonth,
		// Absolute count difference, not a percentage. The asymmetry with the
		// other three deltas comes from the source system and is kept as-is.
		DocumentsChange:           documentsLastMonth - documentsThisMonth,
		AverageInvoiceValue:       avgValue.Abs().InexactFloat64(),
		AverageInvoiceValueChange: percentChange(avgValue, avgValueLastMonth),
	}, nil
}

// sumInvoiceTotals sums signed summary totals for invoices dated in
// [from, to]. A nil `to` leaves the range open-ended.
func (s *analyticsService) sumInvoiceTotals(ctx context.Context, from time.Time, to *time.Time) (decimal.Decimal, error) {
	q := `
		SELECT COALESCE(SUM(s.invoice_total), 0)
		FROM summaries s
		JOIN invoices i ON i.document_id = s.document_id
		WHERE s.invoice_total IS NOT NULL
		  AND i.invoice_date >= $1`
	args := []any{from}
	if to != nil {
		args = append(args, *to)
		q += " AND i.invoice_date <= $2"
	}

	var total decimal.Decimal
	if err := s.pool.QueryRow(ctx, q, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum invoice totals: %w", err)
	}
	return total, nil
}

// avgInvoiceTotal averages signed summary totals for invoices dated in
// [from, to]. The mean is taken over non-null totals only.
func (s *analyticsService) avgInvoiceTotal(ctx context.Context, from time.Time, to *time.Time) (decimal.Decimal, error) {
	q := `
		SELECT COALESCE(AVG(s.invoice_total), 0)
		FROM summaries s
		JOIN invoices i ON i.document_id = s.document_id
		WHERE s.invoice_total IS NOT NULL
		  AND i.invoice_date >= $1`
	args := []any{from}
	if to != nil {
		args = append(args, *to)
		q += " AND i.invoice_date <= $2"
	}

	var avg decimal.Decimal
	if err := s.pool.QueryRow(ctx, q, args...).Scan(&avg); err != nil {
		return decimal.Zero, fmt.Errorf("failed to average invoice totals: %w", err)
	}
	return avg, nil
}

func (s *analyticsService) countInvoices(ctx context.Context, from time.Time, to *time.Time) (int, error) {
	q := "SELECT COUNT(*) FROM invoices WHERE invoice_date >= $1"
	args := []any{from}
	if to != nil {
		args = append(args, *to)
		q += " AND invoice_date <= $2"
	}

	var count int
	if err := s.pool.QueryRow(ctx, q, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return count, nil
}

func (s *analyticsService) countDocuments(ctx context.Context, from time.Time, to *time.Time) (int, error) {
	q := "SELECT COUNT(*) FROM documents WHERE created_at >= $1"
	args := []any{from}
	if to != nil {
		args = append(args, *to)
		q += " AND created_at <= $2"
	}

	var count int
	if err := s.pool.QueryRow(ctx, q, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// ── Invoice trends ────────────────────────────────────────────────────────────

// GetInvoiceTrends fans the 12 per-month queries out concurrently; reads
// share the pool without coordination since every query is independent.
func (s *analyticsService) GetInvoiceTrends(ctx context.Context) ([]TrendPoint, error) {
	now := time.Now()
	points := make([]TrendPoint, 12)

	g, ctx := errgroup.WithContext(ctx)
	for i := 11; i >= 0; i-- {
		idx := 11 - i
		start := monthStart(now, -i)
		end := monthEnd(start)
		g.Go(func() error {
			totals, err := s.invoiceTotalsBetween(ctx, start, end)
			if err != nil {
				return err
			}
			points[idx] = reduceTrendMonth(start, totals)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}

// invoiceTotalsBetween returns one entry per invoice dated in [from, to]:
// the document's summary total, or nil when no summary exists.
func (s *analyticsService) invoiceTotalsBetween(ctx context.Context, from, to time.Time) ([]*decimal.Decimal, error) {
	const q = `
		SELECT sm.invoice_total
		FROM invoices i
		LEFT JOIN summaries sm ON sm.document_id = i.document_id
		WHERE i.invoice_date >= $1
		  AND i.invoice_date <= $2`

	rows, err := s.pool.Query(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice totals: %w", err)
	}
	defer rows.Close()

	var totals []*decimal.Decimal
	for rows.Next() {
		var total decimal.NullDecimal
		if err := rows.Scan(&total); err != nil {
			return nil, fmt.Errorf("failed to scan invoice total: %w", err)
		}
		totals = append(totals, nullableDecimal(total))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("invoice totals iteration error: %w", err)
	}
	return totals, nil
}

// ── Vendor concentration ──────────────────────────────────────────────────────

func (s *analyticsService) GetTopVendors(ctx context.Context) ([]VendorSpend, error) {
	// Records without a vendor name are excluded here, unlike the invoice
	// listing which maps them to "Unknown".
	const q = `
		SELECT v.vendor_name, sm.invoice_total
		FROM vendors v
		LEFT JOIN summaries sm ON sm.document_id = v.document_id
		WHERE v.vendor_name IS NOT NULL
		  AND v.vendor_name <> ''`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendor spend: %w", err)
	}
	defer rows.Close()

	var vendorRows []VendorTotalRow
	for rows.Next() {
		var name string
		var total decimal.NullDecimal
		if err := rows.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("failed to scan vendor spend row: %w", err)
		}
		vendorRows = append(vendorRows, VendorTotalRow{Name: name, Total: nullableDecimal(total)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vendor spend iteration error: %w", err)
	}

	return reduceTopVendors(vendorRows), nil
}

// ── Category spend ────────────────────────────────────────────────────────────

func (s *analyticsService) GetCategorySpend(ctx context.Context) ([]CategorySpend, error) {
	const q = "SELECT sachkonto, total_price FROM line_items"

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	var items []LineItemRow
	for rows.Next() {
		var sachkonto *string
		var totalPrice decimal.NullDecimal
		if err := rows.Scan(&sachkonto, &totalPrice); err != nil {
			return nil, fmt.Errorf("failed to scan line item row: %w", err)
		}
		items = append(items, LineItemRow{Sachkonto: sachkonto, TotalPrice: nullableDecimal(totalPrice)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("line items iteration error: %w", err)
	}

	if len(items) > 0 {
		return reduceCategorySpend(items), nil
	}

	// No line items anywhere: fall back to the positional split over
	// summary totals, in insertion order.
	totals, err := s.summaryTotals(ctx)
	if err != nil {
		return nil, err
	}
	return fallbackCategorySpend(totals), nil
}

func (s *analyticsService) summaryTotals(ctx context.Context) ([]decimal.Decimal, error) {
	const q = `
		SELECT invoice_total
		FROM summaries
		WHERE invoice_total IS NOT NULL
		ORDER BY id`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary totals: %w", err)
	}
	defer rows.Close()

	var totals []decimal.Decimal
	for rows.Next() {
		var total decimal.Decimal
		if err := rows.Scan(&total); err != nil {
			return nil, fmt.Errorf("failed to scan summary total: %w", err)
		}
		totals = append(totals, total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summary totals iteration error: %w", err)
	}
	return totals, nil
}

// ── Cash outflow ──────────────────────────────────────────────────────────────

func (s *analyticsService) GetCashOutflow(ctx context.Context) ([]OutflowBucket, error) {
	const q = `
		SELECT p.due_date, sm.invoice_total
		FROM payments p
		LEFT JOIN summaries sm ON sm.document_id = p.document_id
		WHERE p.due_date IS NOT NULL`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var dueRows []DueTotalRow
	for rows.Next() {
		var due time.Time
		var total decimal.NullDecimal
		if err := rows.Scan(&due, &total); err != nil {
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		dueRows = append(dueRows, DueTotalRow{DueDate: due, Total: nullableDecimal(total)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("payments iteration error: %w", err)
	}

	return reduceCashOutflow(time.Now(), dueRows), nil
}

func nullableDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return &d.Decimal
}
