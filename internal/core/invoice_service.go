package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ListInvoicesParams are the client-supplied listing controls. Zero values
// are replaced with defaults by Normalize.
type ListInvoicesParams struct {
	Search    string `schema:"search"`
	Page      int    `schema:"page"`
	Limit     int    `schema:"limit"`
	SortBy    string `schema:"sortBy"`
	SortOrder string `schema:"sortOrder"`
}

// Normalize applies defaults: page 1, limit 50, sort by invoice date
// descending.
func (p *ListInvoicesParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 50
	}
	if p.SortBy == "" {
		p.SortBy = "invoiceDate"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
}

// InvoiceListRow is the flat view model for one listed invoice.
type InvoiceListRow struct {
	ID           int        `json:"id"`
	InvoiceID    *string    `json:"invoiceId"`
	InvoiceDate  *time.Time `json:"invoiceDate"`
	DeliveryDate *time.Time `json:"deliveryDate"`
	Vendor       string     `json:"vendor"`
	Amount       float64    `json:"amount"`
	Status       string     `json:"status"`
	DueDate      *time.Time `json:"dueDate"`
	DocumentID   string     `json:"documentId"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type InvoicePage struct {
	Invoices   []InvoiceListRow `json:"invoices"`
	Pagination Pagination       `json:"pagination"`
}

// InvoiceService provides the paginated, searchable invoice listing.
type InvoiceService interface {
	// ListInvoices returns one page of invoices matching params. Search is a
	// case-insensitive substring match against invoice id OR vendor name.
	// The count and the page fetch run against the same predicate so the
	// pagination metadata stays consistent with the filter; they are two
	// separate reads, which is acceptable for this reporting use case.
	ListInvoices(ctx context.Context, params ListInvoicesParams) (*InvoicePage, error)
}

type invoiceService struct {
	pool *pgxpool.Pool
}

// NewInvoiceService constructs an InvoiceService backed by the given pool.
func NewInvoiceService(pool *pgxpool.Pool) InvoiceService {
	return &invoiceService{pool: pool}
}

// sortColumns is the fixed set of sortable fields. "vendor" and "amount" are
// virtual fields sorted through the joined relation. Unknown sortBy values
// fall back to the invoice date instead of being passed through to SQL.
var sortColumns = map[string]string{
	"id":           "i.id",
	"invoiceId":    "i.invoice_id",
	"invoiceDate":  "i.invoice_date",
	"deliveryDate": "i.delivery_date",
	"vendor":       "v.vendor_name",
	"amount":       "sm.invoice_total",
	"status":       "d.status",
	"dueDate":      "p.due_date",
}

// orderClause resolves params into a safe ORDER BY fragment.
func orderClause(params ListInvoicesParams) string {
	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = sortColumns["invoiceDate"]
	}
	direction := "DESC"
	if params.SortOrder == "asc" {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s", column, direction)
}

func (s *invoiceService) ListInvoices(ctx context.Context, params ListInvoicesParams) (*InvoicePage, error) {
	params.Normalize()

	where := ""
	var args []any
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = "WHERE (i.invoice_id ILIKE $1 OR v.vendor_name ILIKE $1)"
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM invoices i
		JOIN documents d ON d.id = i.document_id
		LEFT JOIN vendors v ON v.document_id = d.id
		%s`, where)

	var total int
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	pageArgs := append(args, params.Limit, (params.Page-1)*params.Limit)
	pageQuery := fmt.Sprintf(`
		SELECT i.id, i.invoice_id, i.invoice_date, i.delivery_date,
		       v.vendor_name, sm.invoice_total, d.status, p.due_date, d.file_id
		FROM invoices i
		JOIN documents d ON d.id = i.document_id
		LEFT JOIN vendors v ON v.document_id = d.id
		LEFT JOIN summaries sm ON sm.document_id = d.id
		LEFT JOIN payments p ON p.document_id = d.id
		%s
		%s
		LIMIT $%d OFFSET $%d`, where, orderClause(params), len(pageArgs)-1, len(pageArgs))

	rows, err := s.pool.Query(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]InvoiceListRow, 0, params.Limit)
	for rows.Next() {
		var row InvoiceListRow
		var vendorName *string
		var invoiceTotal decimal.NullDecimal
		if err := rows.Scan(
			&row.ID, &row.InvoiceID, &row.InvoiceDate, &row.DeliveryDate,
			&vendorName, &invoiceTotal, &row.Status, &row.DueDate, &row.DocumentID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		row.Vendor = "Unknown"
		if vendorName != nil && *vendorName != "" {
			row.Vendor = *vendorName
		}
		row.Amount = absOrZero(nullableDecimal(invoiceTotal)).InexactFloat64()
		invoices = append(invoices, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("invoice listing iteration error: %w", err)
	}

	return &InvoicePage{
		Invoices: invoices,
		Pagination: Pagination{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: (total + params.Limit - 1) / params.Limit,
		},
	}, nil
}
