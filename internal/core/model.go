package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type DocumentStatus string

const (
	DocumentStatusProcessed DocumentStatus = "processed"
)

// Document is one ingested file from the upstream extraction pipeline.
// All child records are optional: extraction may have produced any subset
// of them, and every aggregation degrades to zero/omitted when one is missing.
type Document struct {
	ID                 int            `json:"id"`
	FileID             string         `json:"file_id"`
	Name               string         `json:"name"`
	FilePath           *string        `json:"file_path,omitempty"`
	FileSize           *int64         `json:"file_size,omitempty"`
	FileType           *string        `json:"file_type,omitempty"`
	Status             DocumentStatus `json:"status"`
	OrganizationID     *string        `json:"organization_id,omitempty"`
	DepartmentID       *string        `json:"department_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	UploadedByID       *string        `json:"uploaded_by_id,omitempty"`
	IsValidatedByHuman bool           `json:"is_validated_by_human"`
	AnalyticsID        *string        `json:"analytics_id,omitempty"`
}

type Invoice struct {
	ID           int        `json:"id"`
	DocumentID   int        `json:"document_id"`
	InvoiceID    *string    `json:"invoice_id,omitempty"`
	InvoiceDate  *time.Time `json:"invoice_date,omitempty"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
}

type Vendor struct {
	ID                int     `json:"id"`
	DocumentID        int     `json:"document_id"`
	VendorName        *string `json:"vendor_name,omitempty"`
	VendorPartyNumber *string `json:"vendor_party_number,omitempty"`
	VendorAddress     *string `json:"vendor_address,omitempty"`
	VendorTaxID       *string `json:"vendor_tax_id,omitempty"`
}

type Customer struct {
	ID              int     `json:"id"`
	DocumentID      int     `json:"document_id"`
	CustomerName    *string `json:"customer_name,omitempty"`
	CustomerAddress *string `json:"customer_address,omitempty"`
}

type Payment struct {
	ID                 int              `json:"id"`
	DocumentID         int              `json:"document_id"`
	DueDate            *time.Time       `json:"due_date,omitempty"`
	PaymentTerms       *string          `json:"payment_terms,omitempty"`
	BankAccountNumber  *string          `json:"bank_account_number,omitempty"`
	BIC                *string          `json:"bic,omitempty"`
	AccountName        *string          `json:"account_name,omitempty"`
	NetDays            int              `json:"net_days"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	DiscountDays       int              `json:"discount_days"`
	DiscountDueDate    *time.Time       `json:"discount_due_date,omitempty"`
	DiscountedTotal    *decimal.Decimal `json:"discounted_total,omitempty"`
}

// Summary carries the extracted financial totals for one document.
// InvoiceTotal is stored signed (the source system's debit/credit
// convention); consumers take the absolute value before display.
type Summary struct {
	ID             int              `json:"id"`
	DocumentID     int              `json:"document_id"`
	DocumentType   *string          `json:"document_type,omitempty"`
	SubTotal       *decimal.Decimal `json:"sub_total,omitempty"`
	TotalTax       *decimal.Decimal `json:"total_tax,omitempty"`
	InvoiceTotal   *decimal.Decimal `json:"invoice_total,omitempty"`
	CurrencySymbol *string          `json:"currency_symbol,omitempty"`
}

// LineItem is one extracted invoice line. Sachkonto is the general-ledger
// account code used as the category-spend grouping key; BUSchluessel is the
// source system's tax key.
type LineItem struct {
	ID           int              `json:"id"`
	DocumentID   int              `json:"document_id"`
	SrNo         int              `json:"sr_no"`
	Description  *string          `json:"description,omitempty"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	TotalPrice   *decimal.Decimal `json:"total_price,omitempty"`
	Sachkonto    *string          `json:"sachkonto,omitempty"`
	BUSchluessel *string          `json:"bu_schluessel,omitempty"`
}
