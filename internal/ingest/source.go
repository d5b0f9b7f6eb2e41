package ingest

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The export format wraps every extracted field in a {value: ...} envelope
// and uses Mongo extended-JSON encodings for dates and 64-bit integers.

// SourceDocument is one record of the upstream JSON export.
type SourceDocument struct {
	ID                 string         `json:"_id"`
	Name               string         `json:"name"`
	FilePath           *string        `json:"filePath"`
	FileSize           *LongValue     `json:"fileSize"`
	FileType           *string        `json:"fileType"`
	Status             *string        `json:"status"`
	OrganizationID     *string        `json:"organizationId"`
	DepartmentID       *string        `json:"departmentId"`
	CreatedAt          *DateValue     `json:"createdAt"`
	UpdatedAt          *DateValue     `json:"updatedAt"`
	UploadedByID       *string        `json:"uploadedById"`
	IsValidatedByHuman *bool          `json:"isValidatedByHuman"`
	AnalyticsID        *string        `json:"analyticsId"`
	ExtractedData      *ExtractedData `json:"extractedData"`
}

type ExtractedData struct {
	LLMData *LLMData `json:"llmData"`
}

type LLMData struct {
	Invoice   *Section[InvoiceFields]   `json:"invoice"`
	Vendor    *Section[VendorFields]    `json:"vendor"`
	Customer  *Section[CustomerFields]  `json:"customer"`
	Payment   *Section[PaymentFields]   `json:"payment"`
	Summary   *Section[SummaryFields]   `json:"summary"`
	LineItems *Section[LineItemsFields] `json:"lineItems"`
}

// Section is the outer {value: ...} envelope around one extraction section.
type Section[T any] struct {
	Value *T `json:"value"`
}

type InvoiceFields struct {
	InvoiceID    *StringField `json:"invoiceId"`
	InvoiceDate  *StringField `json:"invoiceDate"`
	DeliveryDate *StringField `json:"deliveryDate"`
}

type VendorFields struct {
	VendorName        *StringField `json:"vendorName"`
	VendorPartyNumber *StringField `json:"vendorPartyNumber"`
	VendorAddress     *StringField `json:"vendorAddress"`
	VendorTaxID       *StringField `json:"vendorTaxId"`
}

type CustomerFields struct {
	CustomerName    *StringField `json:"customerName"`
	CustomerAddress *StringField `json:"customerAddress"`
}

type PaymentFields struct {
	DueDate            *StringField `json:"dueDate"`
	PaymentTerms       *StringField `json:"paymentTerms"`
	BankAccountNumber  *StringField `json:"bankAccountNumber"`
	BIC                *StringField `json:"BIC"`
	AccountName        *StringField `json:"accountName"`
	NetDays            *IntField    `json:"netDays"`
	DiscountPercentage *NumberField `json:"discountPercentage"`
	DiscountDays       *IntField    `json:"discountDays"`
	DiscountDueDate    *StringField `json:"discountDueDate"`
	DiscountedTotal    *NumberField `json:"discountedTotal"`
}

type SummaryFields struct {
	DocumentType   *StringField `json:"documentType"`
	SubTotal       *NumberField `json:"subTotal"`
	TotalTax       *NumberField `json:"totalTax"`
	InvoiceTotal   *NumberField `json:"invoiceTotal"`
	CurrencySymbol *StringField `json:"currencySymbol"`
}

type LineItemsFields struct {
	Items []LineItemFields `json:"items"`
}

type LineItemFields struct {
	SrNo         *IntField    `json:"srNo"`
	Description  *StringField `json:"description"`
	Quantity     *NumberField `json:"quantity"`
	UnitPrice    *NumberField `json:"unitPrice"`
	TotalPrice   *NumberField `json:"totalPrice"`
	Sachkonto    *StringField `json:"Sachkonto"`
	BUSchluessel *StringField `json:"BUSchluessel"`
}

// ── Field envelopes ───────────────────────────────────────────────────────────

// StringField is a {value: "..."} envelope around a string.
type StringField struct {
	Value *string `json:"value"`
}

// Str returns the wrapped string, or nil when the field or envelope is absent.
// Empty strings are returned as-is.
func (f *StringField) Str() *string {
	if f == nil {
		return nil
	}
	return f.Value
}

// NonEmpty returns the wrapped string, mapping both absence and the empty
// string to nil.
func (f *StringField) NonEmpty() *string {
	s := f.Str()
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// Time parses the wrapped string as a timestamp, returning nil when absent
// or unparseable.
func (f *StringField) Time() *time.Time {
	s := f.NonEmpty()
	if s == nil {
		return nil
	}
	return ParseDate(*s)
}

// IntField is a {value: N} envelope around an integer.
type IntField struct {
	Value *int `json:"value"`
}

// OrZero returns the wrapped value, or 0 when absent. Callers that must
// distinguish absence from zero should not use this.
func (f *IntField) OrZero() int {
	if f == nil || f.Value == nil {
		return 0
	}
	return *f.Value
}

// NumberField is a {value: ...} envelope whose payload may be encoded as a
// JSON number or as a numeric string. Absent, empty, and unparseable values
// all decode to nil: "no data" is not zero, and the distinction is kept all
// the way to storage.
type NumberField struct {
	value *decimal.Decimal
}

func (f *NumberField) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	f.value = parseNumber(envelope.Value)
	return nil
}

// Decimal returns the parsed value, or nil when absent.
func (f *NumberField) Decimal() *decimal.Decimal {
	if f == nil {
		return nil
	}
	return f.value
}

// parseNumber interprets a raw JSON value as a number. It accepts both
// numeric and string encodings; null, the empty string, and garbage all
// yield nil. Strings with a numeric prefix and trailing garbage ("12 EUR")
// are rejected whole rather than truncated to the prefix: better absent
// than a silently guessed amount.
func parseNumber(raw json.RawMessage) *decimal.Decimal {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// Not a string: try a bare number.
		s = string(raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// ── Extended-JSON encodings ───────────────────────────────────────────────────

// DateValue is a Mongo extended-JSON {"$date": "..."} timestamp.
type DateValue struct {
	Date *string `json:"$date"`
}

// Time parses the timestamp, returning nil when absent or unparseable.
func (v *DateValue) Time() *time.Time {
	if v == nil || v.Date == nil {
		return nil
	}
	return ParseDate(*v.Date)
}

// LongValue is a Mongo extended-JSON {"$numberLong": "..."} integer.
type LongValue struct {
	NumberLong *string `json:"$numberLong"`
}

// Int64 parses the integer, returning nil when absent or unparseable.
func (v *LongValue) Int64() *int64 {
	if v == nil || v.NumberLong == nil {
		return nil
	}
	n, err := strconv.ParseInt(*v.NumberLong, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate tries the known export timestamp layouts in order and returns
// nil when none match.
func ParseDate(s string) *time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
