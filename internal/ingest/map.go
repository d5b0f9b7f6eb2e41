package ingest

import (
	"time"

	"invoice-dashboard/internal/core"
)

// record is one source document mapped onto the storage model. Child
// records are nil when the extractor produced no data for that section;
// DocumentID is filled in at insert time.
type record struct {
	document  core.Document
	invoice   *core.Invoice
	vendor    *core.Vendor
	customer  *core.Customer
	payment   *core.Payment
	summary   *core.Summary
	lineItems []core.LineItem
}

// mapRecord translates the envelope-wrapped export format into model
// structs. Missing timestamps default to now; a missing status defaults to
// processed.
func mapRecord(src SourceDocument, now time.Time) record {
	doc := core.Document{
		FileID:      src.ID,
		Name:        src.Name,
		FilePath:    src.FilePath,
		FileSize:    src.FileSize.Int64(),
		FileType:    src.FileType,
		Status:      core.DocumentStatusProcessed,
		CreatedAt:   now,
		UpdatedAt:   now,
		AnalyticsID: src.AnalyticsID,
	}
	doc.OrganizationID = src.OrganizationID
	doc.DepartmentID = src.DepartmentID
	doc.UploadedByID = src.UploadedByID
	if src.Status != nil && *src.Status != "" {
		doc.Status = core.DocumentStatus(*src.Status)
	}
	if t := src.CreatedAt.Time(); t != nil {
		doc.CreatedAt = *t
	}
	if t := src.UpdatedAt.Time(); t != nil {
		doc.UpdatedAt = *t
	}
	if src.IsValidatedByHuman != nil {
		doc.IsValidatedByHuman = *src.IsValidatedByHuman
	}

	rec := record{document: doc}
	if src.ExtractedData == nil || src.ExtractedData.LLMData == nil {
		return rec
	}
	llm := src.ExtractedData.LLMData

	if inv := llm.Invoice; inv != nil && inv.Value != nil {
		rec.invoice = &core.Invoice{
			InvoiceID:    inv.Value.InvoiceID.Str(),
			InvoiceDate:  inv.Value.InvoiceDate.Time(),
			DeliveryDate: inv.Value.DeliveryDate.Time(),
		}
	}
	if ven := llm.Vendor; ven != nil && ven.Value != nil {
		rec.vendor = &core.Vendor{
			VendorName:        ven.Value.VendorName.Str(),
			VendorPartyNumber: ven.Value.VendorPartyNumber.Str(),
			VendorAddress:     ven.Value.VendorAddress.Str(),
			VendorTaxID:       ven.Value.VendorTaxID.Str(),
		}
	}
	if cust := llm.Customer; cust != nil && cust.Value != nil {
		rec.customer = &core.Customer{
			CustomerName:    cust.Value.CustomerName.Str(),
			CustomerAddress: cust.Value.CustomerAddress.Str(),
		}
	}
	if pay := llm.Payment; pay != nil && pay.Value != nil {
		rec.payment = &core.Payment{
			DueDate:            pay.Value.DueDate.Time(),
			PaymentTerms:       pay.Value.PaymentTerms.NonEmpty(),
			BankAccountNumber:  pay.Value.BankAccountNumber.NonEmpty(),
			BIC:                pay.Value.BIC.NonEmpty(),
			AccountName:        pay.Value.AccountName.NonEmpty(),
			NetDays:            pay.Value.NetDays.OrZero(),
			DiscountPercentage: pay.Value.DiscountPercentage.Decimal(),
			DiscountDays:       pay.Value.DiscountDays.OrZero(),
			DiscountDueDate:    pay.Value.DiscountDueDate.Time(),
			DiscountedTotal:    pay.Value.DiscountedTotal.Decimal(),
		}
	}
	if sum := llm.Summary; sum != nil && sum.Value != nil {
		rec.summary = &core.Summary{
			DocumentType:   sum.Value.DocumentType.NonEmpty(),
			SubTotal:       sum.Value.SubTotal.Decimal(),
			TotalTax:       sum.Value.TotalTax.Decimal(),
			InvoiceTotal:   sum.Value.InvoiceTotal.Decimal(),
			CurrencySymbol: sum.Value.CurrencySymbol.NonEmpty(),
		}
	}
	if li := llm.LineItems; li != nil && li.Value != nil {
		for _, item := range li.Value.Items {
			rec.lineItems = append(rec.lineItems, core.LineItem{
				SrNo:         item.SrNo.OrZero(),
				Description:  item.Description.NonEmpty(),
				Quantity:     item.Quantity.Decimal(),
				UnitPrice:    item.UnitPrice.Decimal(),
				TotalPrice:   item.TotalPrice.Decimal(),
				Sachkonto:    item.Sachkonto.NonEmpty(),
				BUSchluessel: item.BUSchluessel.NonEmpty(),
			})
		}
	}
	return rec
}
