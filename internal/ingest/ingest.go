// Package ingest implements the one-shot ETL job that loads the upstream
// JSON export into the relational store. Upserts are keyed by natural id
// (file id for documents, document id for the 1-1 children), so re-running
// the job is idempotent; line items are the exception and are replaced
// wholesale per document. The job is not safe to run concurrently with
// itself against the same store; no lock is taken.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"invoice-dashboard/internal/core"
	"invoice-dashboard/internal/logger"
)

// Result reports the outcome of one ingestion run.
type Result struct {
	Processed int
	Errored   int
}

type Ingestor struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func New(pool *pgxpool.Pool) *Ingestor {
	return &Ingestor{pool: pool, log: logger.WithComponent("ingest")}
}

// Run decodes the export from r and ingests every record. A failing record
// is counted, logged with its file id, and skipped; the batch continues.
func (ing *Ingestor) Run(ctx context.Context, r io.Reader) (*Result, error) {
	var docs []SourceDocument
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}

	ing.log.Info().Int("documents", len(docs)).Msg("starting ingestion")

	now := time.Now()
	result := &Result{}
	for _, doc := range docs {
		if err := ing.ingestOne(ctx, mapRecord(doc, now)); err != nil {
			result.Errored++
			ing.log.Error().Err(err).Str("file_id", doc.ID).Msg("failed to ingest document")
			continue
		}
		result.Processed++
		if result.Processed%100 == 0 {
			ing.log.Info().Int("processed", result.Processed).Int("total", len(docs)).Msg("ingestion progress")
		}
	}

	ing.log.Info().
		Int("processed", result.Processed).
		Int("errors", result.Errored).
		Msg("ingestion complete")
	return result, nil
}

func (ing *Ingestor) ingestOne(ctx context.Context, rec record) error {
	doc := rec.document

	analyticsID, err := ing.resolveAnalyticsID(ctx, doc.FileID, doc.AnalyticsID)
	if err != nil {
		return err
	}

	// The no-op DO UPDATE lets the conflicting row flow back through
	// RETURNING; DO NOTHING would return no row for an existing document.
	var documentID int
	err = ing.pool.QueryRow(ctx, `
		INSERT INTO documents (
			file_id, name, file_path, file_size, file_type, status,
			organization_id, department_id, created_at, updated_at,
			uploaded_by_id, is_validated_by_human, analytics_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (file_id) DO UPDATE SET file_id = EXCLUDED.file_id
		RETURNING id`,
		doc.FileID, doc.Name, doc.FilePath, doc.FileSize, doc.FileType, string(doc.Status),
		doc.OrganizationID, doc.DepartmentID, doc.CreatedAt, doc.UpdatedAt,
		doc.UploadedByID, doc.IsValidatedByHuman, analyticsID,
	).Scan(&documentID)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	if inv := rec.invoice; inv != nil {
		_, err := ing.pool.Exec(ctx, `
			INSERT INTO invoices (document_id, invoice_id, invoice_date, delivery_date)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (document_id) DO NOTHING`,
			documentID, inv.InvoiceID, inv.InvoiceDate, inv.DeliveryDate,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert invoice: %w", err)
		}
	}

	if ven := rec.vendor; ven != nil {
		_, err := ing.pool.Exec(ctx, `
			INSERT INTO vendors (document_id, vendor_name, vendor_party_number, vendor_address, vendor_tax_id)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (document_id) DO NOTHING`,
			documentID, ven.VendorName, ven.VendorPartyNumber, ven.VendorAddress, ven.VendorTaxID,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert vendor: %w", err)
		}
	}

	if cust := rec.customer; cust != nil {
		_, err := ing.pool.Exec(ctx, `
			INSERT INTO customers (document_id, customer_name, customer_address)
			VALUES ($1, $2, $3)
			ON CONFLICT (document_id) DO NOTHING`,
			documentID, cust.CustomerName, cust.CustomerAddress,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert customer: %w", err)
		}
	}

	if pay := rec.payment; pay != nil {
		_, err := ing.pool.Exec(ctx, `
			INSERT INTO payments (
				document_id, due_date, payment_terms, bank_account_number, bic,
				account_name, net_days, discount_percentage, discount_days,
				discount_due_date, discounted_total
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (document_id) DO NOTHING`,
			documentID, pay.DueDate, pay.PaymentTerms, pay.BankAccountNumber, pay.BIC,
			pay.AccountName, pay.NetDays, pay.DiscountPercentage, pay.DiscountDays,
			pay.DiscountDueDate, pay.DiscountedTotal,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert payment: %w", err)
		}
	}

	if sum := rec.summary; sum != nil {
		_, err := ing.pool.Exec(ctx, `
			INSERT INTO summaries (document_id, document_type, sub_total, total_tax, invoice_total, currency_symbol)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (document_id) DO NOTHING`,
			documentID, sum.DocumentType, sum.SubTotal, sum.TotalTax, sum.InvoiceTotal, sum.CurrencySymbol,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert summary: %w", err)
		}
	}

	if len(rec.lineItems) > 0 {
		if err := ing.replaceLineItems(ctx, documentID, rec.lineItems); err != nil {
			return err
		}
	}

	return nil
}

// resolveAnalyticsID nulls out an analytics id already assigned to a
// different document; uniqueness is enforced here at write time.
func (ing *Ingestor) resolveAnalyticsID(ctx context.Context, fileID string, analyticsID *string) (*string, error) {
	if analyticsID == nil || *analyticsID == "" {
		return nil, nil
	}

	var existingFileID string
	err := ing.pool.QueryRow(ctx,
		"SELECT file_id FROM documents WHERE analytics_id = $1", *analyticsID,
	).Scan(&existingFileID)
	if errors.Is(err, pgx.ErrNoRows) {
		return analyticsID, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check analytics id: %w", err)
	}
	if existingFileID != fileID {
		ing.log.Warn().
			Str("file_id", fileID).
			Str("analytics_id", *analyticsID).
			Msg("analytics id already assigned to another document, dropping")
		return nil, nil
	}
	return analyticsID, nil
}

// replaceLineItems swaps the document's full line-item set. Re-running the
// job replaces rather than merges.
func (ing *Ingestor) replaceLineItems(ctx context.Context, documentID int, items []core.LineItem) error {
	if _, err := ing.pool.Exec(ctx,
		"DELETE FROM line_items WHERE document_id = $1", documentID,
	); err != nil {
		return fmt.Errorf("failed to clear line items: %w", err)
	}

	for _, item := range items {
		_, err := ing.pool.Exec(ctx, `
			INSERT INTO line_items (document_id, sr_no, description, quantity, unit_price, total_price, sachkonto, bu_schluessel)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			documentID, item.SrNo, item.Description,
			item.Quantity, item.UnitPrice, item.TotalPrice,
			item.Sachkonto, item.BUSchluessel,
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}
	return nil
}
