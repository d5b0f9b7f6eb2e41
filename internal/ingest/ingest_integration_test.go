package ingest

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"invoice-dashboard/internal/db"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	if err := db.RunMigrations(dbURL); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE line_items, summaries, payments, customers, vendors, invoices, documents RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}
	return pool
}

const sampleExport = `[
	{
		"_id": "file-1",
		"name": "rechnung-1.pdf",
		"fileSize": {"$numberLong": "2048"},
		"createdAt": {"$date": "2025-04-01T08:00:00Z"},
		"analyticsId": "an-1",
		"extractedData": {"llmData": {
			"invoice": {"value": {
				"invoiceId": {"value": "R-2025-001"},
				"invoiceDate": {"value": "2025-03-28"}
			}},
			"vendor": {"value": {"vendorName": {"value": "Acme GmbH"}}},
			"summary": {"value": {"invoiceTotal": {"value": "-1200.50"}}},
			"lineItems": {"value": {"items": [
				{"srNo": {"value": 1}, "description": {"value": "Hosting"}, "totalPrice": {"value": -1000}, "Sachkonto": {"value": "4400"}},
				{"srNo": {"value": 2}, "description": {"value": "Support"}, "totalPrice": {"value": "-200.50"}}
			]}}
		}}
	},
	{
		"_id": "file-2",
		"name": "rechnung-2.pdf",
		"extractedData": {"llmData": {
			"invoice": {"value": {"invoiceId": {"value": ""}}},
			"payment": {"value": {"dueDate": {"value": "2025-05-15"}, "netDays": {"value": 30}}}
		}}
	}
]`

func TestIngestRunIntegration(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	result, err := New(pool).Run(ctx, strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Processed != 2 || result.Errored != 0 {
		t.Fatalf("result = %+v, want 2 processed 0 errored", result)
	}

	var docCount, itemCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents").Scan(&docCount); err != nil {
		t.Fatal(err)
	}
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM line_items").Scan(&itemCount); err != nil {
		t.Fatal(err)
	}
	if docCount != 2 || itemCount != 2 {
		t.Errorf("counts = %d documents %d line items, want 2/2", docCount, itemCount)
	}

	var total string
	err = pool.QueryRow(ctx, `
		SELECT s.invoice_total::text
		FROM summaries s JOIN documents d ON d.id = s.document_id
		WHERE d.file_id = 'file-1'`).Scan(&total)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if total != "-1200.50" && total != "-1200.5" {
		t.Errorf("invoice_total = %s, want -1200.50 stored signed", total)
	}

	var dueCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM payments WHERE due_date IS NOT NULL").Scan(&dueCount); err != nil {
		t.Fatal(err)
	}
	if dueCount != 1 {
		t.Errorf("payments with due date = %d, want 1", dueCount)
	}
}

func TestIngestRunIsIdempotent(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	ing := New(pool)

	if _, err := ing.Run(ctx, strings.NewReader(sampleExport)); err != nil {
		t.Fatalf("first run: %v", err)
	}
	result, err := ing.Run(ctx, strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Errored != 0 {
		t.Fatalf("second run errored %d records", result.Errored)
	}

	var docCount, invCount, itemCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents").Scan(&docCount); err != nil {
		t.Fatal(err)
	}
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM invoices").Scan(&invCount); err != nil {
		t.Fatal(err)
	}
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM line_items").Scan(&itemCount); err != nil {
		t.Fatal(err)
	}
	if docCount != 2 || invCount != 2 || itemCount != 2 {
		t.Errorf("after rerun: %d documents %d invoices %d line items, want 2/2/2", docCount, invCount, itemCount)
	}
}

func TestIngestDropsCollidingAnalyticsID(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	const colliding = `[
		{"_id": "owner", "name": "a.pdf", "analyticsId": "shared"},
		{"_id": "intruder", "name": "b.pdf", "analyticsId": "shared"}
	]`

	result, err := New(pool).Run(ctx, strings.NewReader(colliding))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Processed != 2 {
		t.Fatalf("result = %+v, want both records processed", result)
	}

	var fileID string
	err = pool.QueryRow(ctx, "SELECT file_id FROM documents WHERE analytics_id = 'shared'").Scan(&fileID)
	if err != nil {
		t.Fatalf("read owner: %v", err)
	}
	if fileID != "owner" {
		t.Errorf("analytics id kept by %s, want owner", fileID)
	}

	var nullCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM documents WHERE analytics_id IS NULL").Scan(&nullCount); err != nil {
		t.Fatal(err)
	}
	if nullCount != 1 {
		t.Errorf("documents with dropped analytics id = %d, want 1", nullCount)
	}
}

func TestIngestRejectsMalformedExport(t *testing.T) {
	pool := setupTestDB(t)

	_, err := New(pool).Run(context.Background(), strings.NewReader(`{"not": "an array"}`))
	if err == nil {
		t.Fatal("expected decode error for non-array export")
	}
}
