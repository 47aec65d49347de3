package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sonqb/invoice-forecast/internal/models"
)

// SaveInvoice persists a detected invoice. The product lines are stored
// as a JSON column since they are only ever read back whole.
func (db *DB) SaveInvoice(ctx context.Context, inv *models.Invoice) (int64, error) {
	products, err := json.Marshal(inv.Products)
	if err != nil {
		return 0, fmt.Errorf("failed to encode products: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO invoices
			(invoice_id, store_name, store_key, products, total_amount,
			 detection_confidence, extracted_text, invoice_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.InvoiceID, inv.StoreName, inv.StoreKey, string(products),
		inv.TotalAmount, inv.DetectionConfidence, inv.ExtractedText,
		inv.Date.Unix(), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to save invoice: %w", err)
	}
	return res.LastInsertId()
}

// ListInvoices returns the most recent invoices, newest first.
func (db *DB) ListInvoices(ctx context.Context, limit, offset int) ([]*models.Invoice, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT invoice_id, store_name, store_key, products, total_amount,
		       detection_confidence, extracted_text, invoice_date
		FROM invoices
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv := &models.Invoice{}
		var products string
		var date int64
		if err := rows.Scan(&inv.InvoiceID, &inv.StoreName, &inv.StoreKey, &products,
			&inv.TotalAmount, &inv.DetectionConfidence, &inv.ExtractedText, &date); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		if err := json.Unmarshal([]byte(products), &inv.Products); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
		inv.Date = time.Unix(date, 0)
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// CountInvoices returns the number of stored invoices.
func (db *DB) CountInvoices(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM invoices").Scan(&count)
	return count, err
}

// ClearInvoices deletes all stored invoices and reports how many were removed.
func (db *DB) ClearInvoices(ctx context.Context) (int64, error) {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM invoices")
	if err != nil {
		return 0, fmt.Errorf("failed to clear invoices: %w", err)
	}
	return res.RowsAffected()
}
