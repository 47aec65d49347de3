package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sonqb/invoice-forecast/internal/models"
)

// SaveForecast persists a forecast summary row.
func (db *DB) SaveForecast(ctx context.Context, f *models.ForecastSummary) (int64, error) {
	products, err := json.Marshal(f.Products)
	if err != nil {
		return 0, fmt.Errorf("failed to encode products: %w", err)
	}

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO forecasts
			(predicted_quantity, trend, confidence, historical_mean, history_count, products, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, f.PredictedQuantity, f.Trend, f.Confidence, f.HistoricalMean,
		f.HistoryCount, string(products), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to save forecast: %w", err)
	}
	return res.LastInsertId()
}

// ListForecasts returns the most recent forecast summaries, newest first.
func (db *DB) ListForecasts(ctx context.Context, limit int) ([]*models.ForecastSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, predicted_quantity, trend, confidence, historical_mean,
		       history_count, products, created_at
		FROM forecasts
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []*models.ForecastSummary
	for rows.Next() {
		f := &models.ForecastSummary{}
		var products string
		var createdAt int64
		if err := rows.Scan(&f.ID, &f.PredictedQuantity, &f.Trend, &f.Confidence,
			&f.HistoricalMean, &f.HistoryCount, &products, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan forecast: %w", err)
		}
		if err := json.Unmarshal([]byte(products), &f.Products); err != nil {
			return nil, fmt.Errorf("failed to decode products: %w", err)
		}
		f.CreatedAt = time.Unix(createdAt, 0)
		forecasts = append(forecasts, f)
	}
	return forecasts, rows.Err()
}

// Statistics aggregates stored invoices and forecasts for the dashboard.
func (db *DB) Statistics(ctx context.Context) (*models.Statistics, error) {
	stats := &models.Statistics{}

	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0) FROM invoices
	`).Scan(&stats.TotalInvoices, &stats.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate invoices: %w", err)
	}

	err = db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(AVG(confidence), 0) FROM forecasts
	`).Scan(&stats.TotalForecasts, &stats.AverageConfidence)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate forecasts: %w", err)
	}

	return stats, nil
}

// ClearForecasts deletes all stored forecasts.
func (db *DB) ClearForecasts(ctx context.Context) (int64, error) {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM forecasts")
	if err != nil {
		return 0, fmt.Errorf("failed to clear forecasts: %w", err)
	}
	return res.RowsAffected()
}
