package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonqb/invoice-forecast/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testInvoice(id string, total float64) *models.Invoice {
	return &models.Invoice{
		InvoiceID: id,
		StoreName: "Quán Sơn",
		StoreKey:  "son",
		Products: []models.ProductLine{
			{ProductName: "Cà Phê Sữa", Quantity: 30, UnitPrice: 25000, LineTotal: 750000},
		},
		TotalAmount:         total,
		DetectionConfidence: 0.9,
		ExtractedText:       "some text",
		Date:                time.Now(),
	}
}

func TestConnectIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Connect(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening replays no migrations and fails nothing.
	db, err = Connect(path)
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestSaveAndListInvoices(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := db.SaveInvoice(ctx, testInvoice("INV_A", 750000))
	require.NoError(t, err)
	_, err = db.SaveInvoice(ctx, testInvoice("INV_B", 900000))
	require.NoError(t, err)

	invoices, err := db.ListInvoices(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, invoices, 2)

	// Newest first.
	assert.Equal(t, "INV_B", invoices[0].InvoiceID)
	assert.Equal(t, "INV_A", invoices[1].InvoiceID)

	// Product lines survive the JSON column round trip.
	require.Len(t, invoices[0].Products, 1)
	assert.Equal(t, "Cà Phê Sữa", invoices[0].Products[0].ProductName)
	assert.Equal(t, 30, invoices[0].Products[0].Quantity)

	count, err := db.CountInvoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestListInvoicesLimitOffset(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, id := range []string{"INV_A", "INV_B", "INV_C"} {
		_, err := db.SaveInvoice(ctx, testInvoice(id, 100000))
		require.NoError(t, err)
	}

	page, err := db.ListInvoices(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := db.ListInvoices(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "INV_A", rest[0].InvoiceID)
}

func TestClearInvoices(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := db.SaveInvoice(ctx, testInvoice("INV_A", 100000))
	require.NoError(t, err)

	removed, err := db.ClearInvoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	count, err := db.CountInvoices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSaveAndListForecasts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := db.SaveForecast(ctx, &models.ForecastSummary{
		PredictedQuantity: 120,
		Trend:             "increasing",
		Confidence:        0.87,
		HistoricalMean:    104.5,
		HistoryCount:      12,
		Products: []models.ProductForecast{
			{ProductName: "Cà Phê Sữa", PredictedQuantity: 120, HistoricalAverage: 100, Frequency: 12},
		},
	})
	require.NoError(t, err)

	forecasts, err := db.ListForecasts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, forecasts, 1)

	f := forecasts[0]
	assert.Equal(t, 120, f.PredictedQuantity)
	assert.Equal(t, "increasing", f.Trend)
	assert.InDelta(t, 0.87, f.Confidence, 1e-9)
	require.Len(t, f.Products, 1)
	assert.Equal(t, "Cà Phê Sữa", f.Products[0].ProductName)
}

func TestStatistics(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Empty store aggregates to zeros, not errors.
	stats, err := db.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalInvoices)
	assert.Equal(t, 0.0, stats.AverageConfidence)

	_, err = db.SaveInvoice(ctx, testInvoice("INV_A", 750000))
	require.NoError(t, err)
	_, err = db.SaveInvoice(ctx, testInvoice("INV_B", 250000))
	require.NoError(t, err)
	_, err = db.SaveForecast(ctx, &models.ForecastSummary{Trend: "stable", Confidence: 0.8})
	require.NoError(t, err)

	stats, err = db.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalInvoices)
	assert.Equal(t, 1, stats.TotalForecasts)
	assert.Equal(t, 1000000.0, stats.TotalAmount)
	assert.InDelta(t, 0.8, stats.AverageConfidence, 1e-9)
}
