package forecast

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonqb/invoice-forecast/internal/models"
)

func invoiceWithQuantity(qty int, date time.Time) *models.Invoice {
	return &models.Invoice{
		InvoiceID: "INV_TEST",
		Products: []models.ProductLine{
			{ProductName: "Product A", Quantity: qty, UnitPrice: 10000, LineTotal: float64(qty) * 10000},
		},
		TotalAmount: float64(qty) * 10000,
		Date:        date,
	}
}

func TestPadHistoryShortHistory(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	now := time.Now()
	history := []*models.Invoice{
		invoiceWithQuantity(100, now.AddDate(0, 0, -7)),
		invoiceWithQuantity(110, now),
	}

	padded := PadHistory(history, 10, rng)
	require.Len(t, padded, 10)

	// Real records keep their place at the end.
	assert.Equal(t, 100, padded[8].TotalQuantity())
	assert.Equal(t, 110, padded[9].TotalQuantity())

	// Padding quantities jitter around the oldest real record.
	for _, inv := range padded[:8] {
		q := inv.TotalQuantity()
		assert.GreaterOrEqual(t, q, 1)
		assert.LessOrEqual(t, q, 120)
		assert.InDelta(t, float64(q)*10000, inv.TotalAmount, 1e-9)
	}

	// Dates step backwards week by week.
	for i := 1; i < len(padded); i++ {
		assert.True(t, padded[i-1].Date.Before(padded[i].Date))
	}
}

func TestPadHistoryDoesNotMutateInput(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	history := []*models.Invoice{invoiceWithQuantity(100, time.Now())}

	_ = PadHistory(history, 10, rng)

	assert.Len(t, history, 1)
	assert.Equal(t, 100, history[0].TotalQuantity())
}

func TestPadHistoryEmptyHistorySeeds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	padded := PadHistory(nil, 10, rng)

	require.Len(t, padded, 10)
	for _, inv := range padded {
		assert.Greater(t, inv.TotalQuantity(), 0)
		assert.Greater(t, inv.TotalAmount, 0.0)
	}
}

func TestPadHistoryLongHistoryUnchanged(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	now := time.Now()
	history := make([]*models.Invoice, 15)
	for i := range history {
		history[i] = invoiceWithQuantity(100+i, now.AddDate(0, 0, 7*i))
	}

	padded := PadHistory(history, 10, rng)
	assert.Len(t, padded, 15)
}

func TestBuildWindowWidthAndArity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	history := []*models.Invoice{invoiceWithQuantity(100, time.Now())}

	window := BuildWindow(history, 10, rng)
	require.Len(t, window, 10)
	for _, v := range window {
		assert.Len(t, v, len(CanonicalSchema))
	}
	// Last vector reflects the real record.
	assert.Equal(t, 100.0, window[9].Quantity())
}

func TestBuildWindowDeterministicWithSeededRNG(t *testing.T) {
	history := []*models.Invoice{invoiceWithQuantity(100, time.Unix(1700000000, 0))}

	a := BuildWindow(history, 10, rand.New(rand.NewSource(42)))
	b := BuildWindow(history, 10, rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}
