package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonqb/invoice-forecast/internal/models"
)

func TestAggregateProducts(t *testing.T) {
	history := []*models.Invoice{
		{Products: []models.ProductLine{
			{ProductName: "Cà Phê", Quantity: 30},
			{ProductName: "Trà Đào", Quantity: 10},
		}},
		{Products: []models.ProductLine{
			{ProductName: "Cà Phê", Quantity: 40},
			{ProductName: "", Quantity: 5},
		}},
	}

	stats := AggregateProducts(history)
	require.Len(t, stats, 3)
	assert.Equal(t, 70, stats["Cà Phê"].Total)
	assert.Equal(t, 2, stats["Cà Phê"].Count)
	assert.Equal(t, 10, stats["Trà Đào"].Total)
	assert.Equal(t, 5, stats["Unknown"].Total)
}

func TestAllocateProportionalSplit(t *testing.T) {
	stats := map[string]*ProductStats{
		"Cà Phê":  {Total: 300, Count: 3},
		"Trà Đào": {Total: 100, Count: 2},
	}

	out := Allocate(40, stats)
	require.Len(t, out, 2)
	assert.Equal(t, "Cà Phê", out[0].ProductName)
	assert.Equal(t, 30, out[0].PredictedQuantity)
	assert.Equal(t, 100, out[0].HistoricalAverage)
	assert.Equal(t, "Trà Đào", out[1].ProductName)
	assert.Equal(t, 10, out[1].PredictedQuantity)
}

func TestAllocateDropsZeroAllocations(t *testing.T) {
	stats := map[string]*ProductStats{
		"Major": {Total: 1000, Count: 5},
		"Minor": {Total: 1, Count: 1},
	}

	out := Allocate(50, stats)
	require.Len(t, out, 1)
	assert.Equal(t, "Major", out[0].ProductName)
}

func TestAllocateEmptyHistory(t *testing.T) {
	assert.Nil(t, Allocate(100, map[string]*ProductStats{}))
	assert.Nil(t, Allocate(100, AggregateProducts(nil)))
}

func TestAllocateTieBreaksByName(t *testing.T) {
	stats := map[string]*ProductStats{
		"Bravo": {Total: 100, Count: 1},
		"Alpha": {Total: 100, Count: 1},
	}

	out := Allocate(20, stats)
	require.Len(t, out, 2)
	assert.Equal(t, "Alpha", out[0].ProductName)
	assert.Equal(t, "Bravo", out[1].ProductName)
}
