package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name       string
		quantities []float64
		want       Trend
	}{
		{"flat series", []float64{100, 100, 100, 100}, TrendStable},
		{"steep rise", []float64{50, 70, 90, 110}, TrendIncreasing},
		{"steep fall", []float64{110, 90, 70, 50}, TrendDecreasing},
		{"mild drift stays stable", []float64{100, 102, 104, 106}, TrendStable},
		{"too few points", []float64{10, 500}, TrendStable},
		{"empty", nil, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTrend(tt.quantities, 10))
		})
	}
}

func TestConfidenceStableSeries(t *testing.T) {
	c := Confidence([]float64{100, 100, 100, 100, 100})
	assert.InDelta(t, 0.99, c, 1e-9)
}

func TestConfidenceVolatileSeriesClampsAtFloor(t *testing.T) {
	c := Confidence([]float64{10, 300, 20, 280, 15})
	assert.InDelta(t, 0.5, c, 1e-9)
}

func TestConfidenceBounds(t *testing.T) {
	series := [][]float64{
		nil,
		{0, 0, 0},
		{42},
		{100, 120, 80, 110, 95},
		{1, 2, 3, 4, 5, 6, 7, 8},
	}
	for _, s := range series {
		c := Confidence(s)
		assert.GreaterOrEqual(t, c, 0.5)
		assert.LessOrEqual(t, c, 0.99)
	}
}

func TestConfidenceUsesRecentWindowOnly(t *testing.T) {
	// Wild old values followed by a flat recent window. Only the last five
	// points should count.
	c := Confidence([]float64{1, 900, 3, 100, 100, 100, 100, 100})
	assert.InDelta(t, 0.99, c, 1e-9)
}
