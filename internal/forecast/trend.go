package forecast

import (
	"math"
)

// Trend is a coarse classification of recent quantity movement.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// minTrendPoints is the fewest history points a trend can be read from;
// below this the classification is stable by definition.
const minTrendPoints = 3

// confidenceWindow is how many recent quantities feed the confidence score.
const confidenceWindow = 5

// ClassifyTrend fits a degree-1 polynomial to the quantities indexed by
// position and buckets the slope against the threshold.
func ClassifyTrend(quantities []float64, slopeThreshold float64) Trend {
	if len(quantities) < minTrendPoints {
		return TrendStable
	}
	s := slope(quantities)
	switch {
	case s > slopeThreshold:
		return TrendIncreasing
	case s < -slopeThreshold:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// Confidence scores the forecast from the variability of the last few
// quantities: the coefficient of variation (stddev/mean), capped at 0.5, is
// subtracted from 1 and the result clamped to [0.50, 0.99]. Lower recent
// volatility means higher confidence; the cap keeps a very stable short
// history from claiming near-certainty.
func Confidence(quantities []float64) float64 {
	recent := quantities
	if len(recent) > confidenceWindow {
		recent = recent[len(recent)-confidenceWindow:]
	}
	if len(recent) == 0 {
		return 0.5
	}

	m := mean(recent)
	if m <= 0 {
		return 0.5
	}
	cv := stddev(recent, m) / m
	if cv > 0.5 {
		cv = 0.5
	}
	return clamp(1-cv, 0.5, 0.99)
}

// slope returns the least-squares slope of ys against indices 0..n-1.
func slope(ys []float64) float64 {
	n := float64(len(ys))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
