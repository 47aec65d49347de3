package forecast

import (
	"math"
)

// GuardConfig holds the plausibility-guard tuning constants.
type GuardConfig struct {
	// ErrorRatioThreshold is the relative deviation from the historical
	// mean beyond which the model output is overridden.
	ErrorRatioThreshold float64
	// TrendUpFactor / TrendDownFactor adjust the statistical baseline when
	// the trend is increasing or decreasing.
	TrendUpFactor   float64
	TrendDownFactor float64
	// BaselineWeight and RecentWeight blend the trend-adjusted baseline
	// with the mean of the last few records.
	BaselineWeight float64
	RecentWeight   float64
	// MinimumQuantity is the floor applied to every final estimate.
	MinimumQuantity int
}

// DefaultGuardConfig mirrors the tuned production constants.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		ErrorRatioThreshold: 0.5,
		TrendUpFactor:       1.15,
		TrendDownFactor:     0.85,
		BaselineWeight:      0.7,
		RecentWeight:        0.3,
		MinimumQuantity:     10,
	}
}

// GuardResult reports the final quantity and whether the model output was
// replaced by the statistical estimate.
type GuardResult struct {
	Quantity   int
	Overridden bool
	ErrorRatio float64
}

// ApplyGuard sanity-checks the denormalized model output against the recent
// historical mean. A freshly initialized model produces wildly implausible
// values; when the relative deviation exceeds the threshold, a trend-adjusted
// statistical baseline blended with a short-window average is used instead.
// A well-trained model's output passes through untouched (up to flooring and
// integer rounding).
func ApplyGuard(raw, historicalMean, recentMean float64, trend Trend, cfg GuardConfig) GuardResult {
	if raw < 0 {
		raw = 0 // second safety net; the model output layer already clamps
	}

	ratio := math.Abs(raw-historicalMean) / math.Max(historicalMean, 1)

	estimate := raw
	overridden := false
	if ratio > cfg.ErrorRatioThreshold {
		baseline := historicalMean
		switch trend {
		case TrendIncreasing:
			baseline = historicalMean * cfg.TrendUpFactor
		case TrendDecreasing:
			baseline = historicalMean * cfg.TrendDownFactor
		}
		estimate = baseline*cfg.BaselineWeight + recentMean*cfg.RecentWeight
		overridden = true
	}

	quantity := int(math.Round(estimate))
	if quantity < cfg.MinimumQuantity {
		quantity = cfg.MinimumQuantity
	}

	return GuardResult{
		Quantity:   quantity,
		Overridden: overridden,
		ErrorRatio: ratio,
	}
}
