package forecast

import (
	"fmt"
	"strings"
	"time"

	"github.com/sonqb/invoice-forecast/internal/models"
)

// maxListedProducts caps the per-product breakdown shown in the
// recommendation text; the remainder is summarized as "...and K more".
const maxListedProducts = 15

// ComposeResponse assembles the final forecast bundle for the API layer.
// Pure formatting: every number here was decided upstream.
func ComposeResponse(
	quantity int,
	trend Trend,
	confidence float64,
	historicalMean float64,
	products []models.ProductForecast,
	historyCount int,
	now time.Time,
) *models.ForecastResult {
	icon, desc := trendPresentation(trend)

	output1 := fmt.Sprintf("%s Total Predicted Import: %d products (Trend: %s)", icon, quantity, desc)

	var lines []string
	if len(products) > 0 {
		lines = append(lines, "📦 Predicted Products:", "")
		for i, p := range products {
			if i == maxListedProducts {
				lines = append(lines, fmt.Sprintf("... and %d more products", len(products)-maxListedProducts))
				break
			}
			lines = append(lines, fmt.Sprintf("%d. %s: %d products", i+1, p.ProductName, p.PredictedQuantity))
		}
		lines = append(lines, "")
	}
	lines = append(lines,
		fmt.Sprintf("Total: %d products", quantity),
		fmt.Sprintf("Trend: %s", desc),
		fmt.Sprintf("Historical Average: %d products", int(historicalMean)),
		fmt.Sprintf("Confidence: %.1f%%", confidence*100),
	)
	output2 := strings.Join(lines, "\n")

	return &models.ForecastResult{
		Success:            true,
		Message:            "Forecast completed successfully",
		PredictedQuantity:  quantity,
		PredictedProducts:  products,
		Trend:              string(trend),
		Confidence:         confidence,
		HistoricalMean:     historicalMean,
		Output1:            output1,
		Output2:            output2,
		RecommendationText: output2,
		HistoryCount:       historyCount,
		Timestamp:          now.Format(time.RFC3339),
	}
}

func trendPresentation(trend Trend) (icon, description string) {
	switch trend {
	case TrendIncreasing:
		return "📈", "Increasing"
	case TrendDecreasing:
		return "📉", "Decreasing"
	default:
		return "➡️", "Stable"
	}
}
