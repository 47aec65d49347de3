package forecast

import (
	"sort"

	"github.com/sonqb/invoice-forecast/internal/models"
)

// ProductStats accumulates the historical footprint of one product across
// the invoice history.
type ProductStats struct {
	Total int // cumulative quantity
	Count int // number of invoices the product appears on
}

// AggregateProducts collects per-product historical totals from the history.
func AggregateProducts(history []*models.Invoice) map[string]*ProductStats {
	stats := make(map[string]*ProductStats)
	for _, inv := range history {
		for _, p := range inv.Products {
			name := p.ProductName
			if name == "" {
				name = "Unknown"
			}
			s, ok := stats[name]
			if !ok {
				s = &ProductStats{}
				stats[name] = s
			}
			s.Total += models.ClampQuantity(p.Quantity)
			s.Count++
		}
	}
	return stats
}

// Allocate distributes the aggregate predicted quantity across products
// proportionally to their historical share of total quantity. Products whose
// allocation rounds to zero are dropped; the result is sorted by allocated
// quantity descending (largest reorder need first). When no history exists
// the per-product list is empty and only the aggregate figure stands.
func Allocate(aggregate int, stats map[string]*ProductStats) []models.ProductForecast {
	totalHistorical := 0
	for _, s := range stats {
		totalHistorical += s.Total
	}
	if totalHistorical == 0 {
		return nil
	}

	out := make([]models.ProductForecast, 0, len(stats))
	for name, s := range stats {
		allocated := int(float64(aggregate) * float64(s.Total) / float64(totalHistorical))
		if allocated <= 0 {
			continue
		}
		out = append(out, models.ProductForecast{
			ProductName:       name,
			PredictedQuantity: allocated,
			HistoricalAverage: s.Total / s.Count,
			Frequency:         s.Count,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].PredictedQuantity != out[j].PredictedQuantity {
			return out[i].PredictedQuantity > out[j].PredictedQuantity
		}
		return out[i].ProductName < out[j].ProductName
	})
	return out
}
