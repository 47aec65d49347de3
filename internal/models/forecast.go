package models

import "time"

// ProductForecast is one per-product allocation within a forecast.
type ProductForecast struct {
	ProductName       string `json:"product_name"`
	PredictedQuantity int    `json:"predicted_quantity"`
	HistoricalAverage int    `json:"historical_average"`
	Frequency         int    `json:"frequency"`
}

// ForecastResult is the bundle returned to the API layer after a forecast.
type ForecastResult struct {
	Success            bool              `json:"success"`
	Message            string            `json:"message,omitempty"`
	PredictedQuantity  int               `json:"predicted_quantity"`
	PredictedProducts  []ProductForecast `json:"predicted_products"`
	Trend              string            `json:"trend"`
	Confidence         float64           `json:"confidence"`
	HistoricalMean     float64           `json:"historical_mean"`
	Output1            string            `json:"output1"`
	Output2            string            `json:"output2"`
	RecommendationText string            `json:"recommendation_text"`
	HistoryCount       int               `json:"history_count"`
	Timestamp          string            `json:"timestamp"`
}

// ForecastSummary is the persisted row for one completed forecast.
type ForecastSummary struct {
	ID                int64             `json:"id"`
	PredictedQuantity int               `json:"predicted_quantity"`
	Trend             string            `json:"trend"`
	Confidence        float64           `json:"confidence"`
	HistoricalMean    float64           `json:"historical_mean"`
	HistoryCount      int               `json:"history_count"`
	Products          []ProductForecast `json:"products"`
	CreatedAt         time.Time         `json:"created_at"`
}

// Statistics aggregates the persisted store contents.
type Statistics struct {
	TotalInvoices     int     `json:"total_invoices"`
	TotalForecasts    int     `json:"total_forecasts"`
	TotalAmount       float64 `json:"total_amount"`
	AverageConfidence float64 `json:"average_confidence"`
}
