package handlers

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sonqb/invoice-forecast/internal/models"
	"github.com/sonqb/invoice-forecast/internal/services"
)

// ForecastRequest is the optional body for a forecast call. Products is
// manually entered invoice text; InvoiceData is a structured invoice.
// When both are empty the forecast runs over the accumulated history.
type ForecastRequest struct {
	Products    string          `json:"products"`
	InvoiceData *models.Invoice `json:"invoice_data"`
}

// Forecast predicts the next import quantity from the invoice history.
func (h *Handler) Forecast(c *fiber.Ctx) error {
	var req ForecastRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return Error(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	if strings.TrimSpace(req.Products) != "" {
		invoice, err := services.ParseManualInvoice(req.Products)
		if err != nil {
			if errors.Is(err, services.ErrNoValidProducts) {
				return Error(c, fiber.StatusBadRequest, "no valid products found")
			}
			return Error(c, fiber.StatusBadRequest, err.Error())
		}
		h.history.Append(invoice)
		if h.db != nil {
			if _, err := h.db.SaveInvoice(c.Context(), invoice); err != nil {
				log.Printf("Warning: Failed to save manual invoice %s: %v", invoice.InvoiceID, err)
			}
		}
	} else if req.InvoiceData != nil && len(req.InvoiceData.Products) > 0 {
		h.history.Append(req.InvoiceData)
	}

	result, err := h.forecasts.Forecast(h.history.Snapshot())
	if err != nil {
		log.Printf("Forecast failed: %v", err)
		return Error(c, fiber.StatusInternalServerError, "forecast failed")
	}

	if h.db != nil {
		summary := &models.ForecastSummary{
			PredictedQuantity: result.PredictedQuantity,
			Trend:             result.Trend,
			Confidence:        result.Confidence,
			HistoricalMean:    result.HistoricalMean,
			HistoryCount:      result.HistoryCount,
			Products:          result.PredictedProducts,
		}
		if _, err := h.db.SaveForecast(c.Context(), summary); err != nil {
			log.Printf("Warning: Failed to save forecast: %v", err)
		}
	}

	return c.JSON(result)
}
