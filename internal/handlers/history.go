package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// GetHistory returns the in-memory invoice history, newest last.
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	invoices := h.history.Snapshot()
	return c.JSON(fiber.Map{
		"success": true,
		"history": invoices,
		"count":   len(invoices),
	})
}

// GetDatabaseHistory returns persisted invoices, newest first.
func (h *Handler) GetDatabaseHistory(c *fiber.Ctx) error {
	if h.db == nil {
		return Error(c, fiber.StatusServiceUnavailable, "database is not available")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	invoices, err := h.db.ListInvoices(c.Context(), limit, offset)
	if err != nil {
		log.Printf("Failed to list invoices: %v", err)
		return Error(c, fiber.StatusInternalServerError, "failed to load invoice history")
	}
	total, err := h.db.CountInvoices(c.Context())
	if err != nil {
		log.Printf("Failed to count invoices: %v", err)
		return Error(c, fiber.StatusInternalServerError, "failed to load invoice history")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"history": invoices,
		"count":   len(invoices),
		"total":   total,
	})
}

// ClearHistory empties the in-memory history. With ?database=true the
// persisted invoices and forecasts are cleared as well.
func (h *Handler) ClearHistory(c *fiber.Ctx) error {
	cleared := h.history.Clear()

	var dbCleared int64
	if c.Query("database") == "true" && h.db != nil {
		n, err := h.db.ClearInvoices(c.Context())
		if err != nil {
			log.Printf("Failed to clear invoices: %v", err)
			return Error(c, fiber.StatusInternalServerError, "failed to clear database history")
		}
		dbCleared = n
		if _, err := h.db.ClearForecasts(c.Context()); err != nil {
			log.Printf("Warning: Failed to clear forecasts: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"success":          true,
		"cleared":          cleared,
		"database_cleared": dbCleared,
	})
}

// GetForecasts returns persisted forecast summaries, newest first.
func (h *Handler) GetForecasts(c *fiber.Ctx) error {
	if h.db == nil {
		return Error(c, fiber.StatusServiceUnavailable, "database is not available")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	forecasts, err := h.db.ListForecasts(c.Context(), limit)
	if err != nil {
		log.Printf("Failed to list forecasts: %v", err)
		return Error(c, fiber.StatusInternalServerError, "failed to load forecasts")
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"forecasts": forecasts,
		"count":     len(forecasts),
	})
}

// GetStatistics aggregates the persisted invoices and forecasts.
func (h *Handler) GetStatistics(c *fiber.Ctx) error {
	if h.db == nil {
		return Error(c, fiber.StatusServiceUnavailable, "database is not available")
	}

	stats, err := h.db.Statistics(c.Context())
	if err != nil {
		log.Printf("Failed to aggregate statistics: %v", err)
		return Error(c, fiber.StatusInternalServerError, "failed to load statistics")
	}
	return Success(c, stats)
}

// GetModelsInfo reports the status of both models.
func (h *Handler) GetModelsInfo(c *fiber.Ctx) error {
	ocrAvailable := h.extractor != nil

	return c.JSON(fiber.Map{
		"success": true,
		"model1": fiber.Map{
			"name":      "Invoice Detection (OCR)",
			"available": ocrAvailable,
			"languages": []string{"vie", "eng"},
		},
		"model2": fiber.Map{
			"name":          "Import Quantity Forecast (LSTM)",
			"state":         h.forecasts.ModelState().String(),
			"window_length": h.forecasts.Window(),
			"history_count": h.history.Len(),
		},
	})
}
