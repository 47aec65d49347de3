package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sonqb/invoice-forecast/internal/models"
)

// manualUnitPrice is charged when a manually entered line has no price.
const manualUnitPrice = 10000

// ErrNoValidProducts is returned when manual text yields no usable lines.
var ErrNoValidProducts = errors.New("no valid products found")

// ParseManualInvoice parses pasted invoice text in the simple
// "name - quantity" or "name: quantity" form. Malformed lines are
// skipped; an invoice is built only when at least one line parses.
func ParseManualInvoice(text string) (*models.Invoice, error) {
	var products []models.ProductLine
	total := 0.0

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		name, qtyText, ok := splitManualLine(line)
		if !ok {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(qtyText))
		if err != nil || qty <= 0 {
			continue
		}
		qty = models.ClampQuantity(qty)

		lineTotal := float64(qty) * manualUnitPrice
		products = append(products, models.ProductLine{
			ProductName: name,
			Quantity:    qty,
			UnitPrice:   manualUnitPrice,
			LineTotal:   lineTotal,
		})
		total += lineTotal
	}

	if len(products) == 0 {
		return nil, ErrNoValidProducts
	}

	return &models.Invoice{
		InvoiceID:           fmt.Sprintf("INV_%s", strings.ToUpper(uuid.NewString()[:8])),
		StoreName:           "Manual Entry",
		Products:            products,
		TotalAmount:         total,
		DetectionConfidence: 1,
		ExtractedText:       text,
		Date:                time.Now(),
	}, nil
}

// splitManualLine splits "name - qty" or "name: qty", preferring the last
// separator so product names may themselves contain dashes.
func splitManualLine(line string) (name, qty string, ok bool) {
	for _, sep := range []string{" - ", ":", "-"} {
		idx := strings.LastIndex(line, sep)
		if idx <= 0 {
			continue
		}
		name = strings.TrimSpace(line[:idx])
		qty = strings.TrimSpace(line[idx+len(sep):])
		if name != "" && qty != "" {
			return name, qty, true
		}
	}
	return "", "", false
}
