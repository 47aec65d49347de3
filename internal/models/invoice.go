package models

import (
	"time"
)

// MaxLineQuantity is the sanity ceiling for a single product line. Extraction
// noise occasionally produces absurd counts; anything above this is clamped.
const MaxLineQuantity = 1000000

// Invoice represents one purchase invoice, either extracted from a
// photographed paper invoice or entered manually as text.
type Invoice struct {
	InvoiceID           string        `json:"invoice_id"`
	StoreName           string        `json:"store_name"`
	StoreKey            string        `json:"store_key,omitempty"`
	Products            []ProductLine `json:"products"`
	TotalAmount         float64       `json:"total_amount"`
	DetectionConfidence float64       `json:"detection_confidence"`
	ExtractedText       string        `json:"extracted_text,omitempty"`
	Date                time.Time     `json:"date"`
}

// ProductLine is one item within an invoice. LineTotal should equal
// Quantity*UnitPrice but extraction drift is tolerated; callers recompute
// totals instead of trusting the stored value.
type ProductLine struct {
	ProductID   *string `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}

// TotalQuantity sums the clamped quantities of all product lines.
func (inv *Invoice) TotalQuantity() int {
	total := 0
	for _, p := range inv.Products {
		total += ClampQuantity(p.Quantity)
	}
	return total
}

// MaxProductQuantity returns the largest single-line quantity.
func (inv *Invoice) MaxProductQuantity() int {
	max := 0
	for _, p := range inv.Products {
		if q := ClampQuantity(p.Quantity); q > max {
			max = q
		}
	}
	return max
}

// ComputedTotal recomputes the invoice total from its lines, falling back to
// quantity*unit_price when a line total is missing or zero.
func (inv *Invoice) ComputedTotal() float64 {
	total := 0.0
	for _, p := range inv.Products {
		lt := p.LineTotal
		if lt <= 0 {
			lt = float64(ClampQuantity(p.Quantity)) * p.UnitPrice
		}
		total += lt
	}
	return total
}

// EffectiveTotal prefers the stored total amount but recomputes from the
// product lines when the stored value is missing.
func (inv *Invoice) EffectiveTotal() float64 {
	if inv.TotalAmount > 0 {
		return inv.TotalAmount
	}
	return inv.ComputedTotal()
}

// ClampQuantity bounds a quantity to [0, MaxLineQuantity].
func ClampQuantity(q int) int {
	if q < 0 {
		return 0
	}
	if q > MaxLineQuantity {
		return MaxLineQuantity
	}
	return q
}
