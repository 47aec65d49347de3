package forecast

import (
	"github.com/sonqb/invoice-forecast/internal/models"
)

// CanonicalSchema is the fixed feature order every vector follows. The order
// matters: dimension 0 (quantity) is the model's prediction target, and a
// fitted Normalizer is only valid for vectors built against this schema.
var CanonicalSchema = []string{
	"quantity",
	"price",
	"total_amount",
	"num_products",
	"max_product_qty",
}

// Placeholder values used when a record is missing a field outright. These
// keep malformed upstream data from ever crashing the forecast path; they
// trade accuracy for availability.
const (
	DefaultQuantity = 100
	DefaultPrice    = 50000
)

// Vector is a fixed-order numeric feature tuple for one historical record.
type Vector []float64

// Reconcile maps a loosely keyed record onto the target schema, producing a
// vector of exactly len(schema) values. Missing fields are filled with
// computed or default substitutes; it never fails.
func Reconcile(record map[string]float64, schema []string) Vector {
	v := make(Vector, len(schema))
	for i, field := range schema {
		if val, ok := record[field]; ok {
			v[i] = val
			continue
		}
		switch field {
		case "quantity":
			v[i] = DefaultQuantity
		case "price":
			v[i] = DefaultPrice
		case "total_amount":
			q, qok := record["quantity"]
			p, pok := record["price"]
			if qok && pok {
				v[i] = q * p
			} else {
				v[i] = DefaultQuantity * DefaultPrice
			}
		case "num_products":
			v[i] = 1
		case "max_product_qty":
			if q, ok := record["quantity"]; ok {
				v[i] = q
			} else {
				v[i] = DefaultQuantity
			}
		default:
			v[i] = 0
		}
	}
	return v
}

// FromInvoice derives the canonical feature vector from an invoice record.
func FromInvoice(inv *models.Invoice) Vector {
	record := map[string]float64{}

	quantity := float64(inv.TotalQuantity())
	if quantity > 0 {
		record["quantity"] = quantity
	}

	total := inv.EffectiveTotal()
	if total > 0 {
		record["total_amount"] = total
	}

	// Average unit price: prefer total/quantity, fall back to the mean of
	// the listed unit prices.
	if quantity > 0 && total > 0 {
		record["price"] = total / quantity
	} else if len(inv.Products) > 0 {
		sum := 0.0
		for _, p := range inv.Products {
			sum += p.UnitPrice
		}
		if avg := sum / float64(len(inv.Products)); avg > 0 {
			record["price"] = avg
		}
	}

	if n := len(inv.Products); n > 0 {
		record["num_products"] = float64(n)
	}
	if m := inv.MaxProductQuantity(); m > 0 {
		record["max_product_qty"] = float64(m)
	}

	return Reconcile(record, CanonicalSchema)
}

// Quantity returns dimension 0 of the vector.
func (v Vector) Quantity() float64 {
	if len(v) == 0 {
		return 0
	}
	return v[0]
}
