package forecast

import (
	"math/rand"
	"time"

	"github.com/sonqb/invoice-forecast/internal/models"
)

// paddingStep is how far back each synthetic padding record is dated
// relative to the previous oldest record.
const paddingStep = 7 * 24 * time.Hour

// jitter bounds for synthetic padding quantities. Replaying the oldest
// record verbatim would feed the model a degenerate constant sequence.
const (
	jitterLow  = 0.8
	jitterHigh = 1.2
)

// BuildWindow assembles exactly w feature vectors from an oldest-first
// invoice history. With enough history the most recent w records are used;
// short histories are padded by replaying the earliest record with
// multiplicative jitter. The rng is injected so callers can make padding
// deterministic.
func BuildWindow(history []*models.Invoice, w int, rng *rand.Rand) []Vector {
	padded := PadHistory(history, w, rng)
	window := padded[len(padded)-w:]

	vectors := make([]Vector, w)
	for i, inv := range window {
		vectors[i] = FromInvoice(inv)
	}
	return vectors
}

// PadHistory returns an oldest-first history of at least w records,
// synthesizing padding records at the front when fewer than w exist. The
// input slice is never mutated. Padding never zero-fills: zero quantities
// would corrupt the learned quantity scale.
func PadHistory(history []*models.Invoice, w int, rng *rand.Rand) []*models.Invoice {
	out := make([]*models.Invoice, len(history))
	copy(out, history)

	if len(out) == 0 {
		out = []*models.Invoice{seedInvoice(time.Now())}
	}

	for len(out) < w {
		oldest := out[0]
		clone := cloneInvoice(oldest)
		clone.Date = oldest.Date.Add(-paddingStep)

		for i := range clone.Products {
			factor := jitterLow + rng.Float64()*(jitterHigh-jitterLow)
			q := int(float64(clone.Products[i].Quantity) * factor)
			if q < 1 {
				q = 1
			}
			clone.Products[i].Quantity = q
			clone.Products[i].LineTotal = float64(q) * clone.Products[i].UnitPrice
		}
		clone.TotalAmount = clone.ComputedTotal()

		out = append([]*models.Invoice{clone}, out...)
	}
	return out
}

// seedInvoice synthesizes a single plausible record for the empty-history
// case, with non-zero quantity and price.
func seedInvoice(now time.Time) *models.Invoice {
	return &models.Invoice{
		InvoiceID: "SEED",
		StoreName: "Unknown Store",
		Products: []models.ProductLine{
			{
				ProductName: "Product A",
				Quantity:    DefaultQuantity,
				UnitPrice:   DefaultPrice,
				LineTotal:   DefaultQuantity * DefaultPrice,
			},
		},
		TotalAmount: DefaultQuantity * DefaultPrice,
		Date:        now,
	}
}

func cloneInvoice(inv *models.Invoice) *models.Invoice {
	clone := *inv
	clone.Products = make([]models.ProductLine, len(inv.Products))
	copy(clone.Products, inv.Products)
	return &clone
}
