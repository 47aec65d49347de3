package services

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sonqb/invoice-forecast/internal/models"
)

// maxParsedProducts caps how many product lines one invoice keeps.
const maxParsedProducts = 12

// minPriceCandidate filters out numbers too small to be VND prices
// (quantities, dates, line numbers).
const minPriceCandidate = 1000

// InvoiceParser turns extracted invoice text into a structured invoice by
// matching lines against the product catalog and pulling quantities and
// price candidates out of each matching line.
type InvoiceParser struct {
	catalog      *Catalog
	numberRe     *regexp.Regexp
	multiplierRe *regexp.Regexp
	unitRe       *regexp.Regexp
	whitespaceRe *regexp.Regexp
	invoiceNoRe  *regexp.Regexp
}

// NewInvoiceParser creates a parser bound to a catalog.
func NewInvoiceParser(catalog *Catalog) *InvoiceParser {
	return &InvoiceParser{
		catalog: catalog,
		// Grouped thousands (25.000 / 25,000) or plain digit runs.
		numberRe: regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})+|\d+`),
		// Multiplier notation: x5, ×3, *2.
		multiplierRe: regexp.MustCompile(`(?:x|×|\*)\s*(\d{1,3})`),
		// Quantity followed by a unit word.
		unitRe: regexp.MustCompile(`(\d{1,3})\s*(?:pcs|chai|hop|kg|sp|unit|units|box|thung|ly|goi|bich|dong)`),
		whitespaceRe: regexp.MustCompile(`\s+`),
		invoiceNoRe:  regexp.MustCompile(`(?i)(?:invoice|hoa\s*don|so)\s*(?:no\.?|#|:)?\s*([A-Z0-9][A-Z0-9-]{3,})`),
	}
}

// Parse builds an invoice from extracted text. It never fails: when no
// catalog product can be matched it falls back to the store's leading
// catalog items so the forecast path always has something to work with.
func (p *InvoiceParser) Parse(text string, confidence float64) *models.Invoice {
	products, storeCounts := p.extractProducts(text)
	storeKey := p.catalog.DetectStore(text)

	if storeKey == "" && len(storeCounts) > 0 {
		best, bestCount := "", 0
		for key, count := range storeCounts {
			if count > bestCount || (count == bestCount && key < best) {
				best, bestCount = key, count
			}
		}
		storeKey = best
	}

	if len(products) == 0 {
		if storeKey == "" {
			storeKey = "son"
		}
		for _, cp := range p.catalog.FallbackProducts(storeKey, 3) {
			id := cp.ID
			products = append(products, models.ProductLine{
				ProductID:   &id,
				ProductName: cp.Name,
				Quantity:    1,
				UnitPrice:   cp.Price,
				LineTotal:   cp.Price,
			})
		}
	}

	total := 0.0
	for _, line := range products {
		total += line.LineTotal
	}

	return &models.Invoice{
		InvoiceID:           p.invoiceID(text),
		StoreName:           p.catalog.StoreName(storeKey),
		StoreKey:            storeKey,
		Products:            products,
		TotalAmount:         total,
		DetectionConfidence: confidence,
		ExtractedText:       text,
		Date:                time.Now(),
	}
}

// extractProducts scans every text line for catalog product names and
// aggregates quantities and prices per product.
func (p *InvoiceParser) extractProducts(text string) ([]models.ProductLine, map[string]int) {
	type aggregated struct {
		line models.ProductLine
	}
	byID := map[string]*aggregated{}
	storeCounts := map[string]int{}
	var order []string

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(p.whitespaceRe.ReplaceAllString(rawLine, " "))
		if line == "" {
			continue
		}
		normalized := NormalizeText(line)

		for _, entry := range p.catalog.index {
			if entry.Normalized == "" || !strings.Contains(normalized, entry.Normalized) {
				continue
			}
			storeCounts[entry.StoreKey]++

			agg, ok := byID[entry.Product.ID]
			if !ok {
				id := entry.Product.ID
				agg = &aggregated{
					line: models.ProductLine{
						ProductID:   &id,
						ProductName: entry.Product.Name,
						UnitPrice:   entry.Product.Price,
					},
				}
				byID[id] = agg
				order = append(order, id)
			}

			if qty := p.extractQuantity(line); qty > 0 {
				agg.line.Quantity = models.ClampQuantity(agg.line.Quantity + qty)
			}

			prices := p.extractPriceCandidates(line)
			if len(prices) > 0 {
				unit := prices[0] // smallest candidate
				if unit > 0 && unit < agg.line.UnitPrice*5 {
					agg.line.UnitPrice = unit
				}
				lineTotal := prices[len(prices)-1] // largest candidate
				if estimate := agg.line.UnitPrice * float64(agg.line.Quantity); estimate > lineTotal {
					lineTotal = estimate
				}
				if lineTotal > agg.line.LineTotal {
					agg.line.LineTotal = lineTotal
				}
			}
		}
	}

	products := make([]models.ProductLine, 0, len(byID))
	for _, id := range order {
		line := byID[id].line
		if line.Quantity <= 0 {
			line.Quantity = 1
		}
		if line.UnitPrice <= 0 {
			price := p.catalog.PriceFor(id, line.ProductName)
			if price <= 0 {
				price = 10000
			}
			line.UnitPrice = price
		}
		if estimate := line.UnitPrice * float64(line.Quantity); estimate > line.LineTotal {
			line.LineTotal = estimate
		}
		products = append(products, line)
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].LineTotal > products[j].LineTotal
	})
	if len(products) > maxParsedProducts {
		products = products[:maxParsedProducts]
	}
	return products, storeCounts
}

// extractQuantity pulls a count out of a line: multiplier notation first,
// then quantity-with-unit, then any plausible small number (1-500).
func (p *InvoiceParser) extractQuantity(line string) int {
	lower := strings.ToLower(line)

	if m := p.multiplierRe.FindStringSubmatch(lower); m != nil {
		if qty, err := strconv.Atoi(m[1]); err == nil {
			return qty
		}
	}
	if m := p.unitRe.FindStringSubmatch(lower); m != nil {
		if qty, err := strconv.Atoi(m[1]); err == nil {
			return qty
		}
	}
	for _, v := range p.extractNumbers(line) {
		if v > 0 && v <= 500 {
			return int(v)
		}
	}
	return 0
}

// extractPriceCandidates returns the plausible prices on a line, ascending.
func (p *InvoiceParser) extractPriceCandidates(line string) []float64 {
	var prices []float64
	for _, v := range p.extractNumbers(line) {
		if v >= minPriceCandidate {
			prices = append(prices, v)
		}
	}
	sort.Float64s(prices)
	return prices
}

// extractNumbers parses every numeric token, collapsing thousands
// separators ("25.000" -> 25000).
func (p *InvoiceParser) extractNumbers(line string) []float64 {
	var values []float64
	for _, match := range p.numberRe.FindAllString(line, -1) {
		clean := strings.NewReplacer(".", "", ",", "").Replace(match)
		if clean == "" {
			continue
		}
		if v, err := strconv.ParseFloat(clean, 64); err == nil {
			values = append(values, v)
		}
	}
	return values
}

// invoiceID reuses a number printed on the invoice when one is present,
// otherwise generates one.
func (p *InvoiceParser) invoiceID(text string) string {
	if m := p.invoiceNoRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return fmt.Sprintf("INV_%s", strings.ToUpper(uuid.NewString()[:8]))
}
