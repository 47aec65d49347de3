package services

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CatalogProduct is one known product in a store's catalog.
type CatalogProduct struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// catalogEntry is a product indexed for diacritics-insensitive matching.
type catalogEntry struct {
	StoreKey   string
	Product    CatalogProduct
	Normalized string
}

// Catalog holds the per-store product catalogs used to recognize product
// names inside extracted invoice text. Vietnamese product names carry
// diacritics that OCR frequently mangles, so matching happens on a
// folded form.
type Catalog struct {
	products   map[string][]CatalogProduct
	index      []catalogEntry
	storeNames map[string]string
}

// defaultStoreNames maps store keys to display names.
var defaultStoreNames = map[string]string{
	"son":  "Quán Sơn",
	"tung": "Quán Tùng",
}

// LoadCatalog reads the product catalog JSON ({store_key: [products]}).
// A missing or unreadable file yields an empty catalog rather than an
// error: extraction still works, it just cannot match known products.
func LoadCatalog(path string) (*Catalog, error) {
	c := &Catalog{
		products:   map[string][]CatalogProduct{},
		storeNames: defaultStoreNames,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read catalog: %w", err)
	}
	if err := json.Unmarshal(data, &c.products); err != nil {
		return c, fmt.Errorf("decode catalog: %w", err)
	}

	for storeKey, products := range c.products {
		for _, p := range products {
			c.index = append(c.index, catalogEntry{
				StoreKey:   storeKey,
				Product:    p,
				Normalized: NormalizeText(p.Name),
			})
		}
	}
	return c, nil
}

// StoreName resolves a store key to its display name.
func (c *Catalog) StoreName(key string) string {
	if name, ok := c.storeNames[key]; ok {
		return name
	}
	return "Unknown Store"
}

// DetectStore looks for a store display name inside the extracted text.
func (c *Catalog) DetectStore(text string) string {
	normalized := NormalizeText(text)
	for key, name := range c.storeNames {
		if strings.Contains(normalized, NormalizeText(name)) {
			return key
		}
	}
	return ""
}

// FallbackProducts returns the first n catalog products for a store, used
// when nothing could be matched in the text.
func (c *Catalog) FallbackProducts(storeKey string, n int) []CatalogProduct {
	products := c.products[storeKey]
	if len(products) > n {
		products = products[:n]
	}
	return products
}

// PriceFor looks up a catalog price by product id, then by normalized name.
func (c *Catalog) PriceFor(productID, productName string) float64 {
	if productID != "" {
		for _, e := range c.index {
			if e.Product.ID == productID {
				return e.Product.Price
			}
		}
	}
	if productName != "" {
		normalized := NormalizeText(productName)
		for _, e := range c.index {
			if e.Normalized == normalized {
				return e.Product.Price
			}
		}
	}
	return 0
}

// NormalizeText lowercases and strips combining marks so that "Cà Phê Sữa"
// and "ca phe sua" compare equal.
func NormalizeText(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
