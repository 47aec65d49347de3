package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogJSON = `{
	"son": [
		{"id": "s1", "name": "Cà Phê Sữa", "price": 25000},
		{"id": "s2", "name": "Trà Đào", "price": 20000},
		{"id": "s3", "name": "Bánh Mì", "price": 15000},
		{"id": "s4", "name": "Nước Cam", "price": 18000}
	],
	"tung": [
		{"id": "t1", "name": "Phở Bò", "price": 45000},
		{"id": "t2", "name": "Bún Chả", "price": 40000}
	]
}`

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalogs.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogJSON), 0o644))
	return path
}

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := LoadCatalog(writeTestCatalog(t))
	require.NoError(t, err)
	return c
}

func TestLoadCatalogMissingFileStillUsable(t *testing.T) {
	c, err := LoadCatalog("does/not/exist.json")
	assert.Error(t, err)
	require.NotNil(t, c)

	assert.Equal(t, "Quán Sơn", c.StoreName("son"))
	assert.Empty(t, c.FallbackProducts("son", 3))
}

func TestCatalogStoreName(t *testing.T) {
	c := loadTestCatalog(t)
	assert.Equal(t, "Quán Sơn", c.StoreName("son"))
	assert.Equal(t, "Quán Tùng", c.StoreName("tung"))
	assert.Equal(t, "Unknown Store", c.StoreName("nowhere"))
}

func TestCatalogDetectStore(t *testing.T) {
	c := loadTestCatalog(t)

	assert.Equal(t, "son", c.DetectStore("HOA DON\nQuán Sơn\nCà Phê Sữa x2"))
	// OCR often drops diacritics entirely.
	assert.Equal(t, "tung", c.DetectStore("quan tung - 123 Lê Lợi"))
	assert.Equal(t, "", c.DetectStore("no store mentioned"))
}

func TestCatalogFallbackProducts(t *testing.T) {
	c := loadTestCatalog(t)

	products := c.FallbackProducts("son", 3)
	require.Len(t, products, 3)
	assert.Equal(t, "Cà Phê Sữa", products[0].Name)

	assert.Len(t, c.FallbackProducts("tung", 10), 2)
	assert.Empty(t, c.FallbackProducts("unknown", 3))
}

func TestCatalogPriceFor(t *testing.T) {
	c := loadTestCatalog(t)

	assert.Equal(t, 25000.0, c.PriceFor("s1", ""))
	// Name lookup ignores tone marks (the stroked đ survives folding).
	assert.Equal(t, 20000.0, c.PriceFor("", "TRÀ đào"))
	assert.Equal(t, 25000.0, c.PriceFor("", "ca phe sua"))
	assert.Equal(t, 0.0, c.PriceFor("", "unlisted"))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "ca phe sua", NormalizeText("Cà Phê Sữa"))
	assert.Equal(t, NormalizeText("TRÀ ĐÀO"), NormalizeText("trà đào"))
	assert.Equal(t, "abc 123", NormalizeText("abc 123"))
}
