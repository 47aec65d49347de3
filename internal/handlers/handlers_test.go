package handlers

import (
	"encoding/json"
	"io"
	"math/rand"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonqb/invoice-forecast/internal/config"
	"github.com/sonqb/invoice-forecast/internal/forecast"
	"github.com/sonqb/invoice-forecast/internal/services"
)

const testCatalogJSON = `{
	"son": [
		{"id": "s1", "name": "Cà Phê Sữa", "price": 25000},
		{"id": "s2", "name": "Trà Đào", "price": 20000}
	]
}`

// newTestApp wires a Fiber app with in-memory dependencies only: no
// database, no OCR, no archive.
func newTestApp(t *testing.T) (*fiber.App, *services.HistoryBuffer) {
	t.Helper()

	catalogPath := filepath.Join(t.TempDir(), "catalogs.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalogJSON), 0o644))
	catalog, err := services.LoadCatalog(catalogPath)
	require.NoError(t, err)

	cfg := &config.Config{}
	history := services.NewHistoryBuffer(300)
	parser := services.NewInvoiceParser(catalog)
	svc := forecast.NewService(
		forecast.NewUntrained(len(forecast.CanonicalSchema)),
		forecast.NewNormalizer(false),
		forecast.DefaultOptions(),
		rand.New(rand.NewSource(1)),
	)

	h := New(cfg, nil, svc, history, parser, nil, nil)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	api := app.Group("/api")
	api.Post("/model1/detect", h.DetectInvoice)
	api.Post("/model2/forecast", h.Forecast)
	api.Get("/history", h.GetHistory)
	api.Get("/history/database", h.GetDatabaseHistory)
	api.Post("/history/clear", h.ClearHistory)
	api.Get("/statistics", h.GetStatistics)
	api.Get("/models/info", h.GetModelsInfo)

	return app, history
}

func decodeBody(t *testing.T, resp io.Reader) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp).Decode(&body))
	return body
}

func TestForecastWithManualProducts(t *testing.T) {
	app, history := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/model2/forecast",
		strings.NewReader(`{"products": "Cà Phê Sữa - 30\nTrà Đào - 50"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])
	assert.GreaterOrEqual(t, body["predicted_quantity"].(float64), 10.0)
	assert.Contains(t, []interface{}{"increasing", "decreasing", "stable"}, body["trend"])
	assert.NotEmpty(t, body["output1"])
	assert.NotEmpty(t, body["recommendation_text"])
	assert.Equal(t, 1.0, body["history_count"])

	assert.Equal(t, 1, history.Len())
}

func TestForecastWithEmptyHistory(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/model2/forecast", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 0.0, body["history_count"])
	assert.GreaterOrEqual(t, body["predicted_quantity"].(float64), 10.0)
}

func TestForecastRejectsInvalidManualText(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/model2/forecast",
		strings.NewReader(`{"products": "no separators here"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "no valid products found", body["message"])
}

func TestDetectWithoutFile(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/model1/detect", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHistoryRoundTrip(t *testing.T) {
	app, _ := newTestApp(t)

	// Seed one invoice through the forecast route.
	req := httptest.NewRequest("POST", "/api/model2/forecast",
		strings.NewReader(`{"products": "Cà Phê Sữa - 30"}`))
	req.Header.Set("Content-Type", "application/json")
	_, err := app.Test(req)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/history", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp.Body)
	assert.Equal(t, 1.0, body["count"])

	resp, err = app.Test(httptest.NewRequest("POST", "/api/history/clear", nil))
	require.NoError(t, err)
	body = decodeBody(t, resp.Body)
	assert.Equal(t, 1.0, body["cleared"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/history", nil))
	require.NoError(t, err)
	body = decodeBody(t, resp.Body)
	assert.Equal(t, 0.0, body["count"])
}

func TestDatabaseRoutesUnavailableWithoutDB(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/history/database", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/statistics", nil))
	require.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)
}

func TestModelsInfo(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/models/info", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])

	model1 := body["model1"].(map[string]interface{})
	assert.Equal(t, false, model1["available"])

	model2 := body["model2"].(map[string]interface{})
	assert.Equal(t, "untrained", model2["state"])
	assert.Equal(t, 10.0, model2["window_length"])
}
