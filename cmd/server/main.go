package main

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/sonqb/invoice-forecast/internal/config"
	"github.com/sonqb/invoice-forecast/internal/database"
	"github.com/sonqb/invoice-forecast/internal/forecast"
	"github.com/sonqb/invoice-forecast/internal/handlers"
	"github.com/sonqb/invoice-forecast/internal/services"
)

func main() {
	// Load .env file if it exists
	godotenv.Load()

	cfg := config.Load()

	// The database is optional: detection and forecasting run in-memory
	// when it cannot be opened.
	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Printf("Warning: Failed to open database, running in-memory only: %v", err)
		db = nil
	} else {
		defer db.Close()
	}

	// Product catalog for invoice parsing. A missing catalog file still
	// yields a usable parser with fallback products.
	catalog, err := services.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Printf("Warning: Failed to load product catalog: %v", err)
	}
	parser := services.NewInvoiceParser(catalog)

	// Forecast service: trained artifact when present, deterministic
	// untrained model otherwise.
	opts := forecast.Options{
		Window:         cfg.WindowLength,
		Features:       cfg.FeatureCount,
		SlopeThreshold: cfg.SlopeThreshold,
		LogScale:       cfg.UseLogScale,
		Guard: forecast.GuardConfig{
			ErrorRatioThreshold: cfg.GuardThreshold,
			TrendUpFactor:       cfg.TrendUpFactor,
			TrendDownFactor:     cfg.TrendDownFactor,
			BaselineWeight:      cfg.BaselineWeight,
			RecentWeight:        cfg.RecentWeight,
			MinimumQuantity:     cfg.MinimumQuantity,
		},
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	forecastService := forecast.LoadService(cfg.ModelArtifactPath, opts, rng)
	log.Printf("Forecast model: %s (window %d)", forecastService.ModelState(), forecastService.Window())

	history := services.NewHistoryBuffer(cfg.HistoryCapacity)

	// Warm the in-memory history from persisted invoices.
	if db != nil {
		invoices, err := db.ListInvoices(context.Background(), cfg.HistoryCapacity, 0)
		if err != nil {
			log.Printf("Warning: Failed to load invoice history: %v", err)
		} else {
			// ListInvoices returns newest first; append oldest first.
			for i := len(invoices) - 1; i >= 0; i-- {
				history.Append(invoices[i])
			}
			log.Printf("Loaded %d invoice(s) into history", len(invoices))
		}
	}

	// OCR requires a local Tesseract install; detection routes degrade to
	// 503 without it.
	extractor, err := services.NewTextExtractor()
	if err != nil {
		log.Printf("Warning: OCR unavailable: %v", err)
		extractor = nil
	} else {
		defer extractor.Close()
	}

	// Optional S3-compatible archive for uploaded invoice images.
	var archive *services.ImageArchive
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		archive, err = services.NewImageArchive(
			cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3Region, cfg.S3UseSSL,
		)
		if err != nil {
			log.Printf("Warning: Failed to initialize image archive: %v", err)
			archive = nil
		} else if err := archive.EnsureBucket(context.Background()); err != nil {
			log.Printf("Warning: Failed to ensure archive bucket: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    20 * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	h := handlers.New(cfg, db, forecastService, history, parser, extractor, archive)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Model 1: invoice detection
	api.Post("/model1/detect", h.DetectInvoice)

	// Model 2: import quantity forecast
	api.Post("/model2/forecast", h.Forecast)

	// History and reporting
	api.Get("/history", h.GetHistory)
	api.Get("/history/database", h.GetDatabaseHistory)
	api.Post("/history/clear", h.ClearHistory)
	api.Get("/forecasts", h.GetForecasts)
	api.Get("/statistics", h.GetStatistics)
	api.Get("/models/info", h.GetModelsInfo)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
