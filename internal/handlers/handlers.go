package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sonqb/invoice-forecast/internal/config"
	"github.com/sonqb/invoice-forecast/internal/database"
	"github.com/sonqb/invoice-forecast/internal/forecast"
	"github.com/sonqb/invoice-forecast/internal/services"
)

// Handler holds all handler dependencies. The database, extractor and
// archive may be nil; handlers degrade to in-memory behavior when they are.
type Handler struct {
	cfg       *config.Config
	db        *database.DB
	forecasts *forecast.Service
	history   *services.HistoryBuffer
	parser    *services.InvoiceParser
	extractor *services.TextExtractor
	archive   *services.ImageArchive
}

// New creates a new Handler instance.
func New(cfg *config.Config, db *database.DB, forecasts *forecast.Service,
	history *services.HistoryBuffer, parser *services.InvoiceParser,
	extractor *services.TextExtractor, archive *services.ImageArchive) *Handler {
	return &Handler{
		cfg:       cfg,
		db:        db,
		forecasts: forecasts,
		history:   history,
		parser:    parser,
		extractor: extractor,
		archive:   archive,
	}
}

// ErrorHandler is a custom error handler for Fiber.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(APIResponse{
		Success: false,
		Message: message,
	})
}

// APIResponse is a standard API response structure.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Success returns a successful response.
func Success(c *fiber.Ctx, data interface{}) error {
	return c.JSON(APIResponse{
		Success: true,
		Data:    data,
	})
}

// Error returns an error response.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
	})
}
