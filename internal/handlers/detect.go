package handlers

import (
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// maxUploadSize caps invoice uploads at 16MB.
const maxUploadSize = 16 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
}

// DetectResponse is the payload returned after invoice detection.
type DetectResponse struct {
	Success           bool        `json:"success"`
	RecognizedText    string      `json:"recognized_text"`
	Confidence        float64     `json:"confidence"`
	Data              interface{} `json:"data"`
	TotalHistoryCount int         `json:"total_history_count"`
}

// DetectInvoice handles invoice image upload, OCR and parsing.
func (h *Handler) DetectInvoice(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "no file part in request")
	}
	if file.Filename == "" {
		return Error(c, fiber.StatusBadRequest, "no file selected")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return Error(c, fiber.StatusBadRequest, "unsupported file type. Supported: PNG, JPG, JPEG, GIF, WEBP, PDF")
	}
	if file.Size > maxUploadSize {
		return Error(c, fiber.StatusBadRequest, "file too large. Maximum size is 16MB")
	}

	if h.extractor == nil {
		return Error(c, fiber.StatusServiceUnavailable, "OCR is not available")
	}

	src, err := file.Open()
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read file")
	}
	defer src.Close()

	imageBytes, err := io.ReadAll(src)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read file")
	}

	extraction, err := h.extractor.Extract(imageBytes)
	if err != nil {
		log.Printf("OCR failed for %s: %v", file.Filename, err)
		return Error(c, fiber.StatusInternalServerError, "OCR processing failed")
	}

	invoice := h.parser.Parse(extraction.Text, extraction.Confidence)

	// Archiving and persistence are best effort; detection still succeeds
	// without them.
	if h.archive != nil {
		contentType := file.Header.Get("Content-Type")
		if _, err := h.archive.Store(c.Context(), invoice.InvoiceID, file.Filename, contentType, imageBytes); err != nil {
			log.Printf("Warning: Failed to archive invoice image %s: %v", invoice.InvoiceID, err)
		}
	}
	if h.db != nil {
		if _, err := h.db.SaveInvoice(c.Context(), invoice); err != nil {
			log.Printf("Warning: Failed to save invoice %s: %v", invoice.InvoiceID, err)
		}
	}

	h.history.Append(invoice)

	return c.JSON(DetectResponse{
		Success:           true,
		RecognizedText:    extraction.Text,
		Confidence:        extraction.Confidence,
		Data:              invoice,
		TotalHistoryCount: h.history.Len(),
	})
}
