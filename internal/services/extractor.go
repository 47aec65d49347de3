//go:build !windows

package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TextExtractor wraps Tesseract for invoice photos. Invoices from the
// partner stores are printed in Vietnamese, so both Vietnamese and
// English traineddata are loaded.
type TextExtractor struct {
	client *gosseract.Client
}

// Extraction is the raw OCR output before parsing.
type Extraction struct {
	Text       string
	Confidence float64
}

// NewTextExtractor creates an extractor. Fails when the Tesseract
// installation lacks the required language data.
func NewTextExtractor() (*TextExtractor, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("vie", "eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// PSM 6: one uniform block of text, which fits printed invoices.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	return &TextExtractor{client: client}, nil
}

// Extract runs OCR over raw image bytes.
func (e *TextExtractor) Extract(imageBytes []byte) (*Extraction, error) {
	tmpFile, err := os.CreateTemp("", "invoice-*.img")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(imageBytes); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	tmpFile.Close()

	if err := e.client.SetImage(tmpFile.Name()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	return &Extraction{
		Text:       text,
		Confidence: estimateConfidence(text),
	}, nil
}

// Close releases the Tesseract client.
func (e *TextExtractor) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// estimateConfidence scores OCR output by the share of lines that carry
// both letters and digits, which is what usable invoice lines look like.
func estimateConfidence(text string) float64 {
	lines := strings.Split(text, "\n")
	total, usable := 0, 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		total++
		hasLetter, hasDigit := false, false
		for _, r := range line {
			switch {
			case r >= '0' && r <= '9':
				hasDigit = true
			case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r > 127:
				hasLetter = true
			}
		}
		if hasLetter && hasDigit {
			usable++
		}
	}
	if total == 0 {
		return 0
	}
	score := 0.5 + 0.5*float64(usable)/float64(total)
	if score > 0.99 {
		score = 0.99
	}
	return score
}
