//go:build windows

package services

import "errors"

// TextExtractor is not available on Windows; run the service in Docker.
type TextExtractor struct{}

// Extraction is the raw OCR output before parsing.
type Extraction struct {
	Text       string
	Confidence float64
}

// NewTextExtractor always fails on Windows.
func NewTextExtractor() (*TextExtractor, error) {
	return nil, errors.New("OCR is not available on Windows - run in Docker container")
}

// Extract always fails on Windows.
func (e *TextExtractor) Extract(imageBytes []byte) (*Extraction, error) {
	return nil, errors.New("OCR is not available on Windows")
}

// Close releases nothing on Windows.
func (e *TextExtractor) Close() error { return nil }
