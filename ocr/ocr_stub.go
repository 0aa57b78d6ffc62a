//go:build !ocr

// Package ocr is the boundary to the optical-character-recognition pipeline
// used for photographed and scanned receipts.
//
// This stub is compiled when the "ocr" build tag is not set. All operations
// return ErrOCRNotEnabled. Build with -tags ocr (and Tesseract installed)
// for the real implementation.
package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR support is not compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled: rebuild with -tags ocr and ensure Tesseract is installed")

// Client is a stub that returns ErrOCRNotEnabled for all operations.
type Client struct{}

// New returns an error indicating OCR support is not compiled in.
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op on the stub.
func (c *Client) Close() error {
	return nil
}

// RecognizeImage returns ErrOCRNotEnabled.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}

// SetLanguage returns ErrOCRNotEnabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// SetPageSegMode returns ErrOCRNotEnabled.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return ErrOCRNotEnabled
}
