//go:build !ocr

package ocr

import (
	"errors"
	"testing"
)

func TestStubNew(t *testing.T) {
	client, err := New()
	if client != nil {
		t.Error("expected nil client from stub")
	}
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("expected ErrOCRNotEnabled, got %v", err)
	}
}

func TestStubRecognizeImage(t *testing.T) {
	var c Client
	text, err := c.RecognizeImage([]byte{0x89, 'P', 'N', 'G'})
	if text != "" {
		t.Errorf("expected empty text, got %q", text)
	}
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("expected ErrOCRNotEnabled, got %v", err)
	}
}

func TestStubSetters(t *testing.T) {
	var c Client
	if err := c.SetLanguage("eng+swe"); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("SetLanguage: expected ErrOCRNotEnabled, got %v", err)
	}
	if err := c.SetPageSegMode(PSM_SPARSE_TEXT); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("SetPageSegMode: expected ErrOCRNotEnabled, got %v", err)
	}
	if err := new(Client).Close(); err != nil {
		t.Errorf("Close: expected nil, got %v", err)
	}
}
