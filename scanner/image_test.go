package scanner

import (
	"bytes"
	"image/png"
	"testing"
)

// TestRecoverImageDCT verifies that JPEG streams keep their raw bytes
func TestRecoverImageDCT(t *testing.T) {
	buf := []byte("4 0 obj << /Subtype /Image /Width 2 /Height 2 /Filter /DCTDecode >> stream\n\xff\xd8\xff\xe0FAKE\nendstream")
	records, _ := Scan(buf)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	img, err := RecoverImage(buf, records[0])
	if err != nil {
		t.Fatalf("RecoverImage failed: %v", err)
	}
	if img.JPEG == nil {
		t.Fatal("expected JPEG bytes to be kept")
	}

	out, err := img.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if !bytes.Equal(out, img.JPEG) {
		t.Error("expected JPEG bytes returned verbatim")
	}
}

// TestRecoverImageNotImage verifies non-image streams are rejected
func TestRecoverImageNotImage(t *testing.T) {
	buf := []byte("4 0 obj << /Length 4 >> stream\nDATA\nendstream")
	records, _ := Scan(buf)
	if _, err := RecoverImage(buf, records[0]); err == nil {
		t.Fatal("expected error for non-image stream")
	}
}

// TestImageBytesGray verifies PNG wrapping of 8-bit grayscale pixels
func TestImageBytesGray(t *testing.T) {
	img := &Image{
		Width:            2,
		Height:           2,
		BitsPerComponent: 8,
		Pixels:           []byte{0, 85, 170, 255},
	}

	out, err := img.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != 2 || b.Dy() != 2 {
		t.Errorf("got %dx%d, want 2x2", b.Dx(), b.Dy())
	}
}

// TestImageBytesBilevel verifies 1-bit expansion with set bits black
func TestImageBytesBilevel(t *testing.T) {
	// One row of 8 pixels: 10100000
	img := &Image{
		Width:            8,
		Height:           1,
		BitsPerComponent: 1,
		Pixels:           []byte{0xA0},
	}

	out, err := img.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}

	r0, _, _, _ := decoded.At(0, 0).RGBA()
	r1, _, _, _ := decoded.At(1, 0).RGBA()
	if r0 != 0 {
		t.Error("expected set bit to render black")
	}
	if r1 == 0 {
		t.Error("expected clear bit to render white")
	}
}
