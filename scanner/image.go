package scanner

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// Image holds recovered pixel data for one embedded image stream, in a shape
// an OCR engine can consume. JPEG streams keep their compressed bytes; fax
// and raw streams are decoded to grayscale pixels and wrapped as PNG.
type Image struct {
	Width            int
	Height           int
	BitsPerComponent int
	JPEG             []byte // set for DCT streams, used verbatim
	Pixels           []byte // decoded pixel data otherwise
}

// RecoverImage decodes the image stream described by rec. Only grayscale and
// bi-level images are recovered; anything else returns an error and is
// skipped by the caller.
func RecoverImage(buf []byte, rec StreamRecord) (*Image, error) {
	if !rec.Image {
		return nil, fmt.Errorf("stream is not an image")
	}
	if rec.Width <= 0 || rec.Height <= 0 {
		return nil, fmt.Errorf("image missing geometry")
	}

	img := &Image{
		Width:            rec.Width,
		Height:           rec.Height,
		BitsPerComponent: rec.BitsPerComponent,
	}

	if rec.Filter == FilterDCT {
		img.JPEG = buf[rec.Start:rec.End]
		return img, nil
	}

	data, err := Decode(buf, rec)
	if err != nil {
		return nil, fmt.Errorf("decode image stream: %w", err)
	}
	img.Pixels = data

	if rec.Filter == FilterCCITT {
		img.BitsPerComponent = 1
	}

	return img, nil
}

// Bytes returns the image in a container format OCR engines accept: the
// original JPEG for DCT streams, a PNG encoding of the grayscale pixels
// otherwise.
func (img *Image) Bytes() ([]byte, error) {
	if img.JPEG != nil {
		return img.JPEG, nil
	}

	var gray *image.Gray
	switch img.BitsPerComponent {
	case 1:
		gray = img.bilevelGray()
	case 8:
		expected := img.Width * img.Height
		if len(img.Pixels) < expected {
			return nil, fmt.Errorf("insufficient pixel data: got %d, expected %d", len(img.Pixels), expected)
		}
		gray = image.NewGray(image.Rect(0, 0, img.Width, img.Height))
		copy(gray.Pix, img.Pixels[:expected])
	default:
		return nil, fmt.Errorf("unsupported bits per component: %d", img.BitsPerComponent)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// bilevelGray expands 1-bit rows (packed MSB first, each row byte-aligned)
// into 8-bit grayscale. Set bits are black.
func (img *Image) bilevelGray() *image.Gray {
	gray := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
	rowBytes := (img.Width + 7) / 8

	for y := 0; y < img.Height; y++ {
		rowStart := y * rowBytes
		if rowStart >= len(img.Pixels) {
			break
		}
		for x := 0; x < img.Width; x++ {
			i := rowStart + x/8
			if i >= len(img.Pixels) {
				break
			}
			bit := img.Pixels[i] >> (7 - uint(x%8)) & 1
			v := byte(255)
			if bit == 1 {
				v = 0
			}
			gray.Pix[y*gray.Stride+x] = v
		}
	}

	return gray
}
