package filters

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"fmt"
	"io"
)

// Params holds decode parameters taken from a stream's header dictionary.
// The keys mirror the declaration names (Predictor, Columns, Colors,
// BitsPerComponent).
type Params map[string]int

// FlateDecode decompresses a Flate-filtered byte range. The declared filter
// name alone does not guarantee which wrapping convention the producing tool
// used, so decompression is attempted twice: first assuming a zlib envelope
// (2-byte header plus checksum trailer), then assuming bare deflate data.
// Only when both attempts fail is an error returned; callers are expected to
// drop the stream rather than abort extraction.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	out, zerr := zlibInflate(data)
	if zerr != nil {
		var rerr error
		out, rerr = rawInflate(data)
		if rerr != nil {
			return nil, fmt.Errorf("flate decode failed: zlib: %v; raw deflate: %v", zerr, rerr)
		}
	}

	if p := params["Predictor"]; p > 1 {
		var err error
		out, err = unpredict(out, p, params)
		if err != nil {
			return nil, fmt.Errorf("predictor %d: %w", p, err)
		}
	}

	return out, nil
}

// zlibInflate inflates data carrying the zlib header and trailer.
func zlibInflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rawInflate inflates bare deflate data with no header or trailer.
func rawInflate(data []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, fr); err != nil {
		return nil, err
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("no deflate data recovered")
	}
	return buf.Bytes(), nil
}

// unpredict reverses the row predictor applied before compression.
// Predictor 2 is TIFF horizontal differencing; 10-15 are PNG row filters
// where every row starts with a filter-type byte.
func unpredict(data []byte, predictor int, params Params) ([]byte, error) {
	columns := paramOr(params, "Columns", 1)
	colors := paramOr(params, "Colors", 1)
	bpc := paramOr(params, "BitsPerComponent", 8)

	if bpc != 8 {
		return nil, fmt.Errorf("only 8 bits per component supported, got %d", bpc)
	}

	switch {
	case predictor == 2:
		return unpredictTIFF(data, columns, colors)
	case predictor >= 10 && predictor <= 15:
		return unpredictPNG(data, columns, colors)
	default:
		return nil, fmt.Errorf("unsupported predictor")
	}
}

func unpredictTIFF(data []byte, columns, colors int) ([]byte, error) {
	rowSize := columns * colors
	if rowSize <= 0 || len(data)%rowSize != 0 {
		return nil, fmt.Errorf("data size %d not a multiple of row size %d", len(data), rowSize)
	}

	out := make([]byte, len(data))
	for row := 0; row < len(data)/rowSize; row++ {
		base := row * rowSize
		for col := 0; col < rowSize; col++ {
			i := base + col
			if col < colors {
				out[i] = data[i]
			} else {
				out[i] = data[i] + out[i-colors]
			}
		}
	}
	return out, nil
}

func unpredictPNG(data []byte, columns, colors int) ([]byte, error) {
	rowLen := columns * colors
	rowSize := rowLen + 1 // leading filter-type byte
	if rowLen <= 0 || len(data)%rowSize != 0 {
		return nil, fmt.Errorf("data size %d not a multiple of row size %d", len(data), rowSize)
	}

	rows := len(data) / rowSize
	out := make([]byte, rows*rowLen)

	for row := 0; row < rows; row++ {
		ft := data[row*rowSize]
		src := data[row*rowSize+1 : (row+1)*rowSize]
		dst := out[row*rowLen : (row+1)*rowLen]

		for i := range src {
			var left, up, upLeft byte
			if i >= colors {
				left = dst[i-colors]
			}
			if row > 0 {
				up = out[(row-1)*rowLen+i]
				if i >= colors {
					upLeft = out[(row-1)*rowLen+i-colors]
				}
			}

			switch ft {
			case 0: // None
				dst[i] = src[i]
			case 1: // Sub
				dst[i] = src[i] + left
			case 2: // Up
				dst[i] = src[i] + up
			case 3: // Average
				dst[i] = src[i] + byte((int(left)+int(up))/2)
			case 4: // Paeth
				dst[i] = src[i] + paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("row %d: unknown filter type %d", row, ft)
			}
		}
	}

	return out, nil
}

// paeth selects the neighbor closest to the linear prediction, as defined by
// the PNG specification.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func paramOr(params Params, key string, def int) int {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
