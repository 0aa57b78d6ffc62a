// Package content walks text-showing regions of a content stream and
// reconstructs the words and lines they render. Word boundaries are expected
// to arrive either as spaces inside literal strings or as kerning gaps in
// array-show instructions; the assembler synthesizes a space for any gap
// that crosses the kerning threshold.
package content

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/kvittolabs/kvitto/cmap"
	"github.com/kvittolabs/kvitto/core"
)

// DefaultKerningThreshold is the adjustment value, in text-space units,
// beyond which an array-show gap is read as a word boundary. Adjustments
// more negative than this synthesize one space.
const DefaultKerningThreshold = -100

var (
	kwBT = []byte("BT")
	kwET = []byte("ET")
)

// HasTextRegion reports whether data contains at least one begin-text
// instruction, the cheap pre-check for whether a stream is worth
// tokenizing.
func HasTextRegion(data []byte) bool {
	return findKeyword(data, kwBT, 0) >= 0
}

// Regions returns every substring delimited by a begin-text / end-text pair,
// in document order. An unterminated region is dropped.
func Regions(data []byte) [][]byte {
	var regions [][]byte

	pos := 0
	for {
		bt := findKeyword(data, kwBT, pos)
		if bt < 0 {
			break
		}
		et := findKeyword(data, kwET, bt+len(kwBT))
		if et < 0 {
			break
		}
		regions = append(regions, data[bt+len(kwBT):et])
		pos = et + len(kwET)
	}

	return regions
}

// ExtractText assembles the text of every region in data, joined by single
// newlines, using the merged glyph map. The second return reports whether
// any text region was present at all. Parse errors inside a region are
// absorbed: the region contributes whatever was decoded before the error.
func ExtractText(data []byte, m cmap.Map, threshold float64) (string, bool) {
	regions := Regions(data)
	if len(regions) == 0 {
		return "", false
	}

	parts := make([]string, 0, len(regions))
	for _, region := range regions {
		parts = append(parts, Assemble(region, m, threshold))
	}
	return strings.Join(parts, "\n"), true
}

// Assemble decodes the text-showing instructions of one region into a
// single string, in instruction order.
func Assemble(region []byte, m cmap.Map, threshold float64) string {
	ops, _ := NewParser(region).Parse()

	var out bytes.Buffer
	for _, op := range ops {
		switch op.Operator {
		case "Tj", "'":
			if len(op.Operands) >= 1 {
				showOperand(&out, op.Operands[len(op.Operands)-1], m)
			}
		case "\"":
			if len(op.Operands) == 3 {
				showOperand(&out, op.Operands[2], m)
			}
		case "TJ":
			if len(op.Operands) == 1 {
				if arr, ok := op.Operands[0].(core.Array); ok {
					showArray(&out, arr, m, threshold)
				}
			}
		}
	}

	return out.String()
}

// showOperand appends the decoded text of a single show operand.
func showOperand(out *bytes.Buffer, obj core.Object, m cmap.Map) {
	switch v := obj.(type) {
	case core.String:
		out.WriteString(m.DecodeChars(v))
	case core.HexString:
		out.WriteString(decodeHexShow(v, m))
	}
}

// showArray processes an array-show instruction: string elements are decoded
// and concatenated; a numeric adjustment more negative than the threshold
// synthesizes exactly one space, provided something precedes it and the
// preceding character is not already a space.
func showArray(out *bytes.Buffer, arr core.Array, m cmap.Map, threshold float64) {
	for _, item := range arr {
		switch v := item.(type) {
		case core.String:
			out.WriteString(m.DecodeChars(v))
		case core.HexString:
			out.WriteString(decodeHexShow(v, m))
		case core.Int:
			if float64(v) < threshold {
				synthesizeSpace(out)
			}
		case core.Real:
			if float64(v) < threshold {
				synthesizeSpace(out)
			}
		}
	}
}

func synthesizeSpace(out *bytes.Buffer) {
	b := out.Bytes()
	if len(b) == 0 || b[len(b)-1] == ' ' {
		return
	}
	out.WriteByte(' ')
}

// decodeHexShow decodes a hex-show string. With a populated glyph map the
// bytes are glyph codes. With no map the bytes are tried as UTF-16BE code
// units, validated against stray control codes, and finally as plain
// one-byte characters restricted to printable ASCII; when nothing validates
// the instruction contributes no text.
func decodeHexShow(data []byte, m cmap.Map) string {
	if len(data) == 0 {
		return ""
	}
	if len(m) > 0 {
		return m.DecodeGlyphs(data)
	}

	if len(data)%2 == 0 {
		if s, ok := decodeUTF16BE(data); ok {
			return s
		}
	}

	if asciiClean(data) {
		return string(data)
	}
	return ""
}

// decodeUTF16BE decodes big-endian UTF-16 bytes, rejecting results that
// carry control codes below 0x20 other than tab, LF, and CR. The decoder is
// created per call; encoding decoders carry internal state and extractions
// may run concurrently.
func decodeUTF16BE(data []byte) (string, bool) {
	decoded, err := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	s := string(decoded)
	for _, r := range s {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return "", false
		}
		if r == 0xFFFD {
			return "", false
		}
	}
	return s, true
}

// asciiClean reports whether every byte is printable ASCII or one of the
// three whitespace controls.
func asciiClean(data []byte) bool {
	for _, b := range data {
		if b >= 0x20 && b < 0x7F {
			continue
		}
		if b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		return false
	}
	return true
}

// findKeyword locates key in data at or after from, requiring keyword
// boundaries on both sides so that operator names embedded in longer tokens
// do not match.
func findKeyword(data, key []byte, from int) int {
	for from <= len(data)-len(key) {
		rel := bytes.Index(data[from:], key)
		if rel < 0 {
			return -1
		}
		idx := from + rel
		beforeOK := idx == 0 || isWhitespace(data[idx-1]) || isDelimiter(data[idx-1])
		next := idx + len(key)
		afterOK := next >= len(data) || isWhitespace(data[next]) || isDelimiter(data[next])
		if beforeOK && afterOK {
			return idx
		}
		from = idx + 1
	}
	return -1
}
