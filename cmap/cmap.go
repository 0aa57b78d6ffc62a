// Package cmap discovers embedded glyph-to-Unicode tables and merges them
// into one flattened mapping for the whole document. Scoping by font is not
// preserved: a glyph code reused by two fonts with different meanings will
// collide, with the later-discovered table winning. Downstream consumers
// depend on this flattening, so it is kept deliberately.
package cmap

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kvittolabs/kvitto/scanner"
)

// Map maps a glyph code (0-65535 in practice) to its decoded Unicode text,
// usually one character, occasionally a multi-character ligature.
type Map map[uint32]string

// Lookup returns the mapping for code.
func (m Map) Lookup(code uint32) (string, bool) {
	s, ok := m[code]
	return s, ok
}

// DecodeGlyphs decodes a byte string of glyph codes, trying 2-byte codes
// first and falling back to 1-byte codes. Unmapped bytes are kept as-is
// when printable and dropped otherwise, so the decode is total.
func (m Map) DecodeGlyphs(data []byte) string {
	var sb strings.Builder

	i := 0
	for i < len(data) {
		if i+1 < len(data) {
			code := uint32(data[i])<<8 | uint32(data[i+1])
			if s, ok := m[code]; ok {
				sb.WriteString(s)
				i += 2
				continue
			}
		}
		code := uint32(data[i])
		if s, ok := m[code]; ok {
			sb.WriteString(s)
		} else if printable(data[i]) {
			sb.WriteRune(rune(data[i]))
		}
		i++
	}

	return sb.String()
}

// DecodeChars decodes a literal string one character code at a time:
// mapped codes are substituted, unmapped printable ones pass through, the
// rest are dropped.
func (m Map) DecodeChars(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		if s, ok := m[uint32(b)]; ok {
			sb.WriteString(s)
		} else if printable(b) {
			sb.WriteRune(rune(b))
		}
	}
	return sb.String()
}

func printable(b byte) bool {
	return b >= 0x20 || b == '\t' || b == '\n' || b == '\r'
}

var (
	kwToUnicode = []byte("/ToUnicode")
	kwBfchar    = []byte("beginbfchar")
	kwBfrange   = []byte("beginbfrange")
)

// Build discovers every glyph table in the document and merges them,
// last-write-wins, in discovery order: deferred /ToUnicode references
// first, then inline tables found by content inspection. Tables that fail
// to decode are skipped with a warning.
func Build(buf []byte, records []scanner.StreamRecord) (Map, []string) {
	m := make(Map)
	var warnings []string

	decoded := make([][]byte, len(records))
	failed := make([]bool, len(records))
	content := func(i int) []byte {
		if decoded[i] == nil && !failed[i] {
			data, err := scanner.Decode(buf, records[i])
			if err != nil {
				failed[i] = true
				warnings = append(warnings, fmt.Sprintf("object %d: undecodable stream skipped: %v", records[i].Object, err))
				return nil
			}
			decoded[i] = data
		}
		return decoded[i]
	}

	consumed := make(map[int]bool)

	// Deferred references, in document order of the declarations.
	from := 0
	for {
		rel := bytes.Index(buf[from:], kwToUnicode)
		if rel < 0 {
			break
		}
		idx := from + rel
		from = idx + len(kwToUnicode)

		num, ok := refAfter(buf, idx+len(kwToUnicode))
		if !ok {
			continue
		}
		for i, rec := range records {
			if rec.Object != num || rec.Object == 0 {
				continue
			}
			if data := content(i); data != nil {
				parseTable(data, m)
			}
			consumed[i] = true
			break
		}
	}

	// Inline tables: any remaining stream whose body carries a section.
	for i := range records {
		if consumed[i] {
			continue
		}
		data := content(i)
		if data == nil {
			continue
		}
		if bytes.Contains(data, kwBfchar) || bytes.Contains(data, kwBfrange) {
			parseTable(data, m)
		}
	}

	return m, warnings
}

// refAfter parses an indirect reference "N G R" starting at i, returning
// the object number.
func refAfter(buf []byte, i int) (int, bool) {
	num, i, ok := intAt(buf, i)
	if !ok {
		return 0, false
	}
	_, i, ok = intAt(buf, i)
	if !ok {
		return 0, false
	}
	i = skipSpace(buf, i)
	if i >= len(buf) || buf[i] != 'R' {
		return 0, false
	}
	if i+1 < len(buf) && isRegular(buf[i+1]) {
		return 0, false
	}
	return num, true
}

func intAt(buf []byte, i int) (int, int, bool) {
	i = skipSpace(buf, i)
	start := i
	val := 0
	for i < len(buf) && buf[i] >= '0' && buf[i] <= '9' {
		val = val*10 + int(buf[i]-'0')
		i++
	}
	if i == start || val > 1<<30 {
		return 0, i, false
	}
	return val, i, true
}
