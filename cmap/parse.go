package cmap

import "unicode/utf16"

// Section grammar: "beginbfchar ... endbfchar" holds (source, destination)
// pairs; "beginbfrange ... endbfrange" holds (lo, hi, destination) triples
// where the destination is either a single hex string, applied to each code
// in [lo,hi] with its trailing code unit incremented per step, or an array
// whose i-th entry maps the i-th code.

// rangeCap bounds bfrange expansion; glyph codes are 16-bit so anything
// larger is a malformed table.
const rangeCap = 0x10000

// parseTable parses one table body into m, last-write-wins.
func parseTable(data []byte, m Map) {
	lx := newLexer(data)
	for {
		tok := lx.next()
		switch {
		case tok.kind == tokEOF:
			return
		case tok.kind == tokKeyword && tok.word == "beginbfchar":
			parseBfChar(lx, m)
		case tok.kind == tokKeyword && tok.word == "beginbfrange":
			parseBfRange(lx, m)
		}
	}
}

func parseBfChar(lx *lexer, m Map) {
	for {
		src := lx.next()
		if src.kind == tokEOF || (src.kind == tokKeyword && src.word == "endbfchar") {
			return
		}
		if src.kind != tokHex {
			continue
		}
		dst := lx.next()
		if dst.kind == tokEOF {
			return
		}
		if dst.kind != tokHex {
			continue
		}
		d := parseDest(dst.data)
		m[codeOf(src.data)] = d.text()
	}
}

func parseBfRange(lx *lexer, m Map) {
	for {
		lo := lx.next()
		if lo.kind == tokEOF || (lo.kind == tokKeyword && lo.word == "endbfrange") {
			return
		}
		if lo.kind != tokHex {
			continue
		}
		hi := lx.next()
		if hi.kind != tokHex {
			if hi.kind == tokEOF {
				return
			}
			continue
		}

		loCode := codeOf(lo.data)
		hiCode := codeOf(hi.data)
		if hiCode < loCode || hiCode-loCode >= rangeCap {
			continue
		}

		dst := lx.next()
		switch dst.kind {
		case tokHex:
			d := parseDest(dst.data)
			for code := loCode; ; code++ {
				m[code] = d.text()
				if code == hiCode {
					break
				}
				d.inc()
			}
		case tokArrayStart:
			code := loCode
			for {
				el := lx.next()
				if el.kind == tokEOF || el.kind == tokArrayEnd {
					break
				}
				if el.kind != tokHex {
					continue
				}
				if code <= hiCode {
					d := parseDest(el.data)
					m[code] = d.text()
				}
				code++
			}
		case tokEOF:
			return
		}
	}
}

// codeOf interprets up to 4 source bytes as a big-endian glyph code.
func codeOf(b []byte) uint32 {
	if len(b) > 4 {
		b = b[len(b)-4:]
	}
	var code uint32
	for _, c := range b {
		code = code<<8 | uint32(c)
	}
	return code
}

// dest is a decoded destination: 2-byte big-endian UTF-16 code units, plus
// one optional raw byte when the hex length was not a multiple of four.
type dest struct {
	units   []uint16
	tail    byte
	hasTail bool
}

func parseDest(b []byte) dest {
	var d dest
	n := len(b) / 2 * 2
	for i := 0; i < n; i += 2 {
		d.units = append(d.units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	if len(b) > n {
		d.tail = b[n]
		d.hasTail = true
	}
	return d
}

// text decodes the code units, combining surrogate pairs, and appends the
// trailing byte's character when present.
func (d *dest) text() string {
	var runes []rune
	if len(d.units) > 0 {
		runes = utf16.Decode(d.units)
	}
	if d.hasTail {
		runes = append(runes, rune(d.tail))
	}
	return string(runes)
}

// inc advances the trailing code unit by one, the per-step rule for
// single-destination ranges.
func (d *dest) inc() {
	if d.hasTail {
		d.tail++
		return
	}
	if len(d.units) > 0 {
		d.units[len(d.units)-1]++
	}
}
