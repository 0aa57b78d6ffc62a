package scanner

import (
	"bytes"
	"fmt"

	"github.com/kvittolabs/kvitto/internal/filters"
)

// FilterKind classifies the compression filter declared for a stream.
type FilterKind int

const (
	// FilterNone marks a stream with no filter declaration.
	FilterNone FilterKind = iota
	// FilterFlate marks zlib/deflate compressed data.
	FilterFlate
	// FilterASCIIHex marks ASCII hexadecimal encoded data.
	FilterASCIIHex
	// FilterASCII85 marks base-85 encoded data.
	FilterASCII85
	// FilterCCITT marks CCITT Group 3/4 fax compressed image data.
	FilterCCITT
	// FilterDCT marks JPEG image data, usable as-is by an OCR engine.
	FilterDCT
	// FilterUnknown marks any other declaration; the data passes through
	// unchanged.
	FilterUnknown
)

// String returns the filter name used in warnings.
func (k FilterKind) String() string {
	switch k {
	case FilterNone:
		return "none"
	case FilterFlate:
		return "flate"
	case FilterASCIIHex:
		return "asciihex"
	case FilterASCII85:
		return "ascii85"
	case FilterCCITT:
		return "ccitt"
	case FilterDCT:
		return "dct"
	default:
		return "unknown"
	}
}

// StreamRecord describes one discovered stream: its raw byte range within
// the document buffer, the filter classification taken from the object
// header preceding the stream keyword, and whatever header attributes the
// downstream stages need. Records are ephemeral; nothing outlives the
// extraction call that produced them.
type StreamRecord struct {
	Object     int // object number, 0 when unknown
	Generation int

	Filter FilterKind
	Params filters.Params

	Start, End int // raw data range [Start,End) within the buffer

	Image            bool
	Width, Height    int
	BitsPerComponent int
}

var (
	kwStream    = []byte("stream")
	kwEndstream = []byte("endstream")
	kwObj       = []byte("obj")
)

// Scan locates every stream in buf and classifies it. Malformed streams are
// skipped and reported as warnings, never as errors.
func Scan(buf []byte) ([]StreamRecord, []string) {
	var records []StreamRecord
	var warnings []string

	pos := 0
	for pos < len(buf) {
		rel := bytes.Index(buf[pos:], kwStream)
		if rel < 0 {
			break
		}
		kw := pos + rel

		// "endstream" contains "stream"; skip the suffix match.
		if kw >= 3 && bytes.Equal(buf[kw-3:kw], []byte("end")) {
			pos = kw + len(kwStream)
			continue
		}
		// The marker must be a keyword, not part of a longer name.
		if kw > 0 && isRegular(buf[kw-1]) {
			pos = kw + len(kwStream)
			continue
		}

		// Data begins after the keyword, skipping exactly one optional CR
		// and one optional LF.
		start := kw + len(kwStream)
		if start < len(buf) && buf[start] == '\r' {
			start++
		}
		if start < len(buf) && buf[start] == '\n' {
			start++
		}

		rel = bytes.Index(buf[start:], kwEndstream)
		if rel < 0 {
			warnings = append(warnings, fmt.Sprintf("stream at offset %d has no endstream marker; skipped", kw))
			break
		}
		end := start + rel
		next := end + len(kwEndstream)

		// Trim the optional EOL that separates the data from endstream.
		if end > start && buf[end-1] == '\n' {
			end--
		}
		if end > start && buf[end-1] == '\r' {
			end--
		}

		rec := StreamRecord{Start: start, End: end}
		header := headerBefore(buf, kw)
		rec.Object, rec.Generation = objectID(buf, header.start)
		classify(buf[header.start:header.end], &rec)

		records = append(records, rec)
		pos = next
	}

	return records, warnings
}

// span is a half-open byte range within the document buffer.
type span struct {
	start, end int
}

// headerBefore returns the range of header text between the nearest
// preceding obj keyword and the stream keyword at kw.
func headerBefore(buf []byte, kw int) span {
	search := buf[:kw]
	for {
		idx := bytes.LastIndex(search, kwObj)
		if idx < 0 {
			return span{0, kw}
		}
		// Reject matches inside longer keywords such as endobj.
		beforeOK := idx == 0 || !isRegular(buf[idx-1])
		afterOK := idx+len(kwObj) >= kw || !isRegular(buf[idx+len(kwObj)])
		if beforeOK && afterOK {
			return span{idx + len(kwObj), kw}
		}
		search = buf[:idx]
	}
}

// objectID parses the "N G obj" declaration that ends right before
// headerStart. Returns zeros when the declaration is absent or malformed.
func objectID(buf []byte, headerStart int) (int, int) {
	i := headerStart - len(kwObj)
	if i < 0 || !bytes.Equal(buf[i:i+len(kwObj)], kwObj) {
		return 0, 0
	}

	gen, i, ok := digitsBefore(buf, i)
	if !ok {
		return 0, 0
	}
	num, _, ok := digitsBefore(buf, i)
	if !ok {
		return 0, 0
	}
	return num, gen
}

// digitsBefore consumes whitespace then a digit run, walking backwards from
// i. It returns the parsed value and the position before the run.
func digitsBefore(buf []byte, i int) (int, int, bool) {
	for i > 0 && isSpaceByte(buf[i-1]) {
		i--
	}
	end := i
	for i > 0 && isDigitByte(buf[i-1]) {
		i--
	}
	if i == end {
		return 0, i, false
	}
	val := 0
	for _, c := range buf[i:end] {
		val = val*10 + int(c-'0')
		if val > 1<<30 {
			return 0, i, false
		}
	}
	return val, i, true
}

// classify inspects the header text for a filter declaration and the
// attributes later stages need (decode parameters, image geometry).
func classify(header []byte, rec *StreamRecord) {
	rec.Filter = filterKind(header)
	rec.Params = decodeParams(header)

	if nameAfter(header, []byte("/Subtype")) == "Image" {
		rec.Image = true
		rec.Width, _ = intAfter(header, []byte("/Width"))
		rec.Height, _ = intAfter(header, []byte("/Height"))
		rec.BitsPerComponent, _ = intAfter(header, []byte("/BitsPerComponent"))
		if rec.BitsPerComponent == 0 {
			rec.BitsPerComponent = 8
		}
	}
}

// filterKind matches the filter declaration against the recognized forms:
// a bare name, a name wrapped in a single-element array, or the short
// abbreviation in either form. Anything else is Unknown.
func filterKind(header []byte) FilterKind {
	idx := keywordIndex(header, []byte("/Filter"))
	if idx < 0 {
		return FilterNone
	}

	i := idx + len("/Filter")
	i = skipSpace(header, i)

	inArray := false
	if i < len(header) && header[i] == '[' {
		inArray = true
		i = skipSpace(header, i+1)
	}

	name, i := readName(header, i)
	if name == "" {
		return FilterUnknown
	}

	if inArray {
		i = skipSpace(header, i)
		if i >= len(header) || header[i] != ']' {
			// Multi-element filter chains are not classified.
			return FilterUnknown
		}
	}

	switch name {
	case "FlateDecode", "Fl":
		return FilterFlate
	case "ASCIIHexDecode", "AHx":
		return FilterASCIIHex
	case "ASCII85Decode", "A85":
		return FilterASCII85
	case "CCITTFaxDecode", "CCF":
		return FilterCCITT
	case "DCTDecode", "DCT":
		return FilterDCT
	}
	return FilterUnknown
}

// decodeParams collects the integer decode parameters referenced by the
// filters package. They normally live in a DecodeParms sub-dictionary, but
// scanning the whole header for the keys is byte-exact and does not require
// a structural parse.
func decodeParams(header []byte) filters.Params {
	var params filters.Params
	for _, key := range []string{"Predictor", "Columns", "Colors", "BitsPerComponent", "K", "Rows"} {
		if v, ok := intAfter(header, []byte("/"+key)); ok {
			if params == nil {
				params = make(filters.Params)
			}
			params[key] = v
		}
	}
	if keywordIndex(header, []byte("/BlackIs1")) >= 0 {
		i := keywordIndex(header, []byte("/BlackIs1")) + len("/BlackIs1")
		i = skipSpace(header, i)
		if bytes.HasPrefix(header[i:], []byte("true")) {
			if params == nil {
				params = make(filters.Params)
			}
			params["BlackIs1"] = 1
		}
	}
	return params
}

// Decode recovers the stream's content bytes. Unfiltered, Unknown, and DCT
// streams pass through as a sub-slice of buf without copying; everything
// else allocates a fresh buffer. The original range is never mutated.
func Decode(buf []byte, rec StreamRecord) ([]byte, error) {
	raw := buf[rec.Start:rec.End]
	switch rec.Filter {
	case FilterFlate:
		return filters.FlateDecode(raw, rec.Params)
	case FilterASCIIHex:
		return filters.ASCIIHexDecode(raw)
	case FilterASCII85:
		return filters.ASCII85Decode(raw)
	case FilterCCITT:
		return filters.CCITTFaxDecode(raw, rec.Params)
	default:
		return raw, nil
	}
}

// Byte-scanning helpers.

// keywordIndex finds key in data at a position where it is not a prefix of
// a longer name (e.g. /Filter must not match /FilterX).
func keywordIndex(data, key []byte) int {
	from := 0
	for {
		rel := bytes.Index(data[from:], key)
		if rel < 0 {
			return -1
		}
		idx := from + rel
		next := idx + len(key)
		if next >= len(data) || !isRegular(data[next]) {
			return idx
		}
		from = next
	}
}

// intAfter parses the integer following key, or reports absence.
func intAfter(data, key []byte) (int, bool) {
	idx := keywordIndex(data, key)
	if idx < 0 {
		return 0, false
	}
	i := skipSpace(data, idx+len(key))
	neg := false
	if i < len(data) && (data[i] == '-' || data[i] == '+') {
		neg = data[i] == '-'
		i++
	}
	start := i
	val := 0
	for i < len(data) && isDigitByte(data[i]) {
		val = val*10 + int(data[i]-'0')
		i++
	}
	if i == start {
		return 0, false
	}
	if neg {
		val = -val
	}
	return val, true
}

// nameAfter returns the name following key, or "".
func nameAfter(data, key []byte) string {
	idx := keywordIndex(data, key)
	if idx < 0 {
		return ""
	}
	i := skipSpace(data, idx+len(key))
	name, _ := readName(data, i)
	return name
}

// readName reads a /Name starting at i, returning the bare name and the
// position after it.
func readName(data []byte, i int) (string, int) {
	if i >= len(data) || data[i] != '/' {
		return "", i
	}
	i++
	start := i
	for i < len(data) && isRegular(data[i]) {
		i++
	}
	return string(data[start:i]), i
}

func skipSpace(data []byte, i int) int {
	for i < len(data) && isSpaceByte(data[i]) {
		i++
	}
	return i
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDigitByte(c byte) bool {
	return c >= '0' && c <= '9'
}

// isRegular reports whether c can continue a name or keyword: anything that
// is neither whitespace nor a delimiter.
func isRegular(c byte) bool {
	if isSpaceByte(c) {
		return false
	}
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}
