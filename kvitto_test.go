package kvitto

import (
	"bytes"
	"compress/zlib"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func zlibCompress(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// writeFile writes a temp file and returns its path
func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// receiptPDF builds a minimal single-page document around the given content
// stream bytes and stream header
func receiptPDF(header string, stream []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("1 0 obj << /Type /Catalog /Pages 2 0 R >> endobj\n")
	buf.WriteString("2 0 obj << /Type /Pages /Kids [3 0 R] /Count 1 >> endobj\n")
	buf.WriteString("3 0 obj << /Type /Page /Parent 2 0 R /Contents 4 0 R >> endobj\n")
	buf.WriteString("4 0 obj " + header + " stream\n")
	buf.Write(stream)
	buf.WriteString("\nendstream endobj\n")
	buf.WriteString("%%EOF\n")
	return buf.Bytes()
}

// TestExtractPlainStream tests end-to-end extraction from an uncompressed
// content stream
func TestExtractPlainStream(t *testing.T) {
	content := []byte("BT /F1 12 Tf (Hello World) Tj ET")
	path := writeFile(t, "receipt.pdf", receiptPDF("<< /Length 32 >>", content))

	res := ExtractText(path)
	if !res.Success {
		t.Fatalf("extraction failed: %s %s", res.Err, res.Message)
	}
	if res.Text != "Hello World" {
		t.Errorf("text: got %q", res.Text)
	}
	if !reflect.DeepEqual(res.Lines, []string{"Hello World"}) {
		t.Errorf("lines: got %v", res.Lines)
	}
	if res.PageCount != 1 {
		t.Errorf("page count: got %d, want 1", res.PageCount)
	}
	if res.Err != "" {
		t.Errorf("unexpected error code %q", res.Err)
	}
}

// TestExtractCompressedMatchesPlain tests that a flate-compressed stream
// extracts identically to its uncompressed form
func TestExtractCompressedMatchesPlain(t *testing.T) {
	content := []byte("BT /F1 12 Tf (Hello World) Tj ET")

	plain := writeFile(t, "plain.pdf", receiptPDF("<< /Length 32 >>", content))
	compressed := writeFile(t, "compressed.pdf",
		receiptPDF("<< /Filter /FlateDecode >>", zlibCompress(content)))

	resPlain := ExtractText(plain)
	resComp := ExtractText(compressed)

	if !resPlain.Success || !resComp.Success {
		t.Fatalf("extraction failed: plain=%v compressed=%v", resPlain.Err, resComp.Err)
	}
	if resPlain.Text != resComp.Text {
		t.Errorf("compressed text %q differs from plain %q", resComp.Text, resPlain.Text)
	}
}

// TestExtractMultiLine tests that separate text regions become separate
// lines
func TestExtractMultiLine(t *testing.T) {
	content := []byte("BT (KVITTO) Tj ET\nBT (Kaffe 32.00) Tj ET\nBT (Total 32.00 SEK) Tj ET")
	path := writeFile(t, "receipt.pdf", receiptPDF("<< >>", content))

	res := ExtractText(path)
	if !res.Success {
		t.Fatalf("extraction failed: %s", res.Err)
	}

	want := []string{"KVITTO", "Kaffe 32.00", "Total 32.00 SEK"}
	if !reflect.DeepEqual(res.Lines, want) {
		t.Errorf("got %v, want %v", res.Lines, want)
	}
}

// TestExtractGlyphMapped tests extraction through an embedded glyph table
func TestExtractGlyphMapped(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("3 0 obj << /Type /Page /Contents 4 0 R >> endobj\n")
	buf.WriteString("5 0 obj << /Type /Font /ToUnicode 6 0 R >> endobj\n")
	buf.WriteString("6 0 obj << >> stream\n")
	buf.WriteString("2 beginbfchar <0048> <0048> <0069> <0069> endbfchar\n")
	buf.WriteString("endstream endobj\n")
	buf.WriteString("4 0 obj << >> stream\n")
	buf.WriteString("BT <00480069> Tj ET\n")
	buf.WriteString("endstream endobj\n")

	path := writeFile(t, "mapped.pdf", buf.Bytes())
	res := ExtractText(path)
	if !res.Success {
		t.Fatalf("extraction failed: %s %s", res.Err, res.Message)
	}
	if res.Text != "Hi" {
		t.Errorf("got %q, want %q", res.Text, "Hi")
	}
}

// TestExtractFlattenedMap tests that one glyph table applies to literal
// shows in every stream and region
func TestExtractFlattenedMap(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("3 0 obj << /Type /Page >> endobj\n")
	buf.WriteString("6 0 obj << /ToUnicode 7 0 R >> endobj\n")
	buf.WriteString("7 0 obj << >> stream\n")
	buf.WriteString("1 beginbfchar <01> <00E9> endbfchar\n")
	buf.WriteString("endstream endobj\n")
	buf.WriteString("4 0 obj << >> stream\nBT (caf\\001) Tj ET\nendstream endobj\n")
	buf.WriteString("5 0 obj << >> stream\nBT (all\\001) Tj ET\nendstream endobj\n")

	path := writeFile(t, "mapped.pdf", buf.Bytes())
	res := ExtractText(path)
	if !res.Success {
		t.Fatalf("extraction failed: %s %s", res.Err, res.Message)
	}
	want := []string{"café", "allé"}
	if !reflect.DeepEqual(res.Lines, want) {
		t.Errorf("got %v, want %v", res.Lines, want)
	}
}

// TestExtractImageOnly tests that a document with only an image stream
// reports no_text_content
func TestExtractImageOnly(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("3 0 obj << /Type /Page /Contents 4 0 R >> endobj\n")
	buf.WriteString("4 0 obj << /Subtype /Image /Width 2 /Height 2 /Filter /DCTDecode >> stream\n")
	buf.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3, 4})
	buf.WriteString("\nendstream endobj\n")

	path := writeFile(t, "scan.pdf", buf.Bytes())
	res := ExtractText(path)

	if res.Success {
		t.Fatal("expected failure for image-only document")
	}
	if res.Err != ErrNoTextContent {
		t.Errorf("got error code %q, want %q", res.Err, ErrNoTextContent)
	}
	if res.PageCount != 1 {
		t.Errorf("page count: got %d, want 1", res.PageCount)
	}
	if len(res.Lines) != 0 {
		t.Errorf("expected no lines, got %v", res.Lines)
	}
}

// TestExtractMissingFile tests the unknown error path
func TestExtractMissingFile(t *testing.T) {
	res := ExtractText(filepath.Join(t.TempDir(), "absent.pdf"))
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Err != ErrUnknown {
		t.Errorf("got error code %q, want %q", res.Err, ErrUnknown)
	}
	if res.PageCount != 0 {
		t.Errorf("page count: got %d, want 0", res.PageCount)
	}
}

// TestExtractCorruptStreamDropped tests that an undecodable stream is
// dropped with a warning while the rest still extracts
func TestExtractCorruptStreamDropped(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("3 0 obj << /Type /Page >> endobj\n")
	buf.WriteString("4 0 obj << /Filter /FlateDecode >> stream\n")
	buf.WriteString("BT this is not compressed ET\n")
	buf.WriteString("endstream endobj\n")
	buf.WriteString("5 0 obj << >> stream\n")
	buf.WriteString("BT (still here) Tj ET\n")
	buf.WriteString("endstream endobj\n")

	path := writeFile(t, "partial.pdf", buf.Bytes())
	res := ExtractText(path)

	if !res.Success {
		t.Fatalf("extraction failed: %s %s", res.Err, res.Message)
	}
	if res.Text != "still here" {
		t.Errorf("got %q", res.Text)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning for the dropped stream")
	}
}

// TestExtractDeterministic tests that repeated extraction of the same file
// yields identical results
func TestExtractDeterministic(t *testing.T) {
	content := []byte("BT (KVITTO) Tj ET BT [(Total) -250 (99.00)] TJ ET")
	path := writeFile(t, "receipt.pdf", receiptPDF("<< >>", content))

	first := ExtractText(path)
	for i := 0; i < 5; i++ {
		res := ExtractText(path)
		if !reflect.DeepEqual(res, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, res, first)
		}
	}
}

// TestExtractKerningOption tests the fluent threshold override
func TestExtractKerningOption(t *testing.T) {
	content := []byte("BT [(a) -150 (b)] TJ ET")
	path := writeFile(t, "receipt.pdf", receiptPDF("<< >>", content))

	if res := Open(path).Extract(); res.Text != "a b" {
		t.Errorf("default threshold: got %q, want %q", res.Text, "a b")
	}
	if res := Open(path).KerningThreshold(-200).Extract(); res.Text != "ab" {
		t.Errorf("threshold -200: got %q, want %q", res.Text, "ab")
	}
}

// TestExtractorImmutable tests that configuration returns new instances
func TestExtractorImmutable(t *testing.T) {
	base := Open("x.pdf")
	derived := base.KerningThreshold(-500)

	if base == derived {
		t.Fatal("expected a new instance")
	}
	if base.options.kerningThreshold == derived.options.kerningThreshold {
		t.Error("expected differing thresholds")
	}
}

// TestExtractHTML tests the HTML receipt path
func TestExtractHTML(t *testing.T) {
	html := "<html><body><h1>KVITTO</h1><p>Kaffe 32.00</p></body></html>"
	path := writeFile(t, "receipt.html", []byte(html))

	res := ExtractText(path)
	if !res.Success {
		t.Fatalf("extraction failed: %s %s", res.Err, res.Message)
	}
	want := []string{"KVITTO", "Kaffe 32.00"}
	if !reflect.DeepEqual(res.Lines, want) {
		t.Errorf("got %v, want %v", res.Lines, want)
	}
	if res.PageCount != 1 {
		t.Errorf("page count: got %d, want 1", res.PageCount)
	}
}

// TestExtractHTMLEmpty tests an HTML document with no text
func TestExtractHTMLEmpty(t *testing.T) {
	path := writeFile(t, "empty.html", []byte("<html><body></body></html>"))
	res := ExtractText(path)
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Err != ErrNoTextContent {
		t.Errorf("got %q, want %q", res.Err, ErrNoTextContent)
	}
}

// TestHasText tests the convenience predicate
func TestHasText(t *testing.T) {
	withText := writeFile(t, "a.pdf", receiptPDF("<< >>", []byte("BT (x) Tj ET")))
	withoutText := writeFile(t, "b.pdf", receiptPDF("<< >>", []byte("q 1 0 0 1 0 0 cm Q")))

	if !HasText(withText) {
		t.Error("expected HasText true")
	}
	if HasText(withoutText) {
		t.Error("expected HasText false")
	}
	if HasText(filepath.Join(t.TempDir(), "absent.pdf")) {
		t.Error("expected HasText false for missing file")
	}
}

// TestExtractAsync tests the asynchronous variant
func TestExtractAsync(t *testing.T) {
	path := writeFile(t, "receipt.pdf", receiptPDF("<< >>", []byte("BT (async) Tj ET")))

	res := <-Open(path).ExtractAsync()
	if !res.Success || res.Text != "async" {
		t.Errorf("got %+v", res)
	}
}

// TestExtractPageCount tests multi-page counting
func TestExtractPageCount(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("2 0 obj << /Type /Pages /Count 2 >> endobj\n")
	buf.WriteString("3 0 obj << /Type /Page /Contents 5 0 R >> endobj\n")
	buf.WriteString("4 0 obj << /Type /Page /Contents 5 0 R >> endobj\n")
	buf.WriteString("5 0 obj << >> stream\nBT (shared) Tj ET\nendstream endobj\n")

	path := writeFile(t, "two.pdf", buf.Bytes())
	res := ExtractText(path)
	if res.PageCount != 2 {
		t.Errorf("page count: got %d, want 2", res.PageCount)
	}
}

// fakeRecognizer returns fixed text for any image
type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) RecognizeImage([]byte) (string, error) {
	return f.text, f.err
}

// TestExtractOCRFallback tests that an image-only document falls back to
// the configured recognizer
func TestExtractOCRFallback(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("3 0 obj << /Type /Page >> endobj\n")
	buf.WriteString("4 0 obj << /Subtype /Image /Width 2 /Height 2 /Filter /DCTDecode >> stream\n")
	buf.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3, 4})
	buf.WriteString("\nendstream endobj\n")

	path := writeFile(t, "scan.pdf", buf.Bytes())

	res := Open(path).WithOCR(&fakeRecognizer{text: "KVITTO\nTotal 45.00"}).Extract()
	if !res.Success {
		t.Fatalf("extraction failed: %s %s", res.Err, res.Message)
	}
	want := []string{"KVITTO", "Total 45.00"}
	if !reflect.DeepEqual(res.Lines, want) {
		t.Errorf("got %v, want %v", res.Lines, want)
	}
}

// TestExtractOCRFailure tests that recognizer errors degrade to
// no_text_content with a warning
func TestExtractOCRFailure(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("4 0 obj << /Subtype /Image /Width 2 /Height 2 /Filter /DCTDecode >> stream\n")
	buf.Write([]byte{0xFF, 0xD8, 1, 2})
	buf.WriteString("\nendstream endobj\n")

	path := writeFile(t, "scan.pdf", buf.Bytes())

	res := Open(path).WithOCR(&fakeRecognizer{err: os.ErrInvalid}).Extract()
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Err != ErrNoTextContent {
		t.Errorf("got %q, want %q", res.Err, ErrNoTextContent)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected an OCR warning")
	}
}

// TestFormatWarnings tests warning formatting
func TestFormatWarnings(t *testing.T) {
	if got := FormatWarnings(nil); got != "" {
		t.Errorf("got %q", got)
	}
	ws := []Warning{{Message: "a"}, {Message: "b"}}
	if got := FormatWarnings(ws); got != "a; b" {
		t.Errorf("got %q", got)
	}
}

// TestSplitLines tests line shaping
func TestSplitLines(t *testing.T) {
	got := splitLines("  a  \n\n b\n\t\n")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("got %v", got)
	}
}

// TestResultLinesMatchText tests that Lines is always derivable from Text
func TestResultLinesMatchText(t *testing.T) {
	content := []byte("BT (one) Tj ET BT (two) Tj ET")
	path := writeFile(t, "receipt.pdf", receiptPDF("<< >>", content))

	res := ExtractText(path)
	if !res.Success {
		t.Fatal("extraction failed")
	}
	joined := strings.Join(res.Lines, "\n")
	if joined != res.Text {
		t.Errorf("lines %q do not reassemble text %q", joined, res.Text)
	}
}
