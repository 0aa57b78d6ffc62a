package kvitto

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/kvittolabs/kvitto/cmap"
	"github.com/kvittolabs/kvitto/content"
	"github.com/kvittolabs/kvitto/format"
	"github.com/kvittolabs/kvitto/htmldoc"
	"github.com/kvittolabs/kvitto/scanner"
)

// TextRecognizer turns image data (PNG, JPEG) into text. It is the seam
// through which OCR is plugged in; the ocr package's Client satisfies it
// when built with the ocr tag.
type TextRecognizer interface {
	RecognizeImage(imageData []byte) (string, error)
}

// Extractor provides a fluent interface for extracting text from receipt
// documents. Each configuration method returns a new Extractor instance,
// making it safe for concurrent use and allowing method chaining.
type Extractor struct {
	filename string
	options  ExtractOptions
}

// clone creates a copy of the Extractor with a copy of its options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename: e.filename,
		options:  e.options.clone(),
	}
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// KerningThreshold overrides the kerning adjustment below which a word gap
// is assumed and a space synthesized. The default is -100 (thousandths of
// an em). More negative values synthesize fewer spaces.
//
// Example:
//
//	res := kvitto.Open("receipt.pdf").KerningThreshold(-150).Extract()
func (e *Extractor) KerningThreshold(threshold float64) *Extractor {
	newExt := e.clone()
	newExt.options.kerningThreshold = threshold
	return newExt
}

// WithOCR configures an OCR fallback used when a document yields no text
// but contains recoverable images. Typical for photographed receipts.
//
// Example:
//
//	client, err := ocr.New()
//	if err != nil {
//	    // OCR not compiled in
//	}
//	defer client.Close()
//	res := kvitto.Open("scan.pdf").WithOCR(client).Extract()
func (e *Extractor) WithOCR(r TextRecognizer) *Extractor {
	newExt := e.clone()
	newExt.options.recognizer = r
	return newExt
}

// Language sets the OCR language hint, e.g. "eng" or "eng+swe". It has
// effect only when an OCR recognizer is configured and supports language
// selection.
func (e *Extractor) Language(lang string) *Extractor {
	newExt := e.clone()
	newExt.options.language = lang
	return newExt
}

// ============================================================================
// Terminal Methods
// ============================================================================

// Extract runs the extraction and returns a Result. It never panics and
// never returns a Go error; all failures are reported through the Result.
func (e *Extractor) Extract() (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failure(ErrUnknown, fmt.Sprintf("internal error: %v", r), 0, result.Warnings)
		}
	}()

	buf, err := os.ReadFile(e.filename)
	if err != nil {
		return failure(ErrUnknown, fmt.Sprintf("failed to read file: %v", err), 0, nil)
	}

	switch format.Detect(e.filename, buf) {
	case format.HTML:
		return e.extractHTML(buf)
	default:
		return e.extractPDF(buf)
	}
}

// ExtractAsync runs Extract in a goroutine and returns a channel that
// yields the single Result. The channel is buffered, so the result can be
// received at any later point without blocking the worker.
func (e *Extractor) ExtractAsync() <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		ch <- e.Extract()
		close(ch)
	}()
	return ch
}

// HasText reports whether the document contains extractable text.
func (e *Extractor) HasText() bool {
	res := e.Extract()
	return res.Success && len(res.Text) > 0
}

// ============================================================================
// Pipeline
// ============================================================================

// extractHTML handles HTML receipts (common for emailed receipts saved as
// web pages).
func (e *Extractor) extractHTML(buf []byte) Result {
	doc, err := htmldoc.Parse(bytes.NewReader(buf))
	if err != nil {
		return failure(ErrUnknown, fmt.Sprintf("failed to parse HTML: %v", err), 0, nil)
	}
	lines := doc.Lines
	if len(lines) == 0 {
		return failure(ErrNoTextContent, "no text content found", 1, nil)
	}
	return Result{
		Success:   true,
		Text:      strings.Join(lines, "\n"),
		Lines:     lines,
		PageCount: 1,
	}
}

// extractPDF runs the PDF pipeline: scan for streams, build the glyph map,
// decode and assemble content streams, and fall back to OCR for image-only
// documents when a recognizer is configured.
func (e *Extractor) extractPDF(buf []byte) Result {
	var warnings []Warning

	records, scanWarnings := scanner.Scan(buf)
	for _, w := range scanWarnings {
		warnings = append(warnings, Warning{Message: w})
	}

	glyphMap, mapWarnings := cmap.Build(buf, records)
	for _, w := range mapWarnings {
		warnings = append(warnings, Warning{Message: w})
	}

	pageCount := scanner.CountPages(buf)

	var pieces []string
	for _, rec := range records {
		data, err := scanner.Decode(buf, rec)
		if err != nil {
			warnings = append(warnings, Warning{
				Message: fmt.Sprintf("object %d: %v", rec.Object, err),
			})
			continue
		}
		if !content.HasTextRegion(data) {
			continue
		}
		text, ok := content.ExtractText(data, glyphMap, e.options.kerningThreshold)
		if ok && text != "" {
			pieces = append(pieces, text)
		}
	}

	text := strings.Join(pieces, "\n")
	lines := splitLines(text)

	if len(lines) == 0 && e.options.recognizer != nil {
		if ocrLines, ocrWarnings := e.recognizeImages(buf, records); len(ocrLines) > 0 {
			warnings = append(warnings, ocrWarnings...)
			return Result{
				Success:   true,
				Text:      strings.Join(ocrLines, "\n"),
				Lines:     ocrLines,
				PageCount: pageCount,
				Warnings:  warnings,
			}
		} else {
			warnings = append(warnings, ocrWarnings...)
		}
	}

	if len(lines) == 0 {
		return failure(ErrNoTextContent, "no text content found", pageCount, warnings)
	}

	return Result{
		Success:   true,
		Text:      text,
		Lines:     lines,
		PageCount: pageCount,
		Warnings:  warnings,
	}
}

// recognizeImages recovers image streams and runs them through the
// configured OCR recognizer, collecting whatever text comes back.
func (e *Extractor) recognizeImages(buf []byte, records []scanner.StreamRecord) ([]string, []Warning) {
	var warnings []Warning

	if e.options.language != "" {
		if ls, ok := e.options.recognizer.(interface{ SetLanguage(string) error }); ok {
			if err := ls.SetLanguage(e.options.language); err != nil {
				warnings = append(warnings, Warning{
					Message: fmt.Sprintf("failed to set OCR language: %v", err),
				})
			}
		}
	}

	var lines []string
	for _, rec := range records {
		img, err := scanner.RecoverImage(buf, rec)
		if err != nil || img == nil {
			continue
		}
		imageData, err := img.Bytes()
		if err != nil {
			warnings = append(warnings, Warning{
				Message: fmt.Sprintf("object %d: failed to encode image: %v", rec.Object, err),
			})
			continue
		}
		text, err := e.options.recognizer.RecognizeImage(imageData)
		if err != nil {
			warnings = append(warnings, Warning{
				Message: fmt.Sprintf("object %d: OCR failed: %v", rec.Object, err),
			})
			continue
		}
		lines = append(lines, splitLines(text)...)
	}
	return lines, warnings
}
