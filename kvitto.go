// Package kvitto extracts text lines from digital receipts so they can be
// fed to a downstream field parser. It handles receipt PDFs produced by
// point-of-sale systems and emailed HTML receipts, and can fall back to OCR
// for image-only documents.
//
// Basic usage:
//
//	res := kvitto.ExtractText("receipt.pdf")
//	if !res.Success {
//	    // res.Err is "no_text_content" or "unknown"
//	}
//	for _, line := range res.Lines {
//	    // feed to the receipt parser
//	}
//
// With options:
//
//	res := kvitto.Open("receipt.pdf").
//	    KerningThreshold(-150).
//	    Extract()
//
// Extraction never panics and never returns a Go error from the terminal
// methods; all failures are reported through the Result.
package kvitto

// Open returns an Extractor for fluent configuration over the given file.
//
// Example:
//
//	res := kvitto.Open("receipt.pdf").Extract()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// ExtractText extracts text from the given file with default options.
func ExtractText(filename string) Result {
	return Open(filename).Extract()
}

// HasText reports whether the given file contains extractable text.
func HasText(filename string) bool {
	return Open(filename).HasText()
}
