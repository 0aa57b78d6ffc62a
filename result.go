package kvitto

import "strings"

// ErrorCode classifies why an extraction produced no usable text.
type ErrorCode string

const (
	// ErrNoTextContent means the document was read successfully but no
	// text could be extracted from it. Typical for photographed or
	// scanned receipts where the PDF contains only an image.
	ErrNoTextContent ErrorCode = "no_text_content"

	// ErrUnknown covers everything else: unreadable files, malformed
	// documents, and internal failures.
	ErrUnknown ErrorCode = "unknown"
)

// Result is the outcome of a text extraction. Extraction never panics or
// returns a Go error from the terminal methods; failures are reported here
// so callers can branch on Success and Err.
type Result struct {
	// Success is true when at least one line of text was extracted.
	Success bool

	// Text is the full extracted text. Lines are separated by "\n".
	Text string

	// Lines is Text split into trimmed, non-empty lines. This is the
	// form downstream receipt parsers consume.
	Lines []string

	// PageCount is the number of pages in the document. At least 1 for
	// any document that was read successfully; 0 on failure.
	PageCount int

	// Err classifies the failure when Success is false. Empty on success.
	Err ErrorCode

	// Message carries detail about the failure, when available.
	Message string

	// Warnings lists non-fatal issues encountered during extraction,
	// such as streams that could not be decompressed.
	Warnings []Warning
}

// Warning describes a non-fatal issue encountered during extraction.
type Warning struct {
	Message string
}

// FormatWarnings joins warnings into a single human-readable string.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	msgs := make([]string, len(warnings))
	for i, w := range warnings {
		msgs[i] = w.Message
	}
	return strings.Join(msgs, "; ")
}

// failure builds an unsuccessful Result.
func failure(code ErrorCode, message string, pageCount int, warnings []Warning) Result {
	return Result{
		PageCount: pageCount,
		Err:       code,
		Message:   message,
		Warnings:  warnings,
	}
}

// splitLines splits extracted text into trimmed, non-empty lines.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
