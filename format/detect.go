// Package format provides file format detection for incoming receipt
// documents. Detection prefers content sniffing over the file extension;
// emailed receipts frequently arrive with misleading names.
package format

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// HTML indicates an HTML document.
	HTML
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case HTML:
		return "HTML"
	default:
		return "Unknown"
	}
}

// Detect determines a document's format from its leading bytes, consulting
// the filename extension only when sniffing is inconclusive.
func Detect(filename string, head []byte) Format {
	if f := Sniff(head); f != Unknown {
		return f
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF
	case ".html", ".htm":
		return HTML
	}
	return Unknown
}

// Sniff determines the format from leading file content alone.
func Sniff(head []byte) Format {
	if bytes.HasPrefix(head, []byte("%PDF-")) {
		return PDF
	}

	probe := head
	if len(probe) > 512 {
		probe = probe[:512]
	}
	lower := bytes.ToLower(bytes.TrimLeft(probe, " \t\r\n\xef\xbb\xbf"))
	for _, marker := range [][]byte{[]byte("<!doctype html"), []byte("<html")} {
		if bytes.HasPrefix(lower, marker) {
			return HTML
		}
	}

	return Unknown
}
