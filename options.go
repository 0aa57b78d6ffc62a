package kvitto

import "github.com/kvittolabs/kvitto/content"

// ExtractOptions holds configuration for text extraction.
type ExtractOptions struct {
	// Kerning adjustments more negative than this threshold are treated
	// as word gaps and synthesize a space.
	kerningThreshold float64

	// OCR fallback for image-only documents
	recognizer TextRecognizer
	language   string
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		kerningThreshold: content.DefaultKerningThreshold,
		recognizer:       nil,
		language:         "",
	}
}

// clone creates a copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	return ExtractOptions{
		kerningThreshold: o.kerningThreshold,
		recognizer:       o.recognizer,
		language:         o.language,
	}
}
