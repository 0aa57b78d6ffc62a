package filters

import (
	"bytes"
	"io"

	"golang.org/x/image/ccitt"
)

// CCITTFaxDecode decodes CCITT Group 3/4 fax compressed data, the usual
// encoding for bi-level images embedded in scanned receipts. The recovered
// bitmap feeds the OCR boundary, not the text pipeline.
//
// Parameters: K selects the group (-1 Group 4, otherwise Group 3), Columns
// is the row width in pixels (default 1728), Rows the height (0 means
// auto-detect), BlackIs1 flips bit interpretation.
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	columns := paramOr(params, "Columns", 1728)
	rows := paramOr(params, "Rows", 0)
	k := paramOr(params, "K", 0)
	blackIs1 := params["BlackIs1"] != 0

	sf := ccitt.Group3
	if k < 0 {
		sf = ccitt.Group4
	}
	if rows == 0 {
		rows = ccitt.AutoDetectHeight
	}

	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, rows, &ccitt.Options{Invert: blackIs1})
	return io.ReadAll(r)
}
