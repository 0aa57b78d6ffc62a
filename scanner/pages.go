package scanner

import "bytes"

var kwType = []byte("/Type")

// CountPages counts page declarations: every /Type /Page marker that is not
// immediately followed by the plural page-collection form. A document that
// declares no pages still reports one, so downstream consumers can rely on
// a positive count for any successfully parsed file.
func CountPages(buf []byte) int {
	count := 0
	from := 0
	for {
		rel := bytes.Index(buf[from:], kwType)
		if rel < 0 {
			break
		}
		idx := from + rel
		from = idx + len(kwType)

		if idx > 0 && isRegular(buf[idx-1]) {
			continue
		}

		i := skipSpace(buf, idx+len(kwType))
		name, _ := readName(buf, i)
		if name == "Page" {
			count++
		}
	}

	if count == 0 {
		return 1
	}
	return count
}
