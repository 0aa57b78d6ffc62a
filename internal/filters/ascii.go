package filters

import (
	"bytes"
	"fmt"
)

// ASCIIHexDecode decodes ASCII hexadecimal encoded data. Whitespace between
// digits is ignored and > ends the data. An odd trailing digit is padded
// with zero.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	var out bytes.Buffer

	var hi byte
	havePair := false
	for _, c := range data {
		if isWhitespace(c) {
			continue
		}
		if c == '>' {
			break
		}

		v, err := hexDigit(c)
		if err != nil {
			return nil, err
		}
		if !havePair {
			hi = v
			havePair = true
		} else {
			out.WriteByte(hi<<4 | v)
			havePair = false
		}
	}
	if havePair {
		out.WriteByte(hi << 4)
	}

	return out.Bytes(), nil
}

// ASCII85Decode decodes base-85 encoded data. Groups of 5 characters in
// '!'..'u' carry 4 bytes; 'z' is shorthand for four zero bytes; ~> ends the
// data. A short final group is padded with 'u' and yields one byte fewer
// than its digit count.
func ASCII85Decode(data []byte) ([]byte, error) {
	var out bytes.Buffer

	i := 0
	for i < len(data) {
		c := data[i]
		if isWhitespace(c) {
			i++
			continue
		}
		if c == '~' {
			break
		}
		if c == 'z' {
			out.Write([]byte{0, 0, 0, 0})
			i++
			continue
		}

		group := make([]byte, 0, 5)
		for len(group) < 5 && i < len(data) {
			c := data[i]
			if isWhitespace(c) {
				i++
				continue
			}
			if c == '~' {
				break
			}
			if c < '!' || c > 'u' {
				return nil, fmt.Errorf("invalid base-85 character %q", c)
			}
			group = append(group, c-'!')
			i++
		}
		if len(group) == 0 {
			break
		}
		if len(group) == 1 {
			return nil, fmt.Errorf("truncated base-85 group")
		}

		n := len(group) - 1
		if n > 4 {
			n = 4
		}
		for len(group) < 5 {
			group = append(group, 'u'-'!')
		}

		var v uint32
		for _, d := range group {
			v = v*85 + uint32(d)
		}
		for j := 0; j < n; j++ {
			out.WriteByte(byte(v >> (24 - j*8)))
		}
	}

	return out.Bytes(), nil
}

// hexDigit converts a hexadecimal character to its value.
func hexDigit(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, fmt.Errorf("invalid hex digit %q", c)
}

// isWhitespace reports whether c is a container whitespace character.
func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
