package cmap

type tokKind int

const (
	tokEOF tokKind = iota
	tokHex
	tokKeyword
	tokArrayStart
	tokArrayEnd
	tokOther
)

type token struct {
	kind tokKind
	data []byte // decoded bytes for tokHex
	word string // keyword text for tokKeyword
}

// lexer tokenizes cmap content directly from bytes. It recognizes only what
// the table grammar needs; names, numbers, literal strings, and dictionary
// markers are consumed and reported as tokOther so the parser can skip
// them without a structural parse.
type lexer struct {
	data []byte
	pos  int
}

func newLexer(data []byte) *lexer {
	return &lexer{data: data}
}

func (l *lexer) next() token {
	l.skipSpaceAndComments()
	if l.pos >= len(l.data) {
		return token{kind: tokEOF}
	}

	c := l.data[l.pos]
	switch {
	case c == '[':
		l.pos++
		return token{kind: tokArrayStart}
	case c == ']':
		l.pos++
		return token{kind: tokArrayEnd}
	case c == '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			return token{kind: tokOther}
		}
		return l.readHex()
	case c == '>':
		l.pos++
		if l.pos < len(l.data) && l.data[l.pos] == '>' {
			l.pos++
		}
		return token{kind: tokOther}
	case c == '/':
		l.pos++
		l.consumeRegular()
		return token{kind: tokOther}
	case c == '(':
		l.skipLiteral()
		return token{kind: tokOther}
	case isAlphaByte(c):
		start := l.pos
		l.consumeRegular()
		return token{kind: tokKeyword, word: string(l.data[start:l.pos])}
	default:
		l.pos++
		l.consumeRegular()
		return token{kind: tokOther}
	}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isSpaceByte(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

// readHex reads <...>, ignoring embedded whitespace, and decodes the digits
// to bytes. An odd trailing digit is padded with zero.
func (l *lexer) readHex() token {
	l.pos++ // '<'
	var out []byte
	var hi byte
	havePair := false

	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '>' {
			l.pos++
			break
		}
		l.pos++
		if isSpaceByte(c) {
			continue
		}
		v, ok := hexVal(c)
		if !ok {
			continue
		}
		if !havePair {
			hi = v
			havePair = true
		} else {
			out = append(out, hi<<4|v)
			havePair = false
		}
	}
	if havePair {
		out = append(out, hi<<4)
	}

	return token{kind: tokHex, data: out}
}

// skipLiteral consumes a parenthesized string with escape-aware depth
// tracking.
func (l *lexer) skipLiteral() {
	l.pos++ // '('
	depth := 1
	for l.pos < len(l.data) && depth > 0 {
		switch l.data[l.pos] {
		case '\\':
			l.pos++
		case '(':
			depth++
		case ')':
			depth--
		}
		l.pos++
	}
}

func (l *lexer) consumeRegular() {
	for l.pos < len(l.data) && isRegular(l.data[l.pos]) {
		l.pos++
	}
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func skipSpace(data []byte, i int) int {
	for i < len(data) && isSpaceByte(data[i]) {
		i++
	}
	return i
}

func isAlphaByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

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
