package content

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/kvittolabs/kvitto/core"
)

// Operation is a single content stream operation: an operator and the
// operands that preceded it.
type Operation struct {
	Operator string
	Operands []core.Object
}

// Parser tokenizes content stream data into a sequence of operations.
// Operands accumulate on a stack until an operator consumes them.
type Parser struct {
	data  []byte
	pos   int
	ops   []Operation
	stack []core.Object
}

// NewParser creates a parser for the given content stream data.
func NewParser(data []byte) *Parser {
	return &Parser{data: data}
}

// Parse walks the whole input and returns the operations in order. The
// operations collected before a malformed token are returned alongside the
// error, so a damaged stream still contributes its readable prefix.
func (p *Parser) Parse() ([]Operation, error) {
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return p.ops, nil
		}
		if err := p.parseNext(); err != nil {
			return p.ops, err
		}
	}
}

func (p *Parser) parseNext() error {
	c := p.data[p.pos]

	if isLetter(c) || c == '\'' || c == '"' {
		p.parseOperator()
		return nil
	}

	operand, err := p.parseOperand()
	if err != nil {
		return err
	}
	p.stack = append(p.stack, operand)
	return nil
}

// parseOperator reads an operator name and emits an operation with the
// current operand stack.
func (p *Parser) parseOperator() {
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isLetter(c) || c == '\'' || c == '"' || c == '*' || (c >= '0' && c <= '9' && p.pos > start) {
			p.pos++
		} else {
			break
		}
	}

	op := Operation{
		Operator: string(p.data[start:p.pos]),
		Operands: make([]core.Object, len(p.stack)),
	}
	copy(op.Operands, p.stack)
	p.ops = append(p.ops, op)
	p.stack = p.stack[:0]
}

func (p *Parser) parseOperand() (core.Object, error) {
	p.skipWhitespace()
	if p.pos >= len(p.data) {
		return nil, fmt.Errorf("unexpected end of stream")
	}

	c := p.data[p.pos]
	switch {
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case c == '(':
		return p.parseString()
	case c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<':
		return p.parseDict()
	case c == '<':
		return p.parseHexString()
	case c == '/':
		return p.parseName()
	case c == '[':
		return p.parseArray()
	case c == 't' || c == 'f' || c == 'n':
		// Booleans and null inside arrays and dictionaries.
		end := p.pos
		for end < len(p.data) && !isWhitespace(p.data[end]) && !isDelimiter(p.data[end]) {
			end++
		}
		switch string(p.data[p.pos:end]) {
		case "true":
			p.pos = end
			return core.Bool(true), nil
		case "false":
			p.pos = end
			return core.Bool(false), nil
		case "null":
			p.pos = end
			return core.Null{}, nil
		}
	}

	return nil, fmt.Errorf("unexpected character %q at position %d", c, p.pos)
}

func (p *Parser) parseNumber() (core.Object, error) {
	start := p.pos
	hasDecimal := false

	if p.data[p.pos] == '+' || p.data[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
		} else if c == '.' && !hasDecimal {
			hasDecimal = true
			p.pos++
		} else {
			break
		}
	}

	s := string(p.data[start:p.pos])
	if hasDecimal {
		val, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real number %q: %w", s, err)
		}
		return core.Real(val), nil
	}

	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", s, err)
	}
	return core.Int(val), nil
}

// parseString reads a literal string with escape-aware parenthesis depth
// tracking, resolving escape sequences to bytes.
func (p *Parser) parseString() (core.Object, error) {
	p.pos++ // '('

	var result bytes.Buffer
	depth := 1

	for p.pos < len(p.data) && depth > 0 {
		c := p.data[p.pos]

		switch {
		case c == '\\' && p.pos+1 < len(p.data):
			p.pos++
			next := p.data[p.pos]
			switch next {
			case 'n':
				result.WriteByte('\n')
				p.pos++
			case 'r':
				result.WriteByte('\r')
				p.pos++
			case 't':
				result.WriteByte('\t')
				p.pos++
			case 'b':
				result.WriteByte('\b')
				p.pos++
			case 'f':
				result.WriteByte('\f')
				p.pos++
			case '(', ')', '\\':
				result.WriteByte(next)
				p.pos++
			case '\r':
				// Line continuation.
				p.pos++
				if p.pos < len(p.data) && p.data[p.pos] == '\n' {
					p.pos++
				}
			case '\n':
				p.pos++
			case '0', '1', '2', '3', '4', '5', '6', '7':
				// Octal escape \ddd, up to three digits, value mod 256.
				val := int(next - '0')
				p.pos++
				for i := 0; i < 2 && p.pos < len(p.data); i++ {
					d := p.data[p.pos]
					if d < '0' || d > '7' {
						break
					}
					val = val*8 + int(d-'0')
					p.pos++
				}
				result.WriteByte(byte(val & 0xFF))
			default:
				// Unknown escape: the backslash is ignored.
				result.WriteByte(next)
				p.pos++
			}
		case c == '(':
			depth++
			result.WriteByte(c)
			p.pos++
		case c == ')':
			depth--
			if depth > 0 {
				result.WriteByte(c)
			}
			p.pos++
		default:
			result.WriteByte(c)
			p.pos++
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf("unclosed string")
	}
	return core.String(result.Bytes()), nil
}

func (p *Parser) parseHexString() (core.Object, error) {
	p.pos++ // '<'

	var result bytes.Buffer
	var hi byte
	havePair := false

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c == '>' {
			p.pos++
			if havePair {
				// Odd digit count: trailing zero assumed.
				result.WriteByte(hi << 4)
			}
			return core.HexString(result.Bytes()), nil
		}
		p.pos++
		if isWhitespace(c) {
			continue
		}
		if !isHexDigit(c) {
			return nil, fmt.Errorf("invalid hex digit %q", c)
		}
		if !havePair {
			hi = hexValue(c)
			havePair = true
		} else {
			result.WriteByte(hi<<4 | hexValue(c))
			havePair = false
		}
	}

	return nil, fmt.Errorf("unclosed hex string")
}

func (p *Parser) parseName() (core.Object, error) {
	p.pos++ // '/'

	var result bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.data) && isHexDigit(p.data[p.pos+1]) && isHexDigit(p.data[p.pos+2]) {
			result.WriteByte(hexValue(p.data[p.pos+1])<<4 | hexValue(p.data[p.pos+2]))
			p.pos += 3
			continue
		}
		result.WriteByte(c)
		p.pos++
	}

	return core.Name(result.String()), nil
}

func (p *Parser) parseArray() (core.Object, error) {
	p.pos++ // '['

	var arr core.Array
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed array")
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}

		obj, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

// parseDict reads a dictionary, which appears in content streams only as a
// marked-content property list.
func (p *Parser) parseDict() (core.Object, error) {
	p.pos += 2 // '<<'

	dict := make(core.Dict)
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed dictionary")
		}
		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.pos += 2
			return dict, nil
		}
		if p.data[p.pos] != '/' {
			return nil, fmt.Errorf("dictionary key must be a name")
		}

		key, err := p.parseName()
		if err != nil {
			return nil, err
		}
		val, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		dict[string(key.(core.Name))] = val
	}
}

func (p *Parser) skipWhitespace() {
	for p.pos < len(p.data) && isWhitespace(p.data[p.pos]) {
		p.pos++
	}
}

// Byte class helpers.

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' ||
		c == '/' || c == '%'
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
