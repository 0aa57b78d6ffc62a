package content

import (
	"bytes"
	"testing"

	"github.com/kvittolabs/kvitto/core"
)

// TestParseBasicOperations tests operator and operand grouping
func TestParseBasicOperations(t *testing.T) {
	ops, err := NewParser([]byte("/F1 12 Tf (Hello) Tj")).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(ops))
	}

	if ops[0].Operator != "Tf" {
		t.Errorf("op 0: got %q, want Tf", ops[0].Operator)
	}
	if len(ops[0].Operands) != 2 {
		t.Fatalf("op 0: expected 2 operands, got %d", len(ops[0].Operands))
	}
	if name, ok := ops[0].Operands[0].(core.Name); !ok || name != "F1" {
		t.Errorf("op 0 operand 0: got %v", ops[0].Operands[0])
	}

	if ops[1].Operator != "Tj" {
		t.Errorf("op 1: got %q, want Tj", ops[1].Operator)
	}
	if s, ok := ops[1].Operands[0].(core.String); !ok || string(s) != "Hello" {
		t.Errorf("op 1 operand 0: got %v", ops[1].Operands[0])
	}
}

// TestParseNumbers tests integer and real operands, including signs
func TestParseNumbers(t *testing.T) {
	ops, err := NewParser([]byte("1 0 0 1 72.5 -720 Tm")).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(ops) != 1 || len(ops[0].Operands) != 6 {
		t.Fatalf("unexpected shape: %+v", ops)
	}

	if r, ok := ops[0].Operands[4].(core.Real); !ok || r != 72.5 {
		t.Errorf("operand 4: got %v", ops[0].Operands[4])
	}
	if i, ok := ops[0].Operands[5].(core.Int); !ok || i != -720 {
		t.Errorf("operand 5: got %v", ops[0].Operands[5])
	}
}

// TestParseStringEscapes tests the literal string escape sequences
func TestParseStringEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"newline", `(a\nb) Tj`, "a\nb"},
		{"tab", `(a\tb) Tj`, "a\tb"},
		{"parens", `(a\(b\)c) Tj`, "a(b)c"},
		{"backslash", `(a\\b) Tj`, `a\b`},
		{"octal", `(\101\102) Tj`, "AB"},
		{"octal overflow wraps", `(\777) Tj`, "\xff"},
		{"nested balanced parens", `(a(b)c) Tj`, "a(b)c"},
		{"line continuation", "(a\\\nb) Tj", "ab"},
		{"unknown escape keeps char", `(a\qb) Tj`, "aqb"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ops, err := NewParser([]byte(tc.input)).Parse()
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(ops) != 1 || len(ops[0].Operands) != 1 {
				t.Fatalf("unexpected shape: %+v", ops)
			}
			s, ok := ops[0].Operands[0].(core.String)
			if !ok {
				t.Fatalf("operand is %T, want core.String", ops[0].Operands[0])
			}
			if string(s) != tc.want {
				t.Errorf("got %q, want %q", string(s), tc.want)
			}
		})
	}
}

// TestParseHexString tests hex strings, which stay distinct from literal
// strings so the assembler can apply different fallbacks
func TestParseHexString(t *testing.T) {
	ops, err := NewParser([]byte("<48 65 6C> Tj")).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	h, ok := ops[0].Operands[0].(core.HexString)
	if !ok {
		t.Fatalf("operand is %T, want core.HexString", ops[0].Operands[0])
	}
	if !bytes.Equal(h, []byte("Hel")) {
		t.Errorf("got %v", []byte(h))
	}
}

// TestParseHexStringOddDigit tests zero padding of an odd final digit
func TestParseHexStringOddDigit(t *testing.T) {
	ops, err := NewParser([]byte("<5> Tj")).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	h := ops[0].Operands[0].(core.HexString)
	if !bytes.Equal(h, []byte{0x50}) {
		t.Errorf("got %v, want [0x50]", []byte(h))
	}
}

// TestParseArray tests array operands with mixed element types
func TestParseArray(t *testing.T) {
	ops, err := NewParser([]byte("[(He) -250 (llo)] TJ")).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(ops) != 1 || ops[0].Operator != "TJ" {
		t.Fatalf("unexpected shape: %+v", ops)
	}

	arr, ok := ops[0].Operands[0].(core.Array)
	if !ok {
		t.Fatalf("operand is %T, want core.Array", ops[0].Operands[0])
	}
	if arr.Len() != 3 {
		t.Fatalf("expected 3 elements, got %d", arr.Len())
	}
	if i, ok := arr.Get(1).(core.Int); !ok || i != -250 {
		t.Errorf("element 1: got %v", arr.Get(1))
	}
}

// TestParseQuoteOperators tests ' and " which start with non-letter bytes
func TestParseQuoteOperators(t *testing.T) {
	ops, err := NewParser([]byte(`(line) ' 1 2 (word) "`)).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(ops))
	}
	if ops[0].Operator != "'" {
		t.Errorf("op 0: got %q", ops[0].Operator)
	}
	if ops[1].Operator != `"` || len(ops[1].Operands) != 3 {
		t.Errorf("op 1: got %q with %d operands", ops[1].Operator, len(ops[1].Operands))
	}
}

// TestParseStarOperators tests operators containing * such as T*
func TestParseStarOperators(t *testing.T) {
	ops, err := NewParser([]byte("T*")).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(ops) != 1 || ops[0].Operator != "T*" {
		t.Fatalf("got %+v", ops)
	}
}

// TestParseMalformedPrefix verifies that operations before a malformed
// token are still returned
func TestParseMalformedPrefix(t *testing.T) {
	ops, err := NewParser([]byte("(ok) Tj (unterminated")).Parse()
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
	if len(ops) != 1 || ops[0].Operator != "Tj" {
		t.Errorf("expected the readable prefix, got %+v", ops)
	}
}
