package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Object represents a typed value decoded from a content or cmap stream.
type Object interface {
	Type() ObjectType
	String() string
}

// ObjectType represents the type of a decoded object.
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBool
	ObjInt
	ObjReal
	ObjString
	ObjHexString
	ObjName
	ObjArray
	ObjDict
)

// String returns the string representation of the object type.
func (t ObjectType) String() string {
	switch t {
	case ObjNull:
		return "Null"
	case ObjBool:
		return "Bool"
	case ObjInt:
		return "Int"
	case ObjReal:
		return "Real"
	case ObjString:
		return "String"
	case ObjHexString:
		return "HexString"
	case ObjName:
		return "Name"
	case ObjArray:
		return "Array"
	case ObjDict:
		return "Dict"
	default:
		return "Unknown"
	}
}

// Null represents a null object.
type Null struct{}

func (n Null) Type() ObjectType { return ObjNull }
func (n Null) String() string   { return "null" }

// Bool represents a boolean.
type Bool bool

func (b Bool) Type() ObjectType { return ObjBool }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Int represents an integer.
type Int int64

func (i Int) Type() ObjectType { return ObjInt }
func (i Int) String() string   { return strconv.FormatInt(int64(i), 10) }

// Real represents a real number.
type Real float64

func (r Real) Type() ObjectType { return ObjReal }
func (r Real) String() string   { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// String represents a literal string, written between parentheses in the
// source, with escape sequences already resolved. The bytes are glyph codes,
// not necessarily valid UTF-8.
type String []byte

func (s String) Type() ObjectType { return ObjString }
func (s String) String() string   { return "(" + string([]byte(s)) + ")" }

// HexString represents an angle-bracket hex string with the hex digits
// already decoded to raw bytes. It is kept distinct from String because the
// two forms take different fallback decodings when no glyph map applies.
type HexString []byte

func (s HexString) Type() ObjectType { return ObjHexString }
func (s HexString) String() string   { return fmt.Sprintf("<% X>", []byte(s)) }

// Name represents a name object such as /FlateDecode.
type Name string

func (n Name) Type() ObjectType { return ObjName }
func (n Name) String() string   { return "/" + string(n) }

// Array represents an array of objects.
type Array []Object

func (a Array) Type() ObjectType { return ObjArray }
func (a Array) String() string {
	parts := make([]string, 0, len(a))
	for _, obj := range a {
		parts = append(parts, obj.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Len returns the length of the array.
func (a Array) Len() int {
	return len(a)
}

// Get retrieves the element at the given index, or nil when out of range.
func (a Array) Get(index int) Object {
	if index < 0 || index >= len(a) {
		return nil
	}
	return a[index]
}

// Dict represents a dictionary. Dictionaries appear rarely inside content
// streams (marked-content operators) but must still tokenize cleanly.
type Dict map[string]Object

func (d Dict) Type() ObjectType { return ObjDict }
func (d Dict) String() string {
	parts := make([]string, 0, len(d))
	for key, val := range d {
		parts = append(parts, fmt.Sprintf("/%s %s", key, val.String()))
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

// Get retrieves a value from the dictionary.
func (d Dict) Get(key string) Object {
	return d[key]
}

// GetInt retrieves an integer value.
func (d Dict) GetInt(key string) (Int, bool) {
	obj, ok := d[key]
	if !ok {
		return 0, false
	}
	i, ok := obj.(Int)
	return i, ok
}

// GetName retrieves a name value.
func (d Dict) GetName(key string) (Name, bool) {
	obj, ok := d[key]
	if !ok {
		return "", false
	}
	name, ok := obj.(Name)
	return name, ok
}

// Has checks if a key exists in the dictionary.
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}
