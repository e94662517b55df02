// Package values converts raw SQL literal text into typed values.
package values

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value
type Kind int

const (
	Null Kind = iota
	String
	Integer
	Float
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case String:
		return "string"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value is an immutable typed literal. The zero Value is Null.
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	b    bool
}

var (
	floatPattern = regexp.MustCompile(`^-?\d+\.\d+$`)
	intPattern   = regexp.MustCompile(`^-?\d+$`)
)

// NewString wraps an already unquoted string
func NewString(s string) Value { return Value{kind: String, str: s} }

// NewInteger wraps an integer
func NewInteger(i int64) Value { return Value{kind: Integer, i: i} }

// NewFloat wraps a float
func NewFloat(f float64) Value { return Value{kind: Float, f: f} }

// NewBoolean wraps a boolean
func NewBoolean(b bool) Value { return Value{kind: Boolean, b: b} }

// NullValue returns the Null value
func NullValue() Value { return Value{} }

// Parse converts a raw literal token into a typed value.
// Quoted text becomes a String without its quotes, NULL/TRUE/FALSE are
// recognized case-insensitively, decimal and integer literals become numbers
// and anything else is kept as a raw String.
func Parse(raw string) Value {
	s := Clean(raw)

	if isQuoted(s) {
		return NewString(unquote(s))
	}

	switch strings.ToUpper(s) {
	case "NULL":
		return NullValue()
	case "TRUE":
		return NewBoolean(true)
	case "FALSE":
		return NewBoolean(false)
	}

	if floatPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return NewFloat(f)
		}
	}
	if intPattern.MatchString(s) {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return NewInteger(i)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return NewFloat(f)
		}
	}

	return NewString(s)
}

// Clean trims blanks and drops one trailing statement terminator, but only
// when single and double quotes are balanced.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasSuffix(s, ";") {
		return s
	}
	if strings.Count(s, "'")%2 != 0 || strings.Count(s, `"`)%2 != 0 {
		return s
	}
	return strings.TrimSpace(strings.TrimSuffix(s, ";"))
}

// IsQuoted reports whether raw is a single or double quoted literal
func IsQuoted(raw string) bool {
	return isQuoted(strings.TrimSpace(raw))
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '\'' || first == '"') && first == last
}

func unquote(s string) string {
	q := s[:1]
	inner := s[1 : len(s)-1]
	return strings.ReplaceAll(inner, q+q, q)
}

// Kind returns the variant tag
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null
func (v Value) IsNull() bool { return v.kind == Null }

// IsNumeric reports whether v is an Integer or Float
func (v Value) IsNumeric() bool { return v.kind == Integer || v.kind == Float }

// Str returns the string payload
func (v Value) Str() string { return v.str }

// Int returns the integer payload
func (v Value) Int() int64 { return v.i }

// Float returns the float payload, converting integers
func (v Value) Float() float64 {
	if v.kind == Integer {
		return float64(v.i)
	}
	return v.f
}

// Bool returns the boolean payload
func (v Value) Bool() bool { return v.b }

// Interface returns the Go value used in BSON documents
func (v Value) Interface() interface{} {
	switch v.kind {
	case String:
		return v.str
	case Integer:
		return v.i
	case Float:
		return v.f
	case Boolean:
		return v.b
	default:
		return nil
	}
}

// String renders v as SQL literal text
func (v Value) String() string {
	switch v.kind {
	case String:
		return "'" + strings.ReplaceAll(v.str, "'", "''") + "'"
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case Boolean:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	default:
		return "NULL"
	}
}

// GoString is used by %#v
func (v Value) GoString() string {
	return fmt.Sprintf("values.Value{%s: %s}", v.kind, v.String())
}
