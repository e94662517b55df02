package mongodb

import (
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/values"
	"github.com/ErikMLC/sqlmongo/mapping"

	"go.mongodb.org/mongo-driver/bson"
)

// ============================================================================
// SCALAR FUNCTIONS
// ============================================================================

// TranslateFunction converts a SQL scalar call to an aggregation expression.
// Text that is not a recognized call is returned as a field path.
func TranslateFunction(expr string) interface{} {
	name, rawArgs, ok := ParseCall(expr)
	if !ok {
		return FieldPath(expr)
	}
	op, known := mapping.ScalarFunctions[name]
	if !known {
		return FieldPath(expr)
	}

	args := SplitArgs(rawArgs)
	if len(args) == 0 {
		return FieldPath(expr)
	}

	switch name {
	case "CONCAT":
		parts := bson.A{}
		for _, arg := range args {
			parts = append(parts, Operand(arg))
		}
		return bson.D{{Key: op, Value: parts}}

	case "SUBSTRING", "SUBSTR":
		parts := bson.A{Operand(args[0])}
		if len(args) > 1 {
			parts = append(parts, zeroBased(args[1]))
		} else {
			parts = append(parts, 0)
		}
		if len(args) > 2 {
			parts = append(parts, Operand(args[2]))
		} else {
			// substrCP requires a length; take the rest of the string
			parts = append(parts, bson.D{{Key: "$strLenCP", Value: Operand(args[0])}})
		}
		return bson.D{{Key: op, Value: parts}}

	case "TRIM":
		return bson.D{{Key: op, Value: bson.D{{Key: "input", Value: Operand(args[0])}}}}
	}

	return bson.D{{Key: op, Value: Operand(args[0])}}
}

// zeroBased converts a 1-based SQL position to a 0-based offset
func zeroBased(arg string) interface{} {
	v := values.Parse(arg)
	switch v.Kind() {
	case values.Integer:
		return v.Int() - 1
	case values.Float:
		return int64(v.Float()) - 1
	}
	return bson.D{{Key: "$subtract", Value: bson.A{Operand(arg), 1}}}
}

// Operand converts one function argument: quoted literals and numbers stay
// literal, recognized calls are translated, anything else is a field path.
func Operand(arg string) interface{} {
	arg = strings.TrimSpace(arg)
	if values.IsQuoted(arg) {
		return values.Parse(arg).Str()
	}
	if v := values.Parse(arg); v.IsNumeric() || v.IsNull() || v.Kind() == values.Boolean {
		return v.Interface()
	}
	if name, _, ok := ParseCall(arg); ok && mapping.IsScalarFunction(name) {
		return TranslateFunction(arg)
	}
	return FieldPath(arg)
}

// FieldPath prefixes a field name with "$"
func FieldPath(field string) string {
	field = strings.TrimSpace(field)
	if strings.HasPrefix(field, "$") {
		return field
	}
	return "$" + field
}

// ============================================================================
// CALL PARSING
// ============================================================================

// ParseCall splits "NAME(args)" into the upper-cased name and the raw
// argument text. ok is false unless the whole expression is one call.
func ParseCall(expr string) (name, args string, ok bool) {
	expr = strings.TrimSpace(expr)
	open := strings.IndexByte(expr, '(')
	if open <= 0 || !strings.HasSuffix(expr, ")") {
		return "", "", false
	}

	name = strings.ToUpper(strings.TrimSpace(expr[:open]))
	for _, r := range name {
		if !IsLetter(r) && r != '_' && (r < '0' || r > '9') {
			return "", "", false
		}
	}

	if closeAt := matchingParen(expr, open); closeAt != len(expr)-1 {
		return "", "", false
	}
	return name, strings.TrimSpace(expr[open+1 : len(expr)-1]), true
}

// matchingParen returns the index of the ')' closing the '(' at open, or -1
func matchingParen(s string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// SplitArgs splits an argument list on top-level commas, respecting quotes
// and nested parentheses.
func SplitArgs(args string) []string {
	var out []string
	var current strings.Builder
	depth := 0
	var quote byte

	flush := func() {
		if arg := strings.TrimSpace(current.String()); arg != "" {
			out = append(out, arg)
		}
		current.Reset()
	}

	for i := 0; i < len(args); i++ {
		ch := args[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		case ch == ',' && depth == 0:
			flush()
			continue
		}
		current.WriteByte(ch)
	}
	flush()
	return out
}

func IsLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
