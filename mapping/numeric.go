package mapping

import "strings"

// NumericHints are name fragments of fields usually holding numbers.
// Values may be stored as text, so sorting on them needs a numeric copy.
var NumericHints = []string{
	"salary", "price", "quantity", "age", "id", "number", "amount", "total",
	"salario", "precio", "cantidad", "edad", "numero", "monto",
}

// LooksNumeric reports whether field contains one of hints (case-insensitive).
// A nil hints slice falls back to NumericHints.
func LooksNumeric(field string, hints []string) bool {
	if hints == nil {
		hints = NumericHints
	}
	lower := strings.ToLower(field)
	for _, hint := range hints {
		if hint != "" && strings.Contains(lower, strings.ToLower(hint)) {
			return true
		}
	}
	return false
}
