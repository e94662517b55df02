package mapping

import "strings"

// ============================================================================
// AGGREGATE FUNCTIONS
// ============================================================================

// AggregateFunctions - SQL aggregate to MongoDB accumulator
var AggregateFunctions = map[string]string{
	"COUNT": "$sum",
	"SUM":   "$sum",
	"AVG":   "$avg",
	"MIN":   "$min",
	"MAX":   "$max",
}

// aggregateMarkers are matched against upper-cased select text
var aggregateMarkers = []string{"COUNT(", "SUM(", "AVG(", "MIN(", "MAX("}

// ============================================================================
// SCALAR FUNCTIONS
// ============================================================================

// ScalarFunctions - SQL scalar function to MongoDB expression operator
var ScalarFunctions = map[string]string{
	"UPPER":     "$toUpper",
	"LOWER":     "$toLower",
	"LENGTH":    "$strLenCP",
	"CONCAT":    "$concat",
	"YEAR":      "$year",
	"MONTH":     "$month",
	"DAY":       "$dayOfMonth",
	"SUBSTRING": "$substrCP",
	"SUBSTR":    "$substrCP",
	"TRIM":      "$trim",
}

// EscalatingFunctions force a plain SELECT onto the aggregate path.
// Entries include the opening parenthesis and are matched as substrings.
var EscalatingFunctions = []string{
	"COUNT(", "SUM(", "AVG(", "MIN(", "MAX(",
	"LENGTH(", "UPPER(", "LOWER(", "CONCAT(",
	"YEAR(", "MONTH(", "DAY(",
	"SUBSTRING(", "SUBSTR(", "TRIM(",
}

// HasAggregate reports whether a select expression contains an aggregate call
func HasAggregate(expr string) bool {
	upper := normalizeCalls(expr)
	for _, marker := range aggregateMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// HasEscalatingFunction reports whether a select expression needs a pipeline
func HasEscalatingFunction(expr string) bool {
	upper := normalizeCalls(expr)
	for _, fn := range EscalatingFunctions {
		if strings.Contains(upper, fn) {
			return true
		}
	}
	return false
}

// IsScalarFunction checks if name (any case) is a translatable scalar function
func IsScalarFunction(name string) bool {
	_, ok := ScalarFunctions[strings.ToUpper(name)]
	return ok
}

// normalizeCalls upper-cases expr and removes blanks before "(" so "count (x)" matches.
func normalizeCalls(expr string) string {
	upper := strings.ToUpper(expr)
	for strings.Contains(upper, " (") {
		upper = strings.ReplaceAll(upper, " (", "(")
	}
	return upper
}
