package mapping

// ConditionKeywords are the reserved words of the WHERE/HAVING grammar
var ConditionKeywords = map[string]bool{
	"AND":     true,
	"OR":      true,
	"NOT":     true,
	"IN":      true,
	"LIKE":    true,
	"BETWEEN": true,
	"IS":      true,
	"NULL":    true,
	"TRUE":    true,
	"FALSE":   true,
}

// IsConditionKeyword checks an upper-cased word against ConditionKeywords
func IsConditionKeyword(upper string) bool {
	return ConditionKeywords[upper]
}
