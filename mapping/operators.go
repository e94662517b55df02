package mapping

// ComparisonOperators - SQL comparison operator to MongoDB query operator
// Usage: ComparisonOperators[">="] returns "$gte"
var ComparisonOperators = map[string]string{
	"=":  "$eq",
	">":  "$gt",
	">=": "$gte",
	"<":  "$lt",
	"<=": "$lte",
	"<>": "$ne",
	"!=": "$ne",
}

// ArithmeticOperators - SQL arithmetic operator to MongoDB expression operator
var ArithmeticOperators = map[string]string{
	"*": "$multiply",
	"+": "$add",
	"-": "$subtract",
	"/": "$divide",
	"%": "$mod",
}

// ArithmeticOrder lists arithmetic operators loosest-binding first, the order
// an expression is split in.
var ArithmeticOrder = []string{"+", "-", "*", "/"}

// IsComparisonOperator checks if op is a known comparison operator
func IsComparisonOperator(op string) bool {
	_, ok := ComparisonOperators[op]
	return ok
}

// MongoComparison returns the MongoDB operator for a SQL comparison operator
func MongoComparison(op string) (string, bool) {
	mongoOp, ok := ComparisonOperators[op]
	return mongoOp, ok
}

// MongoArithmetic returns the MongoDB operator for a SQL arithmetic operator
func MongoArithmetic(op string) (string, bool) {
	mongoOp, ok := ArithmeticOperators[op]
	return mongoOp, ok
}
