package mongodb

import (
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/ErikMLC/sqlmongo/engine/values"
	"github.com/ErikMLC/sqlmongo/mapping"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ============================================================================
// UPDATE BUILDING - SIMPLE
// ============================================================================

// BuildSetDocument builds {$set: {...}} from literal assignments
func BuildSetDocument(assignments []models.Assignment) bson.D {
	set := bson.D{}
	for _, a := range assignments {
		set = append(set, bson.E{Key: strings.TrimSpace(a.Field), Value: ParseMongoValue(a.Expression)})
	}
	return bson.D{{Key: "$set", Value: set}}
}

// ============================================================================
// UPDATE BUILDING - PIPELINE
// ============================================================================

// arithmeticMarkers are matched with surrounding blanks so that dates and
// negative literals are not read as subtraction.
var arithmeticMarkers = []string{" * ", " + ", " - ", " / "}

// IsArithmetic reports whether an assignment right-hand side is arithmetic.
// Only operators outside quotes and function calls count, so
// CONCAT(a, ' - ', b) is not arithmetic while (a + b) is.
func IsArithmetic(expr string) bool {
	expr = unwrapParens(strings.TrimSpace(expr))
	for _, marker := range arithmeticMarkers {
		if len(SplitOperator(expr, marker)) > 1 {
			return true
		}
	}
	return false
}

// unwrapParens strips parentheses that enclose the whole expression
func unwrapParens(expr string) string {
	for strings.HasPrefix(expr, "(") && matchingParen(expr, 0) == len(expr)-1 {
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}
	return expr
}

// HasArithmetic reports whether any assignment needs the pipeline rewrite
func HasArithmetic(assignments []models.Assignment) bool {
	for _, a := range assignments {
		if IsArithmetic(a.Expression) {
			return true
		}
	}
	return false
}

// BuildUpdatePipeline rewrites an arithmetic UPDATE as
// $match -> $addFields -> $merge back into the same collection.
func BuildUpdatePipeline(collection string, match bson.D, assignments []models.Assignment, warn Warn) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	if stage := BuildMatchStage(match); stage != nil {
		pipeline = append(pipeline, stage)
	}

	fields := bson.D{}
	for _, a := range assignments {
		fields = mergeKey(fields, bson.E{Key: strings.TrimSpace(a.Field), Value: AssignmentValue(a.Expression, warn)}, warn)
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$addFields", Value: fields}},
		bson.D{{Key: "$merge", Value: bson.D{
			{Key: "into", Value: collection},
			{Key: "whenMatched", Value: "replace"},
			{Key: "whenNotMatched", Value: "discard"},
		}}},
	)
	return pipeline
}

// AssignmentValue converts one SET right-hand side to an aggregation value
func AssignmentValue(expr string, warn Warn) interface{} {
	expr = strings.TrimSpace(expr)
	if IsArithmetic(expr) {
		return ArithmeticExpression(expr, warn)
	}
	if name, _, ok := ParseCall(expr); ok && mapping.IsScalarFunction(name) {
		return TranslateFunction(expr)
	}
	return ParseMongoValue(expr)
}

// ArithmeticExpression renders "a op b [op c ...]" with every field operand
// coerced to double. Operators of equal precedence apply left to right.
func ArithmeticExpression(expr string, warn Warn) interface{} {
	expr = unwrapParens(strings.TrimSpace(expr))
	for _, op := range mapping.ArithmeticOrder {
		parts := SplitOperator(expr, " "+op+" ")
		if len(parts) < 2 {
			continue
		}
		mongoOp, _ := mapping.MongoArithmetic(op)
		result := arithmeticOperand(parts[0], warn)
		for _, part := range parts[1:] {
			result = bson.D{{Key: mongoOp, Value: bson.A{result, arithmeticOperand(part, warn)}}}
		}
		return result
	}
	return arithmeticOperand(expr, warn)
}

// arithmeticOperand recurses only when the operand still splits on a
// top-level operator, so every call works on a strictly shorter string.
func arithmeticOperand(operand string, warn Warn) interface{} {
	operand = unwrapParens(strings.TrimSpace(operand))
	if IsArithmetic(operand) {
		return ArithmeticExpression(operand, warn)
	}
	if name, _, ok := ParseCall(operand); ok && mapping.IsScalarFunction(name) {
		return TranslateFunction(operand)
	}
	if values.IsQuoted(operand) {
		warn.printf("string literal %s used in arithmetic", operand)
		return values.Parse(operand).Str()
	}
	return toDouble(operand)
}

// numericLiteral returns the number for unquoted numeric text
func numericLiteral(s string) (interface{}, bool) {
	v := values.Parse(s)
	if !v.IsNumeric() {
		return nil, false
	}
	return v.Interface(), true
}
