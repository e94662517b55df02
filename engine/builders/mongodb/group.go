package mongodb

import (
	"regexp"
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/ErikMLC/sqlmongo/mapping"

	"go.mongodb.org/mongo-driver/bson"
)

// ============================================================================
// AGGREGATE PARSING
// ============================================================================

// Aggregate is an aggregate call found in the select list
type Aggregate struct {
	Func     string // COUNT, SUM, AVG, MIN, MAX
	Arg      string // inner expression, "*" for COUNT(*)
	Distinct bool
	Name     string // output field of the $group stage
}

// SetName is the $addToSet field backing a DISTINCT aggregate
func (a Aggregate) SetName() string { return a.Name + "_set" }

// IsCountAll reports COUNT(*)
func (a Aggregate) IsCountAll() bool { return a.Func == "COUNT" && a.Arg == "*" }

var distinctPrefix = regexp.MustCompile(`(?i)^DISTINCT\s+`)

// ParseAggregate recognizes COUNT/SUM/AVG/MIN/MAX calls. The group stage and
// the project stage both derive output names from here so they always agree.
func ParseAggregate(field models.SelectField) (Aggregate, bool) {
	name, args, ok := ParseCall(field.Field)
	if !ok {
		return Aggregate{}, false
	}
	if _, isAgg := mapping.AggregateFunctions[name]; !isAgg {
		return Aggregate{}, false
	}

	agg := Aggregate{Func: name, Arg: args}
	if loc := distinctPrefix.FindStringIndex(args); loc != nil {
		agg.Distinct = true
		agg.Arg = strings.TrimSpace(args[loc[1]:])
	}
	if agg.Arg == "" {
		agg.Arg = "*"
	}

	if field.HasAlias() {
		agg.Name = field.Alias
	} else {
		agg.Name = defaultAggregateName(agg)
	}
	return agg, true
}

func defaultAggregateName(a Aggregate) string {
	switch {
	case a.IsCountAll():
		return "count_all"
	case a.Func == "COUNT" && a.Distinct:
		return "count_distinct_" + SanitizeName(a.Arg)
	}
	return strings.ToLower(a.Func) + "_" + SanitizeName(a.Arg)
}

var (
	operatorWords = strings.NewReplacer("*", " mult ", "+", " plus ", "-", " minus ", "/", " div ")
	nonIdentRun   = regexp.MustCompile(`[^A-Za-z0-9_]+`)
)

// SanitizeName turns an expression into a field-safe name: "price * stock"
// becomes "price_mult_stock".
func SanitizeName(expr string) string {
	name := operatorWords.Replace(expr)
	name = nonIdentRun.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// GroupKeyName is the _id subfield used for a GROUP BY key
func GroupKeyName(key string) string {
	return strings.ReplaceAll(strings.TrimSpace(key), ".", "_")
}

// ============================================================================
// $group STAGE
// ============================================================================

// BuildGroupStage builds the $group stage for the select list and GROUP BY
// keys. ok is false when there is nothing to group.
func BuildGroupStage(fields []models.SelectField, groupBy []string, warn Warn) (bson.D, bool) {
	group := bson.D{{Key: "_id", Value: GroupID(groupBy)}}
	found := false

	for _, field := range fields {
		agg, isAgg := ParseAggregate(field)
		if !isAgg {
			continue
		}
		found = true
		group = mergeKey(group, accumulator(agg, warn), warn)
	}

	if !found && len(groupBy) == 0 {
		return nil, false
	}
	return bson.D{{Key: "$group", Value: group}}, true
}

// GroupID renders the _id of a $group stage
func GroupID(groupBy []string) interface{} {
	switch len(groupBy) {
	case 0:
		return nil
	case 1:
		return FieldPath(groupBy[0])
	}
	id := bson.D{}
	for _, key := range groupBy {
		id = append(id, bson.E{Key: GroupKeyName(key), Value: FieldPath(key)})
	}
	return id
}

func accumulator(a Aggregate, warn Warn) bson.E {
	if a.Distinct && a.Func != "MIN" && a.Func != "MAX" {
		return bson.E{Key: a.SetName(), Value: bson.D{{Key: "$addToSet", Value: FieldPath(a.Arg)}}}
	}

	switch a.Func {
	case "COUNT":
		if a.IsCountAll() {
			return bson.E{Key: a.Name, Value: bson.D{{Key: "$sum", Value: 1}}}
		}
		notNull := bson.D{{Key: "$ne", Value: bson.A{FieldPath(a.Arg), nil}}}
		return bson.E{Key: a.Name, Value: bson.D{{Key: "$sum", Value: bson.D{
			{Key: "$cond", Value: bson.A{notNull, 1, 0}},
		}}}}

	case "SUM":
		if a.Arg == "*" {
			return bson.E{Key: a.Name, Value: bson.D{{Key: "$sum", Value: 1}}}
		}
		return bson.E{Key: a.Name, Value: bson.D{{Key: "$sum", Value: sumInput(a.Arg, warn)}}}
	}

	op := mapping.AggregateFunctions[a.Func]
	return bson.E{Key: a.Name, Value: bson.D{{Key: op, Value: toDouble(a.Arg)}}}
}

var sumOperators = []string{"*", "+", "-"}

// sumInput handles SUM(a * b), SUM(a + b) and SUM(a - b) over two operands.
// Operators are counted across all kinds first so a + b * c is not split
// into a bogus "a + b" operand.
func sumInput(arg string, warn Warn) interface{} {
	operators := 0
	for _, op := range sumOperators {
		operators += len(SplitOperator(arg, op)) - 1
	}
	if operators > 1 {
		warn.printf("SUM(%s) has more than two operands and is summed as a single field", arg)
		return FieldPath(arg)
	}
	for _, op := range sumOperators {
		parts := SplitOperator(arg, op)
		if len(parts) != 2 {
			continue
		}
		mongoOp, _ := mapping.MongoArithmetic(op)
		return bson.D{{Key: mongoOp, Value: bson.A{toDouble(parts[0]), toDouble(parts[1])}}}
	}
	return toDouble(arg)
}

// toDouble coerces a field to double; numeric literals are kept as is
func toDouble(operand string) interface{} {
	operand = strings.TrimSpace(operand)
	if n, ok := numericLiteral(operand); ok {
		return n
	}
	return bson.D{{Key: "$toDouble", Value: FieldPath(operand)}}
}

// SplitOperator splits expr on a top-level arithmetic operator. A '-' that
// starts a negative number is not treated as an operator.
func SplitOperator(expr, op string) []string {
	var parts []string
	depth, start := 0, 0
	var quote byte
	for i := 0; i < len(expr); i++ {
		ch := expr[i]
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
		case depth == 0 && strings.HasPrefix(expr[i:], op):
			if op == "-" && strings.TrimSpace(expr[start:i]) == "" {
				continue
			}
			parts = append(parts, strings.TrimSpace(expr[start:i]))
			start = i + len(op)
		}
	}
	return append(parts, strings.TrimSpace(expr[start:]))
}
