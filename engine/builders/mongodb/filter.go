package mongodb

import (
	"fmt"

	"github.com/ErikMLC/sqlmongo/engine/condition"
	"github.com/ErikMLC/sqlmongo/engine/values"
	"github.com/ErikMLC/sqlmongo/mapping"

	"go.mongodb.org/mongo-driver/bson"
)

// Warn receives non-fatal translation notes. A nil Warn discards them.
type Warn func(msg string)

func (w Warn) printf(format string, args ...interface{}) {
	if w != nil {
		w(fmt.Sprintf(format, args...))
	}
}

// ============================================================================
// FILTER BUILDING
// ============================================================================

// BuildFilter renders a filter tree as a MongoDB query document.
// AND children are merged key by key; on a key collision the later
// predicate replaces the earlier one and a warning is recorded.
func BuildFilter(expr condition.Expr, warn Warn) bson.D {
	if expr == nil {
		return bson.D{}
	}

	switch n := expr.(type) {
	case *condition.Comparison:
		if n.Operator == "=" {
			return bson.D{{Key: n.Field, Value: MongoValue(n.Value)}}
		}
		op, ok := mapping.MongoComparison(n.Operator)
		if !ok {
			warn.printf("operator '%s' is not supported, condition '%s' ignored", n.Operator, n.String())
			return bson.D{}
		}
		return bson.D{{Key: n.Field, Value: bson.D{{Key: op, Value: MongoValue(n.Value)}}}}

	case *condition.Between:
		return bson.D{{Key: n.Field, Value: bson.D{
			{Key: "$gte", Value: MongoValue(n.Low)},
			{Key: "$lte", Value: MongoValue(n.High)},
		}}}

	case *condition.In:
		op := "$in"
		if n.Negated {
			op = "$nin"
		}
		return bson.D{{Key: n.Field, Value: bson.D{{Key: op, Value: MongoValues(n.Values)}}}}

	case *condition.Like:
		regex := bson.D{{Key: "$regex", Value: n.Regex()}}
		if !n.CaseSensitive {
			regex = append(regex, bson.E{Key: "$options", Value: "i"})
		}
		return bson.D{{Key: n.Field, Value: regex}}

	case *condition.NullCheck:
		return bson.D{{Key: n.Field, Value: bson.D{{Key: "$exists", Value: !n.IsNull}}}}

	case *condition.And:
		merged := bson.D{}
		for _, child := range n.Children {
			for _, e := range BuildFilter(child, warn) {
				merged = mergeKey(merged, e, warn)
			}
		}
		return merged

	case *condition.Or:
		branches := bson.A{}
		for _, child := range n.Children {
			branches = append(branches, BuildFilter(child, warn))
		}
		return bson.D{{Key: "$or", Value: branches}}
	}

	return bson.D{}
}

// mergeKey sets e in doc, replacing an existing key in place
func mergeKey(doc bson.D, e bson.E, warn Warn) bson.D {
	for i := range doc {
		if doc[i].Key == e.Key {
			warn.printf("multiple conditions on '%s' in one AND group; only the last one is kept", e.Key)
			doc[i].Value = e.Value
			return doc
		}
	}
	return append(doc, e)
}

// BuildMatchStage wraps a filter in a $match stage. Returns nil for an empty filter.
func BuildMatchStage(filter bson.D) bson.D {
	if len(filter) == 0 {
		return nil
	}
	return bson.D{{Key: "$match", Value: filter}}
}

// ============================================================================
// VALUE CONVERSION
// ============================================================================

// MongoValue converts a typed SQL literal to its BSON value
func MongoValue(v values.Value) interface{} {
	return v.Interface()
}

// MongoValues converts a list of literals to a BSON array
func MongoValues(list []values.Value) bson.A {
	out := bson.A{}
	for _, v := range list {
		out = append(out, MongoValue(v))
	}
	return out
}

// ParseMongoValue parses raw SQL literal text and converts it to BSON
func ParseMongoValue(raw string) interface{} {
	return values.Parse(raw).Interface()
}
