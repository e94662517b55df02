package mongodb

import (
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/ErikMLC/sqlmongo/mapping"

	"go.mongodb.org/mongo-driver/bson"
)

// ============================================================================
// $project STAGE
// ============================================================================

// NeedsProjectStage reports whether the select list has a function or an aggregate
func NeedsProjectStage(fields []models.SelectField) bool {
	for _, f := range fields {
		if mapping.HasEscalatingFunction(f.Field) {
			return true
		}
		if _, _, ok := ParseCall(f.Field); ok {
			return true
		}
	}
	return false
}

// OutputKey is the document key a select field is projected under
func OutputKey(field models.SelectField) string {
	if agg, ok := ParseAggregate(field); ok {
		return agg.Name
	}
	if field.HasAlias() {
		return field.Alias
	}
	if name, _, ok := ParseCall(field.Field); ok {
		return strings.ToLower(name) + "_" + SanitizeName(field.Field[strings.IndexByte(field.Field, '(')+1:])
	}
	return strings.TrimSpace(field.Field)
}

// BuildProjectStage builds the $project that follows $group. keep lists
// extra fields (numeric sort copies) that must survive the projection.
// Returns nil when the select list needs no projection.
func BuildProjectStage(fields []models.SelectField, groupBy []string, keep []string, warn Warn) bson.D {
	if !NeedsProjectStage(fields) {
		return nil
	}

	project := bson.D{{Key: "_id", Value: 0}}
	for _, field := range fields {
		expr := strings.TrimSpace(field.Field)
		if expr == "*" {
			continue
		}
		project = mergeKey(project, bson.E{Key: OutputKey(field), Value: projectValue(field, groupBy, warn)}, warn)
	}
	for _, name := range keep {
		project = mergeKey(project, bson.E{Key: name, Value: 1}, warn)
	}
	return bson.D{{Key: "$project", Value: project}}
}

func projectValue(field models.SelectField, groupBy []string, warn Warn) interface{} {
	if agg, ok := ParseAggregate(field); ok {
		if agg.Distinct && agg.Func != "MIN" && agg.Func != "MAX" {
			op := "$size"
			switch agg.Func {
			case "SUM":
				op = "$sum"
			case "AVG":
				op = "$avg"
			}
			return bson.D{{Key: op, Value: FieldPath(agg.SetName())}}
		}
		return FieldPath(agg.Name)
	}

	expr := strings.TrimSpace(field.Field)
	if path, ok := groupKeyPath(expr, groupBy); ok {
		return path
	}

	if name, _, ok := ParseCall(expr); ok {
		if !mapping.IsScalarFunction(name) {
			warn.printf("function %s is not supported and was passed through as a field path", name)
		}
		return TranslateFunction(expr)
	}
	return FieldPath(expr)
}

// groupKeyPath maps a GROUP BY key to its location inside _id
func groupKeyPath(expr string, groupBy []string) (string, bool) {
	for _, key := range groupBy {
		if !strings.EqualFold(strings.TrimSpace(key), expr) {
			continue
		}
		if len(groupBy) == 1 {
			return "$_id", true
		}
		return "$_id." + GroupKeyName(key), true
	}
	return "", false
}

// GroupOutputPath is where a field lives after $group when no $project
// renames it: GROUP BY keys inside _id, anything else at the top level.
func GroupOutputPath(field string, groupBy []string) string {
	if path, ok := groupKeyPath(field, groupBy); ok {
		return strings.TrimPrefix(path, "$")
	}
	return field
}

// ============================================================================
// DISTINCT STAGES
// ============================================================================

// BuildDistinctStages groups on every selected field and promotes the
// group key back to the document root.
func BuildDistinctStages(fields []models.SelectField) []bson.D {
	id := bson.D{}
	for _, field := range fields {
		expr := strings.TrimSpace(field.Field)
		if expr == "*" || expr == "" {
			continue
		}
		var value interface{} = FieldPath(expr)
		if _, _, isCall := ParseCall(expr); isCall {
			value = TranslateFunction(expr)
		}
		id = append(id, bson.E{Key: OutputKey(field), Value: value})
	}
	if len(id) == 0 {
		return nil
	}
	return []bson.D{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: id}}}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$_id"}}}},
	}
}

// BuildFindProjection builds a find() projection for plain field lists.
// Returns nil for SELECT *.
func BuildFindProjection(fields []models.SelectField) bson.D {
	projection := bson.D{}
	for _, field := range fields {
		expr := strings.TrimSpace(field.Field)
		if expr == "*" || expr == "" {
			continue
		}
		if field.HasAlias() {
			projection = append(projection, bson.E{Key: field.Alias, Value: FieldPath(expr)})
		} else {
			projection = append(projection, bson.E{Key: expr, Value: 1})
		}
	}
	if len(projection) == 0 {
		return nil
	}
	return projection
}
