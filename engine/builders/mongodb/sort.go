package mongodb

import (
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ============================================================================
// SORTING
// ============================================================================

// NumericShadow names the double-typed copy of field used for sorting
func NumericShadow(field string) string {
	return GroupKeyName(field) + "_numeric"
}

// BuildNumericFieldsStage adds a double-converted copy of every field.
// Conversion failures and nulls become 0 so mixed-type values still sort.
func BuildNumericFieldsStage(fields []string) bson.D {
	if len(fields) == 0 {
		return nil
	}
	add := bson.D{}
	for _, field := range fields {
		add = append(add, bson.E{Key: NumericShadow(field), Value: bson.D{{Key: "$convert", Value: bson.D{
			{Key: "input", Value: FieldPath(field)},
			{Key: "to", Value: "double"},
			{Key: "onError", Value: 0},
			{Key: "onNull", Value: 0},
		}}}})
	}
	return bson.D{{Key: "$addFields", Value: add}}
}

// BuildSort builds a sort document. rename maps an ORDER BY field to the
// key actually sorted on (numeric copies, group outputs).
func BuildSort(orderBy []models.OrderBy, rename map[string]string) bson.D {
	sort := bson.D{}
	for _, ob := range orderBy {
		field := strings.TrimSpace(ob.Field)
		if field == "" {
			continue
		}
		if renamed, ok := rename[field]; ok {
			field = renamed
		}
		direction := 1
		if ob.Desc {
			direction = -1
		}
		sort = append(sort, bson.E{Key: field, Value: direction})
	}
	if len(sort) == 0 {
		return nil
	}
	return sort
}

// BuildSortStage wraps BuildSort in a $sort stage
func BuildSortStage(orderBy []models.OrderBy, rename map[string]string) bson.D {
	sort := BuildSort(orderBy, rename)
	if sort == nil {
		return nil
	}
	return bson.D{{Key: "$sort", Value: sort}}
}

// BuildUnsetStage removes helper fields from the output
func BuildUnsetStage(fields []string) bson.D {
	if len(fields) == 0 {
		return nil
	}
	return bson.D{{Key: "$unset", Value: fields}}
}

// BuildPagingStages returns $skip then $limit for the set values
func BuildPagingStages(limit, offset *int64) []bson.D {
	var stages []bson.D
	if offset != nil && *offset > 0 {
		stages = append(stages, bson.D{{Key: "$skip", Value: *offset}})
	}
	if limit != nil {
		stages = append(stages, bson.D{{Key: "$limit", Value: *limit}})
	}
	return stages
}
