package mongodb

import (
	"testing"

	"github.com/ErikMLC/sqlmongo/engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func toDoubleOf(field string) bson.D {
	return bson.D{{Key: "$toDouble", Value: "$" + field}}
}

func TestBuildGroupStageCountAll(t *testing.T) {
	stage, ok := BuildGroupStage([]models.SelectField{{Field: "COUNT(*)"}}, nil, nil)
	require.True(t, ok)
	assert.Equal(t, bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: nil},
		{Key: "count_all", Value: bson.D{{Key: "$sum", Value: 1}}},
	}}}, stage)
}

func TestBuildGroupStageSumProduct(t *testing.T) {
	fields := []models.SelectField{{Field: "SUM(price * stock)", Alias: "total"}}
	stage, ok := BuildGroupStage(fields, nil, nil)
	require.True(t, ok)

	group := stage[0].Value.(bson.D)
	assert.Equal(t, bson.E{Key: "total", Value: bson.D{{Key: "$sum", Value: bson.D{
		{Key: "$multiply", Value: bson.A{toDoubleOf("price"), toDoubleOf("stock")}},
	}}}}, group[1])
}

func TestBuildGroupStageSumTooManyOperands(t *testing.T) {
	var warnings []string
	fields := []models.SelectField{{Field: "SUM(a * b * c)"}}
	stage, ok := BuildGroupStage(fields, nil, func(msg string) { warnings = append(warnings, msg) })
	require.True(t, ok)

	group := stage[0].Value.(bson.D)
	assert.Equal(t, "sum_a_mult_b_mult_c", group[1].Key)
	assert.Equal(t, bson.D{{Key: "$sum", Value: "$a * b * c"}}, group[1].Value)
	assert.Len(t, warnings, 1)
}

func TestBuildGroupStageSumMixedOperators(t *testing.T) {
	var warnings []string
	fields := []models.SelectField{{Field: "SUM(a + b * c)", Alias: "total"}}
	stage, ok := BuildGroupStage(fields, nil, func(msg string) { warnings = append(warnings, msg) })
	require.True(t, ok)

	group := stage[0].Value.(bson.D)
	assert.Equal(t, "total", group[1].Key)
	assert.Equal(t, bson.D{{Key: "$sum", Value: "$a + b * c"}}, group[1].Value)
	assert.Len(t, warnings, 1)

	warnings = nil
	stage, _ = BuildGroupStage([]models.SelectField{{Field: "SUM(price - -1)", Alias: "p"}}, nil, func(msg string) { warnings = append(warnings, msg) })
	group = stage[0].Value.(bson.D)
	assert.Equal(t, bson.D{{Key: "$sum", Value: bson.D{{Key: "$subtract", Value: bson.A{toDoubleOf("price"), int64(-1)}}}}}, group[1].Value)
	assert.Empty(t, warnings)
}

func TestBuildGroupStageAccumulators(t *testing.T) {
	fields := []models.SelectField{
		{Field: "department"},
		{Field: "COUNT(email)"},
		{Field: "COUNT(DISTINCT city)", Alias: "cities"},
		{Field: "AVG(salary)"},
		{Field: "MIN(age)"},
		{Field: "MAX(age)", Alias: "oldest"},
		{Field: "SUM(bonus)"},
	}
	stage, ok := BuildGroupStage(fields, []string{"department"}, nil)
	require.True(t, ok)

	notNull := bson.D{{Key: "$ne", Value: bson.A{"$email", nil}}}
	expected := bson.D{
		{Key: "_id", Value: "$department"},
		{Key: "count_email", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{notNull, 1, 0}}}}}},
		{Key: "cities_set", Value: bson.D{{Key: "$addToSet", Value: "$city"}}},
		{Key: "avg_salary", Value: bson.D{{Key: "$avg", Value: toDoubleOf("salary")}}},
		{Key: "min_age", Value: bson.D{{Key: "$min", Value: toDoubleOf("age")}}},
		{Key: "oldest", Value: bson.D{{Key: "$max", Value: toDoubleOf("age")}}},
		{Key: "sum_bonus", Value: bson.D{{Key: "$sum", Value: toDoubleOf("bonus")}}},
	}
	assert.Equal(t, bson.D{{Key: "$group", Value: expected}}, stage)
}

func TestGroupID(t *testing.T) {
	assert.Nil(t, GroupID(nil))
	assert.Equal(t, "$city", GroupID([]string{"city"}))
	assert.Equal(t, bson.D{{Key: "city", Value: "$city"}, {Key: "u_age", Value: "$u.age"}}, GroupID([]string{"city", "u.age"}))
}

func TestBuildGroupStageNothingToGroup(t *testing.T) {
	_, ok := BuildGroupStage([]models.SelectField{{Field: "name"}}, nil, nil)
	assert.False(t, ok)
}

func TestProjectStageUsesGroupNames(t *testing.T) {
	fields := []models.SelectField{
		{Field: "department"},
		{Field: "COUNT(*)"},
		{Field: "COUNT(DISTINCT city)"},
		{Field: "UPPER(name)", Alias: "upper_name"},
	}
	stage := BuildProjectStage(fields, []string{"department"}, nil, nil)
	require.NotNil(t, stage)

	assert.Equal(t, bson.D{{Key: "$project", Value: bson.D{
		{Key: "_id", Value: 0},
		{Key: "department", Value: "$_id"},
		{Key: "count_all", Value: "$count_all"},
		{Key: "count_distinct_city", Value: bson.D{{Key: "$size", Value: "$count_distinct_city_set"}}},
		{Key: "upper_name", Value: bson.D{{Key: "$toUpper", Value: "$name"}}},
	}}}, stage)

	group, _ := BuildGroupStage(fields, []string{"department"}, nil)
	assert.Equal(t, "count_distinct_city_set", group[0].Value.(bson.D)[2].Key)
}

func TestProjectStageNotNeededForPlainFields(t *testing.T) {
	assert.Nil(t, BuildProjectStage([]models.SelectField{{Field: "name"}, {Field: "age"}}, nil, nil, nil))
}

func TestBuildDistinctStages(t *testing.T) {
	stages := BuildDistinctStages([]models.SelectField{{Field: "city"}, {Field: "country"}})
	require.Len(t, stages, 2)
	assert.Equal(t, bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: bson.D{
		{Key: "city", Value: "$city"},
		{Key: "country", Value: "$country"},
	}}}}}, stages[0])
	assert.Equal(t, bson.D{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$_id"}}}}, stages[1])
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "price_mult_stock", SanitizeName("price * stock"))
	assert.Equal(t, "u_age", SanitizeName("u.age"))
	assert.Equal(t, "a_minus_b", SanitizeName("a-b"))
}
