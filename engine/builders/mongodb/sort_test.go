package mongodb

import (
	"testing"

	"github.com/ErikMLC/sqlmongo/engine/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildNumericFieldsStage(t *testing.T) {
	stage := BuildNumericFieldsStage([]string{"salary"})
	assert.Equal(t, bson.D{{Key: "$addFields", Value: bson.D{
		{Key: "salary_numeric", Value: bson.D{{Key: "$convert", Value: bson.D{
			{Key: "input", Value: "$salary"},
			{Key: "to", Value: "double"},
			{Key: "onError", Value: 0},
			{Key: "onNull", Value: 0},
		}}}},
	}}}, stage)
	assert.Nil(t, BuildNumericFieldsStage(nil))
}

func TestBuildSortStage(t *testing.T) {
	orderBy := []models.OrderBy{{Field: "salary", Desc: true}, {Field: "name"}}
	stage := BuildSortStage(orderBy, map[string]string{"salary": "salary_numeric"})
	assert.Equal(t, bson.D{{Key: "$sort", Value: bson.D{
		{Key: "salary_numeric", Value: -1},
		{Key: "name", Value: 1},
	}}}, stage)
	assert.Nil(t, BuildSortStage(nil, nil))
}

func TestBuildPagingStages(t *testing.T) {
	limit, offset := int64(10), int64(20)
	stages := BuildPagingStages(&limit, &offset)
	assert.Equal(t, []bson.D{
		{{Key: "$skip", Value: int64(20)}},
		{{Key: "$limit", Value: int64(10)}},
	}, stages)
	assert.Empty(t, BuildPagingStages(nil, nil))
}
