package translator

import (
	"strings"

	mongobuilders "github.com/ErikMLC/sqlmongo/engine/builders/mongodb"
	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/ErikMLC/sqlmongo/mapping"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ============================================================================
// JOIN PIPELINE
// ============================================================================

// translateJoin builds $match -> ($lookup, $unwind)* -> $project -> $sort -> $limit
func (t *Translator) translateJoin(c *Context, stmt *models.Statement) (models.Result, error) {
	pipeline := mongo.Pipeline{}

	match, err := t.whereFilter(c, stmt)
	if err != nil {
		return nil, err
	}
	if stage := mongobuilders.BuildMatchStage(match); stage != nil {
		pipeline = append(pipeline, stage)
	}

	joins := make([]models.Join, len(stmt.Joins))
	for i, j := range stmt.Joins {
		j.Table = t.collection(j.Table)
		if j.Alias == "" {
			j.Alias = stmt.Joins[i].Table
		}
		joins[i] = j
	}
	for i, j := range joins {
		for _, stage := range mongobuilders.BuildLookupStages(j, joins[:i], c.Warn) {
			pipeline = append(pipeline, stage)
		}
	}

	if len(stmt.GroupBy) > 0 || hasAggregateField(stmt.Fields) {
		c.Warn("GROUP BY and aggregate functions are not translated together with JOIN")
	}

	selectAll := stmt.IsSelectAll()
	pipeline = append(pipeline, mongobuilders.BuildJoinProjectStage(stmt.Fields, joins, selectAll))

	rename := map[string]string{}
	for _, ob := range stmt.OrderBy {
		rename[strings.TrimSpace(ob.Field)] = joinSortKey(strings.TrimSpace(ob.Field), stmt, joins, selectAll)
	}
	if stage := mongobuilders.BuildSortStage(stmt.OrderBy, rename); stage != nil {
		pipeline = append(pipeline, stage)
	}
	for _, stage := range mongobuilders.BuildPagingStages(stmt.Limit, stmt.Offset) {
		pipeline = append(pipeline, stage)
	}

	return &models.Aggregate{
		Header:   models.Header{Collection: t.collection(stmt.Table)},
		Pipeline: pipeline,
		JoinInfo: &models.JoinInfo{
			JoinCount: len(joins),
			JoinTypes: mongobuilders.JoinTypes(joins),
		},
	}, nil
}

// joinSortKey maps an ORDER BY item onto the projected document
func joinSortKey(key string, stmt *models.Statement, joins []models.Join, selectAll bool) string {
	if !selectAll {
		project := mongobuilders.BuildJoinProjectStage(stmt.Fields, joins, false)[0].Value.(bson.D)
		for i, f := range stmt.Fields {
			if strings.TrimSpace(f.Field) == key || (f.HasAlias() && f.Alias == key) {
				// project[0] is _id
				return project[i+1].Key
			}
		}
	}

	stripped := mongobuilders.StripQualifier(key, stmt.Alias, stmt.Table)
	for _, j := range joins {
		if strings.HasPrefix(key, j.Name()+".") {
			return j.Name() + "_data." + strings.TrimPrefix(key, j.Name()+".")
		}
	}
	return stripped
}

func hasAggregateField(fields []models.SelectField) bool {
	for _, f := range fields {
		if mapping.HasAggregate(f.Field) {
			return true
		}
	}
	return false
}
