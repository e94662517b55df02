package translator

import (
	"strings"

	mongobuilders "github.com/ErikMLC/sqlmongo/engine/builders/mongodb"
	"github.com/ErikMLC/sqlmongo/engine/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ============================================================================
// AGGREGATE PIPELINE
// ============================================================================

// translateAggregate builds, in order: $match, $addFields (numeric sort
// copies), DISTINCT stages, $group, HAVING $match, $project, $sort,
// $unset, $skip and $limit. Each stage is optional.
func (t *Translator) translateAggregate(c *Context, stmt *models.Statement) (models.Result, error) {
	fields := stripFields(stmt.Fields, stmt.Alias, stmt.Table)
	groupBy := stripKeys(stmt.GroupBy, stmt.Alias, stmt.Table)
	pipeline := mongo.Pipeline{}

	match, err := t.whereFilter(c, stmt)
	if err != nil {
		return nil, err
	}
	if stage := mongobuilders.BuildMatchStage(match); stage != nil {
		pipeline = append(pipeline, stage)
	}

	// HAVING is parsed before $group so aggregates used only in HAVING
	// still get an accumulator.
	having := &havingResolver{fields: fields, groupBy: groupBy}
	havingExpr, err := t.parseCondition(c, stmt.Having, having.resolve)
	if err != nil {
		return nil, err
	}
	groupFields := append(append([]models.SelectField(nil), fields...), having.hidden...)
	group, hasGroup := mongobuilders.BuildGroupStage(groupFields, groupBy, c.Warn)

	distinct := stmt.Distinct && !hasGroup

	// Numeric copies only survive when $sort still sees source documents
	var shadows []string
	rename := map[string]string{}
	if !hasGroup && !distinct {
		for _, ob := range stmt.OrderBy {
			field := mongobuilders.StripQualifier(strings.TrimSpace(ob.Field), stmt.Alias, stmt.Table)
			if !isPlainField(field) || !t.isNumericField(stmt.Table, field) {
				continue
			}
			rename[strings.TrimSpace(ob.Field)] = mongobuilders.NumericShadow(field)
			shadows = append(shadows, field)
		}
	}
	if stage := mongobuilders.BuildNumericFieldsStage(shadows); stage != nil {
		c.log.Debug("numeric sort fields", zap.Strings("fields", shadows))
		pipeline = append(pipeline, stage)
	}

	if distinct {
		stages := mongobuilders.BuildDistinctStages(fields)
		if stages == nil {
			c.Warn("SELECT DISTINCT * cannot be translated; list the columns explicitly")
		}
		for _, stage := range stages {
			pipeline = append(pipeline, stage)
		}
	}

	if hasGroup {
		pipeline = append(pipeline, group)
	}

	if havingExpr != nil {
		if !hasGroup {
			c.Warn("HAVING without GROUP BY or aggregates is applied as a plain filter")
		}
		if stage := mongobuilders.BuildMatchStage(mongobuilders.BuildFilter(havingExpr, c.Warn)); stage != nil {
			pipeline = append(pipeline, stage)
		}
	}

	var keep []string
	for _, field := range shadows {
		keep = append(keep, mongobuilders.NumericShadow(field))
	}
	project := mongobuilders.BuildProjectStage(fields, groupBy, keep, c.Warn)
	if project != nil && !distinct {
		pipeline = append(pipeline, project)
	}

	for _, ob := range stmt.OrderBy {
		key := strings.TrimSpace(ob.Field)
		if _, ok := rename[key]; ok {
			continue
		}
		rename[key] = sortKey(key, fields, groupBy, project != nil, hasGroup, stmt)
	}
	if stage := mongobuilders.BuildSortStage(stmt.OrderBy, rename); stage != nil {
		pipeline = append(pipeline, stage)
	}

	if stage := mongobuilders.BuildUnsetStage(keep); stage != nil {
		pipeline = append(pipeline, stage)
	}
	for _, stage := range mongobuilders.BuildPagingStages(stmt.Limit, stmt.Offset) {
		pipeline = append(pipeline, stage)
	}

	return &models.Aggregate{
		Header:   models.Header{Collection: t.collection(stmt.Table)},
		Pipeline: pipeline,
	}, nil
}

// sortKey finds the key an ORDER BY item refers to once the pipeline
// has reshaped documents.
func sortKey(key string, fields []models.SelectField, groupBy []string, projected, grouped bool, stmt *models.Statement) string {
	stripped := mongobuilders.StripQualifier(key, stmt.Alias, stmt.Table)
	if projected || grouped {
		for _, f := range fields {
			if normalizeExpr(f.Field) == normalizeExpr(stripped) || (f.HasAlias() && f.Alias == stripped) {
				if projected {
					return mongobuilders.OutputKey(f)
				}
				if agg, ok := mongobuilders.ParseAggregate(f); ok {
					return agg.Name
				}
			}
		}
	}
	if grouped && !projected {
		return mongobuilders.GroupOutputPath(stripped, groupBy)
	}
	return stripped
}

// isPlainField reports whether s is a column reference rather than an expression
func isPlainField(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !mongobuilders.IsLetter(r) && r != '_' && r != '.' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func stripKeys(keys []string, qualifiers ...string) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = mongobuilders.StripQualifier(strings.TrimSpace(k), qualifiers...)
	}
	return out
}

// ============================================================================
// HAVING
// ============================================================================

// havingResolver maps HAVING operands to fields that exist after $group.
// Aggregates missing from the select list are collected in hidden.
type havingResolver struct {
	fields  []models.SelectField
	groupBy []string
	hidden  []models.SelectField
}

func (h *havingResolver) resolve(operand string) string {
	norm := normalizeExpr(operand)
	for _, f := range append(h.fields, h.hidden...) {
		agg, ok := mongobuilders.ParseAggregate(f)
		if !ok {
			continue
		}
		if normalizeExpr(f.Field) == norm || (f.HasAlias() && f.Alias == operand) {
			return agg.Name
		}
	}

	if agg, ok := mongobuilders.ParseAggregate(models.SelectField{Field: operand}); ok {
		h.hidden = append(h.hidden, models.SelectField{Field: operand})
		return agg.Name
	}
	return mongobuilders.GroupOutputPath(operand, h.groupBy)
}
