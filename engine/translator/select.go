package translator

import (
	"strings"

	mongobuilders "github.com/ErikMLC/sqlmongo/engine/builders/mongodb"
	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/ErikMLC/sqlmongo/mapping"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ============================================================================
// SELECT DISPATCH
// ============================================================================

func (t *Translator) translateSelect(c *Context, stmt *models.Statement) (models.Result, error) {
	if stmt.HasSubquery {
		c.Warn("subqueries are not translated; run the inner query separately and inline its result")
	}

	switch {
	case stmt.HasUnion():
		c.log.Debug("select path", zap.String("path", "union"))
		return t.translateUnion(c, stmt)
	case stmt.HasJoins():
		c.log.Debug("select path", zap.String("path", "join"))
		return t.translateJoin(c, stmt)
	case needsAggregate(stmt):
		c.log.Debug("select path", zap.String("path", "aggregate"))
		return t.translateAggregate(c, stmt)
	}

	c.log.Debug("select path", zap.String("path", "find"))
	return t.translateFind(c, stmt)
}

// needsAggregate reports whether a SELECT cannot be expressed as find()
func needsAggregate(stmt *models.Statement) bool {
	if len(stmt.GroupBy) > 0 || strings.TrimSpace(stmt.Having) != "" || stmt.Distinct || len(stmt.OrderBy) > 0 {
		return true
	}
	for _, f := range stmt.Fields {
		if mapping.HasAggregate(f.Field) || mapping.HasEscalatingFunction(f.Field) {
			return true
		}
	}
	return false
}

// ============================================================================
// FIND
// ============================================================================

func (t *Translator) translateFind(c *Context, stmt *models.Statement) (models.Result, error) {
	query, err := t.whereFilter(c, stmt)
	if err != nil {
		return nil, err
	}

	result := &models.Find{
		Header: models.Header{Collection: t.collection(stmt.Table)},
		Query:  query,
		Sort:   mongobuilders.BuildSort(stmt.OrderBy, nil),
		Limit:  stmt.Limit,
	}
	if !stmt.IsSelectAll() {
		result.Projection = mongobuilders.BuildFindProjection(stripFields(stmt.Fields, stmt.Alias, stmt.Table))
	}
	if stmt.Offset != nil && *stmt.Offset > 0 {
		result.Skip = stmt.Offset
	}
	return result, nil
}

// whereFilter parses WHERE with the main table qualifier removed
func (t *Translator) whereFilter(c *Context, stmt *models.Statement) (bson.D, error) {
	expr, err := t.parseCondition(c, stmt.Where, func(operand string) string {
		return mongobuilders.StripQualifier(operand, stmt.Alias, stmt.Table)
	})
	if err != nil {
		return nil, err
	}
	return mongobuilders.BuildFilter(expr, c.Warn), nil
}

// stripFields removes the main table qualifier from plain select fields
func stripFields(fields []models.SelectField, qualifiers ...string) []models.SelectField {
	out := make([]models.SelectField, len(fields))
	for i, f := range fields {
		out[i] = f
		if _, _, isCall := mongobuilders.ParseCall(f.Field); !isCall {
			out[i].Field = mongobuilders.StripQualifier(strings.TrimSpace(f.Field), qualifiers...)
		}
	}
	return out
}

// normalizeExpr upper-cases and drops blanks so "count( * )" equals "COUNT(*)"
func normalizeExpr(expr string) string {
	return strings.ToUpper(strings.Join(strings.Fields(expr), ""))
}
