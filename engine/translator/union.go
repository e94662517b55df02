package translator

import (
	"github.com/ErikMLC/sqlmongo/engine/models"
)

// ============================================================================
// UNION
// ============================================================================

// translateUnion translates every branch on its own and returns them as a
// descriptor; MongoDB needs $unionWith or separate queries to combine them.
func (t *Translator) translateUnion(c *Context, stmt *models.Statement) (models.Result, error) {
	first := *stmt
	first.Unions = nil

	branches := []*models.Statement{&first}
	for _, u := range stmt.Unions {
		if u.Statement == nil {
			return nil, inputError(models.KindSelect, "UNION branch without a query")
		}
		branches = append(branches, u.Statement)
	}

	queries := make([]models.Result, 0, len(branches))
	for _, branch := range branches {
		sub := newContext(c.log)
		result, err := t.translateSelect(sub, branch)
		if err != nil {
			return nil, err
		}
		result.Meta().Warnings = sub.Warnings()
		queries = append(queries, result)
	}

	c.Warn("UNION requires MongoDB 4.4+ with $unionWith")
	c.Warn("alternatively run separate queries and merge results")

	unionType := "union"
	if stmt.UnionAll() {
		unionType = "union_all"
	}
	return &models.Union{
		Header:                 models.Header{Collection: t.collection(stmt.Table)},
		UnionType:              unionType,
		Queries:                queries,
		MongoDBVersionRequired: "4.4+",
		AlternativeStrategy:    "separate_queries",
	}, nil
}
