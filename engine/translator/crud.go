package translator

import (
	"strings"

	mongobuilders "github.com/ErikMLC/sqlmongo/engine/builders/mongodb"
	"github.com/ErikMLC/sqlmongo/engine/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ============================================================================
// INSERT
// ============================================================================

func (t *Translator) translateInsert(c *Context, stmt *models.Statement) (models.Result, error) {
	if strings.TrimSpace(stmt.Table) == "" {
		return nil, inputError(stmt.Kind, "missing table name")
	}
	if len(stmt.Rows) == 0 {
		return nil, inputError(stmt.Kind, "no values to insert")
	}

	columns := stmt.Columns
	if len(columns) == 0 {
		columns = t.opts.Schemas.Columns(stmt.Table)
		if columns == nil {
			return nil, inputError(stmt.Kind, "no column list and no known schema for %s", stmt.Table)
		}
	}

	docs := make([]bson.D, 0, len(stmt.Rows))
	for i, row := range stmt.Rows {
		if len(row) != len(columns) {
			return nil, inputError(stmt.Kind, "row %d has %d values for %d columns", i+1, len(row), len(columns))
		}
		doc := bson.D{}
		for j, raw := range row {
			doc = append(doc, bson.E{Key: columns[j], Value: mongobuilders.ParseMongoValue(raw)})
		}
		docs = append(docs, doc)
	}

	header := models.Header{Collection: t.collection(stmt.Table)}
	if len(docs) == 1 {
		return &models.Insert{Header: header, Doc: docs[0]}, nil
	}
	return &models.InsertMany{Header: header, Docs: docs}, nil
}

// ============================================================================
// UPDATE
// ============================================================================

// translateUpdate emits a $set update, or a $match/$addFields/$merge
// pipeline when any assignment is arithmetic.
func (t *Translator) translateUpdate(c *Context, stmt *models.Statement) (models.Result, error) {
	if strings.TrimSpace(stmt.Table) == "" {
		return nil, inputError(stmt.Kind, "missing table name")
	}
	if len(stmt.Assignments) == 0 {
		return nil, inputError(stmt.Kind, "no SET assignments")
	}

	query, err := t.whereFilter(c, stmt)
	if err != nil {
		return nil, err
	}
	collection := t.collection(stmt.Table)
	header := models.Header{Collection: collection}

	if mongobuilders.HasArithmetic(stmt.Assignments) {
		c.log.Debug("update rewritten as pipeline", zap.Int("assignments", len(stmt.Assignments)))
		return &models.Aggregate{
			Header:     header,
			Pipeline:   mongobuilders.BuildUpdatePipeline(collection, query, stmt.Assignments, c.Warn),
			UpdateType: "math_operations",
		}, nil
	}

	return &models.Update{
		Header: header,
		Query:  query,
		Update: mongobuilders.BuildSetDocument(stmt.Assignments),
	}, nil
}

// ============================================================================
// DELETE
// ============================================================================

func (t *Translator) translateDelete(c *Context, stmt *models.Statement) (models.Result, error) {
	if strings.TrimSpace(stmt.Table) == "" {
		return nil, inputError(stmt.Kind, "missing table name")
	}
	query, err := t.whereFilter(c, stmt)
	if err != nil {
		return nil, err
	}
	if len(query) == 0 {
		c.Warn("DELETE without a filter removes every document in the collection")
	}
	return &models.Delete{
		Header: models.Header{Collection: t.collection(stmt.Table)},
		Query:  query,
	}, nil
}
