package translator

import (
	"strings"

	mongobuilders "github.com/ErikMLC/sqlmongo/engine/builders/mongodb"
	"github.com/ErikMLC/sqlmongo/engine/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ============================================================================
// DDL OPERATIONS
// ============================================================================

func (t *Translator) translateCreateTable(c *Context, stmt *models.Statement) (models.Result, error) {
	table := strings.TrimSpace(stmt.Table)
	if table == "" {
		return nil, inputError(stmt.Kind, "cannot determine the collection name")
	}
	header := models.Header{Collection: t.collection(table)}

	ct := stmt.Create
	if ct == nil || len(ct.Columns) == 0 {
		return &models.CreateCollection{Header: header, Options: bson.D{}}, nil
	}

	if len(ct.ForeignKeys) > 0 {
		c.Warn("foreign keys are not enforced by MongoDB")
		c.Warn("consider manual references or $lookup for related collections")
	}
	for _, col := range ct.Columns {
		if col.AutoIncrement {
			c.Warn("AUTO_INCREMENT is not supported; use ObjectId or a counter collection")
			break
		}
	}

	t.opts.Schemas.Register(table, ct)
	c.log.Debug("schema registered", zap.Int("columns", len(ct.Columns)))

	return &models.CreateCollection{
		Header:         header,
		Options:        mongobuilders.BuildCollectionOptions(ct),
		SchemaInfo:     mongobuilders.BuildSchemaInfo(ct),
		Indexes:        mongobuilders.BuildIndexModels(ct),
		SampleDocument: mongobuilders.BuildSampleDocument(ct),
	}, nil
}

func (t *Translator) translateDropTable(c *Context, stmt *models.Statement) (models.Result, error) {
	table := strings.TrimSpace(stmt.Table)
	if table == "" {
		return nil, inputError(stmt.Kind, "cannot determine the collection name")
	}
	t.opts.Schemas.Forget(table)
	return &models.DropCollection{Header: models.Header{Collection: t.collection(table)}}, nil
}
