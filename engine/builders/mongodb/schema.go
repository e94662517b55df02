package mongodb

import (
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/ErikMLC/sqlmongo/mapping"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ============================================================================
// DDL OPERATIONS
// ============================================================================

// RequiredFields lists NOT NULL and primary key columns in declaration order
func RequiredFields(ct *models.CreateTable) []string {
	pk := make(map[string]bool, len(ct.PrimaryKeys))
	for _, k := range ct.PrimaryKeys {
		pk[k] = true
	}
	required := []string{}
	for _, col := range ct.Columns {
		if col.NotNull || pk[col.Name] {
			required = append(required, col.Name)
		}
	}
	return required
}

// BuildJSONSchema builds the $jsonSchema validator for a table definition
func BuildJSONSchema(ct *models.CreateTable) bson.D {
	properties := bson.D{}
	for _, col := range ct.Columns {
		def := mapping.LookupType(col.Type)
		properties = append(properties, bson.E{Key: col.Name, Value: bson.D{
			{Key: "bsonType", Value: def.BSONType},
			{Key: "description", Value: strings.ToLower(strings.TrimSpace(col.Type))},
		}})
	}

	schema := bson.D{{Key: "bsonType", Value: "object"}}
	if required := RequiredFields(ct); len(required) > 0 {
		schema = append(schema, bson.E{Key: "required", Value: required})
	}
	schema = append(schema, bson.E{Key: "properties", Value: properties})
	return bson.D{{Key: "$jsonSchema", Value: schema}}
}

// BuildCollectionOptions returns createCollection options with a
// validator that warns instead of rejecting writes.
func BuildCollectionOptions(ct *models.CreateTable) bson.D {
	return bson.D{
		{Key: "validator", Value: BuildJSONSchema(ct)},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "warn"},
	}
}

// BuildIndexModels creates one unique index for the primary key and one per UNIQUE column
func BuildIndexModels(ct *models.CreateTable) []mongo.IndexModel {
	var indexes []mongo.IndexModel
	if len(ct.PrimaryKeys) > 0 {
		keys := bson.D{}
		for _, k := range ct.PrimaryKeys {
			keys = append(keys, bson.E{Key: k, Value: 1})
		}
		indexes = append(indexes, mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetUnique(true).SetName("primary_key_index"),
		})
	}
	for _, col := range ct.Columns {
		if !col.Unique {
			continue
		}
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: col.Name, Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_" + col.Name + "_index"),
		})
	}
	return indexes
}

// BuildSampleDocument shows the shape of a document: explicit defaults,
// and zero values for NOT NULL columns without one.
func BuildSampleDocument(ct *models.CreateTable) bson.D {
	sample := bson.D{}
	for _, col := range ct.Columns {
		switch {
		case col.Default != nil:
			sample = append(sample, bson.E{Key: col.Name, Value: ParseMongoValue(*col.Default)})
		case col.NotNull:
			sample = append(sample, bson.E{Key: col.Name, Value: zeroValue(mapping.LookupType(col.Type))})
		}
	}
	return sample
}

func zeroValue(def mapping.TypeDefinition) interface{} {
	switch def.JSONType {
	case "number":
		return 0
	case "string":
		return ""
	case "boolean":
		return false
	}
	return nil
}

// BuildSchemaInfo summarizes columns and constraints of a table definition
func BuildSchemaInfo(ct *models.CreateTable) bson.D {
	columns := bson.A{}
	unique := []string{}
	for _, col := range ct.Columns {
		def := mapping.LookupType(col.Type)
		column := bson.D{
			{Key: "name", Value: col.Name},
			{Key: "type", Value: col.Type},
			{Key: "nullable", Value: !col.NotNull},
			{Key: "unique", Value: col.Unique},
			{Key: "auto_increment", Value: col.AutoIncrement},
			{Key: "mongo_type", Value: bson.D{
				{Key: "bsonType", Value: def.BSONType},
				{Key: "type", Value: def.JSONType},
			}},
		}
		if col.Default != nil {
			column = append(column, bson.E{Key: "default", Value: ParseMongoValue(*col.Default)})
		}
		columns = append(columns, column)
		if col.Unique {
			unique = append(unique, col.Name)
		}
	}

	primary := ct.PrimaryKeys
	if primary == nil {
		primary = []string{}
	}
	foreign := bson.A{}
	for _, fk := range ct.ForeignKeys {
		foreign = append(foreign, bson.D{
			{Key: "columns", Value: fk.Columns},
			{Key: "references_table", Value: fk.RefTable},
			{Key: "references_columns", Value: fk.RefColumns},
		})
	}

	return bson.D{
		{Key: "columns", Value: columns},
		{Key: "constraints", Value: bson.D{
			{Key: "primary_keys", Value: primary},
			{Key: "unique", Value: unique},
			{Key: "foreign_keys", Value: foreign},
		}},
		{Key: "total_columns", Value: len(ct.Columns)},
		{Key: "required_fields", Value: RequiredFields(ct)},
		{Key: "primary_keys", Value: primary},
		{Key: "foreign_keys", Value: foreign},
	}
}
