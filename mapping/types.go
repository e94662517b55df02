package mapping

import "strings"

// TypeDefinition describes how a SQL column type is stored in MongoDB
type TypeDefinition struct {
	BSONType string // $jsonSchema bsonType
	JSONType string // number, string, boolean, date, object, binary
}

// TypeMap - SQL base type (no length/precision) to MongoDB storage type
// Usage: TypeMap["VARCHAR"].BSONType returns "string"
var TypeMap = map[string]TypeDefinition{
	// Numeric Types
	"INT":       {BSONType: "int", JSONType: "number"},
	"INTEGER":   {BSONType: "int", JSONType: "number"},
	"TINYINT":   {BSONType: "int", JSONType: "number"},
	"SMALLINT":  {BSONType: "int", JSONType: "number"},
	"MEDIUMINT": {BSONType: "int", JSONType: "number"},
	"BIGINT":    {BSONType: "long", JSONType: "number"},
	"SERIAL":    {BSONType: "long", JSONType: "number"},
	"DECIMAL":   {BSONType: "decimal", JSONType: "number"},
	"NUMERIC":   {BSONType: "decimal", JSONType: "number"},
	"FLOAT":     {BSONType: "double", JSONType: "number"},
	"DOUBLE":    {BSONType: "double", JSONType: "number"},
	"REAL":      {BSONType: "double", JSONType: "number"},

	// String Types
	"CHAR":       {BSONType: "string", JSONType: "string"},
	"VARCHAR":    {BSONType: "string", JSONType: "string"},
	"TEXT":       {BSONType: "string", JSONType: "string"},
	"TINYTEXT":   {BSONType: "string", JSONType: "string"},
	"MEDIUMTEXT": {BSONType: "string", JSONType: "string"},
	"LONGTEXT":   {BSONType: "string", JSONType: "string"},
	"ENUM":       {BSONType: "string", JSONType: "string"},
	"SET":        {BSONType: "string", JSONType: "string"},
	"TIME":       {BSONType: "string", JSONType: "string"},
	"UUID":       {BSONType: "string", JSONType: "string"},

	// Boolean
	"BOOLEAN": {BSONType: "bool", JSONType: "boolean"},
	"BOOL":    {BSONType: "bool", JSONType: "boolean"},
	"BIT":     {BSONType: "bool", JSONType: "boolean"},

	// Date/Time Types
	"DATE":      {BSONType: "date", JSONType: "date"},
	"DATETIME":  {BSONType: "date", JSONType: "date"},
	"TIMESTAMP": {BSONType: "date", JSONType: "date"},
	"YEAR":      {BSONType: "int", JSONType: "number"},

	// Document Types
	"JSON": {BSONType: "object", JSONType: "object"},

	// Binary Types
	"BLOB":      {BSONType: "binData", JSONType: "binary"},
	"BINARY":    {BSONType: "binData", JSONType: "binary"},
	"VARBINARY": {BSONType: "binData", JSONType: "binary"},
}

// LookupType resolves a column type such as "varchar(255)" or "int unsigned".
// Unknown types are stored as strings.
func LookupType(sqlType string) TypeDefinition {
	base := strings.ToUpper(strings.TrimSpace(sqlType))
	if i := strings.IndexAny(base, "( "); i >= 0 {
		base = base[:i]
	}
	if def, ok := TypeMap[base]; ok {
		return def
	}
	return TypeDefinition{BSONType: "string", JSONType: "string"}
}

// IsNumericType reports whether sqlType is stored as a MongoDB number
func IsNumericType(sqlType string) bool {
	return LookupType(sqlType).JSONType == "number"
}
