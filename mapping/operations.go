package mapping

// Operation names carried by every translation result
const (
	OpFind                       = "find"
	OpAggregate                  = "aggregate"
	OpInsert                     = "insert"
	OpInsertMany                 = "insert_many"
	OpUpdate                     = "update"
	OpDelete                     = "delete"
	OpCreateCollection           = "create_collection"
	OpCreateCollectionWithSchema = "create_collection_with_schema"
	OpDropCollection             = "drop_collection"
	OpUnion                      = "union"
)

// ShellMethods - result operation to mongo shell collection method
// Usage: ShellMethods["insert_many"] returns "insertMany"
var ShellMethods = map[string]string{
	OpFind:           "find",
	OpAggregate:      "aggregate",
	OpInsert:         "insertOne",
	OpInsertMany:     "insertMany",
	OpUpdate:         "updateMany",
	OpDelete:         "deleteMany",
	OpDropCollection: "drop",
}

// Operations lists every operation name in a stable order
var Operations = []string{
	OpFind, OpAggregate, OpInsert, OpInsertMany, OpUpdate, OpDelete,
	OpCreateCollection, OpCreateCollectionWithSchema, OpDropCollection, OpUnion,
}
