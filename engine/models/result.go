package models

import (
	"fmt"

	"github.com/ErikMLC/sqlmongo/mapping"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ============================================================================
// RESULT - Tagged union of translation outputs
// ============================================================================

// Result is one translation output. Every variant renders to an ordered
// document whose first keys are "operation" and "collection".
type Result interface {
	Operation() string
	Meta() *Header
	Document() bson.D
}

// Header carries the fields shared by every variant
type Header struct {
	Collection string
	Warnings   []string
}

// Meta returns the shared header
func (h *Header) Meta() *Header { return h }

func (h *Header) open(op string) bson.D {
	return bson.D{{Key: "operation", Value: op}, {Key: "collection", Value: h.Collection}}
}

func (h *Header) close(doc bson.D) bson.D {
	if len(h.Warnings) > 0 {
		doc = append(doc, bson.E{Key: "warnings", Value: h.Warnings})
	}
	return doc
}

// ============================================================================
// QUERY VARIANTS
// ============================================================================

// Find is a plain find() with optional projection, sort and paging
type Find struct {
	Header
	Query      bson.D
	Projection bson.D
	Sort       bson.D
	Limit      *int64
	Skip       *int64
}

func (r *Find) Operation() string { return mapping.OpFind }

func (r *Find) Document() bson.D {
	doc := r.open(mapping.OpFind)
	doc = append(doc, bson.E{Key: "query", Value: orEmpty(r.Query)})
	if len(r.Projection) > 0 {
		doc = append(doc, bson.E{Key: "projection", Value: r.Projection})
	}
	if len(r.Sort) > 0 {
		doc = append(doc, bson.E{Key: "sort", Value: r.Sort})
	}
	if r.Limit != nil {
		doc = append(doc, bson.E{Key: "limit", Value: *r.Limit})
	}
	if r.Skip != nil {
		doc = append(doc, bson.E{Key: "skip", Value: *r.Skip})
	}
	return r.close(doc)
}

// JoinInfo summarizes the joins folded into a pipeline
type JoinInfo struct {
	JoinCount int
	JoinTypes []string
}

// Aggregate is an aggregation pipeline
type Aggregate struct {
	Header
	Pipeline   mongo.Pipeline
	UpdateType string // "math_operations" for arithmetic UPDATE rewrites
	JoinInfo   *JoinInfo
}

func (r *Aggregate) Operation() string { return mapping.OpAggregate }

func (r *Aggregate) Document() bson.D {
	doc := r.open(mapping.OpAggregate)
	pipeline := r.Pipeline
	if pipeline == nil {
		pipeline = mongo.Pipeline{}
	}
	doc = append(doc, bson.E{Key: "pipeline", Value: pipeline})
	if r.UpdateType != "" {
		doc = append(doc, bson.E{Key: "update_type", Value: r.UpdateType})
	}
	if r.JoinInfo != nil {
		doc = append(doc, bson.E{Key: "join_info", Value: bson.D{
			{Key: "join_count", Value: r.JoinInfo.JoinCount},
			{Key: "join_types", Value: r.JoinInfo.JoinTypes},
		}})
	}
	return r.close(doc)
}

// StageNames lists the operator of every pipeline stage in order
func (r *Aggregate) StageNames() []string {
	names := make([]string, 0, len(r.Pipeline))
	for _, stage := range r.Pipeline {
		if len(stage) > 0 {
			names = append(names, stage[0].Key)
		}
	}
	return names
}

// StageIndex returns the position of the first stage named op, or -1
func (r *Aggregate) StageIndex(op string) int {
	for i, name := range r.StageNames() {
		if name == op {
			return i
		}
	}
	return -1
}

// Union describes a set operation that MongoDB cannot run as one query
type Union struct {
	Header
	UnionType              string // "union" or "union_all"
	Queries                []Result
	MongoDBVersionRequired string
	AlternativeStrategy    string
}

func (r *Union) Operation() string { return mapping.OpUnion }

func (r *Union) Document() bson.D {
	doc := r.open(mapping.OpUnion)
	queries := bson.A{}
	for _, q := range r.Queries {
		queries = append(queries, q.Document())
	}
	doc = append(doc,
		bson.E{Key: "union_type", Value: r.UnionType},
		bson.E{Key: "queries", Value: queries},
		bson.E{Key: "mongodb_version_required", Value: r.MongoDBVersionRequired},
		bson.E{Key: "alternative_strategy", Value: r.AlternativeStrategy},
	)
	return r.close(doc)
}

// ============================================================================
// WRITE VARIANTS
// ============================================================================

// Insert is a single-document insert
type Insert struct {
	Header
	Doc bson.D
}

func (r *Insert) Operation() string { return mapping.OpInsert }

func (r *Insert) Document() bson.D {
	doc := r.open(mapping.OpInsert)
	doc = append(doc, bson.E{Key: "document", Value: orEmpty(r.Doc)})
	return r.close(doc)
}

// InsertMany is a multi-row insert
type InsertMany struct {
	Header
	Docs []bson.D
}

func (r *InsertMany) Operation() string { return mapping.OpInsertMany }

func (r *InsertMany) Document() bson.D {
	doc := r.open(mapping.OpInsertMany)
	docs := bson.A{}
	for _, d := range r.Docs {
		docs = append(docs, d)
	}
	doc = append(doc, bson.E{Key: "documents", Value: docs})
	return r.close(doc)
}

// Update is an update with a plain $set document
type Update struct {
	Header
	Query  bson.D
	Update bson.D
}

func (r *Update) Operation() string { return mapping.OpUpdate }

func (r *Update) Document() bson.D {
	doc := r.open(mapping.OpUpdate)
	doc = append(doc,
		bson.E{Key: "query", Value: orEmpty(r.Query)},
		bson.E{Key: "update", Value: orEmpty(r.Update)},
	)
	return r.close(doc)
}

// Delete removes every document matching Query
type Delete struct {
	Header
	Query bson.D
}

func (r *Delete) Operation() string { return mapping.OpDelete }

func (r *Delete) Document() bson.D {
	doc := r.open(mapping.OpDelete)
	doc = append(doc, bson.E{Key: "query", Value: orEmpty(r.Query)})
	return r.close(doc)
}

// ============================================================================
// DDL VARIANTS
// ============================================================================

// CreateCollection creates a collection. With SchemaInfo set it is the
// create_collection_with_schema variant.
type CreateCollection struct {
	Header
	Options        bson.D
	SchemaInfo     bson.D
	Indexes        []mongo.IndexModel
	SampleDocument bson.D
}

func (r *CreateCollection) Operation() string {
	if r.SchemaInfo != nil {
		return mapping.OpCreateCollectionWithSchema
	}
	return mapping.OpCreateCollection
}

func (r *CreateCollection) Document() bson.D {
	doc := r.open(r.Operation())
	doc = append(doc, bson.E{Key: "options", Value: orEmpty(r.Options)})
	if r.SchemaInfo != nil {
		doc = append(doc, bson.E{Key: "schema_info", Value: r.SchemaInfo})
	}
	if len(r.Indexes) > 0 {
		indexes := bson.A{}
		for _, idx := range r.Indexes {
			indexes = append(indexes, IndexDocument(idx))
		}
		doc = append(doc, bson.E{Key: "indexes_to_create", Value: indexes})
	}
	if len(r.SampleDocument) > 0 {
		doc = append(doc, bson.E{Key: "sample_document", Value: r.SampleDocument})
	}
	return r.close(doc)
}

// IndexDocument renders an index model as {key, unique, name}
func IndexDocument(idx mongo.IndexModel) bson.D {
	doc := bson.D{{Key: "key", Value: idx.Keys}}
	if idx.Options != nil {
		if idx.Options.Unique != nil {
			doc = append(doc, bson.E{Key: "unique", Value: *idx.Options.Unique})
		}
		if idx.Options.Name != nil {
			doc = append(doc, bson.E{Key: "name", Value: *idx.Options.Name})
		}
	}
	return doc
}

// DropCollection drops a collection
type DropCollection struct {
	Header
}

func (r *DropCollection) Operation() string { return mapping.OpDropCollection }

func (r *DropCollection) Document() bson.D {
	return r.close(r.open(mapping.OpDropCollection))
}

// ============================================================================
// ENCODING
// ============================================================================

// MarshalExtJSON renders a result as relaxed Extended JSON with key order kept
func MarshalExtJSON(r Result, indent bool) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("nil result")
	}
	if indent {
		return bson.MarshalExtJSONIndent(r.Document(), false, false, "", "  ")
	}
	return bson.MarshalExtJSON(r.Document(), false, false)
}

// ToStruct converts a result into a protobuf Struct
func ToStruct(r Result) (*structpb.Struct, error) {
	data, err := MarshalExtJSON(r, false)
	if err != nil {
		return nil, err
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("convert result to struct: %w", err)
	}
	return s, nil
}

func orEmpty(d bson.D) bson.D {
	if d == nil {
		return bson.D{}
	}
	return d
}
