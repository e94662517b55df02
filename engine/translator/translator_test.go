package translator

import (
	"errors"
	"sync"
	"testing"

	"github.com/ErikMLC/sqlmongo/engine/condition"
	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func int64p(n int64) *int64 { return &n }

func fields(names ...string) []models.SelectField {
	out := make([]models.SelectField, len(names))
	for i, n := range names {
		out[i] = models.SelectField{Field: n}
	}
	return out
}

func translate(t *testing.T, tr *Translator, stmt *models.Statement) models.Result {
	t.Helper()
	result, err := tr.Translate(stmt)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func stage(t *testing.T, agg *models.Aggregate, op string) interface{} {
	t.Helper()
	i := agg.StageIndex(op)
	require.GreaterOrEqual(t, i, 0, "stage %s missing from %v", op, agg.StageNames())
	return agg.Pipeline[i][0].Value
}

// ============================================================================
// FIND
// ============================================================================

func TestTranslateFind(t *testing.T) {
	tr := New(Options{})
	result := translate(t, tr, &models.Statement{
		Kind:   models.KindSelect,
		Table:  "users",
		Fields: fields("name", "email"),
		Where:  "age > 30 AND status = 'active'",
		Limit:  int64p(10),
	})

	find, ok := result.(*models.Find)
	require.True(t, ok)
	assert.Equal(t, "find", find.Operation())
	assert.Equal(t, "users", find.Collection)
	assert.Equal(t, bson.D{
		{Key: "age", Value: bson.D{{Key: "$gt", Value: int64(30)}}},
		{Key: "status", Value: "active"},
	}, find.Query)
	assert.Equal(t, bson.D{{Key: "name", Value: 1}, {Key: "email", Value: 1}}, find.Projection)
	require.NotNil(t, find.Limit)
	assert.Equal(t, int64(10), *find.Limit)
	assert.Nil(t, find.Skip)
	assert.Empty(t, find.Warnings)
}

func TestTranslateFindNonASCIIField(t *testing.T) {
	result := translate(t, New(Options{}), &models.Statement{
		Kind:   models.KindSelect,
		Table:  "peliculas",
		Fields: fields("título"),
		Where:  "año > 2000",
	})
	find, ok := result.(*models.Find)
	require.True(t, ok)
	assert.Equal(t, bson.D{{Key: "año", Value: bson.D{{Key: "$gt", Value: int64(2000)}}}}, find.Query)
	assert.Equal(t, bson.D{{Key: "título", Value: 1}}, find.Projection)
}

func TestTranslateFindSelectAllAndAlias(t *testing.T) {
	tr := New(Options{})

	all := translate(t, tr, &models.Statement{Kind: models.KindSelect, Table: "users", Fields: fields("*")}).(*models.Find)
	assert.Nil(t, all.Projection)
	assert.Equal(t, bson.D{}, all.Query)

	aliased := translate(t, tr, &models.Statement{
		Kind:   models.KindSelect,
		Table:  "users",
		Alias:  "u",
		Fields: []models.SelectField{{Field: "u.name", Alias: "n"}},
		Where:  "u.id = 7",
		Offset: int64p(5),
	}).(*models.Find)
	assert.Equal(t, bson.D{{Key: "n", Value: "$name"}}, aliased.Projection)
	assert.Equal(t, bson.D{{Key: "id", Value: int64(7)}}, aliased.Query)
	require.NotNil(t, aliased.Skip)
	assert.Equal(t, int64(5), *aliased.Skip)
}

func TestTranslateIsIdempotent(t *testing.T) {
	tr := New(Options{})
	stmt := &models.Statement{
		Kind:   models.KindSelect,
		Table:  "products",
		Fields: fields("*"),
		Where:  "price > 1 AND price < 5",
	}

	first := translate(t, tr, stmt)
	second := translate(t, tr, stmt)
	assert.Equal(t, first.Document(), second.Document())
	// warnings belong to one call and never accumulate
	assert.Len(t, second.Meta().Warnings, 1)
}

func TestTranslateConcurrentCalls(t *testing.T) {
	tr := New(Options{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := tr.Translate(&models.Statement{Kind: models.KindDelete, Table: "logs"})
			assert.NoError(t, err)
			assert.Len(t, result.Meta().Warnings, 1)
		}()
	}
	wg.Wait()
}

// ============================================================================
// AGGREGATE
// ============================================================================

func TestTranslateGroupByWithHaving(t *testing.T) {
	tr := New(Options{})
	result := translate(t, tr, &models.Statement{
		Kind:    models.KindSelect,
		Table:   "orders",
		Fields:  fields("customer_id", "COUNT(*)"),
		GroupBy: []string{"customer_id"},
		Having:  "COUNT(*) > 5",
	})

	agg, ok := result.(*models.Aggregate)
	require.True(t, ok)
	assert.Equal(t, []string{"$group", "$match", "$project"}, agg.StageNames())
	assert.Greater(t, agg.StageIndex("$match"), agg.StageIndex("$group"))

	assert.Equal(t, bson.D{
		{Key: "_id", Value: "$customer_id"},
		{Key: "count_all", Value: bson.D{{Key: "$sum", Value: 1}}},
	}, stage(t, agg, "$group"))
	assert.Equal(t, bson.D{{Key: "count_all", Value: bson.D{{Key: "$gt", Value: int64(5)}}}}, stage(t, agg, "$match"))
	assert.Equal(t, bson.D{
		{Key: "_id", Value: 0},
		{Key: "customer_id", Value: "$_id"},
		{Key: "count_all", Value: "$count_all"},
	}, stage(t, agg, "$project"))
}

func TestTranslateHavingOnlyAggregate(t *testing.T) {
	tr := New(Options{})
	agg := translate(t, tr, &models.Statement{
		Kind:    models.KindSelect,
		Table:   "orders",
		Fields:  fields("customer_id"),
		GroupBy: []string{"customer_id"},
		Having:  "SUM(total) >= 100",
	}).(*models.Aggregate)

	group := stage(t, agg, "$group").(bson.D)
	require.Len(t, group, 2)
	assert.Equal(t, "sum_total", group[1].Key)
	assert.Equal(t, bson.D{{Key: "sum_total", Value: bson.D{{Key: "$gte", Value: int64(100)}}}}, stage(t, agg, "$match"))
}

func TestTranslateSumProduct(t *testing.T) {
	tr := New(Options{})
	agg := translate(t, tr, &models.Statement{
		Kind:    models.KindSelect,
		Table:   "products",
		Fields:  []models.SelectField{{Field: "category"}, {Field: "SUM(price * stock)", Alias: "inventory"}},
		GroupBy: []string{"category"},
		OrderBy: []models.OrderBy{{Field: "inventory", Desc: true}},
	}).(*models.Aggregate)

	assert.Equal(t, []string{"$group", "$project", "$sort"}, agg.StageNames())
	group := stage(t, agg, "$group").(bson.D)
	assert.Equal(t, bson.E{Key: "inventory", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$multiply", Value: bson.A{
		bson.D{{Key: "$toDouble", Value: "$price"}},
		bson.D{{Key: "$toDouble", Value: "$stock"}},
	}}}}}}, group[1])
	assert.Equal(t, bson.D{{Key: "inventory", Value: -1}}, stage(t, agg, "$sort"))
}

func TestTranslateNumericSort(t *testing.T) {
	tr := New(Options{})
	agg := translate(t, tr, &models.Statement{
		Kind:    models.KindSelect,
		Table:   "products",
		Fields:  fields("*"),
		OrderBy: []models.OrderBy{{Field: "price"}, {Field: "name"}},
		Limit:   int64p(3),
		Offset:  int64p(6),
	}).(*models.Aggregate)

	assert.Equal(t, []string{"$addFields", "$sort", "$unset", "$skip", "$limit"}, agg.StageNames())
	assert.Equal(t, bson.D{{Key: "price_numeric", Value: 1}, {Key: "name", Value: 1}}, stage(t, agg, "$sort"))
	assert.Equal(t, []string{"price_numeric"}, stage(t, agg, "$unset"))
}

func TestTranslateNumericSortUsesDeclaredTypes(t *testing.T) {
	schemas := NewSchemaRegistry()
	tr := New(Options{Schemas: schemas})
	_, err := tr.Translate(&models.Statement{
		Kind:  models.KindCreateTable,
		Table: "items",
		Create: &models.CreateTable{Columns: []models.ColumnDef{
			{Name: "price", Type: "VARCHAR(20)"},
			{Name: "weight", Type: "DECIMAL(10,2)"},
		}},
	})
	require.NoError(t, err)

	agg := translate(t, tr, &models.Statement{
		Kind:    models.KindSelect,
		Table:   "items",
		Fields:  fields("*"),
		OrderBy: []models.OrderBy{{Field: "price"}, {Field: "weight"}},
	}).(*models.Aggregate)
	assert.Equal(t, bson.D{{Key: "price", Value: 1}, {Key: "weight_numeric", Value: 1}}, stage(t, agg, "$sort"))
}

func TestTranslateDistinct(t *testing.T) {
	tr := New(Options{})
	agg := translate(t, tr, &models.Statement{
		Kind:     models.KindSelect,
		Table:    "users",
		Fields:   fields("city"),
		Distinct: true,
	}).(*models.Aggregate)
	assert.Equal(t, []string{"$group", "$replaceRoot"}, agg.StageNames())
}

func TestTranslateScalarFunction(t *testing.T) {
	tr := New(Options{})
	agg := translate(t, tr, &models.Statement{
		Kind:   models.KindSelect,
		Table:  "users",
		Fields: []models.SelectField{{Field: "UPPER(name)", Alias: "upper_name"}},
	}).(*models.Aggregate)
	assert.Equal(t, bson.D{
		{Key: "_id", Value: 0},
		{Key: "upper_name", Value: bson.D{{Key: "$toUpper", Value: "$name"}}},
	}, stage(t, agg, "$project"))
}

// ============================================================================
// JOIN / UNION
// ============================================================================

func TestTranslateJoin(t *testing.T) {
	tr := New(Options{})
	agg := translate(t, tr, &models.Statement{
		Kind:   models.KindSelect,
		Table:  "users",
		Alias:  "u",
		Fields: fields("u.name", "o.total"),
		Where:  "u.active = 1",
		Joins: []models.Join{
			{Type: models.JoinLeft, Table: "orders", Alias: "o", Condition: "u.id = o.user_id"},
		},
		OrderBy: []models.OrderBy{{Field: "o.total", Desc: true}},
		Limit:   int64p(20),
	}).(*models.Aggregate)

	assert.Equal(t, []string{"$match", "$lookup", "$unwind", "$project", "$sort", "$limit"}, agg.StageNames())
	assert.Equal(t, bson.D{
		{Key: "from", Value: "orders"},
		{Key: "localField", Value: "id"},
		{Key: "foreignField", Value: "user_id"},
		{Key: "as", Value: "o_joined"},
	}, stage(t, agg, "$lookup"))
	assert.Equal(t, bson.D{
		{Key: "path", Value: "$o_joined"},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}, stage(t, agg, "$unwind"))
	assert.Equal(t, bson.D{{Key: "total", Value: -1}}, stage(t, agg, "$sort"))

	require.NotNil(t, agg.JoinInfo)
	assert.Equal(t, 1, agg.JoinInfo.JoinCount)
	assert.Equal(t, []string{"left"}, agg.JoinInfo.JoinTypes)
}

func TestTranslateJoinSelectAllSort(t *testing.T) {
	tr := New(Options{})
	agg := translate(t, tr, &models.Statement{
		Kind:    models.KindSelect,
		Table:   "users",
		Alias:   "u",
		Fields:  fields("*"),
		Joins:   []models.Join{{Type: models.JoinInner, Table: "orders", Alias: "o", Condition: "o.user_id = u.id"}},
		OrderBy: []models.OrderBy{{Field: "o.total"}},
	}).(*models.Aggregate)
	assert.Equal(t, bson.D{{Key: "o_data.total", Value: 1}}, stage(t, agg, "$sort"))
	assert.Equal(t, bson.D{{Key: "path", Value: "$o_joined"}}, stage(t, agg, "$unwind"))
}

func TestTranslateUnion(t *testing.T) {
	tr := New(Options{})
	result := translate(t, tr, &models.Statement{
		Kind:   models.KindSelect,
		Table:  "customers",
		Fields: fields("name"),
		Unions: []models.UnionBranch{{All: true, Statement: &models.Statement{
			Kind:   models.KindSelect,
			Table:  "suppliers",
			Fields: fields("name"),
		}}},
	})

	union, ok := result.(*models.Union)
	require.True(t, ok)
	assert.Equal(t, "union_all", union.UnionType)
	assert.Equal(t, "4.4+", union.MongoDBVersionRequired)
	assert.Equal(t, "separate_queries", union.AlternativeStrategy)
	require.Len(t, union.Queries, 2)
	assert.Equal(t, "customers", union.Queries[0].Meta().Collection)
	assert.Equal(t, "suppliers", union.Queries[1].Meta().Collection)
	assert.Contains(t, union.Warnings, "UNION requires MongoDB 4.4+ with $unionWith")
}

// ============================================================================
// WRITES
// ============================================================================

func TestTranslateInsert(t *testing.T) {
	tr := New(Options{})
	one := translate(t, tr, &models.Statement{
		Kind:    models.KindInsert,
		Table:   "users",
		Columns: []string{"name", "age", "active"},
		Rows:    [][]string{{"'Ana'", "31", "TRUE"}},
	})
	insert, ok := one.(*models.Insert)
	require.True(t, ok)
	assert.Equal(t, bson.D{
		{Key: "name", Value: "Ana"},
		{Key: "age", Value: int64(31)},
		{Key: "active", Value: true},
	}, insert.Doc)

	many := translate(t, tr, &models.Statement{
		Kind:    models.KindInsert,
		Table:   "users",
		Columns: []string{"name"},
		Rows:    [][]string{{"'a'"}, {"'b'"}},
	})
	assert.Equal(t, "insert_many", many.Operation())
	assert.Len(t, many.(*models.InsertMany).Docs, 2)
}

func TestTranslateInsertErrors(t *testing.T) {
	tr := New(Options{})

	_, err := tr.Translate(&models.Statement{Kind: models.KindInsert, Table: "users", Columns: []string{"a", "b"}, Rows: [][]string{{"1"}}})
	assert.ErrorIs(t, err, ErrInput)

	_, err = tr.Translate(&models.Statement{Kind: models.KindInsert, Table: "users", Rows: [][]string{{"1"}}})
	assert.ErrorIs(t, err, ErrInput)

	_, err = tr.Translate(&models.Statement{Kind: models.KindInsert, Table: "users", Columns: []string{"a"}})
	var inputErr *InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, models.KindInsert, inputErr.Statement)
}

func TestTranslateInsertWithoutColumnsUsesSchema(t *testing.T) {
	schemas := NewSchemaRegistry()
	schemas.Register("tags", &models.CreateTable{Columns: []models.ColumnDef{{Name: "id", Type: "INT"}, {Name: "label", Type: "TEXT"}}})
	tr := New(Options{Schemas: schemas})

	insert := translate(t, tr, &models.Statement{Kind: models.KindInsert, Table: "tags", Rows: [][]string{{"1", "'go'"}}}).(*models.Insert)
	assert.Equal(t, bson.D{{Key: "id", Value: int64(1)}, {Key: "label", Value: "go"}}, insert.Doc)
}

func TestTranslateUpdate(t *testing.T) {
	tr := New(Options{})

	plain := translate(t, tr, &models.Statement{
		Kind:        models.KindUpdate,
		Table:       "users",
		Where:       "id = 1",
		Assignments: []models.Assignment{{Field: "status", Expression: "'inactive'"}},
	})
	update, ok := plain.(*models.Update)
	require.True(t, ok)
	assert.Equal(t, bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: "inactive"}}}}, update.Update)
	assert.Equal(t, bson.D{{Key: "id", Value: int64(1)}}, update.Query)

	math := translate(t, tr, &models.Statement{
		Kind:        models.KindUpdate,
		Table:       "products",
		Where:       "category = 'books'",
		Assignments: []models.Assignment{{Field: "price", Expression: "price * 1.1"}},
	})
	agg, ok := math.(*models.Aggregate)
	require.True(t, ok)
	assert.Equal(t, "math_operations", agg.UpdateType)
	assert.Equal(t, []string{"$match", "$addFields", "$merge"}, agg.StageNames())
	assert.Equal(t, bson.D{{Key: "price", Value: bson.D{{Key: "$multiply", Value: bson.A{
		bson.D{{Key: "$toDouble", Value: "$price"}},
		1.1,
	}}}}}, stage(t, agg, "$addFields"))
}

func TestTranslateUpdateOperatorInsideCall(t *testing.T) {
	result := translate(t, New(Options{}), &models.Statement{
		Kind:        models.KindUpdate,
		Table:       "empleados",
		Where:       "id = 1",
		Assignments: []models.Assignment{{Field: "etiqueta", Expression: "CONCAT(nombre, ' - ', apellido)"}},
	})
	update, ok := result.(*models.Update)
	require.True(t, ok)
	assert.Equal(t, bson.D{{Key: "id", Value: int64(1)}}, update.Query)
	set := update.Update[0].Value.(bson.D)
	require.Len(t, set, 1)
	assert.Equal(t, "etiqueta", set[0].Key)
}

func TestTranslateUpdateWithoutAssignments(t *testing.T) {
	_, err := New(Options{}).Translate(&models.Statement{Kind: models.KindUpdate, Table: "users"})
	assert.ErrorIs(t, err, ErrInput)
}

func TestTranslateDelete(t *testing.T) {
	tr := New(Options{})

	filtered := translate(t, tr, &models.Statement{Kind: models.KindDelete, Table: "logs", Where: "level IN ('debug', 'trace')"}).(*models.Delete)
	assert.Equal(t, bson.D{{Key: "level", Value: bson.D{{Key: "$in", Value: bson.A{"debug", "trace"}}}}}, filtered.Query)
	assert.Empty(t, filtered.Warnings)

	all := translate(t, tr, &models.Statement{Kind: models.KindDelete, Table: "logs"}).(*models.Delete)
	assert.Equal(t, bson.D{}, all.Document()[2].Value)
	assert.Len(t, all.Warnings, 1)
}

// ============================================================================
// DDL
// ============================================================================

func TestTranslateCreateTable(t *testing.T) {
	def := "'active'"
	tr := New(Options{})
	result := translate(t, tr, &models.Statement{
		Kind:  models.KindCreateTable,
		Table: "accounts",
		Create: &models.CreateTable{
			Columns: []models.ColumnDef{
				{Name: "id", Type: "INT", AutoIncrement: true},
				{Name: "email", Type: "VARCHAR(255)", NotNull: true, Unique: true},
				{Name: "status", Type: "VARCHAR(20)", Default: &def},
				{Name: "owner_id", Type: "INT"},
			},
			PrimaryKeys: []string{"id"},
			ForeignKeys: []models.ForeignKey{{Columns: []string{"owner_id"}, RefTable: "users", RefColumns: []string{"id"}}},
		},
	})

	create, ok := result.(*models.CreateCollection)
	require.True(t, ok)
	assert.Equal(t, "create_collection_with_schema", create.Operation())
	assert.NotNil(t, create.SchemaInfo)
	require.Len(t, create.Indexes, 2)
	assert.Equal(t, bson.D{{Key: "id", Value: 1}}, create.Indexes[0].Keys)
	assert.Equal(t, bson.D{{Key: "email", Value: 1}}, create.Indexes[1].Keys)
	assert.Len(t, create.Warnings, 3)

	sample := create.SampleDocument.Map()
	assert.Equal(t, "active", sample["status"])
}

func TestTranslateCreateTableWithoutColumns(t *testing.T) {
	create := translate(t, New(Options{}), &models.Statement{Kind: models.KindCreateTable, Table: "blobs"}).(*models.CreateCollection)
	assert.Equal(t, "create_collection", create.Operation())
	assert.Equal(t, bson.D{}, create.Options)
}

func TestTranslateDropTable(t *testing.T) {
	schemas := NewSchemaRegistry()
	schemas.Register("old", &models.CreateTable{Columns: []models.ColumnDef{{Name: "x", Type: "INT"}}})
	tr := New(Options{Schemas: schemas})

	drop := translate(t, tr, &models.Statement{Kind: models.KindDropTable, Table: "old"})
	assert.Equal(t, "drop_collection", drop.Operation())
	assert.Nil(t, schemas.Columns("old"))

	_, err := tr.Translate(&models.Statement{Kind: models.KindDropTable})
	assert.ErrorIs(t, err, ErrInput)
}

// ============================================================================
// OPTIONS
// ============================================================================

func TestStrictConditions(t *testing.T) {
	stmt := &models.Statement{Kind: models.KindSelect, Table: "t", Fields: fields("*"), Where: "a = 1 AND b = = 2"}

	lenient := translate(t, New(Options{}), stmt)
	assert.Equal(t, bson.D{{Key: "a", Value: int64(1)}}, lenient.(*models.Find).Query)
	assert.Len(t, lenient.Meta().Warnings, 1)

	_, err := New(Options{StrictConditions: true}).Translate(stmt)
	assert.ErrorIs(t, err, condition.ErrSyntax)
}

func TestPluralCollectionNaming(t *testing.T) {
	tr := New(Options{CollectionNaming: NamingPlural})
	result := translate(t, tr, &models.Statement{Kind: models.KindSelect, Table: "person", Fields: fields("*")})
	assert.Equal(t, "people", result.Meta().Collection)
}

func TestUnsupportedKind(t *testing.T) {
	_, err := New(Options{}).Translate(&models.Statement{Kind: "MERGE", Table: "x"})
	assert.ErrorIs(t, err, ErrInput)

	_, err = New(Options{}).Translate(nil)
	assert.ErrorIs(t, err, ErrInput)
}

func TestAggregatePipelineType(t *testing.T) {
	agg := translate(t, New(Options{}), &models.Statement{Kind: models.KindSelect, Table: "t", Fields: fields("COUNT(*)")}).(*models.Aggregate)
	assert.IsType(t, mongo.Pipeline{}, agg.Pipeline)
	assert.Equal(t, []string{"$group", "$project"}, agg.StageNames())
}
