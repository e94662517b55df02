package models

import "strings"

// ============================================================================
// STATEMENT - Parsed SQL handed to the translator
// ============================================================================

// StatementKind names the SQL statement family
type StatementKind string

const (
	KindSelect      StatementKind = "SELECT"
	KindInsert      StatementKind = "INSERT"
	KindUpdate      StatementKind = "UPDATE"
	KindDelete      StatementKind = "DELETE"
	KindCreateTable StatementKind = "CREATE TABLE"
	KindDropTable   StatementKind = "DROP TABLE"
)

// Statement is the translator input. Clause bodies (WHERE, HAVING, select
// expressions, assignment right-hand sides) are kept as SQL text.
type Statement struct {
	// ========== BASIC INFO (All Statements) ==========
	Kind  StatementKind
	Table string // Main table; becomes the collection
	Alias string // Main table alias (FROM users u)
	SQL   string // statement text as written, when known

	// ========== SELECT ==========
	Fields      []SelectField // Empty or a single "*" means all fields
	Where       string
	GroupBy     []string
	Having      string
	OrderBy     []OrderBy
	Limit       *int64
	Offset      *int64
	Distinct    bool
	Joins       []Join
	Unions      []UnionBranch // UNION branches after the first SELECT
	HasSubquery bool

	// ========== INSERT ==========
	Columns []string   // Column list; positional when empty
	Rows    [][]string // Raw value text per row

	// ========== UPDATE ==========
	Assignments []Assignment // SET list in source order

	// ========== CREATE TABLE ==========
	Create *CreateTable // nil when only the table name is known
}

// ============================================================================
// SELECT STRUCTURES
// ============================================================================

// SelectField is one select-list entry: raw expression text plus alias
type SelectField struct {
	Field string // e.g. "name", "COUNT(*)", "SUM(price * stock)"
	Alias string // empty when no AS was given
}

// HasAlias reports whether an explicit alias was written
func (f SelectField) HasAlias() bool {
	return f.Alias != "" && f.Alias != f.Field
}

// OutputName is the alias when present, otherwise the expression text
func (f SelectField) OutputName() string {
	if f.HasAlias() {
		return f.Alias
	}
	return f.Field
}

// OrderBy is one ORDER BY key
type OrderBy struct {
	Field string
	Desc  bool
}

// JoinType is INNER, LEFT, RIGHT, FULL or CROSS
type JoinType string

const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
)

// Join represents one JOIN clause
type Join struct {
	Type      JoinType
	Table     string
	Alias     string // defaults to Table
	Condition string // ON text, e.g. "u.id = o.user_id"
}

// Name returns the alias, falling back to the table name
func (j Join) Name() string {
	if j.Alias != "" {
		return j.Alias
	}
	return j.Table
}

// UnionBranch is one set-operation branch
type UnionBranch struct {
	All       bool
	Statement *Statement
}

// ============================================================================
// UPDATE / DDL STRUCTURES
// ============================================================================

// Assignment is one SET entry: Field = Expression
type Assignment struct {
	Field      string
	Expression string // raw right-hand side, e.g. "price * 1.1" or "'active'"
}

// CreateTable holds column and constraint definitions
type CreateTable struct {
	Columns     []ColumnDef
	PrimaryKeys []string
	ForeignKeys []ForeignKey
}

// ColumnDef is one column definition
type ColumnDef struct {
	Name          string
	Type          string  // SQL type as written, e.g. "VARCHAR(100)"
	NotNull       bool
	Unique        bool
	AutoIncrement bool
	Default       *string // raw default text; nil when absent
}

// ForeignKey is a FOREIGN KEY ... REFERENCES constraint
type ForeignKey struct {
	Columns    []string
	RefTable   string
	RefColumns []string
}

// ============================================================================
// HELPERS
// ============================================================================

// IsSelectAll reports whether the select list is empty or just "*"
func (s *Statement) IsSelectAll() bool {
	if len(s.Fields) == 0 {
		return true
	}
	return len(s.Fields) == 1 && strings.TrimSpace(s.Fields[0].Field) == "*"
}

// HasJoins reports whether the statement carries JOIN clauses
func (s *Statement) HasJoins() bool { return len(s.Joins) > 0 }

// HasUnion reports whether the statement is a set operation
func (s *Statement) HasUnion() bool { return len(s.Unions) > 0 }

// UnionAll reports whether every branch is UNION ALL
func (s *Statement) UnionAll() bool {
	if len(s.Unions) == 0 {
		return false
	}
	for _, u := range s.Unions {
		if !u.All {
			return false
		}
	}
	return true
}

// ColumnTypes maps column name to declared SQL type
func (c *CreateTable) ColumnTypes() map[string]string {
	types := make(map[string]string, len(c.Columns))
	for _, col := range c.Columns {
		types[col.Name] = col.Type
	}
	return types
}
