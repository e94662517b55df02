// Package translator turns parsed SQL statements into MongoDB queries and
// aggregation pipelines.
package translator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ErikMLC/sqlmongo/engine/condition"
	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/ErikMLC/sqlmongo/mapping"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"
)

// Collection naming rules
const (
	NamingAsIs   = "as_is"
	NamingPlural = "plural"
)

// ErrInput is matched by every InputError
var ErrInput = errors.New("invalid input")

// InputError reports a statement that cannot be translated at all
type InputError struct {
	Statement models.StatementKind
	Reason    string
}

func (e *InputError) Error() string {
	if e.Statement == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Statement, e.Reason)
}

func (e *InputError) Is(target error) bool { return target == ErrInput }

func inputError(kind models.StatementKind, format string, args ...interface{}) error {
	return &InputError{Statement: kind, Reason: fmt.Sprintf(format, args...)}
}

// Options configures a Translator
type Options struct {
	// StrictConditions fails on unparseable WHERE/HAVING predicates
	// instead of dropping them with a warning.
	StrictConditions bool

	// CollectionNaming is NamingAsIs (default) or NamingPlural
	CollectionNaming string

	// NumericHints override mapping.NumericHints for ORDER BY conversion
	NumericHints []string

	// Schemas supplies declared column types; CREATE TABLE results are
	// registered into it. May be nil.
	Schemas *SchemaRegistry

	Logger *zap.Logger
}

// Translator converts statements. It holds only configuration and is safe
// for concurrent use.
type Translator struct {
	opts Options
	log  *zap.Logger
}

// New creates a Translator
func New(opts Options) *Translator {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.CollectionNaming == "" {
		opts.CollectionNaming = NamingAsIs
	}
	return &Translator{opts: opts, log: log}
}

// Translate converts one statement. Warnings gathered along the way are
// attached to the returned result.
func (t *Translator) Translate(stmt *models.Statement) (models.Result, error) {
	if stmt == nil {
		return nil, inputError("", "nil statement")
	}

	c := newContext(t.log.With(zap.String("statement", string(stmt.Kind)), zap.String("table", stmt.Table)))
	result, err := t.dispatch(c, stmt)
	if err != nil {
		return nil, err
	}
	result.Meta().Warnings = c.Warnings()
	return result, nil
}

func (t *Translator) dispatch(c *Context, stmt *models.Statement) (models.Result, error) {
	switch stmt.Kind {
	case models.KindSelect:
		return t.translateSelect(c, stmt)
	case models.KindInsert:
		return t.translateInsert(c, stmt)
	case models.KindUpdate:
		return t.translateUpdate(c, stmt)
	case models.KindDelete:
		return t.translateDelete(c, stmt)
	case models.KindCreateTable:
		return t.translateCreateTable(c, stmt)
	case models.KindDropTable:
		return t.translateDropTable(c, stmt)
	}
	return nil, inputError(stmt.Kind, "unsupported statement kind %q", stmt.Kind)
}

// ============================================================================
// CONTEXT
// ============================================================================

// Context is the state of a single Translate call
type Context struct {
	warnings []string
	log      *zap.Logger
}

func newContext(log *zap.Logger) *Context {
	return &Context{log: log}
}

// Warn records a non-fatal translation note
func (c *Context) Warn(msg string) {
	c.log.Debug("translation warning", zap.String("warning", msg))
	c.warnings = append(c.warnings, msg)
}

// Warnf is Warn with formatting
func (c *Context) Warnf(format string, args ...interface{}) {
	c.Warn(fmt.Sprintf(format, args...))
}

// Warnings returns a copy of the recorded warnings, nil when there are none
func (c *Context) Warnings() []string {
	if len(c.warnings) == 0 {
		return nil
	}
	return append([]string(nil), c.warnings...)
}

// ============================================================================
// SHARED HELPERS
// ============================================================================

// collection maps a table name to a collection name
func (t *Translator) collection(table string) string {
	table = strings.TrimSpace(table)
	if t.opts.CollectionNaming == NamingPlural && table != "" {
		return inflection.Plural(table)
	}
	return table
}

// parseCondition runs the condition parser with the translator's leniency
func (t *Translator) parseCondition(c *Context, clause string, resolve func(string) string) (condition.Expr, error) {
	return condition.Parse(clause, condition.Options{
		Strict:  t.opts.StrictConditions,
		Resolve: resolve,
		Warn:    c.Warn,
		Logger:  c.log,
	})
}

// isNumericField decides whether ORDER BY field needs a numeric copy:
// a declared column type wins, the name heuristic is the fallback.
func (t *Translator) isNumericField(table, field string) bool {
	if declared, ok := t.opts.Schemas.ColumnType(table, field); ok {
		return mapping.IsNumericType(declared)
	}
	return mapping.LooksNumeric(field, t.opts.NumericHints)
}

// ============================================================================
// SCHEMA REGISTRY
// ============================================================================

// SchemaRegistry remembers column types declared by CREATE TABLE
type SchemaRegistry struct {
	mu     sync.RWMutex
	tables map[string]map[string]string
	order  map[string][]string
}

// NewSchemaRegistry creates an empty registry
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{tables: map[string]map[string]string{}, order: map[string][]string{}}
}

// Register stores the column types of table, replacing earlier ones
func (r *SchemaRegistry) Register(table string, ct *models.CreateTable) {
	if r == nil || ct == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(table)
	r.tables[key] = ct.ColumnTypes()
	names := make([]string, len(ct.Columns))
	for i, col := range ct.Columns {
		names[i] = col.Name
	}
	r.order[key] = names
}

// Forget drops a table
func (r *SchemaRegistry) Forget(table string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tables, strings.ToLower(table))
	delete(r.order, strings.ToLower(table))
}

// ColumnType returns the declared SQL type of table.column
func (r *SchemaRegistry) ColumnType(table, column string) (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cols, ok := r.tables[strings.ToLower(table)]
	if !ok {
		return "", false
	}
	if i := strings.LastIndexByte(column, '.'); i >= 0 {
		column = column[i+1:]
	}
	typ, ok := cols[column]
	return typ, ok
}

// Columns returns the declared column names of table in declaration order,
// or nil when the table is unknown.
func (r *SchemaRegistry) Columns(table string) []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.order[strings.ToLower(table)]
}
