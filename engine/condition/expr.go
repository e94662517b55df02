// Package condition parses SQL WHERE and HAVING clauses into filter trees.
package condition

import (
	"regexp"
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/values"
)

// Expr is a node of a filter tree. Leaves always carry a field name and
// And/Or nodes always carry at least one child.
type Expr interface {
	String() string
	exprNode()
}

// Comparison is field <op> value with op one of = <> != > >= < <=
type Comparison struct {
	Field    string
	Operator string
	Value    values.Value
}

// Between is an inclusive range predicate
type Between struct {
	Field string
	Low   values.Value
	High  values.Value
}

// In is a membership predicate; Negated marks NOT IN
type In struct {
	Field   string
	Values  []values.Value
	Negated bool
}

// Like is a SQL pattern predicate. Pattern keeps the SQL wildcards.
type Like struct {
	Field         string
	Pattern       string
	CaseSensitive bool
}

// NullCheck is IS NULL (IsNull) or IS NOT NULL
type NullCheck struct {
	Field  string
	IsNull bool
}

// And is a conjunction of its children
type And struct {
	Children []Expr
}

// Or is a disjunction of its children
type Or struct {
	Children []Expr
}

func (*Comparison) exprNode() {}
func (*Between) exprNode()    {}
func (*In) exprNode()         {}
func (*Like) exprNode()       {}
func (*NullCheck) exprNode()  {}
func (*And) exprNode()        {}
func (*Or) exprNode()         {}

// NewLike builds a Like node. Prefix-only patterns ("M%") are case
// sensitive, every other pattern is case insensitive.
func NewLike(field, pattern string) *Like {
	prefixOnly := strings.HasSuffix(pattern, "%") && !strings.HasPrefix(pattern, "%")
	return &Like{Field: field, Pattern: pattern, CaseSensitive: prefixOnly}
}

// Regex converts the SQL pattern to a regular expression: % becomes .*
// and _ becomes a single-character wildcard. Case-sensitive patterns are
// anchored at the start.
func (l *Like) Regex() string {
	var sb strings.Builder
	if l.CaseSensitive {
		sb.WriteByte('^')
	}
	for _, r := range l.Pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteByte('.')
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return sb.String()
}

// ============================================================================
// SQL RENDERING (used in warnings and logs)
// ============================================================================

func (c *Comparison) String() string {
	return c.Field + " " + c.Operator + " " + c.Value.String()
}

func (b *Between) String() string {
	return b.Field + " BETWEEN " + b.Low.String() + " AND " + b.High.String()
}

func (in *In) String() string {
	parts := make([]string, len(in.Values))
	for i, v := range in.Values {
		parts[i] = v.String()
	}
	op := " IN ("
	if in.Negated {
		op = " NOT IN ("
	}
	return in.Field + op + strings.Join(parts, ", ") + ")"
}

func (l *Like) String() string {
	return l.Field + " LIKE " + values.NewString(l.Pattern).String()
}

func (n *NullCheck) String() string {
	if n.IsNull {
		return n.Field + " IS NULL"
	}
	return n.Field + " IS NOT NULL"
}

func (a *And) String() string { return joinChildren(a.Children, " AND ") }

func (o *Or) String() string { return joinChildren(o.Children, " OR ") }

func joinChildren(children []Expr, sep string) string {
	parts := make([]string, len(children))
	for i, child := range children {
		switch child.(type) {
		case *And, *Or:
			parts[i] = "(" + child.String() + ")"
		default:
			parts[i] = child.String()
		}
	}
	return strings.Join(parts, sep)
}

// Fields returns every field referenced by expr, in order of appearance
func Fields(expr Expr) []string {
	var out []string
	walk(expr, func(e Expr) {
		switch n := e.(type) {
		case *Comparison:
			out = append(out, n.Field)
		case *Between:
			out = append(out, n.Field)
		case *In:
			out = append(out, n.Field)
		case *Like:
			out = append(out, n.Field)
		case *NullCheck:
			out = append(out, n.Field)
		}
	})
	return out
}

// walk visits expr depth first
func walk(expr Expr, fn func(Expr)) {
	if expr == nil {
		return
	}
	fn(expr)
	switch n := expr.(type) {
	case *And:
		for _, child := range n.Children {
			walk(child, fn)
		}
	case *Or:
		for _, child := range n.Children {
			walk(child, fn)
		}
	}
}
