package reverse

import (
	"strconv"
	"strings"

	"github.com/pingcap/tidb/parser/ast"
	"github.com/pingcap/tidb/parser/format"
	"github.com/pingcap/tidb/parser/opcode"
	"github.com/pingcap/tidb/parser/test_driver"
)

// ============================================================================
// EXPRESSION RENDERING
// ============================================================================

const restoreFlags = format.RestoreStringSingleQuotes | format.RestoreKeyWordUppercase

// render prints an expression back to SQL text the condition parser and
// the select-list builders understand: plain identifiers, single quoted
// strings, upper-case keywords and COUNT(*) kept as written.
func render(expr ast.ExprNode) string {
	if expr == nil {
		return ""
	}

	switch e := expr.(type) {
	case *ast.ColumnNameExpr:
		return columnName(e.Name)

	case *test_driver.ValueExpr:
		return renderValue(e)

	case *ast.BinaryOperationExpr:
		return render(e.L) + " " + opString(e.Op) + " " + render(e.R)

	case *ast.ParenthesesExpr:
		return "(" + render(e.Expr) + ")"

	case *ast.UnaryOperationExpr:
		switch e.Op {
		case opcode.Minus:
			return "-" + render(e.V)
		case opcode.Plus:
			return render(e.V)
		case opcode.Not:
			return "NOT " + render(e.V)
		}

	case *ast.AggregateFuncExpr:
		return renderAggregate(e)

	case *ast.FuncCallExpr:
		args := make([]string, 0, len(e.Args))
		for _, arg := range e.Args {
			args = append(args, render(arg))
		}
		return strings.ToUpper(e.FnName.O) + "(" + strings.Join(args, ", ") + ")"

	case *ast.PatternInExpr:
		if e.Sel != nil {
			break
		}
		list := make([]string, 0, len(e.List))
		for _, item := range e.List {
			list = append(list, render(item))
		}
		op := " IN "
		if e.Not {
			op = " NOT IN "
		}
		return render(e.Expr) + op + "(" + strings.Join(list, ", ") + ")"

	case *ast.PatternLikeOrIlikeExpr:
		op := " LIKE "
		if e.Not {
			op = " NOT LIKE "
		}
		return render(e.Expr) + op + render(e.Pattern)

	case *ast.BetweenExpr:
		op := " BETWEEN "
		if e.Not {
			op = " NOT BETWEEN "
		}
		return render(e.Expr) + op + render(e.Left) + " AND " + render(e.Right)

	case *ast.IsNullExpr:
		if e.Not {
			return render(e.Expr) + " IS NOT NULL"
		}
		return render(e.Expr) + " IS NULL"

	case *ast.IsTruthExpr:
		// IS TRUE / IS FALSE compare against 1 / 0
		value := "1"
		if e.True == 0 {
			value = "0"
		}
		op := " = "
		if e.Not {
			op = " != "
		}
		return render(e.Expr) + op + value
	}

	return restore(expr)
}

// renderAggregate keeps COUNT(*) readable; the parser stores the star as
// the constant 1.
func renderAggregate(e *ast.AggregateFuncExpr) string {
	name := strings.ToUpper(e.F)
	if name == "COUNT" && !e.Distinct && len(e.Args) == 1 {
		if v, ok := e.Args[0].(*test_driver.ValueExpr); ok && v.Datum.Kind() == test_driver.KindInt64 && v.Datum.GetInt64() == 1 {
			return "COUNT(*)"
		}
	}

	args := make([]string, 0, len(e.Args))
	for _, arg := range e.Args {
		args = append(args, render(arg))
	}
	prefix := ""
	if e.Distinct {
		prefix = "DISTINCT "
	}
	return name + "(" + prefix + strings.Join(args, ", ") + ")"
}

func renderValue(v *test_driver.ValueExpr) string {
	switch v.Datum.Kind() {
	case test_driver.KindNull:
		return "NULL"
	case test_driver.KindInt64:
		return strconv.FormatInt(v.Datum.GetInt64(), 10)
	case test_driver.KindUint64:
		return strconv.FormatUint(v.Datum.GetUint64(), 10)
	case test_driver.KindFloat64:
		return strconv.FormatFloat(v.Datum.GetFloat64(), 'g', -1, 64)
	case test_driver.KindString:
		return quote(v.Datum.GetString())
	case test_driver.KindBytes:
		return quote(string(v.Datum.GetBytes()))
	}
	return restore(v)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func restore(node ast.Node) string {
	var sb strings.Builder
	if err := node.Restore(format.NewRestoreCtx(restoreFlags, &sb)); err != nil {
		return ""
	}
	return sb.String()
}

func columnName(c *ast.ColumnName) string {
	if c == nil {
		return ""
	}
	if c.Table.O != "" {
		return c.Table.O + "." + c.Name.O
	}
	return c.Name.O
}

func opString(op opcode.Op) string {
	switch op {
	case opcode.Plus:
		return "+"
	case opcode.Minus:
		return "-"
	case opcode.Mul:
		return "*"
	case opcode.Div:
		return "/"
	case opcode.Mod:
		return "%"
	case opcode.EQ:
		return "="
	case opcode.NE:
		return "!="
	case opcode.LT:
		return "<"
	case opcode.GT:
		return ">"
	case opcode.LE:
		return "<="
	case opcode.GE:
		return ">="
	case opcode.LogicAnd:
		return "AND"
	case opcode.LogicOr:
		return "OR"
	case opcode.LogicXor:
		return "XOR"
	}
	return strings.ToUpper(op.String())
}

// limitValue reads a LIMIT or OFFSET literal
func limitValue(expr ast.ExprNode) *int64 {
	v, ok := expr.(*test_driver.ValueExpr)
	if !ok {
		return nil
	}
	var n int64
	switch v.Datum.Kind() {
	case test_driver.KindInt64:
		n = v.Datum.GetInt64()
	case test_driver.KindUint64:
		n = int64(v.Datum.GetUint64())
	default:
		return nil
	}
	return &n
}
