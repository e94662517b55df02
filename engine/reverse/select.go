package reverse

import (
	"fmt"
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/models"

	"github.com/pingcap/tidb/parser/ast"
)

// ============================================================================
// SELECT
// ============================================================================

func convertSelect(stmt *ast.SelectStmt) (*models.Statement, error) {
	out := &models.Statement{
		Kind:        models.KindSelect,
		Distinct:    stmt.Distinct,
		HasSubquery: hasSubquery(stmt),
	}

	if stmt.From != nil && stmt.From.TableRefs != nil {
		if err := readFrom(out, stmt.From.TableRefs); err != nil {
			return nil, err
		}
	}

	if stmt.Fields != nil {
		for _, f := range stmt.Fields.Fields {
			if f.WildCard != nil {
				out.Fields = append(out.Fields, models.SelectField{Field: "*"})
				continue
			}
			out.Fields = append(out.Fields, models.SelectField{Field: render(f.Expr), Alias: f.AsName.O})
		}
	}

	out.Where = render(stmt.Where)

	if stmt.GroupBy != nil {
		for _, item := range stmt.GroupBy.Items {
			out.GroupBy = append(out.GroupBy, render(item.Expr))
		}
	}
	if stmt.Having != nil {
		out.Having = render(stmt.Having.Expr)
	}
	if stmt.OrderBy != nil {
		out.OrderBy = orderBy(stmt.OrderBy)
	}
	if stmt.Limit != nil {
		out.Limit = limitValue(stmt.Limit.Count)
		out.Offset = limitValue(stmt.Limit.Offset)
	}
	return out, nil
}

func orderBy(clause *ast.OrderByClause) []models.OrderBy {
	items := make([]models.OrderBy, 0, len(clause.Items))
	for _, item := range clause.Items {
		items = append(items, models.OrderBy{Field: render(item.Expr), Desc: item.Desc})
	}
	return items
}

// ============================================================================
// FROM / JOIN
// ============================================================================

// readFrom flattens the left-deep join tree: the leftmost table is the
// main table and every right side becomes a join in source order.
func readFrom(out *models.Statement, j *ast.Join) error {
	if j == nil {
		return nil
	}

	switch left := j.Left.(type) {
	case *ast.Join:
		if err := readFrom(out, left); err != nil {
			return err
		}
	case *ast.TableSource:
		table, alias, err := tableSource(left)
		if err != nil {
			return err
		}
		if out.Table == "" {
			out.Table, out.Alias = table, alias
		} else {
			out.Joins = append(out.Joins, models.Join{Type: models.JoinCross, Table: table, Alias: alias})
		}
	}

	if j.Right == nil {
		return nil
	}

	switch right := j.Right.(type) {
	case *ast.Join:
		return readFrom(out, right)
	case *ast.TableSource:
		table, alias, err := tableSource(right)
		if err != nil {
			return err
		}
		join := models.Join{Type: joinType(j), Table: table, Alias: alias}
		switch {
		case j.On != nil:
			join.Condition = render(j.On.Expr)
		case len(j.Using) > 0:
			join.Condition = usingCondition(out, join, j.Using)
		}
		out.Joins = append(out.Joins, join)
	}
	return nil
}

func joinType(j *ast.Join) models.JoinType {
	switch j.Tp {
	case ast.LeftJoin:
		return models.JoinLeft
	case ast.RightJoin:
		return models.JoinRight
	}
	// plain JOIN parses as a cross join with an ON clause
	if j.On != nil || len(j.Using) > 0 {
		return models.JoinInner
	}
	return models.JoinCross
}

// usingCondition rewrites USING (a, b) to equalities; only the first
// column becomes the lookup key.
func usingCondition(out *models.Statement, join models.Join, using []*ast.ColumnName) string {
	left := out.Alias
	if left == "" {
		left = out.Table
	}
	parts := make([]string, 0, len(using))
	for _, col := range using {
		parts = append(parts, fmt.Sprintf("%s.%s = %s.%s", left, col.Name.O, join.Name(), col.Name.O))
	}
	return strings.Join(parts, " AND ")
}

func tableSource(ts *ast.TableSource) (table, alias string, err error) {
	tn, ok := ts.Source.(*ast.TableName)
	if !ok {
		return "", "", fmt.Errorf("%w: derived table in FROM", ErrNotSupported)
	}
	return tn.Name.O, ts.AsName.O, nil
}

// ============================================================================
// SET OPERATIONS
// ============================================================================

func convertSetOpr(stmt *ast.SetOprStmt) (*models.Statement, error) {
	if stmt.SelectList == nil || len(stmt.SelectList.Selects) < 2 {
		return nil, fmt.Errorf("%w: set operation needs at least two queries", ErrParseError)
	}

	var first *models.Statement
	for i, node := range stmt.SelectList.Selects {
		sel, ok := node.(*ast.SelectStmt)
		if !ok {
			return nil, fmt.Errorf("%w: nested set operation", ErrNotSupported)
		}
		branch, err := convertSelect(sel)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i+1, err)
		}
		if i == 0 {
			first = branch
			continue
		}

		all := false
		if sel.AfterSetOperator != nil {
			switch *sel.AfterSetOperator {
			case ast.Union:
			case ast.UnionAll:
				all = true
			default:
				return nil, fmt.Errorf("%w: %s", ErrNotSupported, sel.AfterSetOperator.String())
			}
		}
		first.Unions = append(first.Unions, models.UnionBranch{All: all, Statement: branch})
	}
	return first, nil
}
