package reverse

import (
	"fmt"

	"github.com/ErikMLC/sqlmongo/engine/models"

	"github.com/pingcap/tidb/parser/ast"
)

// ============================================================================
// INSERT
// ============================================================================

func convertInsert(stmt *ast.InsertStmt) (*models.Statement, error) {
	if stmt.IsReplace {
		return nil, fmt.Errorf("%w: REPLACE", ErrNotSupported)
	}
	if stmt.Select != nil {
		return nil, fmt.Errorf("%w: INSERT ... SELECT", ErrNotSupported)
	}

	out := &models.Statement{Kind: models.KindInsert}
	if err := readSingleTable(out, stmt.Table); err != nil {
		return nil, err
	}

	for _, col := range stmt.Columns {
		out.Columns = append(out.Columns, col.Name.O)
	}
	for _, list := range stmt.Lists {
		row := make([]string, 0, len(list))
		for _, value := range list {
			row = append(row, render(value))
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// ============================================================================
// UPDATE / DELETE
// ============================================================================

func convertUpdate(stmt *ast.UpdateStmt) (*models.Statement, error) {
	if stmt.MultipleTable {
		return nil, fmt.Errorf("%w: multi-table UPDATE", ErrNotSupported)
	}
	out := &models.Statement{Kind: models.KindUpdate, HasSubquery: hasSubquery(stmt)}
	if err := readSingleTable(out, stmt.TableRefs); err != nil {
		return nil, err
	}
	for _, a := range stmt.List {
		out.Assignments = append(out.Assignments, models.Assignment{
			Field:      a.Column.Name.O,
			Expression: render(a.Expr),
		})
	}
	out.Where = render(stmt.Where)
	return out, nil
}

func convertDelete(stmt *ast.DeleteStmt) (*models.Statement, error) {
	if stmt.IsMultiTable {
		return nil, fmt.Errorf("%w: multi-table DELETE", ErrNotSupported)
	}
	out := &models.Statement{Kind: models.KindDelete, HasSubquery: hasSubquery(stmt)}
	if err := readSingleTable(out, stmt.TableRefs); err != nil {
		return nil, err
	}
	out.Where = render(stmt.Where)
	return out, nil
}

func readSingleTable(out *models.Statement, refs *ast.TableRefsClause) error {
	if refs == nil || refs.TableRefs == nil {
		return fmt.Errorf("%w: missing table", ErrParseError)
	}
	if err := readFrom(out, refs.TableRefs); err != nil {
		return err
	}
	if len(out.Joins) > 0 {
		return fmt.Errorf("%w: joins in %s", ErrNotSupported, out.Kind)
	}
	return nil
}
