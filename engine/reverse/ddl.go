package reverse

import (
	"fmt"
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/models"

	"github.com/pingcap/tidb/parser/ast"
)

// ============================================================================
// CREATE TABLE
// ============================================================================

func convertCreateTable(stmt *ast.CreateTableStmt) (*models.Statement, error) {
	out := &models.Statement{Kind: models.KindCreateTable, Table: stmt.Table.Name.O}
	if len(stmt.Cols) == 0 {
		return out, nil
	}

	ct := &models.CreateTable{}
	for _, col := range stmt.Cols {
		def := models.ColumnDef{Name: col.Name.Name.O}
		if col.Tp != nil {
			def.Type = strings.ToUpper(col.Tp.CompactStr())
		}

		for _, opt := range col.Options {
			switch opt.Tp {
			case ast.ColumnOptionNotNull:
				def.NotNull = true
			case ast.ColumnOptionPrimaryKey:
				ct.PrimaryKeys = append(ct.PrimaryKeys, def.Name)
			case ast.ColumnOptionUniqKey:
				def.Unique = true
			case ast.ColumnOptionAutoIncrement:
				def.AutoIncrement = true
			case ast.ColumnOptionDefaultValue:
				value := render(opt.Expr)
				def.Default = &value
			case ast.ColumnOptionReference:
				if opt.Refer != nil {
					ct.ForeignKeys = append(ct.ForeignKeys, foreignKey([]string{def.Name}, opt.Refer))
				}
			}
		}
		ct.Columns = append(ct.Columns, def)
	}

	for _, c := range stmt.Constraints {
		keys := indexColumns(c.Keys)
		switch c.Tp {
		case ast.ConstraintPrimaryKey:
			ct.PrimaryKeys = append(ct.PrimaryKeys, keys...)
		case ast.ConstraintUniq, ast.ConstraintUniqKey, ast.ConstraintUniqIndex:
			// a single-column UNIQUE constraint marks the column
			if len(keys) == 1 {
				markUnique(ct, keys[0])
			}
		case ast.ConstraintForeignKey:
			if c.Refer != nil {
				ct.ForeignKeys = append(ct.ForeignKeys, foreignKey(keys, c.Refer))
			}
		}
	}

	out.Create = ct
	return out, nil
}

func foreignKey(columns []string, ref *ast.ReferenceDef) models.ForeignKey {
	fk := models.ForeignKey{Columns: columns}
	if ref.Table != nil {
		fk.RefTable = ref.Table.Name.O
	}
	fk.RefColumns = indexColumns(ref.IndexPartSpecifications)
	return fk
}

func indexColumns(parts []*ast.IndexPartSpecification) []string {
	var cols []string
	for _, p := range parts {
		if p.Column != nil {
			cols = append(cols, p.Column.Name.O)
		}
	}
	return cols
}

func markUnique(ct *models.CreateTable, name string) {
	for i := range ct.Columns {
		if strings.EqualFold(ct.Columns[i].Name, name) {
			ct.Columns[i].Unique = true
		}
	}
}

// ============================================================================
// DROP TABLE
// ============================================================================

func convertDropTable(stmt *ast.DropTableStmt) (*models.Statement, error) {
	out := &models.Statement{Kind: models.KindDropTable}
	if stmt.IsView {
		return nil, fmt.Errorf("%w: DROP VIEW", ErrNotSupported)
	}
	if len(stmt.Tables) > 0 {
		out.Table = stmt.Tables[0].Name.O
	}
	return out, nil
}
