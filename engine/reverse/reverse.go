// Package reverse reads MySQL-dialect SQL into translator statements.
package reverse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/models"

	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
)

// ============================================================================
// ERRORS
// ============================================================================

var (
	ErrNotSupported = errors.New("statement not supported")
	ErrParseError   = errors.New("failed to parse query")
	ErrEmptyQuery   = errors.New("empty query")
)

// ============================================================================
// MAIN INTERFACE
// ============================================================================

// Parse reads exactly one statement
func Parse(sql string) (*models.Statement, error) {
	stmts, err := ParseAll(sql)
	if err != nil {
		return nil, err
	}
	if len(stmts) > 1 {
		return nil, fmt.Errorf("%w: expected one statement, got %d", ErrNotSupported, len(stmts))
	}
	return stmts[0], nil
}

// ParseAll reads a script of semicolon separated statements
func ParseAll(sql string) ([]*models.Statement, error) {
	if strings.TrimSpace(strings.Trim(strings.TrimSpace(sql), ";")) == "" {
		return nil, ErrEmptyQuery
	}

	p := parser.New()
	nodes, _, err := p.Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseError, err)
	}
	if len(nodes) == 0 {
		return nil, ErrEmptyQuery
	}

	out := make([]*models.Statement, 0, len(nodes))
	for _, node := range nodes {
		stmt, err := convert(node)
		if err != nil {
			return nil, err
		}
		stmt.SQL = strings.TrimSpace(node.Text())
		if stmt.SQL == "" {
			stmt.SQL = strings.TrimSpace(sql)
		}
		out = append(out, stmt)
	}
	return out, nil
}

func convert(node ast.StmtNode) (*models.Statement, error) {
	switch stmt := node.(type) {
	// ==================== QUERIES ====================
	case *ast.SelectStmt:
		return convertSelect(stmt)
	case *ast.SetOprStmt:
		return convertSetOpr(stmt)

	// ==================== WRITES ====================
	case *ast.InsertStmt:
		return convertInsert(stmt)
	case *ast.UpdateStmt:
		return convertUpdate(stmt)
	case *ast.DeleteStmt:
		return convertDelete(stmt)

	// ==================== DDL ====================
	case *ast.CreateTableStmt:
		return convertCreateTable(stmt)
	case *ast.DropTableStmt:
		return convertDropTable(stmt)
	}
	return nil, fmt.Errorf("%w: %T", ErrNotSupported, node)
}

// ============================================================================
// SUBQUERY DETECTION
// ============================================================================

// subqueryFinder flags nested SELECTs anywhere in a statement
type subqueryFinder struct {
	found bool
}

func (f *subqueryFinder) Enter(n ast.Node) (ast.Node, bool) {
	switch v := n.(type) {
	case *ast.SubqueryExpr, *ast.ExistsSubqueryExpr, *ast.CompareSubqueryExpr:
		f.found = true
	case *ast.TableSource:
		switch v.Source.(type) {
		case *ast.SelectStmt, *ast.SetOprStmt:
			f.found = true
		}
	}
	return n, f.found
}

func (f *subqueryFinder) Leave(n ast.Node) (ast.Node, bool) {
	return n, true
}

func hasSubquery(n ast.Node) bool {
	if n == nil {
		return false
	}
	f := &subqueryFinder{}
	n.Accept(f)
	return f.found
}
