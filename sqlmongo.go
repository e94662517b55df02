// Package sqlmongo translates SQL statements into MongoDB queries
package sqlmongo

import (
	"fmt"

	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/ErikMLC/sqlmongo/engine/reverse"
	"github.com/ErikMLC/sqlmongo/engine/translator"
)

// Engine parses raw SQL and translates it
type Engine struct {
	tr *translator.Translator
}

// New creates an Engine with the given translator options
func New(opts translator.Options) *Engine {
	return &Engine{tr: translator.New(opts)}
}

// Translate parses and translates exactly one statement
func (e *Engine) Translate(sql string) (models.Result, error) {
	stmt, err := reverse.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return e.tr.Translate(stmt)
}

// TranslateAll translates every statement of a script in order. Statements
// share the translator, so a CREATE TABLE informs later SELECTs when a schema
// registry is configured.
func (e *Engine) TranslateAll(sql string) ([]models.Result, error) {
	stmts, err := reverse.ParseAll(sql)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	results := make([]models.Result, 0, len(stmts))
	for i, stmt := range stmts {
		r, err := e.tr.Translate(stmt)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i+1, err)
		}
		results = append(results, r)
	}
	return results, nil
}

// Analyze reports how well a statement maps onto MongoDB
func (e *Engine) Analyze(sql string) (translator.Feasibility, error) {
	stmt, err := reverse.Parse(sql)
	if err != nil {
		return translator.Feasibility{}, fmt.Errorf("parse error: %w", err)
	}
	return translator.Analyze(stmt), nil
}

// Translate converts one statement with default options
func Translate(sql string) (models.Result, error) {
	return New(translator.Options{}).Translate(sql)
}
