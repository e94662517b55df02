// Package validator checks SQL input syntax and translated MongoDB output
package validator

import (
	"fmt"

	"github.com/ErikMLC/sqlmongo/mapping"
)

// Validator checks one kind of query text
type Validator interface {
	Validate(query string) error
	ValidateWithDetails(query string) (*ValidationResult, error)
}

// ValidationResult contains detailed validation info
type ValidationResult struct {
	Valid      bool   `json:"valid"`
	Dialect    string `json:"dialect,omitempty"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Position   int    `json:"position,omitempty"` // Character position of error
	NearText   string `json:"near_text,omitempty"`

	// Fingerprint groups structurally equal queries (PostgreSQL only)
	Fingerprint string `json:"fingerprint,omitempty"`
}

// ValidateSQL validates SQL syntax for dialect ("mysql" or "postgres")
func ValidateSQL(query string, dialect string) error {
	v, err := ForDialect(dialect)
	if err != nil {
		return err
	}
	return v.Validate(query)
}

// ValidateSQLWithDetails returns detailed validation result
func ValidateSQLWithDetails(query string, dialect string) (*ValidationResult, error) {
	v, err := ForDialect(dialect)
	if err != nil {
		return nil, err
	}
	return v.ValidateWithDetails(query)
}

// ForDialect returns the validator for a SQL dialect
func ForDialect(dialect string) (Validator, error) {
	switch mapping.NormalizeDialect(dialect) {
	case "mysql":
		return MySQL{}, nil
	case "postgres":
		return PostgreSQL{}, nil
	}
	return nil, fmt.Errorf("unsupported dialect %q, expected one of %v", dialect, mapping.SupportedDialects)
}
