package validator

import (
	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// PostgreSQL validates PostgreSQL syntax
type PostgreSQL struct{}

// Validate validates PostgreSQL SQL syntax
func (PostgreSQL) Validate(query string) error {
	_, err := pg_query.Parse(query)
	return err
}

// ValidateWithDetails returns detailed validation result
func (PostgreSQL) ValidateWithDetails(query string) (*ValidationResult, error) {
	_, err := pg_query.Parse(query)
	if err != nil {
		return &ValidationResult{
			Valid:   false,
			Dialect: "postgres",
			Error:   err.Error(),
		}, nil
	}

	result := &ValidationResult{Valid: true, Dialect: "postgres"}
	if fp, err := Fingerprint(query); err == nil {
		result.Fingerprint = fp
	}
	return result, nil
}

// Fingerprint identifies structurally equal PostgreSQL queries
func Fingerprint(query string) (string, error) {
	return pg_query.Fingerprint(query)
}
