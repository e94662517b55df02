package validator

import (
	"regexp"
	"strconv"

	"github.com/xwb1989/sqlparser"
)

// MySQL validates MySQL syntax
type MySQL struct{}

var mysqlPosition = regexp.MustCompile(`at position (\d+)(?: near '([^']*)')?`)

// Validate validates MySQL SQL syntax
func (MySQL) Validate(query string) error {
	_, err := sqlparser.Parse(query)
	return err
}

// ValidateWithDetails returns detailed validation result
func (MySQL) ValidateWithDetails(query string) (*ValidationResult, error) {
	_, err := sqlparser.Parse(query)
	if err != nil {
		result := &ValidationResult{
			Valid:   false,
			Dialect: "mysql",
			Error:   err.Error(),
		}
		if m := mysqlPosition.FindStringSubmatch(err.Error()); m != nil {
			result.Position, _ = strconv.Atoi(m[1])
			result.NearText = m[2]
			result.Suggestion = "check the syntax near position " + m[1]
		}
		return result, nil
	}

	return &ValidationResult{Valid: true, Dialect: "mysql"}, nil
}
