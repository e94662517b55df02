package validator

import (
	"fmt"
	"strings"

	"github.com/ErikMLC/sqlmongo/mapping"

	"github.com/Jeffail/gabs/v2"
	"go.mongodb.org/mongo-driver/bson"
)

// MongoDB validates translated results rendered as Extended JSON
type MongoDB struct{}

// Validate checks Extended JSON syntax and the result layout
func (MongoDB) Validate(query string) error {
	var doc bson.D
	if err := bson.UnmarshalExtJSON([]byte(query), false, &doc); err != nil {
		return fmt.Errorf("invalid extended JSON: %w", err)
	}
	return validateLayout([]byte(query))
}

// ValidateWithDetails returns detailed validation result
func (m MongoDB) ValidateWithDetails(query string) (*ValidationResult, error) {
	if err := m.Validate(query); err != nil {
		return &ValidationResult{Valid: false, Dialect: "mongodb", Error: err.Error()}, nil
	}
	return &ValidationResult{Valid: true, Dialect: "mongodb"}, nil
}

// ValidateMongoDB is a shorthand for MongoDB{}.Validate
func ValidateMongoDB(query string) error {
	return MongoDB{}.Validate(query)
}

// validateLayout checks the keys every result carries and that each
// pipeline stage is a single $-operator document.
func validateLayout(data []byte) error {
	parsed, err := gabs.ParseJSON(data)
	if err != nil {
		return err
	}

	op, ok := parsed.Path("operation").Data().(string)
	if !ok {
		return fmt.Errorf("missing operation")
	}
	if !knownOperation(op) {
		return fmt.Errorf("unknown operation %q", op)
	}
	if _, ok := parsed.Path("collection").Data().(string); !ok {
		return fmt.Errorf("missing collection")
	}

	switch op {
	case mapping.OpAggregate:
		return validatePipeline(parsed.Path("pipeline"))
	case mapping.OpUnion:
		queries := parsed.Path("queries").Children()
		if len(queries) == 0 {
			return fmt.Errorf("union without queries")
		}
		for i, q := range queries {
			if err := validateLayout(q.Bytes()); err != nil {
				return fmt.Errorf("union query %d: %w", i+1, err)
			}
		}
	case mapping.OpFind, mapping.OpUpdate, mapping.OpDelete:
		if _, ok := parsed.Path("query").Data().(map[string]interface{}); !ok {
			return fmt.Errorf("%s without a query document", op)
		}
	}
	return nil
}

func validatePipeline(pipeline *gabs.Container) error {
	if _, ok := pipeline.Data().([]interface{}); !ok {
		return fmt.Errorf("pipeline must be an array")
	}
	for i, stage := range pipeline.Children() {
		keys := stage.ChildrenMap()
		if len(keys) != 1 {
			return fmt.Errorf("stage %d must have exactly one operator, has %d", i, len(keys))
		}
		for name := range keys {
			if !strings.HasPrefix(name, "$") {
				return fmt.Errorf("stage %d operator %q does not start with $", i, name)
			}
		}
	}
	return nil
}

func knownOperation(op string) bool {
	for _, known := range mapping.Operations {
		if op == known {
			return true
		}
	}
	return false
}
