package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSQL(t *testing.T) {
	assert.NoError(t, ValidateSQL("SELECT id, name FROM users WHERE age > 30", "mysql"))
	assert.NoError(t, ValidateSQL("SELECT id FROM users LIMIT 5 OFFSET 2", "PostgreSQL"))
	assert.Error(t, ValidateSQL("SELEC id FORM users", "mysql"))
	assert.Error(t, ValidateSQL("SELECT FROM WHERE", "postgres"))
	assert.Error(t, ValidateSQL("SELECT 1", "oracle"))
}

func TestValidateMySQLWithDetails(t *testing.T) {
	result, err := ValidateSQLWithDetails("SELECT * FORM users", "mariadb")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "mysql", result.Dialect)
	assert.Greater(t, result.Position, 0)
	assert.NotEmpty(t, result.Suggestion)

	result, err = ValidateSQLWithDetails("SELECT * FROM users", "mysql")
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint("SELECT * FROM users WHERE id = 1")
	require.NoError(t, err)
	b, err := Fingerprint("SELECT * FROM users WHERE id = 42")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	result, err := ValidateSQLWithDetails("SELECT * FROM users WHERE id = 7", "pg")
	require.NoError(t, err)
	assert.Equal(t, a, result.Fingerprint)
}

func TestValidateMongoDB(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{"find", `{"operation":"find","collection":"users","query":{"age":{"$gt":30}}}`, true},
		{"pipeline", `{"operation":"aggregate","collection":"orders","pipeline":[{"$match":{"a":1}},{"$group":{"_id":null}}]}`, true},
		{"union", `{"operation":"union","collection":"a","queries":[{"operation":"find","collection":"a","query":{}}]}`, true},
		{"drop", `{"operation":"drop_collection","collection":"old"}`, true},
		{"not json", `{"operation":`, false},
		{"no operation", `{"collection":"users"}`, false},
		{"unknown operation", `{"operation":"explode","collection":"users"}`, false},
		{"stage without dollar", `{"operation":"aggregate","collection":"c","pipeline":[{"match":{}}]}`, false},
		{"stage with two operators", `{"operation":"aggregate","collection":"c","pipeline":[{"$match":{},"$sort":{"a":1}}]}`, false},
		{"find without query", `{"operation":"find","collection":"users"}`, false},
		{"empty union", `{"operation":"union","collection":"a","queries":[]}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMongoDB(tt.doc)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMongoDBValidateWithDetails(t *testing.T) {
	result, err := MongoDB{}.ValidateWithDetails(`{"operation":"find"}`)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "collection")
}
