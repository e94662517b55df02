package mongodb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestTranslateFunction(t *testing.T) {
	tests := []struct {
		expr     string
		expected interface{}
	}{
		{"UPPER(name)", bson.D{{Key: "$toUpper", Value: "$name"}}},
		{"lower(name)", bson.D{{Key: "$toLower", Value: "$name"}}},
		{"LENGTH(name)", bson.D{{Key: "$strLenCP", Value: "$name"}}},
		{"YEAR(created_at)", bson.D{{Key: "$year", Value: "$created_at"}}},
		{"MONTH(created_at)", bson.D{{Key: "$month", Value: "$created_at"}}},
		{"DAY(created_at)", bson.D{{Key: "$dayOfMonth", Value: "$created_at"}}},
		{"TRIM(name)", bson.D{{Key: "$trim", Value: bson.D{{Key: "input", Value: "$name"}}}}},
		{"SUBSTRING(name, 1, 3)", bson.D{{Key: "$substrCP", Value: bson.A{"$name", int64(0), int64(3)}}}},
		{"CONCAT(first, ' ', last)", bson.D{{Key: "$concat", Value: bson.A{"$first", " ", "$last"}}}},
		{"CONCAT(UPPER(first), ', ', last)", bson.D{{Key: "$concat", Value: bson.A{
			bson.D{{Key: "$toUpper", Value: "$first"}}, ", ", "$last",
		}}}},
		{"SOUNDEX(name)", "$SOUNDEX(name)"},
		{"name", "$name"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.expected, TranslateFunction(tt.expr))
		})
	}
}

func TestSplitArgs(t *testing.T) {
	assert.Equal(t, []string{"a", "', '", "f(b, c)"}, SplitArgs("a, ', ', f(b, c)"))
	assert.Equal(t, []string{"'x''y'", "z"}, SplitArgs("'x''y', z"))
	assert.Empty(t, SplitArgs("  "))
}

func TestParseCall(t *testing.T) {
	name, args, ok := ParseCall("count ( * )")
	assert.True(t, ok)
	assert.Equal(t, "COUNT", name)
	assert.Equal(t, "*", args)

	_, _, ok = ParseCall("f(a) + g(b)")
	assert.False(t, ok)

	_, _, ok = ParseCall("price")
	assert.False(t, ok)
}
