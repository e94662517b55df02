package translator

import (
	"testing"

	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzeSimple(t *testing.T) {
	f := Analyze(&models.Statement{Kind: models.KindSelect, Table: "users", Where: "id = 1"})
	assert.True(t, f.IsFeasible)
	assert.Equal(t, ComplexitySimple, f.ComplexityLevel)
	assert.Equal(t, []string{"where"}, f.FeaturesUsed)
	assert.Empty(t, f.Warnings)
}

func TestAnalyzeComplex(t *testing.T) {
	joins := []models.Join{
		{Type: models.JoinInner, Table: "a"},
		{Type: models.JoinRight, Table: "b"},
		{Type: models.JoinLeft, Table: "c"},
		{Type: models.JoinFull, Table: "d"},
	}
	f := Analyze(&models.Statement{Kind: models.KindSelect, Table: "t", Joins: joins, HasSubquery: true})
	assert.Equal(t, ComplexityComplex, f.ComplexityLevel)
	assert.Contains(t, f.Warnings, "right JOIN needs special handling")
	assert.Contains(t, f.Warnings, "full JOIN needs special handling")
	assert.Contains(t, f.Recommendation, "consider splitting into several simpler queries")
}

func TestAnalyzeIssues(t *testing.T) {
	f := Analyze(&models.Statement{Kind: models.KindSelect})
	assert.False(t, f.IsFeasible)

	f = Analyze(nil)
	assert.False(t, f.IsFeasible)
}
