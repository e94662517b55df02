package translator

import (
	"fmt"
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/ErikMLC/sqlmongo/mapping"
)

// Complexity levels
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// Feasibility describes how well a statement maps onto MongoDB
type Feasibility struct {
	IsFeasible      bool     `json:"is_feasible"`
	ComplexityLevel string   `json:"complexity_level"`
	FeaturesUsed    []string `json:"features_used"`
	Issues          []string `json:"issues"`
	Warnings        []string `json:"warnings"`
	Recommendation  string   `json:"recommendation"`
}

// Analyze inspects stmt without translating it
func Analyze(stmt *models.Statement) Feasibility {
	f := Feasibility{FeaturesUsed: []string{}, Issues: []string{}, Warnings: []string{}}
	if stmt == nil {
		f.Issues = append(f.Issues, "no statement to analyze")
		f.ComplexityLevel = ComplexitySimple
		f.Recommendation = recommendation(f)
		return f
	}

	score := 0
	use := func(feature string, weight int) {
		f.FeaturesUsed = append(f.FeaturesUsed, feature)
		score += weight
	}

	if strings.TrimSpace(stmt.Where) != "" {
		use("where", 0)
	}
	if len(stmt.Joins) > 0 {
		use("join", 2*len(stmt.Joins))
	}
	if len(stmt.GroupBy) > 0 {
		use("group_by", 1)
	}
	for _, field := range stmt.Fields {
		if mapping.HasAggregate(field.Field) {
			use("aggregate", 1)
			break
		}
	}
	if strings.TrimSpace(stmt.Having) != "" {
		use("having", 1)
	}
	if stmt.Distinct {
		use("distinct", 1)
	}
	if len(stmt.OrderBy) > 0 {
		use("order_by", 0)
	}
	if stmt.Limit != nil || stmt.Offset != nil {
		use("limit", 0)
	}
	if stmt.HasUnion() {
		use("union", 2)
		f.Warnings = append(f.Warnings, "UNION requires MongoDB 4.4+ or separate queries")
	}
	if stmt.HasSubquery {
		use("subquery", 3)
		f.Warnings = append(f.Warnings, "subqueries may need several queries or a restructured model")
	}

	if len(stmt.Joins) > 3 {
		f.Warnings = append(f.Warnings, "many JOINs can hurt performance significantly")
	}
	for _, j := range stmt.Joins {
		if j.Type == models.JoinRight || j.Type == models.JoinFull {
			f.Warnings = append(f.Warnings, fmt.Sprintf("%s JOIN needs special handling", strings.ToLower(string(j.Type))))
		}
	}

	if strings.TrimSpace(stmt.Table) == "" {
		f.Issues = append(f.Issues, "statement has no table")
	}

	switch {
	case score <= 1:
		f.ComplexityLevel = ComplexitySimple
	case score <= 4:
		f.ComplexityLevel = ComplexityModerate
	default:
		f.ComplexityLevel = ComplexityComplex
		f.Warnings = append(f.Warnings, "complex query; plan for optimization and performance testing")
	}

	f.IsFeasible = len(f.Issues) == 0
	f.Recommendation = recommendation(f)
	return f
}

func recommendation(f Feasibility) string {
	switch f.ComplexityLevel {
	case ComplexitySimple:
		return "query maps directly onto MongoDB"
	case ComplexityModerate:
		return "query translates with good expected performance"
	}
	recs := []string{
		"consider denormalizing the data",
		"check indexes on filter and join fields",
		"test performance with real data",
	}
	if len(f.Warnings) > 2 {
		recs = append(recs, "consider splitting into several simpler queries")
	}
	return strings.Join(recs, "; ")
}
