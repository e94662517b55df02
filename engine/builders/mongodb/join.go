package mongodb

import (
	"fmt"
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/condition"
	"github.com/ErikMLC/sqlmongo/engine/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ============================================================================
// JOIN STAGES
// ============================================================================

// JoinedField is the array field a $lookup writes the joined documents to
func JoinedField(j models.Join) string {
	return j.Name() + "_joined"
}

// JoinKeys are the two sides of an equi-join
type JoinKeys struct {
	Local   string
	Foreign string
}

// ResolveJoinKeys reads "a.x = b.y" from the ON text. The side qualified by
// the joined table (or its alias) is the foreign field. A local side that
// refers to an earlier join is rewritten to that join's output array.
func ResolveJoinKeys(j models.Join, earlier []models.Join) (JoinKeys, error) {
	expr, err := condition.Parse(j.Condition, condition.Options{Strict: true})
	if err != nil {
		return JoinKeys{}, err
	}
	cmp, ok := expr.(*condition.Comparison)
	if !ok || cmp.Operator != "=" || cmp.Value.IsNumeric() {
		return JoinKeys{}, fmt.Errorf("ON %q is not an equality between two columns", j.Condition)
	}

	left, right := cmp.Field, cmp.Value.Str()
	if qualifier(right) != j.Name() && qualifier(right) != j.Table && (qualifier(left) == j.Name() || qualifier(left) == j.Table) {
		left, right = right, left
	}

	keys := JoinKeys{Local: unqualified(left), Foreign: unqualified(right)}
	for _, prev := range earlier {
		if q := qualifier(left); q != "" && (q == prev.Name() || q == prev.Table) {
			keys.Local = JoinedField(prev) + "." + unqualified(left)
		}
	}
	return keys, nil
}

// BuildLookupStages returns $lookup followed by $unwind for one join.
// Outer joins keep documents without a match.
func BuildLookupStages(j models.Join, earlier []models.Join, warn Warn) []bson.D {
	as := JoinedField(j)

	var lookup bson.D
	keys, err := ResolveJoinKeys(j, earlier)
	switch {
	case j.Type == models.JoinCross || strings.TrimSpace(j.Condition) == "":
		lookup = bson.D{
			{Key: "from", Value: j.Table},
			{Key: "pipeline", Value: bson.A{}},
			{Key: "as", Value: as},
		}
	case err != nil:
		warn.printf("JOIN %s: %v; joined as a cartesian product", j.Table, err)
		lookup = bson.D{
			{Key: "from", Value: j.Table},
			{Key: "pipeline", Value: bson.A{}},
			{Key: "as", Value: as},
		}
	default:
		lookup = bson.D{
			{Key: "from", Value: j.Table},
			{Key: "localField", Value: keys.Local},
			{Key: "foreignField", Value: keys.Foreign},
			{Key: "as", Value: as},
		}
	}

	unwind := bson.D{{Key: "path", Value: "$" + as}}
	if j.Type != models.JoinInner && j.Type != models.JoinCross {
		unwind = append(unwind, bson.E{Key: "preserveNullAndEmptyArrays", Value: true})
	}
	if j.Type == models.JoinRight || j.Type == models.JoinFull {
		warn.printf("%s JOIN on %s is translated as a left outer $lookup", j.Type, j.Table)
	}

	return []bson.D{
		{{Key: "$lookup", Value: lookup}},
		{{Key: "$unwind", Value: unwind}},
	}
}

// BuildJoinProjectStage projects the select list of a joined query. Fields
// qualified by a join alias are read from that join's output array.
func BuildJoinProjectStage(fields []models.SelectField, joins []models.Join, selectAll bool) bson.D {
	project := bson.D{}
	if selectAll {
		project = append(project, bson.E{Key: "_id", Value: 1})
		for _, j := range joins {
			project = append(project, bson.E{Key: j.Name() + "_data", Value: "$" + JoinedField(j)})
		}
		return bson.D{{Key: "$project", Value: project}}
	}

	project = append(project, bson.E{Key: "_id", Value: 0})
	used := map[string]bool{}
	for _, field := range fields {
		expr := strings.TrimSpace(field.Field)
		q, name := qualifier(expr), unqualified(expr)

		key := name
		if field.HasAlias() {
			key = field.Alias
		} else if used[key] && q != "" {
			key = q + "_" + name
		}
		used[key] = true

		path := "$" + name
		for _, j := range joins {
			if q != "" && (q == j.Name() || q == j.Table) {
				path = "$" + JoinedField(j) + "." + name
				break
			}
		}
		project = append(project, bson.E{Key: key, Value: path})
	}
	return bson.D{{Key: "$project", Value: project}}
}

// JoinTypes lists join kinds in lower case for join_info
func JoinTypes(joins []models.Join) []string {
	types := make([]string, len(joins))
	for i, j := range joins {
		types[i] = strings.ToLower(string(j.Type))
	}
	return types
}

func qualifier(field string) string {
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		return field[:i]
	}
	return ""
}

func unqualified(field string) string {
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		return field[i+1:]
	}
	return field
}

// StripQualifier removes a leading "<alias>." from field when alias matches
func StripQualifier(field string, aliases ...string) string {
	for _, alias := range aliases {
		if alias != "" && strings.HasPrefix(field, alias+".") {
			return strings.TrimPrefix(field, alias+".")
		}
	}
	return field
}
