// Package shell renders translation results as mongosh commands
package shell

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/models"
	"github.com/ErikMLC/sqlmongo/mapping"

	"go.mongodb.org/mongo-driver/bson"
)

// ============================================================================
// SHELL COMMANDS
// ============================================================================

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Render builds the mongosh command(s) for a result. Multi-command results
// (schema creation, unions) are separated by newlines.
func Render(r models.Result) (string, error) {
	if r == nil {
		return "", fmt.Errorf("nil result")
	}
	coll := collection(r.Meta().Collection)

	switch v := r.(type) {
	case *models.Find:
		return buildFind(coll, v)

	case *models.Aggregate:
		pipeline, err := jsonArray(pipelineValues(v))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.aggregate(%s)", coll, pipeline), nil

	case *models.Insert:
		return call(coll, "insertOne", orEmpty(v.Doc))

	case *models.InsertMany:
		docs := bson.A{}
		for _, d := range v.Docs {
			docs = append(docs, d)
		}
		arr, err := jsonArray(docs)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.insertMany(%s)", coll, arr), nil

	case *models.Update:
		return call(coll, "updateMany", orEmpty(v.Query), orEmpty(v.Update))

	case *models.Delete:
		return call(coll, "deleteMany", orEmpty(v.Query))

	case *models.CreateCollection:
		return buildCreate(v)

	case *models.DropCollection:
		return coll + ".drop()", nil

	case *models.Union:
		lines := make([]string, 0, len(v.Queries))
		for _, q := range v.Queries {
			line, err := Render(q)
			if err != nil {
				return "", err
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n"), nil
	}
	return "", fmt.Errorf("no shell form for %s", r.Operation())
}

func buildFind(coll string, f *models.Find) (string, error) {
	args := []bson.D{orEmpty(f.Query)}
	if len(f.Projection) > 0 {
		args = append(args, f.Projection)
	}
	cmd, err := call(coll, mapping.ShellMethods[mapping.OpFind], args...)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(cmd)
	if len(f.Sort) > 0 {
		sort, err := jsonDoc(f.Sort)
		if err != nil {
			return "", err
		}
		sb.WriteString(".sort(" + sort + ")")
	}
	if f.Skip != nil {
		sb.WriteString(".skip(" + strconv.FormatInt(*f.Skip, 10) + ")")
	}
	if f.Limit != nil {
		sb.WriteString(".limit(" + strconv.FormatInt(*f.Limit, 10) + ")")
	}
	return sb.String(), nil
}

func buildCreate(c *models.CreateCollection) (string, error) {
	name := strconv.Quote(c.Collection)
	lines := []string{}

	if len(c.Options) > 0 {
		opts, err := jsonDoc(c.Options)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("db.createCollection(%s, %s)", name, opts))
	} else {
		lines = append(lines, fmt.Sprintf("db.createCollection(%s)", name))
	}

	coll := collection(c.Collection)
	for _, idx := range c.Indexes {
		doc := models.IndexDocument(idx)
		keys, ok := doc[0].Value.(bson.D)
		if !ok {
			continue
		}
		cmd, err := call(coll, "createIndex", keys, doc[1:])
		if err != nil {
			return "", err
		}
		lines = append(lines, cmd)
	}
	return strings.Join(lines, "\n"), nil
}

// ============================================================================
// HELPERS
// ============================================================================

// collection addresses a collection, using getCollection for names that
// are not plain identifiers.
func collection(name string) string {
	if identifier.MatchString(name) {
		return "db." + name
	}
	return "db.getCollection(" + strconv.Quote(name) + ")"
}

func call(coll, method string, args ...bson.D) (string, error) {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		s, err := jsonDoc(a)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return fmt.Sprintf("%s.%s(%s)", coll, method, strings.Join(parts, ", ")), nil
}

func jsonDoc(d bson.D) (string, error) {
	data, err := bson.MarshalExtJSON(d, false, false)
	if err != nil {
		return "", fmt.Errorf("render shell document: %w", err)
	}
	return string(data), nil
}

// jsonArray renders an array by wrapping it, since Extended JSON needs a
// document at the top level.
func jsonArray(a bson.A) (string, error) {
	data, err := bson.MarshalExtJSON(bson.D{{Key: "a", Value: a}}, false, false)
	if err != nil {
		return "", fmt.Errorf("render shell array: %w", err)
	}
	s := string(data)
	return strings.TrimSuffix(strings.TrimPrefix(s, `{"a":`), "}"), nil
}

func pipelineValues(a *models.Aggregate) bson.A {
	out := bson.A{}
	for _, stage := range a.Pipeline {
		out = append(out, stage)
	}
	return out
}

func orEmpty(d bson.D) bson.D {
	if d == nil {
		return bson.D{}
	}
	return d
}
