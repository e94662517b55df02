package mapping

import "strings"

// SupportedDialects lists the SQL dialects the validator understands
var SupportedDialects = []string{
	"mysql",
	"postgres",
}

// dialectAliases maps accepted spellings to a canonical dialect name
var dialectAliases = map[string]string{
	"mysql":      "mysql",
	"mariadb":    "mysql",
	"postgres":   "postgres",
	"postgresql": "postgres",
	"pg":         "postgres",
}

// NormalizeDialect returns the canonical dialect name, or "" if unsupported
func NormalizeDialect(dialect string) string {
	return dialectAliases[strings.ToLower(strings.TrimSpace(dialect))]
}

