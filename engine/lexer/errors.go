package lexer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ErikMLC/sqlmongo/mapping"
)

// ParseError represents an error with position info
type ParseError struct {
	Message  string
	Position int
	Line     int
	Column   int
	Token    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// NewParseError creates a new parse error
func NewParseError(token Token, message string) *ParseError {
	return &ParseError{
		Message:  message,
		Position: token.Position,
		Line:     token.Line,
		Column:   token.Column,
		Token:    token.Raw,
	}
}

// NewUnexpectedTokenError creates error with suggestion
func NewUnexpectedTokenError(token Token, expected string) *ParseError {
	if token.Type == TOKEN_EOF {
		return NewParseError(token, fmt.Sprintf("unexpected end of input, expected %s", expected))
	}
	msg := fmt.Sprintf("unexpected '%s', expected %s", token.Raw, expected)
	if token.Type == TOKEN_IDENTIFIER {
		if suggestion := SuggestSimilar(token.Raw); suggestion != "" {
			msg += fmt.Sprintf(". Did you mean '%s'?", suggestion)
		}
	}
	return NewParseError(token, msg)
}

// SuggestSimilar finds the closest condition keyword within two edits
func SuggestSimilar(unknown string) string {
	unknown = strings.ToUpper(unknown)
	if mapping.IsConditionKeyword(unknown) {
		return ""
	}

	keywords := make([]string, 0, len(mapping.ConditionKeywords))
	for kw := range mapping.ConditionKeywords {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)

	var bestMatch string
	bestDistance := 999
	maxDistance := 2

	for _, kw := range keywords {
		// Short keywords only match near-exact typos
		limit := maxDistance
		if len(kw) <= 3 {
			limit = 1
		}
		dist := levenshtein(unknown, kw)
		if dist <= limit && dist < bestDistance {
			bestDistance = dist
			bestMatch = kw
		}
	}

	return bestMatch
}

// levenshtein calculates edit distance between two strings
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min3(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
