package lexer

// TokenType represents the category of a token
type TokenType int

const (
	TOKEN_UNKNOWN    TokenType = iota
	TOKEN_KEYWORD              // AND, OR, NOT, IN, LIKE, BETWEEN, IS, NULL, TRUE, FALSE
	TOKEN_IDENTIFIER           // price, u.name, `order`
	TOKEN_STRING               // 'John', "hello"
	TOKEN_NUMBER               // 25, -3.14
	TOKEN_COMPARISON           // =, <>, !=, >, <, >=, <=
	TOKEN_ARITHMETIC           // *, +, -, /, %
	TOKEN_LPAREN               // (
	TOKEN_RPAREN               // )
	TOKEN_COMMA                // ,
	TOKEN_SEMICOLON            // ;
	TOKEN_EOF                  // End of input
)

// Token represents a single token with position info
type Token struct {
	Type     TokenType
	Value    string // Normalized value (unquoted string, upper-cased keyword)
	Raw      string // Source text exactly as written
	Position int    // Byte offset in input
	Line     int    // Line number (1-indexed)
	Column   int    // Column number (1-indexed)
}

// String returns human-readable token type name
func (t TokenType) String() string {
	names := []string{
		"UNKNOWN",
		"KEYWORD",
		"IDENTIFIER",
		"STRING",
		"NUMBER",
		"COMPARISON",
		"ARITHMETIC",
		"LPAREN",
		"RPAREN",
		"COMMA",
		"SEMICOLON",
		"EOF",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "UNKNOWN"
}

// Is reports whether the token is the given keyword
func (t Token) Is(keyword string) bool {
	return t.Type == TOKEN_KEYWORD && t.Value == keyword
}
