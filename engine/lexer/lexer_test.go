package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Type
	}
	return out
}

func TestTokenizeComparison(t *testing.T) {
	tokens, err := Tokenize("age >= 18 AND name <> 'Bob'")
	require.NoError(t, err)

	assert.Equal(t, []TokenType{
		TOKEN_IDENTIFIER, TOKEN_COMPARISON, TOKEN_NUMBER,
		TOKEN_KEYWORD,
		TOKEN_IDENTIFIER, TOKEN_COMPARISON, TOKEN_STRING,
		TOKEN_EOF,
	}, types(tokens))
	assert.Equal(t, ">=", tokens[1].Value)
	assert.Equal(t, "AND", tokens[3].Value)
	assert.Equal(t, "Bob", tokens[6].Value)
	assert.Equal(t, "'Bob'", tokens[6].Raw)
}

func TestTokenizeKeywordsCaseInsensitive(t *testing.T) {
	tokens, err := Tokenize("x between 1 and 2")
	require.NoError(t, err)
	assert.True(t, tokens[1].Is("BETWEEN"))
	assert.True(t, tokens[3].Is("AND"))
	assert.Equal(t, "between", tokens[1].Raw)
}

func TestTokenizeNegativeNumbers(t *testing.T) {
	tokens, err := Tokenize("balance > -5 AND a - 3 = b")
	require.NoError(t, err)
	assert.Equal(t, TOKEN_NUMBER, tokens[2].Type)
	assert.Equal(t, "-5", tokens[2].Value)
	// after an identifier '-' is a minus operator
	assert.Equal(t, TOKEN_ARITHMETIC, tokens[5].Type)
	assert.Equal(t, "3", tokens[6].Value)
}

func TestTokenizeQualifiedAndQuotedNames(t *testing.T) {
	tokens, err := Tokenize("u.name = `order`.`id`")
	require.NoError(t, err)
	assert.Equal(t, "u.name", tokens[0].Value)
	assert.Equal(t, TOKEN_IDENTIFIER, tokens[2].Type)
	assert.Equal(t, "order.id", tokens[2].Value)
}

func TestTokenizeStringEscapes(t *testing.T) {
	tokens, err := Tokenize(`name = 'O''Brien' OR name = 'it\'s'`)
	require.NoError(t, err)
	assert.Equal(t, "O'Brien", tokens[2].Value)
	assert.Equal(t, "it's", tokens[6].Value)
}

func TestTokenizeDecimalAndSemicolon(t *testing.T) {
	tokens, err := Tokenize("price = 9.99;")
	require.NoError(t, err)
	assert.Equal(t, "9.99", tokens[2].Value)
	assert.Equal(t, TOKEN_SEMICOLON, tokens[3].Type)
	assert.Equal(t, TOKEN_EOF, tokens[4].Type)
}

func TestTokenizeErrors(t *testing.T) {
	_, err := Tokenize("name = 'open")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 8, perr.Column)
	assert.Contains(t, err.Error(), "unclosed string")

	_, err = Tokenize("a ! b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operator '!'")

	_, err = Tokenize("a = #")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected character '#'")

	_, err = Tokenize("precio > 10 €")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected character '€'")
}

func TestTokenizeNonASCIIIdentifiers(t *testing.T) {
	tokens, err := Tokenize("año > 2000 AND ciudad = 'Málaga' AND niño_id = 1")
	require.NoError(t, err)

	assert.Equal(t, []TokenType{
		TOKEN_IDENTIFIER, TOKEN_COMPARISON, TOKEN_NUMBER,
		TOKEN_KEYWORD,
		TOKEN_IDENTIFIER, TOKEN_COMPARISON, TOKEN_STRING,
		TOKEN_KEYWORD,
		TOKEN_IDENTIFIER, TOKEN_COMPARISON, TOKEN_NUMBER,
		TOKEN_EOF,
	}, types(tokens))
	assert.Equal(t, "año", tokens[0].Value)
	assert.Equal(t, "Málaga", tokens[6].Value)
	assert.Equal(t, "niño_id", tokens[8].Value)
	assert.Equal(t, 5, tokens[1].Column)
}

func TestSuggestSimilar(t *testing.T) {
	assert.Equal(t, "BETWEEN", SuggestSimilar("betwen"))
	assert.Equal(t, "LIKE", SuggestSimilar("LIKR"))
	assert.Equal(t, "", SuggestSimilar("salary"))
	assert.Equal(t, "", SuggestSimilar("AND"))
}

func TestUnexpectedTokenError(t *testing.T) {
	tok := Token{Type: TOKEN_IDENTIFIER, Raw: "LIKEE", Line: 1, Column: 6}
	err := NewUnexpectedTokenError(tok, "operator")
	assert.Equal(t, "parse error at line 1, column 6: unexpected 'LIKEE', expected operator. Did you mean 'LIKE'?", err.Error())
}
