// Package lexer splits WHERE/HAVING clause text into tokens.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ErikMLC/sqlmongo/mapping"
)

// Tokenizer converts input string to tokens
type Tokenizer struct {
	input  string
	pos    int
	line   int
	column int
	tokens []Token
}

// Tokenize converts clause text to tokens terminated by TOKEN_EOF
func Tokenize(input string) ([]Token, error) {
	t := &Tokenizer{
		input:  input,
		pos:    0,
		line:   1,
		column: 1,
	}
	return t.tokenize()
}

func (t *Tokenizer) tokenize() ([]Token, error) {
	for t.pos < len(t.input) {
		if t.skipWhitespace() {
			continue
		}

		ch := t.input[t.pos]

		// Single character tokens
		switch ch {
		case '(':
			t.addToken(TOKEN_LPAREN, "(", "(")
			t.advance()
			continue
		case ')':
			t.addToken(TOKEN_RPAREN, ")", ")")
			t.advance()
			continue
		case ',':
			t.addToken(TOKEN_COMMA, ",", ",")
			t.advance()
			continue
		case ';':
			t.addToken(TOKEN_SEMICOLON, ";", ";")
			t.advance()
			continue
		case '\'', '"':
			token, err := t.scanString(ch)
			if err != nil {
				return nil, err
			}
			t.tokens = append(t.tokens, token)
			continue
		case '`':
			token, err := t.scanQuotedIdentifier()
			if err != nil {
				return nil, err
			}
			t.tokens = append(t.tokens, token)
			continue
		}

		r, _ := utf8.DecodeRuneInString(t.input[t.pos:])
		if unicode.IsLetter(r) || r == '_' {
			t.tokens = append(t.tokens, t.scanWord())
			continue
		}

		if isDigit(ch) || (ch == '-' && t.peekDigit() && t.canStartNegativeNumber()) {
			t.tokens = append(t.tokens, t.scanNumber())
			continue
		}

		if isOperatorChar(ch) {
			token, err := t.scanOperator()
			if err != nil {
				return nil, err
			}
			t.tokens = append(t.tokens, token)
			continue
		}

		return nil, &ParseError{
			Message:  fmt.Sprintf("unexpected character '%c'", r),
			Position: t.pos,
			Line:     t.line,
			Column:   t.column,
		}
	}

	t.addToken(TOKEN_EOF, "", "")
	return t.tokens, nil
}

func (t *Tokenizer) skipWhitespace() bool {
	skipped := false
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if ch == ' ' || ch == '\t' {
			t.column++
			t.pos++
			skipped = true
		} else if ch == '\n' {
			t.line++
			t.column = 1
			t.pos++
			skipped = true
		} else if ch == '\r' {
			t.pos++
			skipped = true
		} else {
			break
		}
	}
	return skipped
}

func (t *Tokenizer) advance() {
	t.pos++
	t.column++
}

// advanceRune moves past one UTF-8 encoded character of the given width
func (t *Tokenizer) advanceRune(width int) {
	t.pos += width
	t.column++
}

func (t *Tokenizer) peekDigit() bool {
	return t.pos+1 < len(t.input) && isDigit(t.input[t.pos+1])
}

// canStartNegativeNumber checks if a '-' here is a sign rather than a minus.
// True only after an operator, '(', ',', a keyword, or at start of input.
func (t *Tokenizer) canStartNegativeNumber() bool {
	if len(t.tokens) == 0 {
		return true
	}

	last := t.tokens[len(t.tokens)-1]
	switch last.Type {
	case TOKEN_COMPARISON, TOKEN_ARITHMETIC, TOKEN_LPAREN, TOKEN_COMMA, TOKEN_KEYWORD:
		return true
	}
	return false
}

func (t *Tokenizer) addToken(tokenType TokenType, value, raw string) {
	t.tokens = append(t.tokens, Token{
		Type:     tokenType,
		Value:    value,
		Raw:      raw,
		Position: t.pos,
		Line:     t.line,
		Column:   t.column,
	})
}

// scanString reads a quoted literal. A doubled quote or a backslash escapes the quote.
func (t *Tokenizer) scanString(quote byte) (Token, error) {
	startPos := t.pos
	startLine := t.line
	startCol := t.column

	t.advance() // opening quote

	var value strings.Builder
	for t.pos < len(t.input) {
		ch := t.input[t.pos]

		if ch == '\\' && t.pos+1 < len(t.input) {
			t.advance()
			switch t.input[t.pos] {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case 'r':
				value.WriteByte('\r')
			default:
				value.WriteByte(t.input[t.pos])
			}
			t.advance()
			continue
		}

		if ch == quote {
			if t.pos+1 < len(t.input) && t.input[t.pos+1] == quote {
				value.WriteByte(quote)
				t.advance()
				t.advance()
				continue
			}
			t.advance() // closing quote
			return Token{
				Type:     TOKEN_STRING,
				Value:    value.String(),
				Raw:      t.input[startPos:t.pos],
				Position: startPos,
				Line:     startLine,
				Column:   startCol,
			}, nil
		}

		if ch == '\n' {
			t.line++
			t.column = 0
		}
		value.WriteByte(ch)
		t.advance()
	}

	return Token{}, &ParseError{
		Message:  fmt.Sprintf("unclosed string, expected %c", quote),
		Position: startPos,
		Line:     startLine,
		Column:   startCol,
	}
}

func (t *Tokenizer) scanQuotedIdentifier() (Token, error) {
	startPos := t.pos
	startCol := t.column

	t.advance() // opening backtick
	end := strings.IndexByte(t.input[t.pos:], '`')
	if end < 0 {
		return Token{}, &ParseError{
			Message:  "unclosed identifier, expected `",
			Position: startPos,
			Line:     t.line,
			Column:   startCol,
		}
	}

	name := t.input[t.pos : t.pos+end]
	for i := 0; i <= end; i++ {
		t.advance()
	}

	// `a`.`b` continues as one dotted name
	value := name
	if t.pos+1 < len(t.input) && t.input[t.pos] == '.' {
		t.advance()
		if t.input[t.pos] == '`' {
			next, err := t.scanQuotedIdentifier()
			if err != nil {
				return Token{}, err
			}
			value += "." + next.Value
		} else {
			value += "." + t.scanWord().Raw
		}
	}

	return Token{
		Type:     TOKEN_IDENTIFIER,
		Value:    value,
		Raw:      t.input[startPos:t.pos],
		Position: startPos,
		Line:     t.line,
		Column:   startCol,
	}, nil
}

func (t *Tokenizer) scanNumber() Token {
	startPos := t.pos
	startCol := t.column

	if t.input[t.pos] == '-' {
		t.advance()
	}

	// Integer part
	for t.pos < len(t.input) && isDigit(t.input[t.pos]) {
		t.advance()
	}

	// Decimal part
	if t.pos+1 < len(t.input) && t.input[t.pos] == '.' && isDigit(t.input[t.pos+1]) {
		t.advance()
		for t.pos < len(t.input) && isDigit(t.input[t.pos]) {
			t.advance()
		}
	}

	text := t.input[startPos:t.pos]
	return Token{
		Type:     TOKEN_NUMBER,
		Value:    text,
		Raw:      text,
		Position: startPos,
		Line:     t.line,
		Column:   startCol,
	}
}

// scanWord reads identifiers (dots allowed for qualified names) and keywords
func (t *Tokenizer) scanWord() Token {
	startPos := t.pos
	startCol := t.column

	for t.pos < len(t.input) {
		r, width := utf8.DecodeRuneInString(t.input[t.pos:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '$' {
			t.advanceRune(width)
		} else {
			break
		}
	}

	word := t.input[startPos:t.pos]
	upper := strings.ToUpper(word)

	tokenType := TOKEN_IDENTIFIER
	value := word
	if mapping.IsConditionKeyword(upper) {
		tokenType = TOKEN_KEYWORD
		value = upper
	}

	return Token{
		Type:     tokenType,
		Value:    value,
		Raw:      word,
		Position: startPos,
		Line:     t.line,
		Column:   startCol,
	}
}

// scanOperator reads comparison and arithmetic operators.
// Two-character operators are matched before single characters.
func (t *Tokenizer) scanOperator() (Token, error) {
	startPos := t.pos
	startCol := t.column

	if t.pos+1 < len(t.input) {
		pair := t.input[t.pos : t.pos+2]
		if mapping.IsComparisonOperator(pair) {
			t.advance()
			t.advance()
			return Token{
				Type:     TOKEN_COMPARISON,
				Value:    pair,
				Raw:      pair,
				Position: startPos,
				Line:     t.line,
				Column:   startCol,
			}, nil
		}
	}

	op := t.input[t.pos : t.pos+1]
	t.advance()

	if mapping.IsComparisonOperator(op) {
		return Token{Type: TOKEN_COMPARISON, Value: op, Raw: op, Position: startPos, Line: t.line, Column: startCol}, nil
	}
	if _, ok := mapping.MongoArithmetic(op); ok {
		return Token{Type: TOKEN_ARITHMETIC, Value: op, Raw: op, Position: startPos, Line: t.line, Column: startCol}, nil
	}

	return Token{}, &ParseError{
		Message:  fmt.Sprintf("unknown operator '%s'", op),
		Position: startPos,
		Line:     t.line,
		Column:   startCol,
		Token:    op,
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isOperatorChar(ch byte) bool {
	return ch == '=' || ch == '!' || ch == '<' || ch == '>' || ch == '*' || ch == '%' || ch == '+' || ch == '-' || ch == '/'
}
