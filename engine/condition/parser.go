package condition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ErikMLC/sqlmongo/engine/lexer"
	"github.com/ErikMLC/sqlmongo/engine/values"

	"go.uber.org/zap"
)

// MaxDepth bounds parenthesis nesting
const MaxDepth = 100

// ErrSyntax is wrapped by every SyntaxError
var ErrSyntax = errors.New("condition syntax error")

// SyntaxError reports a clause that cannot be parsed in strict mode
type SyntaxError struct {
	Clause string
	Cause  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid condition %q: %v", e.Clause, e.Cause)
}

func (e *SyntaxError) Unwrap() []error { return []error{ErrSyntax, e.Cause} }

// Options controls leniency and operand resolution
type Options struct {
	// Strict fails the whole clause on the first unparseable predicate.
	// When false the predicate is dropped and reported through Warn.
	Strict bool

	// Resolve maps operand text (a field or a call such as COUNT(*)) to the
	// document field it refers to. Nil keeps the operand text.
	Resolve func(operand string) string

	// Warn receives one message per dropped predicate
	Warn func(msg string)

	Logger *zap.Logger
}

type parser struct {
	input  string
	tokens []lexer.Token
	pos    int
	depth  int
	opts   Options
}

// Parse converts clause text into a filter tree.
// An empty clause yields a nil Expr and no error.
func Parse(clause string, opts Options) (Expr, error) {
	if strings.TrimSpace(clause) == "" {
		return nil, nil
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	tokens, err := lexer.Tokenize(clause)
	if err != nil {
		return nil, &SyntaxError{Clause: clause, Cause: err}
	}

	p := &parser{input: clause, tokens: tokens, opts: opts}
	expr, err := p.parseOr()
	if err != nil {
		return nil, &SyntaxError{Clause: clause, Cause: err}
	}

	for p.peek().Type == lexer.TOKEN_SEMICOLON {
		p.next()
	}
	if tok := p.peek(); tok.Type != lexer.TOKEN_EOF {
		cause := lexer.NewUnexpectedTokenError(tok, "AND, OR or end of condition")
		if opts.Strict {
			return nil, &SyntaxError{Clause: clause, Cause: cause}
		}
		p.drop(strings.TrimSpace(clause[tok.Position:]), cause)
	}

	return expr, nil
}

// ============================================================================
// BOOLEAN LEVELS
// ============================================================================

// parseOr: or := and { OR and }
func (p *parser) parseOr() (Expr, error) {
	var children []Expr
	for {
		child, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		if child != nil {
			children = append(children, child)
		}
		if !p.peek().Is("OR") {
			break
		}
		p.next()
	}

	switch len(children) {
	case 0:
		return nil, nil
	case 1:
		return children[0], nil
	}
	return &Or{Children: children}, nil
}

// parseAnd: and := primary { AND primary }
func (p *parser) parseAnd() (Expr, error) {
	var children []Expr
	for {
		child, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		if child != nil {
			children = append(children, child)
		}
		if !p.peek().Is("AND") {
			break
		}
		p.next()
	}

	switch len(children) {
	case 0:
		return nil, nil
	case 1:
		return children[0], nil
	}
	return &And{Children: children}, nil
}

// parsePrimary: primary := "(" or ")" | predicate
func (p *parser) parsePrimary() (Expr, error) {
	if p.peek().Type == lexer.TOKEN_LPAREN {
		open := p.next()
		p.depth++
		if p.depth > MaxDepth {
			return nil, lexer.NewParseError(open, "condition nested too deeply")
		}
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		p.depth--

		if p.peek().Type != lexer.TOKEN_RPAREN {
			cause := lexer.NewUnexpectedTokenError(p.peek(), "')'")
			if p.opts.Strict {
				return nil, cause
			}
			p.drop(strings.TrimSpace(p.input[open.Position:]), cause)
			return expr, nil
		}
		p.next()
		return expr, nil
	}

	start := p.pos
	expr, err := p.parsePredicate()
	if err != nil {
		if p.opts.Strict {
			return nil, err
		}
		p.pos = start
		text := p.skipPredicate()
		p.drop(text, err)
		return nil, nil
	}
	return expr, nil
}

// ============================================================================
// PREDICATES
// ============================================================================

func (p *parser) parsePredicate() (Expr, error) {
	field, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	tok := p.peek()
	switch {
	case tok.Is("BETWEEN"):
		p.next()
		return p.parseBetween(field)

	case tok.Is("NOT"):
		p.next()
		if p.peek().Is("IN") {
			p.next()
			list, err := p.parseValueList()
			if err != nil {
				return nil, err
			}
			return &In{Field: field, Values: list, Negated: true}, nil
		}
		return nil, lexer.NewParseError(p.peek(), fmt.Sprintf("NOT %s is not supported", p.peek().Raw))

	case tok.Is("IN"):
		p.next()
		list, err := p.parseValueList()
		if err != nil {
			return nil, err
		}
		return &In{Field: field, Values: list}, nil

	case tok.Is("LIKE"):
		p.next()
		pattern := p.next()
		if pattern.Type != lexer.TOKEN_STRING && pattern.Type != lexer.TOKEN_IDENTIFIER {
			return nil, lexer.NewUnexpectedTokenError(pattern, "pattern")
		}
		return NewLike(field, pattern.Value), nil

	case tok.Is("IS"):
		p.next()
		isNull := true
		if p.peek().Is("NOT") {
			p.next()
			isNull = false
		}
		if !p.peek().Is("NULL") {
			return nil, lexer.NewUnexpectedTokenError(p.peek(), "NULL")
		}
		p.next()
		return &NullCheck{Field: field, IsNull: isNull}, nil

	case tok.Type == lexer.TOKEN_COMPARISON:
		p.next()
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return &Comparison{Field: field, Operator: tok.Value, Value: value}, nil
	}

	return nil, lexer.NewUnexpectedTokenError(tok, "comparison operator")
}

func (p *parser) parseBetween(field string) (Expr, error) {
	low, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if !p.peek().Is("AND") {
		return nil, lexer.NewUnexpectedTokenError(p.peek(), "AND")
	}
	p.next()
	high, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &Between{Field: field, Low: low, High: high}, nil
}

// parseOperand reads a field name or a call such as COUNT(*) / SUM(a * b)
func (p *parser) parseOperand() (string, error) {
	tok := p.next()
	if tok.Type != lexer.TOKEN_IDENTIFIER {
		return "", lexer.NewUnexpectedTokenError(tok, "field name")
	}

	text := tok.Value
	if p.peek().Type == lexer.TOKEN_LPAREN {
		depth := 0
		for {
			t := p.next()
			switch t.Type {
			case lexer.TOKEN_LPAREN:
				depth++
			case lexer.TOKEN_RPAREN:
				depth--
			case lexer.TOKEN_EOF:
				return "", lexer.NewUnexpectedTokenError(t, "')'")
			}
			if depth == 0 {
				text = p.input[tok.Position : t.Position+1]
				break
			}
		}
	}

	if p.opts.Resolve != nil {
		text = p.opts.Resolve(text)
	}
	return text, nil
}

func (p *parser) parseValue() (values.Value, error) {
	tok := p.next()
	switch tok.Type {
	case lexer.TOKEN_STRING:
		return values.NewString(tok.Value), nil
	case lexer.TOKEN_NUMBER:
		return values.Parse(tok.Value), nil
	case lexer.TOKEN_IDENTIFIER:
		return values.NewString(tok.Value), nil
	case lexer.TOKEN_KEYWORD:
		switch tok.Value {
		case "NULL", "TRUE", "FALSE":
			return values.Parse(tok.Value), nil
		}
	}
	return values.Value{}, lexer.NewUnexpectedTokenError(tok, "value")
}

// parseValueList reads "(" value { "," value } ")"
func (p *parser) parseValueList() ([]values.Value, error) {
	if tok := p.next(); tok.Type != lexer.TOKEN_LPAREN {
		return nil, lexer.NewUnexpectedTokenError(tok, "'('")
	}

	var list []values.Value
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		list = append(list, v)

		tok := p.next()
		if tok.Type == lexer.TOKEN_RPAREN {
			return list, nil
		}
		if tok.Type != lexer.TOKEN_COMMA {
			return nil, lexer.NewUnexpectedTokenError(tok, "',' or ')'")
		}
	}
}

// ============================================================================
// RECOVERY
// ============================================================================

// skipPredicate advances past a broken predicate up to the next top-level
// AND/OR, an unmatched ')' or the end, and returns the skipped text.
func (p *parser) skipPredicate() string {
	start := p.peek().Position
	depth := 0
	for {
		tok := p.peek()
		switch {
		case tok.Type == lexer.TOKEN_EOF, tok.Type == lexer.TOKEN_SEMICOLON:
			return strings.TrimSpace(p.input[start:tok.Position])
		case tok.Type == lexer.TOKEN_LPAREN:
			depth++
		case tok.Type == lexer.TOKEN_RPAREN:
			if depth == 0 {
				return strings.TrimSpace(p.input[start:tok.Position])
			}
			depth--
		case depth == 0 && (tok.Is("AND") || tok.Is("OR")):
			if tok.Position == start {
				// nothing before the connective; consume nothing
				return ""
			}
			return strings.TrimSpace(p.input[start:tok.Position])
		}
		p.next()
	}
}

func (p *parser) drop(text string, cause error) {
	if text == "" {
		text = p.peek().Raw
	}
	msg := fmt.Sprintf("condition '%s' could not be parsed and was ignored: %v", text, cause)
	p.opts.Logger.Debug("dropping condition", zap.String("condition", text), zap.Error(cause))
	if p.opts.Warn != nil {
		p.opts.Warn(msg)
	}
}

// ============================================================================
// TOKEN CURSOR
// ============================================================================

func (p *parser) peek() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *parser) next() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}
