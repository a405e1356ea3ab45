package internal

import (
	"fmt"
	"strconv"
)

// ExprParser parses expression tokens into an AST
type ExprParser struct {
	tokens []ExprToken
	pos    int
}

// NewExprParser creates a new expression parser
func NewExprParser(tokens []ExprToken) *ExprParser {
	return &ExprParser{
		tokens: tokens,
		pos:    0,
	}
}

// Parse parses the expression and returns the root AST node
func (p *ExprParser) Parse() (ExprNode, error) {
	if len(p.tokens) == 0 || (len(p.tokens) == 1 && p.tokens[0].Type == ExprTokenTypeEOF) {
		return nil, NewExprParseError(ErrMsgExprEmptyExpression, 0, "")
	}

	node, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	if !p.isAtEnd() {
		return nil, NewExprParseError(ErrMsgExprUnexpectedToken, p.peek().Pos, p.peek().Value)
	}

	return node, nil
}

// parseTernary parses cond ? a : b (lowest precedence, right associative)
func (p *ExprParser) parseTernary() (ExprNode, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if !p.match(ExprTokenTypeQuestion) {
		return cond, nil
	}

	then, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if !p.match(ExprTokenTypeColon) {
		return nil, NewExprParseError(ErrMsgExprExpectedColon, p.currentPos(), "")
	}
	otherwise, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	return &TernaryNode{Cond: cond, Then: then, Else: otherwise}, nil
}

// parseOr parses OR expressions
func (p *ExprParser) parseOr() (ExprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.match(ExprTokenTypeOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, ExprTokenTypeOr, right)
	}

	return left, nil
}

// parseAnd parses AND expressions
func (p *ExprParser) parseAnd() (ExprNode, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	for p.match(ExprTokenTypeAnd) {
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, ExprTokenTypeAnd, right)
	}

	return left, nil
}

// parseEquality parses equality expressions (==, !=)
func (p *ExprParser) parseEquality() (ExprNode, error) {
	return p.parseBinaryLevel(p.parseComparison,
		ExprTokenTypeEq, ExprTokenTypeNeq, ExprTokenTypeStrictEq, ExprTokenTypeStrictNeq)
}

// parseComparison parses comparison expressions (<, >, <=, >=)
func (p *ExprParser) parseComparison() (ExprNode, error) {
	return p.parseBinaryLevel(p.parseAdditive, ExprTokenTypeLt, ExprTokenTypeGt, ExprTokenTypeLte, ExprTokenTypeGte)
}

// parseAdditive parses + and -
func (p *ExprParser) parseAdditive() (ExprNode, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, ExprTokenTypePlus, ExprTokenTypeMinus)
}

// parseMultiplicative parses *, / and %
func (p *ExprParser) parseMultiplicative() (ExprNode, error) {
	return p.parseBinaryLevel(p.parseUnary, ExprTokenTypeStar, ExprTokenTypeSlash, ExprTokenTypeMod)
}

// parseBinaryLevel parses a left-associative chain of the given operators.
func (p *ExprParser) parseBinaryLevel(next func() (ExprNode, error), ops ...ExprTokenType) (ExprNode, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for p.matchAny(ops...) {
		op := p.previous().Type
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = NewBinary(left, op, right)
	}

	return left, nil
}

// parseUnary parses unary expressions (!, -)
func (p *ExprParser) parseUnary() (ExprNode, error) {
	if p.matchAny(ExprTokenTypeNot, ExprTokenTypeMinus) {
		op := p.previous().Type
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NewUnary(op, right), nil
	}

	return p.parsePostfix()
}

// parsePostfix parses calls, member access and index access
func (p *ExprParser) parsePostfix() (ExprNode, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.check(ExprTokenTypeLParen):
			ident, ok := node.(*IdentifierNode)
			if !ok {
				return nil, NewExprParseError(ErrMsgExprNotCallable, p.peek().Pos, node.String())
			}
			p.advance()
			node, err = p.finishCall(ident.Name)
			if err != nil {
				return nil, err
			}

		case p.match(ExprTokenTypeDot):
			switch {
			case p.match(ExprTokenTypeIdentifier), p.match(ExprTokenTypeBool), p.match(ExprTokenTypeNil):
				node = &MemberNode{Object: node, Property: p.previous().Value}
			case p.match(ExprTokenTypeNumber):
				// items.0 is index access
				node = &IndexNode{Object: node, Index: NewLiteralNumber(p.previous().Literal.(float64))}
			default:
				return nil, NewExprParseError(ErrMsgExprExpectedProperty, p.currentPos(), "")
			}

		case p.match(ExprTokenTypeLBracket):
			index, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			if !p.match(ExprTokenTypeRBracket) {
				return nil, NewExprParseError(ErrMsgExprExpectedRBracket, p.currentPos(), "")
			}
			node = &IndexNode{Object: node, Index: index}

		default:
			return node, nil
		}
	}
}

// finishCall finishes parsing a function call after the opening paren
func (p *ExprParser) finishCall(name string) (ExprNode, error) {
	var args []ExprNode

	if !p.check(ExprTokenTypeRParen) {
		for {
			arg, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if !p.match(ExprTokenTypeComma) {
				break
			}
		}
	}

	if !p.match(ExprTokenTypeRParen) {
		return nil, NewExprParseError(ErrMsgExprExpectedRParen, p.currentPos(), "")
	}

	return NewCall(name, args), nil
}

// parsePrimary parses literals, identifiers, parenthesized expressions,
// array literals and object literals
func (p *ExprParser) parsePrimary() (ExprNode, error) {
	if p.match(ExprTokenTypeString) {
		return NewLiteralString(p.previous().Literal.(string)), nil
	}

	if p.match(ExprTokenTypeNumber) {
		return NewLiteralNumber(p.previous().Literal.(float64)), nil
	}

	if p.match(ExprTokenTypeBool) {
		return NewLiteralBool(p.previous().Literal.(bool)), nil
	}

	if p.match(ExprTokenTypeNil) {
		return NewLiteralNil(), nil
	}

	if p.match(ExprTokenTypeIdentifier) {
		return NewIdentifier(p.previous().Value), nil
	}

	if p.match(ExprTokenTypeLParen) {
		expr, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if !p.match(ExprTokenTypeRParen) {
			return nil, NewExprParseError(ErrMsgExprExpectedRParen, p.currentPos(), "")
		}
		return expr, nil
	}

	if p.match(ExprTokenTypeLBracket) {
		return p.finishArray()
	}

	if p.match(ExprTokenTypeLBrace) {
		return p.finishObject()
	}

	if p.isAtEnd() {
		return nil, NewExprParseError(ErrMsgExprUnexpectedEOF, p.currentPos(), "")
	}

	return nil, NewExprParseError(ErrMsgExprUnexpectedToken, p.peek().Pos, p.peek().Value)
}

// finishArray parses the elements of an array literal after [
func (p *ExprParser) finishArray() (ExprNode, error) {
	arr := &ArrayNode{}
	for !p.check(ExprTokenTypeRBracket) {
		el, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		arr.Elements = append(arr.Elements, el)
		if !p.match(ExprTokenTypeComma) {
			break
		}
	}
	if !p.match(ExprTokenTypeRBracket) {
		return nil, NewExprParseError(ErrMsgExprExpectedRBracket, p.currentPos(), "")
	}
	return arr, nil
}

// finishObject parses the entries of an object literal after {
// Keys are identifiers, strings or numbers.
func (p *ExprParser) finishObject() (ExprNode, error) {
	obj := &ObjectNode{}
	for !p.check(ExprTokenTypeRBrace) {
		var key string
		switch {
		case p.match(ExprTokenTypeIdentifier), p.match(ExprTokenTypeBool), p.match(ExprTokenTypeNil):
			key = p.previous().Value
		case p.match(ExprTokenTypeString):
			key = p.previous().Literal.(string)
		case p.match(ExprTokenTypeNumber):
			key = strconv.FormatFloat(p.previous().Literal.(float64), 'f', -1, 64)
		default:
			return nil, NewExprParseError(ErrMsgExprExpectedKey, p.currentPos(), p.peek().Value)
		}

		if !p.match(ExprTokenTypeColon) {
			return nil, NewExprParseError(ErrMsgExprExpectedColon, p.currentPos(), "")
		}

		value, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		obj.Entries = append(obj.Entries, ObjectEntry{Key: key, Value: value})

		if !p.match(ExprTokenTypeComma) {
			break
		}
	}
	if !p.match(ExprTokenTypeRBrace) {
		return nil, NewExprParseError(ErrMsgExprExpectedRBrace, p.currentPos(), "")
	}
	return obj, nil
}

// match checks if the current token matches and advances if so
func (p *ExprParser) match(tokenType ExprTokenType) bool {
	if p.check(tokenType) {
		p.advance()
		return true
	}
	return false
}

// matchAny checks if the current token matches any of the given types
func (p *ExprParser) matchAny(types ...ExprTokenType) bool {
	for _, t := range types {
		if p.match(t) {
			return true
		}
	}
	return false
}

// check returns true if the current token is of the given type
func (p *ExprParser) check(tokenType ExprTokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tokenType
}

// advance moves to the next token and returns the previous one
func (p *ExprParser) advance() ExprToken {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

// peek returns the current token
func (p *ExprParser) peek() ExprToken {
	if p.pos >= len(p.tokens) {
		return ExprToken{Type: ExprTokenTypeEOF, Pos: p.currentPos()}
	}
	return p.tokens[p.pos]
}

// previous returns the previous token
func (p *ExprParser) previous() ExprToken {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

// isAtEnd returns true if we've consumed all tokens
func (p *ExprParser) isAtEnd() bool {
	return p.pos >= len(p.tokens) || p.tokens[p.pos].Type == ExprTokenTypeEOF
}

// currentPos returns the current position for error reporting
func (p *ExprParser) currentPos() int {
	if p.pos >= len(p.tokens) {
		if len(p.tokens) > 0 {
			return p.tokens[len(p.tokens)-1].Pos
		}
		return 0
	}
	return p.tokens[p.pos].Pos
}

// ExprParseError represents an error during expression parsing
type ExprParseError struct {
	Message string
	Pos     int
	Detail  string
}

// NewExprParseError creates a new expression parse error
func NewExprParseError(message string, pos int, detail string) *ExprParseError {
	return &ExprParseError{
		Message: message,
		Pos:     pos,
		Detail:  detail,
	}
}

// Error implements the error interface
func (e *ExprParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s at position %d: %s", e.Message, e.Pos, e.Detail)
	}
	return fmt.Sprintf("%s at position %d", e.Message, e.Pos)
}

// Expression parser error messages
const (
	ErrMsgExprEmptyExpression  = "empty expression"
	ErrMsgExprUnexpectedToken  = "unexpected token"
	ErrMsgExprExpectedRParen   = "expected closing parenthesis"
	ErrMsgExprExpectedRBracket = "expected closing bracket"
	ErrMsgExprExpectedRBrace   = "expected closing brace"
	ErrMsgExprExpectedColon    = "expected colon"
	ErrMsgExprExpectedKey      = "expected object key"
	ErrMsgExprExpectedProperty = "expected property name"
	ErrMsgExprNotCallable      = "expression is not callable"
	ErrMsgExprUnexpectedEOF    = "unexpected end of expression"
)

// ParseExpression tokenizes and parses an expression string
func ParseExpression(expr string) (ExprNode, error) {
	tokenizer := NewExprTokenizer(expr)
	tokens, err := tokenizer.Tokenize()
	if err != nil {
		return nil, err
	}

	parser := NewExprParser(tokens)
	return parser.Parse()
}
