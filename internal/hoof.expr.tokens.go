package internal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ExprTokenType represents the type of an expression token
type ExprTokenType string

// Expression token type constants
const (
	ExprTokenTypeIdentifier ExprTokenType = "IDENT"
	ExprTokenTypeString     ExprTokenType = "STRING"
	ExprTokenTypeNumber     ExprTokenType = "NUMBER"
	ExprTokenTypeBool       ExprTokenType = "BOOL"
	ExprTokenTypeNil        ExprTokenType = "NIL"
	ExprTokenTypeLParen     ExprTokenType = "LPAREN"
	ExprTokenTypeRParen     ExprTokenType = "RPAREN"
	ExprTokenTypeLBracket   ExprTokenType = "LBRACKET"
	ExprTokenTypeRBracket   ExprTokenType = "RBRACKET"
	ExprTokenTypeLBrace     ExprTokenType = "LBRACE"
	ExprTokenTypeRBrace     ExprTokenType = "RBRACE"
	ExprTokenTypeComma      ExprTokenType = "COMMA"
	ExprTokenTypeColon      ExprTokenType = "COLON"
	ExprTokenTypeDot        ExprTokenType = "DOT"
	ExprTokenTypeQuestion   ExprTokenType = "QUESTION"

	// Operators
	ExprTokenTypeAnd       ExprTokenType = "AND"
	ExprTokenTypeOr        ExprTokenType = "OR"
	ExprTokenTypeNot       ExprTokenType = "NOT"
	ExprTokenTypeEq        ExprTokenType = "EQ"
	ExprTokenTypeNeq       ExprTokenType = "NEQ"
	ExprTokenTypeStrictEq  ExprTokenType = "STRICT_EQ"
	ExprTokenTypeStrictNeq ExprTokenType = "STRICT_NEQ"
	ExprTokenTypeLt        ExprTokenType = "LT"
	ExprTokenTypeGt        ExprTokenType = "GT"
	ExprTokenTypeLte       ExprTokenType = "LTE"
	ExprTokenTypeGte       ExprTokenType = "GTE"
	ExprTokenTypePlus      ExprTokenType = "PLUS"
	ExprTokenTypeMinus     ExprTokenType = "MINUS"
	ExprTokenTypeStar      ExprTokenType = "STAR"
	ExprTokenTypeSlash     ExprTokenType = "SLASH"
	ExprTokenTypeMod       ExprTokenType = "MOD"

	ExprTokenTypeEOF ExprTokenType = "EOF"
)

// Expression operator strings
const (
	ExprOpAnd       = "&&"
	ExprOpOr        = "||"
	ExprOpNot       = "!"
	ExprOpEq        = "=="
	ExprOpNeq       = "!="
	ExprOpStrictEq  = "==="
	ExprOpStrictNeq = "!=="
	ExprOpLt        = "<"
	ExprOpGt        = ">"
	ExprOpLte       = "<="
	ExprOpGte       = ">="
	ExprOpPlus      = "+"
	ExprOpMinus     = "-"
	ExprOpStar      = "*"
	ExprOpSlash     = "/"
	ExprOpMod       = "%"
)

// Expression keyword constants
const (
	ExprKeywordTrue      = "true"
	ExprKeywordFalse     = "false"
	ExprKeywordNil       = "nil"
	ExprKeywordNull      = "null"
	ExprKeywordUndefined = "undefined"
)

// ExprVariableSigil is accepted in front of identifiers and ignored.
const ExprVariableSigil = '$'

// ExprToken represents a token in an expression
type ExprToken struct {
	Type    ExprTokenType
	Value   string
	Pos     int
	Literal any // Parsed value for literals (string, float64, bool, nil)
}

// String returns the string representation of the token
func (t ExprToken) String() string {
	if t.Value != "" {
		return fmt.Sprintf("%s(%s)", t.Type, t.Value)
	}
	return string(t.Type)
}

// ExprTokenizer tokenizes expression strings
type ExprTokenizer struct {
	input string
	pos   int
	len   int
}

// NewExprTokenizer creates a new expression tokenizer
func NewExprTokenizer(input string) *ExprTokenizer {
	return &ExprTokenizer{
		input: input,
		pos:   0,
		len:   len(input),
	}
}

// Tokenize converts the input string into a slice of tokens
func (t *ExprTokenizer) Tokenize() ([]ExprToken, error) {
	var tokens []ExprToken

	for {
		t.skipWhitespace()

		if t.pos >= t.len {
			tokens = append(tokens, ExprToken{Type: ExprTokenTypeEOF, Pos: t.pos})
			break
		}

		token, err := t.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

// nextToken reads the next token from the input
func (t *ExprTokenizer) nextToken() (ExprToken, error) {
	startPos := t.pos
	ch := t.peek()

	if ch == '"' || ch == '\'' || ch == '`' {
		return t.readString()
	}

	if isDigit(ch) {
		return t.readNumber()
	}

	if isIdentStart(ch) || ch == ExprVariableSigil {
		return t.readIdentifier()
	}

	// Three-character operators
	if t.pos+2 < t.len {
		switch t.input[t.pos : t.pos+3] {
		case ExprOpStrictEq:
			t.pos += 3
			return ExprToken{Type: ExprTokenTypeStrictEq, Value: ExprOpStrictEq, Pos: startPos}, nil
		case ExprOpStrictNeq:
			t.pos += 3
			return ExprToken{Type: ExprTokenTypeStrictNeq, Value: ExprOpStrictNeq, Pos: startPos}, nil
		}
	}

	// Two-character operators
	if t.pos+1 < t.len {
		switch t.input[t.pos : t.pos+2] {
		case ExprOpAnd:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeAnd, Value: ExprOpAnd, Pos: startPos}, nil
		case ExprOpOr:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeOr, Value: ExprOpOr, Pos: startPos}, nil
		case ExprOpEq:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeEq, Value: ExprOpEq, Pos: startPos}, nil
		case ExprOpNeq:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeNeq, Value: ExprOpNeq, Pos: startPos}, nil
		case ExprOpLte:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeLte, Value: ExprOpLte, Pos: startPos}, nil
		case ExprOpGte:
			t.pos += 2
			return ExprToken{Type: ExprTokenTypeGte, Value: ExprOpGte, Pos: startPos}, nil
		}
	}

	t.pos++
	switch ch {
	case '(':
		return ExprToken{Type: ExprTokenTypeLParen, Value: "(", Pos: startPos}, nil
	case ')':
		return ExprToken{Type: ExprTokenTypeRParen, Value: ")", Pos: startPos}, nil
	case '[':
		return ExprToken{Type: ExprTokenTypeLBracket, Value: "[", Pos: startPos}, nil
	case ']':
		return ExprToken{Type: ExprTokenTypeRBracket, Value: "]", Pos: startPos}, nil
	case '{':
		return ExprToken{Type: ExprTokenTypeLBrace, Value: "{", Pos: startPos}, nil
	case '}':
		return ExprToken{Type: ExprTokenTypeRBrace, Value: "}", Pos: startPos}, nil
	case ',':
		return ExprToken{Type: ExprTokenTypeComma, Value: ",", Pos: startPos}, nil
	case ':':
		return ExprToken{Type: ExprTokenTypeColon, Value: ":", Pos: startPos}, nil
	case '.':
		return ExprToken{Type: ExprTokenTypeDot, Value: ".", Pos: startPos}, nil
	case '?':
		return ExprToken{Type: ExprTokenTypeQuestion, Value: "?", Pos: startPos}, nil
	case '!':
		return ExprToken{Type: ExprTokenTypeNot, Value: ExprOpNot, Pos: startPos}, nil
	case '<':
		return ExprToken{Type: ExprTokenTypeLt, Value: ExprOpLt, Pos: startPos}, nil
	case '>':
		return ExprToken{Type: ExprTokenTypeGt, Value: ExprOpGt, Pos: startPos}, nil
	case '+':
		return ExprToken{Type: ExprTokenTypePlus, Value: ExprOpPlus, Pos: startPos}, nil
	case '-':
		return ExprToken{Type: ExprTokenTypeMinus, Value: ExprOpMinus, Pos: startPos}, nil
	case '*':
		return ExprToken{Type: ExprTokenTypeStar, Value: ExprOpStar, Pos: startPos}, nil
	case '/':
		return ExprToken{Type: ExprTokenTypeSlash, Value: ExprOpSlash, Pos: startPos}, nil
	case '%':
		return ExprToken{Type: ExprTokenTypeMod, Value: ExprOpMod, Pos: startPos}, nil
	}

	return ExprToken{}, NewExprTokenError(ErrMsgExprUnexpectedChar, startPos, string(ch))
}

// readString reads a string literal
func (t *ExprTokenizer) readString() (ExprToken, error) {
	startPos := t.pos
	quote := t.input[t.pos]
	t.pos++

	var sb strings.Builder
	for t.pos < t.len {
		ch := t.input[t.pos]
		if ch == quote {
			t.pos++
			value := sb.String()
			return ExprToken{
				Type:    ExprTokenTypeString,
				Value:   value,
				Pos:     startPos,
				Literal: value,
			}, nil
		}
		if ch == '\\' && t.pos+1 < t.len {
			t.pos++
			escaped := t.input[t.pos]
			switch escaped {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(escaped)
			}
			t.pos++
			continue
		}
		sb.WriteByte(ch)
		t.pos++
	}

	return ExprToken{}, NewExprTokenError(ErrMsgExprUnterminatedStr, startPos, "")
}

// readNumber reads a numeric literal
func (t *ExprTokenizer) readNumber() (ExprToken, error) {
	startPos := t.pos
	hasDecimal := false

	for t.pos < t.len {
		ch := t.input[t.pos]
		if ch == '.' {
			// "1..x" or "items.0.name" style access is not a decimal point
			if hasDecimal || t.pos+1 >= t.len || !isDigit(t.input[t.pos+1]) {
				break
			}
			hasDecimal = true
			t.pos++
			continue
		}
		if !isDigit(ch) {
			break
		}
		t.pos++
	}

	value := t.input[startPos:t.pos]
	literal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return ExprToken{}, NewExprTokenError(ErrMsgExprInvalidNumber, startPos, value)
	}

	return ExprToken{
		Type:    ExprTokenTypeNumber,
		Value:   value,
		Pos:     startPos,
		Literal: literal,
	}, nil
}

// readIdentifier reads an identifier or keyword. A leading $ is dropped.
func (t *ExprTokenizer) readIdentifier() (ExprToken, error) {
	startPos := t.pos
	if t.input[t.pos] == ExprVariableSigil {
		t.pos++
		if t.pos >= t.len || !isIdentStart(t.input[t.pos]) {
			return ExprToken{}, NewExprTokenError(ErrMsgExprUnexpectedChar, startPos, string(ExprVariableSigil))
		}
	}
	nameStart := t.pos

	for t.pos < t.len && isIdentPart(t.input[t.pos]) {
		t.pos++
	}

	value := t.input[nameStart:t.pos]

	switch value {
	case ExprKeywordTrue:
		return ExprToken{Type: ExprTokenTypeBool, Value: value, Pos: startPos, Literal: true}, nil
	case ExprKeywordFalse:
		return ExprToken{Type: ExprTokenTypeBool, Value: value, Pos: startPos, Literal: false}, nil
	case ExprKeywordNil, ExprKeywordNull, ExprKeywordUndefined:
		return ExprToken{Type: ExprTokenTypeNil, Value: value, Pos: startPos, Literal: nil}, nil
	}

	return ExprToken{Type: ExprTokenTypeIdentifier, Value: value, Pos: startPos}, nil
}

// peek returns the current character without advancing
func (t *ExprTokenizer) peek() byte {
	if t.pos >= t.len {
		return 0
	}
	return t.input[t.pos]
}

// skipWhitespace skips whitespace characters
func (t *ExprTokenizer) skipWhitespace() {
	for t.pos < t.len && unicode.IsSpace(rune(t.input[t.pos])) {
		t.pos++
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// ExprTokenError represents an error during expression tokenization
type ExprTokenError struct {
	Message string
	Pos     int
	Detail  string
}

// NewExprTokenError creates a new expression token error
func NewExprTokenError(message string, pos int, detail string) *ExprTokenError {
	return &ExprTokenError{
		Message: message,
		Pos:     pos,
		Detail:  detail,
	}
}

// Error implements the error interface
func (e *ExprTokenError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s at position %d: %s", e.Message, e.Pos, e.Detail)
	}
	return fmt.Sprintf("%s at position %d", e.Message, e.Pos)
}

// Expression tokenizer error messages
const (
	ErrMsgExprUnexpectedChar  = "unexpected character"
	ErrMsgExprUnterminatedStr = "unterminated string literal"
	ErrMsgExprInvalidNumber   = "invalid number format"
)
