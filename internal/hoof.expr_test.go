package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExprTokenizer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []ExprTokenType
	}{
		{
			name:     "identifier with sigil",
			input:    "$user",
			expected: []ExprTokenType{ExprTokenTypeIdentifier, ExprTokenTypeEOF},
		},
		{
			name:     "strict equality",
			input:    "a === b !== c",
			expected: []ExprTokenType{ExprTokenTypeIdentifier, ExprTokenTypeStrictEq, ExprTokenTypeIdentifier, ExprTokenTypeStrictNeq, ExprTokenTypeIdentifier, ExprTokenTypeEOF},
		},
		{
			name:     "member access after number",
			input:    "items.0.name",
			expected: []ExprTokenType{ExprTokenTypeIdentifier, ExprTokenTypeDot, ExprTokenTypeNumber, ExprTokenTypeDot, ExprTokenTypeIdentifier, ExprTokenTypeEOF},
		},
		{
			name:     "undefined keyword is nil",
			input:    "undefined",
			expected: []ExprTokenType{ExprTokenTypeNil, ExprTokenTypeEOF},
		},
		{
			name:     "object literal",
			input:    "{a: 1}",
			expected: []ExprTokenType{ExprTokenTypeLBrace, ExprTokenTypeIdentifier, ExprTokenTypeColon, ExprTokenTypeNumber, ExprTokenTypeRBrace, ExprTokenTypeEOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewExprTokenizer(tt.input).Tokenize()
			require.NoError(t, err)

			types := make([]ExprTokenType, len(tokens))
			for i, tok := range tokens {
				types[i] = tok.Type
			}
			assert.Equal(t, tt.expected, types)
		})
	}
}

func TestExprTokenizer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `"abc`},
		{"bare sigil", "$"},
		{"unexpected character", "a # b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExprTokenizer(tt.input).Tokenize()
			require.Error(t, err)

			var tokErr *ExprTokenError
			assert.ErrorAs(t, err, &tokErr)
		})
	}
}

func TestParseExpression_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"dangling operator", "1 +"},
		{"unclosed paren", "(a"},
		{"unclosed bracket", "a[1"},
		{"object without colon", "{a 1}"},
		{"call on literal", "1(2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExpression(tt.input)
			require.Error(t, err)
			assert.Equal(t, KindEvaluation, KindOf(err))
		})
	}
}

func TestEvaluateExpression(t *testing.T) {
	funcs := NewBuiltinFuncRegistry()
	scope := NewScope(map[string]any{
		"name":  "Ada",
		"count": 3,
		"price": 2.5,
		"tags":  []any{"go", "html"},
		"user": map[string]any{
			"name":   "Grace",
			"active": true,
			"roles":  []string{"admin"},
		},
		"empty": "",
	})

	tests := []struct {
		name     string
		input    string
		expected any
	}{
		{"string literal", `"hi"`, "hi"},
		{"number literal", "42", float64(42)},
		{"identifier", "name", "Ada"},
		{"sigil identifier", "$name", "Ada"},
		{"missing identifier", "nope", nil},
		{"member", "user.name", "Grace"},
		{"member of missing", "nope.name", nil},
		{"index", "tags[1]", "html"},
		{"numeric member", "tags.0", "go"},
		{"typed slice index", "user.roles[0]", "admin"},
		{"length property", "tags.length", float64(2)},
		{"addition", "count + 2", float64(5)},
		{"float arithmetic", "price * 2", float64(5)},
		{"modulo", "7 % 4", float64(3)},
		{"precedence", "1 + 2 * 3", float64(7)},
		{"grouping", "(1 + 2) * 3", float64(9)},
		{"unary minus", "-count", float64(-3)},
		{"concatenation", `name + "!"`, "Ada!"},
		{"concatenation with number", `"n" + 1`, "n1"},
		{"loose equality", `count == "3"`, true},
		{"strict equality int and float", "count === 3", true},
		{"strict equality across kinds", `count === "3"`, false},
		{"strict inequality across kinds", `count !== "3"`, true},
		{"strict equality strings", `name === "Ada"`, true},
		{"strict equality bool and number", "user.active === 1", false},
		{"strict equality nil", "nope === null", true},
		{"inequality", "name != \"Ada\"", false},
		{"comparison", "count >= 3", true},
		{"string comparison", `"a" < "b"`, true},
		{"and yields deciding operand", "empty && name", ""},
		{"or yields deciding operand", "empty || name", "Ada"},
		{"not", "!user.active", false},
		{"ternary", `count > 2 ? "many" : "few"`, "many"},
		{"array literal", "[1, name]", []any{float64(1), "Ada"}},
		{"object literal", "{a: 1, 'b': name}", map[string]any{"a": float64(1), "b": "Ada"}},
		{"function call", "upper(name)", "ADA"},
		{"nested call", "len(join(tags))", float64(7)},
		{"default function", `default(empty, "none")`, "none"},
		{"contains", `contains(tags, "go")`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EvaluateExpression(tt.input, funcs, scope)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEvaluateExpression_Errors(t *testing.T) {
	funcs := NewBuiltinFuncRegistry()
	scope := NewScope(map[string]any{"n": 1, "s": "x"})

	tests := []struct {
		name  string
		input string
	}{
		{"division by zero", "n / 0"},
		{"modulo by zero", "n % 0"},
		{"arithmetic on string", "s * 2"},
		{"unknown function", "nope(1)"},
		{"too many arguments", "upper(s, s)"},
		{"incomparable", "s < n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvaluateExpression(tt.input, funcs, scope)
			require.Error(t, err)
			assert.Equal(t, KindEvaluation, KindOf(err))
		})
	}
}

func TestEvaluateExpressionBool(t *testing.T) {
	scope := NewScope(map[string]any{"list": []any{}, "zero": 0, "word": "x"})

	tests := []struct {
		input    string
		expected bool
	}{
		{"list", false},
		{"zero", false},
		{"word", true},
		{"missing", false},
		{"!missing", true},
		{"word && !zero", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := EvaluateExpressionBool(tt.input, nil, scope)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExprEvaluator_RequireDefined(t *testing.T) {
	node, err := ParseExpression("missing")
	require.NoError(t, err)

	v, err := NewExprEvaluator(nil, NewScope(nil)).Evaluate(node)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = NewExprEvaluator(nil, NewScope(nil)).RequireDefined().Evaluate(node)
	require.Error(t, err)

	var evalErr *ExprEvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, ErrMsgExprUndefined, evalErr.Message)
}

func TestScope(t *testing.T) {
	root := NewScope(map[string]any{"a": 1, "b": 2})
	child := root.Child(map[string]any{"b": 3})

	v, ok := child.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, _ = child.Get("b")
	assert.Equal(t, 3, v, "inner frame shadows outer")

	v, _ = root.Get("b")
	assert.Equal(t, 2, v, "bindings never leak outward")

	assert.Equal(t, 1, child.Depth())
	assert.Equal(t, 0, root.Depth())
	assert.Same(t, root, child.Parent())
}
