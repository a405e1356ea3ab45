package internal

import (
	"errors"
	"strings"
	"sync"
)

// Evaluator binds the expression sandbox to template scopes. Parsed
// expressions are memoized; it is safe for concurrent use.
type Evaluator struct {
	funcs  *FuncRegistry
	parsed sync.Map // string -> ExprNode
}

// NewEvaluator creates an evaluator using funcs for builtin calls. A nil
// registry gets the builtin set.
func NewEvaluator(funcs *FuncRegistry) *Evaluator {
	if funcs == nil {
		funcs = NewBuiltinFuncRegistry()
	}
	return &Evaluator{funcs: funcs}
}

func (e *Evaluator) parse(expr string) (ExprNode, error) {
	if cached, ok := e.parsed.Load(expr); ok {
		return cached.(ExprNode), nil
	}
	node, err := ParseExpression(expr)
	if err != nil {
		return nil, err
	}
	e.parsed.Store(expr, node)
	return node, nil
}

// Evaluate evaluates expr against scope. Surrounding placeholder
// delimiters are ignored, so "{{ $a }}" and "$a" are equivalent.
func (e *Evaluator) Evaluate(expr string, scope *Scope) (any, error) {
	node, err := e.parse(StripPlaceholders(expr))
	if err != nil {
		return nil, err
	}
	return NewExprEvaluator(e.funcs, scope).Evaluate(node)
}

// EvaluateBool evaluates expr and coerces the result to a boolean.
func (e *Evaluator) EvaluateBool(expr string, scope *Scope) (bool, error) {
	v, err := e.Evaluate(expr, scope)
	if err != nil {
		return false, err
	}
	return isTruthy(v), nil
}

// EvaluateEntries evaluates expr to key/value pairs. Object literals keep
// their written order; other maps are ordered by key.
func (e *Evaluator) EvaluateEntries(expr string, scope *Scope) ([]IterItem, error) {
	node, err := e.parse(StripPlaceholders(expr))
	if err != nil {
		return nil, err
	}
	evaluator := NewExprEvaluator(e.funcs, scope)

	obj, ok := node.(*ObjectNode)
	if !ok {
		v, err := evaluator.Evaluate(node)
		if err != nil {
			return nil, err
		}
		items, _ := Iterate(v)
		return items, nil
	}

	items := make([]IterItem, 0, len(obj.Entries))
	for _, entry := range obj.Entries {
		v, err := evaluator.Evaluate(entry.Value)
		if err != nil {
			return nil, err
		}
		items = append(items, IterItem{Key: entry.Key, Value: v})
	}
	return items, nil
}

// PlaceholderFunc is called for each placeholder found by ReplacePlaceholders.
// It returns the replacement text; keep reports whether the original
// placeholder text should be left in place instead.
type PlaceholderFunc func(expr string) (replacement string, keep bool, err error)

// ReplacePlaceholders rewrites every "{{ expr }}" occurrence in text.
// Matching is non-greedy; an unterminated "{{" is left as is.
func ReplacePlaceholders(text string, fn PlaceholderFunc) (string, error) {
	if !strings.Contains(text, PlaceholderOpen) {
		return text, nil
	}

	var sb strings.Builder
	rest := text
	for {
		start := strings.Index(rest, PlaceholderOpen)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(PlaceholderOpen):], PlaceholderClose)
		if end < 0 {
			break
		}
		end += start + len(PlaceholderOpen)

		full := rest[start : end+len(PlaceholderClose)]
		expr := rest[start+len(PlaceholderOpen) : end]
		sb.WriteString(rest[:start])

		replacement, keep, err := fn(expr)
		if err != nil {
			return "", err
		}
		if keep {
			sb.WriteString(full)
		} else {
			sb.WriteString(replacement)
		}
		rest = rest[end+len(PlaceholderClose):]
	}
	sb.WriteString(rest)
	return sb.String(), nil
}

// HasPlaceholder reports whether text contains a complete placeholder.
func HasPlaceholder(text string) bool {
	start := strings.Index(text, PlaceholderOpen)
	return start >= 0 && strings.Contains(text[start+len(PlaceholderOpen):], PlaceholderClose)
}

// StripPlaceholders removes placeholder delimiters, leaving the inner
// expressions. "{{ $a }}" becomes "$a".
func StripPlaceholders(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, PlaceholderOpen) && strings.HasSuffix(trimmed, PlaceholderClose) &&
		strings.Count(trimmed, PlaceholderOpen) == 1 {
		return strings.TrimSpace(trimmed[len(PlaceholderOpen) : len(trimmed)-len(PlaceholderClose)])
	}
	out, _ := ReplacePlaceholders(text, func(expr string) (string, bool, error) {
		return strings.TrimSpace(expr), false, nil
	})
	return out
}

// EvaluateDefined is Evaluate with unbound identifiers treated as errors.
func (e *Evaluator) EvaluateDefined(expr string, scope *Scope) (any, error) {
	node, err := e.parse(StripPlaceholders(expr))
	if err != nil {
		return nil, err
	}
	return NewExprEvaluator(e.funcs, scope).RequireDefined().Evaluate(node)
}

// IsUndefined reports whether err comes from an unbound identifier in
// EvaluateDefined.
func IsUndefined(err error) bool {
	var evalErr *ExprEvalError
	return errors.As(err, &evalErr) && evalErr.Message == ErrMsgExprUndefined
}

// placeholderGuard stands in for PlaceholderOpen inside substituted
// values so data is never evaluated as a template.
const placeholderGuard = "\uE000\uE001"

// GuardValue masks placeholder delimiters in a substituted value.
func GuardValue(s string) string {
	return strings.ReplaceAll(s, PlaceholderOpen, placeholderGuard)
}

// UnguardValue restores delimiters masked by GuardValue.
func UnguardValue(s string) string {
	return strings.ReplaceAll(s, placeholderGuard, PlaceholderOpen)
}
