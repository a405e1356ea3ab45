package internal

import (
	"fmt"
	"math"
)

// ValueLookup resolves identifiers during evaluation.
type ValueLookup interface {
	Get(name string) (any, bool)
}

// ExprEvaluator evaluates expression AST nodes
type ExprEvaluator struct {
	funcs          *FuncRegistry
	ctx            ValueLookup
	requireDefined bool
}

// NewExprEvaluator creates a new expression evaluator
func NewExprEvaluator(funcs *FuncRegistry, ctx ValueLookup) *ExprEvaluator {
	return &ExprEvaluator{
		funcs: funcs,
		ctx:   ctx,
	}
}

// RequireDefined makes lookups of unbound identifiers fail instead of
// yielding nil.
func (e *ExprEvaluator) RequireDefined() *ExprEvaluator {
	e.requireDefined = true
	return e
}

// Evaluate evaluates an expression and returns the result
func (e *ExprEvaluator) Evaluate(node ExprNode) (any, error) {
	if node == nil {
		return nil, NewExprEvalError(ErrMsgExprNilNode, "")
	}

	switch n := node.(type) {
	case *LiteralNode:
		return n.Value, nil
	case *IdentifierNode:
		return e.evaluateIdentifier(n)
	case *UnaryNode:
		return e.evaluateUnary(n)
	case *BinaryNode:
		return e.evaluateBinary(n)
	case *CallNode:
		return e.evaluateCall(n)
	case *MemberNode:
		obj, err := e.Evaluate(n.Object)
		if err != nil {
			return nil, err
		}
		return lookupMember(obj, n.Property), nil
	case *IndexNode:
		return e.evaluateIndex(n)
	case *ArrayNode:
		return e.evaluateArray(n)
	case *ObjectNode:
		return e.evaluateObject(n)
	case *TernaryNode:
		return e.evaluateTernary(n)
	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownNodeType, fmt.Sprintf("%T", node))
	}
}

// EvaluateBool evaluates an expression and coerces the result to a boolean
func (e *ExprEvaluator) EvaluateBool(node ExprNode) (bool, error) {
	result, err := e.Evaluate(node)
	if err != nil {
		return false, err
	}
	return isTruthy(result), nil
}

func (e *ExprEvaluator) evaluateIdentifier(node *IdentifierNode) (any, error) {
	if e.ctx == nil {
		return nil, NewExprEvalError(ErrMsgExprNoContext, node.Name)
	}

	val, found := e.ctx.Get(node.Name)
	if !found {
		if e.requireDefined {
			return nil, NewExprEvalError(ErrMsgExprUndefined, node.Name)
		}
		return nil, nil // missing variables are nil, not an error
	}
	return val, nil
}

func (e *ExprEvaluator) evaluateUnary(node *UnaryNode) (any, error) {
	right, err := e.Evaluate(node.Right)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case ExprTokenTypeNot:
		return !isTruthy(right), nil
	case ExprTokenTypeMinus:
		n, ok := toNumber(right)
		if !ok {
			return nil, NewExprEvalError(ErrMsgExprNotNumeric, fmt.Sprintf("%T", right))
		}
		return -n, nil
	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownOperator, string(node.Op))
	}
}

func (e *ExprEvaluator) evaluateBinary(node *BinaryNode) (any, error) {
	// && and || short-circuit and yield the deciding operand
	if node.Op == ExprTokenTypeAnd || node.Op == ExprTokenTypeOr {
		left, err := e.Evaluate(node.Left)
		if err != nil {
			return nil, err
		}
		if node.Op == ExprTokenTypeAnd && !isTruthy(left) {
			return left, nil
		}
		if node.Op == ExprTokenTypeOr && isTruthy(left) {
			return left, nil
		}
		return e.Evaluate(node.Right)
	}

	left, err := e.Evaluate(node.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.Evaluate(node.Right)
	if err != nil {
		return nil, err
	}

	switch node.Op {
	case ExprTokenTypeEq:
		return compareEqual(left, right), nil
	case ExprTokenTypeNeq:
		return !compareEqual(left, right), nil
	case ExprTokenTypeStrictEq:
		return strictEqual(left, right), nil
	case ExprTokenTypeStrictNeq:
		return !strictEqual(left, right), nil
	case ExprTokenTypeLt, ExprTokenTypeGt, ExprTokenTypeLte, ExprTokenTypeGte:
		order, err := compareOrder(left, right)
		if err != nil {
			return nil, err
		}
		switch node.Op {
		case ExprTokenTypeLt:
			return order < 0, nil
		case ExprTokenTypeGt:
			return order > 0, nil
		case ExprTokenTypeLte:
			return order <= 0, nil
		default:
			return order >= 0, nil
		}
	case ExprTokenTypePlus:
		return addValues(left, right)
	case ExprTokenTypeMinus, ExprTokenTypeStar, ExprTokenTypeSlash, ExprTokenTypeMod:
		return arithmetic(node.Op, left, right)
	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownOperator, string(node.Op))
	}
}

func (e *ExprEvaluator) evaluateCall(node *CallNode) (any, error) {
	if e.funcs == nil {
		return nil, NewExprEvalError(ErrMsgExprNoFuncRegistry, node.Name)
	}

	args := make([]any, len(node.Args))
	for i, argNode := range node.Args {
		val, err := e.Evaluate(argNode)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}

	return e.funcs.Call(node.Name, args)
}

func (e *ExprEvaluator) evaluateIndex(node *IndexNode) (any, error) {
	obj, err := e.Evaluate(node.Object)
	if err != nil {
		return nil, err
	}
	idx, err := e.Evaluate(node.Index)
	if err != nil {
		return nil, err
	}
	return lookupIndex(obj, idx), nil
}

func (e *ExprEvaluator) evaluateArray(node *ArrayNode) (any, error) {
	out := make([]any, len(node.Elements))
	for i, el := range node.Elements {
		val, err := e.Evaluate(el)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

func (e *ExprEvaluator) evaluateObject(node *ObjectNode) (any, error) {
	out := make(map[string]any, len(node.Entries))
	for _, entry := range node.Entries {
		val, err := e.Evaluate(entry.Value)
		if err != nil {
			return nil, err
		}
		out[entry.Key] = val
	}
	return out, nil
}

func (e *ExprEvaluator) evaluateTernary(node *TernaryNode) (any, error) {
	cond, err := e.EvaluateBool(node.Cond)
	if err != nil {
		return nil, err
	}
	if cond {
		return e.Evaluate(node.Then)
	}
	return e.Evaluate(node.Else)
}

// addValues concatenates when either side is a string, otherwise adds numbers.
func addValues(left, right any) (any, error) {
	_, leftIsStr := left.(string)
	_, rightIsStr := right.(string)
	if leftIsStr || rightIsStr {
		return Stringify(left) + Stringify(right), nil
	}
	return arithmetic(ExprTokenTypePlus, left, right)
}

func arithmetic(op ExprTokenType, left, right any) (any, error) {
	a, aOK := toNumber(left)
	b, bOK := toNumber(right)
	if !aOK || !bOK {
		return nil, NewExprEvalError(ErrMsgExprNotNumeric, fmt.Sprintf("%T %s %T", left, op, right))
	}

	switch op {
	case ExprTokenTypePlus:
		return a + b, nil
	case ExprTokenTypeMinus:
		return a - b, nil
	case ExprTokenTypeStar:
		return a * b, nil
	case ExprTokenTypeSlash:
		if b == 0 {
			return nil, NewExprEvalError(ErrMsgExprDivisionByZero, "")
		}
		return a / b, nil
	case ExprTokenTypeMod:
		if b == 0 {
			return nil, NewExprEvalError(ErrMsgExprDivisionByZero, "")
		}
		return math.Mod(a, b), nil
	default:
		return nil, NewExprEvalError(ErrMsgExprUnknownOperator, string(op))
	}
}

// ExprEvalError represents an expression evaluation error
type ExprEvalError struct {
	Message string
	Detail  string
}

// NewExprEvalError creates a new expression evaluation error
func NewExprEvalError(message, detail string) *ExprEvalError {
	return &ExprEvalError{
		Message: message,
		Detail:  detail,
	}
}

// Error implements the error interface
func (e *ExprEvalError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf(ErrFmtWithPath, e.Message, e.Detail)
	}
	return e.Message
}

// Expression evaluator error messages
const (
	ErrMsgExprNilNode         = "nil expression node"
	ErrMsgExprUnknownNodeType = "unknown expression node type"
	ErrMsgExprNoContext       = "no scope available for variable lookup"
	ErrMsgExprUnknownOperator = "unknown operator"
	ErrMsgExprNoFuncRegistry  = "no function registry available"
	ErrMsgExprTypeMismatch    = "type mismatch in comparison"
	ErrMsgExprNotNumeric      = "arithmetic on non-numeric operands"
	ErrMsgExprDivisionByZero  = "division by zero"
	ErrMsgExprUndefined       = "undefined variable"
)

// EvaluateExpression parses and evaluates an expression string
func EvaluateExpression(expr string, funcs *FuncRegistry, ctx ValueLookup) (any, error) {
	node, err := ParseExpression(expr)
	if err != nil {
		return nil, err
	}
	return NewExprEvaluator(funcs, ctx).Evaluate(node)
}

// EvaluateExpressionBool parses and evaluates an expression as a boolean
func EvaluateExpressionBool(expr string, funcs *FuncRegistry, ctx ValueLookup) (bool, error) {
	node, err := ParseExpression(expr)
	if err != nil {
		return false, err
	}
	return NewExprEvaluator(funcs, ctx).EvaluateBool(node)
}
