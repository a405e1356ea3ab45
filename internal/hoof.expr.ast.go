package internal

import (
	"fmt"
	"strings"
)

// ExprNodeType identifies the type of expression AST node
type ExprNodeType int

// Expression node type constants
const (
	ExprNodeTypeLiteral ExprNodeType = iota
	ExprNodeTypeIdentifier
	ExprNodeTypeUnary
	ExprNodeTypeBinary
	ExprNodeTypeCall
	ExprNodeTypeMember
	ExprNodeTypeIndex
	ExprNodeTypeArray
	ExprNodeTypeObject
	ExprNodeTypeTernary
)

// Expression node type names for debugging
const (
	ExprNodeTypeNameLiteral    = "LITERAL"
	ExprNodeTypeNameIdentifier = "IDENTIFIER"
	ExprNodeTypeNameUnary      = "UNARY"
	ExprNodeTypeNameBinary     = "BINARY"
	ExprNodeTypeNameCall       = "CALL"
	ExprNodeTypeNameMember     = "MEMBER"
	ExprNodeTypeNameIndex      = "INDEX"
	ExprNodeTypeNameArray      = "ARRAY"
	ExprNodeTypeNameObject     = "OBJECT"
	ExprNodeTypeNameTernary    = "TERNARY"
)

// String returns the string representation of the node type
func (t ExprNodeType) String() string {
	switch t {
	case ExprNodeTypeIdentifier:
		return ExprNodeTypeNameIdentifier
	case ExprNodeTypeUnary:
		return ExprNodeTypeNameUnary
	case ExprNodeTypeBinary:
		return ExprNodeTypeNameBinary
	case ExprNodeTypeCall:
		return ExprNodeTypeNameCall
	case ExprNodeTypeMember:
		return ExprNodeTypeNameMember
	case ExprNodeTypeIndex:
		return ExprNodeTypeNameIndex
	case ExprNodeTypeArray:
		return ExprNodeTypeNameArray
	case ExprNodeTypeObject:
		return ExprNodeTypeNameObject
	case ExprNodeTypeTernary:
		return ExprNodeTypeNameTernary
	default:
		return ExprNodeTypeNameLiteral
	}
}

// ExprNode is the interface for all expression AST nodes
type ExprNode interface {
	// Type returns the node type
	Type() ExprNodeType
	// String returns a string representation for debugging
	String() string
	exprNode()
}

// LiteralKind identifies the kind of literal value
type LiteralKind int

// Literal kind constants
const (
	LiteralKindString LiteralKind = iota
	LiteralKindNumber
	LiteralKindBool
	LiteralKindNil
)

// LiteralNode represents a literal value (string, number, bool, nil)
type LiteralNode struct {
	Value any
	Kind  LiteralKind
}

func (n *LiteralNode) Type() ExprNodeType { return ExprNodeTypeLiteral }
func (n *LiteralNode) exprNode()          {}

func (n *LiteralNode) String() string {
	switch n.Kind {
	case LiteralKindString:
		return fmt.Sprintf("%q", n.Value)
	case LiteralKindNil:
		return ExprKeywordNil
	default:
		return fmt.Sprintf("%v", n.Value)
	}
}

// IdentifierNode represents a variable reference
type IdentifierNode struct {
	Name string
}

func (n *IdentifierNode) Type() ExprNodeType { return ExprNodeTypeIdentifier }
func (n *IdentifierNode) exprNode()          {}
func (n *IdentifierNode) String() string     { return n.Name }

// UnaryNode represents a unary operation (!x, -x)
type UnaryNode struct {
	Op    ExprTokenType
	Right ExprNode
}

func (n *UnaryNode) Type() ExprNodeType { return ExprNodeTypeUnary }
func (n *UnaryNode) exprNode()          {}

func (n *UnaryNode) String() string {
	return fmt.Sprintf("(%s %s)", n.Op, n.Right.String())
}

// BinaryNode represents a binary operation (e.g., a && b)
type BinaryNode struct {
	Left  ExprNode
	Op    ExprTokenType
	Right ExprNode
}

func (n *BinaryNode) Type() ExprNodeType { return ExprNodeTypeBinary }
func (n *BinaryNode) exprNode()          {}

func (n *BinaryNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.Left.String(), n.Op, n.Right.String())
}

// CallNode represents a builtin function call
type CallNode struct {
	Name string
	Args []ExprNode
}

func (n *CallNode) Type() ExprNodeType { return ExprNodeTypeCall }
func (n *CallNode) exprNode()          {}

func (n *CallNode) String() string {
	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(args, ", "))
}

// MemberNode represents property access by name (obj.name)
type MemberNode struct {
	Object   ExprNode
	Property string
}

func (n *MemberNode) Type() ExprNodeType { return ExprNodeTypeMember }
func (n *MemberNode) exprNode()          {}

func (n *MemberNode) String() string {
	return fmt.Sprintf("%s.%s", n.Object.String(), n.Property)
}

// IndexNode represents computed access (obj[expr])
type IndexNode struct {
	Object ExprNode
	Index  ExprNode
}

func (n *IndexNode) Type() ExprNodeType { return ExprNodeTypeIndex }
func (n *IndexNode) exprNode()          {}

func (n *IndexNode) String() string {
	return fmt.Sprintf("%s[%s]", n.Object.String(), n.Index.String())
}

// ArrayNode represents an array literal
type ArrayNode struct {
	Elements []ExprNode
}

func (n *ArrayNode) Type() ExprNodeType { return ExprNodeTypeArray }
func (n *ArrayNode) exprNode()          {}

func (n *ArrayNode) String() string {
	parts := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectEntry is one key/value pair of an object literal.
type ObjectEntry struct {
	Key   string
	Value ExprNode
}

// ObjectNode represents an object literal. Entry order is preserved.
type ObjectNode struct {
	Entries []ObjectEntry
}

func (n *ObjectNode) Type() ExprNodeType { return ExprNodeTypeObject }
func (n *ObjectNode) exprNode()          {}

func (n *ObjectNode) String() string {
	parts := make([]string, len(n.Entries))
	for i, entry := range n.Entries {
		parts[i] = fmt.Sprintf("%q: %s", entry.Key, entry.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// TernaryNode represents cond ? then : else
type TernaryNode struct {
	Cond ExprNode
	Then ExprNode
	Else ExprNode
}

func (n *TernaryNode) Type() ExprNodeType { return ExprNodeTypeTernary }
func (n *TernaryNode) exprNode()          {}

func (n *TernaryNode) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", n.Cond.String(), n.Then.String(), n.Else.String())
}

// Constructors

func NewLiteralString(value string) *LiteralNode {
	return &LiteralNode{Value: value, Kind: LiteralKindString}
}

func NewLiteralNumber(value float64) *LiteralNode {
	return &LiteralNode{Value: value, Kind: LiteralKindNumber}
}

func NewLiteralBool(value bool) *LiteralNode {
	return &LiteralNode{Value: value, Kind: LiteralKindBool}
}

func NewLiteralNil() *LiteralNode {
	return &LiteralNode{Value: nil, Kind: LiteralKindNil}
}

func NewIdentifier(name string) *IdentifierNode {
	return &IdentifierNode{Name: name}
}

func NewUnary(op ExprTokenType, right ExprNode) *UnaryNode {
	return &UnaryNode{Op: op, Right: right}
}

func NewBinary(left ExprNode, op ExprTokenType, right ExprNode) *BinaryNode {
	return &BinaryNode{Left: left, Op: op, Right: right}
}

func NewCall(name string, args []ExprNode) *CallNode {
	return &CallNode{Name: name, Args: args}
}
