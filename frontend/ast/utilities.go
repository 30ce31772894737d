package ast

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders a numeric value the way numeric literal types are displayed:
// plain decimal notation, switching to exponent form only for very large or small magnitudes
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}
	if abs := math.Abs(v); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		// 1e-7 rather than the zero-padded 1e-07
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Text returns the text of identifiers and literals, or "" for other nodes
func (s *Store) Text(id NodeID) string {
	n := s.Get(id)
	if n == nil {
		return ""
	}
	switch d := n.data.(type) {
	case *Identifier:
		return d.Text
	case *LiteralExpression:
		return d.Text
	case *QualifiedName:
		return s.Text(d.Left) + "." + s.Text(d.Right)
	}
	if n.kind.IsKeyword() {
		return TokenText(n.kind)
	}
	return ""
}

// DeclarationName returns the name node of a declaration, or NoNode for anonymous ones
func DeclarationName(n *Node) NodeID {
	if n == nil {
		return NoNode
	}
	switch d := n.data.(type) {
	case *TypeParameter:
		return d.Name
	case *Parameter:
		return d.Name
	case *PropertySignature:
		return d.Name
	case *SignatureDeclaration:
		return d.Name
	case *VariableDeclaration:
		return d.Name
	case *ClassDeclaration:
		return d.Name
	case *InterfaceDeclaration:
		return d.Name
	case *TypeAliasDeclaration:
		return d.Name
	case *EnumDeclaration:
		return d.Name
	case *EnumMember:
		return d.Name
	case *ModuleDeclaration:
		return d.Name
	case *ImportSpecifier:
		return d.Name
	case *PropertyAssignment:
		return d.Name
	}
	return NoNode
}

// DeclarationNameText returns the text of the declaration's name, or "" if it has none
func DeclarationNameText(n *Node) string {
	if n == nil {
		return ""
	}
	return n.store.Text(DeclarationName(n))
}

// SkipParentheses unwraps parenthesized expressions
func (s *Store) SkipParentheses(id NodeID) NodeID {
	for s.Kind(id) == KindParenthesizedExpression {
		id = As[ParenthesizedExpression](s.Get(id)).Expression
	}
	return id
}

// SkipTypeParentheses unwraps parenthesized types
func (s *Store) SkipTypeParentheses(id NodeID) NodeID {
	for s.Kind(id) == KindParenthesizedType {
		id = As[ParenthesizedType](s.Get(id)).Type
	}
	return id
}

// ContainingFunction returns the closest function-like declaration enclosing id
func (s *Store) ContainingFunction(id NodeID) *Node {
	return s.FindAncestor(id, func(n *Node) bool {
		return n.kind.IsFunctionLikeDeclaration()
	})
}

// IsPartOfTypeNode reports whether id sits inside type syntax, where names
// resolve in the type meaning
func (s *Store) IsPartOfTypeNode(id NodeID) bool {
	n := s.Get(id)
	if n == nil {
		return false
	}
	if n.kind.IsTypeNode() {
		return true
	}
	for p := range s.Ancestors(id) {
		switch {
		case p.kind == KindTypeQuery:
			return false
		case p.kind.IsTypeNode() || p.kind == KindTypeParameter:
			return true
		case p.kind == KindQualifiedName:
			continue
		default:
			return false
		}
	}
	return false
}

// IsAssignmentTarget reports whether id is the left side of an assignment
func (s *Store) IsAssignmentTarget(id NodeID) bool {
	parent := s.Get(s.Parent(id))
	for parent != nil && parent.kind == KindParenthesizedExpression {
		id = parent.id
		parent = s.Get(parent.parent)
	}
	if parent == nil {
		return false
	}
	switch d := parent.data.(type) {
	case *BinaryExpression:
		return d.Left == id && d.Operator.IsAssignmentOperator()
	case *UnaryExpression:
		return d.Operator == KindPlusPlusToken || d.Operator == KindMinusMinusToken
	case *LoopStatement:
		return parent.kind != KindForStatement && d.Initializer == id
	}
	return false
}

// Body returns the body of a function-like declaration
func Body(n *Node) NodeID {
	if d := As[SignatureDeclaration](n); d != nil {
		return d.Body
	}
	return NoNode
}
