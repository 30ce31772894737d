package binder

import (
	"github.com/cottand/strux/frontend/ast"
)

// isReferenceIdentifier reports identifiers and `this` that read a value, as opposed
// to names of declarations, property names, labels and names in type positions
func isReferenceIdentifier(store *ast.Store, n *ast.Node) bool {
	if n.Kind() == ast.KindThisKeyword {
		return !store.IsPartOfTypeNode(n.ID())
	}
	p := n.ParentNode()
	if p == nil {
		return false
	}
	id := n.ID()
	switch p.Kind() {
	case ast.KindShorthandPropertyAssignment:
		return true
	case ast.KindPropertyAccessExpression:
		return ast.As[ast.PropertyAccessExpression](p).Name != id
	case ast.KindQualifiedName:
		if ast.As[ast.QualifiedName](p).Right == id {
			return false
		}
	case ast.KindLabeledStatement, ast.KindBreakStatement, ast.KindContinueStatement, ast.KindImportSpecifier:
		return false
	}
	if ast.DeclarationName(p) == id {
		return false
	}
	return !store.IsPartOfTypeNode(id)
}

// isNarrowableReference reports expressions whose type flow analysis can track:
// identifiers, `this`, and property or literal element accesses on them
func isNarrowableReference(store *ast.Store, id ast.NodeID) bool {
	n := store.Get(id)
	if n == nil {
		return false
	}
	switch n.Kind() {
	case ast.KindIdentifier, ast.KindThisKeyword:
		return true
	case ast.KindPropertyAccessExpression:
		return isNarrowableReference(store, ast.As[ast.PropertyAccessExpression](n).Expression)
	case ast.KindParenthesizedExpression:
		return isNarrowableReference(store, ast.As[ast.ParenthesizedExpression](n).Expression)
	case ast.KindNonNullExpression:
		return isNarrowableReference(store, ast.As[ast.NonNullExpression](n).Expression)
	case ast.KindElementAccessExpression:
		d := ast.As[ast.ElementAccessExpression](n)
		return store.Kind(d.Argument).IsLiteral() && isNarrowableReference(store, d.Expression)
	}
	return false
}

// isNarrowableOperand reports operands of comparisons that narrow a reference
func isNarrowableOperand(store *ast.Store, id ast.NodeID) bool {
	n := store.Get(id)
	if n == nil {
		return false
	}
	switch n.Kind() {
	case ast.KindParenthesizedExpression:
		return isNarrowableOperand(store, ast.As[ast.ParenthesizedExpression](n).Expression)
	case ast.KindBinaryExpression:
		d := ast.As[ast.BinaryExpression](n)
		switch d.Operator {
		case ast.KindEqualsToken:
			return isNarrowableOperand(store, d.Left)
		case ast.KindCommaToken:
			return isNarrowableOperand(store, d.Right)
		}
	}
	return isNarrowableReference(store, id)
}

// IsNarrowingExpression reports conditions that can narrow the type of some reference,
// so that a condition flow node is worth creating for them
func IsNarrowingExpression(store *ast.Store, id ast.NodeID) bool {
	n := store.Get(id)
	if n == nil {
		return false
	}
	switch n.Kind() {
	case ast.KindIdentifier, ast.KindThisKeyword, ast.KindPropertyAccessExpression, ast.KindElementAccessExpression:
		return isNarrowableReference(store, id)
	case ast.KindCallExpression:
		return hasNarrowableArgument(store, ast.As[ast.CallExpression](n))
	case ast.KindParenthesizedExpression:
		return IsNarrowingExpression(store, ast.As[ast.ParenthesizedExpression](n).Expression)
	case ast.KindNonNullExpression:
		return IsNarrowingExpression(store, ast.As[ast.NonNullExpression](n).Expression)
	case ast.KindTypeOfExpression:
		return IsNarrowingExpression(store, ast.As[ast.TypeOfExpression](n).Expression)
	case ast.KindPrefixUnaryExpression:
		d := ast.As[ast.UnaryExpression](n)
		return d.Operator == ast.KindExclamationToken && IsNarrowingExpression(store, d.Operand)
	case ast.KindBinaryExpression:
		return isNarrowingBinaryExpression(store, ast.As[ast.BinaryExpression](n))
	}
	return false
}

func hasNarrowableArgument(store *ast.Store, call *ast.CallExpression) bool {
	for _, arg := range call.Arguments {
		if isNarrowableReference(store, arg) {
			return true
		}
	}
	if access := ast.As[ast.PropertyAccessExpression](store.Get(call.Expression)); access != nil {
		return isNarrowableReference(store, access.Expression)
	}
	return false
}

func isNarrowingBinaryExpression(store *ast.Store, d *ast.BinaryExpression) bool {
	switch {
	case d.Operator.IsAssignmentOperator():
		return isNarrowableReference(store, d.Left)
	case d.Operator.IsEqualityOperator():
		return isNarrowableOperand(store, d.Left) || isNarrowableOperand(store, d.Right) ||
			isTypeOfOperand(store, d.Left) || isTypeOfOperand(store, d.Right)
	case d.Operator == ast.KindInstanceOfKeyword:
		return isNarrowableOperand(store, d.Left)
	case d.Operator == ast.KindInKeyword:
		return IsNarrowingExpression(store, d.Right)
	case d.Operator == ast.KindCommaToken:
		return IsNarrowingExpression(store, d.Right)
	case d.Operator.IsLogicalOperator():
		return IsNarrowingExpression(store, d.Left) || IsNarrowingExpression(store, d.Right)
	}
	return false
}

func isTypeOfOperand(store *ast.Store, id ast.NodeID) bool {
	t := ast.As[ast.TypeOfExpression](store.Get(store.SkipParentheses(id)))
	return t != nil && isNarrowableOperand(store, t.Expression)
}

// isDottedName reports `a`, `this` and `a.b.c`, the callees that may be assertion functions
func isDottedName(store *ast.Store, id ast.NodeID) bool {
	n := store.Get(id)
	if n == nil {
		return false
	}
	switch n.Kind() {
	case ast.KindIdentifier, ast.KindThisKeyword:
		return true
	case ast.KindPropertyAccessExpression:
		return isDottedName(store, ast.As[ast.PropertyAccessExpression](n).Expression)
	case ast.KindParenthesizedExpression:
		return isDottedName(store, ast.As[ast.ParenthesizedExpression](n).Expression)
	}
	return false
}

// isLogicalExpression reports `&&`, `||` and `??` expressions and their logical
// assignment forms, looking through parentheses and `!`
func isLogicalExpression(store *ast.Store, id ast.NodeID) bool {
	for {
		n := store.Get(id)
		if n == nil {
			return false
		}
		switch n.Kind() {
		case ast.KindParenthesizedExpression:
			id = ast.As[ast.ParenthesizedExpression](n).Expression
		case ast.KindPrefixUnaryExpression:
			d := ast.As[ast.UnaryExpression](n)
			if d.Operator != ast.KindExclamationToken {
				return false
			}
			id = d.Operand
		case ast.KindBinaryExpression:
			op := ast.As[ast.BinaryExpression](n).Operator
			return op.IsLogicalOperator() || (op.IsCompoundAssignment() && op.CompoundBase().IsLogicalOperator())
		default:
			return false
		}
	}
}
