package checker

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/infer"
	"github.com/cottand/strux/frontend/types"
)

// isContextualFunction reports function expressions, arrow functions and
// object literal methods, the functions whose parameters may be typed by
// their context
func isContextualFunction(n *ast.Node) bool {
	switch n.Kind() {
	case ast.KindFunctionExpression, ast.KindArrowFunction:
		return true
	case ast.KindMethodDeclaration:
		p := n.ParentNode()
		return p != nil && p.Kind() == ast.KindObjectLiteralExpression
	}
	return false
}

// isContextSensitive reports expressions whose type depends on their
// contextual type: functions with unannotated parameters, and object and
// array literals containing one
func (c *Checker) isContextSensitive(id ast.NodeID) bool {
	n := c.store.Get(id)
	if n == nil {
		return false
	}
	switch n.Kind() {
	case ast.KindFunctionExpression, ast.KindArrowFunction, ast.KindMethodDeclaration:
		sig := ast.As[ast.SignatureDeclaration](n)
		if len(sig.TypeParameters) > 0 {
			return false
		}
		for _, p := range sig.Parameters {
			if !ast.As[ast.Parameter](c.store.Get(p)).Type.IsPresent() {
				return true
			}
		}
		return false
	case ast.KindObjectLiteralExpression:
		for _, p := range ast.As[ast.ObjectLiteralExpression](n).Properties {
			if c.isContextSensitive(p) {
				return true
			}
		}
	case ast.KindPropertyAssignment:
		return c.isContextSensitive(ast.As[ast.PropertyAssignment](n).Initializer)
	case ast.KindArrayLiteralExpression:
		for _, e := range ast.As[ast.ArrayLiteralExpression](n).Elements {
			if c.isContextSensitive(e) {
				return true
			}
		}
	case ast.KindParenthesizedExpression:
		return c.isContextSensitive(ast.As[ast.ParenthesizedExpression](n).Expression)
	case ast.KindConditionalExpression:
		d := ast.As[ast.ConditionalExpression](n)
		return c.isContextSensitive(d.WhenTrue) || c.isContextSensitive(d.WhenFalse)
	case ast.KindBinaryExpression:
		d := ast.As[ast.BinaryExpression](n)
		if d.Operator.IsLogicalOperator() {
			return c.isContextSensitive(d.Left) || c.isContextSensitive(d.Right)
		}
	}
	return false
}

// contextualTypeOf is the type the context of an expression expects it to
// have, along with the inference of the generic call whose argument it is
// part of, if any. It returns NoType when the context expects nothing.
func (c *Checker) contextualTypeOf(id ast.NodeID) (types.TypeID, *infer.Context) {
	n := c.store.Get(id)
	if n == nil {
		return types.NoType, nil
	}
	if ctx, ok := c.argContext[id]; ok {
		return ctx.typ, ctx.inference
	}
	parent := n.ParentNode()
	if parent == nil {
		return types.NoType, nil
	}
	switch parent.Kind() {
	case ast.KindVariableDeclaration:
		d := ast.As[ast.VariableDeclaration](parent)
		if d.Initializer == id && d.Type.IsPresent() {
			return c.typeFromTypeNode(d.Type), nil
		}
	case ast.KindParameter:
		d := ast.As[ast.Parameter](parent)
		if d.Initializer == id && d.Type.IsPresent() {
			return c.typeFromTypeNode(d.Type), nil
		}
	case ast.KindPropertyDeclaration:
		d := ast.As[ast.PropertySignature](parent)
		if d.Initializer == id && d.Type.IsPresent() {
			return c.typeFromTypeNode(d.Type), nil
		}
	case ast.KindReturnStatement:
		if fn := c.store.ContainingFunction(parent.ID()); fn != nil {
			return c.contextualReturnType(fn)
		}
	case ast.KindArrowFunction:
		if ast.Body(parent) == id {
			return c.contextualReturnType(parent)
		}
	case ast.KindAsExpression:
		return c.typeFromTypeNode(ast.As[ast.AsExpression](parent).Type), nil
	case ast.KindParenthesizedExpression, ast.KindNonNullExpression:
		return c.contextualTypeOf(parent.ID())
	case ast.KindConditionalExpression:
		if ast.As[ast.ConditionalExpression](parent).Condition != id {
			return c.contextualTypeOf(parent.ID())
		}
	case ast.KindBinaryExpression:
		return c.contextualTypeOfBinaryOperand(parent, id)
	case ast.KindPropertyAssignment:
		d := ast.As[ast.PropertyAssignment](parent)
		if d.Initializer != id {
			break
		}
		object, inference := c.contextualTypeOf(parent.Parent())
		if !object.IsPresent() {
			break
		}
		return c.contextualTypeOfProperty(object, c.propertyNameOf(d.Name), inference), inference
	case ast.KindArrayLiteralExpression:
		array, inference := c.contextualTypeOf(parent.ID())
		if !array.IsPresent() {
			break
		}
		index := -1
		for i, e := range ast.As[ast.ArrayLiteralExpression](parent).Elements {
			if e == id {
				index = i
			}
		}
		return c.contextualTypeOfElement(array, index, inference), inference
	case ast.KindSpreadElement:
		if array, inference := c.contextualTypeOf(parent.Parent()); array.IsPresent() {
			return array, inference
		}
	}
	return types.NoType, nil
}

func (c *Checker) contextualTypeOfBinaryOperand(parent *ast.Node, id ast.NodeID) (types.TypeID, *infer.Context) {
	d := ast.As[ast.BinaryExpression](parent)
	switch {
	case d.Operator == ast.KindEqualsToken && d.Right == id:
		return c.assignmentTargetType(d.Left), nil
	case d.Operator.IsLogicalOperator():
		t, inference := c.contextualTypeOf(parent.ID())
		if !t.IsPresent() && d.Right == id && d.Operator != ast.KindAmpersandAmpersandToken {
			return c.checkExpression(d.Left), nil
		}
		return t, inference
	case d.Operator == ast.KindCommaToken && d.Right == id:
		return c.contextualTypeOf(parent.ID())
	}
	return types.NoType, nil
}

// assignmentTargetType is the declared type of the left side of an assignment
func (c *Checker) assignmentTargetType(target ast.NodeID) types.TypeID {
	target = c.store.SkipParentheses(target)
	if c.store.Kind(target) == ast.KindIdentifier {
		if sym := c.resolveName(target, c.store.Text(target), binder.Value); sym.IsPresent() {
			return c.typeOfSymbol(sym)
		}
		return types.NoType
	}
	return c.checkExpression(target)
}

// contextualTypeOfProperty is the type object expects for its property name
func (c *Checker) contextualTypeOfProperty(object types.TypeID, name string, inference *infer.Context) types.TypeID {
	object = c.instantiateContextualType(object, inference)
	return c.mapContextualType(object, func(t types.TypeID) types.TypeID {
		apparent := c.s.ApparentType(t)
		if !c.s.Is(apparent, types.FlagStructured) {
			return types.NoType
		}
		if p := c.s.PropertyOf(apparent, name); p != nil {
			return c.s.PropertyType(p)
		}
		if info := c.s.IndexInfoOf(apparent, types.IsNumericName(name)); info != nil {
			return info.Type
		}
		if info := c.s.IndexInfoOf(apparent, false); info != nil {
			return info.Type
		}
		return types.NoType
	})
}

// contextualTypeOfElement is the type array expects for its element at index
func (c *Checker) contextualTypeOfElement(array types.TypeID, index int, inference *infer.Context) types.TypeID {
	array = c.instantiateContextualType(array, inference)
	return c.mapContextualType(array, func(t types.TypeID) types.TypeID {
		if elems := c.s.TupleElements(t); elems != nil {
			if index >= 0 && index < len(elems) {
				return elems[index]
			}
			if c.s.TupleTarget(t).HasRest() {
				return c.s.ElementType(t)
			}
			return types.NoType
		}
		if c.s.IsArray(t) {
			return c.s.ElementType(t)
		}
		apparent := c.s.ApparentType(t)
		if info := c.s.IndexInfoOf(apparent, true); info != nil {
			return info.Type
		}
		return types.NoType
	})
}

// mapContextualType maps the members of a contextual type, yielding NoType
// when f drops all of them
func (c *Checker) mapContextualType(t types.TypeID, f func(types.TypeID) types.TypeID) types.TypeID {
	if r := c.s.MapType(t, f); r != c.s.Never {
		return r
	}
	return types.NoType
}

// instantiateContextualType replaces the type parameters of a generic call in
// a contextual type with what was inferred for them so far
func (c *Checker) instantiateContextualType(t types.TypeID, inference *infer.Context) types.TypeID {
	if inference == nil || !c.s.CouldContainTypeVariables(t) {
		return t
	}
	return c.s.Instantiate(t, inference.NonFixingMapper)
}

// contextSignature is the signature the context of a function expression
// expects it to implement
type contextSignature struct {
	sig       *types.Signature
	inference *infer.Context
}

// paramType is the contextual type of the i-th parameter. Reading it fixes the
// type parameters of the surrounding call it mentions.
func (cs *contextSignature) paramType(s *types.Store, i int) types.TypeID {
	t := s.ParamType(cs.sig, i)
	if !t.IsPresent() {
		return t
	}
	if cs.inference != nil {
		return s.Instantiate(t, cs.inference.Mapper)
	}
	return t
}

// restTypeAt is the type of a rest parameter at position i of a function
// typed by cs: an array of the remaining parameter types of cs
func (c *Checker) restTypeAt(cs *contextSignature, i int) types.TypeID {
	if cs.sig.HasRest() && i == cs.sig.ParamCount()-1 {
		t := cs.sig.Params[i].Type
		if cs.inference != nil {
			t = c.s.Instantiate(t, cs.inference.Mapper)
		}
		return t
	}
	var rest []types.TypeID
	for j := i; ; j++ {
		t := cs.paramType(c.s, j)
		if !t.IsPresent() || (cs.sig.HasRest() && j >= cs.sig.ParamCount()-1) {
			if t.IsPresent() {
				rest = append(rest, t)
			}
			break
		}
		rest = append(rest, t)
	}
	if len(rest) == 0 {
		return c.s.ArrayOf(c.s.Any)
	}
	return c.s.ArrayOf(c.s.Union(rest...))
}

// contextualSignature is the signature a context-typed function is expected
// to implement, or nil
func (c *Checker) contextualSignature(fn ast.NodeID) *contextSignature {
	n := c.store.Get(fn)
	if n == nil || !isContextualFunction(n) {
		return nil
	}
	var t types.TypeID
	var inference *infer.Context
	if n.Kind() == ast.KindMethodDeclaration {
		object, inf := c.contextualTypeOf(n.Parent())
		if !object.IsPresent() {
			return nil
		}
		name := c.propertyNameOf(ast.As[ast.SignatureDeclaration](n).Name)
		t, inference = c.contextualTypeOfProperty(object, name, inf), inf
	} else {
		t, inference = c.contextualTypeOf(fn)
	}
	if !t.IsPresent() {
		return nil
	}
	if inference != nil && c.s.Is(t, types.FlagInstantiable) {
		t = c.s.Instantiate(t, inference.Mapper)
	}
	var found *types.Signature
	ok := c.s.EveryType(t, func(m types.TypeID) bool {
		sigs := c.s.SignaturesOf(c.s.ApparentType(m), types.SignatureCall)
		switch len(sigs) {
		case 0:
			return true
		case 1:
			if found == nil {
				found = sigs[0]
				return true
			}
			return c.s.IsIdentical(c.s.FunctionType(found), c.s.FunctionType(sigs[0]))
		}
		return false
	})
	if !ok || found == nil {
		return nil
	}
	if len(found.TypeParameters) > 0 {
		found = c.s.ErasedSignature(found)
	}
	return &contextSignature{sig: found, inference: inference}
}

// contextualReturnType is the type the context of a function expects its
// returned expressions to have
func (c *Checker) contextualReturnType(fn *ast.Node) (types.TypeID, *infer.Context) {
	if d := ast.As[ast.SignatureDeclaration](fn); d != nil && d.Type.IsPresent() {
		if c.store.Kind(d.Type) == ast.KindTypePredicate {
			return c.s.Boolean, nil
		}
		return c.typeFromTypeNode(d.Type), nil
	}
	cs := c.contextualSignature(fn.ID())
	if cs == nil {
		return types.NoType, nil
	}
	return c.s.ReturnType(cs.sig), cs.inference
}

// contextualReturnTypeOfFunction is the return type the context of a function
// without an annotation expects, or NoType
func (c *Checker) contextualReturnTypeOfFunction(fn *ast.Node) types.TypeID {
	if !isContextualFunction(fn) {
		return types.NoType
	}
	cs := c.contextualSignature(fn.ID())
	if cs == nil {
		return types.NoType
	}
	return c.s.ReturnType(cs.sig)
}

// isLiteralOfContextualType reports literal types whose context expects a
// literal of the same kind, or a type parameter constrained to primitives
func (c *Checker) isLiteralOfContextualType(candidate, contextual types.TypeID) bool {
	if !contextual.IsPresent() {
		return false
	}
	if c.s.Is(contextual, types.FlagUnion) {
		return c.s.SomeType(contextual, func(m types.TypeID) bool { return c.isLiteralOfContextualType(candidate, m) })
	}
	if c.s.Is(contextual, types.FlagInstantiable) {
		constraint := c.s.BaseConstraintOf(contextual)
		if !constraint.IsPresent() {
			constraint = c.s.Unknown
		}
		return c.s.Is(constraint, types.FlagString|types.FlagStringLiteral) && c.s.SomeType(candidate, c.isStringLiteral) ||
			c.s.Is(constraint, types.FlagNumber|types.FlagNumberLiteral) && c.s.SomeType(candidate, c.isNumberLiteral) ||
			c.s.Is(constraint, types.FlagBoolean|types.FlagBooleanLiteral) && c.s.SomeType(candidate, c.isBooleanLiteral) ||
			c.isLiteralOfContextualType(candidate, constraint)
	}
	switch {
	case c.s.Is(contextual, types.FlagStringLiteral|types.FlagTemplateLiteral):
		return c.s.SomeType(candidate, c.isStringLiteral)
	case c.s.Is(contextual, types.FlagNumberLiteral|types.FlagEnumLiteral):
		return c.s.SomeType(candidate, c.isNumberLiteral)
	case c.s.Is(contextual, types.FlagBooleanLiteral):
		return c.s.SomeType(candidate, c.isBooleanLiteral)
	}
	return false
}

func (c *Checker) isStringLiteral(t types.TypeID) bool  { return c.s.Is(t, types.FlagStringLiteral) }
func (c *Checker) isNumberLiteral(t types.TypeID) bool  { return c.s.Is(t, types.FlagNumberLiteral) }
func (c *Checker) isBooleanLiteral(t types.TypeID) bool { return c.s.Is(t, types.FlagBooleanLiteral) }

// checkExpressionForMutableLocation is the type of an expression stored in a
// mutable place, such as an object literal property: its literal type is
// widened unless the context expects a literal
func (c *Checker) checkExpressionForMutableLocation(id ast.NodeID) types.TypeID {
	t := c.checkExpression(id)
	contextual, _ := c.contextualTypeOf(id)
	if c.isLiteralOfContextualType(t, contextual) {
		return c.s.MapType(t, c.s.Regular)
	}
	return c.s.WidenLiteral(t)
}

// propertyNameOf is the escaped name of a property name node
func (c *Checker) propertyNameOf(name ast.NodeID) string {
	return ast.EscapeName(c.store.Text(name))
}
