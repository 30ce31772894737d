package checker

import (
	"slices"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/types"
)

// typeParameterOf returns the type parameter declared by a TypeParameter node.
// Merged declarations of a generic interface share their type parameters.
func (c *Checker) typeParameterOf(decl ast.NodeID) types.TypeID {
	key := decl
	sym := c.b.SymbolOf(decl)
	if s := c.b.Symbol(sym); s != nil && s.FirstDeclaration().IsPresent() {
		key = s.FirstDeclaration()
	}
	if tp, ok := c.typeParams[key]; ok {
		return tp
	}
	d := ast.As[ast.TypeParameter](c.store.Get(key))
	if d == nil {
		return c.s.Error
	}
	tp := c.s.NewTypeParameter(c.store.Text(d.Name), sym, key)
	c.typeParams[key] = tp
	if constraint := d.Constraint; constraint.IsPresent() {
		c.s.SetConstraintResolver(tp, func() types.TypeID { return c.typeFromTypeNode(constraint) })
	}
	if def := d.Default; def.IsPresent() {
		c.s.SetDefaultResolver(tp, func() types.TypeID { return c.typeFromTypeNode(def) })
	}
	return tp
}

func (c *Checker) typeParametersOf(decls []ast.NodeID) []types.TypeID {
	if len(decls) == 0 {
		return nil
	}
	tps := make([]types.TypeID, len(decls))
	for i, d := range decls {
		tps[i] = c.typeParameterOf(d)
	}
	return tps
}

// ownTypeParameters lists the type parameters a node declares for its body
func (c *Checker) ownTypeParameters(n *ast.Node) []types.TypeID {
	switch n.Kind() {
	case ast.KindClassDeclaration:
		return c.typeParametersOf(ast.As[ast.ClassDeclaration](n).TypeParameters)
	case ast.KindInterfaceDeclaration:
		return c.typeParametersOf(ast.As[ast.InterfaceDeclaration](n).TypeParameters)
	case ast.KindTypeAliasDeclaration:
		return c.typeParametersOf(ast.As[ast.TypeAliasDeclaration](n).TypeParameters)
	case ast.KindMappedType:
		return []types.TypeID{c.typeParameterOf(ast.As[ast.MappedType](n).TypeParameter)}
	case ast.KindConditionalType:
		return c.inferTypeParameters(n)
	}
	if sig := ast.As[ast.SignatureDeclaration](n); sig != nil {
		return c.typeParametersOf(sig.TypeParameters)
	}
	return nil
}

// inferTypeParameters lists the `infer` declarations of a conditional type's
// extends clause
func (c *Checker) inferTypeParameters(n *ast.Node) []types.TypeID {
	var tps []types.TypeID
	c.store.Walk(ast.As[ast.ConditionalType](n).ExtendsType, func(m *ast.Node) bool {
		switch m.Kind() {
		case ast.KindInferType:
			tps = append(tps, c.typeParameterOf(ast.As[ast.InferType](m).TypeParameter))
			return false
		case ast.KindConditionalType:
			return false
		}
		return true
	})
	return tps
}

// outerTypeParameters lists the type parameters in scope at decl and declared
// by its ancestors, outermost first
func (c *Checker) outerTypeParameters(decl ast.NodeID) []types.TypeID {
	n := c.store.Get(decl)
	if n == nil {
		return nil
	}
	var groups [][]types.TypeID
	for p := n.ParentNode(); p != nil; p = p.ParentNode() {
		if tps := c.ownTypeParameters(p); len(tps) > 0 {
			groups = append(groups, tps)
		}
	}
	var outer []types.TypeID
	for _, g := range slices.Backward(groups) {
		outer = append(outer, g...)
	}
	return outer
}

// signatureOf builds the signature a function-like declaration declares
func (c *Checker) signatureOf(decl ast.NodeID) *types.Signature {
	if sig, ok := c.signatures[decl]; ok {
		return sig
	}
	n := c.store.Get(decl)
	d := ast.As[ast.SignatureDeclaration](n)
	if d == nil {
		sig := types.NewSignature(nil, 0, c.s.Error)
		c.signatures[decl] = sig
		return sig
	}
	sig := types.NewSignature(nil, 0, c.s.Any)
	sig.Declaration = decl
	c.signatures[decl] = sig

	switch n.Kind() {
	case ast.KindConstructor:
		sig.TypeParameters = c.classTypeParameters(n)
		sig.Flags |= types.SignatureConstruct
	case ast.KindConstructSignature, ast.KindConstructorType:
		sig.Flags |= types.SignatureConstruct
	case ast.KindMethodDeclaration, ast.KindMethodSignature:
		sig.Flags |= types.SignatureMethod
	}
	if own := c.typeParametersOf(d.TypeParameters); len(own) > 0 {
		sig.TypeParameters = append(sig.TypeParameters, own...)
	}

	for i, p := range d.Parameters {
		if i == 0 && isThisParameter(c.store, p) {
			continue
		}
		pn := c.store.Get(p)
		pd := ast.As[ast.Parameter](pn)
		symbol := c.b.SymbolOf(p)
		optional := pn.Flags().IsOptional() || pd.Initializer.IsPresent()
		rest := pn.Flags().IsRest()
		sig.Params = append(sig.Params, types.Param{
			Name:     c.store.Text(pd.Name),
			Type:     c.declaredTypeOfParameter(symbol, pn),
			Optional: optional,
			Symbol:   symbol,
		})
		if rest {
			sig.Flags |= types.SignatureHasRest
		} else if !optional {
			sig.MinArgs = len(sig.Params)
		}
	}

	switch {
	case n.Kind() == ast.KindConstructor:
		class := n.ParentNode()
		sig.SetReturnResolver(func() types.TypeID { return c.instanceTypeOf(c.b.SymbolOf(class.ID())) })
	case c.store.Kind(d.Type) == ast.KindTypePredicate:
		sig.Predicate = c.typePredicateOf(d, d.Type)
		if sig.Predicate.Kind.IsAsserts() {
			sig.SetReturnType(c.s.Void)
		} else {
			sig.SetReturnType(c.s.Boolean)
		}
	case d.Type.IsPresent():
		annotation := d.Type
		sig.SetReturnResolver(func() types.TypeID { return c.typeFromTypeNode(annotation) })
	case d.Body.IsPresent():
		sig.SetReturnResolver(func() types.TypeID { return c.inferReturnType(n) })
	}
	return sig
}

// classTypeParameters lists the type parameters of the class declaring a member
func (c *Checker) classTypeParameters(member *ast.Node) []types.TypeID {
	class := member.ParentNode()
	if class == nil || class.Kind() != ast.KindClassDeclaration {
		return nil
	}
	return slices.Clone(c.s.TypeParametersOf(c.declaredTypeOfSymbol(c.b.SymbolOf(class.ID()))))
}

// instanceTypeOf is the type of `this` inside a class or interface: a
// reference to it with its own type parameters as arguments
func (c *Checker) instanceTypeOf(class binder.SymbolID) types.TypeID {
	declared := c.declaredTypeOfSymbol(class)
	tps := c.s.TypeParametersOf(declared)
	if len(tps) == 0 {
		return declared
	}
	return c.s.Reference(declared, tps...)
}

func (c *Checker) typePredicateOf(sig *ast.SignatureDeclaration, id ast.NodeID) *types.TypePredicate {
	n := c.store.Get(id)
	d := ast.As[ast.TypePredicate](n)
	asserts := n.Flags().IsAsserts()
	pred := &types.TypePredicate{ParameterIndex: -1}
	if c.store.Kind(d.ParameterName) == ast.KindThisType {
		pred.Kind = types.PredicateThis
		if asserts {
			pred.Kind = types.PredicateAssertsThis
		}
	} else {
		pred.Kind = types.PredicateIdentifier
		if asserts {
			pred.Kind = types.PredicateAssertsIdentifier
		}
		pred.ParameterName = c.store.Text(d.ParameterName)
		index := 0
		for i, p := range sig.Parameters {
			if i == 0 && isThisParameter(c.store, p) {
				continue
			}
			if c.store.Text(ast.As[ast.Parameter](c.store.Get(p)).Name) == pred.ParameterName {
				pred.ParameterIndex = index
				break
			}
			index++
		}
	}
	if d.Type.IsPresent() {
		pred.Type = c.typeFromTypeNode(d.Type)
	}
	return pred
}

// inferReturnType computes the return type of a function without an
// annotation from its return statements
func (c *Checker) inferReturnType(fn *ast.Node) types.TypeID {
	body := ast.Body(fn)
	if c.store.Kind(body) != ast.KindBlock {
		return c.widenReturnType(fn, c.checkExpression(body))
	}
	var returned []types.TypeID
	hasReturn := false
	c.forEachReturn(body, func(ret *ast.ExpressionStatement) {
		hasReturn = true
		if ret.Expression.IsPresent() {
			returned = append(returned, c.checkExpression(ret.Expression))
		} else {
			returned = append(returned, c.s.Undefined)
		}
	})
	endReachable := c.b.IsEndReachable(fn.ID())
	if !hasReturn {
		if !endReachable && (fn.Kind() == ast.KindFunctionExpression || fn.Kind() == ast.KindArrowFunction) {
			return c.s.Never
		}
		return c.s.Void
	}
	if endReachable {
		returned = append(returned, c.s.Undefined)
	}
	return c.widenReturnType(fn, c.s.UnionWith(types.ReduceSubtypes, returned...))
}

// widenReturnType widens literal return types unless the contextual return
// type expects literals
func (c *Checker) widenReturnType(fn *ast.Node, t types.TypeID) types.TypeID {
	if contextual := c.contextualReturnTypeOfFunction(fn); contextual.IsPresent() && c.isLiteralOfContextualType(t, contextual) {
		return c.s.Widen(c.s.MapType(t, c.s.Regular))
	}
	return c.s.Widen(t)
}

// forEachReturn visits the return statements of a function body, leaving out
// those of nested functions and classes
func (c *Checker) forEachReturn(body ast.NodeID, visit func(*ast.ExpressionStatement)) {
	c.store.Walk(body, func(n *ast.Node) bool {
		switch {
		case n.Kind() == ast.KindReturnStatement:
			visit(ast.As[ast.ExpressionStatement](n))
			return false
		case n.ID() != body && (n.Kind().IsFunctionLike() || n.Kind() == ast.KindClassDeclaration):
			return false
		case n.Kind().IsTypeNode():
			return false
		}
		return true
	})
}

// reportCircularReturn reports a call to sig made while the return type of its
// unannotated declaration is being inferred
func (c *Checker) reportCircularReturn(sig *types.Signature) {
	root := sig.Root()
	if !c.s.IsResolvingReturnType(root) || !root.Declaration.IsPresent() {
		return
	}
	decl := c.store.Get(root.Declaration)
	d := ast.As[ast.SignatureDeclaration](decl)
	if d == nil || d.Type.IsPresent() || c.circularReturns.Contains(root.Declaration) {
		return
	}
	c.circularReturns.Insert(root.Declaration)
	at := d.Name
	if !at.IsPresent() {
		at = root.Declaration
	}
	name := c.store.Text(d.Name)
	if name == "" {
		name = "anonymous"
	}
	c.error(at, diag.ImplicitlyHasReturnTypeAny, name)
}
