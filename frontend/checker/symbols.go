package checker

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/types"
)

// resolveName finds what name means at location, following import aliases.
// An import that cannot be resolved yields the alias symbol itself.
func (c *Checker) resolveName(location ast.NodeID, name string, meaning binder.SymbolFlags) binder.SymbolID {
	id := c.b.ResolveName(location, name, meaning)
	if !id.IsPresent() || !c.symbolFlags(id).IsAlias() {
		return id
	}
	target := c.resolveAlias(id)
	if target == id {
		return id
	}
	if !c.symbolFlags(target).Has(meaning) {
		return binder.NoSymbol
	}
	return target
}

// resolveAlias returns the symbol an import specifier names, or id itself
// when id is not an alias or its import fails
func (c *Checker) resolveAlias(id binder.SymbolID) binder.SymbolID {
	if !c.symbolFlags(id).IsAlias() {
		return id
	}
	l := c.linksOf(id)
	switch l.aliasState {
	case resolved:
		return l.aliasTarget
	case resolving:
		return id
	}
	l.aliasState = resolving
	target := c.resolveImport(id)
	if !target.IsPresent() {
		target = id
	}
	l.aliasTarget, l.aliasState = target, resolved
	return target
}

func (c *Checker) resolveImport(id binder.SymbolID) binder.SymbolID {
	sym := c.b.Symbol(id)
	decl := c.store.Get(sym.FirstDeclaration())
	spec := ast.As[ast.ImportSpecifier](decl)
	if spec == nil {
		return binder.NoSymbol
	}
	importNode := decl.ParentNode()
	imp := ast.As[ast.ImportDeclaration](importNode)
	if imp == nil {
		return binder.NoSymbol
	}
	specifier := c.store.Text(imp.ModuleSpecifier)
	module := c.moduleOf(importNode.ID(), specifier)
	if !module.IsPresent() {
		if len(imp.Specifiers) > 0 && imp.Specifiers[0] == decl.ID() {
			c.error(imp.ModuleSpecifier, diag.CannotFindModule, specifier)
		}
		return binder.NoSymbol
	}
	name := spec.Name
	if spec.PropertyName.IsPresent() {
		name = spec.PropertyName
	}
	text := c.store.Text(name)
	if exports := c.b.Exports(module); exports != nil {
		if target, ok := exports.Get(ast.EscapeName(text)); ok {
			return c.b.Merged(target)
		}
	}
	c.error(name, diag.ModuleHasNoExportedMember, specifier, text)
	return binder.NoSymbol
}

// moduleOf resolves the module specifier of an import found at from
func (c *Checker) moduleOf(from ast.NodeID, specifier string) binder.SymbolID {
	if c.resolve == nil {
		return binder.NoSymbol
	}
	var file ast.NodeID
	if sf := c.store.SourceFileOf(from); sf != nil {
		file = sf.ID()
	}
	target, ok := c.resolve(specifier, file)
	if !ok {
		return binder.NoSymbol
	}
	return c.b.ModuleSymbol(target)
}

// resolveEntityName resolves an identifier or a qualified name `A.B.C`. The
// qualifiers must name namespaces.
func (c *Checker) resolveEntityName(name ast.NodeID, meaning binder.SymbolFlags, report bool) binder.SymbolID {
	n := c.store.Get(name)
	if n == nil {
		return binder.NoSymbol
	}
	switch n.Kind() {
	case ast.KindIdentifier:
		text := c.store.Text(name)
		id := c.resolveName(name, text, meaning)
		if !id.IsPresent() && report && !n.Flags().HasError() {
			c.error(name, diag.CannotFindName, text)
		}
		return id
	case ast.KindQualifiedName:
		q := ast.As[ast.QualifiedName](n)
		left := c.resolveEntityName(q.Left, binder.Namespace, report)
		if !left.IsPresent() || c.symbolFlags(left).IsAlias() {
			return binder.NoSymbol
		}
		right := c.store.Text(q.Right)
		if exports := c.b.Exports(left); exports != nil {
			if id, ok := exports.Get(ast.EscapeName(right)); ok {
				id = c.resolveAlias(c.b.Merged(id))
				if c.symbolFlags(id).Has(meaning) {
					return id
				}
			}
		}
		if report {
			c.error(q.Right, diag.NamespaceHasNoExportedMember, c.symbolName(left), right)
		}
	}
	return binder.NoSymbol
}

// typeOfSymbol is the type of the value a symbol denotes
func (c *Checker) typeOfSymbol(id binder.SymbolID) types.TypeID {
	id = c.b.Merged(id)
	sym := c.b.Symbol(id)
	if sym == nil {
		return c.s.Error
	}
	l := c.linksOf(id)
	switch l.typeState {
	case resolved:
		return l.typ
	case resolving:
		return c.s.Any
	}
	l.typeState = resolving
	t := c.computeTypeOfSymbol(sym)
	l.typ, l.typeState = t, resolved
	return t
}

func (c *Checker) computeTypeOfSymbol(sym *binder.Symbol) types.TypeID {
	flags := sym.Flags()
	switch {
	case flags.IsAlias():
		target := c.resolveAlias(sym.ID())
		if target == sym.ID() || !c.symbolFlags(target).IsValue() {
			return c.s.Error
		}
		return c.typeOfSymbol(target)
	case flags&binder.Prototype != 0:
		return c.prototypeType(c.b.Merged(sym.Parent))
	case flags.IsClass():
		return c.constructorTypeOf(sym)
	case flags.IsEnum():
		return c.enumObjectType(sym)
	case flags.IsFunction() || flags.IsMethod():
		return c.functionTypeOf(sym)
	case flags.IsValueModule():
		return c.namespaceObjectType(sym)
	case flags.IsEnumMember():
		return c.declaredTypeOfSymbol(sym.ID())
	case flags.IsObjectLiteral():
		return c.checkExpression(sym.FirstDeclaration())
	}
	declID := sym.ValueDeclaration
	if !declID.IsPresent() {
		declID = sym.FirstDeclaration()
	}
	decl := c.store.Get(declID)
	if decl == nil {
		return c.s.Any
	}
	switch decl.Kind() {
	case ast.KindParameter:
		return c.typeOfParameter(sym.ID(), decl)
	case ast.KindVariableDeclaration:
		return c.typeOfVariable(decl)
	case ast.KindPropertyDeclaration, ast.KindPropertySignature:
		return c.typeOfPropertyDeclaration(decl)
	case ast.KindPropertyAssignment:
		return c.checkExpressionForMutableLocation(ast.As[ast.PropertyAssignment](decl).Initializer)
	case ast.KindShorthandPropertyAssignment:
		return c.checkExpression(ast.As[ast.PropertyAssignment](decl).Name)
	}
	return c.s.Any
}

// prototypeType is the instance type of a class with every type argument any
func (c *Checker) prototypeType(class binder.SymbolID) types.TypeID {
	instance := c.declaredTypeOfSymbol(class)
	tps := c.s.TypeParametersOf(instance)
	if len(tps) == 0 {
		return instance
	}
	args := make([]types.TypeID, len(tps))
	for i := range args {
		args[i] = c.s.Any
	}
	return c.s.Reference(instance, args...)
}

// functionTypeOf is the type of a function or method: one call signature per
// overload. Implementations are hidden by the overloads that precede them.
func (c *Checker) functionTypeOf(sym *binder.Symbol) types.TypeID {
	var decls []ast.NodeID
	hasOverloads := false
	for _, d := range sym.Declarations {
		n := c.store.Get(d)
		if n == nil || !n.Kind().IsFunctionLike() {
			continue
		}
		decls = append(decls, d)
		if !ast.Body(n).IsPresent() {
			hasOverloads = true
		}
	}
	if len(decls) == 0 {
		return c.s.Any
	}
	if hasOverloads && len(decls) > 1 {
		overloads := decls[:0:0]
		for _, d := range decls {
			if !ast.Body(c.store.Get(d)).IsPresent() {
				overloads = append(overloads, d)
			}
		}
		decls = overloads
	}
	first := decls[0]
	isNamespace := sym.Flags().IsValueModule()
	return c.s.NewAnonymous(types.ObjectFunction, sym.ID(), first, c.outerTypeParameters(first), func() *types.Members {
		m := types.NewMembers()
		for _, d := range decls {
			m.CallSignatures = append(m.CallSignatures, c.signatureOf(d))
		}
		if isNamespace {
			c.addExportProperties(m, sym)
		}
		return m
	})
}

// namespaceObjectType is the type of a namespace used as a value
func (c *Checker) namespaceObjectType(sym *binder.Symbol) types.TypeID {
	return c.s.NewAnonymous(types.ObjectNone, sym.ID(), ast.NoNode, nil, func() *types.Members {
		m := types.NewMembers()
		c.addExportProperties(m, sym)
		return m
	})
}

func (c *Checker) addExportProperties(m *types.Members, sym *binder.Symbol) {
	if sym.Exports == nil {
		return
	}
	for name, id := range sym.Exports.All() {
		id = c.b.Merged(id)
		flags := c.symbolFlags(id)
		if !flags.IsValue() && !flags.IsAlias() {
			continue
		}
		var pflags types.PropertyFlags
		if c.isConstVariable(id) {
			pflags |= types.PropertyReadonly
		}
		p := types.NewLazyProperty(name, pflags, func() types.TypeID { return c.typeOfSymbol(id) })
		p.Symbol = id
		p.Declaration = c.b.Symbol(id).FirstDeclaration()
		m.Add(p)
	}
}

// enumObjectType is the type of an enum used as a value, an object with a
// readonly property per member
func (c *Checker) enumObjectType(sym *binder.Symbol) types.TypeID {
	return c.s.NewAnonymous(types.ObjectNone, sym.ID(), ast.NoNode, nil, func() *types.Members {
		m := types.NewMembers()
		if sym.Exports == nil {
			return m
		}
		for name, id := range sym.Exports.All() {
			id = c.b.Merged(id)
			if !c.symbolFlags(id).IsEnumMember() {
				continue
			}
			p := types.NewLazyProperty(name, types.PropertyReadonly, func() types.TypeID { return c.declaredTypeOfSymbol(id) })
			p.Symbol = id
			p.Declaration = c.b.Symbol(id).FirstDeclaration()
			m.Add(p)
		}
		return m
	})
}

func (c *Checker) isConstVariable(id binder.SymbolID) bool {
	sym := c.b.Symbol(id)
	if sym == nil || !sym.Flags().IsBlockScoped() {
		return false
	}
	decl := c.store.Get(sym.ValueDeclaration)
	if decl == nil || decl.Kind() != ast.KindVariableDeclaration {
		return false
	}
	list := decl.ParentNode()
	return list != nil && list.Kind() == ast.KindVariableDeclarationList && list.Flags().IsConst()
}

// typeOfParameter adds undefined to the declared type of optional parameters
func (c *Checker) typeOfParameter(id binder.SymbolID, decl *ast.Node) types.TypeID {
	t := c.declaredTypeOfParameter(id, decl)
	d := ast.As[ast.Parameter](decl)
	if decl.Flags().IsOptional() && !d.Initializer.IsPresent() {
		return c.s.AddOptionality(t)
	}
	return t
}

// declaredTypeOfParameter is the type of a parameter inside its function: its
// annotation, the widened type of its initializer, the type the contextual
// signature gives its position, or any
func (c *Checker) declaredTypeOfParameter(id binder.SymbolID, decl *ast.Node) types.TypeID {
	l := c.linksOf(id)
	switch l.declaredState {
	case resolved:
		return l.declared
	case resolving:
		return c.s.Any
	}
	l.declaredState = resolving
	t := c.computeParameterType(decl)
	l.declared, l.declaredState = t, resolved
	return t
}

func (c *Checker) computeParameterType(decl *ast.Node) types.TypeID {
	d := ast.As[ast.Parameter](decl)
	if d.Type.IsPresent() {
		return c.typeFromTypeNode(d.Type)
	}
	if d.Initializer.IsPresent() {
		return c.s.Widen(c.checkExpression(d.Initializer))
	}
	fn := decl.ParentNode()
	if fn != nil && isContextualFunction(fn) {
		if cs := c.contextualSignature(fn.ID()); cs != nil {
			if i := parameterIndex(c.store, fn, decl.ID()); i >= 0 {
				if decl.Flags().IsRest() {
					return c.restTypeAt(cs, i)
				}
				if t := cs.paramType(c.s, i); t.IsPresent() {
					return t
				}
			}
		}
	}
	if decl.Flags().IsRest() {
		return c.s.ArrayOf(c.s.Any)
	}
	return c.s.Any
}

// parameterIndex is the position of param among the parameters of fn, not
// counting a leading `this` parameter
func parameterIndex(store *ast.Store, fn *ast.Node, param ast.NodeID) int {
	sig := ast.As[ast.SignatureDeclaration](fn)
	if sig == nil {
		return -1
	}
	offset := 0
	for i, p := range sig.Parameters {
		if i == 0 && isThisParameter(store, p) {
			offset = 1
			continue
		}
		if p == param {
			return i - offset
		}
	}
	return -1
}

func isThisParameter(store *ast.Store, param ast.NodeID) bool {
	p := ast.As[ast.Parameter](store.Get(param))
	return p != nil && store.Text(p.Name) == "this"
}

// typeOfVariable is the declared type of a variable: its annotation, or the
// type of its initializer widened unless the variable is const
func (c *Checker) typeOfVariable(decl *ast.Node) types.TypeID {
	d := ast.As[ast.VariableDeclaration](decl)
	if d.Type.IsPresent() {
		return c.typeFromTypeNode(d.Type)
	}
	parent := decl.ParentNode()
	if parent == nil {
		return c.s.Any
	}
	if parent.Kind() == ast.KindCatchClause {
		return c.s.Any
	}
	if loop := parent.ParentNode(); loop != nil {
		switch loop.Kind() {
		case ast.KindForInStatement:
			return c.s.String
		case ast.KindForOfStatement:
			return c.iteratedTypeOf(ast.As[ast.LoopStatement](loop).Condition)
		}
	}
	if !d.Initializer.IsPresent() {
		return c.s.Any
	}
	if isEmptyArrayLiteral(c.store, d.Initializer) {
		return c.s.ArrayOf(c.s.Any)
	}
	init := c.checkExpression(d.Initializer)
	if parent.Flags().IsConst() {
		return c.s.Widen(c.s.MapType(init, c.s.Regular))
	}
	return c.s.Widen(init)
}

func isEmptyArrayLiteral(store *ast.Store, id ast.NodeID) bool {
	lit := ast.As[ast.ArrayLiteralExpression](store.Get(store.SkipParentheses(id)))
	return lit != nil && len(lit.Elements) == 0
}

// iteratedTypeOf is the element type of the expression a for-of loop iterates
func (c *Checker) iteratedTypeOf(expr ast.NodeID) types.TypeID {
	if t, ok := c.iteratedTypes[expr]; ok {
		return t
	}
	t := c.computeIteratedType(expr)
	c.iteratedTypes[expr] = t
	return t
}

func (c *Checker) computeIteratedType(expr ast.NodeID) types.TypeID {
	t := c.checkExpression(expr)
	if c.s.Is(t, types.FlagAny) {
		return t
	}
	var elems []types.TypeID
	ok := c.s.EveryType(t, func(m types.TypeID) bool {
		switch {
		case c.s.IsArrayOrTuple(m):
			elems = append(elems, c.s.ElementType(m))
		case c.s.Is(m, types.FlagStringLike):
			elems = append(elems, c.s.String)
		default:
			return false
		}
		return true
	})
	if !ok {
		c.error(expr, diag.NotIterable, c.typeString(t))
		return c.s.Error
	}
	return c.s.Union(elems...)
}

func (c *Checker) typeOfPropertyDeclaration(decl *ast.Node) types.TypeID {
	d := ast.As[ast.PropertySignature](decl)
	if d.Type.IsPresent() {
		return c.typeFromTypeNode(d.Type)
	}
	if d.Initializer.IsPresent() {
		return c.s.Widen(c.checkExpression(d.Initializer))
	}
	return c.s.Any
}
