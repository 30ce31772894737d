package checker

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/types"
)

// typeFromTypeNode returns the type a type node denotes
func (c *Checker) typeFromTypeNode(id ast.NodeID) types.TypeID {
	if !id.IsPresent() {
		return c.s.Error
	}
	if t, ok := c.typeNodes[id]; ok {
		return t
	}
	n := c.store.Get(id)
	if n == nil {
		return c.s.Error
	}
	t := c.computeTypeFromTypeNode(n)
	c.typeNodes[id] = t
	return t
}

func (c *Checker) computeTypeFromTypeNode(n *ast.Node) types.TypeID {
	if n.Flags().HasError() {
		return c.s.Error
	}
	switch n.Kind() {
	case ast.KindAnyKeyword:
		return c.s.Any
	case ast.KindUnknownKeyword:
		return c.s.Unknown
	case ast.KindNeverKeyword:
		return c.s.Never
	case ast.KindVoidKeyword:
		return c.s.Void
	case ast.KindUndefinedKeyword:
		return c.s.Undefined
	case ast.KindNullKeyword:
		return c.s.Null
	case ast.KindStringKeyword:
		return c.s.String
	case ast.KindNumberKeyword:
		return c.s.Number
	case ast.KindBooleanKeyword:
		return c.s.Boolean
	case ast.KindObjectKeyword:
		return c.s.NonPrimitive
	case ast.KindTruncatedType:
		return c.s.Any
	case ast.KindThisType:
		return c.thisTypeOfTypeNode(n)
	case ast.KindTypeReference:
		return c.typeFromTypeReference(n)
	case ast.KindTypeQuery:
		return c.typeOfEntityName(ast.As[ast.TypeQuery](n).ExprName)
	case ast.KindFunctionType, ast.KindConstructorType:
		return c.functionTypeNode(n)
	case ast.KindTypeLiteral:
		return c.typeLiteralType(n)
	case ast.KindArrayType:
		return c.s.ArrayOf(c.typeFromTypeNode(ast.As[ast.ArrayType](n).ElementType))
	case ast.KindTupleType:
		d := ast.As[ast.TupleType](n)
		elems := make([]types.TypeID, len(d.Elements))
		for i, e := range d.Elements {
			elems[i] = c.typeFromTypeNode(e)
		}
		return c.s.Tuple(elems, nil, false)
	case ast.KindUnionType, ast.KindIntersectionType:
		d := ast.As[ast.UnionOrIntersectionType](n)
		parts := make([]types.TypeID, len(d.Types))
		for i, t := range d.Types {
			parts[i] = c.typeFromTypeNode(t)
		}
		if n.Kind() == ast.KindUnionType {
			return c.s.Union(parts...)
		}
		return c.s.Intersection(parts...)
	case ast.KindConditionalType:
		return c.conditionalTypeNode(n)
	case ast.KindInferType:
		return c.typeParameterOf(ast.As[ast.InferType](n).TypeParameter)
	case ast.KindParenthesizedType:
		return c.typeFromTypeNode(ast.As[ast.ParenthesizedType](n).Type)
	case ast.KindTypeOperator:
		return c.typeOperatorType(n)
	case ast.KindIndexedAccessType:
		return c.indexedAccessTypeNode(n)
	case ast.KindMappedType:
		return c.mappedTypeNode(n)
	case ast.KindLiteralType:
		return c.literalTypeNode(n)
	case ast.KindTemplateLiteralType:
		d := ast.As[ast.TemplateLiteralType](n)
		texts := []string{d.Head}
		holes := make([]types.TypeID, 0, len(d.Spans))
		for _, span := range d.Spans {
			s := ast.As[ast.TemplateLiteralTypeSpan](c.store.Get(span))
			holes = append(holes, c.typeFromTypeNode(s.Type))
			texts = append(texts, s.Literal)
		}
		return c.s.TemplateLiteral(texts, holes)
	case ast.KindTypePredicate:
		return c.s.Boolean
	}
	return c.s.Error
}

// thisTypeOfTypeNode is the instance type of the class or interface around a `this` type
func (c *Checker) thisTypeOfTypeNode(n *ast.Node) types.TypeID {
	owner := c.store.FindAncestor(n.ID(), func(a *ast.Node) bool {
		return a.Kind() == ast.KindClassDeclaration || a.Kind() == ast.KindInterfaceDeclaration
	})
	if owner == nil {
		return c.s.Error
	}
	return c.instanceTypeOf(c.b.SymbolOf(owner.ID()))
}

func (c *Checker) typeFromTypeReference(n *ast.Node) types.TypeID {
	d := ast.As[ast.TypeReference](n)
	sym := c.resolveEntityName(d.TypeName, binder.Type, true)
	if !sym.IsPresent() {
		return c.s.Error
	}
	sym = c.b.Merged(sym)
	flags := c.symbolFlags(sym)
	if !flags.IsType() {
		c.error(d.TypeName, diag.CannotFindName, c.store.Text(d.TypeName))
		return c.s.Error
	}
	args := make([]types.TypeID, len(d.TypeArguments))
	for i, a := range d.TypeArguments {
		args[i] = c.typeFromTypeNode(a)
	}
	name := c.symbolName(sym)
	switch {
	case flags.IsClass() || flags.IsInterface():
		declared := c.declaredTypeOfSymbol(sym)
		tps := c.s.TypeParametersOf(declared)
		if !c.checkTypeArgumentCount(n, name, tps, len(args)) {
			return c.s.Error
		}
		if len(tps) == 0 {
			return declared
		}
		c.deferTypeArgumentCheck(d.TypeArguments, tps, args)
		return c.s.Reference(declared, args...)
	case flags.IsTypeAlias():
		declared := c.declaredTypeOfSymbol(sym)
		alias := c.s.AliasOf(sym)
		if alias == nil {
			if !c.checkTypeArgumentCount(n, name, nil, len(args)) {
				return c.s.Error
			}
			return declared
		}
		if !c.checkTypeArgumentCount(n, name, alias.TypeParameters, len(args)) {
			return c.s.Error
		}
		c.deferTypeArgumentCheck(d.TypeArguments, alias.TypeParameters, args)
		return c.s.InstantiateAlias(sym, args)
	}
	if len(args) > 0 {
		c.error(n.ID(), diag.TypeIsNotGeneric, name)
		return c.s.Error
	}
	return c.declaredTypeOfSymbol(sym)
}

// checkTypeArgumentCount reports a reference to a generic type whose number of
// type arguments is out of the range its defaults allow
func (c *Checker) checkTypeArgumentCount(n *ast.Node, name string, tps []types.TypeID, count int) bool {
	if len(tps) == 0 {
		if count > 0 {
			c.error(n.ID(), diag.TypeIsNotGeneric, name)
			return false
		}
		return true
	}
	minCount := len(tps)
	for minCount > 0 && c.s.DefaultOf(tps[minCount-1]).IsPresent() {
		minCount--
	}
	if count < minCount || count > len(tps) {
		c.error(n.ID(), diag.WrongTypeArgumentCount, name, len(tps))
		return false
	}
	return true
}

// deferTypeArgumentCheck checks each type argument against the constraint of
// its parameter once the declarations involved are resolved
func (c *Checker) deferTypeArgumentCheck(nodes []ast.NodeID, tps, args []types.TypeID) {
	if len(args) == 0 {
		return
	}
	c.defer_(func() {
		filled := make([]types.TypeID, len(tps))
		for i := range tps {
			if i < len(args) {
				filled[i] = args[i]
			} else if def := c.s.DefaultOf(tps[i]); def.IsPresent() {
				filled[i] = def
			} else {
				filled[i] = c.s.Unknown
			}
		}
		mapper := types.NewMapper(tps, filled)
		for i, arg := range args {
			constraint := c.s.ConstraintOf(tps[i])
			if !constraint.IsPresent() {
				continue
			}
			constraint = c.s.Instantiate(constraint, mapper)
			c.checkRelated(arg, constraint, types.RelationAssignable, nodes[i], func(chain *diag.MessageChain) *diag.MessageChain {
				return chain.Wrap(diag.TypeArgumentConstraint, c.typeString(arg), c.typeString(constraint))
			})
		}
	})
}

// typeOfEntityName is the type of the value `typeof name` refers to
func (c *Checker) typeOfEntityName(name ast.NodeID) types.TypeID {
	n := c.store.Get(name)
	switch n.Kind() {
	case ast.KindIdentifier:
		text := c.store.Text(name)
		sym := c.resolveName(name, text, binder.Value)
		if !sym.IsPresent() {
			c.error(name, diag.CannotFindName, text)
			return c.s.Error
		}
		return c.typeOfSymbol(sym)
	case ast.KindQualifiedName:
		q := ast.As[ast.QualifiedName](n)
		left := c.typeOfEntityName(q.Left)
		if c.s.Is(left, types.FlagAny) {
			return left
		}
		right := c.store.Text(q.Right)
		if p := c.s.PropertyOf(c.s.ApparentType(left), ast.EscapeName(right)); p != nil {
			return c.s.ReadType(p)
		}
		c.error(q.Right, diag.PropertyDoesNotExist, right, c.typeString(left))
	}
	return c.s.Error
}

// functionTypeNode is the type of `(params) => T` and `new (params) => T`
func (c *Checker) functionTypeNode(n *ast.Node) types.TypeID {
	sym := c.b.SymbolOf(n.ID())
	construct := n.Kind() == ast.KindConstructorType
	return c.s.NewAnonymous(types.ObjectNone, sym, n.ID(), c.outerTypeParameters(n.ID()), func() *types.Members {
		m := types.NewMembers()
		if construct {
			m.ConstructSignatures = []*types.Signature{c.signatureOf(n.ID())}
		} else {
			m.CallSignatures = []*types.Signature{c.signatureOf(n.ID())}
		}
		return m
	})
}

func (c *Checker) typeLiteralType(n *ast.Node) types.TypeID {
	sym := c.b.SymbolOf(n.ID())
	return c.s.NewAnonymous(types.ObjectNone, sym, n.ID(), c.outerTypeParameters(n.ID()), func() *types.Members {
		m := types.NewMembers()
		if s := c.b.Symbol(sym); s != nil {
			c.addMemberTable(m, s.Members)
		}
		return m
	})
}

func (c *Checker) conditionalTypeNode(n *ast.Node) types.TypeID {
	d := ast.As[ast.ConditionalType](n)
	check := c.typeFromTypeNode(d.CheckType)
	root := c.s.NewConditionalRoot(types.ConditionalRoot{
		Declaration:         n.ID(),
		CheckType:           check,
		ExtendsType:         c.typeFromTypeNode(d.ExtendsType),
		TrueType:            c.typeFromTypeNode(d.TrueType),
		FalseType:           c.typeFromTypeNode(d.FalseType),
		IsDistributive:      c.s.Is(check, types.FlagTypeParameter),
		InferTypeParameters: c.inferTypeParameters(n),
		OuterTypeParameters: c.outerTypeParameters(n.ID()),
	})
	return c.s.Conditional(root, nil)
}

func (c *Checker) typeOperatorType(n *ast.Node) types.TypeID {
	d := ast.As[ast.TypeOperator](n)
	operand := c.typeFromTypeNode(d.Type)
	switch d.Operator {
	case ast.KindKeyOfKeyword:
		return c.s.IndexTypeOf(operand)
	case ast.KindReadonlyKeyword:
		if c.s.TupleTarget(operand) != nil {
			return c.s.Tuple(c.s.TupleElements(operand), c.s.TupleTarget(operand).ElementFlags, true)
		}
		return operand
	}
	return c.s.Error
}

func (c *Checker) indexedAccessTypeNode(n *ast.Node) types.TypeID {
	d := ast.As[ast.IndexedAccessType](n)
	object := c.typeFromTypeNode(d.ObjectType)
	index := c.typeFromTypeNode(d.IndexType)
	t, ok := c.s.IndexedAccess(object, index)
	if ok {
		return t
	}
	if c.s.Is(index, types.FlagStringLiteral|types.FlagNumberLiteral) {
		name := types.PropertyNameOf(c.s.LiteralValue(index))
		c.error(d.IndexType, diag.PropertyDoesNotExist, ast.UnescapeName(name), c.typeString(object))
	} else {
		c.error(d.IndexType, diag.IndexTypeNotValid, c.typeString(index))
	}
	return c.s.Error
}

func (c *Checker) mappedTypeNode(n *ast.Node) types.TypeID {
	d := ast.As[ast.MappedType](n)
	tp := c.typeParameterOf(d.TypeParameter)
	constraint := c.s.Error
	if param := ast.As[ast.TypeParameter](c.store.Get(d.TypeParameter)); param != nil && param.Constraint.IsPresent() {
		constraint = c.typeFromTypeNode(param.Constraint)
	}
	template := c.s.Any
	if d.Type.IsPresent() {
		template = c.typeFromTypeNode(d.Type)
	}
	var mods types.MappedModifiers
	switch f := n.Flags(); {
	case f.IsReadonlyMinus():
		mods |= types.ExcludeReadonly
	case f.IsReadonly():
		mods |= types.IncludeReadonly
	}
	switch f := n.Flags(); {
	case f.IsOptionalMinus():
		mods |= types.ExcludeOptional
	case f.IsOptional():
		mods |= types.IncludeOptional
	}
	return c.s.NewMapped(c.b.SymbolOf(n.ID()), n.ID(), tp, constraint, template, mods, c.outerTypeParameters(n.ID()))
}

func (c *Checker) literalTypeNode(n *ast.Node) types.TypeID {
	lit := c.store.Get(ast.As[ast.LiteralType](n).Literal)
	switch lit.Kind() {
	case ast.KindStringLiteral, ast.KindNoSubstitutionTemplateLiteral:
		return c.s.StringLiteral(ast.As[ast.LiteralExpression](lit).Text)
	case ast.KindNumericLiteral:
		return c.s.NumberLiteral(ast.As[ast.LiteralExpression](lit).Value)
	case ast.KindPrefixUnaryExpression:
		u := ast.As[ast.UnaryExpression](lit)
		if operand := ast.As[ast.LiteralExpression](c.store.Get(u.Operand)); operand != nil {
			return c.s.NumberLiteral(-operand.Value)
		}
	case ast.KindTrueKeyword:
		return c.s.True
	case ast.KindFalseKeyword:
		return c.s.False
	case ast.KindNullKeyword:
		return c.s.Null
	}
	return c.s.Error
}
