package checker

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/types"
)

// checkExpression computes the type of an expression, reporting its errors.
// Types computed while a loop is being analyzed are provisional and are not
// cached.
func (c *Checker) checkExpression(id ast.NodeID) types.TypeID {
	if t, ok := c.nodeTypes[id]; ok {
		return t
	}
	n := c.store.Get(id)
	if n == nil {
		return c.s.Error
	}
	t := c.computeExpressionType(n)
	if c.flowLoopDepth == 0 {
		c.nodeTypes[id] = t
	}
	return t
}

func (c *Checker) computeExpressionType(n *ast.Node) types.TypeID {
	id := n.ID()
	switch n.Kind() {
	case ast.KindIdentifier:
		if p := n.ParentNode(); p != nil && p.Kind() == ast.KindPropertyAccessExpression && ast.As[ast.PropertyAccessExpression](p).Name == id {
			return c.checkExpression(p.ID())
		}
		return c.checkIdentifier(n)
	case ast.KindThisKeyword:
		return c.checkThis(n)
	case ast.KindNumericLiteral:
		return c.s.Fresh(c.s.NumberLiteral(ast.As[ast.LiteralExpression](n).Value))
	case ast.KindStringLiteral, ast.KindNoSubstitutionTemplateLiteral:
		return c.s.Fresh(c.s.StringLiteral(c.store.Text(id)))
	case ast.KindTrueKeyword:
		return c.s.Fresh(c.s.True)
	case ast.KindFalseKeyword:
		return c.s.Fresh(c.s.False)
	case ast.KindNullKeyword:
		return c.s.Null
	case ast.KindObjectLiteralExpression:
		return c.checkObjectLiteral(n)
	case ast.KindArrayLiteralExpression:
		return c.checkArrayLiteral(n)
	case ast.KindPropertyAccessExpression:
		return c.checkPropertyAccess(n)
	case ast.KindElementAccessExpression:
		return c.checkElementAccess(n)
	case ast.KindCallExpression, ast.KindNewExpression:
		return c.checkCall(n)
	case ast.KindFunctionExpression, ast.KindArrowFunction:
		c.deferFunctionBody(n)
		return c.typeOfSymbol(c.b.SymbolOf(id))
	case ast.KindParenthesizedExpression:
		return c.checkExpression(ast.As[ast.ParenthesizedExpression](n).Expression)
	case ast.KindSpreadElement:
		return c.checkExpression(ast.As[ast.SpreadElement](n).Expression)
	case ast.KindTypeOfExpression:
		c.checkExpression(ast.As[ast.TypeOfExpression](n).Expression)
		return c.s.String
	case ast.KindPrefixUnaryExpression:
		return c.checkPrefixUnary(n)
	case ast.KindPostfixUnaryExpression:
		d := ast.As[ast.UnaryExpression](n)
		c.checkArithmeticOperand(c.checkExpression(d.Operand), d.Operand)
		c.checkAssignmentTarget(d.Operand)
		return c.s.Number
	case ast.KindBinaryExpression:
		return c.checkBinary(n)
	case ast.KindConditionalExpression:
		d := ast.As[ast.ConditionalExpression](n)
		c.checkExpression(d.Condition)
		return c.s.UnionWith(types.ReduceSubtypes, c.checkExpression(d.WhenTrue), c.checkExpression(d.WhenFalse))
	case ast.KindAsExpression:
		return c.checkAsExpression(n)
	case ast.KindNonNullExpression:
		return c.s.RemoveNullable(c.checkExpression(ast.As[ast.NonNullExpression](n).Expression))
	}
	logger.Debug("expression kind has no type", "kind", n.Kind(), "node", id)
	return c.s.Error
}

// referenceSymbol is the value symbol an identifier reference resolves to
func (c *Checker) referenceSymbol(id ast.NodeID) binder.SymbolID {
	if sym, ok := c.referenceSymbols[id]; ok {
		return sym
	}
	sym := c.resolveName(id, c.store.Text(id), binder.Value)
	if sym.IsPresent() {
		sym = c.b.Merged(sym)
	}
	c.referenceSymbols[id] = sym
	return sym
}

func (c *Checker) checkIdentifier(n *ast.Node) types.TypeID {
	id := n.ID()
	sym := c.referenceSymbol(id)
	if !sym.IsPresent() {
		text := c.store.Text(id)
		if text == "undefined" {
			return c.s.Undefined
		}
		if !n.Flags().HasError() {
			c.error(id, diag.CannotFindName, text)
		}
		return c.s.Error
	}
	declared := c.typeOfSymbol(sym)
	flags := c.symbolFlags(sym)
	if !flags.IsVariable() {
		return declared
	}
	if flags.IsBlockScoped() {
		if decl := c.b.Symbol(sym).ValueDeclaration; c.isUsedBeforeDeclaration(n, decl) {
			c.error(id, diag.UsedBeforeDeclaration, c.symbolName(sym))
		}
	}
	if c.isAssignmentLeft(id) {
		return declared
	}
	if c.isEvolvingArray(sym) {
		if c.isEvolvingArrayOperationTarget(n) {
			return c.s.ArrayOf(c.s.Any)
		}
		return c.finalArrayType(c.flowTypeOfReference(id, declared, declared, true))
	}
	return c.flowTypeOfReference(id, declared, declared, false)
}

// isUsedBeforeDeclaration reports references to a block-scoped variable that
// run before its declaration. References in functions run later, unless the
// function encloses the declaration too.
func (c *Checker) isUsedBeforeDeclaration(usage *ast.Node, declID ast.NodeID) bool {
	decl := c.store.Get(declID)
	if decl == nil || c.store.SourceFileOf(declID) != c.store.SourceFileOf(usage.ID()) {
		return false
	}
	if usage.Pos() >= decl.End() {
		return false
	}
	for p := usage.ParentNode(); p != nil; p = p.ParentNode() {
		if p.Pos() <= decl.Pos() && decl.End() <= p.End() {
			return true
		}
		if p.Kind().IsFunctionLike() || p.Kind() == ast.KindClassDeclaration {
			return false
		}
	}
	return true
}

// isAssignmentLeft reports the left side of a simple assignment
func (c *Checker) isAssignmentLeft(id ast.NodeID) bool {
	for c.store.Kind(c.store.Parent(id)) == ast.KindParenthesizedExpression {
		id = c.store.Parent(id)
	}
	d := ast.As[ast.BinaryExpression](c.store.Get(c.store.Parent(id)))
	return d != nil && d.Operator == ast.KindEqualsToken && d.Left == id
}

// isEvolvingArray reports variables declared without an annotation and
// initialized with `[]`, whose element type grows with what is pushed to them
func (c *Checker) isEvolvingArray(sym binder.SymbolID) bool {
	s := c.b.Symbol(sym)
	if s == nil {
		return false
	}
	decl := c.store.Get(s.ValueDeclaration)
	d := ast.As[ast.VariableDeclaration](decl)
	if d == nil || decl.Kind() != ast.KindVariableDeclaration || d.Type.IsPresent() || !d.Initializer.IsPresent() {
		return false
	}
	return isEmptyArrayLiteral(c.store, d.Initializer)
}

// isEvolvingArrayOperationTarget reports the `x` of `x.push(...)`,
// `x.unshift(...)` and `x[i] = v`
func (c *Checker) isEvolvingArrayOperationTarget(n *ast.Node) bool {
	parent := n.ParentNode()
	if parent == nil {
		return false
	}
	grand := parent.ParentNode()
	if grand == nil {
		return false
	}
	switch parent.Kind() {
	case ast.KindPropertyAccessExpression:
		d := ast.As[ast.PropertyAccessExpression](parent)
		name := c.store.Text(d.Name)
		call := ast.As[ast.CallExpression](grand)
		return d.Expression == n.ID() && (name == "push" || name == "unshift") &&
			grand.Kind() == ast.KindCallExpression && call.Expression == parent.ID()
	case ast.KindElementAccessExpression:
		d := ast.As[ast.ElementAccessExpression](parent)
		b := ast.As[ast.BinaryExpression](grand)
		return d.Expression == n.ID() && b != nil && b.Operator == ast.KindEqualsToken && b.Left == parent.ID()
	}
	return false
}

// finalArrayType turns an evolving array that never received an element into any[]
func (c *Checker) finalArrayType(t types.TypeID) types.TypeID {
	return c.s.MapType(t, func(m types.TypeID) types.TypeID {
		if c.s.IsArray(m) && c.s.ElementType(m) == c.s.Never {
			return c.s.ArrayOf(c.s.Any)
		}
		return m
	})
}

// checkThis is the type of `this`: the instance type inside class members,
// the constructor type in static members, the declared `this` parameter in
// functions, and any elsewhere
func (c *Checker) checkThis(n *ast.Node) types.TypeID {
	t := c.s.Any
	last := n
	for p := n.ParentNode(); p != nil; last, p = p, p.ParentNode() {
		if p.Kind() == ast.KindClassDeclaration {
			class := c.b.SymbolOf(p.ID())
			if last.Flags().IsStatic() {
				t = c.typeOfSymbol(class)
			} else {
				t = c.instanceTypeOf(class)
			}
			break
		}
		if p.Kind() == ast.KindArrowFunction || !p.Kind().IsFunctionLike() {
			continue
		}
		if pp := p.ParentNode(); pp != nil && pp.Kind() == ast.KindClassDeclaration {
			continue
		}
		if sig := ast.As[ast.SignatureDeclaration](p); sig != nil && len(sig.Parameters) > 0 && isThisParameter(c.store, sig.Parameters[0]) {
			if annotation := ast.As[ast.Parameter](c.store.Get(sig.Parameters[0])).Type; annotation.IsPresent() {
				t = c.typeFromTypeNode(annotation)
			}
		}
		break
	}
	return c.flowTypeOfReference(n.ID(), t, t, false)
}

func (c *Checker) checkObjectLiteral(n *ast.Node) types.TypeID {
	m := types.NewMembers()
	for _, id := range ast.As[ast.ObjectLiteralExpression](n).Properties {
		pn := c.store.Get(id)
		var p *types.Property
		switch pn.Kind() {
		case ast.KindPropertyAssignment:
			d := ast.As[ast.PropertyAssignment](pn)
			p = types.NewProperty(c.propertyNameOf(d.Name), 0, c.checkExpressionForMutableLocation(d.Initializer))
		case ast.KindShorthandPropertyAssignment:
			d := ast.As[ast.PropertyAssignment](pn)
			p = types.NewProperty(c.propertyNameOf(d.Name), 0, c.checkExpressionForMutableLocation(d.Name))
		case ast.KindMethodDeclaration:
			c.deferFunctionBody(pn)
			name := c.propertyNameOf(ast.As[ast.SignatureDeclaration](pn).Name)
			p = types.NewProperty(name, types.PropertyMethod, c.typeOfSymbol(c.b.SymbolOf(id)))
		case ast.KindSpreadElement:
			spread := c.checkExpression(ast.As[ast.SpreadElement](pn).Expression)
			if c.s.Is(spread, types.FlagAny) {
				return spread
			}
			for _, sp := range c.s.PropertiesOf(c.s.RemoveNullable(spread)) {
				cp := types.NewProperty(sp.Name, sp.Flags&^types.PropertyReadonly, c.s.PropertyType(sp))
				cp.Symbol, cp.Declaration = sp.Symbol, sp.Declaration
				m.Add(cp)
			}
			continue
		default:
			continue
		}
		p.Symbol = c.b.SymbolOf(id)
		p.Declaration = id
		m.Add(p)
	}
	return c.s.Object(m, types.ObjectLiteral|types.ObjectFresh)
}

// checkArrayLiteral types `[a, b]` as an array of its element types, or as a
// tuple when the context expects one
func (c *Checker) checkArrayLiteral(n *ast.Node) types.TypeID {
	elems := ast.As[ast.ArrayLiteralExpression](n).Elements
	if len(elems) == 0 {
		return c.s.ArrayOf(c.s.Never)
	}
	contextual, _ := c.contextualTypeOf(n.ID())
	tupleContext := contextual.IsPresent() && c.s.SomeType(contextual, func(m types.TypeID) bool { return c.s.TupleTarget(m) != nil })
	ts := make([]types.TypeID, 0, len(elems))
	hasSpread := false
	for _, e := range elems {
		if c.store.Kind(e) != ast.KindSpreadElement {
			ts = append(ts, c.checkExpressionForMutableLocation(e))
			continue
		}
		hasSpread = true
		spread := c.checkExpression(e)
		switch {
		case c.s.Is(spread, types.FlagAny):
			ts = append(ts, spread)
		case c.s.IsArrayOrTuple(spread):
			ts = append(ts, c.s.ElementType(spread))
		default:
			c.error(e, diag.NotIterable, c.typeString(spread))
			ts = append(ts, c.s.Error)
		}
	}
	if tupleContext && !hasSpread {
		return c.s.Tuple(ts, nil, false)
	}
	return c.s.ArrayOf(c.s.UnionWith(types.ReduceSubtypes, ts...))
}

// isOptionalChain reports accesses and calls that are part of a `?.` chain
func (c *Checker) isOptionalChain(n *ast.Node) bool {
	for n != nil {
		if n.Flags().IsOptional() {
			return true
		}
		var next ast.NodeID
		switch n.Kind() {
		case ast.KindPropertyAccessExpression:
			next = ast.As[ast.PropertyAccessExpression](n).Expression
		case ast.KindElementAccessExpression:
			next = ast.As[ast.ElementAccessExpression](n).Expression
		case ast.KindCallExpression:
			next = ast.As[ast.CallExpression](n).Expression
		case ast.KindNonNullExpression:
			next = ast.As[ast.NonNullExpression](n).Expression
		default:
			return false
		}
		n = c.store.Get(next)
	}
	return false
}

// checkAccessObject is the type of the object of a property or element access
// with null and undefined removed. Outside optional chains, their presence is
// reported under strict null checks.
func (c *Checker) checkAccessObject(n *ast.Node, expr ast.NodeID) (types.TypeID, bool) {
	object := c.checkExpression(expr)
	if c.isOptionalChain(n) {
		return c.s.RemoveNullable(object), true
	}
	return c.checkNonNullType(object, expr), false
}

// checkNonNullType reports a possibly null or undefined value used as an object
func (c *Checker) checkNonNullType(t types.TypeID, expr ast.NodeID) types.TypeID {
	if !c.opts.StrictNullChecks {
		return t
	}
	var includes types.Flags
	for _, m := range c.s.Constituents(t) {
		includes |= c.s.Flags(m)
	}
	if includes&types.FlagNullable == 0 {
		return t
	}
	name := c.entityNameText(expr)
	if name == "" {
		name = "Object"
	}
	switch {
	case includes&types.FlagNull != 0 && includes&types.FlagUndefined != 0:
		c.error(expr, diag.ObjectPossiblyNullOrUndefined, name)
	case includes&types.FlagNull != 0:
		c.error(expr, diag.ObjectPossiblyNull, name)
	default:
		c.error(expr, diag.ObjectPossiblyUndefined, name)
	}
	return c.s.RemoveNullable(t)
}

// entityNameText is the source text of identifiers, `this` and dotted names,
// or ""
func (c *Checker) entityNameText(id ast.NodeID) string {
	n := c.store.Get(c.store.SkipParentheses(id))
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case ast.KindIdentifier, ast.KindThisKeyword:
		return c.store.Text(n.ID())
	case ast.KindPropertyAccessExpression:
		d := ast.As[ast.PropertyAccessExpression](n)
		if left := c.entityNameText(d.Expression); left != "" {
			return left + "." + c.store.Text(d.Name)
		}
	}
	return ""
}

func (c *Checker) checkPropertyAccess(n *ast.Node) types.TypeID {
	d := ast.As[ast.PropertyAccessExpression](n)
	object, chained := c.checkAccessObject(n, d.Expression)
	t := c.propertyAccessType(object, c.propertyNameOf(d.Name), d.Name)
	if t == c.s.Error {
		return t
	}
	if c.isNarrowableReference(n.ID()) && !c.store.IsAssignmentTarget(n.ID()) {
		t = c.flowTypeOfReference(n.ID(), t, t, false)
	}
	if chained {
		t = c.s.AddOptionality(t)
	}
	return t
}

// propertyAccessType is the type read from property name of object, falling
// back to its index signatures
func (c *Checker) propertyAccessType(object types.TypeID, name string, at ast.NodeID) types.TypeID {
	if c.s.Is(object, types.FlagAny) {
		return object
	}
	if p := c.s.PropertyOf(object, name); p != nil {
		return c.s.ReadType(p)
	}
	if info := c.s.IndexInfoOf(object, types.IsNumericName(name)); info != nil {
		return info.Type
	}
	if info := c.s.IndexInfoOf(object, false); info != nil {
		return info.Type
	}
	c.error(at, diag.PropertyDoesNotExist, ast.UnescapeName(name), c.typeString(object))
	return c.s.Error
}

func (c *Checker) checkElementAccess(n *ast.Node) types.TypeID {
	d := ast.As[ast.ElementAccessExpression](n)
	object, chained := c.checkAccessObject(n, d.Expression)
	index := c.checkExpression(d.Argument)
	t := c.elementAccessType(object, index, d.Argument)
	if t == c.s.Error {
		return t
	}
	if c.isNarrowableReference(n.ID()) && !c.store.IsAssignmentTarget(n.ID()) {
		t = c.flowTypeOfReference(n.ID(), t, t, false)
	}
	if chained {
		t = c.s.AddOptionality(t)
	}
	return t
}

// elementAccessType is `object[index]`. Indexing with a string or number
// that matches no index signature yields any.
func (c *Checker) elementAccessType(object, index types.TypeID, at ast.NodeID) types.TypeID {
	if c.s.Is(object, types.FlagAny) {
		return object
	}
	if index == c.s.Error {
		return index
	}
	if t, ok := c.s.IndexedAccess(object, c.s.MapType(index, c.s.Regular)); ok {
		return t
	}
	switch {
	case c.s.Is(index, types.FlagStringLiteral|types.FlagNumberLiteral):
		name := types.PropertyNameOf(c.s.LiteralValue(index))
		c.error(at, diag.PropertyDoesNotExist, ast.UnescapeName(name), c.typeString(object))
	case c.s.EveryType(index, func(m types.TypeID) bool { return c.s.Is(m, types.FlagStringLike|types.FlagNumberLike) }):
		return c.s.Any
	default:
		c.error(at, diag.IndexTypeNotValid, c.typeString(index))
	}
	return c.s.Error
}

func (c *Checker) checkPrefixUnary(n *ast.Node) types.TypeID {
	d := ast.As[ast.UnaryExpression](n)
	operand := c.checkExpression(d.Operand)
	switch d.Operator {
	case ast.KindExclamationToken:
		return c.s.Boolean
	case ast.KindVoidKeyword:
		return c.s.Undefined
	case ast.KindMinusToken:
		if c.store.Kind(d.Operand) == ast.KindNumericLiteral {
			return c.s.Fresh(c.s.NumberLiteral(-ast.As[ast.LiteralExpression](c.store.Get(d.Operand)).Value))
		}
		c.checkArithmeticOperand(operand, d.Operand)
	case ast.KindPlusPlusToken, ast.KindMinusMinusToken:
		c.checkArithmeticOperand(operand, d.Operand)
		c.checkAssignmentTarget(d.Operand)
	}
	return c.s.Number
}

// checkArithmeticOperand reports operands that are not numbers, enums or any
func (c *Checker) checkArithmeticOperand(t types.TypeID, at ast.NodeID) bool {
	allowed := types.FlagNumberLike | types.FlagEnumLiteral | types.FlagAny
	if !c.opts.StrictNullChecks {
		allowed |= types.FlagNullable
	}
	if c.s.EveryType(t, func(m types.TypeID) bool { return c.s.Is(m, allowed) }) {
		return true
	}
	c.error(at, diag.ArithmeticOperand)
	return false
}

func (c *Checker) checkBinary(n *ast.Node) types.TypeID {
	d := ast.As[ast.BinaryExpression](n)
	op := d.Operator
	switch {
	case op == ast.KindEqualsToken:
		return c.checkAssignment(d)
	case op == ast.KindCommaToken:
		c.checkExpression(d.Left)
		return c.checkExpression(d.Right)
	case op.IsCompoundAssignment():
		left := c.checkExpression(d.Left)
		right := c.checkExpression(d.Right)
		result := c.binaryResult(n.ID(), op.CompoundBase(), left, right, d)
		c.checkAssignmentTarget(d.Left)
		if target := c.assignmentTargetType(d.Left); target.IsPresent() && result != c.s.Error {
			c.checkAssignable(result, target, d.Left)
		}
		return result
	}
	left := c.checkExpression(d.Left)
	right := c.checkExpression(d.Right)
	return c.binaryResult(n.ID(), op, left, right, d)
}

func (c *Checker) binaryResult(at ast.NodeID, op ast.Kind, left, right types.TypeID, d *ast.BinaryExpression) types.TypeID {
	if left == c.s.Error || right == c.s.Error {
		if op.IsEqualityOperator() || op == ast.KindInKeyword || op == ast.KindInstanceOfKeyword {
			return c.s.Boolean
		}
		return c.s.Error
	}
	switch op {
	case ast.KindAmpersandAmpersandToken:
		return c.s.Union(c.definitelyFalsyPart(left), right)
	case ast.KindBarBarToken:
		return c.s.UnionWith(types.ReduceSubtypes, c.removeDefinitelyFalsy(left), right)
	case ast.KindQuestionQuestionToken:
		if !c.s.SomeType(left, func(m types.TypeID) bool { return c.s.Is(m, types.FlagNullable|types.FlagAnyOrUnknown) }) {
			return left
		}
		return c.s.UnionWith(types.ReduceSubtypes, c.s.RemoveNullable(left), right)
	case ast.KindPlusToken:
		switch {
		case c.isTypeOf(left, types.FlagStringLike) || c.isTypeOf(right, types.FlagStringLike):
			return c.s.String
		case c.isTypeOf(left, types.FlagNumberLike|types.FlagEnumLiteral) && c.isTypeOf(right, types.FlagNumberLike|types.FlagEnumLiteral):
			return c.s.Number
		case c.s.Is(left, types.FlagAny) || c.s.Is(right, types.FlagAny):
			return c.s.Any
		}
		c.error(at, diag.OperatorCannotBeApplied, ast.TokenText(op), c.typeString(left), c.typeString(right))
		return c.s.Error
	case ast.KindMinusToken, ast.KindAsteriskToken, ast.KindSlashToken, ast.KindPercentToken,
		ast.KindAmpersandToken, ast.KindBarToken:
		c.checkArithmeticOperand(left, d.Left)
		c.checkArithmeticOperand(right, d.Right)
		return c.s.Number
	case ast.KindLessThanToken, ast.KindGreaterThanToken, ast.KindLessThanEqualsToken, ast.KindGreaterThanEqualsToken:
		l, r := c.s.BaseTypeOfLiteral(c.s.Regular(left)), c.s.BaseTypeOfLiteral(c.s.Regular(right))
		if !c.s.Is(l, types.FlagAny) && !c.s.Is(r, types.FlagAny) && !c.s.IsComparable(l, r) {
			c.error(at, diag.OperatorCannotBeApplied, ast.TokenText(op), c.typeString(left), c.typeString(right))
		}
		return c.s.Boolean
	case ast.KindEqualsEqualsToken, ast.KindExclamationEqualsToken, ast.KindEqualsEqualsEqualsToken, ast.KindExclamationEqualsEqualsToken:
		if !c.isComparableForEquality(left, right) {
			c.error(at, diag.NoCommonOverlap, c.typeString(c.s.Regular(left)), c.typeString(c.s.Regular(right)))
		}
		return c.s.Boolean
	case ast.KindInKeyword, ast.KindInstanceOfKeyword:
		return c.s.Boolean
	}
	return c.s.Error
}

// isTypeOf reports whether every member of t has one of flags
func (c *Checker) isTypeOf(t types.TypeID, flags types.Flags) bool {
	return c.s.EveryType(t, func(m types.TypeID) bool { return c.s.Is(m, flags) })
}

// isComparableForEquality reports operands `===` may find equal. Comparing to
// null or undefined is always allowed.
func (c *Checker) isComparableForEquality(left, right types.TypeID) bool {
	if c.isTypeOf(left, types.FlagNullable) || c.isTypeOf(right, types.FlagNullable) {
		return true
	}
	l, r := c.s.MapType(left, c.s.Regular), c.s.MapType(right, c.s.Regular)
	return c.s.IsComparable(l, r)
}

// definitelyFalsyPart is the part of t that can be falsy, as the type of
// `t && x` when t is falsy
func (c *Checker) definitelyFalsyPart(t types.TypeID) types.TypeID {
	return c.s.MapType(t, func(m types.TypeID) types.TypeID {
		f := c.s.Flags(m)
		switch {
		case f&(types.FlagDefinitelyFalsy|types.FlagAnyOrUnknown) != 0:
			return m
		case f&types.FlagString != 0:
			return c.s.StringLiteral("")
		case f&types.FlagNumber != 0:
			return c.s.NumberLiteral(0)
		case c.isFalsyLiteral(m):
			return m
		}
		return types.NoType
	})
}

// isFalsyLiteral reports false, "" and 0
func (c *Checker) isFalsyLiteral(t types.TypeID) bool {
	switch c.s.LiteralValue(c.s.Regular(t)) {
	case false, "", float64(0):
		return c.s.Is(t, types.FlagLiteral)
	}
	return false
}

// removeDefinitelyFalsy removes the members of t that are always falsy
func (c *Checker) removeDefinitelyFalsy(t types.TypeID) types.TypeID {
	return c.s.FilterType(t, func(m types.TypeID) bool {
		return !c.s.Is(m, types.FlagDefinitelyFalsy) && !c.isFalsyLiteral(m)
	})
}

// checkAssignment checks `left = right`. The type of the assignment is the
// type of its right side.
func (c *Checker) checkAssignment(d *ast.BinaryExpression) types.TypeID {
	target := c.checkExpression(d.Left)
	c.checkAssignmentTarget(d.Left)
	source := c.checkExpression(d.Right)
	if target != c.s.Error && source != c.s.Error {
		c.checkAssignable(source, target, d.Left)
	}
	return source
}

// checkAssignmentTarget reports assignments to constants and readonly properties
func (c *Checker) checkAssignmentTarget(id ast.NodeID) {
	id = c.store.SkipParentheses(id)
	n := c.store.Get(id)
	if n == nil {
		return
	}
	switch n.Kind() {
	case ast.KindIdentifier:
		if sym := c.referenceSymbol(id); sym.IsPresent() && c.isConstVariable(sym) {
			c.error(id, diag.CannotAssignToConstant, c.store.Text(id))
		}
	case ast.KindPropertyAccessExpression:
		d := ast.As[ast.PropertyAccessExpression](n)
		c.checkReadonlyProperty(d.Expression, c.propertyNameOf(d.Name), d.Name)
	case ast.KindElementAccessExpression:
		d := ast.As[ast.ElementAccessExpression](n)
		if index := c.checkExpression(d.Argument); c.s.Is(index, types.FlagStringLiteral|types.FlagNumberLiteral) {
			c.checkReadonlyProperty(d.Expression, types.PropertyNameOf(c.s.LiteralValue(index)), d.Argument)
		}
	}
}

// checkReadonlyProperty reports writes to a readonly property. Constructors
// may initialize the readonly properties of `this`.
func (c *Checker) checkReadonlyProperty(object ast.NodeID, name string, at ast.NodeID) {
	if c.store.Kind(c.store.SkipParentheses(object)) == ast.KindThisKeyword {
		if fn := c.store.ContainingFunction(object); fn != nil && fn.Kind() == ast.KindConstructor {
			return
		}
	}
	t := c.s.RemoveNullable(c.checkExpression(object))
	if c.s.Is(t, types.FlagAny) {
		return
	}
	if p := c.s.PropertyOf(t, name); p != nil && p.Flags.IsReadonly() {
		c.error(at, diag.CannotAssignToReadonly, ast.UnescapeName(name))
	}
}

// checkAsExpression checks `e as T`: either type must be comparable to the other
func (c *Checker) checkAsExpression(n *ast.Node) types.TypeID {
	d := ast.As[ast.AsExpression](n)
	source := c.checkExpression(d.Expression)
	target := c.typeFromTypeNode(d.Type)
	if source == c.s.Error || target == c.s.Error {
		return target
	}
	widened := c.s.Widen(source)
	if !c.s.IsTypeRelatedTo(target, widened, types.RelationComparable) &&
		!c.s.IsTypeRelatedTo(c.s.Regular(source), target, types.RelationComparable) {
		c.error(n.ID(), diag.ConversionMayBeMistake, c.typeString(widened), c.typeString(target))
	}
	return target
}
