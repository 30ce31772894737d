package checker

import (
	"strconv"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/flow"
	"github.com/cottand/strux/frontend/types"
)

// maxLoopIterations bounds the fixed point computed for a loop label
const maxLoopIterations = 10

// loopKey identifies the analysis of one reference at one loop label
type loopKey struct {
	label flow.ID
	ref   string
}

// flowTypeOfReference is the type of a reference at its position in the flow
// graph: its declared type narrowed by the assignments and conditions that
// control flow passes through to reach it. initial is the type it has where
// the walk leaves its container. Evolving references take the type of what
// is assigned to them and grow with array mutations.
func (c *Checker) flowTypeOfReference(ref ast.NodeID, declared, initial types.TypeID, evolving bool) types.TypeID {
	start := c.b.FlowAt(ref)
	if !start.IsPresent() || c.graph.IsUnreachable(start) {
		return declared
	}
	key := c.referenceKey(ref)
	if key == "" {
		return declared
	}
	w := &flowWalker{
		c:        c,
		ref:      ref,
		key:      key,
		declared: declared,
		initial:  initial,
		evolving: evolving,
		reduced:  map[flow.ID][]flow.ID{},
		cache:    map[flow.ID]types.TypeID{},
	}
	t := w.typeAt(start)
	if t == c.s.Never && !c.graph.IsReachable(start) {
		return declared
	}
	return t
}

// referenceKey names what a narrowable reference denotes: a symbol, `this`,
// or a property path rooted at one. It is "" for other expressions.
func (c *Checker) referenceKey(id ast.NodeID) string {
	n := c.store.Get(id)
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case ast.KindIdentifier:
		if sym := c.referenceSymbol(id); sym.IsPresent() {
			return strconv.FormatUint(uint64(sym), 10)
		}
	case ast.KindThisKeyword:
		return "this"
	case ast.KindParenthesizedExpression:
		return c.referenceKey(ast.As[ast.ParenthesizedExpression](n).Expression)
	case ast.KindNonNullExpression:
		return c.referenceKey(ast.As[ast.NonNullExpression](n).Expression)
	case ast.KindPropertyAccessExpression, ast.KindElementAccessExpression:
		expr, name, ok := c.accessParts(n)
		if !ok {
			return ""
		}
		if left := c.referenceKey(expr); left != "" {
			return left + "." + name
		}
	}
	return ""
}

// accessParts splits `e.name` and `e["name"]` into e and the escaped name
func (c *Checker) accessParts(n *ast.Node) (ast.NodeID, string, bool) {
	switch n.Kind() {
	case ast.KindPropertyAccessExpression:
		d := ast.As[ast.PropertyAccessExpression](n)
		return d.Expression, c.propertyNameOf(d.Name), true
	case ast.KindElementAccessExpression:
		d := ast.As[ast.ElementAccessExpression](n)
		if !c.store.Kind(d.Argument).IsLiteral() {
			return ast.NoNode, "", false
		}
		return d.Expression, c.propertyNameOf(d.Argument), true
	}
	return ast.NoNode, "", false
}

// isNarrowableReference reports identifiers, `this` and property accesses
// rooted at them
func (c *Checker) isNarrowableReference(id ast.NodeID) bool {
	n := c.store.Get(id)
	if n == nil {
		return false
	}
	switch n.Kind() {
	case ast.KindIdentifier, ast.KindThisKeyword:
		return true
	case ast.KindParenthesizedExpression:
		return c.isNarrowableReference(ast.As[ast.ParenthesizedExpression](n).Expression)
	case ast.KindNonNullExpression:
		return c.isNarrowableReference(ast.As[ast.NonNullExpression](n).Expression)
	case ast.KindPropertyAccessExpression, ast.KindElementAccessExpression:
		expr, _, ok := c.accessParts(n)
		return ok && c.isNarrowableReference(expr)
	}
	return false
}

// skipReferenceWrappers unwraps parentheses and non-null assertions
func (c *Checker) skipReferenceWrappers(id ast.NodeID) ast.NodeID {
	for {
		switch c.store.Kind(id) {
		case ast.KindParenthesizedExpression:
			id = ast.As[ast.ParenthesizedExpression](c.store.Get(id)).Expression
		case ast.KindNonNullExpression:
			id = ast.As[ast.NonNullExpression](c.store.Get(id)).Expression
		default:
			return id
		}
	}
}

// isMatchingReference reports whether target denotes the same reference as
// source. source may also be the variable declaration of a symbol.
func (c *Checker) isMatchingReference(source, target ast.NodeID) bool {
	source, target = c.skipReferenceWrappers(source), c.skipReferenceWrappers(target)
	s, t := c.store.Get(source), c.store.Get(target)
	if s == nil || t == nil {
		return false
	}
	switch t.Kind() {
	case ast.KindIdentifier:
		sym := c.referenceSymbol(target)
		if !sym.IsPresent() {
			return false
		}
		switch s.Kind() {
		case ast.KindIdentifier:
			return c.referenceSymbol(source) == sym
		case ast.KindVariableDeclaration:
			return c.b.Merged(c.b.SymbolOf(source)) == sym
		}
	case ast.KindThisKeyword:
		return s.Kind() == ast.KindThisKeyword
	case ast.KindPropertyAccessExpression, ast.KindElementAccessExpression:
		texpr, tname, ok := c.accessParts(t)
		if !ok {
			return false
		}
		sexpr, sname, ok := c.accessParts(s)
		return ok && sname == tname && c.isMatchingReference(sexpr, texpr)
	}
	return false
}

// flowWalker walks the flow graph backwards from a reference
type flowWalker struct {
	c        *Checker
	ref      ast.NodeID
	key      string
	declared types.TypeID
	initial  types.TypeID
	evolving bool

	// reduced overrides the antecedents of finally labels while a ReduceLabel is walked
	reduced map[flow.ID][]flow.ID
	// cache holds the types at branch labels, valid while no loop of this walk is in progress
	cache       map[flow.ID]types.TypeID
	activeLoops int
}

func (w *flowWalker) typeAt(id flow.ID) types.TypeID {
	c := w.c
	for {
		n := c.graph.Get(id)
		if n == nil {
			return w.initial
		}
		f := n.Flags()
		switch {
		case f.IsUnreachable():
			return c.s.Never
		case f.IsAssignment():
			if t, ok := w.assignmentType(n); ok {
				return t
			}
			id = n.Antecedent()
		case f.IsCall():
			if t, ok := w.callType(n); ok {
				return t
			}
			id = n.Antecedent()
		case f.IsArrayMutation():
			if t, ok := w.arrayMutationType(n); ok {
				return t
			}
			id = n.Antecedent()
		case f.IsCondition():
			t := w.typeAt(n.Antecedent())
			if t == c.s.Never {
				return t
			}
			return w.narrow(t, n.Syntax(), f.IsTrueCondition())
		case f.IsSwitchClause():
			return w.switchClauseType(n)
		case f.IsReduceLabel():
			target := n.Target()
			saved, had := w.reduced[target]
			w.reduced[target] = n.Reduced()
			t := w.typeAt(n.Antecedent())
			if had {
				w.reduced[target] = saved
			} else {
				delete(w.reduced, target)
			}
			return t
		case f.IsBranchLabel():
			ants := w.antecedents(id)
			if len(ants) == 1 {
				id = ants[0]
				continue
			}
			return w.branchType(id, ants)
		case f.IsLoopLabel():
			return w.loopType(id)
		case f.IsStart():
			next, ok := w.continueOutside(n.Syntax())
			if !ok {
				return w.initial
			}
			id = next
		default:
			return w.initial
		}
	}
}

func (w *flowWalker) antecedents(id flow.ID) []flow.ID {
	if r, ok := w.reduced[id]; ok {
		return r
	}
	ants, _ := w.c.graph.Antecedents(id)
	return ants
}

func (w *flowWalker) cacheable() bool {
	return w.activeLoops == 0 && len(w.reduced) == 0
}

func (w *flowWalker) branchType(id flow.ID, ants []flow.ID) types.TypeID {
	if t, ok := w.cache[id]; ok && w.cacheable() {
		return t
	}
	ts := make([]types.TypeID, 0, len(ants))
	for _, a := range ants {
		ts = append(ts, w.typeAt(a))
	}
	t := w.union(ts)
	if w.cacheable() {
		w.cache[id] = t
	}
	return t
}

// union joins the types flowing into a label. The element types of evolving
// arrays are joined into a single array.
func (w *flowWalker) union(ts []types.TypeID) types.TypeID {
	s := w.c.s
	if !w.evolving {
		return s.Union(ts...)
	}
	var elems, others []types.TypeID
	for _, t := range ts {
		for _, m := range s.Constituents(t) {
			if s.IsArray(m) {
				elems = append(elems, s.ElementType(m))
			} else {
				others = append(others, m)
			}
		}
	}
	if len(elems) > 0 {
		others = append(others, s.ArrayOf(s.Union(elems...)))
	}
	return s.Union(others...)
}

// loopType computes the type at a loop label as a fixed point: the type on
// entry joined with the types flowing back from the loop body. While the
// body is analyzed the type computed so far stands in for the label.
func (w *flowWalker) loopType(id flow.ID) types.TypeID {
	c := w.c
	ants, sealed := c.graph.Antecedents(id)
	if !sealed || len(ants) == 0 {
		return w.declared
	}
	key := loopKey{id, w.key}
	if t, ok := c.loopTypes[key]; ok {
		return t
	}
	entry := w.typeAt(ants[0])
	c.loopTypes[key] = entry
	c.flowLoopDepth++
	w.activeLoops++
	result := entry
	for i := 0; i < maxLoopIterations; i++ {
		ts := []types.TypeID{entry}
		for _, a := range ants[1:] {
			ts = append(ts, w.typeAt(a))
		}
		next := w.union(ts)
		if next == result && i > 0 {
			break
		}
		result = next
		c.loopTypes[key] = result
	}
	w.activeLoops--
	c.flowLoopDepth--
	delete(c.loopTypes, key)
	return result
}

// continueOutside decides whether the walk continues from the Start of
// container into the flow where container was created. Namespace bodies
// always do. Closures do for `this` in arrow functions and for variables
// declared outside that are never reassigned.
func (w *flowWalker) continueOutside(container ast.NodeID) (flow.ID, bool) {
	c := w.c
	outer := c.b.FlowAt(container)
	if !outer.IsPresent() {
		return flow.NoFlow, false
	}
	n := c.store.Get(container)
	if n.Kind() == ast.KindModuleBlock {
		return outer, true
	}
	root := c.store.Get(w.ref)
	for root != nil {
		expr, _, ok := c.accessParts(root)
		if !ok {
			break
		}
		root = c.store.Get(expr)
	}
	if root == nil {
		return flow.NoFlow, false
	}
	root = c.store.Get(c.skipReferenceWrappers(root.ID()))
	switch root.Kind() {
	case ast.KindThisKeyword:
		return outer, n.Kind() == ast.KindArrowFunction
	case ast.KindIdentifier:
		sym := c.referenceSymbol(root.ID())
		decl := c.store.Get(c.b.Symbol(sym).ValueDeclaration)
		if decl == nil || (n.Pos() <= decl.Pos() && decl.End() <= n.End()) {
			return flow.NoFlow, false
		}
		if c.isConstVariable(sym) || (c.symbolFlags(sym).IsVariable() && !c.isSymbolAssigned(sym)) {
			return outer, true
		}
	}
	return flow.NoFlow, false
}

// isSymbolAssigned reports variables assigned anywhere after their declaration
func (c *Checker) isSymbolAssigned(sym binder.SymbolID) bool {
	s := c.b.Symbol(sym)
	if s == nil {
		return false
	}
	file := c.store.SourceFileOf(s.ValueDeclaration)
	if file == nil {
		return false
	}
	if !c.scannedFiles.Contains(file.ID()) {
		c.scannedFiles.Insert(file.ID())
		c.store.Walk(file.ID(), func(n *ast.Node) bool {
			if n.Kind() == ast.KindIdentifier && c.store.IsAssignmentTarget(n.ID()) {
				if target := c.referenceSymbol(n.ID()); target.IsPresent() {
					c.assignedSymbols.Insert(target)
				}
			}
			return !n.Kind().IsTypeNode()
		})
	}
	return c.assignedSymbols.Contains(sym)
}

// assignmentType is the type of the reference after an assignment node. It
// reports false when the assignment does not concern the reference.
func (w *flowWalker) assignmentType(n *flow.Node) (types.TypeID, bool) {
	c := w.c
	node := n.Syntax()
	if c.isMatchingReference(node, w.ref) {
		assigned := w.assignedType(node)
		if w.evolving {
			if d := ast.As[ast.VariableDeclaration](c.store.Get(node)); d != nil && isEmptyArrayLiteral(c.store, d.Initializer) {
				return c.s.ArrayOf(c.s.Never), true
			}
			return c.s.Widen(assigned), true
		}
		if !c.s.Is(w.declared, types.FlagUnion) {
			return w.declared, true
		}
		return c.assignmentReducedType(w.declared, assigned), true
	}
	for r := w.parentReference(w.ref); r.IsPresent(); r = w.parentReference(r) {
		if c.isMatchingReference(node, r) {
			return w.declared, true
		}
	}
	return types.NoType, false
}

// parentReference is the object of a property access reference, or NoNode
func (w *flowWalker) parentReference(id ast.NodeID) ast.NodeID {
	n := w.c.store.Get(w.c.skipReferenceWrappers(id))
	if n == nil {
		return ast.NoNode
	}
	expr, _, ok := w.c.accessParts(n)
	if !ok {
		return ast.NoNode
	}
	return expr
}

// assignedType is the type an assignment node stores into its target
func (w *flowWalker) assignedType(node ast.NodeID) types.TypeID {
	c := w.c
	n := c.store.Get(node)
	if d := ast.As[ast.VariableDeclaration](n); d != nil && n.Kind() == ast.KindVariableDeclaration {
		if d.Initializer.IsPresent() {
			return c.checkExpression(d.Initializer)
		}
		return w.declared
	}
	target := node
	parent := c.store.Get(c.store.Parent(target))
	for parent != nil && parent.Kind() == ast.KindParenthesizedExpression {
		target = parent.ID()
		parent = parent.ParentNode()
	}
	if parent == nil {
		return w.declared
	}
	switch parent.Kind() {
	case ast.KindBinaryExpression:
		d := ast.As[ast.BinaryExpression](parent)
		if d.Operator == ast.KindEqualsToken {
			return c.checkExpression(d.Right)
		}
		return c.checkExpression(parent.ID())
	case ast.KindPrefixUnaryExpression, ast.KindPostfixUnaryExpression:
		return c.s.Number
	case ast.KindForInStatement:
		return c.s.String
	case ast.KindForOfStatement:
		return c.iteratedTypeOf(ast.As[ast.LoopStatement](parent).Condition)
	}
	return w.declared
}

// assignmentReducedType narrows a declared union to the members the assigned
// type may be assigned to
func (c *Checker) assignmentReducedType(declared, assigned types.TypeID) types.TypeID {
	if declared == assigned {
		return declared
	}
	reduced := c.s.FilterType(declared, func(m types.TypeID) bool {
		return c.s.SomeType(assigned, func(a types.TypeID) bool { return c.s.IsAssignable(a, m) })
	})
	if c.s.IsAssignable(assigned, reduced) {
		return reduced
	}
	return declared
}

// callType applies the assertion a call to an assertion function makes
func (w *flowWalker) callType(n *flow.Node) (types.TypeID, bool) {
	c := w.c
	call := ast.As[ast.CallExpression](c.store.Get(n.Syntax()))
	sig := c.effectsSignature(n.Syntax())
	if sig == nil || sig.Predicate == nil || !sig.Predicate.Kind.IsAsserts() {
		return types.NoType, false
	}
	pred := sig.Predicate
	var subject ast.NodeID
	switch pred.Kind {
	case types.PredicateAssertsIdentifier:
		if pred.ParameterIndex < 0 || pred.ParameterIndex >= len(call.Arguments) {
			return types.NoType, false
		}
		subject = call.Arguments[pred.ParameterIndex]
	case types.PredicateAssertsThis:
		access := ast.As[ast.PropertyAccessExpression](c.store.Get(c.store.SkipParentheses(call.Expression)))
		if access == nil {
			return types.NoType, false
		}
		subject = access.Expression
	}
	if !subject.IsPresent() {
		return types.NoType, false
	}
	if !pred.Type.IsPresent() {
		if !c.isMatchingReference(subject, w.ref) && !c.containsReference(subject, w) {
			return types.NoType, false
		}
		return w.narrow(w.typeAt(n.Antecedent()), subject, true), true
	}
	if !c.isMatchingReference(subject, w.ref) {
		return types.NoType, false
	}
	return c.narrowedType(w.typeAt(n.Antecedent()), pred.Type, true), true
}

// containsReference reports conditions that mention the walked reference
func (c *Checker) containsReference(expr ast.NodeID, w *flowWalker) bool {
	found := false
	c.store.Walk(expr, func(n *ast.Node) bool {
		if found || n.Kind().IsFunctionLike() {
			return false
		}
		if c.isNarrowableReference(n.ID()) && c.isMatchingReference(n.ID(), w.ref) {
			found = true
		}
		return true
	})
	return found
}

// effectsSignature is the signature of a call for the purpose of flow
// analysis: the one it resolved to, or the single signature of its callee
func (c *Checker) effectsSignature(call ast.NodeID) *types.Signature {
	if sig, ok := c.resolvedCalls[call]; ok {
		return sig
	}
	d := ast.As[ast.CallExpression](c.store.Get(call))
	if d == nil || c.store.Kind(call) != ast.KindCallExpression {
		return nil
	}
	sigs := c.s.SignaturesOf(c.checkExpression(d.Expression), types.SignatureCall)
	if len(sigs) != 1 || len(sigs[0].TypeParameters) > 0 {
		return nil
	}
	return sigs[0]
}

// arrayMutationType grows the element type of an evolving array with the
// values pushed or stored into it
func (w *flowWalker) arrayMutationType(n *flow.Node) (types.TypeID, bool) {
	c := w.c
	if !w.evolving {
		return types.NoType, false
	}
	node := c.store.Get(n.Syntax())
	var target ast.NodeID
	var values []types.TypeID
	switch node.Kind() {
	case ast.KindCallExpression:
		d := ast.As[ast.CallExpression](node)
		access := ast.As[ast.PropertyAccessExpression](c.store.Get(d.Expression))
		if access == nil {
			return types.NoType, false
		}
		target = access.Expression
		if !c.isMatchingReference(target, w.ref) {
			return types.NoType, false
		}
		for _, arg := range d.Arguments {
			values = append(values, c.s.Widen(c.checkExpression(arg)))
		}
	case ast.KindBinaryExpression:
		d := ast.As[ast.BinaryExpression](node)
		access := ast.As[ast.ElementAccessExpression](c.store.Get(c.store.SkipParentheses(d.Left)))
		if access == nil {
			return types.NoType, false
		}
		target = access.Expression
		if !c.isMatchingReference(target, w.ref) {
			return types.NoType, false
		}
		index := c.checkExpression(access.Argument)
		if !c.isTypeOf(index, types.FlagNumberLike|types.FlagAny) {
			return types.NoType, false
		}
		values = append(values, c.s.Widen(c.checkExpression(d.Right)))
	default:
		return types.NoType, false
	}
	t := w.typeAt(n.Antecedent())
	return c.s.MapType(t, func(m types.TypeID) types.TypeID {
		if !c.s.IsArray(m) {
			return m
		}
		return c.s.ArrayOf(c.s.Union(append([]types.TypeID{c.s.ElementType(m)}, values...)...))
	}), true
}

// switchClauseType narrows the type flowing into a group of case clauses
func (w *flowWalker) switchClauseType(n *flow.Node) types.TypeID {
	c := w.c
	t := w.typeAt(n.Antecedent())
	if t == c.s.Never {
		return t
	}
	sw := ast.As[ast.SwitchStatement](c.store.Get(n.Syntax()))
	start, end := n.ClauseRange()
	expr := c.store.SkipParentheses(sw.Expression)
	onTrue := c.store.Kind(expr) == ast.KindTrueKeyword

	narrowCase := func(t types.TypeID, clause ast.NodeID, assumeTrue bool) types.TypeID {
		caseExpr := ast.As[ast.CaseClause](c.store.Get(clause)).Expression
		if onTrue {
			return w.narrow(t, caseExpr, assumeTrue)
		}
		return w.narrowByEquality(t, expr, caseExpr, ast.KindEqualsEqualsEqualsToken, assumeTrue)
	}
	noneMatch := func(t types.TypeID) types.TypeID {
		for _, clause := range sw.Clauses {
			if c.store.Kind(clause) != ast.KindDefaultClause {
				t = narrowCase(t, clause, false)
			}
		}
		return t
	}
	if start == end {
		return noneMatch(t)
	}
	var ts []types.TypeID
	for _, clause := range sw.Clauses[start:end] {
		if c.store.Kind(clause) == ast.KindDefaultClause {
			ts = append(ts, noneMatch(t))
			continue
		}
		ts = append(ts, narrowCase(t, clause, true))
	}
	return c.s.Union(ts...)
}

// narrow narrows t by the condition expr being true or false
func (w *flowWalker) narrow(t types.TypeID, expr ast.NodeID, assumeTrue bool) types.TypeID {
	c := w.c
	n := c.store.Get(expr)
	if n == nil {
		return t
	}
	switch n.Kind() {
	case ast.KindIdentifier, ast.KindThisKeyword, ast.KindPropertyAccessExpression, ast.KindElementAccessExpression:
		if c.isMatchingReference(expr, w.ref) {
			return c.narrowByTruthiness(t, assumeTrue)
		}
		if expr, name, ok := c.accessParts(n); ok && c.isMatchingReference(expr, w.ref) {
			return c.narrowByDiscriminant(t, name, func(p types.TypeID) types.TypeID { return c.narrowByTruthiness(p, assumeTrue) })
		}
	case ast.KindParenthesizedExpression:
		return w.narrow(t, ast.As[ast.ParenthesizedExpression](n).Expression, assumeTrue)
	case ast.KindNonNullExpression:
		return w.narrow(t, ast.As[ast.NonNullExpression](n).Expression, assumeTrue)
	case ast.KindPrefixUnaryExpression:
		d := ast.As[ast.UnaryExpression](n)
		if d.Operator == ast.KindExclamationToken {
			return w.narrow(t, d.Operand, !assumeTrue)
		}
	case ast.KindCallExpression:
		return w.narrowByTypeGuard(t, n, assumeTrue)
	case ast.KindBinaryExpression:
		return w.narrowBinary(t, ast.As[ast.BinaryExpression](n), assumeTrue)
	}
	return t
}

func (w *flowWalker) narrowBinary(t types.TypeID, d *ast.BinaryExpression, assumeTrue bool) types.TypeID {
	c := w.c
	switch op := d.Operator; {
	case op.IsAssignmentOperator():
		return w.narrow(t, d.Left, assumeTrue)
	case op.IsEqualityOperator():
		return w.narrowByEquality(t, d.Left, d.Right, op, assumeTrue)
	case op == ast.KindInstanceOfKeyword:
		if !c.isMatchingReference(d.Left, w.ref) {
			return t
		}
		return c.narrowByInstanceof(t, c.checkExpression(d.Right), assumeTrue)
	case op == ast.KindInKeyword:
		if !c.isMatchingReference(d.Right, w.ref) || !c.store.Kind(c.store.SkipParentheses(d.Left)).IsLiteral() {
			return t
		}
		return c.narrowByInKeyword(t, c.propertyNameOf(c.store.SkipParentheses(d.Left)), assumeTrue)
	case op == ast.KindAmpersandAmpersandToken:
		if assumeTrue {
			return w.narrow(w.narrow(t, d.Left, true), d.Right, true)
		}
		return c.s.Union(w.narrow(t, d.Left, false), w.narrow(w.narrow(t, d.Left, true), d.Right, false))
	case op == ast.KindBarBarToken:
		if assumeTrue {
			return c.s.Union(w.narrow(t, d.Left, true), w.narrow(w.narrow(t, d.Left, false), d.Right, true))
		}
		return w.narrow(w.narrow(t, d.Left, false), d.Right, false)
	case op == ast.KindCommaToken:
		return w.narrow(t, d.Right, assumeTrue)
	}
	return t
}

// narrowByEquality narrows by `left op right` where either side may be the
// reference, `typeof` of it, or a property of it
func (w *flowWalker) narrowByEquality(t types.TypeID, left, right ast.NodeID, op ast.Kind, assumeTrue bool) types.TypeID {
	c := w.c
	if op == ast.KindExclamationEqualsToken || op == ast.KindExclamationEqualsEqualsToken {
		assumeTrue = !assumeTrue
	}
	strict := op == ast.KindEqualsEqualsEqualsToken || op == ast.KindExclamationEqualsEqualsToken
	left, right = c.store.SkipParentheses(left), c.store.SkipParentheses(right)
	for range 2 {
		if typeOf := ast.As[ast.TypeOfExpression](c.store.Get(left)); typeOf != nil && c.store.Kind(left) == ast.KindTypeOfExpression {
			if c.store.Kind(right).IsLiteral() && c.isMatchingReference(typeOf.Expression, w.ref) {
				return c.narrowByTypeOf(t, c.store.Text(right), assumeTrue)
			}
		}
		if c.isMatchingReference(left, w.ref) {
			return c.narrowByValue(t, c.checkExpression(right), strict, assumeTrue)
		}
		if n := c.store.Get(left); n != nil {
			if expr, name, ok := c.accessParts(n); ok && c.isMatchingReference(expr, w.ref) {
				value := c.checkExpression(right)
				return c.narrowByDiscriminant(t, name, func(p types.TypeID) types.TypeID {
					return c.narrowByValue(p, value, strict, assumeTrue)
				})
			}
		}
		left, right = right, left
	}
	return t
}

func (w *flowWalker) narrowByTypeGuard(t types.TypeID, call *ast.Node, assumeTrue bool) types.TypeID {
	c := w.c
	d := ast.As[ast.CallExpression](call)
	if !c.hasMatchingArgument(d, w.ref) {
		return t
	}
	c.checkExpression(call.ID())
	sig := c.resolvedCalls[call.ID()]
	if sig == nil || sig.Predicate == nil || sig.Predicate.Kind.IsAsserts() || !sig.Predicate.Type.IsPresent() {
		return t
	}
	pred := sig.Predicate
	switch pred.Kind {
	case types.PredicateIdentifier:
		if pred.ParameterIndex >= 0 && pred.ParameterIndex < len(d.Arguments) && c.isMatchingReference(d.Arguments[pred.ParameterIndex], w.ref) {
			return c.narrowedType(t, pred.Type, assumeTrue)
		}
	case types.PredicateThis:
		if access := ast.As[ast.PropertyAccessExpression](c.store.Get(c.store.SkipParentheses(d.Expression))); access != nil && c.isMatchingReference(access.Expression, w.ref) {
			return c.narrowedType(t, pred.Type, assumeTrue)
		}
	}
	return t
}

// hasMatchingArgument reports calls that pass the reference, or call a method on it
func (c *Checker) hasMatchingArgument(d *ast.CallExpression, ref ast.NodeID) bool {
	for _, arg := range d.Arguments {
		if c.isMatchingReference(arg, ref) {
			return true
		}
	}
	access := ast.As[ast.PropertyAccessExpression](c.store.Get(c.store.SkipParentheses(d.Expression)))
	return access != nil && c.store.Kind(c.store.SkipParentheses(d.Expression)) == ast.KindPropertyAccessExpression &&
		c.isMatchingReference(access.Expression, ref)
}

// narrowByTruthiness removes the members that cannot be truthy, or those
// that cannot be falsy
func (c *Checker) narrowByTruthiness(t types.TypeID, assumeTrue bool) types.TypeID {
	if assumeTrue {
		return c.removeDefinitelyFalsy(t)
	}
	return c.s.FilterType(t, c.canBeFalsy)
}

func (c *Checker) canBeFalsy(m types.TypeID) bool {
	f := c.s.Flags(m)
	switch {
	case f&(types.FlagAnyOrUnknown|types.FlagDefinitelyFalsy|types.FlagString|types.FlagNumber|types.FlagInstantiable) != 0:
		return true
	case f&(types.FlagLiteral|types.FlagEnumLiteral) != 0:
		return c.isFalsyLiteral(m)
	}
	return false
}

// narrowByDiscriminant keeps the members of a union whose property name
// survives narrowProp
func (c *Checker) narrowByDiscriminant(t types.TypeID, name string, narrowProp func(types.TypeID) types.TypeID) types.TypeID {
	if !c.s.Is(t, types.FlagUnion) {
		return t
	}
	return c.s.FilterType(t, func(m types.TypeID) bool {
		p := c.s.PropertyOf(m, name)
		if p == nil {
			return true
		}
		return narrowProp(c.s.ReadType(p)) != c.s.Never
	})
}

// narrowByValue narrows t by equality with a value of type value
func (c *Checker) narrowByValue(t, value types.TypeID, strict, assumeTrue bool) types.TypeID {
	if c.s.Is(t, types.FlagAny) {
		return t
	}
	value = c.s.MapType(value, c.s.Regular)
	if c.isTypeOf(value, types.FlagNullable) {
		if !c.opts.StrictNullChecks {
			return t
		}
		matched := value
		if !strict {
			matched = c.s.Union(c.s.Null, c.s.Undefined)
		}
		if assumeTrue {
			if c.s.Is(t, types.FlagUnknown) {
				return matched
			}
			return c.s.FilterType(t, func(m types.TypeID) bool {
				return c.s.SomeType(matched, func(v types.TypeID) bool { return c.s.Flags(m)&c.s.Flags(v) != 0 }) ||
					!strict && c.s.Is(m, types.FlagVoid)
			})
		}
		return c.s.FilterType(t, func(m types.TypeID) bool {
			if c.s.SomeType(matched, func(v types.TypeID) bool { return c.s.Flags(m)&c.s.Flags(v) != 0 }) {
				return false
			}
			return strict || !c.s.Is(m, types.FlagVoid)
		})
	}
	if assumeTrue {
		if c.s.Is(t, types.FlagUnknown) && c.isTypeOf(value, types.FlagUnit) {
			return value
		}
		filtered := c.s.FilterType(t, func(m types.TypeID) bool { return c.s.IsComparable(m, value) })
		return c.replacePrimitivesWithLiterals(filtered, value)
	}
	if c.isTypeOf(value, types.FlagUnit) && !c.s.Is(value, types.FlagUnion) {
		return c.s.FilterType(t, func(m types.TypeID) bool { return c.s.Regular(m) != value })
	}
	return t
}

// replacePrimitivesWithLiterals replaces string and number in t with the
// literals of the same kind in value
func (c *Checker) replacePrimitivesWithLiterals(t, value types.TypeID) types.TypeID {
	literalsOf := func(flags types.Flags) types.TypeID {
		return c.s.FilterType(value, func(v types.TypeID) bool { return c.s.Is(v, flags) })
	}
	strs, nums := literalsOf(types.FlagStringLiteral), literalsOf(types.FlagNumberLiteral)
	return c.s.MapType(t, func(m types.TypeID) types.TypeID {
		switch {
		case m == c.s.String && strs != c.s.Never:
			return strs
		case m == c.s.Number && nums != c.s.Never:
			return nums
		}
		return m
	})
}

// typeOfTag is the type `typeof x === tag` implies for x, or NoType
func (c *Checker) typeOfTag(tag string) types.TypeID {
	switch tag {
	case "string":
		return c.s.String
	case "number":
		return c.s.Number
	case "boolean":
		return c.s.Boolean
	case "undefined":
		return c.s.Undefined
	case "object":
		return c.s.Union(c.s.NonPrimitive, c.s.Null)
	}
	return types.NoType
}

func (c *Checker) matchesTypeOf(m types.TypeID, tag string) bool {
	f := c.s.Flags(m)
	switch tag {
	case "string":
		_, isString := c.s.LiteralValue(m).(string)
		return f&types.FlagStringLike != 0 || f&types.FlagEnumLiteral != 0 && isString
	case "number":
		_, isNumber := c.s.LiteralValue(m).(float64)
		return f&types.FlagNumberLike != 0 || f&types.FlagEnumLiteral != 0 && isNumber
	case "boolean":
		return f&types.FlagBooleanLike != 0
	case "undefined":
		return f&(types.FlagUndefined|types.FlagVoid) != 0
	case "object":
		return f&types.FlagNull != 0 || f&(types.FlagObject|types.FlagNonPrimitive) != 0 && !c.isCallable(m)
	case "function":
		return f&types.FlagObject != 0 && c.isCallable(m)
	}
	return false
}

func (c *Checker) isCallable(m types.TypeID) bool {
	return len(c.s.SignaturesOf(m, types.SignatureCall)) > 0 || len(c.s.SignaturesOf(m, types.SignatureConstruct)) > 0
}

// narrowByTypeOf narrows t by `typeof x === tag`
func (c *Checker) narrowByTypeOf(t types.TypeID, tag string, assumeTrue bool) types.TypeID {
	tagType := c.typeOfTag(tag)
	if !assumeTrue {
		return c.s.FilterType(t, func(m types.TypeID) bool {
			return c.s.Is(m, types.FlagAnyOrUnknown|types.FlagInstantiable) || !c.matchesTypeOf(m, tag)
		})
	}
	if c.s.Is(t, types.FlagAnyOrUnknown) {
		if !tagType.IsPresent() || c.s.Is(t, types.FlagAny) && tag == "object" {
			return t
		}
		return tagType
	}
	return c.s.MapType(t, func(m types.TypeID) types.TypeID {
		switch {
		case c.s.Is(m, types.FlagInstantiable):
			if tagType.IsPresent() {
				return c.s.Intersection(m, tagType)
			}
			return m
		case c.matchesTypeOf(m, tag):
			return m
		}
		return types.NoType
	})
}

// narrowByInstanceof narrows t by `x instanceof C`, where ctor is the type of C
func (c *Checker) narrowByInstanceof(t, ctor types.TypeID, assumeTrue bool) types.TypeID {
	sigs := c.s.SignaturesOf(ctor, types.SignatureConstruct)
	if len(sigs) == 0 {
		return t
	}
	instances := make([]types.TypeID, len(sigs))
	for i, sig := range sigs {
		instances[i] = c.s.ReturnType(c.s.ErasedSignature(sig))
	}
	return c.narrowedType(t, c.s.Union(instances...), assumeTrue)
}

// narrowByInKeyword narrows t by `name in x`
func (c *Checker) narrowByInKeyword(t types.TypeID, name string, assumeTrue bool) types.TypeID {
	return c.s.FilterType(t, func(m types.TypeID) bool {
		if !c.s.Is(m, types.FlagObject|types.FlagNonPrimitive|types.FlagIntersection) {
			return true
		}
		p := c.s.PropertyOf(m, name)
		if assumeTrue {
			return p != nil || c.s.IndexInfoOf(m, false) != nil
		}
		return p == nil || p.IsOptional()
	})
}

// narrowedType is t narrowed to candidate, as done by type guards and
// instanceof. The false branch removes the members of t that are candidates.
func (c *Checker) narrowedType(t, candidate types.TypeID, assumeTrue bool) types.TypeID {
	if !assumeTrue {
		if c.s.Is(t, types.FlagAnyOrUnknown) {
			return t
		}
		return c.s.FilterType(t, func(m types.TypeID) bool { return !c.s.IsSubtype(m, candidate) })
	}
	if c.s.Is(t, types.FlagAnyOrUnknown) {
		return candidate
	}
	if c.s.Is(t, types.FlagUnion) {
		kept := c.s.FilterType(t, func(m types.TypeID) bool {
			return !c.s.Is(m, types.FlagNullable) && c.s.IsAssignable(m, candidate)
		})
		if kept != c.s.Never {
			return kept
		}
	}
	switch {
	case c.s.IsSubtype(candidate, t):
		return candidate
	case c.s.IsAssignable(t, candidate):
		return t
	case c.s.IsAssignable(candidate, t):
		return candidate
	}
	return c.s.Intersection(t, candidate)
}
