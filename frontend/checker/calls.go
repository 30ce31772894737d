package checker

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/infer"
	"github.com/cottand/strux/frontend/types"
)

// callSite gathers what overload resolution needs about a call or new expression
type callSite struct {
	node     *ast.Node
	args     []ast.NodeID
	typeArgs []types.TypeID
	// typeArgNodes are the explicit type arguments, for reporting constraint failures
	typeArgNodes []ast.NodeID
	isNew        bool
}

// checkCall resolves a call or new expression to one of the signatures of its
// callee and returns the type the call produces
func (c *Checker) checkCall(n *ast.Node) types.TypeID {
	d := ast.As[ast.CallExpression](n)
	site := &callSite{node: n, args: d.Arguments, typeArgNodes: d.TypeArguments, isNew: n.Kind() == ast.KindNewExpression}
	for _, ta := range d.TypeArguments {
		site.typeArgs = append(site.typeArgs, c.typeFromTypeNode(ta))
	}

	callee := c.checkExpression(d.Expression)
	chained := !site.isNew && c.isOptionalChain(n)
	if chained {
		callee = c.s.RemoveNullable(callee)
	} else {
		callee = c.checkNonNullType(callee, d.Expression)
	}
	if callee == c.s.Error || c.s.Is(callee, types.FlagAny) {
		c.checkArgumentsUntyped(site)
		return callee
	}

	kind := types.SignatureCall
	if site.isNew {
		kind = types.SignatureConstruct
	}
	sigs := c.s.SignaturesOf(callee, kind)
	if len(sigs) == 0 {
		if site.isNew {
			c.error(d.Expression, diag.NotConstructable, c.typeString(callee))
		} else {
			c.error(d.Expression, diag.NotCallable, c.typeString(callee))
		}
		c.checkArgumentsUntyped(site)
		return c.s.Error
	}

	sig := c.resolveCall(site, sigs)
	if sig == nil {
		return c.s.Error
	}
	c.resolvedCalls[n.ID()] = sig
	c.checkAssertionTarget(site, sig)

	c.reportCircularReturn(sig)
	t := c.s.ReturnType(sig)
	if chained {
		t = c.s.AddOptionality(t)
	}
	return t
}

// checkArgumentsUntyped checks arguments of calls that resolve to no signature
func (c *Checker) checkArgumentsUntyped(site *callSite) {
	for _, arg := range site.args {
		c.checkExpression(arg)
	}
}

// resolveCall picks the signature a call is made through. Candidates are
// tried in declaration order and the first one the arguments are assignable
// to wins. Failures are reported against the sole candidate, or as a list
// of per-overload elaborations when there are several.
func (c *Checker) resolveCall(site *callSite, sigs []*types.Signature) *types.Signature {
	var candidates []*types.Signature
	for _, sig := range sigs {
		if c.hasCorrectArity(site, sig) && c.hasCorrectTypeArgumentArity(site, sig) {
			candidates = append(candidates, sig)
		}
	}
	if len(candidates) == 0 {
		c.reportArityError(site, sigs)
		c.checkArgumentsUntyped(site)
		return c.s.ErasedSignature(sigs[0])
	}

	type failure struct {
		sig      *types.Signature
		argument ast.NodeID
		chain    *diag.MessageChain
	}
	var failures []failure
	for _, sig := range candidates {
		inst := c.instantiateForCall(site, sig)
		arg, chain, ok := c.checkArguments(site, inst)
		if ok {
			logger.Debug("resolved call", "node", site.node.ID(), "signature", c.typeString(c.s.FunctionType(inst)), "candidates", len(candidates))
			return inst
		}
		failures = append(failures, failure{inst, arg, chain})
	}

	if len(failures) == 1 {
		f := failures[0]
		if f.chain.Code == diag.TypeArgumentConstraint {
			c.checkTypeArgumentConstraints(site, candidates[0])
		} else {
			c.errorChain(f.argument, f.chain)
		}
		return f.sig
	}
	head := diag.Chain(diag.NoOverloadMatches)
	for i, f := range failures {
		elaboration := diag.Chain(diag.OverloadFailed, i+1, len(failures), c.typeString(c.s.FunctionType(f.sig)))
		head.Append(elaboration.Append(f.chain))
	}
	c.errorChain(site.node.ID(), head)
	return failures[len(failures)-1].sig
}

// hasCorrectArity reports whether sig accepts the number of arguments of the call
func (c *Checker) hasCorrectArity(site *callSite, sig *types.Signature) bool {
	n := len(site.args)
	for _, arg := range site.args {
		if c.store.Kind(arg) == ast.KindSpreadElement {
			return sig.HasRest() || n-1 <= sig.ParamCount()
		}
	}
	if n < sig.MinArgs {
		return false
	}
	return sig.HasRest() || n <= sig.ParamCount()
}

func (c *Checker) hasCorrectTypeArgumentArity(site *callSite, sig *types.Signature) bool {
	if len(site.typeArgs) == 0 {
		return true
	}
	required := 0
	for _, tp := range sig.TypeParameters {
		if !c.s.DefaultOf(tp).IsPresent() {
			required++
		}
	}
	return len(site.typeArgs) >= required && len(site.typeArgs) <= len(sig.TypeParameters)
}

// reportArityError reports a call whose argument count no signature accepts
func (c *Checker) reportArityError(site *callSite, sigs []*types.Signature) {
	minArgs, maxArgs, rest := sigs[0].MinArgs, sigs[0].ParamCount(), false
	for _, sig := range sigs {
		minArgs = min(minArgs, sig.MinArgs)
		maxArgs = max(maxArgs, sig.ParamCount())
		rest = rest || sig.HasRest()
	}
	got := len(site.args)
	switch {
	case len(site.typeArgs) > 0 && got >= minArgs && (rest || got <= maxArgs):
		c.error(site.node.ID(), diag.WrongTypeArgumentCount, c.typeString(c.s.FunctionType(sigs[0])), len(sigs[0].TypeParameters))
	case got < minArgs && (rest || minArgs != maxArgs):
		c.error(site.node.ID(), diag.ExpectedAtLeastArguments, minArgs, got)
	case got < minArgs:
		c.error(site.node.ID(), diag.ExpectedArguments, minArgs, got)
	default:
		c.error(site.node.ID(), diag.ExpectedArguments, maxArgs, got)
	}
}

// instantiateForCall instantiates a generic signature with the explicit type
// arguments of the call, or with those inferred from its arguments.
//
// Inference runs in two passes. The first infers from the arguments whose
// type does not depend on their context. The second checks the
// context-sensitive ones, typically function expressions with unannotated
// parameters, against parameter types instantiated with what the first pass
// found.
func (c *Checker) instantiateForCall(site *callSite, sig *types.Signature) *types.Signature {
	if len(sig.TypeParameters) == 0 {
		c.setArgumentContext(site, sig, nil)
		return sig
	}
	if len(site.typeArgs) > 0 {
		inst := c.s.SignatureInstantiation(sig, c.fillTypeArguments(sig, site.typeArgs))
		c.setArgumentContext(site, inst, nil)
		return inst
	}

	inference := infer.NewContext(c.s, sig.TypeParameters)
	if contextual, _ := c.contextualTypeOf(site.node.ID()); contextual.IsPresent() {
		inference.InferWithPriority(contextual, c.s.ReturnType(sig), infer.PriorityReturnType)
	}
	var sensitive []int
	for i, arg := range site.args {
		if c.isContextSensitive(arg) {
			sensitive = append(sensitive, i)
			continue
		}
		c.inferFromArgument(site, sig, inference, i, arg)
	}
	for _, i := range sensitive {
		c.inferFromArgument(site, sig, inference, i, site.args[i])
	}
	args := inference.TypeArguments()
	for i, info := range inference.Infos() {
		logger.Debug("inferred type argument", "param", c.typeString(info.TypeParameter), "type", c.typeString(args[i]), "priority", info.Priority)
	}
	return c.s.SignatureInstantiation(sig, args)
}

func (c *Checker) inferFromArgument(site *callSite, sig *types.Signature, inference *infer.Context, i int, arg ast.NodeID) {
	param := c.s.ParamType(sig, i)
	if !param.IsPresent() {
		c.checkExpression(arg)
		return
	}
	if _, seen := c.nodeTypes[arg]; !seen {
		c.argContext[arg] = argumentContext{typ: param, inference: inference}
	}
	t := c.argumentType(arg)
	delete(c.argContext, arg)
	inference.Infer(t, param)
}

// setArgumentContext makes the parameter types of sig the contextual types of
// the arguments not checked yet
func (c *Checker) setArgumentContext(site *callSite, sig *types.Signature, inference *infer.Context) {
	for i, arg := range site.args {
		if _, seen := c.nodeTypes[arg]; seen {
			continue
		}
		if param := c.s.ParamType(sig, i); param.IsPresent() {
			c.argContext[arg] = argumentContext{typ: param, inference: inference}
		}
	}
}

// fillTypeArguments completes explicit type arguments with the defaults of
// the remaining type parameters
func (c *Checker) fillTypeArguments(sig *types.Signature, typeArgs []types.TypeID) []types.TypeID {
	args := append([]types.TypeID(nil), typeArgs...)
	for i := len(args); i < len(sig.TypeParameters); i++ {
		d := c.s.DefaultOf(sig.TypeParameters[i])
		if d.IsPresent() {
			d = c.s.Instantiate(d, types.NewMapper(sig.TypeParameters[:i], args))
		} else {
			d = c.s.Unknown
		}
		args = append(args, d)
	}
	return args
}

// checkTypeArgumentConstraints reports explicit type arguments that do not
// satisfy the constraints of their type parameters
func (c *Checker) checkTypeArgumentConstraints(site *callSite, sig *types.Signature) {
	args := c.fillTypeArguments(sig, site.typeArgs)
	mapper := types.NewMapper(sig.TypeParameters, args)
	for i, ta := range site.typeArgs {
		constraint := c.s.ConstraintOf(sig.TypeParameters[i])
		if !constraint.IsPresent() {
			continue
		}
		constraint = c.s.Instantiate(constraint, mapper)
		if !c.s.IsAssignable(ta, constraint) {
			c.error(site.typeArgNodes[i], diag.TypeArgumentConstraint, c.typeString(ta), c.typeString(constraint))
		}
	}
}

// argumentType is the type of an argument as passed: the element type of a
// spread array, or the argument itself
func (c *Checker) argumentType(arg ast.NodeID) types.TypeID {
	t := c.checkExpression(arg)
	if c.store.Kind(arg) == ast.KindSpreadElement {
		return c.s.ElementTypeOr(t, c.s.Any)
	}
	return t
}

// checkArguments relates each argument to its parameter in sig. On the first
// failure it returns the argument and the elaboration of the mismatch.
func (c *Checker) checkArguments(site *callSite, sig *types.Signature) (ast.NodeID, *diag.MessageChain, bool) {
	if chain := c.typeArgumentFailure(site, sig); chain != nil {
		return site.node.ID(), chain, false
	}
	for i, arg := range site.args {
		t := c.argumentType(arg)
		delete(c.argContext, arg)
		param := c.s.ParamType(sig, i)
		if !param.IsPresent() {
			continue
		}
		res, chain := c.s.CheckRelated(t, param, types.RelationAssignable)
		if res.Succeeded() {
			continue
		}
		if chain == nil {
			chain = diag.Chain(diag.NotAssignable, c.typeString(t), c.typeString(param))
		}
		return arg, c.argumentHead(t, param, chain), false
	}
	return ast.NoNode, nil, true
}

// typeArgumentFailure describes the first explicit type argument of a call
// that does not satisfy the constraint of its type parameter in the root of sig
func (c *Checker) typeArgumentFailure(site *callSite, sig *types.Signature) *diag.MessageChain {
	root := sig.Root()
	if len(site.typeArgs) == 0 || len(root.TypeParameters) == 0 {
		return nil
	}
	args := c.fillTypeArguments(root, site.typeArgs)
	mapper := types.NewMapper(root.TypeParameters, args)
	for i, tp := range root.TypeParameters {
		constraint := c.s.ConstraintOf(tp)
		if !constraint.IsPresent() {
			continue
		}
		constraint = c.s.Instantiate(constraint, mapper)
		if !c.s.IsAssignable(args[i], constraint) {
			return diag.Chain(diag.TypeArgumentConstraint, c.typeString(args[i]), c.typeString(constraint))
		}
	}
	return nil
}

// argumentHead replaces the head of a relation failure with the message for arguments
func (c *Checker) argumentHead(arg, param types.TypeID, chain *diag.MessageChain) *diag.MessageChain {
	head := diag.Chain(diag.ArgumentNotAssignable, c.typeString(arg), c.typeString(param))
	if chain.Code == diag.NotAssignable {
		return head.Append(chain.Next...)
	}
	return head.Append(chain)
}

// checkAssertionTarget reports calls to assertion functions whose callee is
// not a dotted name, as control flow analysis cannot see their effect
func (c *Checker) checkAssertionTarget(site *callSite, sig *types.Signature) {
	if site.isNew || sig.Predicate == nil || !sig.Predicate.Kind.IsAsserts() {
		return
	}
	callee := ast.As[ast.CallExpression](site.node).Expression
	if !c.isDottedName(callee) {
		c.error(callee, diag.AssertionRequiresAnnotation)
	}
}

// isDottedName reports identifiers, `this` and property accesses of dotted names
func (c *Checker) isDottedName(id ast.NodeID) bool {
	n := c.store.Get(id)
	if n == nil {
		return false
	}
	switch n.Kind() {
	case ast.KindIdentifier, ast.KindThisKeyword:
		return true
	case ast.KindPropertyAccessExpression:
		return c.isDottedName(ast.As[ast.PropertyAccessExpression](n).Expression)
	case ast.KindParenthesizedExpression:
		return c.isDottedName(ast.As[ast.ParenthesizedExpression](n).Expression)
	}
	return false
}
