package checker

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/types"
)

func (c *Checker) checkStatements(stmts []ast.NodeID) {
	for _, stmt := range stmts {
		c.checkpoint()
		c.checkStatement(stmt)
	}
}

func (c *Checker) checkStatement(id ast.NodeID) {
	n := c.store.Get(id)
	if n == nil {
		return
	}
	switch n.Kind() {
	case ast.KindBlock, ast.KindModuleBlock:
		c.checkStatements(ast.As[ast.Block](n).Statements)
	case ast.KindVariableStatement:
		c.checkVariableDeclarationList(ast.As[ast.VariableStatement](n).DeclarationList)
	case ast.KindExpressionStatement, ast.KindThrowStatement:
		c.checkExpression(ast.As[ast.ExpressionStatement](n).Expression)
	case ast.KindReturnStatement:
		c.checkReturnStatement(n)
	case ast.KindIfStatement:
		d := ast.As[ast.IfStatement](n)
		c.checkExpression(d.Expression)
		c.checkStatement(d.Then)
		c.checkStatement(d.Else)
	case ast.KindDoStatement, ast.KindWhileStatement:
		d := ast.As[ast.LoopStatement](n)
		c.checkExpression(d.Condition)
		c.checkStatement(d.Statement)
	case ast.KindForStatement:
		d := ast.As[ast.LoopStatement](n)
		if c.store.Kind(d.Initializer) == ast.KindVariableDeclarationList {
			c.checkVariableDeclarationList(d.Initializer)
		} else if d.Initializer.IsPresent() {
			c.checkExpression(d.Initializer)
		}
		if d.Condition.IsPresent() {
			c.checkExpression(d.Condition)
		}
		if d.Incrementor.IsPresent() {
			c.checkExpression(d.Incrementor)
		}
		c.checkStatement(d.Statement)
	case ast.KindForInStatement, ast.KindForOfStatement:
		c.checkForInOrOf(n)
	case ast.KindSwitchStatement:
		c.checkSwitch(n)
	case ast.KindLabeledStatement:
		c.checkStatement(ast.As[ast.LabeledStatement](n).Statement)
	case ast.KindTryStatement:
		d := ast.As[ast.TryStatement](n)
		c.checkStatement(d.TryBlock)
		if catch := ast.As[ast.CatchClause](c.store.Get(d.CatchClause)); catch != nil {
			c.checkStatement(catch.Block)
		}
		c.checkStatement(d.FinallyBlock)
	case ast.KindFunctionDeclaration:
		c.checkFunctionDeclaration(n)
	case ast.KindClassDeclaration:
		c.checkClass(n)
	case ast.KindInterfaceDeclaration:
		c.checkInterface(n)
	case ast.KindTypeAliasDeclaration:
		d := ast.As[ast.TypeAliasDeclaration](n)
		c.checkTypeParameters(d.TypeParameters)
		c.declaredTypeOfSymbol(c.b.SymbolOf(id))
	case ast.KindEnumDeclaration:
		c.checkEnum(n)
	case ast.KindModuleDeclaration:
		c.typeOfSymbol(c.b.SymbolOf(id))
		c.checkStatement(ast.As[ast.ModuleDeclaration](n).Body)
	case ast.KindImportDeclaration:
		for _, spec := range ast.As[ast.ImportDeclaration](n).Specifiers {
			c.resolveAlias(c.b.SymbolOf(spec))
		}
	}
}

func (c *Checker) checkVariableDeclarationList(list ast.NodeID) {
	d := ast.As[ast.VariableDeclarationList](c.store.Get(list))
	if d == nil {
		return
	}
	for _, decl := range d.Declarations {
		c.checkVariableDeclaration(c.store.Get(decl))
	}
}

// checkVariableDeclaration resolves the type of a variable and checks its
// initializer against its annotation
func (c *Checker) checkVariableDeclaration(n *ast.Node) {
	d := ast.As[ast.VariableDeclaration](n)
	sym := c.b.SymbolOf(n.ID())
	t := c.typeOfSymbol(sym)
	if !d.Initializer.IsPresent() {
		return
	}
	init := c.checkExpression(d.Initializer)
	if d.Type.IsPresent() {
		c.checkAssignable(init, c.typeFromTypeNode(d.Type), d.Name)
	} else if t == c.s.Error {
		logger.Debug("variable has no type", "name", c.store.Text(d.Name), "node", n)
	}
}

func (c *Checker) checkForInOrOf(n *ast.Node) {
	d := ast.As[ast.LoopStatement](n)
	if c.store.Kind(d.Initializer) == ast.KindVariableDeclarationList {
		c.checkVariableDeclarationList(d.Initializer)
	}
	if n.Kind() == ast.KindForOfStatement {
		element := c.iteratedTypeOf(d.Condition)
		if c.store.Kind(d.Initializer) != ast.KindVariableDeclarationList && d.Initializer.IsPresent() {
			c.checkAssignable(element, c.checkExpression(d.Initializer), d.Initializer)
		}
	} else {
		c.checkExpression(d.Condition)
		if c.store.Kind(d.Initializer) != ast.KindVariableDeclarationList && d.Initializer.IsPresent() {
			c.checkExpression(d.Initializer)
		}
	}
	c.checkStatement(d.Statement)
}

func (c *Checker) checkSwitch(n *ast.Node) {
	d := ast.As[ast.SwitchStatement](n)
	c.checkExpression(d.Expression)
	for _, clause := range d.Clauses {
		cd := ast.As[ast.CaseClause](c.store.Get(clause))
		if cd.Expression.IsPresent() {
			c.checkExpression(cd.Expression)
		}
		c.checkStatements(cd.Statements)
	}
}

// returnTypeOf is the annotated return type of a function, or NoType. Type
// guards return boolean and assertion functions void.
func (c *Checker) returnTypeOf(fn *ast.Node) types.TypeID {
	d := ast.As[ast.SignatureDeclaration](fn)
	if d == nil || !d.Type.IsPresent() || fn.Kind() == ast.KindConstructor {
		return types.NoType
	}
	if c.store.Kind(d.Type) == ast.KindTypePredicate {
		return c.s.ReturnType(c.signatureOf(fn.ID()))
	}
	return c.typeFromTypeNode(d.Type)
}

func (c *Checker) checkReturnStatement(n *ast.Node) {
	d := ast.As[ast.ExpressionStatement](n)
	fn := c.store.ContainingFunction(n.ID())
	var t types.TypeID
	if d.Expression.IsPresent() {
		t = c.checkExpression(d.Expression)
	}
	if fn == nil {
		return
	}
	declared := c.returnTypeOf(fn)
	if !declared.IsPresent() {
		return
	}
	if !d.Expression.IsPresent() {
		if c.opts.StrictNullChecks && !c.s.Is(declared, types.FlagVoid|types.FlagAnyOrUnknown) {
			c.checkAssignable(c.s.Undefined, declared, n.ID())
		}
		return
	}
	c.checkAssignable(t, declared, d.Expression)
}

func (c *Checker) checkFunctionDeclaration(n *ast.Node) {
	sym := c.b.SymbolOf(n.ID())
	c.typeOfSymbol(sym)
	c.checkSignatureDeclaration(n)
	if ast.Body(n).IsPresent() {
		c.deferFunctionBody(n)
	}
}

// checkSignatureDeclaration resolves the annotations of a function-like
// declaration and, without one for the return type, infers it
func (c *Checker) checkSignatureDeclaration(n *ast.Node) {
	d := ast.As[ast.SignatureDeclaration](n)
	c.checkTypeParameters(d.TypeParameters)
	for _, p := range d.Parameters {
		pd := ast.As[ast.Parameter](c.store.Get(p))
		if pd.Type.IsPresent() {
			c.typeFromTypeNode(pd.Type)
		}
	}
	if d.Type.IsPresent() {
		if c.store.Kind(d.Type) == ast.KindTypePredicate {
			if pt := ast.As[ast.TypePredicate](c.store.Get(d.Type)).Type; pt.IsPresent() {
				c.typeFromTypeNode(pt)
			}
		} else {
			c.typeFromTypeNode(d.Type)
		}
	}
	if sig := c.signatureOf(n.ID()); sig != nil {
		c.s.ReturnType(sig)
	}
}

func (c *Checker) checkTypeParameters(params []ast.NodeID) {
	for _, p := range params {
		c.typeParameterOf(p)
		d := ast.As[ast.TypeParameter](c.store.Get(p))
		if d.Constraint.IsPresent() {
			c.typeFromTypeNode(d.Constraint)
		}
		if d.Default.IsPresent() {
			c.typeFromTypeNode(d.Default)
		}
	}
}

// deferFunctionBody schedules the body of a function for checking once the
// statements around it are checked. Each body is checked once.
func (c *Checker) deferFunctionBody(n *ast.Node) {
	if c.checkedBodies.Contains(n.ID()) || !ast.Body(n).IsPresent() {
		return
	}
	c.checkedBodies.Insert(n.ID())
	c.defer_(func() { c.checkFunctionBody(n) })
}

// checkFunctionBody checks the parameters and statements of a function and
// that every path through it returns what its annotation promises
func (c *Checker) checkFunctionBody(n *ast.Node) {
	c.checkpoint()
	d := ast.As[ast.SignatureDeclaration](n)
	if isContextualFunction(n) {
		c.checkSignatureDeclaration(n)
	}
	for _, p := range d.Parameters {
		pd := ast.As[ast.Parameter](c.store.Get(p))
		c.typeOfSymbol(c.b.SymbolOf(p))
		if !pd.Initializer.IsPresent() {
			continue
		}
		init := c.checkExpression(pd.Initializer)
		if pd.Type.IsPresent() {
			c.checkAssignable(init, c.typeFromTypeNode(pd.Type), pd.Name)
		}
	}
	declared := c.returnTypeOf(n)
	if c.store.Kind(d.Body) != ast.KindBlock {
		t := c.checkExpression(d.Body)
		if declared.IsPresent() {
			c.checkAssignable(t, declared, d.Body)
		}
		return
	}
	c.checkStatements(ast.As[ast.Block](c.store.Get(d.Body)).Statements)
	if declared.IsPresent() {
		c.checkAllPathsReturn(n, declared)
	}
}

// checkAllPathsReturn reports functions with a return type annotation whose
// end is reachable although the annotation does not admit undefined
func (c *Checker) checkAllPathsReturn(fn *ast.Node, declared types.TypeID) {
	if c.s.SomeType(declared, func(m types.TypeID) bool { return c.s.Is(m, types.FlagVoid|types.FlagAny|types.FlagUndefined) }) {
		return
	}
	if !c.b.IsEndReachable(fn.ID()) {
		return
	}
	at := ast.As[ast.SignatureDeclaration](fn).Type
	hasValue := false
	c.forEachReturn(ast.Body(fn), func(ret *ast.ExpressionStatement) {
		hasValue = hasValue || ret.Expression.IsPresent()
	})
	switch {
	case !hasValue:
		c.error(at, diag.NotAllPathsReturnValue)
	case c.opts.StrictNullChecks && !c.s.IsAssignable(c.s.Undefined, declared):
		c.error(at, diag.LacksEndingReturn)
	default:
		c.error(at, diag.NotAllPathsReturn)
	}
}

func (c *Checker) checkClass(n *ast.Node) {
	d := ast.As[ast.ClassDeclaration](n)
	sym := c.b.SymbolOf(n.ID())
	c.checkTypeParameters(d.TypeParameters)
	c.typeOfSymbol(sym)
	instance := c.declaredTypeOfSymbol(sym)
	if d.Extends.IsPresent() {
		c.typeFromTypeNode(d.Extends)
	}
	name := c.symbolName(sym)
	for _, impl := range d.Implements {
		t := c.typeFromTypeNode(impl)
		if t == c.s.Error {
			continue
		}
		c.checkRelated(instance, t, types.RelationAssignable, impl, func(chain *diag.MessageChain) *diag.MessageChain {
			return chain.Wrap(diag.IncorrectlyImplements, name, c.typeString(t))
		})
	}
	for _, member := range d.Members {
		c.checkClassMember(c.store.Get(member))
	}
}

func (c *Checker) checkClassMember(n *ast.Node) {
	switch n.Kind() {
	case ast.KindPropertyDeclaration:
		d := ast.As[ast.PropertySignature](n)
		c.typeOfSymbol(c.b.SymbolOf(n.ID()))
		if !d.Initializer.IsPresent() {
			return
		}
		init := c.checkExpression(d.Initializer)
		if d.Type.IsPresent() {
			c.checkAssignable(init, c.typeFromTypeNode(d.Type), d.Name)
		}
	case ast.KindMethodDeclaration, ast.KindConstructor:
		c.checkSignatureDeclaration(n)
		c.deferFunctionBody(n)
	case ast.KindIndexSignature:
		c.indexInfoOf(n.ID())
	}
}

func (c *Checker) checkInterface(n *ast.Node) {
	d := ast.As[ast.InterfaceDeclaration](n)
	sym := c.b.SymbolOf(n.ID())
	c.checkTypeParameters(d.TypeParameters)
	declared := c.declaredTypeOfSymbol(sym)
	name := c.symbolName(sym)
	for _, base := range d.Extends {
		t := c.typeFromTypeNode(base)
		if t == c.s.Error {
			continue
		}
		c.checkRelated(declared, t, types.RelationAssignable, d.Name, func(chain *diag.MessageChain) *diag.MessageChain {
			return chain.Wrap(diag.IncorrectlyExtendsInterface, name, c.typeString(t))
		})
	}
	for _, member := range d.Members {
		m := c.store.Get(member)
		switch m.Kind() {
		case ast.KindPropertySignature:
			if t := ast.As[ast.PropertySignature](m).Type; t.IsPresent() {
				c.typeFromTypeNode(t)
			}
		case ast.KindMethodSignature, ast.KindCallSignature, ast.KindConstructSignature:
			c.checkSignatureDeclaration(m)
		case ast.KindIndexSignature:
			c.indexInfoOf(member)
		}
	}
}

// checkEnum resolves the values of the members of an enum. A member that
// follows a string-valued one needs an initializer.
func (c *Checker) checkEnum(n *ast.Node) {
	d := ast.As[ast.EnumDeclaration](n)
	c.typeOfSymbol(c.b.SymbolOf(n.ID()))
	afterString := false
	for _, member := range d.Members {
		md := ast.As[ast.EnumMember](c.store.Get(member))
		value := c.enumMemberValue(c.b.SymbolOf(member))
		switch {
		case md.Initializer.IsPresent() && value == nil:
			c.checkExpression(md.Initializer)
		case !md.Initializer.IsPresent() && afterString:
			c.error(md.Name, diag.EnumMemberMustHaveInitializer)
		}
		_, afterString = value.(string)
	}
}
