package binder

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/flow"
)

func (b *binder) newBranchLabel() flow.ID {
	l := b.graph.NewBranchLabel()
	b.openLabels = append(b.openLabels, l)
	return l
}

func (b *binder) newLoopLabel() flow.ID {
	l := b.graph.NewLoopLabel()
	b.openLabels = append(b.openLabels, l)
	return l
}

func (b *binder) addAntecedent(label, antecedent flow.ID) {
	if err := b.graph.AddAntecedent(label, antecedent); err != nil {
		logger.Error("adding flow antecedent", "error", err)
	}
}

// finishLabel seals a branch label and returns the flow after it. A label nothing
// reaches is unreachable, and a label with one antecedent is that antecedent.
func (b *binder) finishLabel(label flow.ID) flow.ID {
	b.graph.Seal(label)
	ants, _ := b.graph.Antecedents(label)
	switch len(ants) {
	case 0:
		return flow.Unreachable
	case 1:
		return ants[0]
	}
	return label
}

func (b *binder) newCondition(antecedent flow.ID, expr ast.NodeID, assumeTrue bool) flow.ID {
	if b.graph.IsUnreachable(antecedent) {
		return antecedent
	}
	if !expr.IsPresent() {
		if assumeTrue {
			return antecedent
		}
		return flow.Unreachable
	}
	switch b.store.Kind(b.store.SkipParentheses(expr)) {
	case ast.KindTrueKeyword:
		if !assumeTrue {
			return flow.Unreachable
		}
	case ast.KindFalseKeyword:
		if assumeTrue {
			return flow.Unreachable
		}
	}
	if !IsNarrowingExpression(b.store, expr) {
		return antecedent
	}
	return b.graph.NewCondition(antecedent, expr, assumeTrue)
}

// newMutation creates an assignment or array mutation node. Inside a try block
// every mutation may be followed by an exception, so it also feeds the exception label.
func (b *binder) newMutation(arrayMutation bool, node ast.NodeID) flow.ID {
	var id flow.ID
	if arrayMutation {
		id = b.graph.NewArrayMutation(b.currentFlow, node)
	} else {
		id = b.graph.NewAssignment(b.currentFlow, node)
	}
	if b.currentExceptionTarget.IsPresent() {
		b.addAntecedent(b.currentExceptionTarget, id)
	}
	return id
}

func (b *binder) checkUnreachable(n *ast.Node) {
	if !b.graph.IsUnreachable(b.currentFlow) {
		b.unreachableReported = false
		return
	}
	if b.unreachableReported || !reportsUnreachable(b.store, n) {
		return
	}
	b.unreachableReported = true
	if !b.opts.AllowUnreachableCode {
		b.errorAt(n.ID(), n, diag.UnreachableCode)
	}
}

// reportsUnreachable reports statements that do something when executed
func reportsUnreachable(store *ast.Store, n *ast.Node) bool {
	switch n.Kind() {
	case ast.KindFunctionDeclaration, ast.KindInterfaceDeclaration, ast.KindTypeAliasDeclaration,
		ast.KindEmptyStatement, ast.KindImportDeclaration:
		return false
	case ast.KindModuleDeclaration:
		return isValueModule(store, n)
	case ast.KindEnumDeclaration:
		return !n.Flags().IsConst()
	case ast.KindVariableStatement:
		if n.Flags().IsAmbient() {
			return false
		}
		listNode := store.Get(ast.As[ast.VariableStatement](n).DeclarationList)
		list := ast.As[ast.VariableDeclarationList](listNode)
		if list == nil || listNode.Flags().IsBlockScoped() {
			return true
		}
		// `var x` without an initializer only hoists a declaration
		for _, d := range list.Declarations {
			if ast.As[ast.VariableDeclaration](store.Get(d)).Initializer.IsPresent() {
				return true
			}
		}
		return false
	}
	return n.Kind().IsStatement()
}

func (b *binder) bindChildren(n *ast.Node) {
	if n.Kind().IsStatement() {
		b.checkUnreachable(n)
	}
	switch n.Kind() {
	case ast.KindSourceFile:
		b.bindStatementList(ast.As[ast.SourceFile](n).Statements)
	case ast.KindBlock, ast.KindModuleBlock:
		b.bindStatementList(ast.As[ast.Block](n).Statements)
	case ast.KindWhileStatement:
		b.bindWhileStatement(n)
	case ast.KindDoStatement:
		b.bindDoStatement(n)
	case ast.KindForStatement:
		b.bindForStatement(n)
	case ast.KindForInStatement, ast.KindForOfStatement:
		b.bindForInOrOfStatement(n)
	case ast.KindIfStatement:
		b.bindIfStatement(n)
	case ast.KindReturnStatement, ast.KindThrowStatement:
		b.bindReturnOrThrow(n)
	case ast.KindBreakStatement, ast.KindContinueStatement:
		b.bindBreakOrContinue(n)
	case ast.KindTryStatement:
		b.bindTryStatement(n)
	case ast.KindSwitchStatement:
		b.bindSwitchStatement(n)
	case ast.KindCaseClause, ast.KindDefaultClause:
		b.bindCaseClause(n)
	case ast.KindExpressionStatement:
		b.bindEachChild(n)
		b.bindCallFlow(ast.As[ast.ExpressionStatement](n).Expression)
	case ast.KindLabeledStatement:
		b.bindLabeledStatement(n)
	case ast.KindPrefixUnaryExpression:
		b.bindPrefixUnary(n)
	case ast.KindPostfixUnaryExpression:
		b.bindEachChild(n)
		b.bindAssignmentTarget(ast.As[ast.UnaryExpression](n).Operand)
	case ast.KindBinaryExpression:
		b.bindBinaryExpression(n)
	case ast.KindConditionalExpression:
		b.bindConditionalExpression(n)
	case ast.KindVariableDeclaration:
		b.bindEachChild(n)
		d := ast.As[ast.VariableDeclaration](n)
		if d.Initializer.IsPresent() || isForInOrOfInitializer(b.store, n) {
			b.currentFlow = b.newMutation(false, n.ID())
		}
	case ast.KindCallExpression:
		b.bindEachChild(n)
		b.bindArrayPushFlow(n)
	default:
		b.bindEachChild(n)
	}
}

// bindStatementList binds function declarations first, so that they are
// reachable and declared wherever the list is
func (b *binder) bindStatementList(stmts []ast.NodeID) {
	for _, s := range stmts {
		if b.store.Kind(s) == ast.KindFunctionDeclaration {
			b.bind(s)
		}
	}
	for _, s := range stmts {
		if b.store.Kind(s) != ast.KindFunctionDeclaration {
			b.bind(s)
		}
	}
}

func isForInOrOfInitializer(store *ast.Store, decl *ast.Node) bool {
	list := decl.ParentNode()
	if list == nil || list.Kind() != ast.KindVariableDeclarationList {
		return false
	}
	loop := list.ParentNode()
	return loop != nil && (loop.Kind() == ast.KindForInStatement || loop.Kind() == ast.KindForOfStatement)
}

// setContinueTarget points the labels of labeled statements around a loop at its continue target
func (b *binder) setContinueTarget(n *ast.Node, target flow.ID) flow.ID {
	l := b.activeLabels
	for p := n.ParentNode(); l != nil && p != nil && p.Kind() == ast.KindLabeledStatement; p = p.ParentNode() {
		l.continueTarget = target
		l = l.next
	}
	return target
}

func (b *binder) bindIterativeStatement(stmt ast.NodeID, breakTarget, continueTarget flow.ID) {
	saveBreak, saveContinue := b.currentBreakTarget, b.currentContinueTarget
	b.currentBreakTarget, b.currentContinueTarget = breakTarget, continueTarget
	b.bind(stmt)
	b.currentBreakTarget, b.currentContinueTarget = saveBreak, saveContinue
}

// closeLoop adds the back edge of a loop and seals its head
func (b *binder) closeLoop(loopLabel flow.ID) {
	b.addAntecedent(loopLabel, b.currentFlow)
	b.graph.Seal(loopLabel)
}

func (b *binder) bindWhileStatement(n *ast.Node) {
	d := ast.As[ast.LoopStatement](n)
	preWhile := b.setContinueTarget(n, b.newLoopLabel())
	preBody := b.newBranchLabel()
	postWhile := b.newBranchLabel()
	b.addAntecedent(preWhile, b.currentFlow)
	b.currentFlow = preWhile
	b.bindCondition(d.Condition, preBody, postWhile)
	b.currentFlow = b.finishLabel(preBody)
	b.bindIterativeStatement(d.Statement, postWhile, preWhile)
	b.closeLoop(preWhile)
	b.currentFlow = b.finishLabel(postWhile)
}

func (b *binder) bindDoStatement(n *ast.Node) {
	d := ast.As[ast.LoopStatement](n)
	preDo := b.newLoopLabel()
	preCondition := b.setContinueTarget(n, b.newBranchLabel())
	postDo := b.newBranchLabel()
	b.addAntecedent(preDo, b.currentFlow)
	b.currentFlow = preDo
	b.bindIterativeStatement(d.Statement, postDo, preCondition)
	b.addAntecedent(preCondition, b.currentFlow)
	b.currentFlow = b.finishLabel(preCondition)
	b.bindCondition(d.Condition, preDo, postDo)
	b.graph.Seal(preDo)
	b.currentFlow = b.finishLabel(postDo)
}

func (b *binder) bindForStatement(n *ast.Node) {
	d := ast.As[ast.LoopStatement](n)
	preLoop := b.setContinueTarget(n, b.newLoopLabel())
	preBody := b.newBranchLabel()
	postLoop := b.newBranchLabel()
	b.bind(d.Initializer)
	b.addAntecedent(preLoop, b.currentFlow)
	b.currentFlow = preLoop
	b.bindCondition(d.Condition, preBody, postLoop)
	b.currentFlow = b.finishLabel(preBody)
	b.bindIterativeStatement(d.Statement, postLoop, preLoop)
	b.bind(d.Incrementor)
	b.closeLoop(preLoop)
	b.currentFlow = b.finishLabel(postLoop)
}

func (b *binder) bindForInOrOfStatement(n *ast.Node) {
	d := ast.As[ast.LoopStatement](n)
	preLoop := b.setContinueTarget(n, b.newLoopLabel())
	postLoop := b.newBranchLabel()
	b.bind(d.Condition)
	b.addAntecedent(preLoop, b.currentFlow)
	b.currentFlow = preLoop
	b.addAntecedent(postLoop, b.currentFlow)
	b.bind(d.Initializer)
	if b.store.Kind(d.Initializer) != ast.KindVariableDeclarationList {
		b.bindAssignmentTarget(d.Initializer)
	}
	b.bindIterativeStatement(d.Statement, postLoop, preLoop)
	b.closeLoop(preLoop)
	b.currentFlow = b.finishLabel(postLoop)
}

func (b *binder) bindIfStatement(n *ast.Node) {
	d := ast.As[ast.IfStatement](n)
	thenLabel := b.newBranchLabel()
	elseLabel := b.newBranchLabel()
	postIf := b.newBranchLabel()
	b.bindCondition(d.Expression, thenLabel, elseLabel)
	b.currentFlow = b.finishLabel(thenLabel)
	b.bind(d.Then)
	b.addAntecedent(postIf, b.currentFlow)
	b.currentFlow = b.finishLabel(elseLabel)
	b.bind(d.Else)
	b.addAntecedent(postIf, b.currentFlow)
	b.currentFlow = b.finishLabel(postIf)
}

func (b *binder) bindReturnOrThrow(n *ast.Node) {
	b.bindEachChild(n)
	if n.Kind() == ast.KindReturnStatement && b.currentReturnTarget.IsPresent() {
		b.addAntecedent(b.currentReturnTarget, b.currentFlow)
	}
	b.currentFlow = flow.Unreachable
}

func (b *binder) bindBreakOrContinue(n *ast.Node) {
	d := ast.As[ast.JumpStatement](n)
	isBreak := n.Kind() == ast.KindBreakStatement
	keyword := "continue"
	if isBreak {
		keyword = "break"
	}
	target := b.currentContinueTarget
	if isBreak {
		target = b.currentBreakTarget
	}
	if d.Label.IsPresent() {
		name := b.store.Text(d.Label)
		target = flow.NoFlow
		for l := b.activeLabels; l != nil; l = l.next {
			if l.name == name {
				l.referenced = true
				target = l.continueTarget
				if isBreak {
					target = l.breakTarget
				}
				break
			}
		}
	}
	if !target.IsPresent() {
		b.errorAt(n.ID(), n, diag.JumpTargetNotFound, keyword)
		return
	}
	b.addAntecedent(target, b.currentFlow)
	b.currentFlow = flow.Unreachable
}

func (b *binder) bindTryStatement(n *ast.Node) {
	d := ast.As[ast.TryStatement](n)
	saveReturn, saveException := b.currentReturnTarget, b.currentExceptionTarget
	normalExit := b.newBranchLabel()
	returnLabel := b.newBranchLabel()
	exceptionLabel := b.newBranchLabel()
	if d.FinallyBlock.IsPresent() {
		b.currentReturnTarget = returnLabel
	}
	// an exception may be thrown before the first statement of the try block runs
	b.addAntecedent(exceptionLabel, b.currentFlow)
	b.currentExceptionTarget = exceptionLabel
	b.bind(d.TryBlock)
	b.addAntecedent(normalExit, b.currentFlow)
	if d.CatchClause.IsPresent() {
		b.currentFlow = b.finishLabel(exceptionLabel)
		exceptionLabel = b.newBranchLabel()
		b.addAntecedent(exceptionLabel, b.currentFlow)
		b.currentExceptionTarget = exceptionLabel
		b.bind(d.CatchClause)
		b.addAntecedent(normalExit, b.currentFlow)
	}
	b.currentReturnTarget, b.currentExceptionTarget = saveReturn, saveException

	if !d.FinallyBlock.IsPresent() {
		b.currentFlow = b.finishLabel(normalExit)
		return
	}
	normalAnts, _ := b.graph.Antecedents(normalExit)
	returnAnts, _ := b.graph.Antecedents(returnLabel)
	exceptionAnts, _ := b.graph.Antecedents(exceptionLabel)

	finally := b.newBranchLabel()
	for _, ants := range [][]flow.ID{normalAnts, exceptionAnts, returnAnts} {
		for _, a := range ants {
			b.addAntecedent(finally, a)
		}
	}
	b.graph.Seal(finally)
	b.currentFlow = finally
	if len(normalAnts)+len(exceptionAnts)+len(returnAnts) == 0 {
		b.currentFlow = flow.Unreachable
	}
	b.bind(d.FinallyBlock)
	if b.graph.IsUnreachable(b.currentFlow) {
		return
	}
	// control leaves the finally block the way it entered it
	if b.currentReturnTarget.IsPresent() && len(returnAnts) > 0 {
		b.addAntecedent(b.currentReturnTarget, b.graph.NewReduceLabel(finally, returnAnts, b.currentFlow))
	}
	if b.currentExceptionTarget.IsPresent() && len(exceptionAnts) > 0 {
		b.addAntecedent(b.currentExceptionTarget, b.graph.NewReduceLabel(finally, exceptionAnts, b.currentFlow))
	}
	if len(normalAnts) > 0 {
		b.currentFlow = b.graph.NewReduceLabel(finally, normalAnts, b.currentFlow)
	} else {
		b.currentFlow = flow.Unreachable
	}
}

func (b *binder) bindSwitchStatement(n *ast.Node) {
	d := ast.As[ast.SwitchStatement](n)
	postSwitch := b.newBranchLabel()
	b.bind(d.Expression)
	saveBreak, savePreSwitch := b.currentBreakTarget, b.preSwitchCaseFlow
	b.currentBreakTarget = postSwitch
	b.preSwitchCaseFlow = b.currentFlow

	narrowing := b.store.Kind(d.Expression) == ast.KindTrueKeyword || IsNarrowingExpression(b.store, d.Expression)
	fallthrough_ := flow.Unreachable
	hasDefault := false
	for i := 0; i < len(d.Clauses); i++ {
		clauseStart := i
		for len(clauseStatements(b.store, d.Clauses[i])) == 0 && i+1 < len(d.Clauses) {
			if b.graph.IsUnreachable(fallthrough_) {
				b.currentFlow = b.preSwitchCaseFlow
			}
			hasDefault = hasDefault || b.store.Kind(d.Clauses[i]) == ast.KindDefaultClause
			b.bind(d.Clauses[i])
			i++
		}
		hasDefault = hasDefault || b.store.Kind(d.Clauses[i]) == ast.KindDefaultClause
		preCase := b.newBranchLabel()
		entry := b.preSwitchCaseFlow
		if narrowing {
			entry = b.graph.NewSwitchClause(b.preSwitchCaseFlow, n.ID(), clauseStart, i+1)
		}
		b.addAntecedent(preCase, entry)
		b.addAntecedent(preCase, fallthrough_)
		b.currentFlow = b.finishLabel(preCase)
		b.bind(d.Clauses[i])
		fallthrough_ = b.currentFlow
	}
	b.addAntecedent(postSwitch, b.currentFlow)
	if !hasDefault {
		entry := b.preSwitchCaseFlow
		if narrowing {
			entry = b.graph.NewSwitchClause(b.preSwitchCaseFlow, n.ID(), 0, 0)
		}
		b.addAntecedent(postSwitch, entry)
	}
	b.currentBreakTarget, b.preSwitchCaseFlow = saveBreak, savePreSwitch
	b.currentFlow = b.finishLabel(postSwitch)
}

func clauseStatements(store *ast.Store, clause ast.NodeID) []ast.NodeID {
	if c := ast.As[ast.CaseClause](store.Get(clause)); c != nil {
		return c.Statements
	}
	return nil
}

func (b *binder) bindCaseClause(n *ast.Node) {
	d := ast.As[ast.CaseClause](n)
	save := b.currentFlow
	b.currentFlow = b.preSwitchCaseFlow
	b.bind(d.Expression)
	b.currentFlow = save
	b.bindStatementList(d.Statements)
}

func (b *binder) bindLabeledStatement(n *ast.Node) {
	d := ast.As[ast.LabeledStatement](n)
	postStatement := b.newBranchLabel()
	b.activeLabels = &activeLabel{
		next:        b.activeLabels,
		name:        b.store.Text(d.Label),
		breakTarget: postStatement,
	}
	b.bind(d.Label)
	b.bind(d.Statement)
	b.activeLabels = b.activeLabels.next
	b.addAntecedent(postStatement, b.currentFlow)
	b.currentFlow = b.finishLabel(postStatement)
}

// bindCondition binds a condition and routes its true and false outcomes to the given labels
func (b *binder) bindCondition(expr ast.NodeID, trueTarget, falseTarget flow.ID) {
	b.withConditionalBranches(expr, trueTarget, falseTarget)
	if !expr.IsPresent() || !isLogicalExpression(b.store, expr) {
		b.addAntecedent(trueTarget, b.newCondition(b.currentFlow, expr, true))
		b.addAntecedent(falseTarget, b.newCondition(b.currentFlow, expr, false))
	}
}

func (b *binder) withConditionalBranches(expr ast.NodeID, trueTarget, falseTarget flow.ID) {
	saveTrue, saveFalse := b.currentTrueTarget, b.currentFalseTarget
	b.currentTrueTarget, b.currentFalseTarget = trueTarget, falseTarget
	b.bind(expr)
	b.currentTrueTarget, b.currentFalseTarget = saveTrue, saveFalse
}

func (b *binder) bindPrefixUnary(n *ast.Node) {
	d := ast.As[ast.UnaryExpression](n)
	if d.Operator == ast.KindExclamationToken {
		saveTrue := b.currentTrueTarget
		b.currentTrueTarget, b.currentFalseTarget = b.currentFalseTarget, saveTrue
		b.bindEachChild(n)
		b.currentFalseTarget, b.currentTrueTarget = b.currentTrueTarget, saveTrue
		return
	}
	b.bindEachChild(n)
	if d.Operator == ast.KindPlusPlusToken || d.Operator == ast.KindMinusMinusToken {
		b.bindAssignmentTarget(d.Operand)
	}
}

func (b *binder) bindBinaryExpression(n *ast.Node) {
	d := ast.As[ast.BinaryExpression](n)
	op := d.Operator
	switch {
	case op.IsLogicalOperator() || (op.IsCompoundAssignment() && op.CompoundBase().IsLogicalOperator()):
		if b.isTopLevelLogicalExpression(n) {
			post := b.newBranchLabel()
			b.bindLogicalLikeExpression(n, post, post)
			b.currentFlow = b.finishLabel(post)
		} else {
			b.bindLogicalLikeExpression(n, b.currentTrueTarget, b.currentFalseTarget)
		}
	case op.IsAssignmentOperator():
		b.bind(d.Left)
		b.bind(d.Right)
		b.bindAssignmentTarget(d.Left)
		if op == ast.KindEqualsToken && b.store.Kind(d.Left) == ast.KindElementAccessExpression {
			access := ast.As[ast.ElementAccessExpression](b.store.Get(d.Left))
			if isNarrowableOperand(b.store, access.Expression) {
				b.currentFlow = b.newMutation(true, n.ID())
			}
		}
	default:
		b.bindEachChild(n)
	}
}

func (b *binder) bindLogicalLikeExpression(n *ast.Node, trueTarget, falseTarget flow.ID) {
	d := ast.As[ast.BinaryExpression](n)
	op := d.Operator.CompoundBase()
	preRight := b.newBranchLabel()
	if op == ast.KindAmpersandAmpersandToken {
		b.bindCondition(d.Left, preRight, falseTarget)
	} else {
		b.bindCondition(d.Left, trueTarget, preRight)
	}
	b.currentFlow = b.finishLabel(preRight)
	if d.Operator.IsCompoundAssignment() {
		b.withConditionalBranches(d.Right, trueTarget, falseTarget)
		b.bindAssignmentTarget(d.Left)
		b.addAntecedent(trueTarget, b.newCondition(b.currentFlow, n.ID(), true))
		b.addAntecedent(falseTarget, b.newCondition(b.currentFlow, n.ID(), false))
		return
	}
	b.bindCondition(d.Right, trueTarget, falseTarget)
}

func (b *binder) bindConditionalExpression(n *ast.Node) {
	d := ast.As[ast.ConditionalExpression](n)
	trueLabel := b.newBranchLabel()
	falseLabel := b.newBranchLabel()
	post := b.newBranchLabel()
	b.bindCondition(d.Condition, trueLabel, falseLabel)
	b.currentFlow = b.finishLabel(trueLabel)
	b.bind(d.WhenTrue)
	b.addAntecedent(post, b.currentFlow)
	b.currentFlow = b.finishLabel(falseLabel)
	b.bind(d.WhenFalse)
	b.addAntecedent(post, b.currentFlow)
	b.currentFlow = b.finishLabel(post)
}

// isTopLevelLogicalExpression reports logical expressions whose outcome does not
// directly feed a condition
func (b *binder) isTopLevelLogicalExpression(n *ast.Node) bool {
	id := n.ID()
	p := n.ParentNode()
	for p != nil && (p.Kind() == ast.KindParenthesizedExpression ||
		(p.Kind() == ast.KindPrefixUnaryExpression && ast.As[ast.UnaryExpression](p).Operator == ast.KindExclamationToken)) {
		id = p.ID()
		p = p.ParentNode()
	}
	if p == nil {
		return true
	}
	return !isStatementCondition(p, id) && !isLogicalExpression(b.store, p.ID())
}

func isStatementCondition(p *ast.Node, id ast.NodeID) bool {
	switch p.Kind() {
	case ast.KindIfStatement:
		return ast.As[ast.IfStatement](p).Expression == id
	case ast.KindWhileStatement, ast.KindDoStatement, ast.KindForStatement:
		return ast.As[ast.LoopStatement](p).Condition == id
	case ast.KindConditionalExpression:
		return ast.As[ast.ConditionalExpression](p).Condition == id
	}
	return false
}

func (b *binder) bindAssignmentTarget(target ast.NodeID) {
	if isNarrowableReference(b.store, target) {
		b.currentFlow = b.newMutation(false, target)
	}
}

// bindCallFlow records calls in statement position that may narrow as assertions
func (b *binder) bindCallFlow(expr ast.NodeID) {
	expr = b.store.SkipParentheses(expr)
	if b.store.Kind(expr) != ast.KindCallExpression {
		return
	}
	call := ast.As[ast.CallExpression](b.store.Get(expr))
	if isDottedName(b.store, call.Expression) {
		b.currentFlow = b.graph.NewCall(b.currentFlow, expr)
	}
}

// bindArrayPushFlow records `x.push(...)` on a narrowable x as a mutation of an evolving array
func (b *binder) bindArrayPushFlow(n *ast.Node) {
	call := ast.As[ast.CallExpression](n)
	access := ast.As[ast.PropertyAccessExpression](b.store.Get(call.Expression))
	if access == nil {
		return
	}
	switch b.store.Text(access.Name) {
	case "push", "unshift":
		if isNarrowableOperand(b.store, access.Expression) {
			b.currentFlow = b.newMutation(true, n.ID())
		}
	}
}
