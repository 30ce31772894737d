// Package binder creates symbols for the declarations of a source file and builds
// the file's control-flow graphs in the same walk.
package binder

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/flow"
	"github.com/cottand/strux/internal/config"
	"github.com/cottand/strux/internal/log"
	"github.com/hashicorp/go-set/v3"
)

var logger = log.Section("binder")

// activeLabel is a label of an enclosing labeled statement
type activeLabel struct {
	next           *activeLabel
	name           string
	breakTarget    flow.ID
	continueTarget flow.ID
	referenced     bool
}

type binder struct {
	*Bindings
	opts     config.Options
	file     ast.NodeID
	isModule bool

	container  ast.NodeID
	blockScope ast.NodeID

	currentFlow            flow.ID
	currentBreakTarget     flow.ID
	currentContinueTarget  flow.ID
	currentReturnTarget    flow.ID
	currentExceptionTarget flow.ID
	currentTrueTarget      flow.ID
	currentFalseTarget     flow.ID
	preSwitchCaseFlow      flow.ID
	activeLabels           *activeLabel
	// openLabels are sealed when the control-flow container that created them is finished
	openLabels []flow.ID

	unreachableReported bool
	// reported holds declarations already named in a duplicate identifier diagnostic
	reported *set.Set[ast.NodeID]
}

// Bind creates the symbols and flow graph of file. Symbols of script files are
// merged into b.Globals. Diagnostics are added to b.Diagnostics().
func Bind(b *Bindings, file ast.NodeID, opts config.Options) {
	sf := b.store.Get(file)
	if sf == nil || sf.Kind() != ast.KindSourceFile {
		return
	}
	bd := &binder{
		Bindings: b,
		opts:     opts,
		file:     file,
		isModule: IsExternalModule(b.store, file),
		reported: set.New[ast.NodeID](0),
	}
	before := b.SymbolCount()
	bd.bind(file)
	logger.Debug("bound file", "file", ast.As[ast.SourceFile](sf).FileName,
		"symbols", b.SymbolCount()-before, "module", bd.isModule)

	if !bd.isModule {
		b.mergeTable(b.Globals, b.locals[file], NoSymbol)
	}
}

func (b *binder) bind(id ast.NodeID) {
	n := b.store.Get(id)
	if n == nil {
		return
	}
	b.bindWorker(n)
	flags := ContainerFlagsOf(n)
	if flags == NotContainer {
		b.bindChildren(n)
		return
	}
	b.bindContainer(n, flags)
}

func (b *binder) bindEachChild(n *ast.Node) {
	for child := range n.Children() {
		b.bind(child)
	}
}

func (b *binder) bindEach(ids []ast.NodeID) {
	for _, id := range ids {
		b.bind(id)
	}
}

func (b *binder) bindContainer(n *ast.Node, flags ContainerFlags) {
	saveContainer, saveBlockScope := b.container, b.blockScope
	if flags.IsContainer() {
		b.container, b.blockScope = n.ID(), n.ID()
	} else if flags.IsBlockScopedContainer() {
		b.blockScope = n.ID()
	}
	if flags.HasLocals() && b.locals[n.ID()] == nil {
		b.locals[n.ID()] = NewSymbolTable()
	}

	if !flags.IsControlFlowContainer() {
		b.bindChildren(n)
		b.container, b.blockScope = saveContainer, saveBlockScope
		return
	}

	saveFlow := b.currentFlow
	saveReturn := b.currentReturnTarget
	saveException := b.currentExceptionTarget
	saveBreak, saveContinue := b.currentBreakTarget, b.currentContinueTarget
	saveLabels := b.activeLabels
	saveOpen := b.openLabels
	saveReported := b.unreachableReported

	if flags.IsFunctionExpression() {
		// closures continue narrowing from the flow where they are created
		b.flowAt[n.ID()] = b.currentFlow
	}
	if n.Kind() == ast.KindModuleBlock && b.currentFlow.IsPresent() {
		b.flowAt[n.ID()] = b.currentFlow
	}
	b.currentFlow = b.graph.NewStart(n.ID())
	b.currentReturnTarget = flow.NoFlow
	if n.Kind().IsFunctionLikeDeclaration() && ast.Body(n).IsPresent() {
		b.currentReturnTarget = b.newBranchLabel()
	}
	b.currentExceptionTarget = flow.NoFlow
	b.currentBreakTarget, b.currentContinueTarget = flow.NoFlow, flow.NoFlow
	b.activeLabels = nil
	b.openLabels = nil
	b.unreachableReported = false

	b.bindChildren(n)

	if n.Kind().IsFunctionLikeDeclaration() {
		b.endFlow[n.ID()] = b.currentFlow
		if b.currentReturnTarget.IsPresent() {
			b.addAntecedent(b.currentReturnTarget, b.currentFlow)
			b.returnFlow[n.ID()] = b.currentReturnTarget
		}
	}
	if n.Kind() == ast.KindSourceFile {
		b.endFlow[n.ID()] = b.currentFlow
	}
	for _, l := range b.openLabels {
		b.graph.Seal(l)
	}

	b.currentFlow = saveFlow
	b.currentReturnTarget = saveReturn
	b.currentExceptionTarget = saveException
	b.currentBreakTarget, b.currentContinueTarget = saveBreak, saveContinue
	b.activeLabels = saveLabels
	b.openLabels = saveOpen
	b.unreachableReported = saveReported
	b.container, b.blockScope = saveContainer, saveBlockScope
}

// bindWorker declares the symbol of a declaration and records the flow node of references
func (b *binder) bindWorker(n *ast.Node) {
	switch n.Kind() {
	case ast.KindIdentifier, ast.KindThisKeyword:
		if b.currentFlow.IsPresent() && isReferenceIdentifier(b.store, n) {
			b.flowAt[n.ID()] = b.currentFlow
		}
	case ast.KindPropertyAccessExpression, ast.KindElementAccessExpression:
		if b.currentFlow.IsPresent() && isNarrowableReference(b.store, n.ID()) {
			b.flowAt[n.ID()] = b.currentFlow
		}
	case ast.KindReturnStatement, ast.KindThrowStatement, ast.KindCallExpression, ast.KindNewExpression:
		if b.currentFlow.IsPresent() {
			b.flowAt[n.ID()] = b.currentFlow
		}
	case ast.KindSourceFile:
		if b.isModule {
			name := ast.EscapeName(`"` + ast.As[ast.SourceFile](n).FileName + `"`)
			sym := b.NewSymbol(NoSymbolFlags, name)
			b.addDeclaration(sym, n.ID(), ValueModule)
			b.modules[n.ID()] = sym.id
		}
	case ast.KindTypeParameter:
		b.bindTypeParameter(n)
	case ast.KindParameter:
		b.declareSymbolAndAddToSymbolTable(n, FunctionScopedVariable, ParameterExcludes)
	case ast.KindVariableDeclaration:
		if isBlockScopedVariable(n) {
			b.bindBlockScopedDeclaration(n, BlockScopedVariable, BlockScopedVariableExcludes)
		} else {
			b.declareSymbolAndAddToSymbolTable(n, FunctionScopedVariable, FunctionScopedVariableExcludes)
		}
	case ast.KindPropertyDeclaration, ast.KindPropertySignature:
		b.declareSymbolAndAddToSymbolTable(n, Property|optionalFlag(n), PropertyExcludes)
	case ast.KindPropertyAssignment, ast.KindShorthandPropertyAssignment:
		b.declareSymbolAndAddToSymbolTable(n, Property, PropertyExcludes)
	case ast.KindEnumMember:
		b.declareSymbolAndAddToSymbolTable(n, EnumMember, EnumMemberExcludes)
	case ast.KindCallSignature, ast.KindConstructSignature, ast.KindIndexSignature:
		b.declareSymbolAndAddToSymbolTable(n, Signature, SignatureExcludes)
	case ast.KindMethodDeclaration, ast.KindMethodSignature:
		excludes := MethodExcludes
		if p := n.ParentNode(); p != nil && p.Kind() == ast.KindObjectLiteralExpression {
			excludes = PropertyExcludes
		}
		b.declareSymbolAndAddToSymbolTable(n, Method|optionalFlag(n), excludes)
	case ast.KindConstructor:
		b.declareSymbolAndAddToSymbolTable(n, Constructor, NoSymbolFlags)
	case ast.KindFunctionDeclaration:
		if b.blockScope == b.container {
			b.declareSymbolAndAddToSymbolTable(n, Function, FunctionExcludes)
		} else {
			b.bindBlockScopedDeclaration(n, Function, FunctionExcludes)
		}
	case ast.KindFunctionExpression, ast.KindArrowFunction:
		name := ast.FunctionName
		if text := ast.DeclarationNameText(n); text != "" {
			name = ast.EscapeName(text)
		}
		b.bindAnonymousDeclaration(n, Function, name)
	case ast.KindFunctionType:
		b.bindAnonymousDeclaration(n, Signature, ast.CallName)
	case ast.KindConstructorType:
		b.bindAnonymousDeclaration(n, Signature, ast.NewName)
	case ast.KindTypeLiteral, ast.KindMappedType:
		b.bindAnonymousDeclaration(n, TypeLiteral, ast.TypeName)
	case ast.KindObjectLiteralExpression:
		b.bindAnonymousDeclaration(n, ObjectLiteral, ast.ObjectName)
	case ast.KindClassDeclaration:
		sym := b.bindBlockScopedDeclaration(n, Class, ClassExcludes)
		if _, ok := sym.Exports.Get("prototype"); !ok {
			proto := b.NewSymbol(Property|Prototype, "prototype")
			proto.Parent = sym.id
			sym.Exports.Set("prototype", proto.id)
		}
	case ast.KindInterfaceDeclaration:
		b.bindBlockScopedDeclaration(n, Interface, InterfaceExcludes)
	case ast.KindTypeAliasDeclaration:
		b.bindBlockScopedDeclaration(n, TypeAlias, TypeAliasExcludes)
	case ast.KindEnumDeclaration:
		if n.Flags().IsConst() {
			b.bindBlockScopedDeclaration(n, ConstEnum, ConstEnumExcludes)
		} else {
			b.bindBlockScopedDeclaration(n, RegularEnum, RegularEnumExcludes)
		}
	case ast.KindModuleDeclaration:
		if isValueModule(b.store, n) {
			b.declareSymbolAndAddToSymbolTable(n, ValueModule, ValueModuleExcludes)
		} else {
			b.declareSymbolAndAddToSymbolTable(n, NamespaceModule, NamespaceModuleExcludes)
		}
	case ast.KindImportSpecifier:
		b.declareSymbolAndAddToSymbolTable(n, Alias, AliasExcludes)
	}
}

func optionalFlag(n *ast.Node) SymbolFlags {
	if n.Flags().IsOptional() {
		return Optional
	}
	return NoSymbolFlags
}

func (b *binder) bindTypeParameter(n *ast.Node) {
	p := n.ParentNode()
	if p == nil || p.Kind() != ast.KindInferType {
		b.declareSymbolAndAddToSymbolTable(n, TypeParameter, TypeParameterExcludes)
		return
	}
	// `infer T` declares T in the nearest conditional type whose extends clause holds it
	child := p.ID()
	for anc := range b.store.Ancestors(p.ID()) {
		if ct := ast.As[ast.ConditionalType](anc); ct != nil && ct.ExtendsType == child {
			table := b.locals[anc.ID()]
			if table == nil {
				table = NewSymbolTable()
				b.locals[anc.ID()] = table
			}
			b.declareSymbol(table, NoSymbol, n, TypeParameter, TypeParameterExcludes)
			return
		}
		child = anc.ID()
	}
	b.bindAnonymousDeclaration(n, TypeParameter, declarationName(b.store, n))
}

func (b *binder) bindAnonymousDeclaration(n *ast.Node, flags SymbolFlags, name string) *Symbol {
	sym := b.NewSymbol(NoSymbolFlags, name)
	b.addDeclaration(sym, n.ID(), flags)
	return sym
}

func (b *binder) containerSymbol() *Symbol {
	return b.Symbol(b.declared[b.container])
}

func (b *binder) declareSymbolAndAddToSymbolTable(n *ast.Node, flags, excludes SymbolFlags) *Symbol {
	c := b.store.Get(b.container)
	if c == nil {
		return b.bindAnonymousDeclaration(n, flags, declarationName(b.store, n))
	}
	switch c.Kind() {
	case ast.KindModuleDeclaration:
		return b.declareModuleMember(n, flags, excludes)
	case ast.KindSourceFile:
		if b.isModule {
			return b.declareModuleMember(n, flags, excludes)
		}
		return b.declareSymbol(b.locals[b.container], NoSymbol, n, flags, excludes)
	case ast.KindClassDeclaration:
		parent := b.containerSymbol()
		if n.Flags().IsStatic() {
			return b.declareSymbol(parent.Exports, parent.id, n, flags, excludes)
		}
		return b.declareSymbol(parent.Members, parent.id, n, flags, excludes)
	case ast.KindEnumDeclaration:
		parent := b.containerSymbol()
		return b.declareSymbol(parent.Exports, parent.id, n, flags, excludes)
	case ast.KindTypeLiteral, ast.KindObjectLiteralExpression, ast.KindInterfaceDeclaration:
		parent := b.containerSymbol()
		if parent.Members == nil {
			parent.Members = NewSymbolTable()
		}
		return b.declareSymbol(parent.Members, parent.id, n, flags, excludes)
	}
	table := b.locals[b.container]
	if table == nil {
		table = NewSymbolTable()
		b.locals[b.container] = table
	}
	return b.declareSymbol(table, NoSymbol, n, flags, excludes)
}

func (b *binder) declareModuleMember(n *ast.Node, flags, excludes SymbolFlags) *Symbol {
	c := b.store.Get(b.container)
	exported := isExported(n) || (c.Kind() == ast.KindModuleDeclaration && c.Flags().IsAmbient())
	if exported && flags&Alias == 0 {
		parent := b.containerSymbol()
		if c.Kind() == ast.KindSourceFile {
			parent = b.Symbol(b.modules[b.container])
		}
		if parent != nil {
			if parent.Exports == nil {
				parent.Exports = NewSymbolTable()
			}
			return b.declareSymbol(parent.Exports, parent.id, n, flags, excludes)
		}
	}
	table := b.locals[b.container]
	if table == nil {
		table = NewSymbolTable()
		b.locals[b.container] = table
	}
	return b.declareSymbol(table, NoSymbol, n, flags, excludes)
}

func (b *binder) bindBlockScopedDeclaration(n *ast.Node, flags, excludes SymbolFlags) *Symbol {
	scope := b.store.Get(b.blockScope)
	if scope == nil {
		return b.bindAnonymousDeclaration(n, flags, declarationName(b.store, n))
	}
	switch scope.Kind() {
	case ast.KindModuleDeclaration:
		return b.declareModuleMember(n, flags, excludes)
	case ast.KindSourceFile:
		if b.isModule {
			return b.declareModuleMember(n, flags, excludes)
		}
	}
	table := b.locals[b.blockScope]
	if table == nil {
		table = NewSymbolTable()
		b.locals[b.blockScope] = table
	}
	return b.declareSymbol(table, NoSymbol, n, flags, excludes)
}

// declareSymbol adds n to the symbol named like it in table, or to a fresh symbol.
// A declaration that conflicts with the existing symbol is reported and gets a
// symbol of its own outside the table, so that it can still be queried.
func (b *binder) declareSymbol(table *SymbolTable, parent SymbolID, n *ast.Node, includes, excludes SymbolFlags) *Symbol {
	name := declarationName(b.store, n)
	var sym *Symbol
	if name == "" {
		sym = b.NewSymbol(NoSymbolFlags, ast.MissingName)
	} else if id, ok := table.Get(name); !ok {
		sym = b.NewSymbol(NoSymbolFlags, name)
		table.Set(name, sym.id)
	} else {
		existing := b.symbols[id]
		switch {
		case !CanMerge(existing.flags, excludes):
			logger.Debug("conflicting declaration", "symbol", existing, "node", ast.Slog(n))
			b.reportConflict(existing, n, includes)
			sym = b.NewSymbol(NoSymbolFlags, name)
		case includes&Function != 0 && existing.flags&Function != 0 && ast.Body(n).IsPresent() && b.hasFunctionBody(existing):
			b.errorAtName(n.ID(), diag.DuplicateFunctionImpl)
			sym = existing
		default:
			sym = existing
		}
	}
	b.addDeclaration(sym, n.ID(), includes)
	if parent.IsPresent() {
		sym.Parent = parent
	}
	return sym
}

func (b *binder) hasFunctionBody(s *Symbol) bool {
	for _, decl := range s.Declarations {
		if n := b.store.Get(decl); n != nil && n.Kind() == ast.KindFunctionDeclaration && ast.Body(n).IsPresent() {
			return true
		}
	}
	return false
}

func (b *binder) reportConflict(existing *Symbol, n *ast.Node, includes SymbolFlags) {
	code := diag.DuplicateIdentifier
	if existing.flags.IsBlockScoped() || includes&BlockScopedVariable != 0 {
		code = diag.CannotRedeclareBlockScoped
	}
	for _, decl := range existing.Declarations {
		if b.reported.Insert(decl) {
			b.errorAtName(decl, code, existing.DisplayName())
		}
	}
	if b.reported.Insert(n.ID()) {
		b.errorAtName(n.ID(), code, existing.DisplayName())
	}
}

// declarationName returns the escaped symbol table key of a declaration, or "" if it has no name
func declarationName(store *ast.Store, n *ast.Node) string {
	switch n.Kind() {
	case ast.KindConstructor:
		return ast.ConstructorName
	case ast.KindCallSignature, ast.KindFunctionType:
		return ast.CallName
	case ast.KindConstructSignature, ast.KindConstructorType:
		return ast.NewName
	case ast.KindIndexSignature:
		return ast.IndexName
	}
	name := store.Get(ast.DeclarationName(n))
	if name == nil {
		return ""
	}
	switch d := ast.As[ast.LiteralExpression](name); {
	case d != nil && name.Kind() == ast.KindNumericLiteral:
		return ast.EscapeName(ast.FormatNumber(d.Value))
	case d != nil:
		return ast.EscapeName(d.Text)
	}
	if name.Flags().HasError() {
		return ""
	}
	return ast.EscapeName(store.Text(name.ID()))
}
