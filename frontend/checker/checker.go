// Package checker computes the types of the declarations and expressions of a
// bound program and reports its semantic diagnostics.
//
// A Checker resolves lazily: the type of a symbol, the members of a declared
// type and the return type of a signature are computed when first asked for
// and cached from then on. CheckFile walks a file and asks for everything in it.
package checker

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/flow"
	"github.com/cottand/strux/frontend/infer"
	"github.com/cottand/strux/frontend/nodebuilder"
	"github.com/cottand/strux/frontend/types"
	"github.com/cottand/strux/internal/config"
	"github.com/cottand/strux/internal/log"
	"github.com/hashicorp/go-set/v3"
)

var logger = log.Section("checker")

// ResolveFunc maps the specifier of an import found in the file from to the
// SourceFile it names
type ResolveFunc func(specifier string, from ast.NodeID) (ast.NodeID, bool)

type resolution uint8

const (
	unresolved resolution = iota
	resolving
	resolved
)

// symbolLinks caches what the checker computed for a symbol
type symbolLinks struct {
	typ       types.TypeID
	typeState resolution

	declared      types.TypeID
	declaredState resolution

	aliasTarget binder.SymbolID
	aliasState  resolution

	// enumValue is the value of an enum member, a float64 or a string
	enumValue any
	// circular is set when a type alias was found to reference itself
	circular bool
}

// argumentContext is the contextual type of a call argument while its call is
// resolved, along with the inference in progress for a generic call
type argumentContext struct {
	typ       types.TypeID
	inference *infer.Context
}

// Checker checks the files of one program. It is not safe for concurrent use.
type Checker struct {
	b       *binder.Bindings
	store   *ast.Store
	graph   *flow.Graph
	s       *types.Store
	opts    config.Options
	engine  *infer.Engine
	builder *nodebuilder.Builder
	resolve ResolveFunc
	diags   *diag.Bag

	// interrupt is called at safe points and may panic to abandon the check
	interrupt func()

	links      map[binder.SymbolID]*symbolLinks
	nodeTypes  map[ast.NodeID]types.TypeID
	typeNodes  map[ast.NodeID]types.TypeID
	typeParams map[ast.NodeID]types.TypeID
	signatures map[ast.NodeID]*types.Signature
	// resolvedCalls holds the signature each call or new expression resolved to
	resolvedCalls map[ast.NodeID]*types.Signature
	// argContext holds the contextual types of call arguments while their call is resolved
	argContext map[ast.NodeID]argumentContext
	// referenceSymbols caches the symbol each identifier reference resolved to
	referenceSymbols map[ast.NodeID]binder.SymbolID
	// iteratedTypes caches the element types of for-of expressions
	iteratedTypes map[ast.NodeID]types.TypeID
	// loopTypes holds the types of references at loop labels under analysis
	loopTypes     map[loopKey]types.TypeID
	flowLoopDepth int

	circularReturns *set.Set[ast.NodeID]
	checkedFiles    *set.Set[ast.NodeID]
	checkedBodies   *set.Set[ast.NodeID]
	// assignedSymbols holds the variables assigned in scannedFiles
	assignedSymbols *set.Set[binder.SymbolID]
	scannedFiles    *set.Set[ast.NodeID]
	deferred        []func()
}

// New creates the checker of a program whose files, the prelude included, are
// all bound into b. It installs itself in s as the inferrer and formatter.
func New(b *binder.Bindings, s *types.Store, resolve ResolveFunc) *Checker {
	c := &Checker{
		b:                b,
		store:            b.Store(),
		graph:            b.Graph(),
		s:                s,
		opts:             s.Options(),
		resolve:          resolve,
		diags:            diag.NewBag(),
		links:            map[binder.SymbolID]*symbolLinks{},
		nodeTypes:        map[ast.NodeID]types.TypeID{},
		typeNodes:        map[ast.NodeID]types.TypeID{},
		typeParams:       map[ast.NodeID]types.TypeID{},
		signatures:       map[ast.NodeID]*types.Signature{},
		resolvedCalls:    map[ast.NodeID]*types.Signature{},
		argContext:       map[ast.NodeID]argumentContext{},
		referenceSymbols: map[ast.NodeID]binder.SymbolID{},
		iteratedTypes:    map[ast.NodeID]types.TypeID{},
		loopTypes:        map[loopKey]types.TypeID{},
		circularReturns:  set.New[ast.NodeID](0),
		checkedFiles:     set.New[ast.NodeID](0),
		checkedBodies:    set.New[ast.NodeID](0),
		assignedSymbols:  set.New[binder.SymbolID](0),
		scannedFiles:     set.New[ast.NodeID](0),
	}
	c.engine = infer.Install(s)
	c.builder = nodebuilder.New(s, c, c.opts).Install()
	s.SetSymbolNamer(func(id binder.SymbolID) string {
		if sym := b.Symbol(id); sym != nil {
			return sym.DisplayName()
		}
		return ""
	})
	c.installGlobals()
	return c
}

func (c *Checker) installGlobals() {
	global := func(name string) types.TypeID {
		id, ok := c.b.Globals.Get(name)
		if !ok {
			return types.NoType
		}
		id = c.b.Merged(id)
		if !c.symbolFlags(id).IsInterface() {
			return types.NoType
		}
		return c.declaredTypeOfSymbol(id)
	}
	g := types.Globals{
		String:   global("String"),
		Number:   global("Number"),
		Boolean:  global("Boolean"),
		Object:   global("Object"),
		Function: global("Function"),
		Array:    global("Array"),
	}
	if len(c.s.TypeParametersOf(g.Array)) != 1 {
		g.Array = types.NoType
	}
	c.s.SetGlobals(g)
	logger.Debug("installed global types", "array", g.Array.IsPresent(), "string", g.String.IsPresent())
}

// SetInterrupt installs a function called between statements. It may panic to
// abandon the check; the Checker must then be discarded.
func (c *Checker) SetInterrupt(f func()) { c.interrupt = f }

func (c *Checker) Store() *types.Store           { return c.s }
func (c *Checker) Builder() *nodebuilder.Builder { return c.builder }
func (c *Checker) Bindings() *binder.Bindings    { return c.b }

// Diagnostics returns the diagnostics reported by checking so far, including
// those the type store reported while relating types
func (c *Checker) Diagnostics() *diag.Bag {
	return diag.NewBag().Merge(c.diags).Merge(c.s.Diagnostics())
}

// CheckFile checks every statement of file. Checking a file twice does nothing.
func (c *Checker) CheckFile(file ast.NodeID) {
	if c.checkedFiles.Contains(file) {
		return
	}
	c.checkedFiles.Insert(file)
	sf := ast.As[ast.SourceFile](c.store.Get(file))
	if sf == nil {
		return
	}
	before := c.diags.Len()
	c.checkStatements(sf.Statements)
	c.runDeferred()
	logger.Debug("checked file", "file", sf.FileName, "diagnostics", c.diags.Len()-before, "types", c.s.Len())
}

// runDeferred runs checks postponed until the declarations they need are resolved
func (c *Checker) runDeferred() {
	for len(c.deferred) > 0 {
		next := c.deferred[0]
		c.deferred = c.deferred[1:]
		next()
	}
}

func (c *Checker) defer_(f func()) {
	c.deferred = append(c.deferred, f)
}

// TypeOf returns the type of a node: the type of an expression, the type a
// type node denotes, or the type of the symbol a declaration (or its name) declares.
// Nodes without a type yield the error type.
func (c *Checker) TypeOf(id ast.NodeID) types.TypeID {
	n := c.store.Get(id)
	if n == nil {
		return c.s.Error
	}
	if n.Kind() == ast.KindIdentifier {
		if p := n.ParentNode(); p != nil && ast.DeclarationName(p) == id {
			n = p
		}
	}
	kind := n.Kind()
	switch {
	case kind == ast.KindSourceFile:
		return c.s.Error
	case isExpressionDeclaration(kind):
		return c.checkExpression(n.ID())
	case kind.IsTypeNode():
		return c.typeFromTypeNode(n.ID())
	case kind == ast.KindTypeParameter:
		return c.typeParameterOf(n.ID())
	case kind.IsDeclaration() || kind == ast.KindParameter || kind == ast.KindPropertyAssignment:
		sym := c.b.SymbolOf(n.ID())
		if !sym.IsPresent() {
			return c.s.Error
		}
		flags := c.symbolFlags(sym)
		if flags.IsValue() || flags.IsAlias() {
			return c.typeOfSymbol(sym)
		}
		return c.declaredTypeOfSymbol(sym)
	case kind.IsStatement():
		return c.s.Error
	}
	return c.checkExpression(n.ID())
}

func isExpressionDeclaration(kind ast.Kind) bool {
	switch kind {
	case ast.KindFunctionExpression, ast.KindArrowFunction, ast.KindObjectLiteralExpression:
		return true
	}
	return false
}

// SignatureOf returns the signature a call or new expression resolved to, or nil
func (c *Checker) SignatureOf(call ast.NodeID) *types.Signature {
	if _, ok := c.nodeTypes[call]; !ok {
		c.checkExpression(call)
	}
	return c.resolvedCalls[call]
}

func (c *Checker) checkpoint() {
	if c.interrupt != nil {
		c.interrupt()
	}
}

func (c *Checker) symbolFlags(id binder.SymbolID) binder.SymbolFlags {
	if sym := c.b.Symbol(id); sym != nil {
		return sym.Flags()
	}
	return binder.NoSymbolFlags
}

func (c *Checker) symbolName(id binder.SymbolID) string {
	if sym := c.b.Symbol(id); sym != nil {
		return sym.DisplayName()
	}
	return ""
}

func (c *Checker) linksOf(id binder.SymbolID) *symbolLinks {
	l, ok := c.links[id]
	if !ok {
		l = &symbolLinks{}
		c.links[id] = l
	}
	return l
}

func (c *Checker) typeString(t types.TypeID) string { return c.s.TypeString(t) }

func (c *Checker) fileName(id ast.NodeID) string {
	if sf := ast.As[ast.SourceFile](c.store.SourceFileOf(id)); sf != nil {
		return sf.FileName
	}
	return ""
}

func (c *Checker) positioner(id ast.NodeID) ast.Positioner {
	if n := c.store.Get(id); n != nil {
		return n
	}
	return nil
}

func (c *Checker) error(at ast.NodeID, code diag.Code, args ...any) {
	c.diags.Add(diag.New(c.fileName(at), c.positioner(at), code, args...))
}

func (c *Checker) errorChain(at ast.NodeID, chain *diag.MessageChain) {
	c.diags.Add(diag.NewChained(c.fileName(at), c.positioner(at), chain))
}

// locate points the diagnostics the type store reports at node, and returns
// a function that restores the previous location
func (c *Checker) locate(node ast.NodeID) func() {
	file, pos := c.s.SetLocation(c.fileName(node), c.positioner(node))
	return func() { c.s.SetLocation(file, pos) }
}

// checkAssignable reports source not being assignable to target at node. The
// elaboration, if any, may be replaced with head.
func (c *Checker) checkAssignable(source, target types.TypeID, node ast.NodeID) bool {
	return c.checkRelated(source, target, types.RelationAssignable, node, nil)
}

func (c *Checker) checkRelated(source, target types.TypeID, rel types.Relation, node ast.NodeID, head func(*diag.MessageChain) *diag.MessageChain) bool {
	restore := c.locate(node)
	defer restore()
	res, chain := c.s.CheckRelated(source, target, rel)
	if res.Succeeded() {
		return true
	}
	if chain == nil {
		// overflows were reported by the store
		return false
	}
	if head != nil {
		chain = head(chain)
	}
	c.errorChain(node, chain)
	return false
}

// EntityName names symbol for the node builder, outermost name first
func (c *Checker) EntityName(symbol binder.SymbolID, enclosing ast.NodeID) ([]string, bool) {
	symbol = c.b.Merged(symbol)
	sym := c.b.Symbol(symbol)
	if sym == nil || ast.IsInternalName(sym.Name()) {
		return nil, false
	}
	names := []string{sym.DisplayName()}
	if !sym.Flags().IsTypeParameter() {
		for p := c.b.Symbol(c.b.Merged(sym.Parent)); p != nil; p = c.b.Symbol(c.b.Merged(p.Parent)) {
			if !p.Flags().Has(binder.Namespace) || ast.IsInternalName(p.Name()) {
				break
			}
			names = append([]string{p.DisplayName()}, names...)
		}
	}
	return names, c.resolvesTo(names, symbol, enclosing)
}

// resolvesTo reports whether the qualified name names resolves to symbol at location
func (c *Checker) resolvesTo(names []string, symbol binder.SymbolID, location ast.NodeID) bool {
	meaning := binder.Type | binder.Value | binder.Namespace
	if len(names) > 1 {
		meaning = binder.Namespace
	}
	current := c.b.ResolveName(location, names[0], meaning)
	current = c.resolveAlias(current)
	for _, name := range names[1:] {
		exports := c.b.Exports(current)
		if exports == nil {
			return false
		}
		next, ok := exports.Get(ast.EscapeName(name))
		if !ok {
			return false
		}
		current = c.resolveAlias(c.b.Merged(next))
	}
	return current.IsPresent() && c.b.Merged(current) == symbol
}
