package binder

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/flow"
)

// Bindings is the output of binding every file of one session: the symbol
// arena, the flow graph, and the side tables linking syntax to both.
type Bindings struct {
	store *ast.Store
	graph *flow.Graph

	symbols     []*Symbol
	nextMergeID uint32
	// merged maps the merge id of a symbol that was folded into another one to the result
	merged map[uint32]SymbolID

	declared map[ast.NodeID]SymbolID
	locals   map[ast.NodeID]*SymbolTable
	flowAt   map[ast.NodeID]flow.ID
	// endFlow is the flow at the end of a function body, Unreachable when control cannot fall off it
	endFlow map[ast.NodeID]flow.ID
	// returnFlow joins the flows of every return statement of a function
	returnFlow map[ast.NodeID]flow.ID

	// Globals holds the symbols of every script file, merged across files
	Globals *SymbolTable
	modules map[ast.NodeID]SymbolID

	diags *diag.Bag
}

func NewBindings(store *ast.Store) *Bindings {
	b := &Bindings{
		store:      store,
		graph:      flow.NewGraph(),
		symbols:    make([]*Symbol, 1, 256),
		merged:     map[uint32]SymbolID{},
		declared:   map[ast.NodeID]SymbolID{},
		locals:     map[ast.NodeID]*SymbolTable{},
		flowAt:     map[ast.NodeID]flow.ID{},
		endFlow:    map[ast.NodeID]flow.ID{},
		returnFlow: map[ast.NodeID]flow.ID{},
		Globals:    NewSymbolTable(),
		modules:    map[ast.NodeID]SymbolID{},
		diags:      diag.NewBag(),
	}
	return b
}

func (b *Bindings) Store() *ast.Store       { return b.store }
func (b *Bindings) Graph() *flow.Graph      { return b.graph }
func (b *Bindings) Diagnostics() *diag.Bag  { return b.diags }
func (b *Bindings) SymbolCount() int        { return len(b.symbols) - 1 }

// NewSymbol allocates a symbol with a fresh merge id
func (b *Bindings) NewSymbol(flags SymbolFlags, name string) *Symbol {
	b.nextMergeID++
	s := &Symbol{
		id:      SymbolID(len(b.symbols)),
		flags:   flags,
		name:    name,
		mergeID: b.nextMergeID,
	}
	b.symbols = append(b.symbols, s)
	return s
}

// Symbol returns the symbol with the given id, or nil for NoSymbol
func (b *Bindings) Symbol(id SymbolID) *Symbol {
	if id == NoSymbol || int(id) >= len(b.symbols) {
		return nil
	}
	return b.symbols[id]
}

// Merged canonicalises id: a symbol that was merged into another resolves to
// the merge result, any other symbol resolves to itself.
func (b *Bindings) Merged(id SymbolID) SymbolID {
	for {
		s := b.Symbol(id)
		if s == nil {
			return id
		}
		target, ok := b.merged[s.mergeID]
		if !ok || target == id {
			return id
		}
		id = target
	}
}

// SymbolOf returns the merged symbol declared by decl
func (b *Bindings) SymbolOf(decl ast.NodeID) SymbolID {
	return b.Merged(b.declared[decl])
}

// Locals returns the local symbol table of a container, or nil if it has none
func (b *Bindings) Locals(container ast.NodeID) *SymbolTable { return b.locals[container] }

// FlowAt returns the flow node in effect at a reference or statement, or NoFlow when
// the node was not recorded
func (b *Bindings) FlowAt(node ast.NodeID) flow.ID { return b.flowAt[node] }

// EndFlow returns the flow at the end of a function-like body
func (b *Bindings) EndFlow(fn ast.NodeID) flow.ID { return b.endFlow[fn] }

// ReturnFlow returns the label joining every return statement of fn
func (b *Bindings) ReturnFlow(fn ast.NodeID) flow.ID { return b.returnFlow[fn] }

// IsEndReachable reports whether control can reach the closing brace of fn's body
func (b *Bindings) IsEndReachable(fn ast.NodeID) bool {
	end, ok := b.endFlow[fn]
	return ok && !b.graph.IsUnreachable(end)
}

// ModuleSymbol returns the symbol of a file that has imports or exports
func (b *Bindings) ModuleSymbol(file ast.NodeID) SymbolID { return b.modules[file] }

// Exports returns the export table of a symbol after merging
func (b *Bindings) Exports(id SymbolID) *SymbolTable {
	if s := b.Symbol(b.Merged(id)); s != nil {
		return s.Exports
	}
	return nil
}

// Members returns the member table of a symbol after merging
func (b *Bindings) Members(id SymbolID) *SymbolTable {
	if s := b.Symbol(b.Merged(id)); s != nil {
		return s.Members
	}
	return nil
}

// ResolveName finds the symbol a name means at location, looking through the
// enclosing scopes from the innermost outwards and then the global scope.
// Aliases match any meaning, the caller resolves them.
func (b *Bindings) ResolveName(location ast.NodeID, name string, meaning SymbolFlags) SymbolID {
	name = ast.EscapeName(name)
	lookup := func(t *SymbolTable, meaning SymbolFlags) SymbolID {
		id, ok := t.Get(name)
		if !ok {
			return NoSymbol
		}
		id = b.Merged(id)
		if s := b.Symbol(id); s != nil && s.flags&(meaning|Alias) != 0 {
			return id
		}
		return NoSymbol
	}
	for n := b.store.Get(location); n != nil; n = n.ParentNode() {
		if id := lookup(b.locals[n.ID()], meaning); id.IsPresent() {
			return id
		}
		switch n.Kind() {
		case ast.KindSourceFile:
			if id := lookup(b.Exports(b.modules[n.ID()]), meaning); id.IsPresent() {
				return id
			}
		case ast.KindModuleDeclaration, ast.KindEnumDeclaration:
			if id := lookup(b.Exports(b.declared[n.ID()]), meaning); id.IsPresent() {
				return id
			}
		case ast.KindClassDeclaration, ast.KindInterfaceDeclaration:
			// type parameters are members of their class or interface
			if meaning&TypeParameter == 0 {
				continue
			}
			if id := lookup(b.Members(b.declared[n.ID()]), TypeParameter); id.IsPresent() {
				return id
			}
		}
	}
	return lookup(b.Globals, meaning)
}

func (b *Bindings) addDeclaration(s *Symbol, decl ast.NodeID, flags SymbolFlags) {
	s.flags |= flags
	s.Declarations = append(s.Declarations, decl)
	if flags&Value != 0 && !s.ValueDeclaration.IsPresent() {
		s.ValueDeclaration = decl
	}
	if s.flags&(Class|Enum|Module|Variable) != 0 && s.Exports == nil {
		s.Exports = NewSymbolTable()
	}
	if s.flags&(Class|Interface|TypeLiteral|ObjectLiteral) != 0 && s.Members == nil {
		s.Members = NewSymbolTable()
	}
	if !b.declared[decl].IsPresent() {
		b.declared[decl] = s.id
	}
}

// mergeInto folds source into target and records target as the canonical
// symbol for source's merge id
func (b *Bindings) mergeInto(target, source *Symbol) {
	target.flags |= source.flags
	if !target.ValueDeclaration.IsPresent() {
		target.ValueDeclaration = source.ValueDeclaration
	}
	target.Declarations = append(target.Declarations, source.Declarations...)
	if source.Members.Len() > 0 {
		if target.Members == nil {
			target.Members = NewSymbolTable()
		}
		b.mergeTable(target.Members, source.Members, target.id)
	}
	if source.Exports.Len() > 0 {
		if target.Exports == nil {
			target.Exports = NewSymbolTable()
		}
		b.mergeTable(target.Exports, source.Exports, target.id)
	}
	b.merged[source.mergeID] = target.id
}

// mergeTable merges the entries of source into target, reporting conflicts
func (b *Bindings) mergeTable(target, source *SymbolTable, parent SymbolID) {
	for name, id := range source.All() {
		src := b.symbols[b.Merged(id)]
		existingID, ok := target.Get(name)
		if !ok {
			target.Set(name, src.id)
			continue
		}
		existing := b.symbols[b.Merged(existingID)]
		if existing.id == src.id {
			continue
		}
		if CanMerge(existing.flags, excludesOf(src.flags)) {
			// the existing symbol may belong to an earlier file; merge into a clone so that
			// file's own tables keep describing only that file
			if existing.flags&Transient == 0 {
				clone := b.cloneSymbol(existing)
				clone.Parent = parent
				target.Set(name, clone.id)
				existing = clone
			}
			b.mergeInto(existing, src)
			continue
		}
		b.reportDuplicates(existing, src)
	}
}

func (b *Bindings) cloneSymbol(s *Symbol) *Symbol {
	clone := b.NewSymbol(s.flags|Transient, s.name)
	clone.Declarations = append([]ast.NodeID(nil), s.Declarations...)
	clone.ValueDeclaration = s.ValueDeclaration
	clone.Parent = s.Parent
	if s.Members != nil {
		clone.Members = NewSymbolTable()
		for name, id := range s.Members.All() {
			clone.Members.Set(name, id)
		}
	}
	if s.Exports != nil {
		clone.Exports = NewSymbolTable()
		for name, id := range s.Exports.All() {
			clone.Exports.Set(name, id)
		}
	}
	b.merged[s.mergeID] = clone.id
	return clone
}

// excludesOf approximates the excludes of a symbol from its flags, for merging
// symbols whose declarations were already bound
func excludesOf(flags SymbolFlags) SymbolFlags {
	var ex SymbolFlags
	for _, e := range excludesTable {
		if flags&e.flag != 0 {
			ex |= e.excludes
		}
	}
	return ex
}

var excludesTable = []struct {
	flag, excludes SymbolFlags
}{
	{FunctionScopedVariable, FunctionScopedVariableExcludes},
	{BlockScopedVariable, BlockScopedVariableExcludes},
	{Property, PropertyExcludes},
	{EnumMember, EnumMemberExcludes},
	{Function, FunctionExcludes},
	{Class, ClassExcludes},
	{Interface, InterfaceExcludes},
	{RegularEnum, RegularEnumExcludes},
	{ConstEnum, ConstEnumExcludes},
	{ValueModule, ValueModuleExcludes},
	{Method, MethodExcludes},
	{TypeParameter, TypeParameterExcludes},
	{TypeAlias, TypeAliasExcludes},
	{Alias, AliasExcludes},
}

func (b *Bindings) reportDuplicates(existing, incoming *Symbol) {
	code := diag.DuplicateIdentifier
	if existing.flags.IsBlockScoped() || incoming.flags.IsBlockScoped() {
		code = diag.CannotRedeclareBlockScoped
	}
	for _, decl := range existing.Declarations {
		b.errorAtName(decl, code, existing.DisplayName())
	}
	for _, decl := range incoming.Declarations {
		b.errorAtName(decl, code, incoming.DisplayName())
	}
}

func (b *Bindings) errorAtName(decl ast.NodeID, code diag.Code, args ...any) {
	n := b.store.Get(decl)
	if n == nil {
		return
	}
	at := ast.Positioner(n)
	if name := b.store.Get(ast.DeclarationName(n)); name != nil {
		at = name
	}
	b.errorAt(decl, at, code, args...)
}

func (b *Bindings) errorAt(node ast.NodeID, at ast.Positioner, code diag.Code, args ...any) {
	file := ""
	if sf := b.store.SourceFileOf(node); sf != nil {
		file = ast.As[ast.SourceFile](sf).FileName
	}
	b.diags.Add(diag.New(file, at, code, args...))
}
