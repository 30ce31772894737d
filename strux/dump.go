package strux

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/flow"
	"github.com/pkg/errors"
	"github.com/xlab/treeprint"
)

func (p *Program) fileNamed(name string) (ast.NodeID, error) {
	root, ok := p.byName[name]
	if !ok {
		return ast.NoNode, errors.Errorf("no file %q in program", name)
	}
	return root, nil
}

func (p *Program) nodeLabel(n *ast.Node) string {
	label := n.Kind().String()
	switch n.Kind() {
	case ast.KindIdentifier, ast.KindStringLiteral, ast.KindNumericLiteral, ast.KindNoSubstitutionTemplateLiteral:
		label += fmt.Sprintf(" %q", p.store.Text(n.ID()))
	}
	if pos := p.fset.Position(n.Pos()); pos.IsValid() {
		label += fmt.Sprintf(" @%d:%d", pos.Line, pos.Column)
	}
	return label
}

// DumpAST renders the syntax tree of the file called name
func (p *Program) DumpAST(name string) (string, error) {
	root, err := p.fileNamed(name)
	if err != nil {
		return "", err
	}
	tree := treeprint.New().AddBranch(name)
	var visit func(parent treeprint.Tree, id ast.NodeID)
	visit = func(parent treeprint.Tree, id ast.NodeID) {
		n := p.store.Get(id)
		branch := parent.AddBranch(p.nodeLabel(n))
		for child := range n.Children() {
			visit(branch, child)
		}
	}
	for child := range p.store.Get(root).Children() {
		visit(tree, child)
	}
	return tree.String(), nil
}

// DumpFlow renders, for the file called name and each function in it, the
// flow graph walked backwards from the end of the container. A node met a
// second time is printed as a reference to its first occurrence.
func (p *Program) DumpFlow(name string) (string, error) {
	root, err := p.fileNamed(name)
	if err != nil {
		return "", err
	}
	g := p.bindings.Graph()
	tree := treeprint.New().AddBranch(name)
	var visit func(parent treeprint.Tree, id flow.ID, seen *roaring.Bitmap)
	visit = func(parent treeprint.Tree, id flow.ID, seen *roaring.Bitmap) {
		if seen.Contains(uint32(id)) {
			parent.AddNode(fmt.Sprintf("^#%d", id))
			return
		}
		seen.Add(uint32(id))
		branch := parent.AddBranch(g.Describe(p.store, id))
		ants, _ := g.Antecedents(id)
		for _, ant := range ants {
			visit(branch, ant, seen)
		}
	}
	p.store.Walk(root, func(n *ast.Node) bool {
		if n.Kind() != ast.KindSourceFile && !n.Kind().IsFunctionLike() {
			return true
		}
		end := p.bindings.EndFlow(n.ID())
		if !end.IsPresent() {
			return true
		}
		label := n.Kind().String()
		if name := ast.DeclarationName(n); name.IsPresent() {
			label += " " + p.store.Text(name)
		}
		visit(tree.AddBranch(label), end, roaring.NewBitmap())
		return true
	})
	return tree.String(), nil
}

// DumpSymbols renders the symbols declared in the file called name: its own
// symbol table (or, for a script, the globals it declares) and the locals of
// every nested container
func (p *Program) DumpSymbols(name string) (string, error) {
	root, err := p.fileNamed(name)
	if err != nil {
		return "", err
	}
	tree := treeprint.New().AddBranch(name)
	seen := roaring.NewBitmap()

	var addSymbol func(parent treeprint.Tree, id binder.SymbolID)
	addSymbol = func(parent treeprint.Tree, id binder.SymbolID) {
		sym := p.bindings.Symbol(id)
		if sym == nil {
			return
		}
		if seen.Contains(uint32(id)) {
			parent.AddNode(fmt.Sprintf("^%s", sym))
			return
		}
		seen.Add(uint32(id))
		branch := parent.AddBranch(sym.String())
		for _, t := range []struct {
			label string
			table *binder.SymbolTable
		}{{"members", sym.Members}, {"exports", sym.Exports}} {
			if t.table == nil || t.table.Len() == 0 {
				continue
			}
			sub := branch.AddBranch(t.label)
			for _, member := range t.table.All() {
				addSymbol(sub, member)
			}
		}
	}
	addTable := func(label string, table *binder.SymbolTable, keep func(binder.SymbolID) bool) {
		if table == nil || table.Len() == 0 {
			return
		}
		branch := tree.AddBranch(label)
		for _, id := range table.All() {
			if keep == nil || keep(id) {
				addSymbol(branch, id)
			}
		}
	}

	if module := p.bindings.ModuleSymbol(root); module.IsPresent() {
		addTable("exports", p.bindings.Exports(module), nil)
	}
	declaredHere := func(id binder.SymbolID) bool {
		for _, d := range p.bindings.Symbol(id).Declarations {
			if file := p.store.SourceFileOf(d); file != nil && file.ID() == root {
				return true
			}
		}
		return false
	}
	if p.bindings.Locals(root) == nil {
		addTable("globals", p.bindings.Globals, declaredHere)
	}
	p.store.Walk(root, func(n *ast.Node) bool {
		label := "locals of " + n.Kind().String()
		if name := ast.DeclarationName(n); name.IsPresent() {
			label += " " + p.store.Text(name)
		}
		addTable(label, p.bindings.Locals(n.ID()), nil)
		return true
	})
	return tree.String(), nil
}
