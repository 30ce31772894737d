package parser

import (
	"go/token"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/internal/log"
)

var logger = log.Section("parser")

// ParseFile parses src into a SourceFile node created through factory. The file
// is registered in fset so that diagnostics positions can be resolved later.
// A tree is always returned: syntax errors are reported in the returned bag and
// the parser recovers by skipping tokens or inserting missing nodes.
func ParseFile(fset *token.FileSet, factory *ast.Factory, name, src string) (ast.NodeID, *diag.Bag) {
	file := fset.AddFile(name, -1, len(src))
	file.SetLinesForContent([]byte(src))

	p := newParser(factory, file, name, src)
	root := p.parseSourceFile()
	bag := diag.NewBag().Add(p.diags...)
	logger.Debug("parsed file", "file", name, "nodes", factory.Store().Len(), "diagnostics", bag)
	return root, bag
}

// Parse parses a single file into a fresh store
func Parse(name, src string) (*ast.Store, ast.NodeID, *diag.Bag) {
	store := ast.NewStore()
	root, bag := ParseFile(token.NewFileSet(), ast.NewFactory(store), name, src)
	return store, root, bag
}
