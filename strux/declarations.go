package strux

import (
	"strings"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/nodebuilder"
	"github.com/pkg/errors"
)

// Declaration is a top-level declaration of a file with its printed type.
// Types print the type a declaration declares, values their value type.
type Declaration struct {
	Name      string
	Kind      ast.Kind
	Type      string
	Truncated bool
}

// Declarations lists the top-level declarations of the file called name in
// source order
func (p *Program) Declarations(name string) ([]Declaration, error) {
	root, ok := p.byName[name]
	if !ok {
		return nil, errors.Errorf("no file %q in program", name)
	}
	c, err := p.typeChecker()
	if err != nil {
		return nil, err
	}
	var out []Declaration
	seen := map[binder.SymbolID]bool{}
	add := func(decl ast.NodeID) {
		n := p.store.Get(decl)
		nameNode := ast.DeclarationName(n)
		if !nameNode.IsPresent() {
			return
		}
		// overloads and merged declarations list once
		sym := p.bindings.Merged(p.bindings.SymbolOf(decl))
		if sym.IsPresent() && seen[sym] {
			return
		}
		seen[sym] = true
		res := p.serialize(c, c.TypeOf(decl), root, nameNode, nodebuilder.AllowStructuralFallback)
		out = append(out, Declaration{
			Name:      p.store.Text(nameNode),
			Kind:      n.Kind(),
			Type:      ast.Print(c.Builder().Output(), res.Node),
			Truncated: res.Truncated,
		})
	}
	for _, stmt := range ast.As[ast.SourceFile](p.store.Get(root)).Statements {
		n := p.store.Get(stmt)
		switch n.Kind() {
		case ast.KindVariableStatement:
			list := ast.As[ast.VariableStatement](n).DeclarationList
			for _, d := range ast.As[ast.VariableDeclarationList](p.store.Get(list)).Declarations {
				add(d)
			}
		case ast.KindFunctionDeclaration, ast.KindClassDeclaration, ast.KindInterfaceDeclaration,
			ast.KindTypeAliasDeclaration, ast.KindEnumDeclaration, ast.KindModuleDeclaration:
			add(stmt)
		}
	}
	return out, nil
}

// DisplayTypes prints the declarations of a file as `name: type` lines
func (p *Program) DisplayTypes(name string) (string, error) {
	decls, err := p.Declarations(name)
	if err != nil {
		return "", err
	}
	sb := &strings.Builder{}
	for _, d := range decls {
		sb.WriteString(d.Name)
		sb.WriteString(": ")
		sb.WriteString(d.Type)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
