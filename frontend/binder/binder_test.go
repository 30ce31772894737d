package binder_test

import (
	"fmt"
	"go/token"
	"testing"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/flow"
	"github.com/cottand/strux/internal/config"
	"github.com/cottand/strux/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindFiles(t *testing.T, sources ...string) (*binder.Bindings, []ast.NodeID) {
	t.Helper()
	store := ast.NewStore()
	fset := token.NewFileSet()
	factory := ast.NewFactory(store)
	var roots []ast.NodeID
	for i, src := range sources {
		root, bag := parser.ParseFile(fset, factory, fmt.Sprintf("file%d.ts", i), src)
		for _, d := range bag.Sorted() {
			t.Fatalf("unexpected syntax error: %s", diag.FormatWithCode(d))
		}
		roots = append(roots, root)
	}
	b := binder.NewBindings(store)
	for _, root := range roots {
		binder.Bind(b, root, config.Default())
	}
	return b, roots
}

func statements(b *binder.Bindings, file ast.NodeID) []ast.NodeID {
	return ast.As[ast.SourceFile](b.Store().Get(file)).Statements
}

// firstDeclaration returns the first variable declaration of a variable statement
func firstDeclaration(b *binder.Bindings, stmt ast.NodeID) ast.NodeID {
	store := b.Store()
	list := ast.As[ast.VariableStatement](store.Get(stmt)).DeclarationList
	return ast.As[ast.VariableDeclarationList](store.Get(list)).Declarations[0]
}

// findIdentifier returns the last identifier spelled text below root
func findIdentifier(store *ast.Store, root ast.NodeID, text string) ast.NodeID {
	found := ast.NoNode
	store.Walk(root, func(n *ast.Node) bool {
		if n.Kind() == ast.KindIdentifier && store.Text(n.ID()) == text {
			found = n.ID()
		}
		return true
	})
	return found
}

func TestDeclarationMerging(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		symbol  string
		meaning binder.SymbolFlags
		members func(*binder.Bindings, binder.SymbolID) *binder.SymbolTable
		want    []string
	}{
		{
			name:    "namespaces",
			src:     `namespace N { export const a = 1 } namespace N { export const b = 2 }`,
			symbol:  "N",
			meaning: binder.Value,
			members: (*binder.Bindings).Exports,
			want:    []string{"a", "b"},
		},
		{
			name:    "interfaces",
			src:     `interface A { x: number } interface A { y: string }`,
			symbol:  "A",
			meaning: binder.Type,
			members: (*binder.Bindings).Members,
			want:    []string{"x", "y"},
		},
		{
			name:    "function and namespace",
			src:     `function f() {} namespace f { export const tag = "f" }`,
			symbol:  "f",
			meaning: binder.Value,
			members: (*binder.Bindings).Exports,
			want:    []string{"tag"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, files := bindFiles(t, tt.src)
			assert.Zero(t, b.Diagnostics().Len())

			stmts := statements(b, files[0])
			require.Len(t, stmts, 2)
			first, second := b.SymbolOf(stmts[0]), b.SymbolOf(stmts[1])
			require.True(t, first.IsPresent())
			assert.Equal(t, first, second)

			sym := b.Symbol(first)
			assert.Equal(t, tt.symbol, sym.DisplayName())
			assert.Equal(t, stmts, sym.Declarations)
			assert.Equal(t, first, b.ResolveName(files[0], tt.symbol, tt.meaning))
			assert.Equal(t, tt.want, tt.members(b, first).Names())
		})
	}
}

func TestConflictingDeclarations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []diag.Code
	}{
		{
			name: "block scoped",
			src:  `let x = 1; let x = 2;`,
			want: []diag.Code{diag.CannotRedeclareBlockScoped, diag.CannotRedeclareBlockScoped},
		},
		{
			name: "function and var",
			src:  `var x = 1; function x() {}`,
			want: []diag.Code{diag.DuplicateIdentifier, diag.DuplicateIdentifier},
		},
		{
			name: "class and type alias",
			src:  `class x {} type x = number;`,
			want: []diag.Code{diag.DuplicateIdentifier, diag.DuplicateIdentifier},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, files := bindFiles(t, tt.src)
			assert.Equal(t, tt.want, b.Diagnostics().Codes())

			// both declarations keep a symbol of their own
			stmts := statements(b, files[0])
			var ids []binder.SymbolID
			for _, stmt := range stmts {
				decl := stmt
				if b.Store().Kind(stmt) == ast.KindVariableStatement {
					decl = firstDeclaration(b, stmt)
				}
				id := b.SymbolOf(decl)
				require.True(t, id.IsPresent())
				assert.Equal(t, "x", b.Symbol(id).DisplayName())
				ids = append(ids, id)
			}
			assert.NotEqual(t, ids[0], ids[1])
		})
	}
}

func TestDuplicateFunctionImplementation(t *testing.T) {
	b, _ := bindFiles(t, `function f(): void {} function f(): void {}`)
	assert.Equal(t, []diag.Code{diag.DuplicateFunctionImpl}, b.Diagnostics().Codes())

	b, _ = bindFiles(t, `function g(a: string): void; function g(a: number): void; function g(a: any) {}`)
	assert.Zero(t, b.Diagnostics().Len())
}

func TestGlobalMergeAcrossFiles(t *testing.T) {
	b, files := bindFiles(t,
		`interface G { a: number }`,
		`interface G { b: string }`,
	)
	assert.Zero(t, b.Diagnostics().Len())

	fromFirst := b.ResolveName(files[0], "G", binder.Type)
	fromSecond := b.ResolveName(files[1], "G", binder.Type)
	require.True(t, fromFirst.IsPresent())
	assert.Equal(t, fromFirst, fromSecond)

	g := b.Symbol(fromFirst)
	assert.Len(t, g.Declarations, 2)
	assert.Equal(t, []string{"a", "b"}, b.Members(fromFirst).Names())
}

func TestModulesDoNotLeakIntoGlobals(t *testing.T) {
	b, files := bindFiles(t,
		`export function f() {} const hidden = 1;`,
		`function g() {}`,
	)
	mod := b.ModuleSymbol(files[0])
	require.True(t, mod.IsPresent())
	assert.Equal(t, []string{"f"}, b.Exports(mod).Names())

	_, ok := b.Globals.Get("f")
	assert.False(t, ok)
	_, ok = b.Globals.Get("hidden")
	assert.False(t, ok)
	_, ok = b.Globals.Get("g")
	assert.True(t, ok)
	assert.False(t, b.ModuleSymbol(files[1]).IsPresent())
}

func TestResolveName(t *testing.T) {
	b, files := bindFiles(t, `
function outer(a: number) {
	{ let hidden = 1; }
	function inner(b: number) { return a + b }
	return inner(a)
}
class Box<T> { value: T }
type Pair<K> = [K, K];
`)
	require.Zero(t, b.Diagnostics().Len())
	store := b.Store()
	file := files[0]

	outer := b.ResolveName(file, "outer", binder.Value)
	require.True(t, outer.IsPresent())
	outerDecl := b.Symbol(outer).FirstDeclaration()

	inner, ok := b.Locals(outerDecl).Get("inner")
	require.True(t, ok)
	innerDecl := b.Symbol(inner).FirstDeclaration()

	a := b.ResolveName(innerDecl, "a", binder.Value)
	require.True(t, a.IsPresent())
	assert.Equal(t, binder.FunctionScopedVariable, b.Symbol(a).Flags())
	assert.Equal(t, ast.KindParameter, store.Kind(b.Symbol(a).FirstDeclaration()))

	assert.False(t, b.ResolveName(innerDecl, "hidden", binder.Value).IsPresent())
	assert.False(t, b.ResolveName(file, "a", binder.Value).IsPresent())

	// a type parameter is visible inside its class but only in the type meaning
	value := findIdentifier(store, file, "value")
	require.True(t, value.IsPresent())
	assert.True(t, b.ResolveName(value, "T", binder.Type).IsPresent())
	assert.False(t, b.ResolveName(value, "T", binder.Value).IsPresent())
	assert.False(t, b.ResolveName(file, "T", binder.Type).IsPresent())

	pair := b.ResolveName(file, "Pair", binder.Type)
	require.True(t, pair.IsPresent())
	k := findIdentifier(store, file, "K")
	assert.True(t, b.ResolveName(k, "K", binder.Type).IsPresent())
}

func TestEndReachability(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		reachable bool
	}{
		{"falls off", `function f(x: boolean) { if (x) { return 1 } }`, true},
		{"returns on every path", `function f(x: boolean) { if (x) { return 1 } else { return 2 } }`, false},
		{"returns after if", `function f(x: boolean) { if (x) { return 1 } return 2 }`, false},
		{"infinite loop", `function f() { while (true) { } }`, false},
		{"loop with break", `function f() { while (true) { break } }`, true},
		{"throws", `function f() { throw "no" }`, false},
		{"switch with default", `function f(x: number) { switch (x) { case 1: return 1; default: return 2 } }`, false},
		{"switch without default", `function f(x: number) { switch (x) { case 1: return 1 } }`, true},
		{"try finally", `function f() { try { return 1 } finally { } }`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, files := bindFiles(t, tt.src)
			fn := b.ResolveName(files[0], "f", binder.Value)
			require.True(t, fn.IsPresent())
			assert.Equal(t, tt.reachable, b.IsEndReachable(b.Symbol(fn).FirstDeclaration()))
		})
	}
}

func TestUnreachableCodeIsReportedOnce(t *testing.T) {
	b, _ := bindFiles(t, `function f() { return; let a = 1; let b = 2; }`)
	assert.Equal(t, []diag.Code{diag.UnreachableCode}, b.Diagnostics().Codes())

	// hoisted declarations do not count as code
	b, _ = bindFiles(t, `function f() { return; function g() {} var v; }`)
	assert.Zero(t, b.Diagnostics().Len())
}

func TestJumpTargets(t *testing.T) {
	b, _ := bindFiles(t, `function f() { break; }`)
	assert.Equal(t, []diag.Code{diag.JumpTargetNotFound}, b.Diagnostics().Codes())

	b, _ = bindFiles(t, `function f() { outer: while (true) { while (true) { continue outer; } } }`)
	assert.Zero(t, b.Diagnostics().Len())
}

func TestLabelsAreSealed(t *testing.T) {
	b, _ := bindFiles(t, `
function f(xs: number[]) {
	let n = 0;
	for (let i = 0; i < 10; i++) {
		if (i > 5) { continue }
		n = n + i;
	}
	do { n-- } while (n > 0)
	return n;
}`)
	g := b.Graph()
	labels := 0
	for id := flow.ID(1); int(id) <= g.Len(); id++ {
		if g.Flags(id).IsLabel() {
			labels++
			assert.True(t, g.IsSealed(id), "label %s", g.Get(id))
		}
	}
	assert.NotZero(t, labels)
}

func TestNarrowingConditions(t *testing.T) {
	b, files := bindFiles(t, `
function f(x: string | number) {
	if (typeof x === "string") {
		x;
	}
}`)
	store := b.Store()
	ref := findIdentifier(store, files[0], "x")
	require.True(t, ref.IsPresent())
	require.Equal(t, ast.KindExpressionStatement, store.Kind(store.Parent(ref)))

	at := b.FlowAt(ref)
	require.True(t, at.IsPresent())
	node := b.Graph().Get(at)
	require.True(t, node.Flags().IsCondition(), "got %s", node)
	assert.True(t, node.Flags().IsTrueCondition())
	assert.Equal(t, ast.KindBinaryExpression, store.Kind(node.Syntax()))
}

func TestAssignmentsCreateFlowNodes(t *testing.T) {
	b, files := bindFiles(t, `
function f() {
	let x: string | number = 1;
	x = "s";
	x;
}`)
	store := b.Store()
	ref := findIdentifier(store, files[0], "x")
	at := b.FlowAt(ref)
	require.True(t, at.IsPresent())
	node := b.Graph().Get(at)
	require.True(t, node.Flags().IsAssignment(), "got %s", node)
	assert.Equal(t, ast.KindIdentifier, store.Kind(node.Syntax()))
}
