package parser_test

import (
	"testing"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParse(t *testing.T, input string) (*ast.Store, *ast.SourceFile) {
	t.Helper()
	store, root, bag := parser.Parse("test.ts", input)
	for _, d := range bag.Sorted() {
		t.Errorf("unexpected diagnostic: %s", diag.FormatWithCode(d))
	}
	file := ast.As[ast.SourceFile](store.Get(root))
	require.NotNil(t, file)
	return store, file
}

func TestNoPanics(t *testing.T) {
	files := map[string]string{
		"empty program":        ``,
		"lone keyword":         `function`,
		"unclosed block":       `if (x) {`,
		"unclosed string":      `let s = "abc`,
		"unclosed template":    "let s = `abc${",
		"garbage":              `)))} # @@ let`,
		"dangling operator":    `let x = 1 +`,
		"unterminated comment": `/* never closed`,
		"half generic":         `let x: Array<`,
		"half arrow":           `let f = (a, b) =>`,
	}

	for name, file := range files {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				store, root, _ := parser.Parse("test.ts", file)
				assert.Equal(t, ast.KindSourceFile, store.Kind(root))
			})
		})
	}
}

func TestSyntaxErrorsAreReported(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"missing paren", `if (x { }`, diag.TokenExpected},
		{"unterminated string", `let s = "abc`, diag.UnterminatedStringLiteral},
		{"expression expected", `let x = ;`, diag.ExpressionExpected},
		{"type expected", `let x: = 1;`, diag.TypeExpected},
		{"invalid character", `let x = 1 # 2;`, diag.InvalidCharacter},
		{"rest not last", `function f(...a: number[], b: string) {}`, diag.RestParameterMustBeLast},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, bag := parser.Parse("test.ts", test.src)
			assert.Contains(t, bag.Codes(), test.code)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"variable", `let x: number = 1;`, `let x: number = 1;`},
		{"const union", `const x: string | undefined = "a"`, `const x: string | undefined = "a";`},
		{"function", `function f(x) { if (typeof x === "string") { return x.length } return 0 }`,
			"function f(x) {\n    if (typeof x === \"string\") {\n        return x.length;\n    }\n    return 0;\n}"},
		{"arrow", `const f = (a: number, b?: string) => a`, `const f = (a: number, b?: string) => a;`},
		{"single param arrow", `let g = x => x + 1;`, `let g = (x) => x + 1;`},
		{"generic call", `f<number>(1, 2);`, `f<number>(1, 2);`},
		{"comparison is not a generic call", `a < b;`, `a < b;`},
		{"greater equals", `a >= b;`, `a >= b;`},
		{"interface", `interface A<T> extends B { a: T; b?(x: number): void; readonly [k: string]: any }`,
			`interface A<T> extends B { a: T; b?(x: number): void; readonly [k: string]: any; }`},
		{"type alias conditional", `type F<T> = T extends string ? "s" : never`, `type F<T> = T extends string ? "s" : never;`},
		{"mapped", `type M<T> = { readonly [K in keyof T]?: T[K] }`, `type M<T> = { readonly [K in keyof T]?: T[K]; };`},
		{"function type", `let f: (a: number) => string[];`, `let f: (a: number) => string[];`},
		{"predicate", `declare function isS(x: unknown): x is string;`, `declare function isS(x: unknown): x is string;`},
		{"asserts", `declare function ok(x: unknown): asserts x;`, `declare function ok(x: unknown): asserts x;`},
		{"template type", "type T = `a${string}b`;", "type T = `a${string}b`;"},
		{"enum", `enum E { A, B = 2 }`, `enum E { A, B = 2 }`},
		{"import", `import { a, b as c } from "m";`, `import { a, b as c } from "m";`},
		{"non null and optional chain", `x!.y?.z;`, `x!.y?.z;`},
		{"new", `new Map<string, number>();`, `new Map<string, number>();`},
		{"as", `x as number;`, `x as number;`},
		{"for of", `for (const a of xs) { }`, `for (const a of xs) {}`},
		{"for in", `for (let k in o) { }`, `for (let k in o) {}`},
		{"object literal", `let o = { a: 1, b, m() { } };`, `let o = { a: 1, b, m() {} };`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store, file := testParse(t, test.src)
			require.Len(t, file.Statements, 1)
			assert.Equal(t, test.want, ast.Print(store, file.Statements[0]))
		})
	}
}

func TestNamespaceDottedName(t *testing.T) {
	store, file := testParse(t, `namespace A.B { export const x = 1 }`)
	outer := ast.As[ast.ModuleDeclaration](store.Get(file.Statements[0]))
	require.NotNil(t, outer)
	assert.Equal(t, "A", store.Text(outer.Name))
	inner := store.Get(outer.Body)
	assert.Equal(t, ast.KindModuleDeclaration, inner.Kind())
	assert.True(t, inner.Flags().IsExported())
}

func TestVariableFlags(t *testing.T) {
	store, file := testParse(t, "let a = 1\nconst b = 2\nvar c = 3")
	require.Len(t, file.Statements, 3)
	flags := func(i int) ast.NodeFlags {
		st := ast.As[ast.VariableStatement](store.Get(file.Statements[i]))
		return store.Get(st.DeclarationList).Flags()
	}
	assert.True(t, flags(0).IsLet())
	assert.True(t, flags(1).IsConst())
	assert.False(t, flags(2).IsBlockScoped())
}

func TestDeclareIsAmbient(t *testing.T) {
	store, file := testParse(t, `declare namespace N { function f(): void; let x: number }`)
	ns := ast.As[ast.ModuleDeclaration](store.Get(file.Statements[0]))
	body := ast.As[ast.Block](store.Get(ns.Body))
	for _, st := range body.Statements {
		assert.True(t, store.Get(st).Flags().IsAmbient(), store.Get(st).Kind().String())
	}
}

func TestParentsAreSet(t *testing.T) {
	store, file := testParse(t, `function f(a: number) { return a * 2 }`)
	fn := store.Get(file.Statements[0])
	store.Walk(fn.ID(), func(n *ast.Node) bool {
		if n.ID() != fn.ID() {
			assert.NotEqual(t, ast.NoNode, n.Parent(), n.String())
		}
		return true
	})
}

func TestTemplateExpressionIsConcatenation(t *testing.T) {
	store, file := testParse(t, "`a${x}b`;")
	stmt := ast.As[ast.ExpressionStatement](store.Get(file.Statements[0]))
	assert.Equal(t, `"a" + x + "b"`, ast.Print(store, stmt.Expression))
}
