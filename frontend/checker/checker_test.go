package checker_test

import (
	"go/token"
	"testing"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/checker"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/types"
	"github.com/cottand/strux/internal/config"
	"github.com/cottand/strux/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checked struct {
	t    *testing.T
	c    *checker.Checker
	b    *binder.Bindings
	file ast.NodeID
}

func check(t *testing.T, src string, configure ...func(*config.Options)) *checked {
	t.Helper()
	opts := config.Default()
	for _, f := range configure {
		f(&opts)
	}
	store := ast.NewStore()
	fset := token.NewFileSet()
	factory := ast.NewFactory(store)
	b := binder.NewBindings(store)
	_, bag := checker.BindPrelude(fset, factory, b, opts)
	require.Zero(t, bag.Len(), "prelude does not parse")
	root, bag := parser.ParseFile(fset, factory, "main.ts", src)
	for _, d := range bag.Sorted() {
		t.Fatalf("unexpected syntax error: %s", diag.FormatWithCode(d))
	}
	binder.Bind(b, root, opts)
	c := checker.New(b, types.NewStore(opts), nil)
	c.CheckFile(root)
	return &checked{t: t, c: c, b: b, file: root}
}

func (k *checked) codes() []diag.Code {
	return append(k.b.Diagnostics().Codes(), k.c.Diagnostics().Codes()...)
}

// last finds the last identifier in the file spelled name
func (k *checked) last(name string) ast.NodeID {
	k.t.Helper()
	store := k.b.Store()
	found := ast.NoNode
	var pos token.Pos
	store.Walk(k.file, func(n *ast.Node) bool {
		if n.Kind() == ast.KindIdentifier && store.Text(n.ID()) == name && n.Pos() >= pos {
			found, pos = n.ID(), n.Pos()
		}
		return true
	})
	require.True(k.t, found.IsPresent(), "no identifier %q", name)
	return found
}

// typeOfLast prints the type of the last identifier spelled name
func (k *checked) typeOfLast(name string) string {
	return k.c.Store().TypeString(k.c.TypeOf(k.last(name)))
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []diag.Code
	}{
		{
			name: "clean program",
			src: `
interface Shape { area(): number; }
class Square implements Shape {
    side: number = 1;
    area(): number { return this.side * this.side; }
}
function total(shapes: Shape[]): number {
    let sum = 0;
    for (const s of shapes) {
        sum += s.area();
    }
    return sum;
}
const n: number = total([new Square()]);
`,
		},
		{name: "initializer not assignable", src: `let x: number = "a";`, want: []diag.Code{diag.NotAssignable}},
		{name: "assignment not assignable", src: `let x = 1; x = "a";`, want: []diag.Code{diag.NotAssignable}},
		{name: "unknown name", src: `y;`, want: []diag.Code{diag.CannotFindName}},
		{name: "unknown property", src: `const o = { a: 1 }; o.b;`, want: []diag.Code{diag.PropertyDoesNotExist}},
		{name: "assign to const", src: `const a = 1; a = 2;`, want: []diag.Code{diag.CannotAssignToConstant}},
		{name: "no return value", src: `function f(): number {}`, want: []diag.Code{diag.NotAllPathsReturnValue}},
		{
			name: "lacks ending return",
			src:  `function f(b: boolean): number { if (b) { return 1; } }`,
			want: []diag.Code{diag.LacksEndingReturn},
		},
		{name: "all paths return", src: `function f(b: boolean): number { if (b) { return 1; } else { return 2; } }`},
		{name: "return not assignable", src: `function f(): string { return 1; }`, want: []diag.Code{diag.NotAssignable}},
		{
			name: "possibly undefined",
			src:  `function f(x?: { a: number }) { return x.a; }`,
			want: []diag.Code{diag.ObjectPossiblyUndefined},
		},
		{name: "checked undefined", src: `function f(x?: { a: number }) { if (x) { return x.a; } return 0; }`},
		{name: "no overlap", src: `const r = 1 === "a";`, want: []diag.Code{diag.NoCommonOverlap}},
		{name: "arithmetic operand", src: `const r = "a" * 2;`, want: []diag.Code{diag.ArithmeticOperand}},
		{name: "not callable", src: `const a = 1; a();`, want: []diag.Code{diag.NotCallable}},
		{
			name: "discriminated union",
			src: `
type S = { kind: "a"; a: number } | { kind: "b"; b: string };
function f(s: S): number {
    if (s.kind === "a") {
        return s.a;
    }
    return s.b.length;
}
`,
		},
		{
			name: "missing interface member",
			src:  `interface I { a: number; } class C implements I { b = 1; }`,
			want: []diag.Code{diag.IncorrectlyImplements},
		},
		{
			name: "generic arity",
			src:  `interface Box<T> { value: T; } let b: Box;`,
			want: []diag.Code{diag.WrongTypeArgumentCount},
		},
		{name: "unreachable reported once", src: `function f() { return; let x = 1; }`, want: []diag.Code{diag.UnreachableCode}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := check(t, tt.src)
			assert.Equal(t, tt.want, k.codes())
		})
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		ident string
		want  string
	}{
		{name: "widened literal", src: `let n = 1; n;`, ident: "n", want: "number"},
		{name: "const literal", src: `const n = 1; n;`, ident: "n", want: "1"},
		{name: "array literal", src: `const xs = [1, 2]; xs;`, ident: "xs", want: "number[]"},
		{name: "object literal", src: `const o = { a: 1 }; o;`, ident: "o", want: "{ a: number; }"},
		{name: "declared type", src: `let s: string; s;`, ident: "s", want: "string"},
		{name: "function", src: `function f(a: number): string { return ""; }`, ident: "f", want: "(a: number) => string"},
		{name: "inferred return", src: `function f(a: number) { return a; } const r = f(1); r;`, ident: "r", want: "number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := check(t, tt.src)
			assert.Equal(t, tt.want, k.typeOfLast(tt.ident))
		})
	}
}

func TestCheckFileTwice(t *testing.T) {
	k := check(t, `let x: number = "a";`)
	k.c.CheckFile(k.file)
	assert.Equal(t, []diag.Code{diag.NotAssignable}, k.codes())
}

func TestStrictNullChecksOff(t *testing.T) {
	k := check(t, `function f(x?: { a: number }) { return x.a; } let n: number = null;`, func(o *config.Options) {
		o.StrictNullChecks = false
	})
	assert.Empty(t, k.codes())
}

func TestUntypedParameterNarrowedByTypeOf(t *testing.T) {
	k := check(t, `
function f(x) {
    if (typeof x === "string") {
        return x.length;
    }
    return 0;
}
const r = f("a");
r;
`)
	assert.Empty(t, k.codes())
	assert.Equal(t, "string", k.typeOfLast("x"))

	access := k.b.Store().Get(k.last("length")).ParentNode()
	require.NotNil(t, access)
	assert.Equal(t, ast.KindPropertyAccessExpression, access.Kind())
	assert.Equal(t, "number", k.c.Store().TypeString(k.c.TypeOf(access.ID())))

	assert.Equal(t, "number", k.typeOfLast("r"))
}
