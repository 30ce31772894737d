package strux_test

import (
	"testing"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/internal/config"
	"github.com/cottand/strux/strux"
	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclarations(t *testing.T) {
	p := newProgram(t, strux.File{Name: "a.ts", Source: `
const n = 1, m = "m";
function f(a: number): string { return ""; }
function g(a: string): string;
function g(a: any): any { return a; }
type Pair = { a: number; b: string };
n;
`})
	got, err := p.Declarations("a.ts")
	require.NoError(t, err)
	want := []strux.Declaration{
		{Name: "n", Kind: ast.KindVariableDeclaration, Type: "1"},
		{Name: "m", Kind: ast.KindVariableDeclaration, Type: `"m"`},
		{Name: "f", Kind: ast.KindFunctionDeclaration, Type: "(a: number) => string"},
		{Name: "g", Kind: ast.KindFunctionDeclaration, Type: "(a: string) => string"},
		{Name: "Pair", Kind: ast.KindTypeAliasDeclaration, Type: "{ a: number; b: string; }"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s\n%s", diff, spew.Sdump(got))
	}
}

func TestDeclarationsUnknownFile(t *testing.T) {
	p := newProgram(t, strux.File{Name: "a.ts", Source: `const n = 1;`})
	_, err := p.Declarations("b.ts")
	assert.ErrorContains(t, err, `no file "b.ts"`)
}

func TestDeclarationsReportTruncation(t *testing.T) {
	opts := config.Default()
	opts.MaxTypeNodeLength = 30
	files := []strux.File{{Name: "a.ts", Source: `
type Wide = { alpha: number; bravo: number; charlie: number; delta: number; echo: number; foxtrot: number };
`}}
	p, err := strux.NewProgram(files, nil, opts)
	require.NoError(t, err)
	t.Cleanup(p.Close)

	decls, err := p.Declarations("a.ts")
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.True(t, decls[0].Truncated)

	got := p.DiagnosticsFor("a.ts")
	require.Len(t, got, 1, spew.Sdump(got))
	assert.Equal(t, diag.SerializationTruncated, got[0].Code)
	assert.Contains(t, diag.Format(p.FileSet(), got[0]), "a.ts:2:6:")

	p.Close()
	assert.Len(t, p.DiagnosticsFor("a.ts"), 1, "kept after close")
}
