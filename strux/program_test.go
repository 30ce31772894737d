package strux_test

import (
	"context"
	"testing"
	"time"

	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/internal/config"
	"github.com/cottand/strux/strux"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgram(t *testing.T, files ...strux.File) *strux.Program {
	t.Helper()
	p, err := strux.NewProgram(files, strux.FilesResolver(files), config.Default())
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		files []strux.File
		want  map[string][]diag.Code
	}{
		{
			name:  "clean",
			files: []strux.File{{Name: "a.ts", Source: `const a: number = 1;`}},
			want:  map[string][]diag.Code{"a.ts": nil},
		},
		{
			name: "globals merge across scripts",
			files: []strux.File{
				{Name: "a.ts", Source: `interface Box { a: number; }`},
				{Name: "b.ts", Source: `interface Box { b: string; } const box: Box = { a: 1, b: "" };`},
			},
			want: map[string][]diag.Code{"a.ts": nil, "b.ts": nil},
		},
		{
			name: "imports",
			files: []strux.File{
				{Name: "lib.ts", Source: `export function twice(n: number): number { return n * 2; }`},
				{Name: "main.ts", Source: `import { twice } from "./lib"; const s: string = twice(1);`},
			},
			want: map[string][]diag.Code{"lib.ts": nil, "main.ts": {diag.NotAssignable}},
		},
		{
			name: "unresolved import",
			files: []strux.File{
				{Name: "main.ts", Source: `import { x } from "./missing";`},
			},
			want: map[string][]diag.Code{"main.ts": {diag.CannotFindModule}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProgram(t, tt.files...)
			_, err := p.Check(context.Background())
			require.NoError(t, err)
			assert.Empty(t, p.Failures)
			for file, want := range tt.want {
				var got []diag.Code
				for _, d := range p.DiagnosticsFor(file) {
					got = append(got, d.Code)
				}
				assert.ElementsMatch(t, want, got, file)
			}
		})
	}
}

func TestCheckTwice(t *testing.T) {
	p := newProgram(t, strux.File{Name: "a.ts", Source: `let x: number = "a";`})
	first, err := p.Check(context.Background())
	require.NoError(t, err)
	second, err := p.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Codes(), second.Codes())
	assert.Equal(t, 1, second.Len())
}

func TestCheckCancelled(t *testing.T) {
	tests := []struct {
		name  string
		ctx   func() (context.Context, context.CancelFunc)
		cause error
	}{
		{
			name: "cancelled",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, cancel
			},
			cause: context.Canceled,
		},
		{
			name: "deadline",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
			},
			cause: context.DeadlineExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProgram(t, strux.File{Name: "a.ts", Source: `let x = 1; let y = 2;`})
			ctx, cancel := tt.ctx()
			defer cancel()
			_, err := p.Check(ctx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, strux.ErrCancelled))
			assert.ErrorIs(t, err, tt.cause)

			_, err = p.Check(context.Background())
			assert.ErrorIs(t, err, strux.ErrClosed)
		})
	}
}

func TestClosedKeepsDiagnostics(t *testing.T) {
	p := newProgram(t, strux.File{Name: "a.ts", Source: `let x: number = "a";`})
	_, err := p.Check(context.Background())
	require.NoError(t, err)
	p.Close()
	assert.Equal(t, []diag.Code{diag.NotAssignable}, p.Diagnostics().Codes())
	_, err = p.DisplayTypes("a.ts")
	assert.ErrorIs(t, err, strux.ErrClosed)
}

func TestSyntaxErrorsAreReported(t *testing.T) {
	p := newProgram(t, strux.File{Name: "a.ts", Source: `let x: number = "a"; let = ;`})
	bag, err := p.Check(context.Background())
	require.NoError(t, err)
	assert.Contains(t, bag.Codes(), diag.NotAssignable)
	assert.Greater(t, bag.Len(), 1)
}

func TestDuplicateFile(t *testing.T) {
	f := strux.File{Name: "a.ts", Source: ``}
	_, err := strux.NewProgram([]strux.File{f, f}, nil, config.Default())
	assert.Error(t, err)
}

func TestInvalidOptions(t *testing.T) {
	opts := config.Default()
	opts.MaxRelationDepth = 0
	_, err := strux.NewProgram(nil, nil, opts)
	assert.Error(t, err)
}

func TestDisplayTypes(t *testing.T) {
	p := newProgram(t, strux.File{Name: "a.ts", Source: `
const n = 1;
let s = "a";
function f(a: number): string { return ""; }
function g(a: string): string;
function g(a: any): any { return a; }
type Pair = { a: number; b: string };
`})
	out, err := p.DisplayTypes("a.ts")
	require.NoError(t, err)
	assert.Equal(t, `n: 1
s: string
f: (a: number) => string
g: (a: string) => string
Pair: { a: number; b: string; }
`, out)
}

func TestSessionsAreIndependent(t *testing.T) {
	a := newProgram(t, strux.File{Name: "a.ts", Source: `let x: number = "a";`})
	b := newProgram(t, strux.File{Name: "a.ts", Source: `let x: number = 1;`})
	assert.NotEqual(t, a.ID(), b.ID())

	_, err := a.Check(context.Background())
	require.NoError(t, err)
	_, err = b.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, a.Diagnostics().Len())
	assert.Zero(t, b.Diagnostics().Len())

	families, err := a.Gatherer().Gather()
	require.NoError(t, err)
	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "strux_session_files_total")
	assert.Contains(t, names, "strux_types_created_total")
}
