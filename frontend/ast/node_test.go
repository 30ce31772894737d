package ast_test

import (
	"slices"
	"testing"

	"github.com/cottand/strux/frontend/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCall builds `f(a, "s")` as an expression statement in a source file
func buildCall(f *ast.Factory) (file, call, callee, arg0, arg1 ast.NodeID) {
	callee = f.NewIdentifier(ast.Range{}, "f")
	arg0 = f.NewIdentifier(ast.Range{}, "a")
	arg1 = f.NewStringLiteral(ast.Range{}, "s")
	call = f.New(ast.KindCallExpression, ast.Range{}, ast.NoFlags, &ast.CallExpression{
		Expression: callee,
		Arguments:  []ast.NodeID{arg0, arg1},
	})
	stmt := f.New(ast.KindExpressionStatement, ast.Range{}, ast.NoFlags, &ast.ExpressionStatement{Expression: call})
	file = f.New(ast.KindSourceFile, ast.Range{}, ast.NoFlags, &ast.SourceFile{FileName: "a.ts", Statements: []ast.NodeID{stmt}})
	return
}

func TestStoreIdsAndParents(t *testing.T) {
	store := ast.NewStore()
	f := ast.NewFactory(store)
	file, call, callee, arg0, arg1 := buildCall(f)

	t.Run("ids are unique and increasing", func(t *testing.T) {
		ids := []ast.NodeID{callee, arg0, arg1, call, file}
		for i := 1; i < len(ids); i++ {
			assert.Less(t, ids[i-1], ids[i])
		}
		assert.Equal(t, 6, store.Len())
	})

	t.Run("children record their parent", func(t *testing.T) {
		assert.Equal(t, call, store.Parent(callee))
		assert.Equal(t, call, store.Parent(arg1))
		assert.Equal(t, ast.NoNode, store.Parent(file))
	})

	t.Run("children are ordered by source position", func(t *testing.T) {
		children := slices.Collect(store.Children(call))
		assert.Equal(t, []ast.NodeID{callee, arg0, arg1}, children)
	})

	t.Run("source file of a leaf", func(t *testing.T) {
		sf := store.SourceFileOf(arg0)
		require.NotNil(t, sf)
		assert.Equal(t, file, sf.ID())
		assert.Equal(t, "a.ts", ast.As[ast.SourceFile](sf).FileName)
	})

	t.Run("walk is pre-order", func(t *testing.T) {
		var kinds []ast.Kind
		store.Walk(file, func(n *ast.Node) bool {
			kinds = append(kinds, n.Kind())
			return true
		})
		assert.Equal(t, []ast.Kind{
			ast.KindSourceFile, ast.KindExpressionStatement, ast.KindCallExpression,
			ast.KindIdentifier, ast.KindIdentifier, ast.KindStringLiteral,
		}, kinds)
	})
}

func TestFactoryUpdateKeepsOriginal(t *testing.T) {
	store := ast.NewStore()
	f := ast.NewFactory(store)
	_, call, callee, _, _ := buildCall(f)

	extra := f.NewNumericLiteral(ast.Range{}, 1)
	updated := f.Update(call, ast.NoFlags, &ast.CallExpression{
		Expression: callee,
		Arguments:  []ast.NodeID{extra},
	})

	assert.NotEqual(t, call, updated)
	assert.Equal(t, call, store.Get(updated).Original())
	// the callee keeps its first parent
	assert.Equal(t, call, store.Parent(callee))
	assert.Equal(t, updated, store.Parent(extra))
	assert.Len(t, ast.As[ast.CallExpression](store.Get(call)).Arguments, 2)
}

func TestFactoryRejectsMismatchedPayload(t *testing.T) {
	f := ast.NewFactory(ast.NewStore())
	assert.Panics(t, func() {
		f.New(ast.KindIfStatement, ast.Range{}, ast.NoFlags, &ast.Identifier{Text: "x"})
	})
}

func TestSynthesizedFactory(t *testing.T) {
	f := ast.NewSynthesizedFactory(ast.NewStore())
	id := f.NewKeyword(ast.Range{}, ast.KindStringKeyword)
	assert.True(t, f.Store().Get(id).Flags().IsSynthesized())
}

func TestTransformFlagsPropagate(t *testing.T) {
	f := ast.NewFactory(ast.NewStore())
	body := f.New(ast.KindBlock, ast.Range{}, ast.NoFlags, &ast.Block{})
	arrow := f.New(ast.KindArrowFunction, ast.Range{}, ast.NoFlags, &ast.SignatureDeclaration{Body: body})
	stmt := f.New(ast.KindExpressionStatement, ast.Range{}, ast.NoFlags, &ast.ExpressionStatement{Expression: arrow})

	flags := f.Store().Get(stmt).TransformFlags()
	assert.True(t, flags.HasArrowFunction())
	assert.False(t, flags.HasClass())
}

func TestNodeFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags ast.NodeFlags
		check func(ast.NodeFlags) bool
		want  bool
	}{
		{"let is block scoped", ast.FlagLet, ast.NodeFlags.IsBlockScoped, true},
		{"const is block scoped", ast.FlagConst, ast.NodeFlags.IsBlockScoped, true},
		{"export is not block scoped", ast.FlagExport, ast.NodeFlags.IsBlockScoped, false},
		{"without clears", ast.FlagOptional.With(ast.FlagRest).Without(ast.FlagOptional), ast.NodeFlags.IsOptional, false},
		{"with sets", ast.NoFlags.With(ast.FlagReadonly), ast.NodeFlags.IsReadonly, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, test.check(test.flags))
		})
	}
}

func TestKeywords(t *testing.T) {
	for text, want := range map[string]ast.Kind{
		"instanceof": ast.KindInstanceOfKeyword,
		"typeof":     ast.KindTypeOfKeyword,
		"keyof":      ast.KindKeyOfKeyword,
		"string":     ast.KindStringKeyword,
		"readonly":   ast.KindReadonlyKeyword,
	} {
		got, ok := ast.KeywordKind(text)
		assert.True(t, ok, text)
		assert.Equal(t, want, got, text)
		assert.Equal(t, text, ast.TokenText(want))
	}
	_, ok := ast.KeywordKind("banana")
	assert.False(t, ok)
}

func TestEscapeName(t *testing.T) {
	assert.Equal(t, "x", ast.EscapeName("x"))
	assert.Equal(t, "___proto", ast.EscapeName("__proto"))
	assert.Equal(t, "__proto", ast.UnescapeName(ast.EscapeName("__proto")))
	assert.True(t, ast.IsInternalName(ast.CallName))
	assert.False(t, ast.IsInternalName(ast.EscapeName("__call")))
	// decomposed and precomposed é name the same symbol
	assert.Equal(t, ast.EscapeName("caf\u00e9"), ast.EscapeName("cafe\u0301"))
}

func TestFactoryRollback(t *testing.T) {
	f := ast.NewFactory(ast.NewStore())
	kept := f.NewIdentifier(ast.Range{}, "kept")
	mark := f.Mark()
	dropped := f.NewIdentifier(ast.Range{}, "dropped")
	f.Rollback(mark)

	assert.NotNil(t, f.Store().Get(kept))
	assert.Nil(t, f.Store().Get(dropped))
	assert.Equal(t, dropped, f.NewIdentifier(ast.Range{}, "again"))
}
