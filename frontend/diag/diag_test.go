package diag_test

import (
	"go/token"
	"testing"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(start, end int) ast.Range {
	return ast.Range{PosStart: token.Pos(start), PosEnd: token.Pos(end)}
}

func TestBagOrder(t *testing.T) {
	bag := diag.NewBag()
	bag.Add(
		diag.New("b.ts", at(1, 2), diag.CannotFindName, "x"),
		diag.New("a.ts", at(10, 12), diag.NotAssignable, "string", "number"),
		diag.New("a.ts", at(3, 4), diag.CannotFindName, "y"),
		diag.New("a.ts", at(3, 4), diag.DuplicateIdentifier, "y"),
	)

	sorted := bag.Sorted()
	require.Len(t, sorted, 4)
	assert.Equal(t, []diag.Code{diag.DuplicateIdentifier, diag.CannotFindName, diag.NotAssignable, diag.CannotFindName}, bag.Codes())
	assert.Equal(t, "a.ts", sorted[0].File)
	assert.Equal(t, "b.ts", sorted[3].File)

	t.Run("for file", func(t *testing.T) {
		assert.Len(t, bag.ForFile("a.ts"), 3)
		assert.Len(t, bag.ForFile("b.ts"), 1)
		assert.Empty(t, bag.ForFile("c.ts"))
	})

	t.Run("identical diagnostics are kept once", func(t *testing.T) {
		bag.Add(diag.New("b.ts", at(1, 2), diag.CannotFindName, "x"))
		assert.Equal(t, 4, bag.Len())
	})

	t.Run("merge", func(t *testing.T) {
		other := diag.NewBag().Add(diag.New("c.ts", at(1, 1), diag.UnreachableCode))
		merged := bag.Merge(other)
		assert.Equal(t, 5, merged.Len())
		assert.True(t, merged.HasErrors())
	})
}

func TestNilBag(t *testing.T) {
	var bag *diag.Bag
	assert.False(t, bag.HasErrors())
	assert.Zero(t, bag.Len())
	bag = bag.Add(diag.New("a.ts", at(1, 1), diag.CannotFindName, "x"))
	assert.Equal(t, 1, bag.Len())
}

func TestMessageChain(t *testing.T) {
	inner := diag.Chain(diag.PropertyMissing, "a", "{}", "{ a: number; }")
	chain := inner.Wrap(diag.NotAssignable, "{}", "{ a: number; }")

	assert.Equal(t, 2, chain.Depth())
	assert.Equal(t, diag.NotAssignable, chain.Code)
	assert.Equal(t,
		"Type '{}' is not assignable to type '{ a: number; }'.\n  Property 'a' is missing in type '{}' but required in type '{ a: number; }'.",
		chain.String())

	d := diag.NewChained("a.ts", at(1, 3), chain)
	assert.Equal(t, diag.NotAssignable, d.Code)
	assert.Equal(t, diag.Error, d.Category)
	assert.Equal(t, "Type '{}' is not assignable to type '{ a: number; }'.", d.Message())
}

func TestFormat(t *testing.T) {
	fset := token.NewFileSet()
	file := fset.AddFile("a.ts", -1, 20)
	file.SetLinesForContent([]byte("let x = 1;\nlet y;\n"))
	d := diag.New("a.ts", ast.Range{PosStart: file.Pos(15), PosEnd: file.Pos(16)}, diag.CannotFindName, "y")

	assert.Equal(t, "a.ts:2:5: error (E2304) Cannot find name 'y'.", diag.Format(fset, d))
	assert.Equal(t, "(E2304) Cannot find name 'y'.", diag.FormatWithCode(d))
}
