package nodebuilder_test

import (
	"strings"
	"testing"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/nodebuilder"
	"github.com/cottand/strux/frontend/types"
	"github.com/cottand/strux/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type name struct {
	names      []string
	accessible bool
}

// symbolNames serves entity names from a map, regardless of location
type symbolNames map[binder.SymbolID]name

func (m symbolNames) EntityName(symbol binder.SymbolID, _ ast.NodeID) ([]string, bool) {
	n, ok := m[symbol]
	if !ok {
		return nil, false
	}
	return n.names, n.accessible
}

func newBuilder(t *testing.T, symbols nodebuilder.Symbols, configure ...func(*config.Options)) (*types.Store, *nodebuilder.Builder) {
	t.Helper()
	opts := config.Default()
	for _, c := range configure {
		c(&opts)
	}
	s := types.NewStore(opts)
	return s, nodebuilder.New(s, symbols, opts)
}

func typeParam(s *types.Store, name string) types.TypeID {
	return s.NewTypeParameter(name, binder.NoSymbol, ast.NoNode)
}

func object(s *types.Store, props ...*types.Property) types.TypeID {
	m := types.NewMembers()
	for _, p := range props {
		m.Add(p)
	}
	return s.Object(m, types.ObjectAnonymous)
}

// boxInterface declares `interface Box<T> { value: T }` under symbol
func boxInterface(s *types.Store, symbol binder.SymbolID) types.TypeID {
	tp := typeParam(s, "T")
	return s.NewInterface(types.ObjectInterface, symbol, ast.NoNode, []types.TypeID{tp}, func() *types.Members {
		return types.NewMembers().Add(types.NewProperty("value", 0, tp))
	})
}

func TestTypeToString(t *testing.T) {
	s, b := newBuilder(t, nil)
	tp := typeParam(s, "T")
	twoParams := []types.Param{{Name: "x", Type: s.Number}, {Name: "y", Type: s.String, Optional: true}}

	tests := []struct {
		name     string
		typ      types.TypeID
		expected string
	}{
		{"any", s.Any, "any"},
		{"error type prints as any", s.Error, "any"},
		{"unknown", s.Unknown, "unknown"},
		{"never", s.Never, "never"},
		{"non-primitive", s.NonPrimitive, "object"},
		{"string literal", s.StringLiteral("a"), `"a"`},
		{"number literal", s.NumberLiteral(42), "42"},
		{"true", s.True, "true"},
		{"boolean", s.Boolean, "boolean"},
		{"union with boolean", s.Union(s.String, s.Boolean), "string | boolean"},
		{"union", s.Union(s.Number, s.String), "string | number"},
		{"array", s.ArrayOf(s.Number), "number[]"},
		{"tuple", s.Tuple([]types.TypeID{s.Number, s.String}, []types.ElementFlags{types.ElementRequired, types.ElementRequired}, false), "[number, string]"},
		{"type parameter", tp, "T"},
		{"keyof", s.IndexTypeOf(tp), "keyof T"},
		{"function", s.FunctionType(types.NewSignature(twoParams[:1], 1, s.String)), "(x: number) => string"},
		{"optional parameter", s.FunctionType(types.NewSignature(twoParams, 1, s.Void)), "(x: number, y?: string) => void"},
		{"empty object", s.EmptyObject, "{}"},
		{
			"type literal",
			object(s, types.NewProperty("a", 0, s.Number), types.NewProperty("b", types.PropertyOptional, s.String)),
			"{ a: number; b?: string; }",
		},
		{
			"readonly property",
			object(s, types.NewProperty("a", types.PropertyReadonly, s.Number)),
			"{ readonly a: number; }",
		},
		{
			"quoted property name",
			object(s, types.NewProperty("foo-bar", 0, s.Number)),
			`{ "foo-bar": number; }`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, b.TypeToString(test.typ, nodebuilder.Context{}))
		})
	}
}

func TestTypeToStringLeavesNoNodes(t *testing.T) {
	s, b := newBuilder(t, nil)
	typ := object(s, types.NewProperty("a", 0, s.ArrayOf(s.Number)))

	before := b.Output().Len()
	assert.Equal(t, "{ a: number[]; }", b.TypeToString(typ, nodebuilder.Context{}))
	assert.Equal(t, before, b.Output().Len())
}

func TestInstallFormatsStoreTypes(t *testing.T) {
	s, b := newBuilder(t, nil)
	b.Install()
	assert.Equal(t, "number[]", s.TypeString(s.ArrayOf(s.Number)))
}

func TestNamedReferences(t *testing.T) {
	const boxSymbol, hiddenSymbol = binder.SymbolID(1), binder.SymbolID(2)
	symbols := symbolNames{
		boxSymbol:    {names: []string{"Box"}, accessible: true},
		hiddenSymbol: {names: []string{"ns", "Hidden"}, accessible: false},
	}
	s, b := newBuilder(t, symbols)
	box := boxInterface(s, boxSymbol)
	hidden := s.NewInterface(types.ObjectInterface, hiddenSymbol, ast.NoNode, nil, func() *types.Members {
		return types.NewMembers().Add(types.NewProperty("x", 0, s.Number))
	})

	t.Run("accessible name with arguments", func(t *testing.T) {
		res := b.Serialize(s.Reference(box, s.Number), nodebuilder.Context{})
		assert.Equal(t, "Box<number>", ast.Print(b.Output(), res.Node))
		assert.Empty(t, res.Diagnostics)
		assert.False(t, res.Truncated)
	})

	t.Run("inaccessible name is reported", func(t *testing.T) {
		res := b.Serialize(hidden, nodebuilder.Context{File: "main.ts"})
		assert.Equal(t, "ns.Hidden", ast.Print(b.Output(), res.Node))
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, diag.InaccessibleName, res.Diagnostics[0].Code)
		assert.Equal(t, "main.ts", res.Diagnostics[0].File)
		assert.Contains(t, res.Diagnostics[0].Message(), "ns.Hidden")
	})

	t.Run("structural fallback expands inaccessible names", func(t *testing.T) {
		res := b.Serialize(hidden, nodebuilder.Context{Flags: nodebuilder.AllowStructuralFallback})
		assert.Equal(t, "{ x: number; }", ast.Print(b.Output(), res.Node))
		assert.Empty(t, res.Diagnostics)
	})

	t.Run("inaccessible argument of accessible reference", func(t *testing.T) {
		res := b.Serialize(s.Reference(box, hidden), nodebuilder.Context{})
		assert.Equal(t, "Box<ns.Hidden>", ast.Print(b.Output(), res.Node))
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, diag.InaccessibleName, res.Diagnostics[0].Code)
	})
}

func TestAliasNames(t *testing.T) {
	const wrapperSymbol = binder.SymbolID(3)
	s, b := newBuilder(t, symbolNames{wrapperSymbol: {names: []string{"Wrapper"}, accessible: true}})
	tp := typeParam(s, "T")
	declared := s.NewAnonymous(types.ObjectNone, binder.NoSymbol, ast.NoNode, []types.TypeID{tp}, func() *types.Members {
		return types.NewMembers().Add(types.NewProperty("value", 0, tp))
	})
	s.RegisterAlias(wrapperSymbol, []types.TypeID{tp}, declared)
	wrapped := s.InstantiateAlias(wrapperSymbol, []types.TypeID{s.Number})

	assert.Equal(t, "Wrapper<number>", b.TypeToString(wrapped, nodebuilder.Context{Flags: nodebuilder.UseAliasNames}))
	assert.Contains(t, b.TypeToString(wrapped, nodebuilder.Context{}), "value")
}

func TestTruncation(t *testing.T) {
	const boxSymbol = binder.SymbolID(1)
	symbols := symbolNames{boxSymbol: {names: []string{"Box"}, accessible: true}}

	t.Run("deeply nested references stop at the depth budget", func(t *testing.T) {
		s, b := newBuilder(t, symbols)
		box := boxInterface(s, boxSymbol)
		nested := s.Number
		for range 10_000 {
			nested = s.Reference(box, nested)
		}

		res := b.Serialize(nested, nodebuilder.Context{})
		assert.True(t, res.Truncated)
		printed := ast.Print(b.Output(), res.Node)
		assert.True(t, strings.HasPrefix(printed, "Box<Box<"))
		assert.Contains(t, printed, "...")
		require.NotEmpty(t, res.Diagnostics)
		assert.Equal(t, diag.SerializationTruncated, res.Diagnostics[0].Code)
	})

	t.Run("depth budget applies without truncation", func(t *testing.T) {
		s, b := newBuilder(t, symbols, func(o *config.Options) { o.NoTruncation = true })
		box := boxInterface(s, boxSymbol)
		nested := s.Number
		for range 1_000 {
			nested = s.Reference(box, nested)
		}
		assert.True(t, b.Serialize(nested, nodebuilder.Context{}).Truncated)
	})

	wide := func(s *types.Store) types.TypeID {
		var props []*types.Property
		for _, n := range []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"} {
			props = append(props, types.NewProperty(n, 0, s.Number))
		}
		return object(s, props...)
	}

	t.Run("length budget", func(t *testing.T) {
		s, b := newBuilder(t, nil, func(o *config.Options) { o.MaxTypeNodeLength = 30 })
		res := b.Serialize(wide(s), nodebuilder.Context{})
		assert.True(t, res.Truncated)
		printed := ast.Print(b.Output(), res.Node)
		assert.Contains(t, printed, "...")
		assert.NotContains(t, printed, "hotel")
	})

	t.Run("no truncation flag lifts the length budget", func(t *testing.T) {
		s, b := newBuilder(t, nil, func(o *config.Options) { o.MaxTypeNodeLength = 30 })
		res := b.Serialize(wide(s), nodebuilder.Context{Flags: nodebuilder.NoTruncation})
		assert.False(t, res.Truncated)
		assert.Empty(t, res.Diagnostics)
		assert.Contains(t, ast.Print(b.Output(), res.Node), "hotel: number")
	})
}

func TestRecursiveAnonymousTypes(t *testing.T) {
	s, b := newBuilder(t, nil)
	var self types.TypeID
	self = s.NewAnonymous(types.ObjectNone, binder.NoSymbol, ast.NoNode, nil, func() *types.Members {
		return types.NewMembers().Add(types.NewProperty("next", 0, self))
	})

	res := b.Serialize(self, nodebuilder.Context{})
	assert.Equal(t, "{ next: ...; }", ast.Print(b.Output(), res.Node))
	assert.True(t, res.Truncated)
}
