package types_test

import (
	"testing"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyof(t *testing.T) {
	s := newStore(t)
	a, b := s.StringLiteral("a"), s.StringLiteral("b")
	ab := obj(s, prop{name: "a", typ: s.Number}, prop{name: "b", typ: s.String})
	bc := obj(s, prop{name: "b", typ: s.Number}, prop{name: "c", typ: s.String})
	tp := typeParam(s, "T")

	assert.Equal(t, s.Union(a, b), s.IndexTypeOf(ab))
	assert.Equal(t, b, s.IndexTypeOf(s.Union(ab, bc)))
	assert.Equal(t, s.Never, s.IndexTypeOf(s.Unknown))
	assert.Equal(t, s.StringOrNumber, s.IndexTypeOf(s.Any))

	deferred := s.IndexTypeOf(tp)
	assert.True(t, s.Is(deferred, types.FlagIndex))
	assert.Equal(t, deferred, s.IndexTypeOf(tp))
	assert.Equal(t, s.Union(a, b), s.Instantiate(deferred, types.NewMapper([]types.TypeID{tp}, []types.TypeID{ab})))
}

func TestIndexedAccess(t *testing.T) {
	s := newStore(t)
	o := obj(s, prop{name: "a", typ: s.Number}, prop{name: "b", typ: s.String, optional: true})
	a, b := s.StringLiteral("a"), s.StringLiteral("b")

	tests := []struct {
		name     string
		object   types.TypeID
		index    types.TypeID
		expected types.TypeID
		ok       bool
	}{
		{"property", o, a, s.Number, true},
		{"optional property", o, b, s.Union(s.String, s.Undefined), true},
		{"union of keys", o, s.Union(a, b), s.Union(s.Number, s.String, s.Undefined), true},
		{"missing property", o, s.StringLiteral("zz"), s.Error, false},
		{"tuple element", s.Tuple([]types.TypeID{s.String, s.Number}, nil, false), s.NumberLiteral(1), s.Number, true},
		{"array element", s.ArrayOf(s.String), s.Number, s.String, true},
		{"any object", s.Any, a, s.Any, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.IndexedAccess(tt.object, tt.index)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}

	tp := typeParam(s, "T")
	deferred, ok := s.IndexedAccess(tp, a)
	require.True(t, ok)
	assert.True(t, s.Is(deferred, types.FlagIndexedAccess))
	assert.Equal(t, s.Number, s.Instantiate(deferred, types.NewMapper([]types.TypeID{tp}, []types.TypeID{o})))
}

func TestConditionalDistribution(t *testing.T) {
	s := newStore(t)
	tp := typeParam(s, "T")
	yes, no := s.StringLiteral("yes"), s.StringLiteral("no")
	root := s.NewConditionalRoot(types.ConditionalRoot{
		CheckType:           tp,
		ExtendsType:         s.String,
		TrueType:            yes,
		FalseType:           no,
		IsDistributive:      true,
		OuterTypeParameters: []types.TypeID{tp},
	})
	apply := func(arg types.TypeID) types.TypeID {
		return s.Conditional(root, types.NewMapper([]types.TypeID{tp}, []types.TypeID{arg}))
	}

	assert.Equal(t, yes, apply(s.StringLiteral("a")))
	assert.Equal(t, no, apply(s.Number))
	assert.Equal(t, s.Union(yes, no), apply(s.Union(s.StringLiteral("a"), s.Number)))
	assert.Equal(t, s.Never, apply(s.Never))
	assert.Equal(t, s.Union(yes, no), apply(s.Any))

	deferred := s.Conditional(root, nil)
	require.True(t, s.Is(deferred, types.FlagConditional))
	assert.Equal(t, deferred, s.Conditional(root, nil))
	assert.Equal(t, no, s.Instantiate(deferred, types.NewMapper([]types.TypeID{tp}, []types.TypeID{s.Boolean})))
}

func TestTemplateLiterals(t *testing.T) {
	s := newStore(t)
	ids := s.TemplateLiteral([]string{"id-", ""}, []types.TypeID{s.Number})
	require.True(t, s.Is(ids, types.FlagTemplateLiteral))

	assert.Equal(t, s.StringLiteral("ab"), s.TemplateLiteral([]string{"a", ""}, []types.TypeID{s.StringLiteral("b")}))
	assert.Equal(t,
		s.Union(s.StringLiteral("ab"), s.StringLiteral("ac")),
		s.TemplateLiteral([]string{"a", ""}, []types.TypeID{s.Union(s.StringLiteral("b"), s.StringLiteral("c"))}),
	)

	tests := []struct {
		source   string
		expected bool
	}{
		{"id-42", true},
		{"id-1.5", true},
		{"id-", false},
		{"id-x", false},
		{"xid-1", false},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.IsAssignable(s.StringLiteral(tt.source), ids))
		})
	}
	assert.True(t, s.IsAssignable(ids, s.String))
	assert.False(t, s.IsAssignable(s.String, ids))
}

func TestHomomorphicMappedType(t *testing.T) {
	s := newStore(t)
	tp, key := typeParam(s, "T"), typeParam(s, "K")
	template, ok := s.IndexedAccess(tp, key)
	require.True(t, ok)
	partial := s.NewMapped(binder.NoSymbol, ast.NoNode, key, s.IndexTypeOf(tp), template, types.IncludeOptional, []types.TypeID{tp})
	require.True(t, s.IsGenericMapped(partial))

	o := obj(s, prop{name: "a", typ: s.Number}, prop{name: "b", typ: s.String})
	applied := s.Instantiate(partial, types.NewMapper([]types.TypeID{tp}, []types.TypeID{o}))
	require.False(t, s.IsGenericMapped(applied))

	p := s.PropertyOf(applied, "a")
	require.NotNil(t, p)
	assert.True(t, p.IsOptional())
	assert.Equal(t, s.Number, s.PropertyType(p))
	assert.Equal(t, s.IndexTypeOf(o), s.IndexTypeOf(applied))

	assert.True(t, s.IsAssignable(s.EmptyObject, applied))
	assert.True(t, s.IsAssignable(o, applied))
	assert.False(t, s.IsAssignable(obj(s, prop{name: "a", typ: s.String}), applied))

	// primitives map to themselves
	assert.Equal(t, s.String, s.Instantiate(partial, types.NewMapper([]types.TypeID{tp}, []types.TypeID{s.String})))
}
