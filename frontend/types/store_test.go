package types_test

import (
	"testing"

	"github.com/cottand/strux/frontend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralInterning(t *testing.T) {
	s := newStore(t)
	assert.Equal(t, s.StringLiteral("a"), s.StringLiteral("a"))
	assert.Equal(t, s.NumberLiteral(1), s.NumberLiteral(1))
	assert.NotEqual(t, s.StringLiteral("1"), s.NumberLiteral(1))

	lit := s.StringLiteral("a")
	fresh := s.Fresh(lit)
	assert.NotEqual(t, lit, fresh)
	assert.True(t, s.IsFresh(fresh))
	assert.False(t, s.IsFresh(lit))
	assert.Equal(t, lit, s.Regular(fresh))
	assert.Equal(t, fresh, s.Fresh(fresh))
}

func TestUnionCanonicalization(t *testing.T) {
	s := newStore(t)
	a, b, c := s.StringLiteral("a"), s.StringLiteral("b"), s.StringLiteral("c")

	tests := []struct {
		name     string
		got      types.TypeID
		expected types.TypeID
	}{
		{"order does not matter", s.Union(a, b, c), s.Union(c, b, a)},
		{"nested unions flatten", s.Union(a, s.Union(b, c)), s.Union(a, b, c)},
		{"duplicates collapse", s.Union(a, a), a},
		{"empty union is never", s.Union(), s.Never},
		{"never is dropped", s.Union(a, s.Never), a},
		{"any absorbs", s.Union(a, s.Any), s.Any},
		{"unknown absorbs", s.Union(a, s.Unknown), s.Unknown},
		{"literals reduce into their primitive", s.Union(a, s.String), s.String},
		{"true and false are boolean", s.Union(s.True, s.False), s.Boolean},
		{"boolean absorbs true", s.Union(s.Boolean, s.True), s.Boolean},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
	assert.True(t, s.Is(s.Boolean, types.FlagBoolean))
	assert.True(t, s.Is(s.Boolean, types.FlagUnion))
}

func TestSubtypeReduction(t *testing.T) {
	s := newStore(t)
	wide := obj(s, prop{name: "a", typ: s.Number})
	narrow := obj(s, prop{name: "a", typ: s.Number}, prop{name: "b", typ: s.String})
	assert.Equal(t, wide, s.UnionWith(types.ReduceSubtypes, wide, narrow))
	assert.True(t, s.Is(s.Union(wide, narrow), types.FlagUnion))
}

func TestIntersection(t *testing.T) {
	s := newStore(t)
	a := s.StringLiteral("a")

	tests := []struct {
		name     string
		got      types.TypeID
		expected types.TypeID
	}{
		{"empty intersection is unknown", s.Intersection(), s.Unknown},
		{"disjoint primitives", s.Intersection(s.String, s.Number), s.Never},
		{"disjoint literals", s.Intersection(a, s.StringLiteral("b")), s.Never},
		{"literal implies primitive", s.Intersection(a, s.String), a},
		{"unknown is dropped", s.Intersection(a, s.Unknown), a},
		{"never absorbs", s.Intersection(s.String, s.Never), s.Never},
		{"distributes over unions", s.Intersection(s.Union(a, s.NumberLiteral(1)), s.String), a},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestObjectInterning(t *testing.T) {
	s := newStore(t)
	x := obj(s, prop{name: "a", typ: s.Number})
	y := obj(s, prop{name: "a", typ: s.Number})
	assert.Equal(t, x, y)
	assert.NotEqual(t, x, obj(s, prop{name: "a", typ: s.Number, optional: true}))

	fresh := freshObj(s, prop{name: "a", typ: s.Number})
	require.True(t, s.IsFresh(fresh))
	assert.Equal(t, s.Regular(fresh), s.Regular(freshObj(s, prop{name: "a", typ: s.Number})))
}

func TestTuplesAndArrays(t *testing.T) {
	s := newStore(t)
	pair := s.Tuple([]types.TypeID{s.String, s.Number}, nil, false)
	assert.Equal(t, pair, s.Tuple([]types.TypeID{s.String, s.Number}, nil, false))
	assert.Equal(t, []types.TypeID{s.String, s.Number}, s.TupleElements(pair))
	assert.Equal(t, s.Union(s.String, s.Number), s.ElementType(pair))

	arr := s.ArrayOf(s.String)
	assert.True(t, s.IsArray(arr))
	assert.Equal(t, s.String, s.ElementType(arr))
	assert.True(t, s.IsArrayOrTuple(pair))
	assert.False(t, s.IsArray(pair))
}

func TestTypeString(t *testing.T) {
	s := newStore(t)
	tests := []struct {
		typ      types.TypeID
		expected string
	}{
		{s.String, "string"},
		{s.StringLiteral("a"), `"a"`},
		{s.NumberLiteral(1.5), "1.5"},
		{s.Boolean, "boolean"},
		{s.Union(s.String, s.Undefined), "undefined | string"},
		{obj(s, prop{name: "a", typ: s.Number}, prop{name: "b", typ: s.String, optional: true}), "{ a: number; b?: string }"},
		{s.ArrayOf(s.Number), "number[]"},
		{s.Tuple([]types.TypeID{s.String, s.Number}, nil, false), "[string, number]"},
		{fn(s, s.Void, s.Number), "(a: number) => void"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.TypeString(tt.typ))
		})
	}
}
