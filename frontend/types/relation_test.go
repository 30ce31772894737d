package types_test

import (
	"testing"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/types"
	"github.com/cottand/strux/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignability(t *testing.T) {
	s := newStore(t)
	a, b := s.StringLiteral("a"), s.StringLiteral("b")
	one, two := s.NumberLiteral(1), s.NumberLiteral(2)
	ab := obj(s, prop{name: "a", typ: s.Number}, prop{name: "b", typ: s.String})
	onlyA := obj(s, prop{name: "a", typ: s.Number})

	tests := []struct {
		name     string
		source   types.TypeID
		target   types.TypeID
		expected bool
	}{
		{"identical", s.Number, s.Number, true},
		{"literal to primitive", a, s.String, true},
		{"primitive to literal", s.String, a, false},
		{"never to anything", s.Never, s.String, true},
		{"anything to unknown", s.String, s.Unknown, true},
		{"unknown to string", s.Unknown, s.String, false},
		{"any to string", s.Any, s.String, true},
		{"undefined to number", s.Undefined, s.Number, false},
		{"undefined to optional number", s.Undefined, s.Union(s.Number, s.Undefined), true},
		{"null to undefined", s.Null, s.Undefined, false},
		{"true to boolean", s.True, s.Boolean, true},
		{"literal to union of literals", one, s.Union(one, two), true},
		{"primitive to union of literals", s.Number, s.Union(one, two), false},
		{"union to primitive", s.Union(a, b), s.String, true},
		{"wide union to primitive", s.Union(s.String, s.Number), s.String, false},
		{"more properties", ab, onlyA, true},
		{"missing property", onlyA, ab, false},
		{"missing optional property", s.EmptyObject, obj(s, prop{name: "a", typ: s.Number, optional: true}), true},
		{"optional to required", obj(s, prop{name: "a", typ: s.Number, optional: true}), onlyA, false},
		{"incompatible property", obj(s, prop{name: "a", typ: s.String}), onlyA, false},
		{"object to object keyword", onlyA, s.NonPrimitive, true},
		{"string to object keyword", s.String, s.NonPrimitive, false},
		{"contravariant parameters", fn(s, s.Void, s.Union(s.String, s.Number)), fn(s, s.Void, s.String), true},
		{"covariant parameters", fn(s, s.Void, s.String), fn(s, s.Void, s.Union(s.String, s.Number)), false},
		{"number return to void", fn(s, s.Number), fn(s, s.Void), true},
		{"covariant returns", fn(s, a), fn(s, s.String), true},
		{"incompatible returns", fn(s, s.String), fn(s, a), false},
		{"fewer parameters", fn(s, s.Void, s.String), fn(s, s.Void, s.String, s.Number), true},
		{"more parameters", fn(s, s.Void, s.String, s.Number), fn(s, s.Void, s.String), false},
		{"tuple to array", s.Tuple([]types.TypeID{s.String, s.Number}, nil, false), s.ArrayOf(s.Union(s.String, s.Number)), true},
		{"array to tuple", s.ArrayOf(s.String), s.Tuple([]types.TypeID{s.String}, nil, false), false},
		{"short tuple", s.Tuple([]types.TypeID{s.String}, nil, false), s.Tuple([]types.TypeID{s.String, s.String}, nil, false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.IsAssignable(tt.source, tt.target))
		})
	}
}

func TestRelationOptions(t *testing.T) {
	loose := newStore(t, func(o *config.Options) {
		o.StrictNullChecks = false
		o.StrictFunctionTypes = false
	})
	assert.True(t, loose.IsAssignable(loose.Null, loose.String))
	assert.True(t, loose.IsAssignable(loose.Undefined, loose.Number))
	assert.True(t, loose.IsAssignable(
		fn(loose, loose.Void, loose.String),
		fn(loose, loose.Void, loose.Union(loose.String, loose.Number)),
	))
}

func TestRelationIsReflexiveAndCached(t *testing.T) {
	s := newStore(t)
	x := obj(s, prop{name: "a", typ: s.Number}, prop{name: "f", typ: fn(s, s.String, s.Number)})
	y := obj(s, prop{name: "a", typ: s.Union(s.Number, s.String)})

	for _, rel := range []types.Relation{types.RelationIdentity, types.RelationSubtype, types.RelationAssignable, types.RelationComparable} {
		t.Run(rel.String(), func(t *testing.T) {
			assert.True(t, s.IsTypeRelatedTo(x, x, rel))
		})
	}

	first := s.Relate(x, y, types.RelationAssignable)
	second := s.Relate(x, y, types.RelationAssignable)
	assert.True(t, first.Succeeded())
	assert.Equal(t, first, second)

	first = s.Relate(y, x, types.RelationAssignable)
	assert.False(t, first.Succeeded())
	assert.Equal(t, first, s.Relate(y, x, types.RelationAssignable))
}

func TestUnionSourceUnderSubtype(t *testing.T) {
	s := newStore(t)
	a, b := s.StringLiteral("a"), s.StringLiteral("b")
	ab := obj(s, prop{name: "a", typ: s.Number}, prop{name: "b", typ: s.String})
	onlyA := obj(s, prop{name: "a", typ: s.Number})

	tests := []struct {
		name     string
		members  []types.TypeID
		target   types.TypeID
		expected bool
	}{
		{"literals to primitive", []types.TypeID{a, b}, s.String, true},
		{"one member fails", []types.TypeID{s.String, s.Number}, s.String, false},
		{"mixed literals to primitive", []types.TypeID{s.NumberLiteral(1), a}, s.Number, false},
		{"objects to common base", []types.TypeID{ab, onlyA}, onlyA, true},
		{"objects to the wider object", []types.TypeID{ab, onlyA}, ab, false},
		{"literals to union", []types.TypeID{a, s.NumberLiteral(1)}, s.Union(s.String, s.Number), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			each := true
			for _, m := range tt.members {
				each = each && s.Relate(m, tt.target, types.RelationSubtype).Succeeded()
			}
			union := s.Relate(s.Union(tt.members...), tt.target, types.RelationSubtype).Succeeded()
			assert.Equal(t, tt.expected, union)
			assert.Equal(t, each, union, "a union relates iff each member does")
		})
	}
}

func TestIdentity(t *testing.T) {
	s := newStore(t)
	declare := func(optional bool) types.TypeID {
		return s.NewInterface(types.ObjectInterface, binder.NoSymbol, ast.NoNode, nil, func() *types.Members {
			return members(prop{name: "a", typ: s.Number, optional: optional})
		})
	}
	i1, i2, i3 := declare(false), declare(false), declare(true)
	assert.True(t, s.IsIdentical(i1, i2))
	assert.False(t, s.IsIdentical(i1, i3))
	assert.True(t, s.IsAssignable(i1, i3))
	assert.False(t, s.IsIdentical(s.StringLiteral("a"), s.String))
}

func TestRecursiveInterfacesTerminate(t *testing.T) {
	s := newStore(t)
	list := func(value types.TypeID) types.TypeID {
		var self types.TypeID
		self = s.NewInterface(types.ObjectInterface, binder.NoSymbol, ast.NoNode, nil, func() *types.Members {
			return members(prop{name: "value", typ: value}, prop{name: "next", typ: self, optional: true})
		})
		return self
	}
	numbers, otherNumbers, strings := list(s.Number), list(s.Number), list(s.String)

	assert.True(t, s.IsAssignable(numbers, otherNumbers))
	assert.True(t, s.IsAssignable(otherNumbers, numbers))
	assert.False(t, s.IsAssignable(numbers, strings))
	assert.Zero(t, s.Diagnostics().Len())
}

func TestVariance(t *testing.T) {
	s := newStore(t)
	box := genericInterface(s, func(tp, self types.TypeID) *types.Members {
		return members(prop{name: "value", typ: tp}, prop{name: "next", typ: self, optional: true})
	})
	sink := genericInterface(s, func(tp, _ types.TypeID) *types.Members {
		return members(prop{name: "put", typ: fn(s, s.Void, tp)})
	})
	phantom := genericInterface(s, func(types.TypeID, types.TypeID) *types.Members {
		return members(prop{name: "x", typ: s.Number})
	})
	a := s.StringLiteral("a")

	tests := []struct {
		name     string
		target   types.TypeID
		variance types.Variance
		narrowOK bool
		wideOK   bool
	}{
		{"covariant", box, types.VarianceCovariant, true, false},
		{"contravariant", sink, types.VarianceContravariant, false, true},
		{"independent", phantom, types.VarianceIndependent, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variances := s.VariancesOf(tt.target)
			require.Len(t, variances, 1)
			assert.Equal(t, tt.variance, variances[0], variances[0].String())
			assert.Equal(t, tt.narrowOK, s.IsAssignable(s.Reference(tt.target, a), s.Reference(tt.target, s.String)))
			assert.Equal(t, tt.wideOK, s.IsAssignable(s.Reference(tt.target, s.String), s.Reference(tt.target, a)))
		})
	}
}

func TestExcessProperties(t *testing.T) {
	s := newStore(t)
	target := obj(s, prop{name: "a", typ: s.Number})
	literal := freshObj(s, prop{name: "a", typ: s.Number}, prop{name: "b", typ: s.Number})

	assert.False(t, s.IsAssignable(literal, target))
	assert.True(t, s.IsAssignable(s.Regular(literal), target))
	assert.True(t, s.IsAssignable(literal, s.Union(target, obj(s, prop{name: "b", typ: s.Number}))))
	assert.True(t, s.IsAssignable(literal, s.EmptyObject))

	res, chain := s.CheckRelated(literal, target, types.RelationAssignable)
	assert.False(t, res.Succeeded())
	require.NotNil(t, chain)
	assert.Equal(t, diag.ExcessProperty, chain.Code)
}

func TestElaboration(t *testing.T) {
	s := newStore(t)
	source := obj(s, prop{name: "a", typ: s.Number})
	target := obj(s, prop{name: "a", typ: s.String})

	res, chain := s.CheckRelated(source, target, types.RelationAssignable)
	assert.False(t, res.Succeeded())
	require.NotNil(t, chain)
	assert.Equal(t, diag.NotAssignable, chain.Code)
	assert.Equal(t, "Type '{ a: number }' is not assignable to type '{ a: string }'.", chain.Text)
	require.Len(t, chain.Next, 1)
	assert.Equal(t, diag.PropertyTypesIncompatible, chain.Next[0].Code)
	require.Len(t, chain.Next[0].Next, 1)
	assert.Equal(t, "Type 'number' is not assignable to type 'string'.", chain.Next[0].Next[0].Text)

	_, chain = s.CheckRelated(obj(s), target, types.RelationAssignable)
	require.NotNil(t, chain)
	require.Len(t, chain.Next, 1)
	assert.Equal(t, diag.PropertyMissing, chain.Next[0].Code)

	res, chain = s.CheckRelated(source, source, types.RelationAssignable)
	assert.True(t, res.Succeeded())
	assert.Nil(t, chain)
}

func TestStackDepthOverflow(t *testing.T) {
	s := newStore(t, func(o *config.Options) { o.MaxRelationDepth = 10 })
	nest := func(leaf types.TypeID) types.TypeID {
		typ := leaf
		for range 50 {
			typ = obj(s, prop{name: "a", typ: typ})
		}
		return typ
	}
	source, target := nest(s.Number), nest(s.String)

	res := s.Relate(source, target, types.RelationAssignable)
	assert.False(t, res.Succeeded())
	assert.NotZero(t, res&types.ResultStackDepthOverflow, res.String())
	assert.Equal(t, []diag.Code{diag.ExcessiveStackDepth}, s.Diagnostics().Codes())

	again, chain := s.CheckRelated(source, target, types.RelationAssignable)
	assert.Equal(t, res, again)
	assert.Nil(t, chain)
	assert.Equal(t, 1, s.Diagnostics().Len())
}

func TestComplexityOverflow(t *testing.T) {
	s := newStore(t, func(o *config.Options) {
		o.MaxRelationDepth = 10
		o.MaxRelationWork = 20
	})
	union := func(value types.TypeID) types.TypeID {
		var parts []types.TypeID
		for _, name := range []string{"k0", "k1", "k2", "k3", "k4"} {
			parts = append(parts, obj(s, prop{name: name, typ: value}))
		}
		return s.Union(parts...)
	}

	res := s.Relate(union(s.Number), union(s.String), types.RelationAssignable)
	assert.False(t, res.Succeeded())
	assert.NotZero(t, res&types.ResultComplexityOverflow, res.String())
	assert.Equal(t, []diag.Code{diag.ExcessiveComplexity}, s.Diagnostics().Codes())
}

func TestComparable(t *testing.T) {
	s := newStore(t)
	a := s.StringLiteral("a")
	assert.True(t, s.IsComparable(s.String, a))
	assert.True(t, s.IsComparable(s.Union(a, s.Number), s.String))
	assert.False(t, s.IsComparable(s.Number, a))
}
