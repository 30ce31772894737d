package infer_test

import (
	"testing"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/infer"
	"github.com/cottand/strux/frontend/types"
	"github.com/cottand/strux/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, configure ...func(*config.Options)) *types.Store {
	t.Helper()
	opts := config.Default()
	for _, c := range configure {
		c(&opts)
	}
	s := types.NewStore(opts)
	infer.Install(s)
	return s
}

func typeParam(s *types.Store, name string) types.TypeID {
	return s.NewTypeParameter(name, binder.NoSymbol, ast.NoNode)
}

func obj(s *types.Store, props map[string]types.TypeID) types.TypeID {
	m := types.NewMembers()
	for _, name := range []string{"a", "b", "c"} {
		if t, ok := props[name]; ok {
			m.Add(types.NewProperty(name, 0, t))
		}
	}
	return s.Object(m, types.ObjectNone)
}

func fn(s *types.Store, ret types.TypeID, params ...types.TypeID) types.TypeID {
	ps := make([]types.Param, len(params))
	for i, p := range params {
		ps[i] = types.Param{Name: string(rune('a' + i)), Type: p}
	}
	return s.FunctionType(types.NewSignature(ps, len(ps), ret))
}

func TestCovariantCandidates(t *testing.T) {
	s := newStore(t)
	onlyA := obj(s, map[string]types.TypeID{"a": s.Number})
	ab := obj(s, map[string]types.TypeID{"a": s.Number, "b": s.String})

	tests := []struct {
		name     string
		sources  []types.TypeID
		expected types.TypeID
	}{
		{"fresh literal widens", []types.TypeID{s.Fresh(s.StringLiteral("a"))}, s.String},
		{"regular literal is kept", []types.TypeID{s.StringLiteral("a")}, s.StringLiteral("a")},
		{"candidates are unioned", []types.TypeID{s.Number, s.String}, s.Union(s.Number, s.String)},
		{"subtypes are reduced", []types.TypeID{ab, onlyA}, onlyA},
		{"repeated candidate", []types.TypeID{s.Number, s.Number}, s.Number},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := typeParam(s, "T")
			c := infer.NewContext(s, []types.TypeID{tp})
			for _, source := range tt.sources {
				c.Infer(source, tp)
			}
			assert.Equal(t, s.TypeString(tt.expected), s.TypeString(c.InferredType(0)))
		})
	}
}

func TestContravariantCandidates(t *testing.T) {
	s := newStore(t)
	tp := typeParam(s, "T")
	onlyA := obj(s, map[string]types.TypeID{"a": s.Number})
	onlyB := obj(s, map[string]types.TypeID{"b": s.String})

	c := infer.NewContext(s, []types.TypeID{tp})
	c.Infer(fn(s, s.Void, onlyA), fn(s, s.Void, tp))
	c.Infer(fn(s, s.Void, onlyB), fn(s, s.Void, tp))

	info := c.Infos()[0]
	assert.Empty(t, info.Candidates)
	assert.Len(t, info.ContraCandidates, 2)
	assert.Equal(t, s.Intersection(onlyA, onlyB), c.InferredType(0))
}

func TestCovariantCandidatesWinOverContravariant(t *testing.T) {
	s := newStore(t)
	tp := typeParam(s, "T")
	c := infer.NewContext(s, []types.TypeID{tp})
	c.Infer(fn(s, s.Void, s.Number), fn(s, s.Void, tp))
	c.Infer(s.Number, tp)
	assert.Equal(t, s.Number, c.InferredType(0))
}

func TestFunctionTypes(t *testing.T) {
	s := newStore(t)
	param, ret := typeParam(s, "T"), typeParam(s, "U")
	c := infer.NewContext(s, []types.TypeID{param, ret})
	c.Infer(fn(s, s.String, s.Number), fn(s, ret, param))
	assert.Equal(t, []types.TypeID{s.Number, s.String}, c.TypeArguments())
	assert.Len(t, c.Infos()[0].ContraCandidates, 1)
	assert.Len(t, c.Infos()[1].Candidates, 1)
}

func TestPriorities(t *testing.T) {
	t.Run("direct inferences outrank naked union members", func(t *testing.T) {
		s := newStore(t)
		tp := typeParam(s, "T")
		c := infer.NewContext(s, []types.TypeID{tp})
		c.Infer(s.String, s.Union(tp, s.Undefined))
		assert.Equal(t, infer.PriorityNakedTypeVariable, c.Infos()[0].Priority)
		c.Infer(s.Number, tp)
		assert.Equal(t, infer.PriorityDirect, c.Infos()[0].Priority)
		assert.Equal(t, s.Number, c.InferredType(0))

		// lower ranked candidates arriving later are dropped
		c.Infer(s.Boolean, s.Union(tp, s.Undefined))
		assert.Equal(t, []types.TypeID{s.Number}, c.Infos()[0].Candidates)
	})

	t.Run("matching union members pair off", func(t *testing.T) {
		s := newStore(t)
		tp := typeParam(s, "T")
		c := infer.NewContext(s, []types.TypeID{tp})
		c.Infer(s.Union(s.String, s.Undefined), s.Union(tp, s.Undefined))
		assert.Equal(t, s.String, c.InferredType(0))
	})

	t.Run("return type inferences keep literals", func(t *testing.T) {
		s := newStore(t)
		tp := typeParam(s, "T")
		c := infer.NewContext(s, []types.TypeID{tp})
		c.InferWithPriority(s.Fresh(s.StringLiteral("a")), tp, infer.PriorityReturnType)
		c.InferWithPriority(s.Fresh(s.StringLiteral("b")), tp, infer.PriorityReturnType)
		assert.Equal(t, infer.PriorityReturnType, c.Infos()[0].Priority)
		assert.Equal(t, s.Union(s.StringLiteral("a"), s.StringLiteral("b")), s.MapType(c.InferredType(0), s.Regular))
	})
}

func TestNoCandidates(t *testing.T) {
	tests := []struct {
		name     string
		strict   bool
		dflt     bool
		expected func(s *types.Store) types.TypeID
	}{
		{"any when not strict", false, false, func(s *types.Store) types.TypeID { return s.Any }},
		{"never under strict inference", true, false, func(s *types.Store) types.TypeID { return s.Never }},
		{"default", true, true, func(s *types.Store) types.TypeID { return s.Boolean }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, func(o *config.Options) { o.StrictInference = tt.strict })
			tp := typeParam(s, "T")
			if tt.dflt {
				s.SetDefaultResolver(tp, func() types.TypeID { return s.Boolean })
			}
			c := infer.NewContext(s, []types.TypeID{tp})
			c.Infer(s.Number, s.String)
			assert.False(t, c.Infos()[0].HasCandidates())
			assert.Equal(t, tt.expected(s), c.InferredType(0))
		})
	}
}

func TestConstraints(t *testing.T) {
	s := newStore(t)

	t.Run("violating inference falls back to the constraint", func(t *testing.T) {
		tp := typeParam(s, "T")
		s.SetConstraint(tp, s.String)
		c := infer.NewContext(s, []types.TypeID{tp})
		c.Infer(s.Number, tp)
		assert.Equal(t, s.String, c.InferredType(0))
	})

	t.Run("primitive constraints keep literals", func(t *testing.T) {
		tp := typeParam(s, "T")
		s.SetConstraint(tp, s.String)
		c := infer.NewContext(s, []types.TypeID{tp})
		c.Infer(s.Fresh(s.StringLiteral("a")), tp)
		assert.Equal(t, s.StringLiteral("a"), s.Regular(c.InferredType(0)))
	})

	t.Run("constraints may refer to other parameters", func(t *testing.T) {
		tp, up := typeParam(s, "T"), typeParam(s, "U")
		s.SetConstraint(up, tp)
		c := infer.NewContext(s, []types.TypeID{tp, up})
		c.Infer(s.String, tp)
		c.Infer(s.Number, up)
		assert.Equal(t, []types.TypeID{s.String, s.String}, c.TypeArguments())
	})
}

func TestFixing(t *testing.T) {
	s := newStore(t)
	tp := typeParam(s, "T")
	c := infer.NewContext(s, []types.TypeID{tp})
	c.Infer(s.Number, tp)

	// observing the parameter through the fixing mapper fixes it
	require.Equal(t, s.ArrayOf(s.Number), s.Instantiate(s.ArrayOf(tp), c.Mapper))
	require.True(t, c.IsFixed(0))

	c.Infer(s.String, tp)
	assert.Equal(t, s.Number, c.InferredType(0))
	assert.Equal(t, []types.TypeID{s.Number}, c.Infos()[0].Candidates)

	t.Run("non fixing mapper", func(t *testing.T) {
		up := typeParam(s, "U")
		c := infer.NewContext(s, []types.TypeID{up})
		c.Infer(s.Number, up)
		assert.Equal(t, s.Number, s.Instantiate(up, c.NonFixingMapper))
		assert.False(t, c.IsFixed(0))
		c.Infer(s.String, up)
		assert.Equal(t, s.Union(s.Number, s.String), c.InferredType(0))
	})
}

func TestStructuredTargets(t *testing.T) {
	s := newStore(t)

	t.Run("properties", func(t *testing.T) {
		tp, up := typeParam(s, "T"), typeParam(s, "U")
		c := infer.NewContext(s, []types.TypeID{tp, up})
		c.Infer(
			obj(s, map[string]types.TypeID{"a": s.Number, "b": s.String, "c": s.Boolean}),
			obj(s, map[string]types.TypeID{"a": tp, "b": up}))
		assert.Equal(t, []types.TypeID{s.Number, s.String}, c.TypeArguments())
		assert.False(t, c.Infos()[0].TopLevel)
	})

	t.Run("array elements", func(t *testing.T) {
		tp := typeParam(s, "T")
		c := infer.NewContext(s, []types.TypeID{tp})
		c.Infer(s.ArrayOf(s.Number), s.ArrayOf(tp))
		assert.Equal(t, s.Number, c.InferredType(0))
	})

	t.Run("tuple elements", func(t *testing.T) {
		tp, up := typeParam(s, "T"), typeParam(s, "U")
		flags := []types.ElementFlags{types.ElementRequired, types.ElementRequired}
		c := infer.NewContext(s, []types.TypeID{tp, up})
		c.Infer(s.Tuple([]types.TypeID{s.String, s.Number}, flags, false), s.Tuple([]types.TypeID{tp, up}, flags, false))
		assert.Equal(t, []types.TypeID{s.String, s.Number}, c.TypeArguments())
	})

	t.Run("homomorphic mapped type", func(t *testing.T) {
		tp, key := typeParam(s, "T"), typeParam(s, "K")
		template, ok := s.IndexedAccess(tp, key)
		require.True(t, ok)
		partial := s.NewMapped(binder.NoSymbol, ast.NoNode, key, s.IndexTypeOf(tp), template, types.IncludeOptional, []types.TypeID{tp})
		source := obj(s, map[string]types.TypeID{"a": s.Number})

		c := infer.NewContext(s, []types.TypeID{tp})
		c.Infer(source, partial)
		assert.Equal(t, infer.PriorityHomomorphicMappedType, c.Infos()[0].Priority)
		assert.Equal(t, source, c.InferredType(0))
	})

	t.Run("mapped type constraint", func(t *testing.T) {
		keys, key, value := typeParam(s, "K"), typeParam(s, "P"), typeParam(s, "V")
		record := s.NewMapped(binder.NoSymbol, ast.NoNode, key, keys, value, 0, []types.TypeID{keys, value})
		source := obj(s, map[string]types.TypeID{"a": s.Number, "b": s.Number})

		c := infer.NewContext(s, []types.TypeID{keys, value})
		c.Infer(source, record)
		assert.Equal(t, s.Union(s.StringLiteral("a"), s.StringLiteral("b")), c.InferredType(0))
		assert.Equal(t, s.Number, c.InferredType(1))
	})
}

func TestEngine(t *testing.T) {
	s := newStore(t)

	t.Run("unobserved parameters are left out", func(t *testing.T) {
		tp, up := typeParam(s, "T"), typeParam(s, "U")
		e := infer.Install(s)
		args := e.InferTypeArguments([]types.TypeID{tp, up}, s.ArrayOf(s.String), s.ArrayOf(tp))
		assert.Equal(t, []types.TypeID{s.String, types.NoType}, args)
	})

	t.Run("template literal holes", func(t *testing.T) {
		hole := typeParam(s, "H")
		e := infer.Install(s)
		target := s.TemplateLiteral([]string{"id-", ""}, []types.TypeID{hole})
		args := e.InferTypeArguments([]types.TypeID{hole}, s.StringLiteral("id-42"), target)
		assert.Equal(t, []types.TypeID{s.StringLiteral("42")}, args)
	})

	t.Run("signature arguments left to right", func(t *testing.T) {
		tp := typeParam(s, "T")
		e := infer.Install(s)
		sig := types.NewSignature([]types.Param{{Name: "a", Type: tp}, {Name: "b", Type: tp}}, 2, tp)
		sig.TypeParameters = []types.TypeID{tp}

		c := e.InferSignature(sig, []types.TypeID{s.Fresh(s.NumberLiteral(1)), s.Fresh(s.StringLiteral("x"))}, types.NoType)
		assert.Equal(t, s.Union(s.Number, s.String), c.InferredType(0))

		c = e.InferSignature(sig, nil, s.String)
		assert.Equal(t, infer.PriorityReturnType, c.Infos()[0].Priority)
		assert.Equal(t, s.String, c.InferredType(0))
	})
}
