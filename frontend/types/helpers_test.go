package types_test

import (
	"testing"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/types"
	"github.com/cottand/strux/internal/config"
)

func newStore(t *testing.T, configure ...func(*config.Options)) *types.Store {
	t.Helper()
	opts := config.Default()
	for _, c := range configure {
		c(&opts)
	}
	return types.NewStore(opts)
}

type prop struct {
	name     string
	typ      types.TypeID
	optional bool
}

func obj(s *types.Store, props ...prop) types.TypeID {
	return s.Object(members(props...), types.ObjectNone)
}

func freshObj(s *types.Store, props ...prop) types.TypeID {
	return s.Object(members(props...), types.ObjectLiteral|types.ObjectFresh)
}

func members(props ...prop) *types.Members {
	m := types.NewMembers()
	for _, p := range props {
		var flags types.PropertyFlags
		if p.optional {
			flags = types.PropertyOptional
		}
		m.Add(types.NewProperty(p.name, flags, p.typ))
	}
	return m
}

func fn(s *types.Store, ret types.TypeID, params ...types.TypeID) types.TypeID {
	ps := make([]types.Param, len(params))
	for i, p := range params {
		ps[i] = types.Param{Name: string(rune('a' + i)), Type: p}
	}
	return s.FunctionType(types.NewSignature(ps, len(ps), ret))
}

func typeParam(s *types.Store, name string) types.TypeID {
	return s.NewTypeParameter(name, binder.NoSymbol, ast.NoNode)
}

// genericInterface declares an interface with one type parameter whose members
// are built by build from the parameter and a self reference
func genericInterface(s *types.Store, build func(tp, self types.TypeID) *types.Members) types.TypeID {
	tp := typeParam(s, "T")
	var target types.TypeID
	target = s.NewInterface(types.ObjectInterface, binder.NoSymbol, ast.NoNode, []types.TypeID{tp}, func() *types.Members {
		return build(tp, s.Reference(target, tp))
	})
	return target
}
