package infer

import (
	"github.com/cottand/strux/frontend/types"
)

// Engine serves the inferences the type store needs on its own: the `infer`
// declarations of conditional types, and the instantiation of generic
// signatures compared against non-generic ones
type Engine struct {
	s *types.Store
}

var _ types.Inferrer = (*Engine)(nil)

// Install creates an Engine for s and registers it as its Inferrer
func Install(s *types.Store) *Engine {
	e := &Engine{s: s}
	s.SetInferrer(e)
	return e
}

// InferTypeArguments infers typeParams from source against target. Parameters
// with no candidates are left as types.NoType for the caller to resolve.
func (e *Engine) InferTypeArguments(typeParams []types.TypeID, source, target types.TypeID) []types.TypeID {
	c := NewContext(e.s, typeParams)
	c.Infer(source, target)
	args := make([]types.TypeID, len(typeParams))
	for i, info := range c.infos {
		if info.HasCandidates() {
			args[i] = c.InferredType(i)
		}
	}
	return args
}

// InferSignature infers the type arguments of sig from the types of the
// arguments of a call, left to right. contextual, if present, is the type the
// call's result is expected to have and contributes return type inferences.
func (e *Engine) InferSignature(sig *types.Signature, args []types.TypeID, contextual types.TypeID) *Context {
	c := NewContext(e.s, sig.TypeParameters)
	if contextual.IsPresent() {
		c.InferWithPriority(contextual, e.s.ReturnType(sig), PriorityReturnType)
	}
	for i, arg := range args {
		if param := e.s.ParamType(sig, i); param.IsPresent() {
			c.Infer(arg, param)
		}
	}
	return c
}
