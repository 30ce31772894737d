// Package infer infers the type arguments of generic signatures and of the
// `infer` declarations of conditional types.
//
// A Context collects candidates for each type parameter from pairs of source
// and target types. Covariant candidates come from positions where the source
// flows into the type parameter, contravariant ones from parameter positions of
// function types. Once the type argument of a parameter has been observed
// through the fixing mapper, the parameter is fixed and later candidates are
// ignored, so that arguments are processed strictly left to right.
package infer

import (
	"slices"

	"github.com/cottand/strux/frontend/types"
	"github.com/cottand/strux/internal/log"
)

var logger = log.Section("infer")

// Priority ranks candidates by the position they were inferred from. Lower
// values win: candidates of a lower priority discard those of a higher one.
type Priority uint8

const (
	// PriorityDirect is the priority of inferences to the type parameter itself
	PriorityDirect Priority = 0
	// PriorityNakedTypeVariable is the priority of inferences to the only naked
	// type parameter of a union, as in T | undefined
	PriorityNakedTypeVariable Priority = 1 << iota
	// PriorityHomomorphicMappedType is the priority of inferences through { [K in keyof T]: T[K] }
	PriorityHomomorphicMappedType
	// PriorityMappedTypeConstraint is the priority of inferences to K in { [P in K]: X }
	PriorityMappedTypeConstraint
	// PriorityReturnType is the priority of inferences from the contextual type of a call
	PriorityReturnType

	priorityImpliesCombination = PriorityReturnType | PriorityMappedTypeConstraint
	priorityNone               = Priority(0xff)
)

func (p Priority) String() string {
	switch p {
	case PriorityDirect:
		return "direct"
	case PriorityNakedTypeVariable:
		return "naked_type_variable"
	case PriorityHomomorphicMappedType:
		return "homomorphic_mapped_type"
	case PriorityMappedTypeConstraint:
		return "mapped_type_constraint"
	case PriorityReturnType:
		return "return_type"
	case priorityNone:
		return "none"
	}
	return "unknown"
}

// Info is the state of inference for one type parameter
type Info struct {
	TypeParameter    types.TypeID
	Candidates       []types.TypeID
	ContraCandidates []types.TypeID
	// Priority of the candidates collected so far
	Priority Priority
	// TopLevel holds while every candidate was inferred directly to the type
	// parameter rather than to a type nested in another
	TopLevel bool
	Fixed    bool

	inferred types.TypeID
}

// HasCandidates reports whether any inference was made for the parameter
func (i *Info) HasCandidates() bool {
	return len(i.Candidates) > 0 || len(i.ContraCandidates) > 0
}

func newInfo(tp types.TypeID) *Info {
	return &Info{TypeParameter: tp, Priority: priorityNone, TopLevel: true}
}

// Context infers type arguments for a list of type parameters
type Context struct {
	s     *types.Store
	infos []*Info

	// Mapper maps each type parameter to its inferred type, fixing it
	Mapper *types.Mapper
	// NonFixingMapper maps each type parameter to its current inferred type
	NonFixingMapper *types.Mapper
}

// NewContext starts inference for typeParams
func NewContext(s *types.Store, typeParams []types.TypeID) *Context {
	c := &Context{s: s, infos: make([]*Info, len(typeParams))}
	for i, tp := range typeParams {
		c.infos[i] = newInfo(tp)
	}
	c.Mapper = types.FuncMapper(func(t types.TypeID) types.TypeID {
		if i := c.indexOf(t); i >= 0 {
			return c.Fix(i)
		}
		return t
	})
	c.NonFixingMapper = types.FuncMapper(func(t types.TypeID) types.TypeID {
		if i := c.indexOf(t); i >= 0 {
			return c.InferredType(i)
		}
		return t
	})
	return c
}

func (c *Context) indexOf(tp types.TypeID) int {
	return slices.IndexFunc(c.infos, func(info *Info) bool { return info.TypeParameter == tp })
}

// Infos exposes the inference state of each type parameter, in declaration order
func (c *Context) Infos() []*Info { return c.infos }

// Infer collects candidates from the occurrences of the context's type
// parameters in target that correspond to parts of source
func (c *Context) Infer(source, target types.TypeID) {
	c.InferWithPriority(source, target, PriorityDirect)
}

// InferWithPriority infers as Infer does, ranking the candidates with priority
func (c *Context) InferWithPriority(source, target types.TypeID, priority Priority) {
	if !source.IsPresent() || !target.IsPresent() {
		return
	}
	w := &walker{c: c, s: c.s, priority: priority, visited: map[visitKey]bool{}}
	w.inferFromTypes(source, target)
}

// Fix computes and freezes the inferred type of the i-th type parameter
func (c *Context) Fix(i int) types.TypeID {
	info := c.infos[i]
	if !info.Fixed {
		t := c.InferredType(i)
		info.Fixed = true
		logger.Debug("fixed type parameter", "param", c.s.TypeString(info.TypeParameter), "type", c.s.TypeString(t))
		c.clearCachedInferences()
		return t
	}
	return info.inferred
}

// IsFixed reports whether the i-th type parameter was fixed
func (c *Context) IsFixed(i int) bool { return c.infos[i].Fixed }

// TypeArguments returns the inferred type of every type parameter
func (c *Context) TypeArguments() []types.TypeID {
	args := make([]types.TypeID, len(c.infos))
	for i := range c.infos {
		args[i] = c.InferredType(i)
	}
	return args
}

func (c *Context) clearCachedInferences() {
	for _, info := range c.infos {
		if !info.Fixed {
			info.inferred = types.NoType
		}
	}
}

// InferredType resolves the type argument of the i-th type parameter from its
// candidates. Covariant candidates are unioned, contravariant ones
// intersected. A parameter with no candidates takes its default, or never
// under strict inference and any otherwise. The result must satisfy the
// constraint of the parameter, which replaces it when it does not.
func (c *Context) InferredType(i int) types.TypeID {
	info := c.infos[i]
	if info.inferred.IsPresent() {
		return info.inferred
	}
	s := c.s
	tp := info.TypeParameter
	var inferred types.TypeID
	switch {
	case len(info.Candidates) > 0:
		inferred = c.covariantInference(info)
	case len(info.ContraCandidates) > 0:
		inferred = s.Intersection(info.ContraCandidates...)
	default:
		if d := s.DefaultOf(tp); d.IsPresent() {
			inferred = s.Instantiate(d, c.backreferenceMapper(i))
		} else if s.Options().StrictInference {
			inferred = s.Never
		} else {
			inferred = s.Any
		}
	}
	// break cycles through constraints that mention the parameter
	info.inferred = inferred

	if constraint := s.ConstraintOf(tp); constraint.IsPresent() {
		instantiated := s.Instantiate(constraint, c.NonFixingMapper)
		if !s.IsAssignable(inferred, instantiated) {
			logger.Debug("inference does not satisfy constraint",
				"param", s.TypeString(tp), "inferred", s.TypeString(inferred), "constraint", s.TypeString(instantiated))
			inferred = instantiated
			info.inferred = inferred
		}
	}
	return inferred
}

func (c *Context) covariantInference(info *Info) types.TypeID {
	s := c.s
	candidates := info.Candidates
	if info.Priority&priorityImpliesCombination != 0 {
		return s.Union(candidates...)
	}
	widen := info.TopLevel && !s.HasPrimitiveConstraint(info.TypeParameter)
	if widen {
		widened := make([]types.TypeID, len(candidates))
		for i, cand := range candidates {
			widened[i] = s.WidenLiteral(cand)
		}
		candidates = widened
	}
	return s.UnionWith(types.ReduceSubtypes, candidates...)
}

// backreferenceMapper instantiates the default of the i-th parameter, in which
// later parameters are not known yet
func (c *Context) backreferenceMapper(i int) *types.Mapper {
	return types.FuncMapper(func(t types.TypeID) types.TypeID {
		j := c.indexOf(t)
		switch {
		case j < 0:
			return t
		case j >= i:
			return c.s.Unknown
		}
		return c.InferredType(j)
	})
}

func (c *Context) addCandidate(info *Info, candidate types.TypeID, priority Priority, contravariant, nested bool) {
	if info.Fixed {
		return
	}
	if priority < info.Priority {
		info.Candidates = nil
		info.ContraCandidates = nil
		info.TopLevel = true
		info.Priority = priority
	}
	if priority != info.Priority {
		return
	}
	if contravariant {
		if !slices.Contains(info.ContraCandidates, candidate) {
			info.ContraCandidates = append(info.ContraCandidates, candidate)
		}
	} else if !slices.Contains(info.Candidates, candidate) {
		info.Candidates = append(info.Candidates, candidate)
	}
	if nested {
		info.TopLevel = false
	}
	c.clearCachedInferences()
}
