package types

import (
	"slices"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
)

const (
	maxInstantiationDepth = 100
	maxInstantiationCount = 5_000_000
)

// Mapper maps type parameters to types. The zero value maps nothing.
type Mapper struct {
	sources []TypeID
	targets []TypeID
	fn      func(TypeID) TypeID
	// composite mappers apply first, then instantiate the result with second
	first, second *Mapper
}

// NewMapper maps each of sources to the target at the same index
func NewMapper(sources, targets []TypeID) *Mapper {
	return &Mapper{sources: sources, targets: targets[:min(len(targets), len(sources))]}
}

// FuncMapper maps with f, which returns its argument for types it leaves alone
func FuncMapper(f func(TypeID) TypeID) *Mapper {
	return &Mapper{fn: f}
}

// Compose applies m1 and then m2
func Compose(m1, m2 *Mapper) *Mapper {
	switch {
	case m1 == nil:
		return m2
	case m2 == nil:
		return m1
	}
	return &Mapper{first: m1, second: m2}
}

// Prepend maps source to target before consulting m
func (s *Store) Prepend(source, target TypeID, m *Mapper) *Mapper {
	return s.Merge(NewMapper([]TypeID{source}, []TypeID{target}), m)
}

// Merge consults m1 and falls back to m2 for what m1 leaves unmapped
func (s *Store) Merge(m1, m2 *Mapper) *Mapper {
	switch {
	case m1 == nil:
		return m2
	case m2 == nil:
		return m1
	}
	return FuncMapper(func(t TypeID) TypeID {
		if r := s.mapType(m1, t); r != t {
			return r
		}
		return s.mapType(m2, t)
	})
}

// lookup maps t with a simple or function mapper
func (m *Mapper) lookup(t TypeID) TypeID {
	if m == nil {
		return t
	}
	if m.fn != nil {
		return m.fn(t)
	}
	for i, s := range m.sources {
		if s == t {
			if i < len(m.targets) && m.targets[i].IsPresent() {
				return m.targets[i]
			}
			return t
		}
	}
	return t
}

// Sources lists the type parameters of a simple mapper
func (m *Mapper) Sources() []TypeID {
	if m == nil {
		return nil
	}
	return m.sources
}

func (s *Store) mapType(m *Mapper, t TypeID) TypeID {
	if m == nil {
		return t
	}
	if m.first != nil {
		return s.Instantiate(s.mapType(m.first, t), m.second)
	}
	return m.lookup(t)
}

// Map applies m to the type parameter t
func (s *Store) Map(m *Mapper, t TypeID) TypeID { return s.mapType(m, t) }

func (s *Store) mapList(m *Mapper, ids []TypeID) []TypeID {
	var out []TypeID
	for i, id := range ids {
		r := s.Instantiate(id, m)
		if r != id && out == nil {
			out = slices.Clone(ids)
		}
		if out != nil {
			out[i] = r
		}
	}
	if out == nil {
		return ids
	}
	return out
}

// Instantiate replaces the type parameters in t according to m
func (s *Store) Instantiate(t TypeID, m *Mapper) TypeID {
	if m == nil || !t.IsPresent() {
		return t
	}
	if s.instantiationDepth == maxInstantiationDepth || s.instantiationCount >= maxInstantiationCount {
		logger.Debug("instantiation too deep", "depth", s.instantiationDepth, "count", s.instantiationCount)
		s.report(diag.InstantiationExcessivelyDeep)
		return s.Error
	}
	s.instantiationDepth++
	s.instantiationCount++
	defer func() { s.instantiationDepth-- }()
	return s.instantiateWorker(t, m)
}

func (s *Store) instantiateWorker(id TypeID, m *Mapper) TypeID {
	t := s.Get(id)
	switch {
	case t.flags&FlagTypeParameter != 0:
		return s.mapType(m, id)
	case t.flags&FlagObject != 0:
		return s.instantiateObject(t, m)
	case t.flags&FlagUnion != 0:
		members := t.data.(*UnionOrIntersection).Types
		mapped := s.mapList(m, members)
		if &mapped[0] == &members[0] {
			return id
		}
		return s.Union(mapped...)
	case t.flags&FlagIntersection != 0:
		members := t.data.(*UnionOrIntersection).Types
		mapped := s.mapList(m, members)
		if &mapped[0] == &members[0] {
			return id
		}
		return s.Intersection(mapped...)
	case t.flags&FlagIndex != 0:
		return s.IndexTypeOf(s.Instantiate(t.data.(*IndexType).Target, m))
	case t.flags&FlagIndexedAccess != 0:
		d := t.data.(*IndexedAccessType)
		r, _ := s.IndexedAccess(s.Instantiate(d.Object, m), s.Instantiate(d.Index, m))
		return r
	case t.flags&FlagConditional != 0:
		d := t.data.(*ConditionalType)
		var alias *Alias
		if t.alias != nil {
			alias = &Alias{Symbol: t.alias.Symbol, Args: s.mapList(m, t.alias.Args)}
		}
		return s.conditionalInstantiation(d.Root, Compose(d.Mapper, m), alias)
	case t.flags&FlagTemplateLiteral != 0:
		d := t.data.(*TemplateLiteralType)
		return s.TemplateLiteral(d.Texts, s.mapList(m, d.Types))
	}
	return id
}

func (s *Store) instantiateObject(t *Type, m *Mapper) TypeID {
	switch d := t.data.(type) {
	case *TypeReference:
		args := s.mapList(m, d.Args)
		if len(args) > 0 && &args[0] == &d.Args[0] {
			return t.id
		}
		return s.Reference(d.Target, args...)
	case *AnonymousType:
		if len(d.OuterTypeParameters) == 0 {
			if t.members != nil && d.Declaration == ast.NoNode && s.membersContain(t.members, map[TypeID]bool{}) {
				return s.Object(s.instantiateMembers(t.members, m), t.objectFlags&^ObjectInstantiated)
			}
			return t.id
		}
		return s.instantiateDeclared(t, d.OuterTypeParameters, d.Target, d.Mapper, m, nil)
	case *MappedType:
		return s.instantiateMapped(t, d, m)
	}
	return t.id
}

// instantiateDeclared instantiates an anonymous or mapped type through its outer
// type parameters. Instantiations of one declaration with the same arguments share an id.
// fixed, when set, overrides the arguments of some outer type parameters.
func (s *Store) instantiateDeclared(t *Type, outer []TypeID, target TypeID, prev, m, fixed *Mapper) TypeID {
	if !target.IsPresent() {
		target = t.id
	}
	args := make([]TypeID, len(outer))
	changed := false
	for i, p := range outer {
		a := s.mapType(prev, p)
		if r := fixed.lookup(p); r != p {
			args[i] = r
		} else {
			args[i] = s.Instantiate(a, m)
		}
		changed = changed || args[i] != a
	}
	if !changed {
		return t.id
	}
	identity := true
	for i, p := range outer {
		identity = identity && args[i] == p
	}
	if identity {
		return target
	}
	s.metrics.Instantiations.Inc()
	tt := s.Get(target)
	return s.interned(newKey('A').id(target).ids(args), func() *Type {
		inst := &Type{
			flags:       tt.flags,
			objectFlags: tt.objectFlags | ObjectInstantiated,
			symbol:      tt.symbol,
		}
		mapper := NewMapper(outer, args)
		switch d := tt.data.(type) {
		case *AnonymousType:
			inst.data = &AnonymousType{Declaration: d.Declaration, OuterTypeParameters: outer, Target: target, Mapper: mapper}
		case *MappedType:
			cp := *d
			cp.Target, cp.Mapper = target, mapper
			inst.data = &cp
		}
		if tt.alias != nil {
			inst.alias = &Alias{Symbol: tt.alias.Symbol, Args: s.mapList(mapper, tt.alias.Args)}
		}
		return inst
	})
}

func (s *Store) instantiateMapped(t *Type, d *MappedType, m *Mapper) TypeID {
	// a homomorphic mapped type over T distributes over unions substituted for T,
	// and maps primitives to themselves
	if c := s.Get(d.ConstraintType); c != nil && c.flags&FlagIndex != 0 {
		operand := c.data.(*IndexType).Target
		if s.Is(operand, FlagTypeParameter) {
			mapped := s.Instantiate(s.mapType(d.Mapper, operand), m)
			if mapped != operand {
				return s.MapType(mapped, func(part TypeID) TypeID {
					switch {
					case s.Is(part, FlagAnyOrUnknown|FlagInstantiable|FlagObject|FlagNonPrimitive|FlagIntersection):
						fixed := NewMapper([]TypeID{operand}, []TypeID{part})
						if s.IsArray(part) {
							inner := s.Merge(fixed, Compose(d.Mapper, m))
							return s.ArrayOf(s.Instantiate(d.TemplateType, s.Prepend(d.TypeParameter, s.Number, inner)))
						}
						return s.instantiateDeclared(t, d.OuterTypeParameters, d.Target, d.Mapper, m, fixed)
					}
					return part
				})
			}
		}
	}
	return s.instantiateDeclared(t, d.OuterTypeParameters, d.Target, d.Mapper, m, nil)
}

// InstantiateSignature instantiates the parameter and return types of sig. The
// type parameters of sig itself are kept unless m maps them.
func (s *Store) InstantiateSignature(sig *Signature, m *Mapper) *Signature {
	if m == nil {
		return sig
	}
	inst := &Signature{
		Declaration:    sig.Declaration,
		TypeParameters: sig.TypeParameters,
		MinArgs:        sig.MinArgs,
		Flags:          sig.Flags,
		Target:         sig,
		Mapper:         m,
	}
	if len(sig.TypeParameters) > 0 {
		var kept []TypeID
		for _, tp := range sig.TypeParameters {
			if s.mapType(m, tp) == tp {
				kept = append(kept, tp)
			}
		}
		inst.TypeParameters = kept
	}
	inst.Params = make([]Param, len(sig.Params))
	for i, p := range sig.Params {
		p.Type = s.Instantiate(p.Type, m)
		inst.Params[i] = p
	}
	if sig.Predicate != nil {
		pred := *sig.Predicate
		pred.Type = s.Instantiate(pred.Type, m)
		inst.Predicate = &pred
	}
	inst.SetReturnResolver(func() TypeID { return s.Instantiate(s.ReturnType(sig), m) })
	return inst
}

// SignatureInstantiation instantiates the type parameters of a generic signature
// with typeArgs. Equal arguments produce the same *Signature.
func (s *Store) SignatureInstantiation(sig *Signature, typeArgs []TypeID) *Signature {
	if len(sig.TypeParameters) == 0 {
		return sig
	}
	typeArgs = s.fillMissingTypeArguments(typeArgs, sig.TypeParameters)
	key := string(newKey('S').ids(typeArgs).buf)
	if inst, ok := sig.instantiations[key]; ok {
		return inst
	}
	if sig.instantiations == nil {
		sig.instantiations = map[string]*Signature{}
	}
	inst := s.InstantiateSignature(sig, NewMapper(sig.TypeParameters, typeArgs))
	sig.instantiations[key] = inst
	return inst
}

// ErasedSignature replaces the type parameters of sig with any
func (s *Store) ErasedSignature(sig *Signature) *Signature {
	if len(sig.TypeParameters) == 0 {
		return sig
	}
	if sig.erased == nil {
		args := make([]TypeID, len(sig.TypeParameters))
		for i := range args {
			args[i] = s.Any
		}
		sig.erased = s.InstantiateSignature(sig, NewMapper(sig.TypeParameters, args))
	}
	return sig.erased
}

// CouldContainTypeVariables reports types that instantiation may change
func (s *Store) CouldContainTypeVariables(id TypeID) bool {
	return s.couldContain(id, map[TypeID]bool{})
}

func (s *Store) couldContain(id TypeID, seen map[TypeID]bool) bool {
	if seen[id] {
		return false
	}
	seen[id] = true
	t := s.Get(id)
	if t == nil {
		return false
	}
	switch {
	case t.flags&FlagInstantiable != 0:
		return true
	case t.flags&FlagUnionOrIntersection != 0:
		for _, m := range t.data.(*UnionOrIntersection).Types {
			if s.couldContain(m, seen) {
				return true
			}
		}
	case t.flags&FlagObject != 0:
		switch d := t.data.(type) {
		case *TypeReference:
			for _, a := range d.Args {
				if s.couldContain(a, seen) {
					return true
				}
			}
		case *AnonymousType:
			if d.Target.IsPresent() {
				for _, p := range d.OuterTypeParameters {
					if s.couldContain(s.mapType(d.Mapper, p), seen) {
						return true
					}
				}
				return false
			}
			if len(d.OuterTypeParameters) > 0 {
				return true
			}
			if t.members != nil {
				return s.membersContain(t.members, seen)
			}
		case *MappedType:
			if d.Target.IsPresent() {
				for _, p := range d.OuterTypeParameters {
					if s.couldContain(s.mapType(d.Mapper, p), seen) {
						return true
					}
				}
				return false
			}
			return true
		}
	}
	return false
}

func (s *Store) membersContain(m *Members, seen map[TypeID]bool) bool {
	for _, p := range m.Properties {
		if p.state == resolved && s.couldContain(p.typ, seen) {
			return true
		}
	}
	for _, sig := range slices.Concat(m.CallSignatures, m.ConstructSignatures) {
		if len(sig.TypeParameters) > 0 {
			return true
		}
		for _, p := range sig.Params {
			if s.couldContain(p.Type, seen) {
				return true
			}
		}
		if sig.returnState == resolved && s.couldContain(sig.returnType, seen) {
			return true
		}
	}
	for _, info := range []*IndexInfo{m.StringIndex, m.NumberIndex} {
		if info != nil && s.couldContain(info.Type, seen) {
			return true
		}
	}
	return false
}
