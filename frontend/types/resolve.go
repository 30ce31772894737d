package types

import (
	"slices"
	"strconv"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
)

// PropertyType resolves the declared type of p. A property whose type depends
// on itself resolves to any.
func (s *Store) PropertyType(p *Property) TypeID {
	switch p.state {
	case resolving:
		return s.Any
	case unresolved:
		p.state = resolving
		t := s.Any
		if p.resolve != nil {
			t = p.resolve()
		}
		if p.state == resolving {
			p.typ, p.state = t, resolved
		}
	}
	return p.typ
}

// ReadType is the type observed when reading p, which for optional properties includes undefined
func (s *Store) ReadType(p *Property) TypeID {
	t := s.PropertyType(p)
	if p.IsOptional() {
		return s.AddOptionality(t)
	}
	return t
}

// ReturnType resolves the return type of sig. A return type that depends on
// itself resolves to any.
func (s *Store) ReturnType(sig *Signature) TypeID {
	switch sig.returnState {
	case resolving:
		return s.Any
	case unresolved:
		sig.returnState = resolving
		t := s.Any
		if sig.resolveReturn != nil {
			t = sig.resolveReturn()
		}
		if sig.returnState == resolving {
			sig.returnType, sig.returnState = t, resolved
		}
	}
	return sig.returnType
}

// IsResolvingReturnType reports whether sig's return type is being computed
func (s *Store) IsResolvingReturnType(sig *Signature) bool {
	return sig.returnState == resolving
}

// ParamType is the type of the argument at position i, looking through a rest
// parameter to its element type. It returns NoType past the last parameter.
func (s *Store) ParamType(sig *Signature, i int) TypeID {
	n := len(sig.Params)
	if sig.HasRest() && i >= n-1 {
		rest := sig.Params[n-1].Type
		if elems := s.TupleElements(rest); elems != nil {
			if j := i - (n - 1); j < len(elems) {
				return elems[j]
			}
			return NoType
		}
		if e := s.ElementType(rest); e.IsPresent() {
			return e
		}
		return s.Any
	}
	if i < n {
		return sig.Params[i].Type
	}
	return NoType
}

// ResolvedMembers returns the structure of an object, union or intersection type.
// Other types have no members; see ApparentType.
func (s *Store) ResolvedMembers(id TypeID) *Members {
	t := s.Get(id)
	if t == nil || t.flags&FlagStructured == 0 {
		return emptyMembers
	}
	if t.members != nil {
		return t.members
	}
	if t.resolving {
		return emptyMembers
	}
	t.resolving = true
	m := s.resolveMembers(t)
	t.resolving = false
	t.members = m
	return m
}

func (s *Store) resolveMembers(t *Type) *Members {
	switch d := t.data.(type) {
	case *InterfaceType:
		return s.DeclaredMembers(t.id)
	case *TypeReference:
		if tuple := s.TupleTarget(t.id); tuple != nil {
			return s.tupleMembers(tuple, d.Args)
		}
		target := As[InterfaceType](s.Get(d.Target))
		return s.instantiateMembers(s.DeclaredMembers(d.Target), NewMapper(target.TypeParameters, d.Args))
	case *AnonymousType:
		if d.Target.IsPresent() {
			return s.instantiateMembers(s.ResolvedMembers(d.Target), d.Mapper)
		}
		if d.resolve != nil {
			return d.resolve()
		}
	case *MappedType:
		return s.mappedMembers(d)
	case *UnionOrIntersection:
		if t.flags&FlagUnion != 0 {
			return s.unionMembers(d.Types)
		}
		return s.intersectionMembers(d.Types)
	}
	return emptyMembers
}

// instantiateMembers maps every member lazily
func (s *Store) instantiateMembers(m *Members, mapper *Mapper) *Members {
	if m.IsEmpty() {
		return m
	}
	out := NewMembers()
	for _, p := range m.Properties {
		p := p
		inst := &Property{Name: p.Name, Flags: p.Flags, Symbol: p.Symbol, Declaration: p.Declaration}
		if p.state == resolved {
			inst.typ, inst.state = s.Instantiate(p.typ, mapper), resolved
		} else {
			inst.resolve = func() TypeID { return s.Instantiate(s.PropertyType(p), mapper) }
		}
		out.Add(inst)
	}
	for _, sig := range m.CallSignatures {
		out.CallSignatures = append(out.CallSignatures, s.InstantiateSignature(sig, mapper))
	}
	for _, sig := range m.ConstructSignatures {
		out.ConstructSignatures = append(out.ConstructSignatures, s.InstantiateSignature(sig, mapper))
	}
	out.StringIndex = s.instantiateIndexInfo(m.StringIndex, mapper)
	out.NumberIndex = s.instantiateIndexInfo(m.NumberIndex, mapper)
	return out
}

func (s *Store) instantiateIndexInfo(info *IndexInfo, mapper *Mapper) *IndexInfo {
	if info == nil {
		return nil
	}
	cp := *info
	cp.Type = s.Instantiate(info.Type, mapper)
	return &cp
}

func (s *Store) tupleMembers(tuple *InterfaceType, elems []TypeID) *Members {
	elem := s.Union(elems...)
	if tuple.HasRest() {
		last := len(elems) - 1
		elems = slices.Clone(elems)
		elems[last] = s.ElementTypeOr(elems[last], s.Any)
		elem = s.Union(elems...)
	}
	m := NewMembers()
	base := s.ResolvedMembers(s.ArrayOf(elem))
	for _, p := range base.Properties {
		m.Add(p)
	}
	m.CallSignatures = base.CallSignatures
	m.StringIndex = base.StringIndex
	m.NumberIndex = &IndexInfo{KeyType: s.Number, Type: elem, Readonly: tuple.Readonly}
	for i, e := range elems {
		f := tuple.ElementFlags[i]
		if f&ElementRest != 0 {
			break
		}
		var flags PropertyFlags
		if f&ElementOptional != 0 {
			flags |= PropertyOptional
		}
		if tuple.Readonly {
			flags |= PropertyReadonly
		}
		m.Add(NewProperty(strconv.Itoa(i), flags, e))
	}
	length := s.Number
	if !tuple.HasRest() && tuple.MinLength() == tuple.Arity() {
		length = s.NumberLiteral(float64(tuple.Arity()))
	}
	m.Add(NewProperty("length", PropertyReadonly, length))
	return m
}

// ElementTypeOr is the element type of an array or tuple, or fallback
func (s *Store) ElementTypeOr(id, fallback TypeID) TypeID {
	if e := s.ElementType(id); e.IsPresent() {
		return e
	}
	return fallback
}

func (s *Store) unionMembers(types []TypeID) *Members {
	m := NewMembers()
	resolved := make([]*Members, len(types))
	for i, t := range types {
		resolved[i] = s.ResolvedMembers(s.ApparentType(t))
	}
	// a property exists on a union when it exists on every member
	for _, p := range resolved[0].Properties {
		props := []*Property{p}
		for _, other := range resolved[1:] {
			q := other.Property(p.Name)
			if q == nil {
				props = nil
				break
			}
			props = append(props, q)
		}
		if props == nil {
			continue
		}
		m.Add(s.syntheticProperty(p.Name, props, true))
	}
	m.CallSignatures = s.unionSignatures(resolved, SignatureCall)
	m.ConstructSignatures = s.unionSignatures(resolved, SignatureConstruct)
	m.StringIndex = s.combinedIndexInfo(resolved, false, true)
	m.NumberIndex = s.combinedIndexInfo(resolved, true, true)
	return m
}

func (s *Store) intersectionMembers(types []TypeID) *Members {
	m := NewMembers()
	var resolved []*Members
	for _, t := range types {
		resolved = append(resolved, s.ResolvedMembers(s.ApparentType(t)))
	}
	var names []string
	byName := map[string][]*Property{}
	for _, r := range resolved {
		for _, p := range r.Properties {
			if _, ok := byName[p.Name]; !ok {
				names = append(names, p.Name)
			}
			byName[p.Name] = append(byName[p.Name], p)
		}
		m.CallSignatures = append(m.CallSignatures, r.CallSignatures...)
		m.ConstructSignatures = append(m.ConstructSignatures, r.ConstructSignatures...)
	}
	for _, name := range names {
		m.Add(s.syntheticProperty(name, byName[name], false))
	}
	m.StringIndex = s.combinedIndexInfo(resolved, false, false)
	m.NumberIndex = s.combinedIndexInfo(resolved, true, false)
	return m
}

// syntheticProperty combines the same property of several union or intersection members
func (s *Store) syntheticProperty(name string, props []*Property, union bool) *Property {
	if len(props) == 1 {
		return props[0]
	}
	var flags PropertyFlags
	optional := !union
	for _, p := range props {
		if union {
			optional = optional || p.IsOptional()
		} else {
			optional = optional && p.IsOptional()
		}
		flags |= p.Flags & PropertyReadonly
	}
	if optional {
		flags |= PropertyOptional
	}
	return NewLazyProperty(name, flags, func() TypeID {
		ts := make([]TypeID, len(props))
		for i, p := range props {
			ts[i] = s.PropertyType(p)
		}
		if union {
			return s.Union(ts...)
		}
		return s.Intersection(ts...)
	})
}

// unionSignatures keeps signatures when every member has exactly one with the
// same number of parameters; the parameters intersect and the returns unite
func (s *Store) unionSignatures(resolved []*Members, kind SignatureKind) []*Signature {
	var sigs []*Signature
	for _, r := range resolved {
		rs := r.Signatures(kind)
		if len(rs) != 1 || len(rs[0].TypeParameters) > 0 {
			return nil
		}
		if len(sigs) > 0 && (len(rs[0].Params) != len(sigs[0].Params) || rs[0].HasRest() != sigs[0].HasRest()) {
			return nil
		}
		sigs = append(sigs, rs[0])
	}
	if len(sigs) == 0 {
		return nil
	}
	first := sigs[0]
	if len(sigs) == 1 {
		return []*Signature{first}
	}
	params := make([]Param, len(first.Params))
	minArgs := 0
	for i, p := range first.Params {
		ts := make([]TypeID, len(sigs))
		for j, sig := range sigs {
			ts[j] = sig.Params[i].Type
			minArgs = max(minArgs, sig.MinArgs)
		}
		p.Type = s.Intersection(ts...)
		params[i] = p
	}
	combined := &Signature{Params: params, MinArgs: minArgs, Flags: first.Flags &^ SignatureMethod}
	combined.SetReturnResolver(func() TypeID {
		ts := make([]TypeID, len(sigs))
		for j, sig := range sigs {
			ts[j] = s.ReturnType(sig)
		}
		return s.Union(ts...)
	})
	return []*Signature{combined}
}

func (s *Store) combinedIndexInfo(resolved []*Members, number, union bool) *IndexInfo {
	var ts []TypeID
	readonly := false
	for _, r := range resolved {
		info := r.IndexInfo(number)
		if info == nil && number {
			info = r.StringIndex
		}
		if info == nil {
			if union {
				return nil
			}
			continue
		}
		ts = append(ts, info.Type)
		readonly = readonly || info.Readonly
	}
	if len(ts) == 0 {
		return nil
	}
	key := s.String
	if number {
		key = s.Number
	}
	combined := s.Intersection(ts...)
	if union {
		combined = s.Union(ts...)
	}
	return &IndexInfo{KeyType: key, Type: combined, Readonly: readonly}
}

// ApparentType is the type whose members are visible on values of type id:
// primitives have the members of their global interfaces, and type variables
// those of their constraints
func (s *Store) ApparentType(id TypeID) TypeID {
	t := s.Get(id)
	if t == nil {
		return id
	}
	f := t.flags
	switch {
	case f&FlagInstantiable != 0:
		c := s.BaseConstraintOf(id)
		if !c.IsPresent() || c == id {
			return s.EmptyObject
		}
		return s.ApparentType(c)
	case f&FlagStringLike != 0:
		return s.orEmpty(s.globals.String)
	case f&FlagNumberLike != 0:
		return s.orEmpty(s.globals.Number)
	case f&FlagBooleanLike != 0 && f&FlagUnion == 0:
		return s.orEmpty(s.globals.Boolean)
	case f&FlagNonPrimitive != 0:
		return s.orEmpty(s.globals.Object)
	case f&FlagUnknown != 0:
		return s.EmptyObject
	}
	return id
}

func (s *Store) orEmpty(id TypeID) TypeID {
	if id.IsPresent() {
		return id
	}
	return s.EmptyObject
}

// BaseConstraintOf is the constraint a type variable is known to satisfy, with
// nested type variables resolved to their own constraints. It returns NoType
// when the constraint is unknown or circular.
func (s *Store) BaseConstraintOf(id TypeID) TypeID {
	return s.baseConstraint(id, 0)
}

func (s *Store) baseConstraint(id TypeID, depth int) TypeID {
	if depth > 50 {
		return NoType
	}
	t := s.Get(id)
	switch d := t.data.(type) {
	case *TypeParameter:
		c := s.ConstraintOf(id)
		if !c.IsPresent() {
			return NoType
		}
		if s.Is(c, FlagInstantiable) {
			return s.baseConstraint(c, depth+1)
		}
		return c
	case *IndexType:
		return s.StringOrNumber
	case *IndexedAccessType:
		obj := s.constraintOrSelf(d.Object, depth)
		idx := s.constraintOrSelf(d.Index, depth)
		if obj == d.Object && idx == d.Index {
			return NoType
		}
		r, ok := s.IndexedAccess(obj, idx)
		if !ok {
			return NoType
		}
		if s.Is(r, FlagInstantiable) {
			return s.baseConstraint(r, depth+1)
		}
		return r
	case *ConditionalType:
		return s.Union(s.conditionalTrueType(d), s.conditionalFalseType(d))
	case *TemplateLiteralType:
		return s.String
	}
	if t.flags&FlagUnionOrIntersection != 0 {
		members := t.data.(*UnionOrIntersection).Types
		mapped := make([]TypeID, len(members))
		for i, m := range members {
			mapped[i] = s.constraintOrSelf(m, depth)
		}
		if t.flags&FlagUnion != 0 {
			return s.Union(mapped...)
		}
		return s.Intersection(mapped...)
	}
	return id
}

func (s *Store) constraintOrSelf(id TypeID, depth int) TypeID {
	if !s.Is(id, FlagInstantiable) {
		return id
	}
	if c := s.baseConstraint(id, depth+1); c.IsPresent() {
		return c
	}
	return id
}

// PropertiesOf lists the properties of the apparent type of id
func (s *Store) PropertiesOf(id TypeID) []*Property {
	return s.ResolvedMembers(s.ApparentType(id)).Properties
}

// PropertyOf finds a property of the apparent type of id by escaped name.
// Functions see the members of the global Function type.
func (s *Store) PropertyOf(id TypeID, name string) *Property {
	apparent := s.ApparentType(id)
	m := s.ResolvedMembers(apparent)
	if p := m.Property(name); p != nil {
		return p
	}
	if len(m.CallSignatures) > 0 || len(m.ConstructSignatures) > 0 {
		if fn := s.globals.Function; fn.IsPresent() {
			return s.ResolvedMembers(fn).Property(name)
		}
	}
	if apparent != s.globals.Object && s.Is(apparent, FlagObject) && s.globals.Object.IsPresent() {
		return s.ResolvedMembers(s.globals.Object).Property(name)
	}
	return nil
}

// SignaturesOf lists the call or construct signatures of the apparent type of id
func (s *Store) SignaturesOf(id TypeID, kind SignatureKind) []*Signature {
	return s.ResolvedMembers(s.ApparentType(id)).Signatures(kind)
}

// IndexInfoOf returns the string or number index signature of the apparent type of id
func (s *Store) IndexInfoOf(id TypeID, number bool) *IndexInfo {
	return s.ResolvedMembers(s.ApparentType(id)).IndexInfo(number)
}

// IsEmptyObject reports object types without members, such as `{}`
func (s *Store) IsEmptyObject(id TypeID) bool {
	if !s.Is(id, FlagObject) {
		return false
	}
	return s.ResolvedMembers(id).IsEmpty()
}

// IsGenericMapped reports mapped types whose keys are not yet known
func (s *Store) IsGenericMapped(id TypeID) bool {
	d := As[MappedType](s.Get(id))
	if d == nil {
		return false
	}
	return s.CouldContainTypeVariables(s.Instantiate(d.ConstraintType, d.Mapper))
}

// NewMapped creates the declared type of a mapped type
func (s *Store) NewMapped(symbol binder.SymbolID, decl ast.NodeID, typeParam, constraint, template TypeID, mods MappedModifiers, outer []TypeID) TypeID {
	return s.add(&Type{
		flags:       FlagObject,
		objectFlags: ObjectMapped,
		symbol:      symbol,
		data: &MappedType{
			Declaration:         decl,
			TypeParameter:       typeParam,
			ConstraintType:      constraint,
			TemplateType:        template,
			Modifiers:           mods,
			OuterTypeParameters: outer,
		},
	})
}

func (s *Store) mappedMembers(d *MappedType) *Members {
	m := NewMembers()
	constraint := s.Instantiate(d.ConstraintType, d.Mapper)
	var modifiersType TypeID
	if c := As[IndexType](s.Get(d.ConstraintType)); c != nil {
		modifiersType = s.Instantiate(c.Target, d.Mapper)
	}
	templateFor := func(key TypeID) TypeID {
		return s.Instantiate(d.TemplateType, s.Prepend(d.TypeParameter, key, d.Mapper))
	}
	flagsFor := func(source *Property) PropertyFlags {
		var flags PropertyFlags
		switch {
		case d.Modifiers&IncludeOptional != 0:
			flags |= PropertyOptional
		case d.Modifiers&ExcludeOptional == 0 && source != nil && source.IsOptional():
			flags |= PropertyOptional
		}
		switch {
		case d.Modifiers&IncludeReadonly != 0:
			flags |= PropertyReadonly
		case d.Modifiers&ExcludeReadonly == 0 && source != nil && source.Flags.IsReadonly():
			flags |= PropertyReadonly
		}
		return flags
	}
	addKey := func(key TypeID) {
		switch {
		case s.Is(key, FlagStringLiteral|FlagNumberLiteral):
			name := PropertyNameOf(s.LiteralValue(key))
			var source *Property
			if modifiersType.IsPresent() {
				source = s.PropertyOf(modifiersType, name)
			}
			m.Add(NewLazyProperty(name, flagsFor(source), func() TypeID {
				t := templateFor(key)
				if source != nil && source.IsOptional() && d.Modifiers&ExcludeOptional != 0 {
					t = s.FilterType(t, func(m TypeID) bool { return !s.Is(m, FlagUndefined) })
				}
				return t
			}))
		case s.Is(key, FlagString|FlagTemplateLiteral):
			m.StringIndex = &IndexInfo{KeyType: s.String, Type: templateFor(key), Readonly: d.Modifiers&IncludeReadonly != 0}
		case s.Is(key, FlagNumber):
			m.NumberIndex = &IndexInfo{KeyType: s.Number, Type: templateFor(key), Readonly: d.Modifiers&IncludeReadonly != 0}
		}
	}
	if modifiersType.IsPresent() && !s.CouldContainTypeVariables(modifiersType) {
		// homomorphic: keep the declaration order of the mapped type's properties
		for _, p := range s.PropertiesOf(modifiersType) {
			addKey(s.StringLiteral(ast.UnescapeName(p.Name)))
		}
		for _, number := range []bool{false, true} {
			if info := s.IndexInfoOf(modifiersType, number); info != nil {
				addKey(info.KeyType)
			}
		}
		return m
	}
	if s.CouldContainTypeVariables(constraint) {
		return m
	}
	for _, key := range s.Constituents(constraint) {
		addKey(key)
	}
	return m
}

// PropertyNameOf is the escaped property name for a string or number literal value
func PropertyNameOf(v any) string {
	switch v := v.(type) {
	case string:
		return ast.EscapeName(v)
	case float64:
		return ast.FormatNumber(v)
	}
	return ""
}

// IsNumericName reports property names that are canonical numbers, such as tuple indices
func IsNumericName(name string) bool {
	f, err := strconv.ParseFloat(name, 64)
	return err == nil && ast.FormatNumber(f) == name
}
