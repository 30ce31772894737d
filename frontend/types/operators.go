package types

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cottand/strux/frontend/ast"
)

// IsGeneric reports types whose structure depends on unresolved type variables at
// the top level, so that operators on them must be deferred
func (s *Store) IsGeneric(id TypeID) bool {
	t := s.Get(id)
	if t == nil {
		return false
	}
	switch {
	case t.flags&FlagInstantiable != 0:
		return true
	case t.flags&FlagUnionOrIntersection != 0:
		return slices.ContainsFunc(t.data.(*UnionOrIntersection).Types, s.IsGeneric)
	}
	return s.IsGenericMapped(id)
}

// IndexTypeOf is `keyof t`
func (s *Store) IndexTypeOf(id TypeID) TypeID {
	f := s.Flags(id)
	switch {
	case f&FlagUnion != 0:
		members := s.Members(id)
		keys := make([]TypeID, len(members))
		for i, m := range members {
			keys[i] = s.IndexTypeOf(m)
		}
		return s.Intersection(keys...)
	case f&FlagIntersection != 0:
		members := s.Members(id)
		keys := make([]TypeID, len(members))
		for i, m := range members {
			keys[i] = s.IndexTypeOf(m)
		}
		return s.Union(keys...)
	case f&FlagInstantiable != 0 || s.IsGenericMapped(id):
		return s.interned(newKey('K').id(id), func() *Type {
			return &Type{flags: FlagIndex, data: &IndexType{Target: id}}
		})
	case f&(FlagAny|FlagNever) != 0:
		return s.StringOrNumber
	case f&FlagUnknown != 0:
		return s.Never
	}
	if d := As[MappedType](s.Get(id)); d != nil {
		return s.Instantiate(d.ConstraintType, d.Mapper)
	}
	m := s.ResolvedMembers(s.ApparentType(id))
	var keys []TypeID
	for _, p := range m.Properties {
		keys = append(keys, s.StringLiteral(ast.UnescapeName(p.Name)))
	}
	if m.StringIndex != nil {
		keys = append(keys, s.String, s.Number)
	} else if m.NumberIndex != nil {
		keys = append(keys, s.Number)
	}
	return s.Union(keys...)
}

// IndexedAccess is `object[index]`. It reports false when index cannot index object.
func (s *Store) IndexedAccess(object, index TypeID) (TypeID, bool) {
	if s.Is(index, FlagUnion) && !s.IsGeneric(object) {
		ok := true
		r := s.MapType(index, func(part TypeID) TypeID {
			t, partOK := s.IndexedAccess(object, part)
			ok = ok && partOK
			return t
		})
		if !ok {
			return s.Error, false
		}
		return r, true
	}
	if s.IsGeneric(object) || s.IsGeneric(index) {
		if d := As[MappedType](s.Get(object)); d != nil && d.Modifiers&IncludeOptional == 0 && !s.IsGeneric(object) {
			return s.Instantiate(d.TemplateType, s.Prepend(d.TypeParameter, index, d.Mapper)), true
		}
		if d := As[MappedType](s.Get(object)); d != nil && d.Modifiers&(IncludeOptional|ExcludeOptional) == 0 && s.Is(index, FlagTypeParameter) &&
			s.IsTypeRelatedTo(index, s.Instantiate(d.ConstraintType, d.Mapper), RelationAssignable) {
			return s.Instantiate(d.TemplateType, s.Prepend(d.TypeParameter, index, d.Mapper)), true
		}
		return s.interned(newKey('X').id(object).id(index), func() *Type {
			return &Type{flags: FlagIndexedAccess, data: &IndexedAccessType{Object: object, Index: index}}
		}), true
	}
	if s.Is(object, FlagAny) {
		return object, true
	}
	f := s.Flags(index)
	switch {
	case f&(FlagStringLiteral|FlagNumberLiteral) != 0:
		name := PropertyNameOf(s.LiteralValue(index))
		if p := s.PropertyOf(object, name); p != nil {
			return s.ReadType(p), true
		}
		if tuple := s.TupleTarget(object); tuple != nil && IsNumericName(name) {
			if tuple.HasRest() {
				return s.ElementType(object), true
			}
			return s.Error, false
		}
		if f&FlagNumberLiteral != 0 || IsNumericName(name) {
			if info := s.IndexInfoOf(object, true); info != nil {
				return info.Type, true
			}
		}
		if info := s.IndexInfoOf(object, false); info != nil {
			return info.Type, true
		}
	case f&FlagNumber != 0:
		if info := s.IndexInfoOf(object, true); info != nil {
			return info.Type, true
		}
		if info := s.IndexInfoOf(object, false); info != nil {
			return info.Type, true
		}
	case f&FlagStringLike != 0:
		if info := s.IndexInfoOf(object, false); info != nil {
			return info.Type, true
		}
	case f&FlagAny != 0:
		return s.Any, true
	case f&FlagNever != 0:
		return s.Never, true
	}
	return s.Error, false
}

// NewConditionalRoot registers the declared form of a conditional type
func (s *Store) NewConditionalRoot(root ConditionalRoot) *ConditionalRoot {
	r := &root
	s.conditionalRoots = append(s.conditionalRoots, r)
	r.id = uint32(len(s.conditionalRoots))
	return r
}

// Conditional resolves `check extends ext ? t : f` for root under mapper, or
// defers it while its check or extends type is generic
func (s *Store) Conditional(root *ConditionalRoot, mapper *Mapper) TypeID {
	return s.conditionalInstantiation(root, mapper, nil)
}

func (s *Store) conditionalInstantiation(root *ConditionalRoot, mapper *Mapper, alias *Alias) TypeID {
	if root.IsDistributive {
		checkType := s.mapType(mapper, root.CheckType)
		if checkType != root.CheckType {
			if s.Is(checkType, FlagNever) {
				return s.Never
			}
			if s.Is(checkType, FlagUnion) {
				return s.MapType(checkType, func(part TypeID) TypeID {
					return s.resolveConditional(root, s.Prepend(root.CheckType, part, mapper), nil)
				})
			}
		}
	}
	return s.resolveConditional(root, mapper, alias)
}

func (s *Store) resolveConditional(root *ConditionalRoot, mapper *Mapper, alias *Alias) TypeID {
	checkType := s.Instantiate(root.CheckType, mapper)
	extendsType := s.Instantiate(root.ExtendsType, mapper)
	if checkType == s.Error || extendsType == s.Error {
		return s.Error
	}
	combined := mapper
	if len(root.InferTypeParameters) > 0 && !s.IsGeneric(checkType) {
		inferred := make([]TypeID, len(root.InferTypeParameters))
		if s.inferrer != nil {
			inferred = s.inferrer.InferTypeArguments(root.InferTypeParameters, checkType, extendsType)
		}
		for i, tp := range root.InferTypeParameters {
			if !inferred[i].IsPresent() {
				inferred[i] = s.orUnknown(s.ConstraintOf(tp))
			}
		}
		combined = s.Merge(NewMapper(root.InferTypeParameters, inferred), mapper)
	}
	inferredExtends := extendsType
	if combined != mapper {
		inferredExtends = s.Instantiate(root.ExtendsType, combined)
	}
	if !s.IsGeneric(checkType) && !s.IsGeneric(inferredExtends) {
		if s.Is(checkType, FlagAny) && !s.Is(inferredExtends, FlagAnyOrUnknown) {
			return s.Union(s.Instantiate(root.TrueType, combined), s.Instantiate(root.FalseType, mapper))
		}
		if s.IsTypeRelatedTo(checkType, inferredExtends, RelationAssignable) {
			return s.Instantiate(root.TrueType, combined)
		}
		permissive := FuncMapper(func(t TypeID) TypeID {
			if s.Is(t, FlagTypeParameter) {
				return s.Any
			}
			return t
		})
		possiblyTrue := (s.CouldContainTypeVariables(checkType) || s.CouldContainTypeVariables(inferredExtends)) &&
			s.IsTypeRelatedTo(s.Instantiate(checkType, permissive), s.Instantiate(inferredExtends, permissive), RelationAssignable)
		if !possiblyTrue {
			return s.Instantiate(root.FalseType, mapper)
		}
	}
	args := make([]TypeID, len(root.OuterTypeParameters))
	for i, p := range root.OuterTypeParameters {
		args[i] = s.mapType(mapper, p)
	}
	key := newKey('C').u32(root.id).ids(args)
	return s.interned(key, func() *Type {
		t := &Type{
			flags: FlagConditional,
			data: &ConditionalType{
				Root:        root,
				Mapper:      NewMapper(root.OuterTypeParameters, args),
				CheckType:   checkType,
				ExtendsType: extendsType,
			},
		}
		t.alias = alias
		return t
	})
}

func (s *Store) orUnknown(id TypeID) TypeID {
	if id.IsPresent() {
		return id
	}
	return s.Unknown
}

func (s *Store) conditionalTrueType(d *ConditionalType) TypeID {
	return s.Instantiate(d.Root.TrueType, d.Mapper)
}

func (s *Store) conditionalFalseType(d *ConditionalType) TypeID {
	return s.Instantiate(d.Root.FalseType, d.Mapper)
}

// TemplateLiteral builds `${...}` types. Literal holes fold into the texts,
// unions distribute, and a template without holes is a string literal.
func (s *Store) TemplateLiteral(texts []string, holes []TypeID) TypeID {
	for i, h := range holes {
		switch {
		case s.Is(h, FlagNever):
			return s.Never
		case s.Is(h, FlagUnion):
			return s.MapType(h, func(part TypeID) TypeID {
				replaced := slices.Clone(holes)
				replaced[i] = part
				return s.TemplateLiteral(texts, replaced)
			})
		}
	}
	var outTexts []string
	var outHoles []TypeID
	current := texts[0]
	for i, h := range holes {
		f := s.Flags(h)
		switch {
		case f&(FlagStringLiteral|FlagNumberLiteral|FlagBooleanLiteral) != 0:
			current += literalText(s.LiteralValue(h)) + texts[i+1]
			continue
		case f&FlagTemplateLiteral != 0:
			inner := As[TemplateLiteralType](s.Get(h))
			current += inner.Texts[0]
			for j, ih := range inner.Types {
				outTexts = append(outTexts, current)
				outHoles = append(outHoles, ih)
				current = inner.Texts[j+1]
			}
			current += texts[i+1]
			continue
		case f&(FlagString|FlagNumber|FlagAny|FlagInstantiable) == 0:
			h = s.String
		}
		outTexts = append(outTexts, current)
		outHoles = append(outHoles, h)
		current = texts[i+1]
	}
	outTexts = append(outTexts, current)
	if len(outHoles) == 0 {
		return s.StringLiteral(current)
	}
	if len(outHoles) == 1 && outTexts[0] == "" && outTexts[1] == "" && s.Is(outHoles[0], FlagString) {
		return s.String
	}
	key := newKey('P')
	for _, t := range outTexts {
		key.str(t)
	}
	key.ids(outHoles)
	return s.interned(key, func() *Type {
		return &Type{flags: FlagTemplateLiteral, data: &TemplateLiteralType{Texts: outTexts, Types: outHoles}}
	})
}

func literalText(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return ast.FormatNumber(v)
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// matchesTemplate reports whether the string literal value is an instance of the template
func (s *Store) matchesTemplate(value string, tpl *TemplateLiteralType) bool {
	head, tail := tpl.Texts[0], tpl.Texts[len(tpl.Texts)-1]
	if len(value) < len(head)+len(tail) || !strings.HasPrefix(value, head) || !strings.HasSuffix(value, tail) {
		return false
	}
	return s.matchHoles(value[len(head):len(value)-len(tail)], tpl, 0)
}

func (s *Store) matchHoles(rest string, tpl *TemplateLiteralType, i int) bool {
	if i == len(tpl.Types)-1 {
		return s.holeAccepts(tpl.Types[i], rest)
	}
	sep := tpl.Texts[i+1]
	for p := 0; p <= len(rest)-len(sep); p++ {
		if !strings.HasPrefix(rest[p:], sep) {
			continue
		}
		if s.holeAccepts(tpl.Types[i], rest[:p]) && s.matchHoles(rest[p+len(sep):], tpl, i+1) {
			return true
		}
	}
	return false
}

func (s *Store) holeAccepts(hole TypeID, text string) bool {
	f := s.Flags(hole)
	switch {
	case f&(FlagString|FlagAny) != 0:
		return true
	case f&FlagNumber != 0:
		if strings.TrimSpace(text) != text || text == "" {
			return false
		}
		_, err := strconv.ParseFloat(text, 64)
		return err == nil
	case f&FlagStringLiteral != 0:
		return s.LiteralValue(hole) == text
	case f&FlagTypeParameter != 0:
		if c := s.BaseConstraintOf(hole); c.IsPresent() {
			return s.holeAccepts(c, text)
		}
		return true
	case f&FlagUnion != 0:
		return s.SomeType(hole, func(m TypeID) bool { return s.holeAccepts(m, text) })
	}
	return false
}
