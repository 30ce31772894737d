package types

import (
	"slices"

	"github.com/cottand/strux/frontend/diag"
)

// maxUnionSize bounds unions and the cross products of distributing intersections
const maxUnionSize = 100_000

// UnionReduction selects how much simplification Union performs
type UnionReduction uint8

const (
	// ReduceLiterals removes literals whose primitive is also a member
	ReduceLiterals UnionReduction = iota
	// ReduceSubtypes additionally removes members that are subtypes of other members
	ReduceSubtypes
	ReduceNone
)

// Union is the union of types, flattened, deduplicated and in canonical order
func (s *Store) Union(types ...TypeID) TypeID {
	return s.UnionWith(ReduceLiterals, types...)
}

func (s *Store) UnionWith(reduction UnionReduction, types ...TypeID) TypeID {
	switch len(types) {
	case 0:
		return s.Never
	case 1:
		return types[0]
	}
	var includes Flags
	members := make([]TypeID, 0, len(types))
	for _, t := range types {
		for _, m := range s.Constituents(t) {
			f := s.Flags(m)
			includes |= f
			if f&FlagNever != 0 {
				continue
			}
			members = append(members, m)
		}
	}
	switch {
	case includes&FlagAny != 0:
		if slices.Contains(members, s.Error) {
			return s.Error
		}
		return s.Any
	case includes&FlagUnknown != 0:
		return s.Unknown
	}
	slices.Sort(members)
	members = slices.Compact(members)
	if reduction != ReduceNone {
		members = s.removeRedundantLiterals(members, includes)
	}
	if reduction == ReduceSubtypes {
		members = s.removeSubtypes(members)
	}
	switch len(members) {
	case 0:
		return s.Never
	case 1:
		return members[0]
	}
	if len(members) > maxUnionSize {
		s.report(diag.ExcessiveComplexity)
		return s.Error
	}
	return s.newUnion(members)
}

func (s *Store) newUnion(members []TypeID) TypeID {
	return s.interned(newKey('U').ids(members), func() *Type {
		flags := FlagUnion
		if len(members) == 2 && s.Regular(members[0]) == s.False && s.Regular(members[1]) == s.True {
			flags |= FlagBoolean
		}
		return &Type{flags: flags, data: &UnionOrIntersection{Types: members}}
	})
}

func (s *Store) removeRedundantLiterals(members []TypeID, includes Flags) []TypeID {
	return slices.DeleteFunc(members, func(m TypeID) bool {
		f := s.Flags(m)
		switch {
		case f&FlagStringLiteral != 0 && f&FlagEnumLiteral == 0:
			return includes&FlagString != 0
		case f&FlagNumberLiteral != 0 && f&FlagEnumLiteral == 0:
			return includes&FlagNumber != 0
		case f&FlagTemplateLiteral != 0:
			return includes&FlagString != 0
		case f&FlagUndefined != 0:
			return includes&FlagVoid != 0
		}
		return false
	})
}

func (s *Store) removeSubtypes(members []TypeID) []TypeID {
	if len(members)*len(members) > s.opts.MaxRelationWork {
		return members
	}
	removed := make([]bool, len(members))
	for i := len(members) - 1; i >= 0; i-- {
		source := members[i]
		if s.Is(source, FlagUnit|FlagTypeParameter) && !s.Is(source, FlagStructured) {
			// literals are only subsumed by their primitive, which literal reduction handles
			continue
		}
		for j, target := range members {
			if i == j || removed[j] {
				continue
			}
			if s.IsTypeRelatedTo(source, target, RelationStrictSubtype) {
				removed[i] = true
				break
			}
		}
	}
	kept := members[:0:0]
	for i, m := range members {
		if !removed[i] {
			kept = append(kept, m)
		}
	}
	return kept
}

// Intersection is the intersection of types. Intersections of unions
// distribute into unions of intersections.
func (s *Store) Intersection(types ...TypeID) TypeID {
	switch len(types) {
	case 0:
		return s.Unknown
	case 1:
		return types[0]
	}
	var includes Flags
	members := make([]TypeID, 0, len(types))
	for _, t := range types {
		var parts []TypeID
		if s.Is(t, FlagIntersection) {
			parts = As[UnionOrIntersection](s.Get(t)).Types
		} else {
			parts = []TypeID{t}
		}
		for _, m := range parts {
			f := s.Flags(m)
			includes |= f
			if f&FlagUnknown != 0 || slices.Contains(members, m) {
				continue
			}
			members = append(members, m)
		}
	}
	switch {
	case includes&FlagNever != 0:
		return s.Never
	case includes&FlagAny != 0:
		return s.Any
	case s.disjointPrimitives(members):
		return s.Never
	}
	members = s.removeRedundantSupertypes(members)
	switch len(members) {
	case 0:
		return s.Unknown
	case 1:
		return members[0]
	}
	if includes&FlagUnion != 0 {
		return s.distributeIntersection(members)
	}
	return s.interned(newKey('I').ids(members), func() *Type {
		return &Type{flags: FlagIntersection, data: &UnionOrIntersection{Types: members}}
	})
}

// disjointPrimitives reports intersections such as `string & number` and `"a" & "b"`
func (s *Store) disjointPrimitives(members []TypeID) bool {
	var kind Flags
	var unit TypeID
	for _, m := range members {
		f := s.Flags(m)
		var k Flags
		switch {
		case f&FlagStringLike != 0:
			k = FlagString
		case f&FlagNumberLike != 0:
			k = FlagNumber
		case f&FlagBooleanLike != 0:
			k = FlagBoolean
		case f&(FlagVoid|FlagUndefined) != 0:
			k = FlagUndefined
		case f&FlagNull != 0:
			k = FlagNull
		case f&FlagNonPrimitive != 0:
			k = FlagObject
		default:
			continue
		}
		if kind != FlagNone && kind != k {
			return true
		}
		kind = k
		if f&FlagUnit != 0 {
			if unit.IsPresent() && s.Regular(unit) != s.Regular(m) {
				return true
			}
			unit = m
		}
	}
	return false
}

// removeRedundantSupertypes drops primitives implied by a literal member, as in `"a" & string`
func (s *Store) removeRedundantSupertypes(members []TypeID) []TypeID {
	var literals Flags
	for _, m := range members {
		literals |= s.Flags(m) & (FlagStringLiteral | FlagNumberLiteral | FlagTemplateLiteral)
	}
	return slices.DeleteFunc(members, func(m TypeID) bool {
		f := s.Flags(m)
		return f&FlagString != 0 && literals&(FlagStringLiteral|FlagTemplateLiteral) != 0 ||
			f&FlagNumber != 0 && literals&FlagNumberLiteral != 0
	})
}

func (s *Store) distributeIntersection(members []TypeID) TypeID {
	size := 1
	for _, m := range members {
		size *= len(s.Constituents(m))
		if size > maxUnionSize {
			s.report(diag.ExcessiveComplexity)
			return s.Error
		}
	}
	result := make([]TypeID, 0, size)
	combination := make([]TypeID, len(members))
	var walk func(i int)
	walk = func(i int) {
		if i == len(members) {
			result = append(result, s.Intersection(combination...))
			return
		}
		for _, c := range s.Constituents(members[i]) {
			combination[i] = c
			walk(i + 1)
		}
	}
	walk(0)
	return s.Union(result...)
}

// Constituents returns the members of a union, or id alone
func (s *Store) Constituents(id TypeID) []TypeID {
	if s.Is(id, FlagUnion) {
		return As[UnionOrIntersection](s.Get(id)).Types
	}
	return []TypeID{id}
}

// Members returns the members of a union or intersection, or nil
func (s *Store) Members(id TypeID) []TypeID {
	if u := As[UnionOrIntersection](s.Get(id)); u != nil {
		return u.Types
	}
	return nil
}

// MapType applies f to every member of a union, or to id, and unions the results.
// f may return NoType to drop a member.
func (s *Store) MapType(id TypeID, f func(TypeID) TypeID) TypeID {
	if !s.Is(id, FlagUnion) {
		if r := f(id); r.IsPresent() {
			return r
		}
		return s.Never
	}
	var mapped []TypeID
	changed := false
	for _, m := range s.Constituents(id) {
		r := f(m)
		changed = changed || r != m
		if r.IsPresent() {
			mapped = append(mapped, r)
		}
	}
	if !changed {
		return id
	}
	return s.Union(mapped...)
}

// FilterType keeps the members of a union for which keep holds
func (s *Store) FilterType(id TypeID, keep func(TypeID) bool) TypeID {
	if !s.Is(id, FlagUnion) {
		if keep(id) {
			return id
		}
		return s.Never
	}
	members := s.Constituents(id)
	kept := make([]TypeID, 0, len(members))
	for _, m := range members {
		if keep(m) {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(members) {
		return id
	}
	return s.Union(kept...)
}

// SomeType reports whether pred holds for some member of a union, or for id
func (s *Store) SomeType(id TypeID, pred func(TypeID) bool) bool {
	return slices.ContainsFunc(s.Constituents(id), pred)
}

// EveryType reports whether pred holds for every member of a union, or for id
func (s *Store) EveryType(id TypeID, pred func(TypeID) bool) bool {
	for _, m := range s.Constituents(id) {
		if !pred(m) {
			return false
		}
	}
	return true
}

// ContainsType reports whether the union id has member m
func (s *Store) ContainsType(id, m TypeID) bool {
	_, found := slices.BinarySearch(s.Constituents(id), m)
	return found
}

// RemoveNullable removes null and undefined
func (s *Store) RemoveNullable(id TypeID) TypeID {
	return s.FilterType(id, func(m TypeID) bool { return !s.Is(m, FlagNullable) })
}

// AddOptionality adds undefined when strict null checks are on
func (s *Store) AddOptionality(id TypeID) TypeID {
	if !s.opts.StrictNullChecks {
		return id
	}
	return s.Union(id, s.Undefined)
}
