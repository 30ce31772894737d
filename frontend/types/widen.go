package types

// BaseTypeOfLiteral maps literal types, and the members of unions, to their primitive
func (s *Store) BaseTypeOfLiteral(id TypeID) TypeID {
	f := s.Flags(id)
	switch {
	case f&FlagUnion != 0:
		return s.MapType(id, s.BaseTypeOfLiteral)
	case f&FlagStringLiteral != 0:
		return s.String
	case f&FlagNumberLiteral != 0:
		return s.Number
	case f&FlagBooleanLiteral != 0:
		return s.Boolean
	}
	return id
}

// WidenLiteral widens fresh literal types, the types of literal expressions, to
// their primitive. Regular literals, such as those written in annotations, are kept.
func (s *Store) WidenLiteral(id TypeID) TypeID {
	f := s.Flags(id)
	switch {
	case f&FlagUnion != 0:
		return s.MapType(id, s.WidenLiteral)
	case f&FlagLiteral != 0 && s.IsFresh(id):
		return s.BaseTypeOfLiteral(id)
	}
	return id
}

// Widen computes the type inferred for a mutable location from the type of its
// initializer. Fresh literals widen, object literal properties widen, and
// without strict null checks null and undefined widen to any.
func (s *Store) Widen(id TypeID) TypeID {
	return s.widen(id, 0)
}

func (s *Store) widen(id TypeID, depth int) TypeID {
	if depth > maxInstantiationDepth {
		return id
	}
	f := s.Flags(id)
	switch {
	case f&FlagNullable != 0 && !s.opts.StrictNullChecks:
		return s.Any
	case f&FlagUnion != 0:
		widened := s.MapType(id, func(m TypeID) TypeID { return s.widen(m, depth+1) })
		if widened == id {
			return id
		}
		return s.UnionWith(ReduceSubtypes, s.Constituents(widened)...)
	case f&FlagLiteral != 0:
		return s.WidenLiteral(id)
	case f&FlagObject != 0 && s.ObjectFlags(id).IsLiteral():
		return s.widenObjectLiteral(id, depth)
	}
	return id
}

func (s *Store) widenObjectLiteral(id TypeID, depth int) TypeID {
	source := s.ResolvedMembers(id)
	m := NewMembers()
	changed := false
	for _, p := range source.Properties {
		t := s.PropertyType(p)
		w := s.widen(t, depth+1)
		changed = changed || w != t
		wp := NewProperty(p.Name, p.Flags, w)
		wp.Symbol = p.Symbol
		wp.Declaration = p.Declaration
		m.Add(wp)
	}
	if !changed {
		return s.Regular(id)
	}
	m.CallSignatures = source.CallSignatures
	m.ConstructSignatures = source.ConstructSignatures
	m.StringIndex = source.StringIndex
	m.NumberIndex = source.NumberIndex
	return s.Object(m, s.ObjectFlags(id)&^(ObjectFresh|ObjectAnonymous))
}

// HasPrimitiveConstraint reports type parameters constrained to primitives, whose
// inferences keep their literal types
func (s *Store) HasPrimitiveConstraint(tp TypeID) bool {
	c := s.ConstraintOf(tp)
	if !c.IsPresent() {
		return false
	}
	return s.SomeType(s.BaseConstraintOf(c), func(m TypeID) bool {
		return s.Is(m, FlagPrimitive|FlagIndex|FlagTemplateLiteral)
	})
}
