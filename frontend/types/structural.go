package types

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
)

func (r *relater) structuredTypeRelatedTo(source, target TypeID, report bool) ternary {
	s := r.s
	if r.relation == RelationIdentity {
		return r.identicalStructure(source, target, report)
	}
	sf, tf := s.Flags(source), s.Flags(target)

	if sf&FlagUnion != 0 && tf&FlagUnion != 0 {
		if n, m := len(s.Members(source)), len(s.Members(target)); n*m > s.opts.MaxRelationWork {
			r.overflow = ResultComplexityOverflow
			return ternaryFalse
		}
	}
	switch {
	case sf&FlagUnion != 0:
		if r.relation == RelationComparable {
			return r.someTypeRelatedToType(s.Members(source), target, report)
		}
		return r.eachTypeRelatedToType(s.Members(source), target, report)
	case tf&FlagUnion != 0:
		return r.typeRelatedToSomeType(source, target, report)
	case tf&FlagIntersection != 0:
		return r.typeRelatedToEachType(source, s.Members(target), report)
	case sf&FlagIntersection != 0:
		if res := r.someTypeRelatedToType(s.Members(source), target, false); res != ternaryFalse {
			return res
		}
		if tf&FlagObject == 0 {
			return ternaryFalse
		}
		return r.objectRelatedTo(source, target, report)
	}

	if res, done := r.relateToTypeVariable(source, target, report); done {
		return res
	}

	switch {
	case sf&FlagTypeParameter != 0:
		c := s.ConstraintOf(source)
		if !c.IsPresent() {
			c = s.Unknown
		}
		return r.isRelatedTo(c, target, report)
	case sf&FlagIndex != 0:
		return r.isRelatedTo(s.StringOrNumber, target, report)
	case sf&(FlagIndexedAccess|FlagConditional|FlagTemplateLiteral) != 0:
		if sf&FlagConditional != 0 {
			r.reportUnmeasurable()
		}
		if c := s.BaseConstraintOf(source); c.IsPresent() && c != source {
			return r.isRelatedTo(c, target, report)
		}
		return ternaryFalse
	}

	if s.IsGenericMapped(target) {
		return r.mappedTypeRelatedTo(source, target, report)
	}
	if tf&FlagObject == 0 {
		return ternaryFalse
	}
	if sf&(FlagPrimitive|FlagNonPrimitive) != 0 {
		apparent := s.ApparentType(source)
		if apparent == source || !s.Is(apparent, FlagObject) {
			return ternaryFalse
		}
		source = apparent
	}
	if !s.Is(source, FlagObject) {
		return ternaryFalse
	}
	return r.objectRelatedTo(source, target, report)
}

// relateToTypeVariable handles targets that are type variables or deferred
// operators. done is false when the comparison should continue with the source.
func (r *relater) relateToTypeVariable(source, target TypeID, report bool) (ternary, bool) {
	s := r.s
	sf, tf := s.Flags(source), s.Flags(target)
	switch {
	case tf&FlagTypeParameter != 0:
		if s.IsGenericMapped(source) {
			// { [P in keyof T]: T[P] } relates to T
			d := As[MappedType](s.Get(source))
			if s.Instantiate(d.ConstraintType, d.Mapper) == s.IndexTypeOf(target) {
				template := s.Instantiate(d.TemplateType, d.Mapper)
				if ia := As[IndexedAccessType](s.Get(template)); ia != nil && ia.Object == target {
					return ternaryTrue, true
				}
			}
		}
		return ternaryFalse, sf&(FlagTypeParameter|FlagInstantiable) == 0

	case tf&FlagIndex != 0:
		targetOperand := As[IndexType](s.Get(target)).Target
		if sf&FlagIndex != 0 {
			// keyof S relates to keyof T when T relates to S
			if res := r.isRelatedTo(targetOperand, As[IndexType](s.Get(source)).Target, false); res != ternaryFalse {
				return res, true
			}
		}
		if c := s.ConstraintOf(targetOperand); c.IsPresent() && s.Is(targetOperand, FlagTypeParameter) {
			if res := r.isRelatedTo(source, s.IndexTypeOf(c), false); res != ternaryFalse {
				return res, true
			}
		}
		return ternaryFalse, sf&FlagInstantiable == 0

	case tf&FlagIndexedAccess != 0:
		r.reportUnmeasurable()
		if sf&FlagIndexedAccess != 0 {
			sd, td := As[IndexedAccessType](s.Get(source)), As[IndexedAccessType](s.Get(target))
			res := r.isRelatedTo(sd.Object, td.Object, report)
			if res != ternaryFalse {
				res &= r.isRelatedTo(sd.Index, td.Index, report)
			}
			if res != ternaryFalse {
				return res, true
			}
		}
		return ternaryFalse, sf&FlagInstantiable == 0

	case tf&FlagConditional != 0:
		r.reportUnmeasurable()
		if sf&FlagConditional != 0 {
			sd, td := As[ConditionalType](s.Get(source)), As[ConditionalType](s.Get(target))
			if sd.Root == td.Root && s.IsIdentical(sd.CheckType, td.CheckType) && s.IsIdentical(sd.ExtendsType, td.ExtendsType) {
				res := r.isRelatedTo(s.conditionalTrueType(sd), s.conditionalTrueType(td), report)
				if res != ternaryFalse {
					res &= r.isRelatedTo(s.conditionalFalseType(sd), s.conditionalFalseType(td), report)
				}
				return res, true
			}
		}
		return ternaryFalse, sf&FlagInstantiable == 0

	case tf&FlagTemplateLiteral != 0:
		tpl := As[TemplateLiteralType](s.Get(target))
		switch {
		case sf&FlagStringLiteral != 0:
			v, _ := s.LiteralValue(source).(string)
			if s.matchesTemplate(v, tpl) {
				return ternaryTrue, true
			}
			return ternaryFalse, true
		case sf&FlagTemplateLiteral != 0:
			src := As[TemplateLiteralType](s.Get(source))
			if !equalTexts(src.Texts, tpl.Texts) {
				return ternaryFalse, true
			}
			res := ternaryTrue
			for i := range src.Types {
				if res &= r.isRelatedTo(src.Types[i], tpl.Types[i], report); res == ternaryFalse {
					break
				}
			}
			return res, true
		}
		return ternaryFalse, sf&FlagInstantiable == 0
	}
	return ternaryFalse, false
}

func equalTexts(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (r *relater) mappedTypeRelatedTo(source, target TypeID, report bool) ternary {
	s := r.s
	td := As[MappedType](s.Get(target))
	sd := As[MappedType](s.Get(source))
	if sd == nil || !s.IsGenericMapped(source) {
		return ternaryFalse
	}
	r.reportUnreliable()
	if sd.Modifiers&(IncludeOptional|IncludeReadonly) != td.Modifiers&(IncludeOptional|IncludeReadonly) &&
		td.Modifiers&IncludeOptional == 0 {
		return ternaryFalse
	}
	res := r.isRelatedTo(s.Instantiate(td.ConstraintType, td.Mapper), s.Instantiate(sd.ConstraintType, sd.Mapper), report)
	if res == ternaryFalse {
		return res
	}
	m := NewMapper([]TypeID{sd.TypeParameter}, []TypeID{td.TypeParameter})
	sourceTemplate := s.Instantiate(s.Instantiate(sd.TemplateType, sd.Mapper), m)
	return res & r.isRelatedTo(sourceTemplate, s.Instantiate(td.TemplateType, td.Mapper), report)
}

func (r *relater) eachTypeRelatedToType(sources []TypeID, target TypeID, report bool) ternary {
	result := ternaryTrue
	for _, src := range sources {
		res := r.isRelatedTo(src, target, report)
		if res == ternaryFalse {
			return ternaryFalse
		}
		result &= res
	}
	return result
}

func (r *relater) typeRelatedToEachType(source TypeID, targets []TypeID, report bool) ternary {
	result := ternaryTrue
	for _, t := range targets {
		res := r.isRelatedTo(source, t, report)
		if res == ternaryFalse {
			return ternaryFalse
		}
		result &= res
	}
	return result
}

func (r *relater) someTypeRelatedToType(sources []TypeID, target TypeID, report bool) ternary {
	for _, src := range sources {
		if res := r.isRelatedTo(src, target, false); res != ternaryFalse {
			return res
		}
	}
	if report && len(sources) > 0 {
		r.isRelatedTo(sources[len(sources)-1], target, true)
	}
	return ternaryFalse
}

func (r *relater) typeRelatedToSomeType(source, target TypeID, report bool) ternary {
	s := r.s
	members := s.Members(target)
	if s.Is(source, FlagUnit) {
		for _, m := range members {
			if s.Regular(m) == source {
				return ternaryTrue
			}
		}
	}
	for _, m := range members {
		if res := r.isRelatedTo(source, m, false); res != ternaryFalse {
			return res
		}
	}
	if report {
		if best := r.bestMatchingType(source, members); best.IsPresent() {
			r.isRelatedTo(source, best, true)
		}
	}
	return ternaryFalse
}

// bestMatchingType picks the union member a failure is best explained against:
// the one sharing the most properties with an object source, or the only object member
func (r *relater) bestMatchingType(source TypeID, members []TypeID) TypeID {
	s := r.s
	if !s.Is(source, FlagObject|FlagIntersection) {
		return NoType
	}
	best, bestScore := NoType, -1
	for _, m := range members {
		if !s.Is(m, FlagObject|FlagIntersection) {
			continue
		}
		score := 0
		for _, p := range s.PropertiesOf(source) {
			if s.ResolvedMembers(m).Property(p.Name) != nil {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = m, score
		}
	}
	return best
}

func (r *relater) objectRelatedTo(source, target TypeID, report bool) ternary {
	s := r.s
	st, tt := s.Get(source), s.Get(target)
	if st.objectFlags.IsMapped() || tt.objectFlags.IsMapped() {
		r.reportUnreliable()
	}
	if st.objectFlags.IsReference() && tt.objectFlags.IsReference() && !s.markerTypes[source] && !s.markerTypes[target] {
		sref, tref := As[TypeReference](st), As[TypeReference](tt)
		if sref.Target == tref.Target {
			variances, ok := s.variancesOf(tref.Target)
			if !ok {
				return ternaryUnknown
			}
			if res, definite := r.relateTypeArguments(sref.Args, tref.Args, variances, report); definite {
				return res
			}
		}
	}
	if sa, ta := st.alias, tt.alias; sa != nil && ta != nil && sa.Symbol == ta.Symbol && len(sa.Args) > 0 &&
		!s.markerTypes[source] && !s.markerTypes[target] {
		variances, ok := s.aliasVariancesOf(sa.Symbol)
		if !ok {
			return ternaryUnknown
		}
		if res, definite := r.relateTypeArguments(sa.Args, ta.Args, variances, report); definite {
			return res
		}
	}
	if res, done := r.tupleArityRelatedTo(source, target, report); done {
		return res
	}
	return r.structuralRelatedTo(source, target, report)
}

// relateTypeArguments compares the type arguments of two instantiations of one
// declaration. definite is false when the result should be confirmed structurally.
func (r *relater) relateTypeArguments(sources, targets []TypeID, variances []Variance, report bool) (ternary, bool) {
	s := r.s
	result := ternaryTrue
	for i := 0; i < len(sources) && i < len(targets) && i < len(variances); i++ {
		v := variances[i]
		src, tgt := sources[i], targets[i]
		var related ternary
		switch {
		case v&VarianceMask == VarianceIndependent:
			continue
		case v&VarianceUnmeasurable != 0:
			if s.IsIdentical(src, tgt) {
				related = ternaryTrue
			}
		case v&VarianceMask == VarianceCovariant:
			related = r.isRelatedTo(src, tgt, report)
		case v&VarianceMask == VarianceContravariant:
			related = r.isRelatedTo(tgt, src, report)
		case v&VarianceMask == VarianceBivariant:
			related = r.isRelatedTo(tgt, src, false)
			if related == ternaryFalse {
				related = r.isRelatedTo(src, tgt, report)
			}
		default:
			related = r.isRelatedTo(src, tgt, report)
			if related != ternaryFalse {
				related &= r.isRelatedTo(tgt, src, report)
			}
		}
		if related == ternaryFalse {
			if allowsStructuralFallback(variances) {
				r.chain = nil
				return ternaryFalse, false
			}
			return ternaryFalse, true
		}
		result &= related
	}
	return result, true
}

// tupleArityRelatedTo checks the element counts of tuple targets before their elements are compared
func (r *relater) tupleArityRelatedTo(source, target TypeID, report bool) (ternary, bool) {
	s := r.s
	tt := s.TupleTarget(target)
	if tt == nil {
		return ternaryFalse, false
	}
	st := s.TupleTarget(source)
	if st == nil {
		if s.IsArray(source) {
			if report {
				r.fail(diag.TargetRequiresMoreElements, tt.MinLength())
			}
			return ternaryFalse, true
		}
		return ternaryFalse, false
	}
	switch {
	case st.Readonly && !tt.Readonly:
		return ternaryFalse, true
	case st.MinLength() < tt.MinLength():
		if report {
			r.fail(diag.TargetRequiresMoreElements, tt.MinLength())
		}
		return ternaryFalse, true
	case !tt.HasRest() && (st.HasRest() || st.Arity() > tt.Arity()):
		return ternaryFalse, true
	}
	return ternaryFalse, false
}

func (r *relater) structuralRelatedTo(source, target TypeID, report bool) ternary {
	result := r.propertiesRelatedTo(source, target, report)
	if result == ternaryFalse {
		return result
	}
	for _, kind := range []SignatureKind{SignatureCall, SignatureConstruct} {
		res := r.signaturesRelatedTo(source, target, kind, report)
		if res == ternaryFalse {
			return res
		}
		result &= res
	}
	res := r.indexSignaturesRelatedTo(source, target, report)
	if res == ternaryFalse {
		return res
	}
	return result & res
}

func (r *relater) propertiesRelatedTo(source, target TypeID, report bool) ternary {
	s := r.s
	result := ternaryTrue
	for _, tp := range s.ResolvedMembers(target).Properties {
		sp := s.PropertyOf(source, tp.Name)
		name := ast.UnescapeName(tp.Name)
		if sp == nil {
			if tp.IsOptional() {
				continue
			}
			if report {
				r.fail(diag.PropertyMissing, name, s.TypeString(source), s.TypeString(target))
			}
			return ternaryFalse
		}
		if sp == tp {
			continue
		}
		related := r.isRelatedTo(s.PropertyType(sp), s.PropertyType(tp), report)
		if related == ternaryFalse {
			if report {
				r.chain = r.chain.Wrap(diag.PropertyTypesIncompatible, name)
			}
			return ternaryFalse
		}
		if r.relation != RelationComparable && sp.IsOptional() && !tp.IsOptional() {
			if report {
				r.fail(diag.PropertyOptionalInSource, name, s.TypeString(source), s.TypeString(target))
			}
			return ternaryFalse
		}
		result &= related
	}
	return result
}

func (r *relater) signaturesRelatedTo(source, target TypeID, kind SignatureKind, report bool) ternary {
	s := r.s
	targetSigs := s.ResolvedMembers(target).Signatures(kind)
	if len(targetSigs) == 0 {
		return ternaryTrue
	}
	sourceSigs := s.SignaturesOf(source, kind)
	if len(sourceSigs) == 0 {
		if report {
			r.fail(diag.CallSignatureIncompatible)
		}
		return ternaryFalse
	}
	if len(sourceSigs) == 1 && len(targetSigs) == 1 {
		res := r.signatureRelatedTo(sourceSigs[0], targetSigs[0], report)
		if res == ternaryFalse && report {
			r.chain = r.chain.Wrap(diag.CallSignatureIncompatible)
		}
		return res
	}
	result := ternaryTrue
outer:
	for _, t := range targetSigs {
		for _, src := range sourceSigs {
			if res := r.signatureRelatedTo(src, t, false); res != ternaryFalse {
				result &= res
				continue outer
			}
		}
		if report {
			r.fail(diag.CallSignatureIncompatible)
		}
		return ternaryFalse
	}
	return result
}

func (r *relater) signatureRelatedTo(source, target *Signature, report bool) ternary {
	s := r.s
	if source == target {
		return ternaryTrue
	}
	if len(source.TypeParameters) > 0 && source.Root() != target.Root() {
		source = s.instantiateInContextOf(source, target)
	}
	if !target.HasRest() && source.MinArgs > len(target.Params) {
		if report {
			r.fail(diag.ExpectedArguments, len(target.Params), source.MinArgs)
		}
		return ternaryFalse
	}
	strict := s.opts.StrictFunctionTypes && !source.IsMethod() && !target.IsMethod()
	result := ternaryTrue
	n := max(len(source.Params), len(target.Params))
	for i := 0; i < n; i++ {
		st, tt := s.ParamType(source, i), s.ParamType(target, i)
		if !st.IsPresent() || !tt.IsPresent() {
			continue
		}
		related := r.isRelatedTo(tt, st, false)
		if related == ternaryFalse && !strict {
			related = r.isRelatedTo(st, tt, false)
		}
		if related == ternaryFalse {
			if report {
				r.chain = nil
				r.isRelatedTo(tt, st, true)
				r.chain = r.chain.Wrap(diag.ParameterTypesIncompatible, paramName(source, i), paramName(target, i))
			}
			return ternaryFalse
		}
		result &= related
	}

	targetReturn := s.ReturnType(target)
	if targetReturn == s.Void || s.Is(targetReturn, FlagAny) {
		return result
	}
	if target.Predicate != nil {
		if source.Predicate == nil || source.Predicate.Kind != target.Predicate.Kind {
			return ternaryFalse
		}
		if target.Predicate.Type.IsPresent() && source.Predicate.Type.IsPresent() {
			related := r.isRelatedTo(source.Predicate.Type, target.Predicate.Type, report)
			if related == ternaryFalse {
				return ternaryFalse
			}
			result &= related
		}
	}
	related := r.isRelatedTo(s.ReturnType(source), targetReturn, report)
	if related == ternaryFalse {
		if report {
			r.chain = r.chain.Wrap(diag.SignatureReturnIncompatible)
		}
		return ternaryFalse
	}
	return result & related
}

func paramName(sig *Signature, i int) string {
	if i >= len(sig.Params) {
		i = len(sig.Params) - 1
	}
	if i < 0 {
		return "args"
	}
	return sig.Params[i].Name
}

// instantiateInContextOf instantiates a generic source signature with the type
// arguments inferred from the parameters of target, or erases them
func (s *Store) instantiateInContextOf(source, target *Signature) *Signature {
	if s.inferrer == nil {
		return s.ErasedSignature(source)
	}
	bare := func(sig *Signature) TypeID {
		c := *sig
		c.TypeParameters = nil
		c.instantiations = nil
		c.erased = nil
		return s.FunctionType(&c)
	}
	args := s.inferrer.InferTypeArguments(source.TypeParameters, bare(target), bare(source))
	if len(args) != len(source.TypeParameters) {
		return s.ErasedSignature(source)
	}
	for i, tp := range source.TypeParameters {
		if !args[i].IsPresent() {
			args[i] = s.orUnknown(s.ConstraintOf(tp))
		}
	}
	return s.SignatureInstantiation(source, args)
}

func (r *relater) indexSignaturesRelatedTo(source, target TypeID, report bool) ternary {
	s := r.s
	tm := s.ResolvedMembers(target)
	result := ternaryTrue
	for _, number := range []bool{false, true} {
		info := tm.IndexInfo(number)
		if info == nil {
			continue
		}
		if r.relation != RelationStrictSubtype && tm.StringIndex != nil && s.Is(info.Type, FlagAny) {
			continue
		}
		res := r.typeRelatedToIndexInfo(source, info, number, report)
		if res == ternaryFalse {
			return res
		}
		result &= res
	}
	return result
}

func (r *relater) typeRelatedToIndexInfo(source TypeID, target *IndexInfo, number, report bool) ternary {
	s := r.s
	info := s.IndexInfoOf(source, number)
	if info == nil && number {
		info = s.IndexInfoOf(source, false)
	}
	if info != nil {
		return r.isRelatedTo(info.Type, target.Type, report)
	}
	if !s.isObjectTypeWithInferableIndex(source) {
		if report {
			r.fail(diag.IndexSignatureMissing, s.TypeString(target.KeyType), s.TypeString(source))
		}
		return ternaryFalse
	}
	result := ternaryTrue
	for _, p := range s.PropertiesOf(source) {
		if number && !IsNumericName(p.Name) {
			continue
		}
		related := r.isRelatedTo(s.PropertyType(p), target.Type, report)
		if related == ternaryFalse {
			if report {
				r.chain = r.chain.Wrap(diag.PropertyTypesIncompatible, ast.UnescapeName(p.Name))
			}
			return ternaryFalse
		}
		result &= related
	}
	return result
}

// isObjectTypeWithInferableIndex reports object literal and type literal types,
// which are assignable to index signatures their properties satisfy
func (s *Store) isObjectTypeWithInferableIndex(id TypeID) bool {
	if s.Is(id, FlagIntersection) {
		return s.EveryType(id, s.isObjectTypeWithInferableIndex)
	}
	t := s.Get(id)
	if t == nil || t.flags&FlagObject == 0 || t.objectFlags&ObjectClassOrInterface != 0 {
		return false
	}
	if t.objectFlags&(ObjectAnonymous|ObjectLiteral|ObjectMapped) == 0 {
		return false
	}
	m := s.ResolvedMembers(id)
	return len(m.CallSignatures) == 0 && len(m.ConstructSignatures) == 0
}

func (r *relater) hasExcessProperties(source, target TypeID, report bool) bool {
	s := r.s
	if !s.isExcessPropertyCheckTarget(target) {
		return false
	}
	for _, p := range s.ResolvedMembers(source).Properties {
		if !s.isKnownProperty(target, p.Name) {
			if report {
				r.fail(diag.ExcessProperty, ast.UnescapeName(p.Name), s.TypeString(target))
			}
			return true
		}
	}
	return false
}

func (s *Store) isExcessPropertyCheckTarget(id TypeID) bool {
	switch {
	case s.Is(id, FlagObject):
		return !s.IsEmptyObject(id) && id != s.globals.Object && !s.IsGenericMapped(id)
	case s.Is(id, FlagUnion):
		return s.SomeType(id, s.isExcessPropertyCheckTarget)
	case s.Is(id, FlagIntersection):
		for _, m := range s.Members(id) {
			if !s.isExcessPropertyCheckTarget(m) {
				return false
			}
		}
		return true
	}
	return false
}

func (s *Store) isKnownProperty(id TypeID, name string) bool {
	switch {
	case s.Is(id, FlagObject):
		m := s.ResolvedMembers(id)
		return m.Property(name) != nil || m.StringIndex != nil || m.NumberIndex != nil && IsNumericName(name) ||
			s.IsGenericMapped(id)
	case s.Is(id, FlagUnionOrIntersection):
		for _, m := range s.Members(id) {
			if s.isKnownProperty(m, name) {
				return true
			}
		}
		return false
	}
	return s.Is(id, FlagInstantiable)
}

// identicalStructure compares types for the identity relation
func (r *relater) identicalStructure(source, target TypeID, report bool) ternary {
	s := r.s
	st := s.Get(source)
	switch d := st.data.(type) {
	case *UnionOrIntersection:
		targets := s.Members(target)
		if len(d.Types) != len(targets) {
			return ternaryFalse
		}
		result := ternaryTrue
	members:
		for _, m := range d.Types {
			for _, t := range targets {
				if res := r.isRelatedTo(m, t, false); res != ternaryFalse {
					result &= res
					continue members
				}
			}
			return ternaryFalse
		}
		return result
	case *IndexType:
		return r.isRelatedTo(d.Target, As[IndexType](s.Get(target)).Target, report)
	case *IndexedAccessType:
		td := As[IndexedAccessType](s.Get(target))
		return r.isRelatedTo(d.Object, td.Object, report) & r.isRelatedTo(d.Index, td.Index, report)
	case *ConditionalType:
		td := As[ConditionalType](s.Get(target))
		if d.Root != td.Root {
			return ternaryFalse
		}
		result := r.isRelatedTo(d.CheckType, td.CheckType, false) & r.isRelatedTo(d.ExtendsType, td.ExtendsType, false)
		if result == ternaryFalse {
			return result
		}
		return result & r.isRelatedTo(s.conditionalTrueType(d), s.conditionalTrueType(td), false) &
			r.isRelatedTo(s.conditionalFalseType(d), s.conditionalFalseType(td), false)
	case *TemplateLiteralType:
		td := As[TemplateLiteralType](s.Get(target))
		if !equalTexts(d.Texts, td.Texts) {
			return ternaryFalse
		}
		result := ternaryTrue
		for i := range d.Types {
			if result &= r.isRelatedTo(d.Types[i], td.Types[i], false); result == ternaryFalse {
				break
			}
		}
		return result
	case *TypeReference:
		if td := As[TypeReference](s.Get(target)); td != nil && td.Target == d.Target {
			result := ternaryTrue
			for i := range d.Args {
				if result &= r.isRelatedTo(d.Args[i], td.Args[i], false); result == ternaryFalse {
					break
				}
			}
			return result
		}
	}
	if st.flags&FlagObject == 0 {
		return ternaryFalse
	}
	return r.identicalMembers(s.ResolvedMembers(source), s.ResolvedMembers(target))
}

func (r *relater) identicalMembers(sm, tm *Members) ternary {
	s := r.s
	if len(sm.Properties) != len(tm.Properties) {
		return ternaryFalse
	}
	result := ternaryTrue
	for _, tp := range tm.Properties {
		sp := sm.Property(tp.Name)
		if sp == nil || sp.Flags&(PropertyOptional|PropertyReadonly) != tp.Flags&(PropertyOptional|PropertyReadonly) {
			return ternaryFalse
		}
		if result &= r.isRelatedTo(s.PropertyType(sp), s.PropertyType(tp), false); result == ternaryFalse {
			return result
		}
	}
	for _, kind := range []SignatureKind{SignatureCall, SignatureConstruct} {
		ss, ts := sm.Signatures(kind), tm.Signatures(kind)
		if len(ss) != len(ts) {
			return ternaryFalse
		}
		for i := range ss {
			if result &= r.identicalSignatures(ss[i], ts[i]); result == ternaryFalse {
				return result
			}
		}
	}
	for _, number := range []bool{false, true} {
		si, ti := sm.IndexInfo(number), tm.IndexInfo(number)
		if (si == nil) != (ti == nil) {
			return ternaryFalse
		}
		if si == nil {
			continue
		}
		if si.Readonly != ti.Readonly {
			return ternaryFalse
		}
		if result &= r.isRelatedTo(si.Type, ti.Type, false); result == ternaryFalse {
			return result
		}
	}
	return result
}

func (r *relater) identicalSignatures(source, target *Signature) ternary {
	s := r.s
	if source == target {
		return ternaryTrue
	}
	if len(source.Params) != len(target.Params) || source.MinArgs != target.MinArgs ||
		source.HasRest() != target.HasRest() || len(source.TypeParameters) != len(target.TypeParameters) {
		return ternaryFalse
	}
	if len(target.TypeParameters) > 0 {
		source = s.InstantiateSignature(source, NewMapper(source.TypeParameters, target.TypeParameters))
	}
	result := ternaryTrue
	for i := range source.Params {
		if result &= r.isRelatedTo(source.Params[i].Type, target.Params[i].Type, false); result == ternaryFalse {
			return result
		}
	}
	return result & r.isRelatedTo(s.ReturnType(source), s.ReturnType(target), false)
}
