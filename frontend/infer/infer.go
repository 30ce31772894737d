package infer

import (
	"slices"
	"strings"

	"github.com/cottand/strux/frontend/types"
)

// maxWalkDepth bounds the descent into nested types, which recursive
// instantiations would otherwise make unbounded
const maxWalkDepth = 50

type visitKey struct {
	source, target types.TypeID
	contravariant  bool
}

// walker performs one inference pass from a source type to a target type
type walker struct {
	c             *Context
	s             *types.Store
	priority      Priority
	contravariant bool
	depth         int
	visited       map[visitKey]bool
}

func (w *walker) inferFromTypes(source, target types.TypeID) {
	s := w.s
	if !source.IsPresent() || !s.CouldContainTypeVariables(target) || source == s.Error {
		return
	}
	if sa, ta := s.Get(source).Alias(), s.Get(target).Alias(); sa != nil && ta != nil && sa.Symbol == ta.Symbol {
		w.inferFromTypeArguments(sa.Args, ta.Args, s.AliasVariancesOf(sa.Symbol))
		return
	}
	if source == target && s.Is(source, types.FlagUnionOrIntersection) {
		// infer from each member to itself so that T | U matched against itself
		// yields candidates for both
		for _, m := range s.Members(source) {
			w.inferFromTypes(m, m)
		}
		return
	}

	switch {
	case s.Is(target, types.FlagUnion):
		w.inferToUnion(source, target)
		return
	case s.Is(target, types.FlagIntersection):
		for _, m := range s.Members(target) {
			w.inferFromTypes(source, m)
		}
		return
	case s.Is(source, types.FlagUnion):
		for _, m := range s.Members(source) {
			w.inferFromTypes(m, target)
		}
		return
	}

	if s.Is(target, types.FlagTypeParameter) {
		w.inferToTypeParameter(source, target)
		return
	}

	switch {
	case s.Is(source, types.FlagIndex) && s.Is(target, types.FlagIndex):
		w.inferFromContravariantTypes(
			types.As[types.IndexType](s.Get(source)).Target,
			types.As[types.IndexType](s.Get(target)).Target)
	case s.Is(source, types.FlagIndexedAccess) && s.Is(target, types.FlagIndexedAccess):
		sa, ta := types.As[types.IndexedAccessType](s.Get(source)), types.As[types.IndexedAccessType](s.Get(target))
		w.nested(func() {
			w.inferFromTypes(sa.Object, ta.Object)
			w.inferFromTypes(sa.Index, ta.Index)
		})
	case s.Is(target, types.FlagConditional):
		w.inferToConditional(source, target)
	case s.Is(target, types.FlagTemplateLiteral):
		w.inferToTemplateLiteral(source, target)
	case s.Is(target, types.FlagObject):
		source = s.Regular(source)
		if s.Is(source, types.FlagPrimitive) {
			source = s.ApparentType(source)
		}
		if s.Is(source, types.FlagObject|types.FlagIntersection) {
			w.invokeOnce(source, target, func() { w.inferFromObjectTypes(source, target) })
		}
	}
}

func (w *walker) inferToTypeParameter(source, target types.TypeID) {
	s := w.s
	i := w.c.indexOf(target)
	if i < 0 || source == target {
		return
	}
	info := w.c.infos[i]
	candidate := source
	if s.Is(source, types.FlagNever) && w.priority != PriorityDirect {
		return
	}
	w.c.addCandidate(info, candidate, w.priority, w.contravariant, w.depth > 0)
}

// inferToUnion first pairs off members identical on both sides, then infers what
// remains of source to the single naked type parameter of target, if there is one
func (w *walker) inferToUnion(source, target types.TypeID) {
	s := w.s
	sources := slices.Clone(s.Constituents(source))
	var targets []types.TypeID
	for _, t := range s.Members(target) {
		matched := false
		for j, src := range sources {
			if src.IsPresent() && s.Regular(src) == t {
				sources[j] = types.NoType
				matched = true
			}
		}
		if !matched {
			targets = append(targets, t)
		}
	}
	var remaining []types.TypeID
	for _, src := range sources {
		if src.IsPresent() {
			remaining = append(remaining, src)
		}
	}
	if len(remaining) == 0 {
		return
	}
	var naked []types.TypeID
	var structured []types.TypeID
	for _, t := range targets {
		if w.c.indexOf(t) >= 0 {
			naked = append(naked, t)
		} else {
			structured = append(structured, t)
		}
	}
	rest := s.Union(remaining...)
	for _, t := range structured {
		w.inferFromTypes(rest, t)
	}
	saved := w.priority
	w.priority |= PriorityNakedTypeVariable
	if len(naked) == 1 {
		w.inferFromTypes(rest, naked[0])
	} else {
		for _, t := range naked {
			w.inferFromTypes(rest, t)
		}
	}
	w.priority = saved
}

func (w *walker) inferToConditional(source, target types.TypeID) {
	s := w.s
	tc := types.As[types.ConditionalType](s.Get(target))
	trueType := s.Instantiate(tc.Root.TrueType, tc.Mapper)
	falseType := s.Instantiate(tc.Root.FalseType, tc.Mapper)
	if sc := types.As[types.ConditionalType](s.Get(source)); sc != nil {
		w.inferFromTypes(sc.CheckType, tc.CheckType)
		w.inferFromTypes(sc.ExtendsType, tc.ExtendsType)
		w.inferFromTypes(s.Instantiate(sc.Root.TrueType, sc.Mapper), trueType)
		w.inferFromTypes(s.Instantiate(sc.Root.FalseType, sc.Mapper), falseType)
		return
	}
	w.inferFromTypes(source, trueType)
	w.inferFromTypes(source, falseType)
}

// inferToTemplateLiteral infers the literal text matched by each hole of a
// template whose holes are separated by non-empty text
func (w *walker) inferToTemplateLiteral(source, target types.TypeID) {
	s := w.s
	tpl := types.As[types.TemplateLiteralType](s.Get(target))
	value, ok := s.LiteralValue(source).(string)
	if !ok || !s.Is(source, types.FlagStringLiteral) {
		return
	}
	matches, ok := matchTemplateTexts(value, tpl.Texts)
	if !ok {
		return
	}
	for i, hole := range tpl.Types {
		w.inferFromTypes(s.StringLiteral(matches[i]), hole)
	}
}

func (w *walker) inferFromContravariantTypes(source, target types.TypeID) {
	w.contravariant = !w.contravariant
	w.inferFromTypes(source, target)
	w.contravariant = !w.contravariant
}

func (w *walker) nested(f func()) {
	w.depth++
	f()
	w.depth--
}

func (w *walker) invokeOnce(source, target types.TypeID, f func()) {
	key := visitKey{source, target, w.contravariant}
	if w.visited[key] || w.depth >= maxWalkDepth {
		return
	}
	w.visited[key] = true
	w.nested(f)
}

func (w *walker) inferFromTypeArguments(sources, targets []types.TypeID, variances []types.Variance) {
	for i := 0; i < len(sources) && i < len(targets); i++ {
		if i < len(variances) && variances[i]&types.VarianceMask == types.VarianceContravariant {
			w.inferFromContravariantTypes(sources[i], targets[i])
		} else {
			w.inferFromTypes(sources[i], targets[i])
		}
	}
}

func (w *walker) inferFromObjectTypes(source, target types.TypeID) {
	s := w.s
	if s.ObjectFlags(source).IsReference() && s.ObjectFlags(target).IsReference() &&
		s.TargetOf(source) == s.TargetOf(target) && !s.ObjectFlags(source).IsTuple() {
		w.inferFromTypeArguments(s.TypeArguments(source), s.TypeArguments(target), s.VariancesOf(s.TargetOf(target)))
		return
	}
	if s.IsGenericMapped(target) {
		if w.inferToMappedType(source, target) {
			return
		}
	}
	if s.IsArrayOrTuple(source) && s.IsArrayOrTuple(target) {
		if s.IsArray(target) {
			w.inferFromTypes(s.ElementTypeOr(source, s.Never), s.ElementType(target))
			return
		}
		if se, te := s.TupleElements(source), s.TupleElements(target); len(se) == len(te) {
			for i := range te {
				w.inferFromTypes(se[i], te[i])
			}
			return
		}
	}
	w.inferFromProperties(source, target)
	w.inferFromSignatures(source, target, types.SignatureCall)
	w.inferFromSignatures(source, target, types.SignatureConstruct)
	w.inferFromIndexTypes(source, target)
}

// inferToMappedType handles { [K in keyof T]: T[K] }, inferring source itself for
// T, and { [P in K]: X }, inferring the keys of source for K and its property
// types for X
func (w *walker) inferToMappedType(source, target types.TypeID) bool {
	s := w.s
	d := types.As[types.MappedType](s.Get(target))
	constraint := s.Instantiate(d.ConstraintType, d.Mapper)
	template := s.Instantiate(d.TemplateType, d.Mapper)
	if ix := types.As[types.IndexType](s.Get(constraint)); ix != nil && w.c.indexOf(ix.Target) >= 0 {
		access := types.As[types.IndexedAccessType](s.Get(template))
		if access == nil || access.Object != ix.Target || access.Index != d.TypeParameter {
			return false
		}
		saved := w.priority
		w.priority |= PriorityHomomorphicMappedType
		w.inferFromTypes(source, ix.Target)
		w.priority = saved
		return true
	}
	if w.c.indexOf(constraint) >= 0 {
		saved := w.priority
		w.priority |= PriorityMappedTypeConstraint
		w.inferFromTypes(s.IndexTypeOf(source), constraint)
		w.priority = saved

		var propTypes []types.TypeID
		for _, p := range s.PropertiesOf(source) {
			propTypes = append(propTypes, s.PropertyType(p))
		}
		for _, number := range []bool{false, true} {
			if info := s.IndexInfoOf(source, number); info != nil {
				propTypes = append(propTypes, info.Type)
			}
		}
		w.inferFromTypes(s.Union(propTypes...), template)
		return true
	}
	return false
}

func (w *walker) inferFromProperties(source, target types.TypeID) {
	s := w.s
	for _, tp := range s.PropertiesOf(target) {
		sp := s.PropertyOf(source, tp.Name)
		if sp == nil {
			continue
		}
		st, tt := s.PropertyType(sp), s.PropertyType(tp)
		if tp.IsOptional() {
			tt = s.RemoveNullable(tt)
			st = s.RemoveNullable(st)
		}
		w.inferFromTypes(st, tt)
	}
}

// inferFromSignatures pairs the last signatures of source with the last ones of target
func (w *walker) inferFromSignatures(source, target types.TypeID, kind types.SignatureKind) {
	s := w.s
	sourceSigs := s.SignaturesOf(source, kind)
	targetSigs := s.SignaturesOf(target, kind)
	n := min(len(sourceSigs), len(targetSigs))
	for i := range n {
		w.inferFromSignature(
			w.baseSignature(sourceSigs[len(sourceSigs)-n+i]),
			s.ErasedSignature(targetSigs[len(targetSigs)-n+i]))
	}
}

// baseSignature instantiates the type parameters of a generic signature with their constraints
func (w *walker) baseSignature(sig *types.Signature) *types.Signature {
	if len(sig.TypeParameters) == 0 {
		return sig
	}
	s := w.s
	args := make([]types.TypeID, len(sig.TypeParameters))
	for i, tp := range sig.TypeParameters {
		args[i] = s.ConstraintOf(tp)
		if !args[i].IsPresent() {
			args[i] = s.Unknown
		}
	}
	return s.SignatureInstantiation(sig, args)
}

func (w *walker) inferFromSignature(source, target *types.Signature) {
	s := w.s
	bivariant := !s.Options().StrictFunctionTypes || source.IsMethod() || target.IsMethod()
	n := max(len(source.Params), len(target.Params))
	for i := range n {
		st, tt := s.ParamType(source, i), s.ParamType(target, i)
		if !st.IsPresent() || !tt.IsPresent() {
			continue
		}
		if bivariant {
			w.inferFromTypes(st, tt)
		} else {
			w.inferFromContravariantTypes(st, tt)
		}
	}
	if sp, tp := source.Predicate, target.Predicate; sp != nil && tp != nil && sp.Type.IsPresent() && tp.Type.IsPresent() {
		w.inferFromTypes(sp.Type, tp.Type)
		return
	}
	w.inferFromTypes(s.ReturnType(source), s.ReturnType(target))
}

func (w *walker) inferFromIndexTypes(source, target types.TypeID) {
	s := w.s
	for _, number := range []bool{false, true} {
		ti := s.IndexInfoOf(target, number)
		if ti == nil {
			continue
		}
		if si := s.IndexInfoOf(source, number); si != nil {
			w.inferFromTypes(si.Type, ti.Type)
			continue
		}
		if number {
			if si := s.IndexInfoOf(source, false); si != nil {
				w.inferFromTypes(si.Type, ti.Type)
				continue
			}
		}
		// an object literal has an implicit index signature made of its properties
		if !s.ObjectFlags(source).IsLiteral() {
			continue
		}
		var propTypes []types.TypeID
		for _, p := range s.PropertiesOf(source) {
			if !number || types.IsNumericName(p.Name) {
				propTypes = append(propTypes, s.PropertyType(p))
			}
		}
		if len(propTypes) > 0 {
			w.inferFromTypes(s.Union(propTypes...), ti.Type)
		}
	}
}

// matchTemplateTexts splits value around the literal texts of a template, which
// surround each of its holes. Holes match as little text as possible.
func matchTemplateTexts(value string, texts []string) ([]string, bool) {
	if len(texts) < 2 {
		return nil, false
	}
	first, last := texts[0], texts[len(texts)-1]
	if len(value) < len(first)+len(last) || value[:len(first)] != first || value[len(value)-len(last):] != last {
		return nil, false
	}
	rest := value[len(first) : len(value)-len(last)]
	var matches []string
	for _, text := range texts[1 : len(texts)-1] {
		at := indexNonEmpty(rest, text)
		if at < 0 {
			return nil, false
		}
		matches = append(matches, rest[:at])
		rest = rest[at+len(text):]
	}
	return append(matches, rest), true
}

// indexNonEmpty finds text in s. An empty text between two holes gives the first
// hole a single character, as a hole must match something.
func indexNonEmpty(s, text string) int {
	if text == "" {
		if s == "" {
			return -1
		}
		return 1
	}
	return strings.Index(s, text)
}
