package types

import (
	"strings"

	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/util"
	"github.com/hashicorp/go-set/v3"
)

// Relation is one of the relations the engine decides
type Relation uint8

const (
	RelationIdentity Relation = iota
	RelationStrictSubtype
	RelationSubtype
	RelationAssignable
	RelationComparable
	numRelations
)

var relationNames = [numRelations]string{"identity", "strict_subtype", "subtype", "assignable", "comparable"}

func (r Relation) String() string {
	if r < numRelations {
		return relationNames[r]
	}
	return "unknown"
}

// Result is the cached outcome of a relation query
type Result uint8

const (
	ResultSucceeded Result = 1 << iota
	ResultFailed
	// ResultReportsUnmeasurable and ResultReportsUnreliable record that the outcome
	// depended on structure variance measurement cannot see through
	ResultReportsUnmeasurable
	ResultReportsUnreliable
	ResultComplexityOverflow
	ResultStackDepthOverflow

	ResultReportsMask = ResultReportsUnmeasurable | ResultReportsUnreliable
	ResultOverflow    = ResultComplexityOverflow | ResultStackDepthOverflow
)

func (r Result) Succeeded() bool  { return r&ResultSucceeded != 0 }
func (r Result) Overflowed() bool { return r&ResultOverflow != 0 }

func (r Result) String() string {
	var parts []string
	for _, n := range []struct {
		flag Result
		name string
	}{
		{ResultSucceeded, "Succeeded"},
		{ResultFailed, "Failed"},
		{ResultReportsUnmeasurable, "ReportsUnmeasurable"},
		{ResultReportsUnreliable, "ReportsUnreliable"},
		{ResultComplexityOverflow, "ComplexityOverflow"},
		{ResultStackDepthOverflow, "StackDepthOverflow"},
	} {
		if r&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// ternary is the outcome of one comparison while a query is in progress.
// Maybe marks results that assumed a comparison further up the stack holds.
type ternary int8

const (
	ternaryFalse   ternary = 0
	ternaryUnknown ternary = 1
	ternaryMaybe   ternary = 3
	ternaryTrue    ternary = -1
)

type relKey struct {
	source, target TypeID
}

type expandingFlags uint8

const (
	expandingSource expandingFlags = 1 << iota
	expandingTarget
	expandingBoth = expandingSource | expandingTarget
)

// maxNestingIdentity is the number of times a recursion identity may repeat on
// the stack before a comparison is assumed to be expanding infinitely
const maxNestingIdentity = 3

// Relate decides whether source relates to target. Results are cached for the
// lifetime of the Store, so repeated queries agree.
func (s *Store) Relate(source, target TypeID, rel Relation) Result {
	res, _ := s.relate(source, target, rel, false)
	return res
}

// CheckRelated is Relate with an elaboration of why the types are unrelated.
// Queries that overflow a budget report their own diagnostic and return no elaboration.
func (s *Store) CheckRelated(source, target TypeID, rel Relation) (Result, *diag.MessageChain) {
	return s.relate(source, target, rel, true)
}

func (s *Store) IsTypeRelatedTo(source, target TypeID, rel Relation) bool {
	return s.Relate(source, target, rel).Succeeded()
}

func (s *Store) IsAssignable(source, target TypeID) bool {
	return s.IsTypeRelatedTo(source, target, RelationAssignable)
}

func (s *Store) IsSubtype(source, target TypeID) bool {
	return s.IsTypeRelatedTo(source, target, RelationSubtype)
}

func (s *Store) IsIdentical(source, target TypeID) bool {
	return s.IsTypeRelatedTo(source, target, RelationIdentity)
}

// IsComparable reports whether either type is comparable to the other
func (s *Store) IsComparable(a, b TypeID) bool {
	return s.IsTypeRelatedTo(a, b, RelationComparable) || s.IsTypeRelatedTo(b, a, RelationComparable)
}

func (s *Store) relate(source, target TypeID, rel Relation, report bool) (Result, *diag.MessageChain) {
	if source == target {
		return ResultSucceeded, nil
	}
	if !s.IsFresh(source) || !s.Is(source, FlagObject) {
		key := relKey{s.Regular(source), s.Regular(target)}
		if entry, ok := s.relations[rel][key]; ok && (!report || entry.Succeeded() || entry.Overflowed()) {
			s.metrics.CacheLookups.WithLabelValues(rel.String(), "hit").Inc()
			s.propagateReports(entry)
			return entry, nil
		}
	}
	r := &relater{
		s:        s,
		relation: rel,
		cache:    s.relations[rel],
		maybeSet: set.New[relKey](8),
	}
	res := r.isRelatedTo(source, target, report)
	if r.overflow != 0 {
		return r.reportOverflow(source, target), nil
	}
	if res != ternaryFalse {
		return ResultSucceeded | r.reports, nil
	}
	return ResultFailed | r.reports, r.chain
}

func (s *Store) propagateReports(entry Result) {
	if s.varianceReporter == nil || entry&ResultReportsMask == 0 {
		return
	}
	if entry&ResultReportsUnmeasurable != 0 {
		s.varianceReporter(false)
	}
	if entry&ResultReportsUnreliable != 0 {
		s.varianceReporter(true)
	}
}

// relater carries the state of one top-level relation query
type relater struct {
	s        *Store
	relation Relation
	cache    map[relKey]Result

	// maybeKeys are the comparisons in progress or tentatively related, in the
	// order they were started
	maybeKeys   []relKey
	maybeSet    *set.Set[relKey]
	sourceStack util.Stack[TypeID]
	targetStack util.Stack[TypeID]
	expanding   expandingFlags

	work     int
	overflow Result
	reports  Result
	chain    *diag.MessageChain
}

func (r *relater) reportOverflow(source, target TypeID) Result {
	s := r.s
	kind := "depth"
	code := diag.ExcessiveStackDepth
	args := []any{s.TypeString(source), s.TypeString(target)}
	if r.overflow&ResultComplexityOverflow != 0 {
		kind = "complexity"
		code = diag.ExcessiveComplexity
		args = nil
	}
	logger.Debug("relation overflow", "relation", r.relation, "kind", kind, "work", r.work)
	s.metrics.Overflows.WithLabelValues(r.relation.String(), kind).Inc()
	s.report(code, args...)
	result := ResultFailed | r.overflow
	s.relations[r.relation][relKey{s.Regular(source), s.Regular(target)}] = result
	return result
}

func (r *relater) fail(code diag.Code, args ...any) {
	r.chain = diag.Chain(code, args...)
}

func (r *relater) reportUnmeasurable() {
	r.reports |= ResultReportsUnmeasurable
	if r.s.varianceReporter != nil {
		r.s.varianceReporter(false)
	}
}

func (r *relater) reportUnreliable() {
	r.reports |= ResultReportsUnreliable
	if r.s.varianceReporter != nil {
		r.s.varianceReporter(true)
	}
}

func (r *relater) isRelatedTo(source, target TypeID, report bool) ternary {
	s := r.s
	if s.Is(source, FlagLiteral) {
		source = s.Regular(source)
	}
	if s.Is(target, FlagLiteral) {
		target = s.Regular(target)
	}
	if source == target {
		return ternaryTrue
	}
	if r.relation == RelationIdentity {
		if s.Flags(source) != s.Flags(target) || !s.Is(source, FlagStructured|FlagInstantiable) {
			if report {
				r.chain = r.chain.Wrap(diag.NotAssignable, s.TypeString(source), s.TypeString(target))
			}
			return ternaryFalse
		}
		return r.recursiveTypeRelatedTo(s.Regular(source), s.Regular(target), report)
	}
	if s.isSimpleTypeRelatedTo(source, target, r.relation) {
		return ternaryTrue
	}
	if s.Is(source, FlagObject) && s.IsFresh(source) {
		if (r.relation == RelationAssignable || r.relation == RelationComparable) && s.Is(target, FlagStructured) &&
			r.hasExcessProperties(source, target, report) {
			return ternaryFalse
		}
		source = s.Regular(source)
	}
	if s.Is(source, FlagStructured|FlagInstantiable) || s.Is(target, FlagStructured|FlagInstantiable) {
		if res := r.recursiveTypeRelatedTo(source, target, report); res != ternaryFalse {
			return res
		}
	}
	if report && r.overflow == 0 {
		r.chain = r.chain.Wrap(diag.NotAssignable, s.TypeString(source), s.TypeString(target))
	}
	return ternaryFalse
}

func (s *Store) isSimpleTypeRelatedTo(source, target TypeID, rel Relation) bool {
	sf, tf := s.Flags(source), s.Flags(target)
	strict := s.opts.StrictNullChecks
	switch {
	case tf&FlagAny != 0 || sf&FlagNever != 0:
		return true
	case tf&FlagUnknown != 0 && !(rel == RelationStrictSubtype && sf&FlagAny != 0):
		return true
	case tf&FlagNever != 0:
		return false
	case sf&FlagStringLike != 0 && tf&FlagString != 0:
		return true
	case sf&FlagNumberLike != 0 && tf&FlagNumber != 0:
		return true
	case sf&FlagBooleanLike != 0 && tf&FlagBoolean != 0:
		return true
	case sf&FlagEnumLiteral != 0 && sf&FlagLiteral != 0 && tf&FlagLiteral != 0 && tf&FlagEnumLiteral == 0:
		return s.LiteralValue(source) == s.LiteralValue(target)
	case sf&FlagUndefined != 0 && (!strict && tf&FlagUnionOrIntersection == 0 || tf&(FlagUndefined|FlagVoid) != 0):
		return true
	case sf&FlagNull != 0 && (!strict && tf&FlagUnionOrIntersection == 0 || tf&FlagNull != 0):
		return true
	case sf&FlagObject != 0 && tf&FlagNonPrimitive != 0:
		return !(rel == RelationStrictSubtype && s.IsEmptyObject(source) && s.IsFresh(source))
	}
	if rel == RelationAssignable || rel == RelationComparable {
		switch {
		case sf&FlagAny != 0:
			return true
		case sf&FlagNumber != 0 && tf&FlagEnumLiteral != 0 && tf&FlagNumberLiteral != 0:
			return true
		}
	}
	return false
}

func (r *relater) recursiveTypeRelatedTo(source, target TypeID, report bool) ternary {
	s := r.s
	if r.overflow != 0 {
		return ternaryFalse
	}
	key := relKey{source, target}
	if entry, ok := r.cache[key]; ok && (!report || entry.Succeeded() || entry.Overflowed()) {
		s.metrics.CacheLookups.WithLabelValues(r.relation.String(), "hit").Inc()
		r.reports |= entry & ResultReportsMask
		s.propagateReports(entry)
		if entry.Succeeded() {
			return ternaryTrue
		}
		return ternaryFalse
	}
	if r.maybeSet.Contains(key) {
		return ternaryMaybe
	}
	s.metrics.CacheLookups.WithLabelValues(r.relation.String(), "miss").Inc()
	if r.sourceStack.Len() >= s.opts.MaxRelationDepth {
		r.overflow = ResultStackDepthOverflow
		return ternaryFalse
	}
	r.work++
	if r.work > s.opts.MaxRelationWork {
		r.overflow = ResultComplexityOverflow
		return ternaryFalse
	}

	maybeStart := len(r.maybeKeys)
	r.maybeKeys = append(r.maybeKeys, key)
	r.maybeSet.Insert(key)
	saveExpanding := r.expanding
	if r.expanding&expandingSource == 0 && s.isDeeplyNested(source, r.sourceStack.Items()) {
		r.expanding |= expandingSource
	}
	if r.expanding&expandingTarget == 0 && s.isDeeplyNested(target, r.targetStack.Items()) {
		r.expanding |= expandingTarget
	}
	r.sourceStack.Push(source)
	r.targetStack.Push(target)
	saveReports := r.reports
	r.reports = 0

	result := ternaryMaybe
	if r.expanding != expandingBoth {
		result = r.structuredTypeRelatedTo(source, target, report)
	}

	r.sourceStack.Pop()
	r.targetStack.Pop()
	r.expanding = saveExpanding
	propagated := r.reports
	r.reports |= saveReports

	if r.overflow != 0 {
		r.resetMaybeStack(maybeStart, false, 0)
		return ternaryFalse
	}
	if result != ternaryFalse {
		if result == ternaryTrue || r.sourceStack.Len() == 0 {
			r.resetMaybeStack(maybeStart, result == ternaryTrue || result == ternaryMaybe, propagated)
		}
	} else {
		r.cache[key] = ResultFailed | propagated
		r.resetMaybeStack(maybeStart, false, 0)
	}
	return result
}

// resetMaybeStack drops the tentative results from start onwards, recording
// them as successes when the comparison that assumed them succeeded
func (r *relater) resetMaybeStack(start int, succeeded bool, reports Result) {
	for _, k := range r.maybeKeys[start:] {
		r.maybeSet.Remove(k)
		if succeeded {
			r.cache[k] = ResultSucceeded | reports
		}
	}
	r.maybeKeys = r.maybeKeys[:start]
}

// identity groups the types that may expand into each other indefinitely, such
// as the instantiations of one generic declaration
type identity struct {
	kind uint8
	id   uint32
}

const (
	identityType uint8 = iota
	identitySymbol
	identityConditional
)

func (s *Store) recursionIdentity(id TypeID) identity {
	t := s.Get(id)
	switch d := t.data.(type) {
	case *TypeReference:
		if t.symbol.IsPresent() {
			return identity{identitySymbol, uint32(t.symbol)}
		}
		return identity{identityType, uint32(d.Target)}
	case *AnonymousType:
		if t.symbol.IsPresent() && t.objectFlags&ObjectLiteral == 0 {
			return identity{identitySymbol, uint32(t.symbol)}
		}
		if d.Target.IsPresent() {
			return identity{identityType, uint32(d.Target)}
		}
	case *MappedType:
		if d.Target.IsPresent() {
			return identity{identityType, uint32(d.Target)}
		}
	case *IndexedAccessType:
		return s.recursionIdentity(d.Object)
	case *ConditionalType:
		return identity{identityConditional, d.Root.id}
	}
	return identity{identityType, uint32(id)}
}

// isDeeplyNested reports whether t's recursion identity repeats on the stack with
// increasing type ids, which happens when instantiations keep producing new types
func (s *Store) isDeeplyNested(t TypeID, stack []TypeID) bool {
	if len(stack) < maxNestingIdentity {
		return false
	}
	id := s.recursionIdentity(t)
	count := 0
	var last TypeID
	for _, x := range stack {
		if s.recursionIdentity(x) != id {
			continue
		}
		if x >= last {
			count++
			if count >= maxNestingIdentity {
				return true
			}
		}
		last = x
	}
	return false
}
