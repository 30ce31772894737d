package types

import "github.com/cottand/strux/frontend/binder"

// Variance is how a type parameter's use inside a generic declaration makes the
// relation between two instantiations depend on the relation between their arguments
type Variance uint8

const (
	VarianceInvariant     Variance = 0
	VarianceCovariant     Variance = 1 << 0
	VarianceContravariant Variance = 1 << 1
	VarianceBivariant              = VarianceCovariant | VarianceContravariant
	// VarianceIndependent marks parameters that do not affect the relation at all
	VarianceIndependent Variance = 1 << 2
	VarianceMask        Variance = 7

	// VarianceUnmeasurable marks parameters used in positions, such as mapped
	// or conditional types, that measuring with markers cannot observe
	VarianceUnmeasurable Variance = 1 << 3
	// VarianceUnreliable marks measurements that may be too strict
	VarianceUnreliable Variance = 1 << 4
)

func (v Variance) IsCovariant() bool     { return v&VarianceCovariant != 0 }
func (v Variance) IsContravariant() bool { return v&VarianceContravariant != 0 }

func (v Variance) String() string {
	var name string
	switch v & VarianceMask {
	case VarianceInvariant:
		name = "invariant"
	case VarianceCovariant:
		name = "covariant"
	case VarianceContravariant:
		name = "contravariant"
	case VarianceBivariant:
		name = "bivariant"
	case VarianceIndependent:
		name = "independent"
	}
	if v&VarianceUnmeasurable != 0 {
		name += "|unmeasurable"
	}
	if v&VarianceUnreliable != 0 {
		name += "|unreliable"
	}
	return name
}

func allowsStructuralFallback(variances []Variance) bool {
	for _, v := range variances {
		if v&(VarianceUnmeasurable|VarianceUnreliable) != 0 {
			return true
		}
	}
	return false
}

// VariancesOf returns the variances of the type parameters of a generic
// interface or class, measuring them on first use
func (s *Store) VariancesOf(target TypeID) []Variance {
	v, _ := s.variancesOf(target)
	return v
}

// variancesOf returns false while the variances of target are being measured,
// in which case the caller cannot rely on them
func (s *Store) variancesOf(target TypeID) ([]Variance, bool) {
	if v, ok := s.variances[target]; ok {
		return v, true
	}
	if s.measuring[target] {
		return nil, false
	}
	params := s.TypeParametersOf(target)
	if s.ObjectFlags(target).IsTuple() {
		v := make([]Variance, len(params))
		for i := range v {
			v[i] = VarianceCovariant
		}
		s.variances[target] = v
		return v, true
	}
	s.measuring[target] = true
	defer delete(s.measuring, target)
	v := s.measureVariances(params, func(args []TypeID) TypeID { return s.Reference(target, args...) })
	logger.Debug("measured variances", "type", s.TypeString(target), "variances", v)
	s.variances[target] = v
	return v, true
}

// AliasVariancesOf returns the variances of the type parameters of a generic type alias
func (s *Store) AliasVariancesOf(symbol binder.SymbolID) []Variance {
	v, _ := s.aliasVariancesOf(symbol)
	return v
}

func (s *Store) aliasVariancesOf(symbol binder.SymbolID) ([]Variance, bool) {
	if v, ok := s.aliasVariances[symbol]; ok {
		return v, true
	}
	decl := s.aliases[symbol]
	if decl == nil || s.measuringAliases[symbol] {
		return nil, false
	}
	s.measuringAliases[symbol] = true
	defer delete(s.measuringAliases, symbol)
	v := s.measureVariances(decl.TypeParameters, func(args []TypeID) TypeID { return s.InstantiateAlias(symbol, args) })
	s.aliasVariances[symbol] = v
	return v, true
}

// measureVariances instantiates the declaration with marker types in place of
// each parameter in turn and relates the results
func (s *Store) measureVariances(params []TypeID, instantiate func([]TypeID) TypeID) []Variance {
	variances := make([]Variance, len(params))
	for i := range params {
		marker := func(m TypeID) TypeID {
			args := make([]TypeID, len(params))
			copy(args, params)
			args[i] = m
			t := instantiate(args)
			s.markerTypes[t] = true
			return t
		}
		var unmeasurable, unreliable bool
		prev := s.varianceReporter
		s.varianceReporter = func(onlyUnreliable bool) {
			if onlyUnreliable {
				unreliable = true
			} else {
				unmeasurable = true
			}
		}
		super, sub := marker(s.markerSuper), marker(s.markerSub)
		var v Variance
		if s.IsAssignable(sub, super) {
			v |= VarianceCovariant
		}
		if s.IsAssignable(super, sub) {
			v |= VarianceContravariant
		}
		if v == VarianceBivariant && s.IsAssignable(marker(s.markerOther), super) {
			v = VarianceIndependent
		}
		s.varianceReporter = prev
		if unmeasurable {
			v |= VarianceUnmeasurable
		}
		if unreliable {
			v |= VarianceUnreliable
		}
		variances[i] = v
	}
	return variances
}
