package types

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
)

// Members is the resolved structure of an object type
type Members struct {
	Properties          []*Property
	byName              map[string]*Property
	CallSignatures      []*Signature
	ConstructSignatures []*Signature
	StringIndex         *IndexInfo
	NumberIndex         *IndexInfo
}

func NewMembers() *Members {
	return &Members{byName: map[string]*Property{}}
}

var emptyMembers = NewMembers()

// Add appends p, replacing any earlier property of the same name in place
func (m *Members) Add(p *Property) *Members {
	if m.byName == nil {
		m.byName = map[string]*Property{}
	}
	if existing, ok := m.byName[p.Name]; ok {
		for i, q := range m.Properties {
			if q == existing {
				m.Properties[i] = p
			}
		}
	} else {
		m.Properties = append(m.Properties, p)
	}
	m.byName[p.Name] = p
	return m
}

// Property finds a property by escaped name
func (m *Members) Property(name string) *Property {
	if m == nil {
		return nil
	}
	return m.byName[name]
}

func (m *Members) IsEmpty() bool {
	return m == nil || len(m.Properties) == 0 && len(m.CallSignatures) == 0 && len(m.ConstructSignatures) == 0 &&
		m.StringIndex == nil && m.NumberIndex == nil
}

// Signatures returns the call or construct signatures
func (m *Members) Signatures(kind SignatureKind) []*Signature {
	if m == nil {
		return nil
	}
	if kind == SignatureConstruct {
		return m.ConstructSignatures
	}
	return m.CallSignatures
}

// IndexInfo returns the string or number index signature
func (m *Members) IndexInfo(number bool) *IndexInfo {
	if m == nil {
		return nil
	}
	if number {
		return m.NumberIndex
	}
	return m.StringIndex
}

// isResolved reports whether every member type is already known, so that the
// structure can serve as an interning key
func (m *Members) isResolved() bool {
	for _, p := range m.Properties {
		if p.state != resolved {
			return false
		}
	}
	for _, sigs := range [][]*Signature{m.CallSignatures, m.ConstructSignatures} {
		for _, sig := range sigs {
			if sig.returnState != resolved || len(sig.TypeParameters) > 0 || sig.Declaration != ast.NoNode {
				return false
			}
		}
	}
	return true
}

type PropertyFlags uint8

const (
	PropertyOptional PropertyFlags = 1 << iota
	PropertyReadonly
	PropertyMethod
)

func (f PropertyFlags) IsOptional() bool { return f&PropertyOptional != 0 }
func (f PropertyFlags) IsReadonly() bool { return f&PropertyReadonly != 0 }
func (f PropertyFlags) IsMethod() bool   { return f&PropertyMethod != 0 }

// Property is a named member of an object type. Its type may be resolved on
// first use, see Store.PropertyType.
type Property struct {
	// Name is escaped, see ast.EscapeName
	Name        string
	Flags       PropertyFlags
	Symbol      binder.SymbolID
	Declaration ast.NodeID

	typ     TypeID
	resolve func() TypeID
	state   resolution
}

// NewProperty creates a property whose type is already known
func NewProperty(name string, flags PropertyFlags, t TypeID) *Property {
	return &Property{Name: name, Flags: flags, typ: t, state: resolved}
}

// NewLazyProperty creates a property whose type is computed by resolve on first use
func NewLazyProperty(name string, flags PropertyFlags, resolve func() TypeID) *Property {
	return &Property{Name: name, Flags: flags, resolve: resolve}
}

func (p *Property) IsOptional() bool { return p.Flags.IsOptional() }

// IndexInfo is an index signature
type IndexInfo struct {
	KeyType     TypeID
	Type        TypeID
	Readonly    bool
	Declaration ast.NodeID
}

type SignatureKind uint8

const (
	SignatureCall SignatureKind = iota
	SignatureConstruct
)

type SignatureFlags uint8

const (
	SignatureHasRest SignatureFlags = 1 << iota
	SignatureAbstract
	// SignatureMethod marks signatures declared as methods, whose parameters
	// always compare bivariantly
	SignatureMethod
	SignatureConstruct
)

// Param is a parameter of a signature. The type of a rest parameter is its array type.
type Param struct {
	Name     string
	Type     TypeID
	Optional bool
	Symbol   binder.SymbolID
}

// PredicateKind tells `x is T` from `asserts x is T` and `asserts x`
type PredicateKind uint8

const (
	PredicateIdentifier PredicateKind = iota
	PredicateAssertsIdentifier
	PredicateThis
	PredicateAssertsThis
)

func (k PredicateKind) IsAsserts() bool {
	return k == PredicateAssertsIdentifier || k == PredicateAssertsThis
}

// TypePredicate is the return type annotation of type guards and assertion functions
type TypePredicate struct {
	Kind           PredicateKind
	ParameterName  string
	ParameterIndex int
	// Type is NoType for `asserts x`
	Type TypeID
}

// Signature is a call or construct signature. Return types may be resolved on
// first use, see Store.ReturnType.
type Signature struct {
	Declaration    ast.NodeID
	TypeParameters []TypeID
	Params         []Param
	MinArgs        int
	Flags          SignatureFlags
	Predicate      *TypePredicate

	returnType    TypeID
	resolveReturn func() TypeID
	returnState   resolution

	// Target and Mapper record what an instantiated signature was instantiated from
	Target *Signature
	Mapper *Mapper

	instantiations map[string]*Signature
	erased         *Signature
}

// NewSignature creates a signature with a known return type
func NewSignature(params []Param, minArgs int, returnType TypeID) *Signature {
	return &Signature{Params: params, MinArgs: minArgs, returnType: returnType, returnState: resolved}
}

// SetReturnType fixes the return type of a signature built with a lazy one
func (sig *Signature) SetReturnType(t TypeID) {
	sig.returnType = t
	sig.returnState = resolved
}

// SetReturnResolver makes the return type lazy
func (sig *Signature) SetReturnResolver(resolve func() TypeID) {
	sig.resolveReturn = resolve
	sig.returnState = unresolved
}

func (sig *Signature) HasRest() bool { return sig.Flags&SignatureHasRest != 0 }
func (sig *Signature) IsMethod() bool {
	return sig.Flags&SignatureMethod != 0
}

// ParamCount counts declared parameters, the rest parameter included
func (sig *Signature) ParamCount() int { return len(sig.Params) }

// Root follows Target to the declared signature
func (sig *Signature) Root() *Signature {
	for sig.Target != nil {
		sig = sig.Target
	}
	return sig
}
