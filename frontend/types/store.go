package types

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/internal/config"
	"github.com/cottand/strux/internal/log"
)

var logger = log.Section("types")

// Globals are the declared types the checker supplies for apparent members of
// primitives, functions and arrays
type Globals struct {
	String   TypeID
	Number   TypeID
	Boolean  TypeID
	Object   TypeID
	Function TypeID
	// Array is the generic Array<T> interface
	Array TypeID
}

// Inferrer infers type arguments for the `infer` declarations of conditional types
type Inferrer interface {
	InferTypeArguments(typeParams []TypeID, source, target TypeID) []TypeID
}

// Store owns every type of one checking session, along with the caches of the
// relation engine. It is not safe for concurrent use.
type Store struct {
	opts    config.Options
	types   []*Type
	intern  map[uint64][]internEntry
	metrics *Metrics
	diags   *diag.Bag

	// file and currentPos locate the diagnostics reported while relating and
	// instantiating, so that callers don't pass a position on every call
	file       string
	currentPos ast.Positioner

	formatter func(TypeID) string
	inferrer  Inferrer
	globals   Globals

	Any, Error, Unknown, Never, Void, Undefined, Null TypeID
	String, Number, Boolean, True, False             TypeID
	NonPrimitive, EmptyObject, StringOrNumber        TypeID
	// markers used when measuring variance
	markerSuper, markerSub, markerOther TypeID

	relations          [numRelations]map[relKey]Result
	variances          map[TypeID][]Variance
	aliases            map[binder.SymbolID]*AliasDeclaration
	aliasVariances     map[binder.SymbolID][]Variance
	conditionalRoots   []*ConditionalRoot
	varianceReporter   func(unreliable bool)
	markerTypes        map[TypeID]bool
	measuring          map[TypeID]bool
	measuringAliases   map[binder.SymbolID]bool
	namer              func(binder.SymbolID) string
	instantiationDepth int
	instantiationCount int
	tupleTargets       map[string]TypeID
	fallbackArray      TypeID
}

type internEntry struct {
	key string
	id  TypeID
}

// AliasDeclaration is a generic type alias
type AliasDeclaration struct {
	Symbol         binder.SymbolID
	TypeParameters []TypeID
	Declared       TypeID
}

func NewStore(opts config.Options) *Store {
	s := &Store{
		opts:           opts,
		types:          []*Type{nil},
		intern:         map[uint64][]internEntry{},
		metrics:        newMetrics(),
		diags:          diag.NewBag(),
		variances:      map[TypeID][]Variance{},
		aliases:        map[binder.SymbolID]*AliasDeclaration{},
		aliasVariances: map[binder.SymbolID][]Variance{},
		tupleTargets:   map[string]TypeID{},
		markerTypes:      map[TypeID]bool{},
		measuring:        map[TypeID]bool{},
		measuringAliases: map[binder.SymbolID]bool{},
	}
	for i := range s.relations {
		s.relations[i] = map[relKey]Result{}
	}
	s.Any = s.intrinsic(FlagAny, "any")
	s.Error = s.intrinsic(FlagAny, "error")
	s.Unknown = s.intrinsic(FlagUnknown, "unknown")
	s.Never = s.intrinsic(FlagNever, "never")
	s.Void = s.intrinsic(FlagVoid, "void")
	s.Undefined = s.intrinsic(FlagUndefined, "undefined")
	s.Null = s.intrinsic(FlagNull, "null")
	s.String = s.intrinsic(FlagString, "string")
	s.Number = s.intrinsic(FlagNumber, "number")
	s.False = s.literal(FlagBooleanLiteral, false, binder.NoSymbol)
	s.True = s.literal(FlagBooleanLiteral, true, binder.NoSymbol)
	s.Boolean = s.Union(s.False, s.True)
	s.NonPrimitive = s.intrinsic(FlagNonPrimitive, "object")
	s.EmptyObject = s.Object(NewMembers(), ObjectAnonymous)
	s.StringOrNumber = s.Union(s.String, s.Number)

	s.markerSuper = s.NewTypeParameter("", binder.NoSymbol, ast.NoNode)
	s.markerSub = s.NewTypeParameter("", binder.NoSymbol, ast.NoNode)
	s.markerOther = s.NewTypeParameter("", binder.NoSymbol, ast.NoNode)
	for _, m := range []TypeID{s.markerSuper, s.markerSub, s.markerOther} {
		As[TypeParameter](s.Get(m)).IsMarker = true
	}
	s.SetConstraint(s.markerSub, s.markerSuper)

	s.fallbackArray = s.newFallbackArray()
	s.globals.Array = s.fallbackArray
	return s
}

func (s *Store) Options() config.Options { return s.opts }
func (s *Store) Metrics() *Metrics       { return s.metrics }
func (s *Store) Diagnostics() *diag.Bag  { return s.diags }
func (s *Store) Globals() Globals        { return s.globals }
func (s *Store) Len() int                { return len(s.types) - 1 }

// SetGlobals installs the declared global types. Missing entries keep their defaults.
func (s *Store) SetGlobals(g Globals) {
	if !g.Array.IsPresent() {
		g.Array = s.fallbackArray
	}
	s.globals = g
}

func (s *Store) SetInferrer(i Inferrer) { s.inferrer = i }

// SetFormatter installs the function used to display types in diagnostics
func (s *Store) SetFormatter(f func(TypeID) string) { s.formatter = f }

// SetSymbolNamer installs the function naming declared types in debug output
func (s *Store) SetSymbolNamer(f func(binder.SymbolID) string) { s.namer = f }

// SetLocation sets where diagnostics reported by the Store point to, and returns
// the previous location
func (s *Store) SetLocation(file string, at ast.Positioner) (string, ast.Positioner) {
	prevFile, prevPos := s.file, s.currentPos
	s.file, s.currentPos = file, at
	return prevFile, prevPos
}

func (s *Store) report(code diag.Code, args ...any) {
	s.diags.Add(diag.New(s.file, s.currentPos, code, args...))
}

// TypeString displays t with the installed formatter
func (s *Store) TypeString(t TypeID) string {
	if s.formatter != nil {
		return s.formatter(t)
	}
	return s.debugString(t, 0)
}

// Get returns the type with the given id, or nil for NoType
func (s *Store) Get(id TypeID) *Type {
	if int(id) >= len(s.types) {
		return nil
	}
	return s.types[id]
}

func (s *Store) Flags(id TypeID) Flags {
	if t := s.Get(id); t != nil {
		return t.flags
	}
	return FlagNone
}

func (s *Store) ObjectFlags(id TypeID) ObjectFlags {
	if t := s.Get(id); t != nil {
		return t.objectFlags
	}
	return ObjectNone
}

// Is reports whether id has any of the flags f
func (s *Store) Is(id TypeID, f Flags) bool { return s.Flags(id)&f != 0 }

func (s *Store) add(t *Type) TypeID {
	t.id = TypeID(len(s.types))
	s.types = append(s.types, t)
	s.metrics.TypesCreated.Inc()
	return t.id
}

// interned returns the type stored under key, creating it with create the first time
func (s *Store) interned(key *keyBuilder, create func() *Type) TypeID {
	h := xxhash.Sum64(key.buf)
	for _, e := range s.intern[h] {
		if e.key == string(key.buf) {
			return e.id
		}
	}
	id := s.add(create())
	s.intern[h] = append(s.intern[h], internEntry{key: string(key.buf), id: id})
	return id
}

// keyBuilder encodes the identity of a type for interning
type keyBuilder struct {
	buf []byte
}

func newKey(tag byte) *keyBuilder {
	return &keyBuilder{buf: append(make([]byte, 0, 32), tag)}
}

func (k *keyBuilder) u32(v uint32) *keyBuilder {
	k.buf = binary.LittleEndian.AppendUint32(k.buf, v)
	return k
}

func (k *keyBuilder) id(id TypeID) *keyBuilder { return k.u32(uint32(id)) }

func (k *keyBuilder) ids(ids []TypeID) *keyBuilder {
	k.u32(uint32(len(ids)))
	for _, id := range ids {
		k.id(id)
	}
	return k
}

func (k *keyBuilder) str(v string) *keyBuilder {
	k.u32(uint32(len(v)))
	k.buf = append(k.buf, v...)
	return k
}

func (k *keyBuilder) value(v any) *keyBuilder {
	switch v := v.(type) {
	case string:
		k.buf = append(k.buf, 's')
		k.str(v)
	case float64:
		k.buf = append(k.buf, 'n')
		k.buf = binary.LittleEndian.AppendUint64(k.buf, math.Float64bits(v))
	case bool:
		if v {
			k.buf = append(k.buf, 't')
		} else {
			k.buf = append(k.buf, 'f')
		}
	}
	return k
}

func (s *Store) intrinsic(flags Flags, name string) TypeID {
	return s.add(&Type{flags: flags, data: &Intrinsic{Name: name}})
}

// IntrinsicName returns the keyword of an intrinsic type, or ""
func (s *Store) IntrinsicName(id TypeID) string {
	if in := As[Intrinsic](s.Get(id)); in != nil {
		return in.Name
	}
	return ""
}

func (s *Store) literal(flags Flags, value any, enum binder.SymbolID) TypeID {
	regular := s.interned(newKey('L').u32(uint32(flags)).u32(uint32(enum)).value(value), func() *Type {
		return &Type{flags: flags, symbol: enum, data: &Literal{Value: value}}
	})
	r := s.Get(regular)
	if !r.fresh.IsPresent() {
		r.regular = regular
		fresh := s.add(&Type{flags: flags, symbol: enum, data: r.data, regular: regular})
		s.Get(fresh).fresh = fresh
		r.fresh = fresh
	}
	return regular
}

func (s *Store) StringLiteral(v string) TypeID  { return s.literal(FlagStringLiteral, v, binder.NoSymbol) }
func (s *Store) NumberLiteral(v float64) TypeID { return s.literal(FlagNumberLiteral, v, binder.NoSymbol) }

func (s *Store) BooleanLiteral(v bool) TypeID {
	if v {
		return s.True
	}
	return s.False
}

// EnumLiteral is the type of one enum member
func (s *Store) EnumLiteral(member binder.SymbolID, value any) TypeID {
	flags := FlagEnumLiteral | FlagNumberLiteral
	if _, ok := value.(string); ok {
		flags = FlagEnumLiteral | FlagStringLiteral
	}
	return s.literal(flags, value, member)
}

// LiteralValue returns the value of a literal type, or nil
func (s *Store) LiteralValue(id TypeID) any {
	if l := As[Literal](s.Get(id)); l != nil {
		return l.Value
	}
	return nil
}

// Fresh returns the fresh variant of a literal type, the type of a literal
// expression, which widens when inferred for a mutable location
func (s *Store) Fresh(id TypeID) TypeID {
	t := s.Get(id)
	if t == nil || !t.fresh.IsPresent() {
		return id
	}
	return t.fresh
}

// Regular strips freshness from literal and object literal types
func (s *Store) Regular(id TypeID) TypeID {
	t := s.Get(id)
	if t == nil || !t.regular.IsPresent() {
		return id
	}
	return t.regular
}

func (s *Store) IsFresh(id TypeID) bool {
	t := s.Get(id)
	return t != nil && t.regular.IsPresent() && t.regular != id
}

// NewTypeParameter creates a distinct type parameter
func (s *Store) NewTypeParameter(name string, symbol binder.SymbolID, decl ast.NodeID) TypeID {
	return s.add(&Type{flags: FlagTypeParameter, symbol: symbol, data: &TypeParameter{Name: name, Declaration: decl}})
}

func (s *Store) SetConstraint(tp, constraint TypeID) {
	if p := As[TypeParameter](s.Get(tp)); p != nil {
		p.constraint, p.constraintState = constraint, resolved
	}
}

// SetConstraintResolver makes the constraint of tp lazy
func (s *Store) SetConstraintResolver(tp TypeID, resolve func() TypeID) {
	if p := As[TypeParameter](s.Get(tp)); p != nil {
		p.resolveConstraint, p.constraintState = resolve, unresolved
	}
}

// SetDefaultResolver makes the default of tp lazy
func (s *Store) SetDefaultResolver(tp TypeID, resolve func() TypeID) {
	if p := As[TypeParameter](s.Get(tp)); p != nil {
		p.resolveDefault, p.defaultState = resolve, unresolved
	}
}

// ConstraintOf returns the declared constraint of a type parameter, NoType when
// it has none or when the constraint circularly depends on itself
func (s *Store) ConstraintOf(tp TypeID) TypeID {
	p := As[TypeParameter](s.Get(tp))
	if p == nil {
		return NoType
	}
	switch p.constraintState {
	case resolving:
		return NoType
	case unresolved:
		if p.resolveConstraint == nil {
			p.constraintState = resolved
			break
		}
		p.constraintState = resolving
		c := p.resolveConstraint()
		if p.constraintState == resolving {
			p.constraint, p.constraintState = c, resolved
		}
		if s.constraintCycles(tp, p.constraint) {
			p.constraint = NoType
		}
	}
	return p.constraint
}

// constraintCycles reports `T extends U, U extends T`
func (s *Store) constraintCycles(tp, c TypeID) bool {
	seen := map[TypeID]bool{tp: true}
	for s.Is(c, FlagTypeParameter) {
		if seen[c] {
			return true
		}
		seen[c] = true
		p := As[TypeParameter](s.Get(c))
		if p.constraintState != resolved {
			return false
		}
		c = p.constraint
	}
	return false
}

// DefaultOf returns the default of a type parameter, or NoType
func (s *Store) DefaultOf(tp TypeID) TypeID {
	p := As[TypeParameter](s.Get(tp))
	if p == nil {
		return NoType
	}
	switch p.defaultState {
	case resolving:
		return NoType
	case unresolved:
		if p.resolveDefault == nil {
			p.defaultState = resolved
			break
		}
		p.defaultState = resolving
		d := p.resolveDefault()
		p.defaultType, p.defaultState = d, resolved
	}
	return p.defaultType
}

// NewInterface creates the declared type of a class or interface. resolveDeclared
// supplies its members, inherited ones included, when they are first needed.
func (s *Store) NewInterface(flags ObjectFlags, symbol binder.SymbolID, decl ast.NodeID, typeParams []TypeID, resolveDeclared func() *Members) TypeID {
	return s.add(&Type{
		flags:       FlagObject,
		objectFlags: flags & ObjectClassOrInterface,
		symbol:      symbol,
		data:        &InterfaceType{TypeParameters: typeParams, Declaration: decl, resolveDeclared: resolveDeclared},
	})
}

// TypeParametersOf returns the type parameters of a generic class, interface or tuple target
func (s *Store) TypeParametersOf(target TypeID) []TypeID {
	if i := As[InterfaceType](s.Get(target)); i != nil {
		return i.TypeParameters
	}
	return nil
}

// DeclaredMembers resolves the members of a class or interface as declared,
// with its type parameters unmapped
func (s *Store) DeclaredMembers(target TypeID) *Members {
	i := As[InterfaceType](s.Get(target))
	if i == nil {
		return emptyMembers
	}
	switch i.declaredState {
	case resolving:
		return emptyMembers
	case unresolved:
		i.declaredState = resolving
		m := emptyMembers
		if i.resolveDeclared != nil {
			m = i.resolveDeclared()
		}
		i.declared, i.declaredState = m, resolved
	}
	return i.declared
}

// Reference instantiates a generic class, interface or tuple target. Missing
// arguments are filled from defaults; for non-generic targets it returns target.
func (s *Store) Reference(target TypeID, args ...TypeID) TypeID {
	i := As[InterfaceType](s.Get(target))
	if i == nil || len(i.TypeParameters) == 0 {
		return target
	}
	args = s.fillMissingTypeArguments(args, i.TypeParameters)
	tuple := s.ObjectFlags(target) & ObjectTuple
	return s.interned(newKey('R').id(target).ids(args), func() *Type {
		return &Type{
			flags:       FlagObject,
			objectFlags: ObjectReference | tuple,
			symbol:      s.Get(target).symbol,
			data:        &TypeReference{Target: target, Args: args},
		}
	})
}

func (s *Store) fillMissingTypeArguments(args, params []TypeID) []TypeID {
	if len(args) >= len(params) {
		return args[:len(params)]
	}
	filled := make([]TypeID, len(params))
	copy(filled, args)
	mapper := NewMapper(params, filled)
	for i := len(args); i < len(params); i++ {
		d := s.DefaultOf(params[i])
		if !d.IsPresent() {
			d = s.Unknown
		} else {
			d = s.Instantiate(d, mapper)
		}
		filled[i] = d
	}
	return filled
}

// TargetOf returns the generic target of a reference, or id itself
func (s *Store) TargetOf(id TypeID) TypeID {
	if r := As[TypeReference](s.Get(id)); r != nil {
		return r.Target
	}
	return id
}

// TypeArguments returns the arguments of a reference
func (s *Store) TypeArguments(id TypeID) []TypeID {
	if r := As[TypeReference](s.Get(id)); r != nil {
		return r.Args
	}
	return nil
}

// NewAnonymous creates the type of a type literal, function or object literal
// declaration. outer lists the type parameters in scope at the declaration.
func (s *Store) NewAnonymous(flags ObjectFlags, symbol binder.SymbolID, decl ast.NodeID, outer []TypeID, resolve func() *Members) TypeID {
	return s.add(&Type{
		flags:       FlagObject,
		objectFlags: ObjectAnonymous | flags,
		symbol:      symbol,
		data:        &AnonymousType{Declaration: decl, OuterTypeParameters: outer, resolve: resolve},
	})
}

// Object creates a structural object type from resolved members. Types whose
// members are all known are interned by structure.
func (s *Store) Object(m *Members, flags ObjectFlags) TypeID {
	flags |= ObjectAnonymous
	create := func() *Type {
		return &Type{flags: FlagObject, objectFlags: flags, data: &AnonymousType{}, members: m}
	}
	if !m.isResolved() {
		if flags&ObjectFresh == 0 {
			return s.add(create())
		}
		regular := s.add(&Type{flags: FlagObject, objectFlags: flags &^ ObjectFresh, data: &AnonymousType{}, members: m})
		s.Get(regular).regular = regular
		fresh := create()
		fresh.regular = regular
		return s.add(fresh)
	}
	key := newKey('O').u32(uint32(flags &^ ObjectFresh))
	s.membersKey(key, m)
	regular := s.interned(key, func() *Type {
		t := create()
		t.objectFlags &^= ObjectFresh
		return t
	})
	if flags&ObjectFresh == 0 {
		return regular
	}
	r := s.Get(regular)
	r.regular = regular
	fresh := s.add(&Type{flags: FlagObject, objectFlags: flags, data: r.data, members: m, regular: regular})
	return fresh
}

func (s *Store) membersKey(key *keyBuilder, m *Members) {
	key.u32(uint32(len(m.Properties)))
	for _, p := range m.Properties {
		key.str(p.Name).u32(uint32(p.Flags)).id(p.typ)
	}
	for _, sigs := range [][]*Signature{m.CallSignatures, m.ConstructSignatures} {
		key.u32(uint32(len(sigs)))
		for _, sig := range sigs {
			key.u32(uint32(sig.Flags)).u32(uint32(sig.MinArgs)).u32(uint32(len(sig.Params)))
			for _, p := range sig.Params {
				key.id(p.Type)
			}
			key.id(sig.returnType)
		}
	}
	for _, info := range []*IndexInfo{m.StringIndex, m.NumberIndex} {
		if info == nil {
			key.u32(0)
			continue
		}
		key.u32(1).id(info.Type)
	}
}

// FunctionType is the type of a value with the single call signature sig
func (s *Store) FunctionType(sig *Signature) TypeID {
	m := NewMembers()
	m.CallSignatures = []*Signature{sig}
	return s.Object(m, ObjectFunction)
}

// Tuple creates a tuple type. flags may be nil for a tuple of required elements.
func (s *Store) Tuple(elements []TypeID, flags []ElementFlags, readonly bool) TypeID {
	if flags == nil {
		flags = make([]ElementFlags, len(elements))
		for i := range flags {
			flags[i] = ElementRequired
		}
	}
	key := newKey('T')
	for _, f := range flags {
		key.u32(uint32(f))
	}
	if readonly {
		key.u32(1)
	}
	target, ok := s.tupleTargets[string(key.buf)]
	if !ok {
		params := make([]TypeID, len(flags))
		for i := range params {
			params[i] = s.NewTypeParameter("", binder.NoSymbol, ast.NoNode)
		}
		target = s.add(&Type{
			flags:       FlagObject,
			objectFlags: ObjectTuple | ObjectInterface,
			data:        &InterfaceType{TypeParameters: params, ElementFlags: flags, Readonly: readonly},
		})
		s.tupleTargets[string(key.buf)] = target
	}
	if len(elements) == 0 {
		return target
	}
	return s.Reference(target, elements...)
}

// TupleTarget returns the tuple target of a tuple type, or nil
func (s *Store) TupleTarget(id TypeID) *InterfaceType {
	if s.ObjectFlags(id)&ObjectTuple == 0 {
		return nil
	}
	return As[InterfaceType](s.Get(s.TargetOf(id)))
}

// TupleElements returns the element types of a tuple type
func (s *Store) TupleElements(id TypeID) []TypeID {
	if s.TupleTarget(id) == nil {
		return nil
	}
	return s.TypeArguments(id)
}

// ArrayOf is Array<elem>
func (s *Store) ArrayOf(elem TypeID) TypeID {
	return s.Reference(s.globals.Array, elem)
}

// IsArray reports references to the global Array interface
func (s *Store) IsArray(id TypeID) bool {
	return s.ObjectFlags(id)&ObjectReference != 0 && s.TargetOf(id) == s.globals.Array
}

// IsArrayOrTuple reports arrays and tuples
func (s *Store) IsArrayOrTuple(id TypeID) bool {
	return s.IsArray(id) || s.TupleTarget(id) != nil
}

// ElementType returns the element type of an array, the union of the element
// types of a tuple, and NoType otherwise
func (s *Store) ElementType(id TypeID) TypeID {
	if s.IsArray(id) {
		return s.TypeArguments(id)[0]
	}
	if s.TupleTarget(id) != nil {
		return s.Union(s.TupleElements(id)...)
	}
	return NoType
}

// newFallbackArray declares `interface Array<T> { [n: number]: T; length: number }`
// for sessions that have no global Array
func (s *Store) newFallbackArray() TypeID {
	t := s.NewTypeParameter("T", binder.NoSymbol, ast.NoNode)
	return s.NewInterface(ObjectInterface, binder.NoSymbol, ast.NoNode, []TypeID{t}, func() *Members {
		m := NewMembers().Add(NewProperty("length", 0, s.Number))
		m.NumberIndex = &IndexInfo{KeyType: s.Number, Type: t}
		return m
	})
}

// RegisterAlias records a generic type alias so that references to it can be
// compared by variance and instantiated by symbol
func (s *Store) RegisterAlias(symbol binder.SymbolID, typeParams []TypeID, declared TypeID) {
	s.aliases[symbol] = &AliasDeclaration{Symbol: symbol, TypeParameters: typeParams, Declared: declared}
	t := s.Get(declared)
	if t != nil && t.alias == nil && len(typeParams) > 0 && s.carriesAlias(t) {
		t.alias = &Alias{Symbol: symbol, Args: typeParams}
	}
}

func (s *Store) carriesAlias(t *Type) bool {
	return t.objectFlags&(ObjectAnonymous|ObjectMapped) != 0 && t.objectFlags&ObjectLiteral == 0 ||
		t.flags&FlagConditional != 0
}

// AliasOf returns the declaration of a registered generic alias
func (s *Store) AliasOf(symbol binder.SymbolID) *AliasDeclaration {
	return s.aliases[symbol]
}

// InstantiateAlias is the type of `Alias<args>`
func (s *Store) InstantiateAlias(symbol binder.SymbolID, args []TypeID) TypeID {
	a := s.aliases[symbol]
	if a == nil {
		return s.Error
	}
	args = s.fillMissingTypeArguments(args, a.TypeParameters)
	return s.Instantiate(a.Declared, NewMapper(a.TypeParameters, args))
}
