// Package types holds the type representation of a checking session: interned
// type identities, instantiation, the resolution of type operators, and the
// relation engine that decides identity, subtyping, assignability and comparability.
package types

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
)

// TypeID addresses a Type in its Store. Two structurally identical types built
// through the Store constructors share a TypeID.
type TypeID uint32

const NoType TypeID = 0

func (id TypeID) IsPresent() bool { return id != NoType }

// Flags classify a type
type Flags uint32

const (
	FlagAny Flags = 1 << iota
	FlagUnknown
	FlagString
	FlagNumber
	FlagBoolean
	FlagStringLiteral
	FlagNumberLiteral
	FlagBooleanLiteral
	FlagEnumLiteral
	FlagVoid
	FlagUndefined
	FlagNull
	FlagNever
	FlagTypeParameter
	FlagObject
	FlagNonPrimitive
	FlagUnion
	FlagIntersection
	FlagIndex
	FlagIndexedAccess
	FlagConditional
	FlagTemplateLiteral

	FlagNone Flags = 0

	FlagLiteral             = FlagStringLiteral | FlagNumberLiteral | FlagBooleanLiteral
	FlagUnit                = FlagLiteral | FlagUndefined | FlagNull | FlagVoid
	FlagStringLike          = FlagString | FlagStringLiteral | FlagTemplateLiteral
	FlagNumberLike          = FlagNumber | FlagNumberLiteral
	FlagBooleanLike         = FlagBoolean | FlagBooleanLiteral
	FlagNullable            = FlagUndefined | FlagNull
	FlagAnyOrUnknown        = FlagAny | FlagUnknown
	FlagPrimitive           = FlagString | FlagNumber | FlagBoolean | FlagLiteral | FlagVoid | FlagUndefined | FlagNull | FlagTemplateLiteral
	FlagUnionOrIntersection = FlagUnion | FlagIntersection
	FlagStructured          = FlagObject | FlagUnionOrIntersection
	FlagTypeVariable        = FlagTypeParameter | FlagIndexedAccess
	FlagInstantiable        = FlagTypeVariable | FlagIndex | FlagConditional | FlagTemplateLiteral
	FlagDefinitelyFalsy     = FlagVoid | FlagUndefined | FlagNull
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagAny, "Any"},
	{FlagUnknown, "Unknown"},
	{FlagString, "String"},
	{FlagNumber, "Number"},
	{FlagBoolean, "Boolean"},
	{FlagStringLiteral, "StringLiteral"},
	{FlagNumberLiteral, "NumberLiteral"},
	{FlagBooleanLiteral, "BooleanLiteral"},
	{FlagEnumLiteral, "EnumLiteral"},
	{FlagVoid, "Void"},
	{FlagUndefined, "Undefined"},
	{FlagNull, "Null"},
	{FlagNever, "Never"},
	{FlagTypeParameter, "TypeParameter"},
	{FlagObject, "Object"},
	{FlagNonPrimitive, "NonPrimitive"},
	{FlagUnion, "Union"},
	{FlagIntersection, "Intersection"},
	{FlagIndex, "Index"},
	{FlagIndexedAccess, "IndexedAccess"},
	{FlagConditional, "Conditional"},
	{FlagTemplateLiteral, "TemplateLiteral"},
}

func (f Flags) String() string {
	if f == FlagNone {
		return "None"
	}
	var names []string
	for _, n := range flagNames {
		if f&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// ObjectFlags refine FlagObject types
type ObjectFlags uint32

const (
	ObjectClass ObjectFlags = 1 << iota
	ObjectInterface
	ObjectReference
	ObjectTuple
	ObjectAnonymous
	ObjectMapped
	ObjectInstantiated
	ObjectLiteral
	ObjectArrayLiteral
	// ObjectFresh marks object literal types still subject to excess property checks
	ObjectFresh
	ObjectFunction

	ObjectNone ObjectFlags = 0

	ObjectClassOrInterface = ObjectClass | ObjectInterface
)

func (f ObjectFlags) IsReference() bool { return f&ObjectReference != 0 }
func (f ObjectFlags) IsTuple() bool     { return f&ObjectTuple != 0 }
func (f ObjectFlags) IsAnonymous() bool { return f&ObjectAnonymous != 0 }
func (f ObjectFlags) IsMapped() bool    { return f&ObjectMapped != 0 }
func (f ObjectFlags) IsLiteral() bool   { return f&ObjectLiteral != 0 }
func (f ObjectFlags) IsFresh() bool     { return f&ObjectFresh != 0 }

// Alias records the type alias a type was written through, so that it can be
// displayed and compared by name
type Alias struct {
	Symbol binder.SymbolID
	Args   []TypeID
}

// Type is the header shared by every kind of type. Its payload, see As, depends on Flags.
type Type struct {
	id          TypeID
	flags       Flags
	objectFlags ObjectFlags
	symbol      binder.SymbolID
	alias       *Alias
	data        any

	// members caches the resolved structure of object, union and intersection types
	members   *Members
	resolving bool

	// fresh and regular link the two variants of literal types and object literal types
	fresh   TypeID
	regular TypeID
}

func (t *Type) ID() TypeID               { return t.id }
func (t *Type) Flags() Flags             { return t.flags }
func (t *Type) ObjectFlags() ObjectFlags { return t.objectFlags }
func (t *Type) Symbol() binder.SymbolID  { return t.symbol }
func (t *Type) Alias() *Alias            { return t.alias }
func (t *Type) Is(f Flags) bool          { return t.flags&f != 0 }

func (t *Type) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("id", uint64(t.id)),
		slog.String("flags", t.flags.String()),
	)
}

func (t *Type) String() string {
	return fmt.Sprintf("type#%d[%s]", t.id, t.flags)
}

// As returns the payload of t when it has type T, and nil otherwise
func As[T any](t *Type) *T {
	if t == nil {
		return nil
	}
	if d, ok := t.data.(*T); ok {
		return d
	}
	return nil
}

// Intrinsic is the payload of any, unknown, string, number, void, undefined,
// null, never and object
type Intrinsic struct {
	Name string
}

// Literal is the payload of string, number and boolean literal types, and of enum members.
// Value is a string, a float64 or a bool.
type Literal struct {
	Value any
}

func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case float64:
		return ast.FormatNumber(v)
	}
	return fmt.Sprint(l.Value)
}

// UnionOrIntersection is the payload of union and intersection types. Union
// members are in canonical order; intersection members keep their written order.
type UnionOrIntersection struct {
	Types []TypeID
}

// TypeParameter is the payload of type parameters. Constraints and defaults are
// resolved on demand because they may refer to the parameter itself.
type TypeParameter struct {
	Name        string
	Declaration ast.NodeID

	constraint        TypeID
	resolveConstraint func() TypeID
	constraintState   resolution

	defaultType    TypeID
	resolveDefault func() TypeID
	defaultState   resolution

	// IsMarker tags the synthetic parameters used to measure variance
	IsMarker bool
}

type resolution uint8

const (
	unresolved resolution = iota
	resolving
	resolved
)

// InterfaceType is the payload of class, interface and tuple target types.
// Generic targets are referenced through TypeReference types.
type InterfaceType struct {
	TypeParameters []TypeID
	Declaration    ast.NodeID

	resolveDeclared func() *Members
	declared        *Members
	declaredState   resolution

	// ElementFlags describe each element of a tuple target
	ElementFlags []ElementFlags
	// Readonly tuples only relate to readonly targets
	Readonly bool
}

// Arity is the number of elements of a tuple target
func (i *InterfaceType) Arity() int { return len(i.ElementFlags) }

// MinLength is the number of required elements of a tuple target
func (i *InterfaceType) MinLength() int {
	n := 0
	for _, f := range i.ElementFlags {
		if f&ElementRequired != 0 {
			n++
		}
	}
	return n
}

// HasRest reports tuple targets whose last element is a rest element
func (i *InterfaceType) HasRest() bool {
	return len(i.ElementFlags) > 0 && i.ElementFlags[len(i.ElementFlags)-1]&ElementRest != 0
}

type ElementFlags uint8

const (
	ElementRequired ElementFlags = 1 << iota
	ElementOptional
	ElementRest
)

// TypeReference is the payload of instantiations of generic classes, interfaces and tuples
type TypeReference struct {
	Target TypeID
	Args   []TypeID
}

// AnonymousType is the payload of type literals, function types and object literal types.
// Instantiations record the declared type in Target and the mapping of its outer
// type parameters in Mapper.
type AnonymousType struct {
	Declaration ast.NodeID
	// OuterTypeParameters are the type parameters in scope at the declaration, the only
	// ones an instantiation needs to map
	OuterTypeParameters []TypeID
	Target              TypeID
	Mapper              *Mapper

	resolve func() *Members
}

// MappedModifiers record `readonly` and `?` modifiers of mapped types
type MappedModifiers uint8

const (
	IncludeReadonly MappedModifiers = 1 << iota
	ExcludeReadonly
	IncludeOptional
	ExcludeOptional
)

// MappedType is the payload of `{ [K in C]: T }` types
type MappedType struct {
	Declaration         ast.NodeID
	TypeParameter       TypeID
	ConstraintType      TypeID
	TemplateType        TypeID
	Modifiers           MappedModifiers
	OuterTypeParameters []TypeID
	Target              TypeID
	Mapper              *Mapper
}

// IndexType is the payload of deferred `keyof T` types
type IndexType struct {
	Target TypeID
}

// IndexedAccessType is the payload of deferred `T[K]` types
type IndexedAccessType struct {
	Object TypeID
	Index  TypeID
}

// ConditionalRoot is the declared form of a conditional type, shared by all of its instantiations
type ConditionalRoot struct {
	id          uint32
	Declaration ast.NodeID
	CheckType   TypeID
	ExtendsType TypeID
	TrueType    TypeID
	FalseType   TypeID
	// IsDistributive is set when CheckType is a naked type parameter
	IsDistributive      bool
	InferTypeParameters []TypeID
	OuterTypeParameters []TypeID
}

// ConditionalType is the payload of deferred conditional types
type ConditionalType struct {
	Root        *ConditionalRoot
	Mapper      *Mapper
	CheckType   TypeID
	ExtendsType TypeID
}

// TemplateLiteralType is the payload of template literal types. Texts has one
// more element than Types.
type TemplateLiteralType struct {
	Texts []string
	Types []TypeID
}
