package binder

import (
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/cottand/strux/frontend/ast"
)

// SymbolID addresses a Symbol in its Bindings
type SymbolID uint32

const NoSymbol SymbolID = 0

func (id SymbolID) IsPresent() bool { return id != NoSymbol }

// SymbolFlags say which kinds of declaration contributed to a symbol
type SymbolFlags uint32

const (
	FunctionScopedVariable SymbolFlags = 1 << iota
	BlockScopedVariable
	Property
	EnumMember
	Function
	Class
	Interface
	ConstEnum
	RegularEnum
	ValueModule
	NamespaceModule
	TypeLiteral
	ObjectLiteral
	Method
	Constructor
	Signature
	TypeParameter
	TypeAlias
	Alias
	// Optional marks properties declared with `?`
	Optional
	// Transient symbols are created by the checker rather than by binding
	Transient
	Prototype

	NoSymbolFlags SymbolFlags = 0

	Enum      = RegularEnum | ConstEnum
	Variable  = FunctionScopedVariable | BlockScopedVariable
	Value     = Variable | Property | EnumMember | ObjectLiteral | Function | Class | Enum | ValueModule | Method
	Type      = Class | Interface | Enum | EnumMember | TypeLiteral | TypeParameter | TypeAlias
	Namespace = ValueModule | NamespaceModule | Enum
	Module    = ValueModule | NamespaceModule

	// Excludes: a declaration with flags F may not merge into a symbol whose flags
	// intersect FExcludes.
	FunctionScopedVariableExcludes = Value &^ FunctionScopedVariable
	BlockScopedVariableExcludes    = Value
	ParameterExcludes              = Value
	PropertyExcludes               = NoSymbolFlags
	EnumMemberExcludes             = Value | Type
	FunctionExcludes               = Value &^ (Function | ValueModule | Class)
	ClassExcludes                  = (Value | Type) &^ (ValueModule | Interface | Function)
	InterfaceExcludes              = Type &^ (Interface | Class)
	RegularEnumExcludes            = (Value | Type) &^ (RegularEnum | ValueModule)
	ConstEnumExcludes              = (Value | Type) &^ ConstEnum
	ValueModuleExcludes            = Value &^ (Function | Class | RegularEnum | ValueModule)
	NamespaceModuleExcludes        = NoSymbolFlags
	MethodExcludes                 = Value &^ Method
	TypeParameterExcludes          = Type &^ TypeParameter
	TypeAliasExcludes              = Type
	AliasExcludes                  = Alias
	SignatureExcludes              = NoSymbolFlags
)

func (f SymbolFlags) IsVariable() bool      { return f&Variable != 0 }
func (f SymbolFlags) IsBlockScoped() bool   { return f&BlockScopedVariable != 0 }
func (f SymbolFlags) IsProperty() bool      { return f&Property != 0 }
func (f SymbolFlags) IsEnumMember() bool    { return f&EnumMember != 0 }
func (f SymbolFlags) IsFunction() bool      { return f&Function != 0 }
func (f SymbolFlags) IsClass() bool         { return f&Class != 0 }
func (f SymbolFlags) IsInterface() bool     { return f&Interface != 0 }
func (f SymbolFlags) IsEnum() bool          { return f&Enum != 0 }
func (f SymbolFlags) IsConstEnum() bool     { return f&ConstEnum != 0 }
func (f SymbolFlags) IsModule() bool        { return f&Module != 0 }
func (f SymbolFlags) IsValueModule() bool   { return f&ValueModule != 0 }
func (f SymbolFlags) IsTypeLiteral() bool   { return f&TypeLiteral != 0 }
func (f SymbolFlags) IsObjectLiteral() bool { return f&ObjectLiteral != 0 }
func (f SymbolFlags) IsMethod() bool        { return f&Method != 0 }
func (f SymbolFlags) IsConstructor() bool   { return f&Constructor != 0 }
func (f SymbolFlags) IsSignature() bool     { return f&Signature != 0 }
func (f SymbolFlags) IsTypeParameter() bool { return f&TypeParameter != 0 }
func (f SymbolFlags) IsTypeAlias() bool     { return f&TypeAlias != 0 }
func (f SymbolFlags) IsAlias() bool         { return f&Alias != 0 }
func (f SymbolFlags) IsOptional() bool      { return f&Optional != 0 }
func (f SymbolFlags) IsTransient() bool     { return f&Transient != 0 }
func (f SymbolFlags) IsValue() bool         { return f&Value != 0 }
func (f SymbolFlags) IsType() bool          { return f&Type != 0 }
func (f SymbolFlags) IsNamespace() bool     { return f&Namespace != 0 }

// Has reports whether f shares any flag with meaning
func (f SymbolFlags) Has(meaning SymbolFlags) bool { return f&meaning != 0 }

var symbolFlagNames = []struct {
	flag SymbolFlags
	name string
}{
	{FunctionScopedVariable, "FunctionScopedVariable"},
	{BlockScopedVariable, "BlockScopedVariable"},
	{Property, "Property"},
	{EnumMember, "EnumMember"},
	{Function, "Function"},
	{Class, "Class"},
	{Interface, "Interface"},
	{ConstEnum, "ConstEnum"},
	{RegularEnum, "RegularEnum"},
	{ValueModule, "ValueModule"},
	{NamespaceModule, "NamespaceModule"},
	{TypeLiteral, "TypeLiteral"},
	{ObjectLiteral, "ObjectLiteral"},
	{Method, "Method"},
	{Constructor, "Constructor"},
	{Signature, "Signature"},
	{TypeParameter, "TypeParameter"},
	{TypeAlias, "TypeAlias"},
	{Alias, "Alias"},
	{Optional, "Optional"},
	{Transient, "Transient"},
	{Prototype, "Prototype"},
}

func (f SymbolFlags) String() string {
	if f == NoSymbolFlags {
		return "None"
	}
	var names []string
	for _, n := range symbolFlagNames {
		if f&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// CanMerge reports whether a declaration whose kind excludes the flags in
// excludes may join a symbol that already has flags existing
func CanMerge(existing, excludes SymbolFlags) bool {
	return existing&excludes == 0
}

// Symbol is a named or anonymous declared entity. It merges every declaration
// that contributes to it, in source order.
type Symbol struct {
	id    SymbolID
	flags SymbolFlags
	// Name is the escaped name, see ast.EscapeName
	name string

	Declarations []ast.NodeID
	// ValueDeclaration is the first declaration that produces a value
	ValueDeclaration ast.NodeID

	// Members holds instance members of classes, interfaces and type or object literals
	Members *SymbolTable
	// Exports holds exported members of namespaces and modules, enum members and static class members
	Exports *SymbolTable

	// Parent is the symbol whose Members or Exports hold this one
	Parent SymbolID

	// mergeID is set when a symbol takes part in a merge, see Bindings.Merged
	mergeID uint32
}

func (s *Symbol) ID() SymbolID       { return s.id }
func (s *Symbol) Flags() SymbolFlags { return s.flags }
func (s *Symbol) Name() string       { return s.name }

// DisplayName is the unescaped name
func (s *Symbol) DisplayName() string { return ast.UnescapeName(s.name) }

func (s *Symbol) MergeID() uint32 { return s.mergeID }

func (s *Symbol) String() string {
	return fmt.Sprintf("%s#%d[%s]", s.DisplayName(), s.id, s.flags)
}

func (s *Symbol) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", s.DisplayName()),
		slog.Uint64("id", uint64(s.id)),
		slog.String("flags", s.flags.String()),
	)
}

// FirstDeclaration returns the first contributing declaration, or NoNode for
// symbols the checker synthesized without one
func (s *Symbol) FirstDeclaration() ast.NodeID {
	if len(s.Declarations) == 0 {
		return ast.NoNode
	}
	return s.Declarations[0]
}

// SymbolTable maps escaped names to symbols and remembers insertion order, so
// that iterating it is deterministic.
type SymbolTable struct {
	names []string
	ids   map[string]SymbolID
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{ids: map[string]SymbolID{}}
}

func (t *SymbolTable) Get(name string) (SymbolID, bool) {
	if t == nil {
		return NoSymbol, false
	}
	id, ok := t.ids[name]
	return id, ok
}

func (t *SymbolTable) Set(name string, id SymbolID) {
	if _, ok := t.ids[name]; !ok {
		t.names = append(t.names, name)
	}
	t.ids[name] = id
}

func (t *SymbolTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// All visits the entries in insertion order
func (t *SymbolTable) All() iter.Seq2[string, SymbolID] {
	return func(yield func(string, SymbolID) bool) {
		if t == nil {
			return
		}
		for _, name := range t.names {
			if !yield(name, t.ids[name]) {
				return
			}
		}
	}
}

func (t *SymbolTable) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.names...)
}
