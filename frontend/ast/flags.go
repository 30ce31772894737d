package ast

// NodeFlags describe modifiers and syntactic facts about a single Node.
// Callers query them through the named predicates rather than bit tests.
type NodeFlags uint32

const (
	FlagLet NodeFlags = 1 << iota
	FlagConst
	FlagExport
	FlagAmbient
	FlagDefault
	FlagOptional
	FlagReadonly
	FlagStatic
	FlagAbstract
	FlagRest
	FlagAsserts
	// FlagSynthesized marks nodes that were not produced by the parser
	FlagSynthesized
	FlagThisNodeHasError
	FlagReadonlyMinus
	FlagOptionalMinus

	NoFlags NodeFlags = 0

	blockScopedFlags = FlagLet | FlagConst
)

func (f NodeFlags) IsLet() bool           { return f&FlagLet != 0 }
func (f NodeFlags) IsConst() bool         { return f&FlagConst != 0 }
func (f NodeFlags) IsBlockScoped() bool   { return f&blockScopedFlags != 0 }
func (f NodeFlags) IsExported() bool      { return f&FlagExport != 0 }
func (f NodeFlags) IsAmbient() bool       { return f&FlagAmbient != 0 }
func (f NodeFlags) IsDefault() bool       { return f&FlagDefault != 0 }
func (f NodeFlags) IsOptional() bool      { return f&FlagOptional != 0 }
func (f NodeFlags) IsReadonly() bool      { return f&FlagReadonly != 0 }
func (f NodeFlags) IsStatic() bool        { return f&FlagStatic != 0 }
func (f NodeFlags) IsAbstract() bool      { return f&FlagAbstract != 0 }
func (f NodeFlags) IsRest() bool          { return f&FlagRest != 0 }
func (f NodeFlags) IsAsserts() bool       { return f&FlagAsserts != 0 }
func (f NodeFlags) IsSynthesized() bool   { return f&FlagSynthesized != 0 }
func (f NodeFlags) HasError() bool        { return f&FlagThisNodeHasError != 0 }
func (f NodeFlags) IsReadonlyMinus() bool { return f&FlagReadonlyMinus != 0 }
func (f NodeFlags) IsOptionalMinus() bool { return f&FlagOptionalMinus != 0 }

// With returns f with other set
func (f NodeFlags) With(other NodeFlags) NodeFlags { return f | other }

// Without returns f with other cleared
func (f NodeFlags) Without(other NodeFlags) NodeFlags { return f &^ other }

// TransformFlags summarise what a subtree contains, so later passes can skip
// subtrees that hold nothing of interest to them. A node's transform flags are
// the union of its own facts and those of all its children.
type TransformFlags uint32

const (
	ContainsTypeSyntax TransformFlags = 1 << iota
	ContainsClass
	ContainsArrowFunction
	ContainsLexicalThis
	ContainsBlockScopedBinding
	ContainsTemplateLiteral
	ContainsSpread
	ContainsFunction
)

func (t TransformFlags) HasTypeSyntax() bool          { return t&ContainsTypeSyntax != 0 }
func (t TransformFlags) HasClass() bool               { return t&ContainsClass != 0 }
func (t TransformFlags) HasArrowFunction() bool       { return t&ContainsArrowFunction != 0 }
func (t TransformFlags) HasLexicalThis() bool         { return t&ContainsLexicalThis != 0 }
func (t TransformFlags) HasBlockScopedBinding() bool  { return t&ContainsBlockScopedBinding != 0 }
func (t TransformFlags) HasTemplateLiteral() bool     { return t&ContainsTemplateLiteral != 0 }
func (t TransformFlags) HasSpread() bool              { return t&ContainsSpread != 0 }
func (t TransformFlags) HasFunction() bool            { return t&ContainsFunction != 0 }

func ownTransformFlags(kind Kind, flags NodeFlags) TransformFlags {
	var t TransformFlags
	switch {
	case kind.IsTypeNode(), kind == KindTypeParameter, kind == KindInterfaceDeclaration,
		kind == KindTypeAliasDeclaration, kind == KindAsExpression, kind == KindNonNullExpression:
		t |= ContainsTypeSyntax
	}
	switch kind {
	case KindClassDeclaration:
		t |= ContainsClass
	case KindArrowFunction:
		t |= ContainsArrowFunction | ContainsFunction
	case KindFunctionDeclaration, KindFunctionExpression, KindMethodDeclaration, KindConstructor:
		t |= ContainsFunction
	case KindThisKeyword:
		t |= ContainsLexicalThis
	case KindNoSubstitutionTemplateLiteral, KindTemplateLiteralType:
		t |= ContainsTemplateLiteral
	case KindSpreadElement:
		t |= ContainsSpread
	case KindVariableDeclarationList:
		if flags.IsBlockScoped() {
			t |= ContainsBlockScopedBinding
		}
	}
	return t
}
