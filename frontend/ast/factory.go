package ast

import (
	"fmt"
)

// Factory creates nodes in a Store. A node's children must exist before the node;
// creating the node sets their parent back-reference.
type Factory struct {
	store *Store
	// synthesized is or-ed into the flags of every created node
	synthesized NodeFlags
}

func NewFactory(store *Store) *Factory {
	return &Factory{store: store}
}

// NewSynthesizedFactory returns a factory whose nodes carry FlagSynthesized
func NewSynthesizedFactory(store *Store) *Factory {
	return &Factory{store: store, synthesized: FlagSynthesized}
}

func (f *Factory) Store() *Store { return f.store }

// Mark returns a point that Rollback can return the store to
func (f *Factory) Mark() int { return len(f.store.nodes) }

// Rollback discards every node created since mark. Parsers use it to abandon
// a speculative parse; nodes created before mark must not reference the discarded ones.
func (f *Factory) Rollback(mark int) {
	for i := mark; i < len(f.store.nodes); i++ {
		n := f.store.nodes[i]
		for child := range n.Children() {
			if int(child) < mark && f.store.nodes[child].parent == n.id {
				f.store.nodes[child].parent = NoNode
			}
		}
		f.store.nodes[i] = nil
	}
	f.store.nodes = f.store.nodes[:mark]
}

// New creates a node of the given kind. data must be the payload type for kind.
func (f *Factory) New(kind Kind, r Range, flags NodeFlags, data NodeData) NodeID {
	if data == nil {
		data = &Keyword{}
	}
	if !payloadMatches(kind, data) {
		panic(fmt.Sprintf("ast: payload %T does not belong to %s", data, kind))
	}
	return f.store.add(kind, r, flags|f.synthesized, data).id
}

// Update creates a copy of the node original with a new payload and flags.
// The copy records original as its provenance; the original is left untouched.
// Children shared with the original keep the original as their parent.
func (f *Factory) Update(original NodeID, flags NodeFlags, data NodeData) NodeID {
	orig := f.store.Get(original)
	if orig == nil {
		panic(fmt.Sprintf("ast: update of unknown node %d", original))
	}
	if data == nil {
		data = orig.data
	}
	n := f.store.add(orig.kind, orig.rng, flags|f.synthesized, data)
	n.original = original
	return n.id
}

func (f *Factory) NewIdentifier(r Range, text string) NodeID {
	return f.New(KindIdentifier, r, NoFlags, &Identifier{Text: text})
}

func (f *Factory) NewKeyword(r Range, kind Kind) NodeID {
	return f.New(kind, r, NoFlags, &Keyword{})
}

func (f *Factory) NewStringLiteral(r Range, text string) NodeID {
	return f.New(KindStringLiteral, r, NoFlags, &LiteralExpression{Text: text})
}

func (f *Factory) NewNumericLiteral(r Range, value float64) NodeID {
	return f.New(KindNumericLiteral, r, NoFlags, &LiteralExpression{
		Text:  FormatNumber(value),
		Value: value,
	})
}

func (f *Factory) NewTypeReference(r Range, name NodeID, args []NodeID) NodeID {
	return f.New(KindTypeReference, r, NoFlags, &TypeReference{TypeName: name, TypeArguments: args})
}

func (f *Factory) NewUnionType(r Range, types []NodeID) NodeID {
	return f.New(KindUnionType, r, NoFlags, &UnionOrIntersectionType{Types: types})
}

func (f *Factory) NewIntersectionType(r Range, types []NodeID) NodeID {
	return f.New(KindIntersectionType, r, NoFlags, &UnionOrIntersectionType{Types: types})
}

func (f *Factory) NewLiteralType(r Range, literal NodeID) NodeID {
	return f.New(KindLiteralType, r, NoFlags, &LiteralType{Literal: literal})
}

func (f *Factory) NewTruncatedType(r Range) NodeID {
	return f.New(KindTruncatedType, r, NoFlags, &Keyword{})
}

func payloadMatches(kind Kind, data NodeData) bool {
	switch data.(type) {
	case *Keyword:
		return kind.IsKeyword() || kind == KindThisType || kind == KindEmptyStatement ||
			kind == KindTruncatedType || kind == KindEndOfFile
	case *SourceFile:
		return kind == KindSourceFile
	case *QualifiedName:
		return kind == KindQualifiedName
	case *Identifier:
		return kind == KindIdentifier
	case *LiteralExpression:
		return kind.IsLiteral()
	case *TypeParameter:
		return kind == KindTypeParameter
	case *Parameter:
		return kind == KindParameter
	case *PropertySignature:
		return kind == KindPropertySignature || kind == KindPropertyDeclaration
	case *SignatureDeclaration:
		return kind.IsFunctionLike()
	case *IndexSignature:
		return kind == KindIndexSignature
	case *TypePredicate:
		return kind == KindTypePredicate
	case *TypeReference:
		return kind == KindTypeReference
	case *TypeQuery:
		return kind == KindTypeQuery
	case *TypeLiteral:
		return kind == KindTypeLiteral
	case *ArrayType:
		return kind == KindArrayType
	case *TupleType:
		return kind == KindTupleType
	case *UnionOrIntersectionType:
		return kind == KindUnionType || kind == KindIntersectionType
	case *ConditionalType:
		return kind == KindConditionalType
	case *InferType:
		return kind == KindInferType
	case *ParenthesizedType:
		return kind == KindParenthesizedType
	case *TypeOperator:
		return kind == KindTypeOperator
	case *IndexedAccessType:
		return kind == KindIndexedAccessType
	case *MappedType:
		return kind == KindMappedType
	case *LiteralType:
		return kind == KindLiteralType
	case *TemplateLiteralType:
		return kind == KindTemplateLiteralType
	case *TemplateLiteralTypeSpan:
		return kind == KindTemplateLiteralTypeSpan
	case *ObjectLiteralExpression:
		return kind == KindObjectLiteralExpression
	case *ArrayLiteralExpression:
		return kind == KindArrayLiteralExpression
	case *PropertyAccessExpression:
		return kind == KindPropertyAccessExpression
	case *ElementAccessExpression:
		return kind == KindElementAccessExpression
	case *CallExpression:
		return kind == KindCallExpression || kind == KindNewExpression
	case *ParenthesizedExpression:
		return kind == KindParenthesizedExpression
	case *TypeOfExpression:
		return kind == KindTypeOfExpression
	case *UnaryExpression:
		return kind == KindPrefixUnaryExpression || kind == KindPostfixUnaryExpression
	case *BinaryExpression:
		return kind == KindBinaryExpression
	case *ConditionalExpression:
		return kind == KindConditionalExpression
	case *SpreadElement:
		return kind == KindSpreadElement
	case *AsExpression:
		return kind == KindAsExpression
	case *NonNullExpression:
		return kind == KindNonNullExpression
	case *PropertyAssignment:
		return kind == KindPropertyAssignment || kind == KindShorthandPropertyAssignment
	case *Block:
		return kind == KindBlock || kind == KindModuleBlock
	case *VariableStatement:
		return kind == KindVariableStatement
	case *VariableDeclarationList:
		return kind == KindVariableDeclarationList
	case *VariableDeclaration:
		return kind == KindVariableDeclaration
	case *ExpressionStatement:
		return kind == KindExpressionStatement || kind == KindReturnStatement || kind == KindThrowStatement
	case *IfStatement:
		return kind == KindIfStatement
	case *LoopStatement:
		return kind.IsIterationStatement()
	case *JumpStatement:
		return kind == KindBreakStatement || kind == KindContinueStatement
	case *SwitchStatement:
		return kind == KindSwitchStatement
	case *CaseClause:
		return kind == KindCaseClause || kind == KindDefaultClause
	case *LabeledStatement:
		return kind == KindLabeledStatement
	case *TryStatement:
		return kind == KindTryStatement
	case *CatchClause:
		return kind == KindCatchClause
	case *ClassDeclaration:
		return kind == KindClassDeclaration
	case *InterfaceDeclaration:
		return kind == KindInterfaceDeclaration
	case *TypeAliasDeclaration:
		return kind == KindTypeAliasDeclaration
	case *EnumDeclaration:
		return kind == KindEnumDeclaration
	case *EnumMember:
		return kind == KindEnumMember
	case *ModuleDeclaration:
		return kind == KindModuleDeclaration
	case *ImportDeclaration:
		return kind == KindImportDeclaration
	case *ImportSpecifier:
		return kind == KindImportSpecifier
	}
	return false
}
