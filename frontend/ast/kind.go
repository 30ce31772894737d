// Syntax kinds. kindNames must list every constant in declaration order.

package ast

// Kind is the syntax kind tag of a Node or scanner token
type Kind uint16

const (
	// tokens
	KindUnknown Kind = iota
	KindEndOfFile
	KindNumericLiteral
	KindStringLiteral
	KindNoSubstitutionTemplateLiteral
	KindTemplateHead
	KindTemplateMiddle
	KindTemplateTail
	KindIdentifier
	KindOpenBraceToken
	KindCloseBraceToken
	KindOpenParenToken
	KindCloseParenToken
	KindOpenBracketToken
	KindCloseBracketToken
	KindDotToken
	KindDotDotDotToken
	KindSemicolonToken
	KindCommaToken
	KindQuestionDotToken
	KindLessThanToken
	KindGreaterThanToken
	KindLessThanEqualsToken
	KindGreaterThanEqualsToken
	KindEqualsEqualsToken
	KindExclamationEqualsToken
	KindEqualsEqualsEqualsToken
	KindExclamationEqualsEqualsToken
	KindEqualsGreaterThanToken
	KindPlusToken
	KindMinusToken
	KindAsteriskToken
	KindSlashToken
	KindPercentToken
	KindPlusPlusToken
	KindMinusMinusToken
	KindAmpersandToken
	KindBarToken
	KindExclamationToken
	KindAmpersandAmpersandToken
	KindBarBarToken
	KindQuestionQuestionToken
	KindQuestionToken
	KindColonToken
	KindAtToken
	KindBacktickToken
	KindEqualsToken
	KindPlusEqualsToken
	KindMinusEqualsToken
	KindAsteriskEqualsToken
	KindSlashEqualsToken
	KindPercentEqualsToken
	KindAmpersandAmpersandEqualsToken
	KindBarBarEqualsToken
	KindQuestionQuestionEqualsToken
	// keywords
	KindBreakKeyword
	KindCaseKeyword
	KindCatchKeyword
	KindClassKeyword
	KindConstKeyword
	KindContinueKeyword
	KindDefaultKeyword
	KindDoKeyword
	KindElseKeyword
	KindEnumKeyword
	KindExportKeyword
	KindExtendsKeyword
	KindFalseKeyword
	KindFinallyKeyword
	KindForKeyword
	KindFunctionKeyword
	KindIfKeyword
	KindImportKeyword
	KindInKeyword
	KindInstanceOfKeyword
	KindNewKeyword
	KindNullKeyword
	KindReturnKeyword
	KindSwitchKeyword
	KindThisKeyword
	KindThrowKeyword
	KindTrueKeyword
	KindTryKeyword
	KindTypeOfKeyword
	KindVarKeyword
	KindVoidKeyword
	KindWhileKeyword
	KindImplementsKeyword
	KindInterfaceKeyword
	KindLetKeyword
	KindStaticKeyword
	KindReadonlyKeyword
	KindAbstractKeyword
	KindDeclareKeyword
	KindAnyKeyword
	KindAsKeyword
	KindAssertsKeyword
	KindBooleanKeyword
	KindConstructorKeyword
	KindFromKeyword
	KindInferKeyword
	KindIsKeyword
	KindKeyOfKeyword
	KindNamespaceKeyword
	KindNeverKeyword
	KindNumberKeyword
	KindObjectKeyword
	KindOfKeyword
	KindStringKeyword
	KindTypeKeyword
	KindUndefinedKeyword
	KindUnknownKeyword
	// names
	KindQualifiedName
	// type members
	KindTypeParameter
	KindParameter
	KindPropertySignature
	KindPropertyDeclaration
	KindMethodSignature
	KindMethodDeclaration
	KindConstructor
	KindCallSignature
	KindConstructSignature
	KindIndexSignature
	// types
	KindTypePredicate
	KindTypeReference
	KindFunctionType
	KindConstructorType
	KindTypeQuery
	KindTypeLiteral
	KindArrayType
	KindTupleType
	KindUnionType
	KindIntersectionType
	KindConditionalType
	KindInferType
	KindParenthesizedType
	KindThisType
	KindTypeOperator
	KindIndexedAccessType
	KindMappedType
	KindLiteralType
	KindTemplateLiteralType
	KindTemplateLiteralTypeSpan
	KindTruncatedType
	// expressions
	KindObjectLiteralExpression
	KindArrayLiteralExpression
	KindPropertyAccessExpression
	KindElementAccessExpression
	KindCallExpression
	KindNewExpression
	KindParenthesizedExpression
	KindFunctionExpression
	KindArrowFunction
	KindTypeOfExpression
	KindPrefixUnaryExpression
	KindPostfixUnaryExpression
	KindBinaryExpression
	KindConditionalExpression
	KindSpreadElement
	KindAsExpression
	KindNonNullExpression
	KindPropertyAssignment
	KindShorthandPropertyAssignment
	// statements
	KindBlock
	KindEmptyStatement
	KindVariableStatement
	KindExpressionStatement
	KindIfStatement
	KindDoStatement
	KindWhileStatement
	KindForStatement
	KindForInStatement
	KindForOfStatement
	KindContinueStatement
	KindBreakStatement
	KindReturnStatement
	KindSwitchStatement
	KindLabeledStatement
	KindThrowStatement
	KindTryStatement
	KindVariableDeclaration
	KindVariableDeclarationList
	KindFunctionDeclaration
	KindClassDeclaration
	KindInterfaceDeclaration
	KindTypeAliasDeclaration
	KindEnumDeclaration
	KindModuleDeclaration
	KindModuleBlock
	KindImportDeclaration
	KindImportSpecifier
	KindCaseClause
	KindDefaultClause
	KindCatchClause
	KindEnumMember
	KindSourceFile

	kindCount
)

var kindNames = [...]string{
	KindUnknown:                       "Unknown",
	KindEndOfFile:                     "EndOfFile",
	KindNumericLiteral:                "NumericLiteral",
	KindStringLiteral:                 "StringLiteral",
	KindNoSubstitutionTemplateLiteral: "NoSubstitutionTemplateLiteral",
	KindTemplateHead:                  "TemplateHead",
	KindTemplateMiddle:                "TemplateMiddle",
	KindTemplateTail:                  "TemplateTail",
	KindIdentifier:                    "Identifier",
	KindOpenBraceToken:                "OpenBraceToken",
	KindCloseBraceToken:               "CloseBraceToken",
	KindOpenParenToken:                "OpenParenToken",
	KindCloseParenToken:               "CloseParenToken",
	KindOpenBracketToken:              "OpenBracketToken",
	KindCloseBracketToken:             "CloseBracketToken",
	KindDotToken:                      "DotToken",
	KindDotDotDotToken:                "DotDotDotToken",
	KindSemicolonToken:                "SemicolonToken",
	KindCommaToken:                    "CommaToken",
	KindQuestionDotToken:              "QuestionDotToken",
	KindLessThanToken:                 "LessThanToken",
	KindGreaterThanToken:              "GreaterThanToken",
	KindLessThanEqualsToken:           "LessThanEqualsToken",
	KindGreaterThanEqualsToken:        "GreaterThanEqualsToken",
	KindEqualsEqualsToken:             "EqualsEqualsToken",
	KindExclamationEqualsToken:        "ExclamationEqualsToken",
	KindEqualsEqualsEqualsToken:       "EqualsEqualsEqualsToken",
	KindExclamationEqualsEqualsToken:  "ExclamationEqualsEqualsToken",
	KindEqualsGreaterThanToken:        "EqualsGreaterThanToken",
	KindPlusToken:                     "PlusToken",
	KindMinusToken:                    "MinusToken",
	KindAsteriskToken:                 "AsteriskToken",
	KindSlashToken:                    "SlashToken",
	KindPercentToken:                  "PercentToken",
	KindPlusPlusToken:                 "PlusPlusToken",
	KindMinusMinusToken:               "MinusMinusToken",
	KindAmpersandToken:                "AmpersandToken",
	KindBarToken:                      "BarToken",
	KindExclamationToken:              "ExclamationToken",
	KindAmpersandAmpersandToken:       "AmpersandAmpersandToken",
	KindBarBarToken:                   "BarBarToken",
	KindQuestionQuestionToken:         "QuestionQuestionToken",
	KindQuestionToken:                 "QuestionToken",
	KindColonToken:                    "ColonToken",
	KindAtToken:                       "AtToken",
	KindBacktickToken:                 "BacktickToken",
	KindEqualsToken:                   "EqualsToken",
	KindPlusEqualsToken:               "PlusEqualsToken",
	KindMinusEqualsToken:              "MinusEqualsToken",
	KindAsteriskEqualsToken:           "AsteriskEqualsToken",
	KindSlashEqualsToken:              "SlashEqualsToken",
	KindPercentEqualsToken:            "PercentEqualsToken",
	KindAmpersandAmpersandEqualsToken: "AmpersandAmpersandEqualsToken",
	KindBarBarEqualsToken:             "BarBarEqualsToken",
	KindQuestionQuestionEqualsToken:   "QuestionQuestionEqualsToken",
	KindBreakKeyword:                  "BreakKeyword",
	KindCaseKeyword:                   "CaseKeyword",
	KindCatchKeyword:                  "CatchKeyword",
	KindClassKeyword:                  "ClassKeyword",
	KindConstKeyword:                  "ConstKeyword",
	KindContinueKeyword:               "ContinueKeyword",
	KindDefaultKeyword:                "DefaultKeyword",
	KindDoKeyword:                     "DoKeyword",
	KindElseKeyword:                   "ElseKeyword",
	KindEnumKeyword:                   "EnumKeyword",
	KindExportKeyword:                 "ExportKeyword",
	KindExtendsKeyword:                "ExtendsKeyword",
	KindFalseKeyword:                  "FalseKeyword",
	KindFinallyKeyword:                "FinallyKeyword",
	KindForKeyword:                    "ForKeyword",
	KindFunctionKeyword:               "FunctionKeyword",
	KindIfKeyword:                     "IfKeyword",
	KindImportKeyword:                 "ImportKeyword",
	KindInKeyword:                     "InKeyword",
	KindInstanceOfKeyword:             "InstanceOfKeyword",
	KindNewKeyword:                    "NewKeyword",
	KindNullKeyword:                   "NullKeyword",
	KindReturnKeyword:                 "ReturnKeyword",
	KindSwitchKeyword:                 "SwitchKeyword",
	KindThisKeyword:                   "ThisKeyword",
	KindThrowKeyword:                  "ThrowKeyword",
	KindTrueKeyword:                   "TrueKeyword",
	KindTryKeyword:                    "TryKeyword",
	KindTypeOfKeyword:                 "TypeOfKeyword",
	KindVarKeyword:                    "VarKeyword",
	KindVoidKeyword:                   "VoidKeyword",
	KindWhileKeyword:                  "WhileKeyword",
	KindImplementsKeyword:             "ImplementsKeyword",
	KindInterfaceKeyword:              "InterfaceKeyword",
	KindLetKeyword:                    "LetKeyword",
	KindStaticKeyword:                 "StaticKeyword",
	KindReadonlyKeyword:               "ReadonlyKeyword",
	KindAbstractKeyword:               "AbstractKeyword",
	KindDeclareKeyword:                "DeclareKeyword",
	KindAnyKeyword:                    "AnyKeyword",
	KindAsKeyword:                     "AsKeyword",
	KindAssertsKeyword:                "AssertsKeyword",
	KindBooleanKeyword:                "BooleanKeyword",
	KindConstructorKeyword:            "ConstructorKeyword",
	KindFromKeyword:                   "FromKeyword",
	KindInferKeyword:                  "InferKeyword",
	KindIsKeyword:                     "IsKeyword",
	KindKeyOfKeyword:                  "KeyOfKeyword",
	KindNamespaceKeyword:              "NamespaceKeyword",
	KindNeverKeyword:                  "NeverKeyword",
	KindNumberKeyword:                 "NumberKeyword",
	KindObjectKeyword:                 "ObjectKeyword",
	KindOfKeyword:                     "OfKeyword",
	KindStringKeyword:                 "StringKeyword",
	KindTypeKeyword:                   "TypeKeyword",
	KindUndefinedKeyword:              "UndefinedKeyword",
	KindUnknownKeyword:                "UnknownKeyword",
	KindQualifiedName:                 "QualifiedName",
	KindTypeParameter:                 "TypeParameter",
	KindParameter:                     "Parameter",
	KindPropertySignature:             "PropertySignature",
	KindPropertyDeclaration:           "PropertyDeclaration",
	KindMethodSignature:               "MethodSignature",
	KindMethodDeclaration:             "MethodDeclaration",
	KindConstructor:                   "Constructor",
	KindCallSignature:                 "CallSignature",
	KindConstructSignature:            "ConstructSignature",
	KindIndexSignature:                "IndexSignature",
	KindTypePredicate:                 "TypePredicate",
	KindTypeReference:                 "TypeReference",
	KindFunctionType:                  "FunctionType",
	KindConstructorType:               "ConstructorType",
	KindTypeQuery:                     "TypeQuery",
	KindTypeLiteral:                   "TypeLiteral",
	KindArrayType:                     "ArrayType",
	KindTupleType:                     "TupleType",
	KindUnionType:                     "UnionType",
	KindIntersectionType:              "IntersectionType",
	KindConditionalType:               "ConditionalType",
	KindInferType:                     "InferType",
	KindParenthesizedType:             "ParenthesizedType",
	KindThisType:                      "ThisType",
	KindTypeOperator:                  "TypeOperator",
	KindIndexedAccessType:             "IndexedAccessType",
	KindMappedType:                    "MappedType",
	KindLiteralType:                   "LiteralType",
	KindTemplateLiteralType:           "TemplateLiteralType",
	KindTemplateLiteralTypeSpan:       "TemplateLiteralTypeSpan",
	KindTruncatedType:                 "TruncatedType",
	KindObjectLiteralExpression:       "ObjectLiteralExpression",
	KindArrayLiteralExpression:        "ArrayLiteralExpression",
	KindPropertyAccessExpression:      "PropertyAccessExpression",
	KindElementAccessExpression:       "ElementAccessExpression",
	KindCallExpression:                "CallExpression",
	KindNewExpression:                 "NewExpression",
	KindParenthesizedExpression:       "ParenthesizedExpression",
	KindFunctionExpression:            "FunctionExpression",
	KindArrowFunction:                 "ArrowFunction",
	KindTypeOfExpression:              "TypeOfExpression",
	KindPrefixUnaryExpression:         "PrefixUnaryExpression",
	KindPostfixUnaryExpression:        "PostfixUnaryExpression",
	KindBinaryExpression:              "BinaryExpression",
	KindConditionalExpression:         "ConditionalExpression",
	KindSpreadElement:                 "SpreadElement",
	KindAsExpression:                  "AsExpression",
	KindNonNullExpression:             "NonNullExpression",
	KindPropertyAssignment:            "PropertyAssignment",
	KindShorthandPropertyAssignment:   "ShorthandPropertyAssignment",
	KindBlock:                         "Block",
	KindEmptyStatement:                "EmptyStatement",
	KindVariableStatement:             "VariableStatement",
	KindExpressionStatement:           "ExpressionStatement",
	KindIfStatement:                   "IfStatement",
	KindDoStatement:                   "DoStatement",
	KindWhileStatement:                "WhileStatement",
	KindForStatement:                  "ForStatement",
	KindForInStatement:                "ForInStatement",
	KindForOfStatement:                "ForOfStatement",
	KindContinueStatement:             "ContinueStatement",
	KindBreakStatement:                "BreakStatement",
	KindReturnStatement:               "ReturnStatement",
	KindSwitchStatement:               "SwitchStatement",
	KindLabeledStatement:              "LabeledStatement",
	KindThrowStatement:                "ThrowStatement",
	KindTryStatement:                  "TryStatement",
	KindVariableDeclaration:           "VariableDeclaration",
	KindVariableDeclarationList:       "VariableDeclarationList",
	KindFunctionDeclaration:           "FunctionDeclaration",
	KindClassDeclaration:              "ClassDeclaration",
	KindInterfaceDeclaration:          "InterfaceDeclaration",
	KindTypeAliasDeclaration:          "TypeAliasDeclaration",
	KindEnumDeclaration:               "EnumDeclaration",
	KindModuleDeclaration:             "ModuleDeclaration",
	KindModuleBlock:                   "ModuleBlock",
	KindImportDeclaration:             "ImportDeclaration",
	KindImportSpecifier:               "ImportSpecifier",
	KindCaseClause:                    "CaseClause",
	KindDefaultClause:                 "DefaultClause",
	KindCatchClause:                   "CatchClause",
	KindEnumMember:                    "EnumMember",
	KindSourceFile:                    "SourceFile",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}
