package ast

func (k Kind) IsToken() bool {
	return k <= KindQuestionQuestionEqualsToken
}

func (k Kind) IsKeyword() bool {
	return k >= KindBreakKeyword && k <= KindUnknownKeyword
}

// IsContextualKeyword reports keywords that may also be used as identifiers
func (k Kind) IsContextualKeyword() bool {
	return k >= KindImplementsKeyword && k <= KindUnknownKeyword
}

func (k Kind) IsKeywordType() bool {
	switch k {
	case KindAnyKeyword, KindUnknownKeyword, KindNeverKeyword, KindVoidKeyword, KindUndefinedKeyword,
		KindNullKeyword, KindStringKeyword, KindNumberKeyword, KindBooleanKeyword, KindObjectKeyword:
		return true
	}
	return false
}

func (k Kind) IsTypeNode() bool {
	return (k >= KindTypePredicate && k <= KindTruncatedType) || k.IsKeywordType()
}

func (k Kind) IsFunctionLike() bool {
	switch k {
	case KindFunctionDeclaration, KindFunctionExpression, KindArrowFunction, KindMethodDeclaration,
		KindConstructor, KindMethodSignature, KindCallSignature, KindConstructSignature,
		KindFunctionType, KindConstructorType:
		return true
	}
	return false
}

// IsFunctionLikeDeclaration reports function-like nodes that can carry a body
func (k Kind) IsFunctionLikeDeclaration() bool {
	switch k {
	case KindFunctionDeclaration, KindFunctionExpression, KindArrowFunction, KindMethodDeclaration, KindConstructor:
		return true
	}
	return false
}

func (k Kind) IsClassLike() bool {
	return k == KindClassDeclaration
}

func (k Kind) IsStatement() bool {
	return k >= KindBlock && k <= KindTryStatement ||
		k == KindFunctionDeclaration || k == KindClassDeclaration || k == KindInterfaceDeclaration ||
		k == KindTypeAliasDeclaration || k == KindEnumDeclaration || k == KindModuleDeclaration ||
		k == KindImportDeclaration
}

func (k Kind) IsIterationStatement() bool {
	switch k {
	case KindDoStatement, KindWhileStatement, KindForStatement, KindForInStatement, KindForOfStatement:
		return true
	}
	return false
}

func (k Kind) IsDeclaration() bool {
	switch k {
	case KindTypeParameter, KindParameter, KindPropertySignature, KindPropertyDeclaration,
		KindMethodSignature, KindMethodDeclaration, KindConstructor, KindCallSignature,
		KindConstructSignature, KindIndexSignature, KindVariableDeclaration, KindFunctionDeclaration,
		KindClassDeclaration, KindInterfaceDeclaration, KindTypeAliasDeclaration, KindEnumDeclaration,
		KindModuleDeclaration, KindImportSpecifier, KindEnumMember, KindPropertyAssignment,
		KindShorthandPropertyAssignment, KindFunctionExpression, KindArrowFunction, KindSourceFile,
		KindTypeLiteral, KindObjectLiteralExpression, KindMappedType:
		return true
	}
	return false
}

func (k Kind) IsLiteral() bool {
	switch k {
	case KindNumericLiteral, KindStringLiteral, KindNoSubstitutionTemplateLiteral:
		return true
	}
	return false
}

func (k Kind) IsAssignmentOperator() bool {
	return k >= KindEqualsToken && k <= KindQuestionQuestionEqualsToken
}

func (k Kind) IsCompoundAssignment() bool {
	return k > KindEqualsToken && k <= KindQuestionQuestionEqualsToken
}

func (k Kind) IsLogicalOperator() bool {
	return k == KindAmpersandAmpersandToken || k == KindBarBarToken || k == KindQuestionQuestionToken
}

func (k Kind) IsEqualityOperator() bool {
	switch k {
	case KindEqualsEqualsToken, KindExclamationEqualsToken, KindEqualsEqualsEqualsToken, KindExclamationEqualsEqualsToken:
		return true
	}
	return false
}

// CompoundBase maps `+=` to `+`, and so on
func (k Kind) CompoundBase() Kind {
	switch k {
	case KindPlusEqualsToken:
		return KindPlusToken
	case KindMinusEqualsToken:
		return KindMinusToken
	case KindAsteriskEqualsToken:
		return KindAsteriskToken
	case KindSlashEqualsToken:
		return KindSlashToken
	case KindPercentEqualsToken:
		return KindPercentToken
	case KindAmpersandAmpersandEqualsToken:
		return KindAmpersandAmpersandToken
	case KindBarBarEqualsToken:
		return KindBarBarToken
	case KindQuestionQuestionEqualsToken:
		return KindQuestionQuestionToken
	}
	return k
}

var tokenText = map[Kind]string{
	KindOpenBraceToken: "{", KindCloseBraceToken: "}", KindOpenParenToken: "(", KindCloseParenToken: ")",
	KindOpenBracketToken: "[", KindCloseBracketToken: "]", KindDotToken: ".", KindDotDotDotToken: "...",
	KindSemicolonToken: ";", KindCommaToken: ",", KindQuestionDotToken: "?.", KindLessThanToken: "<",
	KindGreaterThanToken: ">", KindLessThanEqualsToken: "<=", KindGreaterThanEqualsToken: ">=",
	KindEqualsEqualsToken: "==", KindExclamationEqualsToken: "!=", KindEqualsEqualsEqualsToken: "===",
	KindExclamationEqualsEqualsToken: "!==", KindEqualsGreaterThanToken: "=>", KindPlusToken: "+",
	KindMinusToken: "-", KindAsteriskToken: "*", KindSlashToken: "/", KindPercentToken: "%",
	KindPlusPlusToken: "++", KindMinusMinusToken: "--", KindAmpersandToken: "&", KindBarToken: "|",
	KindExclamationToken: "!", KindAmpersandAmpersandToken: "&&", KindBarBarToken: "||",
	KindQuestionQuestionToken: "??", KindQuestionToken: "?", KindColonToken: ":", KindAtToken: "@",
	KindBacktickToken: "`", KindEqualsToken: "=", KindPlusEqualsToken: "+=", KindMinusEqualsToken: "-=",
	KindAsteriskEqualsToken: "*=", KindSlashEqualsToken: "/=", KindPercentEqualsToken: "%=",
	KindAmpersandAmpersandEqualsToken: "&&=", KindBarBarEqualsToken: "||=", KindQuestionQuestionEqualsToken: "??=",
}

var keywords = map[string]Kind{}

func init() {
	for k := KindBreakKeyword; k <= KindUnknownKeyword; k++ {
		name := kindNames[k]
		text := name[:len(name)-len("Keyword")]
		switch k {
		case KindInstanceOfKeyword:
			text = "instanceof"
		case KindTypeOfKeyword:
			text = "typeof"
		case KindKeyOfKeyword:
			text = "keyof"
		default:
			text = string(text[0]-'A'+'a') + text[1:]
		}
		keywords[text] = k
		tokenText[k] = text
	}
}

// KeywordKind returns the keyword kind of text, if text is a keyword
func KeywordKind(text string) (Kind, bool) {
	k, ok := keywords[text]
	return k, ok
}

// TokenText returns the source text of a punctuation or keyword kind
func TokenText(k Kind) string {
	return tokenText[k]
}
