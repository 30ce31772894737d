package parser

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
)

func (p *parser) parseType() ast.NodeID {
	wasDisallowConditional := p.disallowConditional
	p.disallowConditional = false
	defer func() { p.disallowConditional = wasDisallowConditional }()
	return p.parseTypeWorker()
}

func (p *parser) parseTypeWorker() ast.NodeID {
	start := p.tok().start
	if p.isStartOfFunctionType() {
		return p.parseFunctionType(start, ast.KindFunctionType)
	}
	if p.at(ast.KindNewKeyword) {
		p.next()
		return p.parseFunctionType(start, ast.KindConstructorType)
	}
	check := p.parseUnionType()
	if p.disallowConditional || !p.at(ast.KindExtendsKeyword) || p.tok().lineBefore {
		return check
	}
	p.next()
	p.disallowConditional = true
	extends := p.parseTypeWorker()
	p.disallowConditional = false
	p.expect(ast.KindQuestionToken)
	whenTrue := p.parseTypeWorker()
	p.expect(ast.KindColonToken)
	whenFalse := p.parseTypeWorker()
	return p.finish(ast.KindConditionalType, start, ast.NoFlags,
		&ast.ConditionalType{CheckType: check, ExtendsType: extends, TrueType: whenTrue, FalseType: whenFalse})
}

func (p *parser) parseFunctionType(start int, kind ast.Kind) ast.NodeID {
	sig := p.parseSignature(ast.KindEqualsGreaterThanToken)
	if sig.Type == ast.NoNode {
		p.errorAtToken(diag.TypeExpected)
	}
	return p.finish(kind, start, ast.NoFlags, sig)
}

// isStartOfFunctionType distinguishes `(a: T) => U` from a parenthesized type
func (p *parser) isStartOfFunctionType() bool {
	if p.at(ast.KindLessThanToken) {
		return true
	}
	if !p.at(ast.KindOpenParenToken) {
		return false
	}
	return p.lookAhead(func() bool {
		p.next()
		if p.at(ast.KindCloseParenToken) || p.at(ast.KindDotDotDotToken) {
			return true
		}
		if !p.isIdentifier() && !p.at(ast.KindThisKeyword) {
			return false
		}
		p.next()
		switch p.token() {
		case ast.KindColonToken, ast.KindCommaToken, ast.KindQuestionToken, ast.KindEqualsToken:
			return true
		case ast.KindCloseParenToken:
			p.next()
			return p.at(ast.KindEqualsGreaterThanToken)
		}
		return false
	})
}

func (p *parser) parseUnionType() ast.NodeID {
	return p.parseUnionOrIntersection(ast.KindUnionType, ast.KindBarToken, p.parseIntersectionType)
}

func (p *parser) parseIntersectionType() ast.NodeID {
	return p.parseUnionOrIntersection(ast.KindIntersectionType, ast.KindAmpersandToken, p.parseTypeOperator)
}

func (p *parser) parseUnionOrIntersection(kind, separator ast.Kind, parseConstituent func() ast.NodeID) ast.NodeID {
	start := p.tok().start
	leading := p.optional(separator)
	types := []ast.NodeID{parseConstituent()}
	for p.optional(separator) {
		types = append(types, parseConstituent())
	}
	if len(types) == 1 && !leading {
		return types[0]
	}
	return p.finish(kind, start, ast.NoFlags, &ast.UnionOrIntersectionType{Types: types})
}

func (p *parser) parseTypeOperator() ast.NodeID {
	start := p.tok().start
	switch p.token() {
	case ast.KindKeyOfKeyword, ast.KindReadonlyKeyword:
		op := p.token()
		p.next()
		operand := p.parseTypeOperator()
		return p.finish(ast.KindTypeOperator, start, ast.NoFlags, &ast.TypeOperator{Operator: op, Type: operand})
	case ast.KindInferKeyword:
		p.next()
		paramStart := p.tok().start
		name := p.parseIdentifier()
		var constraint ast.NodeID
		if p.at(ast.KindExtendsKeyword) && p.disallowConditional {
			// `infer U extends C` is only a constraint where a conditional type cannot start
			p.next()
			constraint = p.parseTypeWorker()
		}
		param := p.finish(ast.KindTypeParameter, paramStart, ast.NoFlags, &ast.TypeParameter{Name: name, Constraint: constraint})
		return p.finish(ast.KindInferType, start, ast.NoFlags, &ast.InferType{TypeParameter: param})
	}
	return p.parsePostfixType()
}

func (p *parser) parsePostfixType() ast.NodeID {
	start := p.tok().start
	typ := p.parsePrimaryType()
	for p.at(ast.KindOpenBracketToken) && !p.tok().lineBefore {
		p.next()
		if p.optional(ast.KindCloseBracketToken) {
			typ = p.finish(ast.KindArrayType, start, ast.NoFlags, &ast.ArrayType{ElementType: typ})
			continue
		}
		index := p.parseType()
		p.expect(ast.KindCloseBracketToken)
		typ = p.finish(ast.KindIndexedAccessType, start, ast.NoFlags, &ast.IndexedAccessType{ObjectType: typ, IndexType: index})
	}
	return typ
}

func (p *parser) parsePrimaryType() ast.NodeID {
	start := p.tok().start
	switch k := p.token(); {
	case k.IsKeywordType():
		if k == ast.KindVoidKeyword || !p.nextTokenIs(func() bool { return p.at(ast.KindDotToken) }) {
			p.next()
			return p.finish(k, start, ast.NoFlags, nil)
		}
	case k == ast.KindThisKeyword:
		p.next()
		return p.finish(ast.KindThisType, start, ast.NoFlags, nil)
	case k == ast.KindTrueKeyword || k == ast.KindFalseKeyword:
		p.next()
		lit := p.finish(k, start, ast.NoFlags, nil)
		return p.finish(ast.KindLiteralType, start, ast.NoFlags, &ast.LiteralType{Literal: lit})
	case k == ast.KindStringLiteral || k == ast.KindNumericLiteral:
		lit := p.parseLiteral()
		return p.finish(ast.KindLiteralType, start, ast.NoFlags, &ast.LiteralType{Literal: lit})
	case k == ast.KindNoSubstitutionTemplateLiteral:
		text := p.tok().text
		p.next()
		lit := p.finish(ast.KindStringLiteral, start, ast.NoFlags, &ast.LiteralExpression{Text: text})
		return p.finish(ast.KindLiteralType, start, ast.NoFlags, &ast.LiteralType{Literal: lit})
	case k == ast.KindMinusToken && p.nextTokenIs(func() bool { return p.at(ast.KindNumericLiteral) }):
		p.next()
		operand := p.parseLiteral()
		neg := p.finish(ast.KindPrefixUnaryExpression, start, ast.NoFlags, &ast.UnaryExpression{Operator: ast.KindMinusToken, Operand: operand})
		return p.finish(ast.KindLiteralType, start, ast.NoFlags, &ast.LiteralType{Literal: neg})
	case k == ast.KindTemplateHead:
		return p.parseTemplateLiteralType()
	case k == ast.KindTypeOfKeyword:
		p.next()
		name := p.parseEntityName(true)
		return p.finish(ast.KindTypeQuery, start, ast.NoFlags, &ast.TypeQuery{ExprName: name})
	case k == ast.KindOpenBraceToken:
		if p.isStartOfMappedType() {
			return p.parseMappedType()
		}
		members := p.parseTypeMembers()
		return p.finish(ast.KindTypeLiteral, start, ast.NoFlags, &ast.TypeLiteral{Members: members})
	case k == ast.KindOpenBracketToken:
		return p.parseTupleType()
	case k == ast.KindOpenParenToken:
		p.next()
		inner := p.parseType()
		p.expect(ast.KindCloseParenToken)
		return p.finish(ast.KindParenthesizedType, start, ast.NoFlags, &ast.ParenthesizedType{Type: inner})
	}
	if p.isIdentifier() {
		return p.parseTypeReference()
	}
	p.errorAtToken(diag.TypeExpected)
	return p.finish(ast.KindAnyKeyword, start, ast.FlagThisNodeHasError, nil)
}

// parseEntityName parses `A.B.C`; allowKeywords admits keywords after a dot
func (p *parser) parseEntityName(allowKeywords bool) ast.NodeID {
	start := p.tok().start
	var name ast.NodeID
	if p.at(ast.KindThisKeyword) {
		name = p.parseIdentifierName()
	} else {
		name = p.parseIdentifier()
	}
	for p.optional(ast.KindDotToken) {
		var right ast.NodeID
		if allowKeywords {
			right = p.parseIdentifierName()
		} else {
			right = p.parseIdentifier()
		}
		name = p.finish(ast.KindQualifiedName, start, ast.NoFlags, &ast.QualifiedName{Left: name, Right: right})
	}
	return name
}

func (p *parser) parseTypeReference() ast.NodeID {
	start := p.tok().start
	ref := &ast.TypeReference{TypeName: p.parseEntityName(false)}
	if p.at(ast.KindLessThanToken) && !p.tok().lineBefore {
		p.next()
		for {
			ref.TypeArguments = append(ref.TypeArguments, p.parseType())
			if !p.optional(ast.KindCommaToken) {
				break
			}
		}
		p.expect(ast.KindGreaterThanToken)
	}
	return p.finish(ast.KindTypeReference, start, ast.NoFlags, ref)
}

func (p *parser) parseTupleType() ast.NodeID {
	start := p.tok().start
	p.next()
	var elements []ast.NodeID
	for !p.at(ast.KindCloseBracketToken) && !p.at(ast.KindEndOfFile) {
		elements = append(elements, p.parseType())
		if !p.optional(ast.KindCommaToken) {
			break
		}
	}
	p.expect(ast.KindCloseBracketToken)
	return p.finish(ast.KindTupleType, start, ast.NoFlags, &ast.TupleType{Elements: elements})
}

func (p *parser) parseTemplateLiteralType() ast.NodeID {
	start := p.tok().start
	lit := &ast.TemplateLiteralType{Head: p.tok().text}
	p.next()
	for {
		spanStart := p.tok().start
		typ := p.parseType()
		if !p.at(ast.KindCloseBraceToken) {
			p.errorAtToken(diag.TokenExpected, "}")
			break
		}
		p.scanner.rescanTemplateContinuation()
		kind, text := p.token(), p.tok().text
		p.next()
		lit.Spans = append(lit.Spans, p.finish(ast.KindTemplateLiteralTypeSpan, spanStart, ast.NoFlags,
			&ast.TemplateLiteralTypeSpan{Type: typ, Literal: text}))
		if kind == ast.KindTemplateTail {
			break
		}
	}
	return p.finish(ast.KindTemplateLiteralType, start, ast.NoFlags, lit)
}

// parseReturnType parses a return type annotation, which may be a type predicate
func (p *parser) parseReturnType() ast.NodeID {
	start := p.tok().start
	if p.at(ast.KindAssertsKeyword) && p.nextTokenIs(func() bool {
		return (p.isIdentifier() || p.at(ast.KindThisKeyword)) && !p.tok().lineBefore
	}) {
		p.next()
		name := p.parsePredicateSubject()
		pred := &ast.TypePredicate{ParameterName: name}
		if p.optional(ast.KindIsKeyword) {
			pred.Type = p.parseType()
		}
		return p.finish(ast.KindTypePredicate, start, ast.FlagAsserts, pred)
	}
	if (p.isIdentifier() || p.at(ast.KindThisKeyword)) && p.nextTokenIs(func() bool {
		return p.at(ast.KindIsKeyword) && !p.tok().lineBefore
	}) {
		name := p.parsePredicateSubject()
		p.next()
		pred := &ast.TypePredicate{ParameterName: name, Type: p.parseType()}
		return p.finish(ast.KindTypePredicate, start, ast.NoFlags, pred)
	}
	return p.parseType()
}

func (p *parser) parsePredicateSubject() ast.NodeID {
	if p.at(ast.KindThisKeyword) {
		start := p.tok().start
		p.next()
		return p.finish(ast.KindThisType, start, ast.NoFlags, nil)
	}
	return p.parseIdentifier()
}

func (p *parser) isStartOfMappedType() bool {
	return p.lookAhead(func() bool {
		p.next()
		if p.at(ast.KindPlusToken) || p.at(ast.KindMinusToken) {
			p.next()
			return p.at(ast.KindReadonlyKeyword)
		}
		if p.at(ast.KindReadonlyKeyword) {
			p.next()
		}
		if !p.optional(ast.KindOpenBracketToken) || !p.isIdentifier() {
			return false
		}
		p.next()
		return p.at(ast.KindInKeyword)
	})
}

func (p *parser) parseMappedType() ast.NodeID {
	start := p.tok().start
	p.expect(ast.KindOpenBraceToken)
	flags := ast.NoFlags
	switch {
	case p.optional(ast.KindMinusToken):
		p.expect(ast.KindReadonlyKeyword)
		flags |= ast.FlagReadonlyMinus
	case p.optional(ast.KindPlusToken):
		p.expect(ast.KindReadonlyKeyword)
		flags |= ast.FlagReadonly
	case p.optional(ast.KindReadonlyKeyword):
		flags |= ast.FlagReadonly
	}
	p.expect(ast.KindOpenBracketToken)
	paramStart := p.tok().start
	name := p.parseIdentifier()
	p.expect(ast.KindInKeyword)
	constraint := p.parseType()
	param := p.finish(ast.KindTypeParameter, paramStart, ast.NoFlags, &ast.TypeParameter{Name: name, Constraint: constraint})
	p.expect(ast.KindCloseBracketToken)
	switch {
	case p.optional(ast.KindMinusToken):
		p.expect(ast.KindQuestionToken)
		flags |= ast.FlagOptionalMinus
	case p.optional(ast.KindPlusToken):
		p.expect(ast.KindQuestionToken)
		flags |= ast.FlagOptional
	case p.optional(ast.KindQuestionToken):
		flags |= ast.FlagOptional
	}
	var typ ast.NodeID
	if p.optional(ast.KindColonToken) {
		typ = p.parseType()
	}
	p.optional(ast.KindSemicolonToken)
	p.expect(ast.KindCloseBraceToken)
	return p.finish(ast.KindMappedType, start, flags, &ast.MappedType{TypeParameter: param, Type: typ})
}

func (p *parser) parseTypeMembers() []ast.NodeID {
	if !p.expect(ast.KindOpenBraceToken) {
		return nil
	}
	var members []ast.NodeID
	for !p.at(ast.KindCloseBraceToken) && !p.at(ast.KindEndOfFile) {
		before := p.tok().start
		members = append(members, p.parseTypeMember())
		if !p.optional(ast.KindSemicolonToken) && !p.optional(ast.KindCommaToken) &&
			!p.at(ast.KindCloseBraceToken) && !p.tok().lineBefore {
			p.errorAt(p.prevEnd, p.prevEnd, diag.TokenExpected, ";")
		}
		if p.tok().start == before {
			p.next()
		}
	}
	p.expect(ast.KindCloseBraceToken)
	return members
}

func (p *parser) isIndexSignature() bool {
	return p.lookAhead(func() bool {
		p.next()
		if !p.isIdentifier() {
			return false
		}
		p.next()
		return p.at(ast.KindColonToken)
	})
}

func (p *parser) parseIndexSignature(start int, flags ast.NodeFlags) ast.NodeID {
	p.expect(ast.KindOpenBracketToken)
	param := p.parseParameter()
	p.expect(ast.KindCloseBracketToken)
	var typ ast.NodeID
	if p.expect(ast.KindColonToken) {
		typ = p.parseType()
	}
	return p.finish(ast.KindIndexSignature, start, flags, &ast.IndexSignature{Parameter: param, Type: typ})
}

func (p *parser) parseTypeMember() ast.NodeID {
	start := p.tok().start
	if p.at(ast.KindOpenParenToken) || p.at(ast.KindLessThanToken) {
		return p.finish(ast.KindCallSignature, start, ast.NoFlags, p.parseSignature(ast.KindColonToken))
	}
	if p.at(ast.KindNewKeyword) && p.nextTokenIs(func() bool { return p.at(ast.KindOpenParenToken) || p.at(ast.KindLessThanToken) }) {
		p.next()
		return p.finish(ast.KindConstructSignature, start, ast.NoFlags, p.parseSignature(ast.KindColonToken))
	}
	flags := ast.NoFlags
	if p.at(ast.KindReadonlyKeyword) && p.nextTokenIs(func() bool { return p.isPropertyName() || p.at(ast.KindOpenBracketToken) }) {
		p.next()
		flags |= ast.FlagReadonly
	}
	if p.at(ast.KindOpenBracketToken) && p.isIndexSignature() {
		return p.parseIndexSignature(start, flags)
	}
	name := p.parsePropertyName()
	if p.optional(ast.KindQuestionToken) {
		flags |= ast.FlagOptional
	}
	if p.at(ast.KindOpenParenToken) || p.at(ast.KindLessThanToken) {
		sig := p.parseSignature(ast.KindColonToken)
		sig.Name = name
		return p.finish(ast.KindMethodSignature, start, flags, sig)
	}
	prop := &ast.PropertySignature{Name: name}
	if p.optional(ast.KindColonToken) {
		prop.Type = p.parseType()
	}
	return p.finish(ast.KindPropertySignature, start, flags, prop)
}
