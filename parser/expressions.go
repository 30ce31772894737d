package parser

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
)

func (p *parser) isStartOfExpression() bool {
	switch p.token() {
	case ast.KindIdentifier, ast.KindNumericLiteral, ast.KindStringLiteral, ast.KindNoSubstitutionTemplateLiteral,
		ast.KindTemplateHead, ast.KindOpenParenToken, ast.KindOpenBracketToken, ast.KindOpenBraceToken,
		ast.KindThisKeyword, ast.KindNullKeyword, ast.KindTrueKeyword, ast.KindFalseKeyword,
		ast.KindFunctionKeyword, ast.KindNewKeyword, ast.KindTypeOfKeyword, ast.KindVoidKeyword,
		ast.KindExclamationToken, ast.KindMinusToken, ast.KindPlusToken, ast.KindPlusPlusToken,
		ast.KindMinusMinusToken, ast.KindLessThanToken:
		return true
	}
	return p.token().IsContextualKeyword()
}

// parseExpression parses a comma-separated sequence of assignment expressions
func (p *parser) parseExpression() ast.NodeID {
	start := p.tok().start
	expr := p.parseAssignment()
	for p.optional(ast.KindCommaToken) {
		right := p.parseAssignment()
		expr = p.finish(ast.KindBinaryExpression, start, ast.NoFlags,
			&ast.BinaryExpression{Left: expr, Operator: ast.KindCommaToken, Right: right})
	}
	return expr
}

func (p *parser) parseAssignment() ast.NodeID {
	if arrow := p.parseArrowFunction(); arrow != ast.NoNode {
		return arrow
	}
	start := p.tok().start
	expr := p.parseBinary(0)
	if p.token().IsAssignmentOperator() {
		op := p.token()
		p.next()
		right := p.parseAssignment()
		return p.finish(ast.KindBinaryExpression, start, ast.NoFlags, &ast.BinaryExpression{Left: expr, Operator: op, Right: right})
	}
	if p.optional(ast.KindQuestionToken) {
		wasDisallowIn := p.disallowIn
		p.disallowIn = false
		whenTrue := p.parseAssignment()
		p.disallowIn = wasDisallowIn
		p.expect(ast.KindColonToken)
		whenFalse := p.parseAssignment()
		return p.finish(ast.KindConditionalExpression, start, ast.NoFlags,
			&ast.ConditionalExpression{Condition: expr, WhenTrue: whenTrue, WhenFalse: whenFalse})
	}
	return expr
}

// parseArrowFunction parses `x => ...`, `(params) => ...` and `<T>(params) => ...`
// or returns NoNode, leaving the parser untouched, when no arrow function starts here
func (p *parser) parseArrowFunction() ast.NodeID {
	start := p.tok().start
	if p.isIdentifier() && p.nextTokenIs(func() bool { return p.at(ast.KindEqualsGreaterThanToken) && !p.tok().lineBefore }) {
		paramStart := p.tok().start
		name := p.parseIdentifier()
		param := p.finish(ast.KindParameter, paramStart, ast.NoFlags, &ast.Parameter{Name: name})
		p.next()
		sig := &ast.SignatureDeclaration{Parameters: []ast.NodeID{param}}
		sig.Body = p.parseArrowBody()
		return p.finish(ast.KindArrowFunction, start, ast.NoFlags, sig)
	}
	if !p.at(ast.KindOpenParenToken) && !p.at(ast.KindLessThanToken) {
		return ast.NoNode
	}
	return p.tryParse(func() ast.NodeID {
		sig := p.parseSignature(ast.KindColonToken)
		if !p.at(ast.KindEqualsGreaterThanToken) || p.tok().lineBefore {
			return ast.NoNode
		}
		p.next()
		sig.Body = p.parseArrowBody()
		return p.finish(ast.KindArrowFunction, start, ast.NoFlags, sig)
	})
}

func (p *parser) parseArrowBody() ast.NodeID {
	if p.at(ast.KindOpenBraceToken) {
		return p.parseBlock()
	}
	return p.parseAssignment()
}

func precedence(op ast.Kind) int {
	switch op {
	case ast.KindQuestionQuestionToken:
		return 1
	case ast.KindBarBarToken:
		return 2
	case ast.KindAmpersandAmpersandToken:
		return 3
	case ast.KindBarToken:
		return 4
	case ast.KindAmpersandToken:
		return 5
	case ast.KindEqualsEqualsToken, ast.KindExclamationEqualsToken, ast.KindEqualsEqualsEqualsToken, ast.KindExclamationEqualsEqualsToken:
		return 6
	case ast.KindLessThanToken, ast.KindGreaterThanToken, ast.KindLessThanEqualsToken, ast.KindGreaterThanEqualsToken,
		ast.KindInstanceOfKeyword, ast.KindInKeyword, ast.KindAsKeyword:
		return 7
	case ast.KindPlusToken, ast.KindMinusToken:
		return 8
	case ast.KindAsteriskToken, ast.KindSlashToken, ast.KindPercentToken:
		return 9
	}
	return -1
}

// parseBinary parses binary operators binding tighter than minPrec, left-associatively
func (p *parser) parseBinary(minPrec int) ast.NodeID {
	start := p.tok().start
	left := p.parseUnary()
	for {
		p.scanner.rescanGreaterThan()
		op := p.token()
		prec := precedence(op)
		if prec <= minPrec || (op == ast.KindInKeyword && p.disallowIn) {
			return left
		}
		if op == ast.KindAsKeyword && p.tok().lineBefore {
			return left
		}
		p.next()
		if op == ast.KindAsKeyword {
			typ := p.parseType()
			left = p.finish(ast.KindAsExpression, start, ast.NoFlags, &ast.AsExpression{Expression: left, Type: typ})
			continue
		}
		right := p.parseBinary(prec)
		left = p.finish(ast.KindBinaryExpression, start, ast.NoFlags, &ast.BinaryExpression{Left: left, Operator: op, Right: right})
	}
}

func (p *parser) parseUnary() ast.NodeID {
	start := p.tok().start
	switch op := p.token(); op {
	case ast.KindExclamationToken, ast.KindMinusToken, ast.KindPlusToken, ast.KindPlusPlusToken, ast.KindMinusMinusToken, ast.KindVoidKeyword:
		p.next()
		operand := p.parseUnary()
		return p.finish(ast.KindPrefixUnaryExpression, start, ast.NoFlags, &ast.UnaryExpression{Operator: op, Operand: operand})
	case ast.KindTypeOfKeyword:
		p.next()
		operand := p.parseUnary()
		return p.finish(ast.KindTypeOfExpression, start, ast.NoFlags, &ast.TypeOfExpression{Expression: operand})
	}
	expr := p.parseLeftHandSide()
	if (p.at(ast.KindPlusPlusToken) || p.at(ast.KindMinusMinusToken)) && !p.tok().lineBefore {
		op := p.token()
		p.next()
		return p.finish(ast.KindPostfixUnaryExpression, start, ast.NoFlags, &ast.UnaryExpression{Operator: op, Operand: expr})
	}
	return expr
}

func (p *parser) parseLeftHandSide() ast.NodeID {
	start := p.tok().start
	var expr ast.NodeID
	if p.at(ast.KindNewKeyword) {
		expr = p.parseNew()
	} else {
		expr = p.parsePrimary()
	}
	return p.parseCallTail(start, expr, true)
}

func (p *parser) parseNew() ast.NodeID {
	start := p.tok().start
	p.next()
	var callee ast.NodeID
	if p.at(ast.KindNewKeyword) {
		callee = p.parseNew()
	} else {
		callee = p.parseCallTail(p.tok().start, p.parsePrimary(), false)
	}
	call := &ast.CallExpression{Expression: callee}
	if p.at(ast.KindLessThanToken) {
		call.TypeArguments = p.tryParseTypeArgumentsForCall()
	}
	if p.at(ast.KindOpenParenToken) {
		call.Arguments = p.parseArguments()
	}
	return p.finish(ast.KindNewExpression, start, ast.NoFlags, call)
}

// parseCallTail parses member accesses, element accesses, non-null assertions
// and, when allowCalls is set, call suffixes following expr
func (p *parser) parseCallTail(start int, expr ast.NodeID, allowCalls bool) ast.NodeID {
	for {
		switch {
		case p.at(ast.KindDotToken):
			p.next()
			name := p.parseIdentifierName()
			expr = p.finish(ast.KindPropertyAccessExpression, start, ast.NoFlags, &ast.PropertyAccessExpression{Expression: expr, Name: name})
		case p.at(ast.KindQuestionDotToken):
			p.next()
			if p.optional(ast.KindOpenBracketToken) {
				arg := p.parseExpression()
				p.expect(ast.KindCloseBracketToken)
				expr = p.finish(ast.KindElementAccessExpression, start, ast.FlagOptional, &ast.ElementAccessExpression{Expression: expr, Argument: arg})
				continue
			}
			name := p.parseIdentifierName()
			expr = p.finish(ast.KindPropertyAccessExpression, start, ast.FlagOptional, &ast.PropertyAccessExpression{Expression: expr, Name: name})
		case p.at(ast.KindOpenBracketToken):
			p.next()
			arg := p.parseExpression()
			p.expect(ast.KindCloseBracketToken)
			expr = p.finish(ast.KindElementAccessExpression, start, ast.NoFlags, &ast.ElementAccessExpression{Expression: expr, Argument: arg})
		case p.at(ast.KindExclamationToken) && !p.tok().lineBefore:
			p.next()
			expr = p.finish(ast.KindNonNullExpression, start, ast.NoFlags, &ast.NonNullExpression{Expression: expr})
		case allowCalls && p.at(ast.KindOpenParenToken):
			args := p.parseArguments()
			expr = p.finish(ast.KindCallExpression, start, ast.NoFlags, &ast.CallExpression{Expression: expr, Arguments: args})
		case allowCalls && p.at(ast.KindLessThanToken):
			typeArgs := p.tryParseTypeArgumentsForCall()
			if typeArgs == nil {
				return expr
			}
			args := p.parseArguments()
			expr = p.finish(ast.KindCallExpression, start, ast.NoFlags,
				&ast.CallExpression{Expression: expr, TypeArguments: typeArgs, Arguments: args})
		default:
			return expr
		}
	}
}

// tryParseTypeArgumentsForCall parses `<...>` only when it is followed by an
// argument list, so that `a < b` stays a comparison
func (p *parser) tryParseTypeArgumentsForCall() []ast.NodeID {
	var args []ast.NodeID
	s := p.save()
	ok := func() bool {
		if !p.optional(ast.KindLessThanToken) {
			return false
		}
		for {
			args = append(args, p.parseType())
			if !p.optional(ast.KindCommaToken) {
				break
			}
		}
		return p.optional(ast.KindGreaterThanToken) && p.at(ast.KindOpenParenToken)
	}()
	if !ok || len(p.diags) > s.diags {
		p.restore(s)
		return nil
	}
	return args
}

func (p *parser) parseArguments() []ast.NodeID {
	p.expect(ast.KindOpenParenToken)
	var args []ast.NodeID
	for !p.at(ast.KindCloseParenToken) && !p.at(ast.KindEndOfFile) {
		args = append(args, p.parseArgument())
		if !p.optional(ast.KindCommaToken) {
			break
		}
	}
	p.expect(ast.KindCloseParenToken)
	return args
}

func (p *parser) parseArgument() ast.NodeID {
	if p.at(ast.KindDotDotDotToken) {
		start := p.tok().start
		p.next()
		expr := p.parseAssignment()
		return p.finish(ast.KindSpreadElement, start, ast.NoFlags, &ast.SpreadElement{Expression: expr})
	}
	return p.parseAssignment()
}

func (p *parser) parsePrimary() ast.NodeID {
	start := p.tok().start
	switch p.token() {
	case ast.KindNumericLiteral, ast.KindStringLiteral, ast.KindNoSubstitutionTemplateLiteral:
		return p.parseLiteral()
	case ast.KindTemplateHead:
		return p.parseTemplateExpression()
	case ast.KindThisKeyword, ast.KindNullKeyword, ast.KindTrueKeyword, ast.KindFalseKeyword:
		kind := p.token()
		p.next()
		return p.finish(kind, start, ast.NoFlags, nil)
	case ast.KindOpenParenToken:
		p.next()
		wasDisallowIn := p.disallowIn
		p.disallowIn = false
		expr := p.parseExpression()
		p.disallowIn = wasDisallowIn
		p.expect(ast.KindCloseParenToken)
		return p.finish(ast.KindParenthesizedExpression, start, ast.NoFlags, &ast.ParenthesizedExpression{Expression: expr})
	case ast.KindOpenBracketToken:
		return p.parseArrayLiteral()
	case ast.KindOpenBraceToken:
		return p.parseObjectLiteral()
	case ast.KindFunctionKeyword:
		p.next()
		var name ast.NodeID
		if p.isIdentifier() {
			name = p.parseIdentifier()
		}
		sig := p.parseSignature(ast.KindColonToken)
		sig.Name = name
		sig.Body = p.parseBlock()
		return p.finish(ast.KindFunctionExpression, start, ast.NoFlags, sig)
	}
	if p.isIdentifier() {
		return p.parseIdentifier()
	}
	p.errorAtToken(diag.ExpressionExpected)
	return p.missingIdentifier()
}

func (p *parser) parseArrayLiteral() ast.NodeID {
	start := p.tok().start
	p.next()
	var elements []ast.NodeID
	for !p.at(ast.KindCloseBracketToken) && !p.at(ast.KindEndOfFile) {
		elements = append(elements, p.parseArgument())
		if !p.optional(ast.KindCommaToken) {
			break
		}
	}
	p.expect(ast.KindCloseBracketToken)
	return p.finish(ast.KindArrayLiteralExpression, start, ast.NoFlags, &ast.ArrayLiteralExpression{Elements: elements})
}

func (p *parser) parseObjectLiteral() ast.NodeID {
	start := p.tok().start
	p.next()
	var props []ast.NodeID
	for !p.at(ast.KindCloseBraceToken) && !p.at(ast.KindEndOfFile) {
		props = append(props, p.parseObjectMember())
		if !p.optional(ast.KindCommaToken) {
			break
		}
	}
	p.expect(ast.KindCloseBraceToken)
	return p.finish(ast.KindObjectLiteralExpression, start, ast.NoFlags, &ast.ObjectLiteralExpression{Properties: props})
}

func (p *parser) parseObjectMember() ast.NodeID {
	start := p.tok().start
	if p.optional(ast.KindDotDotDotToken) {
		expr := p.parseAssignment()
		return p.finish(ast.KindSpreadElement, start, ast.NoFlags, &ast.SpreadElement{Expression: expr})
	}
	isIdentifier := p.isIdentifier()
	name := p.parsePropertyName()
	if p.at(ast.KindOpenParenToken) || p.at(ast.KindLessThanToken) {
		sig := p.parseSignature(ast.KindColonToken)
		sig.Name = name
		sig.Body = p.parseBlock()
		return p.finish(ast.KindMethodDeclaration, start, ast.NoFlags, sig)
	}
	if p.optional(ast.KindColonToken) {
		init := p.parseAssignment()
		return p.finish(ast.KindPropertyAssignment, start, ast.NoFlags, &ast.PropertyAssignment{Name: name, Initializer: init})
	}
	if !isIdentifier {
		p.expect(ast.KindColonToken)
	}
	return p.finish(ast.KindShorthandPropertyAssignment, start, ast.NoFlags, &ast.PropertyAssignment{Name: name})
}

// parseTemplateExpression turns `a${x}b` into the concatenation "a" + x + "b",
// which has the same type
func (p *parser) parseTemplateExpression() ast.NodeID {
	start := p.tok().start
	head := p.tok().text
	p.next()
	expr := p.finish(ast.KindStringLiteral, start, ast.NoFlags, &ast.LiteralExpression{Text: head})
	for {
		span := p.parseExpression()
		expr = p.finish(ast.KindBinaryExpression, start, ast.NoFlags, &ast.BinaryExpression{Left: expr, Operator: ast.KindPlusToken, Right: span})
		if !p.at(ast.KindCloseBraceToken) {
			p.errorAtToken(diag.TokenExpected, "}")
			return expr
		}
		p.scanner.rescanTemplateContinuation()
		litStart := p.tok().start
		kind, text := p.token(), p.tok().text
		p.next()
		lit := p.finish(ast.KindStringLiteral, litStart, ast.NoFlags, &ast.LiteralExpression{Text: text})
		expr = p.finish(ast.KindBinaryExpression, start, ast.NoFlags, &ast.BinaryExpression{Left: expr, Operator: ast.KindPlusToken, Right: lit})
		if kind == ast.KindTemplateTail {
			return expr
		}
	}
}
