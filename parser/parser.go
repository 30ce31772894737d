package parser

import (
	"go/token"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
)

type parser struct {
	scanner  *scanner
	factory  *ast.Factory
	file     *token.File
	fileName string

	diags       []*diag.Diagnostic
	lastErrorAt int
	// prevEnd is the end offset of the last consumed token
	prevEnd int

	// disallowIn stops `in` being parsed as a binary operator inside for-in heads
	disallowIn bool
	// disallowConditional stops `extends` starting a conditional type inside
	// the extends clause of another conditional type
	disallowConditional bool
	// ambient is set inside `declare` contexts
	ambient bool
}

func newParser(factory *ast.Factory, file *token.File, name, src string) *parser {
	p := &parser{
		factory:     factory,
		file:        file,
		fileName:    name,
		lastErrorAt: -1,
	}
	p.scanner = newScanner(src, func(start, end int, code diag.Code, args ...any) {
		p.errorAt(start, end, code, args...)
	})
	return p
}

func (p *parser) tok() *tok          { return &p.scanner.tok }
func (p *parser) token() ast.Kind    { return p.scanner.tok.kind }
func (p *parser) at(k ast.Kind) bool { return p.scanner.tok.kind == k }

func (p *parser) next() {
	p.prevEnd = p.scanner.tok.end
	p.scanner.next()
}

func (p *parser) optional(k ast.Kind) bool {
	if p.at(k) {
		p.next()
		return true
	}
	return false
}

// expect consumes k or reports it missing without consuming anything
func (p *parser) expect(k ast.Kind) bool {
	if p.optional(k) {
		return true
	}
	p.errorAt(p.prevEnd, p.prevEnd, diag.TokenExpected, ast.TokenText(k))
	return false
}

func (p *parser) rangeFrom(start int) ast.Range {
	end := max(p.prevEnd, start)
	return ast.Range{PosStart: p.file.Pos(start), PosEnd: p.file.Pos(end)}
}

func (p *parser) finish(kind ast.Kind, start int, flags ast.NodeFlags, data ast.NodeData) ast.NodeID {
	return p.factory.New(kind, p.rangeFrom(start), flags, data)
}

type snapshot struct {
	tok     tok
	offset  int
	prevEnd int
	diags   int
	lastErr int
	mark    int
}

func (p *parser) save() snapshot {
	return snapshot{
		tok:     p.scanner.tok,
		offset:  p.scanner.offset,
		prevEnd: p.prevEnd,
		diags:   len(p.diags),
		lastErr: p.lastErrorAt,
		mark:    p.factory.Mark(),
	}
}

func (p *parser) restore(s snapshot) {
	p.scanner.tok = s.tok
	p.scanner.offset = s.offset
	p.prevEnd = s.prevEnd
	p.diags = p.diags[:s.diags]
	p.lastErrorAt = s.lastErr
	p.factory.Rollback(s.mark)
}

// lookAhead runs fn and rewinds the parser whatever it returns
func (p *parser) lookAhead(fn func() bool) bool {
	s := p.save()
	defer p.restore(s)
	return fn()
}

// tryParse runs fn and keeps its result only if it succeeded without syntax errors
func (p *parser) tryParse(fn func() ast.NodeID) ast.NodeID {
	s := p.save()
	id := fn()
	if id == ast.NoNode || len(p.diags) > s.diags {
		p.restore(s)
		return ast.NoNode
	}
	return id
}

// isIdentifier reports whether the current token can be used as an identifier
func (p *parser) isIdentifier() bool {
	return p.at(ast.KindIdentifier) || p.token().IsContextualKeyword()
}

func (p *parser) identifierText() string {
	if p.at(ast.KindIdentifier) {
		return p.tok().text
	}
	return ast.TokenText(p.token())
}

func (p *parser) parseIdentifier() ast.NodeID {
	if p.isIdentifier() {
		return p.parseIdentifierName()
	}
	p.errorAtToken(diag.IdentifierExpected)
	return p.missingIdentifier()
}

// parseIdentifierName accepts any identifier or keyword, as property names do
func (p *parser) parseIdentifierName() ast.NodeID {
	start := p.tok().start
	text := p.identifierText()
	p.next()
	return p.finish(ast.KindIdentifier, start, ast.NoFlags, &ast.Identifier{Text: text})
}

func (p *parser) missingIdentifier() ast.NodeID {
	return p.factory.New(ast.KindIdentifier, p.rangeFrom(p.prevEnd), ast.FlagThisNodeHasError, &ast.Identifier{})
}

func (p *parser) isIdentifierOrKeyword() bool {
	return p.at(ast.KindIdentifier) || p.token().IsKeyword()
}

func (p *parser) isPropertyName() bool {
	return p.isIdentifierOrKeyword() || p.at(ast.KindStringLiteral) || p.at(ast.KindNumericLiteral)
}

func (p *parser) parsePropertyName() ast.NodeID {
	switch {
	case p.at(ast.KindStringLiteral), p.at(ast.KindNumericLiteral):
		return p.parseLiteral()
	case p.isIdentifierOrKeyword():
		return p.parseIdentifierName()
	}
	p.errorAtToken(diag.IdentifierExpected)
	return p.missingIdentifier()
}

func (p *parser) parseLiteral() ast.NodeID {
	t := *p.tok()
	p.next()
	return p.finish(t.kind, t.start, ast.NoFlags, &ast.LiteralExpression{Text: t.text, Value: t.value})
}

func (p *parser) canParseSemicolon() bool {
	return p.at(ast.KindSemicolonToken) || p.at(ast.KindCloseBraceToken) || p.at(ast.KindEndOfFile) || p.tok().lineBefore
}

func (p *parser) parseSemicolon() {
	if p.optional(ast.KindSemicolonToken) {
		return
	}
	if !p.canParseSemicolon() {
		p.errorAt(p.prevEnd, p.prevEnd, diag.TokenExpected, ";")
	}
}

// nextTokenIs peeks one token past the current one
func (p *parser) nextTokenIs(pred func() bool) bool {
	return p.lookAhead(func() bool {
		p.next()
		return pred()
	})
}

func (p *parser) parseSourceFile() ast.NodeID {
	p.next()
	statements := p.parseStatementList(func() bool { return p.at(ast.KindEndOfFile) })
	return p.factory.New(ast.KindSourceFile, ast.Range{PosStart: p.file.Pos(0), PosEnd: p.file.Pos(p.file.Size())},
		ast.NoFlags, &ast.SourceFile{FileName: p.fileName, Statements: statements})
}

// parseStatementList parses statements until done reports true or the file ends.
// Tokens that cannot start a statement are skipped with a diagnostic.
func (p *parser) parseStatementList(done func() bool) []ast.NodeID {
	var statements []ast.NodeID
	for !done() && !p.at(ast.KindEndOfFile) {
		before := p.tok().start
		st := p.parseStatement()
		if st != ast.NoNode {
			statements = append(statements, st)
		}
		if p.tok().start == before && !done() {
			p.errorAtToken(diag.DeclarationExpected)
			p.next()
		}
	}
	return statements
}

func (p *parser) parseBlock() ast.NodeID {
	start := p.tok().start
	if !p.expect(ast.KindOpenBraceToken) {
		return p.finish(ast.KindBlock, start, ast.FlagThisNodeHasError, &ast.Block{})
	}
	statements := p.parseStatementList(func() bool { return p.at(ast.KindCloseBraceToken) })
	p.expect(ast.KindCloseBraceToken)
	return p.finish(ast.KindBlock, start, ast.NoFlags, &ast.Block{Statements: statements})
}

func (p *parser) parseStatement() ast.NodeID {
	start := p.tok().start
	switch p.token() {
	case ast.KindOpenBraceToken:
		return p.parseBlock()
	case ast.KindSemicolonToken:
		p.next()
		return p.finish(ast.KindEmptyStatement, start, ast.NoFlags, nil)
	case ast.KindVarKeyword, ast.KindConstKeyword:
		if p.at(ast.KindConstKeyword) && p.nextTokenIs(func() bool { return p.at(ast.KindEnumKeyword) }) {
			return p.parseDeclaration()
		}
		return p.parseVariableStatement(start, ast.NoFlags)
	case ast.KindLetKeyword:
		if p.nextTokenIs(func() bool { return p.isIdentifier() && !p.tok().lineBefore }) {
			return p.parseVariableStatement(start, ast.NoFlags)
		}
	case ast.KindFunctionKeyword, ast.KindClassKeyword, ast.KindEnumKeyword, ast.KindExportKeyword, ast.KindImportKeyword:
		return p.parseDeclaration()
	case ast.KindInterfaceKeyword, ast.KindTypeKeyword, ast.KindNamespaceKeyword, ast.KindDeclareKeyword, ast.KindAbstractKeyword:
		if p.nextTokenIs(func() bool { return (p.isIdentifier() || p.token().IsKeyword()) && !p.tok().lineBefore }) {
			return p.parseDeclaration()
		}
	case ast.KindIfKeyword:
		return p.parseIfStatement()
	case ast.KindWhileKeyword:
		return p.parseWhileStatement()
	case ast.KindDoKeyword:
		return p.parseDoStatement()
	case ast.KindForKeyword:
		return p.parseForStatement()
	case ast.KindReturnKeyword, ast.KindThrowKeyword:
		return p.parseReturnOrThrow()
	case ast.KindBreakKeyword, ast.KindContinueKeyword:
		return p.parseJump()
	case ast.KindSwitchKeyword:
		return p.parseSwitchStatement()
	case ast.KindTryKeyword:
		return p.parseTryStatement()
	}
	if p.isIdentifier() && p.nextTokenIs(func() bool { return p.at(ast.KindColonToken) }) {
		label := p.parseIdentifier()
		p.next()
		statement := p.parseStatement()
		return p.finish(ast.KindLabeledStatement, start, ast.NoFlags, &ast.LabeledStatement{Label: label, Statement: statement})
	}
	if !p.isStartOfExpression() {
		return ast.NoNode
	}
	expr := p.parseExpression()
	p.parseSemicolon()
	return p.finish(ast.KindExpressionStatement, start, ast.NoFlags, &ast.ExpressionStatement{Expression: expr})
}

func (p *parser) parseModifiers() ast.NodeFlags {
	flags := ast.NoFlags
	for {
		switch p.token() {
		case ast.KindExportKeyword:
			flags |= ast.FlagExport
		case ast.KindDeclareKeyword:
			flags |= ast.FlagAmbient
		case ast.KindAbstractKeyword:
			flags |= ast.FlagAbstract
		case ast.KindDefaultKeyword:
			flags |= ast.FlagDefault
		default:
			return flags
		}
		p.next()
	}
}

func (p *parser) parseDeclaration() ast.NodeID {
	start := p.tok().start
	flags := p.parseModifiers()
	if p.ambient {
		flags |= ast.FlagAmbient
	}
	wasAmbient := p.ambient
	p.ambient = flags.IsAmbient()
	defer func() { p.ambient = wasAmbient }()

	switch p.token() {
	case ast.KindVarKeyword, ast.KindLetKeyword:
		return p.parseVariableStatement(start, flags)
	case ast.KindConstKeyword:
		if p.nextTokenIs(func() bool { return p.at(ast.KindEnumKeyword) }) {
			p.next()
			return p.parseEnumDeclaration(start, flags|ast.FlagConst)
		}
		return p.parseVariableStatement(start, flags)
	case ast.KindFunctionKeyword:
		return p.parseFunctionDeclaration(start, flags)
	case ast.KindClassKeyword:
		return p.parseClassDeclaration(start, flags)
	case ast.KindInterfaceKeyword:
		return p.parseInterfaceDeclaration(start, flags)
	case ast.KindTypeKeyword:
		return p.parseTypeAliasDeclaration(start, flags)
	case ast.KindEnumKeyword:
		return p.parseEnumDeclaration(start, flags)
	case ast.KindNamespaceKeyword:
		p.next()
		return p.parseModuleDeclaration(start, flags)
	case ast.KindImportKeyword:
		return p.parseImportDeclaration(start)
	}
	p.errorAtToken(diag.DeclarationExpected)
	return ast.NoNode
}

func (p *parser) parseVariableStatement(start int, flags ast.NodeFlags) ast.NodeID {
	if p.ambient {
		flags |= ast.FlagAmbient
	}
	list := p.parseVariableDeclarationList()
	p.parseSemicolon()
	return p.finish(ast.KindVariableStatement, start, flags, &ast.VariableStatement{DeclarationList: list})
}

func (p *parser) parseVariableDeclarationList() ast.NodeID {
	start := p.tok().start
	flags := ast.NoFlags
	switch p.token() {
	case ast.KindLetKeyword:
		flags = ast.FlagLet
	case ast.KindConstKeyword:
		flags = ast.FlagConst
	}
	p.next()
	var declarations []ast.NodeID
	for {
		declarations = append(declarations, p.parseVariableDeclaration())
		if !p.optional(ast.KindCommaToken) {
			break
		}
	}
	return p.finish(ast.KindVariableDeclarationList, start, flags, &ast.VariableDeclarationList{Declarations: declarations})
}

func (p *parser) parseVariableDeclaration() ast.NodeID {
	start := p.tok().start
	name := p.parseIdentifier()
	var typ, init ast.NodeID
	if p.optional(ast.KindColonToken) {
		typ = p.parseType()
	}
	if p.optional(ast.KindEqualsToken) {
		init = p.parseAssignment()
	}
	return p.finish(ast.KindVariableDeclaration, start, ast.NoFlags, &ast.VariableDeclaration{Name: name, Type: typ, Initializer: init})
}

func (p *parser) parseFunctionDeclaration(start int, flags ast.NodeFlags) ast.NodeID {
	p.expect(ast.KindFunctionKeyword)
	var name ast.NodeID
	if p.isIdentifier() {
		name = p.parseIdentifier()
	} else if !flags.IsDefault() {
		p.errorAtToken(diag.IdentifierExpected)
	}
	sig := p.parseSignature(ast.KindColonToken)
	sig.Name = name
	if p.at(ast.KindOpenBraceToken) && !flags.IsAmbient() {
		sig.Body = p.parseBlock()
	} else {
		p.parseSemicolon()
	}
	return p.finish(ast.KindFunctionDeclaration, start, flags, sig)
}

// parseSignature parses type parameters, parameters and the return type
// introduced by returnToken
func (p *parser) parseSignature(returnToken ast.Kind) *ast.SignatureDeclaration {
	sig := &ast.SignatureDeclaration{}
	sig.TypeParameters = p.parseTypeParameters()
	sig.Parameters = p.parseParameters()
	if p.optional(returnToken) {
		sig.Type = p.parseReturnType()
	}
	return sig
}

func (p *parser) parseParameters() []ast.NodeID {
	if !p.expect(ast.KindOpenParenToken) {
		return nil
	}
	var params []ast.NodeID
	for !p.at(ast.KindCloseParenToken) && !p.at(ast.KindEndOfFile) {
		param := p.parseParameter()
		if len(params) > 0 && p.factory.Store().Get(params[len(params)-1]).Flags().IsRest() {
			n := p.factory.Store().Get(params[len(params)-1])
			p.errorAt(p.file.Offset(n.Pos()), p.file.Offset(n.End()), diag.RestParameterMustBeLast)
		}
		params = append(params, param)
		if !p.optional(ast.KindCommaToken) {
			break
		}
	}
	p.expect(ast.KindCloseParenToken)
	return params
}

func (p *parser) parseParameter() ast.NodeID {
	start := p.tok().start
	flags := ast.NoFlags
	if p.optional(ast.KindDotDotDotToken) {
		flags |= ast.FlagRest
	}
	var name ast.NodeID
	if p.at(ast.KindThisKeyword) {
		name = p.parseIdentifierName()
	} else {
		name = p.parseIdentifier()
	}
	if p.optional(ast.KindQuestionToken) {
		flags |= ast.FlagOptional
	}
	var typ, init ast.NodeID
	if p.optional(ast.KindColonToken) {
		typ = p.parseType()
	}
	if p.optional(ast.KindEqualsToken) {
		init = p.parseAssignment()
	}
	return p.finish(ast.KindParameter, start, flags, &ast.Parameter{Name: name, Type: typ, Initializer: init})
}

func (p *parser) parseTypeParameters() []ast.NodeID {
	if !p.optional(ast.KindLessThanToken) {
		return nil
	}
	var params []ast.NodeID
	for !p.at(ast.KindGreaterThanToken) && !p.at(ast.KindEndOfFile) {
		start := p.tok().start
		name := p.parseIdentifier()
		var constraint, def ast.NodeID
		if p.optional(ast.KindExtendsKeyword) {
			constraint = p.parseType()
		}
		if p.optional(ast.KindEqualsToken) {
			def = p.parseType()
		}
		params = append(params, p.finish(ast.KindTypeParameter, start, ast.NoFlags,
			&ast.TypeParameter{Name: name, Constraint: constraint, Default: def}))
		if !p.optional(ast.KindCommaToken) {
			break
		}
	}
	p.expect(ast.KindGreaterThanToken)
	return params
}

func (p *parser) parseHeritageList() []ast.NodeID {
	var refs []ast.NodeID
	for {
		refs = append(refs, p.parseTypeReference())
		if !p.optional(ast.KindCommaToken) {
			return refs
		}
	}
}

func (p *parser) parseClassDeclaration(start int, flags ast.NodeFlags) ast.NodeID {
	p.expect(ast.KindClassKeyword)
	decl := &ast.ClassDeclaration{}
	if p.isIdentifier() && !p.at(ast.KindImplementsKeyword) {
		decl.Name = p.parseIdentifier()
	} else {
		p.errorAtToken(diag.IdentifierExpected)
	}
	decl.TypeParameters = p.parseTypeParameters()
	if p.optional(ast.KindExtendsKeyword) {
		decl.Extends = p.parseTypeReference()
	}
	if p.optional(ast.KindImplementsKeyword) {
		decl.Implements = p.parseHeritageList()
	}
	if p.expect(ast.KindOpenBraceToken) {
		for !p.at(ast.KindCloseBraceToken) && !p.at(ast.KindEndOfFile) {
			if p.optional(ast.KindSemicolonToken) {
				continue
			}
			before := p.tok().start
			if member := p.parseClassMember(); member != ast.NoNode {
				decl.Members = append(decl.Members, member)
			}
			if p.tok().start == before {
				p.errorAtToken(diag.UnexpectedToken, p.tokenDescription())
				p.next()
			}
		}
		p.expect(ast.KindCloseBraceToken)
	}
	return p.finish(ast.KindClassDeclaration, start, flags, decl)
}

var accessibilityModifiers = map[string]bool{"public": true, "private": true, "protected": true}

func (p *parser) parseMemberModifiers() ast.NodeFlags {
	flags := ast.NoFlags
	for {
		isModifier := p.nextTokenIs(func() bool {
			return (p.isPropertyName() || p.at(ast.KindOpenBracketToken)) && !p.tok().lineBefore
		})
		if !isModifier {
			return flags
		}
		switch {
		case p.at(ast.KindStaticKeyword):
			flags |= ast.FlagStatic
		case p.at(ast.KindReadonlyKeyword):
			flags |= ast.FlagReadonly
		case p.at(ast.KindAbstractKeyword):
			flags |= ast.FlagAbstract
		case p.at(ast.KindDeclareKeyword):
			flags |= ast.FlagAmbient
		case p.at(ast.KindIdentifier) && accessibilityModifiers[p.tok().text]:
		default:
			return flags
		}
		p.next()
	}
}

func (p *parser) parseClassMember() ast.NodeID {
	start := p.tok().start
	flags := p.parseMemberModifiers()
	if p.at(ast.KindConstructorKeyword) && p.nextTokenIs(func() bool { return p.at(ast.KindOpenParenToken) }) {
		p.next()
		sig := p.parseSignature(ast.KindColonToken)
		if p.at(ast.KindOpenBraceToken) {
			sig.Body = p.parseBlock()
		} else {
			p.parseSemicolon()
		}
		return p.finish(ast.KindConstructor, start, flags, sig)
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
		if p.at(ast.KindOpenBraceToken) {
			sig.Body = p.parseBlock()
		} else {
			p.parseSemicolon()
		}
		return p.finish(ast.KindMethodDeclaration, start, flags, sig)
	}
	prop := &ast.PropertySignature{Name: name}
	if p.optional(ast.KindColonToken) {
		prop.Type = p.parseType()
	}
	if p.optional(ast.KindEqualsToken) {
		prop.Initializer = p.parseAssignment()
	}
	p.parseSemicolon()
	return p.finish(ast.KindPropertyDeclaration, start, flags, prop)
}

func (p *parser) parseInterfaceDeclaration(start int, flags ast.NodeFlags) ast.NodeID {
	p.expect(ast.KindInterfaceKeyword)
	decl := &ast.InterfaceDeclaration{Name: p.parseIdentifier()}
	decl.TypeParameters = p.parseTypeParameters()
	if p.optional(ast.KindExtendsKeyword) {
		decl.Extends = p.parseHeritageList()
	}
	decl.Members = p.parseTypeMembers()
	return p.finish(ast.KindInterfaceDeclaration, start, flags, decl)
}

func (p *parser) parseTypeAliasDeclaration(start int, flags ast.NodeFlags) ast.NodeID {
	p.expect(ast.KindTypeKeyword)
	decl := &ast.TypeAliasDeclaration{Name: p.parseIdentifier()}
	decl.TypeParameters = p.parseTypeParameters()
	p.expect(ast.KindEqualsToken)
	decl.Type = p.parseType()
	p.parseSemicolon()
	return p.finish(ast.KindTypeAliasDeclaration, start, flags, decl)
}

func (p *parser) parseEnumDeclaration(start int, flags ast.NodeFlags) ast.NodeID {
	p.expect(ast.KindEnumKeyword)
	decl := &ast.EnumDeclaration{Name: p.parseIdentifier()}
	if p.expect(ast.KindOpenBraceToken) {
		for !p.at(ast.KindCloseBraceToken) && !p.at(ast.KindEndOfFile) {
			memberStart := p.tok().start
			member := &ast.EnumMember{Name: p.parsePropertyName()}
			if p.optional(ast.KindEqualsToken) {
				member.Initializer = p.parseAssignment()
			}
			decl.Members = append(decl.Members, p.finish(ast.KindEnumMember, memberStart, ast.NoFlags, member))
			if !p.optional(ast.KindCommaToken) {
				break
			}
		}
		p.expect(ast.KindCloseBraceToken)
	}
	return p.finish(ast.KindEnumDeclaration, start, flags, decl)
}

// parseModuleDeclaration parses the name and body of a namespace. A dotted
// name `A.B` nests an exported namespace B inside A.
func (p *parser) parseModuleDeclaration(start int, flags ast.NodeFlags) ast.NodeID {
	name := p.parseIdentifier()
	var body ast.NodeID
	if p.optional(ast.KindDotToken) {
		innerStart := p.tok().start
		body = p.parseModuleDeclaration(innerStart, ast.FlagExport|(flags&ast.FlagAmbient))
	} else {
		bodyStart := p.tok().start
		var statements []ast.NodeID
		if p.expect(ast.KindOpenBraceToken) {
			statements = p.parseStatementList(func() bool { return p.at(ast.KindCloseBraceToken) })
			p.expect(ast.KindCloseBraceToken)
		}
		body = p.finish(ast.KindModuleBlock, bodyStart, ast.NoFlags, &ast.Block{Statements: statements})
	}
	return p.finish(ast.KindModuleDeclaration, start, flags, &ast.ModuleDeclaration{Name: name, Body: body})
}

func (p *parser) parseImportDeclaration(start int) ast.NodeID {
	p.expect(ast.KindImportKeyword)
	decl := &ast.ImportDeclaration{}
	if p.expect(ast.KindOpenBraceToken) {
		for !p.at(ast.KindCloseBraceToken) && !p.at(ast.KindEndOfFile) {
			specStart := p.tok().start
			spec := &ast.ImportSpecifier{}
			first := p.parseIdentifierName()
			if p.optional(ast.KindAsKeyword) {
				spec.PropertyName = first
				spec.Name = p.parseIdentifier()
			} else {
				spec.Name = first
			}
			decl.Specifiers = append(decl.Specifiers, p.finish(ast.KindImportSpecifier, specStart, ast.NoFlags, spec))
			if !p.optional(ast.KindCommaToken) {
				break
			}
		}
		p.expect(ast.KindCloseBraceToken)
	}
	p.expect(ast.KindFromKeyword)
	if p.at(ast.KindStringLiteral) {
		decl.ModuleSpecifier = p.parseLiteral()
	} else {
		p.errorAtToken(diag.TokenExpected, "string literal")
	}
	p.parseSemicolon()
	return p.finish(ast.KindImportDeclaration, start, ast.NoFlags, decl)
}

func (p *parser) parseParenthesizedCondition() ast.NodeID {
	p.expect(ast.KindOpenParenToken)
	expr := p.parseExpression()
	p.expect(ast.KindCloseParenToken)
	return expr
}

func (p *parser) parseIfStatement() ast.NodeID {
	start := p.tok().start
	p.next()
	stmt := &ast.IfStatement{Expression: p.parseParenthesizedCondition()}
	stmt.Then = p.parseEmbeddedStatement()
	if p.optional(ast.KindElseKeyword) {
		stmt.Else = p.parseEmbeddedStatement()
	}
	return p.finish(ast.KindIfStatement, start, ast.NoFlags, stmt)
}

// parseEmbeddedStatement parses the body of a compound statement, which must exist
func (p *parser) parseEmbeddedStatement() ast.NodeID {
	start := p.tok().start
	if st := p.parseStatement(); st != ast.NoNode {
		return st
	}
	p.errorAtToken(diag.StatementExpected)
	return p.finish(ast.KindEmptyStatement, start, ast.FlagThisNodeHasError, nil)
}

func (p *parser) parseWhileStatement() ast.NodeID {
	start := p.tok().start
	p.next()
	loop := &ast.LoopStatement{Condition: p.parseParenthesizedCondition()}
	loop.Statement = p.parseEmbeddedStatement()
	return p.finish(ast.KindWhileStatement, start, ast.NoFlags, loop)
}

func (p *parser) parseDoStatement() ast.NodeID {
	start := p.tok().start
	p.next()
	loop := &ast.LoopStatement{Statement: p.parseEmbeddedStatement()}
	p.expect(ast.KindWhileKeyword)
	loop.Condition = p.parseParenthesizedCondition()
	p.optional(ast.KindSemicolonToken)
	return p.finish(ast.KindDoStatement, start, ast.NoFlags, loop)
}

func (p *parser) parseForStatement() ast.NodeID {
	start := p.tok().start
	p.next()
	p.expect(ast.KindOpenParenToken)
	loop := &ast.LoopStatement{}
	if !p.at(ast.KindSemicolonToken) {
		wasDisallowIn := p.disallowIn
		p.disallowIn = true
		switch {
		case p.at(ast.KindVarKeyword), p.at(ast.KindConstKeyword),
			p.at(ast.KindLetKeyword) && p.nextTokenIs(p.isIdentifier):
			loop.Initializer = p.parseVariableDeclarationList()
		default:
			loop.Initializer = p.parseExpression()
		}
		p.disallowIn = wasDisallowIn
	}
	kind := ast.KindForStatement
	switch {
	case p.optional(ast.KindOfKeyword):
		kind = ast.KindForOfStatement
		loop.Condition = p.parseAssignment()
	case p.optional(ast.KindInKeyword):
		kind = ast.KindForInStatement
		loop.Condition = p.parseExpression()
	default:
		p.expect(ast.KindSemicolonToken)
		if !p.at(ast.KindSemicolonToken) {
			loop.Condition = p.parseExpression()
		}
		p.expect(ast.KindSemicolonToken)
		if !p.at(ast.KindCloseParenToken) {
			loop.Incrementor = p.parseExpression()
		}
	}
	p.expect(ast.KindCloseParenToken)
	loop.Statement = p.parseEmbeddedStatement()
	return p.finish(kind, start, ast.NoFlags, loop)
}

func (p *parser) parseReturnOrThrow() ast.NodeID {
	start := p.tok().start
	kind := ast.KindReturnStatement
	if p.at(ast.KindThrowKeyword) {
		kind = ast.KindThrowStatement
	}
	p.next()
	stmt := &ast.ExpressionStatement{}
	if !p.canParseSemicolon() {
		stmt.Expression = p.parseExpression()
	} else if kind == ast.KindThrowStatement {
		p.errorAtToken(diag.ExpressionExpected)
	}
	p.parseSemicolon()
	return p.finish(kind, start, ast.NoFlags, stmt)
}

func (p *parser) parseJump() ast.NodeID {
	start := p.tok().start
	kind := ast.KindBreakStatement
	if p.at(ast.KindContinueKeyword) {
		kind = ast.KindContinueStatement
	}
	p.next()
	stmt := &ast.JumpStatement{}
	if p.isIdentifier() && !p.tok().lineBefore {
		stmt.Label = p.parseIdentifier()
	}
	p.parseSemicolon()
	return p.finish(kind, start, ast.NoFlags, stmt)
}

func (p *parser) parseSwitchStatement() ast.NodeID {
	start := p.tok().start
	p.next()
	stmt := &ast.SwitchStatement{Expression: p.parseParenthesizedCondition()}
	if p.expect(ast.KindOpenBraceToken) {
		for p.at(ast.KindCaseKeyword) || p.at(ast.KindDefaultKeyword) {
			clauseStart := p.tok().start
			kind := ast.KindDefaultClause
			clause := &ast.CaseClause{}
			if p.optional(ast.KindCaseKeyword) {
				kind = ast.KindCaseClause
				clause.Expression = p.parseExpression()
			} else {
				p.next()
			}
			p.expect(ast.KindColonToken)
			clause.Statements = p.parseStatementList(func() bool {
				return p.at(ast.KindCaseKeyword) || p.at(ast.KindDefaultKeyword) || p.at(ast.KindCloseBraceToken)
			})
			stmt.Clauses = append(stmt.Clauses, p.finish(kind, clauseStart, ast.NoFlags, clause))
		}
		p.expect(ast.KindCloseBraceToken)
	}
	return p.finish(ast.KindSwitchStatement, start, ast.NoFlags, stmt)
}

func (p *parser) parseTryStatement() ast.NodeID {
	start := p.tok().start
	p.next()
	stmt := &ast.TryStatement{TryBlock: p.parseBlock()}
	if p.at(ast.KindCatchKeyword) {
		catchStart := p.tok().start
		p.next()
		clause := &ast.CatchClause{}
		if p.optional(ast.KindOpenParenToken) {
			clause.VariableDeclaration = p.parseVariableDeclaration()
			p.expect(ast.KindCloseParenToken)
		}
		clause.Block = p.parseBlock()
		stmt.CatchClause = p.finish(ast.KindCatchClause, catchStart, ast.NoFlags, clause)
	}
	if p.optional(ast.KindFinallyKeyword) {
		stmt.FinallyBlock = p.parseBlock()
	}
	if stmt.CatchClause == ast.NoNode && stmt.FinallyBlock == ast.NoNode {
		p.errorAtToken(diag.TokenExpected, "catch")
	}
	return p.finish(ast.KindTryStatement, start, ast.NoFlags, stmt)
}
