package ast

import (
	"strconv"
	"strings"
)

// Print renders the subtree rooted at id as source text.
// Type syntax built by the node builder is printed through this too, so the
// output for types is kept canonical: single-line, `;`-separated members.
func Print(s *Store, id NodeID) string {
	ctx := newPrintContext(s)
	ctx.node(id, precLowest)
	return ctx.String()
}

type printContext struct {
	*strings.Builder
	store     *Store
	indent    int
	indentStr string
}

func newPrintContext(s *Store) *printContext {
	return &printContext{
		Builder:   &strings.Builder{},
		store:     s,
		indentStr: "    ",
	}
}

// precedence levels used for both types and expressions; higher binds tighter
const (
	precLowest      = 0
	precComma       = 1
	precAssignment  = 2
	precConditional = 3
	precCoalesce    = 4
	precLogicalOr   = 5
	precLogicalAnd  = 6
	precBitwiseOr   = 7
	precBitwiseAnd  = 8
	precEquality    = 9
	precRelational  = 10
	precAdditive    = 11
	precMultiply    = 12
	precUnary       = 13
	precPostfix     = 14
	precMember      = 15

	typePrecFunction     = 1
	typePrecUnion        = 2
	typePrecIntersection = 3
	typePrecOperator     = 4
	typePrecPostfix      = 5
)

func binaryPrecedence(op Kind) int {
	switch op {
	case KindCommaToken:
		return precComma
	case KindQuestionQuestionToken:
		return precCoalesce
	case KindBarBarToken:
		return precLogicalOr
	case KindAmpersandAmpersandToken:
		return precLogicalAnd
	case KindBarToken:
		return precBitwiseOr
	case KindAmpersandToken:
		return precBitwiseAnd
	case KindEqualsEqualsToken, KindExclamationEqualsToken, KindEqualsEqualsEqualsToken, KindExclamationEqualsEqualsToken:
		return precEquality
	case KindLessThanToken, KindGreaterThanToken, KindLessThanEqualsToken, KindGreaterThanEqualsToken,
		KindInstanceOfKeyword, KindInKeyword:
		return precRelational
	case KindPlusToken, KindMinusToken:
		return precAdditive
	case KindAsteriskToken, KindSlashToken, KindPercentToken:
		return precMultiply
	}
	if op.IsAssignmentOperator() {
		return precAssignment
	}
	return precLowest
}

func (ctx *printContext) newline() {
	ctx.WriteString("\n")
	ctx.WriteString(strings.Repeat(ctx.indentStr, ctx.indent))
}

func (ctx *printContext) list(ids []NodeID, sep string, prec int) {
	for i, id := range ids {
		if i > 0 {
			ctx.WriteString(sep)
		}
		ctx.node(id, prec)
	}
}

func (ctx *printContext) typeArgs(ids []NodeID) {
	if len(ids) == 0 {
		return
	}
	ctx.WriteString("<")
	ctx.list(ids, ", ", precLowest)
	ctx.WriteString(">")
}

func (ctx *printContext) wrap(open bool, body func()) {
	if open {
		ctx.WriteString("(")
	}
	body()
	if open {
		ctx.WriteString(")")
	}
}

func (ctx *printContext) node(id NodeID, prec int) {
	n := ctx.store.Get(id)
	if n == nil {
		return
	}
	if n.kind.IsTypeNode() {
		ctx.typeNode(n, prec)
		return
	}
	switch d := n.data.(type) {
	case *Identifier:
		ctx.WriteString(d.Text)
	case *LiteralExpression:
		ctx.literal(n.kind, d)
	case *QualifiedName:
		ctx.node(d.Left, precLowest)
		ctx.WriteString(".")
		ctx.node(d.Right, precLowest)
	case *TypeParameter:
		ctx.node(d.Name, precLowest)
		if d.Constraint.IsPresent() {
			ctx.WriteString(" extends ")
			ctx.node(d.Constraint, precLowest)
		}
		if d.Default.IsPresent() {
			ctx.WriteString(" = ")
			ctx.node(d.Default, precLowest)
		}
	case *Parameter:
		if n.flags.IsRest() {
			ctx.WriteString("...")
		}
		ctx.node(d.Name, precLowest)
		if n.flags.IsOptional() {
			ctx.WriteString("?")
		}
		if d.Type.IsPresent() {
			ctx.WriteString(": ")
			ctx.node(d.Type, precLowest)
		}
		if d.Initializer.IsPresent() {
			ctx.WriteString(" = ")
			ctx.node(d.Initializer, precAssignment)
		}
	case *PropertySignature:
		ctx.modifiers(n.flags)
		ctx.node(d.Name, precLowest)
		if n.flags.IsOptional() {
			ctx.WriteString("?")
		}
		if d.Type.IsPresent() {
			ctx.WriteString(": ")
			ctx.node(d.Type, precLowest)
		}
		if d.Initializer.IsPresent() {
			ctx.WriteString(" = ")
			ctx.node(d.Initializer, precAssignment)
		}
	case *SignatureDeclaration:
		ctx.signature(n, d)
	case *IndexSignature:
		ctx.modifiers(n.flags)
		ctx.WriteString("[")
		ctx.node(d.Parameter, precLowest)
		ctx.WriteString("]: ")
		ctx.node(d.Type, precLowest)
	default:
		if n.kind.IsStatement() || n.kind.IsDeclaration() || n.kind == KindSourceFile ||
			n.kind == KindCaseClause || n.kind == KindDefaultClause || n.kind == KindCatchClause ||
			n.kind == KindVariableDeclarationList || n.kind == KindImportSpecifier {
			ctx.statement(n)
			return
		}
		ctx.expression(n, prec)
	}
}

func (ctx *printContext) modifiers(flags NodeFlags) {
	if flags.IsStatic() {
		ctx.WriteString("static ")
	}
	if flags.IsAbstract() {
		ctx.WriteString("abstract ")
	}
	if flags.IsReadonly() {
		ctx.WriteString("readonly ")
	}
}

func (ctx *printContext) literal(kind Kind, d *LiteralExpression) {
	switch kind {
	case KindStringLiteral:
		ctx.WriteString(strconv.Quote(d.Text))
	case KindNoSubstitutionTemplateLiteral:
		ctx.WriteString("`" + d.Text + "`")
	default:
		ctx.WriteString(d.Text)
	}
}

func (ctx *printContext) parameters(d *SignatureDeclaration) {
	ctx.typeArgs(d.TypeParameters)
	ctx.WriteString("(")
	ctx.list(d.Parameters, ", ", precLowest)
	ctx.WriteString(")")
}

func (ctx *printContext) signature(n *Node, d *SignatureDeclaration) {
	switch n.kind {
	case KindFunctionType, KindConstructorType:
		if n.kind == KindConstructorType {
			ctx.WriteString("new ")
		}
		ctx.parameters(d)
		ctx.WriteString(" => ")
		ctx.node(d.Type, precLowest)
		return
	case KindArrowFunction:
		ctx.parameters(d)
		if d.Type.IsPresent() {
			ctx.WriteString(": ")
			ctx.node(d.Type, precLowest)
		}
		ctx.WriteString(" => ")
		if ctx.store.Kind(d.Body) == KindObjectLiteralExpression {
			ctx.wrap(true, func() { ctx.node(d.Body, precLowest) })
		} else {
			ctx.node(d.Body, precAssignment)
		}
		return
	case KindFunctionDeclaration, KindFunctionExpression:
		if n.flags.IsExported() {
			ctx.WriteString("export ")
		}
		if n.flags.IsAmbient() && n.kind == KindFunctionDeclaration {
			ctx.WriteString("declare ")
		}
		ctx.WriteString("function")
		if d.Name.IsPresent() {
			ctx.WriteString(" ")
			ctx.node(d.Name, precLowest)
		}
	case KindConstructor:
		ctx.WriteString("constructor")
	case KindConstructSignature:
		ctx.WriteString("new ")
	case KindCallSignature:
	default:
		ctx.modifiers(n.flags)
		ctx.node(d.Name, precLowest)
		if n.flags.IsOptional() {
			ctx.WriteString("?")
		}
	}
	ctx.parameters(d)
	if d.Type.IsPresent() {
		ctx.WriteString(": ")
		ctx.node(d.Type, precLowest)
	}
	if d.Body.IsPresent() {
		ctx.WriteString(" ")
		ctx.node(d.Body, precLowest)
	} else if n.kind == KindFunctionDeclaration {
		ctx.WriteString(";")
	}
}

func (ctx *printContext) members(ids []NodeID) {
	if len(ids) == 0 {
		ctx.WriteString("{}")
		return
	}
	ctx.WriteString("{ ")
	for _, id := range ids {
		ctx.node(id, precLowest)
		ctx.WriteString("; ")
	}
	ctx.WriteString("}")
}

func (ctx *printContext) typeNode(n *Node, prec int) {
	switch d := n.data.(type) {
	case *TypeReference:
		ctx.node(d.TypeName, precLowest)
		ctx.typeArgs(d.TypeArguments)
	case *SignatureDeclaration:
		ctx.wrap(prec >= typePrecFunction, func() { ctx.signature(n, d) })
	case *TypePredicate:
		if n.flags.IsAsserts() {
			ctx.WriteString("asserts ")
		}
		ctx.node(d.ParameterName, precLowest)
		if d.Type.IsPresent() {
			ctx.WriteString(" is ")
			ctx.node(d.Type, precLowest)
		}
	case *TypeQuery:
		ctx.WriteString("typeof ")
		ctx.node(d.ExprName, precLowest)
	case *TypeLiteral:
		ctx.members(d.Members)
	case *ArrayType:
		ctx.node(d.ElementType, typePrecPostfix)
		ctx.WriteString("[]")
	case *TupleType:
		ctx.WriteString("[")
		ctx.list(d.Elements, ", ", precLowest)
		ctx.WriteString("]")
	case *UnionOrIntersectionType:
		sep, own := " | ", typePrecUnion
		if n.kind == KindIntersectionType {
			sep, own = " & ", typePrecIntersection
		}
		ctx.wrap(prec >= own, func() { ctx.list(d.Types, sep, own) })
	case *ConditionalType:
		ctx.wrap(prec >= typePrecFunction, func() {
			ctx.node(d.CheckType, typePrecFunction)
			ctx.WriteString(" extends ")
			ctx.node(d.ExtendsType, typePrecFunction)
			ctx.WriteString(" ? ")
			ctx.node(d.TrueType, precLowest)
			ctx.WriteString(" : ")
			ctx.node(d.FalseType, precLowest)
		})
	case *InferType:
		ctx.WriteString("infer ")
		ctx.node(d.TypeParameter, precLowest)
	case *ParenthesizedType:
		ctx.wrap(true, func() { ctx.node(d.Type, precLowest) })
	case *TypeOperator:
		ctx.wrap(prec >= typePrecPostfix, func() {
			ctx.WriteString(TokenText(d.Operator))
			ctx.WriteString(" ")
			ctx.node(d.Type, typePrecOperator)
		})
	case *IndexedAccessType:
		ctx.node(d.ObjectType, typePrecPostfix)
		ctx.WriteString("[")
		ctx.node(d.IndexType, precLowest)
		ctx.WriteString("]")
	case *MappedType:
		ctx.mappedType(n, d)
	case *LiteralType:
		ctx.node(d.Literal, precLowest)
	case *TemplateLiteralType:
		ctx.WriteString("`")
		ctx.WriteString(d.Head)
		for _, span := range d.Spans {
			s := As[TemplateLiteralTypeSpan](ctx.store.Get(span))
			ctx.WriteString("${")
			ctx.node(s.Type, precLowest)
			ctx.WriteString("}")
			ctx.WriteString(s.Literal)
		}
		ctx.WriteString("`")
	default:
		switch n.kind {
		case KindTruncatedType:
			ctx.WriteString("...")
		case KindThisType:
			ctx.WriteString("this")
		default:
			ctx.WriteString(TokenText(n.kind))
		}
	}
}

func (ctx *printContext) mappedType(n *Node, d *MappedType) {
	ctx.WriteString("{ ")
	switch {
	case n.flags.IsReadonlyMinus():
		ctx.WriteString("-readonly ")
	case n.flags.IsReadonly():
		ctx.WriteString("readonly ")
	}
	tp := As[TypeParameter](ctx.store.Get(d.TypeParameter))
	ctx.WriteString("[")
	ctx.node(tp.Name, precLowest)
	ctx.WriteString(" in ")
	ctx.node(tp.Constraint, precLowest)
	ctx.WriteString("]")
	switch {
	case n.flags.IsOptionalMinus():
		ctx.WriteString("-?")
	case n.flags.IsOptional():
		ctx.WriteString("?")
	}
	ctx.WriteString(": ")
	ctx.node(d.Type, precLowest)
	ctx.WriteString("; }")
}

func (ctx *printContext) expression(n *Node, prec int) {
	switch d := n.data.(type) {
	case *ObjectLiteralExpression:
		if len(d.Properties) == 0 {
			ctx.WriteString("{}")
			return
		}
		ctx.WriteString("{ ")
		ctx.list(d.Properties, ", ", precAssignment)
		ctx.WriteString(" }")
	case *ArrayLiteralExpression:
		ctx.WriteString("[")
		ctx.list(d.Elements, ", ", precAssignment)
		ctx.WriteString("]")
	case *PropertyAccessExpression:
		ctx.node(d.Expression, precMember)
		if n.flags&FlagOptional != 0 {
			ctx.WriteString("?.")
		} else {
			ctx.WriteString(".")
		}
		ctx.node(d.Name, precLowest)
	case *ElementAccessExpression:
		ctx.node(d.Expression, precMember)
		ctx.WriteString("[")
		ctx.node(d.Argument, precLowest)
		ctx.WriteString("]")
	case *CallExpression:
		if n.kind == KindNewExpression {
			ctx.WriteString("new ")
		}
		ctx.node(d.Expression, precMember)
		ctx.typeArgs(d.TypeArguments)
		ctx.WriteString("(")
		ctx.list(d.Arguments, ", ", precAssignment)
		ctx.WriteString(")")
	case *ParenthesizedExpression:
		ctx.wrap(true, func() { ctx.node(d.Expression, precLowest) })
	case *TypeOfExpression:
		ctx.wrap(prec > precUnary, func() {
			ctx.WriteString("typeof ")
			ctx.node(d.Expression, precUnary)
		})
	case *UnaryExpression:
		if n.kind == KindPostfixUnaryExpression {
			ctx.node(d.Operand, precPostfix)
			ctx.WriteString(TokenText(d.Operator))
			return
		}
		ctx.wrap(prec > precUnary, func() {
			ctx.WriteString(TokenText(d.Operator))
			ctx.node(d.Operand, precUnary)
		})
	case *BinaryExpression:
		own := binaryPrecedence(d.Operator)
		ctx.wrap(prec > own, func() {
			left, right := own, own+1
			if own == precAssignment {
				left, right = own+1, own
			}
			ctx.node(d.Left, left)
			if d.Operator != KindCommaToken {
				ctx.WriteString(" ")
			}
			ctx.WriteString(TokenText(d.Operator))
			ctx.WriteString(" ")
			ctx.node(d.Right, right)
		})
	case *ConditionalExpression:
		ctx.wrap(prec > precConditional, func() {
			ctx.node(d.Condition, precCoalesce)
			ctx.WriteString(" ? ")
			ctx.node(d.WhenTrue, precAssignment)
			ctx.WriteString(" : ")
			ctx.node(d.WhenFalse, precAssignment)
		})
	case *SpreadElement:
		ctx.WriteString("...")
		ctx.node(d.Expression, precAssignment)
	case *AsExpression:
		ctx.wrap(prec > precRelational, func() {
			ctx.node(d.Expression, precRelational)
			ctx.WriteString(" as ")
			ctx.node(d.Type, precLowest)
		})
	case *NonNullExpression:
		ctx.node(d.Expression, precMember)
		ctx.WriteString("!")
	case *PropertyAssignment:
		ctx.node(d.Name, precLowest)
		if d.Initializer.IsPresent() {
			ctx.WriteString(": ")
			ctx.node(d.Initializer, precAssignment)
		}
	default:
		ctx.WriteString(TokenText(n.kind))
	}
}

func (ctx *printContext) block(statements []NodeID) {
	if len(statements) == 0 {
		ctx.WriteString("{}")
		return
	}
	ctx.WriteString("{")
	ctx.indent++
	for _, st := range statements {
		ctx.newline()
		ctx.node(st, precLowest)
	}
	ctx.indent--
	ctx.newline()
	ctx.WriteString("}")
}

func (ctx *printContext) exportPrefix(n *Node) {
	if n.flags.IsExported() {
		ctx.WriteString("export ")
	}
	if n.flags.IsAmbient() {
		ctx.WriteString("declare ")
	}
}

func (ctx *printContext) statement(n *Node) {
	switch d := n.data.(type) {
	case *SourceFile:
		for i, st := range d.Statements {
			if i > 0 {
				ctx.WriteString("\n")
			}
			ctx.node(st, precLowest)
		}
	case *Block:
		if n.kind == KindModuleBlock || n.kind == KindBlock {
			ctx.block(d.Statements)
		}
	case *VariableStatement:
		ctx.exportPrefix(n)
		ctx.node(d.DeclarationList, precLowest)
		ctx.WriteString(";")
	case *VariableDeclarationList:
		switch {
		case n.flags.IsConst():
			ctx.WriteString("const ")
		case n.flags.IsLet():
			ctx.WriteString("let ")
		default:
			ctx.WriteString("var ")
		}
		ctx.list(d.Declarations, ", ", precLowest)
	case *VariableDeclaration:
		ctx.node(d.Name, precLowest)
		if d.Type.IsPresent() {
			ctx.WriteString(": ")
			ctx.node(d.Type, precLowest)
		}
		if d.Initializer.IsPresent() {
			ctx.WriteString(" = ")
			ctx.node(d.Initializer, precAssignment)
		}
	case *ExpressionStatement:
		switch n.kind {
		case KindReturnStatement:
			ctx.WriteString("return")
		case KindThrowStatement:
			ctx.WriteString("throw")
		}
		if d.Expression.IsPresent() {
			if n.kind != KindExpressionStatement {
				ctx.WriteString(" ")
			}
			ctx.node(d.Expression, precLowest)
		}
		ctx.WriteString(";")
	case *IfStatement:
		ctx.WriteString("if (")
		ctx.node(d.Expression, precLowest)
		ctx.WriteString(") ")
		ctx.node(d.Then, precLowest)
		if d.Else.IsPresent() {
			ctx.WriteString(" else ")
			ctx.node(d.Else, precLowest)
		}
	case *LoopStatement:
		ctx.loop(n, d)
	case *JumpStatement:
		ctx.WriteString(TokenText(jumpKeyword(n.kind)))
		if d.Label.IsPresent() {
			ctx.WriteString(" ")
			ctx.node(d.Label, precLowest)
		}
		ctx.WriteString(";")
	case *SwitchStatement:
		ctx.WriteString("switch (")
		ctx.node(d.Expression, precLowest)
		ctx.WriteString(") ")
		ctx.block(d.Clauses)
	case *CaseClause:
		if n.kind == KindDefaultClause {
			ctx.WriteString("default:")
		} else {
			ctx.WriteString("case ")
			ctx.node(d.Expression, precLowest)
			ctx.WriteString(":")
		}
		ctx.indent++
		for _, st := range d.Statements {
			ctx.newline()
			ctx.node(st, precLowest)
		}
		ctx.indent--
	case *LabeledStatement:
		ctx.node(d.Label, precLowest)
		ctx.WriteString(": ")
		ctx.node(d.Statement, precLowest)
	case *TryStatement:
		ctx.WriteString("try ")
		ctx.node(d.TryBlock, precLowest)
		if d.CatchClause.IsPresent() {
			ctx.WriteString(" ")
			ctx.node(d.CatchClause, precLowest)
		}
		if d.FinallyBlock.IsPresent() {
			ctx.WriteString(" finally ")
			ctx.node(d.FinallyBlock, precLowest)
		}
	case *CatchClause:
		ctx.WriteString("catch ")
		if d.VariableDeclaration.IsPresent() {
			ctx.WriteString("(")
			ctx.node(d.VariableDeclaration, precLowest)
			ctx.WriteString(") ")
		}
		ctx.node(d.Block, precLowest)
	case *ClassDeclaration:
		ctx.exportPrefix(n)
		if n.flags.IsAbstract() {
			ctx.WriteString("abstract ")
		}
		ctx.WriteString("class ")
		ctx.node(d.Name, precLowest)
		ctx.typeArgs(d.TypeParameters)
		if d.Extends.IsPresent() {
			ctx.WriteString(" extends ")
			ctx.node(d.Extends, precLowest)
		}
		if len(d.Implements) > 0 {
			ctx.WriteString(" implements ")
			ctx.list(d.Implements, ", ", precLowest)
		}
		ctx.WriteString(" ")
		ctx.block(d.Members)
	case *InterfaceDeclaration:
		ctx.exportPrefix(n)
		ctx.WriteString("interface ")
		ctx.node(d.Name, precLowest)
		ctx.typeArgs(d.TypeParameters)
		if len(d.Extends) > 0 {
			ctx.WriteString(" extends ")
			ctx.list(d.Extends, ", ", precLowest)
		}
		ctx.WriteString(" ")
		ctx.members(d.Members)
	case *TypeAliasDeclaration:
		ctx.exportPrefix(n)
		ctx.WriteString("type ")
		ctx.node(d.Name, precLowest)
		ctx.typeArgs(d.TypeParameters)
		ctx.WriteString(" = ")
		ctx.node(d.Type, precLowest)
		ctx.WriteString(";")
	case *EnumDeclaration:
		ctx.exportPrefix(n)
		if n.flags.IsConst() {
			ctx.WriteString("const ")
		}
		ctx.WriteString("enum ")
		ctx.node(d.Name, precLowest)
		ctx.WriteString(" { ")
		ctx.list(d.Members, ", ", precLowest)
		ctx.WriteString(" }")
	case *EnumMember:
		ctx.node(d.Name, precLowest)
		if d.Initializer.IsPresent() {
			ctx.WriteString(" = ")
			ctx.node(d.Initializer, precAssignment)
		}
	case *ModuleDeclaration:
		ctx.exportPrefix(n)
		ctx.WriteString("namespace ")
		ctx.node(d.Name, precLowest)
		ctx.WriteString(" ")
		ctx.node(d.Body, precLowest)
	case *ImportDeclaration:
		ctx.WriteString("import { ")
		ctx.list(d.Specifiers, ", ", precLowest)
		ctx.WriteString(" } from ")
		ctx.node(d.ModuleSpecifier, precLowest)
		ctx.WriteString(";")
	case *ImportSpecifier:
		if d.PropertyName.IsPresent() {
			ctx.node(d.PropertyName, precLowest)
			ctx.WriteString(" as ")
		}
		ctx.node(d.Name, precLowest)
	default:
		if n.kind == KindEmptyStatement {
			ctx.WriteString(";")
		}
	}
}

func jumpKeyword(k Kind) Kind {
	if k == KindContinueStatement {
		return KindContinueKeyword
	}
	return KindBreakKeyword
}

func (ctx *printContext) loop(n *Node, d *LoopStatement) {
	switch n.kind {
	case KindWhileStatement:
		ctx.WriteString("while (")
		ctx.node(d.Condition, precLowest)
		ctx.WriteString(") ")
		ctx.node(d.Statement, precLowest)
	case KindDoStatement:
		ctx.WriteString("do ")
		ctx.node(d.Statement, precLowest)
		ctx.WriteString(" while (")
		ctx.node(d.Condition, precLowest)
		ctx.WriteString(");")
	case KindForStatement:
		ctx.WriteString("for (")
		ctx.node(d.Initializer, precLowest)
		ctx.WriteString("; ")
		ctx.node(d.Condition, precLowest)
		ctx.WriteString("; ")
		ctx.node(d.Incrementor, precLowest)
		ctx.WriteString(") ")
		ctx.node(d.Statement, precLowest)
	default:
		ctx.WriteString("for (")
		ctx.node(d.Initializer, precLowest)
		if n.kind == KindForInStatement {
			ctx.WriteString(" in ")
		} else {
			ctx.WriteString(" of ")
		}
		ctx.node(d.Condition, precLowest)
		ctx.WriteString(") ")
		ctx.node(d.Statement, precLowest)
	}
}
