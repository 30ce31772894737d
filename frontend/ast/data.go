package ast

// SourceFile is the root of one parsed file
type SourceFile struct {
	FileName   string
	Statements []NodeID
}

func (d *SourceFile) forEachChild(visit func(NodeID) bool) bool {
	return visitAll(d.Statements, visit)
}

type QualifiedName struct {
	Left  NodeID
	Right NodeID
}

func (d *QualifiedName) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Left) &&
		visit(d.Right)
}

type Identifier struct {
	Text string
}

func (*Identifier) forEachChild(func(NodeID) bool) bool { return true }

// LiteralExpression is the payload of numeric, string and template literals. Value is only set for numeric literals.
type LiteralExpression struct {
	Text  string
	Value float64
}

func (*LiteralExpression) forEachChild(func(NodeID) bool) bool { return true }

type TypeParameter struct {
	Name       NodeID
	Constraint NodeID
	Default    NodeID
}

func (d *TypeParameter) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Name) &&
		visit(d.Constraint) &&
		visit(d.Default)
}

type Parameter struct {
	Name        NodeID
	Type        NodeID
	Initializer NodeID
}

func (d *Parameter) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Name) &&
		visit(d.Type) &&
		visit(d.Initializer)
}

// PropertySignature is shared by interface property signatures and class property declarations
type PropertySignature struct {
	Name        NodeID
	Type        NodeID
	Initializer NodeID
}

func (d *PropertySignature) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Name) &&
		visit(d.Type) &&
		visit(d.Initializer)
}

// SignatureDeclaration is shared by every function-like kind. Name and Body are absent where the kind has none.
type SignatureDeclaration struct {
	Name           NodeID
	TypeParameters []NodeID
	Parameters     []NodeID
	Type           NodeID
	Body           NodeID
}

func (d *SignatureDeclaration) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Name) &&
		visitAll(d.TypeParameters, visit) &&
		visitAll(d.Parameters, visit) &&
		visit(d.Type) &&
		visit(d.Body)
}

type IndexSignature struct {
	Parameter NodeID
	Type      NodeID
}

func (d *IndexSignature) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Parameter) &&
		visit(d.Type)
}

type TypePredicate struct {
	ParameterName NodeID
	Type          NodeID
}

func (d *TypePredicate) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.ParameterName) &&
		visit(d.Type)
}

type TypeReference struct {
	TypeName      NodeID
	TypeArguments []NodeID
}

func (d *TypeReference) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.TypeName) &&
		visitAll(d.TypeArguments, visit)
}

type TypeQuery struct {
	ExprName NodeID
}

func (d *TypeQuery) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.ExprName)
}

type TypeLiteral struct {
	Members []NodeID
}

func (d *TypeLiteral) forEachChild(visit func(NodeID) bool) bool {
	return visitAll(d.Members, visit)
}

type ArrayType struct {
	ElementType NodeID
}

func (d *ArrayType) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.ElementType)
}

type TupleType struct {
	Elements []NodeID
}

func (d *TupleType) forEachChild(visit func(NodeID) bool) bool {
	return visitAll(d.Elements, visit)
}

type UnionOrIntersectionType struct {
	Types []NodeID
}

func (d *UnionOrIntersectionType) forEachChild(visit func(NodeID) bool) bool {
	return visitAll(d.Types, visit)
}

type ConditionalType struct {
	CheckType   NodeID
	ExtendsType NodeID
	TrueType    NodeID
	FalseType   NodeID
}

func (d *ConditionalType) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.CheckType) &&
		visit(d.ExtendsType) &&
		visit(d.TrueType) &&
		visit(d.FalseType)
}

type InferType struct {
	TypeParameter NodeID
}

func (d *InferType) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.TypeParameter)
}

type ParenthesizedType struct {
	Type NodeID
}

func (d *ParenthesizedType) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Type)
}

type TypeOperator struct {
	Operator Kind
	Type     NodeID
}

func (d *TypeOperator) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Type)
}

type IndexedAccessType struct {
	ObjectType NodeID
	IndexType  NodeID
}

func (d *IndexedAccessType) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.ObjectType) &&
		visit(d.IndexType)
}

// MappedType modifiers are carried as node flags: Readonly/ReadonlyMinus and Optional/OptionalMinus
type MappedType struct {
	TypeParameter NodeID
	Type          NodeID
}

func (d *MappedType) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.TypeParameter) &&
		visit(d.Type)
}

type LiteralType struct {
	Literal NodeID
}

func (d *LiteralType) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Literal)
}

type TemplateLiteralType struct {
	Head  string
	Spans []NodeID
}

func (d *TemplateLiteralType) forEachChild(visit func(NodeID) bool) bool {
	return visitAll(d.Spans, visit)
}

type TemplateLiteralTypeSpan struct {
	Type    NodeID
	Literal string
}

func (d *TemplateLiteralTypeSpan) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Type)
}

type ObjectLiteralExpression struct {
	Properties []NodeID
}

func (d *ObjectLiteralExpression) forEachChild(visit func(NodeID) bool) bool {
	return visitAll(d.Properties, visit)
}

type ArrayLiteralExpression struct {
	Elements []NodeID
}

func (d *ArrayLiteralExpression) forEachChild(visit func(NodeID) bool) bool {
	return visitAll(d.Elements, visit)
}

type PropertyAccessExpression struct {
	Expression NodeID
	Name       NodeID
}

func (d *PropertyAccessExpression) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Expression) &&
		visit(d.Name)
}

type ElementAccessExpression struct {
	Expression NodeID
	Argument   NodeID
}

func (d *ElementAccessExpression) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Expression) &&
		visit(d.Argument)
}

// CallExpression is the payload of call and new expressions
type CallExpression struct {
	Expression    NodeID
	TypeArguments []NodeID
	Arguments     []NodeID
}

func (d *CallExpression) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Expression) &&
		visitAll(d.TypeArguments, visit) &&
		visitAll(d.Arguments, visit)
}

type ParenthesizedExpression struct {
	Expression NodeID
}

func (d *ParenthesizedExpression) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Expression)
}

type TypeOfExpression struct {
	Expression NodeID
}

func (d *TypeOfExpression) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Expression)
}

// UnaryExpression is the payload of prefix and postfix unary expressions
type UnaryExpression struct {
	Operator Kind
	Operand  NodeID
}

func (d *UnaryExpression) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Operand)
}

type BinaryExpression struct {
	Left     NodeID
	Operator Kind
	Right    NodeID
}

func (d *BinaryExpression) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Left) &&
		visit(d.Right)
}

type ConditionalExpression struct {
	Condition NodeID
	WhenTrue  NodeID
	WhenFalse NodeID
}

func (d *ConditionalExpression) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Condition) &&
		visit(d.WhenTrue) &&
		visit(d.WhenFalse)
}

type SpreadElement struct {
	Expression NodeID
}

func (d *SpreadElement) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Expression)
}

type AsExpression struct {
	Expression NodeID
	Type       NodeID
}

func (d *AsExpression) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Expression) &&
		visit(d.Type)
}

type NonNullExpression struct {
	Expression NodeID
}

func (d *NonNullExpression) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Expression)
}

// PropertyAssignment also carries shorthand assignments, whose Initializer is absent
type PropertyAssignment struct {
	Name        NodeID
	Initializer NodeID
}

func (d *PropertyAssignment) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Name) &&
		visit(d.Initializer)
}

// Block is the payload of blocks and namespace bodies
type Block struct {
	Statements []NodeID
}

func (d *Block) forEachChild(visit func(NodeID) bool) bool {
	return visitAll(d.Statements, visit)
}

type VariableStatement struct {
	DeclarationList NodeID
}

func (d *VariableStatement) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.DeclarationList)
}

type VariableDeclarationList struct {
	Declarations []NodeID
}

func (d *VariableDeclarationList) forEachChild(visit func(NodeID) bool) bool {
	return visitAll(d.Declarations, visit)
}

type VariableDeclaration struct {
	Name        NodeID
	Type        NodeID
	Initializer NodeID
}

func (d *VariableDeclaration) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Name) &&
		visit(d.Type) &&
		visit(d.Initializer)
}

// ExpressionStatement is also the payload of return and throw statements
type ExpressionStatement struct {
	Expression NodeID
}

func (d *ExpressionStatement) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Expression)
}

type IfStatement struct {
	Expression NodeID
	Then       NodeID
	Else       NodeID
}

func (d *IfStatement) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Expression) &&
		visit(d.Then) &&
		visit(d.Else)
}

// LoopStatement is shared by every iteration statement. while and do use Condition only; for-in and for-of use Initializer and Condition, the latter holding the iterated expression.
type LoopStatement struct {
	Initializer NodeID
	Condition   NodeID
	Incrementor NodeID
	Statement   NodeID
}

func (d *LoopStatement) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Initializer) &&
		visit(d.Condition) &&
		visit(d.Incrementor) &&
		visit(d.Statement)
}

// JumpStatement is the payload of break and continue
type JumpStatement struct {
	Label NodeID
}

func (d *JumpStatement) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Label)
}

type SwitchStatement struct {
	Expression NodeID
	Clauses    []NodeID
}

func (d *SwitchStatement) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Expression) &&
		visitAll(d.Clauses, visit)
}

// CaseClause is also the payload of default clauses, whose Expression is absent
type CaseClause struct {
	Expression NodeID
	Statements []NodeID
}

func (d *CaseClause) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Expression) &&
		visitAll(d.Statements, visit)
}

type LabeledStatement struct {
	Label     NodeID
	Statement NodeID
}

func (d *LabeledStatement) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Label) &&
		visit(d.Statement)
}

type TryStatement struct {
	TryBlock     NodeID
	CatchClause  NodeID
	FinallyBlock NodeID
}

func (d *TryStatement) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.TryBlock) &&
		visit(d.CatchClause) &&
		visit(d.FinallyBlock)
}

type CatchClause struct {
	VariableDeclaration NodeID
	Block               NodeID
}

func (d *CatchClause) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.VariableDeclaration) &&
		visit(d.Block)
}

type ClassDeclaration struct {
	Name           NodeID
	TypeParameters []NodeID
	Extends        NodeID
	Implements     []NodeID
	Members        []NodeID
}

func (d *ClassDeclaration) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Name) &&
		visitAll(d.TypeParameters, visit) &&
		visit(d.Extends) &&
		visitAll(d.Implements, visit) &&
		visitAll(d.Members, visit)
}

type InterfaceDeclaration struct {
	Name           NodeID
	TypeParameters []NodeID
	Extends        []NodeID
	Members        []NodeID
}

func (d *InterfaceDeclaration) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Name) &&
		visitAll(d.TypeParameters, visit) &&
		visitAll(d.Extends, visit) &&
		visitAll(d.Members, visit)
}

type TypeAliasDeclaration struct {
	Name           NodeID
	TypeParameters []NodeID
	Type           NodeID
}

func (d *TypeAliasDeclaration) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Name) &&
		visitAll(d.TypeParameters, visit) &&
		visit(d.Type)
}

type EnumDeclaration struct {
	Name    NodeID
	Members []NodeID
}

func (d *EnumDeclaration) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Name) &&
		visitAll(d.Members, visit)
}

type EnumMember struct {
	Name        NodeID
	Initializer NodeID
}

func (d *EnumMember) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Name) &&
		visit(d.Initializer)
}

type ModuleDeclaration struct {
	Name NodeID
	Body NodeID
}

func (d *ModuleDeclaration) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.Name) &&
		visit(d.Body)
}

type ImportDeclaration struct {
	Specifiers      []NodeID
	ModuleSpecifier NodeID
}

func (d *ImportDeclaration) forEachChild(visit func(NodeID) bool) bool {
	return visitAll(d.Specifiers, visit) &&
		visit(d.ModuleSpecifier)
}

type ImportSpecifier struct {
	PropertyName NodeID
	Name         NodeID
}

func (d *ImportSpecifier) forEachChild(visit func(NodeID) bool) bool {
	return visit(d.PropertyName) &&
		visit(d.Name)
}

// Keyword is the payload of nodes whose kind says everything, such as `this`,
// `null` or keyword types
type Keyword struct{}

func (*Keyword) forEachChild(func(NodeID) bool) bool { return true }

func visitAll(ids []NodeID, visit func(NodeID) bool) bool {
	for _, id := range ids {
		if !visit(id) {
			return false
		}
	}
	return true
}
