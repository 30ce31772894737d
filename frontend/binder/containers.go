package binder

import (
	"github.com/cottand/strux/frontend/ast"
)

// ContainerFlags classify how a node scopes the declarations below it
type ContainerFlags uint8

const (
	// IsContainer nodes own the symbols declared directly inside them
	IsContainer ContainerFlags = 1 << iota
	// IsBlockScopedContainer nodes own the let, const and class declarations inside them
	IsBlockScopedContainer
	// IsControlFlowContainer nodes get their own flow graph Start node
	IsControlFlowContainer
	IsFunctionLike
	IsFunctionExpression
	HasLocals
	IsInterface

	NotContainer ContainerFlags = 0
)

func (f ContainerFlags) IsContainer() bool            { return f&IsContainer != 0 }
func (f ContainerFlags) IsBlockScopedContainer() bool { return f&IsBlockScopedContainer != 0 }
func (f ContainerFlags) IsControlFlowContainer() bool { return f&IsControlFlowContainer != 0 }
func (f ContainerFlags) IsFunctionLike() bool         { return f&IsFunctionLike != 0 }
func (f ContainerFlags) IsFunctionExpression() bool   { return f&IsFunctionExpression != 0 }
func (f ContainerFlags) HasLocals() bool              { return f&HasLocals != 0 }

// ContainerFlagsOf classifies n
func ContainerFlagsOf(n *ast.Node) ContainerFlags {
	if n == nil {
		return NotContainer
	}
	switch n.Kind() {
	case ast.KindClassDeclaration, ast.KindEnumDeclaration, ast.KindObjectLiteralExpression, ast.KindTypeLiteral:
		return IsContainer
	case ast.KindInterfaceDeclaration:
		return IsContainer | IsInterface
	case ast.KindModuleDeclaration, ast.KindTypeAliasDeclaration, ast.KindMappedType:
		return IsContainer | HasLocals
	case ast.KindSourceFile:
		return IsContainer | IsControlFlowContainer | HasLocals
	case ast.KindFunctionDeclaration, ast.KindMethodDeclaration, ast.KindConstructor:
		return IsContainer | IsControlFlowContainer | HasLocals | IsFunctionLike
	case ast.KindMethodSignature, ast.KindCallSignature, ast.KindConstructSignature, ast.KindIndexSignature,
		ast.KindFunctionType, ast.KindConstructorType:
		return IsContainer | HasLocals | IsFunctionLike
	case ast.KindFunctionExpression, ast.KindArrowFunction:
		return IsContainer | IsControlFlowContainer | HasLocals | IsFunctionLike | IsFunctionExpression
	case ast.KindModuleBlock:
		return IsControlFlowContainer
	case ast.KindCatchClause, ast.KindForStatement, ast.KindForInStatement, ast.KindForOfStatement,
		ast.KindSwitchStatement, ast.KindConditionalType:
		return IsBlockScopedContainer | HasLocals
	case ast.KindBlock:
		// a function body shares the function's scope
		if p := n.ParentNode(); p != nil && p.Kind().IsFunctionLikeDeclaration() {
			return NotContainer
		}
		return IsBlockScopedContainer | HasLocals
	}
	return NotContainer
}

// IsExternalModule reports whether a source file imports or exports anything.
// Declarations of other files are merged into the global scope.
func IsExternalModule(store *ast.Store, file ast.NodeID) bool {
	sf := ast.As[ast.SourceFile](store.Get(file))
	if sf == nil {
		return false
	}
	for _, stmt := range sf.Statements {
		n := store.Get(stmt)
		if n == nil {
			continue
		}
		if n.Kind() == ast.KindImportDeclaration || n.Flags().IsExported() {
			return true
		}
	}
	return false
}

// isExported reports whether decl carries an export modifier, looking through
// variable declaration lists to their statement
func isExported(decl *ast.Node) bool {
	if decl.Kind() == ast.KindVariableDeclaration {
		list := decl.ParentNode()
		if list == nil || list.Kind() != ast.KindVariableDeclarationList {
			return false
		}
		stmt := list.ParentNode()
		return stmt != nil && stmt.Kind() == ast.KindVariableStatement && stmt.Flags().IsExported()
	}
	return decl.Flags().IsExported()
}

// isBlockScopedVariable reports let and const declarations and catch clause variables
func isBlockScopedVariable(decl *ast.Node) bool {
	p := decl.ParentNode()
	if p == nil {
		return false
	}
	switch p.Kind() {
	case ast.KindCatchClause:
		return true
	case ast.KindVariableDeclarationList:
		return p.Flags().IsBlockScoped()
	}
	return false
}

// isValueModule reports whether a namespace declares anything with a runtime value
func isValueModule(store *ast.Store, decl *ast.Node) bool {
	md := ast.As[ast.ModuleDeclaration](decl)
	if md == nil {
		return false
	}
	body := store.Get(md.Body)
	if body == nil {
		return false
	}
	if body.Kind() == ast.KindModuleDeclaration {
		return isValueModule(store, body)
	}
	block := ast.As[ast.Block](body)
	if block == nil {
		return false
	}
	for _, stmt := range block.Statements {
		n := store.Get(stmt)
		if n == nil {
			continue
		}
		switch n.Kind() {
		case ast.KindInterfaceDeclaration, ast.KindTypeAliasDeclaration, ast.KindImportDeclaration, ast.KindEmptyStatement:
		case ast.KindModuleDeclaration:
			if isValueModule(store, n) {
				return true
			}
		case ast.KindEnumDeclaration:
			if !n.Flags().IsConst() {
				return true
			}
		default:
			return true
		}
	}
	return false
}
