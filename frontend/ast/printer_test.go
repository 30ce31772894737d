package ast_test

import (
	"testing"

	"github.com/cottand/strux/frontend/ast"
	"github.com/stretchr/testify/assert"
)

func TestPrintTypes(t *testing.T) {
	f := ast.NewFactory(ast.NewStore())
	r := ast.Range{}
	kw := func(k ast.Kind) ast.NodeID { return f.NewKeyword(r, k) }
	ref := func(name string, args ...ast.NodeID) ast.NodeID {
		return f.NewTypeReference(r, f.NewIdentifier(r, name), args)
	}
	fn := func(ret ast.NodeID) ast.NodeID {
		return f.New(ast.KindFunctionType, r, ast.NoFlags, &ast.SignatureDeclaration{Type: ret})
	}
	array := func(elem ast.NodeID) ast.NodeID {
		return f.New(ast.KindArrayType, r, ast.NoFlags, &ast.ArrayType{ElementType: elem})
	}
	prop := func(name string, typ ast.NodeID, flags ast.NodeFlags) ast.NodeID {
		return f.New(ast.KindPropertySignature, r, flags, &ast.PropertySignature{Name: f.NewIdentifier(r, name), Type: typ})
	}

	tests := []struct {
		name string
		node ast.NodeID
		want string
	}{
		{"keyword", kw(ast.KindStringKeyword), "string"},
		{"generic reference", ref("Array", kw(ast.KindNumberKeyword)), "Array<number>"},
		{"union", f.NewUnionType(r, []ast.NodeID{kw(ast.KindStringKeyword), kw(ast.KindUndefinedKeyword)}), "string | undefined"},
		{"array of union", array(f.NewUnionType(r, []ast.NodeID{kw(ast.KindStringKeyword), kw(ast.KindNumberKeyword)})), "(string | number)[]"},
		{"union of function", f.NewUnionType(r, []ast.NodeID{fn(kw(ast.KindVoidKeyword)), kw(ast.KindNullKeyword)}), "(() => void) | null"},
		{"union in intersection", f.NewIntersectionType(r, []ast.NodeID{f.NewUnionType(r, []ast.NodeID{ref("A"), ref("B")}), ref("C")}), "(A | B) & C"},
		{"literal", f.NewLiteralType(r, f.NewStringLiteral(r, "a")), `"a"`},
		{"type literal", f.New(ast.KindTypeLiteral, r, ast.NoFlags, &ast.TypeLiteral{Members: []ast.NodeID{
			prop("a", kw(ast.KindNumberKeyword), ast.NoFlags),
			prop("b", kw(ast.KindStringKeyword), ast.FlagOptional|ast.FlagReadonly),
		}}), "{ a: number; readonly b?: string; }"},
		{"truncated", f.NewTruncatedType(r), "..."},
		{"keyof array", array(f.New(ast.KindTypeOperator, r, ast.NoFlags, &ast.TypeOperator{Operator: ast.KindKeyOfKeyword, Type: ref("T")})), "(keyof T)[]"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, ast.Print(f.Store(), test.node))
		})
	}
}

func TestPrintExpressions(t *testing.T) {
	f := ast.NewFactory(ast.NewStore())
	r := ast.Range{}
	id := func(s string) ast.NodeID { return f.NewIdentifier(r, s) }
	bin := func(l ast.NodeID, op ast.Kind, rhs ast.NodeID) ast.NodeID {
		return f.New(ast.KindBinaryExpression, r, ast.NoFlags, &ast.BinaryExpression{Left: l, Operator: op, Right: rhs})
	}

	tests := []struct {
		name string
		node ast.NodeID
		want string
	}{
		{"precedence kept", bin(bin(id("a"), ast.KindPlusToken, id("b")), ast.KindAsteriskToken, id("c")), "(a + b) * c"},
		{"no redundant parens", bin(id("a"), ast.KindPlusToken, bin(id("b"), ast.KindAsteriskToken, id("c"))), "a + b * c"},
		{"typeof", bin(f.New(ast.KindTypeOfExpression, r, ast.NoFlags, &ast.TypeOfExpression{Expression: id("x")}),
			ast.KindEqualsEqualsEqualsToken, f.NewStringLiteral(r, "string")), `typeof x === "string"`},
		{"member access", f.New(ast.KindPropertyAccessExpression, r, ast.NoFlags, &ast.PropertyAccessExpression{Expression: id("x"), Name: id("length")}), "x.length"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, ast.Print(f.Store(), test.node))
		})
	}
}
