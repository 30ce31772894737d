package checker

import (
	"go/token"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/internal/config"
	"github.com/cottand/strux/parser"
)

// PreludeFileName is the name the built-in declarations are parsed under
const PreludeFileName = "prelude.d.ts"

// preludeSource declares the global interfaces behind primitives, functions and arrays
const preludeSource = `
interface Object {}

interface Function {
    readonly name: string;
}

interface String {
    readonly length: number;
    charAt(pos: number): string;
    indexOf(search: string, position?: number): number;
    toUpperCase(): string;
    toLowerCase(): string;
    slice(start?: number, end?: number): string;
    [index: number]: string;
}

interface Number {
    toFixed(digits?: number): string;
}

interface Boolean {}

interface Array<T> {
    length: number;
    [n: number]: T;
    push(...items: T[]): number;
    unshift(...items: T[]): number;
    pop(): T | undefined;
    indexOf(search: T, fromIndex?: number): number;
    join(separator?: string): string;
    slice(start?: number, end?: number): T[];
    concat(...items: T[][]): T[];
    map<U>(f: (value: T, index: number) => U): U[];
    filter(f: (value: T, index: number) => unknown): T[];
    forEach(f: (value: T, index: number) => void): void;
}
`

// BindPrelude parses the built-in declarations into factory's store and binds
// them into the global scope of b
func BindPrelude(fset *token.FileSet, factory *ast.Factory, b *binder.Bindings, opts config.Options) (ast.NodeID, *diag.Bag) {
	root, bag := parser.ParseFile(fset, factory, PreludeFileName, preludeSource)
	binder.Bind(b, root, opts)
	return root, bag
}
