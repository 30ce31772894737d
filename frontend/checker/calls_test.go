package checker_test

import (
	"testing"

	"github.com/cottand/strux/frontend/diag"
	"github.com/stretchr/testify/assert"
)

const overloads = `
function pick(a: string): string;
function pick(a: number): number;
function pick(a: any): any { return a; }
`

func TestCallDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []diag.Code
	}{
		{name: "matching call", src: `function f(a: number) {} f(1);`},
		{name: "argument not assignable", src: `function f(a: number) {} f("a");`, want: []diag.Code{diag.ArgumentNotAssignable}},
		{name: "too few", src: `function f(a: number) {} f();`, want: []diag.Code{diag.ExpectedArguments}},
		{name: "too many", src: `function f(a: number) {} f(1, 2);`, want: []diag.Code{diag.ExpectedArguments}},
		{name: "optional parameter", src: `function f(a: number, b?: number) {} f(1); f(1, 2);`},
		{name: "at least", src: `function f(a: number, b?: number) {} f();`, want: []diag.Code{diag.ExpectedAtLeastArguments}},
		{name: "rest", src: `function f(...xs: number[]) {} f(); f(1, 2, 3);`},
		{name: "rest element type", src: `function f(...xs: number[]) {} f(1, "a");`, want: []diag.Code{diag.ArgumentNotAssignable}},
		{name: "overload match", src: overloads + `pick("a"); pick(1);`},
		{name: "no overload matches", src: overloads + `pick(true);`, want: []diag.Code{diag.NoOverloadMatches}},
		{name: "implementation hidden", src: overloads + `pick(true as any);`},
		{name: "generic", src: `function id<T>(x: T): T { return x; } const s: string = id("a");`},
		{
			name: "explicit type argument",
			src:  `function id<T>(x: T): T { return x; } id<number>("a");`,
			want: []diag.Code{diag.ArgumentNotAssignable},
		},
		{
			name: "type argument count",
			src:  `function id<T>(x: T): T { return x; } id<number, string>(1);`,
			want: []diag.Code{diag.WrongTypeArgumentCount},
		},
		{
			name: "constraint",
			src:  `function len<T extends { length: number }>(x: T): number { return x.length; } len<number>(1);`,
			want: []diag.Code{diag.TypeArgumentConstraint},
		},
		{
			name: "contextual callback",
			src:  `const xs = [1, 2]; const ys: string[] = xs.map(x => x.toFixed());`,
		},
		{name: "new class", src: `class C { constructor(a: number) {} } new C(1);`},
		{name: "new arity", src: `class C { constructor(a: number) {} } new C();`, want: []diag.Code{diag.ExpectedArguments}},
		{name: "not constructable", src: `function f() {} new f();`, want: []diag.Code{diag.NotConstructable}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := check(t, tt.src)
			assert.Equal(t, tt.want, k.codes())
		})
	}
}

func TestCallTypes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "inferred", src: `function id<T>(x: T): T { return x; } let r = id(1); r;`, want: "number"},
		{name: "overload", src: overloads + `const r = pick(1); r;`, want: "number"},
		{name: "array method", src: `const xs = [1, 2]; const r = xs.map(x => "a" + x); r;`, want: "string[]"},
		{name: "pop", src: `const xs = ["a"]; const r = xs.pop(); r;`, want: "string | undefined"},
		{name: "new", src: `class C {} const r = new C(); r;`, want: "C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := check(t, tt.src)
			assert.Empty(t, k.codes())
			assert.Equal(t, tt.want, k.typeOfLast("r"))
		})
	}
}
