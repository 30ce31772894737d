package checker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNarrowing(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "typeof",
			src:  `function f(x: string | number) { if (typeof x === "number") { return x; } return 0; }`,
			want: "number",
		},
		{
			name: "typeof else branch",
			src:  `function f(x: string | number) { if (typeof x === "number") { return 0; } else { return x; } }`,
			want: "string",
		},
		{
			name: "truthiness",
			src:  `function f(x: string | undefined) { if (x) { return x; } return ""; }`,
			want: "string",
		},
		{
			name: "falsy branch",
			src:  `function f(x: string | null) { if (!x) { return x; } return ""; }`,
			want: "string | null",
		},
		{
			name: "equality with undefined",
			src:  `function f(x: number | undefined) { if (x === undefined) { return 0; } return x; }`,
			want: "number",
		},
		{
			name: "instanceof",
			src: `
class A { a = 1; }
class B { b = 1; }
function f(x: A | B) { if (x instanceof A) { return x; } return 0; }`,
			want: "A",
		},
		{
			name: "in operator",
			src: `
interface Fish { swim(): void; }
interface Bird { fly(): void; }
function f(x: Fish | Bird) { if ("swim" in x) { return x; } return 0; }`,
			want: "Fish",
		},
		{
			name: "assignment",
			src:  `let x: string | number = "a"; x;`,
			want: "string",
		},
		{
			name: "reassignment",
			src:  `let x: string | number = "a"; x = 1; x;`,
			want: "number",
		},
		{
			name: "evolving array",
			src:  `let x = []; x.push(1); x;`,
			want: "number[]",
		},
		{
			name: "loop",
			src:  `function f(b: boolean) { let x: string | number = "a"; while (b) { x = 1; } return x; }`,
			want: "string | number",
		},
		{
			name: "switch default",
			src: `
function f(x: "a" | "b" | "c") {
    switch (x) {
        case "a": return 1;
        case "b": return 2;
        default: return x;
    }
}`,
			want: `"c"`,
		},
		{
			name: "type guard",
			src: `
function isString(v: unknown): v is string { return typeof v === "string"; }
function f(x: string | number) { if (isString(x)) { return x; } return 0; }`,
			want: "string",
		},
		{
			name: "assertion",
			src: `
function assertIsString(v: unknown): asserts v is string {}
function f(x: string | number) { assertIsString(x); return x; }`,
			want: "string",
		},
		{
			name: "const captured in closure",
			src: `
function f(y: string | number) {
    const x = y;
    if (typeof x === "string") {
        return () => x;
    }
    return 0;
}`,
			want: "string",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := check(t, tt.src)
			assert.Empty(t, k.codes())
			assert.Equal(t, tt.want, k.typeOfLast("x"))
		})
	}
}
