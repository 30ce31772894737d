package diag

import (
	"fmt"
	"go/token"
	"runtime/debug"
	"strings"

	"github.com/cottand/strux/frontend/ast"
)

// EnableStacks makes New record the stack of the caller, which
// FormatWithCode then prints next to the message. Off by default.
var EnableStacks = false

// Diagnostic is one reported problem, positioned in a file
type Diagnostic struct {
	File     string
	Range    ast.Range
	Category Category
	Code     Code
	Chain    *MessageChain
	stack    []byte
}

func (d *Diagnostic) Pos() token.Pos { return d.Range.PosStart }
func (d *Diagnostic) End() token.Pos { return d.Range.PosEnd }

// Message is the head message of the chain
func (d *Diagnostic) Message() string {
	if d.Chain == nil {
		return ""
	}
	return d.Chain.Text
}

// Error renders the full message chain
func (d *Diagnostic) Error() string {
	return d.Chain.String()
}

// New creates a diagnostic with the message template of code formatted with args
func New(file string, at ast.Positioner, code Code, args ...any) *Diagnostic {
	return NewChained(file, at, Chain(code, args...))
}

// NewChained creates a diagnostic from an already elaborated message chain.
// The chain's head code becomes the diagnostic's code.
func NewChained(file string, at ast.Positioner, chain *MessageChain) *Diagnostic {
	d := &Diagnostic{
		File:     file,
		Range:    ast.RangeOf(at),
		Category: chain.Code.Category(),
		Code:     chain.Code,
		Chain:    chain,
	}
	if EnableStacks {
		d.stack = debug.Stack()
	}
	return d
}

func FormatWithCode(d *Diagnostic) string {
	if d.stack != nil {
		lines := strings.Split(string(d.stack), "\n")
		caller := ""
		if len(lines) > 6 {
			caller = strings.TrimSpace(lines[6])
		}
		return fmt.Sprintf("%s:(%s) %s", caller, d.Code, d.Error())
	}
	return fmt.Sprintf("(%s) %s", d.Code, d.Error())
}

// Format renders d as `file:line:col: category (Ecode) message`, resolving
// positions through fset when it knows them
func Format(fset *token.FileSet, d *Diagnostic) string {
	where := d.File
	if fset != nil && d.Range.PosStart.IsValid() {
		if p := fset.Position(d.Range.PosStart); p.IsValid() {
			where = fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
		}
	}
	if where == "" {
		where = "<unknown>"
	}
	return fmt.Sprintf("%s: %s %s", where, d.Category, FormatWithCode(d))
}
