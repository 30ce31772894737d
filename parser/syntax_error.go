package parser

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/diag"
)

// errorAt records a syntax error. Only the first error at a given offset is
// kept, since recovery tends to report the same spot more than once.
func (p *parser) errorAt(start, end int, code diag.Code, args ...any) {
	if start == p.lastErrorAt && len(p.diags) > 0 {
		return
	}
	p.lastErrorAt = start
	if end < start {
		end = start
	}
	rng := ast.Range{PosStart: p.file.Pos(start), PosEnd: p.file.Pos(end)}
	p.diags = append(p.diags, diag.New(p.fileName, rng, code, args...))
}

// errorAtToken reports code at the current token
func (p *parser) errorAtToken(code diag.Code, args ...any) {
	p.errorAt(p.tok().start, p.tok().end, code, args...)
}

func (p *parser) tokenDescription() string {
	t := p.tok()
	switch t.kind {
	case ast.KindEndOfFile:
		return "end of file"
	case ast.KindIdentifier, ast.KindNumericLiteral:
		return t.text
	case ast.KindStringLiteral:
		return `"` + t.text + `"`
	}
	if text := ast.TokenText(t.kind); text != "" {
		return text
	}
	return t.kind.String()
}
