// Package nodebuilder turns types back into type syntax, for display in
// diagnostics and for declaration output.
//
// Named types are written by name when the name is accessible from the
// enclosing location. Expansion is bounded by a length budget and a depth
// budget, and types already being expanded are not expanded again: when a
// bound is hit, the output holds a TruncatedType marker and the serialization
// reports diag.SerializationTruncated.
package nodebuilder

import (
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/types"
	"github.com/cottand/strux/internal/config"
	"github.com/cottand/strux/internal/log"
)

var logger = log.Section("nodebuilder")

// Flags tune a serialization
type Flags uint8

const (
	// AllowStructuralFallback expands types whose name is not accessible
	// instead of reporting them
	AllowStructuralFallback Flags = 1 << iota
	// NoTruncation lifts the length budget. The depth budget still applies.
	NoTruncation
	// UseAliasNames writes types declared through a type alias by the alias name
	UseAliasNames

	NoFlags Flags = 0
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// Symbols names symbols for the builder
type Symbols interface {
	// EntityName returns the names, outermost first, through which symbol is
	// referred to from enclosing. It returns false when symbol cannot be named
	// there; names then still holds the best name available.
	EntityName(symbol binder.SymbolID, enclosing ast.NodeID) (names []string, ok bool)
}

// Context locates a serialization
type Context struct {
	// Enclosing is the node from whose scope names must be accessible.
	// NoNode means the global scope.
	Enclosing ast.NodeID
	Flags     Flags
	// File and At are where diagnostics point
	File string
	At   ast.Positioner
}

// Result is a serialized type. Node belongs to Builder.Output.
type Result struct {
	Node        ast.NodeID
	Truncated   bool
	Diagnostics []*diag.Diagnostic
}

// Builder serializes the types of one Store. Its output nodes live in a
// separate ast.Store, so that serializing never touches the checked tree.
type Builder struct {
	s       *types.Store
	symbols Symbols
	out     *ast.Store
	factory *ast.Factory

	maxLength int
	maxDepth  int
}

func New(s *types.Store, symbols Symbols, opts config.Options) *Builder {
	out := ast.NewStore()
	b := &Builder{
		s:         s,
		symbols:   symbols,
		out:       out,
		factory:   ast.NewSynthesizedFactory(out),
		maxLength: opts.MaxTypeNodeLength,
		maxDepth:  opts.MaxSerializationDepth,
	}
	if opts.NoTruncation {
		b.maxLength = 0
	}
	return b
}

// Install makes b the formatter of the types in its Store, as used in diagnostics
func (b *Builder) Install() *Builder {
	b.s.SetFormatter(func(t types.TypeID) string {
		return b.TypeToString(t, Context{Flags: AllowStructuralFallback | UseAliasNames})
	})
	return b
}

// Output is the ast.Store that holds serialized nodes
func (b *Builder) Output() *ast.Store { return b.out }

// Serialize writes t as a type node
func (b *Builder) Serialize(t types.TypeID, ctx Context) *Result {
	ser := b.newSerializer(ctx)
	node := ser.typeToNode(t)
	res := &Result{Node: node, Truncated: ser.truncated}
	if ser.truncated {
		logger.Debug("truncated serialization", "type", t, "length", ser.length, "maxDepth", b.maxDepth)
		res.Diagnostics = append(res.Diagnostics, diag.New(ctx.File, ctx.At, diag.SerializationTruncated))
	}
	for _, inaccessible := range ser.inaccessible {
		res.Diagnostics = append(res.Diagnostics, diag.New(ctx.File, ctx.At, diag.InaccessibleName, ser.printed(node), inaccessible))
	}
	return res
}

// TypeToString serializes t and prints it. The nodes created along the way are
// discarded and no diagnostics are reported.
func (b *Builder) TypeToString(t types.TypeID, ctx Context) string {
	mark := b.factory.Mark()
	defer b.factory.Rollback(mark)
	ser := b.newSerializer(ctx)
	return ser.printed(ser.typeToNode(t))
}
