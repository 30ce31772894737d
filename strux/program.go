// Package strux drives the front end over a set of source files: it parses and
// binds them together with the built-in prelude, then checks them on demand.
//
// A Program is one session. It is not safe for concurrent use, but separate
// Programs share nothing and may run concurrently.
package strux

import (
	"context"
	"fmt"
	"go/token"
	"log/slog"
	"slices"
	"time"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/binder"
	"github.com/cottand/strux/frontend/checker"
	"github.com/cottand/strux/frontend/diag"
	"github.com/cottand/strux/frontend/nodebuilder"
	"github.com/cottand/strux/frontend/types"
	"github.com/cottand/strux/internal/config"
	"github.com/cottand/strux/internal/log"
	"github.com/cottand/strux/parser"
	"github.com/cottand/strux/util"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var sessionLogger = log.Section("session")

// ErrCancelled is returned by Program.Check when its context ends before
// checking completes. The error wraps both ErrCancelled and the context error.
var ErrCancelled = errors.New("check cancelled")

// ErrClosed is returned when using a Program after Close
var ErrClosed = errors.New("program is closed")

// cancellation is the panic value that unwinds a check once its context ends
type cancellation struct{ cause error }

// File is one source file given to NewProgram
type File struct {
	Name   string
	Source string
}

// Program is a single checking session over a fixed set of files
type Program struct {
	id     uuid.UUID
	logger *slog.Logger
	opts   config.Options

	fset     *token.FileSet
	store    *ast.Store
	bindings *binder.Bindings
	resolver ModuleResolver

	prelude ast.NodeID
	files   []ast.NodeID
	byName  map[string]ast.NodeID
	syntax  *diag.Bag

	checker *checker.Checker
	checked bool
	closed  bool

	// checkDiags keeps the checker's diagnostics once it is discarded
	checkDiags *diag.Bag
	// serialized holds what the node builder reported for Serialize and Declarations
	serialized *diag.Bag

	metrics  *sessionMetrics
	registry *prometheus.Registry

	// Failures holds internal errors met while binding or checking. They never
	// stop the session: the file involved is skipped.
	Failures []error
}

// NewProgram parses and binds files. Files are bound in order, after the prelude.
// A nil resolver resolves no imports.
func NewProgram(files []File, resolver ModuleResolver, opts config.Options) (*Program, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}
	if resolver == nil {
		resolver = MapResolver{}
	}
	id := uuid.New()
	store := ast.NewStore()
	p := &Program{
		id:         id,
		logger:     sessionLogger.With("session", id.String()),
		opts:       opts,
		fset:       token.NewFileSet(),
		store:      store,
		bindings:   binder.NewBindings(store),
		resolver:   resolver,
		byName:     make(map[string]ast.NodeID, len(files)),
		syntax:     diag.NewBag(),
		serialized: diag.NewBag(),
		metrics:    newSessionMetrics(),
		registry:   prometheus.NewRegistry(),
	}
	factory := ast.NewFactory(store)

	prelude, bag := checker.BindPrelude(p.fset, factory, p.bindings, opts)
	if bag.Len() > 0 {
		return nil, errors.Errorf("prelude does not parse: %v", bag.Codes())
	}
	p.prelude = prelude

	for _, f := range files {
		if _, dup := p.byName[f.Name]; dup {
			return nil, errors.Errorf("file %q given twice", f.Name)
		}
		root, bag := parser.ParseFile(p.fset, factory, f.Name, f.Source)
		p.syntax.Merge(bag)
		p.byName[f.Name] = root
		p.files = append(p.files, root)
		p.metrics.files.Inc()
		p.metrics.sourceBytes.Add(float64(len(f.Source)))
	}
	for i, root := range p.files {
		if err := p.bind(root); err != nil {
			p.Failures = append(p.Failures, errors.Wrapf(err, "bind %s", files[i].Name))
		}
	}
	p.registry.MustRegister(p.metrics.collectors()...)
	p.logger.Debug("program created", "files", len(files), "symbols", p.bindings.SymbolCount(), "flowNodes", p.bindings.Graph().Len())
	return p, nil
}

func (p *Program) bind(root ast.NodeID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("internal error: %v", r)
		}
	}()
	binder.Bind(p.bindings, root, p.opts)
	return nil
}

// ID identifies the session in logs
func (p *Program) ID() uuid.UUID { return p.id }

func (p *Program) Options() config.Options       { return p.opts }
func (p *Program) FileSet() *token.FileSet       { return p.fset }
func (p *Program) Store() *ast.Store             { return p.store }
func (p *Program) Bindings() *binder.Bindings    { return p.bindings }
func (p *Program) Gatherer() prometheus.Gatherer { return p.registry }

// Files returns the root nodes of the program's files, prelude excluded, in the
// order they were given
func (p *Program) Files() []ast.NodeID { return slices.Clone(p.files) }

// FileNames returns the names of the program's files in the order they were given
func (p *Program) FileNames() []string { return util.MapSlice(p.files, p.fileName) }

// File returns the root node of the file called name
func (p *Program) File(name string) (ast.NodeID, bool) {
	id, ok := p.byName[name]
	return id, ok
}

func (p *Program) fileName(root ast.NodeID) string {
	if sf := ast.As[ast.SourceFile](p.store.Get(root)); sf != nil {
		return sf.FileName
	}
	return ""
}

func (p *Program) resolve(specifier string, from ast.NodeID) (ast.NodeID, bool) {
	file := p.store.SourceFileOf(from)
	if file == nil {
		return ast.NoNode, false
	}
	name, ok := p.resolver.Resolve(specifier, p.fileName(file.ID()))
	if !ok {
		return ast.NoNode, false
	}
	target, ok := p.byName[name]
	return target, ok
}

// typeChecker creates the checker on first use
func (p *Program) typeChecker() (*checker.Checker, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if p.checker == nil {
		s := types.NewStore(p.opts)
		p.registry.MustRegister(s.Metrics().PrometheusCollectors()...)
		p.checker = checker.New(p.bindings, s, p.resolve)
	}
	return p.checker, nil
}

// Check checks every file and returns all diagnostics of the program, syntax
// and binding diagnostics included. Checking again returns the same diagnostics.
//
// When ctx ends first, Check returns an error wrapping ErrCancelled and the
// program's caches are discarded, as if by Close.
func (p *Program) Check(ctx context.Context) (*diag.Bag, error) {
	c, err := p.typeChecker()
	if err != nil {
		return nil, err
	}
	if !p.checked {
		start := time.Now()
		c.SetInterrupt(func() {
			if err := ctx.Err(); err != nil {
				panic(cancellation{cause: err})
			}
		})
		for _, root := range p.files {
			if err := p.checkFile(c, root); err != nil {
				var cancelled cancellation
				if errors.As(err, &cancelled) {
					p.logger.Info("check cancelled", "file", p.fileName(root), "cause", cancelled.cause)
					p.checker = nil
					p.Close()
					return nil, fmt.Errorf("%w: %w", ErrCancelled, cancelled.cause)
				}
				p.Failures = append(p.Failures, errors.Wrapf(err, "check %s", p.fileName(root)))
			}
		}
		c.SetInterrupt(nil)
		p.checked = true
		p.metrics.checkDuration.Observe(time.Since(start).Seconds())
		for _, d := range p.Diagnostics().Sorted() {
			p.metrics.diagnostics.WithLabelValues(d.Category.String()).Inc()
		}
	}
	all := p.Diagnostics()
	p.logger.Debug("program checked", "diagnostics", all, "failures", len(p.Failures), "types", c.Store().Len())
	return all, nil
}

func (c cancellation) Error() string { return "cancelled: " + c.cause.Error() }

// checkFile checks one file, turning panics into errors. A cancellation is
// returned as itself.
func (p *Program) checkFile(c *checker.Checker, root ast.NodeID) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if cancelled, ok := r.(cancellation); ok {
			err = cancelled
			return
		}
		err = errors.Errorf("internal error: %v", r)
	}()
	c.CheckFile(root)
	return nil
}

// Diagnostics returns the diagnostics found so far
func (p *Program) Diagnostics() *diag.Bag {
	all := diag.NewBag().Merge(p.syntax).Merge(p.bindings.Diagnostics()).Merge(p.serialized)
	switch {
	case p.checker != nil:
		all.Merge(p.checker.Diagnostics())
	case p.checkDiags != nil:
		all.Merge(p.checkDiags)
	}
	return all
}

// DiagnosticsFor returns the diagnostics of the file called name, sorted
func (p *Program) DiagnosticsFor(name string) []*diag.Diagnostic {
	return p.Diagnostics().ForFile(name)
}

// TypeOf returns the type of a node of one of the program's files, see checker.Checker.TypeOf
func (p *Program) TypeOf(node ast.NodeID) (types.TypeID, error) {
	c, err := p.typeChecker()
	if err != nil {
		return types.NoType, err
	}
	return c.TypeOf(node), nil
}

// TypeString prints t the way diagnostics do
func (p *Program) TypeString(t types.TypeID) (string, error) {
	c, err := p.typeChecker()
	if err != nil {
		return "", err
	}
	return c.Store().TypeString(t), nil
}

// Serialize writes t as type syntax whose names are accessible from enclosing.
// Print the result with PrintSerialized. Truncation and inaccessible names are
// reported at enclosing, both on the result and in the program's diagnostics.
func (p *Program) Serialize(t types.TypeID, enclosing ast.NodeID, flags nodebuilder.Flags) (*nodebuilder.Result, error) {
	c, err := p.typeChecker()
	if err != nil {
		return nil, err
	}
	return p.serialize(c, t, enclosing, enclosing, flags), nil
}

// serialize runs the node builder with names resolved from enclosing and
// diagnostics pointing at at, and keeps the diagnostics
func (p *Program) serialize(c *checker.Checker, t types.TypeID, enclosing, at ast.NodeID, flags nodebuilder.Flags) *nodebuilder.Result {
	ctx := nodebuilder.Context{Enclosing: enclosing, Flags: flags}
	if file := p.store.SourceFileOf(at); file != nil {
		ctx.File = p.fileName(file.ID())
		ctx.At = p.store.Get(at)
	}
	res := c.Builder().Serialize(t, ctx)
	p.serialized.Add(res.Diagnostics...)
	return res
}

// PrintSerialized prints a node produced by Serialize
func (p *Program) PrintSerialized(res *nodebuilder.Result) (string, error) {
	c, err := p.typeChecker()
	if err != nil {
		return "", err
	}
	return ast.Print(c.Builder().Output(), res.Node), nil
}

// Close discards the checker and its caches. Diagnostics found so far remain
// available, further type queries fail with ErrClosed.
func (p *Program) Close() {
	if p.closed {
		return
	}
	p.closed = true
	if p.checker != nil {
		p.checkDiags = p.checker.Diagnostics()
	}
	p.checker = nil
	p.logger.Debug("program closed")
}

func (p *Program) String() string {
	return fmt.Sprintf("Program(%s, %d files)", p.id, len(p.files))
}
