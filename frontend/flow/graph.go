package flow

import (
	"fmt"
	"iter"

	"github.com/RoaringBitmap/roaring"
	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/util"
)

// Graph is the arena of flow nodes of one session. Every control-flow
// container gets its own Start node; the Unreachable node is shared.
type Graph struct {
	nodes  []*Node
	starts map[ast.NodeID]ID
}

func NewGraph() *Graph {
	g := &Graph{
		nodes:  make([]*Node, 1, 256),
		starts: map[ast.NodeID]ID{},
	}
	g.add(&Node{flags: FlagUnreachable})
	return g
}

func (g *Graph) add(n *Node) ID {
	n.id = ID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return n.id
}

func (g *Graph) Get(id ID) *Node {
	if int(id) >= len(g.nodes) || id == NoFlow {
		return nil
	}
	return g.nodes[id]
}

func (g *Graph) Flags(id ID) Flags {
	if n := g.Get(id); n != nil {
		return n.flags
	}
	return 0
}

func (g *Graph) Len() int { return len(g.nodes) - 1 }

func (g *Graph) IsUnreachable(id ID) bool { return g.Flags(id).IsUnreachable() }

func (g *Graph) reference(id ID) {
	n := g.Get(id)
	if n == nil {
		return
	}
	if n.flags.IsReferenced() {
		n.flags |= FlagShared
	}
	n.flags |= FlagReferenced
}

// NewStart creates the entry node of container
func (g *Graph) NewStart(container ast.NodeID) ID {
	id := g.add(&Node{flags: FlagStart, node: container})
	g.starts[container] = id
	return id
}

// StartOf returns the Start node of container, or NoFlow when container has none
func (g *Graph) StartOf(container ast.NodeID) ID { return g.starts[container] }

func (g *Graph) NewBranchLabel() ID {
	return g.add(&Node{flags: FlagBranchLabel, label: &label{}})
}

// NewLoopLabel creates the join point at the head of a loop. Its back edges are
// added once the body has been bound.
func (g *Graph) NewLoopLabel() ID {
	return g.add(&Node{flags: FlagLoopLabel, label: &label{}})
}

// AddAntecedent appends antecedent to an open label. Unreachable antecedents
// are dropped. It returns an error when label is not an open label.
func (g *Graph) AddAntecedent(labelID, antecedent ID) error {
	n := g.Get(labelID)
	if n == nil || n.label == nil {
		return fmt.Errorf("flow node %d is not a label", labelID)
	}
	if antecedent == NoFlow || g.IsUnreachable(antecedent) {
		return nil
	}
	if !n.label.add(antecedent) {
		return fmt.Errorf("label %d is sealed", labelID)
	}
	g.reference(antecedent)
	return nil
}

// Seal freezes the antecedents of a label
func (g *Graph) Seal(labelID ID) {
	if n := g.Get(labelID); n != nil && n.label != nil {
		n.label.seal()
	}
}

func (g *Graph) IsSealed(labelID ID) bool {
	n := g.Get(labelID)
	return n != nil && n.label != nil && n.label.isSealed()
}

// Antecedents returns the predecessors of id. For a label that is still open
// the list holds the antecedents discovered so far and sealed is false; callers
// that need a complete answer must treat such a label as a placeholder.
func (g *Graph) Antecedents(id ID) (ants []ID, sealed bool) {
	n := g.Get(id)
	switch {
	case n == nil:
		return nil, true
	case n.label != nil:
		return n.label.snapshot(), n.label.isSealed()
	case n.flags.IsReduceLabel():
		return []ID{n.antecedent}, true
	case n.antecedent != NoFlow:
		return []ID{n.antecedent}, true
	}
	return nil, true
}

// LabelLen is the number of antecedents of a label
func (g *Graph) LabelLen(id ID) int {
	if n := g.Get(id); n != nil && n.label != nil {
		return n.label.len()
	}
	return 0
}

func (g *Graph) single(flags Flags, antecedent ID, node ast.NodeID) ID {
	id := g.add(&Node{flags: flags, antecedent: antecedent, node: node})
	g.reference(antecedent)
	return id
}

// NewAssignment records that the reference declared or assigned by node gets a new value
func (g *Graph) NewAssignment(antecedent ID, node ast.NodeID) ID {
	if g.IsUnreachable(antecedent) {
		return antecedent
	}
	return g.single(FlagAssignment, antecedent, node)
}

// NewCondition records that expr evaluated to assumeTrue
func (g *Graph) NewCondition(antecedent ID, expr ast.NodeID, assumeTrue bool) ID {
	if g.IsUnreachable(antecedent) {
		return antecedent
	}
	flags := FlagFalseCondition
	if assumeTrue {
		flags = FlagTrueCondition
	}
	return g.single(flags, antecedent, expr)
}

// NewSwitchClause records that the switch statement entered one of the clauses in [start, end)
func (g *Graph) NewSwitchClause(antecedent ID, switchStmt ast.NodeID, start, end int) ID {
	if g.IsUnreachable(antecedent) {
		return antecedent
	}
	id := g.single(FlagSwitchClause, antecedent, switchStmt)
	n := g.nodes[id]
	n.clauseStart, n.clauseEnd = start, end
	return id
}

// NewArrayMutation records a push or an element assignment on an evolving array
func (g *Graph) NewArrayMutation(antecedent ID, node ast.NodeID) ID {
	if g.IsUnreachable(antecedent) {
		return antecedent
	}
	return g.single(FlagArrayMutation, antecedent, node)
}

// NewCall records a call that may act as an assertion
func (g *Graph) NewCall(antecedent ID, call ast.NodeID) ID {
	if g.IsUnreachable(antecedent) {
		return antecedent
	}
	return g.single(FlagCall, antecedent, call)
}

// NewReduceLabel records that, when walking back through target, only reduced
// are its antecedents. It models the normal exit of a try block through a finally block.
func (g *Graph) NewReduceLabel(target ID, reduced []ID, antecedent ID) ID {
	id := g.single(FlagReduceLabel, antecedent, ast.NoNode)
	n := g.nodes[id]
	n.target = target
	n.reduced = append([]ID(nil), reduced...)
	return id
}

// Walk visits id and every node reachable from it through antecedents, each once
func (g *Graph) Walk(id ID) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		visited := roaring.NewBitmap()
		stack := &util.Stack[ID]{}
		stack.Push(id)
		for stack.Len() > 0 {
			cur, _ := stack.Pop()
			if cur == NoFlow || visited.Contains(uint32(cur)) {
				continue
			}
			visited.Add(uint32(cur))
			n := g.Get(cur)
			if !yield(n) {
				return
			}
			ants, _ := g.Antecedents(cur)
			for ant := range util.Reverse(ants) {
				stack.Push(ant)
			}
		}
	}
}

// StartsOf returns the Start nodes control may have entered through before reaching id
func (g *Graph) StartsOf(id ID) []ID {
	var starts []ID
	for n := range g.Walk(id) {
		if n.flags.IsStart() {
			starts = append(starts, n.id)
		}
	}
	return starts
}

// IsReachable reports whether some Start node reaches id
func (g *Graph) IsReachable(id ID) bool {
	if g.IsUnreachable(id) {
		return false
	}
	return len(g.StartsOf(id)) > 0
}

// Describe renders a flow node with the syntax it refers to, for dumps and logs
func (g *Graph) Describe(store *ast.Store, id ID) string {
	n := g.Get(id)
	if n == nil {
		return "<none>"
	}
	name := n.flags.kindName()
	switch {
	case n.flags.IsCondition(), n.flags.IsAssignment(), n.flags.IsCall(), n.flags.IsArrayMutation():
		return fmt.Sprintf("%s#%d %s", name, id, ast.Print(store, n.node))
	case n.flags.IsSwitchClause():
		return fmt.Sprintf("%s#%d [%d,%d)", name, id, n.clauseStart, n.clauseEnd)
	case n.flags.IsStart():
		return fmt.Sprintf("%s#%d %s", name, id, store.Kind(n.node))
	case n.flags.IsReduceLabel():
		return fmt.Sprintf("%s#%d target=%d", name, id, n.target)
	}
	return fmt.Sprintf("%s#%d", name, id)
}
