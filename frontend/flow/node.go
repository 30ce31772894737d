// Package flow holds the control-flow graphs the binder builds for every
// control-flow container (source files and function bodies).
//
// Flow nodes point backwards: each node lists its antecedents, the nodes
// control may come from. A narrowing query starts at the flow node recorded for a
// reference and walks antecedents until it reaches an assignment, the
// container's Start node, or a node that decides the answer.
package flow

import (
	"fmt"

	"github.com/cottand/strux/frontend/ast"
)

// ID addresses a Node within its Graph
type ID uint32

const (
	NoFlow ID = 0
	// Unreachable is shared by every container: there is exactly one unreachable node per graph
	Unreachable ID = 1
)

func (id ID) IsPresent() bool { return id != NoFlow }

type Flags uint16

const (
	FlagUnreachable Flags = 1 << iota
	FlagStart
	FlagBranchLabel
	FlagLoopLabel
	FlagAssignment
	FlagTrueCondition
	FlagFalseCondition
	FlagSwitchClause
	FlagArrayMutation
	FlagCall
	FlagReduceLabel
	// FlagReferenced is set once another node names this one as an antecedent
	FlagReferenced
	// FlagShared is set once two or more nodes name this one as an antecedent
	FlagShared

	flagLabel     = FlagBranchLabel | FlagLoopLabel
	flagCondition = FlagTrueCondition | FlagFalseCondition
)

func (f Flags) IsUnreachable() bool   { return f&FlagUnreachable != 0 }
func (f Flags) IsStart() bool         { return f&FlagStart != 0 }
func (f Flags) IsBranchLabel() bool   { return f&FlagBranchLabel != 0 }
func (f Flags) IsLoopLabel() bool     { return f&FlagLoopLabel != 0 }
func (f Flags) IsLabel() bool         { return f&flagLabel != 0 }
func (f Flags) IsAssignment() bool    { return f&FlagAssignment != 0 }
func (f Flags) IsCondition() bool     { return f&flagCondition != 0 }
func (f Flags) IsTrueCondition() bool { return f&FlagTrueCondition != 0 }
func (f Flags) IsSwitchClause() bool  { return f&FlagSwitchClause != 0 }
func (f Flags) IsArrayMutation() bool { return f&FlagArrayMutation != 0 }
func (f Flags) IsCall() bool          { return f&FlagCall != 0 }
func (f Flags) IsReduceLabel() bool   { return f&FlagReduceLabel != 0 }
func (f Flags) IsReferenced() bool    { return f&FlagReferenced != 0 }
func (f Flags) IsShared() bool        { return f&FlagShared != 0 }

func (f Flags) kindName() string {
	switch {
	case f.IsUnreachable():
		return "Unreachable"
	case f.IsStart():
		return "Start"
	case f.IsBranchLabel():
		return "BranchLabel"
	case f.IsLoopLabel():
		return "LoopLabel"
	case f.IsAssignment():
		return "Assignment"
	case f&FlagTrueCondition != 0:
		return "TrueCondition"
	case f&FlagFalseCondition != 0:
		return "FalseCondition"
	case f.IsSwitchClause():
		return "SwitchClause"
	case f.IsArrayMutation():
		return "ArrayMutation"
	case f.IsCall():
		return "Call"
	case f.IsReduceLabel():
		return "ReduceLabel"
	}
	return "Flow(?)"
}

// Node is one vertex of a flow graph.
//
// The syntax it refers to depends on its kind: the container for Start, the
// assignment or declaration for Assignment, the condition expression for
// conditions, the switch statement for SwitchClause, the mutating call or
// element assignment for ArrayMutation and the call expression for Call.
type Node struct {
	id         ID
	flags      Flags
	node       ast.NodeID
	antecedent ID
	label      *label

	// SwitchClause nodes cover the clauses [clauseStart, clauseEnd) of their switch
	clauseStart, clauseEnd int

	// ReduceLabel nodes stand for target with its antecedents replaced by reduced
	target  ID
	reduced []ID
}

func (n *Node) ID() ID             { return n.id }
func (n *Node) Flags() Flags       { return n.flags }
func (n *Node) Syntax() ast.NodeID { return n.node }

// Antecedent is the single predecessor of non-label nodes
func (n *Node) Antecedent() ID { return n.antecedent }

// ClauseRange is the half-open range of switch clause indexes a SwitchClause node covers.
// An empty range stands for the implicit default of a switch without one.
func (n *Node) ClauseRange() (start, end int) { return n.clauseStart, n.clauseEnd }

// Target is the label a ReduceLabel temporarily rewires
func (n *Node) Target() ID { return n.target }

// Reduced is the replacement antecedent list of a ReduceLabel's target
func (n *Node) Reduced() []ID { return n.reduced }

func (n *Node) String() string {
	if n.node.IsPresent() {
		return fmt.Sprintf("%s#%d(node %d)", n.flags.kindName(), n.id, n.node)
	}
	return fmt.Sprintf("%s#%d", n.flags.kindName(), n.id)
}
