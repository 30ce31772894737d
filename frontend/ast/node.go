package ast

import (
	"fmt"
	"go/token"
	"iter"
)

// NodeID identifies a Node within its Store. Ids are assigned in creation order
// and never reused; NoNode is the zero value and denotes an absent child.
type NodeID uint32

const NoNode NodeID = 0

func (id NodeID) IsPresent() bool { return id != NoNode }

// Node is one immutable syntax tree element. Parent and Original are
// back-references resolved through the owning Store, never ownership.
type Node struct {
	id        NodeID
	kind      Kind
	rng       Range
	flags     NodeFlags
	transform TransformFlags
	parent    NodeID
	original  NodeID
	store     *Store
	data      NodeData
}

// NodeData is the kind-specific payload of a Node.
// forEachChild visits children in source order and stops when visit returns false.
type NodeData interface {
	forEachChild(visit func(NodeID) bool) bool
}

func (n *Node) ID() NodeID                     { return n.id }
func (n *Node) Kind() Kind                     { return n.kind }
func (n *Node) Range() Range                   { return n.rng }
func (n *Node) Flags() NodeFlags               { return n.flags }
func (n *Node) TransformFlags() TransformFlags { return n.transform }
func (n *Node) Parent() NodeID                 { return n.parent }
func (n *Node) Store() *Store                  { return n.store }

// Original is the node this one was cloned from by Factory.Update, or NoNode
func (n *Node) Original() NodeID { return n.original }

func (n *Node) Pos() token.Pos { return n.rng.PosStart }
func (n *Node) End() token.Pos { return n.rng.PosEnd }

// ParentNode resolves the parent through the store, or returns nil for roots
func (n *Node) ParentNode() *Node {
	return n.store.Get(n.parent)
}

// Children visits the direct children in source order
func (n *Node) Children() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if n.data == nil {
			return
		}
		n.data.forEachChild(func(id NodeID) bool {
			if id == NoNode {
				return true
			}
			return yield(id)
		})
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("%s#%d@%v", n.kind, n.id, n.rng)
}

// As returns the payload of n as *T, or nil when n does not carry a T
func As[T any](n *Node) *T {
	if n == nil {
		return nil
	}
	d, _ := any(n.data).(*T)
	return d
}

// Store is an arena of Nodes addressed by NodeID.
// All files of one program share a Store so ids are unique within a session.
type Store struct {
	nodes []*Node
}

func NewStore() *Store {
	return &Store{nodes: make([]*Node, 1, 1024)}
}

// Get returns the node with the given id, or nil for NoNode and unknown ids
func (s *Store) Get(id NodeID) *Node {
	if int(id) >= len(s.nodes) {
		return nil
	}
	return s.nodes[id]
}

func (s *Store) Len() int { return len(s.nodes) - 1 }

func (s *Store) Kind(id NodeID) Kind {
	if n := s.Get(id); n != nil {
		return n.kind
	}
	return KindUnknown
}

func (s *Store) Parent(id NodeID) NodeID {
	if n := s.Get(id); n != nil {
		return n.parent
	}
	return NoNode
}

func (s *Store) Children(id NodeID) iter.Seq[NodeID] {
	n := s.Get(id)
	if n == nil {
		return func(func(NodeID) bool) {}
	}
	return n.Children()
}

// Ancestors visits id's parent, its parent, and so on up to the root
func (s *Store) Ancestors(id NodeID) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for cur := s.Parent(id); cur != NoNode; cur = s.Parent(cur) {
			if !yield(s.nodes[cur]) {
				return
			}
		}
	}
}

// FindAncestor returns the closest ancestor of id satisfying pred
func (s *Store) FindAncestor(id NodeID, pred func(*Node) bool) *Node {
	for n := range s.Ancestors(id) {
		if pred(n) {
			return n
		}
	}
	return nil
}

// Walk visits id and its descendants in pre-order. Returning false from visit
// skips the node's children.
func (s *Store) Walk(id NodeID, visit func(*Node) bool) {
	n := s.Get(id)
	if n == nil || !visit(n) {
		return
	}
	for child := range n.Children() {
		s.Walk(child, visit)
	}
}

// SourceFileOf returns the SourceFile that contains id
func (s *Store) SourceFileOf(id NodeID) *Node {
	n := s.Get(id)
	for n != nil && n.kind != KindSourceFile {
		n = s.Get(n.parent)
	}
	return n
}

func (s *Store) add(kind Kind, r Range, flags NodeFlags, data NodeData) *Node {
	n := &Node{
		id:    NodeID(len(s.nodes)),
		kind:  kind,
		rng:   r,
		flags: flags,
		store: s,
		data:  data,
	}
	n.transform = ownTransformFlags(kind, flags)
	s.nodes = append(s.nodes, n)
	for child := range n.Children() {
		c := s.nodes[child]
		n.transform |= c.transform
		if c.parent == NoNode {
			c.parent = n.id
		}
	}
	return n
}
