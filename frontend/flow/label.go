package flow

import (
	"github.com/benbjohnson/immutable"
)

// label holds the antecedents of a BranchLabel or LoopLabel.
//
// A label is open while its container is being bound: predecessors are appended as
// the binder discovers them, which for a LoopLabel includes the back edge from the
// end of the loop body. Seal freezes the list; a sealed label never changes again.
type label struct {
	open   []ID
	sealed *immutable.List[ID]
}

func (l *label) add(id ID) bool {
	if l.sealed != nil {
		return false
	}
	for _, existing := range l.open {
		if existing == id {
			return true
		}
	}
	l.open = append(l.open, id)
	return true
}

func (l *label) seal() {
	if l.sealed != nil {
		return
	}
	b := immutable.NewListBuilder[ID]()
	for _, id := range l.open {
		b.Append(id)
	}
	l.sealed = b.List()
	l.open = nil
}

func (l *label) isSealed() bool { return l.sealed != nil }

// snapshot returns the antecedents known so far
func (l *label) snapshot() []ID {
	if l.sealed == nil {
		return append([]ID(nil), l.open...)
	}
	out := make([]ID, 0, l.sealed.Len())
	itr := l.sealed.Iterator()
	for !itr.Done() {
		_, id := itr.Next()
		out = append(out, id)
	}
	return out
}

func (l *label) len() int {
	if l.sealed == nil {
		return len(l.open)
	}
	return l.sealed.Len()
}
