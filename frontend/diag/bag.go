package diag

import (
	"fmt"
	"log/slog"

	"github.com/google/btree"
)

// Bag collects diagnostics. Iteration order is deterministic: by file, then
// position, then code and message. Adding an identical diagnostic twice keeps one.
type Bag struct {
	tree *btree.BTreeG[*Diagnostic]
}

func less(a, b *Diagnostic) bool {
	if a.File != b.File {
		return a.File < b.File
	}
	if a.Range.PosStart != b.Range.PosStart {
		return a.Range.PosStart < b.Range.PosStart
	}
	if a.Range.PosEnd != b.Range.PosEnd {
		return a.Range.PosEnd < b.Range.PosEnd
	}
	if a.Code != b.Code {
		return a.Code < b.Code
	}
	return a.Error() < b.Error()
}

func NewBag() *Bag {
	return &Bag{tree: btree.NewG(8, less)}
}

func (b *Bag) Add(ds ...*Diagnostic) *Bag {
	if b == nil {
		b = NewBag()
	}
	for _, d := range ds {
		if d != nil {
			b.tree.ReplaceOrInsert(d)
		}
	}
	return b
}

func (b *Bag) Merge(other *Bag) *Bag {
	if b == nil {
		return other
	}
	if other == nil {
		return b
	}
	other.tree.Ascend(func(d *Diagnostic) bool {
		b.tree.ReplaceOrInsert(d)
		return true
	})
	return b
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return b.tree.Len()
}

func (b *Bag) HasErrors() bool {
	if b == nil {
		return false
	}
	found := false
	b.tree.Ascend(func(d *Diagnostic) bool {
		found = d.Category == Error
		return !found
	})
	return found
}

// Sorted returns every diagnostic in the bag's order
func (b *Bag) Sorted() []*Diagnostic {
	if b == nil {
		return nil
	}
	out := make([]*Diagnostic, 0, b.tree.Len())
	b.tree.Ascend(func(d *Diagnostic) bool {
		out = append(out, d)
		return true
	})
	return out
}

// ForFile returns the diagnostics reported in the named file, in order
func (b *Bag) ForFile(file string) []*Diagnostic {
	if b == nil {
		return nil
	}
	var out []*Diagnostic
	b.tree.AscendGreaterOrEqual(&Diagnostic{File: file}, func(d *Diagnostic) bool {
		if d.File != file {
			return false
		}
		out = append(out, d)
		return true
	})
	return out
}

// Codes lists the codes of all diagnostics in order, which tests match on
func (b *Bag) Codes() []Code {
	var out []Code
	for _, d := range b.Sorted() {
		out = append(out, d.Code)
	}
	return out
}

// Count returns the number of diagnostics of the given category
func (b *Bag) Count(c Category) int {
	n := 0
	for _, d := range b.Sorted() {
		if d.Category == c {
			n++
		}
	}
	return n
}

func (b *Bag) LogValue() slog.Value {
	var vals []slog.Attr
	for i, d := range b.Sorted() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("d", i),
			Value: slog.GroupValue(
				slog.String("file", d.File),
				slog.String("msg", FormatWithCode(d)),
			),
		})
	}
	return slog.GroupValue(vals...)
}
