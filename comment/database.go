package comment

import (
	"github.com/google/btree"

	"github.com/tsgates/decompiler-sub010/ir"
)

// Database is the CommentDatabase (spec.md §4.4): an ordered set of
// Comments keyed by (function, address, uniq), backed by
// github.com/google/btree — the same ordered-set primitive partmap.Map
// uses, for the same reason: cheap ascending range iteration over a
// mutable set (see DESIGN.md).
type Database struct {
	tree *btree.BTreeG[*Comment]
}

func NewDatabase() *Database {
	return &Database{tree: btree.NewG[*Comment](32, less)}
}

// nextUniq returns one past the largest Uniq already recorded at
// (funcAddr, addr).
func (d *Database) nextUniq(funcAddr, addr ir.Address) int {
	uniq := 0
	pivot := &Comment{FuncAddr: funcAddr, Addr: addr, Uniq: int(^uint(0) >> 1)}
	d.tree.DescendLessOrEqual(pivot, func(c *Comment) bool {
		if c.FuncAddr.Compare(funcAddr) != 0 || c.Addr.Compare(addr) != 0 {
			return false
		}
		uniq = c.Uniq + 1
		return false
	})
	return uniq
}

// AddComment records a new Comment at (funcAddr, addr), auto-assigning the
// next uniqueness index for that (function, address) pair.
func (d *Database) AddComment(typ TypeMask, funcAddr, addr ir.Address, text string) *Comment {
	c := &Comment{
		Type:     typ,
		FuncAddr: funcAddr,
		Addr:     addr,
		Uniq:     d.nextUniq(funcAddr, addr),
		Text:     text,
	}
	d.tree.ReplaceOrInsert(c)
	return c
}

// AddCommentNoDuplicate records a new Comment unless an existing comment at
// the same (function, address) already holds identical text — per spec.md
// §9's open question (a), the dedup scan only looks backward through
// comments already at this (function, address) with uniq <= the next one
// that would be assigned; a comment added afterward with the same text is
// not caught by a later call that precedes it in uniq order. Returns the
// existing comment and false if a duplicate was found, else the new
// comment and true.
func (d *Database) AddCommentNoDuplicate(typ TypeMask, funcAddr, addr ir.Address, text string) (*Comment, bool) {
	var dup *Comment
	pivot := &Comment{FuncAddr: funcAddr, Addr: addr, Uniq: int(^uint(0) >> 1)}
	d.tree.DescendLessOrEqual(pivot, func(c *Comment) bool {
		if c.FuncAddr.Compare(funcAddr) != 0 || c.Addr.Compare(addr) != 0 {
			return false
		}
		if c.Text == text {
			dup = c
			return false
		}
		return true
	})
	if dup != nil {
		return dup, false
	}
	return d.AddComment(typ, funcAddr, addr, text), true
}

// DeleteComment removes c from the database.
func (d *Database) DeleteComment(c *Comment) {
	d.tree.Delete(c)
}

// ClearType removes every comment for funcAddr whose Type intersects mask.
func (d *Database) ClearType(funcAddr ir.Address, mask TypeMask) {
	var victims []*Comment
	d.Range(funcAddr, func(c *Comment) bool {
		if c.Type&mask != 0 {
			victims = append(victims, c)
		}
		return true
	})
	for _, c := range victims {
		d.tree.Delete(c)
	}
}

// Range calls fn for every comment belonging to funcAddr, in
// (address, uniq) order, stopping early if fn returns false.
func (d *Database) Range(funcAddr ir.Address, fn func(*Comment) bool) {
	sp := funcAddr.Space()
	lo := &Comment{FuncAddr: funcAddr, Addr: ir.MinAddress(sp)}
	hi := &Comment{FuncAddr: funcAddr, Addr: ir.MaxAddress(sp), Uniq: int(^uint(0) >> 1)}
	d.tree.AscendRange(lo, hi, func(c *Comment) bool {
		if c.FuncAddr.Compare(funcAddr) != 0 {
			return true
		}
		return fn(c)
	})
}

// All returns every comment for funcAddr in database order.
func (d *Database) All(funcAddr ir.Address) []*Comment {
	var out []*Comment
	d.Range(funcAddr, func(c *Comment) bool {
		out = append(out, c)
		return true
	})
	return out
}

func (d *Database) Len() int { return d.tree.Len() }

// Clear removes every comment in the database, for every function.
func (d *Database) Clear() {
	d.tree.Clear(false)
}

// Emit and EmitNoDuplicate adapt AddComment/AddCommentNoDuplicate to
// ir.CommentSink's narrow, comment-package-agnostic shape, so an
// ir.Funcdata can hold a Database (or Buffered) behind that interface
// without ir importing this package.
func (d *Database) Emit(typ TypeMask, funcAddr, addr ir.Address, text string) {
	d.AddComment(typ, funcAddr, addr, text)
}

func (d *Database) EmitNoDuplicate(typ TypeMask, funcAddr, addr ir.Address, text string) bool {
	_, added := d.AddCommentNoDuplicate(typ, funcAddr, addr, text)
	return added
}
