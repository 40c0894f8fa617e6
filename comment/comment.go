// Package comment implements the Comment database and the CommentSorter
// that places comments into a Funcdata's block structure for emission
// (spec.md §4.4).
package comment

import "github.com/tsgates/decompiler-sub010/ir"

// TypeMask classifies a Comment. Bits are independent and a Comment may
// set more than one; ClearType and the sorter's property-mask filtering
// both operate on this bitmask.
//
// TypeMask is an alias for uint32, not a distinct defined type, so that
// Database and Buffered's Emit/EmitNoDuplicate methods (see buffered.go)
// satisfy ir.CommentSink without ir needing to import this package.
type TypeMask = uint32

const (
	Header TypeMask = 1 << iota
	Warning
	User
	Indent
)

// Comment is one entry in the database: spec.md §3 "{type-bits,
// function-address, instruction-address, uniqueness index, text,
// emitted-flag}".
type Comment struct {
	Type     TypeMask
	FuncAddr ir.Address
	Addr     ir.Address
	Uniq     int
	Text     string
	Emitted  bool
}

// less gives the total order spec.md §3 specifies: function, then
// address, then uniqueness.
func less(a, b *Comment) bool {
	if c := a.FuncAddr.Compare(b.FuncAddr); c != 0 {
		return c < 0
	}
	if c := a.Addr.Compare(b.Addr); c != 0 {
		return c < 0
	}
	return a.Uniq < b.Uniq
}
