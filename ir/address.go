// Package ir implements the decompiler's intermediate-representation model:
// addresses and spaces, Varnodes, PcodeOps, basic blocks, and the Funcdata
// that owns all of them for one function. The cyclic references between
// these (Varnode.Def -> PcodeOp, PcodeOp.Output -> Varnode, PcodeOp.Parent
// -> BasicBlock -> Ops) are plain Go pointers. Each Varnode and PcodeOp
// also carries a stable integer id, and Funcdata indexes its live ops and
// Varnodes in maps keyed by that id.
package ir

import "fmt"

// SpaceKind classifies an address space.
type SpaceKind int

const (
	Constant SpaceKind = iota
	Unique
	Register
	Ram
	Stack
)

func (k SpaceKind) String() string {
	switch k {
	case Constant:
		return "const"
	case Unique:
		return "unique"
	case Register:
		return "register"
	case Ram:
		return "ram"
	case Stack:
		return "stack"
	default:
		return "?"
	}
}

// Space is an entry in the architecture's space table. Spaces are compared
// by Index, never by pointer identity, so that a rebuilt table with the
// same layout still round-trips equal.
type Space struct {
	Index     int
	Name      string
	WordSize  uint32
	AddrSize  uint32
	Kind      SpaceKind
	Heritaged bool // whether Heritage tracks this space
	Delay     int  // heritage pass delay, meaningful only if Heritaged
}

// extreme marks an Address as one of the MachExtreme sentinels: the
// smallest or largest possible address within its space. Sentinels compare
// extreme within their own space: a -1 sentinel is less than every finite
// offset in that space, a +1 sentinel greater than every finite offset.
type extreme int8

const (
	notExtreme extreme = 0
	minExtreme extreme = -1
	maxExtreme extreme = 1
)

// Address is a (space, offset) pair. The zero Address is invalid (nil
// space); Valid reports this directly per the data-model invariant.
type Address struct {
	space   *Space
	offset  uint64
	extreme extreme
}

// NewAddress builds a normal (non-sentinel) address.
func NewAddress(space *Space, offset uint64) Address {
	return Address{space: space, offset: offset}
}

// MinAddress and MaxAddress build the MachExtreme sentinels for a space.
func MinAddress(space *Space) Address { return Address{space: space, extreme: minExtreme} }
func MaxAddress(space *Space) Address { return Address{space: space, extreme: maxExtreme} }

// Valid reports whether a lies in a real space.
func (a Address) Valid() bool { return a.space != nil }

func (a Address) Space() *Space  { return a.space }
func (a Address) Offset() uint64 { return a.offset }
func (a Address) IsMin() bool    { return a.extreme == minExtreme }
func (a Address) IsMax() bool    { return a.extreme == maxExtreme }

// Equal reports address equality: same space, same offset, same sentinel.
func (a Address) Equal(b Address) bool {
	return spaceIndex(a.space) == spaceIndex(b.space) && a.offset == b.offset && a.extreme == b.extreme
}

// Compare gives a total order: space index first (nil space sorts first),
// then sentinel/offset within a space. Two addresses in different spaces
// are ordered by space index alone, matching the data model's
// "space-then-offset, with sentinels extreme in their space" rule.
func (a Address) Compare(b Address) int {
	ai, bi := spaceIndex(a.space), spaceIndex(b.space)
	if ai != bi {
		if ai < bi {
			return -1
		}
		return 1
	}
	if a.extreme != b.extreme {
		if a.extreme < b.extreme {
			return -1
		}
		return 1
	}
	if a.extreme != notExtreme {
		return 0 // both sentinels of the same sign in the same space
	}
	switch {
	case a.offset < b.offset:
		return -1
	case a.offset > b.offset:
		return 1
	default:
		return 0
	}
}

func spaceIndex(s *Space) int {
	if s == nil {
		return -1
	}
	return s.Index
}

func (a Address) String() string {
	if !a.Valid() {
		return "<invalid>"
	}
	switch a.extreme {
	case minExtreme:
		return fmt.Sprintf("%s:-inf", a.space.Name)
	case maxExtreme:
		return fmt.Sprintf("%s:+inf", a.space.Name)
	default:
		return fmt.Sprintf("%s:%#x", a.space.Name, a.offset)
	}
}
