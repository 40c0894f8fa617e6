package ir

import "sort"

// VarnodeFlags is a bitmask of the attribute flags spec.md §3 lists for a
// Varnode. Exactly one of Input, Written, Free holds at any time (enforced
// by Funcdata's mutators, not by the bitmask itself).
type VarnodeFlags uint16

const (
	VarInput VarnodeFlags = 1 << iota
	VarConstant
	VarWritten
	VarAddrTied
	VarPersist
	VarFree
	VarMark
	VarIncidental
	VarHeritageKnown
	VarActiveHeritage
	VarWriteMask
)

// Descendant records one (op, slot) use of a Varnode as an input operand.
type Descendant struct {
	Op   *PcodeOp
	Slot int
}

// Varnode is a storage location used by the IR: a single SSA definition
// once Heritage has run, or a "free" (not-yet-heritaged) storage reference
// beforehand.
type Varnode struct {
	id    int
	Addr  Address
	Size  int
	Def   *PcodeOp // defining op, nil if Input or Free
	High  *HighVariable
	Flags VarnodeFlags

	descendants []Descendant // kept sorted by (op.Seq, slot)
}

// ID returns the Varnode's stable arena id, unique within its Funcdata for
// the lifetime of the function's analysis.
func (v *Varnode) ID() int { return v.id }

// IsConstant reports whether v lives in the constant space; per the data
// model invariant, a constant Varnode's offset equals its value.
func (v *Varnode) IsConstant() bool { return v.Flags&VarConstant != 0 }

// Value returns a constant Varnode's value. Precondition: IsConstant().
func (v *Varnode) Value() uint64 { return v.Addr.Offset() }

// Descendants returns the sorted (op, slot) uses of v. The returned slice
// must not be mutated by callers; use Funcdata methods to add/remove uses.
func (v *Varnode) Descendants() []Descendant { return v.descendants }

func (v *Varnode) addDescendant(d Descendant) {
	for _, cur := range v.descendants {
		if descendantEqual(cur, d) {
			return // already recorded
		}
	}
	v.descendants = append(v.descendants, d)
	sort.Slice(v.descendants, func(i, j int) bool {
		return descendantLess(v.descendants[i], v.descendants[j])
	})
}

func (v *Varnode) removeDescendant(d Descendant) {
	for i, cur := range v.descendants {
		if cur.Op == d.Op && cur.Slot == d.Slot {
			v.descendants = append(v.descendants[:i], v.descendants[i+1:]...)
			return
		}
	}
}

func descendantLess(a, b Descendant) bool {
	if a.Op == b.Op {
		return a.Slot < b.Slot
	}
	if a.Op == nil || b.Op == nil {
		return a.Op == nil && b.Op != nil
	}
	c := a.Op.Seq.Compare(b.Op.Seq)
	if c != 0 {
		return c < 0
	}
	return a.Slot < b.Slot
}

func descendantEqual(a, b Descendant) bool { return a.Op == b.Op && a.Slot == b.Slot }

func (v *Varnode) String() string {
	return v.Addr.String()
}
