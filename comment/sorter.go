package comment

import (
	"math"
	"sort"

	"github.com/tsgates/decompiler-sub010/ir"
)

// HeaderKind distinguishes the two header placements CommentSorter
// recognizes (spec.md §4.4): a comment genuinely anchored at the
// function's entry address, and the fallback bucket for comments that
// match nothing in the function at all.
type HeaderKind int

const (
	HeaderBasic HeaderKind = iota
	HeaderUnplaced
)

// Subsort is the placement key CommentSorter computes for each comment:
// Index is the owning block's index, or -1 for a header placement; Order
// is the owning op's sequence order within that block (or the HeaderKind
// when Index == -1); Pos is a uniqueness counter assigned in the order
// comments are accepted for placement, breaking ties stably.
type Subsort struct {
	Index int
	Order int
	Pos   int
}

// endOfBlock is the Order sentinel meaning "after every real op in this
// block" (placement rule 3: attach at the end of the preceding op's
// block when no op begins at-or-after the comment's address).
const endOfBlock = math.MaxInt32

// Less gives Subsort's total order: Index, then Order, then Pos.
func (s Subsort) Less(o Subsort) bool {
	if s.Index != o.Index {
		return s.Index < o.Index
	}
	if s.Order != o.Order {
		return s.Order < o.Order
	}
	return s.Pos < o.Pos
}

// Placement pairs a Comment with the Subsort key CommentSorter computed
// for it and, for non-header placements, the block it is attached to.
type Placement struct {
	Comment *Comment
	Block   *ir.BasicBlock
	Header  HeaderKind
	Subsort Subsort
}

// Sorter implements CommentSorter (spec.md §4.4): given a function and a
// set of its comments, it places each comment against the block/op
// structure and replays them back in placement order through a small
// setup/hasNext/getNext iteration window, the same shape the teacher's
// ssa lineage uses for block-scoped op iteration.
type Sorter struct {
	placements []Placement

	// window bounds the current iteration: [cur, stop) indexes into
	// placements, which is kept sorted by Subsort throughout.
	cur, stop int
}

// NewSorter computes placements for every comment in comments against fd
// and returns a Sorter ready for SetupBlockList/SetupHeader scoping.
// displayUnplaced controls whether a comment matching nothing in fd is
// kept (as HeaderUnplaced) or silently dropped (placement rule 6).
func NewSorter(fd *ir.Funcdata, comments []*Comment, displayUnplaced bool) *Sorter {
	ops := fd.LiveOps()

	s := &Sorter{}
	pos := 0
	for _, c := range comments {
		p, ok := place(fd, ops, c, displayUnplaced)
		if !ok {
			continue
		}
		p.Subsort.Pos = pos
		pos++
		s.placements = append(s.placements, p)
	}
	sort.Slice(s.placements, func(i, j int) bool {
		return s.placements[i].Subsort.Less(s.placements[j].Subsort)
	})
	s.stop = len(s.placements)
	return s
}

// place implements the six-step placement algorithm of spec.md §4.4.
func place(fd *ir.Funcdata, ops []*ir.PcodeOp, c *Comment, displayUnplaced bool) (Placement, bool) {
	// Rule 1: a header-typed comment exactly at the function entry.
	if c.Type&Header != 0 && c.Addr.Compare(fd.Entry) == 0 {
		return Placement{Comment: c, Header: HeaderBasic, Subsort: Subsort{Index: -1, Order: int(HeaderBasic)}}, true
	}

	ceil := sort.Search(len(ops), func(i int) bool { return ops[i].Seq.Addr.Compare(c.Addr) >= 0 })

	// Rule 2: attach to the op at the lowest address >= c.Addr, if that
	// op's block still spans c.Addr.
	if ceil < len(ops) {
		op := ops[ceil]
		if op.Block().Contains(c.Addr) {
			return Placement{Comment: c, Block: op.Block(), Subsort: Subsort{Index: op.Block().Index, Order: op.Seq.Order}}, true
		}
	}

	// Rule 3: fall back to the preceding op's block, attaching at its end.
	if ceil > 0 {
		prev := ops[ceil-1]
		if prev.Block().Contains(c.Addr) {
			return Placement{Comment: c, Block: prev.Block(), Subsort: Subsort{Index: prev.Block().Index, Order: endOfBlock}}, true
		}
	}

	// Rule 4: an op exists at exactly this address even though its block
	// has migrated away from containing it positionally.
	if ceil < len(ops) && ops[ceil].Seq.Addr.Compare(c.Addr) == 0 {
		op := ops[ceil]
		return Placement{Comment: c, Block: op.Block(), Subsort: Subsort{Index: op.Block().Index, Order: op.Seq.Order}}, true
	}

	// Rule 5: the function has no ops at all; place at the start of the
	// entry block.
	if len(ops) == 0 {
		return Placement{Comment: c, Block: fd.Blocks[0], Subsort: Subsort{Index: fd.Blocks[0].Index, Order: 0}}, true
	}

	// Rule 6: nothing matched. Keep as an unplaced header if requested,
	// else the comment is dropped from this placement pass.
	if displayUnplaced {
		return Placement{Comment: c, Header: HeaderUnplaced, Subsort: Subsort{Index: -1, Order: int(HeaderUnplaced)}}, true
	}
	return Placement{}, false
}

// SetupHeader narrows the iteration window to the header placements of
// the given kind.
func (s *Sorter) SetupHeader(kind HeaderKind) {
	s.setupWindow(-1, int(kind))
}

// SetupBlockList narrows the iteration window to every placement attached
// to b, across its full Order range.
func (s *Sorter) SetupBlockList(b *ir.BasicBlock) {
	s.setupWindowRange(b.Index)
}

// SetupOpList narrows the current block window's upper bound to just past
// op's order, so GetNext stops returning comments once it would emit one
// attached after op. Must follow a SetupBlockList call for op's block.
func (s *Sorter) SetupOpList(op *ir.PcodeOp) {
	s.stop = s.lowerBoundIndex(op.Block().Index, op.Seq.Order+1)
}

func (s *Sorter) setupWindow(index, order int) {
	s.cur = sort.Search(len(s.placements), func(i int) bool {
		p := s.placements[i].Subsort
		return p.Index > index || (p.Index == index && p.Order >= order)
	})
	s.stop = sort.Search(len(s.placements), func(i int) bool {
		p := s.placements[i].Subsort
		return p.Index > index || (p.Index == index && p.Order > order)
	})
}

func (s *Sorter) setupWindowRange(index int) {
	s.cur = s.lowerBoundIndex(index, math.MinInt32)
	s.stop = s.lowerBoundIndex(index+1, math.MinInt32)
}

func (s *Sorter) lowerBoundIndex(index, order int) int {
	return sort.Search(len(s.placements), func(i int) bool {
		p := s.placements[i].Subsort
		return p.Index > index || (p.Index == index && p.Order >= order)
	})
}

// HasNext reports whether GetNext has another placement in the current
// window.
func (s *Sorter) HasNext() bool { return s.cur < s.stop }

// GetNext returns the next comment in the current window and advances.
func (s *Sorter) GetNext() *Comment {
	c := s.placements[s.cur].Comment
	s.cur++
	return c
}
