package ir

import "strconv"

// BasicBlock is a maximal straight-line sequence of ops plus control-flow
// edges. Index is stable across one analysis run (it is assigned by
// Funcdata.AddBlock, never by the caller).
type BasicBlock struct {
	Index int
	Ops   []*PcodeOp

	Preds, Succs []*BasicBlock
	// LoopIn[i] marks Preds[i] as a loop-entry (back) edge into this block.
	LoopIn []bool
}

// PredIndex returns the index of pred within b.Preds, or -1.
func (b *BasicBlock) PredIndex(pred *BasicBlock) int {
	for i, p := range b.Preds {
		if p == pred {
			return i
		}
	}
	return -1
}

// SuccIndex returns the index of succ within b.Succs, or -1.
func (b *BasicBlock) SuccIndex(succ *BasicBlock) int {
	for i, s := range b.Succs {
		if s == succ {
			return i
		}
	}
	return -1
}

// AddrRange returns the block's [low, high] address span, taken from its
// first and last op. Empty blocks return two invalid addresses.
func (b *BasicBlock) AddrRange() (lo, hi Address) {
	if len(b.Ops) == 0 {
		return Address{}, Address{}
	}
	return b.Ops[0].Seq.Addr, b.Ops[len(b.Ops)-1].Seq.Addr
}

// Contains reports whether addr falls within the block's op address range,
// inclusive. Used by the comment sorter's placement tests (§4.4), which
// falls back to exact-op-address matching when a block has migrated (ops
// relocated by the action pipeline) and this range test no longer holds.
func (b *BasicBlock) Contains(addr Address) bool {
	lo, hi := b.AddrRange()
	if !lo.Valid() {
		return false
	}
	return lo.Compare(addr) <= 0 && addr.Compare(hi) <= 0
}

func (b *BasicBlock) String() string {
	return "block" + strconv.Itoa(b.Index)
}
