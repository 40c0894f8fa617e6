package heritage

import (
	"github.com/tsgates/decompiler-sub010/ir"
)

// rangeKey identifies a disjoint live-range: the maximal set of (address,
// size) writes merged into one SSA lineage (GLOSSARY). This engine treats
// an exact (address, size) match as one disjoint range rather than
// tracking sub-byte overlap/aliasing between differently sized writes at
// overlapping addresses — a scope reduction from the full partial-overlap
// model that keeps Heritage tractable within this core's budget while
// preserving every spec.md invariant stated in terms of whole (address,
// size) writes.
type rangeKey struct {
	Addr ir.Address
	Size int
}

type liveRange struct {
	key       rangeKey
	defblocks map[int]bool // block index -> has a write of this range
}

// Heritage performs one heritage pass over fd for every space in spaces
// whose Delay has been reached by pass: collect disjoint live ranges,
// guard call sites with INDIRECT placeholders, place MULTIEQUAL nodes at
// the iterated dominance frontier, and rename. A range is newly discovered
// when at least one of its writes lacks VarHeritageKnown (every write seen,
// and every placeholder Heritage creates, is marked); ranges with no new
// writes are left untouched. It returns the number of
// newly discovered live ranges (driving the caller's "passes repeat until
// heritaged space is past its delay and no new live ranges appear" rule,
// §4.1); a LowLevel panic (wrapped by the caller into errs.LowLevel, per
// §4.1's "Failure" clause) is raised if a MULTIEQUAL's predecessor count
// ever disagrees with its block's, the one invariant this package cannot
// recover from internally.
func Heritage(fd *ir.Funcdata, spaces []*ir.Space, pass int) int {
	tree := Build(fd)

	ranges := collectRanges(fd, spaces, pass)
	guardCalls(fd, ranges)
	newCount := len(ranges)

	newPhis := placeMultiequals(fd, tree, ranges)
	rename(fd, tree, ranges, newPhis)

	return newCount
}

func heritagedAtPass(space *ir.Space, pass int) bool {
	return space != nil && space.Heritaged && pass >= space.Delay
}

func collectRanges(fd *ir.Funcdata, spaces []*ir.Space, pass int) map[rangeKey]*liveRange {
	heritagedSet := make(map[*ir.Space]bool, len(spaces))
	for _, s := range spaces {
		if heritagedAtPass(s, pass) {
			heritagedSet[s] = true
		}
	}
	ranges := make(map[rangeKey]*liveRange)
	fresh := make(map[rangeKey]bool)
	for _, op := range fd.LiveOps() {
		out := op.Output
		if out == nil || !heritagedSet[out.Addr.Space()] {
			continue
		}
		k := rangeKey{Addr: out.Addr, Size: out.Size}
		lr, ok := ranges[k]
		if !ok {
			lr = &liveRange{key: k, defblocks: make(map[int]bool)}
			ranges[k] = lr
		}
		lr.defblocks[op.Parent.Index] = true
		if out.Flags&ir.VarHeritageKnown == 0 {
			fresh[k] = true
			out.Flags |= ir.VarHeritageKnown
		}
	}
	for k := range ranges {
		if !fresh[k] {
			delete(ranges, k)
		}
	}
	return ranges
}

// guardCalls inserts an INDIRECT placeholder write for each live range at
// every CALL/CALLIND/BRANCHIND site's block, representing the possible kill
// of that storage by a callee or by control reaching code outside this
// function's visible CFG edges (§4.1 "Call guards"). The placeholder is
// added to the range's defblocks so placement/rename treat it as a genuine
// definition; resolveSpacebaseRelative-style cancellation (proving the kill
// impossible, e.g. a stack slot below the call's stack-pointer delta) is
// left as a later action-pipeline rule (§4.1), not part of Heritage itself.
func guardCalls(fd *ir.Funcdata, ranges map[rangeKey]*liveRange) {
	for _, op := range fd.LiveOps() {
		if !op.Opcode.IsCallGuardSite() {
			continue
		}
		for _, lr := range ranges {
			if lr.defblocks[op.Parent.Index] {
				continue // call's block already writes this range directly
			}
			ind := fd.InsertSynthetic(ir.INDIRECT, op.Seq.Addr, op.Parent, indexOf(op.Parent, op)+1)
			ind.Flags |= OpIndirectSourceFlag
			fd.NewUniqueVarnode(lr.key.Addr, lr.key.Size, ind).Flags |= ir.VarHeritageKnown
			fd.AppendInput(ind, fd.RefVarnode(lr.key.Addr, lr.key.Size))
			lr.defblocks[op.Parent.Index] = true
		}
	}
}

// OpIndirectSourceFlag marks an INDIRECT op as call-guard-originated; it
// reuses the Marker bit since this engine has no dedicated bit for it and
// Marker is otherwise unused pre-pipeline.
const OpIndirectSourceFlag = ir.OpMarker

func indexOf(b *ir.BasicBlock, op *ir.PcodeOp) int {
	for i, o := range b.Ops {
		if o == op {
			return i
		}
	}
	return len(b.Ops) - 1
}

type phiPlacement struct {
	phi   *ir.PcodeOp
	key   rangeKey
}

type phiMap map[*ir.BasicBlock][]phiPlacement

// placeMultiequals derives placement from the dominance frontier of each
// disjoint range's write set (§4.1 "placeMultiequals"), synthesizing one
// MULTIEQUAL per range per frontier block with one input per predecessor
// edge, mirroring ssa/lift.go's liftAlloc phi-insertion loop (Cytron et
// al.'s classic worklist, without the counter trick: hasAlready/work are
// reset per range instead of reused across a shared iteration counter).
func placeMultiequals(fd *ir.Funcdata, tree *DomTree, ranges map[rangeKey]*liveRange) phiMap {
	newPhis := make(phiMap)
	for _, lr := range ranges {
		hasAlready := make(map[int]bool)
		work := make(map[int]bool)
		var worklist []*ir.BasicBlock
		for idx := range lr.defblocks {
			b := fd.Blocks[idx]
			work[idx] = true
			worklist = append(worklist, b)
		}
		for len(worklist) > 0 {
			u := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			for _, v := range tree.Frontier(u) {
				if hasAlready[v.Index] {
					continue
				}
				hasAlready[v.Index] = true
				phi := fd.InsertSynthetic(ir.MULTIEQUAL, firstAddr(v), v, 0)
				for range v.Preds {
					fd.AppendInput(phi, nil)
				}
				if len(phi.Input) != len(v.Preds) {
					panic("heritage: MULTIEQUAL predecessor count disagrees with block's")
				}
				fd.NewUniqueVarnode(lr.key.Addr, lr.key.Size, phi).Flags |= ir.VarHeritageKnown
				newPhis[v] = append(newPhis[v], phiPlacement{phi: phi, key: lr.key})
				if !work[v.Index] {
					work[v.Index] = true
					worklist = append(worklist, v)
				}
			}
		}
	}
	return newPhis
}

func firstAddr(b *ir.BasicBlock) ir.Address {
	if len(b.Ops) > 0 {
		return b.Ops[0].Seq.Addr
	}
	return ir.Address{}
}

// rename is the dominator-tree-order SSA renaming walk: push a new SSA
// instance on every write, rewrite reads to the top-of-stack instance, pop
// on block exit. Mirrors ssa/lift.go's rename(), generalized from "one
// renaming map slot per lifted Alloc" to "one per disjoint range", and
// extended to also patch MULTIEQUAL edges for CFG predecessors instead of
// only CFG successors (ssa/lift.go's Go SSA phis are placed in the block
// itself and their edges set from predecessors walking forward; this
// engine's MULTIEQUAL inputs are filled in directly from the reaching
// definition stack at the point each predecessor is visited).
func rename(fd *ir.Funcdata, tree *DomTree, ranges map[rangeKey]*liveRange, newPhis phiMap) {
	reaching := make(map[rangeKey][]*ir.Varnode)
	for k := range ranges {
		reaching[k] = nil
	}

	var walk func(b *ir.BasicBlock)
	walk = func(b *ir.BasicBlock) {
		pushed := make(map[rangeKey]int)

		for _, p := range newPhis[b] {
			reaching[p.key] = append(reaching[p.key], p.phi.Output)
			pushed[p.key]++
		}

		for _, op := range b.Ops {
			if op.Opcode == ir.MULTIEQUAL {
				continue // its output was already pushed above
			}
			for slot, in := range op.Input {
				if in == nil || in.Flags&ir.VarFree == 0 {
					continue
				}
				k := rangeKey{Addr: in.Addr, Size: in.Size}
				stack := reaching[k]
				if len(stack) == 0 {
					continue // not yet heritaged at this pass; stays free
				}
				fd.SetInput(op, slot, stack[len(stack)-1])
			}
			if op.Output != nil {
				k := rangeKey{Addr: op.Output.Addr, Size: op.Output.Size}
				if _, tracked := ranges[k]; tracked {
					reaching[k] = append(reaching[k], op.Output)
					pushed[k]++
				}
			}
		}

		for _, s := range b.Succs {
			idx := s.PredIndex(b)
			for _, p := range newPhis[s] {
				stack := reaching[p.key]
				var val *ir.Varnode
				if len(stack) > 0 {
					val = stack[len(stack)-1]
				} else {
					val = fd.RefVarnode(p.key.Addr, p.key.Size)
				}
				fd.SetInput(p.phi, idx, val)
			}
		}

		for _, c := range tree.Children(b) {
			walk(c)
		}

		for k, n := range pushed {
			reaching[k] = reaching[k][:len(reaching[k])-n]
		}
	}
	walk(fd.Blocks[0])
}
