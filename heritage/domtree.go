// Package heritage implements Heritage (SSA construction: MULTIEQUAL
// placement, call-site INDIRECT guarding, and renaming) and the merge
// algorithm that groups SSA Varnodes into HighVariables (spec.md §4.1).
//
// Grounded on the teacher's ssa/lift.go, which performs the equivalent
// Alloc-cell-to-register lifting for Go's SSA form: dominance-frontier
// phi placement (Cytron et al. 1991) followed by a dominator-tree-order
// rename pass. This package generalizes that algorithm from "lift one
// Alloc cell at a time" to "heritage every tracked storage address",
// and adds the call-guarding step the teacher's Go-level SSA has no
// analogue for (Go has no raw machine call-clobber semantics to model).
package heritage

import "github.com/tsgates/decompiler-sub010/ir"

// domNode is one node of the dominator tree, mirroring the (unexported)
// domNode referenced by ssa/lift.go's domFrontier.build.
type domNode struct {
	Block    *ir.BasicBlock
	Idom     *domNode
	Children []*domNode
}

// DomTree is the dominator tree for one function's block graph, plus its
// dominance frontier, both indexed by ir.BasicBlock.Index.
type DomTree struct {
	nodes    []*domNode // nodes[i] is the domNode for fd.Blocks with Index i
	frontier [][]*ir.BasicBlock
}

// Idom returns b's immediate dominator, or nil for the entry block.
func (t *DomTree) Idom(b *ir.BasicBlock) *ir.BasicBlock {
	n := t.nodes[b.Index]
	if n.Idom == nil {
		return nil
	}
	return n.Idom.Block
}

// Frontier returns b's dominance frontier.
func (t *DomTree) Frontier(b *ir.BasicBlock) []*ir.BasicBlock {
	return t.frontier[b.Index]
}

// Children returns the blocks immediately dominated by b.
func (t *DomTree) Children(b *ir.BasicBlock) []*ir.BasicBlock {
	n := t.nodes[b.Index]
	out := make([]*ir.BasicBlock, len(n.Children))
	for i, c := range n.Children {
		out[i] = c.Block
	}
	return out
}

// Build computes the dominator tree (Cooper, Harvey, Kennedy 2001 "A
// Simple, Fast Dominance Algorithm", the same algorithm ssa/lift.go's
// doc comment points to as superior to Cytron et al. for this step) and
// then the dominance frontier (Cytron et al. 1991, via the postorder
// domFrontier.build walk ssa/lift.go implements), for fd's current block
// graph. Precondition: fd has no unreachable blocks reachable only by a
// dead predecessor list (the caller is expected to have pruned those, as
// ssa/lift.go requires "fn has no dead blocks").
func Build(fd *ir.Funcdata) *DomTree {
	blocks := fd.Blocks
	n := len(blocks)
	nodes := make([]*domNode, n)
	for i, b := range blocks {
		nodes[i] = &domNode{Block: b}
	}

	postorder := computePostorder(blocks)
	rpoNumber := make([]int, n)
	for i, b := range postorder {
		rpoNumber[b.Index] = len(postorder) - 1 - i
	}

	idom := make([]int, n)
	for i := range idom {
		idom[i] = -1
	}
	entry := blocks[0].Index
	idom[entry] = entry

	changed := true
	for changed {
		changed = false
		for i := len(postorder) - 1; i >= 0; i-- {
			b := postorder[i]
			if b.Index == entry {
				continue
			}
			newIdom := -1
			for _, p := range b.Preds {
				if idom[p.Index] == -1 {
					continue
				}
				if newIdom == -1 {
					newIdom = p.Index
					continue
				}
				newIdom = intersect(idom, rpoNumber, newIdom, p.Index)
			}
			if newIdom != -1 && idom[b.Index] != newIdom {
				idom[b.Index] = newIdom
				changed = true
			}
		}
	}

	for _, b := range blocks {
		if b.Index == entry || idom[b.Index] == -1 {
			continue
		}
		parent := nodes[idom[b.Index]]
		nodes[b.Index].Idom = parent
		parent.Children = append(parent.Children, nodes[b.Index])
	}

	t := &DomTree{nodes: nodes, frontier: make([][]*ir.BasicBlock, n)}
	buildFrontier(t, nodes[entry])
	return t
}

func intersect(idom, rpo []int, a, b int) int {
	for a != b {
		for rpo[a] > rpo[b] {
			a = idom[a]
		}
		for rpo[b] > rpo[a] {
			b = idom[b]
		}
	}
	return a
}

func computePostorder(blocks []*ir.BasicBlock) []*ir.BasicBlock {
	visited := make([]bool, len(blocks))
	var order []*ir.BasicBlock
	var visit func(b *ir.BasicBlock)
	visit = func(b *ir.BasicBlock) {
		if visited[b.Index] {
			return
		}
		visited[b.Index] = true
		for _, s := range b.Succs {
			visit(s)
		}
		order = append(order, b)
	}
	visit(blocks[0])
	return order
}

// buildFrontier is the postorder dom-tree walk from ssa/lift.go's
// domFrontier.build, generalized to operate over *domNode/ir.BasicBlock
// instead of ssa's Function/BasicBlock.
func buildFrontier(t *DomTree, u *domNode) {
	for _, child := range u.Children {
		buildFrontier(t, child)
	}
	for _, vb := range u.Block.Succs {
		if v := t.nodes[vb.Index]; v.Idom != u {
			t.frontier[u.Block.Index] = append(t.frontier[u.Block.Index], vb)
		}
	}
	for _, w := range u.Children {
		for _, vb := range t.frontier[w.Block.Index] {
			if v := t.nodes[vb.Index]; v.Idom != u {
				t.frontier[u.Block.Index] = append(t.frontier[u.Block.Index], vb)
			}
		}
	}
}
