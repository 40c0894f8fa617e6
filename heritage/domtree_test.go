package heritage

import (
	"testing"

	"github.com/tsgates/decompiler-sub010/ir"
)

// diamond builds: entry -> (left, right) -> join, the textbook case for
// dominance-frontier phi placement.
func diamond() (*ir.Funcdata, *ir.BasicBlock, *ir.BasicBlock, *ir.BasicBlock, *ir.BasicBlock) {
	sp := &ir.Space{Index: 0, Name: "ram", Kind: ir.Ram, Heritaged: true, Delay: 0}
	fd := ir.NewFuncdata("f", ir.NewAddress(sp, 0))
	entry := fd.Blocks[0]
	left := fd.AddBlock()
	right := fd.AddBlock()
	join := fd.AddBlock()
	fd.AddEdge(entry, left, false)
	fd.AddEdge(entry, right, false)
	fd.AddEdge(left, join, false)
	fd.AddEdge(right, join, false)
	return fd, entry, left, right, join
}

func TestDomTreeDiamond(t *testing.T) {
	fd, entry, left, right, join := diamond()
	tree := Build(fd)

	if tree.Idom(left) != entry || tree.Idom(right) != entry {
		t.Fatalf("expected entry to dominate both branches")
	}
	if tree.Idom(join) != entry {
		t.Fatalf("expected entry to dominate the join block (neither branch alone does)")
	}
	df := tree.Frontier(left)
	if len(df) != 1 || df[0] != join {
		t.Fatalf("expected left's dominance frontier to be exactly {join}, got %v", df)
	}
}
