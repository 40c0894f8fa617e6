package heritage

import "github.com/tsgates/decompiler-sub010/ir"

// unionFind is a minimal disjoint-set over Varnode ids, used to collect the
// equivalence classes Merge will turn into HighVariables.
type unionFind struct{ parent map[int]int }

func newUnionFind() *unionFind { return &unionFind{parent: make(map[int]int)} }

func (u *unionFind) find(x int) int {
	p, ok := u.parent[x]
	if !ok {
		u.parent[x] = x
		return x
	}
	if p != x {
		p = u.find(p)
		u.parent[x] = p
	}
	return p
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// Merge groups SSA Varnodes into HighVariables (§4.1 "Merge"):
//
//   - address-tied merging: Varnodes flagged VarAddrTied at the same
//     address/size are unioned regardless of SSA version, modeling storage
//     (e.g. a persistent global) whose identity outlives any one
//     definition;
//   - copy-chain propagation: a COPY's output is unioned with its input,
//     so a chain of copies collapses to one HighVariable;
//   - partial-overlap (piece) unification: a SUBPIECE's output gets its
//     own HighVariable but records Piece pointing at the source's; a
//     PIECE's output similarly records Piece pointing at its high-half
//     input's HighVariable and PieceLow pointing at its low-half input's.
//
// Invariants upheld: no HighVariable contains two conflicting live
// instances at the same program point (guaranteed here because SSA
// renaming already gives every live instance a distinct Varnode, and
// union-find only ever merges across distinct Varnodes, never collapses
// two instances into one storage slot); a Varnode belongs to at most one
// HighVariable (enforced by Funcdata.MergeInto's panic on conflict).
func Merge(fd *ir.Funcdata) {
	all := collectVarnodes(fd)
	uf := newUnionFind()
	for _, v := range all {
		uf.find(v.ID()) // seed every varnode as its own class
	}

	addrTied := make(map[rangeKey][]*ir.Varnode)
	pieces := make(map[int]*ir.Varnode)    // output id -> source (SUBPIECE) / high-half source (PIECE)
	piecesLow := make(map[int]*ir.Varnode) // output id -> low-half source, PIECE only

	for _, op := range fd.LiveOps() {
		out := op.Output
		switch op.Opcode {
		case ir.COPY:
			if out != nil && len(op.Input) == 1 && op.Input[0] != nil {
				uf.union(out.ID(), op.Input[0].ID())
			}
		case ir.SUBPIECE:
			if out != nil && len(op.Input) >= 1 && op.Input[0] != nil {
				pieces[out.ID()] = op.Input[0]
			}
		case ir.PIECE:
			if out != nil && len(op.Input) >= 1 && op.Input[0] != nil {
				pieces[out.ID()] = op.Input[0]
			}
			if out != nil && len(op.Input) >= 2 && op.Input[1] != nil {
				piecesLow[out.ID()] = op.Input[1]
			}
		}
		if out != nil && out.Flags&ir.VarAddrTied != 0 {
			k := rangeKey{Addr: out.Addr, Size: out.Size}
			addrTied[k] = append(addrTied[k], out)
		}
	}
	for _, group := range addrTied {
		for i := 1; i < len(group); i++ {
			uf.union(group[0].ID(), group[i].ID())
		}
	}

	byRoot := make(map[int][]*ir.Varnode)
	for _, v := range all {
		r := uf.find(v.ID())
		byRoot[r] = append(byRoot[r], v)
	}

	highByVarnode := make(map[int]*ir.HighVariable)
	for _, group := range byRoot {
		h := fd.NewHighVariable()
		for _, v := range group {
			fd.MergeInto(h, v)
			highByVarnode[v.ID()] = h
		}
	}

	for outID, src := range pieces {
		child, sourceOK := highByVarnode[outID]
		parent, parentOK := highByVarnode[src.ID()]
		if sourceOK && parentOK && child != parent {
			child.Piece = parent
			child.Storage = ir.StoragePiece
		}
	}
	for outID, src := range piecesLow {
		child, sourceOK := highByVarnode[outID]
		parent, parentOK := highByVarnode[src.ID()]
		if sourceOK && parentOK && child != parent {
			child.PieceLow = parent
		}
	}

	for k := range addrTied {
		for _, v := range addrTied[k] {
			if h := highByVarnode[v.ID()]; h != nil {
				h.Storage = ir.StorageAddrTied
			}
		}
	}
}

func collectVarnodes(fd *ir.Funcdata) []*ir.Varnode {
	var out []*ir.Varnode
	seen := make(map[int]bool)
	add := func(v *ir.Varnode) {
		if v != nil && !seen[v.ID()] {
			seen[v.ID()] = true
			out = append(out, v)
		}
	}
	for _, op := range fd.LiveOps() {
		add(op.Output)
		for _, in := range op.Input {
			add(in)
		}
	}
	return out
}
