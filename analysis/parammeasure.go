package analysis

import "github.com/tsgates/decompiler-sub010/ir"

// Rank is a ParamMeasure classification: how strongly a Varnode's uses
// suggest it is a genuine incoming parameter. BestRank is the strongest
// evidence, WorstRank the weakest/no evidence at all.
type Rank int

const (
	BestRank  Rank = 1
	WorstRank Rank = 7
)

// The rank enum, in spec.md §4.3's exact naming. Per §9 open question (b),
// DirectRead and DirectWriteWithRead deliberately share the numeric value
// 2 — the forward walk below never needs to distinguish "read directly"
// from "written, but that write is itself later read" as a separate case,
// so the tie is preserved rather than resolved.
const (
	SubfnParam             Rank = 1
	DirectRead             Rank = 2
	DirectWriteWithRead     Rank = 2
	ThisFnReturn            Rank = 3
	SubfnReturn             Rank = 4
	ThisFnParam             Rank = 5
	DirectWriteUnknownRead  Rank = 6
	DirectWriteWithoutRead  Rank = 7
	Indirect                Rank = 7
)

// maxWalkDepth caps ParamMeasure's forward walk through MULTIEQUAL chains,
// matching spec.md §4.3's stated depth cap.
const maxWalkDepth = 10

// Measure walks forward from v through its descendants (the uses of this
// storage location) and returns the best (lowest-numbered) Rank any use
// supports. A Varnode with no descendants at all is a write nobody reads:
// DirectWriteWithoutRead, the weakest possible evidence of being a real
// parameter.
func Measure(v *ir.Varnode) Rank {
	return measure(v, 0)
}

func measure(v *ir.Varnode, depth int) Rank {
	if depth >= maxWalkDepth {
		return DirectWriteUnknownRead
	}
	descs := v.Descendants()
	if len(descs) == 0 {
		return DirectWriteWithoutRead
	}

	best := Rank(WorstRank + 1)
	for _, d := range descs {
		op := d.Op
		var r Rank
		switch {
		case op.Opcode == ir.MULTIEQUAL:
			// Loop-in-slot skip: a phi's loop-carried input doesn't tell us
			// anything about whether the original value was used as a
			// parameter, so don't walk through it.
			if op.Block() != nil && d.Slot < len(op.Block().LoopIn) && op.Block().LoopIn[d.Slot] {
				continue
			}
			r = measure(op.Output, depth+1)
		case op.Opcode.IsCall():
			r = SubfnParam
		case op.Opcode == ir.RETURN:
			r = ThisFnReturn
		default:
			r = DirectRead
		}
		if r < best {
			best = r
		}
	}
	if best > WorstRank {
		return DirectWriteUnknownRead
	}
	return best
}
