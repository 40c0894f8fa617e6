// Package analysis implements the engine's expression-analysis helpers
// (spec.md §4.3): BooleanMatch, TermOrder/AddExpression, functional
// equality, and ParamMeasure. These all work directly off the ir package's
// Varnode/PcodeOp def-use graph; none of them mutate it.
package analysis

import "github.com/tsgates/decompiler-sub010/ir"

// Relation is the three-way result of BooleanMatch: two boolean-valued
// expressions either always agree, always disagree, or neither was
// provable within the configured recursion depth.
type Relation int

const (
	Uncorrelated Relation = iota
	Same
	Complementary
)

func flip(r Relation) Relation {
	switch r {
	case Same:
		return Complementary
	case Complementary:
		return Same
	default:
		return Uncorrelated
	}
}

// BooleanMatch decides whether two boolean-valued Varnodes always produce
// the same value, always produce opposite values, or neither is provable —
// by recursive descent through BOOL_NEGATE, BOOL_AND/OR/XOR (with De Morgan
// cross-matching and commutative retry), and the INT_LESS/INT_SLESS
// complementary-pair identity, to at most maxDepth levels.
func BooleanMatch(a, b *ir.Varnode, maxDepth int) Relation {
	if a == b {
		return Same
	}

	// BOOL_NEGATE unwraps on either side even when the other side is a
	// leaf (Def == nil, e.g. a plain parameter or memory read — the
	// overwhelmingly common shape for the non-negated operand) and even
	// once maxDepth is exhausted, since peeling a NEGATE costs nothing
	// beyond the a==b check the unwrapped recursive call starts with.
	// This must be checked before both the depth cutoff and the joint
	// nil-Def bailout below.
	if a.Def != nil && a.Def.Opcode == ir.BOOL_NEGATE {
		return flip(BooleanMatch(a.Def.Input[0], b, maxDepth-1))
	}
	if b.Def != nil && b.Def.Opcode == ir.BOOL_NEGATE {
		return flip(BooleanMatch(a, b.Def.Input[0], maxDepth-1))
	}
	if maxDepth <= 0 || a.Def == nil || b.Def == nil {
		return Uncorrelated
	}
	opA, opB := a.Def.Opcode, b.Def.Opcode

	if opA == ir.INT_EQUAL && opB == ir.INT_NOTEQUAL || opA == ir.INT_NOTEQUAL && opB == ir.INT_EQUAL {
		if samePairUnordered(a.Def, b.Def) {
			return Complementary
		}
		return Uncorrelated
	}
	if opA == opB && (opA == ir.INT_EQUAL || opA == ir.INT_NOTEQUAL) {
		if samePairUnordered(a.Def, b.Def) {
			return Same
		}
		return Uncorrelated
	}

	if (opA == ir.INT_LESS && opB == ir.INT_LESS) || (opA == ir.INT_SLESS && opB == ir.INT_SLESS) {
		return lessComplementary(a.Def, b.Def, opA == ir.INT_SLESS)
	}

	if isBoolBinary(opA) && isBoolBinary(opB) {
		return booleanCombine(a.Def, b.Def, maxDepth)
	}

	return Uncorrelated
}

func isBoolBinary(op ir.Opcode) bool {
	return op == ir.BOOL_AND || op == ir.BOOL_OR || op == ir.BOOL_XOR
}

// samePairUnordered reports whether two binary ops have the same operand
// pair, in either order (both INT_EQUAL and INT_NOTEQUAL are commutative).
func samePairUnordered(a, b *ir.PcodeOp) bool {
	if len(a.Input) != 2 || len(b.Input) != 2 {
		return false
	}
	direct := a.Input[0] == b.Input[0] && a.Input[1] == b.Input[1]
	swapped := a.Input[0] == b.Input[1] && a.Input[1] == b.Input[0]
	return direct || swapped
}

// lessComplementary implements the INT_LESS/INT_SLESS complementary-pair
// identity x < k  <=>  NOT(k-1 < x) for a constant k, with the two
// comparisons in either order. The identity breaks where k-1 wraps (k == 0
// for unsigned INT_LESS, k == the sign bit for signed INT_SLESS), so those
// pairs are Uncorrelated. Two comparisons without such constants (x<y vs
// y<x) are Uncorrelated too: both are false when x == y.
func lessComplementary(a, b *ir.PcodeOp, signed bool) Relation {
	if len(a.Input) != 2 || len(b.Input) != 2 {
		return Uncorrelated
	}
	for _, p := range [][2]*ir.PcodeOp{{a, b}, {b, a}} {
		x, k, c := p[0].Input[0], p[0].Input[1], p[1].Input[0]
		if p[1].Input[1] != x || !k.IsConstant() || !c.IsConstant() || boundaryConstant(k, signed) {
			continue
		}
		mask := ^uint64(0)
		if k.Size > 0 && k.Size < 8 {
			mask = uint64(1)<<uint(k.Size*8) - 1
		}
		if (k.Value()-1)&mask == c.Value()&mask {
			return Complementary
		}
	}
	return Uncorrelated
}

func boundaryConstant(v *ir.Varnode, signed bool) bool {
	if !v.IsConstant() {
		return false
	}
	if !signed {
		return v.Value() == 0
	}
	if v.Size <= 0 || v.Size > 8 {
		return false
	}
	signBit := uint64(1) << uint(v.Size*8-1)
	return v.Value() == signBit
}

// booleanCombine matches two BOOL_AND/OR/XOR trees operand-wise, trying
// both the direct and the commutative-swapped pairing, and combining the
// resulting pairwise relations per the boolean identity that connects
// opA and opB (same op: AND/OR distribute Same only when both pairs
// agree; XOR flips on an odd number of complementary pairs; AND vs OR
// cross-matches via De Morgan when both pairs are complementary).
func booleanCombine(a, b *ir.PcodeOp, maxDepth int) Relation {
	if len(a.Input) != 2 || len(b.Input) != 2 {
		return Uncorrelated
	}
	direct := combinePairing(a.Opcode, b.Opcode,
		BooleanMatch(a.Input[0], b.Input[0], maxDepth-1),
		BooleanMatch(a.Input[1], b.Input[1], maxDepth-1))
	if direct != Uncorrelated {
		return direct
	}
	return combinePairing(a.Opcode, b.Opcode,
		BooleanMatch(a.Input[0], b.Input[1], maxDepth-1),
		BooleanMatch(a.Input[1], b.Input[0], maxDepth-1))
}

func combinePairing(opA, opB ir.Opcode, r0, r1 Relation) Relation {
	if r0 == Uncorrelated || r1 == Uncorrelated {
		return Uncorrelated
	}
	switch {
	case opA == opB && opA == ir.BOOL_XOR:
		// XOR(a,b) vs XOR(c,d): Same if both pairs match the same way
		// (both Same or both Complementary, the flips cancel); Complementary
		// if exactly one pair is flipped.
		if r0 == r1 {
			return Same
		}
		return Complementary
	case opA == opB:
		// AND vs AND, OR vs OR: only a fully matching pairing is provable.
		if r0 == Same && r1 == Same {
			return Same
		}
		return Uncorrelated
	case (opA == ir.BOOL_AND && opB == ir.BOOL_OR) || (opA == ir.BOOL_OR && opB == ir.BOOL_AND):
		// De Morgan: NOT(AND(a,b)) == OR(NOT a, NOT b).
		if r0 == Complementary && r1 == Complementary {
			return Complementary
		}
		return Uncorrelated
	default:
		return Uncorrelated
	}
}
