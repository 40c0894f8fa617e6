package analysis

import "github.com/tsgates/decompiler-sub010/ir"

// FunctionalEqualityLevel reports how a and b compare structurally at this
// one level: 0 means already proven equal (identical varnode, or equal
// constants); -1 means never equal (mismatched opcode, arity, or one side
// has no defining op while the other isn't a matching constant); a
// positive k means equal IS still possible, contingent on k further
// operand pairs each independently comparing equal — the caller is
// expected to recurse into those pairs itself (this function does one
// level of the comparison, not the full tree).
//
// Two LOADs compare as a k=len(inputs) contingent match purely on their
// address operands; this is a documented approximation that ignores
// whether an intervening STORE could have aliased the loaded location, so
// it can report a higher level of confidence than is strictly sound.
func FunctionalEqualityLevel(a, b *ir.Varnode) int {
	if a == b {
		return 0
	}
	if a.IsConstant() && b.IsConstant() {
		if a.Size == b.Size && a.Value() == b.Value() {
			return 0
		}
		return -1
	}
	if a.Def == nil || b.Def == nil {
		return -1
	}
	if a.Def.Opcode != b.Def.Opcode {
		return -1
	}
	if len(a.Def.Input) != len(b.Def.Input) {
		return -1
	}
	return len(a.Def.Input)
}

// FunctionalEqual fully resolves functional equality by recursively
// applying FunctionalEqualityLevel to every contingent operand pair, up to
// maxDepth levels, retrying the commutative-swapped pairing when the
// top-level opcode is commutative.
func FunctionalEqual(a, b *ir.Varnode, maxDepth int) bool {
	lvl := FunctionalEqualityLevel(a, b)
	if lvl == 0 {
		return true
	}
	if lvl < 0 || maxDepth <= 0 {
		return false
	}
	ai, bi := a.Def.Input, b.Def.Input
	if a.Def.Opcode.IsCommutative() && len(ai) == 2 {
		direct := FunctionalEqual(ai[0], bi[0], maxDepth-1) && FunctionalEqual(ai[1], bi[1], maxDepth-1)
		swapped := FunctionalEqual(ai[0], bi[1], maxDepth-1) && FunctionalEqual(ai[1], bi[0], maxDepth-1)
		return direct || swapped
	}
	for i := range ai {
		if !FunctionalEqual(ai[i], bi[i], maxDepth-1) {
			return false
		}
	}
	return true
}
