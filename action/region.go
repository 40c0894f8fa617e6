// Package action implements the rule-rewrite action pipeline (spec.md
// §4.2): a tree of Groups containing Rules and Primitives, each declaring
// the Funcdata regions it reads/writes, run to a fixed point.
//
// Grounded on the teacher's go/types checker (go/types/check.go), whose
// "checker" struct dispatches a fixed sequence of passes over one
// compilation unit with accumulated mutable state (methods, untyped,
// funclist) — the same shape as an Action tree's per-job mutable
// status/count/state fields dispatched over one Funcdata. Where the
// teacher's dispatch is a straight-line sequence of method calls, this
// package generalizes it into the tree-of-Groups/fixed-point-iteration
// model spec.md §4.2 requires, including the dependency-scheduled
// parallel variant (§4.2 "Dependency scheduling").
package action

// Region is one closed bit of Funcdata state an Action may read or write.
// The enumeration is closed and exhaustive (spec.md §4.2): every Action
// declares a subset of exactly these.
type Region uint16

const (
	Types Region = 1 << iota
	Symbols
	PcodeOps
	Varnodes
	SSA
	Blocks
	Casts
	Constants
	Calls
	Flow
	HighVariables
)

// AllRegions is the union of every declared region, useful for an Action
// (typically a coarse Primitive) that conservatively reads/writes
// everything.
const AllRegions = Types | Symbols | PcodeOps | Varnodes | SSA | Blocks | Casts | Constants | Calls | Flow | HighVariables

// Overlaps reports whether r and o share any region.
func (r Region) Overlaps(o Region) bool { return r&o != 0 }
