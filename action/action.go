package action

import (
	"github.com/tsgates/decompiler-sub010/ir"
)

// Action is the common interface of Group, Rule, and Primitive (spec.md
// §4.2 "An Action is either (a) a Group ... (b) a Rule ... or (c) a
// Primitive"). The three are a closed, tag-dispatched sum type (DESIGN
// NOTES "Sum-type dispatch") rather than a deep class hierarchy: each
// variant carries its own apply logic as a plain function value, and
// Action itself exposes only the operations every variant must support.
type Action interface {
	// Name identifies the action for logging and error messages.
	Name() string
	// Reads and Writes are the closed declared region sets (§4.2).
	Reads() Region
	Writes() Region
	// Reset recursively clears status/count/state-index (§4.2 "reset").
	Reset()
	// Perform dispatches the action once (a Group sweeps its children to
	// a fixed point internally; a Rule/Primitive applies once). It
	// returns the number of changes made, or an error if the action
	// signals a structural failure (the idiomatic-Go replacement for the
	// "negative return value" sentinel spec.md describes; Go already has
	// a native error channel, so no sentinel encoding is needed).
	Perform(fd *ir.Funcdata) (int, error)
	// Clone returns a structurally independent copy: every Group, Rule
	// and Primitive is deep-copied, but opLists and declared region sets
	// are shared by reference since they are immutable (DESIGN NOTES
	// "Clone semantics for action trees"). Clones share no mutable
	// status/count fields with the original.
	Clone() Action
}
