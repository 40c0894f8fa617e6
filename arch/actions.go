package arch

import (
	"github.com/tsgates/decompiler-sub010/action"
	"github.com/tsgates/decompiler-sub010/heritage"
	"github.com/tsgates/decompiler-sub010/ir"
)

// DefaultActionTree builds the standard root action tree spec.md §2
// describes: an "ssaform" Group that sweeps Heritage to a fixed point
// (new live ranges keep appearing until every heritaged space is past its
// delay), followed by a one-shot Merge pass that groups the resulting SSA
// Varnodes into HighVariables. This is the tree New's caller is expected
// to pass as AllActions for a real Architecture; a caller wanting a
// different rule set can still construct its own Group directly.
func DefaultActionTree(spaces []*ir.Space) *action.Group {
	ssaform := action.NewGroup("ssaform", heritage.NewHeritagePrimitive(spaces))
	return action.NewGroup("root", ssaform, heritage.NewMergePrimitive())
}
