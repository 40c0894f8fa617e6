package heritage

import (
	"github.com/tsgates/decompiler-sub010/action"
	"github.com/tsgates/decompiler-sub010/ir"
)

// heritagePrimitive adapts Heritage into an action.Action: each Perform
// call runs one heritage pass over spaces at this primitive's own pass
// counter, advancing it afterwards, so a Group sweeping to a fixed point
// drives the "passes repeat until the heritaged space is past its delay
// and no new live ranges appear" rule of §4.1 one real Heritage call at a
// time. Reset returns the counter to 0 for the next job.
type heritagePrimitive struct {
	spaces []*ir.Space
	pass   int
}

// NewHeritagePrimitive wires Heritage into the action pipeline as a
// Primitive over PcodeOps|Varnodes|Blocks|SSA (§4.1).
func NewHeritagePrimitive(spaces []*ir.Space) action.Action {
	return &heritagePrimitive{spaces: spaces}
}

func (h *heritagePrimitive) Name() string  { return "heritage" }
func (h *heritagePrimitive) Reads() action.Region {
	return action.PcodeOps | action.Varnodes | action.Blocks
}
func (h *heritagePrimitive) Writes() action.Region {
	return action.SSA | action.PcodeOps | action.Varnodes
}
func (h *heritagePrimitive) Reset() { h.pass = 0 }

func (h *heritagePrimitive) Perform(fd *ir.Funcdata) (int, error) {
	n := Heritage(fd, h.spaces, h.pass)
	h.pass++
	return n, nil
}

func (h *heritagePrimitive) Clone() action.Action {
	return &heritagePrimitive{spaces: h.spaces}
}

// mergePrimitive adapts Merge into an action.Action. Merge is a one-shot
// pass over the final SSA form rather than a repeatable rewrite, so this
// wrapper runs it exactly once per job and reports zero changes on every
// sweep after, letting its containing Group settle immediately.
type mergePrimitive struct {
	done bool
}

// NewMergePrimitive wires Merge into the action pipeline as a Primitive
// over SSA|Varnodes|HighVariables (§4.1).
func NewMergePrimitive() action.Action {
	return &mergePrimitive{}
}

func (m *mergePrimitive) Name() string  { return "merge" }
func (m *mergePrimitive) Reads() action.Region { return action.SSA | action.Varnodes }
func (m *mergePrimitive) Writes() action.Region { return action.HighVariables }
func (m *mergePrimitive) Reset() { m.done = false }

func (m *mergePrimitive) Perform(fd *ir.Funcdata) (int, error) {
	if m.done {
		return 0, nil
	}
	Merge(fd)
	m.done = true
	return 1, nil
}

func (m *mergePrimitive) Clone() action.Action {
	return &mergePrimitive{}
}
