package action

import "github.com/tsgates/decompiler-sub010/ir"

// DefaultGroupBudget bounds the number of sweeps a Group will run before
// giving up even if it hasn't yet seen two consecutive zero-change sweeps
// (§4.2 "... or a per-Group budget is hit"), guarding against a
// non-terminating rule interaction.
const DefaultGroupBudget = 10000

// Group is an ordered container of child Actions (§4.2 "(a) a Group"). It
// sweeps its children repeatedly until a full sweep yields zero changes in
// two consecutive rounds (stability), or its budget is exhausted.
type Group struct {
	name     string
	children []Action
	budget   int

	sweeps int // number of sweeps run this job, for diagnostics
}

// NewGroup constructs a Group with DefaultGroupBudget. Use WithBudget to
// override.
func NewGroup(name string, children ...Action) *Group {
	return &Group{name: name, children: children, budget: DefaultGroupBudget}
}

// WithBudget overrides the sweep budget and returns g for chaining.
func (g *Group) WithBudget(n int) *Group {
	g.budget = n
	return g
}

func (g *Group) Name() string { return g.name }

// Reads/Writes is the union of every child's declared regions — a Group's
// own footprint is derived, not independently declared.
func (g *Group) Reads() Region {
	var r Region
	for _, c := range g.children {
		r |= c.Reads()
	}
	return r
}

func (g *Group) Writes() Region {
	var w Region
	for _, c := range g.children {
		w |= c.Writes()
	}
	return w
}

func (g *Group) Children() []Action { return g.children }

func (g *Group) Reset() {
	g.sweeps = 0
	for _, c := range g.children {
		c.Reset()
	}
}

// Perform sweeps the children in order, repeating until two consecutive
// sweeps both report zero changes (stable) or the budget is hit. The
// aggregate change count across every sweep is returned.
func (g *Group) Perform(fd *ir.Funcdata) (int, error) {
	aggregate := 0
	consecutiveZero := 0
	for g.sweeps < g.budget {
		sweepTotal := 0
		for _, c := range g.children {
			n, err := c.Perform(fd)
			if err != nil {
				return aggregate, err
			}
			sweepTotal += n
		}
		g.sweeps++
		aggregate += sweepTotal
		if sweepTotal == 0 {
			consecutiveZero++
			if consecutiveZero >= 2 {
				break
			}
		} else {
			consecutiveZero = 0
		}
	}
	return aggregate, nil
}

// Clone deep-copies the Group and every descendant; opList/region
// declarations on leaves remain shared by reference (DESIGN NOTES "Clone
// semantics for action trees").
func (g *Group) Clone() Action {
	children := make([]Action, len(g.children))
	for i, c := range g.children {
		children[i] = c.Clone()
	}
	return &Group{name: g.name, children: children, budget: g.budget}
}
