package action

import "github.com/tsgates/decompiler-sub010/ir"

// RuleFunc applies a Rule to a single live op, returning the number of
// changes made (0 if the op didn't match the rule's preconditions).
type RuleFunc func(fd *ir.Funcdata, op *ir.PcodeOp) (int, error)

// Rule applies to a declared set of opcodes at individual ops (§4.2). It
// is invoked once per live op in the Funcdata whose opcode is in opList,
// per sweep.
type Rule struct {
	name   string
	opList []ir.Opcode // immutable once constructed; shared across clones
	reads  Region
	writes Region
	apply  RuleFunc

	count int // total changes made across this job's lifetime
}

// NewRule constructs a Rule. opList, reads and writes are treated as
// immutable for the lifetime of the Rule and all its clones.
func NewRule(name string, opList []ir.Opcode, reads, writes Region, apply RuleFunc) *Rule {
	return &Rule{name: name, opList: opList, reads: reads, writes: writes, apply: apply}
}

func (r *Rule) Name() string   { return r.name }
func (r *Rule) Reads() Region  { return r.reads }
func (r *Rule) Writes() Region { return r.writes }
func (r *Rule) Count() int     { return r.count }

func (r *Rule) Reset() { r.count = 0 }

func (r *Rule) matches(op ir.Opcode) bool {
	for _, o := range r.opList {
		if o == op {
			return true
		}
	}
	return false
}

// Perform invokes apply once for every live op whose opcode is in opList,
// summing the change count.
func (r *Rule) Perform(fd *ir.Funcdata) (int, error) {
	total := 0
	for _, op := range fd.LiveOps() {
		if op.IsDead() || !r.matches(op.Opcode) {
			continue
		}
		n, err := r.apply(fd, op)
		if err != nil {
			return total, err
		}
		total += n
	}
	r.count += total
	return total, nil
}

// Clone returns a Rule sharing opList/reads/writes/apply by reference but
// with fresh (zeroed) mutable state.
func (r *Rule) Clone() Action {
	return &Rule{name: r.name, opList: r.opList, reads: r.reads, writes: r.writes, apply: r.apply}
}
