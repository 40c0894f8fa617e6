package action

import "github.com/tsgates/decompiler-sub010/ir"

// PrimitiveFunc is a whole-function transformation, invoked once per sweep
// of the containing Group.
type PrimitiveFunc func(fd *ir.Funcdata) (int, error)

// Primitive is a whole-function Action (§4.2 "(c) a Primitive"), used for
// transformations that don't decompose into a per-opcode Rule. Heritage
// and Merge (§4.1) are whole-function passes of this kind, but they are
// wired in through their own Action types (heritage.NewHeritagePrimitive,
// heritage.NewMergePrimitive), not through Primitive.
type Primitive struct {
	name   string
	reads  Region
	writes Region
	apply  PrimitiveFunc

	count int
}

func NewPrimitive(name string, reads, writes Region, apply PrimitiveFunc) *Primitive {
	return &Primitive{name: name, reads: reads, writes: writes, apply: apply}
}

func (p *Primitive) Name() string   { return p.name }
func (p *Primitive) Reads() Region  { return p.reads }
func (p *Primitive) Writes() Region { return p.writes }
func (p *Primitive) Count() int     { return p.count }

func (p *Primitive) Reset() { p.count = 0 }

func (p *Primitive) Perform(fd *ir.Funcdata) (int, error) {
	n, err := p.apply(fd)
	if err != nil {
		return n, err
	}
	p.count += n
	return n, nil
}

func (p *Primitive) Clone() Action {
	return &Primitive{name: p.name, reads: p.reads, writes: p.writes, apply: p.apply}
}
