package ir

import "sort"

// CallSpec is the minimal call-site record Funcdata keeps: which op is the
// call, and (once known) which storage locations the callee may kill. The
// full prototype/ABI model is out of scope (§1); this is just enough for
// Heritage's call-guarding step (§4.1) and parameter ranking (§4.3) to have
// somewhere to look.
type CallSpec struct {
	Call        *PcodeOp
	KillsUnknown bool // true until a prototype narrows the kill set
}

// FuncProto is a placeholder for the function's prototype/signature. Its
// real home (a prototype database keyed by ABI) is out of scope (§6); this
// struct exists so stdproto.Apply (§12) has a concrete attach point.
type FuncProto struct {
	ReturnKind string
	ParamKinds []string
	Varargs    bool
	NoReturn   bool
}

// CommentSink is the narrow interface a Funcdata needs to let an Action
// emit comments during a pass (spec.md §4.2 actions may annotate what they
// change). Both comment.Database and comment.Buffered implement it without
// this package importing comment, which in turn imports this one for
// Address: the shared TypeMask type is a uint32 alias precisely so the
// method signatures line up without either side needing the other's named
// type.
type CommentSink interface {
	Emit(typ uint32, funcAddr, addr Address, text string)
	EmitNoDuplicate(typ uint32, funcAddr, addr Address, text string) bool
}

// Funcdata is the whole per-function analysis state: the live op set, the
// block graph, the location-keyed Varnode index, call-site records, the
// prototype, and the scratch bookkeeping each action/pass uses.
type Funcdata struct {
	Name  string
	Entry Address

	Blocks []*BasicBlock

	CallSpecs []*CallSpec
	Proto     *FuncProto

	// Comments is nil by default; the driver attaches one (spec.md §4.5)
	// before running a function's action tree so rules can annotate it.
	Comments CommentSink

	nextID    int
	nextOrder int
	nextTime  int

	liveOps  map[int]*PcodeOp
	varBank  map[vnKey]*Varnode // free/input varnodes keyed by (addr,size)
	allVars  map[int]*Varnode
	highVars []*HighVariable

	Aborted bool
}

type vnKey struct {
	space *Space
	off   uint64
	ext   extreme
	size  int
}

func vnKeyOf(addr Address, size int) vnKey {
	return vnKey{space: addr.space, off: addr.offset, ext: addr.extreme, size: size}
}

// NewFuncdata creates an empty function with one entry block.
func NewFuncdata(name string, entry Address) *Funcdata {
	fd := &Funcdata{
		Name:    name,
		Entry:   entry,
		liveOps: make(map[int]*PcodeOp),
		varBank: make(map[vnKey]*Varnode),
		allVars: make(map[int]*Varnode),
	}
	fd.Blocks = []*BasicBlock{{Index: 0}}
	return fd
}

// Reset clears all scratch state but keeps Name/Entry, used between
// pipeline runs in tests; production use constructs a fresh Funcdata per
// function instead (§4.5).
func (fd *Funcdata) Reset() {
	*fd = *NewFuncdata(fd.Name, fd.Entry)
}

// --- block management ---

// AddBlock appends and returns a new basic block with the next stable
// index.
func (fd *Funcdata) AddBlock() *BasicBlock {
	b := &BasicBlock{Index: len(fd.Blocks)}
	fd.Blocks = append(fd.Blocks, b)
	return b
}

// AddEdge links pred -> succ, optionally marking it a loop-entry (back)
// edge into succ.
func (fd *Funcdata) AddEdge(pred, succ *BasicBlock, loopIn bool) {
	pred.Succs = append(pred.Succs, succ)
	succ.Preds = append(succ.Preds, pred)
	succ.LoopIn = append(succ.LoopIn, loopIn)
}

// --- op / varnode management ---

// NewOp allocates a new PcodeOp at addr within block, appended in
// caller-supplied order (callers building straight-line code append in
// address order; the action pipeline uses InsertSynthetic/time stamps instead).
func (fd *Funcdata) NewOp(opcode Opcode, addr Address, block *BasicBlock) *PcodeOp {
	fd.nextID++
	fd.nextOrder++
	op := &PcodeOp{
		id:     fd.nextID,
		Opcode: opcode,
		Seq:    SeqNum{Addr: addr, Order: fd.nextOrder},
		Parent: block,
	}
	block.Ops = append(block.Ops, op)
	fd.liveOps[op.id] = op
	return op
}

// InsertSynthetic allocates a new op stamped with a fresh Time so its
// SeqNum sorts after every op lifted at that address but keeps that
// address for placement purposes. Used by Heritage to insert MULTIEQUAL
// and INDIRECT placeholders (§4.1) and by the action pipeline for
// rewrites that synthesize new ops at an existing address.
func (fd *Funcdata) InsertSynthetic(opcode Opcode, addr Address, block *BasicBlock, at int) *PcodeOp {
	fd.nextID++
	fd.nextTime++
	op := &PcodeOp{
		id:     fd.nextID,
		Opcode: opcode,
		Seq:    SeqNum{Addr: addr, Time: fd.nextTime},
		Parent: block,
	}
	if at < 0 || at > len(block.Ops) {
		at = len(block.Ops)
	}
	block.Ops = append(block.Ops, nil)
	copy(block.Ops[at+1:], block.Ops[at:])
	block.Ops[at] = op
	fd.liveOps[op.id] = op
	return op
}

// NewUniqueVarnode creates a fresh Varnode at addr/size as op's output,
// marking it Written. Per the data-model invariant, a written Varnode's
// definition op has this Varnode as its output.
func (fd *Funcdata) NewUniqueVarnode(addr Address, size int, op *PcodeOp) *Varnode {
	fd.nextID++
	v := &Varnode{id: fd.nextID, Addr: addr, Size: size, Def: op, Flags: VarWritten}
	if addr.Space() != nil && addr.Space().Kind == Constant {
		v.Flags |= VarConstant
	}
	fd.allVars[v.id] = v
	op.Output = v
	return v
}

// RefVarnode looks up (or creates) the free/input Varnode at addr/size: the
// raw, pre-heritage storage reference shared by every op that reads that
// location before SSA renaming. Constant operands always get a fresh
// Varnode since the constant space's offset IS the value (no aliasing risk
// and no benefit to sharing).
func (fd *Funcdata) RefVarnode(addr Address, size int) *Varnode {
	if addr.Space() != nil && addr.Space().Kind == Constant {
		fd.nextID++
		v := &Varnode{id: fd.nextID, Addr: addr, Size: size, Flags: VarConstant | VarFree}
		fd.allVars[v.id] = v
		return v
	}
	key := vnKeyOf(addr, size)
	if v, ok := fd.varBank[key]; ok {
		return v
	}
	fd.nextID++
	v := &Varnode{id: fd.nextID, Addr: addr, Size: size, Flags: VarFree}
	fd.varBank[key] = v
	fd.allVars[v.id] = v
	return v
}

// MarkInput reclassifies a free Varnode as a function input (exactly one
// of {Input, Written, Free} holds afterward).
func (fd *Funcdata) MarkInput(v *Varnode) {
	v.Flags = (v.Flags &^ VarFree) | VarInput
}

// SetInput wires vn as op's input operand at slot, extending Input as
// needed and recording the use in vn's descendant list.
func (fd *Funcdata) SetInput(op *PcodeOp, slot int, vn *Varnode) {
	for len(op.Input) <= slot {
		op.Input = append(op.Input, nil)
	}
	if old := op.Input[slot]; old != nil {
		old.removeDescendant(Descendant{Op: op, Slot: slot})
	}
	op.Input[slot] = vn
	if vn != nil {
		vn.addDescendant(Descendant{Op: op, Slot: slot})
	}
}

// AppendInput appends vn as op's next input operand.
func (fd *Funcdata) AppendInput(op *PcodeOp, vn *Varnode) {
	fd.SetInput(op, len(op.Input), vn)
}

// RemoveOp marks op dead, unlinks it from its block and the live set, and
// clears its inputs' descendant records. The output Varnode, if any, is
// left in place (callers needing to retarget its uses first should call
// ReplaceAllUses).
func (fd *Funcdata) RemoveOp(op *PcodeOp) {
	op.Flags |= OpDead
	delete(fd.liveOps, op.id)
	b := op.Parent
	for i, cur := range b.Ops {
		if cur == op {
			b.Ops = append(b.Ops[:i], b.Ops[i+1:]...)
			break
		}
	}
	for slot, in := range op.Input {
		if in != nil {
			in.removeDescendant(Descendant{Op: op, Slot: slot})
		}
	}
}

// ReplaceAllUses rewrites every live descendant of x to refer to y instead,
// mirroring the teacher's replaceAll(x, y) (ssa/lift.go): x's descendant
// list becomes empty and y's absorbs the moved uses.
func (fd *Funcdata) ReplaceAllUses(x, y *Varnode) {
	for _, d := range append([]Descendant(nil), x.descendants...) {
		if d.Op.IsDead() {
			continue
		}
		d.Op.Input[d.Slot] = y
		y.addDescendant(d)
	}
	x.descendants = nil
}

// LiveOps returns every live op in SeqNum order. O(n log n); callers that
// need this repeatedly (e.g. Action dispatch) should cache within a single
// pass rather than call this per-op.
func (fd *Funcdata) LiveOps() []*PcodeOp {
	ops := make([]*PcodeOp, 0, len(fd.liveOps))
	for _, op := range fd.liveOps {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Seq.Compare(ops[j].Seq) < 0 })
	return ops
}

// NewHighVariable creates an empty HighVariable and registers it with fd.
func (fd *Funcdata) NewHighVariable() *HighVariable {
	h := &HighVariable{id: len(fd.highVars) + 1}
	fd.highVars = append(fd.highVars, h)
	return h
}

// HighVariables returns every HighVariable created for this function.
func (fd *Funcdata) HighVariables() []*HighVariable { return fd.highVars }

// MergeInto adds v to h, setting v.High. Panics (a LowLevel invariant
// violation, per §4.1) if v already belongs to a different HighVariable.
func (fd *Funcdata) MergeInto(h *HighVariable, v *Varnode) {
	if v.High != nil && v.High != h {
		panic("varnode already belongs to a different HighVariable")
	}
	h.addInstance(v)
}
