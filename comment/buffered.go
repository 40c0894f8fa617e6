package comment

import "github.com/tsgates/decompiler-sub010/ir"

// Buffered wraps a Database with a write buffer (spec.md §4.5): a
// parallel decompile job writes its comments into a Buffered instead of
// the shared Database directly, then the driver flushes each job's buffer
// in input order once the job completes, so the database's final content
// is independent of which job happened to finish first.
type Buffered struct {
	db *Database

	clearAll   bool
	clearTypes []clearTypeEntry
	deletes    []*Comment
	adds       []pendingAdd
	addNoDups  []pendingAdd
}

type clearTypeEntry struct {
	funcAddr ir.Address
	mask     TypeMask
}

type pendingAdd struct {
	typ      TypeMask
	funcAddr ir.Address
	addr     ir.Address
	text     string
	out      *Comment // the tentative Comment returned to the caller
}

// NewBuffered wraps db in a write buffer.
func NewBuffered(db *Database) *Buffered {
	return &Buffered{db: db}
}

// AddComment enqueues an unconditional add, returning a tentative Comment
// (not yet visible in the underlying Database, and not carrying its final
// Uniq — that is assigned at Flush time against the database's then-current
// state).
func (b *Buffered) AddComment(typ TypeMask, funcAddr, addr ir.Address, text string) *Comment {
	c := &Comment{Type: typ, FuncAddr: funcAddr, Addr: addr, Text: text}
	b.adds = append(b.adds, pendingAdd{typ: typ, funcAddr: funcAddr, addr: addr, text: text, out: c})
	return c
}

// AddCommentNoDuplicate enqueues a dedup-checked add. Per spec.md §4.5, the
// buffered call is optimistic: it always reports true (added) immediately,
// since the only way to know whether this text duplicates a comment
// written by some other concurrently-running job is to check at flush
// time, against the database's actual state at that point.
func (b *Buffered) AddCommentNoDuplicate(typ TypeMask, funcAddr, addr ir.Address, text string) (*Comment, bool) {
	c := &Comment{Type: typ, FuncAddr: funcAddr, Addr: addr, Text: text}
	b.addNoDups = append(b.addNoDups, pendingAdd{typ: typ, funcAddr: funcAddr, addr: addr, text: text, out: c})
	return c, true
}

// DeleteComment enqueues a delete.
func (b *Buffered) DeleteComment(c *Comment) {
	b.deletes = append(b.deletes, c)
}

// ClearType enqueues a type-masked clear for one function.
func (b *Buffered) ClearType(funcAddr ir.Address, mask TypeMask) {
	b.clearTypes = append(b.clearTypes, clearTypeEntry{funcAddr: funcAddr, mask: mask})
}

// ClearAll enqueues a full-database clear.
func (b *Buffered) ClearAll() {
	b.clearAll = true
}

// Flush applies every buffered mutation to the underlying Database in the
// fixed order spec.md §4.5 gives: clears, then deletes, then adds, then
// add-no-dups, preserving insertion order within each category. Buffered
// resets to empty afterward so it can be reused for the next job.
func (b *Buffered) Flush() {
	if b.clearAll {
		b.db.Clear()
	}
	for _, ct := range b.clearTypes {
		b.db.ClearType(ct.funcAddr, ct.mask)
	}
	for _, c := range b.deletes {
		b.db.DeleteComment(c)
	}
	for _, p := range b.adds {
		real := b.db.AddComment(p.typ, p.funcAddr, p.addr, p.text)
		*p.out = *real
	}
	for _, p := range b.addNoDups {
		real, added := b.db.AddCommentNoDuplicate(p.typ, p.funcAddr, p.addr, p.text)
		*p.out = *real
		_ = added
	}
	b.clearAll = false
	b.clearTypes = nil
	b.deletes = nil
	b.adds = nil
	b.addNoDups = nil
}

// Emit and EmitNoDuplicate adapt AddComment/AddCommentNoDuplicate to
// ir.CommentSink's shape; see Database.Emit.
func (b *Buffered) Emit(typ TypeMask, funcAddr, addr ir.Address, text string) {
	b.AddComment(typ, funcAddr, addr, text)
}

func (b *Buffered) EmitNoDuplicate(typ TypeMask, funcAddr, addr ir.Address, text string) bool {
	_, added := b.AddCommentNoDuplicate(typ, funcAddr, addr, text)
	return added
}
