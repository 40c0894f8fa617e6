package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tsgates/decompiler-sub010/action"
	"github.com/tsgates/decompiler-sub010/arch"
	"github.com/tsgates/decompiler-sub010/comment"
	"github.com/tsgates/decompiler-sub010/config"
	"github.com/tsgates/decompiler-sub010/ir"
)

func ramSpace() *ir.Space { return &ir.Space{Index: 0, Name: "ram", Kind: ir.Ram} }

// commentingAction emits one comment on its Funcdata the first time it runs
// after Reset, then reports zero further changes, so a Group converges.
type commentingAction struct {
	name string
	done bool
}

func (c *commentingAction) Name() string        { return c.name }
func (c *commentingAction) Reads() action.Region  { return action.Varnodes }
func (c *commentingAction) Writes() action.Region { return action.Varnodes }
func (c *commentingAction) Reset()                { c.done = false }
func (c *commentingAction) Clone() action.Action  { return &commentingAction{name: c.name} }
func (c *commentingAction) Perform(fd *ir.Funcdata) (int, error) {
	if c.done {
		return 0, nil
	}
	c.done = true
	if fd.Comments != nil {
		fd.Comments.Emit(comment.User, fd.Entry, fd.Entry, "visited "+fd.Name)
	}
	return 1, nil
}

// panickingAction always panics, standing in for a LowLevel invariant
// violation (e.g. heritage's MULTIEQUAL predecessor-count panic).
type panickingAction struct{}

func (panickingAction) Name() string                             { return "boom" }
func (panickingAction) Reads() action.Region                      { return action.Varnodes }
func (panickingAction) Writes() action.Region                     { return action.Varnodes }
func (panickingAction) Reset()                                    {}
func (panickingAction) Clone() action.Action                      { return panickingAction{} }
func (panickingAction) Perform(fd *ir.Funcdata) (int, error) {
	panic("LowLevel invariant violated")
}

// TestDecompileAllContainsPanicPerFunction pins spec.md §7's fault-isolation
// contract: a panic inside one function's action tree aborts only that
// function and surfaces as a LowLevel Result.Err, without crashing the rest
// of the batch.
func TestDecompileAllContainsPanicPerFunction(t *testing.T) {
	sp := ramSpace()
	fns := buildFuncs(3, sp)
	db := comment.NewDatabase()
	root := action.NewGroup("root", panickingAction{})

	d := New(root, db, WithConcurrency(2))
	results := d.DecompileAll(context.Background(), fns)
	require.Len(t, results, len(fns))
	for i, r := range results {
		require.Errorf(t, r.Err, "function %d: expected a recovered panic to surface as an error", i)
		require.Truef(t, fns[i].Aborted, "function %d: expected Aborted to be set", i)
	}
}

// slowCommentingAction sleeps past its caller's deadline, then emits a
// comment once it finally wakes — standing in for a straggler action-tree
// goroutine that outlives a timed-out runOne call.
type slowCommentingAction struct {
	sleep time.Duration
}

func (s *slowCommentingAction) Name() string                      { return "slow" }
func (s *slowCommentingAction) Reads() action.Region               { return action.Varnodes }
func (s *slowCommentingAction) Writes() action.Region              { return action.Varnodes }
func (s *slowCommentingAction) Reset()                             {}
func (s *slowCommentingAction) Clone() action.Action               { return &slowCommentingAction{sleep: s.sleep} }
func (s *slowCommentingAction) Perform(fd *ir.Funcdata) (int, error) {
	time.Sleep(s.sleep)
	if fd.Comments != nil {
		fd.Comments.Emit(comment.User, fd.Entry, fd.Entry, "slow action finished for "+fd.Name)
	}
	return 1, nil
}

// TestDecompileAllFlushesAfterTimedOutJobFinishes pins the fix for a
// reviewer-caught race: a job whose deadline fires before its action tree
// finishes must still have its straggler goroutine's comment writes
// reflected once DecompileAll flushes — Flush must wait for the goroutine
// to actually stop, not just for runOne's early timeout return.
func TestDecompileAllFlushesAfterTimedOutJobFinishes(t *testing.T) {
	sp := ramSpace()
	fns := buildFuncs(1, sp)
	db := comment.NewDatabase()
	root := action.NewGroup("root", &slowCommentingAction{sleep: 50 * time.Millisecond})
	cfg := config.New(config.WithDeadline(5 * time.Millisecond))

	d := New(root, db, WithConfig(cfg))
	results := d.DecompileAll(context.Background(), fns)
	require.Len(t, results, 1)
	require.Error(t, results[0].Err, "expected the job to report a timeout")
	require.True(t, fns[0].Aborted)

	all := db.All(fns[0].Entry)
	require.Len(t, all, 1, "expected the straggler's comment to still land in the database")
	require.Equal(t, "slow action finished for "+fns[0].Name, all[0].Text)
}

func buildFuncs(n int, sp *ir.Space) []*ir.Funcdata {
	fns := make([]*ir.Funcdata, n)
	for i := 0; i < n; i++ {
		entry := ir.NewAddress(sp, uint64(i*0x1000))
		fd := ir.NewFuncdata("f", entry)
		fns[i] = fd
	}
	return fns
}

func TestDecompileAllPreservesInputOrder(t *testing.T) {
	sp := ramSpace()
	fns := buildFuncs(6, sp)
	db := comment.NewDatabase()
	root := action.NewGroup("root", &commentingAction{name: "mark"})

	for _, conc := range []int{1, 4} {
		d := New(root, db, WithConcurrency(conc))
		results := d.DecompileAll(context.Background(), fns)
		require.Len(t, results, len(fns))
		for i, r := range results {
			require.NoError(t, r.Err)
			require.Same(t, fns[i], r.Funcdata, "result %d should correspond to input function %d", i, i)
			require.Equal(t, 1, r.Changes)
		}
	}
}

func TestDecompileAllCommentsDeterministicAcrossConcurrency(t *testing.T) {
	sp := ramSpace()
	root := action.NewGroup("root", &commentingAction{name: "mark"})

	run := func(conc int) []string {
		fns := buildFuncs(5, sp)
		db := comment.NewDatabase()
		d := New(root, db, WithConcurrency(conc))
		d.DecompileAll(context.Background(), fns)

		var texts []string
		for _, fd := range fns {
			for _, c := range db.All(fd.Entry) {
				texts = append(texts, c.Text)
			}
		}
		return texts
	}

	seq := run(1)
	par := run(5)
	require.Equal(t, seq, par, "comment database content must not depend on concurrency")
}

// diamondFunc builds entry -> (left, right) -> join with a variable
// written in both branches and read at the join, the shape that forces a
// real MULTIEQUAL/HighVariable through Heritage and Merge.
func diamondFunc(sp *ir.Space, name string, entryOff uint64) *ir.Funcdata {
	fd := ir.NewFuncdata(name, ir.NewAddress(sp, entryOff))
	entry := fd.Blocks[0]
	left := fd.AddBlock()
	right := fd.AddBlock()
	join := fd.AddBlock()
	fd.AddEdge(entry, left, false)
	fd.AddEdge(entry, right, false)
	fd.AddEdge(left, join, false)
	fd.AddEdge(right, join, false)

	varAddr := ir.NewAddress(sp, entryOff+0x1000)
	opL := fd.NewOp(ir.COPY, ir.NewAddress(sp, entryOff+0x10), left)
	fd.NewUniqueVarnode(varAddr, 4, opL)
	opR := fd.NewOp(ir.COPY, ir.NewAddress(sp, entryOff+0x20), right)
	fd.NewUniqueVarnode(varAddr, 4, opR)
	reader := fd.NewOp(ir.COPY, ir.NewAddress(sp, entryOff+0x30), join)
	fd.AppendInput(reader, fd.RefVarnode(varAddr, 4))
	return fd
}

// TestDecompileAllRunsRealHeritageAndMergePipeline exercises the core
// control flow spec.md §2 describes end to end: an Architecture's real
// action tree (Heritage, then Merge — not a test double) driven per
// function by Driver.DecompileAll, across multiple functions and
// concurrency levels.
func TestDecompileAllRunsRealHeritageAndMergePipeline(t *testing.T) {
	sp := &ir.Space{Index: 0, Name: "ram", Kind: ir.Ram, Heritaged: true, Delay: 0}
	a := arch.New(arch.RawKind, []*ir.Space{sp}, sp, arch.DefaultActionTree([]*ir.Space{sp}))

	fns := []*ir.Funcdata{
		diamondFunc(sp, "f0", 0),
		diamondFunc(sp, "f1", 0x100),
		diamondFunc(sp, "f2", 0x200),
	}

	d := New(a.AllActions, a.CommentDB, WithConcurrency(2))
	results := d.DecompileAll(context.Background(), fns)
	require.Len(t, results, len(fns))

	for i, r := range results {
		require.NoError(t, r.Err)
		fd := r.Funcdata
		var phi *ir.PcodeOp
		for _, op := range fd.Blocks[3].Ops {
			if op.Opcode == ir.MULTIEQUAL {
				phi = op
			}
		}
		require.NotNilf(t, phi, "function %d: expected a MULTIEQUAL at the join block", i)
		require.NotEmptyf(t, fd.HighVariables(), "function %d: expected merge to group a HighVariable", i)
	}
}
