// Package driver implements the parallel decompile driver (spec.md §4.5):
// it runs one action-tree clone per function, optionally concurrently, and
// returns results in input order regardless of which function finished
// first.
package driver

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tsgates/decompiler-sub010/action"
	"github.com/tsgates/decompiler-sub010/comment"
	"github.com/tsgates/decompiler-sub010/config"
	"github.com/tsgates/decompiler-sub010/errs"
	"github.com/tsgates/decompiler-sub010/ir"
)

// Result is one function's outcome: the change count its action tree
// reported, or an error if the function aborted.
type Result struct {
	Funcdata *ir.Funcdata
	Changes  int
	Err      error
}

// Driver runs a shared action-tree template against many functions.
type Driver struct {
	root        action.Action
	db          *comment.Database
	concurrency int
	cfg         config.Config
	log         *zap.Logger
}

// Option configures a Driver at construction.
type Option func(*Driver)

// WithConcurrency sets the maximum number of functions decompiled at once.
// 1 (the default) runs strictly sequentially.
func WithConcurrency(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithConfig attaches architecture-level tunables.
func WithConfig(cfg config.Config) Option {
	return func(d *Driver) { d.cfg = cfg }
}

// WithLogger attaches a structured logger. A nil logger (or omitting this
// option) falls back to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// New builds a Driver that applies root (cloned once per function) against
// functions written through db.
func New(root action.Action, db *comment.Database, opts ...Option) *Driver {
	d := &Driver{root: root, db: db, concurrency: 1, log: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DecompileAll runs the action pipeline against every function in fns,
// bounded to d.concurrency simultaneous jobs via golang.org/x/sync/errgroup,
// and returns one Result per input function in input order — a property
// that holds identically whether concurrency is 1 or N (spec.md §8
// "parallel-equivalence").
//
// Each job clones the action tree (so concurrent jobs never share mutable
// action state) and writes comments into its own comment.Buffered wrapping
// d.db; every buffer is flushed against d.db in input order only after
// every job has finished, so the database's final content never depends on
// completion order either.
func (d *Driver) DecompileAll(ctx context.Context, fns []*ir.Funcdata) []Result {
	n := len(fns)
	results := make([]Result, n)
	buffers := make([]*comment.Buffered, n)
	finished := make([]<-chan struct{}, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, fd := range fns {
		i, fd := i, fd
		buffers[i] = comment.NewBuffered(d.db)
		g.Go(func() error {
			results[i], finished[i] = d.runOne(gctx, fd, buffers[i])
			return nil
		})
	}
	_ = g.Wait() // runOne never returns an error to the group; failures live in Result.Err

	// A timed-out job's background goroutine may still be running (and
	// still writing into its Buffered/Funcdata) when runOne itself
	// returns early — wait for it to actually finish before this buffer's
	// Flush reads it, or Flush could race the straggler.
	for i := range buffers {
		<-finished[i]
		buffers[i].Flush()
	}
	return results
}

// runOne returns fd's Result and a channel that closes once fd's action
// tree goroutine has genuinely stopped touching fd/buf — which may be
// after runOne itself has already returned a timeout Result.
func (d *Driver) runOne(ctx context.Context, fd *ir.Funcdata, buf *comment.Buffered) (Result, <-chan struct{}) {
	start := time.Now()
	tree := d.root.Clone()
	tree.Reset()
	fd.Comments = buf

	if d.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Deadline)
		defer cancel()
	}

	done := make(chan Result, 1)
	finished := make(chan struct{})
	go func() {
		// finished closes only once this goroutine has truly stopped
		// touching fd/buf, even if the select below already returned a
		// timeout Result to the caller — DecompileAll waits on it before
		// flushing this function's comment buffer.
		defer close(finished)
		// A LowLevel invariant violation (e.g. heritage's MULTIEQUAL
		// predecessor-count panic, or Funcdata.MergeInto's conflicting-
		// HighVariable panic) must abort only this function, per spec.md
		// §4.2/§7 — never the whole driver. recover() here is the
		// fault-isolation boundary that makes that true.
		defer func() {
			if r := recover(); r != nil {
				fd.Aborted = true
				done <- Result{Funcdata: fd, Err: errs.New(errs.LowLevel, "decompile of %s panicked: %v", fd.Name, r)}
			}
		}()
		n, err := tree.Perform(fd)
		done <- Result{Funcdata: fd, Changes: n, Err: err}
	}()

	var res Result
	select {
	case res = <-done:
	case <-ctx.Done():
		fd.Aborted = true
		res = Result{Funcdata: fd, Err: errs.New(errs.Execution, "decompile of %s timed out", fd.Name)}
	}

	lvl := zap.InfoLevel
	if res.Err != nil {
		lvl = zap.WarnLevel
	}
	d.log.Check(lvl, "function decompile finished").Write(
		zap.String("function", fd.Name),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("changes", res.Changes),
		zap.Bool("aborted", fd.Aborted),
	)
	return res, finished
}
