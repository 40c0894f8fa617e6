package comment

import (
	"testing"

	"github.com/tsgates/decompiler-sub010/ir"
)

func ramSpace() *ir.Space { return &ir.Space{Index: 0, Name: "ram", Kind: ir.Ram} }

func TestDatabaseOrderingByFuncAddrUniq(t *testing.T) {
	sp := ramSpace()
	f1 := ir.NewAddress(sp, 0x100)
	f2 := ir.NewAddress(sp, 0x200)
	db := NewDatabase()

	db.AddComment(User, f2, ir.NewAddress(sp, 0x10), "c")
	db.AddComment(User, f1, ir.NewAddress(sp, 0x20), "b")
	db.AddComment(User, f1, ir.NewAddress(sp, 0x10), "a0")
	db.AddComment(User, f1, ir.NewAddress(sp, 0x10), "a1")

	got := db.All(f1)
	want := []string{"a0", "a1", "b"}
	if len(got) != len(want) {
		t.Fatalf("got %d comments, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Text != w {
			t.Fatalf("comment[%d] = %q, want %q", i, got[i].Text, w)
		}
	}
	if got[0].Uniq != 0 || got[1].Uniq != 1 {
		t.Fatalf("expected auto-assigned uniq 0,1 at the same address, got %d,%d", got[0].Uniq, got[1].Uniq)
	}
}

// TestAddCommentNoDuplicateBackwardOnly pins down spec.md §9 open question
// (a): the dedup scan only looks backward, so a duplicate introduced after
// an earlier lookup is not caught retroactively by that earlier call, but
// IS caught by any later call once it has actually been recorded.
func TestAddCommentNoDuplicateBackwardOnly(t *testing.T) {
	sp := ramSpace()
	fad := ir.NewAddress(sp, 0x100)
	addr := ir.NewAddress(sp, 0x10)
	db := NewDatabase()

	_, added1 := db.AddCommentNoDuplicate(User, fad, addr, "same text")
	if !added1 {
		t.Fatalf("first add-no-dup should succeed")
	}
	_, added2 := db.AddCommentNoDuplicate(User, fad, addr, "same text")
	if added2 {
		t.Fatalf("second add-no-dup should be suppressed as a backward duplicate")
	}
	if len(db.All(fad)) != 1 {
		t.Fatalf("expected exactly one comment to survive, got %d", len(db.All(fad)))
	}
}

func TestClearType(t *testing.T) {
	sp := ramSpace()
	fad := ir.NewAddress(sp, 0x100)
	db := NewDatabase()
	db.AddComment(Header, fad, ir.NewAddress(sp, 0x10), "h")
	db.AddComment(User, fad, ir.NewAddress(sp, 0x10), "u")

	db.ClearType(fad, Header)
	all := db.All(fad)
	if len(all) != 1 || all[0].Text != "u" {
		t.Fatalf("expected only the User comment to survive ClearType(Header), got %v", all)
	}
}

// TestSorterHeaderPlacement reproduces spec.md §8 concrete scenario 3: a
// header comment at the function entry sorts to Subsort{-1, 0, 0} and is
// the only thing SetupHeader(HeaderBasic) + GetNext yields.
func TestSorterHeaderPlacement(t *testing.T) {
	sp := ramSpace()
	entry := ir.NewAddress(sp, 0x1000)
	fd := ir.NewFuncdata("f", entry)
	fd.NewOp(ir.COPY, entry, fd.Blocks[0])

	db := NewDatabase()
	hc := db.AddComment(Header, entry, entry, "function header")
	db.AddComment(User, entry, ir.NewAddress(sp, 0x1000), "attached to entry op too")

	s := NewSorter(fd, db.All(entry), false)
	s.SetupHeader(HeaderBasic)
	if !s.HasNext() {
		t.Fatalf("expected a header placement")
	}
	got := s.GetNext()
	if got != hc {
		t.Fatalf("expected the header comment, got %v", got)
	}
	if s.HasNext() {
		t.Fatalf("expected exactly one header-basic placement")
	}
}

func TestSorterAttachesToOwningOp(t *testing.T) {
	sp := ramSpace()
	entry := ir.NewAddress(sp, 0x1000)
	fd := ir.NewFuncdata("f", entry)
	op1 := fd.NewOp(ir.COPY, entry, fd.Blocks[0])
	op2 := fd.NewOp(ir.COPY, ir.NewAddress(sp, 0x1004), fd.Blocks[0])

	db := NewDatabase()
	c := db.AddComment(User, entry, ir.NewAddress(sp, 0x1004), "at op2")

	s := NewSorter(fd, db.All(entry), false)
	s.SetupBlockList(fd.Blocks[0])
	if !s.HasNext() {
		t.Fatalf("expected a placement in block 0")
	}
	got := s.GetNext()
	if got != c {
		t.Fatalf("expected the comment attached to op2, got %v", got)
	}
	_ = op1
	_ = op2
}

func TestSorterUnplacedDroppedUnlessRequested(t *testing.T) {
	sp := ramSpace()
	entry := ir.NewAddress(sp, 0x1000)
	fd := ir.NewFuncdata("f", entry)
	// A function with no ops would place the comment by rule 5, so give fd
	// one op at entry. The comment's address lies past that op and outside
	// block 0's address range, so no placement rule matches it.
	c := &Comment{Type: User, FuncAddr: entry, Addr: ir.NewAddress(sp, 0x9999), Text: "stray"}

	fd.NewOp(ir.COPY, entry, fd.Blocks[0])

	sDrop := NewSorter(fd, []*Comment{c}, false)
	if len(sDrop.placements) != 0 {
		t.Fatalf("expected the stray comment to be dropped when displayUnplaced is false")
	}

	sKeep := NewSorter(fd, []*Comment{c}, true)
	sKeep.SetupHeader(HeaderUnplaced)
	if !sKeep.HasNext() {
		t.Fatalf("expected the stray comment to surface as HeaderUnplaced")
	}
	if got := sKeep.GetNext(); got != c {
		t.Fatalf("expected the stray comment back, got %v", got)
	}
}

func TestBufferedFlushOrderAndDedup(t *testing.T) {
	sp := ramSpace()
	fad := ir.NewAddress(sp, 0x100)
	addr := ir.NewAddress(sp, 0x10)
	db := NewDatabase()
	existing := db.AddComment(User, fad, addr, "pre-existing")

	buf := NewBuffered(db)
	buf.DeleteComment(existing)
	buf.AddComment(User, fad, addr, "new one")
	_, addedOptimistic := buf.AddCommentNoDuplicate(User, fad, addr, "new one")
	if !addedOptimistic {
		t.Fatalf("buffered add-no-dup must optimistically report true before flush")
	}

	buf.Flush()

	all := db.All(fad)
	if len(all) != 1 {
		t.Fatalf("expected the delete to remove the pre-existing comment and the flush-time dedup to collapse the two adds into one, got %d: %v", len(all), all)
	}
	if all[0].Text != "new one" {
		t.Fatalf("expected the surviving comment to be %q, got %q", "new one", all[0].Text)
	}
}
