package analysis

import (
	"testing"

	"github.com/tsgates/decompiler-sub010/ir"
)

func ramSpace() *ir.Space  { return &ir.Space{Index: 0, Name: "ram", Kind: ir.Ram} }
func constSpace() *ir.Space { return &ir.Space{Index: 1, Name: "const", Kind: ir.Constant} }

func constVn(fd *ir.Funcdata, cs *ir.Space, val uint64, size int) *ir.Varnode {
	return fd.RefVarnode(ir.NewAddress(cs, val), size)
}

func boolOp(fd *ir.Funcdata, block *ir.BasicBlock, opcode ir.Opcode, addr ir.Address, inputs ...*ir.Varnode) *ir.Varnode {
	op := fd.NewOp(opcode, addr, block)
	out := fd.NewUniqueVarnode(addr, 1, op)
	for i, in := range inputs {
		fd.SetInput(op, i, in)
	}
	return out
}

// TestBooleanMatchSymmetry pins the property that Match is symmetric:
// swapping the arguments never changes Same/Complementary/Uncorrelated.
func TestBooleanMatchSymmetry(t *testing.T) {
	sp := ramSpace()
	fd := ir.NewFuncdata("f", ir.NewAddress(sp, 0))
	b := fd.Blocks[0]
	x := fd.RefVarnode(ir.NewAddress(sp, 0x10), 4)
	y := fd.RefVarnode(ir.NewAddress(sp, 0x20), 4)

	negX := boolOp(fd, b, ir.BOOL_NEGATE, ir.NewAddress(sp, 0), x)

	if got, want := BooleanMatch(x, negX, 5), Complementary; got != want {
		t.Fatalf("Match(x, NOT x) = %v, want %v", got, want)
	}
	if got, want := BooleanMatch(negX, x, 5), Complementary; got != want {
		t.Fatalf("Match(NOT x, x) = %v, want %v", got, want)
	}
	if got, want := BooleanMatch(x, x, 5), Same; got != want {
		t.Fatalf("Match(x, x) = %v, want %v", got, want)
	}
	_ = y
}

// TestBooleanMatchDeMorgan reproduces spec.md §8 concrete scenario 4: the
// De Morgan identity NOT(AND(x,y)) == OR(NOT x, NOT y) is recognized as
// Complementary between AND(x,y) and OR(NOT x, NOT y).
func TestBooleanMatchDeMorgan(t *testing.T) {
	sp := ramSpace()
	fd := ir.NewFuncdata("f", ir.NewAddress(sp, 0))
	b := fd.Blocks[0]
	x := fd.RefVarnode(ir.NewAddress(sp, 0x10), 1)
	y := fd.RefVarnode(ir.NewAddress(sp, 0x20), 1)

	and := boolOp(fd, b, ir.BOOL_AND, ir.NewAddress(sp, 0), x, y)
	negX := boolOp(fd, b, ir.BOOL_NEGATE, ir.NewAddress(sp, 1), x)
	negY := boolOp(fd, b, ir.BOOL_NEGATE, ir.NewAddress(sp, 2), y)
	or := boolOp(fd, b, ir.BOOL_OR, ir.NewAddress(sp, 3), negX, negY)

	if got, want := BooleanMatch(and, or, 5), Complementary; got != want {
		t.Fatalf("Match(AND(x,y), OR(NOT x, NOT y)) = %v, want %v", got, want)
	}

	// spec.md §8 scenario 4 states this holds "at depth >= 1" — the
	// literal boundary, not just some comfortably larger budget.
	if got, want := BooleanMatch(and, or, 1), Complementary; got != want {
		t.Fatalf("Match(AND(x,y), OR(NOT x, NOT y)) at depth=1 = %v, want %v", got, want)
	}
}

func TestBooleanMatchLessComplementary(t *testing.T) {
	sp := ramSpace()
	fd := ir.NewFuncdata("f", ir.NewAddress(sp, 0))
	b := fd.Blocks[0]
	x := fd.RefVarnode(ir.NewAddress(sp, 0x10), 4)
	y := fd.RefVarnode(ir.NewAddress(sp, 0x20), 4)

	xLessY := boolOp(fd, b, ir.INT_LESS, ir.NewAddress(sp, 0), x, y)
	yLessX := boolOp(fd, b, ir.INT_LESS, ir.NewAddress(sp, 1), y, x)

	// x<y and y<x are both false when x == y, so they are not complementary.
	if got, want := BooleanMatch(xLessY, yLessX, 5), Uncorrelated; got != want {
		t.Fatalf("Match(x<y, y<x) = %v, want %v", got, want)
	}

	cs := constSpace()
	xLess9 := boolOp(fd, b, ir.INT_LESS, ir.NewAddress(sp, 2), x, constVn(fd, cs, 9, 4))
	eightLessX := boolOp(fd, b, ir.INT_LESS, ir.NewAddress(sp, 3), constVn(fd, cs, 8, 4), x)
	if got, want := BooleanMatch(xLess9, eightLessX, 1), Complementary; got != want {
		t.Fatalf("Match(x<9, 8<x) = %v, want %v", got, want)
	}
}

func TestAddExpressionEquivalence(t *testing.T) {
	sp := ramSpace()
	cs := constSpace()
	fd := ir.NewFuncdata("f", ir.NewAddress(sp, 0))
	b := fd.Blocks[0]

	x := fd.RefVarnode(ir.NewAddress(sp, 0x10), 4)
	y := fd.RefVarnode(ir.NewAddress(sp, 0x20), 4)
	four := constVn(fd, cs, 4, 4)
	two := constVn(fd, cs, 2, 4)

	// (x + 4) - same as x plus constant 4.
	addOp := fd.NewOp(ir.INT_ADD, ir.NewAddress(sp, 0), b)
	sum := fd.NewUniqueVarnode(ir.NewAddress(sp, 0), 4, addOp)
	fd.SetInput(addOp, 0, x)
	fd.SetInput(addOp, 1, four)

	// (4 + x) should normalize identically.
	addOp2 := fd.NewOp(ir.INT_ADD, ir.NewAddress(sp, 1), b)
	sum2 := fd.NewUniqueVarnode(ir.NewAddress(sp, 1), 4, addOp2)
	fd.SetInput(addOp2, 0, four)
	fd.SetInput(addOp2, 1, x)

	e1, ok1 := BuildAddExpression(sum)
	e2, ok2 := BuildAddExpression(sum2)
	if !ok1 || !ok2 {
		t.Fatalf("expected both expressions to build, got ok1=%v ok2=%v", ok1, ok2)
	}
	if !e1.Equal(e2) {
		t.Fatalf("expected x+4 and 4+x to normalize equal, got %+v vs %+v", e1, e2)
	}

	// y*2 - a two-term case with a different base: not equal to e1.
	mulOp := fd.NewOp(ir.INT_MULT, ir.NewAddress(sp, 2), b)
	prod := fd.NewUniqueVarnode(ir.NewAddress(sp, 2), 4, mulOp)
	fd.SetInput(mulOp, 0, y)
	fd.SetInput(mulOp, 1, two)
	e3, ok3 := BuildAddExpression(prod)
	if !ok3 {
		t.Fatalf("expected y*2 to build")
	}
	if e1.Equal(e3) {
		t.Fatalf("expected x+4 and y*2 to differ")
	}
}

func TestFunctionalEqualCommutative(t *testing.T) {
	sp := ramSpace()
	fd := ir.NewFuncdata("f", ir.NewAddress(sp, 0))
	b := fd.Blocks[0]
	x := fd.RefVarnode(ir.NewAddress(sp, 0x10), 4)
	y := fd.RefVarnode(ir.NewAddress(sp, 0x20), 4)

	op1 := fd.NewOp(ir.INT_ADD, ir.NewAddress(sp, 0), b)
	a := fd.NewUniqueVarnode(ir.NewAddress(sp, 0), 4, op1)
	fd.SetInput(op1, 0, x)
	fd.SetInput(op1, 1, y)

	op2 := fd.NewOp(ir.INT_ADD, ir.NewAddress(sp, 1), b)
	c := fd.NewUniqueVarnode(ir.NewAddress(sp, 1), 4, op2)
	fd.SetInput(op2, 0, y)
	fd.SetInput(op2, 1, x)

	if !FunctionalEqual(a, c, 5) {
		t.Fatalf("expected x+y and y+x to be functionally equal via commutative retry")
	}
}

func TestParamMeasureNoDescendantsIsWorst(t *testing.T) {
	sp := ramSpace()
	fd := ir.NewFuncdata("f", ir.NewAddress(sp, 0))
	op := fd.NewOp(ir.COPY, ir.NewAddress(sp, 0), fd.Blocks[0])
	v := fd.NewUniqueVarnode(ir.NewAddress(sp, 0), 4, op)

	if got := Measure(v); got != DirectWriteWithoutRead {
		t.Fatalf("Measure(unused) = %v, want DirectWriteWithoutRead", got)
	}
}

func TestParamMeasureDirectRead(t *testing.T) {
	sp := ramSpace()
	fd := ir.NewFuncdata("f", ir.NewAddress(sp, 0))
	b := fd.Blocks[0]
	op := fd.NewOp(ir.COPY, ir.NewAddress(sp, 0), b)
	v := fd.NewUniqueVarnode(ir.NewAddress(sp, 0), 4, op)

	user := fd.NewOp(ir.INT_ADD, ir.NewAddress(sp, 4), b)
	fd.SetInput(user, 0, v)

	if got := Measure(v); got != DirectRead {
		t.Fatalf("Measure(directly read) = %v, want DirectRead", got)
	}
}
