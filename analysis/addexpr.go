package analysis

import "github.com/tsgates/decompiler-sub010/ir"

// Term is one addend of an AddExpression: base varnode v contributes
// coeff*v to the sum.
type Term struct {
	Var   *ir.Varnode
	Coeff int64
}

// AddExpression is the additive normal form of an INT_ADD/INT_SUB/
// INT_NEGATE/INT_MULT-by-constant tree: a constant plus up to two distinct
// base-varnode terms with integer coefficients. Trees with more than two
// distinct base terms can't be represented and fail to build — this is a
// deliberately bounded normal form, not a general linear-algebra engine.
type AddExpression struct {
	Terms []Term
	Const int64
}

// BuildAddExpression decomposes v's defining expression into additive
// normal form. ok is false if v's expression tree uses more than two
// distinct base terms, or an INT_ADD/INT_SUB/INT_NEGATE/INT_MULT op in it
// has an unexpected operand count. Any other operation, and INT_MULT of two
// non-constant operands, is treated as a single opaque term, not expanded
// further.
func BuildAddExpression(v *ir.Varnode) (AddExpression, bool) {
	terms := map[int]*Term{}
	var constSum int64
	if !collect(v, 1, terms, &constSum) {
		return AddExpression{}, false
	}
	if len(terms) > 2 {
		return AddExpression{}, false
	}
	e := AddExpression{Const: constSum}
	for _, t := range terms {
		if t.Coeff != 0 {
			e.Terms = append(e.Terms, *t)
		}
	}
	return e, true
}

func collect(v *ir.Varnode, sign int64, terms map[int]*Term, constSum *int64) bool {
	if v.IsConstant() {
		*constSum += sign * int64(v.Value())
		return true
	}
	if v.Def == nil {
		addTerm(terms, v, sign)
		return true
	}
	op := v.Def
	switch op.Opcode {
	case ir.INT_ADD:
		if len(op.Input) != 2 {
			return false
		}
		return collect(op.Input[0], sign, terms, constSum) && collect(op.Input[1], sign, terms, constSum)
	case ir.INT_SUB:
		if len(op.Input) != 2 {
			return false
		}
		return collect(op.Input[0], sign, terms, constSum) && collect(op.Input[1], -sign, terms, constSum)
	case ir.INT_NEGATE:
		if len(op.Input) != 1 {
			return false
		}
		return collect(op.Input[0], -sign, terms, constSum)
	case ir.INT_MULT:
		if len(op.Input) != 2 {
			return false
		}
		a, b := op.Input[0], op.Input[1]
		switch {
		case a.IsConstant():
			return collect(b, sign*int64(a.Value()), terms, constSum)
		case b.IsConstant():
			return collect(a, sign*int64(b.Value()), terms, constSum)
		default:
			addTerm(terms, v, sign)
			return true
		}
	default:
		addTerm(terms, v, sign)
		return true
	}
}

func addTerm(terms map[int]*Term, v *ir.Varnode, coeff int64) {
	if t, ok := terms[v.ID()]; ok {
		t.Coeff += coeff
		return
	}
	terms[v.ID()] = &Term{Var: v, Coeff: coeff}
}

// TermOrder returns terms sorted into the expression's canonical order
// (ascending Varnode id), the order AddExpression.Equal relies on to
// compare two expressions built independently of each other.
func TermOrder(terms []Term) []Term {
	out := append([]Term(nil), terms...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Var.ID() > out[j].Var.ID(); j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Equal reports whether e and o represent the same additive expression:
// equal constants and, after canonical ordering, the same (varnode,
// coefficient) terms.
func (e AddExpression) Equal(o AddExpression) bool {
	if e.Const != o.Const {
		return false
	}
	a, b := TermOrder(e.Terms), TermOrder(o.Terms)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Var != b[i].Var || a[i].Coeff != b[i].Coeff {
			return false
		}
	}
	return true
}
