package tape

import (
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/optable"
	"github.com/dtolpin/tapead/tag"
)

// AD is the active scalar: the user-visible type whose methods stand
// in for overloaded arithmetic and comparison (Go has no operator
// overloading) while mutating the calling goroutine's live tape.
// AD[V] is cheap-copy and carries no ownership of tape storage.
type AD[V numeric.Value[V]] struct {
	// TapeID is the id of the tape that owns this value, or the
	// sentinel 0 meaning this value carries no dependency
	// information (always treated as Const regardless of Tag).
	TapeID uint64
	// Index is this value's slot in the owning tape's dyp or var
	// sequence, meaningful only while TapeID matches the currently
	// recording tape.
	Tag   tag.Tag
	Index uint32
	Value V
}

// Const lifts a bare V into a detached AD value: always classified
// cop/Const regardless of any tape's state.
func Const[V numeric.Value[V]](v V) AD[V] {
	return AD[V]{Tag: tag.Const, Value: v}
}

// currentTape returns the calling goroutine's tape (lazily created).
func (x AD[V]) currentTape() *Tape[V] { return threadTape[V]() }

// classify reports whether x is active against t (its TapeID matches)
// and, if so, its Tag; an inactive value is always classified Const.
func classify[V numeric.Value[V]](t *Tape[V], x AD[V]) (active bool, xTag tag.Tag) {
	if t.recording && x.TapeID == t.tapeID {
		return true, x.Tag
	}
	return false, tag.Const
}

// representation returns the (tapeID, index, tag) triple a
// short-circuit's surviving operand contributes, paired with its
// numeric value.
func representation[V numeric.Value[V]](t *Tape[V], x AD[V], active bool, value V) AD[V] {
	if active {
		return AD[V]{TapeID: t.tapeID, Index: x.Index, Tag: x.Tag, Value: value}
	}
	return AD[V]{Value: value}
}

// family identifies which of the four record-eligible arithmetic
// families an operation belongs to, for short-circuiting and opcode
// selection.
type family int

const (
	famAdd family = iota
	famSub
	famMul
	famDiv
)

func (t *Tape[V]) shortCircuit(f family, lhs, rhs AD[V], lActive, rActive bool, newValue V) (AD[V], bool) {
	// Only a cop (inactive) operand can trigger a short-circuit: an
	// active operand's current value does not hold on later replays.
	switch f {
	case famAdd:
		if !lActive && lhs.Value.IsZero() {
			return representation(t, rhs, rActive, newValue), true
		}
		if !rActive && rhs.Value.IsZero() {
			return representation(t, lhs, lActive, newValue), true
		}
	case famMul:
		if (!lActive && lhs.Value.IsZero()) || (!rActive && rhs.Value.IsZero()) {
			// 0 * x = 0, Const regardless of x's tag.
			return AD[V]{Value: newValue}, true
		}
		if !lActive && lhs.Value.IsOne() {
			return representation(t, rhs, rActive, newValue), true
		}
		if !rActive && rhs.Value.IsOne() {
			return representation(t, lhs, lActive, newValue), true
		}
	case famDiv:
		// 0 / x is deliberately not short-circuited: a
		// generic V need not have 0/0 == 0.
		if !rActive && rhs.Value.IsOne() {
			return representation(t, lhs, lActive, newValue), true
		}
	}
	return AD[V]{}, false
}

// recordBinary implements the unified record step for one of the
// four arithmetic families.
func recordBinary[V numeric.Value[V]](
	f family,
	base optable.Op,
	valueOp func(a, b V) V,
	lhs, rhs AD[V],
) AD[V] {
	newValue := valueOp(lhs.Value, rhs.Value)

	t := lhs.currentTape()
	if !t.recording {
		return AD[V]{Value: newValue}
	}

	lActive, lTag := classify(t, lhs)
	rActive, rTag := classify(t, rhs)

	if f == famAdd || f == famMul || f == famDiv {
		if res, ok := t.shortCircuit(f, lhs, rhs, lActive, rActive, newValue); ok {
			return res
		}
	}

	if !lActive && !rActive {
		return AD[V]{Value: newValue}
	}

	resTag := tag.Dyn
	if lTag == tag.Var || rTag == tag.Var {
		resTag = tag.Var
	}
	seq := &t.dyp
	if resTag == tag.Var {
		seq = &t.var_
	}

	idx := [2]uint32{}
	typ := [2]tag.Tag{}
	if lActive {
		idx[0], typ[0] = lhs.Index, lTag
	} else {
		idx[0], typ[0] = t.pushConst(lhs.Value), tag.Const
	}
	if rActive {
		idx[1], typ[1] = rhs.Index, rTag
	} else {
		idx[1], typ[1] = t.pushConst(rhs.Value), tag.Const
	}

	opID := optable.BinaryVariant(base, lTag, rTag)
	slot := seq.AppendOp(opID, idx[:], typ[:])
	return AD[V]{TapeID: t.tapeID, Index: uint32(slot), Tag: resTag, Value: newValue}
}

// Add, Sub, Mul, Div implement the four overloaded binary arithmetic
// operators; Go has no `+ - * /` overloading so these
// are named methods instead of operators.
func (x AD[V]) Add(y AD[V]) AD[V] {
	return recordBinary[V](famAdd, optable.AddPP, func(a, b V) V { return a.Add(b) }, x, y)
}
func (x AD[V]) Sub(y AD[V]) AD[V] {
	return recordBinary[V](famSub, optable.SubPP, func(a, b V) V { return a.Sub(b) }, x, y)
}
func (x AD[V]) Mul(y AD[V]) AD[V] {
	return recordBinary[V](famMul, optable.MulPP, func(a, b V) V { return a.Mul(b) }, x, y)
}
func (x AD[V]) Div(y AD[V]) AD[V] {
	return recordBinary[V](famDiv, optable.DivPP, func(a, b V) V { return a.Div(b) }, x, y)
}

// AddV, SubV, MulV, DivV are the mixed forms with a bare V operand
// ("the two mixed forms with &V"), equivalent to lifting
// y with Const and calling the AD-AD form.
func (x AD[V]) AddV(y V) AD[V] { return x.Add(Const[V](y)) }
func (x AD[V]) SubV(y V) AD[V] { return x.Sub(Const[V](y)) }
func (x AD[V]) MulV(y V) AD[V] { return x.Mul(Const[V](y)) }
func (x AD[V]) DivV(y V) AD[V] { return x.Div(Const[V](y)) }

// AddAssign and friends are the compound-assign operators: they
// perform the same record step, then write all four fields back into
// the receiver.
func (x *AD[V]) AddAssign(y AD[V]) { *x = x.Add(y) }
func (x *AD[V]) SubAssign(y AD[V]) { *x = x.Sub(y) }
func (x *AD[V]) MulAssign(y AD[V]) { *x = x.Mul(y) }
func (x *AD[V]) DivAssign(y AD[V]) { *x = x.Div(y) }

// compare implements the shared comparison record-step skeleton: the
// result is always a numeric 0/1 V (never a bool), tagged Max(l,r),
// and if both sides are cop the op is not recorded at all.
func compare[V numeric.Value[V]](op optable.Op, valueOp func(a, b V) V, lhs, rhs AD[V]) AD[V] {
	newValue := valueOp(lhs.Value, rhs.Value)

	t := lhs.currentTape()
	if !t.recording {
		return AD[V]{Value: newValue}
	}

	lActive, lTag := classify(t, lhs)
	rActive, rTag := classify(t, rhs)
	if !lActive && !rActive {
		return AD[V]{Value: newValue}
	}

	resTag := tag.Max(lTag, rTag)
	seq := &t.dyp
	if resTag == tag.Var {
		seq = &t.var_
	}

	idx := [2]uint32{}
	typ := [2]tag.Tag{}
	if lActive {
		idx[0], typ[0] = lhs.Index, lTag
	} else {
		idx[0], typ[0] = t.pushConst(lhs.Value), tag.Const
	}
	if rActive {
		idx[1], typ[1] = rhs.Index, rTag
	} else {
		idx[1], typ[1] = t.pushConst(rhs.Value), tag.Const
	}

	slot := seq.AppendOp(op, idx[:], typ[:])
	return AD[V]{TapeID: t.tapeID, Index: uint32(slot), Tag: resTag, Value: newValue}
}

func (x AD[V]) Lt(y AD[V]) AD[V] { return compare[V](optable.Lt, func(a, b V) V { return a.Lt(b) }, x, y) }
func (x AD[V]) Le(y AD[V]) AD[V] { return compare[V](optable.Le, func(a, b V) V { return a.Le(b) }, x, y) }
func (x AD[V]) Eq(y AD[V]) AD[V] { return compare[V](optable.Eq, func(a, b V) V { return a.Eq(b) }, x, y) }
func (x AD[V]) Ne(y AD[V]) AD[V] { return compare[V](optable.Ne, func(a, b V) V { return a.Ne(b) }, x, y) }
func (x AD[V]) Ge(y AD[V]) AD[V] { return compare[V](optable.Ge, func(a, b V) V { return a.Ge(b) }, x, y) }
func (x AD[V]) Gt(y AD[V]) AD[V] { return compare[V](optable.Gt, func(a, b V) V { return a.Gt(b) }, x, y) }

// recordUnary implements the unary-op record step: analogous to
// recordBinary but with a single argument and an opcode per op rather
// than a 4-way tag-pattern split.
func recordUnary[V numeric.Value[V]](op optable.Op, valueOp func(a V) V, x AD[V]) AD[V] {
	newValue := valueOp(x.Value)

	t := x.currentTape()
	if !t.recording {
		return AD[V]{Value: newValue}
	}

	active, xTag := classify(t, x)
	if !active {
		return AD[V]{Value: newValue}
	}

	seq := &t.dyp
	if xTag == tag.Var {
		seq = &t.var_
	}
	slot := seq.AppendOp(op, []uint32{x.Index}, []tag.Tag{xTag})
	return AD[V]{TapeID: t.tapeID, Index: uint32(slot), Tag: xTag, Value: newValue}
}

func (x AD[V]) Neg() AD[V]    { return recordUnary[V](optable.Minus, func(a V) V { return a.Neg() }, x) }
func (x AD[V]) Sin() AD[V]    { return recordUnary[V](optable.Sin, func(a V) V { return a.Sin() }, x) }
func (x AD[V]) Cos() AD[V]    { return recordUnary[V](optable.Cos, func(a V) V { return a.Cos() }, x) }
func (x AD[V]) Exp() AD[V]    { return recordUnary[V](optable.Exp, func(a V) V { return a.Exp() }, x) }
func (x AD[V]) Signum() AD[V] { return recordUnary[V](optable.Signum, func(a V) V { return a.Signum() }, x) }
