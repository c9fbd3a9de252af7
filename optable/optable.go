// Package optable implements the static per-opcode dispatch table: one
// record of callbacks per opcode id, built once per value type V and
// read-only thereafter. This replaces a switch statement over opcode
// ids with one function-pointer record per id, so adding a sweep means
// adding a field to Entry rather than a case to every sweep's switch.
package optable

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/tag"
)

// Op is an opcode id. Ids are partitioned by operator family.
type Op uint8

// Binary arithmetic: 4 ops x 4 tag-pattern variants (PP/PV/VP/VV).
const (
	AddPP Op = iota
	AddPV
	AddVP
	AddVV
	SubPP
	SubPV
	SubVP
	SubVV
	MulPP
	MulPV
	MulVP
	MulVV
	DivPP
	DivPV
	DivVP
	DivVV

	Minus
	Sin
	Cos
	Exp
	Signum

	Lt
	Le
	Eq
	Ne
	Ge
	Gt

	Call
	CallRes
	NoOp

	numOps
)

// Args bundles one op's argument slots with their parallel tags, a
// view into OpSequence.argAll/argTypeAll.
type Args struct {
	Idx  []uint32
	Type []tag.Tag
}

// Pools bundles the value pools a sweep may read from, plus a zero
// exemplar (since V has no addressable literal zero without a value
// to call Zero() on).
type Pools[V numeric.Value[V]] struct {
	Cop  []V // constant pool
	Dyp  []V // dyp_both: domain prefix + dyp op results
	Var  []V // var_both: domain prefix + var op results
	Zero V
}

// Get fetches the value an argument slot refers to, dispatching by
// its tag.
func (p Pools[V]) Get(t tag.Tag, idx uint32) V {
	switch t {
	case tag.Const:
		return p.Cop[idx]
	case tag.Dyn:
		return p.Dyp[idx]
	case tag.Var:
		return p.Var[idx]
	default:
		panic(fmt.Sprintf("optable: cannot read value of tag %v", t))
	}
}

// Depend holds the three liveness vectors the optimizer's reverse
// dependency pass builds and updates.
type Depend struct {
	Cop []bool
	Dyp []bool
	Var []bool
}

// mark flags the pool slot an argument occupies as live.
func (d *Depend) mark(t tag.Tag, idx uint32) {
	switch t {
	case tag.Const:
		d.Cop[idx] = true
	case tag.Dyn:
		d.Dyp[idx] = true
	case tag.Var:
		d.Var[idx] = true
	case tag.Empty:
		// CALL linkage slot, nothing to mark.
	}
}

// Entry is the per-opcode callback record. RustSrc is a code-generation
// collaborator kept for parity with a source-emitting backend that
// this module does not implement; every built-in entry leaves it nil.
type Entry[V numeric.Value[V]] struct {
	Name string

	ForwardDyp func(a Args, p Pools[V]) V
	ForwardVar func(a Args, p Pools[V]) V

	// ForwardDer returns the new directional derivative for the
	// result slot, given the incoming var_der for each argument
	// (zero for Const/Dyn args, since they carry no derivative).
	ForwardDer func(a Args, p Pools[V], varDer []V, resIdx int) V

	// ReverseDer accumulates the incoming adjoint on the result
	// (adj) into varDer at each Var-tagged argument's slot. Must
	// only ever add, never overwrite: a slot can receive adjoint
	// contributions from more than one downstream use.
	ReverseDer func(a Args, p Pools[V], varDer []V, resIdx int, adj V)

	RustSrc func(a Args) string

	// ReverseDepend marks arguments live when the result is live.
	// Built-in ops all share the generic "mark every argument live"
	// rule; only CALL differs, and CALL is handled by the code walking
	// the sequence (decoding its arguments via package atom) rather
	// than through this table.
	ReverseDepend func(a Args, resultLive bool, d *Depend)
}

func genericReverseDepend(a Args, resultLive bool, d *Depend) {
	if !resultLive {
		return
	}
	for i, t := range a.Type {
		d.mark(t, a.Idx[i])
	}
}

// Table is the per-V dispatch table, indexed by Op.
type Table[V numeric.Value[V]] struct {
	entries [numOps]*Entry[V]
}

// Entry returns the record for opcode id id.
func (t *Table[V]) Entry(id Op) *Entry[V] {
	e := t.entries[id]
	if e == nil {
		panic(fmt.Sprintf("optable: opcode %d has no entry", id))
	}
	return e
}

var (
	registryMu sync.Mutex
	registry   = map[reflect.Type]any{}
)

// Default returns the process-wide, lazily-built table for V. Built
// once per V; read-only thereafter.
func Default[V numeric.Value[V]]() *Table[V] {
	var zero V
	key := reflect.TypeOf(zero)
	registryMu.Lock()
	defer registryMu.Unlock()
	if t, ok := registry[key]; ok {
		return t.(*Table[V])
	}
	t := build[V]()
	registry[key] = t
	return t
}

func binaryArith[V numeric.Value[V]](
	name string,
	op func(a, b V) V,
	der func(a, b, da, db, res V) V,
	rev func(a, b, res, adj V) (da, db V),
) *Entry[V] {
	fwd := func(args Args, p Pools[V]) V {
		a := p.Get(args.Type[0], args.Idx[0])
		b := p.Get(args.Type[1], args.Idx[1])
		return op(a, b)
	}
	return &Entry[V]{
		Name:       name,
		ForwardDyp: fwd,
		ForwardVar: fwd,
		ForwardDer: func(args Args, p Pools[V], varDer []V, resIdx int) V {
			a := p.Get(args.Type[0], args.Idx[0])
			b := p.Get(args.Type[1], args.Idx[1])
			da := derOf(args, 0, varDer, p.Zero)
			db := derOf(args, 1, varDer, p.Zero)
			res := p.Var[resIdx]
			return der(a, b, da, db, res)
		},
		ReverseDer: func(args Args, p Pools[V], varDer []V, resIdx int, adj V) {
			a := p.Get(args.Type[0], args.Idx[0])
			b := p.Get(args.Type[1], args.Idx[1])
			res := p.Var[resIdx]
			da, db := rev(a, b, res, adj)
			accum(args, 0, varDer, da)
			accum(args, 1, varDer, db)
		},
		ReverseDepend: genericReverseDepend,
	}
}

func derOf[V numeric.Value[V]](a Args, i int, varDer []V, zero V) V {
	if a.Type[i] == tag.Var {
		return varDer[a.Idx[i]]
	}
	return zero
}

func accum[V numeric.Value[V]](a Args, i int, varDer []V, d V) {
	if a.Type[i] != tag.Var {
		return
	}
	varDer[a.Idx[i]] = varDer[a.Idx[i]].Add(d)
}

func unary[V numeric.Value[V]](
	name string,
	op func(a V) V,
	der func(a, res V) V, // d(res)/d(a), a coefficient multiplied by da/adj
) *Entry[V] {
	fwd := func(args Args, p Pools[V]) V {
		a := p.Get(args.Type[0], args.Idx[0])
		return op(a)
	}
	return &Entry[V]{
		Name:       name,
		ForwardDyp: fwd,
		ForwardVar: fwd,
		ForwardDer: func(args Args, p Pools[V], varDer []V, resIdx int) V {
			a := p.Get(args.Type[0], args.Idx[0])
			res := p.Var[resIdx]
			da := derOf(args, 0, varDer, p.Zero)
			return der(a, res).Mul(da)
		},
		ReverseDer: func(args Args, p Pools[V], varDer []V, resIdx int, adj V) {
			a := p.Get(args.Type[0], args.Idx[0])
			res := p.Var[resIdx]
			accum(args, 0, varDer, der(a, res).Mul(adj))
		},
		ReverseDepend: genericReverseDepend,
	}
}

func compare[V numeric.Value[V]](name string, op func(a, b V) V) *Entry[V] {
	fwd := func(args Args, p Pools[V]) V {
		a := p.Get(args.Type[0], args.Idx[0])
		b := p.Get(args.Type[1], args.Idx[1])
		return op(a, b)
	}
	return &Entry[V]{
		Name:       name,
		ForwardDyp: fwd,
		ForwardVar: fwd,
		// Derivatives of comparisons are identically zero, constant
		// propagated in both derivative sweeps.
		ForwardDer: func(args Args, p Pools[V], varDer []V, resIdx int) V {
			return p.Zero
		},
		ReverseDer:    func(args Args, p Pools[V], varDer []V, resIdx int, adj V) {},
		ReverseDepend: genericReverseDepend,
	}
}

func build[V numeric.Value[V]]() *Table[V] {
	t := &Table[V]{}

	add := func(a, b V) V { return a.Add(b) }
	sub := func(a, b V) V { return a.Sub(b) }
	mul := func(a, b V) V { return a.Mul(b) }
	div := func(a, b V) V { return a.Div(b) }

	addDer := func(a, b, da, db, res V) V { return da.Add(db) }
	addRev := func(a, b, res, adj V) (V, V) { return adj, adj }
	subDer := func(a, b, da, db, res V) V { return da.Sub(db) }
	subRev := func(a, b, res, adj V) (V, V) { return adj, adj.Neg() }
	mulDer := func(a, b, da, db, res V) V { return da.Mul(b).Add(a.Mul(db)) }
	mulRev := func(a, b, res, adj V) (V, V) { return adj.Mul(b), adj.Mul(a) }
	divDer := func(a, b, da, db, res V) V {
		return da.Sub(res.Mul(db)).Div(b)
	}
	divRev := func(a, b, res, adj V) (V, V) {
		da := adj.Div(b)
		db := da.Mul(res).Neg()
		return da, db
	}

	for _, id := range []Op{AddPP, AddPV, AddVP, AddVV} {
		t.entries[id] = binaryArith[V]("ADD", add, addDer, addRev)
	}
	for _, id := range []Op{SubPP, SubPV, SubVP, SubVV} {
		t.entries[id] = binaryArith[V]("SUB", sub, subDer, subRev)
	}
	for _, id := range []Op{MulPP, MulPV, MulVP, MulVV} {
		t.entries[id] = binaryArith[V]("MUL", mul, mulDer, mulRev)
	}
	for _, id := range []Op{DivPP, DivPV, DivVP, DivVV} {
		t.entries[id] = binaryArith[V]("DIV", div, divDer, divRev)
	}

	t.entries[Minus] = unary[V]("MINUS",
		func(a V) V { return a.Neg() },
		func(a, res V) V { return a.Zero().Sub(a.One()) })
	t.entries[Sin] = unary[V]("SIN",
		func(a V) V { return a.Sin() },
		func(a, res V) V { return a.Cos() })
	t.entries[Cos] = unary[V]("COS",
		func(a V) V { return a.Cos() },
		func(a, res V) V { return a.Sin().Neg() })
	t.entries[Exp] = unary[V]("EXP",
		func(a V) V { return a.Exp() },
		func(a, res V) V { return res })
	t.entries[Signum] = unary[V]("SIGNUM",
		func(a V) V { return a.Signum() },
		func(a, res V) V { return res.Zero() })

	t.entries[Lt] = compare[V]("LT", func(a, b V) V { return a.Lt(b) })
	t.entries[Le] = compare[V]("LE", func(a, b V) V { return a.Le(b) })
	t.entries[Eq] = compare[V]("EQ", func(a, b V) V { return a.Eq(b) })
	t.entries[Ne] = compare[V]("NE", func(a, b V) V { return a.Ne(b) })
	t.entries[Ge] = compare[V]("GE", func(a, b V) V { return a.Ge(b) })
	t.entries[Gt] = compare[V]("GT", func(a, b V) V { return a.Gt(b) })

	// CALL/CALL_RES/NO_OP carry no generic numeric callback: CALL is
	// dispatched through the atom registry, and NO_OP is a reserved
	// placeholder id that nothing in this module emits (the optimizer
	// drops dead ops instead); none has a numeric entry here, but we
	// still register a name for diagnostics.
	t.entries[Call] = &Entry[V]{Name: "CALL"}
	t.entries[CallRes] = &Entry[V]{Name: "CALL_RES"}
	t.entries[NoOp] = &Entry[V]{Name: "NO_OP"}

	return t
}

// BinaryVariant reports which 4-way binary variant (PP/PV/VP/VV) to
// use for argument tags (lTag, rTag): a side is "P" (parameter: Const
// or Dyn) or "V" (Var).
func BinaryVariant(family Op, lTag, rTag tag.Tag) Op {
	idx := 0
	if lTag.IsVariable() {
		idx |= 2
	}
	if rTag.IsVariable() {
		idx |= 1
	}
	// idx: 0=PP, 1=PV, 2=VP, 3=VV, matching the enum declaration
	// order above for each family's base id.
	return family + Op(idx)
}
