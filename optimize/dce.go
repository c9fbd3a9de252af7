package optimize

import (
	"github.com/dtolpin/tapead/atom"
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/optable"
	"github.com/dtolpin/tapead/tag"
	"github.com/dtolpin/tapead/tape"
)

// ReverseDepend computes, for the current state of f, which cop/dyp/var
// slots are actually read by a live range value. A CALL node is
// treated as live (and every one of its arguments marked live) as soon
// as any one of its results (its own slot or a CALL_RES slot) is live;
// this is a sound over-approximation rather than the finer per-row
// dependence RevDepend callbacks could offer, since DeadCodeCopy only
// needs a safe liveness set, not a minimal one.
func ReverseDepend[V numeric.Value[V]](f *tape.Fn[V]) *optable.Depend {
	d := &optable.Depend{
		Cop: make([]bool, len(f.Cop)),
		Dyp: make([]bool, f.Dyp.NDom+f.Dyp.NDep),
		Var: make([]bool, f.Var.NDom+f.Var.NDep),
	}
	if len(d.Cop) > 0 {
		// cop[0] is the reserved NaN sentinel; it stays live (and at
		// index 0) even when nothing in the range reads it.
		d.Cop[0] = true
	}
	for i, t := range f.RngTag {
		markTag(d, t, f.RngIndex[i])
	}

	table := optable.Default[V]()
	walkReverse(&f.Var, d.Var, d, table)
	walkReverse(&f.Dyp, d.Dyp, d, table)
	return d
}

func markTag(d *optable.Depend, t tag.Tag, idx uint32) {
	switch t {
	case tag.Const:
		d.Cop[idx] = true
	case tag.Dyn:
		d.Dyp[idx] = true
	case tag.Var:
		d.Var[idx] = true
	}
}

func walkReverse[V numeric.Value[V]](seq *tape.OpSequence, live []bool, d *optable.Depend, table *optable.Table[V]) {
	callLive := map[int]bool{}
	for k := seq.NDep - 1; k >= 0; k-- {
		resIdx := seq.NDom + k
		id := seq.IDAll[k]
		args := seq.Args(k)

		switch id {
		case optable.CallRes:
			if live[resIdx] {
				callLive[int(args.Idx[0])] = true
			}
		case optable.Call:
			if !live[resIdx] && !callLive[resIdx] {
				continue
			}
			live[resIdx] = true
			callArgs := atom.CallArgs(args)
			for i, t := range callArgs.Type {
				markTag(d, t, callArgs.Idx[i])
			}
		default:
			table.Entry(id).ReverseDepend(args, live[resIdx], d)
		}
	}
}

// DeadCodeCopy compacts f's sequences and constant pool down to the
// slots ReverseDepend marks live, dropping everything else and
// rewriting every surviving reference to its new index. Domain slots
// are always kept: a function's arity is part of its signature, not
// subject to elimination.
func DeadCodeCopy[V numeric.Value[V]](f *tape.Fn[V]) {
	d := ReverseDepend[V](f)

	copMap := make([]uint32, len(f.Cop))
	var newCop []V
	for i, v := range f.Cop {
		if !d.Cop[i] {
			continue
		}
		copMap[i] = uint32(len(newCop))
		newCop = append(newCop, v)
	}

	newDyp, dypMap := dceSequence(&f.Dyp, copMap, nil, d.Dyp, false)
	newVar, varMap := dceSequence(&f.Var, copMap, dypMap, d.Var, true)

	f.Cop = newCop
	f.Dyp = newDyp
	f.Var = newVar

	for i, t := range f.RngTag {
		switch t {
		case tag.Const:
			f.RngIndex[i] = copMap[f.RngIndex[i]]
		case tag.Dyn:
			f.RngIndex[i] = dypMap[f.RngIndex[i]]
		case tag.Var:
			f.RngIndex[i] = varMap[f.RngIndex[i]]
		}
	}
}

func dceSequence(seq *tape.OpSequence, copMap, externalDynMap []uint32, live []bool, isVar bool) (tape.OpSequence, []uint32) {
	n := seq.NDom + seq.NDep
	ownMap := make([]uint32, n)
	for i := 0; i < seq.NDom; i++ {
		ownMap[i] = uint32(i)
	}

	var out tape.OpSequence
	out.NDom = seq.NDom

	for k := 0; k < seq.NDep; k++ {
		old := seq.NDom + k
		if !live[old] {
			continue
		}
		id := seq.IDAll[k]
		args := seq.Args(k)

		dynMap, varMap := ownMap, ownMap
		if isVar {
			dynMap = externalDynMap
		}

		var newIdx []uint32
		var newTyp []tag.Tag
		switch id {
		case optable.CallRes:
			newIdx, newTyp = translateCallRes(args, ownMap)
		case optable.Call:
			newIdx, newTyp = translateCall(args, copMap, dynMap, varMap)
		default:
			newIdx, newTyp = translateArgs(args, copMap, dynMap, varMap)
		}
		slot := out.AppendOp(id, newIdx, newTyp)
		ownMap[old] = uint32(slot)
	}
	out.Finalize()
	return out, ownMap
}
