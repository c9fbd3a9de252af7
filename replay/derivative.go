package replay

import (
	"fmt"

	"github.com/dtolpin/tapead/atom"
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/optable"
	"github.com/dtolpin/tapead/tag"
	"github.com/dtolpin/tapead/tape"
)

// ForwardDer propagates one directional derivative through the
// variable sequence: domDer gives the seed derivative for every
// var-domain element, and the result gives the directional derivative
// of every range element (zero for Const/Dyn-tagged outputs, which
// carry no derivative). Only Var-tagged values carry a derivative;
// dypBoth and varBoth must be the value vectors from a prior
// ForwardDyp/ForwardVar pass over the same inputs.
func ForwardDer[V numeric.Value[V]](f *tape.Fn[V], dypBoth, varBoth, domDer []V) []V {
	if len(domDer) != f.Var.NDom {
		panic(fmt.Sprintf("replay: domDer has %d entries, function wants %d", len(domDer), f.Var.NDom))
	}
	var zero V
	varDer := make([]V, len(varBoth))
	copy(varDer, domDer)
	for i := f.Var.NDom; i < len(varDer); i++ {
		varDer[i] = zero
	}

	table := optable.Default[V]()
	pools := optable.Pools[V]{Cop: f.Cop, Dyp: dypBoth, Var: varBoth, Zero: zero}
	pending := map[int][]V{}
	for k := 0; k < f.Var.NDep; k++ {
		id := f.Var.IDAll[k]
		args := f.Var.Args(k)
		resIdx := f.Var.NDom + k
		switch id {
		case optable.Call:
			ders := forwardDerCall[V](args, pools, varDer)
			varDer[resIdx] = ders[0]
			if len(ders) > 1 {
				pending[resIdx] = ders
			}
		case optable.CallRes:
			callSlot, row := int(args.Idx[0]), int(args.Idx[1])
			varDer[resIdx] = pending[callSlot][row]
		default:
			varDer[resIdx] = table.Entry(id).ForwardDer(args, pools, varDer, resIdx)
		}
	}

	rngDer := make([]V, len(f.RngTag))
	for i := range rngDer {
		if f.RngTag[i] == tag.Var {
			rngDer[i] = varDer[f.RngIndex[i]]
		} else {
			rngDer[i] = zero
		}
	}
	return rngDer
}

func forwardDerCall[V numeric.Value[V]](a optable.Args, p optable.Pools[V], varDer []V) []V {
	atomID, callInfo, nArgs, nResults, _ := atom.Decode(a)
	callArgs := atom.CallArgs(a)
	args := make([]V, nArgs)
	dirArgs := make([]V, nArgs)
	for i := 0; i < nArgs; i++ {
		args[i] = p.Get(callArgs.Type[i], callArgs.Idx[i])
		if callArgs.Type[i] == tag.Var {
			dirArgs[i] = varDer[callArgs.Idx[i]]
		} else {
			dirArgs[i] = p.Zero
		}
	}
	cb := atom.Lookup[V](atomID)
	if cb.ForwardDerValue == nil {
		panic(fmt.Sprintf("replay: atom %d has no ForwardDerValue", atomID))
	}
	ders := cb.ForwardDerValue(args, dirArgs, callInfo)
	if len(ders) != nResults {
		panic(fmt.Sprintf("replay: atom %d ForwardDerValue returned %d results, want %d", atomID, len(ders), nResults))
	}
	return ders
}

// ReverseDer propagates one adjoint vector (one entry per range
// element) back through the variable sequence, returning the adjoint
// accumulated on every var-domain element. rangeAdj entries paired
// with a Const/Dyn-tagged output are ignored (a non-Var output cannot
// carry an adjoint back into the var domain).
func ReverseDer[V numeric.Value[V]](f *tape.Fn[V], dypBoth, varBoth, rangeAdj []V) []V {
	if len(rangeAdj) != len(f.RngTag) {
		panic(fmt.Sprintf("replay: rangeAdj has %d entries, function has %d outputs", len(rangeAdj), len(f.RngTag)))
	}
	var zero V
	varAdj := make([]V, len(varBoth))
	for i := range varAdj {
		varAdj[i] = zero
	}
	for i, t := range f.RngTag {
		if t == tag.Var {
			idx := f.RngIndex[i]
			varAdj[idx] = varAdj[idx].Add(rangeAdj[i])
		}
	}

	table := optable.Default[V]()
	pools := optable.Pools[V]{Cop: f.Cop, Dyp: dypBoth, Var: varBoth, Zero: zero}
	pendingRows := map[int]map[int]V{}
	for k := f.Var.NDep - 1; k >= 0; k-- {
		id := f.Var.IDAll[k]
		args := f.Var.Args(k)
		resIdx := f.Var.NDom + k
		switch id {
		case optable.CallRes:
			callSlot, row := int(args.Idx[0]), int(args.Idx[1])
			rows := pendingRows[callSlot]
			if rows == nil {
				rows = map[int]V{}
				pendingRows[callSlot] = rows
			}
			rows[row] = varAdj[resIdx]
		case optable.Call:
			reverseDerCall[V](args, pools, varAdj, resIdx, pendingRows[resIdx])
		default:
			table.Entry(id).ReverseDer(args, pools, varAdj, resIdx, varAdj[resIdx])
		}
	}
	return varAdj[:f.Var.NDom]
}

func reverseDerCall[V numeric.Value[V]](a optable.Args, p optable.Pools[V], varAdj []V, callSlot int, extraRows map[int]V) {
	atomID, callInfo, nArgs, nResults, _ := atom.Decode(a)
	callArgs := atom.CallArgs(a)
	args := make([]V, nArgs)
	for i := 0; i < nArgs; i++ {
		args[i] = p.Get(callArgs.Type[i], callArgs.Idx[i])
	}
	adjRange := make([]V, nResults)
	adjRange[0] = varAdj[callSlot]
	for row, v := range extraRows {
		adjRange[row] = v
	}
	cb := atom.Lookup[V](atomID)
	if cb.ReverseDerValue == nil {
		panic(fmt.Sprintf("replay: atom %d has no ReverseDerValue", atomID))
	}
	contrib := cb.ReverseDerValue(args, adjRange, callInfo)
	if len(contrib) != nArgs {
		panic(fmt.Sprintf("replay: atom %d ReverseDerValue returned %d contributions, want %d", atomID, len(contrib), nArgs))
	}
	for i := 0; i < nArgs; i++ {
		if callArgs.Type[i] != tag.Var {
			continue
		}
		idx := callArgs.Idx[i]
		varAdj[idx] = varAdj[idx].Add(contrib[i])
	}
}
