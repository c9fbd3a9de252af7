// Package replay implements the value and derivative sweeps that walk
// a compiled tape.Fn[V] front to back (or back to front, for the
// reverse sweep): the forward value passes fill in every op's result
// from its recorded arguments, and the derivative passes propagate a
// directional derivative or an adjoint alongside them. Grounded on the
// single forward/backward pass pattern (partials/backward walking a
// flat op vector index by index), split here into the independent
// dyp/var sequences and generalized to dispatch through optable.Table
// rather than a type switch.
package replay

import (
	"fmt"

	"github.com/dtolpin/tapead/atom"
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/optable"
	"github.com/dtolpin/tapead/tape"
)

// ForwardDyp evaluates the dynamic-parameter sequence, returning the
// full dyp value vector (domain prefix followed by every op result).
func ForwardDyp[V numeric.Value[V]](f *tape.Fn[V], dypDom []V) []V {
	if len(dypDom) != f.Dyp.NDom {
		panic(fmt.Sprintf("replay: dyp domain has %d values, function wants %d", len(dypDom), f.Dyp.NDom))
	}
	var zero V
	dypBoth := make([]V, f.Dyp.NDom+f.Dyp.NDep)
	copy(dypBoth, dypDom)
	for i := f.Dyp.NDom; i < len(dypBoth); i++ {
		dypBoth[i] = zero.NaN()
	}

	table := optable.Default[V]()
	pools := optable.Pools[V]{Cop: f.Cop, Dyp: dypBoth, Zero: zero}
	pending := map[int][]V{}
	for k := 0; k < f.Dyp.NDep; k++ {
		id := f.Dyp.IDAll[k]
		args := f.Dyp.Args(k)
		resIdx := f.Dyp.NDom + k
		switch id {
		case optable.Call:
			values := evalCall[V](args, pools)
			dypBoth[resIdx] = values[0]
			if len(values) > 1 {
				pending[resIdx] = values
			}
		case optable.CallRes:
			callSlot, row := int(args.Idx[0]), int(args.Idx[1])
			dypBoth[resIdx] = pending[callSlot][row]
		default:
			dypBoth[resIdx] = table.Entry(id).ForwardDyp(args, pools)
		}
	}
	return dypBoth
}

// ForwardVar evaluates the variable sequence, returning the function's
// range and the full var value vector. dypBoth must be the result of
// ForwardDyp whenever the function's dyp sequence is non-empty.
func ForwardVar[V numeric.Value[V]](f *tape.Fn[V], dypBoth, varDom []V) (rng []V, varBoth []V) {
	if len(varDom) != f.Var.NDom {
		panic(fmt.Sprintf("replay: var domain has %d values, function wants %d", len(varDom), f.Var.NDom))
	}
	var zero V
	varBoth = make([]V, f.Var.NDom+f.Var.NDep)
	copy(varBoth, varDom)
	for i := f.Var.NDom; i < len(varBoth); i++ {
		varBoth[i] = zero.NaN()
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
			values := evalCall[V](args, pools)
			varBoth[resIdx] = values[0]
			if len(values) > 1 {
				pending[resIdx] = values
			}
		case optable.CallRes:
			callSlot, row := int(args.Idx[0]), int(args.Idx[1])
			varBoth[resIdx] = pending[callSlot][row]
		default:
			varBoth[resIdx] = table.Entry(id).ForwardVar(args, pools)
		}
	}

	rng = make([]V, len(f.RngTag))
	for i := range rng {
		rng[i] = pools.Get(f.RngTag[i], f.RngIndex[i])
	}
	return rng, varBoth
}

// evalCall computes a CALL node's full result vector by invoking the
// registered atom's ForwardFunValue on the call's actual arguments,
// read out of whichever pools the replay pass currently has open.
func evalCall[V numeric.Value[V]](a optable.Args, p optable.Pools[V]) []V {
	atomID, callInfo, nArgs, nResults, _ := atom.Decode(a)
	callArgs := atom.CallArgs(a)
	args := make([]V, nArgs)
	for i := 0; i < nArgs; i++ {
		args[i] = p.Get(callArgs.Type[i], callArgs.Idx[i])
	}
	values := atom.Lookup[V](atomID).ForwardFunValue(args, callInfo)
	if len(values) != nResults {
		panic(fmt.Sprintf("replay: atom %d returned %d results, op expects %d", atomID, len(values), nResults))
	}
	return values
}
