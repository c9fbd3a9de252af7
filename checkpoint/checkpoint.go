// Package checkpoint implements the second half of the atomic-function
// extension: registering a compiled tape.Fn[V] as an atom of its own,
// so a large subgraph can be replayed as one CALL node instead of
// unrolling its ops onto the enclosing tape. Kept separate from
// package atom (rather than folded into it, as the callback-table
// naming alone might suggest) because evaluating a checkpoint's
// callbacks needs replay.ForwardDyp/ForwardVar/ForwardDer/ReverseDer
// and sparsity.Pattern, and both replay and sparsity already import
// atom to dispatch CALL nodes during their own sweeps — folding
// checkpoint registration into atom would close that into an import
// cycle. register_checkpoint/call_checkpoint's contract is preserved
// exactly; only the package boundary moved.
package checkpoint

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/dtolpin/tapead/atom"
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/replay"
	"github.com/dtolpin/tapead/sparsity"
	"github.com/dtolpin/tapead/tape"
)

// entry is the bookkeeping a registered checkpoint keeps beyond what
// atom.Callbacks already holds: the compiled function itself (needed
// to re-derive its domain sizes and sparsity pattern) and the optional
// nested checkpoint ids that let higher-order derivative sweeps
// delegate instead of re-differentiating from scratch.
type entry[V numeric.Value[V]] struct {
	fn        *tape.Fn[V]
	pattern   []sparsity.Entry
	forwardID *uint64
	reverseID *uint64
}

type table[V numeric.Value[V]] struct {
	mu      sync.RWMutex
	entries map[uint64]*entry[V]
}

var (
	registryMu sync.Mutex
	registry   = map[reflect.Type]any{}
)

func defaultTable[V numeric.Value[V]]() *table[V] {
	var zero V
	key := reflect.TypeOf(zero)
	registryMu.Lock()
	defer registryMu.Unlock()
	if t, ok := registry[key]; ok {
		return t.(*table[V])
	}
	t := &table[V]{entries: map[uint64]*entry[V]{}}
	registry[key] = t
	return t
}

// RegisterCheckpoint registers fn as an atom and returns its id
// (doubling as the checkpoint id: call_checkpoint is sugar over
// call_atom with the checkpoint's own dispatch table, so the two id
// spaces are one and the same here).
//
// forwardID and reverseID, when non-nil, name checkpoints already
// registered whose own function *is* the forward-directional-
// derivative (respectively reverse-adjoint) sweep of fn; when set,
// ForwardDerValue/ReverseDerValue delegate to them instead of running
// replay.ForwardDer/ReverseDer directly, which is how a second-order
// checkpoint is built: register the base function, then register its
// derivative sweep as a second atom and feed that id back in here.
// fn is required to have an empty dyp domain: a checkpoint is always
// called as a pure Var-domain subgraph, never with its own Dyn inputs.
func RegisterCheckpoint[V numeric.Value[V]](fn *tape.Fn[V], forwardID, reverseID *uint64) uint64 {
	if fn.Dyp.NDom != 0 {
		panic("checkpoint: registered function must have an empty dyp domain")
	}

	e := &entry[V]{
		fn:        fn,
		pattern:   sparsity.Pattern[V](fn),
		forwardID: forwardID,
		reverseID: reverseID,
	}

	cb := atom.Callbacks[V]{
		ForwardFunValue: func(args []V, callInfo uint64) []V {
			dypBoth := replay.ForwardDyp[V](fn, nil)
			rng, _ := replay.ForwardVar[V](fn, dypBoth, args)
			return rng
		},
		RevDepend: func(row, nArgs int, callInfo uint64) []int {
			var cols []int
			for _, pe := range e.pattern {
				if pe.Row == row {
					cols = append(cols, pe.Col)
				}
			}
			return cols
		},
		ForwardDerValue: func(args, dirArgs []V, callInfo uint64) []V {
			if e.forwardID != nil {
				nested := atom.Lookup[V](*e.forwardID)
				both := append(append([]V{}, args...), dirArgs...)
				return nested.ForwardFunValue(both, callInfo)
			}
			dypBoth := replay.ForwardDyp[V](fn, nil)
			_, varBoth := replay.ForwardVar[V](fn, dypBoth, args)
			return replay.ForwardDer[V](fn, dypBoth, varBoth, dirArgs)
		},
		ReverseDerValue: func(args, adjRange []V, callInfo uint64) []V {
			if e.reverseID != nil {
				nested := atom.Lookup[V](*e.reverseID)
				both := append(append([]V{}, args...), adjRange...)
				return nested.ForwardFunValue(both, callInfo)
			}
			dypBoth := replay.ForwardDyp[V](fn, nil)
			_, varBoth := replay.ForwardVar[V](fn, dypBoth, args)
			return replay.ReverseDer[V](fn, dypBoth, varBoth, adjRange)
		},
	}

	id := atom.Register[V](cb)

	t := defaultTable[V]()
	t.mu.Lock()
	t.entries[id] = e
	t.mu.Unlock()
	return id
}

// CallCheckpoint invokes a registered checkpoint exactly as atom.Call
// would invoke any other atom, deriving the result count from the
// checkpoint's own compiled range rather than requiring the caller to
// repeat it.
func CallCheckpoint[V numeric.Value[V]](checkpointID uint64, callInfo uint64, adomain []tape.AD[V]) []tape.AD[V] {
	t := defaultTable[V]()
	t.mu.RLock()
	e, ok := t.entries[checkpointID]
	t.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("checkpoint: id %d is not registered", checkpointID))
	}
	return atom.Call[V](checkpointID, callInfo, e.fn.NRange(), adomain)
}
