// Package atom implements the atomic-function extension: a registry
// of user-supplied callback sets, each keyed by a small integer id,
// plus the call-time recording that turns an invocation into a single
// CALL node on the tape instead of unrolling the callee's arithmetic
// into the tape itself. Grounded on the reflect-pointer-keyed registry
// pattern (RegisterElemental/ElementalGradient, keyed by
// reflect.ValueOf(f).Pointer()), generalized from "one derivative
// vector per call" to "one callback set per registration, producing
// any number of results with their own dependency structure".
package atom

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/optable"
	"github.com/dtolpin/tapead/tag"
	"github.com/dtolpin/tapead/tape"
)

// Callbacks is the set of functions a registered atom must supply.
// ForwardFunValue is mandatory; the rest may be left nil for atoms
// that are never replayed through the corresponding sweep.
type Callbacks[V numeric.Value[V]] struct {
	// ForwardFunValue computes all nRange numeric results from the
	// numeric parts of the arguments.
	ForwardFunValue func(args []V, callInfo uint64) []V

	// RevDepend reports, for the given result row, the indices (into
	// args) of the arguments that result depends on. Used by the
	// dependency-analysis pass and by forward/subgraph sparsity.
	RevDepend func(row, nArgs int, callInfo uint64) []int

	// ForwardDerValue propagates one directional derivative: dirArgs
	// gives the incoming directional derivative for every argument
	// (zero for arguments with no derivative), and the result is the
	// directional derivative of every output.
	ForwardDerValue func(args, dirArgs []V, callInfo uint64) []V

	// ReverseDerValue distributes one adjoint vector (one entry per
	// result) back onto the arguments, returning one adjoint
	// contribution per argument (zero where the argument does not
	// participate).
	ReverseDerValue func(args, adjRange []V, callInfo uint64) []V
}

type table[V numeric.Value[V]] struct {
	mu      sync.RWMutex
	entries []Callbacks[V]
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
	t := &table[V]{}
	registry[key] = t
	return t
}

// Register adds a callback set to the process-wide atom registry for
// V and returns its id, stable for the lifetime of the process.
func Register[V numeric.Value[V]](cb Callbacks[V]) uint64 {
	if cb.ForwardFunValue == nil {
		panic("atom: ForwardFunValue is required")
	}
	t := defaultTable[V]()
	t.mu.Lock()
	defer t.mu.Unlock()
	id := uint64(len(t.entries))
	t.entries = append(t.entries, cb)
	return id
}

// Lookup returns the callback set registered under id, for use by the
// replay and sparsity sweeps when they encounter a CALL opcode.
func Lookup[V numeric.Value[V]](id uint64) Callbacks[V] {
	t := defaultTable[V]()
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id >= uint64(len(t.entries)) {
		panic(fmt.Sprintf("atom: id %d is not registered", id))
	}
	return t.entries[id]
}

// CallPrefixLen is the fixed prefix of a CALL op's argument vector:
// atom id, call info, argument count, result count, then the
// flag-block offset, followed by one (idx, tag) pair per argument.
const CallPrefixLen = 5

// Decode extracts a CALL op's fixed fields from its Args, for use by
// replay and sparsity sweeps walking the tape.
func Decode(a optable.Args) (atomID, callInfo uint64, nArgs, nResults int, flagsOff uint32) {
	return uint64(a.Idx[0]), uint64(a.Idx[1]), int(a.Idx[2]), int(a.Idx[3]), a.Idx[4]
}

// CallArgs returns the (idx, tag) slice describing the call's actual
// arguments, i.e. Args with the fixed prefix stripped.
func CallArgs(a optable.Args) optable.Args {
	return optable.Args{Idx: a.Idx[CallPrefixLen:], Type: a.Type[CallPrefixLen:]}
}

// Call invokes the registered atom, recording a CALL opcode (plus one
// CALL_RES per extra result) onto the calling goroutine's live tape
// when it is recording, or simply evaluating the numeric result when
// it is not.
//
// adomain holds the call's arguments; nRange is the number of results
// the callback produces. The first result's AD value carries the CALL
// node itself; every subsequent result is a CALL_RES node referencing
// it by row.
func Call[V numeric.Value[V]](atomID uint64, callInfo uint64, nRange int, adomain []tape.AD[V]) []tape.AD[V] {
	cb := Lookup[V](atomID)

	args := make([]V, len(adomain))
	for i, a := range adomain {
		args[i] = a.Value
	}
	values := cb.ForwardFunValue(args, callInfo)
	if len(values) != nRange {
		panic(fmt.Sprintf("atom: ForwardFunValue returned %d results, want %d", len(values), nRange))
	}

	rec, recording := tape.ActiveRecording[V]()
	if !recording {
		out := make([]tape.AD[V], nRange)
		for i := range out {
			out[i] = tape.Const[V](values[i])
		}
		return out
	}

	argIdx := make([]uint32, len(adomain))
	argTag := make([]tag.Tag, len(adomain))
	for i, a := range adomain {
		active, t := rec.Classify(a)
		if active {
			argIdx[i], argTag[i] = a.Index, t
		} else {
			argIdx[i], argTag[i] = rec.PushConst(a.Value), tag.Const
		}
	}

	// Each result's tag is the max over the tags of the arguments it
	// depends on, per the registered dependency callback. A call is
	// placed in the var sequence iff at least one result is Var
	// (i.e. at least one depended-on argument is Var); otherwise it
	// is a pure dyp-sequence call.
	resultTags := make([]tag.Tag, nRange)
	intoVar := false
	for row := 0; row < nRange; row++ {
		rt := tag.Const
		if cb.RevDepend != nil {
			for _, ai := range cb.RevDepend(row, len(adomain), callInfo) {
				rt = tag.Max(rt, argTag[ai])
			}
		} else {
			// No dependency callback: conservatively depend on every
			// argument.
			for _, at := range argTag {
				rt = tag.Max(rt, at)
			}
		}
		resultTags[row] = rt
		if rt == tag.Var {
			intoVar = true
		}
	}

	flagsOff := rec.PushFlags(intoVar, 1+nRange)

	callIdx := make([]uint32, 0, CallPrefixLen+len(adomain))
	callIdx = append(callIdx, uint32(atomID), uint32(callInfo), uint32(len(adomain)), uint32(nRange), uint32(flagsOff))
	callIdx = append(callIdx, argIdx...)
	callTyp := make([]tag.Tag, len(callIdx))
	for i := 0; i < CallPrefixLen; i++ {
		callTyp[i] = tag.Empty
	}
	copy(callTyp[CallPrefixLen:], argTag)

	slot := rec.AppendOp(intoVar, optable.Call, callIdx, callTyp)

	results := make([]tape.AD[V], nRange)
	results[0] = rec.Active(slot, resultTags[0], values[0])
	for row := 1; row < nRange; row++ {
		resSlot := rec.AppendOp(intoVar, optable.CallRes, []uint32{uint32(slot), uint32(row)}, []tag.Tag{tag.Empty, tag.Empty})
		results[row] = rec.Active(resSlot, resultTags[row], values[row])
	}
	return results
}
