package optimize

import (
	"fmt"
	"strings"

	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/optable"
	"github.com/dtolpin/tapead/tag"
	"github.com/dtolpin/tapead/tape"
)

// CompressCSE merges duplicate ops within each sequence: two ops with
// the same opcode and the same (tag, index) argument tuple compute the
// same value, so every later reference to the duplicate is redirected
// to the first occurrence and the duplicate itself is dropped. CALL
// and CALL_RES are never merged, since two calls with identical
// arguments are not guaranteed to be idempotent or side-effect-free.
func CompressCSE[V numeric.Value[V]](f *tape.Fn[V]) {
	identCop := identityMap(len(f.Cop))
	newDyp, dypMap := cseSequence[V](&f.Dyp, identCop, nil, false)
	newVar, varMap := cseSequence[V](&f.Var, identCop, dypMap, true)
	f.Dyp = newDyp
	f.Var = newVar

	for i, t := range f.RngTag {
		switch t {
		case tag.Dyn:
			f.RngIndex[i] = dypMap[f.RngIndex[i]]
		case tag.Var:
			f.RngIndex[i] = varMap[f.RngIndex[i]]
		}
	}
}

// cseSequence rebuilds one sequence with duplicate ops removed.
// externalDynMap supplies the (already finalized) remap for Dyn-tagged
// cross-references when isVar is true (the var sequence's Dyn args
// refer to the dyp sequence, processed first); when isVar is false,
// Dyn-tagged args refer to this same sequence and are resolved through
// its own evolving map instead.
func cseSequence[V numeric.Value[V]](seq *tape.OpSequence, copMap, externalDynMap []uint32, isVar bool) (tape.OpSequence, []uint32) {
	n := seq.NDom + seq.NDep
	ownMap := make([]uint32, n)
	for i := 0; i < seq.NDom; i++ {
		ownMap[i] = uint32(i)
	}

	seen := map[string]uint32{}
	var out tape.OpSequence
	out.NDom = seq.NDom

	for k := 0; k < seq.NDep; k++ {
		old := seq.NDom + k
		id := seq.IDAll[k]
		args := seq.Args(k)

		dynMap, varMap := ownMap, ownMap
		if isVar {
			dynMap = externalDynMap
		}

		switch id {
		case optable.CallRes:
			newIdx, newTyp := translateCallRes(args, ownMap)
			slot := out.AppendOp(id, newIdx, newTyp)
			ownMap[old] = uint32(slot)
		case optable.Call:
			newIdx, newTyp := translateCall(args, copMap, dynMap, varMap)
			slot := out.AppendOp(id, newIdx, newTyp)
			ownMap[old] = uint32(slot)
		default:
			newIdx, newTyp := translateArgs(args, copMap, dynMap, varMap)
			key := cseKey(id, newIdx, newTyp)
			if canon, ok := seen[key]; ok {
				ownMap[old] = canon
				continue
			}
			slot := out.AppendOp(id, newIdx, newTyp)
			ownMap[old] = uint32(slot)
			seen[key] = uint32(slot)
		}
	}
	out.Finalize()
	return out, ownMap
}

func cseKey(id optable.Op, idx []uint32, typ []tag.Tag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", id)
	for i := range idx {
		fmt.Fprintf(&b, "|%d:%d", typ[i], idx[i])
	}
	return b.String()
}
