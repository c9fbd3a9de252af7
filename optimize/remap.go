// Package optimize implements the compile-time rewrite pipeline that
// turns a freshly recorded tape.Fn[V] into an equivalent, smaller one:
// constant deduplication, common-subexpression elimination, and
// dead-code elimination, the last driven by a reverse liveness pass.
// Grounded on the constant-folding and short-circuit groundwork
// already present in tape.AD[V]'s record step, generalized here into a
// separate, whole-function rewrite rather than per-op folding.
package optimize

import (
	"github.com/dtolpin/tapead/atom"
	"github.com/dtolpin/tapead/optable"
	"github.com/dtolpin/tapead/tag"
)

// identityMap returns a []uint32 where element i is i, for sizes that
// don't change across a pass (e.g. a pool untouched by the pass).
func identityMap(n int) []uint32 {
	m := make([]uint32, n)
	for i := range m {
		m[i] = uint32(i)
	}
	return m
}

// translateArgs rewrites one op's argument slots through the pool
// remappings appropriate to each argument's tag. Empty-tagged entries
// (CALL's fixed prefix fields) pass through unchanged; CALL_RES's
// linkage fields are handled by its caller instead, since a call slot
// reference needs the *sequence's own* remap, not any of these three.
func translateArgs(a optable.Args, copMap, dynMap, varMap []uint32) ([]uint32, []tag.Tag) {
	idx := make([]uint32, len(a.Idx))
	typ := make([]tag.Tag, len(a.Type))
	copy(typ, a.Type)
	for i, t := range a.Type {
		switch t {
		case tag.Const:
			idx[i] = copMap[a.Idx[i]]
		case tag.Dyn:
			idx[i] = dynMap[a.Idx[i]]
		case tag.Var:
			idx[i] = varMap[a.Idx[i]]
		default:
			idx[i] = a.Idx[i]
		}
	}
	return idx, typ
}

// translateCall rewrites a CALL op's arguments: the five-field prefix
// is left untouched, and only the actual call arguments are
// translated through the pool remappings.
func translateCall(a optable.Args, copMap, dynMap, varMap []uint32) ([]uint32, []tag.Tag) {
	prefix := append([]uint32{}, a.Idx[:atom.CallPrefixLen]...)
	callArgs := optable.Args{Idx: a.Idx[atom.CallPrefixLen:], Type: a.Type[atom.CallPrefixLen:]}
	tailIdx, tailTyp := translateArgs(callArgs, copMap, dynMap, varMap)

	idx := append(prefix, tailIdx...)
	typ := make([]tag.Tag, atom.CallPrefixLen+len(tailTyp))
	for i := 0; i < atom.CallPrefixLen; i++ {
		typ[i] = tag.Empty
	}
	copy(typ[atom.CallPrefixLen:], tailTyp)
	return idx, typ
}

// translateCallRes rewrites a CALL_RES op's {callSlot, row} linkage:
// callSlot is remapped through ownMap (the sequence being built, since
// a call is always in the same sequence as its CALL_RES entries); row
// is not a slot reference and is left untouched.
func translateCallRes(a optable.Args, ownMap []uint32) ([]uint32, []tag.Tag) {
	return []uint32{ownMap[a.Idx[0]], a.Idx[1]}, []tag.Tag{tag.Empty, tag.Empty}
}
