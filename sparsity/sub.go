package sparsity

import (
	"github.com/dtolpin/tapead/atom"
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/optable"
	"github.com/dtolpin/tapead/tag"
	"github.com/dtolpin/tapead/tape"
)

// SubSparsity walks the variable sequence back to front and returns a
// Store with exactly f.Var.NDom rows: row i holds the sorted set of
// output-row indices (into f.RngTag/f.RngIndex) whose value depends on
// var-domain element i. This is the dual of ForSparsity, and is what a
// Jacobian-coloring pass groups columns by (columns whose output sets
// are disjoint can share one forward-mode sweep).
func SubSparsity[V numeric.Value[V]](f *tape.Fn[V]) *Store {
	usedBy := make([][]int32, f.Var.NDom+f.Var.NDep)
	for i, t := range f.RngTag {
		if t != tag.Var {
			continue
		}
		idx := f.RngIndex[i]
		usedBy[idx] = union(usedBy[idx], singleton(int32(i)))
	}

	pending := map[int]map[int][]int32{}
	for k := f.Var.NDep - 1; k >= 0; k-- {
		id := f.Var.IDAll[k]
		args := f.Var.Args(k)
		resIdx := f.Var.NDom + k
		U := usedBy[resIdx]

		switch id {
		case optable.CallRes:
			callSlot, row := int(args.Idx[0]), int(args.Idx[1])
			rows := pending[callSlot]
			if rows == nil {
				rows = map[int][]int32{}
				pending[callSlot] = rows
			}
			rows[row] = U
		case optable.Call:
			subSparsityCall[V](args, U, pending[resIdx], usedBy)
		default:
			if len(U) == 0 {
				continue
			}
			for i, t := range args.Type {
				if t == tag.Var {
					idx := args.Idx[i]
					usedBy[idx] = union(usedBy[idx], U)
				}
			}
		}
	}

	store := NewStore()
	for i := 0; i < f.Var.NDom; i++ {
		store.Append(usedBy[i])
	}
	return store
}

func subSparsityCall[V numeric.Value[V]](a optable.Args, row0 []int32, extraRows map[int][]int32, usedBy [][]int32) {
	atomID, callInfo, nArgs, nResults, _ := atom.Decode(a)
	callArgs := atom.CallArgs(a)

	rowSets := make([][]int32, nResults)
	rowSets[0] = row0
	for row, set := range extraRows {
		rowSets[row] = set
	}

	cb := atom.Lookup[V](atomID)
	for row := 0; row < nResults; row++ {
		U := rowSets[row]
		if len(U) == 0 {
			continue
		}
		var deps []int
		if cb.RevDepend != nil {
			deps = cb.RevDepend(row, nArgs, callInfo)
		} else {
			deps = make([]int, nArgs)
			for i := range deps {
				deps[i] = i
			}
		}
		for _, ai := range deps {
			if callArgs.Type[ai] != tag.Var {
				continue
			}
			idx := callArgs.Idx[ai]
			usedBy[idx] = union(usedBy[idx], U)
		}
	}
}
