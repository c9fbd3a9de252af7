package sparsity

import (
	"github.com/dtolpin/tapead/atom"
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/optable"
	"github.com/dtolpin/tapead/tag"
	"github.com/dtolpin/tapead/tape"
)

// ForSparsity walks the variable sequence once and returns a Store
// holding, for every var slot, the set of var-domain indices its value
// depends on (domain slot i's own set is always {i}; a Const/Dyn
// argument contributes nothing, since sparsity tracks dependence on
// the var domain only).
func ForSparsity[V numeric.Value[V]](f *tape.Fn[V]) *Store {
	store := NewStore()
	for i := 0; i < f.Var.NDom; i++ {
		store.Append(singleton(int32(i)))
	}

	pending := map[int]map[int][]int32{}
	for k := 0; k < f.Var.NDep; k++ {
		id := f.Var.IDAll[k]
		args := f.Var.Args(k)
		switch id {
		case optable.Call:
			rowSets := forSparsityCall[V](args, store)
			store.Append(rowSets[0])
			if len(rowSets) > 1 {
				rows := map[int][]int32{}
				for row := 1; row < len(rowSets); row++ {
					rows[row] = rowSets[row]
				}
				pending[f.Var.NDom+k] = rows
			}
		case optable.CallRes:
			callSlot, row := int(args.Idx[0]), int(args.Idx[1])
			store.Append(pending[callSlot][row])
		default:
			store.Append(unionAll(dependSets(args, store)...))
		}
	}
	return store
}

// dependSets gathers the sparsity sets of every Var-tagged argument.
func dependSets(a optable.Args, store *Store) [][]int32 {
	var sets [][]int32
	for i, t := range a.Type {
		if t == tag.Var {
			sets = append(sets, store.Get(int(a.Idx[i])))
		}
	}
	return sets
}

// forSparsityCall computes one sparsity set per result row of a CALL
// op, consulting the atom's RevDepend callback to know which arguments
// each row actually depends on (falling back to "all arguments" when
// the atom registers no RevDepend).
func forSparsityCall[V numeric.Value[V]](a optable.Args, store *Store) [][]int32 {
	atomID, callInfo, nArgs, nResults, _ := atom.Decode(a)
	callArgs := atom.CallArgs(a)

	argSets := make([][]int32, nArgs)
	for i := 0; i < nArgs; i++ {
		if callArgs.Type[i] == tag.Var {
			argSets[i] = store.Get(int(callArgs.Idx[i]))
		}
	}

	cb := atom.Lookup[V](atomID)
	rowSets := make([][]int32, nResults)
	for row := 0; row < nResults; row++ {
		var deps []int
		if cb.RevDepend != nil {
			deps = cb.RevDepend(row, nArgs, callInfo)
		} else {
			deps = make([]int, nArgs)
			for i := range deps {
				deps[i] = i
			}
		}
		var sets [][]int32
		for _, ai := range deps {
			if argSets[ai] != nil {
				sets = append(sets, argSets[ai])
			}
		}
		rowSets[row] = unionAll(sets...)
	}
	return rowSets
}
