package optimize

import (
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/tag"
	"github.com/dtolpin/tapead/tape"
)

// CoalesceConstants deduplicates f.Cop by value (Equal/Hash), rewrites
// every Const-tagged argument reference and range entry to the
// deduplicated index, and shrinks f.Cop in place. Two distinct cop
// slots holding the same value collapse to one; this commonly happens
// when short-circuit detachment or multiple literal uses push the same
// value into the pool more than once.
func CoalesceConstants[V numeric.Value[V]](f *tape.Fn[V]) {
	copMap, newCop := coalesceValues[V](f.Cop)
	identDyp := identityMap(f.Dyp.NDom + f.Dyp.NDep)
	identVar := identityMap(f.Var.NDom + f.Var.NDep)

	rewriteConstRefs(&f.Dyp, copMap, identDyp, identVar)
	rewriteConstRefs(&f.Var, copMap, identDyp, identVar)

	for i, t := range f.RngTag {
		if t == tag.Const {
			f.RngIndex[i] = copMap[f.RngIndex[i]]
		}
	}
	f.Cop = newCop
}

func coalesceValues[V numeric.Value[V]](cop []V) ([]uint32, []V) {
	buckets := map[uint64][]int{}
	var newCop []V
	remap := make([]uint32, len(cop))
	for i, v := range cop {
		h := v.Hash()
		matched := -1
		for _, nj := range buckets[h] {
			if newCop[nj].Equal(v) {
				matched = nj
				break
			}
		}
		if matched >= 0 {
			remap[i] = uint32(matched)
			continue
		}
		nj := len(newCop)
		newCop = append(newCop, v)
		buckets[h] = append(buckets[h], nj)
		remap[i] = uint32(nj)
	}
	return remap, newCop
}

func rewriteConstRefs(seq *tape.OpSequence, copMap, dynMap, varMap []uint32) {
	for k := 0; k < seq.NDep; k++ {
		args := seq.Args(k)
		newIdx, _ := translateArgs(args, copMap, dynMap, varMap)
		copy(seq.ArgAll[seq.ArgStart[k]:seq.ArgStart[k+1]], newIdx)
	}
}
