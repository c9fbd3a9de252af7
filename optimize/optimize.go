package optimize

import (
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/tape"
)

// Optimize runs the four-pass rewrite pipeline over f in place:
// constant coalescing and CSE first canonicalize the graph so that
// the final liveness pass sees the smallest possible set of distinct
// nodes, then dead-code elimination compacts everything down to what
// the range actually reads. Running liveness before canonicalization
// would mark now-redundant duplicates live independently of each
// other, so the order here is deliberate, not incidental.
func Optimize[V numeric.Value[V]](f *tape.Fn[V]) {
	CoalesceConstants[V](f)
	CompressCSE[V](f)
	DeadCodeCopy[V](f)
}
