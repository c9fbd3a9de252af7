package sparsity

import (
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/replay"
	"github.com/dtolpin/tapead/tag"
	"github.com/dtolpin/tapead/tape"
)

// Entry is one nonzero position in a function's Jacobian: Row indexes
// the range, Col indexes the var domain.
type Entry struct {
	Row, Col int
}

// Pattern returns every (row, col) pair for which range output row can
// depend on var-domain column col, derived from ForSparsity without
// evaluating the function.
func Pattern[V numeric.Value[V]](f *tape.Fn[V]) []Entry {
	store := ForSparsity[V](f)
	var out []Entry
	for row, t := range f.RngTag {
		if t != tag.Var {
			continue
		}
		for _, col := range store.Get(int(f.RngIndex[row])) {
			out = append(out, Entry{Row: row, Col: int(col)})
		}
	}
	return out
}

// SubgraphDer computes the Jacobian restricted to Pattern's nonzero
// positions, one var-domain column at a time via forward-mode
// directional derivatives. This evaluates one ForwardDer sweep per
// distinct column touched by the pattern rather than coloring columns
// into derivative-sharing groups; DESIGN.md records this as a
// deliberate simplification of full seed compression.
func SubgraphDer[V numeric.Value[V]](f *tape.Fn[V], dypBoth, varBoth []V, pattern []Entry) map[Entry]V {
	var zero V
	cols := map[int]bool{}
	for _, e := range pattern {
		cols[e.Col] = true
	}

	colDer := map[int][]V{}
	for col := range cols {
		seed := make([]V, f.Var.NDom)
		for i := range seed {
			seed[i] = zero
		}
		seed[col] = zero.One()
		colDer[col] = replay.ForwardDer[V](f, dypBoth, varBoth, seed)
	}

	out := make(map[Entry]V, len(pattern))
	for _, e := range pattern {
		out[e] = colDer[e.Col][e.Row]
	}
	return out
}
