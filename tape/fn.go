package tape

import (
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/tag"
)

// Fn is the immutable compilation artifact: two finalized
// OpSequences, a constant pool, and a range descriptor giving, for
// each output slot, its tag and the index into the corresponding
// pool. Grounded on ad/tape.go's Pop/truncate-in-place idiom,
// generalized from "truncate back to a saved mark" (that approach has
// no compiled, reusable function object) to "move into a fresh
// immutable owner", since nested recording is disallowed.
type Fn[V numeric.Value[V]] struct {
	Dyp OpSequence
	Var OpSequence
	Cop []V

	RngTag   []tag.Tag
	RngIndex []uint32
}

// NDomDyp and NDomVar report the sizes of the two independent domains.
func (f *Fn[V]) NDomDyp() int { return f.Dyp.NDom }
func (f *Fn[V]) NDomVar() int { return f.Var.NDom }

// NRange reports the number of output slots.
func (f *Fn[V]) NRange() int { return len(f.RngTag) }

// Optimization and the replay sweeps operate on Fn from their
// own packages (github.com/dtolpin/tapead/{replay,optimize,sparsity})
// rather than as methods here, the same way a function-representation
// module stays separate from the Fn struct itself in similar designs —
// Fn stays a plain data holder.
