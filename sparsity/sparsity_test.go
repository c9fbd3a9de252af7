package sparsity_test

import (
	"testing"

	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/replay"
	"github.com/dtolpin/tapead/sparsity"
	"github.com/dtolpin/tapead/tape"
)

type F = numeric.AzFloat[float64]

func v(x float64) F { return numeric.Az(x) }

// record builds [x0*x1, x1+1] over a two-element Var domain, so output
// 0 depends on both inputs and output 1 depends only on input 1.
func record() *tape.Fn[F] {
	defer tape.DropTape[F]()
	_, avar := tape.StartRecording[F](nil, []F{v(2), v(3)})
	x0, x1 := avar[0], avar[1]
	y0 := x0.Mul(x1)
	y1 := x1.AddV(v(1))
	return tape.StopRecording[F]([]tape.AD[F]{y0, y1})
}

func TestForSparsity(t *testing.T) {
	fn := record()
	store := sparsity.ForSparsity[F](fn)
	y0Set := store.Get(int(fn.RngIndex[0]))
	if len(y0Set) != 2 {
		t.Fatalf("y0 depends on %v, want both inputs", y0Set)
	}
	y1Set := store.Get(int(fn.RngIndex[1]))
	if len(y1Set) != 1 || y1Set[0] != 1 {
		t.Fatalf("y1 depends on %v, want only input 1", y1Set)
	}
}

func TestSubSparsity(t *testing.T) {
	fn := record()
	store := sparsity.SubSparsity[F](fn)
	in0 := store.Get(0)
	if len(in0) != 1 || in0[0] != 0 {
		t.Fatalf("input 0 used by rows %v, want only row 0", in0)
	}
	in1 := store.Get(1)
	if len(in1) != 2 {
		t.Fatalf("input 1 used by rows %v, want both rows", in1)
	}
}

func TestSubgraphDer(t *testing.T) {
	fn := record()
	_, varBoth := replay.ForwardVar[F](fn, nil, []F{v(2), v(3)})
	pattern := sparsity.Pattern[F](fn)
	jac := sparsity.SubgraphDer[F](fn, nil, varBoth, pattern)
	if got := jac[sparsity.Entry{Row: 0, Col: 0}].Float(); got != 3 {
		t.Fatalf("dy0/dx0 = %v, want 3 (x1)", got)
	}
	if got := jac[sparsity.Entry{Row: 0, Col: 1}].Float(); got != 2 {
		t.Fatalf("dy0/dx1 = %v, want 2 (x0)", got)
	}
	if got := jac[sparsity.Entry{Row: 1, Col: 1}].Float(); got != 1 {
		t.Fatalf("dy1/dx1 = %v, want 1", got)
	}
}
