package replay_test

import (
	"math"
	"testing"

	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/replay"
	"github.com/dtolpin/tapead/tape"
)

type F = numeric.AzFloat[float64]

func v(x float64) F { return numeric.Az(x) }

// record builds x*x + 3 over a single Var domain element.
func record() *tape.Fn[F] {
	defer tape.DropTape[F]()
	_, avar := tape.StartRecording[F](nil, []F{v(2)})
	x := avar[0]
	y := x.Mul(x).AddV(v(3))
	return tape.StopRecording[F]([]tape.AD[F]{y})
}

func TestForwardValue(t *testing.T) {
	fn := record()
	rng, _ := replay.ForwardVar[F](fn, nil, []F{v(5)})
	if math.Abs(rng[0].Float()-28) > 1e-12 {
		t.Fatalf("f(5) = %v, want 28", rng[0].Float())
	}
}

func TestForwardDer(t *testing.T) {
	fn := record()
	_, varBoth := replay.ForwardVar[F](fn, nil, []F{v(5)})
	der := replay.ForwardDer[F](fn, nil, varBoth, []F{v(1)})
	if math.Abs(der[0].Float()-10) > 1e-12 {
		t.Fatalf("f'(5) = %v, want 10 (2x)", der[0].Float())
	}
}

func TestReverseDer(t *testing.T) {
	fn := record()
	_, varBoth := replay.ForwardVar[F](fn, nil, []F{v(5)})
	adj := replay.ReverseDer[F](fn, nil, varBoth, []F{v(1)})
	if math.Abs(adj[0].Float()-10) > 1e-12 {
		t.Fatalf("reverse df/dx at 5 = %v, want 10", adj[0].Float())
	}
}

func TestForwardDypEmpty(t *testing.T) {
	fn := record()
	dypBoth := replay.ForwardDyp[F](fn, nil)
	if len(dypBoth) != 0 {
		t.Fatalf("expected empty dyp sequence, got %d entries", len(dypBoth))
	}
}
