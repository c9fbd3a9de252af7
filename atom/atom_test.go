package atom_test

import (
	"math"
	"testing"

	"github.com/dtolpin/tapead/atom"
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/tape"
)

type F = numeric.AzFloat[float64]

func sq(v float64) F { return numeric.Az(v) }

func registerSquare() uint64 {
	return atom.Register[F](atom.Callbacks[F]{
		ForwardFunValue: func(args []F, callInfo uint64) []F {
			return []F{sq(args[0].Float() * args[0].Float())}
		},
		RevDepend: func(row, nArgs int, callInfo uint64) []int {
			return []int{0}
		},
	})
}

func TestCallNotRecording(t *testing.T) {
	id := registerSquare()
	out := atom.Call[F](id, 0, 1, []tape.AD[F]{tape.Const[F](sq(3))})
	if out[0].Value.Float() != 9 {
		t.Fatalf("got %v, want 9", out[0].Value.Float())
	}
	if out[0].TapeID != 0 {
		t.Fatalf("expected detached result, got tape id %d", out[0].TapeID)
	}
}

func TestCallRecordsNode(t *testing.T) {
	defer tape.DropTape[F]()
	id := registerSquare()

	adyp, _ := tape.StartRecording[F]([]F{sq(3)}, nil)
	out := atom.Call[F](id, 0, 1, []tape.AD[F]{adyp[0]})
	if math.Abs(out[0].Value.Float()-9) > 1e-12 {
		t.Fatalf("got %v, want 9", out[0].Value.Float())
	}
	if out[0].TapeID == 0 {
		t.Fatal("expected an active CALL result while recording")
	}
	fn := tape.StopRecording[F]([]tape.AD[F]{out[0]})
	if fn.Dyp.NDep != 1 {
		t.Fatalf("expected one recorded CALL op, got %d", fn.Dyp.NDep)
	}
}
