package checkpoint_test

import (
	"math"
	"testing"

	"github.com/dtolpin/tapead/checkpoint"
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/tape"
)

type F = numeric.AzFloat[float64]

func v(x float64) F { return numeric.Az(x) }

// square compiles y = x0*x1 as a standalone Fn, to be registered as a
// checkpoint and invoked from an outer recording.
func square() *tape.Fn[F] {
	defer tape.DropTape[F]()
	_, avar := tape.StartRecording[F](nil, []F{v(0), v(0)})
	y := avar[0].Mul(avar[1])
	return tape.StopRecording[F]([]tape.AD[F]{y})
}

func TestCallCheckpointNotRecording(t *testing.T) {
	id := checkpoint.RegisterCheckpoint[F](square(), nil, nil)
	out := checkpoint.CallCheckpoint[F](id, 0, []tape.AD[F]{tape.Const[F](v(3)), tape.Const[F](v(4))})
	if len(out) != 1 {
		t.Fatalf("got %d results, want 1", len(out))
	}
	if math.Abs(out[0].Value.Float()-12) > 1e-12 {
		t.Fatalf("checkpoint(3,4) = %v, want 12", out[0].Value.Float())
	}
	if out[0].TapeID != 0 {
		t.Fatalf("expected a detached result outside recording, got TapeID %d", out[0].TapeID)
	}
}

func TestCallCheckpointRecordsNode(t *testing.T) {
	id := checkpoint.RegisterCheckpoint[F](square(), nil, nil)

	defer tape.DropTape[F]()
	_, avar := tape.StartRecording[F](nil, []F{v(3), v(4)})
	out := checkpoint.CallCheckpoint[F](id, 0, []tape.AD[F]{avar[0], avar[1]})
	if out[0].TapeID == 0 {
		t.Fatalf("expected an active result while recording")
	}
	fn := tape.StopRecording[F](out)
	if fn.Var.NDep != 1 {
		t.Fatalf("expected exactly one recorded op (the CALL node), got %d", fn.Var.NDep)
	}
}
