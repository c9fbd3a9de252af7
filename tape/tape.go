package tape

import (
	"fmt"

	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/tag"
)

// Tape is the per-thread recorder: two OpSequences sharing a
// constant pool. At rest, recording is false, all vectors are empty
// and tapeID is 0. Between StartRecording and StopRecording, recording
// is true and tapeID is a unique non-zero id.
type Tape[V numeric.Value[V]] struct {
	recording bool
	tapeID    uint64
	cop       []V
	dyp       OpSequence
	var_      OpSequence
}

func newTape[V numeric.Value[V]]() *Tape[V] {
	return &Tape[V]{}
}

// pushConst copies v into the constant pool and returns its index.
func (t *Tape[V]) pushConst(v V) uint32 {
	t.cop = append(t.cop, v)
	return uint32(len(t.cop) - 1)
}

// StartRecording reserves a fresh tape id for the calling goroutine's
// tape and returns active scalars for the dynamic-parameter and
// variable domains. Panics if the tape is already recording.
func StartRecording[V numeric.Value[V]](dypDom, varDom []V) (adyp, avar []AD[V]) {
	t := threadTape[V]()
	if t.recording {
		panic("tape: start_recording called while already recording")
	}

	var zero V
	t.recording = true
	t.tapeID = newTapeID()
	t.cop = []V{zero.NaN()} // cop[0] is always NaN
	t.dyp = OpSequence{NDom: len(dypDom)}
	t.var_ = OpSequence{NDom: len(varDom)}

	adyp = make([]AD[V], len(dypDom))
	for i, v := range dypDom {
		adyp[i] = AD[V]{TapeID: t.tapeID, Index: uint32(i), Tag: tag.Dyn, Value: v}
	}
	avar = make([]AD[V], len(varDom))
	for i, v := range varDom {
		avar[i] = AD[V]{TapeID: t.tapeID, Index: uint32(i), Tag: tag.Var, Value: v}
	}
	return adyp, avar
}

// StopRecording freezes the calling goroutine's current recording into
// an immutable Fn and returns the tape to the idle state. arange gives
// the function's outputs; each must either belong to the tape being
// stopped or be fully detached (tape id 0, treated as Const). Panics
// if the tape is not currently recording, or if a range value belongs
// to a different tape.
func StopRecording[V numeric.Value[V]](arange []AD[V]) *Fn[V] {
	t := threadTape[V]()
	if !t.recording {
		panic("tape: stop_recording called without a matching start_recording")
	}

	t.dyp.Finalize()
	t.var_.Finalize()

	rngTag := make([]tag.Tag, len(arange))
	rngIndex := make([]uint32, len(arange))
	for i, v := range arange {
		switch {
		case v.TapeID == 0:
			rngTag[i] = tag.Const
			rngIndex[i] = t.pushConst(v.Value)
		case v.TapeID == t.tapeID:
			rngTag[i] = v.Tag
			rngIndex[i] = v.Index
		default:
			panic(fmt.Sprintf(
				"tape: range value %d belongs to tape %d, not the "+
					"recording tape %d", i, v.TapeID, t.tapeID))
		}
	}

	fn := &Fn[V]{
		Dyp:      t.dyp,
		Var:      t.var_,
		Cop:      t.cop,
		RngTag:   rngTag,
		RngIndex: rngIndex,
	}

	// Return the tape to the idle state.
	t.recording = false
	t.tapeID = 0
	t.cop = nil
	t.dyp = OpSequence{}
	t.var_ = OpSequence{}

	return fn
}
