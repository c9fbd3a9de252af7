package tape

import (
	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/optable"
	"github.com/dtolpin/tapead/tag"
)

// Recorder is a narrow handle onto the calling goroutine's live tape,
// exported so the atom package can record a CALL opcode without tape
// needing to know anything about atoms; call-time recording is
// layered strictly on top of the tape's own primitives.
type Recorder[V numeric.Value[V]] struct {
	t *Tape[V]
}

// ActiveRecording returns a Recorder for the calling goroutine's tape
// iff it is currently recording.
func ActiveRecording[V numeric.Value[V]]() (*Recorder[V], bool) {
	t := threadTape[V]()
	if !t.recording {
		return nil, false
	}
	return &Recorder[V]{t: t}, true
}

// TapeID is the id of the tape being recorded onto.
func (r *Recorder[V]) TapeID() uint64 { return r.t.tapeID }

// PushConst copies v into the constant pool and returns its index.
func (r *Recorder[V]) PushConst(v V) uint32 { return r.t.pushConst(v) }

// Classify reports whether x belongs to this recording and, if so,
// its tag; values from any other tape (or tape id 0) are cop/Const.
func (r *Recorder[V]) Classify(x AD[V]) (active bool, xTag tag.Tag) {
	return classify(r.t, x)
}

// AppendOp appends one op to the dyp sequence (intoVar=false) or the
// var sequence (intoVar=true) and returns its result slot index.
func (r *Recorder[V]) AppendOp(intoVar bool, id optable.Op, idx []uint32, typ []tag.Tag) int {
	seq := &r.t.dyp
	if intoVar {
		seq = &r.t.var_
	}
	return seq.AppendOp(id, idx, typ)
}

// PushFlags reserves n flag slots in the given sequence's flag vector
// and returns the offset of the first one.
func (r *Recorder[V]) PushFlags(intoVar bool, n int) int {
	seq := &r.t.dyp
	if intoVar {
		seq = &r.t.var_
	}
	return seq.pushFlags(n)
}

// Active constructs an AD value referencing a slot already appended
// to this recording.
func (r *Recorder[V]) Active(slot int, t tag.Tag, value V) AD[V] {
	return AD[V]{TapeID: r.t.tapeID, Index: uint32(slot), Tag: t, Value: value}
}
