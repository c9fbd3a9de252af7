// Package tape implements the per-thread recording tape (C3, C4), the
// active scalar AD[V], and the compiled Fn[V]. Grounded on a
// flat-vector recorder design (oneGlobalTape: a flat-vector recorder with
// records/places/values), generalized from a single implicit float64
// tape into the two-sequence (dyp/var), generic-over-V tape this module
// §3 describes.
package tape

import (
	"github.com/dtolpin/tapead/optable"
	"github.com/dtolpin/tapead/tag"
)

// OpSequence is the SSA store of the recorder's data model: opcode ids,
// argument-start offsets, flat argument/arg-type vectors. Slot indices
// 0..NDom are the declared domain; slot NDom+k is produced by op k.
type OpSequence struct {
	NDom int
	NDep int

	IDAll      []optable.Op
	ArgStart   []uint32
	ArgAll     []uint32
	ArgTypeAll []tag.Tag
	FlagAll    []bool
}

// AppendOp records one op with the given argument slots and parallel
// tags, returning the slot index the op's result occupies (valid
// immediately, before NDep is incremented for the next op).
func (s *OpSequence) AppendOp(id optable.Op, idx []uint32, typ []tag.Tag) int {
	slot := s.NDom + s.NDep
	s.ArgStart = append(s.ArgStart, uint32(len(s.ArgAll)))
	s.IDAll = append(s.IDAll, id)
	s.ArgAll = append(s.ArgAll, idx...)
	s.ArgTypeAll = append(s.ArgTypeAll, typ...)
	s.NDep++
	return slot
}

// Finalize appends the trailing sentinel to ArgStart so that
// len(ArgStart) == len(IDAll)+1. Called once
// when a tape stops recording; a Fn's sequences are always finalized.
func (s *OpSequence) Finalize() {
	s.ArgStart = append(s.ArgStart, uint32(len(s.ArgAll)))
}

// Args returns op k's argument slots and their parallel tags. Only
// valid after Finalize.
func (s *OpSequence) Args(k int) optable.Args {
	return optable.Args{
		Idx:  s.ArgAll[s.ArgStart[k]:s.ArgStart[k+1]],
		Type: s.ArgTypeAll[s.ArgStart[k]:s.ArgStart[k+1]],
	}
}

// pushFlags appends n false flags and returns the offset of the first
// one, used by CALL to reserve its trace-bit + per-result used-flag
// block for a CALL opcode.
func (s *OpSequence) pushFlags(n int) int {
	off := len(s.FlagAll)
	for i := 0; i != n; i++ {
		s.FlagAll = append(s.FlagAll, false)
	}
	return off
}
