package numeric

import "fmt"

// NumVec is a vector-lifted V: a dense vector
// of a scalar S, where a length-1 operand broadcasts against any
// length under binary operators and any other length mismatch panics.
// Grounded on a dense-vector value type that defines
// exactly this broadcast rule; infergo has no vector-valued tape value
// with no direct analogue in the source repo to adapt.
type NumVec[S Value[S]] struct {
	v []S
}

// Vec wraps a slice as a NumVec. The slice is not copied.
func Vec[S Value[S]](v []S) NumVec[S] { return NumVec[S]{v: v} }

// Slice returns the underlying elements.
func (x NumVec[S]) Slice() []S { return x.v }

func (x NumVec[S]) Len() int { return len(x.v) }

// broadcastOp applies op element-wise, broadcasting a length-1
// operand. Panics (the core's precondition-panic error channel) when
// the lengths differ and neither is 1.
func broadcastOp[S Value[S]](x, y NumVec[S], op func(a, b S) S) NumVec[S] {
	switch {
	case len(x.v) == len(y.v):
		out := make([]S, len(x.v))
		for i := range out {
			out[i] = op(x.v[i], y.v[i])
		}
		return NumVec[S]{v: out}
	case len(x.v) == 1:
		out := make([]S, len(y.v))
		for i := range out {
			out[i] = op(x.v[0], y.v[i])
		}
		return NumVec[S]{v: out}
	case len(y.v) == 1:
		out := make([]S, len(x.v))
		for i := range out {
			out[i] = op(x.v[i], y.v[0])
		}
		return NumVec[S]{v: out}
	default:
		panic(fmt.Sprintf(
			"numvec: length mismatch, %d vs %d, neither broadcasts",
			len(x.v), len(y.v)))
	}
}

func (x NumVec[S]) Add(y NumVec[S]) NumVec[S] {
	return broadcastOp(x, y, S.Add)
}
func (x NumVec[S]) Sub(y NumVec[S]) NumVec[S] {
	return broadcastOp(x, y, S.Sub)
}
func (x NumVec[S]) Mul(y NumVec[S]) NumVec[S] {
	return broadcastOp(x, y, S.Mul)
}
func (x NumVec[S]) Div(y NumVec[S]) NumVec[S] {
	return broadcastOp(x, y, S.Div)
}
func (x NumVec[S]) Lt(y NumVec[S]) NumVec[S] { return broadcastOp(x, y, S.Lt) }
func (x NumVec[S]) Le(y NumVec[S]) NumVec[S] { return broadcastOp(x, y, S.Le) }
func (x NumVec[S]) Eq(y NumVec[S]) NumVec[S] { return broadcastOp(x, y, S.Eq) }
func (x NumVec[S]) Ne(y NumVec[S]) NumVec[S] { return broadcastOp(x, y, S.Ne) }
func (x NumVec[S]) Ge(y NumVec[S]) NumVec[S] { return broadcastOp(x, y, S.Ge) }
func (x NumVec[S]) Gt(y NumVec[S]) NumVec[S] { return broadcastOp(x, y, S.Gt) }

func (x NumVec[S]) mapOp(op func(a S) S) NumVec[S] {
	out := make([]S, len(x.v))
	for i := range out {
		out[i] = op(x.v[i])
	}
	return NumVec[S]{v: out}
}

func (x NumVec[S]) Neg() NumVec[S]    { return x.mapOp(S.Neg) }
func (x NumVec[S]) Sin() NumVec[S]    { return x.mapOp(S.Sin) }
func (x NumVec[S]) Cos() NumVec[S]    { return x.mapOp(S.Cos) }
func (x NumVec[S]) Exp() NumVec[S]    { return x.mapOp(S.Exp) }
func (x NumVec[S]) Signum() NumVec[S] { return x.mapOp(S.Signum) }

func (NumVec[S]) Zero() NumVec[S] {
	var s S
	return NumVec[S]{v: []S{s.Zero()}}
}
func (NumVec[S]) One() NumVec[S] {
	var s S
	return NumVec[S]{v: []S{s.One()}}
}
func (NumVec[S]) NaN() NumVec[S] {
	var s S
	return NumVec[S]{v: []S{s.NaN()}}
}

// IsZero/IsOne are defined only for length-1 vectors, matching the
// broadcast scalar use case; any other length is never a short-circuit
// candidate.
func (x NumVec[S]) IsZero() bool { return len(x.v) == 1 && x.v[0].IsZero() }
func (x NumVec[S]) IsOne() bool  { return len(x.v) == 1 && x.v[0].IsOne() }

func (x NumVec[S]) Equal(y NumVec[S]) bool {
	if len(x.v) != len(y.v) {
		return false
	}
	for i := range x.v {
		if !x.v[i].Equal(y.v[i]) {
			return false
		}
	}
	return true
}

func (x NumVec[S]) Hash() uint64 {
	var h uint64 = 14695981039346656037 // FNV offset basis
	for _, s := range x.v {
		h ^= s.Hash()
		h *= 1099511628211 // FNV prime
	}
	return h
}
