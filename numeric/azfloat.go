package numeric

import (
	"math"
)

// Kind is the set of underlying float widths AzFloat may wrap,
// mirroring the source's AzFloat<f32/f64>.
type Kind interface {
	~float32 | ~float64
}

// AzFloat is a reference V implementation: an
// "absolute zero" wrapper where 0 * NaN = 0 (rather than NaN), and
// where NaN == NaN so a NaN-valued AzFloat is usable as a hash-map key
// in the optimizer's constant-pool CSE pass. Grounded on an
// absolute-zero float wrapper with no direct analogue in the source repo:
// infergo's tape operates on bare float64 with ordinary IEEE
// semantics throughout.
type AzFloat[B Kind] struct {
	v B
}

// Az constructs an AzFloat from a plain float.
func Az[B Kind](v B) AzFloat[B] { return AzFloat[B]{v: v} }

// Float returns the underlying float value.
func (x AzFloat[B]) Float() B { return x.v }

func (x AzFloat[B]) isNaN() bool { return float64(x.v) != float64(x.v) }

func (x AzFloat[B]) Add(y AzFloat[B]) AzFloat[B] { return AzFloat[B]{x.v + y.v} }
func (x AzFloat[B]) Sub(y AzFloat[B]) AzFloat[B] { return AzFloat[B]{x.v - y.v} }

// Mul implements the absolute-zero rule: a zero operand always wins,
// even against NaN or Inf on the other side.
func (x AzFloat[B]) Mul(y AzFloat[B]) AzFloat[B] {
	if x.v == 0 || y.v == 0 {
		return AzFloat[B]{0}
	}
	return AzFloat[B]{x.v * y.v}
}

func (x AzFloat[B]) Div(y AzFloat[B]) AzFloat[B] { return AzFloat[B]{x.v / y.v} }

func (x AzFloat[B]) boolVal(b bool) AzFloat[B] {
	if b {
		return x.One()
	}
	return x.Zero()
}

func (x AzFloat[B]) Lt(y AzFloat[B]) AzFloat[B] { return x.boolVal(x.v < y.v) }
func (x AzFloat[B]) Le(y AzFloat[B]) AzFloat[B] { return x.boolVal(x.v <= y.v) }
func (x AzFloat[B]) Eq(y AzFloat[B]) AzFloat[B] {
	return x.boolVal(x.v == y.v || (x.isNaN() && y.isNaN()))
}
func (x AzFloat[B]) Ne(y AzFloat[B]) AzFloat[B] { return x.boolVal(!x.Eq(y).IsOne()) }
func (x AzFloat[B]) Ge(y AzFloat[B]) AzFloat[B] { return x.boolVal(x.v >= y.v) }
func (x AzFloat[B]) Gt(y AzFloat[B]) AzFloat[B] { return x.boolVal(x.v > y.v) }

func (x AzFloat[B]) Neg() AzFloat[B] { return AzFloat[B]{-x.v} }
func (x AzFloat[B]) Sin() AzFloat[B] { return AzFloat[B]{B(math.Sin(float64(x.v)))} }
func (x AzFloat[B]) Cos() AzFloat[B] { return AzFloat[B]{B(math.Cos(float64(x.v)))} }
func (x AzFloat[B]) Exp() AzFloat[B] { return AzFloat[B]{B(math.Exp(float64(x.v)))} }

// Signum returns 1 for positive, -1 for negative, 0 for 0 (and NaN
// stays NaN).
func (x AzFloat[B]) Signum() AzFloat[B] {
	switch {
	case x.isNaN():
		return x
	case x.v > 0:
		return x.One()
	case x.v < 0:
		return AzFloat[B]{-1}
	default:
		return x.Zero()
	}
}

func (AzFloat[B]) Zero() AzFloat[B] { return AzFloat[B]{0} }
func (AzFloat[B]) One() AzFloat[B]  { return AzFloat[B]{1} }
func (AzFloat[B]) NaN() AzFloat[B]  { return AzFloat[B]{B(math.NaN())} }

func (x AzFloat[B]) IsZero() bool { return x.v == 0 }
func (x AzFloat[B]) IsOne() bool  { return x.v == 1 }

func (x AzFloat[B]) Equal(y AzFloat[B]) bool {
	return x.v == y.v || (x.isNaN() && y.isNaN())
}

// Hash folds NaN to a single canonical bit pattern so that, combined
// with Equal treating all NaNs as equal, AzFloat is safe as a
// map/CSE key.
func (x AzFloat[B]) Hash() uint64 {
	if x.isNaN() {
		return 0x7ff8000000000000
	}
	switch v := any(x.v).(type) {
	case float64:
		return math.Float64bits(v)
	case float32:
		return uint64(math.Float32bits(v))
	default:
		return math.Float64bits(float64(x.v))
	}
}
