// Package numeric specifies the value-type contract the tape engine
// is polymorphic over. The contract is an external
// collaborator: the engine never interprets a V value, only moves it
// around and asks it to compute. This package also ships the two
// reference implementations in this package, AzFloat and NumVec, for
// use by callers and by the engine's own tests.
package numeric

// Value is the constraint every tape value type V must satisfy. Go
// has no operator overloading, so the arithmetic the Rust trait
// expressed as `&V op &V -> V` is exposed as named methods instead
// ("Operator overloading"). Because Go cannot write a
// package-level "reflexive" generic constraint without the type
// naming itself, the methods below receive and return V directly;
// callers instantiate AD[V] with a V satisfying Value[V].
//
// left_lt/right_lt and friends in the original collapse to a single
// two-argument method here: Rust needed mirrored trait impls only
// because of its orphan rules when V is the left or right operand of
// a foreign trait; a Go method call x.Lt(y) already has an explicit,
// unambiguous operand order on both sides.
type Value[V any] interface {
	// Arithmetic.
	Add(V) V
	Sub(V) V
	Mul(V) V
	Div(V) V

	// Comparisons; the result is a V in the domain {Zero(), One()},
	// never a bool.
	Lt(V) V
	Le(V) V
	Eq(V) V
	Ne(V) V
	Ge(V) V
	Gt(V) V

	// Unary ops.
	Neg() V
	Sin() V
	Cos() V
	Exp() V
	Signum() V

	// Constants. Called on an arbitrary receiver; the receiver's own
	// payload is ignored, only its dynamic type selects the constant.
	Zero() V
	One() V
	NaN() V

	// IsZero/IsOne drive the algebraic short-circuit table of §4.3.
	IsZero() bool
	IsOne() bool

	// Equal and Hash back the optimizer's constant-pool CSE pass.
	Equal(V) bool
	Hash() uint64
}
