package tape_test

import (
	"math"
	"testing"

	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/replay"
	"github.com/dtolpin/tapead/tape"
)

type F = numeric.AzFloat[float64]

func v(x float64) F { return numeric.Az(x) }

// ddx compiles f over a var domain of len(x) elements and returns the
// value and gradient at x.
func ddx(x []float64, f func(x []tape.AD[F]) tape.AD[F]) (val float64, grad []float64) {
	defer tape.DropTape[F]()
	dom := make([]F, len(x))
	for i, xi := range x {
		dom[i] = v(xi)
	}
	_, avar := tape.StartRecording[F](nil, dom)
	y := f(avar)
	fn := tape.StopRecording[F]([]tape.AD[F]{y})

	rng, varBoth := replay.ForwardVar[F](fn, nil, dom)
	adj := replay.ReverseDer[F](fn, nil, varBoth, []F{v(1)})

	grad = make([]float64, len(adj))
	for i, a := range adj {
		grad[i] = a.Float()
	}
	return rng[0].Float(), grad
}

type testcase struct {
	name string
	f    func(x []tape.AD[F]) tape.AD[F]
	x    []float64
	val  float64
	grad []float64
}

func runsuite(t *testing.T, suite []testcase) {
	for _, c := range suite {
		val, grad := ddx(c.x, c.f)
		if math.Abs(val-c.val) > 1e-9 {
			t.Errorf("%s, x=%v: val=%v, want %v", c.name, c.x, val, c.val)
		}
		if len(grad) != len(c.grad) {
			t.Errorf("%s, x=%v: grad has %d entries, want %d", c.name, c.x, len(grad), len(c.grad))
			continue
		}
		for i := range grad {
			if math.Abs(grad[i]-c.grad[i]) > 1e-9 {
				t.Errorf("%s, x=%v: grad=%v, want %v", c.name, c.x, grad, c.grad)
				break
			}
		}
	}
}

func TestArithmetic(t *testing.T) {
	runsuite(t, []testcase{
		{"x + y", func(x []tape.AD[F]) tape.AD[F] { return x[0].Add(x[1]) },
			[]float64{3, 5}, 8, []float64{1, 1}},
		{"x - y", func(x []tape.AD[F]) tape.AD[F] { return x[0].Sub(x[1]) },
			[]float64{3, 5}, -2, []float64{1, -1}},
		{"x * y", func(x []tape.AD[F]) tape.AD[F] { return x[0].Mul(x[1]) },
			[]float64{2, 3}, 6, []float64{3, 2}},
		{"x / y", func(x []tape.AD[F]) tape.AD[F] { return x[0].Div(x[1]) },
			[]float64{2, 4}, 0.5, []float64{0.25, -0.125}},
		{"x * x", func(x []tape.AD[F]) tape.AD[F] { return x[0].Mul(x[0]) },
			[]float64{3}, 9, []float64{6}},
		{"-x", func(x []tape.AD[F]) tape.AD[F] { return x[0].Neg() },
			[]float64{3}, -3, []float64{-1}},
	})
}

func TestTranscendental(t *testing.T) {
	runsuite(t, []testcase{
		{"sin(x)", func(x []tape.AD[F]) tape.AD[F] { return x[0].Sin() },
			[]float64{1}, math.Sin(1), []float64{math.Cos(1)}},
		{"cos(x)", func(x []tape.AD[F]) tape.AD[F] { return x[0].Cos() },
			[]float64{1}, math.Cos(1), []float64{-math.Sin(1)}},
		{"exp(x)", func(x []tape.AD[F]) tape.AD[F] { return x[0].Exp() },
			[]float64{1}, math.E, []float64{math.E}},
	})
}

func TestShortCircuit(t *testing.T) {
	runsuite(t, []testcase{
		{"0 + x", func(x []tape.AD[F]) tape.AD[F] { return tape.Const[F](v(0)).Add(x[0]) },
			[]float64{3}, 3, []float64{1}},
		{"x + 0", func(x []tape.AD[F]) tape.AD[F] { return x[0].Add(tape.Const[F](v(0))) },
			[]float64{3}, 3, []float64{1}},
		{"1 * x", func(x []tape.AD[F]) tape.AD[F] { return tape.Const[F](v(1)).Mul(x[0]) },
			[]float64{3}, 3, []float64{1}},
		{"x / 1", func(x []tape.AD[F]) tape.AD[F] { return x[0].Div(tape.Const[F](v(1))) },
			[]float64{3}, 3, []float64{1}},
		{"0 * x", func(x []tape.AD[F]) tape.AD[F] { return tape.Const[F](v(0)).Mul(x[0]) },
			[]float64{3}, 0, []float64{0}},
	})
}

func TestComposite(t *testing.T) {
	runsuite(t, []testcase{
		{"x*x + y*y", func(x []tape.AD[F]) tape.AD[F] {
			return x[0].Mul(x[0]).Add(x[1].Mul(x[1]))
		}, []float64{2, 3}, 13, []float64{4, 6}},
		{"(x+y)*(x+y)", func(x []tape.AD[F]) tape.AD[F] {
			s := x[0].Add(x[1])
			return s.Mul(s)
		}, []float64{2, 3}, 25, []float64{10, 10}},
		{"sin(x*y)", func(x []tape.AD[F]) tape.AD[F] {
			return x[0].Mul(x[1]).Sin()
		}, []float64{1, math.Pi}, math.Sin(math.Pi), []float64{math.Pi * math.Cos(math.Pi), math.Cos(math.Pi)}},
	})
}

// TestDropTapeIsolatesRecordings checks that a dropped tape leaves no
// residue for the next recording on the same goroutine.
func TestDropTapeIsolatesRecordings(t *testing.T) {
	_, g1 := ddx([]float64{2}, func(x []tape.AD[F]) tape.AD[F] { return x[0].Mul(x[0]) })
	_, g2 := ddx([]float64{5}, func(x []tape.AD[F]) tape.AD[F] { return x[0].Mul(x[0]) })
	if math.Abs(g1[0]-4) > 1e-9 {
		t.Fatalf("first recording gradient = %v, want 4", g1[0])
	}
	if math.Abs(g2[0]-10) > 1e-9 {
		t.Fatalf("second recording gradient = %v, want 10", g2[0])
	}
}
