package numeric_test

import (
	"math"
	"testing"

	"github.com/dtolpin/tapead/numeric"
)

func TestAzFloatAbsoluteZero(t *testing.T) {
	nan := numeric.Az(math.NaN())
	zero := numeric.Az(0.0)

	if got := zero.Mul(nan); got.Float() != 0 {
		t.Fatalf("0 * NaN = %v, want 0", got.Float())
	}
	if got := nan.Mul(zero); got.Float() != 0 {
		t.Fatalf("NaN * 0 = %v, want 0", got.Float())
	}
	inf := numeric.Az(math.Inf(1))
	if got := zero.Mul(inf); got.Float() != 0 {
		t.Fatalf("0 * Inf = %v, want 0", got.Float())
	}
}

func TestAzFloatNaNEqualsNaN(t *testing.T) {
	a := numeric.Az(math.NaN())
	b := numeric.Az(math.NaN())
	if !a.Equal(b) {
		t.Fatal("NaN.Equal(NaN) = false, want true")
	}
	if a.Hash() != b.Hash() {
		t.Fatal("two NaNs hash differently")
	}
}

func TestAzFloatIsZeroIsOne(t *testing.T) {
	if !numeric.Az(0.0).IsZero() {
		t.Fatal("0 is not IsZero")
	}
	if !numeric.Az(1.0).IsOne() {
		t.Fatal("1 is not IsOne")
	}
	if numeric.Az(2.0).IsZero() || numeric.Az(2.0).IsOne() {
		t.Fatal("2 reports IsZero or IsOne")
	}
}

func TestAzFloatSignum(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{3, 1}, {-3, -1}, {0, 0},
	}
	for _, c := range cases {
		got := numeric.Az(c.in).Signum().Float()
		if got != c.want {
			t.Errorf("signum(%v) = %v, want %v", c.in, got, c.want)
		}
	}
	if !math.IsNaN(numeric.Az(math.NaN()).Signum().Float()) {
		t.Fatal("signum(NaN) is not NaN")
	}
}

func TestAzFloatComparisonsReturnZeroOrOne(t *testing.T) {
	a, b := numeric.Az(2.0), numeric.Az(3.0)
	if !a.Lt(b).IsOne() {
		t.Fatal("2 < 3 did not report IsOne")
	}
	if !b.Lt(a).IsZero() {
		t.Fatal("3 < 2 did not report IsZero")
	}
	if !a.Eq(a).IsOne() {
		t.Fatal("2 == 2 did not report IsOne")
	}
	if !a.Ne(b).IsOne() {
		t.Fatal("2 != 3 did not report IsOne")
	}
}

func TestNumVecBroadcast(t *testing.T) {
	x := numeric.Vec([]numeric.AzFloat[float64]{numeric.Az(1.0), numeric.Az(2.0), numeric.Az(3.0)})
	one := numeric.Vec([]numeric.AzFloat[float64]{numeric.Az(10.0)})

	sum := x.Add(one)
	want := []float64{11, 12, 13}
	for i, s := range sum.Slice() {
		if s.Float() != want[i] {
			t.Errorf("sum[%d] = %v, want %v", i, s.Float(), want[i])
		}
	}
}

func TestNumVecLengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on mismatched, non-broadcastable lengths")
		}
	}()
	x := numeric.Vec([]numeric.AzFloat[float64]{numeric.Az(1.0), numeric.Az(2.0)})
	y := numeric.Vec([]numeric.AzFloat[float64]{numeric.Az(1.0), numeric.Az(2.0), numeric.Az(3.0)})
	x.Add(y)
}

func TestNumVecEqualAndHash(t *testing.T) {
	a := numeric.Vec([]numeric.AzFloat[float64]{numeric.Az(1.0), numeric.Az(2.0)})
	b := numeric.Vec([]numeric.AzFloat[float64]{numeric.Az(1.0), numeric.Az(2.0)})
	c := numeric.Vec([]numeric.AzFloat[float64]{numeric.Az(1.0), numeric.Az(3.0)})

	if !a.Equal(b) {
		t.Fatal("equal vectors report not equal")
	}
	if a.Equal(c) {
		t.Fatal("unequal vectors report equal")
	}
	if a.Hash() != b.Hash() {
		t.Fatal("equal vectors hash differently")
	}
}
