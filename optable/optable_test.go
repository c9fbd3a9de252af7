package optable_test

import (
	"math"
	"testing"

	"github.com/dtolpin/tapead/numeric"
	"github.com/dtolpin/tapead/optable"
	"github.com/dtolpin/tapead/tag"
)

type F = numeric.AzFloat[float64]

func v(x float64) F { return numeric.Az(x) }

func pools() optable.Pools[F] {
	return optable.Pools[F]{
		Cop: []F{v(2)},
		Dyp: []F{v(3)},
		Var: []F{v(4), v(5)},
	}
}

func TestPoolsGet(t *testing.T) {
	p := pools()
	if got := p.Get(tag.Const, 0).Float(); got != 2 {
		t.Errorf("Get(Const,0) = %v, want 2", got)
	}
	if got := p.Get(tag.Dyn, 0).Float(); got != 3 {
		t.Errorf("Get(Dyn,0) = %v, want 3", got)
	}
	if got := p.Get(tag.Var, 1).Float(); got != 5 {
		t.Errorf("Get(Var,1) = %v, want 5", got)
	}
}

func TestBinaryVariant(t *testing.T) {
	cases := []struct {
		lTag, rTag tag.Tag
		want       optable.Op
	}{
		{tag.Const, tag.Const, optable.AddPP},
		{tag.Const, tag.Var, optable.AddPV},
		{tag.Var, tag.Const, optable.AddVP},
		{tag.Var, tag.Var, optable.AddVV},
	}
	for _, c := range cases {
		got := optable.BinaryVariant(optable.AddPP, c.lTag, c.rTag)
		if got != c.want {
			t.Errorf("BinaryVariant(Add, %v, %v) = %v, want %v", c.lTag, c.rTag, got, c.want)
		}
	}
}

func TestEntryForwardAndDerivative(t *testing.T) {
	table := optable.Default[F]()
	add := table.Entry(optable.AddVV)

	args := optable.Args{Idx: []uint32{0, 1}, Type: []tag.Tag{tag.Var, tag.Var}}
	p := pools()

	if got := add.ForwardVar(args, p).Float(); got != 9 {
		t.Fatalf("AddVV forward = %v, want 9 (4+5)", got)
	}

	varDer := []F{v(1), v(1)}
	if got := add.ForwardDer(args, p, varDer, 0).Float(); got != 2 {
		t.Fatalf("AddVV forward-der = %v, want 2", got)
	}

	adj := make([]F, 2)
	add.ReverseDer(args, p, adj, 0, v(1))
	if adj[0].Float() != 1 || adj[1].Float() != 1 {
		t.Fatalf("AddVV reverse-der adjoints = %v, want [1 1]", adj)
	}
}

func TestEntryReverseDepend(t *testing.T) {
	table := optable.Default[F]()
	mul := table.Entry(optable.MulVV)

	args := optable.Args{Idx: []uint32{0, 1}, Type: []tag.Tag{tag.Var, tag.Var}}
	d := &optable.Depend{Var: make([]bool, 2)}

	mul.ReverseDepend(args, false, d)
	if d.Var[0] || d.Var[1] {
		t.Fatal("ReverseDepend marked arguments live when result is not live")
	}

	mul.ReverseDepend(args, true, d)
	if !d.Var[0] || !d.Var[1] {
		t.Fatal("ReverseDepend did not mark both arguments live")
	}
}

func TestSinCosForwardValue(t *testing.T) {
	table := optable.Default[F]()
	sin := table.Entry(optable.Sin)
	cos := table.Entry(optable.Cos)

	p := optable.Pools[F]{Var: []F{v(1)}}
	args := optable.Args{Idx: []uint32{0}, Type: []tag.Tag{tag.Var}}

	sinVal := sin.ForwardVar(args, p).Float()
	if math.Abs(sinVal-math.Sin(1)) > 1e-12 {
		t.Fatalf("sin(1) = %v", sinVal)
	}
	cosVal := cos.ForwardVar(args, p).Float()
	if math.Abs(cosVal-math.Cos(1)) > 1e-12 {
		t.Fatalf("cos(1) = %v", cosVal)
	}
}
