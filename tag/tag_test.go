package tag

import "testing"

func TestOrdering(t *testing.T) {
	if !(Const < Dyn && Dyn < Var && Var < Empty) {
		t.Fatalf("tag ordering broken: %v %v %v %v", Const, Dyn, Var, Empty)
	}
}

func TestPredicates(t *testing.T) {
	for _, c := range []struct {
		tag                                   Tag
		constant, dynamic, parameter, variable bool
	}{
		{Const, true, false, true, false},
		{Dyn, false, true, true, false},
		{Var, false, false, false, true},
		{Empty, false, false, false, false},
	} {
		if got := c.tag.IsConstant(); got != c.constant {
			t.Errorf("%v.IsConstant() = %v, want %v", c.tag, got, c.constant)
		}
		if got := c.tag.IsDynamic(); got != c.dynamic {
			t.Errorf("%v.IsDynamic() = %v, want %v", c.tag, got, c.dynamic)
		}
		if got := c.tag.IsParameter(); got != c.parameter {
			t.Errorf("%v.IsParameter() = %v, want %v", c.tag, got, c.parameter)
		}
		if got := c.tag.IsVariable(); got != c.variable {
			t.Errorf("%v.IsVariable() = %v, want %v", c.tag, got, c.variable)
		}
	}
}

func TestMax(t *testing.T) {
	for _, c := range []struct {
		in   []Tag
		want Tag
	}{
		{nil, Const},
		{[]Tag{Empty, Empty}, Const},
		{[]Tag{Const, Dyn}, Dyn},
		{[]Tag{Dyn, Var}, Var},
		{[]Tag{Var, Empty}, Var},
		{[]Tag{Const, Const}, Const},
	} {
		if got := Max(c.in...); got != c.want {
			t.Errorf("Max(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
