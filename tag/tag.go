// Package tag implements the three-valued type lattice that every
// intermediate value recorded onto a tape carries: whether it is a
// constant, a dynamic parameter, or a variable, plus the placeholder
// tag used on argument slots whose type is irrelevant (CALL linkage).
package tag

import "fmt"

// Tag classifies a tape slot. The zero value is Const. The ordering
// Const < Dyn < Var < Empty is total and is the basis for Max.
type Tag uint8

const (
	Const Tag = iota
	Dyn
	Var
	Empty
)

func (t Tag) String() string {
	switch t {
	case Const:
		return "Const"
	case Dyn:
		return "Dyn"
	case Var:
		return "Var"
	case Empty:
		return "Empty"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// IsConstant is true iff t is Const.
func (t Tag) IsConstant() bool { return t == Const }

// IsDynamic is true iff t is Dyn.
func (t Tag) IsDynamic() bool { return t == Dyn }

// IsParameter is true iff t is Const or Dyn: a value with zero
// derivative with respect to the tape's independent variables.
func (t Tag) IsParameter() bool { return t == Const || t == Dyn }

// IsVariable is true iff t is Var.
func (t Tag) IsVariable() bool { return t == Var }

// Max returns the maximum tag among ts, with Empty entries excluded
// first. The result of a k-ary arithmetic op is Max of its argument
// tags. Max of no non-Empty tags is Const.
func Max(ts ...Tag) Tag {
	m := Const
	for _, t := range ts {
		if t == Empty {
			continue
		}
		if t > m {
			m = t
		}
	}
	return m
}
