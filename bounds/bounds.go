package bounds

import (
	"errors"

	"github.com/loomlang/loomc/ir"
)

// ErrNotApplicable is returned by OfExprInScope for nodes the analysis
// rejects: comparisons, logical/vector-forming nodes, and anything of bool
// or vector type. It indicates a buggy caller, not a recoverable
// condition; callers should check an
// expression's type before calling if that's not already guaranteed.
var ErrNotApplicable = errors.New("bounds: analysis not applicable to this node")

// Interval is a (min, max) bound, each endpoint possibly nil meaning
// unbounded on that side.
type Interval struct {
	Min, Max *ir.Expr
}

// Unbounded is the (nil, nil) interval.
var Unbounded = Interval{}

// OfExprInScope computes e's symbolic (min, max) bounds under scope, a
// mapping from variable name to its known Interval.
func OfExprInScope(e *ir.Expr, scope *ir.Scope[Interval]) (Interval, error) {
	if e == nil {
		return Unbounded, nil
	}
	if e.Type.IsBool() || e.Type.IsVector() {
		return Interval{}, ErrNotApplicable
	}
	switch k := e.Kind.(type) {
	case ir.IntImm, ir.UIntImm, ir.FloatImm:
		return Interval{e, e}, nil

	case ir.Variable:
		if scope != nil {
			if iv, err := scope.Get(k.Name); err == nil {
				return iv, nil
			}
		}
		return Interval{e, e}, nil

	case ir.Cast:
		inner, err := OfExprInScope(k.Value, scope)
		if err != nil {
			return Interval{}, err
		}
		return Interval{castEndpoint(e.Type, inner.Min), castEndpoint(e.Type, inner.Max)}, nil

	case ir.BinaryExpr:
		if k.Op.IsComparison() || k.Op.IsLogical() {
			return Interval{}, ErrNotApplicable
		}
		a, err := OfExprInScope(k.A, scope)
		if err != nil {
			return Interval{}, err
		}
		b, err := OfExprInScope(k.B, scope)
		if err != nil {
			return Interval{}, err
		}
		return combineOp(k.Op, e.Type, a, b), nil

	case ir.NotExpr:
		return Interval{}, ErrNotApplicable

	case ir.SelectExpr:
		tv, err := OfExprInScope(k.TrueValue, scope)
		if err != nil {
			return Interval{}, err
		}
		fv, err := OfExprInScope(k.FalseValue, scope)
		if err != nil {
			return Interval{}, err
		}
		return Interval{combine(ir.OpMin, tv.Min, fv.Min), combine(ir.OpMax, tv.Max, fv.Max)}, nil

	case ir.LoadExpr:
		return rangeInterval(e.Type), nil

	case ir.RampExpr, ir.BroadcastExpr:
		return Interval{}, ErrNotApplicable

	case ir.CallExpr:
		return rangeInterval(e.Type), nil

	case ir.LetExpr:
		vi, err := OfExprInScope(k.Value, scope)
		if err != nil {
			return Interval{}, err
		}
		child := ir.NewScope(scope)
		child.Push(k.Name, vi)
		return OfExprInScope(k.Body, child)

	default:
		return Interval{}, ErrNotApplicable
	}
}

// combineOp applies one arithmetic BinOp to two intervals.
func combineOp(op ir.BinOp, t ir.Type, a, b Interval) Interval {
	switch op {
	case ir.OpAdd:
		return Interval{combine(ir.OpAdd, a.Min, b.Min), combine(ir.OpAdd, a.Max, b.Max)}
	case ir.OpSub:
		return Interval{combine(ir.OpSub, a.Min, b.Max), combine(ir.OpSub, a.Max, b.Min)}
	case ir.OpMul:
		return mulInterval(a, b)
	case ir.OpDiv:
		return divInterval(t, a, b)
	case ir.OpMod:
		return modInterval(t, b)
	case ir.OpMin:
		return Interval{combine(ir.OpMin, a.Min, b.Min), combine(ir.OpMin, a.Max, b.Max)}
	case ir.OpMax:
		return Interval{combine(ir.OpMax, a.Min, b.Min), combine(ir.OpMax, a.Max, b.Max)}
	default:
		return Unbounded
	}
}

func mulInterval(a, b Interval) Interval {
	if a.Min == nil || a.Max == nil || b.Min == nil || b.Max == nil {
		return Unbounded
	}
	p1 := combine(ir.OpMul, a.Min, b.Min)
	p2 := combine(ir.OpMul, a.Min, b.Max)
	p3 := combine(ir.OpMul, a.Max, b.Min)
	p4 := combine(ir.OpMul, a.Max, b.Max)
	min := combine(ir.OpMin, combine(ir.OpMin, p1, p2), combine(ir.OpMin, p3, p4))
	max := combine(ir.OpMax, combine(ir.OpMax, p1, p2), combine(ir.OpMax, p3, p4))
	return Interval{min, max}
}

func divInterval(t ir.Type, a, b Interval) Interval {
	if provablyIncludesZero(b) {
		return Unbounded
	}
	if a.Min == nil || a.Max == nil || b.Min == nil || b.Max == nil {
		return Unbounded
	}
	q1 := combine(ir.OpDiv, a.Min, b.Min)
	q2 := combine(ir.OpDiv, a.Min, b.Max)
	q3 := combine(ir.OpDiv, a.Max, b.Min)
	q4 := combine(ir.OpDiv, a.Max, b.Max)
	min := combine(ir.OpMin, combine(ir.OpMin, q1, q2), combine(ir.OpMin, q3, q4))
	max := combine(ir.OpMax, combine(ir.OpMax, q1, q2), combine(ir.OpMax, q3, q4))
	return Interval{min, max}
}

// provablyIncludesZero reports whether b's bounds are both known constants
// straddling zero — the only case where the divisor interval provably
// includes zero. An unknown endpoint is not proof either way, so
// division proceeds as usual rather than being pessimistically rejected.
func provablyIncludesZero(b Interval) bool {
	minC, minOK := constFloat(b.Min)
	maxC, maxOK := constFloat(b.Max)
	return minOK && maxOK && minC <= 0 && maxC >= 0
}

func modInterval(t ir.Type, b Interval) Interval {
	result := Interval{Min: zeroOf(t)}
	if b.Max != nil {
		result.Max = combine(ir.OpSub, b.Max, oneOf(t))
	}
	return result
}

func castEndpoint(t ir.Type, e *ir.Expr) *ir.Expr {
	if e == nil {
		return nil
	}
	if v, ok := constFloat(e); ok {
		if c, err := castConst(t, v); err == nil {
			return c
		}
	}
	c, err := ir.NewCast(t, e)
	if err != nil {
		return nil
	}
	return c
}

// rangeInterval implements the Load/Call fallback: the declared type's
// representable range, or unbounded for wide integer and floating types.
func rangeInterval(t ir.Type) Interval {
	min, max, ok := t.Range()
	if !ok {
		return Unbounded
	}
	switch t.Kind {
	case ir.UInt:
		lo, _ := ir.NewUIntImm(t, uint64(min))
		hi, _ := ir.NewUIntImm(t, uint64(max))
		return Interval{lo, hi}
	default:
		lo, _ := ir.NewIntImm(t, min)
		hi, _ := ir.NewIntImm(t, max)
		return Interval{lo, hi}
	}
}
