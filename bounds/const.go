package bounds

import (
	"errors"

	"github.com/loomlang/loomc/ir"
)

// combine builds op(a, b) as an *ir.Expr, constant-folding directly when
// both sides are already numeric literals of the same kind so that chains
// of interval arithmetic over known bounds (the common case: a variable
// bound to a literal range) collapse to a single literal instead of a
// deeply nested Min/Max/arithmetic tree. Either nil input propagates as nil
// (±∞): an undefined endpoint stays undefined through every combination.
func combine(op ir.BinOp, a, b *ir.Expr) *ir.Expr {
	if a == nil || b == nil {
		return nil
	}
	if v, ok := foldConst(op, a, b); ok {
		return v
	}
	e, err := ir.NewBinary(op, a, b)
	if err != nil {
		return nil
	}
	return e
}

func foldConst(op ir.BinOp, a, b *ir.Expr) (*ir.Expr, bool) {
	switch a.Type.Kind {
	case ir.Int:
		av, aok := intVal(a)
		bv, bok := intVal(b)
		if !aok || !bok {
			return nil, false
		}
		r, ok := applyInt(op, av, bv)
		if !ok {
			return nil, false
		}
		e, err := ir.NewIntImm(a.Type, r)
		return e, err == nil
	case ir.UInt:
		av, aok := uintVal(a)
		bv, bok := uintVal(b)
		if !aok || !bok {
			return nil, false
		}
		r, ok := applyUint(op, av, bv)
		if !ok {
			return nil, false
		}
		e, err := ir.NewUIntImm(a.Type, r)
		return e, err == nil
	case ir.Float:
		av, aok := floatVal(a)
		bv, bok := floatVal(b)
		if !aok || !bok {
			return nil, false
		}
		r, ok := applyFloat(op, av, bv)
		if !ok {
			return nil, false
		}
		e, err := ir.NewFloatImm(a.Type, r)
		return e, err == nil
	default:
		return nil, false
	}
}

func applyInt(op ir.BinOp, a, b int64) (int64, bool) {
	switch op {
	case ir.OpAdd:
		return a + b, true
	case ir.OpSub:
		return a - b, true
	case ir.OpMul:
		return a * b, true
	case ir.OpDiv:
		if b == 0 {
			return 0, false
		}
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}
		return q, true
	case ir.OpMin:
		if a < b {
			return a, true
		}
		return b, true
	case ir.OpMax:
		if a > b {
			return a, true
		}
		return b, true
	default:
		return 0, false
	}
}

func applyUint(op ir.BinOp, a, b uint64) (uint64, bool) {
	switch op {
	case ir.OpAdd:
		return a + b, true
	case ir.OpSub:
		return a - b, true
	case ir.OpMul:
		return a * b, true
	case ir.OpDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case ir.OpMin:
		if a < b {
			return a, true
		}
		return b, true
	case ir.OpMax:
		if a > b {
			return a, true
		}
		return b, true
	default:
		return 0, false
	}
}

func applyFloat(op ir.BinOp, a, b float64) (float64, bool) {
	switch op {
	case ir.OpAdd:
		return a + b, true
	case ir.OpSub:
		return a - b, true
	case ir.OpMul:
		return a * b, true
	case ir.OpDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case ir.OpMin:
		if a < b {
			return a, true
		}
		return b, true
	case ir.OpMax:
		if a > b {
			return a, true
		}
		return b, true
	default:
		return 0, false
	}
}

func intVal(e *ir.Expr) (int64, bool) {
	if k, ok := e.Kind.(ir.IntImm); ok {
		return k.Value, true
	}
	return 0, false
}

func uintVal(e *ir.Expr) (uint64, bool) {
	if k, ok := e.Kind.(ir.UIntImm); ok {
		return k.Value, true
	}
	return 0, false
}

func floatVal(e *ir.Expr) (float64, bool) {
	if k, ok := e.Kind.(ir.FloatImm); ok {
		return k.Value, true
	}
	return 0, false
}

// constFloat extracts e's numeric value as a float64 regardless of its
// underlying IR leaf kind, for the zero-straddling check in
// provablyIncludesZero — a comparison that only cares about sign, not
// exact representation.
func constFloat(e *ir.Expr) (float64, bool) {
	if e == nil {
		return 0, false
	}
	switch k := e.Kind.(type) {
	case ir.IntImm:
		return float64(k.Value), true
	case ir.UIntImm:
		return float64(k.Value), true
	case ir.FloatImm:
		return k.Value, true
	default:
		return 0, false
	}
}

func castConst(t ir.Type, v float64) (*ir.Expr, error) {
	switch t.Kind {
	case ir.Int:
		return ir.NewIntImm(t, int64(v))
	case ir.UInt:
		return ir.NewUIntImm(t, uint64(v))
	case ir.Float:
		return ir.NewFloatImm(t, v)
	default:
		return nil, errors.New("bounds: cannot cast constant to this type kind")
	}
}

func zeroOf(t ir.Type) *ir.Expr {
	switch t.Kind {
	case ir.Int:
		e, _ := ir.NewIntImm(t, 0)
		return e
	case ir.UInt:
		e, _ := ir.NewUIntImm(t, 0)
		return e
	case ir.Float:
		e, _ := ir.NewFloatImm(t, 0)
		return e
	default:
		return nil
	}
}

func oneOf(t ir.Type) *ir.Expr {
	switch t.Kind {
	case ir.Int:
		e, _ := ir.NewIntImm(t, 1)
		return e
	case ir.UInt:
		e, _ := ir.NewUIntImm(t, 1)
		return e
	case ir.Float:
		e, _ := ir.NewFloatImm(t, 1)
		return e
	default:
		return nil
	}
}
