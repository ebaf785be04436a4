package simplify

import (
	"math/bits"

	"github.com/loomlang/loomc/ir"
)

// wrapUint masks v to width bits and reports whether doing so actually
// changed the value, i.e. whether the unwrapped sum/product genuinely
// overflowed the declared type's bit width. Integer operations wrap
// according to the operand type's bit width; the overflowed flag is used
// only to decide whether to log a warning, never to change the folded
// result itself.
func wrapUint(v uint64, width uint8) (wrapped uint64, overflowed bool) {
	if width >= 64 {
		return v, false
	}
	mask := uint64(1)<<width - 1
	return v & mask, bits.Len64(v) > int(width)
}

// wrapInt sign-extends v after masking to width bits.
func wrapInt(v int64, width uint8) (wrapped int64, overflowed bool) {
	if width >= 64 {
		return v, false
	}
	mask := uint64(1)<<width - 1
	u := uint64(v) & mask
	signBit := uint64(1) << (width - 1)
	if u&signBit != 0 {
		u |= ^mask
	}
	magnitude := v
	if magnitude < 0 {
		magnitude = -magnitude
	}
	return int64(u), bits.Len64(uint64(magnitude)) >= int(width)
}

func asIntImm(e *ir.Expr) (int64, bool) {
	if k, ok := e.Kind.(ir.IntImm); ok {
		return k.Value, true
	}
	return 0, false
}

func asUIntImm(e *ir.Expr) (uint64, bool) {
	if k, ok := e.Kind.(ir.UIntImm); ok {
		return k.Value, true
	}
	return 0, false
}

func asFloatImm(e *ir.Expr) (float64, bool) {
	if k, ok := e.Kind.(ir.FloatImm); ok {
		return k.Value, true
	}
	return 0, false
}

func isConst(e *ir.Expr) bool {
	switch e.Kind.(type) {
	case ir.IntImm, ir.UIntImm, ir.FloatImm:
		return true
	default:
		return false
	}
}

// isTrivial reports whether e is the kind of bound value the simplifier
// may push into its auxiliary scope during LetStmt/Let traversal:
// an integer or float immediate, a Ramp of constants, or a Broadcast of a
// constant.
func isTrivial(e *ir.Expr) bool {
	switch k := e.Kind.(type) {
	case ir.IntImm, ir.UIntImm, ir.FloatImm:
		return true
	case ir.RampExpr:
		return isConst(k.Base) && isConst(k.Stride)
	case ir.BroadcastExpr:
		return isConst(k.Value)
	default:
		return false
	}
}

// foldBinary attempts constant folding for op over a, b, both of which must
// already be known constants of a's type. It returns nil, false if the
// combination isn't one it knows how to fold (e.g. comparisons, which are
// handled by the caller directly since their result type differs from the
// operand type).
func foldBinary(s *Simplifier, op ir.BinOp, a, b *ir.Expr) (*ir.Expr, bool) {
	t := a.Type
	switch t.Kind {
	case ir.Int:
		av, _ := asIntImm(a)
		bv, _ := asIntImm(b)
		return foldIntBinary(s, op, t, av, bv)
	case ir.UInt:
		av, _ := asUIntImm(a)
		bv, _ := asUIntImm(b)
		return foldUIntBinary(s, op, t, av, bv)
	case ir.Float:
		av, _ := asFloatImm(a)
		bv, _ := asFloatImm(b)
		return foldFloatBinary(op, t, av, bv)
	default:
		return nil, false
	}
}

func floorDivMod(a, b int64) (q, m int64) {
	q = a / b
	m = a % b
	if m != 0 && (m < 0) != (b < 0) {
		q--
		m += b
	}
	return
}

func foldIntBinary(s *Simplifier, op ir.BinOp, t ir.Type, a, b int64) (*ir.Expr, bool) {
	var result int64
	switch op {
	case ir.OpAdd:
		result = a + b
	case ir.OpSub:
		result = a - b
	case ir.OpMul:
		result = a * b
	case ir.OpDiv:
		if b == 0 {
			return nil, false
		}
		result, _ = floorDivMod(a, b)
	case ir.OpMod:
		if b == 0 {
			return nil, false
		}
		_, result = floorDivMod(a, b)
	case ir.OpMin:
		if a < b {
			result = a
		} else {
			result = b
		}
	case ir.OpMax:
		if a > b {
			result = a
		} else {
			result = b
		}
	default:
		return nil, false
	}
	wrapped, overflowed := wrapInt(result, t.Bits)
	if overflowed && s.log != nil {
		s.log.Warnf("simplify: int%d constant fold of %s wrapped %d to %d", t.Bits, op, result, wrapped)
	}
	e, err := ir.NewIntImm(t, wrapped)
	if err != nil {
		return nil, false
	}
	return e, true
}

func foldUIntBinary(s *Simplifier, op ir.BinOp, t ir.Type, a, b uint64) (*ir.Expr, bool) {
	var result uint64
	switch op {
	case ir.OpAdd:
		result = a + b
	case ir.OpSub:
		result = a - b
	case ir.OpMul:
		result = a * b
	case ir.OpDiv:
		if b == 0 {
			return nil, false
		}
		result = a / b
	case ir.OpMod:
		if b == 0 {
			return nil, false
		}
		result = a % b
	case ir.OpMin:
		if a < b {
			result = a
		} else {
			result = b
		}
	case ir.OpMax:
		if a > b {
			result = a
		} else {
			result = b
		}
	default:
		return nil, false
	}
	wrapped, overflowed := wrapUint(result, t.Bits)
	if overflowed && s.log != nil {
		s.log.Warnf("simplify: uint%d constant fold of %s wrapped %d to %d", t.Bits, op, result, wrapped)
	}
	e, err := ir.NewUIntImm(t, wrapped)
	if err != nil {
		return nil, false
	}
	return e, true
}

func foldFloatBinary(op ir.BinOp, t ir.Type, a, b float64) (*ir.Expr, bool) {
	var result float64
	switch op {
	case ir.OpAdd:
		result = a + b
	case ir.OpSub:
		result = a - b
	case ir.OpMul:
		result = a * b
	case ir.OpDiv:
		if b == 0 {
			return nil, false
		}
		result = a / b
	case ir.OpMod:
		if b == 0 {
			return nil, false
		}
		result = fmod(a, b)
	case ir.OpMin:
		if a < b {
			result = a
		} else {
			result = b
		}
	case ir.OpMax:
		if a > b {
			result = a
		} else {
			result = b
		}
	default:
		return nil, false
	}
	e, err := ir.NewFloatImm(t, result)
	if err != nil {
		return nil, false
	}
	return e, true
}

// fmod mirrors C's fmod (truncating remainder), which is the float Mod
// semantics, unlike the floor-rounding integer Mod.
func fmod(a, b float64) float64 {
	q := a / b
	trunc := float64(int64(q))
	return a - trunc*b
}
