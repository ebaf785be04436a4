package lower

import (
	"fmt"

	"github.com/loomlang/loomc/ir"
)

// Vectorize rewrites every For whose kind is Vectorized into a LetStmt
// binding the loop name to its min, with the loop body widened to lane
// width n = extent: occurrences of the loop variable become
// Ramp(Variable(loop.min), 1, n), and every Add/Sub/Mul/Div/Mod/Min/Max/
// Select/Load/Let that consumes a widened operand is rebuilt in
// lane-matching form, broadcasting scalar siblings to width n.
// The extent must already have simplified to a constant integer
// n >= 2; callers run package simplify first.
func Vectorize(stmt *ir.Stmt) (*ir.Stmt, error) {
	v := &vectorizer{}
	v.Self = v
	return v.MutateStmt(stmt)
}

type vectorizer struct {
	ir.BaseMutator
}

func (v *vectorizer) MutateStmt(s *ir.Stmt) (*ir.Stmt, error) {
	if s == nil {
		return nil, nil
	}
	fk, ok := s.Kind.(ir.ForStmtKind)
	if !ok || fk.ForKind != ir.Vectorized {
		return ir.MutateStmtChildren(v, s)
	}
	n, ok := constExtent(fk.Extent)
	if !ok || n < 2 {
		return nil, &SchedulingError{Kind: NonConstantExtent, Function: fk.Name, Detail: "vectorized loop's extent did not simplify to a constant >= 2"}
	}
	body, err := v.MutateStmt(fk.Body)
	if err != nil {
		return nil, err
	}
	w := &widener{loopVar: fk.Name, loopMin: fk.Min, lanes: n, letLanes: make(map[string]uint32)}
	widened, err := w.widenStmt(body)
	if err != nil {
		return nil, err
	}
	return ir.LetStmt(fk.Name, fk.Min, widened)
}

func constExtent(e *ir.Expr) (uint32, bool) {
	switch k := e.Kind.(type) {
	case ir.IntImm:
		if k.Value <= 0 {
			return 0, false
		}
		return uint32(k.Value), true
	case ir.UIntImm:
		return uint32(k.Value), true
	default:
		return 0, false
	}
}

// widener rewrites an expression tree already known to reference loopVar,
// lifting vector lanes outward through every node that consumes a widened
// child. It descends statements too, since a vectorized loop's body can
// contain Store/Provide/Assert/Print/LetStmt nodes with expressions to
// widen.
type widener struct {
	loopVar  string
	loopMin  *ir.Expr
	lanes    uint32
	letLanes map[string]uint32
}

func (w *widener) widenStmt(s *ir.Stmt) (*ir.Stmt, error) {
	if s == nil {
		return nil, nil
	}
	switch k := s.Kind.(type) {
	case ir.LetStmtKind:
		value, err := w.widenExpr(k.Value)
		if err != nil {
			return nil, err
		}
		if value.Type.IsVector() {
			w.letLanes[k.Name] = value.Type.Lanes
			defer delete(w.letLanes, k.Name)
		}
		body, err := w.widenStmt(k.Body)
		if err != nil {
			return nil, err
		}
		return ir.LetStmt(k.Name, value, body)
	case ir.AssertStmtKind:
		cond, err := w.widenExpr(k.Cond)
		if err != nil {
			return nil, err
		}
		return ir.AssertStmt(cond, k.Message)
	case ir.PrintStmtKind:
		args := make([]*ir.Expr, len(k.Args))
		for i, a := range k.Args {
			na, err := w.widenExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = na
		}
		return ir.PrintStmt(k.Prefix, args)
	case ir.ForStmtKind:
		min, err := w.widenExpr(k.Min)
		if err != nil {
			return nil, err
		}
		extent, err := w.widenExpr(k.Extent)
		if err != nil {
			return nil, err
		}
		body, err := w.widenStmt(k.Body)
		if err != nil {
			return nil, err
		}
		return ir.For(k.Name, min, extent, k.ForKind, body)
	case ir.StoreStmtKind:
		value, err := w.widenExpr(k.Value)
		if err != nil {
			return nil, err
		}
		idx, err := w.widenExpr(k.Index)
		if err != nil {
			return nil, err
		}
		return ir.Store(k.Buffer, value, idx)
	case ir.ProvideStmtKind:
		value, err := w.widenExpr(k.Value)
		if err != nil {
			return nil, err
		}
		args := make([]*ir.Expr, len(k.Args))
		for i, a := range k.Args {
			na, err := w.widenExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = na
		}
		return ir.Provide(k.Buffer, value, args)
	case ir.BlockStmtKind:
		first, err := w.widenStmt(k.First)
		if err != nil {
			return nil, err
		}
		rest, err := w.widenStmt(k.Rest)
		if err != nil {
			return nil, err
		}
		return ir.BlockStmt(first, rest)
	default:
		// Pipeline/Allocate/Realize under a vectorized loop would need the
		// producer itself widened, which no schedule this module accepts can
		// express: splits leave the vectorized half innermost.
		return nil, fmt.Errorf("%w: cannot vectorize a loop whose body contains a %T; vectorize an inner split instead", ErrUnsupported, s.Kind)
	}
}

func (w *widener) widenExpr(e *ir.Expr) (*ir.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch k := e.Kind.(type) {
	case ir.Variable:
		if k.Name == w.loopVar {
			return ir.NewRamp(w.loopMin, scalarOne(w.loopMin.Type), w.lanes)
		}
		if lanes, ok := w.letLanes[k.Name]; ok && e.Type.IsScalar() {
			return ir.NewVariable(e.Type.WithLanes(lanes), k.Name), nil
		}
		return e, nil
	case ir.IntImm, ir.UIntImm, ir.FloatImm:
		return e, nil
	case ir.Cast:
		v, err := w.widenExpr(k.Value)
		if err != nil {
			return nil, err
		}
		if v == k.Value {
			return e, nil
		}
		return ir.NewCast(e.Type.WithLanes(v.Type.Lanes), v)
	case ir.BinaryExpr:
		a, err := w.widenExpr(k.A)
		if err != nil {
			return nil, err
		}
		b, err := w.widenExpr(k.B)
		if err != nil {
			return nil, err
		}
		if a == k.A && b == k.B {
			return e, nil
		}
		a, b, err = matchLanes(a, b)
		if err != nil {
			return nil, err
		}
		return ir.NewBinary(k.Op, a, b)
	case ir.NotExpr:
		v, err := w.widenExpr(k.Value)
		if err != nil {
			return nil, err
		}
		if v == k.Value {
			return e, nil
		}
		return ir.NewNot(v)
	case ir.SelectExpr:
		cond, err := w.widenExpr(k.Cond)
		if err != nil {
			return nil, err
		}
		tv, err := w.widenExpr(k.TrueValue)
		if err != nil {
			return nil, err
		}
		fv, err := w.widenExpr(k.FalseValue)
		if err != nil {
			return nil, err
		}
		if cond == k.Cond && tv == k.TrueValue && fv == k.FalseValue {
			return e, nil
		}
		tv, fv, err = matchLanes(tv, fv)
		if err != nil {
			return nil, err
		}
		cond, err = broadcastTo(cond, tv.Type.Lanes)
		if err != nil {
			return nil, err
		}
		return ir.NewSelect(cond, tv, fv)
	case ir.LoadExpr:
		idx, err := w.widenExpr(k.Index)
		if err != nil {
			return nil, err
		}
		if idx == k.Index {
			return e, nil
		}
		return ir.NewLoad(e.Type.WithLanes(idx.Type.Lanes), k.BufferName, idx)
	case ir.RampExpr:
		base, err := w.widenExpr(k.Base)
		if err != nil {
			return nil, err
		}
		stride, err := w.widenExpr(k.Stride)
		if err != nil {
			return nil, err
		}
		if base == k.Base && stride == k.Stride {
			return e, nil
		}
		return ir.NewRamp(base, stride, k.Lanes)
	case ir.BroadcastExpr:
		v, err := w.widenExpr(k.Value)
		if err != nil {
			return nil, err
		}
		if v == k.Value {
			return e, nil
		}
		return ir.NewBroadcast(v, k.Lanes)
	case ir.CallExpr:
		changed := false
		args := make([]*ir.Expr, len(k.Args))
		for i, a := range k.Args {
			na, err := w.widenExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = na
			if na != a {
				changed = true
			}
		}
		if !changed {
			return e, nil
		}
		return ir.NewCall(e.Type, k.Name, args, k.Kind)
	case ir.LetExpr:
		value, err := w.widenExpr(k.Value)
		if err != nil {
			return nil, err
		}
		if value.Type.IsVector() {
			prev, had := w.letLanes[k.Name]
			w.letLanes[k.Name] = value.Type.Lanes
			defer func() {
				if had {
					w.letLanes[k.Name] = prev
				} else {
					delete(w.letLanes, k.Name)
				}
			}()
		}
		body, err := w.widenExpr(k.Body)
		if err != nil {
			return nil, err
		}
		if value == k.Value && body == k.Body {
			return e, nil
		}
		return ir.NewLet(k.Name, value, body)
	default:
		return e, nil
	}
}

// matchLanes broadcasts whichever of a, b is scalar up to the other's lane
// count, when exactly one of them is a vector.
func matchLanes(a, b *ir.Expr) (*ir.Expr, *ir.Expr, error) {
	if a.Type.Lanes == b.Type.Lanes {
		return a, b, nil
	}
	if a.Type.IsScalar() {
		wa, err := broadcastTo(a, b.Type.Lanes)
		return wa, b, err
	}
	wb, err := broadcastTo(b, a.Type.Lanes)
	return a, wb, err
}

func broadcastTo(e *ir.Expr, lanes uint32) (*ir.Expr, error) {
	if e.Type.Lanes == lanes {
		return e, nil
	}
	return ir.NewBroadcast(e, lanes)
}

func scalarOne(t ir.Type) *ir.Expr {
	switch t.Kind {
	case ir.Float:
		e, err := ir.NewFloatImm(t, 1)
		if err != nil {
			panic(err)
		}
		return e
	case ir.UInt:
		e, err := ir.NewUIntImm(t, 1)
		if err != nil {
			panic(err)
		}
		return e
	default:
		e, err := ir.NewIntImm(t, 1)
		if err != nil {
			panic(err)
		}
		return e
	}
}
