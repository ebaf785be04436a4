package simplify

import (
	"github.com/sirupsen/logrus"

	"github.com/loomlang/loomc/bounds"
	"github.com/loomlang/loomc/ir"
)

// Simplifier is a Mutator performing algebraic normalization, constant
// folding, and trivial-let inlining. It embeds ir.BaseMutator so every
// node kind it does not special-case falls through to the
// sharing-preserving default.
type Simplifier struct {
	ir.BaseMutator
	log *logrus.Logger
	// letScope holds the auxiliary substitution scope for trivial-let
	// pushdown: while simplifying a Let/LetStmt body whose bound value is
	// trivial, the name is pushed here so nested
	// Variable lookups return the value directly instead of waiting for a
	// separate substitution pass.
	letScope *ir.Scope[*ir.Expr]
	// knownBounds is the optional caller-seeded interval scope a driver can
	// supply via WithKnownBounds once bounds inference has already run, so
	// comparisons over variables with disjoint known ranges fold to a
	// constant.
	knownBounds *ir.Scope[bounds.Interval]
}

// Option configures a Simplifier constructed by New.
type Option func(*Simplifier)

// WithKnownBounds seeds the Simplifier with a scope of already-inferred
// variable intervals, enabling bounds-aware comparison folding.
func WithKnownBounds(scope *ir.Scope[bounds.Interval]) Option {
	return func(s *Simplifier) { s.knownBounds = scope }
}

// New constructs a Simplifier. log may be nil, in which case folding
// warnings (integer overflow during constant folding) are discarded.
func New(log *logrus.Logger, opts ...Option) *Simplifier {
	s := &Simplifier{log: log, letScope: ir.NewScope[*ir.Expr](nil)}
	s.Self = s
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run applies the Simplifier to e repeatedly until two consecutive passes
// return the pointer-identical tree or maxIterations is reached,
// whichever comes first. The iteration cap bounds rewriting on
// pathological inputs; well-formed trees converge in a few passes.
func Run(log *logrus.Logger, e *ir.Expr, opts ...Option) (*ir.Expr, error) {
	const maxIterations = 64
	current := e
	for i := 0; i < maxIterations; i++ {
		s := New(log, opts...)
		next, err := s.MutateExpr(current)
		if err != nil {
			return nil, err
		}
		if next == current {
			return next, nil
		}
		current = next
	}
	if log != nil {
		log.Warnf("simplify: Run hit the %d-iteration safety valve without converging", maxIterations)
	}
	return current, nil
}

// RunStmt is Run's statement-tree overload.
func RunStmt(log *logrus.Logger, s *ir.Stmt, opts ...Option) (*ir.Stmt, error) {
	const maxIterations = 64
	current := s
	for i := 0; i < maxIterations; i++ {
		simp := New(log, opts...)
		next, err := simp.MutateStmt(current)
		if err != nil {
			return nil, err
		}
		if next == current {
			return next, nil
		}
		current = next
	}
	if log != nil {
		log.Warnf("simplify: RunStmt hit the %d-iteration safety valve without converging", maxIterations)
	}
	return current, nil
}

func (s *Simplifier) MutateExpr(e *ir.Expr) (*ir.Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch k := e.Kind.(type) {
	case ir.Variable:
		if s.letScope.Contains(k.Name) {
			v, err := s.letScope.Get(k.Name)
			if err == nil {
				return v, nil
			}
		}
		return e, nil

	case ir.LetExpr:
		return s.simplifyLet(e, k)

	case ir.Cast:
		v, err := s.MutateExpr(k.Value)
		if err != nil {
			return nil, err
		}
		return s.simplifyCast(e, v, k.Value)

	case ir.BinaryExpr:
		a, err := s.MutateExpr(k.A)
		if err != nil {
			return nil, err
		}
		b, err := s.MutateExpr(k.B)
		if err != nil {
			return nil, err
		}
		return s.simplifyBinary(e, k.Op, a, b, k.A, k.B)

	case ir.NotExpr:
		v, err := s.MutateExpr(k.Value)
		if err != nil {
			return nil, err
		}
		return s.simplifyNot(e, v, k.Value)

	case ir.SelectExpr:
		cond, err := s.MutateExpr(k.Cond)
		if err != nil {
			return nil, err
		}
		tv, err := s.MutateExpr(k.TrueValue)
		if err != nil {
			return nil, err
		}
		fv, err := s.MutateExpr(k.FalseValue)
		if err != nil {
			return nil, err
		}
		return s.simplifySelect(e, cond, tv, fv, k.Cond, k.TrueValue, k.FalseValue)

	default:
		return ir.MutateExprChildren(s, e)
	}
}

func (s *Simplifier) MutateStmt(st *ir.Stmt) (*ir.Stmt, error) {
	if st == nil {
		return nil, nil
	}
	if ls, ok := st.Kind.(ir.LetStmtKind); ok {
		return s.simplifyLetStmt(st, ls)
	}
	return ir.MutateStmtChildren(s, st)
}

func (s *Simplifier) simplifyLet(orig *ir.Expr, k ir.LetExpr) (*ir.Expr, error) {
	value, err := s.MutateExpr(k.Value)
	if err != nil {
		return nil, err
	}
	if isTrivial(value) {
		s.letScope.Push(k.Name, value)
		body, err := s.MutateExpr(k.Body)
		s.letScope.Pop(k.Name)
		if err != nil {
			return nil, err
		}
		return body, nil
	}
	body, err := s.MutateExpr(k.Body)
	if err != nil {
		return nil, err
	}
	if value == k.Value && body == k.Body {
		return orig, nil
	}
	return ir.NewLet(k.Name, value, body)
}

func (s *Simplifier) simplifyLetStmt(orig *ir.Stmt, k ir.LetStmtKind) (*ir.Stmt, error) {
	value, err := s.MutateExpr(k.Value)
	if err != nil {
		return nil, err
	}
	if isTrivial(value) {
		s.letScope.Push(k.Name, value)
		body, err := s.MutateStmt(k.Body)
		s.letScope.Pop(k.Name)
		if err != nil {
			return nil, err
		}
		return body, nil
	}
	body, err := s.MutateStmt(k.Body)
	if err != nil {
		return nil, err
	}
	if value == k.Value && body == k.Body {
		return orig, nil
	}
	return ir.LetStmt(k.Name, value, body)
}

func (s *Simplifier) simplifyCast(orig, value, origValue *ir.Expr) (*ir.Expr, error) {
	t := orig.Type
	// Cast(t, x) when x.type == t is a no-op.
	if value.Type.Equal(t) {
		return value, nil
	}
	// Cast(t, Cast(t', x)) -> Cast(t, x): the inner cast's own type is
	// irrelevant once another cast is applied on top.
	if inner, ok := value.Kind.(ir.Cast); ok {
		return s.simplifyCast(orig, inner.Value, inner.Value)
	}
	if folded, ok := foldCastConst(t, value); ok {
		return folded, nil
	}
	if value == origValue {
		return orig, nil
	}
	return ir.NewCast(t, value)
}

func (s *Simplifier) simplifyNot(orig, value, origValue *ir.Expr) (*ir.Expr, error) {
	if k, ok := value.Kind.(ir.NotExpr); ok {
		return k.Value, nil
	}
	if b, ok := asUIntImm(value); ok {
		e, err := ir.NewUIntImm(value.Type, boolNot(b))
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	if value == origValue {
		return orig, nil
	}
	return ir.NewNot(value)
}

func boolNot(b uint64) uint64 {
	if b == 0 {
		return 1
	}
	return 0
}

func (s *Simplifier) simplifySelect(orig, cond, tv, fv, origCond, origTV, origFV *ir.Expr) (*ir.Expr, error) {
	if b, ok := asUIntImm(cond); ok {
		if b != 0 {
			return tv, nil
		}
		return fv, nil
	}
	if ir.Equal(tv, fv) {
		return tv, nil
	}
	if cond == origCond && tv == origTV && fv == origFV {
		return orig, nil
	}
	return ir.NewSelect(cond, tv, fv)
}

func (s *Simplifier) simplifyBinary(orig *ir.Expr, op ir.BinOp, a, b, origA, origB *ir.Expr) (*ir.Expr, error) {
	var result *ir.Expr
	switch {
	case op.IsArith():
		result = s.simplifyArith(op, orig.Type, a, b)
	case op.IsComparison():
		result = simplifyComparison(op, a, b)
		if result == nil {
			result = s.boundsProveComparison(op, a, b)
		}
	case op.IsLogical():
		result = simplifyLogical(op, a, b)
	}
	if result != nil {
		return result, nil
	}
	if a == origA && b == origB {
		return orig, nil
	}
	return ir.NewBinary(op, a, b)
}

func (s *Simplifier) simplifyArith(op ir.BinOp, t ir.Type, a, b *ir.Expr) *ir.Expr {
	switch op {
	case ir.OpAdd:
		return s.simplifyAdd(t, a, b)
	case ir.OpSub:
		return s.simplifySub(t, a, b)
	case ir.OpMul:
		return s.simplifyMul(t, a, b)
	case ir.OpDiv:
		return s.simplifyDiv(t, a, b)
	case ir.OpMod:
		return s.simplifyMod(t, a, b)
	case ir.OpMin:
		return s.simplifyMinMax(true, t, a, b)
	case ir.OpMax:
		return s.simplifyMinMax(false, t, a, b)
	default:
		return nil
	}
}

func (s *Simplifier) fold(op ir.BinOp, a, b *ir.Expr) *ir.Expr {
	if isConst(a) && isConst(b) {
		if r, ok := foldBinary(s, op, a, b); ok {
			return r
		}
	}
	return nil
}

func (s *Simplifier) build(op ir.BinOp, a, b *ir.Expr) *ir.Expr {
	e, err := ir.NewBinary(op, a, b)
	if err != nil {
		return nil
	}
	return e
}

func (s *Simplifier) simplifyAdd(t ir.Type, a, b *ir.Expr) *ir.Expr {
	if r := s.fold(ir.OpAdd, a, b); r != nil {
		return r
	}
	if r := s.rampBroadcastFuseAdd(a, b); r != nil {
		return r
	}
	// Move constants to the right.
	if isConst(a) && !isConst(b) {
		a, b = b, a
	}
	if isZero(b) {
		return a
	}
	if isZero(a) {
		return b
	}
	// (x + c1) + c2 -> x + (c1 + c2).
	if ab, ok := a.Kind.(ir.BinaryExpr); ok && ab.Op == ir.OpAdd && isConst(ab.B) && isConst(b) {
		if sum := s.fold(ir.OpAdd, ab.B, b); sum != nil {
			if r := s.build(ir.OpAdd, ab.A, sum); r != nil {
				return r
			}
		}
	}
	// (x + c1) + y -> (x + y) + c1.
	if ab, ok := a.Kind.(ir.BinaryExpr); ok && ab.Op == ir.OpAdd && isConst(ab.B) && !isConst(b) {
		if xy := s.build(ir.OpAdd, ab.A, b); xy != nil {
			if r := s.build(ir.OpAdd, xy, ab.B); r != nil {
				return r
			}
		}
	}
	// Cancel additive inverses: (p - q) + q -> p; q + (p - q) -> p.
	if sub, ok := a.Kind.(ir.BinaryExpr); ok && sub.Op == ir.OpSub && ir.Equal(sub.B, b) {
		return sub.A
	}
	if sub, ok := b.Kind.(ir.BinaryExpr); ok && sub.Op == ir.OpSub && ir.Equal(sub.B, a) {
		return sub.A
	}
	if r := tryDistribute(a, b); r != nil {
		return r
	}
	return nil
}

func (s *Simplifier) simplifySub(t ir.Type, a, b *ir.Expr) *ir.Expr {
	if r := s.fold(ir.OpSub, a, b); r != nil {
		return r
	}
	if isZero(b) {
		return a
	}
	if ir.Equal(a, b) {
		return zeroOf(t)
	}
	// x - (x + c) -> -c is out of scope without a Neg node; handled only
	// via the symmetric Add-side cancellation rule above.
	return nil
}

func (s *Simplifier) simplifyMul(t ir.Type, a, b *ir.Expr) *ir.Expr {
	if r := s.fold(ir.OpMul, a, b); r != nil {
		return r
	}
	if isConst(a) && !isConst(b) {
		a, b = b, a
	}
	if isZero(b) {
		return b
	}
	if isZero(a) {
		return a
	}
	if isOne(b) {
		return a
	}
	if isOne(a) {
		return b
	}
	return nil
}

func (s *Simplifier) simplifyDiv(t ir.Type, a, b *ir.Expr) *ir.Expr {
	if r := s.fold(ir.OpDiv, a, b); r != nil {
		return r
	}
	if isOne(b) {
		return a
	}
	return nil
}

func (s *Simplifier) simplifyMod(t ir.Type, a, b *ir.Expr) *ir.Expr {
	if r := s.fold(ir.OpMod, a, b); r != nil {
		return r
	}
	if isOne(b) {
		return zeroOf(t)
	}
	return nil
}

func (s *Simplifier) simplifyMinMax(isMin bool, t ir.Type, a, b *ir.Expr) *ir.Expr {
	op := ir.OpMax
	if isMin {
		op = ir.OpMin
	}
	if r := s.fold(op, a, b); r != nil {
		return r
	}
	if ir.Equal(a, b) {
		return a
	}
	return nil
}

// boundsProveComparison decides op(a, b) from s.knownBounds when a and b's
// inferred intervals are fully disjoint, folding comparisons plain
// constant folding cannot reach.
func (s *Simplifier) boundsProveComparison(op ir.BinOp, a, b *ir.Expr) *ir.Expr {
	if s.knownBounds == nil {
		return nil
	}
	ai, err := bounds.OfExprInScope(a, s.knownBounds)
	if err != nil {
		return nil
	}
	bi, err := bounds.OfExprInScope(b, s.knownBounds)
	if err != nil {
		return nil
	}
	amax, amaxOk := numericOf(ai.Max)
	amin, aminOk := numericOf(ai.Min)
	bmax, bmaxOk := numericOf(bi.Max)
	bmin, bminOk := numericOf(bi.Min)

	var aAlwaysLess, aAlwaysGreater bool
	if amaxOk && bminOk && amax < bmin {
		aAlwaysLess = true
	}
	if aminOk && bmaxOk && amin > bmax {
		aAlwaysGreater = true
	}
	if !aAlwaysLess && !aAlwaysGreater {
		return nil
	}

	var result bool
	switch op {
	case ir.OpLT:
		result = aAlwaysLess
	case ir.OpLE:
		result = aAlwaysLess
	case ir.OpGT:
		result = aAlwaysGreater
	case ir.OpGE:
		result = aAlwaysGreater
	case ir.OpEQ:
		result = false
	case ir.OpNE:
		result = true
	default:
		return nil
	}
	v := uint64(0)
	if result {
		v = 1
	}
	e, err := ir.NewUIntImm(ir.Bool, v)
	if err != nil {
		return nil
	}
	return e
}

func numericOf(e *ir.Expr) (float64, bool) {
	if e == nil {
		return 0, false
	}
	if v, ok := asIntImm(e); ok {
		return float64(v), true
	}
	if v, ok := asUIntImm(e); ok {
		return float64(v), true
	}
	if v, ok := asFloatImm(e); ok {
		return v, true
	}
	return 0, false
}

func simplifyComparison(op ir.BinOp, a, b *ir.Expr) *ir.Expr {
	if isConst(a) && isConst(b) {
		if r, ok := foldComparisonConst(op, a, b); ok {
			return r
		}
	}
	if ir.Equal(a, b) {
		switch op {
		case ir.OpEQ, ir.OpLE, ir.OpGE:
			e, _ := ir.NewUIntImm(ir.Bool, 1)
			return e
		case ir.OpNE, ir.OpLT, ir.OpGT:
			e, _ := ir.NewUIntImm(ir.Bool, 0)
			return e
		}
	}
	return nil
}

func simplifyLogical(op ir.BinOp, a, b *ir.Expr) *ir.Expr {
	av, aok := asUIntImm(a)
	bv, bok := asUIntImm(b)
	switch op {
	case ir.OpAnd:
		if aok && av == 0 {
			return a
		}
		if bok && bv == 0 {
			return b
		}
		if aok && av != 0 {
			return b
		}
		if bok && bv != 0 {
			return a
		}
	case ir.OpOr:
		if aok && av != 0 {
			return a
		}
		if bok && bv != 0 {
			return b
		}
		if aok && av == 0 {
			return b
		}
		if bok && bv == 0 {
			return a
		}
	}
	return nil
}

func (s *Simplifier) rampBroadcastFuseAdd(a, b *ir.Expr) *ir.Expr {
	ramp, okA := a.Kind.(ir.RampExpr)
	bramp, okB := b.Kind.(ir.RampExpr)
	broadcast, okAB := a.Kind.(ir.BroadcastExpr)
	bbroadcast, okBB := b.Kind.(ir.BroadcastExpr)

	switch {
	case okA && okB && ramp.Lanes == bramp.Lanes:
		base := s.addOrBuild(ramp.Base, bramp.Base)
		stride := s.addOrBuild(ramp.Stride, bramp.Stride)
		r, err := ir.NewRamp(base, stride, ramp.Lanes)
		if err != nil {
			return nil
		}
		return r
	case okA && okBB && ramp.Lanes == bbroadcast.Lanes:
		base := s.addOrBuild(ramp.Base, bbroadcast.Value)
		r, err := ir.NewRamp(base, ramp.Stride, ramp.Lanes)
		if err != nil {
			return nil
		}
		return r
	case okAB && okB && broadcast.Lanes == bramp.Lanes:
		base := s.addOrBuild(broadcast.Value, bramp.Base)
		r, err := ir.NewRamp(base, bramp.Stride, bramp.Lanes)
		if err != nil {
			return nil
		}
		return r
	case okAB && okBB && broadcast.Lanes == bbroadcast.Lanes:
		v := s.addOrBuild(broadcast.Value, bbroadcast.Value)
		r, err := ir.NewBroadcast(v, broadcast.Lanes)
		if err != nil {
			return nil
		}
		return r
	default:
		return nil
	}
}

func (s *Simplifier) addOrBuild(a, b *ir.Expr) *ir.Expr {
	if r := s.fold(ir.OpAdd, a, b); r != nil {
		return r
	}
	return s.build(ir.OpAdd, a, b)
}

func tryDistribute(a, b *ir.Expr) *ir.Expr {
	am, aok := a.Kind.(ir.BinaryExpr)
	bm, bok := b.Kind.(ir.BinaryExpr)
	if !aok || !bok || am.Op != ir.OpMul || bm.Op != ir.OpMul {
		return nil
	}
	combos := [4][4]*ir.Expr{
		{am.A, am.B, bm.A, bm.B},
		{am.A, am.B, bm.B, bm.A},
		{am.B, am.A, bm.A, bm.B},
		{am.B, am.A, bm.B, bm.A},
	}
	for _, c := range combos {
		common1, other1, common2, other2 := c[0], c[1], c[2], c[3]
		if ir.Equal(common1, common2) {
			sum, err := ir.NewBinary(ir.OpAdd, other1, other2)
			if err != nil {
				continue
			}
			result, err := ir.NewBinary(ir.OpMul, common1, sum)
			if err != nil {
				continue
			}
			return result
		}
	}
	return nil
}

func isZero(e *ir.Expr) bool {
	switch k := e.Kind.(type) {
	case ir.IntImm:
		return k.Value == 0
	case ir.UIntImm:
		return k.Value == 0
	case ir.FloatImm:
		return k.Value == 0
	default:
		return false
	}
}

func isOne(e *ir.Expr) bool {
	switch k := e.Kind.(type) {
	case ir.IntImm:
		return k.Value == 1
	case ir.UIntImm:
		return k.Value == 1
	case ir.FloatImm:
		return k.Value == 1
	default:
		return false
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

func foldCastConst(t ir.Type, v *ir.Expr) (*ir.Expr, bool) {
	var f float64
	switch k := v.Kind.(type) {
	case ir.IntImm:
		f = float64(k.Value)
	case ir.UIntImm:
		f = float64(k.Value)
	case ir.FloatImm:
		f = k.Value
	default:
		return nil, false
	}
	switch t.Kind {
	case ir.Int:
		e, err := ir.NewIntImm(t, int64(f))
		return e, err == nil
	case ir.UInt:
		e, err := ir.NewUIntImm(t, uint64(f))
		return e, err == nil
	case ir.Float:
		e, err := ir.NewFloatImm(t, f)
		return e, err == nil
	default:
		return nil, false
	}
}

func foldComparisonConst(op ir.BinOp, a, b *ir.Expr) (*ir.Expr, bool) {
	cmp := 0
	switch {
	case a.Type.Kind == ir.Float:
		av, _ := asFloatImm(a)
		bv, _ := asFloatImm(b)
		switch {
		case av < bv:
			cmp = -1
		case av > bv:
			cmp = 1
		}
	case a.Type.Kind == ir.UInt:
		av, _ := asUIntImm(a)
		bv, _ := asUIntImm(b)
		switch {
		case av < bv:
			cmp = -1
		case av > bv:
			cmp = 1
		}
	default:
		av, _ := asIntImm(a)
		bv, _ := asIntImm(b)
		switch {
		case av < bv:
			cmp = -1
		case av > bv:
			cmp = 1
		}
	}
	var result bool
	switch op {
	case ir.OpEQ:
		result = cmp == 0
	case ir.OpNE:
		result = cmp != 0
	case ir.OpLT:
		result = cmp < 0
	case ir.OpLE:
		result = cmp <= 0
	case ir.OpGT:
		result = cmp > 0
	case ir.OpGE:
		result = cmp >= 0
	default:
		return nil, false
	}
	var v uint64
	if result {
		v = 1
	}
	e, err := ir.NewUIntImm(ir.Bool, v)
	return e, err == nil
}
