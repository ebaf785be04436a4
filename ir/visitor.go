package ir

// ExprMutator rewrites an expression tree, returning either e unchanged
// (same pointer) or a freshly built replacement. Passes embed BaseMutator
// and override MutateExpr for the node kinds they rewrite, falling back to
// MutateExprChildren for everything else. The variant set is closed, so
// dispatch is an exhaustive type switch rather than reflection.
type ExprMutator interface {
	MutateExpr(e *Expr) (*Expr, error)
}

// StmtMutator rewrites a statement tree analogously to ExprMutator.
type StmtMutator interface {
	MutateStmt(s *Stmt) (*Stmt, error)
}

// Mutator combines ExprMutator and StmtMutator. Passes implement this
// directly when they need to rewrite both trees (most do, since statements
// embed expressions); passes that only ever touch expressions can implement
// just ExprMutator.
type Mutator interface {
	ExprMutator
	StmtMutator
}

// MutateExprChildren rebuilds e's children by calling m.MutateExpr on each
// child expression, returning e unchanged (same pointer) if every child
// mutated to itself, preserving structural sharing across rewrites that
// fire nothing. A pass's MutateExpr should call this as its fallback for
// variants it does not special-case.
func MutateExprChildren(m ExprMutator, e *Expr) (*Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch k := e.Kind.(type) {
	case IntImm, UIntImm, FloatImm, Variable:
		return e, nil
	case Cast:
		v, err := m.MutateExpr(k.Value)
		if err != nil {
			return nil, err
		}
		if v == k.Value {
			return e, nil
		}
		return NewCast(e.Type, v)
	case BinaryExpr:
		a, err := m.MutateExpr(k.A)
		if err != nil {
			return nil, err
		}
		b, err := m.MutateExpr(k.B)
		if err != nil {
			return nil, err
		}
		if a == k.A && b == k.B {
			return e, nil
		}
		return NewBinary(k.Op, a, b)
	case NotExpr:
		v, err := m.MutateExpr(k.Value)
		if err != nil {
			return nil, err
		}
		if v == k.Value {
			return e, nil
		}
		return NewNot(v)
	case SelectExpr:
		cond, err := m.MutateExpr(k.Cond)
		if err != nil {
			return nil, err
		}
		tv, err := m.MutateExpr(k.TrueValue)
		if err != nil {
			return nil, err
		}
		fv, err := m.MutateExpr(k.FalseValue)
		if err != nil {
			return nil, err
		}
		if cond == k.Cond && tv == k.TrueValue && fv == k.FalseValue {
			return e, nil
		}
		return NewSelect(cond, tv, fv)
	case LoadExpr:
		idx, err := m.MutateExpr(k.Index)
		if err != nil {
			return nil, err
		}
		if idx == k.Index {
			return e, nil
		}
		return NewLoad(e.Type, k.BufferName, idx)
	case RampExpr:
		base, err := m.MutateExpr(k.Base)
		if err != nil {
			return nil, err
		}
		stride, err := m.MutateExpr(k.Stride)
		if err != nil {
			return nil, err
		}
		if base == k.Base && stride == k.Stride {
			return e, nil
		}
		return NewRamp(base, stride, k.Lanes)
	case BroadcastExpr:
		v, err := m.MutateExpr(k.Value)
		if err != nil {
			return nil, err
		}
		if v == k.Value {
			return e, nil
		}
		return NewBroadcast(v, k.Lanes)
	case CallExpr:
		changed := false
		args := make([]*Expr, len(k.Args))
		for i, a := range k.Args {
			na, err := m.MutateExpr(a)
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
		return NewCall(e.Type, k.Name, args, k.Kind)
	case LetExpr:
		v, err := m.MutateExpr(k.Value)
		if err != nil {
			return nil, err
		}
		b, err := m.MutateExpr(k.Body)
		if err != nil {
			return nil, err
		}
		if v == k.Value && b == k.Body {
			return e, nil
		}
		return NewLet(k.Name, v, b)
	default:
		return e, nil
	}
}

// MutateStmtChildren is MutateExprChildren's statement counterpart. A
// pass's MutateStmt should call this as its fallback for variants it does
// not special-case; it calls back into m for both nested statements and
// nested expressions, so the same Mutator drives both traversals.
func MutateStmtChildren(m Mutator, s *Stmt) (*Stmt, error) {
	if s == nil {
		return nil, nil
	}
	switch k := s.Kind.(type) {
	case LetStmtKind:
		v, err := m.MutateExpr(k.Value)
		if err != nil {
			return nil, err
		}
		body, err := m.MutateStmt(k.Body)
		if err != nil {
			return nil, err
		}
		if v == k.Value && body == k.Body {
			return s, nil
		}
		return LetStmt(k.Name, v, body)
	case AssertStmtKind:
		cond, err := m.MutateExpr(k.Cond)
		if err != nil {
			return nil, err
		}
		if cond == k.Cond {
			return s, nil
		}
		return AssertStmt(cond, k.Message)
	case PrintStmtKind:
		changed := false
		args := make([]*Expr, len(k.Args))
		for i, a := range k.Args {
			na, err := m.MutateExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = na
			if na != a {
				changed = true
			}
		}
		if !changed {
			return s, nil
		}
		return PrintStmt(k.Prefix, args)
	case PipelineKind:
		produce, err := m.MutateStmt(k.Produce)
		if err != nil {
			return nil, err
		}
		update, err := m.MutateStmt(k.Update)
		if err != nil {
			return nil, err
		}
		consume, err := m.MutateStmt(k.Consume)
		if err != nil {
			return nil, err
		}
		if produce == k.Produce && update == k.Update && consume == k.Consume {
			return s, nil
		}
		return Pipeline(k.Buffer, produce, update, consume)
	case ForStmtKind:
		min, err := m.MutateExpr(k.Min)
		if err != nil {
			return nil, err
		}
		extent, err := m.MutateExpr(k.Extent)
		if err != nil {
			return nil, err
		}
		body, err := m.MutateStmt(k.Body)
		if err != nil {
			return nil, err
		}
		if min == k.Min && extent == k.Extent && body == k.Body {
			return s, nil
		}
		return For(k.Name, min, extent, k.ForKind, body)
	case StoreStmtKind:
		v, err := m.MutateExpr(k.Value)
		if err != nil {
			return nil, err
		}
		idx, err := m.MutateExpr(k.Index)
		if err != nil {
			return nil, err
		}
		if v == k.Value && idx == k.Index {
			return s, nil
		}
		return Store(k.Buffer, v, idx)
	case ProvideStmtKind:
		v, err := m.MutateExpr(k.Value)
		if err != nil {
			return nil, err
		}
		changed := v != k.Value
		args := make([]*Expr, len(k.Args))
		for i, a := range k.Args {
			na, err := m.MutateExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = na
			if na != a {
				changed = true
			}
		}
		if !changed {
			return s, nil
		}
		return Provide(k.Buffer, v, args)
	case AllocateStmtKind:
		size, err := m.MutateExpr(k.Size)
		if err != nil {
			return nil, err
		}
		body, err := m.MutateStmt(k.Body)
		if err != nil {
			return nil, err
		}
		if size == k.Size && body == k.Body {
			return s, nil
		}
		return Allocate(k.Buffer, k.Type, size, body)
	case RealizeStmtKind:
		changed := false
		bounds := make([]Bound, len(k.Bounds))
		for i, b := range k.Bounds {
			min, err := m.MutateExpr(b.Min)
			if err != nil {
				return nil, err
			}
			extent, err := m.MutateExpr(b.Extent)
			if err != nil {
				return nil, err
			}
			bounds[i] = Bound{min, extent}
			if min != b.Min || extent != b.Extent {
				changed = true
			}
		}
		body, err := m.MutateStmt(k.Body)
		if err != nil {
			return nil, err
		}
		if !changed && body == k.Body {
			return s, nil
		}
		return Realize(k.Buffer, k.Type, bounds, body)
	case BlockStmtKind:
		first, err := m.MutateStmt(k.First)
		if err != nil {
			return nil, err
		}
		rest, err := m.MutateStmt(k.Rest)
		if err != nil {
			return nil, err
		}
		if first == k.First && rest == k.Rest {
			return s, nil
		}
		if first == nil {
			return rest, nil
		}
		return BlockStmt(first, rest)
	default:
		return s, nil
	}
}

// BaseMutator is an identity Mutator: every hook falls through to
// MutateExprChildren/MutateStmtChildren. Passes embed *BaseMutator (or
// compose with it) and override MutateExpr/MutateStmt to special-case the
// node kinds they rewrite, calling the embedded base for everything else.
type BaseMutator struct {
	Self Mutator // set by the embedding pass so recursive calls dispatch to its overrides
}

// MutateExpr implements ExprMutator by delegating to Self (or itself if Self
// is unset) for recursive calls, then rebuilding children generically.
func (b *BaseMutator) MutateExpr(e *Expr) (*Expr, error) {
	self := b.Self
	if self == nil {
		self = b
	}
	return MutateExprChildren(self, e)
}

// MutateStmt implements StmtMutator analogously to MutateExpr.
func (b *BaseMutator) MutateStmt(s *Stmt) (*Stmt, error) {
	self := b.Self
	if self == nil {
		self = b
	}
	return MutateStmtChildren(self, s)
}
