package ir

// Equal reports whether a and b are structurally equal expression trees:
// same Type, same variant, and recursively equal children. Pointer-equal
// trees (the common case once sharing-preserving passes have run) are
// short-circuited to true without descending.
func Equal(a, b *Expr) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if !a.Type.Equal(b.Type) {
		return false
	}
	switch ak := a.Kind.(type) {
	case IntImm:
		bk, ok := b.Kind.(IntImm)
		return ok && ak.Value == bk.Value
	case UIntImm:
		bk, ok := b.Kind.(UIntImm)
		return ok && ak.Value == bk.Value
	case FloatImm:
		bk, ok := b.Kind.(FloatImm)
		return ok && ak.Value == bk.Value
	case Variable:
		bk, ok := b.Kind.(Variable)
		return ok && ak.Name == bk.Name
	case Cast:
		bk, ok := b.Kind.(Cast)
		return ok && Equal(ak.Value, bk.Value)
	case BinaryExpr:
		bk, ok := b.Kind.(BinaryExpr)
		return ok && ak.Op == bk.Op && Equal(ak.A, bk.A) && Equal(ak.B, bk.B)
	case NotExpr:
		bk, ok := b.Kind.(NotExpr)
		return ok && Equal(ak.Value, bk.Value)
	case SelectExpr:
		bk, ok := b.Kind.(SelectExpr)
		return ok && Equal(ak.Cond, bk.Cond) && Equal(ak.TrueValue, bk.TrueValue) && Equal(ak.FalseValue, bk.FalseValue)
	case LoadExpr:
		bk, ok := b.Kind.(LoadExpr)
		return ok && ak.BufferName == bk.BufferName && Equal(ak.Index, bk.Index)
	case RampExpr:
		bk, ok := b.Kind.(RampExpr)
		return ok && ak.Lanes == bk.Lanes && Equal(ak.Base, bk.Base) && Equal(ak.Stride, bk.Stride)
	case BroadcastExpr:
		bk, ok := b.Kind.(BroadcastExpr)
		return ok && ak.Lanes == bk.Lanes && Equal(ak.Value, bk.Value)
	case CallExpr:
		bk, ok := b.Kind.(CallExpr)
		if !ok || ak.Name != bk.Name || ak.Kind != bk.Kind || len(ak.Args) != len(bk.Args) {
			return false
		}
		for i := range ak.Args {
			if !Equal(ak.Args[i], bk.Args[i]) {
				return false
			}
		}
		return true
	case LetExpr:
		bk, ok := b.Kind.(LetExpr)
		return ok && ak.Name == bk.Name && Equal(ak.Value, bk.Value) && Equal(ak.Body, bk.Body)
	default:
		return false
	}
}

// EqualStmt is Equal's statement-tree counterpart.
func EqualStmt(a, b *Stmt) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch ak := a.Kind.(type) {
	case LetStmtKind:
		bk, ok := b.Kind.(LetStmtKind)
		return ok && ak.Name == bk.Name && Equal(ak.Value, bk.Value) && EqualStmt(ak.Body, bk.Body)
	case AssertStmtKind:
		bk, ok := b.Kind.(AssertStmtKind)
		return ok && ak.Message == bk.Message && Equal(ak.Cond, bk.Cond)
	case PrintStmtKind:
		bk, ok := b.Kind.(PrintStmtKind)
		if !ok || ak.Prefix != bk.Prefix || len(ak.Args) != len(bk.Args) {
			return false
		}
		for i := range ak.Args {
			if !Equal(ak.Args[i], bk.Args[i]) {
				return false
			}
		}
		return true
	case PipelineKind:
		bk, ok := b.Kind.(PipelineKind)
		return ok && ak.Buffer == bk.Buffer && EqualStmt(ak.Produce, bk.Produce) &&
			EqualStmt(ak.Update, bk.Update) && EqualStmt(ak.Consume, bk.Consume)
	case ForStmtKind:
		bk, ok := b.Kind.(ForStmtKind)
		return ok && ak.Name == bk.Name && ak.ForKind == bk.ForKind &&
			Equal(ak.Min, bk.Min) && Equal(ak.Extent, bk.Extent) && EqualStmt(ak.Body, bk.Body)
	case StoreStmtKind:
		bk, ok := b.Kind.(StoreStmtKind)
		return ok && ak.Buffer == bk.Buffer && Equal(ak.Value, bk.Value) && Equal(ak.Index, bk.Index)
	case ProvideStmtKind:
		bk, ok := b.Kind.(ProvideStmtKind)
		if !ok || ak.Buffer != bk.Buffer || !Equal(ak.Value, bk.Value) || len(ak.Args) != len(bk.Args) {
			return false
		}
		for i := range ak.Args {
			if !Equal(ak.Args[i], bk.Args[i]) {
				return false
			}
		}
		return true
	case AllocateStmtKind:
		bk, ok := b.Kind.(AllocateStmtKind)
		return ok && ak.Buffer == bk.Buffer && ak.Type.Equal(bk.Type) &&
			Equal(ak.Size, bk.Size) && EqualStmt(ak.Body, bk.Body)
	case RealizeStmtKind:
		bk, ok := b.Kind.(RealizeStmtKind)
		if !ok || ak.Buffer != bk.Buffer || !ak.Type.Equal(bk.Type) || len(ak.Bounds) != len(bk.Bounds) {
			return false
		}
		for i := range ak.Bounds {
			if !Equal(ak.Bounds[i].Min, bk.Bounds[i].Min) || !Equal(ak.Bounds[i].Extent, bk.Bounds[i].Extent) {
				return false
			}
		}
		return EqualStmt(ak.Body, bk.Body)
	case BlockStmtKind:
		bk, ok := b.Kind.(BlockStmtKind)
		return ok && EqualStmt(ak.First, bk.First) && EqualStmt(ak.Rest, bk.Rest)
	default:
		return false
	}
}
