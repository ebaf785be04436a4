package ir

// ContainsStmtKind reports whether stmt or any of its descendants has a
// StmtKind for which match returns true. Used by package driver to check
// between-pass invariants such as no Realize surviving past storage
// flattening.
func ContainsStmtKind(stmt *Stmt, match func(StmtKind) bool) bool {
	found := false
	Inspect(stmt, func(k StmtKind) bool {
		if match(k) {
			found = true
			return false
		}
		return true
	}, nil)
	return found
}

// ContainsExprKind reports whether stmt or any expression reachable from it
// has an ExprKind for which match returns true.
func ContainsExprKind(stmt *Stmt, match func(ExprKind) bool) bool {
	found := false
	Inspect(stmt, nil, func(k ExprKind) bool {
		if match(k) {
			found = true
			return false
		}
		return true
	})
	return found
}

// Inspect walks stmt depth-first, calling stmtFn on every statement's Kind
// and exprFn on every expression's Kind reachable from it. Either callback
// may be nil. A callback returning false stops descent into that node's
// children (but not the walk as a whole).
func Inspect(stmt *Stmt, stmtFn func(StmtKind) bool, exprFn func(ExprKind) bool) {
	if stmt == nil {
		return
	}
	descend := true
	if stmtFn != nil {
		descend = stmtFn(stmt.Kind)
	}
	if !descend {
		return
	}
	switch k := stmt.Kind.(type) {
	case LetStmtKind:
		InspectExpr(k.Value, exprFn)
		Inspect(k.Body, stmtFn, exprFn)
	case AssertStmtKind:
		InspectExpr(k.Cond, exprFn)
	case PrintStmtKind:
		for _, a := range k.Args {
			InspectExpr(a, exprFn)
		}
	case PipelineKind:
		Inspect(k.Produce, stmtFn, exprFn)
		Inspect(k.Update, stmtFn, exprFn)
		Inspect(k.Consume, stmtFn, exprFn)
	case ForStmtKind:
		InspectExpr(k.Min, exprFn)
		InspectExpr(k.Extent, exprFn)
		Inspect(k.Body, stmtFn, exprFn)
	case StoreStmtKind:
		InspectExpr(k.Value, exprFn)
		InspectExpr(k.Index, exprFn)
	case ProvideStmtKind:
		InspectExpr(k.Value, exprFn)
		for _, a := range k.Args {
			InspectExpr(a, exprFn)
		}
	case AllocateStmtKind:
		InspectExpr(k.Size, exprFn)
		Inspect(k.Body, stmtFn, exprFn)
	case RealizeStmtKind:
		for _, b := range k.Bounds {
			InspectExpr(b.Min, exprFn)
			InspectExpr(b.Extent, exprFn)
		}
		Inspect(k.Body, stmtFn, exprFn)
	case BlockStmtKind:
		Inspect(k.First, stmtFn, exprFn)
		Inspect(k.Rest, stmtFn, exprFn)
	}
}

// InspectExpr walks e depth-first, calling exprFn on every reachable
// expression's Kind. exprFn may be nil, in which case InspectExpr does
// nothing.
func InspectExpr(e *Expr, exprFn func(ExprKind) bool) {
	if e == nil || exprFn == nil {
		return
	}
	if !exprFn(e.Kind) {
		return
	}
	switch k := e.Kind.(type) {
	case Cast:
		InspectExpr(k.Value, exprFn)
	case BinaryExpr:
		InspectExpr(k.A, exprFn)
		InspectExpr(k.B, exprFn)
	case NotExpr:
		InspectExpr(k.Value, exprFn)
	case SelectExpr:
		InspectExpr(k.Cond, exprFn)
		InspectExpr(k.TrueValue, exprFn)
		InspectExpr(k.FalseValue, exprFn)
	case LoadExpr:
		InspectExpr(k.Index, exprFn)
	case RampExpr:
		InspectExpr(k.Base, exprFn)
		InspectExpr(k.Stride, exprFn)
	case BroadcastExpr:
		InspectExpr(k.Value, exprFn)
	case CallExpr:
		for _, a := range k.Args {
			InspectExpr(a, exprFn)
		}
	case LetExpr:
		InspectExpr(k.Value, exprFn)
		InspectExpr(k.Body, exprFn)
	}
}

// InspectExprNodes walks e depth-first over *Expr nodes rather than kinds,
// for callers that need a node's Type alongside its Kind (e.g. recovering
// the element type of an Image-kind Call). fn returning false stops descent
// into that node's children.
func InspectExprNodes(e *Expr, fn func(*Expr) bool) {
	if e == nil || fn == nil {
		return
	}
	if !fn(e) {
		return
	}
	switch k := e.Kind.(type) {
	case Cast:
		InspectExprNodes(k.Value, fn)
	case BinaryExpr:
		InspectExprNodes(k.A, fn)
		InspectExprNodes(k.B, fn)
	case NotExpr:
		InspectExprNodes(k.Value, fn)
	case SelectExpr:
		InspectExprNodes(k.Cond, fn)
		InspectExprNodes(k.TrueValue, fn)
		InspectExprNodes(k.FalseValue, fn)
	case LoadExpr:
		InspectExprNodes(k.Index, fn)
	case RampExpr:
		InspectExprNodes(k.Base, fn)
		InspectExprNodes(k.Stride, fn)
	case BroadcastExpr:
		InspectExprNodes(k.Value, fn)
	case CallExpr:
		for _, a := range k.Args {
			InspectExprNodes(a, fn)
		}
	case LetExpr:
		InspectExprNodes(k.Value, fn)
		InspectExprNodes(k.Body, fn)
	}
}
