package driver

import (
	"github.com/pkg/errors"

	"github.com/loomlang/loomc/ir"
)

// checkFlattened verifies the storage-flattening postcondition: no Realize,
// Provide, or Halide-kind Call survives the pass. Any survivor means a
// producer was never injected or the flattener missed a node, which would
// otherwise surface as a nonsense Load in the backend.
func checkFlattened(stmt *ir.Stmt) error {
	if ir.ContainsStmtKind(stmt, func(k ir.StmtKind) bool {
		switch k.(type) {
		case ir.RealizeStmtKind, ir.ProvideStmtKind:
			return true
		}
		return false
	}) {
		return errors.New("a Realize or Provide survived storage flattening")
	}
	if ir.ContainsExprKind(stmt, func(k ir.ExprKind) bool {
		c, ok := k.(ir.CallExpr)
		return ok && c.Kind == ir.CallHalide
	}) {
		return errors.New("a Halide-kind Call survived storage flattening")
	}
	return nil
}

// checkNoVectorizedLoops verifies the vectorize/unroll postcondition: every
// surviving For is Serial or Parallel.
func checkNoVectorizedLoops(stmt *ir.Stmt) error {
	var offender ir.ForKind
	if ir.ContainsStmtKind(stmt, func(k ir.StmtKind) bool {
		f, ok := k.(ir.ForStmtKind)
		if ok && (f.ForKind == ir.Vectorized || f.ForKind == ir.Unrolled) {
			offender = f.ForKind
			return true
		}
		return false
	}) {
		return errors.Errorf("a %s For loop survived vectorization and unrolling", offender)
	}
	return nil
}
