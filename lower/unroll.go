package lower

import (
	"github.com/loomlang/loomc/ir"
)

// Unroll rewrites every For whose kind is Unrolled into a Block of n copies
// of its body, each wrapped in LetStmt(loop_name, loop.min+i, body), where
// n is the loop's constant extent. The extent must already have simplified
// to a constant; callers run package simplify first.
func Unroll(stmt *ir.Stmt) (*ir.Stmt, error) {
	u := &unroller{}
	u.Self = u
	return u.MutateStmt(stmt)
}

type unroller struct {
	ir.BaseMutator
}

func (u *unroller) MutateStmt(s *ir.Stmt) (*ir.Stmt, error) {
	if s == nil {
		return nil, nil
	}
	fk, ok := s.Kind.(ir.ForStmtKind)
	if !ok || fk.ForKind != ir.Unrolled {
		return ir.MutateStmtChildren(u, s)
	}
	n, ok := constExtent(fk.Extent)
	if !ok {
		return nil, &SchedulingError{Kind: NonConstantExtent, Function: fk.Name, Detail: "unrolled loop's extent did not simplify to a constant"}
	}
	body, err := u.MutateStmt(fk.Body)
	if err != nil {
		return nil, err
	}

	copies := make([]*ir.Stmt, n)
	for i := 0; i < int(n); i++ {
		offset, err := offsetFrom(fk.Min, int64(i))
		if err != nil {
			return nil, err
		}
		copies[i], err = ir.LetStmt(fk.Name, offset, body)
		if err != nil {
			return nil, err
		}
	}
	result, err := ir.Seq(copies...)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, &SchedulingError{Kind: NonConstantExtent, Function: fk.Name, Detail: "unrolled loop has extent 0"}
	}
	return result, nil
}

// offsetFrom builds min + i, folding to a constant when min already is one
// so the unrolled bindings don't need a later simplify pass to read well.
func offsetFrom(min *ir.Expr, i int64) (*ir.Expr, error) {
	if i == 0 {
		return min, nil
	}
	if k, ok := min.Kind.(ir.IntImm); ok {
		return ir.NewIntImm(min.Type, k.Value+i)
	}
	return add(min, intConst(i))
}
