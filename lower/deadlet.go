package lower

import "github.com/loomlang/loomc/ir"

// EliminateDeadLets drops every Let/LetStmt binding whose bound name is
// never referenced by a Variable in its body, using a reference-count
// scope: push the name with count zero, recurse into the
// body first, and drop the binding (without descending into its value) if
// the count came back zero.
func EliminateDeadLets(stmt *ir.Stmt) (*ir.Stmt, error) {
	d := &deadLetEliminator{counts: make(map[string]int)}
	d.Self = d
	return d.MutateStmt(stmt)
}

type deadLetEliminator struct {
	ir.BaseMutator
	counts map[string]int
}

func (d *deadLetEliminator) MutateExpr(e *ir.Expr) (*ir.Expr, error) {
	if e == nil {
		return nil, nil
	}
	if v, ok := e.Kind.(ir.Variable); ok {
		if _, tracked := d.counts[v.Name]; tracked {
			d.counts[v.Name]++
		}
		return e, nil
	}
	if lk, ok := e.Kind.(ir.LetExpr); ok {
		prev, had := d.counts[lk.Name]
		d.counts[lk.Name] = 0
		body, err := d.MutateExpr(lk.Body)
		if err != nil {
			return nil, err
		}
		used := d.counts[lk.Name] > 0
		if had {
			d.counts[lk.Name] = prev
		} else {
			delete(d.counts, lk.Name)
		}
		if !used {
			return body, nil
		}
		value, err := d.MutateExpr(lk.Value)
		if err != nil {
			return nil, err
		}
		if value == lk.Value && body == lk.Body {
			return e, nil
		}
		return ir.NewLet(lk.Name, value, body)
	}
	return ir.MutateExprChildren(d, e)
}

func (d *deadLetEliminator) MutateStmt(s *ir.Stmt) (*ir.Stmt, error) {
	if s == nil {
		return nil, nil
	}
	lk, ok := s.Kind.(ir.LetStmtKind)
	if !ok {
		return ir.MutateStmtChildren(d, s)
	}
	prev, had := d.counts[lk.Name]
	d.counts[lk.Name] = 0
	body, err := d.MutateStmt(lk.Body)
	if err != nil {
		return nil, err
	}
	used := d.counts[lk.Name] > 0
	if had {
		d.counts[lk.Name] = prev
	} else {
		delete(d.counts, lk.Name)
	}
	if !used {
		return body, nil
	}
	value, err := d.MutateExpr(lk.Value)
	if err != nil {
		return nil, err
	}
	if value == lk.Value && body == lk.Body {
		return s, nil
	}
	return ir.LetStmt(lk.Name, value, body)
}
