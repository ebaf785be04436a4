package lower

import (
	"github.com/loomlang/loomc/ir"
	"github.com/loomlang/loomc/schedule"
)

// BuildRealization produces a Stmt computing f over the region specified
// externally by the symbolic variables f.arg[i].min and f.arg[i].extent,
// constructed inside-out. The result performs no allocation
// and no bounds-checking; it is pure loop-nest shape referencing symbolic
// bounds that bounds inference (InferBounds) or the driver's caller must
// still bind.
func BuildRealization(f *schedule.Function) (*ir.Stmt, error) {
	body := f.Value
	for _, a := range f.Args {
		var err error
		body, err = ir.Substitute(a, qualVar(f.Name, a), body)
		if err != nil {
			return nil, err
		}
	}

	site := make([]*ir.Expr, len(f.Args))
	for i, a := range f.Args {
		site[i] = qualVar(f.Name, a)
	}
	stmt, err := ir.Provide(f.Name, body, site)
	if err != nil {
		return nil, err
	}

	for i := len(f.Sched.Splits) - 1; i >= 0; i-- {
		sp := f.Sched.Splits[i]
		outer := qualVar(f.Name, sp.Outer)
		inner := qualVar(f.Name, sp.Inner)
		scaled, err := mul(outer, intConst(int64(sp.Factor)))
		if err != nil {
			return nil, err
		}
		withInner, err := add(scaled, inner)
		if err != nil {
			return nil, err
		}
		withMin, err := add(withInner, minVar(f.Name, sp.Old))
		if err != nil {
			return nil, err
		}
		stmt, err = ir.LetStmt(qualify(f.Name, sp.Old), withMin, stmt)
		if err != nil {
			return nil, err
		}
	}

	for i := len(f.Sched.Dims) - 1; i >= 0; i-- {
		d := f.Sched.Dims[i]
		var err error
		stmt, err = ir.For(qualify(f.Name, d.Var), minVar(f.Name, d.Var), extentVar(f.Name, d.Var), d.Kind, stmt)
		if err != nil {
			return nil, err
		}
	}

	for i := len(f.Sched.Splits) - 1; i >= 0; i-- {
		sp := f.Sched.Splits[i]
		var err error
		stmt, err = ir.LetStmt(extentName(f.Name, sp.Outer), outerExtent(f.Name, sp), stmt)
		if err != nil {
			return nil, err
		}
		stmt, err = ir.LetStmt(minName(f.Name, sp.Outer), intConst(0), stmt)
		if err != nil {
			return nil, err
		}
		stmt, err = ir.LetStmt(extentName(f.Name, sp.Inner), intConst(int64(sp.Factor)), stmt)
		if err != nil {
			return nil, err
		}
		stmt, err = ir.LetStmt(minName(f.Name, sp.Inner), intConst(0), stmt)
		if err != nil {
			return nil, err
		}
	}

	return stmt, nil
}

// outerExtent builds (f.old.extent + factor - 1) / factor, the outer loop's
// trip count for a split with constant factor sp.Factor.
func outerExtent(funcName string, sp schedule.Split) *ir.Expr {
	oldExtent := extentVar(funcName, sp.Old)
	factor := intConst(int64(sp.Factor))
	factorMinus1 := intConst(int64(sp.Factor) - 1)
	numerator, err := add(oldExtent, factorMinus1)
	if err != nil {
		panic(err)
	}
	result, err := div(numerator, factor)
	if err != nil {
		panic(err)
	}
	return result
}
