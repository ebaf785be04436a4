package lower

import (
	"github.com/loomlang/loomc/bounds"
	"github.com/loomlang/loomc/ir"
	"github.com/loomlang/loomc/schedule"
)

// InferBounds walks stmt and, at every For loop, wraps the loop's body in
// LetStmts binding f.d.min and f.d.extent (for every dimension d of f) for
// each function f of env that appears within that body, to the region f is
// actually required over at that point in the tree. For output, the
// user-supplied symbolic Variable(output.d.min/extent) are bound instead of
// an inferred region, since nothing in stmt constrains the output's own
// extent.
func InferBounds(stmt *ir.Stmt, env schedule.Env, output string) (*ir.Stmt, error) {
	bi := &boundsInferer{env: env, output: output, loopScope: ir.NewScope[bounds.Interval](nil)}
	bi.Self = bi
	return bi.MutateStmt(stmt)
}

type boundsInferer struct {
	ir.BaseMutator
	env       schedule.Env
	output    string
	loopScope *ir.Scope[bounds.Interval]
}

func (b *boundsInferer) MutateStmt(s *ir.Stmt) (*ir.Stmt, error) {
	if s == nil {
		return nil, nil
	}
	if fk, ok := s.Kind.(ir.ForStmtKind); ok {
		extentMinus1, err := sub(fk.Extent, intConst(1))
		if err != nil {
			return nil, err
		}
		loopMax, err := add(fk.Min, extentMinus1)
		if err != nil {
			return nil, err
		}
		b.loopScope.Push(fk.Name, bounds.Interval{Min: fk.Min, Max: loopMax})
		body, err := b.bindFunctionsIn(fk.Body)
		b.loopScope.Pop(fk.Name)
		if err != nil {
			return nil, err
		}
		if body == fk.Body {
			return s, nil
		}
		return ir.For(fk.Name, fk.Min, fk.Extent, fk.ForKind, body)
	}
	return ir.MutateStmtChildren(b, s)
}

// bindFunctionsIn recurses into body, and for every function named in b.env
// that appears (as a Halide Call or a Provide) anywhere within body, wraps
// body in LetStmts giving its min/extent per dimension. The output function
// binds to the externally supplied symbolic variables instead of an
// inferred region.
func (b *boundsInferer) bindFunctionsIn(body *ir.Stmt) (*ir.Stmt, error) {
	mutated, err := b.MutateStmt(body)
	if err != nil {
		return nil, err
	}

	for name, f := range b.env {
		region, err := bounds.RegionTouched(name, body, b.loopScope)
		if err != nil {
			return nil, err
		}
		if region == nil {
			continue
		}
		for i := len(f.Args) - 1; i >= 0; i-- {
			a := f.Args[i]
			var minExpr, extentExpr *ir.Expr
			if name == b.output {
				minExpr = ir.NewVariable(ir.Int32, name+"."+a+".min")
				extentExpr = ir.NewVariable(ir.Int32, name+"."+a+".extent")
			} else {
				if i >= len(region) {
					continue
				}
				minExpr = region[i].Min
				maxMinus, err := sub(region[i].Max, region[i].Min)
				if err != nil {
					return nil, err
				}
				extentExpr, err = add(maxMinus, intConst(1))
				if err != nil {
					return nil, err
				}
			}
			mutated, err = ir.LetStmt(extentName(name, a), extentExpr, mutated)
			if err != nil {
				return nil, err
			}
			mutated, err = ir.LetStmt(minName(name, a), minExpr, mutated)
			if err != nil {
				return nil, err
			}
		}
	}
	return mutated, nil
}
