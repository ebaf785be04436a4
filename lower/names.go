package lower

import "github.com/loomlang/loomc/ir"

// qualify returns the fully qualified loop/argument variable name "f.v" that
// every pass in this package uses to name a function's per-dimension
// symbolic bounds and loop variables.
func qualify(funcName, v string) string {
	return funcName + "." + v
}

func minName(funcName, v string) string    { return qualify(funcName, v) + ".min" }
func extentName(funcName, v string) string { return qualify(funcName, v) + ".extent" }

func minVar(funcName, v string) *ir.Expr    { return ir.NewVariable(ir.Int32, minName(funcName, v)) }
func extentVar(funcName, v string) *ir.Expr { return ir.NewVariable(ir.Int32, extentName(funcName, v)) }
func qualVar(funcName, v string) *ir.Expr   { return ir.NewVariable(ir.Int32, qualify(funcName, v)) }

func intConst(v int64) *ir.Expr {
	e, err := ir.NewIntImm(ir.Int32, v)
	if err != nil {
		panic(err)
	}
	return e
}

func add(a, b *ir.Expr) (*ir.Expr, error) { return ir.NewBinary(ir.OpAdd, a, b) }
func sub(a, b *ir.Expr) (*ir.Expr, error) { return ir.NewBinary(ir.OpSub, a, b) }
func mul(a, b *ir.Expr) (*ir.Expr, error) { return ir.NewBinary(ir.OpMul, a, b) }
func div(a, b *ir.Expr) (*ir.Expr, error) { return ir.NewBinary(ir.OpDiv, a, b) }
