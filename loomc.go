// Package loomc provides a pure Go compiler middle-end for a scheduled
// image-processing language.
//
// loomc separates algorithms (pure multidimensional function definitions)
// from schedules (how those functions are stored, traversed, tiled,
// parallelized, and vectorized), and lowers a scheduled environment of
// functions into a single imperative loop nest ready for backend code
// generation:
//   - realization-order computation over the call graph
//   - inline substitution and producer splicing at compute/store levels
//   - bounds inference and storage flattening (producer storage is not
//     reused across loop iterations: there is no sliding-window pass)
//   - simplification, vectorization, unrolling, dead-let elimination
//
// Example usage:
//
//	x := ir.NewVariable(ir.Int32, "x")
//	two, _ := ir.NewIntImm(ir.Int32, 2)
//	value, _ := ir.NewBinary(ir.OpMul, x, two)
//	f := schedule.New("f", []string{"x"}, value)
//	f.Split("x", "x_o", "x_i", 8).Vectorize("x_i").Parallel("x_o")
//
//	stmt, err := loomc.Lower(schedule.Env{"f": f}, "f")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(loomc.Print(stmt))
//
// For control over logging, debug stripping, and the external-argument
// list, use LowerWithOptions or the driver package directly. The individual
// stages are exposed through the lower, bounds, and simplify packages.
package loomc

import (
	"github.com/loomlang/loomc/driver"
	"github.com/loomlang/loomc/ir"
	"github.com/loomlang/loomc/lower"
	"github.com/loomlang/loomc/schedule"
	"github.com/loomlang/loomc/simplify"
)

// Options configures lowering. The zero value is a usable default: no
// logging, debug statements kept.
type Options = driver.Options

// Result is the lowered loop nest plus the external-argument list the
// pipeline expects from its caller.
type Result = driver.Result

// DefaultOptions returns the default lowering options.
func DefaultOptions() Options {
	return Options{}
}

// Lower lowers target against env using default options.
//
// This is the simplest way to run the full pipeline. For more control, use
// LowerWithOptions or the individual RealizationOrder/BuildRealization
// stages in package lower.
func Lower(env schedule.Env, target string) (*ir.Stmt, error) {
	return driver.Lower(env, target, DefaultOptions())
}

// LowerWithOptions lowers target against env with custom options,
// returning the loop nest together with the external arguments the backend
// must supply.
//
// The lowering pipeline is:
//  1. Validate the environment and compute the realization order
//  2. Build the target's realization and splice in every producer
//  3. Infer bounds and flatten storage to 1-D
//  4. Simplify, vectorize, unroll, and prune dead lets to a fixed point
func LowerWithOptions(env schedule.Env, target string, opts Options) (*Result, error) {
	return driver.LowerPipeline(env, target, opts)
}

// RealizationOrder returns the order functions must be lowered in so every
// producer precedes its consumers, ending with target. It fails on a cycle
// in the call graph.
func RealizationOrder(env schedule.Env, target string) ([]string, error) {
	return lower.RealizationOrder(env, target)
}

// Simplify algebraically normalizes and constant-folds an expression.
func Simplify(e *ir.Expr) (*ir.Expr, error) {
	return simplify.Run(nil, e)
}

// Print renders a statement tree in the canonical text form.
func Print(stmt *ir.Stmt) string {
	return ir.PrintStmtTree(stmt)
}
