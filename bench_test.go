package loomc

import (
	"testing"

	"github.com/loomlang/loomc/ir"
	"github.com/loomlang/loomc/schedule"
	"github.com/loomlang/loomc/simplify"
)

// ---------------------------------------------------------------------------
// Benchmark pipelines — realistic environments at different complexity levels
// ---------------------------------------------------------------------------

// pointwiseEnv is the smallest useful pipeline: one unscheduled function.
func pointwiseEnv(b *testing.B) (schedule.Env, string) {
	b.Helper()
	x := ir.NewVariable(ir.Int32, "x")
	two, err := ir.NewIntImm(ir.Int32, 2)
	if err != nil {
		b.Fatal(err)
	}
	value, err := ir.NewBinary(ir.OpMul, x, two)
	if err != nil {
		b.Fatal(err)
	}
	return schedule.Env{"f": schedule.New("f", []string{"x"}, value)}, "f"
}

// chunkedEnv is a two-stage pipeline with a split, vectorized, parallel
// consumer and a producer chunked into it — the shape a blur or downsample
// lowers to.
func chunkedEnv(b *testing.B) (schedule.Env, string) {
	b.Helper()
	build := func(e *ir.Expr, err error) *ir.Expr {
		if err != nil {
			b.Fatal(err)
		}
		return e
	}
	num := func(v int64) *ir.Expr {
		return build(ir.NewIntImm(ir.Int32, v))
	}

	gx := ir.NewVariable(ir.Int32, "x")
	gy := ir.NewVariable(ir.Int32, "y")
	g := schedule.New("g", []string{"x", "y"}, build(ir.NewBinary(ir.OpSub, gx, gy)))
	g.Chunk("f.x_o", "f.y")

	fx := ir.NewVariable(ir.Int32, "x")
	fy := ir.NewVariable(ir.Int32, "y")
	callA := build(ir.NewCall(ir.Int32, "g", []*ir.Expr{build(ir.NewBinary(ir.OpAdd, fx, num(1))), num(1)}, ir.CallHalide))
	callB := build(ir.NewCall(ir.Int32, "g", []*ir.Expr{num(3), build(ir.NewBinary(ir.OpSub, fx, fy))}, ir.CallHalide))
	f := schedule.New("f", []string{"x", "y"}, build(ir.NewBinary(ir.OpAdd, callA, callB)))
	f.Split("x", "x_o", "x_i", 4).Vectorize("x_i").Parallel("x_o")

	return schedule.Env{"g": g, "f": f}, "f"
}

// deepChainEnv is a linear chain of n inlined stages, stressing the
// substitution and simplification paths rather than injection.
func deepChainEnv(b *testing.B, n int) (schedule.Env, string) {
	b.Helper()
	env := schedule.Env{}
	x := ir.NewVariable(ir.Int32, "x")
	one, err := ir.NewIntImm(ir.Int32, 1)
	if err != nil {
		b.Fatal(err)
	}
	value, err := ir.NewBinary(ir.OpAdd, x, one)
	if err != nil {
		b.Fatal(err)
	}
	prev := "s0"
	env[prev] = schedule.New(prev, []string{"x"}, value)
	for i := 1; i < n; i++ {
		name := "s" + string(rune('0'+i))
		call, err := ir.NewCall(ir.Int32, prev, []*ir.Expr{x}, ir.CallHalide)
		if err != nil {
			b.Fatal(err)
		}
		stage, err := ir.NewBinary(ir.OpAdd, call, one)
		if err != nil {
			b.Fatal(err)
		}
		env[name] = schedule.New(name, []string{"x"}, stage)
		prev = name
	}
	return env, prev
}

// ---------------------------------------------------------------------------
// Lowering benchmarks
// ---------------------------------------------------------------------------

func BenchmarkLowerPointwise(b *testing.B) {
	env, target := pointwiseEnv(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Lower(env, target); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLowerSplitVectorizeChunked(b *testing.B) {
	env, target := chunkedEnv(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Lower(env, target); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLowerDeepInlineChain(b *testing.B) {
	env, target := deepChainEnv(b, 8)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Lower(env, target); err != nil {
			b.Fatal(err)
		}
	}
}

// ---------------------------------------------------------------------------
// Stage benchmarks
// ---------------------------------------------------------------------------

func BenchmarkSimplifyPolynomial(b *testing.B) {
	x := ir.NewVariable(ir.Int32, "x")
	e := x
	var err error
	for i := int64(1); i <= 16; i++ {
		var c *ir.Expr
		c, err = ir.NewIntImm(ir.Int32, i)
		if err != nil {
			b.Fatal(err)
		}
		e, err = ir.NewBinary(ir.OpAdd, e, c)
		if err != nil {
			b.Fatal(err)
		}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := simplify.Run(nil, e); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPrintLoopNest(b *testing.B) {
	env, target := chunkedEnv(b)
	stmt, err := Lower(env, target)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Print(stmt)
	}
}
