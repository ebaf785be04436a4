package lower

import (
	"testing"

	"github.com/loomlang/loomc/ir"
	"github.com/loomlang/loomc/schedule"
)

// A consumer loop nest For("f.y", ..., For("f.x", ..., <hole>)) with g
// chunked at compute_level=store_level="f.y" must end up with an Allocate-
// shaped Realize/Pipeline splice at the f.y loop once storage flattening
// would run; here we check the pre-flattening Realize/Pipeline shape.
func TestInjectRealizationSplicesAtMatchingLevel(t *testing.T) {
	gx := ir.NewVariable(ir.Int32, "x")
	gy := ir.NewVariable(ir.Int32, "y")
	gValue := mustExpr(ir.NewBinary(ir.OpSub, gx, gy))
	g := schedule.New("g", []string{"x", "y"}, gValue)
	g.Chunk("f.y", "f.y")

	hole := mustStmt(ir.Provide("f", mustExpr(ir.NewIntImm(ir.Int32, 0)), nil))
	innerFor := mustStmt(ir.For("f.x", intConst(0), intConst(8), ir.Serial, hole))
	outerFor := mustStmt(ir.For("f.y", intConst(0), intConst(8), ir.Serial, innerFor))

	env := schedule.Env{"g": g}
	got, err := InjectRealization(outerFor, g, env)
	if err != nil {
		t.Fatal(err)
	}

	fy := asFor(t, got)
	if fy.Name != "f.y" {
		t.Fatalf("outer loop renamed to %s, want f.y", fy.Name)
	}
	realize, ok := fy.Body.Kind.(ir.RealizeStmtKind)
	if !ok || realize.Buffer != "g" {
		t.Fatalf("f.y body = %s, want a Realize(g, ...)", ir.PrintStmtTree(fy.Body))
	}
	pipeline, ok := realize.Body.Kind.(ir.PipelineKind)
	if !ok || pipeline.Buffer != "g" {
		t.Fatalf("Realize body = %s, want a Pipeline(g, ...)", ir.PrintStmtTree(realize.Body))
	}
	if !ir.EqualStmt(pipeline.Consume, innerFor) {
		t.Fatalf("Pipeline consume = %s, want the original f.x loop", ir.PrintStmtTree(pipeline.Consume))
	}
}

// g has no compute_level: every Halide call to g inlines g's value with its
// pure args substituted.
func TestInjectRealizationInlinesWhenComputeLevelEmpty(t *testing.T) {
	gx := ir.NewVariable(ir.Int32, "x")
	gy := ir.NewVariable(ir.Int32, "y")
	gValue := mustExpr(ir.NewBinary(ir.OpSub, gx, gy))
	g := schedule.New("g", []string{"x", "y"}, gValue)

	one := mustExpr(ir.NewIntImm(ir.Int32, 1))
	three := mustExpr(ir.NewIntImm(ir.Int32, 3))
	call := mustExpr(ir.NewCall(ir.Int32, "g", []*ir.Expr{three, one}, ir.CallHalide))
	stmt := mustStmt(ir.Provide("f", call, nil))

	env := schedule.Env{"g": g}
	got, err := InjectRealization(stmt, g, env)
	if err != nil {
		t.Fatal(err)
	}

	pk, ok := got.Kind.(ir.ProvideStmtKind)
	if !ok {
		t.Fatalf("got %s, want a Provide", ir.PrintStmtTree(got))
	}
	want := mustExpr(ir.NewBinary(ir.OpSub, three, one))
	if !ir.Equal(pk.Value, want) {
		t.Fatalf("inlined value = %s, want %s", ir.Print(pk.Value), ir.Print(want))
	}
}
