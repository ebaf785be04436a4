package lower

import (
	"testing"

	"github.com/loomlang/loomc/ir"
	"github.com/loomlang/loomc/schedule"
)

func mustExpr(e *ir.Expr, err error) *ir.Expr {
	if err != nil {
		panic(err)
	}
	return e
}

func mustStmt(s *ir.Stmt, err error) *ir.Stmt {
	if err != nil {
		panic(err)
	}
	return s
}

// peelLets strips any number of outermost LetStmt wrappers, returning the
// first non-LetStmt body — the realized loop nest under the split-bound
// bindings BuildRealization wraps it in.
func peelLets(s *ir.Stmt) *ir.Stmt {
	for {
		lk, ok := s.Kind.(ir.LetStmtKind)
		if !ok {
			return s
		}
		s = lk.Body
	}
}

func asFor(t *testing.T, s *ir.Stmt) ir.ForStmtKind {
	fk, ok := s.Kind.(ir.ForStmtKind)
	if !ok {
		t.Fatalf("expected a For statement, got %s", ir.PrintStmtTree(s))
	}
	return fk
}

// f(x) = x * 2, unscheduled: the realization is a single Serial loop over
// f.x wrapping a Provide that writes x*2 with x renamed to the qualified
// loop variable.
func TestBuildRealizationSingleDim(t *testing.T) {
	x := ir.NewVariable(ir.Int32, "x")
	two := mustExpr(ir.NewIntImm(ir.Int32, 2))
	value := mustExpr(ir.NewBinary(ir.OpMul, x, two))
	f := schedule.New("f", []string{"x"}, value)

	got, err := BuildRealization(f)
	if err != nil {
		t.Fatal(err)
	}

	qx := ir.NewVariable(ir.Int32, "f.x")
	innerValue := mustExpr(ir.NewBinary(ir.OpMul, qx, two))
	provide := mustStmt(ir.Provide("f", innerValue, []*ir.Expr{qx}))
	want := mustStmt(ir.For("f.x", minVar("f", "x"), extentVar("f", "x"), ir.Serial, provide))

	if !ir.EqualStmt(got, want) {
		t.Fatalf("BuildRealization(f) = %s, want %s", ir.PrintStmtTree(got), ir.PrintStmtTree(want))
	}
}

// g(x, y) = x - y, split on x into x_o/x_i (factor 4), x_i vectorized, x_o
// parallel. Checks the realization nests For("g.x_o", …, Parallel) outside
// For("g.y", …, Serial) outside For("g.x_i", …, Vectorized), per Dims order
// with Dims[0] outermost.
func TestBuildRealizationSplitNesting(t *testing.T) {
	x := ir.NewVariable(ir.Int32, "x")
	y := ir.NewVariable(ir.Int32, "y")
	value := mustExpr(ir.NewBinary(ir.OpSub, x, y))
	g := schedule.New("g", []string{"x", "y"}, value)
	g.Split("x", "x_o", "x_i", 4).Vectorize("x_i").Parallel("x_o")

	got, err := BuildRealization(g)
	if err != nil {
		t.Fatal(err)
	}

	outer := asFor(t, peelLets(got))
	if outer.Name != "g.x_o" || outer.ForKind != ir.Parallel {
		t.Fatalf("outermost loop = %s (%v), want g.x_o (Parallel)", outer.Name, outer.ForKind)
	}

	middle := asFor(t, outer.Body)
	if middle.Name != "g.y" || middle.ForKind != ir.Serial {
		t.Fatalf("second loop = %s (%v), want g.y (Serial)", middle.Name, middle.ForKind)
	}

	inner := asFor(t, middle.Body)
	if inner.Name != "g.x_i" || inner.ForKind != ir.Vectorized {
		t.Fatalf("innermost loop = %s (%v), want g.x_i (Vectorized)", inner.Name, inner.ForKind)
	}

	// The innermost body must be the split-reconstructing LetStmt for "g.x",
	// not a bare Provide, since x was never a Dim after the split.
	lk, ok := inner.Body.Kind.(ir.LetStmtKind)
	if !ok || lk.Name != "g.x" {
		t.Fatalf("innermost body = %s, want a LetStmt binding g.x", ir.PrintStmtTree(inner.Body))
	}
}
