package lower

import (
	"testing"

	"github.com/loomlang/loomc/ir"
)

// Realize(buf, Int(32), [(2,5),(1,3)], Provide(buf, v, [x,y])) flattens to
// LetStmts binding buf.min.0 = 2, buf.extent.0 = 5, buf.min.1 = 1,
// buf.extent.1 = 3, buf.stride.0 = 1 and buf.stride.1 = buf.stride.0 *
// buf.extent.0, around an Allocate of size buf.extent.0*buf.extent.1 whose
// Store index is (x-buf.min.0)*buf.stride.0 + (y-buf.min.1)*buf.stride.1.
func TestFlattenStorageRoundTrip(t *testing.T) {
	two := mustExpr(ir.NewIntImm(ir.Int32, 2))
	five := mustExpr(ir.NewIntImm(ir.Int32, 5))
	one := mustExpr(ir.NewIntImm(ir.Int32, 1))
	three := mustExpr(ir.NewIntImm(ir.Int32, 3))
	x := ir.NewVariable(ir.Int32, "x")
	y := ir.NewVariable(ir.Int32, "y")
	v := mustExpr(ir.NewIntImm(ir.Int32, 42))
	provide := mustStmt(ir.Provide("buf", v, []*ir.Expr{x, y}))
	realize := mustStmt(ir.Realize("buf", ir.Int32, []ir.Bound{{Min: two, Extent: five}, {Min: one, Extent: three}}, provide))

	got, err := FlattenStorage(realize)
	if err != nil {
		t.Fatal(err)
	}

	// Peel the LetStmt chain for buf.min.0/extent.0/min.1/extent.1/stride.0/
	// stride.1 down to the Allocate, then its body down to the Store.
	s := got
	for i := 0; i < 6; i++ {
		lk, ok := s.Kind.(ir.LetStmtKind)
		if !ok {
			t.Fatalf("expected LetStmt at depth %d, got %s", i, ir.PrintStmtTree(s))
		}
		s = lk.Body
	}
	alloc, ok := s.Kind.(ir.AllocateStmtKind)
	if !ok || alloc.Buffer != "buf" {
		t.Fatalf("expected Allocate(buf, ...), got %s", ir.PrintStmtTree(s))
	}
	store, ok := alloc.Body.Kind.(ir.StoreStmtKind)
	if !ok || store.Buffer != "buf" {
		t.Fatalf("expected Store(buf, ...), got %s", ir.PrintStmtTree(alloc.Body))
	}

	min0 := ir.NewVariable(ir.Int32, flatMinName("buf", 0))
	min1 := ir.NewVariable(ir.Int32, flatMinName("buf", 1))
	xMinusMin0 := mustExpr(ir.NewBinary(ir.OpSub, x, min0))
	yMinusMin1 := mustExpr(ir.NewBinary(ir.OpSub, y, min1))
	stride0 := ir.NewVariable(ir.Int32, flatStrideName("buf", 0))
	stride1 := ir.NewVariable(ir.Int32, flatStrideName("buf", 1))
	term0 := mustExpr(ir.NewBinary(ir.OpMul, xMinusMin0, stride0))
	term1 := mustExpr(ir.NewBinary(ir.OpMul, yMinusMin1, stride1))
	want := mustExpr(ir.NewBinary(ir.OpAdd, term0, term1))
	if !ir.Equal(store.Index, want) {
		t.Fatalf("Store index = %s, want %s", ir.Print(store.Index), ir.Print(want))
	}
}
