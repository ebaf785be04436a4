package lower

import (
	"testing"

	"github.com/loomlang/loomc/ir"
)

// LetStmt("a", 7, LetStmt("b", a+1, Store("buf", b, 0))) keeps
// both bindings (both names are used); LetStmt("u", 7, Store("buf", 1, 0))
// drops u.
func TestEliminateDeadLetsKeepsUsedDropsUnused(t *testing.T) {
	seven := mustExpr(ir.NewIntImm(ir.Int32, 7))
	a := ir.NewVariable(ir.Int32, "a")
	one := mustExpr(ir.NewIntImm(ir.Int32, 1))
	aPlus1 := mustExpr(ir.NewBinary(ir.OpAdd, a, one))
	b := ir.NewVariable(ir.Int32, "b")
	zero := mustExpr(ir.NewIntImm(ir.Int32, 0))
	store := mustStmt(ir.Store("buf", b, zero))
	letB := mustStmt(ir.LetStmt("b", aPlus1, store))
	letA := mustStmt(ir.LetStmt("a", seven, letB))

	got, err := EliminateDeadLets(letA)
	if err != nil {
		t.Fatal(err)
	}
	if !ir.EqualStmt(got, letA) {
		t.Fatalf("both-used chain changed: got %s, want unchanged %s", ir.PrintStmtTree(got), ir.PrintStmtTree(letA))
	}

	store2 := mustStmt(ir.Store("buf", one, zero))
	letU := mustStmt(ir.LetStmt("u", seven, store2))
	got2, err := EliminateDeadLets(letU)
	if err != nil {
		t.Fatal(err)
	}
	if !ir.EqualStmt(got2, store2) {
		t.Fatalf("dead let not dropped: got %s, want %s", ir.PrintStmtTree(got2), ir.PrintStmtTree(store2))
	}
}
