package simplify

import (
	"testing"

	"github.com/loomlang/loomc/bounds"
	"github.com/loomlang/loomc/ir"
)

func mustExpr(e *ir.Expr, err error) *ir.Expr {
	if err != nil {
		panic(err)
	}
	return e
}

// Constant folding across int and float.
func TestSimplifyFoldsIntConstant(t *testing.T) {
	three := mustExpr(ir.NewIntImm(ir.Int32, 3))
	eight := mustExpr(ir.NewIntImm(ir.Int32, 8))
	sum := mustExpr(ir.NewBinary(ir.OpAdd, three, eight))

	got, err := Run(nil, sum)
	if err != nil {
		t.Fatal(err)
	}
	want := mustExpr(ir.NewIntImm(ir.Int32, 11))
	if !ir.Equal(got, want) {
		t.Fatalf("Add(3,8) simplified to %s, want %s", ir.Print(got), ir.Print(want))
	}
}

func TestSimplifyFoldsFloatConstant(t *testing.T) {
	a := mustExpr(ir.NewFloatImm(ir.Float32, 3.25))
	b := mustExpr(ir.NewFloatImm(ir.Float32, 7.75))
	sum := mustExpr(ir.NewBinary(ir.OpAdd, a, b))

	got, err := Run(nil, sum)
	if err != nil {
		t.Fatal(err)
	}
	want := mustExpr(ir.NewFloatImm(ir.Float32, 11.0))
	if !ir.Equal(got, want) {
		t.Fatalf("Add(3.25,7.75) simplified to %s, want %s", ir.Print(got), ir.Print(want))
	}
}

// Add(Ramp(x,2,3), Ramp(y,4,3)) simplifies to Ramp(x+y, 6, 3).
func TestSimplifyFusesRampPlusRamp(t *testing.T) {
	x := ir.NewVariable(ir.Int32, "x")
	y := ir.NewVariable(ir.Int32, "y")
	two := mustExpr(ir.NewIntImm(ir.Int32, 2))
	four := mustExpr(ir.NewIntImm(ir.Int32, 4))
	rampX := mustExpr(ir.NewRamp(x, two, 3))
	rampY := mustExpr(ir.NewRamp(y, four, 3))
	sum := mustExpr(ir.NewBinary(ir.OpAdd, rampX, rampY))

	got, err := Run(nil, sum)
	if err != nil {
		t.Fatal(err)
	}
	xPlusY := mustExpr(ir.NewBinary(ir.OpAdd, x, y))
	six := mustExpr(ir.NewIntImm(ir.Int32, 6))
	want := mustExpr(ir.NewRamp(xPlusY, six, 3))
	if !ir.Equal(got, want) {
		t.Fatalf("Add(Ramp,Ramp) simplified to %s, want %s", ir.Print(got), ir.Print(want))
	}
}

// Add(Broadcast(4.0,5), Ramp(3.25,4.5,5)) simplifies to Ramp(7.25,4.5,5).
func TestSimplifyFusesBroadcastPlusRamp(t *testing.T) {
	four := mustExpr(ir.NewFloatImm(ir.Float32, 4.0))
	broadcast := mustExpr(ir.NewBroadcast(four, 5))
	base := mustExpr(ir.NewFloatImm(ir.Float32, 3.25))
	stride := mustExpr(ir.NewFloatImm(ir.Float32, 4.5))
	ramp := mustExpr(ir.NewRamp(base, stride, 5))
	sum := mustExpr(ir.NewBinary(ir.OpAdd, broadcast, ramp))

	got, err := Run(nil, sum)
	if err != nil {
		t.Fatal(err)
	}
	wantBase := mustExpr(ir.NewFloatImm(ir.Float32, 7.25))
	want := mustExpr(ir.NewRamp(wantBase, stride, 5))
	if !ir.Equal(got, want) {
		t.Fatalf("Add(Broadcast,Ramp) simplified to %s, want %s", ir.Print(got), ir.Print(want))
	}
}

// Add(x*y, x*z) simplifies to x*(y+z).
func TestSimplifyDistributesCommonFactor(t *testing.T) {
	x := ir.NewVariable(ir.Int32, "x")
	y := ir.NewVariable(ir.Int32, "y")
	z := ir.NewVariable(ir.Int32, "z")
	xy := mustExpr(ir.NewBinary(ir.OpMul, x, y))
	xz := mustExpr(ir.NewBinary(ir.OpMul, x, z))
	sum := mustExpr(ir.NewBinary(ir.OpAdd, xy, xz))

	got, err := Run(nil, sum)
	if err != nil {
		t.Fatal(err)
	}
	yz := mustExpr(ir.NewBinary(ir.OpAdd, y, z))
	want := mustExpr(ir.NewBinary(ir.OpMul, x, yz))
	if !ir.Equal(got, want) {
		t.Fatalf("Add(x*y,x*z) simplified to %s, want %s", ir.Print(got), ir.Print(want))
	}
}

func TestSimplifyEliminatesAddZero(t *testing.T) {
	x := ir.NewVariable(ir.Int32, "x")
	zero := mustExpr(ir.NewIntImm(ir.Int32, 0))
	e := mustExpr(ir.NewBinary(ir.OpAdd, x, zero))

	got, err := Run(nil, e)
	if err != nil {
		t.Fatal(err)
	}
	if got != x {
		t.Fatalf("x+0 simplified to %s, want the same x pointer", ir.Print(got))
	}
}

func TestSimplifyCancelsAdditiveInverse(t *testing.T) {
	a := ir.NewVariable(ir.Int32, "a")
	b := ir.NewVariable(ir.Int32, "b")
	diff := mustExpr(ir.NewBinary(ir.OpSub, a, b))
	e := mustExpr(ir.NewBinary(ir.OpAdd, diff, b))

	got, err := Run(nil, e)
	if err != nil {
		t.Fatal(err)
	}
	if got != a {
		t.Fatalf("(a-b)+b simplified to %s, want the same a pointer", ir.Print(got))
	}
}

// Trivial-let pushdown: let v = 3 in v + v simplifies to 6.
func TestSimplifyInlinesTrivialLet(t *testing.T) {
	three := mustExpr(ir.NewIntImm(ir.Int32, 3))
	v := ir.NewVariable(ir.Int32, "v")
	body := mustExpr(ir.NewBinary(ir.OpAdd, v, v))
	let := mustExpr(ir.NewLet("v", three, body))

	got, err := Run(nil, let)
	if err != nil {
		t.Fatal(err)
	}
	want := mustExpr(ir.NewIntImm(ir.Int32, 6))
	if !ir.Equal(got, want) {
		t.Fatalf("let v=3 in v+v simplified to %s, want %s", ir.Print(got), ir.Print(want))
	}
}

// Simplification is idempotent: a second pass over an
// already-simplified tree returns the pointer-identical tree.
func TestSimplifyIsIdempotent(t *testing.T) {
	x := ir.NewVariable(ir.Int32, "x")
	three := mustExpr(ir.NewIntImm(ir.Int32, 3))
	seventeen := mustExpr(ir.NewIntImm(ir.Int32, 17))
	two := mustExpr(ir.NewIntImm(ir.Int32, 2))
	y := ir.NewVariable(ir.Int32, "y")

	xPlus3 := mustExpr(ir.NewBinary(ir.OpAdd, x, three))
	yDiv2 := mustExpr(ir.NewBinary(ir.OpDiv, y, two))
	yDiv2Plus17 := mustExpr(ir.NewBinary(ir.OpAdd, yDiv2, seventeen))
	tree := mustExpr(ir.NewBinary(ir.OpMul, xPlus3, yDiv2Plus17))

	once, err := Run(nil, tree)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Run(nil, once)
	if err != nil {
		t.Fatal(err)
	}
	if !ir.Equal(once, twice) {
		t.Fatalf("simplify is not idempotent: %s then %s", ir.Print(once), ir.Print(twice))
	}
}

// With x bound to (0, 10) and y bound to (20, 30), x < y is provably true
// even though neither side is individually a constant.
func TestSimplifyProvesComparisonFromKnownBounds(t *testing.T) {
	scope := ir.NewScope[bounds.Interval](nil)
	zero := mustExpr(ir.NewIntImm(ir.Int32, 0))
	ten := mustExpr(ir.NewIntImm(ir.Int32, 10))
	twenty := mustExpr(ir.NewIntImm(ir.Int32, 20))
	thirty := mustExpr(ir.NewIntImm(ir.Int32, 30))
	scope.Push("x", bounds.Interval{Min: zero, Max: ten})
	scope.Push("y", bounds.Interval{Min: twenty, Max: thirty})

	x := ir.NewVariable(ir.Int32, "x")
	y := ir.NewVariable(ir.Int32, "y")
	lt := mustExpr(ir.NewBinary(ir.OpLT, x, y))

	got, err := Run(nil, lt, WithKnownBounds(scope))
	if err != nil {
		t.Fatal(err)
	}
	want := mustExpr(ir.NewUIntImm(ir.Bool, 1))
	if !ir.Equal(got, want) {
		t.Fatalf("x<y under disjoint bounds simplified to %s, want true", ir.Print(got))
	}
}

func TestSimplifySelectWithConstantCondition(t *testing.T) {
	cond := mustExpr(ir.NewUIntImm(ir.Bool, 1))
	x := ir.NewVariable(ir.Int32, "x")
	y := ir.NewVariable(ir.Int32, "y")
	sel := mustExpr(ir.NewSelect(cond, x, y))

	got, err := Run(nil, sel)
	if err != nil {
		t.Fatal(err)
	}
	if got != x {
		t.Fatalf("select(true, x, y) simplified to %s, want x", ir.Print(got))
	}
}
