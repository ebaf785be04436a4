package ir

import "testing"

// (x + 3) * (y / 2 + 17) must render with full parenthesization, spaced +,
// and unspaced * and /.
func TestPrintCanonicalBinaryForm(t *testing.T) {
	x := NewVariable(Int32, "x")
	y := NewVariable(Int32, "y")
	three, err := NewIntImm(Int32, 3)
	if err != nil {
		t.Fatal(err)
	}
	two, err := NewIntImm(Int32, 2)
	if err != nil {
		t.Fatal(err)
	}
	seventeen, err := NewIntImm(Int32, 17)
	if err != nil {
		t.Fatal(err)
	}

	xPlus3, err := NewBinary(OpAdd, x, three)
	if err != nil {
		t.Fatal(err)
	}
	yDiv2, err := NewBinary(OpDiv, y, two)
	if err != nil {
		t.Fatal(err)
	}
	rhs, err := NewBinary(OpAdd, yDiv2, seventeen)
	if err != nil {
		t.Fatal(err)
	}
	expr, err := NewBinary(OpMul, xPlus3, rhs)
	if err != nil {
		t.Fatal(err)
	}

	got := Print(expr)
	want := "((x + 3)*((y/2) + 17))"
	if got != want {
		t.Fatalf("Print() = %q, want %q", got, want)
	}
}

func TestPrintMinMaxFunctionStyle(t *testing.T) {
	a := NewVariable(Int32, "a")
	b := NewVariable(Int32, "b")
	e, err := NewBinary(OpMin, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := Print(e), "min(a, b)"; got != want {
		t.Fatalf("Print() = %q, want %q", got, want)
	}
}

func TestPrintLet(t *testing.T) {
	v, err := NewIntImm(Int32, 1)
	if err != nil {
		t.Fatal(err)
	}
	body := NewVariable(Int32, "x")
	let, err := NewLet("x", v, body)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := Print(let), "(let x = 1 in x)"; got != want {
		t.Fatalf("Print() = %q, want %q", got, want)
	}
}
