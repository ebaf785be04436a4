package ir

import "testing"

func TestNewBinaryRejectsMismatchedArithOperandTypes(t *testing.T) {
	a := NewVariable(Int32, "a")
	b := NewVariable(Float32, "b")
	if _, err := NewBinary(OpAdd, a, b); err == nil {
		t.Fatal("expected error for mismatched operand types")
	}
}

func TestNewBinaryComparisonProducesBool(t *testing.T) {
	a := NewVariable(Int32, "a")
	b := NewVariable(Int32, "b")
	e, err := NewBinary(OpLT, a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !e.Type.IsBool() {
		t.Fatalf("comparison result type = %s, want bool", e.Type)
	}
}

func TestNewBinaryLogicalRequiresBoolOperands(t *testing.T) {
	a := NewVariable(Int32, "a")
	b := NewVariable(Int32, "b")
	if _, err := NewBinary(OpAnd, a, b); err == nil {
		t.Fatal("expected error for non-bool operands to &&")
	}
}

func TestNewRampRejectsSingleLane(t *testing.T) {
	base, err := NewIntImm(Int32, 0)
	if err != nil {
		t.Fatal(err)
	}
	stride, err := NewIntImm(Int32, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewRamp(base, stride, 1); err == nil {
		t.Fatal("expected error for Ramp with lanes < 2")
	}
}

func TestNewRampWidensResultType(t *testing.T) {
	base, err := NewIntImm(Int32, 0)
	if err != nil {
		t.Fatal(err)
	}
	stride, err := NewIntImm(Int32, 1)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewRamp(base, stride, 4)
	if err != nil {
		t.Fatal(err)
	}
	if e.Type.Lanes != 4 {
		t.Fatalf("Ramp type lanes = %d, want 4", e.Type.Lanes)
	}
}

func TestNewLoadRejectsLaneMismatch(t *testing.T) {
	idx, err := NewIntImm(Int32, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoad(Int32.Widen(4), "buf", idx); err == nil {
		t.Fatal("expected error for lanes(index) != lanes(type)")
	}
}

func TestTypeRangeMatchesSpecFallback(t *testing.T) {
	u8 := Type{Kind: UInt, Bits: 8, Lanes: 1}
	min, max, ok := u8.Range()
	if !ok || min != 0 || max != 255 {
		t.Fatalf("uint8 range = [%d,%d] ok=%v, want [0,255] ok=true", min, max, ok)
	}

	i16 := Type{Kind: Int, Bits: 16, Lanes: 1}
	min, max, ok = i16.Range()
	if !ok || min != -32768 || max != 32767 {
		t.Fatalf("int16 range = [%d,%d] ok=%v, want [-32768,32767] ok=true", min, max, ok)
	}

	if _, _, ok = Float32.Range(); ok {
		t.Fatal("float range should be unbounded (ok=false)")
	}

	i32 := Int32
	if _, _, ok = i32.Range(); ok {
		t.Fatal("int32 (>16 bits) range should be unbounded (ok=false) per the fallback rule")
	}
}

func TestScopeGetUnboundReturnsErrUnresolvedReference(t *testing.T) {
	s := NewScope[int](nil)
	if _, err := s.Get("missing"); err != ErrUnresolvedReference {
		t.Fatalf("Get on unbound name = %v, want ErrUnresolvedReference", err)
	}
}

func TestScopeShadowingAndContaining(t *testing.T) {
	outer := NewScope[int](nil)
	outer.Push("x", 1)
	inner := NewScope[int](outer)
	inner.Push("x", 2)

	v, err := inner.Get("x")
	if err != nil || v != 2 {
		t.Fatalf("inner.Get(x) = %d, %v, want 2, nil", v, err)
	}
	inner.Pop("x")
	v, err = inner.Get("x")
	if err != nil || v != 1 {
		t.Fatalf("inner.Get(x) after pop = %d, %v, want 1 (from outer), nil", v, err)
	}
}

func TestScopeWithBindingPopsOnPanic(t *testing.T) {
	s := NewScope[int](nil)
	func() {
		defer func() { recover() }()
		s.WithBinding("x", 1, func() {
			panic("boom")
		})
	}()
	if s.ContainsHere("x") {
		t.Fatal("WithBinding should pop its binding even when fn panics")
	}
}

func TestExprRegistryInternsEqualLeaves(t *testing.T) {
	r := NewExprRegistry()
	a, err := NewIntImm(Int32, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewIntImm(Int32, 42)
	if err != nil {
		t.Fatal(err)
	}
	ia := r.Intern(a)
	ib := r.Intern(b)
	if ia != ib {
		t.Fatal("two structurally equal IntImm leaves should intern to the same pointer")
	}
	if r.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", r.Count())
	}
}

func TestExprRegistryDoesNotInternInteriorNodes(t *testing.T) {
	r := NewExprRegistry()
	x := NewVariable(Int32, "x")
	one, err := NewIntImm(Int32, 1)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewBinary(OpAdd, x, one)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Intern(e); got != e {
		t.Fatal("interning an interior node must return it unchanged")
	}
}

func TestRetainReleaseBookkeeping(t *testing.T) {
	e, err := NewIntImm(Int32, 5)
	if err != nil {
		t.Fatal(err)
	}
	if e.RefCount() != 1 {
		t.Fatalf("fresh node RefCount() = %d, want 1", e.RefCount())
	}
	e.Retain()
	if e.RefCount() != 2 {
		t.Fatalf("after Retain, RefCount() = %d, want 2", e.RefCount())
	}
	e.Release()
	e.Release()
	if e.RefCount() != 0 {
		t.Fatalf("after two Releases, RefCount() = %d, want 0", e.RefCount())
	}
	// Over-release is bookkeeping only; the node stays usable.
	e.Release()
	if k, ok := e.Kind.(IntImm); !ok || k.Value != 5 {
		t.Fatal("node must stay intact after over-release")
	}
}
