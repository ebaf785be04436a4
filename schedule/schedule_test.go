package schedule

import (
	"testing"

	"github.com/loomlang/loomc/ir"
)

func exampleValue() *ir.Expr {
	x := ir.NewVariable(ir.Int32, "x")
	y := ir.NewVariable(ir.Int32, "y")
	v, err := ir.NewBinary(ir.OpSub, x, y)
	if err != nil {
		panic(err)
	}
	return v
}

func TestNewDefaultsDimsToSerialInDeclarationOrder(t *testing.T) {
	f := New("g", []string{"x", "y"}, exampleValue())
	if len(f.Sched.Dims) != 2 {
		t.Fatalf("len(Dims) = %d, want 2", len(f.Sched.Dims))
	}
	if f.Sched.Dims[0].Var != "x" || f.Sched.Dims[0].Kind != ir.Serial {
		t.Fatalf("Dims[0] = %+v, want {x Serial}", f.Sched.Dims[0])
	}
	if f.Sched.Dims[1].Var != "y" || f.Sched.Dims[1].Kind != ir.Serial {
		t.Fatalf("Dims[1] = %+v, want {y Serial}", f.Sched.Dims[1])
	}
}

func TestSplitReplacesDimAndRecordsSplit(t *testing.T) {
	f := New("f", []string{"x", "y"}, exampleValue())
	f.Split("x", "x_o", "x_i", 4)

	wantVars := []string{"x_o", "y", "x_i"}
	if len(f.Sched.Dims) != len(wantVars) {
		t.Fatalf("len(Dims) = %d, want %d", len(f.Sched.Dims), len(wantVars))
	}
	for i, v := range wantVars {
		if f.Sched.Dims[i].Var != v {
			t.Fatalf("Dims[%d].Var = %q, want %q", i, f.Sched.Dims[i].Var, v)
		}
	}
	if len(f.Sched.Splits) != 1 || f.Sched.Splits[0].Factor != 4 {
		t.Fatalf("Splits = %+v, want one split with factor 4", f.Sched.Splits)
	}
}

func TestDirectiveChaining(t *testing.T) {
	f := New("f", []string{"x", "y"}, exampleValue())
	f.Split("x", "x_o", "x_i", 4).Vectorize("x_i").Parallel("x_o")

	if f.Sched.Dims[0].Kind != ir.Parallel {
		t.Fatalf("x_o kind = %v, want Parallel", f.Sched.Dims[0].Kind)
	}
	if f.Sched.Dims[2].Kind != ir.Vectorized {
		t.Fatalf("x_i kind = %v, want Vectorized", f.Sched.Dims[2].Kind)
	}
}

func TestChunkSetsBothLevels(t *testing.T) {
	f := New("g", []string{"x", "y"}, exampleValue())
	f.Chunk("f.x_o", "f.y")
	if f.Sched.StoreLevel != "f.x_o" || f.Sched.ComputeLevel != "f.y" {
		t.Fatalf("Sched = %+v, want store=f.x_o compute=f.y", f.Sched)
	}
}

func TestEnvValidateRejectsMismatchedKey(t *testing.T) {
	f := New("f", []string{"x"}, exampleValue())
	env := Env{"wrong-name": f}
	if err := env.Validate(); err == nil {
		t.Fatal("expected error for mismatched env key")
	}
}

func TestEnvValidateRejectsVectorizeWithoutSplit(t *testing.T) {
	f := New("f", []string{"x"}, exampleValue())
	f.Vectorize("x")
	env := Env{"f": f}
	if err := env.Validate(); err == nil {
		t.Fatal("expected error: Vectorized dim without a backing split")
	}
}

func TestEnvValidateAcceptsWellFormedEnv(t *testing.T) {
	f := New("f", []string{"x", "y"}, exampleValue())
	f.Split("x", "x_o", "x_i", 4).Vectorize("x_i").Parallel("x_o")
	env := Env{"f": f}
	if err := env.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
