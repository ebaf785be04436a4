package main

import (
	"testing"

	"github.com/loomlang/loomc/ir"
)

const twoStagePipeline = `{
  "target": "f",
  "functions": [
    {"name": "g", "args": ["x", "y"],
     "body": {"sub": [{"var": "x"}, {"var": "y"}]},
     "schedule": {"store_at": "f.x_o", "compute_at": "f.y"}},
    {"name": "f", "args": ["x", "y"],
     "body": {"add": [
        {"call": {"kind": "halide", "name": "g",
                  "args": [{"add": [{"var": "x"}, {"int": 1}]}, {"int": 1}]}},
        {"call": {"kind": "halide", "name": "g",
                  "args": [{"int": 3}, {"sub": [{"var": "x"}, {"var": "y"}]}]}}]},
     "schedule": {"splits": [{"old": "x", "outer": "x_o", "inner": "x_i", "factor": 4}],
                  "vectorize": ["x_i"], "parallel": ["x_o"]}}
  ]
}`

func TestParsePipelineTwoStage(t *testing.T) {
	env, target, err := parsePipeline([]byte(twoStagePipeline))
	if err != nil {
		t.Fatal(err)
	}
	if target != "f" {
		t.Fatalf("target = %q, want f", target)
	}

	g, ok := env["g"]
	if !ok {
		t.Fatal("g missing from environment")
	}
	if g.Sched.StoreLevel != "f.x_o" || g.Sched.ComputeLevel != "f.y" {
		t.Fatalf("g schedule = %+v, want store=f.x_o compute=f.y", g.Sched)
	}

	f := env["f"]
	if len(f.Sched.Splits) != 1 || f.Sched.Splits[0].Factor != 4 {
		t.Fatalf("f splits = %+v, want one factor-4 split", f.Sched.Splits)
	}
	if got := ir.Print(g.Value); got != "(x - y)" {
		t.Fatalf("g body prints as %q, want (x - y)", got)
	}
	if err := env.Validate(); err != nil {
		t.Fatalf("parsed environment does not validate: %v", err)
	}
}

func TestParsePipelineRejectsMissingTarget(t *testing.T) {
	_, _, err := parsePipeline([]byte(`{"functions": []}`))
	if err == nil {
		t.Fatal("expected an error for a description with no target")
	}
}

func TestDecodeExprLeaves(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"int": 42}`, "42"},
		{`{"float": 1.5}`, "1.5"},
		{`{"var": "x"}`, "x"},
		{`{"min": [{"var": "a"}, {"int": 7}]}`, "min(a, 7)"},
		{`{"select": [{"lt": [{"var": "a"}, {"int": 0}]}, {"int": 0}, {"var": "a"}]}`, "select((a < 0), 0, a)"},
		{`{"cast": {"type": "float32", "value": {"var": "x"}}}`, "float32(x)"},
	}
	for _, c := range cases {
		e, err := decodeExpr([]byte(c.in))
		if err != nil {
			t.Fatalf("decodeExpr(%s): %v", c.in, err)
		}
		if got := ir.Print(e); got != c.want {
			t.Errorf("decodeExpr(%s) prints %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDecodeExprRejectsUnknownOperator(t *testing.T) {
	if _, err := decodeExpr([]byte(`{"frobnicate": 1}`)); err == nil {
		t.Fatal("expected an error for an unknown operator")
	}
}

func TestParseType(t *testing.T) {
	cases := map[string]ir.Type{
		"int32":     ir.Int32,
		"uint8":     {Kind: ir.UInt, Bits: 8, Lanes: 1},
		"bool":      ir.Bool,
		"float32x8": {Kind: ir.Float, Bits: 32, Lanes: 8},
	}
	for in, want := range cases {
		got, err := parseType(in)
		if err != nil {
			t.Fatalf("parseType(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("parseType(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := parseType("complex64"); err == nil {
		t.Error("expected an error for complex64")
	}
}
