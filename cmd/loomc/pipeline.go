package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/loomlang/loomc/ir"
	"github.com/loomlang/loomc/schedule"
)

// The pipeline description format is a JSON stand-in for a front end: a
// target name plus one entry per function, each carrying its pure argument
// list, a body expression tree, and optional schedule directives.
//
//	{
//	  "target": "f",
//	  "functions": [
//	    {"name": "g", "args": ["x", "y"], "body": {"sub": [{"var": "x"}, {"var": "y"}]},
//	     "schedule": {"store_at": "f.x_o", "compute_at": "f.y"}},
//	    {"name": "f", "args": ["x", "y"],
//	     "body": {"add": [{"call": {"kind": "halide", "name": "g", "args": [{"var": "x"}, {"int": 1}]}},
//	                      {"int": 3}]},
//	     "schedule": {"splits": [{"old": "x", "outer": "x_o", "inner": "x_i", "factor": 4}],
//	                  "vectorize": ["x_i"], "parallel": ["x_o"]}}
//	  ]
//	}
type pipelineFile struct {
	Target    string         `json:"target"`
	Functions []functionSpec `json:"functions"`
}

type functionSpec struct {
	Name     string          `json:"name"`
	Args     []string        `json:"args"`
	Body     json.RawMessage `json:"body"`
	Schedule *scheduleSpec   `json:"schedule,omitempty"`
}

type scheduleSpec struct {
	StoreAt   string      `json:"store_at,omitempty"`
	ComputeAt string      `json:"compute_at,omitempty"`
	Splits    []splitSpec `json:"splits,omitempty"`
	Parallel  []string    `json:"parallel,omitempty"`
	Vectorize []string    `json:"vectorize,omitempty"`
	Unroll    []string    `json:"unroll,omitempty"`
}

type splitSpec struct {
	Old    string `json:"old"`
	Outer  string `json:"outer"`
	Inner  string `json:"inner"`
	Factor int    `json:"factor"`
}

// loadPipeline reads a pipeline description and builds the environment and
// target it describes.
func loadPipeline(path string) (schedule.Env, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "reading pipeline description")
	}
	return parsePipeline(data)
}

func parsePipeline(data []byte) (schedule.Env, string, error) {
	var pf pipelineFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, "", errors.Wrap(err, "parsing pipeline description")
	}
	if pf.Target == "" {
		return nil, "", errors.New("pipeline description has no target")
	}

	env := schedule.Env{}
	for _, fs := range pf.Functions {
		if fs.Name == "" {
			return nil, "", errors.New("a function entry has no name")
		}
		body, err := decodeExpr(fs.Body)
		if err != nil {
			return nil, "", errors.Wrapf(err, "function %q body", fs.Name)
		}
		f := schedule.New(fs.Name, fs.Args, body)
		if s := fs.Schedule; s != nil {
			for _, sp := range s.Splits {
				f.Split(sp.Old, sp.Outer, sp.Inner, sp.Factor)
			}
			for _, v := range s.Parallel {
				f.Parallel(v)
			}
			for _, v := range s.Vectorize {
				f.Vectorize(v)
			}
			for _, v := range s.Unroll {
				f.Unroll(v)
			}
			if s.StoreAt != "" || s.ComputeAt != "" {
				f.Chunk(s.StoreAt, s.ComputeAt)
			}
		}
		env[fs.Name] = f
	}
	if _, ok := env[pf.Target]; !ok {
		return nil, "", errors.Errorf("target %q is not among the described functions", pf.Target)
	}
	return env, pf.Target, nil
}

// binaryOps maps the description format's operator keys to IR binary ops.
var binaryOps = map[string]ir.BinOp{
	"add": ir.OpAdd, "sub": ir.OpSub, "mul": ir.OpMul, "div": ir.OpDiv,
	"mod": ir.OpMod, "min": ir.OpMin, "max": ir.OpMax,
	"eq": ir.OpEQ, "ne": ir.OpNE, "lt": ir.OpLT, "le": ir.OpLE,
	"gt": ir.OpGT, "ge": ir.OpGE, "and": ir.OpAnd, "or": ir.OpOr,
}

// decodeExpr decodes one expression object. Each object has exactly one
// operator key, plus an optional "type" (defaulting to int32 for integer
// and variable leaves, uint32 for uint leaves, float32 for float leaves).
func decodeExpr(raw json.RawMessage) (*ir.Expr, error) {
	if len(raw) == 0 {
		return nil, errors.New("missing expression")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Wrap(err, "expression is not an object")
	}

	t := ir.Int32
	hasType := false
	if tr, ok := fields["type"]; ok {
		var ts string
		if err := json.Unmarshal(tr, &ts); err != nil {
			return nil, errors.Wrap(err, "expression type")
		}
		parsed, err := parseType(ts)
		if err != nil {
			return nil, err
		}
		t = parsed
		hasType = true
		delete(fields, "type")
	}
	if len(fields) != 1 {
		return nil, errors.Errorf("expression must have exactly one operator key, got %d", len(fields))
	}

	var op string
	var body json.RawMessage
	for k, v := range fields {
		op, body = k, v
	}

	if bo, ok := binaryOps[op]; ok {
		operands, err := decodeExprList(body, 2)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		return ir.NewBinary(bo, operands[0], operands[1])
	}

	switch op {
	case "int":
		var v int64
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, errors.Wrap(err, "int literal")
		}
		return ir.NewIntImm(t, v)
	case "uint":
		var v uint64
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, errors.Wrap(err, "uint literal")
		}
		if !hasType {
			t = ir.UInt32
		}
		return ir.NewUIntImm(t, v)
	case "float":
		var v float64
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, errors.Wrap(err, "float literal")
		}
		if !hasType {
			t = ir.Float32
		}
		return ir.NewFloatImm(t, v)
	case "var":
		var name string
		if err := json.Unmarshal(body, &name); err != nil {
			return nil, errors.Wrap(err, "variable name")
		}
		return ir.NewVariable(t, name), nil
	case "not":
		v, err := decodeExpr(body)
		if err != nil {
			return nil, errors.Wrap(err, "not")
		}
		return ir.NewNot(v)
	case "select":
		operands, err := decodeExprList(body, 3)
		if err != nil {
			return nil, errors.Wrap(err, "select")
		}
		return ir.NewSelect(operands[0], operands[1], operands[2])
	case "cast":
		var c struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(body, &c); err != nil {
			return nil, errors.Wrap(err, "cast")
		}
		ct, err := parseType(c.Type)
		if err != nil {
			return nil, err
		}
		v, err := decodeExpr(c.Value)
		if err != nil {
			return nil, errors.Wrap(err, "cast value")
		}
		return ir.NewCast(ct, v)
	case "ramp":
		var r struct {
			Base   json.RawMessage `json:"base"`
			Stride json.RawMessage `json:"stride"`
			Lanes  uint32          `json:"lanes"`
		}
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, errors.Wrap(err, "ramp")
		}
		base, err := decodeExpr(r.Base)
		if err != nil {
			return nil, err
		}
		stride, err := decodeExpr(r.Stride)
		if err != nil {
			return nil, err
		}
		return ir.NewRamp(base, stride, r.Lanes)
	case "broadcast":
		var br struct {
			Value json.RawMessage `json:"value"`
			Lanes uint32          `json:"lanes"`
		}
		if err := json.Unmarshal(body, &br); err != nil {
			return nil, errors.Wrap(err, "broadcast")
		}
		v, err := decodeExpr(br.Value)
		if err != nil {
			return nil, err
		}
		return ir.NewBroadcast(v, br.Lanes)
	case "call":
		var c struct {
			Kind string            `json:"kind"`
			Name string            `json:"name"`
			Type string            `json:"type,omitempty"`
			Args []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(body, &c); err != nil {
			return nil, errors.Wrap(err, "call")
		}
		kind, err := parseCallKind(c.Kind)
		if err != nil {
			return nil, err
		}
		ct := ir.Int32
		if c.Type != "" {
			ct, err = parseType(c.Type)
			if err != nil {
				return nil, err
			}
		}
		args := make([]*ir.Expr, len(c.Args))
		for i, a := range c.Args {
			args[i], err = decodeExpr(a)
			if err != nil {
				return nil, errors.Wrapf(err, "call arg %d", i)
			}
		}
		return ir.NewCall(ct, c.Name, args, kind)
	case "let":
		var l struct {
			Name  string          `json:"name"`
			Value json.RawMessage `json:"value"`
			Body  json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(body, &l); err != nil {
			return nil, errors.Wrap(err, "let")
		}
		v, err := decodeExpr(l.Value)
		if err != nil {
			return nil, err
		}
		bd, err := decodeExpr(l.Body)
		if err != nil {
			return nil, err
		}
		return ir.NewLet(l.Name, v, bd)
	default:
		return nil, errors.Errorf("unknown expression operator %q", op)
	}
}

func decodeExprList(raw json.RawMessage, want int) ([]*ir.Expr, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrap(err, "operand list")
	}
	if len(items) != want {
		return nil, errors.Errorf("want %d operands, got %d", want, len(items))
	}
	exprs := make([]*ir.Expr, len(items))
	for i, it := range items {
		e, err := decodeExpr(it)
		if err != nil {
			return nil, errors.Wrapf(err, "operand %d", i)
		}
		exprs[i] = e
	}
	return exprs, nil
}

func parseCallKind(s string) (ir.CallKind, error) {
	switch s {
	case "halide", "":
		return ir.CallHalide, nil
	case "image":
		return ir.CallImage, nil
	case "extern":
		return ir.CallExtern, nil
	default:
		return 0, errors.Errorf("unknown call kind %q", s)
	}
}

// parseType reads the canonical type spellings package ir prints: "bool",
// "int32", "uint8", "float32", with an optional "x<lanes>" vector suffix.
func parseType(s string) (ir.Type, error) {
	lanes := uint32(1)
	if i := strings.LastIndexByte(s, 'x'); i > 0 {
		n, err := strconv.ParseUint(s[i+1:], 10, 32)
		if err == nil {
			lanes = uint32(n)
			s = s[:i]
		}
	}

	if s == "bool" {
		return ir.Bool.Widen(lanes), nil
	}
	var kind ir.Kind
	var rest string
	switch {
	case strings.HasPrefix(s, "uint"):
		kind, rest = ir.UInt, s[4:]
	case strings.HasPrefix(s, "int"):
		kind, rest = ir.Int, s[3:]
	case strings.HasPrefix(s, "float"):
		kind, rest = ir.Float, s[5:]
	default:
		return ir.Type{}, fmt.Errorf("unknown type %q", s)
	}
	bits, err := strconv.ParseUint(rest, 10, 8)
	if err != nil {
		return ir.Type{}, fmt.Errorf("unknown type %q", s)
	}
	switch bits {
	case 1, 8, 16, 32, 64:
	default:
		return ir.Type{}, fmt.Errorf("unsupported bit width in type %q", s)
	}
	return ir.Type{Kind: kind, Bits: uint8(bits), Lanes: lanes}, nil
}
