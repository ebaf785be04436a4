package schedule

import (
	"fmt"

	"github.com/loomlang/loomc/ir"
)

// Split records that old_var has been replaced by an outer loop (factor-
// sized strides) and an inner loop of constant extent factor.
type Split struct {
	Old, Outer, Inner string
	Factor            int
}

// Dim is one dimension of a function's loop nest, in the order it appears
// in the schedule's Dims list — the order realization builder (package
// lower) nests its For loops in.
type Dim struct {
	Var  string
	Kind ir.ForKind
}

// Schedule is the scheduling metadata for one Function: where it is stored
// and computed relative to its consumers, its splits, and its per-dimension
// loop kinds. Splits have already rewritten Dims to refer to split halves
// by the time a Schedule is considered well-formed (Function.Split keeps
// this true as directives are applied).
type Schedule struct {
	// StoreLevel and ComputeLevel are fully qualified consumer loop variable
	// names ("f.y", "f.x_o"). Both empty means the function is inlined at
	// its call sites.
	StoreLevel, ComputeLevel string
	Splits                   []Split
	Dims                     []Dim
}

func (s *Schedule) dimIndex(v string) int {
	for i, d := range s.Dims {
		if d.Var == v {
			return i
		}
	}
	return -1
}

func (s *Schedule) splitFor(v string) *Split {
	for i := range s.Splits {
		if s.Splits[i].Outer == v || s.Splits[i].Inner == v {
			return &s.Splits[i]
		}
	}
	return nil
}

// Function is a named, pure, multidimensional definition plus its Schedule.
// TODO: reduction (update) definitions.
type Function struct {
	Name  string
	Args  []string
	Value *ir.Expr
	Sched Schedule
}

// New constructs a Function whose schedule defaults to one Dim per pure
// argument, kind Serial, in declaration order.
func New(name string, args []string, value *ir.Expr) *Function {
	dims := make([]Dim, len(args))
	for i, a := range args {
		dims[i] = Dim{Var: a, Kind: ir.Serial}
	}
	return &Function{
		Name:  name,
		Args:  args,
		Value: value,
		Sched: Schedule{Dims: dims},
	}
}

// Split replaces old in the Dims list with outer (outside) and inner
// (inside), both of for-kind Serial initially, and records the Split. The
// outer half takes old's position in the nest; the inner half becomes the
// innermost dimension, so a factor-split loop is always vectorizable and a
// producer chunked at the outer half stays outside every other loop old
// contained.
func (f *Function) Split(old, outer, inner string, factor int) *Function {
	idx := f.Sched.dimIndex(old)
	if idx < 0 {
		panic(fmt.Sprintf("schedule: split of unknown dim %q on function %q", old, f.Name))
	}
	f.Sched.Dims[idx] = Dim{Var: outer, Kind: ir.Serial}
	f.Sched.Dims = append(f.Sched.Dims, Dim{Var: inner, Kind: ir.Serial})
	f.Sched.Splits = append(f.Sched.Splits, Split{Old: old, Outer: outer, Inner: inner, Factor: factor})
	return f
}

func (f *Function) setDimKind(v string, kind ir.ForKind) *Function {
	idx := f.Sched.dimIndex(v)
	if idx < 0 {
		panic(fmt.Sprintf("schedule: dim %q not found on function %q", v, f.Name))
	}
	f.Sched.Dims[idx].Kind = kind
	return f
}

// Parallel sets var's dim to kind Parallel.
func (f *Function) Parallel(v string) *Function { return f.setDimKind(v, ir.Parallel) }

// Vectorize sets var's dim to kind Vectorized. v must be backed by a
// Split with a constant factor — true unconditionally here since
// Split.Factor is always a compile-time int — so no further check is
// needed at schedule-construction time; package lower's Vectorize pass
// still verifies the realized loop's extent is constant before widening.
func (f *Function) Vectorize(v string) *Function { return f.setDimKind(v, ir.Vectorized) }

// Unroll sets var's dim to kind Unrolled.
func (f *Function) Unroll(v string) *Function { return f.setDimKind(v, ir.Unrolled) }

// Chunk sets both schedule levels: storeAt is where f's storage is
// allocated, computeAt is where its values are produced.
func (f *Function) Chunk(storeAt, computeAt string) *Function {
	f.Sched.StoreLevel = storeAt
	f.Sched.ComputeLevel = computeAt
	return f
}

// Env is the environment of functions threaded through every lowering
// pass.
type Env map[string]*Function

// Validate checks the schedule invariants across the whole environment:
// every function's name matches its map key, every Dim's var resolves to
// either a pure argument or a split half, and every Vectorized/Unrolled dim
// is backed by a Split (so its extent is a compile-time constant once
// realized). Running this once up front, rather than only between lowering
// passes, means a malformed environment fails here instead of confusingly
// deep inside realization-order computation.
func (e Env) Validate() error {
	for name, f := range e {
		if f.Name != name {
			return fmt.Errorf("schedule: env key %q does not match function name %q", name, f.Name)
		}
		if f.Value == nil {
			return fmt.Errorf("schedule: function %q has a nil value", name)
		}
		args := make(map[string]bool, len(f.Args))
		for _, a := range f.Args {
			args[a] = true
		}
		splitHalves := make(map[string]bool)
		for _, sp := range f.Sched.Splits {
			splitHalves[sp.Outer] = true
			splitHalves[sp.Inner] = true
		}
		for _, d := range f.Sched.Dims {
			if !args[d.Var] && !splitHalves[d.Var] {
				return fmt.Errorf("schedule: function %q dim %q is neither a pure argument nor a split half", name, d.Var)
			}
			if d.Kind == ir.Vectorized || d.Kind == ir.Unrolled {
				if sp := f.Sched.splitFor(d.Var); sp == nil {
					return fmt.Errorf("schedule: function %q dim %q is %s but has no backing split with a constant factor", name, d.Var, d.Kind)
				}
			}
		}
		if f.Sched.StoreLevel == "" && f.Sched.ComputeLevel != "" {
			return fmt.Errorf("schedule: function %q has a compute_level without a store_level", name)
		}
	}
	return nil
}
