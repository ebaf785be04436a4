package lower

import (
	"github.com/loomlang/loomc/ir"
	"github.com/loomlang/loomc/schedule"
)

// InjectRealization splices f's realization into stmt at its schedule's
// compute_level and store_level For loops, or inlines every Halide-kind
// Call to f if its compute_level is empty. Called once per
// producer, in reverse realization order, by the driver.
func InjectRealization(stmt *ir.Stmt, f *schedule.Function, env schedule.Env) (*ir.Stmt, error) {
	if f.Sched.ComputeLevel == "" {
		in := &inliner{f: f}
		in.Self = in
		return in.MutateStmt(stmt)
	}

	ci := &computeInjector{f: f, level: f.Sched.ComputeLevel}
	ci.Self = ci
	afterCompute, err := ci.MutateStmt(stmt)
	if err != nil {
		return nil, err
	}
	if !ci.injected {
		return nil, &SchedulingError{Kind: MissingInjectionSite, Function: f.Name, Detail: "compute_level " + f.Sched.ComputeLevel + " names no For loop in the statement"}
	}

	si := &storeInjector{f: f, level: f.Sched.StoreLevel}
	si.Self = si
	afterStore, err := si.MutateStmt(afterCompute)
	if err != nil {
		return nil, err
	}
	if !si.injected {
		return nil, &SchedulingError{Kind: MissingInjectionSite, Function: f.Name, Detail: "store_level " + f.Sched.StoreLevel + " names no For loop in the statement"}
	}
	return afterStore, nil
}

// computeInjector rewrites the first For loop named level into a For wrapping
// Pipeline(f.name, produce = realization of f, update = nil, consume = the
// loop's original body).
type computeInjector struct {
	ir.BaseMutator
	f        *schedule.Function
	level    string
	injected bool
}

func (c *computeInjector) MutateStmt(s *ir.Stmt) (*ir.Stmt, error) {
	if s == nil {
		return nil, nil
	}
	fk, ok := s.Kind.(ir.ForStmtKind)
	if !ok || fk.Name != c.level || c.injected {
		return ir.MutateStmtChildren(c, s)
	}
	realization, err := BuildRealization(c.f)
	if err != nil {
		return nil, err
	}
	pipeline, err := ir.Pipeline(c.f.Name, realization, nil, fk.Body)
	if err != nil {
		return nil, err
	}
	c.injected = true
	return ir.For(fk.Name, fk.Min, fk.Extent, fk.ForKind, pipeline)
}

// storeInjector rewrites the first For loop named level into a For wrapping
// Realize(f.name, f.value.type, bounds, mutated body). It checks that the
// loop it wraps encloses the Pipeline computeInjector already produced for
// the same function: the store level must be outside or equal to the
// compute level.
type storeInjector struct {
	ir.BaseMutator
	f        *schedule.Function
	level    string
	injected bool
}

func (s *storeInjector) MutateStmt(st *ir.Stmt) (*ir.Stmt, error) {
	if st == nil {
		return nil, nil
	}
	fk, ok := st.Kind.(ir.ForStmtKind)
	if !ok || fk.Name != s.level || s.injected {
		return ir.MutateStmtChildren(s, st)
	}
	if !containsPipelineFor(fk.Body, s.f.Name) {
		return nil, &SchedulingError{Kind: StoreOutsideCompute, Function: s.f.Name, Detail: "store_level " + s.level + " does not enclose the injected compute_level Pipeline"}
	}
	bounds := make([]ir.Bound, len(s.f.Args))
	for i, a := range s.f.Args {
		bounds[i] = ir.Bound{Min: minVar(s.f.Name, a), Extent: extentVar(s.f.Name, a)}
	}
	realize, err := ir.Realize(s.f.Name, s.f.Value.Type, bounds, fk.Body)
	if err != nil {
		return nil, err
	}
	s.injected = true
	return ir.For(fk.Name, fk.Min, fk.Extent, fk.ForKind, realize)
}

// containsPipelineFor reports whether stmt contains, anywhere in its tree, a
// Pipeline statement for the named buffer.
func containsPipelineFor(stmt *ir.Stmt, name string) bool {
	found := false
	ir.Inspect(stmt, func(k ir.StmtKind) bool {
		if found {
			return false
		}
		if p, ok := k.(ir.PipelineKind); ok && p.Buffer == name {
			found = true
			return false
		}
		return true
	}, nil)
	return found
}

// inliner replaces every Halide-kind Call to f with f's value, pure args
// substituted by the call's argument expressions — the inlining path for
// functions with an empty compute_level.
type inliner struct {
	ir.BaseMutator
	f *schedule.Function
}

func (in *inliner) MutateExpr(e *ir.Expr) (*ir.Expr, error) {
	if e == nil {
		return nil, nil
	}
	c, ok := e.Kind.(ir.CallExpr)
	if !ok || c.Kind != ir.CallHalide || c.Name != in.f.Name {
		return ir.MutateExprChildren(in, e)
	}
	body := in.f.Value
	for i, a := range in.f.Args {
		var err error
		body, err = ir.Substitute(a, c.Args[i], body)
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (in *inliner) MutateStmt(s *ir.Stmt) (*ir.Stmt, error) {
	return ir.MutateStmtChildren(in, s)
}
