package bounds

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/loomlang/loomc/ir"
)

// seenExprs tracks which *ir.Expr pointers a walk has already folded into
// a hull, keyed by a per-walk sequential id rather than the pointer value
// itself, so repeated visits to the same shared Call subtree (the Mutator's
// sharing guarantee means a DAG, not a tree) contribute once. Mirrors
// go-corset's bitset-backed visited-set over its constraint graph walks.
type seenExprs struct {
	ids  map[*ir.Expr]uint
	seen *bitset.BitSet
}

func newSeenExprs() *seenExprs {
	return &seenExprs{ids: make(map[*ir.Expr]uint), seen: bitset.New(0)}
}

// markIfNew reports whether e has not been seen before on this walk,
// marking it seen as a side effect.
func (s *seenExprs) markIfNew(e *ir.Expr) bool {
	id, ok := s.ids[e]
	if !ok {
		id = uint(len(s.ids))
		s.ids[e] = id
	}
	if s.seen.Test(id) {
		return false
	}
	s.seen.Set(id)
	return true
}

// RegionRequired walks stmt, finds every Call node of kind Halide named
// funcName, and returns the per-dimension interval hull of their argument
// expressions. Returns nil, nil if funcName is never called
// within stmt.
func RegionRequired(funcName string, stmt *ir.Stmt, scope *ir.Scope[Interval]) ([]Interval, error) {
	seen := newSeenExprs()
	var callArgs [][]*ir.Expr
	walkStmtExprs(stmt, func(e *ir.Expr) {
		if c, ok := e.Kind.(ir.CallExpr); ok && c.Kind == ir.CallHalide && c.Name == funcName {
			if seen.markIfNew(e) {
				callArgs = append(callArgs, c.Args)
			}
		}
	})
	return hullArgs(callArgs, scope)
}

// RegionProvided is RegionRequired's analogue over Provide statements
// writing to buf.
func RegionProvided(buf string, stmt *ir.Stmt, scope *ir.Scope[Interval]) ([]Interval, error) {
	seen := newSeenStmts()
	var provideArgs [][]*ir.Expr
	walkStmts(stmt, func(s *ir.Stmt) {
		if p, ok := s.Kind.(ir.ProvideStmtKind); ok && p.Buffer == buf {
			if seen.markIfNew(s) {
				provideArgs = append(provideArgs, p.Args)
			}
		}
	})
	return hullArgs(provideArgs, scope)
}

// seenStmts is seenExprs's statement-pointer analogue.
type seenStmts struct {
	ids  map[*ir.Stmt]uint
	seen *bitset.BitSet
}

func newSeenStmts() *seenStmts {
	return &seenStmts{ids: make(map[*ir.Stmt]uint), seen: bitset.New(0)}
}

func (s *seenStmts) markIfNew(st *ir.Stmt) bool {
	id, ok := s.ids[st]
	if !ok {
		id = uint(len(s.ids))
		s.ids[st] = id
	}
	if s.seen.Test(id) {
		return false
	}
	s.seen.Set(id)
	return true
}

// RegionTouched is the per-dimension union of RegionRequired and
// RegionProvided for the same name.
func RegionTouched(name string, stmt *ir.Stmt, scope *ir.Scope[Interval]) ([]Interval, error) {
	required, err := RegionRequired(name, stmt, scope)
	if err != nil {
		return nil, err
	}
	provided, err := RegionProvided(name, stmt, scope)
	if err != nil {
		return nil, err
	}
	switch {
	case required == nil:
		return provided, nil
	case provided == nil:
		return required, nil
	}
	n := len(required)
	if len(provided) > n {
		n = len(provided)
	}
	result := make([]Interval, n)
	for i := 0; i < n; i++ {
		var r, p Interval
		if i < len(required) {
			r = required[i]
		}
		if i < len(provided) {
			p = provided[i]
		}
		result[i] = Interval{combine(ir.OpMin, r.Min, p.Min), combine(ir.OpMax, r.Max, p.Max)}
	}
	return result, nil
}

func hullArgs(argLists [][]*ir.Expr, scope *ir.Scope[Interval]) ([]Interval, error) {
	if len(argLists) == 0 {
		return nil, nil
	}
	dims := len(argLists[0])
	result := make([]Interval, dims)
	for d := 0; d < dims; d++ {
		var hull Interval
		for i, args := range argLists {
			iv, err := OfExprInScope(args[d], scope)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				hull = iv
				continue
			}
			hull = Interval{combine(ir.OpMin, hull.Min, iv.Min), combine(ir.OpMax, hull.Max, iv.Max)}
		}
		result[d] = hull
	}
	return result, nil
}

// walkStmtExprs calls fn on every expression node reachable from stmt,
// depth-first. It exists alongside ir.Inspect because region analysis needs
// the *ir.Expr pointer itself (for seenExprs dedup), not just its Kind.
func walkStmtExprs(stmt *ir.Stmt, fn func(*ir.Expr)) {
	walkStmts(stmt, func(s *ir.Stmt) {
		switch k := s.Kind.(type) {
		case ir.LetStmtKind:
			walkExpr(k.Value, fn)
		case ir.AssertStmtKind:
			walkExpr(k.Cond, fn)
		case ir.PrintStmtKind:
			for _, a := range k.Args {
				walkExpr(a, fn)
			}
		case ir.ForStmtKind:
			walkExpr(k.Min, fn)
			walkExpr(k.Extent, fn)
		case ir.StoreStmtKind:
			walkExpr(k.Value, fn)
			walkExpr(k.Index, fn)
		case ir.ProvideStmtKind:
			walkExpr(k.Value, fn)
			for _, a := range k.Args {
				walkExpr(a, fn)
			}
		case ir.AllocateStmtKind:
			walkExpr(k.Size, fn)
		case ir.RealizeStmtKind:
			for _, b := range k.Bounds {
				walkExpr(b.Min, fn)
				walkExpr(b.Extent, fn)
			}
		}
	})
}

// walkStmts calls fn on every statement node reachable from stmt (including
// stmt itself), depth-first.
func walkStmts(stmt *ir.Stmt, fn func(*ir.Stmt)) {
	if stmt == nil {
		return
	}
	fn(stmt)
	switch k := stmt.Kind.(type) {
	case ir.LetStmtKind:
		walkStmts(k.Body, fn)
	case ir.PipelineKind:
		walkStmts(k.Produce, fn)
		walkStmts(k.Update, fn)
		walkStmts(k.Consume, fn)
	case ir.ForStmtKind:
		walkStmts(k.Body, fn)
	case ir.AllocateStmtKind:
		walkStmts(k.Body, fn)
	case ir.RealizeStmtKind:
		walkStmts(k.Body, fn)
	case ir.BlockStmtKind:
		walkStmts(k.First, fn)
		walkStmts(k.Rest, fn)
	}
}

// walkExpr calls fn on every expression node reachable from e (including e
// itself), depth-first.
func walkExpr(e *ir.Expr, fn func(*ir.Expr)) {
	if e == nil {
		return
	}
	fn(e)
	switch k := e.Kind.(type) {
	case ir.Cast:
		walkExpr(k.Value, fn)
	case ir.BinaryExpr:
		walkExpr(k.A, fn)
		walkExpr(k.B, fn)
	case ir.NotExpr:
		walkExpr(k.Value, fn)
	case ir.SelectExpr:
		walkExpr(k.Cond, fn)
		walkExpr(k.TrueValue, fn)
		walkExpr(k.FalseValue, fn)
	case ir.LoadExpr:
		walkExpr(k.Index, fn)
	case ir.RampExpr:
		walkExpr(k.Base, fn)
		walkExpr(k.Stride, fn)
	case ir.BroadcastExpr:
		walkExpr(k.Value, fn)
	case ir.CallExpr:
		for _, a := range k.Args {
			walkExpr(a, fn)
		}
	case ir.LetExpr:
		walkExpr(k.Value, fn)
		walkExpr(k.Body, fn)
	}
}
