package lower

import (
	"fmt"
	"sort"

	"github.com/loomlang/loomc/ir"
	"github.com/loomlang/loomc/schedule"
)

// calleesOf returns the names of every function f's value calls via a
// Halide-kind Call, deduplicated and sorted for deterministic iteration.
func calleesOf(f *schedule.Function) []string {
	seen := make(map[string]bool)
	ir.InspectExpr(f.Value, func(k ir.ExprKind) bool {
		if c, ok := k.(ir.CallExpr); ok && c.Kind == ir.CallHalide {
			seen[c.Name] = true
		}
		return true
	})
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RealizationOrder returns the names of target and every function it
// transitively depends on, ordered so that each function appears after all
// of the functions it calls — a producer is realized before its first
// consumer reads it. Implemented as depth-first
// post-order over the Halide-call dependency graph, with a per-function
// visiting/done state so a cycle is reported as an error instead of
// recursing forever.
func RealizationOrder(env schedule.Env, target string) ([]string, error) {
	if _, ok := env[target]; !ok {
		return nil, fmt.Errorf("lower: unknown target function %q", target)
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int)
	var order []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return &SchedulingError{Kind: CycleDetected, Function: name, Detail: "function depends on itself through a cycle of Halide calls"}
		}
		f, ok := env[name]
		if !ok {
			return fmt.Errorf("lower: function %q calls unknown function", name)
		}
		state[name] = visiting
		for _, callee := range calleesOf(f) {
			if err := visit(callee); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}

	if err := visit(target); err != nil {
		return nil, err
	}
	return order, nil
}
