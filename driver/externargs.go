package driver

import (
	"sort"

	"github.com/loomlang/loomc/ir"
	"github.com/loomlang/loomc/runtime"
	"github.com/loomlang/loomc/schedule"
)

// externalArgs collects the argument list the lowered pipeline expects:
// one buffer argument per Image-kind Call name reachable
// from any function in order, plus the per-dimension min/extent scalars of
// the output function, which bounds inference leaves as free variables for
// the caller to supply. Buffer arguments come first, sorted by name;
// scalars follow in the output's dimension order.
func externalArgs(env schedule.Env, target string, order []string) []runtime.ExternArg {
	type image struct {
		t    ir.Type
		rank int
	}
	images := make(map[string]image)
	for _, name := range order {
		f, ok := env[name]
		if !ok {
			continue
		}
		ir.InspectExprNodes(f.Value, func(e *ir.Expr) bool {
			if c, ok := e.Kind.(ir.CallExpr); ok && c.Kind == ir.CallImage {
				if _, seen := images[c.Name]; !seen {
					images[c.Name] = image{t: e.Type, rank: len(c.Args)}
				}
			}
			return true
		})
	}

	bufNames := make([]string, 0, len(images))
	for name := range images {
		bufNames = append(bufNames, name)
	}
	sort.Strings(bufNames)

	args := make([]runtime.ExternArg, 0, len(bufNames)+2*len(env[target].Args))
	for _, name := range bufNames {
		img := images[name]
		args = append(args, runtime.ExternArg{
			Name:   name,
			Type:   img.t,
			Rank:   img.rank,
			Buffer: true,
		})
	}
	for _, a := range env[target].Args {
		args = append(args,
			runtime.ExternArg{Name: target + "." + a + ".min", Type: ir.Int32},
			runtime.ExternArg{Name: target + "." + a + ".extent", Type: ir.Int32},
		)
	}
	return args
}
