// Package driver sequences the lowering passes in package lower and
// package simplify into a single pipeline: realize the target, inject
// every producer, infer bounds, flatten storage, simplify, vectorize,
// unroll, and run a short simplify/dead-let fixed point.
package driver

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/loomlang/loomc/bounds"
	"github.com/loomlang/loomc/ir"
	"github.com/loomlang/loomc/lower"
	"github.com/loomlang/loomc/runtime"
	"github.com/loomlang/loomc/schedule"
	"github.com/loomlang/loomc/simplify"
)

// rootName is the synthetic outermost loop the target's realization is
// wrapped in, giving every subsequent pass a single statement root
// regardless of the target's own dimensionality.
const rootName = "<root>"

// Options configures Lower. Log may be nil, in which case pass-boundary
// logging is discarded (the same convention package simplify uses).
type Options struct {
	Log *logrus.Logger

	// StripDebug removes AssertStmt and PrintStmt nodes as a final pass.
	// Debug statements otherwise survive lowering untouched.
	StripDebug bool

	// KnownBounds optionally seeds the simplifier with variable intervals
	// already known to the caller, letting it fold Min/Max/comparison nodes
	// it could not otherwise prove.
	KnownBounds *ir.Scope[bounds.Interval]
}

// Result is what lowering hands the backend: the loop nest plus the
// external arguments it expects.
type Result struct {
	Stmt       *ir.Stmt
	ExternArgs []runtime.ExternArg
}

// Lower runs the full scheduled-lowering pipeline over env, producing the
// statement tree that computes target.
func Lower(env schedule.Env, target string, opts Options) (*ir.Stmt, error) {
	res, err := LowerPipeline(env, target, opts)
	if err != nil {
		return nil, err
	}
	return res.Stmt, nil
}

// LowerPipeline is Lower plus the external-argument list of the resulting
// pipeline.
func LowerPipeline(env schedule.Env, target string, opts Options) (*Result, error) {
	log := opts.Log
	if err := env.Validate(); err != nil {
		return nil, errors.Wrap(err, "driver: invalid environment")
	}
	f, ok := env[target]
	if !ok {
		return nil, errors.Errorf("driver: unknown target function %q", target)
	}

	logf(log, "computing realization order for %q", target)
	order, err := lower.RealizationOrder(env, target)
	if err != nil {
		return nil, errors.Wrap(err, "driver: realization order")
	}

	logf(log, "building realization of target %q", target)
	targetRealization, err := lower.BuildRealization(f)
	if err != nil {
		return nil, errors.Wrapf(err, "driver: building realization of %q", target)
	}
	zero, err := ir.NewIntImm(ir.Int32, 0)
	if err != nil {
		return nil, err
	}
	one, err := ir.NewIntImm(ir.Int32, 1)
	if err != nil {
		return nil, err
	}
	stmt, err := ir.For(rootName, zero, one, ir.Serial, targetRealization)
	if err != nil {
		return nil, errors.Wrap(err, "driver: wrapping target realization in the root loop")
	}

	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		if name == target {
			continue
		}
		producer := env[name]
		logf(log, "injecting realization of %q", name)
		stmt, err = lower.InjectRealization(stmt, producer, env)
		if err != nil {
			return nil, errors.Wrapf(err, "driver: injecting %q", name)
		}
	}

	logf(log, "inferring bounds")
	stmt, err = lower.InferBounds(stmt, env, target)
	if err != nil {
		return nil, errors.Wrap(err, "driver: inferring bounds")
	}

	logf(log, "flattening storage")
	stmt, err = lower.FlattenStorage(stmt)
	if err != nil {
		return nil, errors.Wrap(err, "driver: flattening storage")
	}
	if err := checkFlattened(stmt); err != nil {
		return nil, errors.Wrap(err, "driver: storage-flattening postcondition")
	}

	var simplifyOpts []simplify.Option
	if opts.KnownBounds != nil {
		simplifyOpts = append(simplifyOpts, simplify.WithKnownBounds(opts.KnownBounds))
	}

	logf(log, "simplifying")
	stmt, err = simplify.RunStmt(log, stmt, simplifyOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "driver: simplifying")
	}

	logf(log, "vectorizing")
	stmt, err = lower.Vectorize(stmt)
	if err != nil {
		return nil, errors.Wrap(err, "driver: vectorizing")
	}

	logf(log, "unrolling")
	stmt, err = lower.Unroll(stmt)
	if err != nil {
		return nil, errors.Wrap(err, "driver: unrolling")
	}
	if err := checkNoVectorizedLoops(stmt); err != nil {
		return nil, errors.Wrap(err, "driver: vectorize/unroll postcondition")
	}

	for i := 0; i < 2; i++ {
		logf(log, "fixed-point pass %d: simplify + dead-let elimination", i+1)
		simplified, err := simplify.RunStmt(log, stmt, simplifyOpts...)
		if err != nil {
			return nil, errors.Wrapf(err, "driver: fixed-point pass %d simplify", i+1)
		}
		pruned, err := lower.EliminateDeadLets(simplified)
		if err != nil {
			return nil, errors.Wrapf(err, "driver: fixed-point pass %d dead-let elimination", i+1)
		}
		converged := ir.EqualStmt(pruned, stmt)
		stmt = pruned
		if converged {
			break
		}
	}

	if opts.StripDebug {
		logf(log, "stripping debug statements")
		stmt, err = stripDebug(stmt)
		if err != nil {
			return nil, errors.Wrap(err, "driver: stripping debug statements")
		}
	}

	return &Result{Stmt: stmt, ExternArgs: externalArgs(env, target, order)}, nil
}

func logf(log *logrus.Logger, format string, args ...interface{}) {
	if log == nil {
		return
	}
	log.Debugf(format, args...)
}
