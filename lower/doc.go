// Package lower implements the scheduled-lowering pipeline: realization
// construction, realization ordering, realization injection, bounds
// inference, storage flattening, vectorization, unrolling, and dead-let
// elimination. Each pass is a file of its own.
package lower
