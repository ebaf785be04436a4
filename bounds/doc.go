// Package bounds implements interval arithmetic over the IR:
// bounds-of-expression-in-scope and the per-function required/provided/
// region_provided / region_touched analyses bounds inference (package
// lower) uses to size each producer's realization.
package bounds
