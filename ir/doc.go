// Package ir defines the intermediate representation for loomc.
//
// The IR is a scheduling-agnostic representation of algorithms as pure
// multidimensional functions over typed scalar or vector values. It is
// designed to be:
//   - Shared by construction: nodes are immutable once built, and the
//     lowering passes in package lower rewrite only the subtrees that
//     change, preserving pointer identity everywhere else.
//   - Closed: the set of expression and statement variants is fixed and
//     exhaustively switched over rather than extended at runtime.
//
// # Structure
//
// An expression or statement tree is built bottom-up out of *Expr and *Stmt
// handles. A handle is simply a Go pointer: constructing a node allocates
// it once, and every reference to that node after that shares the same
// pointer. The Mutator interfaces (see visitor.go) and the Inspect walkers
// (see validate.go) dispatch on the concrete Kind held by a node via a type
// switch rather than reflection.
package ir
