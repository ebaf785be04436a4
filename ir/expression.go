package ir

import "fmt"

// Expr is a handle to an immutable expression node. The pointer itself is
// the handle: two *Expr values that point at the same struct denote the
// same shared subtree, which is the "same handle" the Mutator's
// sharing-preservation guarantee is stated in terms of.
type Expr struct {
	Type Type
	Kind ExprKind

	refs int32 // bookkeeping only; see Retain/Release.
}

// ExprKind is implemented by every concrete expression variant. The marker
// method keeps the variant set closed to this package.
type ExprKind interface {
	exprKind()
}

// Retain increments e's bookkeeping reference count. Handles in this Go
// implementation are ordinary pointers backed by the garbage collector
// (arena allocation with a single bulk free at the end of a lowering
// invocation); Retain/Release exist so code ported
// from, or cross-checked against, a manually-managed implementation keeps
// the same call shape, not because release at zero frees anything here.
func (e *Expr) Retain() *Expr {
	if e == nil {
		return e
	}
	e.refs++
	return e
}

// Release decrements e's bookkeeping reference count. A count that goes
// negative is not fatal — nothing downstream depends on it — so callers
// that over-release do not crash; see RefCount for inspecting the result.
func (e *Expr) Release() {
	if e == nil {
		return
	}
	e.refs--
}

// RefCount returns e's current bookkeeping reference count.
func (e *Expr) RefCount() int32 {
	if e == nil {
		return 0
	}
	return e.refs
}

func newExpr(t Type, k ExprKind) *Expr {
	return &Expr{Type: t, Kind: k, refs: 1}
}

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

// IntImm is a signed integer literal.
type IntImm struct{ Value int64 }

func (IntImm) exprKind() {}

// NewIntImm constructs a signed integer literal of type t.
func NewIntImm(t Type, v int64) (*Expr, error) {
	if t.Kind != Int {
		return nil, &MalformedError{"IntImm", "type must be Int"}
	}
	return newExpr(t, IntImm{v}), nil
}

// UIntImm is an unsigned integer literal.
type UIntImm struct{ Value uint64 }

func (UIntImm) exprKind() {}

// NewUIntImm constructs an unsigned integer literal of type t.
func NewUIntImm(t Type, v uint64) (*Expr, error) {
	if t.Kind != UInt {
		return nil, &MalformedError{"UIntImm", "type must be UInt"}
	}
	return newExpr(t, UIntImm{v}), nil
}

// FloatImm is a floating-point literal.
type FloatImm struct{ Value float64 }

func (FloatImm) exprKind() {}

// NewFloatImm constructs a floating-point literal of type t.
func NewFloatImm(t Type, v float64) (*Expr, error) {
	if t.Kind != Float {
		return nil, &MalformedError{"FloatImm", "type must be Float"}
	}
	return newExpr(t, FloatImm{v}), nil
}

// ---------------------------------------------------------------------------
// Variable
// ---------------------------------------------------------------------------

// Variable references a name bound by a surrounding Let, LetStmt, For,
// schedule parameter, function argument, or buffer meta-variable.
type Variable struct{ Name string }

func (Variable) exprKind() {}

// NewVariable constructs a Variable reference of type t.
func NewVariable(t Type, name string) *Expr {
	return newExpr(t, Variable{name})
}

// ---------------------------------------------------------------------------
// Cast
// ---------------------------------------------------------------------------

// Cast converts Value to the node's Type.
type Cast struct{ Value *Expr }

func (Cast) exprKind() {}

// NewCast constructs a Cast of value to type t. A Cast of t(v) to t(v) is
// legal (a no-op).
func NewCast(t Type, value *Expr) (*Expr, error) {
	if value == nil {
		return nil, &MalformedError{"Cast", "value must not be nil"}
	}
	return newExpr(t, Cast{value}), nil
}

// ---------------------------------------------------------------------------
// Binary arithmetic
// ---------------------------------------------------------------------------

// BinOp identifies a binary arithmetic, comparison or logical operator.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpMin
	OpMax
	OpEQ
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
	OpAnd
	OpOr
)

func (op BinOp) String() string {
	names := [...]string{"+", "-", "*", "/", "%", "min", "max", "==", "!=", "<", "<=", ">", ">=", "&&", "||"}
	if int(op) < len(names) {
		return names[op]
	}
	return fmt.Sprintf("BinOp(%d)", uint8(op))
}

// IsArith reports whether op is one of Add/Sub/Mul/Div/Mod/Min/Max, whose
// operands and result must share a single Type.
func (op BinOp) IsArith() bool {
	return op <= OpMax
}

// IsComparison reports whether op is one of EQ/NE/LT/LE/GT/GE.
func (op BinOp) IsComparison() bool {
	return op >= OpEQ && op <= OpGE
}

// IsLogical reports whether op is one of And/Or.
func (op BinOp) IsLogical() bool {
	return op == OpAnd || op == OpOr
}

// BinaryExpr covers Add, Sub, Mul, Div, Mod, Min, Max (arithmetic, operands
// share the result type), EQ, NE, LT, LE, GT, GE (comparisons, result is
// bool) and And, Or (logical, operands must be bool).
type BinaryExpr struct {
	Op   BinOp
	A, B *Expr
}

func (BinaryExpr) exprKind() {}

// NewBinary constructs a binary expression, validating the given op's
// operand-typing invariants.
func NewBinary(op BinOp, a, b *Expr) (*Expr, error) {
	if a == nil || b == nil {
		return nil, &MalformedError{op.String(), "operands must not be nil"}
	}
	switch {
	case op.IsArith():
		if !a.Type.Equal(b.Type) {
			return nil, &MalformedError{op.String(), "both operands must have equal type"}
		}
		return newExpr(a.Type, BinaryExpr{op, a, b}), nil
	case op.IsComparison():
		if !a.Type.Equal(b.Type) {
			return nil, &MalformedError{op.String(), "both operands must have equal type"}
		}
		return newExpr(Bool.Widen(a.Type.Lanes), BinaryExpr{op, a, b}), nil
	case op.IsLogical():
		if !a.Type.IsBool() || !b.Type.IsBool() {
			return nil, &MalformedError{op.String(), "operands must be bool"}
		}
		if a.Type.Lanes != b.Type.Lanes {
			return nil, &MalformedError{op.String(), "operands must have equal lanes"}
		}
		return newExpr(a.Type, BinaryExpr{op, a, b}), nil
	default:
		return nil, &MalformedError{op.String(), "unknown binary operator"}
	}
}

// ---------------------------------------------------------------------------
// Not
// ---------------------------------------------------------------------------

// NotExpr is logical negation; its operand must be bool.
type NotExpr struct{ Value *Expr }

func (NotExpr) exprKind() {}

// NewNot constructs a Not expression.
func NewNot(value *Expr) (*Expr, error) {
	if value == nil {
		return nil, &MalformedError{"Not", "value must not be nil"}
	}
	if !value.Type.IsBool() {
		return nil, &MalformedError{"Not", "operand must be bool"}
	}
	return newExpr(value.Type, NotExpr{value}), nil
}

// ---------------------------------------------------------------------------
// Select
// ---------------------------------------------------------------------------

// SelectExpr chooses TrueValue or FalseValue lane-wise according to Cond.
// TrueValue and FalseValue share the result type; Cond is either scalar bool
// or a bool vector of the same width as the values.
type SelectExpr struct {
	Cond, TrueValue, FalseValue *Expr
}

func (SelectExpr) exprKind() {}

// NewSelect constructs a Select expression.
func NewSelect(cond, t, f *Expr) (*Expr, error) {
	if cond == nil || t == nil || f == nil {
		return nil, &MalformedError{"Select", "operands must not be nil"}
	}
	if !cond.Type.IsBool() {
		return nil, &MalformedError{"Select", "cond must be bool"}
	}
	if !t.Type.Equal(f.Type) {
		return nil, &MalformedError{"Select", "true_value and false_value must share a type"}
	}
	if !cond.Type.IsScalar() && cond.Type.Lanes != t.Type.Lanes {
		return nil, &MalformedError{"Select", "cond must be scalar or match the value lanes"}
	}
	return newExpr(t.Type, SelectExpr{cond, t, f}), nil
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

// LoadExpr reads Type from the 1-D array BufferName at Index.
type LoadExpr struct {
	BufferName string
	Index      *Expr
}

func (LoadExpr) exprKind() {}

// NewLoad constructs a Load expression. lanes(index) must equal lanes(type).
func NewLoad(t Type, bufferName string, index *Expr) (*Expr, error) {
	if index == nil {
		return nil, &MalformedError{"Load", "index must not be nil"}
	}
	if index.Type.Lanes != t.Lanes {
		return nil, &MalformedError{"Load", "lanes(index) must equal lanes(type)"}
	}
	return newExpr(t, LoadExpr{bufferName, index}), nil
}

// ---------------------------------------------------------------------------
// Ramp / Broadcast
// ---------------------------------------------------------------------------

// RampExpr is the vector ⟨base, base+stride, ..., base+(lanes-1)*stride⟩.
type RampExpr struct {
	Base, Stride *Expr
	Lanes        uint32
}

func (RampExpr) exprKind() {}

// NewRamp constructs a Ramp expression; Lanes must be ≥ 2 and Base/Stride
// must be scalars of the same scalar type.
func NewRamp(base, stride *Expr, lanes uint32) (*Expr, error) {
	if base == nil || stride == nil {
		return nil, &MalformedError{"Ramp", "base and stride must not be nil"}
	}
	if lanes < 2 {
		return nil, &MalformedError{"Ramp", "lanes must be >= 2"}
	}
	if !base.Type.IsScalar() || !stride.Type.IsScalar() {
		return nil, &MalformedError{"Ramp", "base and stride must be scalar"}
	}
	if !base.Type.Equal(stride.Type) {
		return nil, &MalformedError{"Ramp", "base and stride must share a scalar type"}
	}
	return newExpr(base.Type.Widen(lanes), RampExpr{base, stride, lanes}), nil
}

// BroadcastExpr is a Lanes-wide vector with every lane equal to Value.
type BroadcastExpr struct {
	Value *Expr
	Lanes uint32
}

func (BroadcastExpr) exprKind() {}

// NewBroadcast constructs a Broadcast expression; Lanes must be ≥ 2.
func NewBroadcast(value *Expr, lanes uint32) (*Expr, error) {
	if value == nil {
		return nil, &MalformedError{"Broadcast", "value must not be nil"}
	}
	if lanes < 2 {
		return nil, &MalformedError{"Broadcast", "lanes must be >= 2"}
	}
	return newExpr(value.Type.Widen(lanes), BroadcastExpr{value, lanes}), nil
}

// ---------------------------------------------------------------------------
// Call
// ---------------------------------------------------------------------------

// CallKind distinguishes the three kinds of Call.
type CallKind uint8

const (
	// CallImage denotes a read from an external buffer.
	CallImage CallKind = iota
	// CallExtern denotes a foreign function invocation, opaque to analyses
	// other than type.
	CallExtern
	// CallHalide denotes a read from another function in the environment.
	CallHalide
)

func (k CallKind) String() string {
	switch k {
	case CallImage:
		return "Image"
	case CallExtern:
		return "Extern"
	case CallHalide:
		return "Halide"
	default:
		return fmt.Sprintf("CallKind(%d)", uint8(k))
	}
}

// CallExpr is a call of the given Kind, named Name, with argument
// expressions Args.
type CallExpr struct {
	Name string
	Args []*Expr
	Kind CallKind
}

func (CallExpr) exprKind() {}

// NewCall constructs a Call expression.
func NewCall(t Type, name string, args []*Expr, kind CallKind) (*Expr, error) {
	for i, a := range args {
		if a == nil {
			return nil, &MalformedError{"Call", fmt.Sprintf("arg %d must not be nil", i)}
		}
	}
	return newExpr(t, CallExpr{name, args, kind}), nil
}

// ---------------------------------------------------------------------------
// Let
// ---------------------------------------------------------------------------

// LetExpr binds Name to Value within Body; the Let's type equals Body's
// type.
type LetExpr struct {
	Name  string
	Value *Expr
	Body  *Expr
}

func (LetExpr) exprKind() {}

// NewLet constructs a Let expression.
func NewLet(name string, value, body *Expr) (*Expr, error) {
	if value == nil || body == nil {
		return nil, &MalformedError{"Let", "value and body must not be nil"}
	}
	return newExpr(body.Type, LetExpr{name, value, body}), nil
}
