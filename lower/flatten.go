package lower

import (
	"strconv"

	"github.com/loomlang/loomc/ir"
)

// FlattenStorage rewrites every Realize/Provide/Call(Halide) in stmt to
// its 1-D Allocate/Store/Load form, computing strides left-to-right (stride[0] = 1, stride[i] = stride[i-1]*extent[i-1]) and
// carrying each buffer's per-dimension min/stride as it descends so nested
// Provide/Call sites under a Realize can compute their flat index.
func FlattenStorage(stmt *ir.Stmt) (*ir.Stmt, error) {
	f := &flattener{bufs: make(map[string]*bufLayout)}
	f.Self = f
	return f.MutateStmt(stmt)
}

// bufLayout records the min and stride expressions bound for a buffer's
// dimensions, so descendant Provide/Call nodes can build flat indices.
type bufLayout struct {
	mins    []*ir.Expr
	strides []*ir.Expr
}

type flattener struct {
	ir.BaseMutator
	bufs map[string]*bufLayout
}

// layoutFor returns the layout registered by an enclosing Realize, or a
// convention-named one for buffers with no Realize in scope: the output
// function and external buffers have their buf.min.i / buf.stride.i
// variables supplied by the caller rather than by flattened LetStmts.
func (f *flattener) layoutFor(buf string, rank int) *bufLayout {
	if l, ok := f.bufs[buf]; ok {
		return l
	}
	l := &bufLayout{mins: make([]*ir.Expr, rank), strides: make([]*ir.Expr, rank)}
	for i := 0; i < rank; i++ {
		l.mins[i] = ir.NewVariable(ir.Int32, flatMinName(buf, i))
		l.strides[i] = ir.NewVariable(ir.Int32, flatStrideName(buf, i))
	}
	return l
}

func (f *flattener) MutateStmt(s *ir.Stmt) (*ir.Stmt, error) {
	if s == nil {
		return nil, nil
	}
	switch k := s.Kind.(type) {
	case ir.RealizeStmtKind:
		return f.flattenRealize(k)
	case ir.ProvideStmtKind:
		return f.flattenProvide(k)
	default:
		return ir.MutateStmtChildren(f, s)
	}
}

func (f *flattener) flattenRealize(rk ir.RealizeStmtKind) (*ir.Stmt, error) {
	n := len(rk.Bounds)
	mins := make([]*ir.Expr, n)
	extents := make([]*ir.Expr, n)
	strides := make([]*ir.Expr, n)
	for i := range rk.Bounds {
		mins[i] = ir.NewVariable(ir.Int32, flatMinName(rk.Buffer, i))
		extents[i] = ir.NewVariable(ir.Int32, flatExtentName(rk.Buffer, i))
		strides[i] = ir.NewVariable(ir.Int32, flatStrideName(rk.Buffer, i))
	}

	prevLayout, hadPrev := f.bufs[rk.Buffer]
	f.bufs[rk.Buffer] = &bufLayout{mins: mins, strides: strides}
	body, err := f.MutateStmt(rk.Body)
	if hadPrev {
		f.bufs[rk.Buffer] = prevLayout
	} else {
		delete(f.bufs, rk.Buffer)
	}
	if err != nil {
		return nil, err
	}

	size := extents[0]
	for i := 1; i < n; i++ {
		var err error
		size, err = mul(size, extents[i])
		if err != nil {
			return nil, err
		}
	}
	if n == 0 {
		size = intConst(1)
	}
	allocated, err := ir.Allocate(rk.Buffer, rk.Type, size, body)
	if err != nil {
		return nil, err
	}

	result := allocated
	for i := n - 1; i >= 1; i-- {
		strideExpr, err := mul(strides[i-1], extents[i-1])
		if err != nil {
			return nil, err
		}
		result, err = ir.LetStmt(flatStrideName(rk.Buffer, i), strideExpr, result)
		if err != nil {
			return nil, err
		}
	}
	if n > 0 {
		var err error
		result, err = ir.LetStmt(flatStrideName(rk.Buffer, 0), intConst(1), result)
		if err != nil {
			return nil, err
		}
	}
	for i := n - 1; i >= 0; i-- {
		var err error
		result, err = ir.LetStmt(flatExtentName(rk.Buffer, i), rk.Bounds[i].Extent, result)
		if err != nil {
			return nil, err
		}
		result, err = ir.LetStmt(flatMinName(rk.Buffer, i), rk.Bounds[i].Min, result)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (f *flattener) MutateExpr(e *ir.Expr) (*ir.Expr, error) {
	if e == nil {
		return nil, nil
	}
	c, ok := e.Kind.(ir.CallExpr)
	if !ok || c.Kind != ir.CallHalide {
		return ir.MutateExprChildren(f, e)
	}
	args := make([]*ir.Expr, len(c.Args))
	for i, a := range c.Args {
		na, err := f.MutateExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = na
	}
	idx, err := flatIndex(f.layoutFor(c.Name, len(args)), args)
	if err != nil {
		return nil, err
	}
	return ir.NewLoad(e.Type, c.Name, idx)
}

// flattenProvide rewrites a Provide into a Store. MutateStmt dispatches
// ProvideStmtKind here instead of to the generic fallback, so this function
// flattens the Value and Args through f.MutateExpr itself before computing
// the flat index from the buffer's layout.
func (f *flattener) flattenProvide(p ir.ProvideStmtKind) (*ir.Stmt, error) {
	value, err := f.MutateExpr(p.Value)
	if err != nil {
		return nil, err
	}
	args := make([]*ir.Expr, len(p.Args))
	for i, a := range p.Args {
		na, err := f.MutateExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = na
	}
	idx, err := flatIndex(f.layoutFor(p.Buffer, len(args)), args)
	if err != nil {
		return nil, err
	}
	return ir.Store(p.Buffer, value, idx)
}

// flatIndex computes Σ_i (args[i] - layout.mins[i]) * layout.strides[i].
func flatIndex(layout *bufLayout, args []*ir.Expr) (*ir.Expr, error) {
	var total *ir.Expr
	for i, a := range args {
		diff, err := sub(a, layout.mins[i])
		if err != nil {
			return nil, err
		}
		term, err := mul(diff, layout.strides[i])
		if err != nil {
			return nil, err
		}
		if total == nil {
			total = term
			continue
		}
		total, err = add(total, term)
		if err != nil {
			return nil, err
		}
	}
	if total == nil {
		return intConst(0), nil
	}
	return total, nil
}

func flatMinName(buf string, i int) string    { return flatDimName(buf, "min", i) }
func flatExtentName(buf string, i int) string { return flatDimName(buf, "extent", i) }
func flatStrideName(buf string, i int) string { return flatDimName(buf, "stride", i) }

func flatDimName(buf, field string, i int) string {
	return buf + "." + field + "." + strconv.Itoa(i)
}
