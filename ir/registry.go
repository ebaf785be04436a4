package ir

import "strconv"

// ExprRegistry deduplicates leaf expressions (IntImm, UIntImm, FloatImm,
// Variable) so that repeated construction of, say, the same small integer
// constant through Intern shares one handle rather than allocating a new
// node each time, and identical interned leaves are identical pointers. The
// passes in package lower build their leaves directly and do not intern them.
//
// Only leaves are interned: interior nodes (BinaryExpr, Let, Call, ...)
// already get sharing for free from the Mutator's "rebuild only if a child
// changed" discipline in visitor.go, so interning them here would just
// duplicate that bookkeeping.
type ExprRegistry struct {
	leaves map[string]*Expr
	keyBuf []byte
}

// NewExprRegistry creates an empty registry.
func NewExprRegistry() *ExprRegistry {
	return &ExprRegistry{
		leaves: make(map[string]*Expr, 16),
		keyBuf: make([]byte, 0, 64),
	}
}

// Intern returns a shared *Expr for e if an equal leaf was already
// registered, registering e itself otherwise. Interior nodes (anything
// whose Kind is not one of the four leaf kinds) are returned unchanged.
func (r *ExprRegistry) Intern(e *Expr) *Expr {
	if e == nil {
		return nil
	}
	key, ok := r.leafKey(e)
	if !ok {
		return e
	}
	if existing, found := r.leaves[key]; found {
		return existing
	}
	r.leaves[key] = e
	return e
}

// Count returns the number of distinct leaves interned so far.
func (r *ExprRegistry) Count() int {
	return len(r.leaves)
}

func (r *ExprRegistry) leafKey(e *Expr) (string, bool) {
	b := r.keyBuf[:0]
	switch k := e.Kind.(type) {
	case IntImm:
		b = append(b, "i:"...)
		b = appendType(b, e.Type)
		b = append(b, ':')
		b = strconv.AppendInt(b, k.Value, 10)
	case UIntImm:
		b = append(b, "u:"...)
		b = appendType(b, e.Type)
		b = append(b, ':')
		b = strconv.AppendUint(b, k.Value, 10)
	case FloatImm:
		b = append(b, "f:"...)
		b = appendType(b, e.Type)
		b = append(b, ':')
		b = strconv.AppendFloat(b, k.Value, 'g', -1, 64)
	case Variable:
		b = append(b, "v:"...)
		b = appendType(b, e.Type)
		b = append(b, ':')
		b = append(b, k.Name...)
	default:
		r.keyBuf = b
		return "", false
	}
	r.keyBuf = b
	return string(b), true
}

func appendType(b []byte, t Type) []byte {
	b = strconv.AppendInt(b, int64(t.Kind), 10)
	b = append(b, '/')
	b = strconv.AppendUint(b, uint64(t.Bits), 10)
	b = append(b, '/')
	b = strconv.AppendUint(b, uint64(t.Lanes), 10)
	return b
}
