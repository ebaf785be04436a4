package ir

// substituteMutator replaces every Variable(name) with replacement. It
// does not attempt capture avoidance: callers fully qualify variable names
// before calling Substitute so that accidental capture can't occur. If a Let/LetStmt introduces the same name, descent into its body
// is omitted — the bound name there refers to the inner binding, not the
// one being substituted.
type substituteMutator struct {
	BaseMutator
	name        string
	replacement *Expr
}

func (s *substituteMutator) MutateExpr(e *Expr) (*Expr, error) {
	if e == nil {
		return nil, nil
	}
	switch k := e.Kind.(type) {
	case Variable:
		if k.Name == s.name {
			return s.replacement, nil
		}
		return e, nil
	case LetExpr:
		v, err := s.MutateExpr(k.Value)
		if err != nil {
			return nil, err
		}
		if k.Name == s.name {
			// The inner Let shadows the substituted name; body is left alone.
			if v == k.Value {
				return e, nil
			}
			return NewLet(k.Name, v, k.Body)
		}
		body, err := s.MutateExpr(k.Body)
		if err != nil {
			return nil, err
		}
		if v == k.Value && body == k.Body {
			return e, nil
		}
		return NewLet(k.Name, v, body)
	default:
		return MutateExprChildren(s, e)
	}
}

func (s *substituteMutator) MutateStmt(st *Stmt) (*Stmt, error) {
	if st == nil {
		return nil, nil
	}
	if ls, ok := st.Kind.(LetStmtKind); ok {
		v, err := s.MutateExpr(ls.Value)
		if err != nil {
			return nil, err
		}
		if ls.Name == s.name {
			if v == ls.Value {
				return st, nil
			}
			return LetStmt(ls.Name, v, ls.Body)
		}
		body, err := s.MutateStmt(ls.Body)
		if err != nil {
			return nil, err
		}
		if v == ls.Value && body == ls.Body {
			return st, nil
		}
		return LetStmt(ls.Name, v, body)
	}
	return MutateStmtChildren(s, st)
}

// Substitute returns a new expression tree with every Variable(name)
// replaced by replacement.
func Substitute(name string, replacement *Expr, in *Expr) (*Expr, error) {
	m := &substituteMutator{name: name, replacement: replacement}
	m.Self = m
	return m.MutateExpr(in)
}

// SubstituteStmt is Substitute's statement-tree overload.
func SubstituteStmt(name string, replacement *Expr, in *Stmt) (*Stmt, error) {
	m := &substituteMutator{name: name, replacement: replacement}
	m.Self = m
	return m.MutateStmt(in)
}

// SubstituteMap applies Substitute once for every entry of names, in Go's
// map iteration order, which is not fixed. Each step runs over the result
// of the previous one, so a replacement that mentions another key of names
// is itself rewritten when that key comes later; the result is independent
// of the order only when no replacement mentions another key.
func SubstituteMap(names map[string]*Expr, in *Expr) (*Expr, error) {
	result := in
	for name, repl := range names {
		var err error
		result, err = Substitute(name, repl, result)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// SubstituteMapStmt is SubstituteMap's statement-tree overload.
func SubstituteMapStmt(names map[string]*Expr, in *Stmt) (*Stmt, error) {
	result := in
	for name, repl := range names {
		var err error
		result, err = SubstituteStmt(name, repl, result)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
