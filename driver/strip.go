package driver

import "github.com/loomlang/loomc/ir"

// stripDebug removes AssertStmt and PrintStmt nodes from stmt. Debug
// statements pass through every lowering pass untouched; callers that want
// a release-shaped tree opt in via Options.StripDebug. Returns nil when
// stmt itself reduces to nothing. A debug statement occupying a position
// that must stay non-nil (a loop body consisting of a lone PrintStmt, say)
// is kept rather than leaving the parent malformed.
func stripDebug(s *ir.Stmt) (*ir.Stmt, error) {
	if s == nil {
		return nil, nil
	}
	switch k := s.Kind.(type) {
	case ir.AssertStmtKind, ir.PrintStmtKind:
		return nil, nil
	case ir.BlockStmtKind:
		first, err := stripDebug(k.First)
		if err != nil {
			return nil, err
		}
		rest, err := stripDebug(k.Rest)
		if err != nil {
			return nil, err
		}
		switch {
		case first == nil:
			return rest, nil
		case rest == nil && k.Rest != nil:
			return first, nil
		case first == k.First && rest == k.Rest:
			return s, nil
		}
		return ir.BlockStmt(first, rest)
	case ir.LetStmtKind:
		body, err := stripRequired(k.Body)
		if err != nil {
			return nil, err
		}
		if body == k.Body {
			return s, nil
		}
		return ir.LetStmt(k.Name, k.Value, body)
	case ir.ForStmtKind:
		body, err := stripRequired(k.Body)
		if err != nil {
			return nil, err
		}
		if body == k.Body {
			return s, nil
		}
		return ir.For(k.Name, k.Min, k.Extent, k.ForKind, body)
	case ir.AllocateStmtKind:
		body, err := stripRequired(k.Body)
		if err != nil {
			return nil, err
		}
		if body == k.Body {
			return s, nil
		}
		return ir.Allocate(k.Buffer, k.Type, k.Size, body)
	case ir.RealizeStmtKind:
		body, err := stripRequired(k.Body)
		if err != nil {
			return nil, err
		}
		if body == k.Body {
			return s, nil
		}
		return ir.Realize(k.Buffer, k.Type, k.Bounds, body)
	case ir.PipelineKind:
		produce, err := stripRequired(k.Produce)
		if err != nil {
			return nil, err
		}
		update, err := stripDebug(k.Update)
		if err != nil {
			return nil, err
		}
		consume, err := stripRequired(k.Consume)
		if err != nil {
			return nil, err
		}
		if produce == k.Produce && update == k.Update && consume == k.Consume {
			return s, nil
		}
		return ir.Pipeline(k.Buffer, produce, update, consume)
	}
	return s, nil
}

// stripRequired is stripDebug for positions the IR requires to be non-nil:
// when stripping would empty the slot, the original statement is kept.
func stripRequired(s *ir.Stmt) (*ir.Stmt, error) {
	stripped, err := stripDebug(s)
	if err != nil {
		return nil, err
	}
	if stripped == nil {
		return s, nil
	}
	return stripped, nil
}
