package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders e as canonical text. Binary arithmetic/comparison/logical
// nodes are fully parenthesized with an operator-specific spacing
// convention: Add/Sub/Mod/comparisons/logical ops are spaced ("a + b"),
// Mul/Div are not ("a*b"), so (x+3)*(y/2+17) prints as
// "((x + 3)*((y/2) + 17))". Downstream tooling parses this form; treat it
// as a contract.
func Print(e *Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

// PrintStmtTree renders stmt as canonical, indented text, mirroring the
// reference printer's statement visitor (do_indent/endl per node).
func PrintStmtTree(s *Stmt) string {
	var b strings.Builder
	writeStmt(&b, s, 0)
	return b.String()
}

func spacedOp(op BinOp) string {
	switch op {
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpAdd:
		return " + "
	case OpSub:
		return " - "
	case OpMod:
		return " % "
	case OpEQ:
		return " == "
	case OpNE:
		return " != "
	case OpLT:
		return " < "
	case OpLE:
		return " <= "
	case OpGT:
		return " > "
	case OpGE:
		return " >= "
	case OpAnd:
		return " && "
	case OpOr:
		return " || "
	default:
		return " ? "
	}
}

func writeExpr(b *strings.Builder, e *Expr) {
	if e == nil {
		b.WriteString("<undef>")
		return
	}
	switch k := e.Kind.(type) {
	case IntImm:
		b.WriteString(strconv.FormatInt(k.Value, 10))
	case UIntImm:
		b.WriteString(strconv.FormatUint(k.Value, 10))
	case FloatImm:
		b.WriteString(strconv.FormatFloat(k.Value, 'g', -1, 64))
	case Variable:
		b.WriteString(k.Name)
	case Cast:
		b.WriteString(e.Type.String())
		b.WriteByte('(')
		writeExpr(b, k.Value)
		b.WriteByte(')')
	case BinaryExpr:
		switch k.Op {
		case OpMin:
			b.WriteString("min(")
			writeExpr(b, k.A)
			b.WriteString(", ")
			writeExpr(b, k.B)
			b.WriteByte(')')
		case OpMax:
			b.WriteString("max(")
			writeExpr(b, k.A)
			b.WriteString(", ")
			writeExpr(b, k.B)
			b.WriteByte(')')
		default:
			b.WriteByte('(')
			writeExpr(b, k.A)
			b.WriteString(spacedOp(k.Op))
			writeExpr(b, k.B)
			b.WriteByte(')')
		}
	case NotExpr:
		b.WriteByte('!')
		writeExpr(b, k.Value)
	case SelectExpr:
		b.WriteString("select(")
		writeExpr(b, k.Cond)
		b.WriteString(", ")
		writeExpr(b, k.TrueValue)
		b.WriteString(", ")
		writeExpr(b, k.FalseValue)
		b.WriteByte(')')
	case LoadExpr:
		b.WriteString(k.BufferName)
		b.WriteByte('[')
		writeExpr(b, k.Index)
		b.WriteByte(']')
	case RampExpr:
		b.WriteString("ramp(")
		writeExpr(b, k.Base)
		b.WriteString(", ")
		writeExpr(b, k.Stride)
		fmt.Fprintf(b, ", %d)", k.Lanes)
	case BroadcastExpr:
		b.WriteString("broadcast(")
		writeExpr(b, k.Value)
		fmt.Fprintf(b, ", %d)", k.Lanes)
	case CallExpr:
		b.WriteString(k.Name)
		b.WriteByte('(')
		for i, a := range k.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, a)
		}
		b.WriteByte(')')
	case LetExpr:
		b.WriteString("(let ")
		b.WriteString(k.Name)
		b.WriteString(" = ")
		writeExpr(b, k.Value)
		b.WriteString(" in ")
		writeExpr(b, k.Body)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<unknown expr %T>", k)
	}
}

func doIndent(b *strings.Builder, indent int) {
	for i := 0; i < indent; i++ {
		b.WriteByte(' ')
	}
}

func writeStmt(b *strings.Builder, s *Stmt, indent int) {
	if s == nil {
		return
	}
	switch k := s.Kind.(type) {
	case LetStmtKind:
		doIndent(b, indent)
		b.WriteString("let ")
		b.WriteString(k.Name)
		b.WriteString(" = ")
		writeExpr(b, k.Value)
		b.WriteByte('\n')
		writeStmt(b, k.Body, indent)
	case PrintStmtKind:
		doIndent(b, indent)
		b.WriteString("print(")
		b.WriteString(k.Prefix)
		for _, a := range k.Args {
			b.WriteString(", ")
			writeExpr(b, a)
		}
		b.WriteString(")\n")
	case AssertStmtKind:
		doIndent(b, indent)
		b.WriteString("assert(")
		writeExpr(b, k.Cond)
		fmt.Fprintf(b, ", %q)\n", k.Message)
	case PipelineKind:
		doIndent(b, indent)
		fmt.Fprintf(b, "produce %s {\n", k.Buffer)
		writeStmt(b, k.Produce, indent+2)
		if k.Update != nil {
			doIndent(b, indent)
			b.WriteString("} update {\n")
			writeStmt(b, k.Update, indent+2)
		}
		doIndent(b, indent)
		b.WriteString("} consume {\n")
		writeStmt(b, k.Consume, indent+2)
		doIndent(b, indent)
		b.WriteString("}\n")
	case ForStmtKind:
		doIndent(b, indent)
		fmt.Fprintf(b, "%s (%s, ", k.ForKind, k.Name)
		writeExpr(b, k.Min)
		b.WriteString(", ")
		writeExpr(b, k.Extent)
		b.WriteString(") {\n")
		writeStmt(b, k.Body, indent+2)
		doIndent(b, indent)
		b.WriteString("}\n")
	case StoreStmtKind:
		doIndent(b, indent)
		b.WriteString(k.Buffer)
		b.WriteByte('[')
		writeExpr(b, k.Index)
		b.WriteString("] = ")
		writeExpr(b, k.Value)
		b.WriteByte('\n')
	case ProvideStmtKind:
		doIndent(b, indent)
		b.WriteString(k.Buffer)
		b.WriteByte('(')
		for i, a := range k.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, a)
		}
		b.WriteString(") = ")
		writeExpr(b, k.Value)
		b.WriteByte('\n')
	case AllocateStmtKind:
		doIndent(b, indent)
		fmt.Fprintf(b, "allocate %s[%s * ", k.Buffer, k.Type)
		writeExpr(b, k.Size)
		b.WriteString("]\n")
		writeStmt(b, k.Body, indent)
		doIndent(b, indent)
		fmt.Fprintf(b, "free %s\n", k.Buffer)
	case RealizeStmtKind:
		doIndent(b, indent)
		fmt.Fprintf(b, "realize %s(", k.Buffer)
		for i, bd := range k.Bounds {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('[')
			writeExpr(b, bd.Min)
			b.WriteString(", ")
			writeExpr(b, bd.Extent)
			b.WriteByte(']')
		}
		b.WriteString(") {\n")
		writeStmt(b, k.Body, indent+2)
		doIndent(b, indent)
		b.WriteString("}\n")
	case BlockStmtKind:
		writeStmt(b, k.First, indent)
		writeStmt(b, k.Rest, indent)
	default:
		doIndent(b, indent)
		fmt.Fprintf(b, "<unknown stmt %T>\n", k)
	}
}
