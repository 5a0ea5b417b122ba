package mir

import (
	"fmt"
	"io"
	"strings"

	"rill/internal/source"
)

// DumpBody writes a deterministic textual form of one body. Edge
// labels come from FmtSuccessorLabels, so the dump and the traversal
// order agree by construction.
func DumpBody(w io.Writer, b *Body, names *source.Interner, projs *ProjInterner) error {
	if w == nil || b == nil {
		return nil
	}
	p := &printer{w: w, names: names, projs: projs}

	fmt.Fprintf(w, "fn %v (phase: %s, args: %d):\n", b.Def, b.Phase, b.ArgCount)
	for i := range b.Locals {
		l := &b.Locals[i]
		mut := ""
		if l.Mutable {
			mut = "mut "
		}
		kind := ""
		switch b.LocalKind(Local(i)) {
		case LocalReturnPointer:
			kind = " // return place"
		case LocalArg:
			kind = fmt.Sprintf(" // arg %q", p.name(l.Name))
		case LocalVar:
			kind = fmt.Sprintf(" // var %q", p.name(l.Name))
		}
		fmt.Fprintf(w, "  let %s_%d: t%d;%s\n", mut, i, l.Ty, kind)
	}

	for i := range b.Blocks {
		data := &b.Blocks[i]
		cleanup := ""
		if data.IsCleanup {
			cleanup = " (cleanup)"
		}
		fmt.Fprintf(w, "\n  bb%d%s: {\n", i, cleanup)
		for j := range data.Statements {
			fmt.Fprintf(w, "    %s;\n", p.statement(&data.Statements[j]))
		}
		fmt.Fprintf(w, "    %s;\n", p.terminator(&data.Terminator))
		fmt.Fprintf(w, "  }\n")
	}
	return nil
}

type printer struct {
	w     io.Writer
	names *source.Interner
	projs *ProjInterner
}

func (p *printer) name(s source.StringID) string {
	if p.names == nil {
		return "?"
	}
	if str, ok := p.names.Lookup(s); ok {
		return str
	}
	return "?"
}

func (p *printer) place(pl Place) string {
	out := fmt.Sprintf("_%d", pl.Local)
	if p.projs == nil {
		return out
	}
	for _, e := range p.projs.Elems(pl.Proj) {
		switch e.Kind {
		case ProjDeref:
			out = "(*" + out + ")"
		case ProjField:
			out = fmt.Sprintf("%s.%d", out, e.Field)
		case ProjIndex:
			out = fmt.Sprintf("%s[_%d]", out, e.Index)
		case ProjConstantIndex:
			if e.FromEnd {
				out = fmt.Sprintf("%s[-%d of %d]", out, e.Offset, e.MinLength)
			} else {
				out = fmt.Sprintf("%s[%d of %d]", out, e.Offset, e.MinLength)
			}
		case ProjSubslice:
			out = fmt.Sprintf("%s[%d:%d]", out, e.From, e.To)
		case ProjDowncast:
			out = fmt.Sprintf("(%s as variant#%d)", out, e.Variant)
		}
	}
	return out
}

func (p *printer) operand(op *Operand) string {
	switch op.Kind {
	case OperandCopy:
		return p.place(op.Place)
	case OperandMove:
		return "move " + p.place(op.Place)
	case OperandConst:
		return p.constant(&op.Const)
	}
	return "?"
}

func (p *printer) constant(c *Const) string {
	switch c.Kind {
	case ConstBool:
		return fmt.Sprintf("const %t", c.Bool)
	case ConstStr:
		return fmt.Sprintf("const %q", c.Text)
	case ConstUnit:
		return "const ()"
	case ConstFn:
		return fmt.Sprintf("const fn#%v", c.Fn)
	default:
		return "const " + c.Text
	}
}

func (p *printer) rvalue(rv *Rvalue) string {
	switch rv.Kind {
	case RvalUse:
		return p.operand(&rv.Use)
	case RvalRepeat:
		return fmt.Sprintf("[%s; %d]", p.operand(&rv.Repeat.Elem), rv.Repeat.Count)
	case RvalRef:
		prefix := "&"
		switch rv.Ref.Borrow {
		case BorrowShallow:
			prefix = "&shallow "
		case BorrowUnique:
			prefix = "&uniq "
		case BorrowMut:
			prefix = "&mut "
			if rv.Ref.TwoPhase {
				prefix = "&two-phase mut "
			}
		}
		return prefix + p.place(rv.Ref.Place)
	case RvalLen:
		return "Len(" + p.place(rv.Place) + ")"
	case RvalCast:
		return fmt.Sprintf("%s as t%d", p.operand(&rv.Cast.Source), rv.Cast.Ty)
	case RvalBinary:
		return fmt.Sprintf("Op(%d)(%s, %s)", rv.Binary.Op,
			p.operand(&rv.Binary.Lhs), p.operand(&rv.Binary.Rhs))
	case RvalCheckedBinary:
		return fmt.Sprintf("CheckedOp(%d)(%s, %s)", rv.Binary.Op,
			p.operand(&rv.Binary.Lhs), p.operand(&rv.Binary.Rhs))
	case RvalUnary:
		return fmt.Sprintf("UnOp(%d)(%s)", rv.Unary.Op, p.operand(&rv.Unary.Sub))
	case RvalDiscriminant:
		return "discriminant(" + p.place(rv.Place) + ")"
	case RvalAggregate:
		parts := make([]string, len(rv.Aggregate.Operands))
		for i := range rv.Aggregate.Operands {
			parts[i] = p.operand(&rv.Aggregate.Operands[i])
		}
		inner := strings.Join(parts, ", ")
		switch rv.Aggregate.Kind {
		case AggArray:
			return "[" + inner + "]"
		case AggTuple:
			return "(" + inner + ")"
		case AggAdt:
			return fmt.Sprintf("adt#%v::variant#%d(%s)", rv.Aggregate.Def, rv.Aggregate.Variant, inner)
		case AggClosure:
			return fmt.Sprintf("closure#%v(%s)", rv.Aggregate.Def, inner)
		case AggGenerator:
			return fmt.Sprintf("generator#%v(%s)", rv.Aggregate.Def, inner)
		}
	}
	return "?"
}

func (p *printer) statement(s *Statement) string {
	switch s.Kind {
	case StmtAssign:
		return fmt.Sprintf("%s = %s", p.place(s.Assign.Place), p.rvalue(&s.Assign.Rval))
	case StmtSetDiscriminant:
		return fmt.Sprintf("discriminant(%s) = %d", p.place(s.SetDiscriminant.Place), s.SetDiscriminant.Variant)
	case StmtStorageLive:
		return fmt.Sprintf("StorageLive(_%d)", s.Storage)
	case StmtStorageDead:
		return fmt.Sprintf("StorageDead(_%d)", s.Storage)
	case StmtNop:
		return "nop"
	}
	return "?"
}

func (p *printer) terminator(t *Terminator) string {
	head := p.terminatorHead(t)
	succs := t.Successors()
	if len(succs) == 0 {
		return head
	}
	labels := t.FmtSuccessorLabels()
	parts := make([]string, len(succs))
	for i, succ := range succs {
		if labels[i] == "" {
			parts[i] = fmt.Sprintf("bb%d", succ)
		} else {
			parts[i] = fmt.Sprintf("%s: bb%d", labels[i], succ)
		}
	}
	return fmt.Sprintf("%s -> [%s]", head, strings.Join(parts, ", "))
}

func (p *printer) terminatorHead(t *Terminator) string {
	switch t.Kind {
	case TermSwitchInt:
		return fmt.Sprintf("switchInt(%s)", p.operand(&t.SwitchInt.Disc))
	case TermDrop:
		return fmt.Sprintf("drop(%s)", p.place(t.Drop.Place))
	case TermDropAndReplace:
		return fmt.Sprintf("replace(%s <- %s)", p.place(t.DropAndReplace.Place),
			p.operand(&t.DropAndReplace.Value))
	case TermCall:
		args := make([]string, len(t.Call.Args))
		for i := range t.Call.Args {
			args[i] = p.operand(&t.Call.Args[i])
		}
		call := fmt.Sprintf("%s(%s)", p.operand(&t.Call.Func), strings.Join(args, ", "))
		if t.Call.HasDest {
			return fmt.Sprintf("%s = %s", p.place(t.Call.Dest), call)
		}
		return call
	case TermAssert:
		neg := ""
		if !t.Assert.Expected {
			neg = "!"
		}
		return fmt.Sprintf("assert(%s%s, %q)", neg, p.operand(&t.Assert.Cond), t.Assert.Msg)
	case TermYield:
		return fmt.Sprintf("yield(%s)", p.operand(&t.Yield.Value))
	default:
		return t.Kind.String()
	}
}
