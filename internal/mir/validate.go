package mir

import (
	"errors"
	"fmt"

	"rill/internal/diag"
)

// Validate checks the structural invariants of one body: local table
// shape, terminator presence, edge targets, SwitchInt arity, and that
// every referenced local exists. Every violation is reported and
// collection continues; on success the body advances to the validated
// phase.
func Validate(b *Body, rep diag.Reporter) error {
	if b == nil {
		return nil
	}
	var errs []error

	if len(b.Locals) <= b.ArgCount {
		err := fmt.Errorf("local table has %d slots for %d args and a return place",
			len(b.Locals), b.ArgCount)
		errs = append(errs, err)
		diag.Error(rep, diag.MirBadLocal, b.Span, err.Error())
	}

	for i := range b.Blocks {
		bb := BasicBlock(i)
		errs = append(errs, validateBlock(b, bb, rep)...)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	if b.Phase < MirPhaseValidated {
		if err := b.EnterPhase(MirPhaseValidated); err != nil {
			diag.Error(rep, diag.MirPhaseRegression, b.Span, err.Error())
			return err
		}
	}
	return nil
}

func validateBlock(b *Body, bb BasicBlock, rep diag.Reporter) []error {
	data := &b.Blocks[bb]
	var errs []error
	report := func(code diag.Code, format string, args ...any) {
		err := fmt.Errorf("bb%d: "+format, append([]any{bb}, args...)...)
		errs = append(errs, err)
		diag.Error(rep, code, data.Terminator.Span, err.Error())
	}

	term := &data.Terminator
	if term.Kind == TermNone {
		report(diag.MirUnterminatedBlock, "unterminated block")
		return errs
	}

	for _, succ := range term.Successors() {
		if succ < 0 || int(succ) >= len(b.Blocks) {
			report(diag.MirBadTarget, "%s target bb%d does not exist", term.Kind, succ)
		}
	}
	if term.Kind == TermSwitchInt {
		sw := &term.SwitchInt
		if len(sw.Targets) != len(sw.Values)+1 {
			report(diag.MirSwitchArity, "switchInt has %d targets for %d values; want values+1",
				len(sw.Targets), len(sw.Values))
		}
	}

	check := func(l Local, what string) {
		if l < 0 || int(l) >= len(b.Locals) {
			report(diag.MirBadLocal, "%s references local _%d outside the table", what, l)
		}
	}
	for si := range data.Statements {
		s := &data.Statements[si]
		switch s.Kind {
		case StmtAssign:
			check(s.Assign.Place.Local, "assign")
			visitRvalueLocals(&s.Assign.Rval, func(l Local) { check(l, "assign") })
		case StmtSetDiscriminant:
			check(s.SetDiscriminant.Place.Local, "set-discriminant")
		case StmtStorageLive, StmtStorageDead:
			check(s.Storage, "storage marker")
		}
	}
	visitTermLocals(term, func(l Local) { check(l, term.Kind.String()) })
	return errs
}

func visitOperandLocals(op *Operand, f func(Local)) {
	if op.Kind == OperandCopy || op.Kind == OperandMove {
		f(op.Place.Local)
	}
}

func visitRvalueLocals(rv *Rvalue, f func(Local)) {
	switch rv.Kind {
	case RvalUse:
		visitOperandLocals(&rv.Use, f)
	case RvalRepeat:
		visitOperandLocals(&rv.Repeat.Elem, f)
	case RvalRef:
		f(rv.Ref.Place.Local)
	case RvalLen, RvalDiscriminant:
		f(rv.Place.Local)
	case RvalCast:
		visitOperandLocals(&rv.Cast.Source, f)
	case RvalBinary, RvalCheckedBinary:
		visitOperandLocals(&rv.Binary.Lhs, f)
		visitOperandLocals(&rv.Binary.Rhs, f)
	case RvalUnary:
		visitOperandLocals(&rv.Unary.Sub, f)
	case RvalAggregate:
		for i := range rv.Aggregate.Operands {
			visitOperandLocals(&rv.Aggregate.Operands[i], f)
		}
	}
}

func visitTermLocals(t *Terminator, f func(Local)) {
	switch t.Kind {
	case TermSwitchInt:
		visitOperandLocals(&t.SwitchInt.Disc, f)
	case TermDrop:
		f(t.Drop.Place.Local)
	case TermDropAndReplace:
		f(t.DropAndReplace.Place.Local)
		visitOperandLocals(&t.DropAndReplace.Value, f)
	case TermCall:
		visitOperandLocals(&t.Call.Func, f)
		for i := range t.Call.Args {
			visitOperandLocals(&t.Call.Args[i], f)
		}
		if t.Call.HasDest {
			f(t.Call.Dest.Local)
		}
	case TermAssert:
		visitOperandLocals(&t.Assert.Cond, f)
	case TermYield:
		visitOperandLocals(&t.Yield.Value, f)
	}
}
