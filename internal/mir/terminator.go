package mir

import (
	"strconv"

	"rill/internal/source"
	"rill/internal/ty"
)

type TermKind uint8

const (
	// TermNone marks a block still under construction.
	TermNone TermKind = iota
	TermGoto
	TermSwitchInt
	TermResume
	TermAbort
	TermReturn
	TermUnreachable
	TermDrop
	TermDropAndReplace
	TermCall
	TermAssert
	TermYield
	TermGeneratorDrop
	TermFalseEdges
	TermFalseUnwind
)

// Terminator is the control transfer ending a block: a kind tag plus a
// kind-specific payload.
type Terminator struct {
	Kind  TermKind
	Span  source.Span
	Scope SourceScope

	Goto           GotoTerm
	SwitchInt      SwitchIntTerm
	Drop           DropTerm
	DropAndReplace DropAndReplaceTerm
	Call           CallTerm
	Assert         AssertTerm
	Yield          YieldTerm
	FalseEdges     FalseEdgesTerm
	FalseUnwind    FalseUnwindTerm
}

type GotoTerm struct {
	Target BasicBlock
}

// SwitchIntTerm is the multi-way branch. Targets runs parallel to
// Values with one extra entry at the end, the otherwise target.
// Invariant: len(Targets) == len(Values)+1.
type SwitchIntTerm struct {
	Disc     Operand
	SwitchTy ty.TypeID
	Values   []uint64
	Targets  []BasicBlock
}

// OtherwiseTarget returns the fallback edge.
func (t *SwitchIntTerm) OtherwiseTarget() BasicBlock {
	return t.Targets[len(t.Targets)-1]
}

type DropTerm struct {
	Place  Place
	Target BasicBlock
	// Unwind is NoBlock when there is no cleanup edge.
	Unwind BasicBlock
}

type DropAndReplaceTerm struct {
	Place  Place
	Value  Operand
	Target BasicBlock
	Unwind BasicBlock
}

type CallTerm struct {
	Func Operand
	Args []Operand
	// HasDest gates Dest and Target together: a diverging call has
	// neither a destination place nor a continuation edge.
	HasDest bool
	Dest    Place
	Target  BasicBlock
	Cleanup BasicBlock
}

type AssertTerm struct {
	Cond     Operand
	Expected bool
	Msg      string
	Target   BasicBlock
	Cleanup  BasicBlock
}

type YieldTerm struct {
	Value  Operand
	Resume BasicBlock
	// Drop is the edge taken when the generator is dropped while
	// suspended here; NoBlock when the generator has no drop glue.
	Drop BasicBlock
}

// FalseEdgesTerm is a conservative branch inserted so borrow checking
// never reasons from incomplete match lowering: the imaginary targets
// are never taken at runtime.
type FalseEdgesTerm struct {
	Real      BasicBlock
	Imaginary []BasicBlock
}

// FalseUnwindTerm is the loop-body analogue: a never-taken unwind edge
// that keeps the analysis from assuming a loop cannot diverge.
type FalseUnwindTerm struct {
	Real   BasicBlock
	Unwind BasicBlock
}

// Successors returns the target blocks in the fixed per-kind order the
// printed form uses. FmtSuccessorLabels stays in lockstep.
func (t *Terminator) Successors() []BasicBlock {
	var out []BasicBlock
	for _, p := range t.successorSlots() {
		out = append(out, *p)
	}
	return out
}

// SuccessorsMut returns pointers to the target slots, in the same
// order as Successors, for passes that rewrite edges.
func (t *Terminator) SuccessorsMut() []*BasicBlock {
	return t.successorSlots()
}

func (t *Terminator) successorSlots() []*BasicBlock {
	switch t.Kind {
	case TermGoto:
		return []*BasicBlock{&t.Goto.Target}
	case TermSwitchInt:
		out := make([]*BasicBlock, len(t.SwitchInt.Targets))
		for i := range t.SwitchInt.Targets {
			out[i] = &t.SwitchInt.Targets[i]
		}
		return out
	case TermDrop:
		return withUnwind(&t.Drop.Target, &t.Drop.Unwind)
	case TermDropAndReplace:
		return withUnwind(&t.DropAndReplace.Target, &t.DropAndReplace.Unwind)
	case TermCall:
		var out []*BasicBlock
		if t.Call.HasDest {
			out = append(out, &t.Call.Target)
		}
		if t.Call.Cleanup != NoBlock {
			out = append(out, &t.Call.Cleanup)
		}
		return out
	case TermAssert:
		return withUnwind(&t.Assert.Target, &t.Assert.Cleanup)
	case TermYield:
		return withUnwind(&t.Yield.Resume, &t.Yield.Drop)
	case TermFalseEdges:
		out := []*BasicBlock{&t.FalseEdges.Real}
		for i := range t.FalseEdges.Imaginary {
			out = append(out, &t.FalseEdges.Imaginary[i])
		}
		return out
	case TermFalseUnwind:
		return withUnwind(&t.FalseUnwind.Real, &t.FalseUnwind.Unwind)
	default:
		// Resume, Abort, Return, Unreachable, GeneratorDrop, None.
		return nil
	}
}

func withUnwind(target, unwind *BasicBlock) []*BasicBlock {
	if *unwind == NoBlock {
		return []*BasicBlock{target}
	}
	return []*BasicBlock{target, unwind}
}

// FmtSuccessorLabels returns one edge label per successor, in the same
// order Successors uses; the dump and the graph algorithms must agree
// on which edge is which.
func (t *Terminator) FmtSuccessorLabels() []string {
	switch t.Kind {
	case TermGoto:
		return []string{""}
	case TermSwitchInt:
		out := make([]string, 0, len(t.SwitchInt.Targets))
		for _, v := range t.SwitchInt.Values {
			out = append(out, strconv.FormatUint(v, 10))
		}
		return append(out, "otherwise")
	case TermDrop, TermDropAndReplace:
		return returnUnwindLabels(t.Successors())
	case TermCall:
		var out []string
		if t.Call.HasDest {
			out = append(out, "return")
		}
		if t.Call.Cleanup != NoBlock {
			out = append(out, "unwind")
		}
		return out
	case TermAssert:
		return successUnwindLabels(t.Successors())
	case TermYield:
		if t.Yield.Drop == NoBlock {
			return []string{"resume"}
		}
		return []string{"resume", "drop"}
	case TermFalseEdges:
		out := []string{"real"}
		for range t.FalseEdges.Imaginary {
			out = append(out, "imaginary")
		}
		return out
	case TermFalseUnwind:
		if t.FalseUnwind.Unwind == NoBlock {
			return []string{"real"}
		}
		return []string{"real", "cleanup"}
	default:
		return nil
	}
}

func returnUnwindLabels(succs []BasicBlock) []string {
	if len(succs) == 2 {
		return []string{"return", "unwind"}
	}
	return []string{"return"}
}

func successUnwindLabels(succs []BasicBlock) []string {
	if len(succs) == 2 {
		return []string{"success", "unwind"}
	}
	return []string{"success"}
}

func (k TermKind) String() string {
	switch k {
	case TermNone:
		return "<none>"
	case TermGoto:
		return "goto"
	case TermSwitchInt:
		return "switchInt"
	case TermResume:
		return "resume"
	case TermAbort:
		return "abort"
	case TermReturn:
		return "return"
	case TermUnreachable:
		return "unreachable"
	case TermDrop:
		return "drop"
	case TermDropAndReplace:
		return "replace"
	case TermCall:
		return "call"
	case TermAssert:
		return "assert"
	case TermYield:
		return "yield"
	case TermGeneratorDrop:
		return "generator_drop"
	case TermFalseEdges:
		return "falseEdges"
	case TermFalseUnwind:
		return "falseUnwind"
	}
	return "unknown"
}
