// Package mir is the control-flow-graph body model consumed by the
// dataflow passes: basic blocks of statements ending in exactly one
// terminator, a flat local-slot table, and nested source scopes for
// debuginfo. The package carries structural helpers only; nothing in
// here lowers or analyzes.
package mir

import (
	"fmt"

	"rill/internal/def"
	"rill/internal/source"
	"rill/internal/ty"
)

type BasicBlock int32
type Local int32
type SourceScope int32

const (
	NoBlock BasicBlock = -1
	NoLocal Local      = -1

	// StartBlock is the entry block of every body.
	StartBlock BasicBlock = 0
	// ReturnLocal is the slot the body's result is written into.
	ReturnLocal Local = 0
	// OutermostScope is the root of the scope tree.
	OutermostScope SourceScope = 0
)

// MirPhase orders the pipeline stages a body moves through. Passes
// assert on it so logic for one shape of MIR never runs on another.
type MirPhase uint8

const (
	MirPhaseBuild MirPhase = iota
	MirPhaseConst
	MirPhaseValidated
	MirPhaseOptimized
)

func (p MirPhase) String() string {
	switch p {
	case MirPhaseBuild:
		return "build"
	case MirPhaseConst:
		return "const"
	case MirPhaseValidated:
		return "validated"
	case MirPhaseOptimized:
		return "optimized"
	}
	return "unknown"
}

// SourceScopeData is one node of the scope tree. The outermost scope
// has no parent.
type SourceScopeData struct {
	Span   source.Span
	Parent SourceScope
	HasParent bool
}

// LocalKind classifies a local purely by index range plus the
// user-variable marker on its declaration.
type LocalKind uint8

const (
	// LocalReturnPointer is slot 0.
	LocalReturnPointer LocalKind = iota
	// LocalArg is a parameter slot, 1..=ArgCount.
	LocalArg
	// LocalVar is a user-named variable.
	LocalVar
	// LocalTemp is a compiler-introduced temporary.
	LocalTemp
)

// LocalDecl is one local slot.
type LocalDecl struct {
	Mutable bool
	Ty      ty.TypeID
	// UserVar marks slots that hold a source-level variable.
	UserVar bool
	Name    source.StringID
	Span    source.Span
	Scope   SourceScope
}

// UserTypeAnnotation records a written type ascription for later
// checking against the inferred type.
type UserTypeAnnotation struct {
	Span source.Span
	Ty   ty.TypeID
}

// GeneratorInfo carries the generator-only parts of a body.
type GeneratorInfo struct {
	YieldTy ty.TypeID
	// DropBody is the def of the synthesized drop-glue body.
	DropBody def.DefIndex
}

// Body is one function's control-flow graph. Local 0 is the return
// place, the next ArgCount slots are the parameters, everything after
// that is a user variable or a temporary.
type Body struct {
	Def   def.DefIndex
	Span  source.Span
	Phase MirPhase

	Blocks []BasicBlockData
	Scopes []SourceScopeData
	Locals []LocalDecl
	// ArgCount is the number of parameter slots following the return
	// place. Invariant: len(Locals) > ArgCount.
	ArgCount int

	UserTypeAnnotations []UserTypeAnnotation

	Generator *GeneratorInfo
}

// EnterPhase advances the body's phase. Phases only move forward; a
// regression means a pass ran out of order.
func (b *Body) EnterPhase(p MirPhase) error {
	if p < b.Phase {
		return fmt.Errorf("mir: phase regression %s -> %s", b.Phase, p)
	}
	b.Phase = p
	return nil
}

// LocalKind classifies a local from its index range.
func (b *Body) LocalKind(l Local) LocalKind {
	switch {
	case l == ReturnLocal:
		return LocalReturnPointer
	case int(l) <= b.ArgCount:
		return LocalArg
	case b.Locals[l].UserVar:
		return LocalVar
	default:
		return LocalTemp
	}
}

// Args returns the parameter slots in declaration order.
func (b *Body) Args() []Local {
	out := make([]Local, 0, b.ArgCount)
	for l := Local(1); int(l) <= b.ArgCount; l++ {
		out = append(out, l)
	}
	return out
}

// Vars returns the user-variable slots.
func (b *Body) Vars() []Local {
	var out []Local
	for l := Local(b.ArgCount) + 1; int(l) < len(b.Locals); l++ {
		if b.Locals[l].UserVar {
			out = append(out, l)
		}
	}
	return out
}

// Temps returns the compiler-introduced slots.
func (b *Body) Temps() []Local {
	var out []Local
	for l := Local(b.ArgCount) + 1; int(l) < len(b.Locals); l++ {
		if !b.Locals[l].UserVar {
			out = append(out, l)
		}
	}
	return out
}

// MutVars returns the user variables declared mutable.
func (b *Body) MutVars() []Local {
	var out []Local
	for l := Local(b.ArgCount) + 1; int(l) < len(b.Locals); l++ {
		if b.Locals[l].UserVar && b.Locals[l].Mutable {
			out = append(out, l)
		}
	}
	return out
}

// Location is a position inside a body. A statement index equal to the
// block's statement count names the terminator.
type Location struct {
	Block     BasicBlock
	Statement int
}

func (l Location) String() string {
	return fmt.Sprintf("bb%d[%d]", l.Block, l.Statement)
}

// IsTerminator reports whether the location names the block's
// terminator rather than a statement.
func (l Location) IsTerminator(b *Body) bool {
	return l.Statement == len(b.Blocks[l.Block].Statements)
}

// TerminatorLoc returns the location of bb's terminator.
func (b *Body) TerminatorLoc(bb BasicBlock) Location {
	return Location{Block: bb, Statement: len(b.Blocks[bb].Statements)}
}
