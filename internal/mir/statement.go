package mir

import (
	"rill/internal/source"
)

type StatementKind uint8

const (
	StmtAssign StatementKind = iota
	StmtSetDiscriminant
	StmtStorageLive
	StmtStorageDead
	StmtNop
)

// Statement is one non-control-transfer instruction.
type Statement struct {
	Kind  StatementKind
	Span  source.Span
	Scope SourceScope

	Assign          AssignStmt
	SetDiscriminant SetDiscriminantStmt
	// StmtStorageLive, StmtStorageDead.
	Storage Local
}

type AssignStmt struct {
	Place Place
	Rval  Rvalue
}

type SetDiscriminantStmt struct {
	Place   Place
	Variant uint32
}

// MakeNop erases the statement in place. Replacing instead of removing
// keeps every Location elsewhere in the body valid.
func (s *Statement) MakeNop() {
	*s = Statement{Kind: StmtNop, Span: s.Span, Scope: s.Scope}
}
